package service

import (
	"context"

	"github.com/ailearn-gamification/internal/playground"
)

// RecordPromptUsage folds one sandbox provider call into the user's
// statistics. Distinct models feed the model-explorer achievements.
func (s *GamificationService) RecordPromptUsage(ctx context.Context, userID, tool, model string, usage playground.Usage) error {
	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := s.repo.LockProfileTx(ctx, tx, userID, s.now()); err != nil {
		return err
	}

	stats, err := s.repo.GetUserStatsTx(ctx, tx, userID)
	if err != nil {
		return err
	}

	stats.PromptsCreated++
	if stats.AIModels == nil {
		stats.AIModels = make(map[string]int)
	}
	stats.AIModels[model]++
	stats.AIModelsUsed = len(stats.AIModels)

	if err := s.repo.UpsertUserStatsTx(ctx, tx, userID, stats); err != nil {
		return err
	}
	return tx.Commit(ctx)
}
