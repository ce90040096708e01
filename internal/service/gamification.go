package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/ailearn-gamification/internal/config"
	"github.com/ailearn-gamification/internal/domain"
	"github.com/ailearn-gamification/internal/engine"
	"github.com/ailearn-gamification/internal/postgres"
	"github.com/ailearn-gamification/internal/redis"
)

// Notifier receives realtime events produced by activity processing.
// Implementations must not block.
type Notifier interface {
	NotifyLeaderboardUpdate(boardType domain.LeaderboardType, period domain.Period, entry domain.LeaderboardEntry)
	NotifyLevelUp(userID string, up domain.LevelUp)
	NotifyAchievementEarned(userID string, achievement domain.Achievement)
}

// GamificationService orchestrates activity processing: XP, streaks,
// achievements and leaderboards move together under one transaction per
// activity, serialized per user by a profile row lock.
type GamificationService struct {
	repo     *postgres.Repository
	cache    *redis.LeaderboardCache
	cfg      *config.LeaderboardConfig
	logger   *slog.Logger
	notifier Notifier
	now      func() time.Time
}

// NewGamificationService creates a new gamification service
func NewGamificationService(
	repo *postgres.Repository,
	cache *redis.LeaderboardCache,
	cfg *config.LeaderboardConfig,
	logger *slog.Logger,
) *GamificationService {
	return &GamificationService{
		repo:   repo,
		cache:  cache,
		cfg:    cfg,
		logger: logger,
		now:    time.Now,
	}
}

// SetNotifier attaches a realtime event sink
func (s *GamificationService) SetNotifier(n Notifier) {
	s.notifier = n
}

// SetClock overrides the service clock, used by tests
func (s *GamificationService) SetClock(now func() time.Time) {
	s.now = now
}

// RecordActivity processes a single activity event end to end. Redelivered
// events (same event_id) are detected inside the transaction and reported
// as duplicates without changing any state.
func (s *GamificationService) RecordActivity(ctx context.Context, event *domain.ActivityEvent) (*domain.ActivityResult, error) {
	if event.UserID == "" {
		return nil, fmt.Errorf("%w: missing user_id", domain.ErrInvalidRequest)
	}
	applyStandardAward(event)
	if err := engine.ValidateActivity(event.Activity()); err != nil {
		return nil, err
	}
	if event.EventID == "" {
		event.EventID = uuid.New().String()
	}

	now := s.now()
	if event.Timestamp.IsZero() {
		event.Timestamp = now
	}

	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	profile, err := s.repo.LockProfileTx(ctx, tx, event.UserID, now)
	if err != nil {
		return nil, err
	}

	// Advance the streak first so its multiplier can feed the XP calculation
	var streak *domain.StreakRecord
	if streakType, tracked := engine.StreakKindFor(event.Kind); tracked {
		existing, err := s.repo.GetStreakTx(ctx, tx, event.UserID, streakType)
		if err != nil && err != domain.ErrStreakNotFound {
			return nil, err
		}
		advanced := engine.AdvanceStreak(existing, event.Timestamp)
		advanced.UserID = event.UserID
		advanced.StreakType = streakType
		if err := s.repo.UpsertStreakTx(ctx, tx, &advanced); err != nil {
			return nil, err
		}
		streak = &advanced
	}

	activity := event.Activity()
	if streak != nil {
		md := domain.ActivityMetadata{}
		if activity.Metadata != nil {
			md = *activity.Metadata
		}
		if md.StreakMultiplier == 0 {
			md.StreakMultiplier = engine.StreakMultiplier(streak.CurrentStreak)
		}
		activity.Metadata = &md
	}
	points := engine.ActivityXP(activity)

	stats, err := s.repo.GetUserStatsTx(ctx, tx, event.UserID)
	if err != nil {
		return nil, err
	}
	applyActivityToStats(stats, event, streak)

	earned, err := s.repo.GetEarnedAchievementsTx(ctx, tx, event.UserID)
	if err != nil {
		return nil, err
	}
	achievements, err := s.repo.ListAchievements(ctx)
	if err != nil {
		return nil, err
	}

	oldXP := profile.XP
	newXP := oldXP + points

	// Evaluate achievements against the post-activity snapshot. Newly
	// earned ones add their XP reward before the final level calculation.
	stats.TotalXP = newXP
	stats.Level = engine.LevelFromXP(newXP).Level
	evaluated := engine.AchievementsWithProgress(achievements, *stats, earned)

	var completedIDs []string
	for _, a := range evaluated {
		if a.Completed {
			completedIDs = append(completedIDs, a.AchievementID)
		}
	}
	earnedIDs := make([]string, 0, len(earned))
	for id := range earned {
		earnedIDs = append(earnedIDs, id)
	}

	var newAchievements []domain.Achievement
	for _, id := range engine.NewlyEarned(earnedIDs, completedIDs) {
		for _, a := range achievements {
			if a.ID == id {
				newAchievements = append(newAchievements, a)
				break
			}
		}
	}

	for _, a := range newAchievements {
		if err := s.repo.AwardAchievementTx(ctx, tx, event.UserID, a.ID, now); err != nil {
			return nil, err
		}
		newXP += a.XPReward
	}

	levelInfo := engine.LevelFromXP(newXP)
	levelUp := engine.CheckLevelUp(oldXP, newXP)

	stats.TotalXP = newXP
	stats.Level = levelInfo.Level
	if err := s.repo.UpsertUserStatsTx(ctx, tx, event.UserID, stats); err != nil {
		return nil, err
	}

	profile.XP = newXP
	profile.Level = levelInfo.Level
	if err := s.repo.UpdateProfileTx(ctx, tx, profile); err != nil {
		return nil, err
	}

	xpAwarded := newXP - oldXP
	if err := s.writeScoresTx(ctx, tx, event, stats, streak, int64(xpAwarded), now); err != nil {
		return nil, err
	}

	// The event row goes in last; a conflict on event_id means this is a
	// redelivery, so every change above is rolled back.
	inserted, err := s.repo.InsertActivityEventTx(ctx, tx, event, points)
	if err != nil {
		return nil, err
	}
	if !inserted {
		if err := tx.Rollback(ctx); err != nil {
			s.logger.Warn("rollback after duplicate event", "error", err)
		}
		s.logger.Info("duplicate activity event ignored",
			"event_id", event.EventID,
			"user_id", event.UserID,
		)
		return &domain.ActivityResult{
			EventID:   event.EventID,
			UserID:    event.UserID,
			LevelInfo: engine.LevelFromXP(oldXP),
			Duplicate: true,
		}, nil
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("committing activity: %w", err)
	}

	s.refreshCache(ctx, event, profile, stats, streak, int64(xpAwarded), now)
	s.notify(event.UserID, profile, levelUp, newAchievements, now)

	result := &domain.ActivityResult{
		EventID:         event.EventID,
		UserID:          event.UserID,
		PointsAwarded:   points,
		LevelInfo:       levelInfo,
		LevelUp:         levelUp,
		Streak:          streak,
		NewAchievements: newAchievements,
	}

	s.logger.Info("activity recorded",
		"event_id", event.EventID,
		"user_id", event.UserID,
		"kind", event.Kind,
		"points", points,
		"level", levelInfo.Level,
		"new_achievements", len(newAchievements),
	)
	return result, nil
}

// RecordActivityBatch processes multiple events, continuing past failures
func (s *GamificationService) RecordActivityBatch(ctx context.Context, batch domain.BatchActivitySubmission) []domain.ActivityResult {
	results := make([]domain.ActivityResult, 0, len(batch.Events))
	for i := range batch.Events {
		result, err := s.RecordActivity(ctx, &batch.Events[i])
		if err != nil {
			s.logger.Error("failed to record activity in batch",
				"event_id", batch.Events[i].EventID,
				"user_id", batch.Events[i].UserID,
				"error", err,
			)
			continue
		}
		results = append(results, *result)
	}
	return results
}

// applyStandardAward resolves negative base points to the kind's standard
// award before validation. Producers that carry no points of their own send
// -1 and take whatever the kind is worth.
func applyStandardAward(event *domain.ActivityEvent) {
	if event.BasePoints < 0 {
		event.BasePoints = engine.StandardAward(event.Kind)
	}
}

// applyActivityToStats folds one activity into the statistics snapshot
func applyActivityToStats(stats *domain.UserStats, event *domain.ActivityEvent, streak *domain.StreakRecord) {
	md := event.Metadata
	switch event.Kind {
	case domain.KindLessonCompletion:
		stats.LessonsCompleted++
		if md != nil && md.IsWeekend {
			stats.WeekendLessons++
		}
		if md != nil && md.IsLateNight {
			stats.LateNightLessons++
		}
	case domain.KindModuleCompletion:
		stats.ModulesCompleted++
	case domain.KindCommunityPost:
		stats.CommunityPosts++
	case domain.KindDailyChallenge:
		stats.DailyChallengesDone++
	case domain.KindAssessmentPassed:
		if md != nil && md.PerfectScore && stats.HighestAssessmentScore < 100 {
			stats.HighestAssessmentScore = 100
		}
	}

	if streak != nil {
		if stats.Streaks == nil {
			stats.Streaks = make(map[domain.StreakType]int)
		}
		stats.Streaks[streak.StreakType] = streak.CurrentStreak
	}
}

// writeScoresTx updates the durable leaderboard scores touched by an event
func (s *GamificationService) writeScoresTx(
	ctx context.Context,
	tx pgx.Tx,
	event *domain.ActivityEvent,
	stats *domain.UserStats,
	streak *domain.StreakRecord,
	xpAwarded int64,
	now time.Time,
) error {
	for _, period := range domain.AllPeriods() {
		key := domain.PeriodKey(period, now)

		if xpAwarded != 0 {
			if _, err := s.repo.IncrementLeaderboardScoreTx(ctx, tx, domain.LeaderboardXP, period, key, event.UserID, xpAwarded); err != nil {
				return err
			}
		}
		if streak != nil && streak.StreakType == domain.StreakDailyLearning {
			if err := s.repo.SetLeaderboardScoreTx(ctx, tx, domain.LeaderboardStreak, period, key, event.UserID, int64(streak.CurrentStreak)); err != nil {
				return err
			}
		}
		if event.Kind == domain.KindModuleCompletion {
			if err := s.repo.SetLeaderboardScoreTx(ctx, tx, domain.LeaderboardModules, period, key, event.UserID, int64(stats.ModulesCompleted)); err != nil {
				return err
			}
		}
		if event.Kind == domain.KindCommunityPost {
			if _, err := s.repo.IncrementLeaderboardScoreTx(ctx, tx, domain.LeaderboardContributions, period, key, event.UserID, 1); err != nil {
				return err
			}
		}
	}
	return nil
}

// refreshCache mirrors the committed score changes into Redis. Cache
// failures are logged, never surfaced: the rebuild worker repairs drift.
func (s *GamificationService) refreshCache(
	ctx context.Context,
	event *domain.ActivityEvent,
	profile *domain.Profile,
	stats *domain.UserStats,
	streak *domain.StreakRecord,
	xpAwarded int64,
	now time.Time,
) {
	for _, period := range domain.AllPeriods() {
		key := domain.PeriodKey(period, now)

		if xpAwarded != 0 {
			if _, err := s.cache.IncrementScore(ctx, domain.LeaderboardXP, period, key, event.UserID, xpAwarded); err != nil {
				s.logger.Warn("failed to update xp leaderboard cache", "period", period, "error", err)
			}
		}
		if streak != nil && streak.StreakType == domain.StreakDailyLearning {
			if err := s.cache.SetScore(ctx, domain.LeaderboardStreak, period, key, event.UserID, int64(streak.CurrentStreak)); err != nil {
				s.logger.Warn("failed to update streak leaderboard cache", "period", period, "error", err)
			}
		}
		if event.Kind == domain.KindModuleCompletion {
			if err := s.cache.SetScore(ctx, domain.LeaderboardModules, period, key, event.UserID, int64(stats.ModulesCompleted)); err != nil {
				s.logger.Warn("failed to update modules leaderboard cache", "period", period, "error", err)
			}
		}
		if event.Kind == domain.KindCommunityPost {
			if _, err := s.cache.IncrementScore(ctx, domain.LeaderboardContributions, period, key, event.UserID, 1); err != nil {
				s.logger.Warn("failed to update contributions leaderboard cache", "period", period, "error", err)
			}
		}
	}

	if profile.DisplayName != "" || profile.AvatarURL != "" {
		if err := s.cache.SetUserInfo(ctx, profile.UserID, profile.DisplayName, profile.AvatarURL); err != nil {
			s.logger.Warn("failed to cache user info", "error", err)
		}
	}
}

// notify fans realtime events out to websocket clients
func (s *GamificationService) notify(
	userID string,
	profile *domain.Profile,
	levelUp domain.LevelUp,
	newAchievements []domain.Achievement,
	now time.Time,
) {
	if s.notifier == nil {
		return
	}

	if levelUp.LeveledUp {
		s.notifier.NotifyLevelUp(userID, levelUp)
	}
	for _, a := range newAchievements {
		s.notifier.NotifyAchievementEarned(userID, a)
	}
	for _, period := range domain.AllPeriods() {
		s.notifier.NotifyLeaderboardUpdate(domain.LeaderboardXP, period, domain.LeaderboardEntry{
			UserID:      userID,
			DisplayName: profile.DisplayName,
			Score:       int64(profile.XP),
		})
	}
}
