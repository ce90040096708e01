package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/ailearn-gamification/internal/domain"
	"github.com/ailearn-gamification/internal/engine"
)

// GetLeaderboard returns the top-N view of one (type, period) board,
// including the requesting user's own row when userID is set
func (s *GamificationService) GetLeaderboard(ctx context.Context, boardType domain.LeaderboardType, period domain.Period, limit int, userID string) (*domain.LeaderboardView, error) {
	if !domain.ValidLeaderboardType(boardType) || !domain.ValidPeriod(period) {
		return nil, domain.ErrInvalidLeaderboard
	}
	if limit <= 0 {
		limit = s.cfg.DefaultLimit
	}
	if limit > s.cfg.MaxLimit {
		limit = s.cfg.MaxLimit
	}

	now := s.now()
	key := domain.PeriodKey(period, now)

	view, err := s.cachedBoardView(ctx, boardType, period, key, limit, userID, now)
	if err != nil {
		// The cache is repaired by the sync worker; in the meantime the
		// durable scores can serve reads.
		s.logger.Warn("leaderboard cache unavailable, serving from storage",
			"board", boardType, "period", period, "error", err)
		scores, storeErr := s.repo.GetLeaderboardScores(ctx, boardType, period, key)
		if storeErr != nil {
			return nil, fmt.Errorf("reading leaderboard scores: %w", storeErr)
		}
		view = storedBoardView(scores, boardType, period, limit, userID, now)
	}

	if err := s.enrichEntries(ctx, view); err != nil {
		s.logger.Warn("failed to enrich leaderboard entries", "error", err)
	}

	engine.FillMetric(view.Entries, boardType)
	if view.UserEntry != nil {
		single := []domain.LeaderboardEntry{*view.UserEntry}
		engine.FillMetric(single, boardType)
		view.UserEntry = &single[0]
	}
	return view, nil
}

// cachedBoardView reads one board view from the Redis sorted set
func (s *GamificationService) cachedBoardView(
	ctx context.Context,
	boardType domain.LeaderboardType,
	period domain.Period,
	key string,
	limit int,
	userID string,
	now time.Time,
) (*domain.LeaderboardView, error) {
	entries, err := s.cache.GetTopN(ctx, boardType, period, key, limit)
	if err != nil {
		return nil, fmt.Errorf("getting top n: %w", err)
	}

	total, err := s.cache.GetCount(ctx, boardType, period, key)
	if err != nil {
		return nil, fmt.Errorf("getting count: %w", err)
	}

	view := &domain.LeaderboardView{
		Type:       boardType,
		Period:     period,
		Entries:    entries,
		TotalUsers: total,
		UpdatedAt:  now,
	}

	if userID != "" {
		userEntry, err := s.cache.GetUserRank(ctx, boardType, period, key, userID)
		if err == nil {
			view.UserEntry = userEntry
		} else if !domain.IsNotFoundError(err) {
			s.logger.Warn("failed to get user rank", "user_id", userID, "error", err)
		}
	}
	return view, nil
}

// storedBoardView ranks the durable scores of one board bucket. Ties are
// broken by user id so repeated reads rank identically.
func storedBoardView(
	scores map[string]int64,
	boardType domain.LeaderboardType,
	period domain.Period,
	limit int,
	userID string,
	now time.Time,
) *domain.LeaderboardView {
	entries := make([]domain.LeaderboardEntry, 0, len(scores))
	for id, score := range scores {
		entries = append(entries, domain.LeaderboardEntry{UserID: id, Score: score})
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].UserID < entries[j].UserID
	})
	ranked := engine.Rank(entries)

	view := &domain.LeaderboardView{
		Type:       boardType,
		Period:     period,
		Entries:    engine.TopN(ranked, limit),
		TotalUsers: int64(len(ranked)),
		UpdatedAt:  now,
	}
	if userID != "" {
		view.UserEntry = engine.Locate(ranked, userID)
	}
	return view
}

// GetAroundUser returns the entries surrounding a user on one board
func (s *GamificationService) GetAroundUser(ctx context.Context, boardType domain.LeaderboardType, period domain.Period, userID string, count int) ([]domain.LeaderboardEntry, error) {
	if !domain.ValidLeaderboardType(boardType) || !domain.ValidPeriod(period) {
		return nil, domain.ErrInvalidLeaderboard
	}
	if count <= 0 {
		count = 5
	}
	if count > 50 {
		count = 50
	}

	key := domain.PeriodKey(period, s.now())
	entries, err := s.cache.GetAroundUser(ctx, boardType, period, key, userID, count)
	if err != nil {
		return nil, err
	}

	view := &domain.LeaderboardView{Entries: entries}
	if err := s.enrichEntries(ctx, view); err != nil {
		s.logger.Warn("failed to enrich leaderboard entries", "error", err)
	}
	engine.FillMetric(view.Entries, boardType)
	return view.Entries, nil
}

// GetUserRank returns a user's rank and score on one board
func (s *GamificationService) GetUserRank(ctx context.Context, boardType domain.LeaderboardType, period domain.Period, userID string) (*domain.LeaderboardEntry, error) {
	if !domain.ValidLeaderboardType(boardType) || !domain.ValidPeriod(period) {
		return nil, domain.ErrInvalidLeaderboard
	}
	key := domain.PeriodKey(period, s.now())
	return s.cache.GetUserRank(ctx, boardType, period, key, userID)
}

// enrichEntries fills display names and avatars onto leaderboard rows.
// The Redis info cache is tried first, missing users fall back to Postgres.
func (s *GamificationService) enrichEntries(ctx context.Context, view *domain.LeaderboardView) error {
	ids := make([]string, 0, len(view.Entries)+1)
	for _, e := range view.Entries {
		ids = append(ids, e.UserID)
	}
	if view.UserEntry != nil {
		ids = append(ids, view.UserEntry.UserID)
	}
	if len(ids) == 0 {
		return nil
	}

	infos, err := s.cache.GetUserInfo(ctx, ids)
	if err != nil {
		infos = map[string]domain.Profile{}
	}

	var missing []string
	for _, id := range ids {
		if _, ok := infos[id]; !ok {
			missing = append(missing, id)
		}
	}
	if len(missing) > 0 {
		profiles, err := s.repo.GetProfiles(ctx, missing)
		if err != nil {
			return err
		}
		for id, p := range profiles {
			infos[id] = p
			if cacheErr := s.cache.SetUserInfo(ctx, id, p.DisplayName, p.AvatarURL); cacheErr != nil {
				s.logger.Warn("failed to cache user info", "user_id", id, "error", cacheErr)
			}
		}
	}

	apply := func(e *domain.LeaderboardEntry) {
		if info, ok := infos[e.UserID]; ok {
			e.DisplayName = info.DisplayName
			e.AvatarURL = info.AvatarURL
		}
	}
	for i := range view.Entries {
		apply(&view.Entries[i])
	}
	if view.UserEntry != nil {
		apply(view.UserEntry)
	}
	return nil
}
