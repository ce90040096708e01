package worker

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/ailearn-gamification/internal/config"
	"github.com/ailearn-gamification/internal/domain"
	"github.com/ailearn-gamification/internal/postgres"
	"github.com/ailearn-gamification/internal/redis"
)

// allBoardTypes lists every leaderboard metric the worker maintains
var allBoardTypes = []domain.LeaderboardType{
	domain.LeaderboardXP,
	domain.LeaderboardStreak,
	domain.LeaderboardModules,
	domain.LeaderboardContributions,
}

// SyncWorker periodically rebuilds the Redis leaderboard cache from the
// durable scores in PostgreSQL and prunes score rows from expired period
// buckets. PostgreSQL is the source of truth; Redis drift from failed cache
// writes heals on the next cycle.
type SyncWorker struct {
	cache   *redis.LeaderboardCache
	repo    *postgres.Repository
	config  *config.SyncConfig
	logger  *slog.Logger
	now     func() time.Time
	stopCh  chan struct{}
	doneCh  chan struct{}
	mu      sync.Mutex
	running bool
}

// NewSyncWorker creates a new sync worker
func NewSyncWorker(
	cache *redis.LeaderboardCache,
	repo *postgres.Repository,
	cfg *config.SyncConfig,
	logger *slog.Logger,
) *SyncWorker {
	return &SyncWorker{
		cache:  cache,
		repo:   repo,
		config: cfg,
		logger: logger,
		now:    time.Now,
		stopCh: make(chan struct{}),
		doneCh: make(chan struct{}),
	}
}

// SetClock overrides the worker clock, used by tests
func (w *SyncWorker) SetClock(now func() time.Time) {
	w.now = now
}

// Start begins the background rebuild process
func (w *SyncWorker) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.mu.Unlock()

	w.logger.Info("sync worker started", "interval", w.config.Interval)

	go w.run(ctx)
	return nil
}

// Stop stops the background rebuild process
func (w *SyncWorker) Stop() error {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return nil
	}
	w.mu.Unlock()

	close(w.stopCh)
	<-w.doneCh

	w.mu.Lock()
	w.running = false
	w.mu.Unlock()

	w.logger.Info("sync worker stopped")
	return nil
}

// run is the main worker loop
func (w *SyncWorker) run(ctx context.Context) {
	defer close(w.doneCh)

	ticker := time.NewTicker(w.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case <-ticker.C:
			w.syncAll(ctx)
		}
	}
}

// syncAll rebuilds every current board bucket and prunes expired ones
func (w *SyncWorker) syncAll(ctx context.Context) {
	w.logger.Info("starting sync cycle")
	startTime := time.Now()

	syncedCount := 0
	errorCount := 0

	now := w.now()
	for _, boardType := range allBoardTypes {
		for _, period := range domain.AllPeriods() {
			if err := w.RebuildBoard(ctx, boardType, period); err != nil {
				w.logger.Error("failed to rebuild board",
					"board_type", boardType,
					"period", period,
					"error", err,
				)
				errorCount++
			} else {
				syncedCount++
			}
		}
	}

	// Drop durable scores from closed daily/weekly/monthly buckets
	for _, period := range domain.AllPeriods() {
		if period == domain.PeriodAllTime {
			continue
		}
		pruned, err := w.repo.PruneLeaderboardScores(ctx, period, domain.PeriodKey(period, now))
		if err != nil {
			w.logger.Error("failed to prune expired scores", "period", period, "error", err)
			errorCount++
		} else if pruned > 0 {
			w.logger.Info("pruned expired scores", "period", period, "rows", pruned)
		}
	}

	duration := time.Since(startTime)
	w.logger.Info("sync cycle completed",
		"duration", duration,
		"synced", syncedCount,
		"errors", errorCount,
	)
}

// RebuildBoard replaces one board's current Redis bucket with the scores
// stored in PostgreSQL
func (w *SyncWorker) RebuildBoard(ctx context.Context, boardType domain.LeaderboardType, period domain.Period) error {
	key := domain.PeriodKey(period, w.now())
	w.logger.Debug("rebuilding board", "board_type", boardType, "period", period, "period_key", key)

	scores, err := w.repo.GetLeaderboardScores(ctx, boardType, period, key)
	if err != nil {
		return err
	}

	if len(scores) == 0 {
		w.logger.Debug("no scores to rebuild", "board_type", boardType, "period", period)
		return nil
	}

	// Write in batches to bound pipeline size
	batchSize := w.config.BatchSize
	if batchSize == 0 {
		batchSize = 1000
	}

	batch := make(map[string]int64, batchSize)
	for userID, score := range scores {
		batch[userID] = score

		if len(batch) >= batchSize {
			if err := w.cache.BatchSetScores(ctx, boardType, period, key, batch); err != nil {
				return err
			}
			batch = make(map[string]int64, batchSize)
		}
	}
	if len(batch) > 0 {
		if err := w.cache.BatchSetScores(ctx, boardType, period, key, batch); err != nil {
			return err
		}
	}

	w.logger.Debug("rebuilt board",
		"board_type", boardType,
		"period", period,
		"user_count", len(scores),
	)
	return nil
}

// RebuildAll rebuilds every current bucket, used at startup for recovery
func (w *SyncWorker) RebuildAll(ctx context.Context) error {
	w.logger.Info("rebuilding all leaderboard caches")

	for _, boardType := range allBoardTypes {
		for _, period := range domain.AllPeriods() {
			if err := w.RebuildBoard(ctx, boardType, period); err != nil {
				w.logger.Error("failed to rebuild board",
					"board_type", boardType,
					"period", period,
					"error", err,
				)
				// Continue with other boards
			}
		}
	}

	w.logger.Info("completed rebuilding leaderboard caches")
	return nil
}

// IsRunning returns whether the worker is currently running
func (w *SyncWorker) IsRunning() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}

// RunOnce runs a single sync cycle (useful for manual triggers)
func (w *SyncWorker) RunOnce(ctx context.Context) {
	w.syncAll(ctx)
}
