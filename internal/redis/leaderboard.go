package redis

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ailearn-gamification/internal/config"
	"github.com/ailearn-gamification/internal/domain"
)

// LeaderboardCache provides Redis-based leaderboard operations. Each
// (type, period) board lives in one sorted set keyed by its period bucket,
// so period rollover is just a new key.
type LeaderboardCache struct {
	client *redis.Client
	logger *slog.Logger
}

// NewLeaderboardCache creates a new Redis leaderboard cache
func NewLeaderboardCache(cfg *config.RedisConfig, logger *slog.Logger) (*LeaderboardCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	})

	// Test connection
	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connecting to redis: %w", err)
	}

	return &LeaderboardCache{
		client: client,
		logger: logger,
	}, nil
}

// Close closes the Redis connection
func (s *LeaderboardCache) Close() error {
	return s.client.Close()
}

// Client returns the underlying Redis client
func (s *LeaderboardCache) Client() *redis.Client {
	return s.client
}

// boardKey returns the Redis key for a board's sorted set
func (s *LeaderboardCache) boardKey(boardType domain.LeaderboardType, period domain.Period, periodKey string) string {
	return fmt.Sprintf("leaderboard:%s:%s:%s", boardType, period, periodKey)
}

// userInfoKey returns the Redis key for the user display-info cache
func (s *LeaderboardCache) userInfoKey(userID string) string {
	return fmt.Sprintf("user:%s:info", userID)
}

// boardTTL returns how long a period bucket is kept after writes stop.
// All-time boards never expire.
func boardTTL(period domain.Period) time.Duration {
	switch period {
	case domain.PeriodDaily:
		return 48 * time.Hour
	case domain.PeriodWeekly:
		return 14 * 24 * time.Hour
	case domain.PeriodMonthly:
		return 62 * 24 * time.Hour
	default:
		return 0
	}
}

// SetScore sets a user's score on one board bucket
func (s *LeaderboardCache) SetScore(ctx context.Context, boardType domain.LeaderboardType, period domain.Period, periodKey, userID string, score int64) error {
	key := s.boardKey(boardType, period, periodKey)
	pipe := s.client.Pipeline()
	pipe.ZAdd(ctx, key, redis.Z{
		Score:  float64(score),
		Member: userID,
	})
	if ttl := boardTTL(period); ttl > 0 {
		pipe.Expire(ctx, key, ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("setting score: %w", err)
	}
	return nil
}

// IncrementScore adds delta to a user's score and returns the new score
func (s *LeaderboardCache) IncrementScore(ctx context.Context, boardType domain.LeaderboardType, period domain.Period, periodKey, userID string, delta int64) (int64, error) {
	key := s.boardKey(boardType, period, periodKey)
	newScore, err := s.client.ZIncrBy(ctx, key, float64(delta), userID).Result()
	if err != nil {
		return 0, fmt.Errorf("incrementing score: %w", err)
	}
	if ttl := boardTTL(period); ttl > 0 {
		s.client.Expire(ctx, key, ttl)
	}
	return int64(newScore), nil
}

// RemoveUser removes a user from one board bucket
func (s *LeaderboardCache) RemoveUser(ctx context.Context, boardType domain.LeaderboardType, period domain.Period, periodKey, userID string) error {
	key := s.boardKey(boardType, period, periodKey)
	if err := s.client.ZRem(ctx, key, userID).Err(); err != nil {
		return fmt.Errorf("removing user: %w", err)
	}
	return nil
}

// GetTopN returns the top N entries of a board bucket in descending order
func (s *LeaderboardCache) GetTopN(ctx context.Context, boardType domain.LeaderboardType, period domain.Period, periodKey string, n int) ([]domain.LeaderboardEntry, error) {
	return s.GetRange(ctx, boardType, period, periodKey, 0, n-1)
}

// GetRange returns entries within a rank range (0-indexed, inclusive)
func (s *LeaderboardCache) GetRange(ctx context.Context, boardType domain.LeaderboardType, period domain.Period, periodKey string, start, end int) ([]domain.LeaderboardEntry, error) {
	key := s.boardKey(boardType, period, periodKey)
	results, err := s.client.ZRevRangeWithScores(ctx, key, int64(start), int64(end)).Result()
	if err != nil {
		return nil, fmt.Errorf("getting range: %w", err)
	}

	entries := make([]domain.LeaderboardEntry, len(results))
	for i, result := range results {
		entries[i] = domain.LeaderboardEntry{
			Rank:   start + i + 1,
			UserID: result.Member.(string),
			Score:  int64(result.Score),
		}
	}
	return entries, nil
}

// GetUserRank returns a user's rank and score on one board bucket
func (s *LeaderboardCache) GetUserRank(ctx context.Context, boardType domain.LeaderboardType, period domain.Period, periodKey, userID string) (*domain.LeaderboardEntry, error) {
	key := s.boardKey(boardType, period, periodKey)

	// Use pipeline to get both rank and score
	pipe := s.client.Pipeline()
	rankCmd := pipe.ZRevRank(ctx, key, userID)
	scoreCmd := pipe.ZScore(ctx, key, userID)
	_, err := pipe.Exec(ctx)

	if err != nil {
		if err == redis.Nil {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("getting user rank: %w", err)
	}

	rank, err := rankCmd.Result()
	if err != nil {
		if err == redis.Nil {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("getting rank result: %w", err)
	}

	score, err := scoreCmd.Result()
	if err != nil {
		return nil, fmt.Errorf("getting score result: %w", err)
	}

	return &domain.LeaderboardEntry{
		Rank:   int(rank) + 1, // Convert 0-indexed to 1-indexed
		UserID: userID,
		Score:  int64(score),
	}, nil
}

// GetAroundUser returns entries around a user's rank
func (s *LeaderboardCache) GetAroundUser(ctx context.Context, boardType domain.LeaderboardType, period domain.Period, periodKey, userID string, count int) ([]domain.LeaderboardEntry, error) {
	userEntry, err := s.GetUserRank(ctx, boardType, period, periodKey, userID)
	if err != nil {
		return nil, err
	}

	start := userEntry.Rank - count - 1 // rank is 1-indexed
	if start < 0 {
		start = 0
	}
	end := userEntry.Rank + count - 1

	return s.GetRange(ctx, boardType, period, periodKey, start, end)
}

// GetCount returns the number of users on one board bucket
func (s *LeaderboardCache) GetCount(ctx context.Context, boardType domain.LeaderboardType, period domain.Period, periodKey string) (int64, error) {
	key := s.boardKey(boardType, period, periodKey)
	count, err := s.client.ZCard(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("getting count: %w", err)
	}
	return count, nil
}

// ResetBoard clears one board bucket
func (s *LeaderboardCache) ResetBoard(ctx context.Context, boardType domain.LeaderboardType, period domain.Period, periodKey string) error {
	key := s.boardKey(boardType, period, periodKey)
	if err := s.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("resetting board: %w", err)
	}
	return nil
}

// SetUserInfo caches a user's display fields for leaderboard rendering
func (s *LeaderboardCache) SetUserInfo(ctx context.Context, userID, displayName, avatarURL string) error {
	key := s.userInfoKey(userID)
	err := s.client.HSet(ctx, key,
		"display_name", displayName,
		"avatar_url", avatarURL,
	).Err()
	if err != nil {
		return fmt.Errorf("setting user info: %w", err)
	}
	return nil
}

// GetUserInfo retrieves cached display fields for a set of users. Users
// without a cache entry are simply absent from the result.
func (s *LeaderboardCache) GetUserInfo(ctx context.Context, userIDs []string) (map[string]domain.Profile, error) {
	if len(userIDs) == 0 {
		return map[string]domain.Profile{}, nil
	}

	pipe := s.client.Pipeline()
	cmds := make([]*redis.MapStringStringCmd, len(userIDs))
	for i, userID := range userIDs {
		cmds[i] = pipe.HGetAll(ctx, s.userInfoKey(userID))
	}
	if _, err := pipe.Exec(ctx); err != nil && err != redis.Nil {
		return nil, fmt.Errorf("getting user info: %w", err)
	}

	infos := make(map[string]domain.Profile, len(userIDs))
	for i, cmd := range cmds {
		result, err := cmd.Result()
		if err != nil || len(result) == 0 {
			continue
		}
		infos[userIDs[i]] = domain.Profile{
			UserID:      userIDs[i],
			DisplayName: result["display_name"],
			AvatarURL:   result["avatar_url"],
		}
	}
	return infos, nil
}

// BatchSetScores sets multiple scores on one board bucket using pipelining
func (s *LeaderboardCache) BatchSetScores(ctx context.Context, boardType domain.LeaderboardType, period domain.Period, periodKey string, scores map[string]int64) error {
	if len(scores) == 0 {
		return nil
	}

	key := s.boardKey(boardType, period, periodKey)
	pipe := s.client.Pipeline()

	for userID, score := range scores {
		pipe.ZAdd(ctx, key, redis.Z{
			Score:  float64(score),
			Member: userID,
		})
	}
	if ttl := boardTTL(period); ttl > 0 {
		pipe.Expire(ctx, key, ttl)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("batch setting scores: %w", err)
	}
	return nil
}

// Exists checks if a board bucket has been materialized
func (s *LeaderboardCache) Exists(ctx context.Context, boardType domain.LeaderboardType, period domain.Period, periodKey string) (bool, error) {
	key := s.boardKey(boardType, period, periodKey)
	exists, err := s.client.Exists(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("checking existence: %w", err)
	}
	return exists > 0, nil
}
