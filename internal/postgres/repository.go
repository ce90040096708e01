package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ailearn-gamification/internal/config"
	"github.com/ailearn-gamification/internal/domain"
)

// Repository provides PostgreSQL-based data access
type Repository struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// NewRepository creates a new PostgreSQL repository
func NewRepository(cfg *config.PostgresConfig, logger *slog.Logger) (*Repository, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.ConnectionString())
	if err != nil {
		return nil, fmt.Errorf("parsing connection string: %w", err)
	}

	poolConfig.MaxConns = int32(cfg.MaxConnections)
	poolConfig.MinConns = int32(cfg.MinConnections)
	poolConfig.MaxConnLifetime = cfg.MaxConnLifetime
	poolConfig.MaxConnIdleTime = cfg.MaxConnIdleTime

	pool, err := pgxpool.NewWithConfig(context.Background(), poolConfig)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	// Test connection
	if err := pool.Ping(context.Background()); err != nil {
		pool.Close()
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	return &Repository{
		pool:   pool,
		logger: logger,
	}, nil
}

// Close closes the database connection pool
func (r *Repository) Close() {
	r.pool.Close()
}

// Pool returns the underlying connection pool
func (r *Repository) Pool() *pgxpool.Pool {
	return r.pool
}

// BeginTx starts a transaction for an activity orchestration
func (r *Repository) BeginTx(ctx context.Context) (pgx.Tx, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	return tx, nil
}

// RunMigrations executes database migrations
func (r *Repository) RunMigrations(ctx context.Context) error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS profiles (
			user_id VARCHAR(64) PRIMARY KEY,
			display_name VARCHAR(255) DEFAULT '',
			avatar_url TEXT DEFAULT '',
			xp BIGINT NOT NULL DEFAULT 0,
			level INT NOT NULL DEFAULT 1,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS user_streaks (
			user_id VARCHAR(64) NOT NULL,
			streak_type VARCHAR(32) NOT NULL,
			current_streak INT NOT NULL DEFAULT 0,
			longest_streak INT NOT NULL DEFAULT 0,
			last_activity_date DATE NOT NULL,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (user_id, streak_type)
		)`,
		`CREATE TABLE IF NOT EXISTS achievements (
			id VARCHAR(64) PRIMARY KEY,
			title VARCHAR(255) NOT NULL,
			description TEXT DEFAULT '',
			category VARCHAR(32) NOT NULL,
			icon VARCHAR(64) DEFAULT '',
			xp_reward INT NOT NULL DEFAULT 0,
			requirements JSONB NOT NULL,
			is_active BOOLEAN NOT NULL DEFAULT TRUE,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS user_achievements (
			user_id VARCHAR(64) NOT NULL,
			achievement_id VARCHAR(64) NOT NULL REFERENCES achievements(id) ON DELETE CASCADE,
			earned_at TIMESTAMP NOT NULL,
			PRIMARY KEY (user_id, achievement_id)
		)`,
		`CREATE TABLE IF NOT EXISTS activity_events (
			id BIGSERIAL PRIMARY KEY,
			event_id VARCHAR(64) NOT NULL UNIQUE,
			user_id VARCHAR(64) NOT NULL,
			kind VARCHAR(32) NOT NULL,
			base_points INT NOT NULL,
			points_awarded INT NOT NULL,
			metadata JSONB,
			occurred_at TIMESTAMP NOT NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS user_stats (
			user_id VARCHAR(64) PRIMARY KEY,
			stats JSONB NOT NULL,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS leaderboard_scores (
			board_type VARCHAR(32) NOT NULL,
			period VARCHAR(16) NOT NULL,
			period_key VARCHAR(16) NOT NULL,
			user_id VARCHAR(64) NOT NULL,
			score BIGINT NOT NULL DEFAULT 0,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (board_type, period, period_key, user_id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_activity_events_user ON activity_events(user_id, occurred_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_user_achievements_user ON user_achievements(user_id, earned_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_leaderboard_scores_rank ON leaderboard_scores(board_type, period, period_key, score DESC)`,
	}

	for _, migration := range migrations {
		_, err := r.pool.Exec(ctx, migration)
		if err != nil {
			return fmt.Errorf("executing migration: %w", err)
		}
	}

	r.logger.Info("database migrations completed")
	return nil
}

// GetProfile retrieves a user's gamification profile
func (r *Repository) GetProfile(ctx context.Context, userID string) (*domain.Profile, error) {
	query := `
		SELECT user_id, display_name, avatar_url, xp, level, created_at, updated_at
		FROM profiles
		WHERE user_id = $1
	`
	var p domain.Profile
	err := r.pool.QueryRow(ctx, query, userID).Scan(
		&p.UserID,
		&p.DisplayName,
		&p.AvatarURL,
		&p.XP,
		&p.Level,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("getting profile: %w", err)
	}
	return &p, nil
}

// LockProfileTx loads a user's profile under a row lock, creating the row on
// first contact. The lock serializes concurrent activity submissions for the
// same user until the transaction ends.
func (r *Repository) LockProfileTx(ctx context.Context, tx pgx.Tx, userID string, now time.Time) (*domain.Profile, error) {
	insert := `
		INSERT INTO profiles (user_id, xp, level, created_at, updated_at)
		VALUES ($1, 0, 1, $2, $2)
		ON CONFLICT (user_id) DO NOTHING
	`
	if _, err := tx.Exec(ctx, insert, userID, now); err != nil {
		return nil, fmt.Errorf("ensuring profile: %w", err)
	}

	query := `
		SELECT user_id, display_name, avatar_url, xp, level, created_at, updated_at
		FROM profiles
		WHERE user_id = $1
		FOR UPDATE
	`
	var p domain.Profile
	err := tx.QueryRow(ctx, query, userID).Scan(
		&p.UserID,
		&p.DisplayName,
		&p.AvatarURL,
		&p.XP,
		&p.Level,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("locking profile: %w", err)
	}
	return &p, nil
}

// UpdateProfileTx writes back a profile's XP and level within a transaction
func (r *Repository) UpdateProfileTx(ctx context.Context, tx pgx.Tx, p *domain.Profile) error {
	query := `
		UPDATE profiles
		SET xp = $2, level = $3, updated_at = $4
		WHERE user_id = $1
	`
	_, err := tx.Exec(ctx, query, p.UserID, p.XP, p.Level, time.Now())
	if err != nil {
		return fmt.Errorf("updating profile: %w", err)
	}
	return nil
}

// UpdateProfileInfo updates a user's display fields
func (r *Repository) UpdateProfileInfo(ctx context.Context, userID, displayName, avatarURL string) error {
	query := `
		UPDATE profiles
		SET display_name = $2, avatar_url = $3, updated_at = $4
		WHERE user_id = $1
	`
	result, err := r.pool.Exec(ctx, query, userID, displayName, avatarURL, time.Now())
	if err != nil {
		return fmt.Errorf("updating profile info: %w", err)
	}
	if result.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

// GetProfiles retrieves display fields for a set of users
func (r *Repository) GetProfiles(ctx context.Context, userIDs []string) (map[string]domain.Profile, error) {
	if len(userIDs) == 0 {
		return map[string]domain.Profile{}, nil
	}
	query := `
		SELECT user_id, display_name, avatar_url, xp, level, created_at, updated_at
		FROM profiles
		WHERE user_id = ANY($1)
	`
	rows, err := r.pool.Query(ctx, query, userIDs)
	if err != nil {
		return nil, fmt.Errorf("getting profiles: %w", err)
	}
	defer rows.Close()

	profiles := make(map[string]domain.Profile, len(userIDs))
	for rows.Next() {
		var p domain.Profile
		err := rows.Scan(&p.UserID, &p.DisplayName, &p.AvatarURL, &p.XP, &p.Level, &p.CreatedAt, &p.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("scanning profile: %w", err)
		}
		profiles[p.UserID] = p
	}
	return profiles, nil
}

// CountProfiles returns the total number of users with a profile
func (r *Repository) CountProfiles(ctx context.Context) (int64, error) {
	var count int64
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM profiles`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting profiles: %w", err)
	}
	return count, nil
}

// InsertActivityEventTx records a processed activity event. It returns false
// when the event_id was already recorded, which signals a redelivery.
func (r *Repository) InsertActivityEventTx(ctx context.Context, tx pgx.Tx, event *domain.ActivityEvent, pointsAwarded int) (bool, error) {
	var metadataJSON []byte
	var err error
	if event.Metadata != nil {
		metadataJSON, err = json.Marshal(event.Metadata)
		if err != nil {
			return false, fmt.Errorf("marshaling metadata: %w", err)
		}
	}

	query := `
		INSERT INTO activity_events (event_id, user_id, kind, base_points, points_awarded, metadata, occurred_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (event_id) DO NOTHING
	`
	result, err := tx.Exec(ctx, query,
		event.EventID,
		event.UserID,
		string(event.Kind),
		event.BasePoints,
		pointsAwarded,
		metadataJSON,
		event.Timestamp,
		time.Now(),
	)
	if err != nil {
		return false, fmt.Errorf("recording activity event: %w", err)
	}
	return result.RowsAffected() > 0, nil
}

// ListRecentActivity returns a user's most recent processed events
func (r *Repository) ListRecentActivity(ctx context.Context, userID string, limit int) ([]domain.ActivityEvent, error) {
	query := `
		SELECT event_id, user_id, kind, base_points, metadata, occurred_at
		FROM activity_events
		WHERE user_id = $1
		ORDER BY occurred_at DESC
		LIMIT $2
	`
	rows, err := r.pool.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("listing recent activity: %w", err)
	}
	defer rows.Close()

	var events []domain.ActivityEvent
	for rows.Next() {
		var e domain.ActivityEvent
		var metadataJSON []byte
		if err := rows.Scan(&e.EventID, &e.UserID, &e.Kind, &e.BasePoints, &metadataJSON, &e.Timestamp); err != nil {
			return nil, fmt.Errorf("scanning activity event: %w", err)
		}
		if len(metadataJSON) > 0 {
			var md domain.ActivityMetadata
			if err := json.Unmarshal(metadataJSON, &md); err == nil {
				e.Metadata = &md
			}
		}
		events = append(events, e)
	}
	return events, nil
}

// ListXPAwards returns a user's processed XP awards, newest first
func (r *Repository) ListXPAwards(ctx context.Context, userID string, limit int) ([]domain.XPAward, error) {
	query := `
		SELECT kind, points_awarded, occurred_at
		FROM activity_events
		WHERE user_id = $1
		ORDER BY occurred_at DESC
		LIMIT $2
	`
	rows, err := r.pool.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("listing xp awards: %w", err)
	}
	defer rows.Close()

	var awards []domain.XPAward
	for rows.Next() {
		var a domain.XPAward
		if err := rows.Scan(&a.Kind, &a.Points, &a.EarnedAt); err != nil {
			return nil, fmt.Errorf("scanning xp award: %w", err)
		}
		awards = append(awards, a)
	}
	return awards, nil
}

// GetStreakTx retrieves one streak record under the current transaction.
// A missing row returns ErrStreakNotFound.
func (r *Repository) GetStreakTx(ctx context.Context, tx pgx.Tx, userID string, streakType domain.StreakType) (*domain.StreakRecord, error) {
	query := `
		SELECT user_id, streak_type, current_streak, longest_streak, last_activity_date, updated_at
		FROM user_streaks
		WHERE user_id = $1 AND streak_type = $2
	`
	var rec domain.StreakRecord
	err := tx.QueryRow(ctx, query, userID, string(streakType)).Scan(
		&rec.UserID,
		&rec.StreakType,
		&rec.CurrentStreak,
		&rec.LongestStreak,
		&rec.LastActivityDate,
		&rec.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrStreakNotFound
		}
		return nil, fmt.Errorf("getting streak: %w", err)
	}
	rec.LastActivityDate = domain.Day(rec.LastActivityDate)
	return &rec, nil
}

// UpsertStreakTx writes a streak record within a transaction
func (r *Repository) UpsertStreakTx(ctx context.Context, tx pgx.Tx, rec *domain.StreakRecord) error {
	query := `
		INSERT INTO user_streaks (user_id, streak_type, current_streak, longest_streak, last_activity_date, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (user_id, streak_type)
		DO UPDATE SET
			current_streak = $3,
			longest_streak = $4,
			last_activity_date = $5,
			updated_at = $6
	`
	_, err := tx.Exec(ctx, query,
		rec.UserID,
		string(rec.StreakType),
		rec.CurrentStreak,
		rec.LongestStreak,
		rec.LastActivityDate,
		time.Now(),
	)
	if err != nil {
		return fmt.Errorf("upserting streak: %w", err)
	}
	return nil
}

// GetStreaks retrieves all streak records for a user
func (r *Repository) GetStreaks(ctx context.Context, userID string) (map[domain.StreakType]domain.StreakRecord, error) {
	query := `
		SELECT user_id, streak_type, current_streak, longest_streak, last_activity_date, updated_at
		FROM user_streaks
		WHERE user_id = $1
	`
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("getting streaks: %w", err)
	}
	defer rows.Close()

	streaks := make(map[domain.StreakType]domain.StreakRecord)
	for rows.Next() {
		var rec domain.StreakRecord
		err := rows.Scan(
			&rec.UserID,
			&rec.StreakType,
			&rec.CurrentStreak,
			&rec.LongestStreak,
			&rec.LastActivityDate,
			&rec.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning streak: %w", err)
		}
		rec.LastActivityDate = domain.Day(rec.LastActivityDate)
		streaks[rec.StreakType] = rec
	}
	return streaks, nil
}

// CreateAchievement inserts an achievement definition
func (r *Repository) CreateAchievement(ctx context.Context, a *domain.Achievement) error {
	reqJSON, err := json.Marshal(a.Requirement)
	if err != nil {
		return fmt.Errorf("marshaling requirement: %w", err)
	}

	query := `
		INSERT INTO achievements (id, title, description, category, icon, xp_reward, requirements, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (id)
		DO UPDATE SET
			title = $2, description = $3, category = $4, icon = $5,
			xp_reward = $6, requirements = $7, is_active = $8, updated_at = $10
	`
	createdAt := a.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	_, err = r.pool.Exec(ctx, query,
		a.ID,
		a.Title,
		a.Description,
		string(a.Category),
		a.Icon,
		a.XPReward,
		reqJSON,
		a.IsActive,
		createdAt,
		time.Now(),
	)
	if err != nil {
		return fmt.Errorf("creating achievement: %w", err)
	}
	return nil
}

// GetAchievement retrieves one achievement definition by ID
func (r *Repository) GetAchievement(ctx context.Context, id string) (*domain.Achievement, error) {
	query := `
		SELECT id, title, description, category, icon, xp_reward, requirements, is_active, created_at, updated_at
		FROM achievements
		WHERE id = $1
	`
	a, err := scanAchievement(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrAchievementNotFound
		}
		return nil, fmt.Errorf("getting achievement: %w", err)
	}
	return a, nil
}

// ListAchievements retrieves all achievement definitions
func (r *Repository) ListAchievements(ctx context.Context) ([]domain.Achievement, error) {
	query := `
		SELECT id, title, description, category, icon, xp_reward, requirements, is_active, created_at, updated_at
		FROM achievements
		ORDER BY created_at ASC
	`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing achievements: %w", err)
	}
	defer rows.Close()

	var achievements []domain.Achievement
	for rows.Next() {
		a, err := scanAchievement(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning achievement: %w", err)
		}
		achievements = append(achievements, *a)
	}
	return achievements, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAchievement(row rowScanner) (*domain.Achievement, error) {
	var a domain.Achievement
	var reqJSON []byte
	err := row.Scan(
		&a.ID,
		&a.Title,
		&a.Description,
		&a.Category,
		&a.Icon,
		&a.XPReward,
		&reqJSON,
		&a.IsActive,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(reqJSON, &a.Requirement); err != nil {
		return nil, fmt.Errorf("unmarshaling requirement: %w", err)
	}
	return &a, nil
}

// GetEarnedAchievements returns achievement ID to earned-at for a user
func (r *Repository) GetEarnedAchievements(ctx context.Context, userID string) (map[string]time.Time, error) {
	query := `SELECT achievement_id, earned_at FROM user_achievements WHERE user_id = $1`
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("getting earned achievements: %w", err)
	}
	defer rows.Close()

	earned := make(map[string]time.Time)
	for rows.Next() {
		var id string
		var at time.Time
		if err := rows.Scan(&id, &at); err != nil {
			return nil, fmt.Errorf("scanning earned achievement: %w", err)
		}
		earned[id] = at
	}
	return earned, nil
}

// GetEarnedAchievementsTx is GetEarnedAchievements within a transaction
func (r *Repository) GetEarnedAchievementsTx(ctx context.Context, tx pgx.Tx, userID string) (map[string]time.Time, error) {
	query := `SELECT achievement_id, earned_at FROM user_achievements WHERE user_id = $1`
	rows, err := tx.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("getting earned achievements: %w", err)
	}
	defer rows.Close()

	earned := make(map[string]time.Time)
	for rows.Next() {
		var id string
		var at time.Time
		if err := rows.Scan(&id, &at); err != nil {
			return nil, fmt.Errorf("scanning earned achievement: %w", err)
		}
		earned[id] = at
	}
	return earned, nil
}

// AwardAchievementTx records an earned achievement. Re-awards are ignored.
func (r *Repository) AwardAchievementTx(ctx context.Context, tx pgx.Tx, userID, achievementID string, earnedAt time.Time) error {
	query := `
		INSERT INTO user_achievements (user_id, achievement_id, earned_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, achievement_id) DO NOTHING
	`
	_, err := tx.Exec(ctx, query, userID, achievementID, earnedAt)
	if err != nil {
		return fmt.Errorf("awarding achievement: %w", err)
	}
	return nil
}

// CountAchievementHolders returns how many users hold each achievement.
// Achievements no one has earned are absent from the result.
func (r *Repository) CountAchievementHolders(ctx context.Context) (map[string]int64, error) {
	query := `
		SELECT achievement_id, COUNT(*)
		FROM user_achievements
		GROUP BY achievement_id
	`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("counting achievement holders: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int64)
	for rows.Next() {
		var id string
		var n int64
		if err := rows.Scan(&id, &n); err != nil {
			return nil, fmt.Errorf("scanning achievement holder count: %w", err)
		}
		counts[id] = n
	}
	return counts, nil
}

// GetUserStatsTx loads a user's statistics snapshot within a transaction.
// A missing row yields zero stats.
func (r *Repository) GetUserStatsTx(ctx context.Context, tx pgx.Tx, userID string) (*domain.UserStats, error) {
	var statsJSON []byte
	err := tx.QueryRow(ctx, `SELECT stats FROM user_stats WHERE user_id = $1`, userID).Scan(&statsJSON)
	if err != nil {
		if err == pgx.ErrNoRows {
			return &domain.UserStats{}, nil
		}
		return nil, fmt.Errorf("getting user stats: %w", err)
	}
	var stats domain.UserStats
	if err := json.Unmarshal(statsJSON, &stats); err != nil {
		return nil, fmt.Errorf("unmarshaling user stats: %w", err)
	}
	return &stats, nil
}

// GetUserStats loads a user's statistics snapshot
func (r *Repository) GetUserStats(ctx context.Context, userID string) (*domain.UserStats, error) {
	var statsJSON []byte
	err := r.pool.QueryRow(ctx, `SELECT stats FROM user_stats WHERE user_id = $1`, userID).Scan(&statsJSON)
	if err != nil {
		if err == pgx.ErrNoRows {
			return &domain.UserStats{}, nil
		}
		return nil, fmt.Errorf("getting user stats: %w", err)
	}
	var stats domain.UserStats
	if err := json.Unmarshal(statsJSON, &stats); err != nil {
		return nil, fmt.Errorf("unmarshaling user stats: %w", err)
	}
	return &stats, nil
}

// UpsertUserStatsTx writes back a user's statistics snapshot
func (r *Repository) UpsertUserStatsTx(ctx context.Context, tx pgx.Tx, userID string, stats *domain.UserStats) error {
	statsJSON, err := json.Marshal(stats)
	if err != nil {
		return fmt.Errorf("marshaling user stats: %w", err)
	}
	query := `
		INSERT INTO user_stats (user_id, stats, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id)
		DO UPDATE SET stats = $2, updated_at = $3
	`
	_, err = tx.Exec(ctx, query, userID, statsJSON, time.Now())
	if err != nil {
		return fmt.Errorf("upserting user stats: %w", err)
	}
	return nil
}

// IncrementLeaderboardScoreTx adds delta to a user's score in one
// (board, period, bucket) and returns the new score
func (r *Repository) IncrementLeaderboardScoreTx(ctx context.Context, tx pgx.Tx, boardType domain.LeaderboardType, period domain.Period, periodKey, userID string, delta int64) (int64, error) {
	query := `
		INSERT INTO leaderboard_scores (board_type, period, period_key, user_id, score, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (board_type, period, period_key, user_id)
		DO UPDATE SET score = leaderboard_scores.score + $5, updated_at = $6
		RETURNING score
	`
	var newScore int64
	err := tx.QueryRow(ctx, query, string(boardType), string(period), periodKey, userID, delta, time.Now()).Scan(&newScore)
	if err != nil {
		return 0, fmt.Errorf("incrementing leaderboard score: %w", err)
	}
	return newScore, nil
}

// SetLeaderboardScoreTx replaces a user's score in one (board, period, bucket)
func (r *Repository) SetLeaderboardScoreTx(ctx context.Context, tx pgx.Tx, boardType domain.LeaderboardType, period domain.Period, periodKey, userID string, score int64) error {
	query := `
		INSERT INTO leaderboard_scores (board_type, period, period_key, user_id, score, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (board_type, period, period_key, user_id)
		DO UPDATE SET score = $5, updated_at = $6
	`
	_, err := tx.Exec(ctx, query, string(boardType), string(period), periodKey, userID, score, time.Now())
	if err != nil {
		return fmt.Errorf("setting leaderboard score: %w", err)
	}
	return nil
}

// GetLeaderboardScores retrieves all scores for one (board, period, bucket),
// used by the rebuild worker
func (r *Repository) GetLeaderboardScores(ctx context.Context, boardType domain.LeaderboardType, period domain.Period, periodKey string) (map[string]int64, error) {
	query := `
		SELECT user_id, score
		FROM leaderboard_scores
		WHERE board_type = $1 AND period = $2 AND period_key = $3
	`
	rows, err := r.pool.Query(ctx, query, string(boardType), string(period), periodKey)
	if err != nil {
		return nil, fmt.Errorf("getting leaderboard scores: %w", err)
	}
	defer rows.Close()

	scores := make(map[string]int64)
	for rows.Next() {
		var userID string
		var score int64
		if err := rows.Scan(&userID, &score); err != nil {
			return nil, fmt.Errorf("scanning leaderboard score: %w", err)
		}
		scores[userID] = score
	}
	return scores, nil
}

// PruneLeaderboardScores deletes score rows from expired period buckets
func (r *Repository) PruneLeaderboardScores(ctx context.Context, period domain.Period, currentKey string) (int64, error) {
	query := `DELETE FROM leaderboard_scores WHERE period = $1 AND period_key <> $2`
	result, err := r.pool.Exec(ctx, query, string(period), currentKey)
	if err != nil {
		return 0, fmt.Errorf("pruning leaderboard scores: %w", err)
	}
	return result.RowsAffected(), nil
}

// BatchUpsertLeaderboardScores writes multiple scores efficiently
func (r *Repository) BatchUpsertLeaderboardScores(ctx context.Context, boardType domain.LeaderboardType, period domain.Period, periodKey string, scores map[string]int64) error {
	if len(scores) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	query := `
		INSERT INTO leaderboard_scores (board_type, period, period_key, user_id, score, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (board_type, period, period_key, user_id)
		DO UPDATE SET score = $5, updated_at = $6
	`
	now := time.Now()

	for userID, score := range scores {
		batch.Queue(query, string(boardType), string(period), periodKey, userID, score, now)
	}

	br := r.pool.SendBatch(ctx, batch)
	defer br.Close()

	for range scores {
		_, err := br.Exec()
		if err != nil {
			return fmt.Errorf("batch upserting leaderboard scores: %w", err)
		}
	}
	return nil
}
