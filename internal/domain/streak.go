package domain

import "time"

// StreakType identifies which cadence a streak counts
type StreakType string

const (
	StreakDailyLearning     StreakType = "daily_learning"
	StreakModuleCompletion  StreakType = "module_completion"
	StreakCommunityActivity StreakType = "community_activity"
)

// StreakRecord is the persisted per-(user, type) streak state.
// LastActivityDate is day-granularity: always midnight UTC.
// LongestStreak only ever moves as max(longest, current).
type StreakRecord struct {
	UserID           string     `json:"user_id"`
	StreakType       StreakType `json:"streak_type"`
	CurrentStreak    int        `json:"current_streak"`
	LongestStreak    int        `json:"longest_streak"`
	LastActivityDate time.Time  `json:"last_activity_date"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// Day truncates a timestamp to its UTC calendar day
func Day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
