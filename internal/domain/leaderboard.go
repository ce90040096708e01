package domain

import (
	"fmt"
	"time"
)

// LeaderboardType selects which metric a leaderboard ranks
type LeaderboardType string

const (
	LeaderboardXP            LeaderboardType = "xp"
	LeaderboardStreak        LeaderboardType = "streak"
	LeaderboardModules       LeaderboardType = "modules_completed"
	LeaderboardContributions LeaderboardType = "community_contributions"
)

// ValidLeaderboardType reports whether t is a known leaderboard metric
func ValidLeaderboardType(t LeaderboardType) bool {
	switch t {
	case LeaderboardXP, LeaderboardStreak, LeaderboardModules, LeaderboardContributions:
		return true
	}
	return false
}

// Period is the time window a leaderboard covers
type Period string

const (
	PeriodDaily   Period = "daily"
	PeriodWeekly  Period = "weekly"
	PeriodMonthly Period = "monthly"
	PeriodAllTime Period = "all_time"
)

// ValidPeriod reports whether p is a known leaderboard period
func ValidPeriod(p Period) bool {
	switch p {
	case PeriodDaily, PeriodWeekly, PeriodMonthly, PeriodAllTime:
		return true
	}
	return false
}

// AllPeriods lists every period a score is written under
func AllPeriods() []Period {
	return []Period{PeriodDaily, PeriodWeekly, PeriodMonthly, PeriodAllTime}
}

// LeaderboardEntry is one ranked row of a (type, period) view. Rank is
// 1-based and dense: ties get distinct consecutive ranks in input order.
// The metric-specific fields mirror Score for rendering; ranking always
// uses Score.
type LeaderboardEntry struct {
	Rank                   int    `json:"rank"`
	UserID                 string `json:"user_id"`
	DisplayName            string `json:"display_name,omitempty"`
	AvatarURL              string `json:"avatar_url,omitempty"`
	Score                  int64  `json:"score"`
	XP                     int64  `json:"xp,omitempty"`
	StreakDays             int64  `json:"streak_days,omitempty"`
	ModulesCompleted       int64  `json:"modules_completed,omitempty"`
	CommunityContributions int64  `json:"community_contributions,omitempty"`
}

// LeaderboardView is the list/grid response: top-N plus the requesting
// user's own row, which may fall outside the slice.
type LeaderboardView struct {
	Type       LeaderboardType    `json:"type"`
	Period     Period             `json:"period"`
	Entries    []LeaderboardEntry `json:"entries"`
	UserEntry  *LeaderboardEntry  `json:"user_entry,omitempty"`
	TotalUsers int64              `json:"total_users"`
	UpdatedAt  time.Time          `json:"updated_at"`
}

// PeriodKey returns the bucket key a score written at t belongs to for the
// given period. All-time scores share a single bucket.
func PeriodKey(p Period, t time.Time) string {
	t = t.UTC()
	switch p {
	case PeriodDaily:
		return t.Format("2006-01-02")
	case PeriodWeekly:
		year, week := t.ISOWeek()
		return fmt.Sprintf("%04d-W%02d", year, week)
	case PeriodMonthly:
		return t.Format("2006-01")
	default:
		return "all"
	}
}
