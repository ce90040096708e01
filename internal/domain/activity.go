package domain

import "time"

// ActivityKind identifies the kind of XP-earning activity
type ActivityKind string

const (
	KindLessonCompletion  ActivityKind = "lesson_completion"
	KindModuleCompletion  ActivityKind = "module_completion"
	KindAssessmentPassed  ActivityKind = "assessment_passed"
	KindCommunityPost     ActivityKind = "community_post"
	KindDailyChallenge    ActivityKind = "daily_challenge"
	KindStreakMilestone   ActivityKind = "streak_milestone"
	KindAchievementEarned ActivityKind = "achievement_earned"
)

// ActivityMetadata carries the optional bonus and multiplier flags for an activity
type ActivityMetadata struct {
	PerfectScore         bool    `json:"perfect_score,omitempty"`
	IsFirstLesson        bool    `json:"is_first_lesson,omitempty"`
	IsWeekend            bool    `json:"is_weekend,omitempty"`
	IsLateNight          bool    `json:"is_late_night,omitempty"`
	StreakMultiplier     float64 `json:"streak_multiplier,omitempty"`
	DifficultyMultiplier float64 `json:"difficulty_multiplier,omitempty"`
}

// XPActivity is a single XP-earning activity as reported by a caller.
// BasePoints is supplied by caller context; a negative value falls back to
// the kind's standard award (validation rejects negatives before they reach
// the calculator on the request path).
type XPActivity struct {
	Kind       ActivityKind      `json:"kind"`
	BasePoints int               `json:"base_points"`
	Metadata   *ActivityMetadata `json:"metadata,omitempty"`
}

// ActivityEvent is the wire format for activity ingestion (HTTP and Kafka).
// EventID lets the orchestration layer deduplicate redelivered events.
type ActivityEvent struct {
	EventID    string            `json:"event_id"`
	UserID     string            `json:"user_id"`
	Kind       ActivityKind      `json:"kind"`
	BasePoints int               `json:"base_points"`
	Metadata   *ActivityMetadata `json:"metadata,omitempty"`
	Timestamp  time.Time         `json:"timestamp"`
}

// Activity converts the event payload to the engine's activity record
func (e *ActivityEvent) Activity() XPActivity {
	return XPActivity{
		Kind:       e.Kind,
		BasePoints: e.BasePoints,
		Metadata:   e.Metadata,
	}
}

// BatchActivitySubmission groups multiple activity events
type BatchActivitySubmission struct {
	Events []ActivityEvent `json:"events"`
}

// LevelInfo is derived from cumulative XP, never stored independently
type LevelInfo struct {
	Level              int `json:"level"`
	XPRequired         int `json:"xp_required"`
	XPTotal            int `json:"xp_total"`
	XPToNext           int `json:"xp_to_next"`
	ProgressPercentage int `json:"progress_percentage"`
}

// LevelUp reports a level transition between two XP totals
type LevelUp struct {
	LeveledUp bool `json:"leveled_up"`
	OldLevel  int  `json:"old_level,omitempty"`
	NewLevel  int  `json:"new_level,omitempty"`
}

// Profile is the persisted per-user gamification row
type Profile struct {
	UserID      string    `json:"user_id"`
	DisplayName string    `json:"display_name,omitempty"`
	AvatarURL   string    `json:"avatar_url,omitempty"`
	XP          int       `json:"xp"`
	Level       int       `json:"level"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// XPAward is one processed activity's XP outcome, as persisted in the
// event log
type XPAward struct {
	Kind     ActivityKind `json:"kind"`
	Points   int          `json:"points"`
	EarnedAt time.Time    `json:"earned_at"`
}

// XPBreakdown reports where a user's XP came from
type XPBreakdown struct {
	Total  int                  `json:"total"`
	ByKind map[ActivityKind]int `json:"by_kind"`
	Recent []XPAward            `json:"recent"`
}

// ActivityResult is what an activity submission produces once orchestrated
type ActivityResult struct {
	EventID         string        `json:"event_id"`
	UserID          string        `json:"user_id"`
	PointsAwarded   int           `json:"points_awarded"`
	LevelInfo       LevelInfo     `json:"level_info"`
	LevelUp         LevelUp       `json:"level_up"`
	Streak          *StreakRecord `json:"streak,omitempty"`
	NewAchievements []Achievement `json:"new_achievements,omitempty"`
	Duplicate       bool          `json:"duplicate,omitempty"`
}
