package domain

import "time"

// AchievementCategory groups achievements for display and summary
type AchievementCategory string

const (
	CategoryLearning  AchievementCategory = "learning"
	CategoryCommunity AchievementCategory = "community"
	CategoryTechnical AchievementCategory = "technical"
	CategoryMilestone AchievementCategory = "milestone"
)

// RequirementType is the closed set of requirement kinds the evaluator knows.
// Requirements are admin-authored data, so decoding stays tolerant: a type
// outside this set still round-trips and evaluates to a safe not-met result.
type RequirementType string

const (
	ReqLessonCompletion     RequirementType = "lesson_completion"
	ReqModuleCompletion     RequirementType = "module_completion"
	ReqCategoryCompletion   RequirementType = "category_completion"
	ReqDifficultyCompletion RequirementType = "difficulty_completion"
	ReqStreak               RequirementType = "streak"
	ReqCommunityPost        RequirementType = "community_post"
	ReqLikesReceived        RequirementType = "likes_received"
	ReqDiscussionPosts      RequirementType = "discussion_posts"
	ReqCommentsMade         RequirementType = "comments_made"
	ReqPromptTemplates      RequirementType = "prompt_templates"
	ReqAIModelsUsed         RequirementType = "ai_models_used"
	ReqPromptsCreated       RequirementType = "prompts_created"
	ReqCodeLinesGenerated   RequirementType = "code_lines_generated"
	ReqBugsDebugged         RequirementType = "bugs_debugged"
	ReqAssessmentScore      RequirementType = "assessment_score"
	ReqTimeSpent            RequirementType = "time_spent"
	ReqLevelReached         RequirementType = "level_reached"
	ReqXPEarned             RequirementType = "xp_earned"
	ReqDailyChallenges      RequirementType = "daily_challenges"
	ReqWeekendLearning      RequirementType = "weekend_learning"
	ReqLateNightLearning    RequirementType = "late_night_learning"
	ReqEarlyUser            RequirementType = "early_user"
	ReqBetaParticipation    RequirementType = "beta_participation"
	ReqFeedbackProvided     RequirementType = "feedback_provided"
	ReqBugReported          RequirementType = "bug_reported"
)

// Requirement is the declarative rule attached to an achievement. Each type
// consumes only the fields it needs; the rest stay zero.
type Requirement struct {
	Type          RequirementType `json:"type"`
	Count         int             `json:"count,omitempty"`
	Category      string          `json:"category,omitempty"`
	MinDifficulty int             `json:"min_difficulty,omitempty"`
	MinPercentage int             `json:"min_percentage,omitempty"`
	MinDays       int             `json:"min_days,omitempty"`
	MinRating     float64         `json:"min_rating,omitempty"`
	Hours         int             `json:"hours,omitempty"`
	Level         int             `json:"level,omitempty"`
	Amount        int             `json:"amount,omitempty"`
}

// Achievement is a static, admin-defined badge definition
type Achievement struct {
	ID          string              `json:"id"`
	Title       string              `json:"title"`
	Description string              `json:"description"`
	Category    AchievementCategory `json:"category"`
	Icon        string              `json:"icon,omitempty"`
	XPReward    int                 `json:"xp_reward"`
	Requirement Requirement         `json:"requirements"`
	IsActive    bool                `json:"is_active"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`
}

// RequirementResult is the outcome of evaluating one requirement
type RequirementResult struct {
	Met         bool `json:"met"`
	Progress    int  `json:"progress"`
	MaxProgress int  `json:"max_progress"`
}

// AchievementProgress is the derived per-(user, achievement) view
type AchievementProgress struct {
	AchievementID string              `json:"achievement_id"`
	Title         string              `json:"title"`
	Description   string              `json:"description"`
	Category      AchievementCategory `json:"category"`
	Icon          string              `json:"icon,omitempty"`
	XPReward      int                 `json:"xp_reward"`
	Progress      int                 `json:"progress"`
	MaxProgress   int                 `json:"max_progress"`
	Completed     bool                `json:"completed"`
	EarnedAt      *time.Time          `json:"earned_at,omitempty"`
}

// CategoryProgress summarizes completion within one category
type CategoryProgress struct {
	Total      int `json:"total"`
	Completed  int `json:"completed"`
	Percentage int `json:"percentage"`
}

// ProgressSummary is the dashboard view over all achievements
type ProgressSummary struct {
	TotalAchievements     int                                      `json:"total_achievements"`
	CompletedAchievements int                                      `json:"completed_achievements"`
	CompletionPercentage  int                                      `json:"completion_percentage"`
	ByCategory            map[AchievementCategory]CategoryProgress `json:"by_category"`
	RecentAchievements    []AchievementProgress                    `json:"recent_achievements"`
	NearlyComplete        []AchievementProgress                    `json:"nearly_complete"`
}

// UserStats is the flat statistics snapshot the evaluator reads from.
// The orchestration layer assembles it from storage; the evaluator never
// queries anything itself.
type UserStats struct {
	Level                  int                `json:"level"`
	TotalXP                int                `json:"total_xp"`
	LessonsCompleted       int                `json:"lessons_completed"`
	ModulesCompleted       int                `json:"modules_completed"`
	ModulesByCategory      map[string]int     `json:"modules_by_category,omitempty"`
	TotalModulesInCat      map[string]int     `json:"total_modules_in_category,omitempty"`
	ModulesByDifficulty    map[int]int        `json:"modules_by_difficulty,omitempty"`
	Streaks                map[StreakType]int `json:"streaks,omitempty"`
	CommunityPosts         int                `json:"community_posts"`
	LikesReceived          int                `json:"likes_received"`
	DiscussionPosts        int                `json:"discussion_posts"`
	CommentsMade           int                `json:"comments_made"`
	PromptTemplates        int                `json:"prompt_templates"`
	HighRatedTemplates     int                `json:"high_rated_templates"`
	AIModelsUsed           int                `json:"ai_models_used"`
	AIModels               map[string]int     `json:"ai_models,omitempty"`
	PromptsCreated         int                `json:"prompts_created"`
	CodeLinesGenerated     int                `json:"code_lines_generated"`
	BugsDebugged           int                `json:"bugs_debugged"`
	HighestAssessmentScore int                `json:"highest_assessment_score"`
	TotalTimeSpentSeconds  int                `json:"total_time_spent"`
	DailyChallengesDone    int                `json:"daily_challenges_completed"`
	WeekendLessons         int                `json:"weekend_lessons"`
	LateNightLessons       int                `json:"late_night_lessons"`
	DaysSinceSignup        int                `json:"days_since_signup"`
	BetaFeaturesUsed       int                `json:"beta_features_used"`
	FeedbackCount          int                `json:"feedback_count"`
	BugsReported           int                `json:"bugs_reported"`
}
