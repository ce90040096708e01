package engine

import (
	"math"
	"sort"
	"time"

	"github.com/ailearn-gamification/internal/domain"
)

// EvaluateRequirement checks a single requirement against a statistics
// snapshot. The switch covers every known requirement type; an unknown type
// degrades to a safe not-met result so that admin-authored definitions can
// introduce new kinds before the evaluator catches up. Reported progress is
// clamped to the target, it is never shown exceeding it.
func EvaluateRequirement(req domain.Requirement, stats domain.UserStats) domain.RequirementResult {
	progress := 0
	maxProgress := req.Count
	if maxProgress <= 0 {
		maxProgress = 1
	}

	switch req.Type {
	case domain.ReqLessonCompletion:
		progress = stats.LessonsCompleted

	case domain.ReqModuleCompletion:
		progress = stats.ModulesCompleted

	case domain.ReqCategoryCompletion:
		progress = stats.ModulesByCategory[req.Category]
		maxProgress = stats.TotalModulesInCat[req.Category]
		if maxProgress <= 0 {
			maxProgress = 1
		}

	case domain.ReqDifficultyCompletion:
		difficulty := req.MinDifficulty
		if difficulty <= 0 {
			difficulty = 1
		}
		progress = stats.ModulesByDifficulty[difficulty]

	case domain.ReqStreak:
		streakType := domain.StreakType(req.Category)
		if streakType == "" {
			streakType = domain.StreakDailyLearning
		}
		progress = stats.Streaks[streakType]
		maxProgress = req.MinDays
		if maxProgress <= 0 {
			maxProgress = 1
		}

	case domain.ReqCommunityPost:
		progress = stats.CommunityPosts

	case domain.ReqLikesReceived:
		progress = stats.LikesReceived

	case domain.ReqDiscussionPosts:
		progress = stats.DiscussionPosts

	case domain.ReqCommentsMade:
		progress = stats.CommentsMade

	case domain.ReqPromptTemplates:
		progress = stats.PromptTemplates
		if req.MinRating > 0 {
			progress = stats.HighRatedTemplates
		}

	case domain.ReqAIModelsUsed:
		progress = stats.AIModelsUsed

	case domain.ReqPromptsCreated:
		progress = stats.PromptsCreated

	case domain.ReqCodeLinesGenerated:
		progress = stats.CodeLinesGenerated

	case domain.ReqBugsDebugged:
		progress = stats.BugsDebugged

	case domain.ReqAssessmentScore:
		progress = stats.HighestAssessmentScore
		maxProgress = req.MinPercentage
		if maxProgress <= 0 {
			maxProgress = 100
		}

	case domain.ReqTimeSpent:
		progress = int(math.Round(float64(stats.TotalTimeSpentSeconds) / 3600))
		maxProgress = req.Hours
		if maxProgress <= 0 {
			maxProgress = 1
		}

	case domain.ReqLevelReached:
		progress = stats.Level
		maxProgress = req.Level
		if maxProgress <= 0 {
			maxProgress = 1
		}

	case domain.ReqXPEarned:
		progress = stats.TotalXP
		maxProgress = req.Amount
		if maxProgress <= 0 {
			maxProgress = 1
		}

	case domain.ReqDailyChallenges:
		progress = stats.DailyChallengesDone

	case domain.ReqWeekendLearning:
		progress = stats.WeekendLessons
		maxProgress = 1

	case domain.ReqLateNightLearning:
		progress = stats.LateNightLessons
		maxProgress = 1

	case domain.ReqEarlyUser:
		progress = stats.DaysSinceSignup
		maxProgress = 30

	case domain.ReqBetaParticipation:
		progress = stats.BetaFeaturesUsed
		maxProgress = 1

	case domain.ReqFeedbackProvided:
		progress = stats.FeedbackCount

	case domain.ReqBugReported:
		progress = stats.BugsReported
		maxProgress = 1

	default:
		// Unknown requirement kind: degrade safely, never met
		return domain.RequirementResult{Met: false, Progress: 0, MaxProgress: 1}
	}

	met := progress >= maxProgress
	if progress > maxProgress {
		progress = maxProgress
	}
	if progress < 0 {
		progress = 0
	}
	return domain.RequirementResult{Met: met, Progress: progress, MaxProgress: maxProgress}
}

// AchievementsWithProgress evaluates every active achievement against the
// snapshot. The earned map carries true earned-at timestamps loaded from
// storage; the engine never invents one.
func AchievementsWithProgress(
	achievements []domain.Achievement,
	stats domain.UserStats,
	earned map[string]time.Time,
) []domain.AchievementProgress {
	out := make([]domain.AchievementProgress, 0, len(achievements))
	for _, a := range achievements {
		if !a.IsActive {
			continue
		}
		res := EvaluateRequirement(a.Requirement, stats)

		p := domain.AchievementProgress{
			AchievementID: a.ID,
			Title:         a.Title,
			Description:   a.Description,
			Category:      a.Category,
			Icon:          a.Icon,
			XPReward:      a.XPReward,
			Progress:      res.Progress,
			MaxProgress:   res.MaxProgress,
			Completed:     res.Met,
		}
		if at, ok := earned[a.ID]; ok {
			// An earned achievement stays earned even if the snapshot no
			// longer satisfies it.
			t := at
			p.EarnedAt = &t
			p.Completed = true
		}
		out = append(out, p)
	}
	return out
}

// SummarizeProgress builds the dashboard aggregates over evaluated
// achievements: overall completion, per-category breakdown, the five most
// recently earned, and the five closest to completion.
func SummarizeProgress(achievements []domain.AchievementProgress) domain.ProgressSummary {
	summary := domain.ProgressSummary{
		TotalAchievements: len(achievements),
		ByCategory:        make(map[domain.AchievementCategory]domain.CategoryProgress),
	}

	for _, a := range achievements {
		cat := summary.ByCategory[a.Category]
		cat.Total++
		if a.Completed {
			cat.Completed++
			summary.CompletedAchievements++
		}
		cat.Percentage = int(math.Round(float64(cat.Completed) / float64(cat.Total) * 100))
		summary.ByCategory[a.Category] = cat
	}
	if summary.TotalAchievements > 0 {
		summary.CompletionPercentage = int(math.Round(
			float64(summary.CompletedAchievements) / float64(summary.TotalAchievements) * 100))
	}

	var recent []domain.AchievementProgress
	for _, a := range achievements {
		if a.Completed && a.EarnedAt != nil {
			recent = append(recent, a)
		}
	}
	sort.SliceStable(recent, func(i, j int) bool {
		return recent[i].EarnedAt.After(*recent[j].EarnedAt)
	})
	if len(recent) > 5 {
		recent = recent[:5]
	}
	summary.RecentAchievements = recent

	var nearly []domain.AchievementProgress
	for _, a := range achievements {
		if !a.Completed && float64(a.Progress) >= 0.8*float64(a.MaxProgress) {
			nearly = append(nearly, a)
		}
	}
	sort.SliceStable(nearly, func(i, j int) bool {
		return nearly[i].Progress > nearly[j].Progress
	})
	if len(nearly) > 5 {
		nearly = nearly[:5]
	}
	summary.NearlyComplete = nearly

	return summary
}

// NewlyEarned returns the achievement ids present in newIDs but not oldIDs
func NewlyEarned(oldIDs, newIDs []string) []string {
	seen := make(map[string]bool, len(oldIDs))
	for _, id := range oldIDs {
		seen[id] = true
	}
	var out []string
	for _, id := range newIDs {
		if !seen[id] {
			out = append(out, id)
		}
	}
	return out
}

// Recommendations picks up to five unearned achievements the user is
// closest to, ordered by current progress.
func Recommendations(
	achievements []domain.Achievement,
	stats domain.UserStats,
	earnedIDs []string,
) []domain.Achievement {
	earned := make(map[string]bool, len(earnedIDs))
	for _, id := range earnedIDs {
		earned[id] = true
	}

	type candidate struct {
		achievement domain.Achievement
		progress    int
	}
	var candidates []candidate
	for _, a := range achievements {
		if !a.IsActive || earned[a.ID] {
			continue
		}
		res := EvaluateRequirement(a.Requirement, stats)
		if res.Progress > 0 {
			candidates = append(candidates, candidate{a, res.Progress})
		}
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].progress > candidates[j].progress
	})
	if len(candidates) > 5 {
		candidates = candidates[:5]
	}

	out := make([]domain.Achievement, len(candidates))
	for i, c := range candidates {
		out[i] = c.achievement
	}
	return out
}

// Rarity tiers, from most to least common
const (
	RarityCommon    = "common"
	RarityUncommon  = "uncommon"
	RarityRare      = "rare"
	RarityEpic      = "epic"
	RarityLegendary = "legendary"
)

// Rarity buckets an achievement by how many users have completed it.
// completionRate is the fraction of users holding it, in [0,1].
func Rarity(completionRate float64) (rarity string, percentage int) {
	percentage = int(math.Round(completionRate * 100))
	switch {
	case percentage >= 80:
		return RarityCommon, percentage
	case percentage >= 60:
		return RarityUncommon, percentage
	case percentage >= 40:
		return RarityRare, percentage
	case percentage >= 20:
		return RarityEpic, percentage
	default:
		return RarityLegendary, percentage
	}
}

// AchievementMilestone is one badge-count target
type AchievementMilestone struct {
	Milestone   int    `json:"milestone"`
	Achieved    bool   `json:"achieved"`
	Next        bool   `json:"next"`
	Description string `json:"description"`
}

var achievementMilestones = []struct {
	count int
	desc  string
}{
	{1, "First Achievement"},
	{5, "Achievement Collector"},
	{10, "Achievement Hunter"},
	{25, "Achievement Master"},
	{50, "Achievement Legend"},
	{100, "Achievement God"},
}

// AchievementMilestones reports the badge-count ladder, flagging the next
// unreached milestone.
func AchievementMilestones(completedCount int) []AchievementMilestone {
	out := make([]AchievementMilestone, len(achievementMilestones))
	for i, m := range achievementMilestones {
		next := completedCount < m.count &&
			(i == 0 || completedCount >= achievementMilestones[i-1].count)
		out[i] = AchievementMilestone{
			Milestone:   m.count,
			Achieved:    completedCount >= m.count,
			Next:        next,
			Description: m.desc,
		}
	}
	return out
}
