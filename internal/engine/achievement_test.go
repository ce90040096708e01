package engine_test

import (
	"testing"
	"time"

	"github.com/ailearn-gamification/internal/domain"
	"github.com/ailearn-gamification/internal/engine"
)

func TestEvaluateRequirement_ModuleCompletion(t *testing.T) {
	req := domain.Requirement{Type: domain.ReqModuleCompletion, Count: 5}

	met := engine.EvaluateRequirement(req, domain.UserStats{ModulesCompleted: 5})
	if !met.Met || met.Progress != 5 || met.MaxProgress != 5 {
		t.Errorf("5/5 modules = %+v", met)
	}

	notMet := engine.EvaluateRequirement(req, domain.UserStats{ModulesCompleted: 3})
	if notMet.Met || notMet.Progress != 3 || notMet.MaxProgress != 5 {
		t.Errorf("3/5 modules = %+v", notMet)
	}
}

func TestEvaluateRequirement_ProgressClamped(t *testing.T) {
	req := domain.Requirement{Type: domain.ReqLessonCompletion, Count: 10}
	res := engine.EvaluateRequirement(req, domain.UserStats{LessonsCompleted: 42})
	if !res.Met || res.Progress != 10 {
		t.Errorf("progress must not exceed target: %+v", res)
	}
}

func TestEvaluateRequirement_AllTypesMetAtThreshold(t *testing.T) {
	stats := domain.UserStats{
		Level:                  10,
		TotalXP:                5000,
		LessonsCompleted:       20,
		ModulesCompleted:       5,
		ModulesByCategory:      map[string]int{"fundamentals": 4},
		TotalModulesInCat:      map[string]int{"fundamentals": 4},
		ModulesByDifficulty:    map[int]int{3: 2},
		Streaks:                map[domain.StreakType]int{domain.StreakDailyLearning: 7},
		CommunityPosts:         10,
		LikesReceived:          50,
		DiscussionPosts:        15,
		CommentsMade:           30,
		PromptTemplates:        3,
		HighRatedTemplates:     2,
		AIModelsUsed:           4,
		PromptsCreated:         25,
		CodeLinesGenerated:     1000,
		BugsDebugged:           5,
		HighestAssessmentScore: 100,
		TotalTimeSpentSeconds:  36000, // 10 hours
		DailyChallengesDone:    7,
		WeekendLessons:         2,
		LateNightLessons:       1,
		DaysSinceSignup:        45,
		BetaFeaturesUsed:       1,
		FeedbackCount:          3,
		BugsReported:           1,
	}

	tests := []struct {
		name string
		req  domain.Requirement
	}{
		{"lesson_completion", domain.Requirement{Type: domain.ReqLessonCompletion, Count: 20}},
		{"module_completion", domain.Requirement{Type: domain.ReqModuleCompletion, Count: 5}},
		{"category_completion", domain.Requirement{Type: domain.ReqCategoryCompletion, Category: "fundamentals"}},
		{"difficulty_completion", domain.Requirement{Type: domain.ReqDifficultyCompletion, MinDifficulty: 3, Count: 2}},
		{"streak", domain.Requirement{Type: domain.ReqStreak, MinDays: 7}},
		{"community_post", domain.Requirement{Type: domain.ReqCommunityPost, Count: 10}},
		{"likes_received", domain.Requirement{Type: domain.ReqLikesReceived, Count: 50}},
		{"discussion_posts", domain.Requirement{Type: domain.ReqDiscussionPosts, Count: 15}},
		{"comments_made", domain.Requirement{Type: domain.ReqCommentsMade, Count: 30}},
		{"prompt_templates", domain.Requirement{Type: domain.ReqPromptTemplates, Count: 3}},
		{"prompt_templates rated", domain.Requirement{Type: domain.ReqPromptTemplates, Count: 2, MinRating: 4.5}},
		{"ai_models_used", domain.Requirement{Type: domain.ReqAIModelsUsed, Count: 4}},
		{"prompts_created", domain.Requirement{Type: domain.ReqPromptsCreated, Count: 25}},
		{"code_lines_generated", domain.Requirement{Type: domain.ReqCodeLinesGenerated, Count: 1000}},
		{"bugs_debugged", domain.Requirement{Type: domain.ReqBugsDebugged, Count: 5}},
		{"assessment_score", domain.Requirement{Type: domain.ReqAssessmentScore}},
		{"time_spent", domain.Requirement{Type: domain.ReqTimeSpent, Hours: 10}},
		{"level_reached", domain.Requirement{Type: domain.ReqLevelReached, Level: 10}},
		{"xp_earned", domain.Requirement{Type: domain.ReqXPEarned, Amount: 5000}},
		{"daily_challenges", domain.Requirement{Type: domain.ReqDailyChallenges, Count: 7}},
		{"weekend_learning", domain.Requirement{Type: domain.ReqWeekendLearning}},
		{"late_night_learning", domain.Requirement{Type: domain.ReqLateNightLearning}},
		{"early_user", domain.Requirement{Type: domain.ReqEarlyUser}},
		{"beta_participation", domain.Requirement{Type: domain.ReqBetaParticipation}},
		{"feedback_provided", domain.Requirement{Type: domain.ReqFeedbackProvided, Count: 3}},
		{"bug_reported", domain.Requirement{Type: domain.ReqBugReported}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			res := engine.EvaluateRequirement(tc.req, stats)
			if !res.Met {
				t.Errorf("expected met, got %+v", res)
			}
			if res.Progress < res.MaxProgress {
				t.Errorf("met result must report full progress: %+v", res)
			}
		})
	}
}

func TestEvaluateRequirement_TimeSpentRounding(t *testing.T) {
	req := domain.Requirement{Type: domain.ReqTimeSpent, Hours: 2}

	// 7199s rounds to 2 hours, 5300s rounds to 1
	met := engine.EvaluateRequirement(req, domain.UserStats{TotalTimeSpentSeconds: 7199})
	if !met.Met || met.Progress != 2 {
		t.Errorf("7199s = %+v, want met at 2h", met)
	}
	notMet := engine.EvaluateRequirement(req, domain.UserStats{TotalTimeSpentSeconds: 5300})
	if notMet.Met || notMet.Progress != 1 {
		t.Errorf("5300s = %+v, want 1h not met", notMet)
	}
}

func TestEvaluateRequirement_UnknownType(t *testing.T) {
	req := domain.Requirement{Type: "quantum_entanglement", Count: 3}
	res := engine.EvaluateRequirement(req, domain.UserStats{LessonsCompleted: 100})
	want := domain.RequirementResult{Met: false, Progress: 0, MaxProgress: 1}
	if res != want {
		t.Errorf("unknown type must degrade safely: %+v", res)
	}
}

func TestEvaluateRequirement_MetIffProgressReachesTarget(t *testing.T) {
	req := domain.Requirement{Type: domain.ReqCommunityPost, Count: 4}
	for posts := 0; posts <= 8; posts++ {
		res := engine.EvaluateRequirement(req, domain.UserStats{CommunityPosts: posts})
		if res.Met != (posts >= 4) {
			t.Errorf("posts=%d met=%v", posts, res.Met)
		}
	}
}

func testAchievements() []domain.Achievement {
	return []domain.Achievement{
		{
			ID: "first-module", Title: "First Module", Category: domain.CategoryLearning,
			XPReward: 75, IsActive: true,
			Requirement: domain.Requirement{Type: domain.ReqModuleCompletion, Count: 1},
		},
		{
			ID: "module-master", Title: "Module Master", Category: domain.CategoryLearning,
			XPReward: 200, IsActive: true,
			Requirement: domain.Requirement{Type: domain.ReqModuleCompletion, Count: 10},
		},
		{
			ID: "social", Title: "Conversation Starter", Category: domain.CategoryCommunity,
			XPReward: 50, IsActive: true,
			Requirement: domain.Requirement{Type: domain.ReqCommunityPost, Count: 5},
		},
		{
			ID: "retired", Title: "Retired Badge", Category: domain.CategoryMilestone,
			XPReward: 10, IsActive: false,
			Requirement: domain.Requirement{Type: domain.ReqLessonCompletion, Count: 1},
		},
	}
}

func TestAchievementsWithProgress(t *testing.T) {
	stats := domain.UserStats{ModulesCompleted: 9, CommunityPosts: 2}
	earnedAt := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	earned := map[string]time.Time{"first-module": earnedAt}

	progress := engine.AchievementsWithProgress(testAchievements(), stats, earned)

	if len(progress) != 3 {
		t.Fatalf("inactive achievements must be skipped, got %d entries", len(progress))
	}

	first := progress[0]
	if !first.Completed || first.EarnedAt == nil || !first.EarnedAt.Equal(earnedAt) {
		t.Errorf("earned achievement = %+v", first)
	}

	master := progress[1]
	if master.Completed || master.Progress != 9 || master.MaxProgress != 10 {
		t.Errorf("in-progress achievement = %+v", master)
	}
	if master.EarnedAt != nil {
		t.Errorf("unearned achievement must have no earned_at")
	}
}

func TestAchievementsWithProgress_EarnedStaysEarned(t *testing.T) {
	// Stats no longer satisfy the requirement but the badge was earned
	stats := domain.UserStats{ModulesCompleted: 0}
	earned := map[string]time.Time{"first-module": time.Now()}

	progress := engine.AchievementsWithProgress(testAchievements(), stats, earned)
	if !progress[0].Completed {
		t.Errorf("earned achievement lost its completed flag: %+v", progress[0])
	}
}

func TestSummarizeProgress(t *testing.T) {
	now := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)
	mk := func(id string, cat domain.AchievementCategory, progress, max int, completed bool, earned *time.Time) domain.AchievementProgress {
		return domain.AchievementProgress{
			AchievementID: id, Category: cat,
			Progress: progress, MaxProgress: max,
			Completed: completed, EarnedAt: earned,
		}
	}
	t1 := now.AddDate(0, 0, -3)
	t2 := now.AddDate(0, 0, -1)

	items := []domain.AchievementProgress{
		mk("a", domain.CategoryLearning, 1, 1, true, &t1),
		mk("b", domain.CategoryLearning, 2, 2, true, &t2),
		mk("c", domain.CategoryLearning, 8, 10, false, nil),
		mk("d", domain.CategoryCommunity, 1, 10, false, nil),
	}

	s := engine.SummarizeProgress(items)
	if s.TotalAchievements != 4 || s.CompletedAchievements != 2 || s.CompletionPercentage != 50 {
		t.Errorf("summary = %+v", s)
	}

	learning := s.ByCategory[domain.CategoryLearning]
	if learning.Total != 3 || learning.Completed != 2 || learning.Percentage != 67 {
		t.Errorf("learning category = %+v", learning)
	}

	if len(s.RecentAchievements) != 2 || s.RecentAchievements[0].AchievementID != "b" {
		t.Errorf("recent must be sorted newest-first: %+v", s.RecentAchievements)
	}

	if len(s.NearlyComplete) != 1 || s.NearlyComplete[0].AchievementID != "c" {
		t.Errorf("nearly complete = %+v (want only c at 8/10)", s.NearlyComplete)
	}
}

func TestNewlyEarned(t *testing.T) {
	got := engine.NewlyEarned([]string{"a", "b"}, []string{"a", "b", "c", "d"})
	if len(got) != 2 || got[0] != "c" || got[1] != "d" {
		t.Errorf("NewlyEarned = %v", got)
	}
	if got := engine.NewlyEarned(nil, nil); len(got) != 0 {
		t.Errorf("empty inputs = %v", got)
	}
}

func TestRecommendations(t *testing.T) {
	stats := domain.UserStats{ModulesCompleted: 9, CommunityPosts: 1}
	recs := engine.Recommendations(testAchievements(), stats, []string{"first-module"})

	if len(recs) != 2 {
		t.Fatalf("got %d recommendations, want 2", len(recs))
	}
	// module-master at 9/10 outranks the community badge at 1/5
	if recs[0].ID != "module-master" {
		t.Errorf("first recommendation = %s", recs[0].ID)
	}
}

func TestRarity(t *testing.T) {
	tests := []struct {
		rate float64
		want string
	}{
		{0.95, engine.RarityCommon},
		{0.65, engine.RarityUncommon},
		{0.45, engine.RarityRare},
		{0.25, engine.RarityEpic},
		{0.05, engine.RarityLegendary},
	}
	for _, tc := range tests {
		if got, _ := engine.Rarity(tc.rate); got != tc.want {
			t.Errorf("Rarity(%v) = %s, want %s", tc.rate, got, tc.want)
		}
	}
}

func TestAchievementMilestones(t *testing.T) {
	ms := engine.AchievementMilestones(7)
	if !ms[0].Achieved || !ms[1].Achieved {
		t.Errorf("1 and 5 milestones should be achieved at 7 badges")
	}
	if ms[2].Achieved {
		t.Errorf("10 milestone not yet achieved at 7 badges")
	}
	if !ms[2].Next {
		t.Errorf("10 should be flagged as the next milestone")
	}
	if ms[3].Next {
		t.Errorf("25 must not be flagged next while 10 is pending")
	}
}
