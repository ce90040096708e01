package service

import (
	"context"

	"github.com/ailearn-gamification/internal/domain"
)

// DefaultAchievements is the built-in badge catalog. Deployments can extend
// or replace it through the achievements API.
func DefaultAchievements() []domain.Achievement {
	return []domain.Achievement{
		{
			ID:          "first-lesson",
			Title:       "First Steps",
			Description: "Complete your first lesson",
			Category:    domain.CategoryLearning,
			Icon:        "book-open",
			XPReward:    50,
			Requirement: domain.Requirement{Type: domain.ReqLessonCompletion, Count: 1},
			IsActive:    true,
		},
		{
			ID:          "lesson-marathon",
			Title:       "Lesson Marathon",
			Description: "Complete 50 lessons",
			Category:    domain.CategoryLearning,
			Icon:        "book-open",
			XPReward:    250,
			Requirement: domain.Requirement{Type: domain.ReqLessonCompletion, Count: 50},
			IsActive:    true,
		},
		{
			ID:          "module-graduate",
			Title:       "Module Graduate",
			Description: "Complete 5 modules",
			Category:    domain.CategoryLearning,
			Icon:        "graduation-cap",
			XPReward:    300,
			Requirement: domain.Requirement{Type: domain.ReqModuleCompletion, Count: 5},
			IsActive:    true,
		},
		{
			ID:          "week-streak",
			Title:       "Consistent Learner",
			Description: "Keep a 7-day learning streak",
			Category:    domain.CategoryMilestone,
			Icon:        "flame",
			XPReward:    150,
			Requirement: domain.Requirement{Type: domain.ReqStreak, MinDays: 7},
			IsActive:    true,
		},
		{
			ID:          "month-streak",
			Title:       "Unstoppable",
			Description: "Keep a 30-day learning streak",
			Category:    domain.CategoryMilestone,
			Icon:        "flame",
			XPReward:    500,
			Requirement: domain.Requirement{Type: domain.ReqStreak, MinDays: 30},
			IsActive:    true,
		},
		{
			ID:          "first-post",
			Title:       "Breaking the Ice",
			Description: "Make your first community post",
			Category:    domain.CategoryCommunity,
			Icon:        "users",
			XPReward:    50,
			Requirement: domain.Requirement{Type: domain.ReqCommunityPost, Count: 1},
			IsActive:    true,
		},
		{
			ID:          "community-voice",
			Title:       "Community Voice",
			Description: "Make 25 community posts",
			Category:    domain.CategoryCommunity,
			Icon:        "users",
			XPReward:    200,
			Requirement: domain.Requirement{Type: domain.ReqCommunityPost, Count: 25},
			IsActive:    true,
		},
		{
			ID:          "well-liked",
			Title:       "Well Liked",
			Description: "Receive 50 likes on your posts",
			Category:    domain.CategoryCommunity,
			Icon:        "heart",
			XPReward:    200,
			Requirement: domain.Requirement{Type: domain.ReqLikesReceived, Count: 50},
			IsActive:    true,
		},
		{
			ID:          "model-explorer",
			Title:       "Model Explorer",
			Description: "Try 3 different AI models in the playground",
			Category:    domain.CategoryTechnical,
			Icon:        "code",
			XPReward:    150,
			Requirement: domain.Requirement{Type: domain.ReqAIModelsUsed, Count: 3},
			IsActive:    true,
		},
		{
			ID:          "prompt-craftsman",
			Title:       "Prompt Craftsman",
			Description: "Create 100 prompts",
			Category:    domain.CategoryTechnical,
			Icon:        "code",
			XPReward:    300,
			Requirement: domain.Requirement{Type: domain.ReqPromptsCreated, Count: 100},
			IsActive:    true,
		},
		{
			ID:          "perfect-score",
			Title:       "Perfectionist",
			Description: "Score 100% on an assessment",
			Category:    domain.CategoryLearning,
			Icon:        "trophy",
			XPReward:    200,
			Requirement: domain.Requirement{Type: domain.ReqAssessmentScore, MinPercentage: 100},
			IsActive:    true,
		},
		{
			ID:          "dedicated-hours",
			Title:       "Dedicated",
			Description: "Spend 24 hours learning",
			Category:    domain.CategoryMilestone,
			Icon:        "clock",
			XPReward:    250,
			Requirement: domain.Requirement{Type: domain.ReqTimeSpent, Hours: 24},
			IsActive:    true,
		},
		{
			ID:          "level-ten",
			Title:       "Double Digits",
			Description: "Reach level 10",
			Category:    domain.CategoryMilestone,
			Icon:        "trophy",
			XPReward:    300,
			Requirement: domain.Requirement{Type: domain.ReqLevelReached, Level: 10},
			IsActive:    true,
		},
		{
			ID:          "challenge-regular",
			Title:       "Challenge Regular",
			Description: "Complete 10 daily challenges",
			Category:    domain.CategoryLearning,
			Icon:        "target",
			XPReward:    200,
			Requirement: domain.Requirement{Type: domain.ReqDailyChallenges, Count: 10},
			IsActive:    true,
		},
		{
			ID:          "weekend-warrior",
			Title:       "Weekend Warrior",
			Description: "Complete a lesson on a weekend",
			Category:    domain.CategoryMilestone,
			Icon:        "calendar",
			XPReward:    100,
			Requirement: domain.Requirement{Type: domain.ReqWeekendLearning},
			IsActive:    true,
		},
		{
			ID:          "night-owl",
			Title:       "Night Owl",
			Description: "Complete a lesson late at night",
			Category:    domain.CategoryMilestone,
			Icon:        "moon",
			XPReward:    100,
			Requirement: domain.Requirement{Type: domain.ReqLateNightLearning},
			IsActive:    true,
		},
	}
}

// SeedAchievements upserts the built-in catalog into storage
func (s *GamificationService) SeedAchievements(ctx context.Context) error {
	for _, a := range DefaultAchievements() {
		achievement := a
		if err := s.CreateAchievement(ctx, &achievement); err != nil {
			return err
		}
	}
	s.logger.Info("achievement catalog seeded", "count", len(DefaultAchievements()))
	return nil
}
