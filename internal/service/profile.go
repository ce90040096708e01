package service

import (
	"context"

	"github.com/ailearn-gamification/internal/domain"
	"github.com/ailearn-gamification/internal/engine"
)

// ProfileView is the profile read model: stored fields plus everything
// derived from cumulative XP
type ProfileView struct {
	Profile     domain.Profile                            `json:"profile"`
	LevelInfo   domain.LevelInfo                          `json:"level_info"`
	Rewards     []string                                  `json:"rewards"`
	Milestones  []engine.XPMilestone                      `json:"milestones"`
	XPBreakdown domain.XPBreakdown                        `json:"xp_breakdown"`
	Streaks     map[domain.StreakType]domain.StreakRecord `json:"streaks"`
}

// xpBreakdownWindow bounds how many recent awards feed the profile's XP
// breakdown
const xpBreakdownWindow = 500

// GetProfile returns a user's profile with derived level information
func (s *GamificationService) GetProfile(ctx context.Context, userID string) (*ProfileView, error) {
	profile, err := s.repo.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	streaks, err := s.repo.GetStreaks(ctx, userID)
	if err != nil {
		return nil, err
	}

	awards, err := s.repo.ListXPAwards(ctx, userID, xpBreakdownWindow)
	if err != nil {
		return nil, err
	}

	return &ProfileView{
		Profile:     *profile,
		LevelInfo:   engine.LevelFromXP(profile.XP),
		Rewards:     engine.LevelRewards(profile.Level),
		Milestones:  engine.XPMilestones(profile.XP),
		XPBreakdown: engine.XPBreakdown(awards),
		Streaks:     streaks,
	}, nil
}

// UpdateProfileInfo updates a user's display fields and refreshes the cache
func (s *GamificationService) UpdateProfileInfo(ctx context.Context, userID, displayName, avatarURL string) error {
	if err := s.repo.UpdateProfileInfo(ctx, userID, displayName, avatarURL); err != nil {
		return err
	}
	if err := s.cache.SetUserInfo(ctx, userID, displayName, avatarURL); err != nil {
		s.logger.Warn("failed to cache user info", "user_id", userID, "error", err)
	}
	return nil
}

// GetStreaks returns all streak records for a user
func (s *GamificationService) GetStreaks(ctx context.Context, userID string) (map[domain.StreakType]domain.StreakRecord, error) {
	return s.repo.GetStreaks(ctx, userID)
}

// GetAchievements returns every active achievement evaluated against the
// user's current statistics
func (s *GamificationService) GetAchievements(ctx context.Context, userID string) ([]domain.AchievementProgress, error) {
	achievements, err := s.repo.ListAchievements(ctx)
	if err != nil {
		return nil, err
	}
	stats, err := s.repo.GetUserStats(ctx, userID)
	if err != nil {
		return nil, err
	}
	earned, err := s.repo.GetEarnedAchievements(ctx, userID)
	if err != nil {
		return nil, err
	}
	return engine.AchievementsWithProgress(achievements, *stats, earned), nil
}

// AchievementSummaryView extends the progress aggregates with the
// badge-count ladder and per-achievement rarity
type AchievementSummaryView struct {
	domain.ProgressSummary
	Milestones []engine.AchievementMilestone `json:"milestones"`
	Rarity     map[string]RarityInfo         `json:"rarity"`
}

// RarityInfo reports how widely held one achievement is
type RarityInfo struct {
	Tier             string `json:"tier"`
	EarnedPercentage int    `json:"earned_percentage"`
}

// GetProgressSummary returns the achievement dashboard aggregates
func (s *GamificationService) GetProgressSummary(ctx context.Context, userID string) (*AchievementSummaryView, error) {
	evaluated, err := s.GetAchievements(ctx, userID)
	if err != nil {
		return nil, err
	}
	summary := engine.SummarizeProgress(evaluated)

	holders, err := s.repo.CountAchievementHolders(ctx)
	if err != nil {
		return nil, err
	}
	totalUsers, err := s.repo.CountProfiles(ctx)
	if err != nil {
		return nil, err
	}

	return &AchievementSummaryView{
		ProgressSummary: summary,
		Milestones:      engine.AchievementMilestones(summary.CompletedAchievements),
		Rarity:          rarityByAchievement(evaluated, holders, totalUsers),
	}, nil
}

// rarityByAchievement buckets every achievement by the fraction of users
// holding it. With no users registered yet everything reads as legendary.
func rarityByAchievement(evaluated []domain.AchievementProgress, holders map[string]int64, totalUsers int64) map[string]RarityInfo {
	out := make(map[string]RarityInfo, len(evaluated))
	for _, a := range evaluated {
		rate := 0.0
		if totalUsers > 0 {
			rate = float64(holders[a.AchievementID]) / float64(totalUsers)
		}
		tier, pct := engine.Rarity(rate)
		out[a.AchievementID] = RarityInfo{Tier: tier, EarnedPercentage: pct}
	}
	return out
}

// GetRecommendations returns the unearned achievements a user is closest to
func (s *GamificationService) GetRecommendations(ctx context.Context, userID string) ([]domain.Achievement, error) {
	achievements, err := s.repo.ListAchievements(ctx)
	if err != nil {
		return nil, err
	}
	stats, err := s.repo.GetUserStats(ctx, userID)
	if err != nil {
		return nil, err
	}
	earned, err := s.repo.GetEarnedAchievements(ctx, userID)
	if err != nil {
		return nil, err
	}
	earnedIDs := make([]string, 0, len(earned))
	for id := range earned {
		earnedIDs = append(earnedIDs, id)
	}
	return engine.Recommendations(achievements, *stats, earnedIDs), nil
}

// DailyGoalView reports today's XP against the recommended goal
type DailyGoalView struct {
	Goal    int                    `json:"goal"`
	DailyXP int                    `json:"daily_xp"`
	Status  engine.DailyGoalStatus `json:"status"`
}

// GetDailyGoal computes the user's daily XP goal and today's progress.
// Today's XP comes from the daily XP leaderboard bucket.
func (s *GamificationService) GetDailyGoal(ctx context.Context, userID string) (*DailyGoalView, error) {
	profile, err := s.repo.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	streakDays := 0
	streaks, err := s.repo.GetStreaks(ctx, userID)
	if err == nil {
		if rec, ok := streaks[domain.StreakDailyLearning]; ok {
			streakDays = rec.CurrentStreak
		}
	}

	now := s.now()
	dailyXP := 0
	key := domain.PeriodKey(domain.PeriodDaily, now)
	entry, err := s.cache.GetUserRank(ctx, domain.LeaderboardXP, domain.PeriodDaily, key, userID)
	if err == nil {
		dailyXP = int(entry.Score)
	} else if !domain.IsNotFoundError(err) {
		return nil, err
	}

	goal := engine.DailyXPGoal(profile.Level, streakDays)
	return &DailyGoalView{
		Goal:    goal,
		DailyXP: dailyXP,
		Status:  engine.CheckDailyGoal(dailyXP, goal),
	}, nil
}

// ListRecentActivity returns a user's latest processed events
func (s *GamificationService) ListRecentActivity(ctx context.Context, userID string, limit int) ([]domain.ActivityEvent, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	return s.repo.ListRecentActivity(ctx, userID, limit)
}

// CreateAchievement registers or updates an achievement definition
func (s *GamificationService) CreateAchievement(ctx context.Context, a *domain.Achievement) error {
	if a.ID == "" || a.Title == "" || a.Requirement.Type == "" {
		return domain.ErrInvalidRequest
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = s.now()
	}
	return s.repo.CreateAchievement(ctx, a)
}

// ListAchievementDefinitions returns all achievement definitions
func (s *GamificationService) ListAchievementDefinitions(ctx context.Context) ([]domain.Achievement, error) {
	return s.repo.ListAchievements(ctx)
}
