// Package engine implements the gamification computations: XP accrual and
// level derivation, streak maintenance, achievement-requirement evaluation,
// and leaderboard ranking. Every function is a pure transform over its
// inputs, with no storage or shared state, so the package is safe to call
// from any number of request handlers concurrently.
package engine

import (
	"fmt"
	"math"
	"sort"

	"github.com/ailearn-gamification/internal/domain"
)

// Standard awards per activity kind, used when a caller supplies no base
// points of its own (negative base_points selects the standard award).
var standardAwards = map[domain.ActivityKind]int{
	domain.KindLessonCompletion:  50,
	domain.KindModuleCompletion:  200,
	domain.KindAssessmentPassed:  100,
	domain.KindCommunityPost:     25,
	domain.KindDailyChallenge:    150,
	domain.KindStreakMilestone:   100,
	domain.KindAchievementEarned: 75,
}

// Flat metadata bonuses
const (
	bonusPerfectScore = 50
	bonusFirstLesson  = 100
	bonusWeekend      = 25
	bonusLateNight    = 25
)

// maxActivityPoints bounds what a single activity may claim; anything above
// is treated as caller error by ValidateActivity.
const maxActivityPoints = 1000

// StandardAward returns the standard XP award for an activity kind, or 0
// for an unknown kind.
func StandardAward(kind domain.ActivityKind) int {
	return standardAwards[kind]
}

// XPForLevel returns the cumulative XP required to have reached the given
// level. Level 1 starts at 0; from level 2 each level span is a constant
// 150 XP (the first span is 100).
func XPForLevel(level int) int {
	if level <= 1 {
		return 0
	}
	return (level-1)*100 + (level-2)*50
}

// LevelFromXP derives the level and progress structure for a cumulative XP
// total. totalXP must be non-negative; negative input is a caller error and
// is clamped to 0 to keep the result well formed.
func LevelFromXP(totalXP int) domain.LevelInfo {
	if totalXP < 0 {
		totalXP = 0
	}

	level := 1
	xpForCurrent := 0
	xpForNext := XPForLevel(2)
	for totalXP >= xpForNext {
		level++
		xpForCurrent = xpForNext
		xpForNext = XPForLevel(level + 1)
	}

	span := xpForNext - xpForCurrent
	progress := totalXP - xpForCurrent
	pct := int(math.Round(float64(progress) / float64(span) * 100))
	if pct < 0 {
		pct = 0
	}
	if pct > 100 {
		pct = 100
	}

	return domain.LevelInfo{
		Level:              level,
		XPRequired:         span,
		XPTotal:            totalXP,
		XPToNext:           span - progress,
		ProgressPercentage: pct,
	}
}

// ActivityXP computes the XP award for a single activity. Flat bonuses
// apply first, then the streak multiplier, then the difficulty multiplier,
// rounding to the nearest integer after each multiplication. The result is
// floored at 0.
func ActivityXP(activity domain.XPActivity) int {
	xp := activity.BasePoints
	if xp < 0 {
		// Documented fallback: negative base points select the kind's
		// standard award, not a zero floor.
		xp = standardAwards[activity.Kind]
	}

	if m := activity.Metadata; m != nil {
		if m.PerfectScore {
			xp += bonusPerfectScore
		}
		if m.IsFirstLesson {
			xp += bonusFirstLesson
		}
		if m.IsWeekend {
			xp += bonusWeekend
		}
		if m.IsLateNight {
			xp += bonusLateNight
		}
		if m.StreakMultiplier != 0 {
			xp = int(math.Round(float64(xp) * m.StreakMultiplier))
		}
		if m.DifficultyMultiplier != 0 {
			xp = int(math.Round(float64(xp) * m.DifficultyMultiplier))
		}
	}

	if xp < 0 {
		xp = 0
	}
	return xp
}

// CheckLevelUp compares the levels for two XP totals. OldLevel and NewLevel
// are populated only when a level was actually gained; a decrease in XP is
// never reported as a level-up.
func CheckLevelUp(oldXP, newXP int) domain.LevelUp {
	oldLevel := LevelFromXP(oldXP).Level
	newLevel := LevelFromXP(newXP).Level
	if newLevel <= oldLevel {
		return domain.LevelUp{}
	}
	return domain.LevelUp{
		LeveledUp: true,
		OldLevel:  oldLevel,
		NewLevel:  newLevel,
	}
}

// StreakMultiplier maps consecutive streak days to an XP multiplier.
// Bands are inclusive on their lower bound.
func StreakMultiplier(streakDays int) float64 {
	switch {
	case streakDays < 3:
		return 1.0
	case streakDays < 7:
		return 1.1
	case streakDays < 14:
		return 1.2
	case streakDays < 30:
		return 1.3
	default:
		return 1.5
	}
}

// DifficultyMultiplier maps a content difficulty level (1-5) to an XP
// multiplier. Levels outside 1-5 fall back to 1.0.
func DifficultyMultiplier(level int) float64 {
	switch level {
	case 1:
		return 1.0
	case 2:
		return 1.1
	case 3:
		return 1.2
	case 4:
		return 1.3
	case 5:
		return 1.5
	default:
		return 1.0
	}
}

// ValidateActivity rejects malformed activities before they reach the
// calculator: unknown kinds, negative points, and points outside the sane
// bound are all caller errors.
func ValidateActivity(activity domain.XPActivity) error {
	if _, ok := standardAwards[activity.Kind]; !ok {
		return fmt.Errorf("%w: unknown activity kind %q", domain.ErrInvalidActivity, activity.Kind)
	}
	if activity.BasePoints < 0 {
		return fmt.Errorf("%w: negative base points %d", domain.ErrInvalidActivity, activity.BasePoints)
	}
	if activity.BasePoints > maxActivityPoints {
		return fmt.Errorf("%w: base points %d exceed limit %d", domain.ErrInvalidActivity, activity.BasePoints, maxActivityPoints)
	}
	return nil
}

// xpBreakdownRecent bounds the recent-awards list in a breakdown
const xpBreakdownRecent = 10

// XPBreakdown aggregates processed awards into a total, per-kind subtotals,
// and the most recent awards (newest first).
func XPBreakdown(awards []domain.XPAward) domain.XPBreakdown {
	breakdown := domain.XPBreakdown{
		ByKind: make(map[domain.ActivityKind]int),
	}
	for _, a := range awards {
		breakdown.Total += a.Points
		breakdown.ByKind[a.Kind] += a.Points
	}

	recent := make([]domain.XPAward, len(awards))
	copy(recent, awards)
	sort.SliceStable(recent, func(i, j int) bool {
		return recent[i].EarnedAt.After(recent[j].EarnedAt)
	})
	if len(recent) > xpBreakdownRecent {
		recent = recent[:xpBreakdownRecent]
	}
	breakdown.Recent = recent
	return breakdown
}

// LevelRewards lists the privileges unlocked at or below the given level
func LevelRewards(level int) []string {
	var rewards []string
	if level >= 5 {
		rewards = append(rewards, "unlock_advanced_modules")
	}
	if level >= 10 {
		rewards = append(rewards, "unlock_community_leaderboard")
	}
	if level >= 15 {
		rewards = append(rewards, "unlock_custom_achievements")
	}
	if level >= 20 {
		rewards = append(rewards, "unlock_beta_features")
	}
	if level >= 25 {
		rewards = append(rewards, "unlock_mentor_status")
	}
	if level >= 30 {
		rewards = append(rewards, "unlock_content_creation")
	}
	return rewards
}

// XPMilestone is one motivational XP target
type XPMilestone struct {
	Milestone   int     `json:"milestone"`
	Achieved    bool    `json:"achieved"`
	Progress    float64 `json:"progress"`
	Description string  `json:"description"`
}

var xpMilestones = []struct {
	xp   int
	desc string
}{
	{100, "First 100 XP"},
	{500, "Half a thousand"},
	{1000, "Thousand points"},
	{2500, "Two and a half thousand"},
	{5000, "Five thousand club"},
	{10000, "Ten thousand elite"},
	{25000, "Twenty-five thousand legend"},
	{50000, "Fifty thousand master"},
	{100000, "Hundred thousand grandmaster"},
}

// XPMilestones reports progress against the fixed milestone ladder
func XPMilestones(currentXP int) []XPMilestone {
	out := make([]XPMilestone, len(xpMilestones))
	for i, m := range xpMilestones {
		progress := float64(currentXP) / float64(m.xp) * 100
		if progress > 100 {
			progress = 100
		}
		out[i] = XPMilestone{
			Milestone:   m.xp,
			Achieved:    currentXP >= m.xp,
			Progress:    progress,
			Description: m.desc,
		}
	}
	return out
}

// DailyXPGoal recommends a daily XP target scaled by level and streak
func DailyXPGoal(level, streakDays int) int {
	const baseGoal = 200
	levelMult := 1 + float64(level-1)*0.1
	streakMult := 1 + float64(streakDays)*0.05
	return int(math.Round(baseGoal * levelMult * streakMult))
}

// DailyGoalStatus reports progress toward a daily XP goal
type DailyGoalStatus struct {
	Met       bool `json:"met"`
	Progress  int  `json:"progress"`
	Remaining int  `json:"remaining"`
}

// CheckDailyGoal compares today's XP against the goal
func CheckDailyGoal(dailyXP, goal int) DailyGoalStatus {
	if goal <= 0 {
		return DailyGoalStatus{Met: true, Progress: 100}
	}
	progress := float64(dailyXP) / float64(goal) * 100
	if progress > 100 {
		progress = 100
	}
	remaining := goal - dailyXP
	if remaining < 0 {
		remaining = 0
	}
	return DailyGoalStatus{
		Met:       dailyXP >= goal,
		Progress:  int(math.Round(progress)),
		Remaining: remaining,
	}
}
