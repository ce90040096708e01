package engine_test

import (
	"testing"
	"time"

	"github.com/ailearn-gamification/internal/domain"
	"github.com/ailearn-gamification/internal/engine"
)

func TestXPForLevel(t *testing.T) {
	tests := []struct {
		level int
		want  int
	}{
		{1, 0},
		{2, 100},
		{3, 250},
		{4, 400},
		{5, 550},
		{10, 1300},
		{0, 0},
		{-3, 0},
	}
	for _, tc := range tests {
		if got := engine.XPForLevel(tc.level); got != tc.want {
			t.Errorf("XPForLevel(%d) = %d, want %d", tc.level, got, tc.want)
		}
	}
}

func TestLevelFromXP_Zero(t *testing.T) {
	info := engine.LevelFromXP(0)
	want := domain.LevelInfo{
		Level:              1,
		XPRequired:         100,
		XPTotal:            0,
		XPToNext:           100,
		ProgressPercentage: 0,
	}
	if info != want {
		t.Errorf("LevelFromXP(0) = %+v, want %+v", info, want)
	}
}

func TestLevelFromXP_Values(t *testing.T) {
	tests := []struct {
		xp        int
		wantLevel int
		wantNext  int
	}{
		{0, 1, 100},
		{99, 1, 1},
		{100, 2, 150},
		{150, 2, 100},
		{249, 2, 1},
		{250, 3, 150},
		{500, 4, 50},
		{2500, 18, 150},
	}
	for _, tc := range tests {
		info := engine.LevelFromXP(tc.xp)
		if info.Level != tc.wantLevel {
			t.Errorf("LevelFromXP(%d).Level = %d, want %d", tc.xp, info.Level, tc.wantLevel)
		}
		if info.XPToNext != tc.wantNext {
			t.Errorf("LevelFromXP(%d).XPToNext = %d, want %d", tc.xp, info.XPToNext, tc.wantNext)
		}
		if info.XPTotal != tc.xp {
			t.Errorf("LevelFromXP(%d).XPTotal = %d", tc.xp, info.XPTotal)
		}
	}
}

func TestLevelFromXP_ThresholdExactness(t *testing.T) {
	for level := 1; level <= 40; level++ {
		threshold := engine.XPForLevel(level)
		if got := engine.LevelFromXP(threshold).Level; got != level {
			t.Errorf("LevelFromXP(XPForLevel(%d)=%d).Level = %d", level, threshold, got)
		}
		if level >= 2 {
			if got := engine.LevelFromXP(threshold - 1).Level; got != level-1 {
				t.Errorf("LevelFromXP(%d).Level = %d, want %d", threshold-1, got, level-1)
			}
		}
	}
}

func TestLevelFromXP_Monotonic(t *testing.T) {
	prev := 0
	for xp := 0; xp <= 10000; xp += 37 {
		level := engine.LevelFromXP(xp).Level
		if level < prev {
			t.Fatalf("level decreased: xp=%d level=%d prev=%d", xp, level, prev)
		}
		prev = level
	}
}

func TestLevelFromXP_ProgressBounds(t *testing.T) {
	for xp := 0; xp <= 5000; xp += 13 {
		pct := engine.LevelFromXP(xp).ProgressPercentage
		if pct < 0 || pct > 100 {
			t.Fatalf("progress out of bounds: xp=%d pct=%d", xp, pct)
		}
	}
}

func TestActivityXP(t *testing.T) {
	tests := []struct {
		name     string
		activity domain.XPActivity
		want     int
	}{
		{
			name:     "base points only",
			activity: domain.XPActivity{Kind: domain.KindLessonCompletion, BasePoints: 50},
			want:     50,
		},
		{
			name: "perfect score bonus",
			activity: domain.XPActivity{
				Kind:       domain.KindLessonCompletion,
				BasePoints: 50,
				Metadata:   &domain.ActivityMetadata{PerfectScore: true},
			},
			want: 100,
		},
		{
			name: "first lesson bonus",
			activity: domain.XPActivity{
				Kind:       domain.KindLessonCompletion,
				BasePoints: 50,
				Metadata:   &domain.ActivityMetadata{IsFirstLesson: true},
			},
			want: 150,
		},
		{
			name: "weekend bonus",
			activity: domain.XPActivity{
				Kind:       domain.KindLessonCompletion,
				BasePoints: 50,
				Metadata:   &domain.ActivityMetadata{IsWeekend: true},
			},
			want: 75,
		},
		{
			name: "late night bonus",
			activity: domain.XPActivity{
				Kind:       domain.KindLessonCompletion,
				BasePoints: 50,
				Metadata:   &domain.ActivityMetadata{IsLateNight: true},
			},
			want: 75,
		},
		{
			name: "streak multiplier rounds",
			activity: domain.XPActivity{
				Kind:       domain.KindLessonCompletion,
				BasePoints: 50,
				Metadata:   &domain.ActivityMetadata{StreakMultiplier: 1.2},
			},
			want: 60,
		},
		{
			name: "bonuses then both multipliers",
			activity: domain.XPActivity{
				Kind:       domain.KindAssessmentPassed,
				BasePoints: 50,
				Metadata: &domain.ActivityMetadata{
					PerfectScore:         true,
					StreakMultiplier:     1.2,
					DifficultyMultiplier: 1.5,
				},
			},
			want: 180, // (50+50)*1.2=120, 120*1.5=180
		},
		{
			name:     "negative points fall back to standard award",
			activity: domain.XPActivity{Kind: domain.KindLessonCompletion, BasePoints: -10},
			want:     50,
		},
		{
			name:     "negative points for module kind",
			activity: domain.XPActivity{Kind: domain.KindModuleCompletion, BasePoints: -1},
			want:     200,
		},
		{
			name:     "zero points stay zero",
			activity: domain.XPActivity{Kind: domain.KindCommunityPost, BasePoints: 0},
			want:     0,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := engine.ActivityXP(tc.activity); got != tc.want {
				t.Errorf("ActivityXP = %d, want %d", got, tc.want)
			}
		})
	}
}

func TestCheckLevelUp(t *testing.T) {
	up := engine.CheckLevelUp(0, 100)
	if !up.LeveledUp || up.OldLevel != 1 || up.NewLevel != 2 {
		t.Errorf("CheckLevelUp(0,100) = %+v", up)
	}

	same := engine.CheckLevelUp(100, 200)
	if same.LeveledUp {
		t.Errorf("CheckLevelUp(100,200) reported level-up: %+v", same)
	}
	if same.OldLevel != 0 || same.NewLevel != 0 {
		t.Errorf("levels should be omitted without a level-up: %+v", same)
	}

	down := engine.CheckLevelUp(500, 50)
	if down.LeveledUp {
		t.Errorf("XP decrease must never report a level-up: %+v", down)
	}
}

func TestStreakMultiplier(t *testing.T) {
	tests := []struct {
		days int
		want float64
	}{
		{0, 1.0}, {2, 1.0},
		{3, 1.1}, {6, 1.1},
		{7, 1.2}, {13, 1.2},
		{14, 1.3}, {29, 1.3},
		{30, 1.5}, {365, 1.5},
	}
	for _, tc := range tests {
		if got := engine.StreakMultiplier(tc.days); got != tc.want {
			t.Errorf("StreakMultiplier(%d) = %v, want %v", tc.days, got, tc.want)
		}
	}
}

func TestDifficultyMultiplier(t *testing.T) {
	tests := []struct {
		level int
		want  float64
	}{
		{1, 1.0}, {2, 1.1}, {3, 1.2}, {4, 1.3}, {5, 1.5},
		{0, 1.0}, {6, 1.0}, {-1, 1.0},
	}
	for _, tc := range tests {
		if got := engine.DifficultyMultiplier(tc.level); got != tc.want {
			t.Errorf("DifficultyMultiplier(%d) = %v, want %v", tc.level, got, tc.want)
		}
	}
}

func TestValidateActivity(t *testing.T) {
	valid := domain.XPActivity{Kind: domain.KindLessonCompletion, BasePoints: 50}
	if err := engine.ValidateActivity(valid); err != nil {
		t.Errorf("valid activity rejected: %v", err)
	}

	cases := []domain.XPActivity{
		{Kind: "teleportation", BasePoints: 50},
		{Kind: domain.KindLessonCompletion, BasePoints: -5},
		{Kind: domain.KindLessonCompletion, BasePoints: 100000},
	}
	for _, a := range cases {
		if err := engine.ValidateActivity(a); err == nil {
			t.Errorf("expected rejection for %+v", a)
		}
	}
}

func TestLevelRewards(t *testing.T) {
	if got := engine.LevelRewards(1); len(got) != 0 {
		t.Errorf("level 1 should have no rewards, got %v", got)
	}
	if got := engine.LevelRewards(10); len(got) != 2 {
		t.Errorf("level 10 should have 2 rewards, got %v", got)
	}
	all := engine.LevelRewards(30)
	if len(all) != 6 {
		t.Errorf("level 30 should have all 6 rewards, got %v", all)
	}
}

func TestXPMilestones(t *testing.T) {
	ms := engine.XPMilestones(600)
	if !ms[0].Achieved || !ms[1].Achieved {
		t.Errorf("100 and 500 milestones should be achieved at 600 XP")
	}
	if ms[2].Achieved {
		t.Errorf("1000 milestone should not be achieved at 600 XP")
	}
	if ms[2].Progress != 60 {
		t.Errorf("1000 milestone progress = %v, want 60", ms[2].Progress)
	}
}

func TestDailyXPGoal(t *testing.T) {
	if got := engine.DailyXPGoal(1, 0); got != 200 {
		t.Errorf("base goal = %d, want 200", got)
	}
	// Level 5: 200 * 1.4 = 280; plus 10-day streak: 280 * 1.5 = 420
	if got := engine.DailyXPGoal(5, 10); got != 420 {
		t.Errorf("scaled goal = %d, want 420", got)
	}

	status := engine.CheckDailyGoal(150, 200)
	if status.Met || status.Progress != 75 || status.Remaining != 50 {
		t.Errorf("CheckDailyGoal(150,200) = %+v", status)
	}
	done := engine.CheckDailyGoal(250, 200)
	if !done.Met || done.Progress != 100 || done.Remaining != 0 {
		t.Errorf("CheckDailyGoal(250,200) = %+v", done)
	}
}

func TestXPBreakdown(t *testing.T) {
	day := func(n int) time.Time {
		return time.Date(2026, 8, n, 12, 0, 0, 0, time.UTC)
	}
	awards := []domain.XPAward{
		{Kind: domain.KindLessonCompletion, Points: 50, EarnedAt: day(1)},
		{Kind: domain.KindLessonCompletion, Points: 75, EarnedAt: day(3)},
		{Kind: domain.KindModuleCompletion, Points: 200, EarnedAt: day(2)},
		{Kind: domain.KindCommunityPost, Points: 25, EarnedAt: day(4)},
	}

	got := engine.XPBreakdown(awards)
	if got.Total != 350 {
		t.Errorf("Total = %d, want 350", got.Total)
	}
	if got.ByKind[domain.KindLessonCompletion] != 125 {
		t.Errorf("lesson subtotal = %d, want 125", got.ByKind[domain.KindLessonCompletion])
	}
	if got.ByKind[domain.KindModuleCompletion] != 200 {
		t.Errorf("module subtotal = %d, want 200", got.ByKind[domain.KindModuleCompletion])
	}
	if len(got.Recent) != 4 {
		t.Fatalf("len(Recent) = %d, want 4", len(got.Recent))
	}
	if got.Recent[0].Kind != domain.KindCommunityPost {
		t.Errorf("Recent[0].Kind = %q, want newest award first", got.Recent[0].Kind)
	}
	if got.Recent[3].Points != 50 {
		t.Errorf("Recent[3].Points = %d, want oldest award last", got.Recent[3].Points)
	}
}

func TestXPBreakdown_RecentCapped(t *testing.T) {
	awards := make([]domain.XPAward, 25)
	for i := range awards {
		awards[i] = domain.XPAward{
			Kind:     domain.KindLessonCompletion,
			Points:   10,
			EarnedAt: time.Date(2026, 8, 1, i, 0, 0, 0, time.UTC),
		}
	}

	got := engine.XPBreakdown(awards)
	if got.Total != 250 {
		t.Errorf("Total = %d, want 250", got.Total)
	}
	if len(got.Recent) != 10 {
		t.Errorf("len(Recent) = %d, want 10", len(got.Recent))
	}
	if !got.Recent[0].EarnedAt.After(got.Recent[9].EarnedAt) {
		t.Error("Recent should be ordered newest first")
	}
}

func TestXPBreakdown_Empty(t *testing.T) {
	got := engine.XPBreakdown(nil)
	if got.Total != 0 || len(got.ByKind) != 0 || len(got.Recent) != 0 {
		t.Errorf("XPBreakdown(nil) = %+v, want empty breakdown", got)
	}
}
