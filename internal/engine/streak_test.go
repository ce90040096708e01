package engine_test

import (
	"testing"
	"time"

	"github.com/ailearn-gamification/internal/domain"
	"github.com/ailearn-gamification/internal/engine"
)

var testToday = time.Date(2025, 7, 15, 14, 30, 0, 0, time.UTC)

func TestAdvanceStreak_NewRecord(t *testing.T) {
	rec := engine.AdvanceStreak(nil, testToday)
	if rec.CurrentStreak != 1 || rec.LongestStreak != 1 {
		t.Errorf("new record = %+v, want current=1 longest=1", rec)
	}
	if !rec.LastActivityDate.Equal(domain.Day(testToday)) {
		t.Errorf("last activity = %v, want %v", rec.LastActivityDate, domain.Day(testToday))
	}
}

func TestAdvanceStreak_SameDayIdempotent(t *testing.T) {
	first := engine.AdvanceStreak(nil, testToday)
	second := engine.AdvanceStreak(&first, testToday.Add(4*time.Hour))
	if second != first {
		t.Errorf("same-day advance changed the record: %+v vs %+v", second, first)
	}

	third := engine.AdvanceStreak(&second, testToday)
	if third != second {
		t.Errorf("repeated advance not idempotent: %+v vs %+v", third, second)
	}
}

func TestAdvanceStreak_Consecutive(t *testing.T) {
	rec := domain.StreakRecord{
		CurrentStreak:    5,
		LongestStreak:    10,
		LastActivityDate: domain.Day(testToday.AddDate(0, 0, -1)),
	}
	got := engine.AdvanceStreak(&rec, testToday)
	if got.CurrentStreak != 6 {
		t.Errorf("current = %d, want 6", got.CurrentStreak)
	}
	if got.LongestStreak != 10 {
		t.Errorf("longest = %d, want 10 (unchanged)", got.LongestStreak)
	}
	if !got.LastActivityDate.Equal(domain.Day(testToday)) {
		t.Errorf("last activity not moved to today: %v", got.LastActivityDate)
	}
}

func TestAdvanceStreak_ExtendsLongest(t *testing.T) {
	rec := domain.StreakRecord{
		CurrentStreak:    10,
		LongestStreak:    10,
		LastActivityDate: domain.Day(testToday.AddDate(0, 0, -1)),
	}
	got := engine.AdvanceStreak(&rec, testToday)
	if got.CurrentStreak != 11 || got.LongestStreak != 11 {
		t.Errorf("got %+v, want current=11 longest=11", got)
	}
}

func TestAdvanceStreak_Reset(t *testing.T) {
	tests := []struct {
		name string
		last time.Time
	}{
		{"two days ago", testToday.AddDate(0, 0, -2)},
		{"a week ago", testToday.AddDate(0, 0, -7)},
		{"future date", testToday.AddDate(0, 0, 3)},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := domain.StreakRecord{
				CurrentStreak:    8,
				LongestStreak:    12,
				LastActivityDate: domain.Day(tc.last),
			}
			got := engine.AdvanceStreak(&rec, testToday)
			if got.CurrentStreak != 1 {
				t.Errorf("current = %d, want 1", got.CurrentStreak)
			}
			if got.LongestStreak != 12 {
				t.Errorf("longest = %d, want 12 (never decreases)", got.LongestStreak)
			}
			if !got.LastActivityDate.Equal(domain.Day(testToday)) {
				t.Errorf("last activity = %v", got.LastActivityDate)
			}
		})
	}
}

func TestAdvanceStreak_TimeOfDayIgnored(t *testing.T) {
	lateYesterday := time.Date(2025, 7, 14, 23, 59, 0, 0, time.UTC)
	earlyToday := time.Date(2025, 7, 15, 0, 1, 0, 0, time.UTC)

	rec := engine.AdvanceStreak(nil, lateYesterday)
	got := engine.AdvanceStreak(&rec, earlyToday)
	if got.CurrentStreak != 2 {
		t.Errorf("minutes apart across midnight should count as consecutive days, got %d", got.CurrentStreak)
	}
}

func TestStreakKindFor(t *testing.T) {
	tests := []struct {
		kind    domain.ActivityKind
		want    domain.StreakType
		tracked bool
	}{
		{domain.KindLessonCompletion, domain.StreakDailyLearning, true},
		{domain.KindModuleCompletion, domain.StreakDailyLearning, true},
		{domain.KindDailyChallenge, domain.StreakDailyLearning, true},
		{domain.KindCommunityPost, domain.StreakCommunityActivity, true},
		{domain.KindAchievementEarned, "", false},
		{domain.KindStreakMilestone, "", false},
	}
	for _, tc := range tests {
		got, ok := engine.StreakKindFor(tc.kind)
		if got != tc.want || ok != tc.tracked {
			t.Errorf("StreakKindFor(%s) = (%s, %v), want (%s, %v)", tc.kind, got, ok, tc.want, tc.tracked)
		}
	}
}
