package engine

import (
	"time"

	"github.com/ailearn-gamification/internal/domain"
)

// AdvanceStreak applies one day of qualifying activity to a streak record.
// "today" is caller-supplied so the transition is deterministic; only its
// calendar day matters. Passing nil creates a fresh record.
//
// Transitions:
//   - nil record            -> current=1, longest=1
//   - last == today         -> no-op (same-day activity never double-counts)
//   - last == yesterday     -> current+1, longest=max(longest, current)
//   - anything else         -> reset to 1, longest untouched
//
// A last-activity date in the future falls into the reset branch: the
// record is treated as corrupt and restarted rather than extended.
func AdvanceStreak(rec *domain.StreakRecord, today time.Time) domain.StreakRecord {
	day := domain.Day(today)

	if rec == nil {
		return domain.StreakRecord{
			CurrentStreak:    1,
			LongestStreak:    1,
			LastActivityDate: day,
		}
	}

	out := *rec
	last := domain.Day(rec.LastActivityDate)
	yesterday := day.AddDate(0, 0, -1)

	switch {
	case last.Equal(day):
		// Already counted today
		return out

	case last.Equal(yesterday):
		out.CurrentStreak++
		if out.CurrentStreak > out.LongestStreak {
			out.LongestStreak = out.CurrentStreak
		}

	default:
		out.CurrentStreak = 1
	}

	out.LastActivityDate = day
	if out.LongestStreak < out.CurrentStreak {
		out.LongestStreak = out.CurrentStreak
	}
	return out
}

// StreakKindFor maps an activity kind to the streak it maintains
// automatically. Only daily-cadence streaks advance on activity; the
// returned bool is false for kinds that drive no streak.
func StreakKindFor(kind domain.ActivityKind) (domain.StreakType, bool) {
	switch kind {
	case domain.KindLessonCompletion, domain.KindModuleCompletion, domain.KindDailyChallenge:
		return domain.StreakDailyLearning, true
	case domain.KindCommunityPost:
		return domain.StreakCommunityActivity, true
	default:
		return "", false
	}
}
