package engine

import (
	"sort"

	"github.com/ailearn-gamification/internal/domain"
)

// Rank sorts entries by descending score and assigns dense 1-based ranks.
// Ties keep their input order and still receive distinct consecutive ranks
// (no shared or skipped ranks). The input slice is not modified.
func Rank(entries []domain.LeaderboardEntry) []domain.LeaderboardEntry {
	ranked := make([]domain.LeaderboardEntry, len(entries))
	copy(ranked, entries)

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})
	for i := range ranked {
		ranked[i].Rank = i + 1
	}
	return ranked
}

// TopN slices a ranked list to its first n entries
func TopN(ranked []domain.LeaderboardEntry, n int) []domain.LeaderboardEntry {
	if n < 0 {
		n = 0
	}
	if n > len(ranked) {
		n = len(ranked)
	}
	return ranked[:n]
}

// Locate finds a user's entry in a ranked list, which may fall outside any
// top-N slice the caller renders. Returns nil when absent.
func Locate(ranked []domain.LeaderboardEntry, userID string) *domain.LeaderboardEntry {
	for i := range ranked {
		if ranked[i].UserID == userID {
			e := ranked[i]
			return &e
		}
	}
	return nil
}

// FillMetric copies each entry's canonical score into the metric-specific
// display field for the leaderboard type. Ranking always uses Score; this
// only shapes the rendered payload.
func FillMetric(entries []domain.LeaderboardEntry, lbType domain.LeaderboardType) {
	for i := range entries {
		switch lbType {
		case domain.LeaderboardXP:
			entries[i].XP = entries[i].Score
		case domain.LeaderboardStreak:
			entries[i].StreakDays = entries[i].Score
		case domain.LeaderboardModules:
			entries[i].ModulesCompleted = entries[i].Score
		case domain.LeaderboardContributions:
			entries[i].CommunityContributions = entries[i].Score
		}
	}
}
