package engine_test

import (
	"testing"

	"github.com/ailearn-gamification/internal/domain"
	"github.com/ailearn-gamification/internal/engine"
)

func entries(scores ...int64) []domain.LeaderboardEntry {
	out := make([]domain.LeaderboardEntry, len(scores))
	for i, s := range scores {
		out[i] = domain.LeaderboardEntry{
			UserID: string(rune('a' + i)),
			Score:  s,
		}
	}
	return out
}

func TestRank_DenseDescending(t *testing.T) {
	ranked := engine.Rank(entries(50, 300, 100, 200))

	wantOrder := []int64{300, 200, 100, 50}
	for i, e := range ranked {
		if e.Score != wantOrder[i] {
			t.Errorf("position %d score = %d, want %d", i, e.Score, wantOrder[i])
		}
		if e.Rank != i+1 {
			t.Errorf("position %d rank = %d, want %d", i, e.Rank, i+1)
		}
	}
}

func TestRank_TiesKeepInputOrder(t *testing.T) {
	in := []domain.LeaderboardEntry{
		{UserID: "first", Score: 100},
		{UserID: "second", Score: 100},
		{UserID: "third", Score: 100},
	}
	ranked := engine.Rank(in)

	if ranked[0].UserID != "first" || ranked[1].UserID != "second" || ranked[2].UserID != "third" {
		t.Errorf("tied entries reordered: %+v", ranked)
	}
	// Dense ranking: tied entries still get distinct consecutive ranks
	for i, e := range ranked {
		if e.Rank != i+1 {
			t.Errorf("tie rank[%d] = %d, want %d", i, e.Rank, i+1)
		}
	}
}

func TestRank_DoesNotMutateInput(t *testing.T) {
	in := entries(1, 2, 3)
	engine.Rank(in)
	if in[0].Score != 1 || in[0].Rank != 0 {
		t.Errorf("input slice was mutated: %+v", in)
	}
}

func TestTopN(t *testing.T) {
	ranked := engine.Rank(entries(5, 4, 3, 2, 1))

	top := engine.TopN(ranked, 3)
	if len(top) != 3 || top[2].Rank != 3 {
		t.Errorf("TopN(3) = %+v", top)
	}
	if got := engine.TopN(ranked, 100); len(got) != 5 {
		t.Errorf("TopN beyond size = %d entries", len(got))
	}
	if got := engine.TopN(ranked, -1); len(got) != 0 {
		t.Errorf("TopN(-1) = %d entries", len(got))
	}
}

func TestLocate(t *testing.T) {
	ranked := engine.Rank(entries(10, 90, 50, 70))

	e := engine.Locate(ranked, "a") // lowest score, last place
	if e == nil || e.Rank != 4 || e.Score != 10 {
		t.Errorf("Locate(a) = %+v", e)
	}
	if engine.Locate(ranked, "missing") != nil {
		t.Errorf("Locate(missing) should be nil")
	}
}

func TestFillMetric(t *testing.T) {
	es := entries(42)
	engine.FillMetric(es, domain.LeaderboardStreak)
	if es[0].StreakDays != 42 || es[0].XP != 0 {
		t.Errorf("FillMetric(streak) = %+v", es[0])
	}

	engine.FillMetric(es, domain.LeaderboardXP)
	if es[0].XP != 42 {
		t.Errorf("FillMetric(xp) = %+v", es[0])
	}
}
