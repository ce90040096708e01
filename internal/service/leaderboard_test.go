package service

import (
	"testing"
	"time"

	"github.com/ailearn-gamification/internal/domain"
)

func TestStoredBoardView(t *testing.T) {
	scores := map[string]int64{
		"user-a": 300,
		"user-b": 500,
		"user-c": 100,
		"user-d": 300,
		"user-e": 50,
	}
	now := time.Date(2026, 8, 31, 10, 0, 0, 0, time.UTC)

	view := storedBoardView(scores, domain.LeaderboardXP, domain.PeriodWeekly, 3, "user-e", now)

	if view.Type != domain.LeaderboardXP || view.Period != domain.PeriodWeekly {
		t.Errorf("view identity = %s/%s, want xp/weekly", view.Type, view.Period)
	}
	if view.TotalUsers != 5 {
		t.Errorf("TotalUsers = %d, want 5", view.TotalUsers)
	}
	if len(view.Entries) != 3 {
		t.Fatalf("len(Entries) = %d, want 3", len(view.Entries))
	}
	if view.Entries[0].UserID != "user-b" || view.Entries[0].Rank != 1 {
		t.Errorf("Entries[0] = %s rank %d, want user-b rank 1", view.Entries[0].UserID, view.Entries[0].Rank)
	}

	// Tied scores rank by user id, so repeated reads agree
	if view.Entries[1].UserID != "user-a" || view.Entries[2].UserID != "user-d" {
		t.Errorf("tie order = %s, %s, want user-a, user-d", view.Entries[1].UserID, view.Entries[2].UserID)
	}
	if view.Entries[1].Rank != 2 || view.Entries[2].Rank != 3 {
		t.Errorf("tie ranks = %d, %d, want 2, 3", view.Entries[1].Rank, view.Entries[2].Rank)
	}

	// The requesting user sits below the rendered slice but still gets a row
	if view.UserEntry == nil {
		t.Fatal("UserEntry = nil, want entry for user-e")
	}
	if view.UserEntry.Rank != 5 || view.UserEntry.Score != 50 {
		t.Errorf("UserEntry = rank %d score %d, want rank 5 score 50", view.UserEntry.Rank, view.UserEntry.Score)
	}
}

func TestStoredBoardView_UnknownUser(t *testing.T) {
	scores := map[string]int64{"user-a": 100}
	view := storedBoardView(scores, domain.LeaderboardStreak, domain.PeriodDaily, 10, "user-z", time.Now())

	if view.UserEntry != nil {
		t.Errorf("UserEntry = %+v, want nil for an unranked user", view.UserEntry)
	}
	if len(view.Entries) != 1 {
		t.Errorf("len(Entries) = %d, want 1", len(view.Entries))
	}
}

func TestStoredBoardView_Empty(t *testing.T) {
	view := storedBoardView(nil, domain.LeaderboardXP, domain.PeriodAllTime, 10, "", time.Now())
	if view.TotalUsers != 0 || len(view.Entries) != 0 || view.UserEntry != nil {
		t.Errorf("empty bucket view = %+v, want no entries", view)
	}
}
