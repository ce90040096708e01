package service

import (
	"testing"

	"github.com/ailearn-gamification/internal/domain"
	"github.com/ailearn-gamification/internal/engine"
)

func TestRarityByAchievement(t *testing.T) {
	evaluated := []domain.AchievementProgress{
		{AchievementID: "first-steps"},
		{AchievementID: "module-master"},
		{AchievementID: "night-owl"},
	}
	holders := map[string]int64{
		"first-steps":   90,
		"module-master": 45,
	}

	got := rarityByAchievement(evaluated, holders, 100)
	if len(got) != 3 {
		t.Fatalf("len = %d, want 3", len(got))
	}
	if r := got["first-steps"]; r.Tier != engine.RarityCommon || r.EarnedPercentage != 90 {
		t.Errorf("first-steps = %+v, want common 90%%", r)
	}
	if r := got["module-master"]; r.Tier != engine.RarityRare || r.EarnedPercentage != 45 {
		t.Errorf("module-master = %+v, want rare 45%%", r)
	}
	if r := got["night-owl"]; r.Tier != engine.RarityLegendary || r.EarnedPercentage != 0 {
		t.Errorf("night-owl = %+v, want legendary 0%%", r)
	}
}

func TestRarityByAchievement_NoUsers(t *testing.T) {
	evaluated := []domain.AchievementProgress{{AchievementID: "first-steps"}}

	got := rarityByAchievement(evaluated, nil, 0)
	if r := got["first-steps"]; r.Tier != engine.RarityLegendary || r.EarnedPercentage != 0 {
		t.Errorf("rarity with no users = %+v, want legendary 0%%", r)
	}
}
