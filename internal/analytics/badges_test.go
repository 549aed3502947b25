package analytics

import (
	"testing"
	"time"

	"partycards/internal/db"
)

func TestEvaluateGameBadges_Landslide(t *testing.T) {
	stats := PlayerGameStats{Rank: 1, Score: 7, Margin: 3}
	badges := EvaluateGameBadges(stats)
	if !hasBadge(badges, BadgeLandslide) {
		t.Error("should earn Landslide with a 3-point margin")
	}
}

func TestEvaluateGameBadges_NoLandslide(t *testing.T) {
	stats := PlayerGameStats{Rank: 1, Score: 7, Margin: 2}
	badges := EvaluateGameBadges(stats)
	if hasBadge(badges, BadgeLandslide) {
		t.Error("should not earn Landslide with a 2-point margin")
	}
}

func TestEvaluateGameBadges_Clutch(t *testing.T) {
	stats := PlayerGameStats{Rank: 1, Score: 4, Margin: 1, Decider: true}
	badges := EvaluateGameBadges(stats)
	if !hasBadge(badges, BadgeClutch) {
		t.Error("should earn Clutch for winning a decider")
	}
}

func TestEvaluateGameBadges_NoClutchWithoutDecider(t *testing.T) {
	stats := PlayerGameStats{Rank: 1, Score: 4, Margin: 1}
	badges := EvaluateGameBadges(stats)
	if hasBadge(badges, BadgeClutch) {
		t.Error("should not earn Clutch without a decider round")
	}
}

func TestEvaluateGameBadges_LosersEarnNothing(t *testing.T) {
	stats := PlayerGameStats{Rank: 2, Score: 6, Margin: 5, Decider: true}
	if badges := EvaluateGameBadges(stats); len(badges) != 0 {
		t.Errorf("got %d badges for a runner-up, want 0", len(badges))
	}
}

func TestEvaluateGameBadges_MultipleBadges(t *testing.T) {
	stats := PlayerGameStats{Rank: 1, Score: 8, Margin: 4, Decider: true}
	badges := EvaluateGameBadges(stats)
	if len(badges) != 2 {
		t.Errorf("got %d badges, want 2", len(badges))
	}
}

func TestEvaluateLifetimeBadges_Unstoppable(t *testing.T) {
	stats := PlayerLifetimeStats{WinStreak: 3}
	badges := EvaluateLifetimeBadges(stats)
	if !hasBadge(badges, BadgeUnstoppable) {
		t.Error("should earn Unstoppable with 3-game streak")
	}
}

func TestEvaluateLifetimeBadges_NoUnstoppable(t *testing.T) {
	stats := PlayerLifetimeStats{WinStreak: 2}
	badges := EvaluateLifetimeBadges(stats)
	if hasBadge(badges, BadgeUnstoppable) {
		t.Error("should not earn Unstoppable with 2-game streak")
	}
}

func TestEvaluateLifetimeBadges_Veteran(t *testing.T) {
	stats := PlayerLifetimeStats{GamesPlayed: 10}
	badges := EvaluateLifetimeBadges(stats)
	if !hasBadge(badges, BadgeVeteran) {
		t.Error("should earn Veteran with 10 games")
	}
}

func TestEvaluateLifetimeBadges_NoVeteran(t *testing.T) {
	stats := PlayerLifetimeStats{GamesPlayed: 9}
	badges := EvaluateLifetimeBadges(stats)
	if hasBadge(badges, BadgeVeteran) {
		t.Error("should not earn Veteran with 9 games")
	}
}

func TestEvaluateLifetimeBadges_Champion(t *testing.T) {
	stats := PlayerLifetimeStats{GamesPlayed: 5, WinCount: 5}
	badges := EvaluateLifetimeBadges(stats)
	if !hasBadge(badges, BadgeChampion) {
		t.Error("should earn Champion with 5 wins")
	}
	if hasBadge(EvaluateLifetimeBadges(PlayerLifetimeStats{WinCount: 4}), BadgeChampion) {
		t.Error("should not earn Champion with 4 wins")
	}
}

func TestResolveBadges(t *testing.T) {
	at := time.Date(2026, 5, 1, 20, 0, 0, 0, time.UTC)
	earned := ResolveBadges([]db.BadgeAward{
		{BadgeID: "landslide", GameID: "g1", AwardedAt: at},
		{BadgeID: "retired", AwardedAt: at},
		{BadgeID: "veteran", AwardedAt: at.Add(time.Hour)},
	})

	if len(earned) != 2 {
		t.Fatalf("earned = %+v, want 2 badges", earned)
	}
	if earned[0].ID != BadgeLandslide || earned[0].Name != "Landslide" || earned[0].GameID != "g1" {
		t.Errorf("earned[0] = %+v", earned[0])
	}
	if earned[1].ID != BadgeVeteran || earned[1].GameID != "" || !earned[1].AwardedAt.Equal(at.Add(time.Hour)) {
		t.Errorf("earned[1] = %+v", earned[1])
	}
	if got := ResolveBadges(nil); len(got) != 0 {
		t.Errorf("ResolveBadges(nil) = %v, want empty", got)
	}
}

func hasBadge(badges []Badge, id BadgeID) bool {
	for _, b := range badges {
		if b.ID == id {
			return true
		}
	}
	return false
}
