package analytics

import (
	"testing"

	"partycards/internal/players"
)

func TestStandings_RanksWithTies(t *testing.T) {
	roster := []players.Player{
		{Name: "Alice", Score: 3},
		{Name: "Bob", Score: 5},
		{Name: "Carol", Score: 3},
		{Name: "Dave", Score: 1},
	}
	got := Standings(roster)

	want := []struct {
		name string
		rank int
	}{{"Bob", 1}, {"Alice", 2}, {"Carol", 2}, {"Dave", 4}}
	for i, w := range want {
		if got[i].PlayerName != w.name || got[i].Rank != w.rank {
			t.Errorf("standing %d = %s/%d, want %s/%d", i, got[i].PlayerName, got[i].Rank, w.name, w.rank)
		}
	}
}

func TestGameStats_Margin(t *testing.T) {
	results := Standings([]players.Player{
		{Name: "Alice", Score: 7},
		{Name: "Bob", Score: 3},
	})
	stats := GameStats("g1", false, results)
	if stats[0].Margin != 4 {
		t.Errorf("winner margin = %d, want 4", stats[0].Margin)
	}
	if stats[1].Margin != 0 {
		t.Errorf("runner-up margin = %d, want 0", stats[1].Margin)
	}
}

func TestGameStats_SharedLeadHasNoMargin(t *testing.T) {
	results := Standings([]players.Player{
		{Name: "Alice", Score: 4},
		{Name: "Bob", Score: 4},
	})
	stats := GameStats("g1", true, results)
	if stats[0].Margin != 0 {
		t.Errorf("margin = %d, want 0 on a shared lead", stats[0].Margin)
	}
	if hasBadge(EvaluateGameBadges(stats[0]), BadgeClutch) {
		t.Error("a shared lead should not earn Clutch")
	}
}

func TestWinStreak(t *testing.T) {
	tests := []struct {
		ranks []int
		want  int
	}{
		{nil, 0},
		{[]int{2, 1, 1}, 0},
		{[]int{1, 1, 1, 2, 1}, 3},
		{[]int{1}, 1},
	}
	for _, tt := range tests {
		if got := WinStreak(tt.ranks); got != tt.want {
			t.Errorf("WinStreak(%v) = %d, want %d", tt.ranks, got, tt.want)
		}
	}
}
