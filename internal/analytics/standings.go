package analytics

import (
	"sort"

	"partycards/internal/db"
	"partycards/internal/players"
)

// Standings ranks the final roster by score. Ties share a rank and the
// next rank skips (1, 1, 3). Equal scores keep seat order.
func Standings(roster []players.Player) []db.PlayerResult {
	results := make([]db.PlayerResult, len(roster))
	for i, p := range roster {
		results[i] = db.PlayerResult{PlayerName: p.Name, Color: p.Color, FinalScore: p.Score}
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].FinalScore > results[j].FinalScore
	})
	for i := range results {
		if i > 0 && results[i].FinalScore == results[i-1].FinalScore {
			results[i].Rank = results[i-1].Rank
		} else {
			results[i].Rank = i + 1
		}
	}
	return results
}

// GameStats derives each player's per-game stats from the standings.
func GameStats(gameID string, decider bool, results []db.PlayerResult) []PlayerGameStats {
	stats := make([]PlayerGameStats, len(results))
	for i, r := range results {
		stats[i] = PlayerGameStats{
			PlayerName:  r.PlayerName,
			PlayerColor: r.Color,
			GameID:      gameID,
			Score:       r.FinalScore,
			Rank:        r.Rank,
			Decider:     decider,
		}
	}
	if len(results) > 0 && results[0].Rank == 1 {
		runnerUp := 0
		if len(results) > 1 {
			runnerUp = results[1].FinalScore
		}
		stats[0].Margin = results[0].FinalScore - runnerUp
	}
	return stats
}
