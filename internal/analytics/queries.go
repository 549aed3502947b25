package analytics

import (
	"fmt"

	"github.com/rs/zerolog/log"

	"partycards/internal/db"
	"partycards/internal/players"
)

type Queries struct {
	DB *db.DB
}

func NewQueries(database *db.DB) *Queries {
	return &Queries{DB: database}
}

// RecordGame stores a finished game and awards the badges it earned.
// Badge failures are logged; only the game insert itself can fail the call.
func (q *Queries) RecordGame(game db.GameRecord, roster []players.Player) (string, error) {
	results := Standings(roster)
	gameID, err := q.DB.RecordGame(game, results)
	if err != nil {
		return "", err
	}

	for _, s := range GameStats(gameID, game.Decider, results) {
		q.award(s.PlayerName, gameID, EvaluateGameBadges(s))
	}
	for _, r := range results {
		stats, err := q.GetPlayerLifetimeStats(r.PlayerName)
		if err != nil {
			log.Error().Err(err).Str("player", r.PlayerName).Msg("lifetime stats failed")
			continue
		}
		q.award(r.PlayerName, "", EvaluateLifetimeBadges(*stats))
	}
	return gameID, nil
}

func (q *Queries) award(playerName, gameID string, earned []Badge) {
	if len(earned) == 0 {
		return
	}
	ids := make([]string, len(earned))
	for i, b := range earned {
		ids[i] = string(b.ID)
	}
	awarded, err := q.DB.AwardBadges(playerName, gameID, ids)
	if err != nil {
		log.Error().Err(err).Str("player", playerName).Msg("award badges failed")
		return
	}
	if len(awarded) > 0 {
		log.Info().Str("player", playerName).Strs("badges", awarded).Msg("badges awarded")
	}
}

func (q *Queries) GetPlayerLifetimeStats(name string) (*PlayerLifetimeStats, error) {
	stats := &PlayerLifetimeStats{PlayerName: name}

	err := q.DB.QueryRow(`SELECT color FROM players WHERE name = $1`, name).Scan(&stats.PlayerColor)
	if err != nil {
		return nil, fmt.Errorf("getting player: %w", err)
	}

	err = q.DB.QueryRow(`
		SELECT
			COUNT(*) as games_played,
			COALESCE(SUM(final_score), 0) as total_score,
			COALESCE(MAX(final_score), 0) as best_game,
			COUNT(*) FILTER (WHERE rank = 1) as win_count
		FROM game_players
		WHERE player_name = $1
	`, name).Scan(&stats.GamesPlayed, &stats.TotalScore, &stats.BestGame, &stats.WinCount)
	if err != nil {
		return nil, fmt.Errorf("getting lifetime stats: %w", err)
	}

	// Calculate win streak (most recent consecutive wins)
	rows, err := q.DB.Query(`
		SELECT gp.rank
		FROM game_players gp
		JOIN games g ON g.id = gp.game_id
		WHERE gp.player_name = $1
		ORDER BY g.ended_at DESC
	`, name)
	if err != nil {
		return nil, fmt.Errorf("getting win streak: %w", err)
	}
	defer rows.Close()

	var ranks []int
	for rows.Next() {
		var rank int
		if err := rows.Scan(&rank); err != nil {
			return nil, err
		}
		ranks = append(ranks, rank)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	stats.WinStreak = WinStreak(ranks)

	awards, err := q.DB.GetPlayerBadges(name)
	if err != nil {
		return nil, err
	}
	stats.Badges = ResolveBadges(awards)

	return stats, nil
}

// WinStreak counts leading first places in ranks ordered newest first.
func WinStreak(ranks []int) int {
	streak := 0
	for _, r := range ranks {
		if r != 1 {
			break
		}
		streak++
	}
	return streak
}

func (q *Queries) GetLeaderboard(category string, limit int) ([]LeaderboardEntry, error) {
	var query string
	switch category {
	case "wins":
		query = `
			SELECT p.name, p.color, COUNT(*) FILTER (WHERE gp.rank = 1) as value
			FROM players p
			JOIN game_players gp ON gp.player_name = p.name
			GROUP BY p.name, p.color
			ORDER BY value DESC, p.name
			LIMIT $1`
	case "score":
		query = `
			SELECT p.name, p.color, COALESCE(SUM(gp.final_score), 0) as value
			FROM players p
			JOIN game_players gp ON gp.player_name = p.name
			GROUP BY p.name, p.color
			ORDER BY value DESC, p.name
			LIMIT $1`
	case "games":
		query = `
			SELECT p.name, p.color, COUNT(*) as value
			FROM players p
			JOIN game_players gp ON gp.player_name = p.name
			GROUP BY p.name, p.color
			ORDER BY value DESC, p.name
			LIMIT $1`
	default:
		return nil, fmt.Errorf("unknown leaderboard category: %s", category)
	}

	rows, err := q.DB.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("getting leaderboard: %w", err)
	}
	defer rows.Close()

	var entries []LeaderboardEntry
	rank := 1
	for rows.Next() {
		var e LeaderboardEntry
		if err := rows.Scan(&e.PlayerName, &e.PlayerColor, &e.Value); err != nil {
			return nil, err
		}
		e.Rank = rank
		rank++
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (q *Queries) GetGameRecap(gameID string) (*GameRecap, error) {
	g, err := q.DB.GetGame(gameID)
	if err != nil {
		return nil, err
	}
	results, err := q.DB.GetGameResults(gameID)
	if err != nil {
		return nil, err
	}
	return &GameRecap{
		GameID:       g.ID,
		RoomID:       g.RoomID,
		TotalRounds:  g.TotalRounds,
		RoundsPlayed: g.RoundsPlayed,
		Decider:      g.Decider,
		WinnerName:   g.WinnerName,
		EndedAt:      g.EndedAt,
		Players:      GameStats(g.ID, g.Decider, results),
	}, nil
}
