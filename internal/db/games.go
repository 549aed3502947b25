package db

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

type GameRecord struct {
	ID           string
	RoomID       string
	TotalRounds  int
	RoundsPlayed int
	Decider      bool
	WinnerName   string
	EndedAt      time.Time
}

// PlayerResult is one player's line in a finished game.
type PlayerResult struct {
	PlayerName string
	Color      string
	FinalScore int
	Rank       int
}

// RecordGame stores a finished game and its standings in one transaction
// and returns the new game id.
func (d *DB) RecordGame(game GameRecord, results []PlayerResult) (string, error) {
	id := uuid.NewString()

	tx, err := d.conn.Begin()
	if err != nil {
		return "", fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT INTO games (id, room_id, total_rounds, rounds_played, decider, winner_name)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, id, game.RoomID, game.TotalRounds, game.RoundsPlayed, game.Decider, game.WinnerName)
	if err != nil {
		return "", fmt.Errorf("creating game: %w", err)
	}

	for _, r := range results {
		_, err = tx.Exec(`
			INSERT INTO players (name, color)
			VALUES ($1, $2)
			ON CONFLICT (name) DO UPDATE SET color = $2, last_seen_at = now()
		`, r.PlayerName, r.Color)
		if err != nil {
			return "", fmt.Errorf("upserting player: %w", err)
		}
		_, err = tx.Exec(`
			INSERT INTO game_players (game_id, player_name, final_score, rank)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (game_id, player_name) DO UPDATE SET final_score = $3, rank = $4
		`, id, r.PlayerName, r.FinalScore, r.Rank)
		if err != nil {
			return "", fmt.Errorf("adding game player: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("committing game: %w", err)
	}
	return id, nil
}

func (d *DB) GetGame(id string) (*GameRecord, error) {
	var g GameRecord
	err := d.conn.QueryRow(`
		SELECT id, room_id, total_rounds, rounds_played, decider, winner_name, ended_at
		FROM games WHERE id = $1
	`, id).Scan(&g.ID, &g.RoomID, &g.TotalRounds, &g.RoundsPlayed, &g.Decider, &g.WinnerName, &g.EndedAt)
	if err != nil {
		return nil, fmt.Errorf("getting game: %w", err)
	}
	return &g, nil
}

// GetGameResults lists a game's standings, best rank first.
func (d *DB) GetGameResults(gameID string) ([]PlayerResult, error) {
	rows, err := d.conn.Query(`
		SELECT gp.player_name, p.color, gp.final_score, gp.rank
		FROM game_players gp
		JOIN players p ON p.name = gp.player_name
		WHERE gp.game_id = $1
		ORDER BY gp.rank, gp.player_name
	`, gameID)
	if err != nil {
		return nil, fmt.Errorf("getting game players: %w", err)
	}
	defer rows.Close()

	var results []PlayerResult
	for rows.Next() {
		var r PlayerResult
		if err := rows.Scan(&r.PlayerName, &r.Color, &r.FinalScore, &r.Rank); err != nil {
			return nil, err
		}
		results = append(results, r)
	}
	return results, rows.Err()
}
