package db

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

var ErrEmptyBadgeID = errors.New("empty badge id")

// BadgeAward is one stored badge. GameID is empty for badges earned over a
// career rather than in a single game.
type BadgeAward struct {
	BadgeID   string
	GameID    string
	AwardedAt time.Time
}

// AwardBadges grants badgeIDs to playerName in one transaction and returns
// the ids that were new. Badges the player already holds are skipped; the
// first award keeps its game and time.
func (d *DB) AwardBadges(playerName, gameID string, badgeIDs []string) ([]string, error) {
	if len(badgeIDs) == 0 {
		return nil, nil
	}
	for _, id := range badgeIDs {
		if id == "" {
			return nil, fmt.Errorf("awarding badges to %s: %w", playerName, ErrEmptyBadgeID)
		}
	}

	game := sql.NullString{String: gameID, Valid: gameID != ""}

	tx, err := d.conn.Begin()
	if err != nil {
		return nil, fmt.Errorf("beginning badge transaction: %w", err)
	}
	defer tx.Rollback()

	var awarded []string
	for _, id := range badgeIDs {
		res, err := tx.Exec(`
			INSERT INTO player_badges (player_name, badge_id, game_id)
			VALUES ($1, $2, $3)
			ON CONFLICT (player_name, badge_id) DO NOTHING
		`, playerName, id, game)
		if err != nil {
			return nil, fmt.Errorf("awarding badge %s: %w", id, err)
		}
		if n, err := res.RowsAffected(); err == nil && n > 0 {
			awarded = append(awarded, id)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing badges: %w", err)
	}
	return awarded, nil
}

func (d *DB) GetPlayerBadges(playerName string) ([]BadgeAward, error) {
	rows, err := d.conn.Query(`
		SELECT badge_id, game_id, awarded_at
		FROM player_badges
		WHERE player_name = $1
		ORDER BY awarded_at, badge_id
	`, playerName)
	if err != nil {
		return nil, fmt.Errorf("getting badges: %w", err)
	}
	defer rows.Close()

	var awards []BadgeAward
	for rows.Next() {
		var (
			a    BadgeAward
			game sql.NullString
		)
		if err := rows.Scan(&a.BadgeID, &game, &a.AwardedAt); err != nil {
			return nil, err
		}
		a.GameID = game.String
		awards = append(awards, a)
	}
	return awards, rows.Err()
}
