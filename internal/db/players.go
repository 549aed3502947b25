package db

import (
	"fmt"
	"time"
)

// Players are keyed by display name; connection ids do not outlive a
// session.
type PlayerRecord struct {
	Name       string
	Color      string
	CreatedAt  time.Time
	LastSeenAt time.Time
}

func (d *DB) UpsertPlayer(name, color string) error {
	_, err := d.conn.Exec(`
		INSERT INTO players (name, color)
		VALUES ($1, $2)
		ON CONFLICT (name) DO UPDATE SET color = $2, last_seen_at = now()
	`, name, color)
	if err != nil {
		return fmt.Errorf("upserting player: %w", err)
	}
	return nil
}

func (d *DB) GetPlayer(name string) (*PlayerRecord, error) {
	var p PlayerRecord
	err := d.conn.QueryRow(`
		SELECT name, color, created_at, last_seen_at FROM players WHERE name = $1
	`, name).Scan(&p.Name, &p.Color, &p.CreatedAt, &p.LastSeenAt)
	if err != nil {
		return nil, fmt.Errorf("getting player: %w", err)
	}
	return &p, nil
}
