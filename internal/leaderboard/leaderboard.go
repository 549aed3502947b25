// Package leaderboard keeps all-time win counts in a Redis sorted set.
package leaderboard

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const DefaultKey = "partycards:wins"

type Entry struct {
	PlayerName string `json:"playerName"`
	Wins       int    `json:"wins"`
	Rank       int    `json:"rank"`
}

type Leaderboard struct {
	client *redis.Client
	key    string
}

func New(client *redis.Client, key string) *Leaderboard {
	if key == "" {
		key = DefaultKey
	}
	return &Leaderboard{client: client, key: key}
}

// Connect dials addr and pings it.
func Connect(ctx context.Context, addr string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("pinging redis: %w", err)
	}
	return client, nil
}

func (l *Leaderboard) Ping(ctx context.Context) error {
	return l.client.Ping(ctx).Err()
}

// RecordWin adds one win for name and returns the new total.
func (l *Leaderboard) RecordWin(ctx context.Context, name string) (int, error) {
	n, err := l.client.ZIncrBy(ctx, l.key, 1, name).Result()
	if err != nil {
		return 0, fmt.Errorf("recording win: %w", err)
	}
	return int(n), nil
}

// Top returns the n players with the most wins.
func (l *Leaderboard) Top(ctx context.Context, n int) ([]Entry, error) {
	if n <= 0 {
		return nil, nil
	}
	zs, err := l.client.ZRevRangeWithScores(ctx, l.key, 0, int64(n-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("reading leaderboard: %w", err)
	}
	entries := make([]Entry, 0, len(zs))
	for i, z := range zs {
		name, _ := z.Member.(string)
		entries = append(entries, Entry{PlayerName: name, Wins: int(z.Score), Rank: i + 1})
	}
	return entries, nil
}

// Wins returns name's total, 0 when absent.
func (l *Leaderboard) Wins(ctx context.Context, name string) (int, error) {
	n, err := l.client.ZScore(ctx, l.key, name).Result()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("reading wins: %w", err)
	}
	return int(n), nil
}
