package db

import (
	"context"
	"errors"
	"os"
	"testing"
)

func getTestDB(t *testing.T) *DB {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set, skipping database tests")
	}
	database, err := Connect(dsn)
	if err != nil {
		t.Fatalf("Connect() error: %v", err)
	}
	if err := database.Migrate(); err != nil {
		t.Fatalf("Migrate() error: %v", err)
	}
	t.Cleanup(func() {
		// Clean up test data
		database.conn.Exec("DELETE FROM player_badges")
		database.conn.Exec("DELETE FROM game_players")
		database.conn.Exec("DELETE FROM games")
		database.conn.Exec("DELETE FROM players")
		database.Close()
	})
	return database
}

func TestConnect(t *testing.T) {
	database := getTestDB(t)
	if err := database.Ping(context.Background()); err != nil {
		t.Errorf("Ping() error: %v", err)
	}
}

func TestMigrate(t *testing.T) {
	database := getTestDB(t)

	// Migrations are idempotent
	if err := database.Migrate(); err != nil {
		t.Fatalf("second Migrate() error: %v", err)
	}

	tables := []string{"players", "games", "game_players", "player_badges"}
	for _, table := range tables {
		var exists bool
		err := database.conn.QueryRow(`
			SELECT EXISTS (SELECT FROM information_schema.tables WHERE table_name = $1)
		`, table).Scan(&exists)
		if err != nil {
			t.Errorf("checking table %s: %v", table, err)
		}
		if !exists {
			t.Errorf("table %s does not exist", table)
		}
	}
}

func TestUpsertPlayer(t *testing.T) {
	database := getTestDB(t)

	if err := database.UpsertPlayer("Alice", "#ff0000"); err != nil {
		t.Fatalf("UpsertPlayer() error: %v", err)
	}
	if err := database.UpsertPlayer("Alice", "#00ff00"); err != nil {
		t.Fatalf("UpsertPlayer() update error: %v", err)
	}

	p, err := database.GetPlayer("Alice")
	if err != nil {
		t.Fatalf("GetPlayer() error: %v", err)
	}
	if p.Color != "#00ff00" {
		t.Errorf("color = %q, want %q", p.Color, "#00ff00")
	}
}

func TestGetPlayer_NotFound(t *testing.T) {
	database := getTestDB(t)

	if _, err := database.GetPlayer("nobody"); err == nil {
		t.Error("GetPlayer() should return error for nonexistent player")
	}
}

func TestRecordGame(t *testing.T) {
	database := getTestDB(t)

	gameID, err := database.RecordGame(GameRecord{
		RoomID:       "ABCDE",
		TotalRounds:  7,
		RoundsPlayed: 8,
		Decider:      true,
		WinnerName:   "Alice",
	}, []PlayerResult{
		{PlayerName: "Alice", Color: "#aabbcc", FinalScore: 4, Rank: 1},
		{PlayerName: "Bob", Color: "#ddeeff", FinalScore: 3, Rank: 2},
		{PlayerName: "Carol", Color: "#112233", FinalScore: 1, Rank: 3},
	})
	if err != nil {
		t.Fatalf("RecordGame() error: %v", err)
	}

	g, err := database.GetGame(gameID)
	if err != nil {
		t.Fatalf("GetGame() error: %v", err)
	}
	if g.RoomID != "ABCDE" || !g.Decider || g.WinnerName != "Alice" || g.RoundsPlayed != 8 {
		t.Errorf("unexpected game: %+v", g)
	}

	results, err := database.GetGameResults(gameID)
	if err != nil {
		t.Fatalf("GetGameResults() error: %v", err)
	}
	if len(results) != 3 || results[0].PlayerName != "Alice" || results[2].FinalScore != 1 {
		t.Errorf("unexpected results: %+v", results)
	}
}

func TestAwardBadges(t *testing.T) {
	database := getTestDB(t)
	database.UpsertPlayer("Alice", "#aabbcc")
	gameID, err := database.RecordGame(GameRecord{RoomID: "ABCDE", TotalRounds: 7, RoundsPlayed: 7, WinnerName: "Alice"},
		[]PlayerResult{{PlayerName: "Alice", Color: "#aabbcc", FinalScore: 7, Rank: 1}})
	if err != nil {
		t.Fatalf("RecordGame() error: %v", err)
	}

	awarded, err := database.AwardBadges("Alice", gameID, []string{"landslide"})
	if err != nil {
		t.Fatalf("AwardBadges() error: %v", err)
	}
	if len(awarded) != 1 || awarded[0] != "landslide" {
		t.Errorf("awarded = %v, want [landslide]", awarded)
	}

	// Held badges are skipped, new ones are reported
	awarded, err = database.AwardBadges("Alice", "", []string{"landslide", "veteran"})
	if err != nil {
		t.Fatalf("AwardBadges() repeat error: %v", err)
	}
	if len(awarded) != 1 || awarded[0] != "veteran" {
		t.Errorf("awarded = %v, want [veteran]", awarded)
	}

	badges, err := database.GetPlayerBadges("Alice")
	if err != nil {
		t.Fatalf("GetPlayerBadges() error: %v", err)
	}
	if len(badges) != 2 {
		t.Fatalf("badges = %+v, want 2", badges)
	}
	byID := map[string]BadgeAward{}
	for _, b := range badges {
		byID[b.BadgeID] = b
	}
	if byID["landslide"].GameID != gameID {
		t.Errorf("landslide game = %q, want %q", byID["landslide"].GameID, gameID)
	}
	if byID["veteran"].GameID != "" {
		t.Errorf("veteran game = %q, want none", byID["veteran"].GameID)
	}
	if byID["veteran"].AwardedAt.IsZero() {
		t.Error("AwardedAt should be set")
	}
}

func TestAwardBadges_RejectsEmptyID(t *testing.T) {
	database := &DB{}

	if awarded, err := database.AwardBadges("Alice", "", nil); err != nil || awarded != nil {
		t.Errorf("AwardBadges(nil) = %v, %v; want nothing", awarded, err)
	}
	if _, err := database.AwardBadges("Alice", "", []string{"veteran", ""}); !errors.Is(err, ErrEmptyBadgeID) {
		t.Errorf("err = %v, want ErrEmptyBadgeID", err)
	}
}
