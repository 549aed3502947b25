package game

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"partycards/internal/cards"
	"partycards/internal/rooms"
)

// seqCatalog deals response cards with unique sequential ids and always
// draws the same prompt.
type seqCatalog struct {
	mu     sync.Mutex
	prompt string
	n      int
	empty  bool
}

func (c *seqCatalog) DrawPrompt() (cards.Prompt, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.empty {
		return cards.Prompt{}, cards.ErrEmptyCatalog
	}
	return cards.NewPrompt(c.prompt), nil
}

func (c *seqCatalog) DrawResponse() (cards.Response, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.empty {
		return cards.Response{}, cards.ErrEmptyCatalog
	}
	c.n++
	return cards.Response{ID: fmt.Sprintf("r%d", c.n), Text: fmt.Sprintf("response %d", c.n)}, nil
}

type fixture struct {
	engine  *Engine
	store   *rooms.Store
	catalog *seqCatalog
	now     time.Time
}

func newFixture(t *testing.T, defaults rooms.Defaults) *fixture {
	t.Helper()
	f := &fixture{
		catalog: &seqCatalog{prompt: "Best snack: ___"},
		now:     time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC),
	}
	f.store = rooms.NewStore(defaults, func() time.Time { return f.now })
	f.engine = NewEngine(f.store, f.catalog, DefaultConfig())
	return f
}

func conn(name string) string {
	return "conn-" + name
}

// seat creates roomID and joins every name in order.
func (f *fixture) seat(t *testing.T, roomID string, names ...string) {
	t.Helper()
	_, _, err := f.engine.CreateRoom(roomID, 0, "")
	require.NoError(t, err)
	for _, name := range names {
		_, err := f.engine.AddPlayer(roomID, conn(name), name, false)
		require.NoError(t, err)
	}
}

// startedRoom seats Alice, Bob and Carol in ABCDE and starts the game.
func (f *fixture) startedRoom(t *testing.T) string {
	t.Helper()
	f.seat(t, "ABCDE", "Alice", "Bob", "Carol")
	require.NoError(t, f.engine.StartGame("ABCDE"))
	return "ABCDE"
}

func (f *fixture) snapshot(t *testing.T, roomID string) rooms.Snapshot {
	t.Helper()
	snap, err := f.engine.Snapshot(roomID)
	require.NoError(t, err)
	return snap
}

func (f *fixture) czar(t *testing.T, roomID string) string {
	t.Helper()
	for _, p := range f.snapshot(t, roomID).Players {
		if p.IsCzar {
			return p.ConnectionID
		}
	}
	t.Fatalf("room %s has no czar", roomID)
	return ""
}

func (f *fixture) czarCount(t *testing.T, roomID string) int {
	t.Helper()
	n := 0
	for _, p := range f.snapshot(t, roomID).Players {
		if p.IsCzar {
			n++
		}
	}
	return n
}

// pick returns the first n card ids from the player's hand.
func (f *fixture) pick(t *testing.T, roomID, connID string, n int) []string {
	t.Helper()
	for _, p := range f.snapshot(t, roomID).Players {
		if p.ConnectionID != connID {
			continue
		}
		require.GreaterOrEqual(t, len(p.Hand), n)
		ids := make([]string, 0, n)
		for _, c := range p.Hand[:n] {
			ids = append(ids, c.ID)
		}
		return ids
	}
	t.Fatalf("player %s not in room %s", connID, roomID)
	return nil
}

// submitAll has every non-czar player submit valid cards.
func (f *fixture) submitAll(t *testing.T, roomID string) {
	t.Helper()
	snap := f.snapshot(t, roomID)
	for _, p := range snap.Players {
		if p.IsCzar {
			continue
		}
		_, err := f.engine.SubmitCards(roomID, p.ConnectionID, f.pick(t, roomID, p.ConnectionID, snap.CurrentPrompt.PickCount))
		require.NoError(t, err)
	}
}

// playRound submits for everyone, awards winner and returns the result.
func (f *fixture) playRound(t *testing.T, roomID, winner string) WinResult {
	t.Helper()
	f.submitAll(t, roomID)
	res, err := f.engine.SelectWinner(roomID, winner)
	require.NoError(t, err)
	return res
}

func (f *fixture) handSize(t *testing.T, roomID, connID string) int {
	t.Helper()
	for _, p := range f.snapshot(t, roomID).Players {
		if p.ConnectionID == connID {
			return len(p.Hand)
		}
	}
	t.Fatalf("player %s not in room %s", connID, roomID)
	return 0
}

func (f *fixture) room(roomID string) *rooms.Room {
	return f.store.Get(roomID)
}

func lenient() rooms.Defaults {
	return rooms.Defaults{MaxPlayers: 10, WinningScore: 100, TotalRounds: 20}
}
