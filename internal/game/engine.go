package game

import (
	"fmt"
	"math/rand"
	"sync"
	"time"

	"partycards/internal/cards"
	"partycards/internal/rooms"
)

const (
	DefaultHandSize   = 10
	DefaultMinPlayers = 3

	// extra draws allowed per card when avoiding duplicates in one hand
	redrawAttempts = 4
)

// Catalog is the card source the engine deals from.
type Catalog interface {
	DrawPrompt() (cards.Prompt, error)
	DrawResponse() (cards.Response, error)
}

type Config struct {
	RoomIDFormat IDFormat
	HandSize     int
	MinPlayers   int
}

func DefaultConfig() Config {
	return Config{
		RoomIDFormat: FormatCode,
		HandSize:     DefaultHandSize,
		MinPlayers:   DefaultMinPlayers,
	}
}

// Engine runs the room state machine. Every operation holds the target
// room's lock for its whole duration and validates before mutating, so a
// failed call leaves the room as it was.
type Engine struct {
	store   *rooms.Store
	catalog Catalog
	cfg     Config

	rngMu sync.Mutex
	rng   *rand.Rand
}

func NewEngine(store *rooms.Store, catalog Catalog, cfg Config) *Engine {
	if cfg.RoomIDFormat == "" {
		cfg.RoomIDFormat = FormatCode
	}
	if cfg.HandSize <= 0 {
		cfg.HandSize = DefaultHandSize
	}
	if cfg.MinPlayers <= 0 {
		cfg.MinPlayers = DefaultMinPlayers
	}
	return &Engine{
		store:   store,
		catalog: catalog,
		cfg:     cfg,
		rng:     rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (e *Engine) Store() *rooms.Store {
	return e.store
}

func (e *Engine) Config() Config {
	return e.cfg
}

// NormalizeRoomID applies the engine's id format.
func (e *Engine) NormalizeRoomID(raw string) (string, error) {
	return NormalizeRoomID(e.cfg.RoomIDFormat, raw)
}

// lockRoom resolves raw to a live room and returns it locked.
func (e *Engine) lockRoom(raw string) (*rooms.Room, error) {
	id, err := e.NormalizeRoomID(raw)
	if err != nil {
		return nil, err
	}
	room := e.store.Get(id)
	if room == nil {
		return nil, fmt.Errorf("%w: %s", ErrRoomNotFound, id)
	}
	room.Lock()
	if room.Closed() {
		room.Unlock()
		return nil, fmt.Errorf("%w: %s", ErrRoomNotFound, id)
	}
	return room, nil
}

func (e *Engine) touch(room *rooms.Room) {
	room.MarkActive(e.store.Now())
}

func (e *Engine) intn(n int) int {
	e.rngMu.Lock()
	defer e.rngMu.Unlock()
	return e.rng.Intn(n)
}

// drawResponses draws n response cards, steering clear of ids in exclude
// while the catalog allows it. Drawn ids are added to exclude.
func (e *Engine) drawResponses(n int, exclude map[string]bool) ([]cards.Response, error) {
	out := make([]cards.Response, 0, n)
	for len(out) < n {
		var card cards.Response
		for attempt := 0; attempt <= redrawAttempts; attempt++ {
			c, err := e.catalog.DrawResponse()
			if err != nil {
				return nil, err
			}
			card = c
			if !exclude[c.ID] {
				break
			}
		}
		exclude[card.ID] = true
		out = append(out, card)
	}
	return out, nil
}

func handIDs(hand []cards.Response) map[string]bool {
	ids := make(map[string]bool, len(hand))
	for _, c := range hand {
		ids[c.ID] = true
	}
	return ids
}
