package rooms

import (
	"sort"
	"sync"
	"time"

	"partycards/internal/players"
)

const DefaultTotalRounds = 7

// Defaults are the per-room settings stamped on creation.
type Defaults struct {
	MaxPlayers   int
	WinningScore int
	TotalRounds  int
}

func DefaultSettings() Defaults {
	return Defaults{
		MaxPlayers:   10,
		WinningScore: 7,
		TotalRounds:  DefaultTotalRounds,
	}
}

// Store is the in-memory room repository. Its lock guards only the id
// map; room contents are guarded by each room's own lock. Lock order is
// room then store, never the reverse.
type Store struct {
	mu       sync.Mutex
	rooms    map[string]*Room
	defaults Defaults
	now      func() time.Time
}

// NewStore builds an empty repository. A nil clock means time.Now.
func NewStore(defaults Defaults, now func() time.Time) *Store {
	if now == nil {
		now = time.Now
	}
	if defaults.TotalRounds <= 0 {
		defaults.TotalRounds = DefaultTotalRounds
	}
	return &Store{
		rooms:    make(map[string]*Room),
		defaults: defaults,
		now:      now,
	}
}

func (s *Store) Now() time.Time {
	return s.now()
}

// Create inserts a Lobby room under id, or returns the existing room
// untouched. The boolean reports whether a room was created.
func (s *Store) Create(id string, totalRounds int, creatorID string) (*Room, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if room, exists := s.rooms[id]; exists {
		return room, false
	}
	if totalRounds <= 0 {
		totalRounds = s.defaults.TotalRounds
	}
	now := s.now()
	room := &Room{
		ID:               id,
		CreatorID:        creatorID,
		Players:          players.NewRoster(),
		CreatedAt:        now,
		LastActivity:     now,
		Submissions:      make(map[string][]string),
		State:            StateLobby,
		MaxPlayers:       s.defaults.MaxPlayers,
		WinningScore:     s.defaults.WinningScore,
		TotalRounds:      totalRounds,
		RemovedPlayerIDs: make(map[string]bool),
		RemovedNames:     make(map[string]bool),
	}
	s.rooms[id] = room
	return room, true
}

func (s *Store) Get(id string) *Room {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rooms[id]
}

// Delete removes the room and discards its contents so transport code
// still holding the pointer sees an empty, closed room.
func (s *Store) Delete(id string) bool {
	s.mu.Lock()
	room, ok := s.rooms[id]
	delete(s.rooms, id)
	s.mu.Unlock()

	if !ok {
		return false
	}
	room.Lock()
	room.Discard()
	room.Unlock()
	return true
}

// Unlink removes room from the map if it is still registered under its
// id. The caller holds the room lock and is responsible for Discard.
func (s *Store) Unlink(room *Room) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cur, ok := s.rooms[room.ID]; ok && cur == room {
		delete(s.rooms, room.ID)
		return true
	}
	return false
}

// DeleteIfEmpty removes the room under id only while nobody is seated in
// it.
func (s *Store) DeleteIfEmpty(id string) bool {
	room := s.Get(id)
	if room == nil {
		return false
	}
	room.Lock()
	defer room.Unlock()
	if room.closed || room.Players.Count() > 0 || !s.Unlink(room) {
		return false
	}
	room.Discard()
	return true
}

// IdleCheck is what CheckIdle decided for one room. Members holds the
// connection ids seated in an expired room.
type IdleCheck struct {
	Verdict   IdleVerdict
	Remaining time.Duration
	Members   []string
}

// CheckIdle classifies room under its lock. An expired room is unlinked and
// discarded before the lock is released, and only while it is still the
// room registered under its id.
func (s *Store) CheckIdle(room *Room, timeout, warnAfter time.Duration) IdleCheck {
	room.Lock()
	defer room.Unlock()

	verdict, remaining := room.checkIdle(s.now(), timeout, warnAfter)
	if verdict != IdleExpired {
		return IdleCheck{Verdict: verdict, Remaining: remaining}
	}
	if !s.Unlink(room) {
		return IdleCheck{}
	}
	seated := room.Players.List()
	members := make([]string, 0, len(seated))
	for _, p := range seated {
		members = append(members, p.ConnectionID)
	}
	room.Discard()
	return IdleCheck{Verdict: IdleExpired, Members: members}
}

// ClearAll removes every room and returns how many there were.
func (s *Store) ClearAll() int {
	s.mu.Lock()
	removed := make([]*Room, 0, len(s.rooms))
	for _, r := range s.rooms {
		removed = append(removed, r)
	}
	s.rooms = make(map[string]*Room)
	s.mu.Unlock()

	for _, r := range removed {
		r.Lock()
		r.Discard()
		r.Unlock()
	}
	return len(removed)
}

// IDs returns a sorted copy of the room ids.
func (s *Store) IDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]string, 0, len(s.rooms))
	for id := range s.rooms {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// List returns a copy of the current room set.
func (s *Store) List() []*Room {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := make([]*Room, 0, len(s.rooms))
	for _, r := range s.rooms {
		list = append(list, r)
	}
	return list
}

func (s *Store) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.rooms)
}

// Touch records activity on the room. Unknown ids are ignored.
func (s *Store) Touch(id string) {
	room := s.Get(id)
	if room == nil {
		return
	}
	room.Lock()
	defer room.Unlock()
	if !room.closed {
		room.MarkActive(s.now())
	}
}
