package rooms

import (
	"sync"
	"time"

	"partycards/internal/cards"
	"partycards/internal/players"
)

type State string

const (
	StateLobby     = State("Lobby")
	StatePlaying   = State("Playing")
	StateJudging   = State("Judging")
	StateRoundOver = State("RoundOver")
	StateGameOver  = State("GameOver")
)

// Room is one game instance. All fields are guarded by the room lock;
// callers take it with Lock/Unlock around every read or write.
type Room struct {
	mu     sync.Mutex
	closed bool

	ID                string
	CreatorID         string
	Players           *players.Roster
	CreatedAt         time.Time
	LastActivity      time.Time
	LastIdleWarning   time.Time
	CurrentPrompt     *cards.Prompt
	Submissions       map[string][]string
	State             State
	CzarIndex         int
	WinningPlayerID   string
	MaxPlayers        int
	WinningScore      int
	TotalRounds       int
	CurrentRound      int
	IsDeciderRound    bool
	RemovedPlayerIDs  map[string]bool
	RemovedNames      map[string]bool
	PlayerWhoLeftName string
	IsLockedForReturn bool
}

func (r *Room) Lock()   { r.mu.Lock() }
func (r *Room) Unlock() { r.mu.Unlock() }

// Closed reports whether the room was discarded by the repository.
// Holders of a stale pointer must treat a closed room as gone.
func (r *Room) Closed() bool {
	return r.closed
}

// Discard empties the room's collections and marks it closed. The caller
// holds the lock.
func (r *Room) Discard() {
	r.closed = true
	r.Players.Clear()
	r.Submissions = map[string][]string{}
	r.RemovedPlayerIDs = map[string]bool{}
	r.RemovedNames = map[string]bool{}
	r.CurrentPrompt = nil
	r.State = StateLobby
	r.CurrentRound = 0
	r.WinningPlayerID = ""
	r.PlayerWhoLeftName = ""
	r.IsLockedForReturn = false
}

// MarkActive stamps activity and re-arms the idle warning. The caller
// holds the lock.
func (r *Room) MarkActive(now time.Time) {
	r.LastActivity = now
	r.LastIdleWarning = time.Time{}
}

// NonCzarCount is the number of players expected to submit this round.
func (r *Room) NonCzarCount() int {
	n := 0
	for _, p := range r.Players.List() {
		if !p.IsCzar {
			n++
		}
	}
	return n
}

// Snapshot is a copy of a room's state safe to hand to the transport.
type Snapshot struct {
	RoomID            string              `json:"roomId"`
	CreatorID         string              `json:"creatorId"`
	Players           []players.Player    `json:"players"`
	CurrentPrompt     *cards.Prompt       `json:"currentPrompt"`
	SubmittedCards    map[string][]string `json:"submittedCards"`
	State             State               `json:"state"`
	CurrentRound      int                 `json:"currentRound"`
	TotalRounds       int                 `json:"totalRounds"`
	IsDeciderRound    bool                `json:"isDeciderRound"`
	WinningPlayerID   string              `json:"winningPlayerId,omitempty"`
	MaxPlayers        int                 `json:"maxPlayers"`
	WinningScore      int                 `json:"winningScore"`
	PlayerWhoLeftName string              `json:"playerWhoLeftName,omitempty"`
	IsLockedForReturn bool                `json:"isLockedForReturn"`
	LastActivity      time.Time           `json:"lastActivity"`
}

// Snapshot copies the room. The caller holds the lock.
func (r *Room) Snapshot() Snapshot {
	var prompt *cards.Prompt
	if r.CurrentPrompt != nil {
		p := *r.CurrentPrompt
		prompt = &p
	}
	subs := make(map[string][]string, len(r.Submissions))
	for id, ids := range r.Submissions {
		subs[id] = append([]string(nil), ids...)
	}
	return Snapshot{
		RoomID:            r.ID,
		CreatorID:         r.CreatorID,
		Players:           r.Players.Snapshot(),
		CurrentPrompt:     prompt,
		SubmittedCards:    subs,
		State:             r.State,
		CurrentRound:      r.CurrentRound,
		TotalRounds:       r.TotalRounds,
		IsDeciderRound:    r.IsDeciderRound,
		WinningPlayerID:   r.WinningPlayerID,
		MaxPlayers:        r.MaxPlayers,
		WinningScore:      r.WinningScore,
		PlayerWhoLeftName: r.PlayerWhoLeftName,
		IsLockedForReturn: r.IsLockedForReturn,
		LastActivity:      r.LastActivity,
	}
}

// Summary is the admin listing view of a room.
type Summary struct {
	RoomID       string    `json:"roomId"`
	State        State     `json:"state"`
	PlayerCount  int       `json:"playerCount"`
	PlayerNames  []string  `json:"playerNames"`
	CurrentRound int       `json:"currentRound"`
	TotalRounds  int       `json:"totalRounds"`
	LastActivity time.Time `json:"lastActivity"`
}

func (r *Room) Summary() Summary {
	r.Lock()
	defer r.Unlock()
	return Summary{
		RoomID:       r.ID,
		State:        r.State,
		PlayerCount:  r.Players.Count(),
		PlayerNames:  r.Players.Names(),
		CurrentRound: r.CurrentRound,
		TotalRounds:  r.TotalRounds,
		LastActivity: r.LastActivity,
	}
}

// IdleVerdict is what an idle check decided for a room.
type IdleVerdict int

const (
	IdleNone IdleVerdict = iota
	IdleWarn
	IdleExpired
)

// checkIdle classifies the room against the idle policy and stamps the
// warning time when a warning is due. remaining is the time left before
// expiry. The caller holds the lock.
func (r *Room) checkIdle(now time.Time, timeout, warnAfter time.Duration) (IdleVerdict, time.Duration) {
	if r.closed {
		return IdleNone, 0
	}
	idle := now.Sub(r.LastActivity)
	switch {
	case idle >= timeout:
		return IdleExpired, 0
	case idle >= warnAfter && r.LastIdleWarning.IsZero():
		r.LastIdleWarning = now
		return IdleWarn, timeout - idle
	}
	return IdleNone, 0
}
