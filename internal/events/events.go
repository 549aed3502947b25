// Package events names the messages exchanged with game clients over the
// WebSocket gateway and defines their payloads.
package events

import (
	"encoding/json"
	"fmt"

	"partycards/internal/cards"
	"partycards/internal/players"
)

// Client -> server actions.
const (
	ActionCreateRoom    = "create-room"
	ActionJoin          = "join"
	ActionLeave         = "leave"
	ActionStart         = "start"
	ActionSubmit        = "submit"
	ActionPickWinner    = "pick-winner"
	ActionNextRound     = "next-round"
	ActionWaitForReturn = "wait-for-return"
	ActionRestartRound  = "restart-round"
	ActionRestartGame   = "restart-game"
	ActionResetToLobby  = "reset-to-lobby"
	ActionQuitGame      = "quit-game"
	ActionUpdateRounds  = "update-rounds"
	ActionExtendIdle    = "extend-idle"
	ActionTakedown      = "takedown"
	ActionGetState      = "get-state"
)

// Server -> client events.
const (
	RoomCreated                = "room-created"
	PlayerJoined               = "player-joined"
	PlayerRejoined             = "player-rejoined"
	PlayerLeft                 = "player-left"
	PlayerLeftMidGame          = "player-left-mid-game"
	NotEnoughPlayersAfterLeave = "not-enough-players-after-leave"
	RoomState                  = "room-state"
	HandUpdated                = "hand-updated"
	GameStarted                = "game-started"
	CardSubmitted              = "card-submitted"
	WinnerSelected             = "winner-selected"
	GameOver                   = "game-over"
	RoundStarted               = "round-started"
	WaitingForPlayerReturn     = "waiting-for-player-return"
	RoundRestarted             = "round-restarted"
	GameRestarted              = "game-restarted"
	ReturningToLobby           = "returning-to-lobby"
	GameQuit                   = "game-quit"
	RoomDeleted                = "room-deleted"
	RoomIdleWarning            = "room-idle-warning"
	RoomIdleExtended           = "room-idle-extended"
	Takedown                   = "takedown"
	Error                      = "error"
)

// Inbound is one client action. Fields unused by an action are ignored.
type Inbound struct {
	Type        string   `json:"type"`
	RoomID      string   `json:"roomId,omitempty"`
	Name        string   `json:"name,omitempty"`
	CardIDs     []string `json:"cardIds,omitempty"`
	PlayerID    string   `json:"playerId,omitempty"`
	Rounds      int      `json:"rounds,omitempty"`
	ClearScores bool     `json:"clearScores,omitempty"`
}

// Outbound is the envelope of every server message.
type Outbound struct {
	Type    string `json:"type"`
	Payload any    `json:"payload,omitempty"`
}

// Encode marshals an event into its wire form.
func Encode(eventType string, payload any) ([]byte, error) {
	data, err := json.Marshal(Outbound{Type: eventType, Payload: payload})
	if err != nil {
		return nil, fmt.Errorf("encoding %s: %w", eventType, err)
	}
	return data, nil
}

// Decode parses a client frame.
func Decode(data []byte) (Inbound, error) {
	var in Inbound
	if err := json.Unmarshal(data, &in); err != nil {
		return Inbound{}, fmt.Errorf("decoding client message: %w", err)
	}
	if in.Type == "" {
		return Inbound{}, fmt.Errorf("decoding client message: missing type")
	}
	return in, nil
}

type RoomPayload struct {
	RoomID string `json:"roomId"`
}

type PlayerJoinedPayload struct {
	RoomID      string   `json:"roomId"`
	PlayerID    string   `json:"playerId"`
	Name        string   `json:"name"`
	PlayerNames []string `json:"playerNames"`
}

type PlayerLeftPayload struct {
	RoomID      string   `json:"roomId"`
	Name        string   `json:"name"`
	CreatorID   string   `json:"creatorId,omitempty"`
	PlayerNames []string `json:"playerNames"`
}

type PlayerLeftMidGamePayload struct {
	RoomID           string `json:"roomId"`
	Name             string `json:"name"`
	CreatorID        string `json:"creatorId"`
	ConnectedPlayers int    `json:"connectedPlayers"`
	EnoughPlayers    bool   `json:"enoughPlayers"`
}

type CardSubmittedPayload struct {
	PlayerID     string `json:"playerId"`
	AllSubmitted bool   `json:"allSubmitted"`
}

type WinnerSelectedPayload struct {
	WinnerID   string `json:"winnerId"`
	WinnerName string `json:"winnerName"`
	Score      int    `json:"score"`
}

type GameOverPayload struct {
	WinnerID   string           `json:"winnerId"`
	WinnerName string           `json:"winnerName"`
	Players    []players.Player `json:"players"`
}

type RoundStartedPayload struct {
	Round   int  `json:"round"`
	Decider bool `json:"isDeciderRound"`
}

type WaitingPayload struct {
	Name string `json:"name"`
}

type ReturningToLobbyPayload struct {
	ClearScores bool `json:"clearScores"`
}

type ReasonPayload struct {
	RoomID string `json:"roomId"`
	Reason string `json:"reason"`
}

type IdleWarningPayload struct {
	RoomID           string `json:"roomId"`
	SecondsRemaining int    `json:"secondsRemaining"`
}

// HandPayload is sent to one player only.
type HandPayload struct {
	Hand []cards.Response `json:"hand"`
}

type TakedownPayload struct {
	From    string `json:"from"`
	Message string `json:"message"`
}

type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
