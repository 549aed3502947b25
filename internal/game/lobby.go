package game

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"partycards/internal/cards"
	"partycards/internal/players"
	"partycards/internal/rooms"
)

const createAttempts = 10

type JoinResult struct {
	RoomID      string
	Player      players.Player
	Rejoined    bool
	ReturnedTo  bool // the rejoining player was the one the room was waiting for
	PlayerNames []string
}

type RemoveResult struct {
	RoomID         string
	Name           string
	Removed        bool
	RoomDeleted    bool
	CzarReassigned bool
	CreatorID      string
	PlayerNames    []string
}

type LeaveResult struct {
	RoomID        string
	Name          string
	Found         bool
	MidGame       bool
	RoomDeleted   bool
	CreatorID     string
	PlayerNames   []string
	Connected     int
	EnoughPlayers bool
}

// ValidateName trims name and rejects blanks.
func ValidateName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", ErrInvalidName
	}
	return name, nil
}

// CreateRoom registers a room under raw, or returns the existing one
// unchanged. It returns the normalized id and whether the room is new.
func (e *Engine) CreateRoom(raw string, totalRounds int, creatorID string) (string, bool, error) {
	id, err := e.NormalizeRoomID(raw)
	if err != nil {
		return "", false, err
	}
	_, created := e.store.Create(id, totalRounds, creatorID)
	if created {
		log.Info().Str("room_id", id).Msg("room created")
	}
	return id, created, nil
}

// CreateRoomWithCode creates a room under a freshly generated id.
func (e *Engine) CreateRoomWithCode(totalRounds int, creatorID string) (string, error) {
	generate := rooms.GenerateCode
	if e.cfg.RoomIDFormat == FormatNumeric {
		generate = rooms.GenerateNumeric
	}
	for range createAttempts {
		id, err := generate()
		if err != nil {
			return "", fmt.Errorf("generating room id: %w", err)
		}
		if _, created := e.store.Create(id, totalRounds, creatorID); created {
			log.Info().Str("room_id", id).Msg("room created")
			return id, nil
		}
	}
	return "", fmt.Errorf("failed to generate unique room id after %d attempts", createAttempts)
}

// AddPlayer seats connID under name. A known name joining a game in
// progress from a new connection is a reconnect and takes over the
// existing seat.
func (e *Engine) AddPlayer(roomID, connID, name string, allowRejoinMidGame bool) (JoinResult, error) {
	name, err := ValidateName(name)
	if err != nil {
		return JoinResult{}, err
	}
	room, err := e.lockRoom(roomID)
	if err != nil {
		return JoinResult{}, err
	}
	defer room.Unlock()

	if room.Players.Get(connID) != nil {
		return JoinResult{}, ErrAlreadyInRoom
	}
	if room.RemovedPlayerIDs[connID] || room.RemovedNames[name] {
		return JoinResult{}, ErrRemovedFromGame
	}

	if existing := room.Players.FindByName(name); existing != nil {
		if room.State == rooms.StateLobby {
			return JoinResult{}, fmt.Errorf("%w: %s", ErrNameTaken, name)
		}
		return e.rebind(room, existing, connID), nil
	}

	inProgress := room.State != rooms.StateLobby
	if inProgress && (!allowRejoinMidGame || room.IsLockedForReturn) {
		return JoinResult{}, ErrGameAlreadyStarted
	}
	if room.Players.Count() >= room.MaxPlayers {
		return JoinResult{}, fmt.Errorf("%w: %d/%d players", ErrRoomFull, room.Players.Count(), room.MaxPlayers)
	}

	var hand []cards.Response
	if inProgress {
		dealt, err := e.drawResponses(e.cfg.HandSize, map[string]bool{})
		if err != nil {
			return JoinResult{}, err
		}
		hand = dealt
	}

	p := room.Players.Add(connID, name)
	p.Hand = hand
	if room.CreatorID == "" {
		room.CreatorID = connID
	}
	e.touch(room)

	return JoinResult{
		RoomID:      room.ID,
		Player:      p.Clone(),
		PlayerNames: room.Players.Names(),
	}, nil
}

func (e *Engine) rebind(room *rooms.Room, p *players.Player, connID string) JoinResult {
	old := p.ConnectionID
	p.ConnectionID = connID
	if room.CreatorID == old {
		room.CreatorID = connID
	}
	if ids, ok := room.Submissions[old]; ok {
		delete(room.Submissions, old)
		room.Submissions[connID] = ids
	}
	if room.WinningPlayerID == old {
		room.WinningPlayerID = connID
	}

	returned := room.IsLockedForReturn && room.PlayerWhoLeftName == p.Name
	if returned {
		room.PlayerWhoLeftName = ""
		room.IsLockedForReturn = false
	}
	e.touch(room)

	log.Info().Str("room_id", room.ID).Str("player", p.Name).Msg("player reconnected")
	return JoinResult{
		RoomID:      room.ID,
		Player:      p.Clone(),
		Rejoined:    true,
		ReturnedTo:  returned,
		PlayerNames: room.Players.Names(),
	}
}

// RemovePlayer drops connID from the room. Missing rooms and players are
// ignored so disconnect races stay harmless.
func (e *Engine) RemovePlayer(roomID, connID string) RemoveResult {
	room, err := e.lockRoom(roomID)
	if err != nil {
		return RemoveResult{}
	}
	defer room.Unlock()
	return e.removeLocked(room, connID)
}

func (e *Engine) removeLocked(room *rooms.Room, connID string) RemoveResult {
	p := room.Players.Get(connID)
	if p == nil {
		return RemoveResult{RoomID: room.ID}
	}
	wasCzar := p.IsCzar
	room.Players.Remove(connID)
	delete(room.Submissions, connID)
	res := RemoveResult{RoomID: room.ID, Name: p.Name, Removed: true}

	if room.Players.Count() == 0 {
		e.store.Unlink(room)
		room.Discard()
		log.Info().Str("room_id", room.ID).Msg("room removed (no players)")
		res.RoomDeleted = true
		return res
	}

	if room.CreatorID == connID {
		room.CreatorID = room.Players.At(0).ConnectionID
	}
	if room.PlayerWhoLeftName == p.Name {
		room.PlayerWhoLeftName = ""
		room.IsLockedForReturn = false
	}

	if wasCzar && (room.State == rooms.StatePlaying || room.State == rooms.StateJudging) {
		czar := room.Players.AssignCzar(room.CzarIndex)
		delete(room.Submissions, czar.ConnectionID)
		czar.SelectedCardIDs = nil
		res.CzarReassigned = true
	}
	if room.State == rooms.StatePlaying {
		closeSubmissions(room)
	}
	e.touch(room)

	res.CreatorID = room.CreatorID
	res.PlayerNames = room.Players.Names()
	return res
}

// LeavePlayer handles an explicit leave or a dropped connection. Outside
// of a running game the player is removed. During a game the seat is kept
// and the room locks until the player returns or the creator decides.
func (e *Engine) LeavePlayer(roomID, connID string) LeaveResult {
	room, err := e.lockRoom(roomID)
	if err != nil {
		return LeaveResult{}
	}
	defer room.Unlock()

	p := room.Players.Get(connID)
	if p == nil {
		return LeaveResult{RoomID: room.ID}
	}

	if room.State == rooms.StateLobby || room.State == rooms.StateGameOver {
		r := e.removeLocked(room, connID)
		return LeaveResult{
			RoomID:      room.ID,
			Name:        r.Name,
			Found:       true,
			RoomDeleted: r.RoomDeleted,
			CreatorID:   r.CreatorID,
			PlayerNames: r.PlayerNames,
			Connected:   len(r.PlayerNames),
		}
	}

	// Only one departure is held open at a time; an earlier one that was
	// never resolved becomes permanent.
	if room.IsLockedForReturn && room.PlayerWhoLeftName != p.Name {
		if prev := room.Players.FindByName(room.PlayerWhoLeftName); prev != nil {
			room.RemovedPlayerIDs[prev.ConnectionID] = true
			room.RemovedNames[prev.Name] = true
			e.removeLocked(room, prev.ConnectionID)
		}
	}

	connected := room.Players.Count() - 1
	if connected <= 0 {
		e.store.Unlink(room)
		room.Discard()
		log.Info().Str("room_id", room.ID).Msg("room removed (everyone left)")
		return LeaveResult{RoomID: room.ID, Name: p.Name, Found: true, MidGame: true, RoomDeleted: true}
	}

	room.PlayerWhoLeftName = p.Name
	room.IsLockedForReturn = true
	if room.CreatorID == connID {
		for _, other := range room.Players.List() {
			if other.ConnectionID != connID {
				room.CreatorID = other.ConnectionID
				break
			}
		}
	}
	e.touch(room)

	log.Info().Str("room_id", room.ID).Str("player", p.Name).Int("connected", connected).Msg("player left mid-game")
	return LeaveResult{
		RoomID:        room.ID,
		Name:          p.Name,
		Found:         true,
		MidGame:       true,
		CreatorID:     room.CreatorID,
		PlayerNames:   room.Players.Names(),
		Connected:     connected,
		EnoughPlayers: connected >= e.cfg.MinPlayers,
	}
}

// UpdateRounds changes the round count before the game starts.
func (e *Engine) UpdateRounds(roomID, callerID string, totalRounds int) error {
	room, err := e.lockRoom(roomID)
	if err != nil {
		return err
	}
	defer room.Unlock()

	if err := requireCreator(room, callerID); err != nil {
		return err
	}
	if room.State != rooms.StateLobby {
		return fmt.Errorf("%w: rounds cannot change after the game started", ErrGameAlreadyStarted)
	}
	if totalRounds < 1 {
		return ErrInvalidRounds
	}
	room.TotalRounds = totalRounds
	e.touch(room)
	return nil
}

// Touch records activity on the room. Invalid or unknown ids are ignored.
func (e *Engine) Touch(roomID string) {
	id, err := e.NormalizeRoomID(roomID)
	if err != nil {
		return
	}
	e.store.Touch(id)
}

func (e *Engine) Snapshot(roomID string) (rooms.Snapshot, error) {
	room, err := e.lockRoom(roomID)
	if err != nil {
		return rooms.Snapshot{}, err
	}
	defer room.Unlock()
	return room.Snapshot(), nil
}

// Takedown checks that both players are seated and returns the sender's
// name for the message.
func (e *Engine) Takedown(roomID, senderID, targetID string) (string, error) {
	room, err := e.lockRoom(roomID)
	if err != nil {
		return "", err
	}
	defer room.Unlock()

	sender := room.Players.Get(senderID)
	if sender == nil {
		return "", fmt.Errorf("%w: sender", ErrPlayerNotFound)
	}
	if room.Players.Get(targetID) == nil {
		return "", fmt.Errorf("%w: target", ErrPlayerNotFound)
	}
	e.touch(room)
	return sender.Name, nil
}

func requireCreator(room *rooms.Room, callerID string) error {
	if room.CreatorID != callerID {
		return ErrUnauthorized
	}
	return nil
}
