package game

import (
	"fmt"

	"github.com/rs/zerolog/log"

	"partycards/internal/players"
	"partycards/internal/rooms"
)

// The operations below are the creator's answers to a player leaving
// mid-game. All of them fail with ErrUnauthorized for anyone else.

type QuitResult struct {
	RoomID        string
	ConnectionIDs []string
	PlayerNames   []string
}

// WaitForReturn keeps the room locked for the departed player. It changes
// nothing and returns the name being waited for.
func (e *Engine) WaitForReturn(roomID, callerID string) (string, error) {
	room, err := e.lockRoom(roomID)
	if err != nil {
		return "", err
	}
	defer room.Unlock()

	if err := requireCreator(room, callerID); err != nil {
		return "", err
	}
	e.touch(room)
	return room.PlayerWhoLeftName, nil
}

// RestartRound drops the departed player for good, picks a random czar
// and reopens the current round. Scores and hands are kept.
func (e *Engine) RestartRound(roomID, callerID string) error {
	room, err := e.lockRoom(roomID)
	if err != nil {
		return err
	}
	defer room.Unlock()

	if err := e.checkRestart(room, callerID); err != nil {
		return err
	}
	if room.State == rooms.StateGameOver {
		return fmt.Errorf("%w: game is over", ErrNotPlaying)
	}

	prompt := room.CurrentPrompt
	if prompt == nil {
		p, err := e.catalog.DrawPrompt()
		if err != nil {
			return err
		}
		prompt = &p
	}

	e.dropDeparted(room)
	room.Submissions = make(map[string][]string)
	room.Players.ClearSelections()
	room.WinningPlayerID = ""
	room.CzarIndex = e.intn(room.Players.Count())
	room.Players.AssignCzar(room.CzarIndex)
	room.CurrentPrompt = prompt
	room.State = rooms.StatePlaying
	e.touch(room)

	log.Info().Str("room_id", room.ID).Msg("round restarted")
	return nil
}

// RestartGame drops the departed player for good and starts over with
// fresh hands and zero scores.
func (e *Engine) RestartGame(roomID, callerID string) error {
	room, err := e.lockRoom(roomID)
	if err != nil {
		return err
	}
	defer room.Unlock()

	if err := e.checkRestart(room, callerID); err != nil {
		return err
	}

	departed := departedPlayer(room)
	skip := ""
	if departed != nil {
		skip = departed.ConnectionID
	}
	hands, prompt, err := e.dealGame(room, skip)
	if err != nil {
		return err
	}

	e.dropDeparted(room)
	e.applyNewGame(room, hands, prompt)

	log.Info().Str("room_id", room.ID).Msg("game restarted")
	return nil
}

// ResetToLobby sends the room back to the lobby to wait for more players.
// The departed player is dropped but may join again. Scores survive
// unless clearScores is set.
func (e *Engine) ResetToLobby(roomID, callerID string, clearScores bool) error {
	room, err := e.lockRoom(roomID)
	if err != nil {
		return err
	}
	defer room.Unlock()

	if err := requireCreator(room, callerID); err != nil {
		return err
	}
	if room.State == rooms.StateLobby {
		return nil
	}

	if departed := departedPlayer(room); departed != nil {
		e.removeLocked(room, departed.ConnectionID)
	}
	room.State = rooms.StateLobby
	room.CurrentRound = 0
	room.CzarIndex = 0
	room.IsDeciderRound = false
	room.CurrentPrompt = nil
	room.WinningPlayerID = ""
	room.PlayerWhoLeftName = ""
	room.IsLockedForReturn = false
	room.Submissions = make(map[string][]string)
	room.RemovedPlayerIDs = make(map[string]bool)
	room.RemovedNames = make(map[string]bool)
	room.Players.ClearCzar()
	room.Players.ClearSelections()
	for _, p := range room.Players.List() {
		p.Hand = nil
	}
	if clearScores {
		room.Players.ResetAll()
	}
	e.touch(room)

	log.Info().Str("room_id", room.ID).Bool("clear_scores", clearScores).Msg("room returned to lobby")
	return nil
}

// QuitGame deletes the room for everyone.
func (e *Engine) QuitGame(roomID, callerID string) (QuitResult, error) {
	room, err := e.lockRoom(roomID)
	if err != nil {
		return QuitResult{}, err
	}
	defer room.Unlock()

	if err := requireCreator(room, callerID); err != nil {
		return QuitResult{}, err
	}

	res := QuitResult{RoomID: room.ID, PlayerNames: room.Players.Names()}
	for _, p := range room.Players.List() {
		res.ConnectionIDs = append(res.ConnectionIDs, p.ConnectionID)
	}
	e.store.Unlink(room)
	room.Discard()

	log.Info().Str("room_id", room.ID).Strs("players", res.PlayerNames).Msg("game quit by creator")
	return res, nil
}

// checkRestart validates a restart before anything changes: caller is the
// creator, a game exists, and enough players stay once the departed one
// is dropped.
func (e *Engine) checkRestart(room *rooms.Room, callerID string) error {
	if err := requireCreator(room, callerID); err != nil {
		return err
	}
	if room.State == rooms.StateLobby {
		return fmt.Errorf("%w: game has not started", ErrNotPlaying)
	}
	remaining := room.Players.Count()
	if departedPlayer(room) != nil {
		remaining--
	}
	if remaining < e.cfg.MinPlayers {
		return fmt.Errorf("%w: need at least %d, have %d", ErrNotEnoughPlayers, e.cfg.MinPlayers, remaining)
	}
	return nil
}

func departedPlayer(room *rooms.Room) *players.Player {
	if !room.IsLockedForReturn || room.PlayerWhoLeftName == "" {
		return nil
	}
	return room.Players.FindByName(room.PlayerWhoLeftName)
}

// dropDeparted removes the departed player and bars them from rejoining
// this game.
func (e *Engine) dropDeparted(room *rooms.Room) {
	if p := departedPlayer(room); p != nil {
		room.RemovedPlayerIDs[p.ConnectionID] = true
		room.RemovedNames[p.Name] = true
		e.removeLocked(room, p.ConnectionID)
	}
	room.PlayerWhoLeftName = ""
	room.IsLockedForReturn = false
}
