package server

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"partycards/internal/events"
	"partycards/internal/game"
)

const (
	codeBadRequest  = "bad-request"
	codeRateLimited = "rate-limited"
	codeUnknown     = "unknown-action"

	reasonEveryoneLeft = "Everyone left the room."
	reasonQuit         = "The room creator ended the game."
)

var errUnknownAction = errors.New("unknown action")

type action func(s *Server, connID string, in events.Inbound) error

var actions = map[string]action{
	events.ActionCreateRoom:    (*Server).createRoom,
	events.ActionJoin:          (*Server).join,
	events.ActionLeave:         (*Server).leaveAction,
	events.ActionStart:         (*Server).start,
	events.ActionSubmit:        (*Server).submit,
	events.ActionPickWinner:    (*Server).pickWinner,
	events.ActionNextRound:     (*Server).nextRound,
	events.ActionWaitForReturn: (*Server).waitForReturn,
	events.ActionRestartRound:  (*Server).restartRound,
	events.ActionRestartGame:   (*Server).restartGame,
	events.ActionResetToLobby:  (*Server).resetToLobby,
	events.ActionQuitGame:      (*Server).quitGame,
	events.ActionUpdateRounds:  (*Server).updateRounds,
	events.ActionExtendIdle:    (*Server).extendIdle,
	events.ActionTakedown:      (*Server).takedown,
	events.ActionGetState:      (*Server).getState,
}

// Dispatch runs one client action. Errors go back to the caller only.
func (s *Server) Dispatch(connID string, in events.Inbound) {
	s.Metrics.GatewayActions.WithLabelValues(metricLabel(in.Type)).Inc()

	act, ok := actions[in.Type]
	if !ok {
		s.sendError(connID, codeUnknown, fmt.Errorf("%w: %q", errUnknownAction, in.Type))
		return
	}
	if err := act(s, connID, in); err != nil {
		code := game.Code(err)
		s.sendError(connID, code, err)
		log.Debug().Err(err).Str("conn_id", connID).Str("action", in.Type).Str("code", code).Msg("action rejected")
	}
}

func metricLabel(t string) string {
	if _, ok := actions[t]; ok {
		return t
	}
	return "unknown"
}

func (s *Server) sendError(connID, code string, err error) {
	s.Metrics.GatewayErrors.WithLabelValues(code).Inc()
	s.Broadcaster.ToConn(connID, events.Error, events.ErrorPayload{Code: code, Message: err.Error()})
}

// currentRoom is the room connID has joined. Every action after create or
// join targets it, whatever roomId the client sends.
func (s *Server) currentRoom(connID string) (string, error) {
	if id := s.Broadcaster.RoomOf(connID); id != "" {
		return id, nil
	}
	return "", fmt.Errorf("%w: join a room first", game.ErrRoomNotFound)
}

func (s *Server) sendState(roomID string) {
	snap, err := s.Engine.Snapshot(roomID)
	if err != nil {
		return
	}
	s.Broadcaster.ToRoom(roomID, events.RoomState, snap)
}

// pushHands sends every seated player their own hand.
func (s *Server) pushHands(roomID string) {
	snap, err := s.Engine.Snapshot(roomID)
	if err != nil {
		return
	}
	for _, p := range snap.Players {
		s.Broadcaster.ToConn(p.ConnectionID, events.HandUpdated, events.HandPayload{Hand: p.Hand})
	}
}

func (s *Server) createRoom(connID string, in events.Inbound) error {
	name, err := game.ValidateName(in.Name)
	if err != nil {
		return err
	}

	var (
		roomID  string
		created bool
	)
	if in.RoomID != "" {
		roomID, created, err = s.Engine.CreateRoom(in.RoomID, in.Rounds, connID)
	} else {
		roomID, err = s.Engine.CreateRoomWithCode(in.Rounds, connID)
		created = err == nil
	}
	if err != nil {
		return err
	}
	if created {
		s.Metrics.RoomsCreated.Inc()
	}

	if err := s.seat(connID, roomID, name, created); err != nil {
		return err
	}
	s.Broadcaster.ToConn(connID, events.RoomCreated, events.RoomPayload{RoomID: roomID})
	return nil
}

func (s *Server) join(connID string, in events.Inbound) error {
	name, err := game.ValidateName(in.Name)
	if err != nil {
		return err
	}
	roomID, created, err := s.Engine.CreateRoom(in.RoomID, in.Rounds, "")
	if err != nil {
		return err
	}
	if created {
		s.Metrics.RoomsCreated.Inc()
	}
	return s.seat(connID, roomID, name, created)
}

// seat adds connID to roomID and announces it. A room created for this
// join is removed again when the join fails and nobody else has taken a
// seat in it meanwhile.
func (s *Server) seat(connID, roomID, name string, created bool) error {
	if prev := s.Broadcaster.RoomOf(connID); prev != "" && prev != roomID {
		s.leave(connID)
	}

	res, err := s.Engine.AddPlayer(roomID, connID, name, s.Config.AllowMidGameJoin)
	if err != nil {
		if created {
			s.Store.DeleteIfEmpty(roomID)
		}
		return err
	}
	s.Broadcaster.Join(roomID, connID)

	payload := events.PlayerJoinedPayload{
		RoomID:      roomID,
		PlayerID:    connID,
		Name:        res.Player.Name,
		PlayerNames: res.PlayerNames,
	}
	if res.Rejoined {
		s.Broadcaster.ToRoom(roomID, events.PlayerRejoined, payload)
	} else {
		s.Broadcaster.ToRoom(roomID, events.PlayerJoined, payload)
	}
	s.sendState(roomID)
	if len(res.Player.Hand) > 0 {
		s.Broadcaster.ToConn(connID, events.HandUpdated, events.HandPayload{Hand: res.Player.Hand})
	}
	return nil
}

func (s *Server) leaveAction(connID string, _ events.Inbound) error {
	s.leave(connID)
	return nil
}

// leave handles an explicit leave and a dropped connection alike.
func (s *Server) leave(connID string) {
	roomID := s.Broadcaster.Leave(connID)
	if roomID == "" {
		return
	}
	res := s.Engine.LeavePlayer(roomID, connID)
	if !res.Found {
		return
	}
	if res.RoomDeleted {
		s.Broadcaster.RoomDeleted(roomID, reasonEveryoneLeft)
		return
	}

	if res.MidGame {
		payload := events.PlayerLeftMidGamePayload{
			RoomID:           roomID,
			Name:             res.Name,
			CreatorID:        res.CreatorID,
			ConnectedPlayers: res.Connected,
			EnoughPlayers:    res.EnoughPlayers,
		}
		if res.EnoughPlayers {
			s.Broadcaster.ToRoom(roomID, events.PlayerLeftMidGame, payload)
		} else {
			s.Broadcaster.ToRoom(roomID, events.NotEnoughPlayersAfterLeave, payload)
		}
	} else {
		s.Broadcaster.ToRoom(roomID, events.PlayerLeft, events.PlayerLeftPayload{
			RoomID:      roomID,
			Name:        res.Name,
			CreatorID:   res.CreatorID,
			PlayerNames: res.PlayerNames,
		})
	}
	s.sendState(roomID)
}

func (s *Server) start(connID string, _ events.Inbound) error {
	roomID, err := s.currentRoom(connID)
	if err != nil {
		return err
	}
	if err := s.Engine.StartGame(roomID); err != nil {
		return err
	}
	s.Metrics.GamesStarted.Inc()
	s.Broadcaster.ToRoom(roomID, events.GameStarted, nil)
	s.sendState(roomID)
	s.pushHands(roomID)
	return nil
}

func (s *Server) submit(connID string, in events.Inbound) error {
	roomID, err := s.currentRoom(connID)
	if err != nil {
		return err
	}
	res, err := s.Engine.SubmitCards(roomID, connID, in.CardIDs)
	if err != nil {
		return err
	}
	s.Broadcaster.ToRoom(roomID, events.CardSubmitted, events.CardSubmittedPayload{
		PlayerID:     connID,
		AllSubmitted: res.AllSubmitted,
	})
	s.sendState(roomID)
	return nil
}

func (s *Server) pickWinner(connID string, in events.Inbound) error {
	roomID, err := s.currentRoom(connID)
	if err != nil {
		return err
	}
	res, err := s.Engine.SelectWinnerAs(roomID, connID, in.PlayerID)
	if err != nil {
		return err
	}
	s.Broadcaster.ToRoom(roomID, events.WinnerSelected, events.WinnerSelectedPayload{
		WinnerID:   res.WinnerID,
		WinnerName: res.WinnerName,
		Score:      res.Score,
	})
	s.sendState(roomID)
	if res.GameOver {
		s.gameOver(roomID)
	}
	return nil
}

func (s *Server) nextRound(connID string, _ events.Inbound) error {
	roomID, err := s.currentRoom(connID)
	if err != nil {
		return err
	}
	res, err := s.Engine.NextRound(roomID)
	if err != nil {
		return err
	}
	if !res.GameOver {
		s.Broadcaster.ToRoom(roomID, events.RoundStarted, events.RoundStartedPayload{
			Round:   res.Round,
			Decider: res.Decider,
		})
	}
	s.sendState(roomID)
	if res.GameOver {
		s.gameOver(roomID)
	} else {
		s.pushHands(roomID)
	}
	return nil
}

// gameOver announces the final standings and queues the game for history.
func (s *Server) gameOver(roomID string) {
	snap, err := s.Engine.Snapshot(roomID)
	if err != nil {
		return
	}
	payload := events.GameOverPayload{WinnerID: snap.WinningPlayerID, Players: snap.Players}
	for _, p := range snap.Players {
		if p.ConnectionID == snap.WinningPlayerID {
			payload.WinnerName = p.Name
		}
	}
	s.Broadcaster.ToRoom(roomID, events.GameOver, payload)
	s.Metrics.GamesFinished.Inc()
	s.queueHistory(snap, payload.WinnerName)
}

func (s *Server) waitForReturn(connID string, _ events.Inbound) error {
	roomID, err := s.currentRoom(connID)
	if err != nil {
		return err
	}
	name, err := s.Engine.WaitForReturn(roomID, connID)
	if err != nil {
		return err
	}
	s.Broadcaster.ToRoom(roomID, events.WaitingForPlayerReturn, events.WaitingPayload{Name: name})
	return nil
}

func (s *Server) restartRound(connID string, _ events.Inbound) error {
	roomID, err := s.currentRoom(connID)
	if err != nil {
		return err
	}
	if err := s.Engine.RestartRound(roomID, connID); err != nil {
		return err
	}
	s.Broadcaster.ToRoom(roomID, events.RoundRestarted, nil)
	s.sendState(roomID)
	s.pushHands(roomID)
	return nil
}

func (s *Server) restartGame(connID string, _ events.Inbound) error {
	roomID, err := s.currentRoom(connID)
	if err != nil {
		return err
	}
	if err := s.Engine.RestartGame(roomID, connID); err != nil {
		return err
	}
	s.Metrics.GamesStarted.Inc()
	s.Broadcaster.ToRoom(roomID, events.GameRestarted, nil)
	s.sendState(roomID)
	s.pushHands(roomID)
	return nil
}

func (s *Server) resetToLobby(connID string, in events.Inbound) error {
	roomID, err := s.currentRoom(connID)
	if err != nil {
		return err
	}
	if err := s.Engine.ResetToLobby(roomID, connID, in.ClearScores); err != nil {
		return err
	}
	s.Broadcaster.ToRoom(roomID, events.ReturningToLobby, events.ReturningToLobbyPayload{ClearScores: in.ClearScores})
	s.sendState(roomID)
	return nil
}

func (s *Server) quitGame(connID string, _ events.Inbound) error {
	roomID, err := s.currentRoom(connID)
	if err != nil {
		return err
	}
	if _, err := s.Engine.QuitGame(roomID, connID); err != nil {
		return err
	}
	s.Broadcaster.ToRoom(roomID, events.GameQuit, events.ReasonPayload{RoomID: roomID, Reason: reasonQuit})
	s.Broadcaster.DropGroup(roomID)
	return nil
}

func (s *Server) updateRounds(connID string, in events.Inbound) error {
	roomID, err := s.currentRoom(connID)
	if err != nil {
		return err
	}
	if err := s.Engine.UpdateRounds(roomID, connID, in.Rounds); err != nil {
		return err
	}
	s.sendState(roomID)
	return nil
}

func (s *Server) extendIdle(connID string, _ events.Inbound) error {
	roomID, err := s.currentRoom(connID)
	if err != nil {
		return err
	}
	s.Engine.Touch(roomID)
	s.Broadcaster.ToRoom(roomID, events.RoomIdleExtended, events.RoomPayload{RoomID: roomID})
	return nil
}

func (s *Server) takedown(connID string, in events.Inbound) error {
	roomID, err := s.currentRoom(connID)
	if err != nil {
		return err
	}
	from, err := s.Engine.Takedown(roomID, connID, in.PlayerID)
	if err != nil {
		return err
	}
	s.Broadcaster.ToConn(in.PlayerID, events.Takedown, events.TakedownPayload{
		From:    from,
		Message: s.Catalog.DrawTakedown(),
	})
	return nil
}

func (s *Server) getState(connID string, _ events.Inbound) error {
	roomID, err := s.currentRoom(connID)
	if err != nil {
		return err
	}
	snap, err := s.Engine.Snapshot(roomID)
	if err != nil {
		return err
	}
	s.Broadcaster.ToConn(connID, events.RoomState, snap)
	return nil
}
