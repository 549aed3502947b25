package server

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"partycards/internal/db"
	"partycards/internal/players"
	"partycards/internal/rooms"
)

const historyBuffer = 64

type finishedGame struct {
	record db.GameRecord
	roster []players.Player
}

// queueHistory hands a finished game to the history writer. It never
// blocks the gateway; a full queue drops the game.
func (s *Server) queueHistory(snap rooms.Snapshot, winnerName string) {
	if s.History == nil {
		return
	}
	g := finishedGame{
		record: db.GameRecord{
			RoomID:       snap.RoomID,
			TotalRounds:  snap.TotalRounds,
			RoundsPlayed: snap.CurrentRound,
			Decider:      snap.IsDeciderRound,
			WinnerName:   winnerName,
		},
		roster: snap.Players,
	}
	select {
	case s.History <- g:
	default:
		log.Warn().Str("room_id", snap.RoomID).Msg("history queue full, game not recorded")
	}
}

// historyWriter drains the queue into the database and the leaderboard
// until ctx is done.
func (s *Server) historyWriter(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case g := <-s.History:
			s.recordGame(ctx, g)
		}
	}
}

func (s *Server) recordGame(ctx context.Context, g finishedGame) {
	if s.Queries != nil {
		gameID, err := s.Queries.RecordGame(g.record, g.roster)
		if err != nil {
			log.Error().Err(err).Str("component", "db").Str("room_id", g.record.RoomID).Msg("record game failed")
		} else {
			log.Info().Str("component", "db").Str("game_id", gameID).Str("room_id", g.record.RoomID).Msg("game recorded")
		}
	}
	if s.Leaderboard != nil && g.record.WinnerName != "" {
		rctx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()
		if _, err := s.Leaderboard.RecordWin(rctx, g.record.WinnerName); err != nil {
			log.Error().Err(err).Str("component", "redis").Msg("record win failed")
		}
	}
}
