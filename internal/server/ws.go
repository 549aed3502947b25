package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"partycards/internal/events"
	"partycards/internal/wshub"
)

const readLimit = 16 << 10

var errRateLimited = errors.New("too many messages, slow down")

func (s *Server) newLimiter() *rate.Limiter {
	if s.Config.RateLimit <= 0 {
		return rate.NewLimiter(rate.Inf, 0)
	}
	return rate.NewLimiter(rate.Limit(s.Config.RateLimit), max(1, s.Config.RateBurst))
}

// handleWS upgrades the request and runs the connection's read loop. Each
// connection gets a fresh id; a dropped connection counts as a leave.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Msg("websocket accept failed")
		return
	}
	conn.SetReadLimit(readLimit)

	connID := uuid.NewString()
	client := wshub.NewClient(connID, conn)
	s.Hub.Register(client)
	s.Metrics.ConnectionsActive.Inc()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()
	go client.WritePump(ctx)

	log.Debug().Str("conn_id", connID).Msg("connection opened")
	defer func() {
		s.leave(connID)
		s.Hub.Unregister(connID)
		s.Metrics.ConnectionsActive.Dec()
		conn.Close(websocket.StatusNormalClosure, "")
		log.Debug().Str("conn_id", connID).Msg("connection closed")
	}()

	limiter := s.newLimiter()
	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			return
		}
		if !limiter.Allow() {
			s.sendError(connID, codeRateLimited, errRateLimited)
			continue
		}
		in, err := events.Decode(data)
		if err != nil {
			s.sendError(connID, codeBadRequest, err)
			continue
		}
		s.Dispatch(connID, in)
	}
}
