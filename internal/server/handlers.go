package server

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"
)

const (
	defaultLeaderboardLimit = 10
	maxLeaderboardLimit     = 100
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status := map[string]string{"status": "ok"}
	code := http.StatusOK
	if s.DB != nil {
		if err := s.DB.Ping(ctx); err != nil {
			status["status"] = "db_error"
			status["error"] = err.Error()
			code = http.StatusServiceUnavailable
		}
	}
	if s.Leaderboard != nil && code == http.StatusOK {
		if err := s.Leaderboard.Ping(ctx); err != nil {
			status["status"] = "redis_error"
			status["error"] = err.Error()
			code = http.StatusServiceUnavailable
		}
	}
	writeJSON(w, code, status)
}

func parseLimit(r *http.Request) int {
	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || limit <= 0 {
		return defaultLeaderboardLimit
	}
	return min(limit, maxLeaderboardLimit)
}

// handleLeaderboard serves the Redis win board when configured, else the
// database history.
func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	limit := parseLimit(r)
	category := r.URL.Query().Get("category")
	if category == "" {
		category = "wins"
	}

	if s.Leaderboard != nil && category == "wins" {
		entries, err := s.Leaderboard.Top(r.Context(), limit)
		if err == nil {
			writeJSON(w, http.StatusOK, map[string]any{"source": "redis", "category": category, "entries": entries})
			return
		}
		log.Error().Err(err).Str("component", "redis").Msg("leaderboard read failed")
	}
	if s.Queries == nil {
		writeError(w, http.StatusServiceUnavailable, "unavailable", "no history backend configured")
		return
	}
	entries, err := s.Queries.GetLeaderboard(category, limit)
	if err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"source": "db", "category": category, "entries": entries})
}

func (s *Server) handlePlayerStats(w http.ResponseWriter, r *http.Request) {
	if s.Queries == nil {
		writeError(w, http.StatusServiceUnavailable, "unavailable", "no history backend configured")
		return
	}
	name := mux.Vars(r)["name"]
	stats, err := s.Queries.GetPlayerLifetimeStats(name)
	if errors.Is(err, sql.ErrNoRows) {
		writeError(w, http.StatusNotFound, "not-found", "player not found")
		return
	}
	if err != nil {
		log.Error().Err(err).Str("player", name).Msg("player stats failed")
		writeError(w, http.StatusInternalServerError, "internal", "failed to load player stats")
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleGameRecap(w http.ResponseWriter, r *http.Request) {
	if s.Queries == nil {
		writeError(w, http.StatusServiceUnavailable, "unavailable", "no history backend configured")
		return
	}
	id := mux.Vars(r)["id"]
	recap, err := s.Queries.GetGameRecap(id)
	if errors.Is(err, sql.ErrNoRows) {
		writeError(w, http.StatusNotFound, "not-found", "game not found")
		return
	}
	if err != nil {
		log.Error().Err(err).Str("game_id", id).Msg("game recap failed")
		writeError(w, http.StatusInternalServerError, "internal", "failed to load game")
		return
	}
	writeJSON(w, http.StatusOK, recap)
}
