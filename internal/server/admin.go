package server

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"

	"partycards/internal/cards"
	"partycards/internal/game"
	"partycards/internal/rooms"
)

const reasonAdmin = "Room closed by an administrator."

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("write response failed")
	}
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, map[string]string{"code": code, "error": msg})
}

// requireAdmin checks the admin key when one is configured. The key comes
// from the X-Admin-Key header or the key query parameter.
func (s *Server) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if want := s.Config.AdminKey; want != "" {
			got := r.Header.Get("X-Admin-Key")
			if got == "" {
				got = r.URL.Query().Get("key")
			}
			if subtle.ConstantTimeCompare([]byte(got), []byte(want)) != 1 {
				writeError(w, http.StatusUnauthorized, game.Code(game.ErrUnauthorized), "invalid admin key")
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleListRooms(w http.ResponseWriter, r *http.Request) {
	list := s.Store.List()
	summaries := make([]rooms.Summary, 0, len(list))
	for _, room := range list {
		if room.Closed() {
			continue
		}
		summaries = append(summaries, room.Summary())
	}
	writeJSON(w, http.StatusOK, map[string]any{"count": len(summaries), "rooms": summaries})
}

func (s *Server) handleClearRooms(w http.ResponseWriter, r *http.Request) {
	for _, id := range s.Store.IDs() {
		s.Broadcaster.RoomDeleted(id, reasonAdmin)
	}
	n := s.Store.ClearAll()
	log.Info().Int("rooms", n).Msg("admin cleared all rooms")
	writeJSON(w, http.StatusOK, map[string]int{"deleted": n})
}

func (s *Server) handleDeleteRoom(w http.ResponseWriter, r *http.Request) {
	id, err := s.Engine.NormalizeRoomID(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, http.StatusBadRequest, game.Code(err), err.Error())
		return
	}
	if s.Store.Get(id) == nil {
		writeError(w, http.StatusNotFound, game.Code(game.ErrRoomNotFound), "room not found")
		return
	}
	s.Broadcaster.RoomDeleted(id, reasonAdmin)
	s.Store.Delete(id)
	log.Info().Str("room_id", id).Msg("admin deleted room")
	writeJSON(w, http.StatusOK, map[string]string{"deleted": id})
}

type cardsPayload struct {
	Prompts   []string `json:"prompts"`
	Responses []string `json:"responses"`
}

type cardsListing struct {
	Prompts   []cards.Prompt   `json:"prompts"`
	Responses []cards.Response `json:"responses"`
}

func (s *Server) handleGetCards(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, cardsListing{
		Prompts:   s.Catalog.Prompts(),
		Responses: s.Catalog.Responses(),
	})
}

func (s *Server) handleReplaceCards(w http.ResponseWriter, r *http.Request) {
	var body cardsPayload
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 4<<20)).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "invalid JSON body")
		return
	}
	prompts := cleanLines(body.Prompts)
	responses := cleanLines(body.Responses)
	if len(prompts) == 0 || len(responses) == 0 {
		writeError(w, http.StatusBadRequest, codeBadRequest, "prompts and responses must both be non-empty")
		return
	}
	s.Catalog.Replace(prompts, responses)
	log.Info().Int("prompts", len(prompts)).Int("responses", len(responses)).Msg("admin replaced cards")
	writeJSON(w, http.StatusOK, map[string]int{"prompts": len(prompts), "responses": len(responses)})
}

// cleanLines applies the card file rules to submitted text.
func cleanLines(in []string) []string {
	var out []string
	for _, s := range in {
		lines, _ := cards.ReadLines(strings.NewReader(s))
		out = append(out, lines...)
	}
	return out
}
