package server

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"partycards/internal/cards"
	"partycards/internal/config"
	"partycards/internal/events"
	"partycards/internal/game"
	"partycards/internal/players"
	"partycards/internal/rooms"
	"partycards/internal/wshub"
)

type wireMsg struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

func testCatalog() *cards.Catalog {
	responses := make([]string, 80)
	for i := range responses {
		responses[i] = fmt.Sprintf("Response %d", i)
	}
	return cards.NewCatalog(
		[]string{"What ended my last relationship? _____.", "_____: good to the last drop."},
		responses,
		[]string{"You play cards like a folding chair."},
	)
}

func newTestServer(t *testing.T, defaults rooms.Defaults) *Server {
	t.Helper()
	catalog := testCatalog()
	store := rooms.NewStore(defaults, nil)
	engine := game.NewEngine(store, catalog, game.DefaultConfig())
	cfg := config.Default()
	cfg.AdminKey = "letmein"
	return NewServer(cfg, engine, catalog)
}

// connect registers a fake connection with a roomy queue.
func connect(s *Server, id string) *wshub.Client {
	c := &wshub.Client{ID: id, Send: make(chan []byte, 128)}
	s.Hub.Register(c)
	return c
}

// drain returns every message queued for c.
func drain(t *testing.T, c *wshub.Client) []wireMsg {
	t.Helper()
	var msgs []wireMsg
	for {
		select {
		case data := <-c.Send:
			var m wireMsg
			require.NoError(t, json.Unmarshal(data, &m))
			msgs = append(msgs, m)
		default:
			return msgs
		}
	}
}

func types(msgs []wireMsg) []string {
	out := make([]string, len(msgs))
	for i, m := range msgs {
		out[i] = m.Type
	}
	return out
}

// find returns the last message of type t.
func find(t *testing.T, msgs []wireMsg, typ string) wireMsg {
	t.Helper()
	for i := len(msgs) - 1; i >= 0; i-- {
		if msgs[i].Type == typ {
			return msgs[i]
		}
	}
	t.Fatalf("no %q message in %v", typ, types(msgs))
	return wireMsg{}
}

func decode[T any](t *testing.T, m wireMsg) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(m.Payload, &v))
	return v
}

func send(s *Server, connID, typ string, mutate ...func(*events.Inbound)) {
	in := events.Inbound{Type: typ}
	for _, m := range mutate {
		m(&in)
	}
	s.Dispatch(connID, in)
}

func withRoom(id string) func(*events.Inbound) {
	return func(in *events.Inbound) { in.RoomID = id }
}

func withName(name string) func(*events.Inbound) {
	return func(in *events.Inbound) { in.Name = name }
}

func withPlayer(id string) func(*events.Inbound) {
	return func(in *events.Inbound) { in.PlayerID = id }
}

func withCards(ids ...string) func(*events.Inbound) {
	return func(in *events.Inbound) { in.CardIDs = ids }
}

// lobby seats the named players, the first creating the room, and
// returns the room id with each player's fake connection.
func lobby(t *testing.T, s *Server, names ...string) (string, map[string]*wshub.Client) {
	t.Helper()
	conns := make(map[string]*wshub.Client, len(names))
	for _, n := range names {
		conns[n] = connect(s, "conn-"+n)
	}
	send(s, "conn-"+names[0], events.ActionCreateRoom, withName(names[0]))
	created := find(t, drain(t, conns[names[0]]), events.RoomCreated)
	roomID := decode[events.RoomPayload](t, created).RoomID

	for _, n := range names[1:] {
		send(s, "conn-"+n, events.ActionJoin, withRoom(roomID), withName(n))
	}
	for _, c := range conns {
		drain(t, c)
	}
	return roomID, conns
}

func state(t *testing.T, s *Server, roomID string) rooms.Snapshot {
	t.Helper()
	snap, err := s.Engine.Snapshot(roomID)
	require.NoError(t, err)
	return snap
}

func czarOf(t *testing.T, snap rooms.Snapshot) players.Player {
	t.Helper()
	for _, p := range snap.Players {
		if p.IsCzar {
			return p
		}
	}
	t.Fatal("no czar")
	return players.Player{}
}

// submitAll has every non-czar play the first cards of their hand.
func submitAll(t *testing.T, s *Server, roomID string) {
	t.Helper()
	snap := state(t, s, roomID)
	for _, p := range snap.Players {
		if p.IsCzar {
			continue
		}
		ids := make([]string, 0, snap.CurrentPrompt.PickCount)
		for _, c := range p.Hand[:snap.CurrentPrompt.PickCount] {
			ids = append(ids, c.ID)
		}
		send(s, p.ConnectionID, events.ActionSubmit, withCards(ids...))
	}
}
