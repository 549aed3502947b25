package server

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"partycards/internal/events"
	"partycards/internal/rooms"
)

func dial(t *testing.T, ctx context.Context, ts *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.Dial(ctx, url, nil)
	require.NoError(t, err)
	return conn
}

func readMsg(t *testing.T, ctx context.Context, conn *websocket.Conn) wireMsg {
	t.Helper()
	_, data, err := conn.Read(ctx)
	require.NoError(t, err)
	var m wireMsg
	require.NoError(t, json.Unmarshal(data, &m))
	return m
}

func TestWebSocketCreateAndDisconnect(t *testing.T) {
	s := newTestServer(t, rooms.DefaultSettings())
	ts := httptest.NewServer(s.Routes())
	defer ts.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn := dial(t, ctx, ts)
	require.NoError(t, conn.Write(ctx, websocket.MessageText, []byte(`{"type":"create-room","name":"Alice"}`)))

	msg := readMsg(t, ctx, conn)
	require.Equal(t, events.RoomCreated, msg.Type)
	roomID := decode[events.RoomPayload](t, msg).RoomID
	assert.NotNil(t, s.Store.Get(roomID))
	assert.Equal(t, 1, s.Hub.Count())

	conn.Close(websocket.StatusNormalClosure, "")

	require.Eventually(t, func() bool {
		return s.Store.Count() == 0 && s.Hub.Count() == 0
	}, 2*time.Second, 10*time.Millisecond)
}

func TestWebSocketBadMessage(t *testing.T) {
	s := newTestServer(t, rooms.DefaultSettings())
	ts := httptest.NewServer(s.Routes())
	defer ts.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn := dial(t, ctx, ts)
	defer conn.Close(websocket.StatusNormalClosure, "")

	require.NoError(t, conn.Write(ctx, websocket.MessageText, []byte(`{"roomId":"ABCDE"}`)))
	msg := readMsg(t, ctx, conn)
	require.Equal(t, events.Error, msg.Type)
	assert.Equal(t, codeBadRequest, decode[events.ErrorPayload](t, msg).Code)
}

func TestWebSocketRateLimit(t *testing.T) {
	s := newTestServer(t, rooms.DefaultSettings())
	s.Config.RateLimit = 0.001
	s.Config.RateBurst = 1
	ts := httptest.NewServer(s.Routes())
	defer ts.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn := dial(t, ctx, ts)
	defer conn.Close(websocket.StatusNormalClosure, "")

	for range 2 {
		require.NoError(t, conn.Write(ctx, websocket.MessageText, []byte(`{"type":"get-state"}`)))
	}
	first := readMsg(t, ctx, conn)
	second := readMsg(t, ctx, conn)

	require.Equal(t, events.Error, first.Type)
	assert.Equal(t, "room-not-found", decode[events.ErrorPayload](t, first).Code)
	require.Equal(t, events.Error, second.Type)
	assert.Equal(t, codeRateLimited, decode[events.ErrorPayload](t, second).Code)
}
