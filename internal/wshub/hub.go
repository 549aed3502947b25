package wshub

import (
	"context"
	"sync"

	"github.com/coder/websocket"
	"github.com/rs/zerolog/log"
)

// SendBuffer is the per-client outbound queue length.
const SendBuffer = 32

// Client represents a single WebSocket connection in the hub.
type Client struct {
	ID   string
	Conn *websocket.Conn
	Send chan []byte
}

// NewClient wraps conn with a fresh send queue.
func NewClient(id string, conn *websocket.Conn) *Client {
	return &Client{ID: id, Conn: conn, Send: make(chan []byte, SendBuffer)}
}

// WritePump reads from the Send channel and writes to the WebSocket connection.
func (c *Client) WritePump(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-c.Send:
			if !ok {
				return
			}
			if err := c.Conn.Write(ctx, websocket.MessageText, msg); err != nil {
				log.Debug().Err(err).Str("conn_id", c.ID).Msg("websocket write failed")
				return
			}
		}
	}
}

// Hub tracks every open connection by id.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*Client
}

func NewHub() *Hub {
	return &Hub{
		clients: make(map[string]*Client),
	}
}

func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[c.ID] = c
}

// Unregister removes a client and closes its Send channel.
func (h *Hub) Unregister(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if c, ok := h.clients[id]; ok {
		close(c.Send)
		delete(h.clients, id)
	}
}

func (h *Hub) Get(id string) *Client {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.clients[id]
}

func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Send queues data for one connection. Non-blocking: drops if the channel
// is full. It reports whether the message was queued.
func (h *Hub) Send(id string, data []byte) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	c, ok := h.clients[id]
	if !ok {
		return false
	}
	select {
	case c.Send <- data:
		return true
	default:
		log.Warn().Str("conn_id", id).Msg("send queue full, message dropped")
		return false
	}
}

// SendMany queues data for each listed connection.
func (h *Hub) SendMany(ids []string, data []byte) {
	for _, id := range ids {
		h.Send(id, data)
	}
}
