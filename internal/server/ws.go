package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/ayusman/airkeys/internal/logging"
	"github.com/gorilla/websocket"
)

// Event types sent over /api/events.
const (
	EventKey   = "key"
	EventState = "state"
)

const (
	clientBuffer = 32
	writeTimeout = 2 * time.Second
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow local connections
	},
}

// KeyInfo identifies a pressed key.
type KeyInfo struct {
	Row   int    `json:"row"`
	Col   int    `json:"col"`
	Label string `json:"label"`
}

// Event is a JSON message pushed to websocket clients.
type Event struct {
	Type    string   `json:"type"`
	Seq     int64    `json:"seq"`
	Key     *KeyInfo `json:"key,omitempty"`
	Text    string   `json:"text"`
	Enabled bool     `json:"enabled"`
}

type wsClient struct {
	conn *websocket.Conn
	send chan []byte
}

// EventHub broadcasts key presses and state changes to websocket clients.
// New clients first receive the snapshot event, if one is set.
type EventHub struct {
	mu       sync.Mutex
	clients  map[*wsClient]struct{}
	snapshot func() Event
	logger   *slog.Logger
}

// NewEventHub creates an empty hub. A nil logger uses slog.Default().
func NewEventHub(logger *slog.Logger) *EventHub {
	return &EventHub{
		clients: make(map[*wsClient]struct{}),
		logger:  logging.OrDefault(logger).With("component", "events"),
	}
}

// SetSnapshot sets the function producing the greeting event.
func (h *EventHub) SetSnapshot(fn func() Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.snapshot = fn
}

// Clients returns the number of connected clients.
func (h *EventHub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Publish sends ev to every client. Clients whose buffer is full miss it.
func (h *EventHub) Publish(ev Event) {
	msg, err := json.Marshal(ev)
	if err != nil {
		h.logger.Error("failed to encode event", "error", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		select {
		case c.send <- msg:
		default:
			h.logger.Warn("dropping event for slow client", "type", ev.Type)
		}
	}
}

// ServeHTTP upgrades the request and keeps the client registered until it
// disconnects.
func (h *EventHub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", "error", err)
		return
	}

	c := &wsClient{conn: conn, send: make(chan []byte, clientBuffer)}

	h.mu.Lock()
	if h.snapshot != nil {
		if msg, err := json.Marshal(h.snapshot()); err == nil {
			c.send <- msg
		}
	}
	h.clients[c] = struct{}{}
	h.mu.Unlock()

	h.logger.Debug("events client connected", "remote", r.RemoteAddr)

	go h.writeLoop(c)

	// Clients do not send anything; reading detects disconnects.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	h.mu.Lock()
	delete(h.clients, c)
	close(c.send)
	h.mu.Unlock()

	h.logger.Debug("events client disconnected", "remote", r.RemoteAddr)
}

func (h *EventHub) writeLoop(c *wsClient) {
	defer c.conn.Close()

	for msg := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			return
		}
	}
	c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}

// Close disconnects all clients.
func (h *EventHub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		c.conn.Close()
	}
}
