// WebSocket hub broadcasting market lifecycle events.
package wager

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/carsoncohen10/SlingApp-sub001/internal/metrics"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 30 * time.Second
	sendBuffer = 16
)

// Event is a JSON message sent to WebSocket clients when a market changes.
type Event struct {
	Type        string `json:"type"` // stake_placed, stake_cancelled, market_settled, market_refunded
	MarketID    string `json:"market_id"`
	CommunityID string `json:"community_id"`
	Status      string `json:"status,omitempty"`
	Winner      string `json:"winner,omitempty"`
	UserID      string `json:"user_id,omitempty"`
	Option      string `json:"option,omitempty"`
	Stake       int64  `json:"stake,omitempty"`
}

// wsClient pairs a connection with its outbound queue. writePump is the
// connection's only writer, covering both broadcasts and pings; gorilla
// permits at most one concurrent writer per connection.
type wsClient struct {
	conn *websocket.Conn
	send chan []byte
}

func (c *wsClient) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// Hub evicted us.
				c.conn.WriteMessage(websocket.CloseMessage, nil)
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump drains inbound frames to detect disconnects and service pongs.
func (c *wsClient) readPump(h *EventHub) {
	defer func() { h.unregister <- c }()
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

// EventHub manages WebSocket connections and fans market events out to all
// connected clients (the mobile app's live market screens). The client set
// is owned exclusively by the Run loop; registration, eviction, and
// broadcast all go through its channels.
type EventHub struct {
	clients    map[*wsClient]bool
	broadcast  chan []byte
	register   chan *wsClient
	unregister chan *wsClient
}

// NewEventHub creates a new WebSocket hub.
func NewEventHub() *EventHub {
	return &EventHub{
		clients:    make(map[*wsClient]bool),
		broadcast:  make(chan []byte, 256),
		register:   make(chan *wsClient),
		unregister: make(chan *wsClient),
	}
}

// Run starts the hub's main event loop. Must be called in a goroutine.
func (h *EventHub) Run() {
	for {
		select {
		case c := <-h.register:
			h.clients[c] = true
			metrics.WebSocketClients.Inc()
			slog.Info("ws client connected", "total", len(h.clients))

		case c := <-h.unregister:
			h.drop(c)

		case msg := <-h.broadcast:
			for c := range h.clients {
				select {
				case c.send <- msg:
				default:
					// Queue full means the client stopped draining.
					h.drop(c)
				}
			}
		}
	}
}

// drop evicts a client. Closing send stops its writePump, which closes the
// connection and unblocks its readPump.
func (h *EventHub) drop(c *wsClient) {
	if _, ok := h.clients[c]; !ok {
		return
	}
	delete(h.clients, c)
	close(c.send)
	metrics.WebSocketClients.Dec()
}

// Broadcast sends an event to all connected clients.
func (h *EventHub) Broadcast(e Event) {
	data, err := json.Marshal(e)
	if err != nil {
		return
	}
	select {
	case h.broadcast <- data:
	default:
		// Drop if buffer full to avoid blocking settlement.
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(_ *http.Request) bool {
		return true // Allow all origins during development.
	},
}

// HandleWS handles WebSocket upgrade requests at GET /api/v1/ws.
func (h *EventHub) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("ws upgrade failed", "err", err)
		return
	}

	c := &wsClient{conn: conn, send: make(chan []byte, sendBuffer)}
	h.register <- c
	go c.writePump()
	go c.readPump(h)
}
