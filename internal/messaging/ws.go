package messaging

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/sudo-init-do/ledgerhub/internal/logging"
)

const (
	writeWait  = 5 * time.Second
	sendBuffer = 16
)

type wsEvent struct {
	Type string      `json:"type"`
	Data interface{} `json:"data,omitempty"`
}

// client is one websocket subscriber. Only writePump writes to conn.
type client struct {
	conn *websocket.Conn
	send chan []byte
}

// Hub fans feed events out to every connected websocket client. Each
// client has a buffered queue drained by its own writer goroutine; a
// client whose queue is full is disconnected.
type Hub struct {
	mu      sync.Mutex
	clients map[*client]struct{}
	log     logging.Logger
}

func NewHub(log logging.Logger) *Hub {
	return &Hub{clients: make(map[*client]struct{}), log: log}
}

func (h *Hub) broadcast(evt wsEvent) {
	payload, err := json.Marshal(evt)
	if err != nil {
		h.log.Error(context.Background(), "encode feed event", "error", err)
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		select {
		case c.send <- payload:
		default:
			h.log.Warn(context.Background(), "dropping slow feed client")
			h.drop(c)
		}
	}
}

// attach adds c and queues the ready event for it.
func (h *Hub) attach(c *client) {
	payload, _ := json.Marshal(wsEvent{Type: "ready"})
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[c] = struct{}{}
	c.send <- payload
}

func (h *Hub) register(conn *websocket.Conn) *client {
	c := &client{conn: conn, send: make(chan []byte, sendBuffer)}
	h.attach(c)
	go h.writePump(c)
	return c
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.drop(c)
}

// drop requires h.mu.
func (h *Hub) drop(c *client) {
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
}

func (h *Hub) writePump(c *client) {
	defer c.conn.Close()
	for payload := range c.send {
		_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			h.unregister(c)
			return
		}
	}
	_ = c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
		time.Now().Add(writeWait))
}

// Len reports the number of connected clients.
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Close disconnects every client.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		h.drop(c)
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// FeedWS streams newly posted feed messages.
// GET /api/messages/ws
func (h *Handler) FeedWS(c echo.Context) error {
	ws, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}
	sub := h.hub.register(ws)

	// server push only; reads just detect the disconnect
	for {
		if _, _, err := ws.ReadMessage(); err != nil {
			h.hub.unregister(sub)
			return nil
		}
	}
}
