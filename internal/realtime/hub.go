// Package realtime pushes audit events and transfer requests to connected
// dispatchers over websockets.
package realtime

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	MessageTypeAudit           = "audit"
	MessageTypeTransferRequest = "transfer_request"

	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
)

// Message is the envelope written to clients.
type Message struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

type envelope struct {
	userID    string
	adminOnly bool
	message   *Message
}

// Client is one websocket connection owned by an authenticated user.
type Client struct {
	userID string
	admin  bool
	conn   *websocket.Conn
	send   chan *Message
	hub    *Hub
}

type Hub struct {
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	outbound   chan envelope
	done       chan struct{}
	upgrader   websocket.Upgrader
	log        *zap.Logger
	mu         sync.RWMutex
}

func NewHub(log *zap.Logger) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		outbound:   make(chan envelope, 256),
		done:       make(chan struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		log: log.Named("realtime"),
	}
}

// Run dispatches messages until ctx is cancelled, then closes every client.
func (h *Hub) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			close(h.done)
			h.mu.Lock()
			for c := range h.clients {
				delete(h.clients, c)
				close(c.send)
			}
			h.mu.Unlock()
			return nil

		case c := <-h.register:
			h.mu.Lock()
			h.clients[c] = true
			h.mu.Unlock()
			h.log.Debug("client registered", zap.String("user_id", c.userID))

		case c := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.send)
			}
			h.mu.Unlock()

		case env := <-h.outbound:
			h.mu.Lock()
			for c := range h.clients {
				if env.userID != "" && c.userID != env.userID {
					continue
				}
				if env.adminOnly && !c.admin {
					continue
				}
				select {
				case c.send <- env.message:
				default:
					// slow consumer
					delete(h.clients, c)
					close(c.send)
				}
			}
			h.mu.Unlock()
		}
	}
}

// Broadcast queues msg for every client. It never blocks; when the queue is
// full the message is dropped.
func (h *Hub) Broadcast(msgType string, data any) {
	h.enqueue(envelope{message: &Message{Type: msgType, Data: data}})
}

// BroadcastAdmins queues msg for admin connections only.
func (h *Hub) BroadcastAdmins(msgType string, data any) {
	h.enqueue(envelope{adminOnly: true, message: &Message{Type: msgType, Data: data}})
}

// SendTo queues msg for the connections of a single user.
func (h *Hub) SendTo(userID, msgType string, data any) {
	h.enqueue(envelope{userID: userID, message: &Message{Type: msgType, Data: data}})
}

func (h *Hub) enqueue(env envelope) {
	select {
	case h.outbound <- env:
	default:
		h.log.Warn("outbound queue full, dropping message", zap.String("type", env.message.Type))
	}
}

// Disconnect closes every connection of userID. The write pump sends a close
// frame once it drains the send channel.
func (h *Hub) Disconnect(userID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	n := 0
	for c := range h.clients {
		if c.userID != userID {
			continue
		}
		delete(h.clients, c)
		close(c.send)
		n++
	}
	if n > 0 {
		h.log.Debug("clients disconnected", zap.String("user_id", userID), zap.Int("count", n))
	}
}

// ClientCount returns the number of live connections.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Serve upgrades the request and attaches the connection to userID. Admin
// connections also receive the audit stream.
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request, userID string, admin bool) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("upgrade failed", zap.String("remote_addr", r.RemoteAddr), zap.Error(err))
		return
	}

	c := &Client{userID: userID, admin: admin, conn: conn, send: make(chan *Message, 64), hub: h}
	select {
	case h.register <- c:
	case <-h.done:
		conn.Close()
		return
	}

	go c.writePump()
	go c.readPump()
}

// readPump only drains control frames; clients do not send commands.
func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(512)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.hub.log.Debug("read error", zap.Error(err))
			}
			return
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			data, err := json.Marshal(msg)
			if err != nil {
				c.hub.log.Error("marshal message", zap.Error(err))
				continue
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
