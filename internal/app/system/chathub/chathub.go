// Package chathub pushes chat events to connected WebSocket clients.
//
// Clients connect to GET /api/chat/ws with their bearer token (header or
// ?token=). They only receive events; posting and marking read go through
// the REST endpoints. The only inbound frame understood is {"type":"ping"}.
package chathub

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dalemusser/facultrack/internal/app/system/auth"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
	"nhooyr.io/websocket"
)

const (
	sendBuffer    = 64
	publishBuffer = 256
	writeTimeout  = 5 * time.Second
)

// Event types.
const (
	EventMessage = "message"
	EventRead    = "read"
	EventPong    = "pong"
	EventError   = "error"
)

// Event is the JSON frame sent to clients.
type Event struct {
	Type     string `json:"type"`
	ChatID   string `json:"chat_id,omitempty"`
	ReaderID string `json:"reader_id,omitempty"`
	Message  any    `json:"message,omitempty"`
	Error    string `json:"error,omitempty"`
}

type delivery struct {
	userIDs []primitive.ObjectID
	data    []byte
}

// Hub tracks connected clients per user. All map access happens on the
// Run goroutine.
type Hub struct {
	register   chan *Client
	unregister chan *Client
	publish    chan delivery
	done       chan struct{}
	clients    map[*Client]struct{}
	byUser     map[primitive.ObjectID]map[*Client]struct{}
	origins    []string
	log        *zap.Logger
	count      atomic.Int64
}

// New creates a hub. originPatterns are passed to websocket.Accept; empty
// means same-origin only.
func New(originPatterns []string, logger *zap.Logger) *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		publish:    make(chan delivery, publishBuffer),
		done:       make(chan struct{}),
		clients:    make(map[*Client]struct{}),
		byUser:     make(map[primitive.ObjectID]map[*Client]struct{}),
		origins:    originPatterns,
		log:        logger,
	}
}

// ParseOrigins splits a comma-separated origin list.
func ParseOrigins(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Run processes registrations and deliveries until ctx is done, then
// closes every client.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			for c := range h.clients {
				h.remove(c, websocket.StatusGoingAway, "server shutdown")
			}
			return
		case c := <-h.register:
			h.clients[c] = struct{}{}
			if h.byUser[c.userID] == nil {
				h.byUser[c.userID] = make(map[*Client]struct{})
			}
			h.byUser[c.userID][c] = struct{}{}
			h.count.Add(1)
		case c := <-h.unregister:
			h.remove(c, websocket.StatusNormalClosure, "bye")
		case d := <-h.publish:
			h.deliver(d)
		}
	}
}

func (h *Hub) remove(c *Client, status websocket.StatusCode, reason string) {
	if _, ok := h.clients[c]; !ok {
		return
	}
	delete(h.clients, c)
	if set := h.byUser[c.userID]; set != nil {
		delete(set, c)
		if len(set) == 0 {
			delete(h.byUser, c.userID)
		}
	}
	h.count.Add(-1)
	c.close(status, reason)
}

func (h *Hub) deliver(d delivery) {
	for _, uid := range d.userIDs {
		for c := range h.byUser[uid] {
			if !c.Send(d.data) {
				h.log.Warn("dropping slow chat client",
					zap.String("client_id", c.id),
					zap.String("user_id", uid.Hex()))
				h.remove(c, websocket.StatusPolicyViolation, "too slow")
			}
		}
	}
}

// Publish queues ev for every connection of the listed users. It never
// blocks; when the queue is full the event is dropped.
func (h *Hub) Publish(userIDs []primitive.ObjectID, ev Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		h.log.Error("marshal chat event", zap.Error(err))
		return
	}
	select {
	case h.publish <- delivery{userIDs: userIDs, data: data}:
	default:
		h.log.Warn("chat event queue full; dropping event", zap.String("type", ev.Type))
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int64 {
	return h.count.Load()
}

// ServeHTTP upgrades a signed-in request and serves the connection until
// the client goes away. The auth middleware must run first.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	u, ok := auth.CurrentUser(r)
	if !ok || u == nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	userID := u.ObjectID()
	if userID.IsZero() {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{OriginPatterns: h.origins})
	if err != nil {
		h.log.Debug("websocket accept failed", zap.Error(err))
		return
	}

	// The request context ends when this handler returns, so the client
	// gets its own.
	ctx, cancel := context.WithCancel(context.Background())
	c := &Client{
		id:     uuid.NewString(),
		conn:   conn,
		hub:    h,
		ctx:    ctx,
		cancel: cancel,
		send:   make(chan []byte, sendBuffer),
		userID: userID,
	}

	select {
	case h.register <- c:
	case <-h.done:
		c.close(websocket.StatusGoingAway, "server shutdown")
		return
	}

	go c.writeLoop()
	c.readLoop()
}

// Client is one WebSocket connection.
type Client struct {
	id        string
	conn      *websocket.Conn
	hub       *Hub
	ctx       context.Context
	cancel    context.CancelFunc
	send      chan []byte
	closeOnce sync.Once
	userID    primitive.ObjectID
}

// Send queues msg without blocking. Returns false if the buffer is full or
// the client is closed.
func (c *Client) Send(msg []byte) bool {
	select {
	case <-c.ctx.Done():
		return false
	default:
	}
	select {
	case c.send <- msg:
		return true
	default:
		return false
	}
}

func (c *Client) leave() {
	select {
	case c.hub.unregister <- c:
	case <-c.hub.done:
		c.close(websocket.StatusGoingAway, "server shutdown")
	}
}

func (c *Client) readLoop() {
	defer c.leave()

	for {
		_, data, err := c.conn.Read(c.ctx)
		if err != nil {
			return
		}
		var in struct {
			Type string `json:"type"`
		}
		if err := json.Unmarshal(data, &in); err != nil {
			c.sendEvent(Event{Type: EventError, Error: "invalid message"})
			continue
		}
		switch strings.TrimSpace(in.Type) {
		case "ping":
			c.sendEvent(Event{Type: EventPong})
		default:
			c.sendEvent(Event{Type: EventError, Error: "unsupported message type"})
		}
	}
}

func (c *Client) writeLoop() {
	for {
		select {
		case <-c.ctx.Done():
			return
		case msg := <-c.send:
			ctx, cancel := context.WithTimeout(c.ctx, writeTimeout)
			err := c.conn.Write(ctx, websocket.MessageText, msg)
			cancel()
			if err != nil {
				c.leave()
				return
			}
		}
	}
}

// close runs the close handshake off the hub goroutine.
func (c *Client) close(status websocket.StatusCode, reason string) {
	c.closeOnce.Do(func() {
		go func() {
			_ = c.conn.Close(status, reason)
			c.cancel()
		}()
	})
}

func (c *Client) sendEvent(ev Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		return
	}
	_ = c.Send(data)
}
