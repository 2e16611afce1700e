// Package feed streams record events to WebSocket clients. The Hub
// subscribes to the event bus and broadcasts every event to connected
// clients, optionally filtered to a single resource.
package feed

import (
	"context"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/matthewbaird/cruder/internal/event"
)

// writeTimeout bounds how long a broadcast waits on a slow client.
const writeTimeout = 5 * time.Second

// ServerMessage is the envelope for every message sent to a client.
type ServerMessage struct {
	Type string `json:"type"` // "hello", "event", "pong"
	Data any    `json:"data,omitempty"`
}

// ClientMessage is the envelope for messages received from a client.
type ClientMessage struct {
	Type string `json:"type"` // "ping"
}

// HelloData is sent once when a connection is established.
type HelloData struct {
	Resource string `json:"resource,omitempty"`
}

type client struct {
	conn     *websocket.Conn
	resource string // empty means all resources
}

// Hub fans record events out to connected WebSocket clients.
type Hub struct {
	mu      sync.Mutex
	clients map[*client]struct{}
}

func NewHub() *Hub {
	return &Hub{clients: make(map[*client]struct{})}
}

// ServeHTTP upgrades to WebSocket and keeps the connection registered
// until the client disconnects. A ?resource= query parameter restricts
// the stream to events for that resource.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		log.Printf("feed: websocket accept: %v", err)
		return
	}
	defer conn.CloseNow()

	c := &client{conn: conn, resource: r.URL.Query().Get("resource")}
	h.register(c)
	defer h.unregister(c)

	ctx := r.Context()
	h.send(ctx, c, ServerMessage{Type: "hello", Data: HelloData{Resource: c.resource}})

	// Read loop. Clients only send pings; anything else is ignored.
	for {
		var msg ClientMessage
		if err := wsjson.Read(ctx, conn, &msg); err != nil {
			if websocket.CloseStatus(err) != -1 {
				log.Printf("feed: connection closed: %v", websocket.CloseStatus(err))
			}
			return
		}
		if msg.Type == "ping" {
			h.send(ctx, c, ServerMessage{Type: "pong"})
		}
	}
}

// HandleEvent implements the event bus Handler by broadcasting the
// event to every matching client.
func (h *Hub) HandleEvent(ctx context.Context, evt event.DomainEvent) error {
	h.mu.Lock()
	clients := make([]*client, 0, len(h.clients))
	for c := range h.clients {
		if c.resource == "" || c.resource == evt.Resource {
			clients = append(clients, c)
		}
	}
	h.mu.Unlock()

	for _, c := range clients {
		h.send(ctx, c, ServerMessage{Type: "event", Data: evt})
	}
	return nil
}

// ClientCount reports the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

func (h *Hub) register(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[c] = struct{}{}
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.clients, c)
}

func (h *Hub) send(ctx context.Context, c *client, msg ServerMessage) {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	if err := wsjson.Write(ctx, c.conn, msg); err != nil {
		log.Printf("feed: write error: %v", err)
	}
}
