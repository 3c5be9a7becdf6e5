package websocket

import (
	"log"
	"sync"

	"github.com/gorilla/websocket"
)

// Notification represents a message sent over WebSocket
type Notification struct {
	Type    string      `json:"type"`
	Message string      `json:"message"`
	WeekKey string      `json:"weekKey,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	UserID  string      `json:"userID,omitempty"`
}

// Conn is the part of a websocket connection the hub writes to
type Conn interface {
	WriteJSON(v interface{}) error
	Close() error
}

var _ Conn = (*websocket.Conn)(nil)

// Client represents a connected WebSocket client
type Client struct {
	UserID string
	Conn   Conn
	mu     sync.Mutex
}

func (c *Client) send(n Notification) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.Conn.WriteJSON(n)
}

// Hub maintains the set of connected report viewers and broadcasts report
// changes to them
type Hub struct {
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	mu         sync.RWMutex
}

// NewHub creates a new Hub instance
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
	}
}

// Run starts the hub's event loop. It returns after Stop.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				client.Conn.Close()
			}
			h.mu.Unlock()
		case <-h.done:
			return
		}
	}
}

// Stop ends the event loop
func (h *Hub) Stop() {
	close(h.done)
}

// Register adds a client to the hub
func (h *Hub) Register(client *Client) {
	h.register <- client
}

// Unregister removes a client and closes its connection
func (h *Hub) Unregister(client *Client) {
	h.unregister <- client
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Broadcast sends a notification to every connected client. Failed writes
// are logged and the client is dropped.
func (h *Hub) Broadcast(notification Notification) {
	h.mu.RLock()
	var failed []*Client
	for client := range h.clients {
		if err := client.send(notification); err != nil {
			log.Printf("Warning: websocket write to %s failed: %v", client.UserID, err)
			failed = append(failed, client)
		}
	}
	h.mu.RUnlock()

	if len(failed) == 0 {
		return
	}
	h.mu.Lock()
	for _, client := range failed {
		if _, ok := h.clients[client]; ok {
			delete(h.clients, client)
			client.Conn.Close()
		}
	}
	h.mu.Unlock()
}

// BroadcastReportEvent tells every viewer that a report changed
func (h *Hub) BroadcastReportEvent(event, weekKey string, data interface{}) {
	h.Broadcast(Notification{
		Type:    event,
		Message: "Commission report " + weekKey + " changed",
		WeekKey: weekKey,
		Data:    data,
	})
}
