// Package hub fans out engine state to connected WebSocket observers,
// carrying arbitrary pre-encoded payloads (the mapped-state/event
// messages in message.go) rather than being coupled to one state shape.
// It logs through hclog rather than the global log package since this is
// library code, not the demo host's main.
package hub

import (
	"sync"

	"github.com/gorilla/websocket"
	"github.com/hashicorp/go-hclog"
)

const clientSendBuffer = 256

// Client is one connected WebSocket observer.
type Client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
}

// Hub fans broadcast messages out to every registered Client.
type Hub struct {
	log        hclog.Logger
	clients    map[*Client]bool
	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client
	mu         sync.RWMutex
}

// New builds an unstarted Hub. Call Run in a goroutine before any client
// registers.
func New(log hclog.Logger) *Hub {
	if log == nil {
		log = hclog.NewNullLogger()
	}
	return &Hub{
		log:        log.Named("hub"),
		clients:    make(map[*Client]bool),
		broadcast:  make(chan []byte, clientSendBuffer),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

// Register adds c to the hub.
func (h *Hub) Register(c *Client) { h.register <- c }

// Unregister removes c from the hub.
func (h *Hub) Unregister(c *Client) { h.unregister <- c }

// Broadcast enqueues msg for delivery to every currently registered
// client.
func (h *Hub) Broadcast(msg []byte) { h.broadcast <- msg }

// ClientCount returns the number of currently registered clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Run services register/unregister/broadcast until the process exits.
// Must be run in its own goroutine.
func (h *Hub) Run() {
	for {
		select {
		case c := <-h.register:
			h.mu.Lock()
			h.clients[c] = true
			n := len(h.clients)
			h.mu.Unlock()
			h.log.Debug("client connected", "total", n)

		case c := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.send)
			}
			n := len(h.clients)
			h.mu.Unlock()
			h.log.Debug("client disconnected", "total", n)

		case msg := <-h.broadcast:
			h.mu.RLock()
			for c := range h.clients {
				select {
				case c.send <- msg:
				default:
					go func(c *Client) { h.unregister <- c }(c)
				}
			}
			h.mu.RUnlock()
		}
	}
}

// NewClient wraps conn as a Client of hub.
func NewClient(hub *Hub, conn *websocket.Conn) *Client {
	return &Client{hub: hub, conn: conn, send: make(chan []byte, clientSendBuffer)}
}

// WritePump relays queued messages to the socket until send is closed or
// a write fails. Run it in its own goroutine per client.
func (c *Client) WritePump() {
	defer c.conn.Close()
	for msg := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			break
		}
	}
}

// ReadPump discards incoming frames, only watching for disconnection.
// Run it in its own goroutine per client.
func (c *Client) ReadPump() {
	defer func() {
		c.hub.Unregister(c)
		c.conn.Close()
	}()
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			break
		}
	}
}
