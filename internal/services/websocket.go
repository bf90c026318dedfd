package services

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for development
	},
}

// Client represents one WebSocket subscriber for a single tracking id
type Client struct {
	TrackingID string
	Conn       *websocket.Conn
	Send       chan []byte
	Hub        *Hub
}

// Hub maintains the set of active clients and fans tracking updates out
// to the subscribers of the matching tracking id
type Hub struct {
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	mutex      sync.RWMutex
}

// NewHub creates a new WebSocket hub
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

// Run starts the hub
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mutex.Lock()
			h.clients[client] = true
			h.mutex.Unlock()
			log.Printf("Tracking subscriber connected for %s", client.TrackingID)

		case client := <-h.unregister:
			h.mutex.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.Send)
			}
			h.mutex.Unlock()
			log.Printf("Tracking subscriber disconnected for %s", client.TrackingID)
		}
	}
}

// BroadcastToTracking sends a message to every subscriber of a tracking id.
// Slow subscribers are dropped rather than blocking the fan-out.
func (h *Hub) BroadcastToTracking(trackingID string, message []byte) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	for client := range h.clients {
		if client.TrackingID == trackingID {
			select {
			case client.Send <- message:
			default:
				close(client.Send)
				delete(h.clients, client)
			}
		}
	}
}

// GetConnectedClients returns the number of connected clients
func (h *Hub) GetConnectedClients() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.clients)
}

// ListenTrackingUpdates consumes the Redis tracking channel and fans each
// update out to the hub's subscribers. Run it in its own goroutine.
func (h *Hub) ListenTrackingUpdates(ctx context.Context) {
	sub := SubscribeTrackingUpdates(ctx)
	defer sub.Close()

	for msg := range sub.Channel() {
		var update TrackingUpdate
		if err := json.Unmarshal([]byte(msg.Payload), &update); err != nil {
			log.Printf("Error unmarshaling tracking update: %v", err)
			continue
		}
		h.BroadcastToTracking(update.TrackingID, []byte(msg.Payload))
	}
}

// HandleWebSocket upgrades the connection and subscribes it to a tracking id
func HandleWebSocket(hub *Hub, w http.ResponseWriter, r *http.Request, trackingID string) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade error: %v", err)
		return
	}

	client := &Client{
		TrackingID: trackingID,
		Conn:       conn,
		Send:       make(chan []byte, 256),
		Hub:        hub,
	}

	client.Hub.register <- client

	go client.writePump()
	go client.readPump()
}

// readPump drains the connection so pings and closes are processed
func (c *Client) readPump() {
	defer func() {
		c.Hub.unregister <- c
		c.Conn.Close()
	}()

	for {
		if _, _, err := c.Conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error: %v", err)
			}
			break
		}
	}
}

// writePump pumps messages from the hub to the websocket connection
func (c *Client) writePump() {
	defer c.Conn.Close()

	for message := range c.Send {
		if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
			log.Printf("WebSocket write error: %v", err)
			return
		}
	}
	c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
}
