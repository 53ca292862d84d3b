package websocket

import (
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/pixeltown/pixeltown-backend/internal/entity"
)

const sendBufferSize = 64

// client - one connected participant and its outbound queue.
type client struct {
	player entity.Player
	roomID string
	conn   *websocket.Conn
	send   chan []byte
}

// Hub tracks connected clients by participant ID and by room, and
// implements the sessions' Notifier capability. Delivery is
// fire-and-forget: a client with a full queue misses the event.
type Hub struct {
	logger *slog.Logger

	mu      sync.RWMutex
	clients map[string]*client
	rooms   map[string]map[string]*client
}

func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		logger:  logger.With("component", "ws_hub"),
		clients: make(map[string]*client),
		rooms:   make(map[string]map[string]*client),
	}
}

// Broadcast - delivers an event to every participant in a room.
func (that *Hub) Broadcast(roomID string, event any) {
	data, err := json.Marshal(event)
	if err != nil {
		that.logger.Error("failed to marshal event", "error", err)
		return
	}

	that.mu.RLock()
	defer that.mu.RUnlock()

	for _, c := range that.rooms[roomID] {
		that.enqueue(c, data)
	}
}

// Unicast - delivers an event to exactly one participant.
func (that *Hub) Unicast(participantID string, event any) {
	data, err := json.Marshal(event)
	if err != nil {
		that.logger.Error("failed to marshal event", "error", err)
		return
	}

	that.mu.RLock()
	defer that.mu.RUnlock()

	if c, ok := that.clients[participantID]; ok {
		that.enqueue(c, data)
	}
}

func (that *Hub) enqueue(c *client, data []byte) {
	select {
	case c.send <- data:
	default:
		that.logger.Warn("dropping event, client queue full", "player", c.player.ID)
	}
}

func (that *Hub) register(c *client) {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.clients[c.player.ID] = c

	room, ok := that.rooms[c.roomID]
	if !ok {
		room = make(map[string]*client)
		that.rooms[c.roomID] = room
	}
	room[c.player.ID] = c
}

func (that *Hub) unregister(c *client) {
	that.mu.Lock()
	defer that.mu.Unlock()

	if current, ok := that.clients[c.player.ID]; ok && current == c {
		delete(that.clients, c.player.ID)
	}

	if room, ok := that.rooms[c.roomID]; ok {
		if current, ok := room[c.player.ID]; ok && current == c {
			delete(room, c.player.ID)
		}
		if len(room) == 0 {
			delete(that.rooms, c.roomID)
		}
	}

	close(c.send)
}

// writePump - drains the client's queue onto the connection.
func (that *Hub) writePump(c *client) {
	defer c.conn.Close()

	for data := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
			that.logger.Debug("write failed", "player", c.player.ID, "error", err)
			return
		}
	}
}
