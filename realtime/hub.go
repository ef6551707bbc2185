// Package realtime fans order events out to websocket clients grouped into
// per-restaurant rooms.
package realtime

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"sync"

	"go-restaurant-ops/logging"
	"go-restaurant-ops/models"

	"github.com/gorilla/websocket"
)

// Client events.
const (
	EventJoinRoom  = "join_room"
	EventLeaveRoom = "leave_room"
)

// Message is the envelope written to clients.
type Message struct {
	Event   string `json:"event"`
	Payload any    `json:"payload"`
}

// RoomName returns the room a restaurant's staff listen on.
func RoomName(restaurantID string) string {
	return models.RestaurantRoom(restaurantID)
}

// Hub tracks connected clients and their room memberships. It is created at
// startup and closed at shutdown.
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]struct{}
	rooms   map[string]map[*Client]struct{}
	closed  bool
	log     *slog.Logger
}

func NewHub(log *slog.Logger) *Hub {
	if log == nil {
		log = logging.Discard()
	}
	return &Hub{
		clients: make(map[*Client]struct{}),
		rooms:   make(map[string]map[*Client]struct{}),
		log:     log,
	}
}

// Serve registers the connection and pumps it until it closes. It blocks.
func (h *Hub) Serve(conn *websocket.Conn) {
	client := newClient(h, conn)
	if !h.register(client) {
		_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down"))
		conn.Close()
		return
	}
	h.log.Info("websocket connected", slog.String("action", "ws_connected"), slog.String("client_id", client.id))

	go client.writePump()
	client.readPump()
}

func (h *Hub) register(c *Client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	h.clients[c] = struct{}{}
	return true
}

func (h *Hub) unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(c)
}

func (h *Hub) removeLocked(c *Client) {
	if _, ok := h.clients[c]; !ok {
		return
	}
	delete(h.clients, c)
	for room := range c.rooms {
		h.leaveLocked(c, room)
	}
	close(c.send)
	h.log.Info("websocket disconnected", slog.String("action", "ws_disconnected"), slog.String("client_id", c.id))
}

// Join adds the client to room. Joining a room twice is a no-op.
func (h *Hub) Join(c *Client, room string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; !ok {
		return
	}
	members, ok := h.rooms[room]
	if !ok {
		members = make(map[*Client]struct{})
		h.rooms[room] = members
	}
	members[c] = struct{}{}
	c.rooms[room] = struct{}{}
}

// Leave removes the client from room.
func (h *Hub) Leave(c *Client, room string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.leaveLocked(c, room)
}

func (h *Hub) leaveLocked(c *Client, room string) {
	delete(c.rooms, room)
	members, ok := h.rooms[room]
	if !ok {
		return
	}
	delete(members, c)
	if len(members) == 0 {
		delete(h.rooms, room)
	}
}

// RoomSize returns the number of clients in room.
func (h *Hub) RoomSize(room string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[room])
}

// BroadcastToRestaurant sends an event to every client in the restaurant's
// room. Delivery is at most once; absent clients miss it.
func (h *Hub) BroadcastToRestaurant(ctx context.Context, restaurantID, event string, payload any) {
	msg, err := json.Marshal(Message{Event: event, Payload: payload})
	if err != nil {
		logging.FromContext(ctx, h.log).Error("failed to encode realtime event",
			slog.String("action", "ws_encode_failed"),
			slog.String("event", event),
			slog.Any("error", err))
		return
	}
	room := RoomName(restaurantID)
	h.log.Debug("realtime event",
		slog.String("action", "ws_broadcast"),
		slog.String("event", event),
		slog.String("room", room),
		slog.Int("listeners", h.RoomSize(room)))
	h.Deliver(room, msg)
}

// Deliver writes an encoded message to every member of room. Clients whose
// buffers are full are disconnected.
func (h *Hub) Deliver(room string, msg []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.rooms[room] {
		select {
		case c.send <- msg:
		default:
			h.log.Warn("dropping slow websocket client",
				slog.String("action", "ws_client_dropped"),
				slog.String("client_id", c.id),
				slog.String("room", room))
			h.removeLocked(c)
		}
	}
}

// Close disconnects every client and refuses new ones.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for c := range h.clients {
		h.removeLocked(c)
	}
}

// handle applies one client control message.
func (h *Hub) handle(c *Client, raw []byte) {
	var in struct {
		Event        string `json:"event"`
		Room         string `json:"room"`
		RestaurantID string `json:"restaurant_id"`
	}
	if err := json.Unmarshal(raw, &in); err != nil {
		h.log.Debug("ignoring malformed websocket message", slog.String("client_id", c.id), slog.Any("error", err))
		return
	}
	room := strings.TrimSpace(in.Room)
	if room == "" && in.RestaurantID != "" {
		room = RoomName(in.RestaurantID)
	}
	if room == "" {
		return
	}

	switch in.Event {
	case EventJoinRoom:
		h.Join(c, room)
		h.log.Debug("client joined room", slog.String("action", "ws_join"), slog.String("client_id", c.id), slog.String("room", room))
	case EventLeaveRoom:
		h.Leave(c, room)
	}
}
