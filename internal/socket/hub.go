// Package socket implements the realtime layer: a hub of websocket clients
// grouped into rooms. Every user has a personal room user:<id>; workspace
// rooms workspace:<id> are joined on request after a membership check.
package socket

import (
	"encoding/json"
	"log"
	"sync"
	"time"
)

// Message is the envelope pushed to clients.
type Message struct {
	Event     string    `json:"event"`
	Payload   any       `json:"payload,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// RoomMessage targets every client subscribed to a room.
type RoomMessage struct {
	Room    string
	Message []byte
}

// DirectMessage targets all connections of one user.
type DirectMessage struct {
	UserID  string
	Message []byte
}

// Hub tracks connected clients and routes messages to rooms and users.
type Hub struct {
	clients     map[*Client]bool
	userClients map[string]map[*Client]bool
	roomClients map[string]map[*Client]bool

	register      chan *Client
	unregister    chan *Client
	roomBroadcast chan *RoomMessage
	directMessage chan *DirectMessage

	mu sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		clients:       make(map[*Client]bool),
		userClients:   make(map[string]map[*Client]bool),
		roomClients:   make(map[string]map[*Client]bool),
		register:      make(chan *Client),
		unregister:    make(chan *Client),
		roomBroadcast: make(chan *RoomMessage, 256),
		directMessage: make(chan *DirectMessage, 256),
	}
}

// Run is the hub's main loop. It owns all map mutations routed through the
// channels; callers never touch the maps directly.
func (h *Hub) Run() {
	log.Println("🔌 [socket] hub started")
	for {
		select {
		case client := <-h.register:
			h.registerClient(client)
		case client := <-h.unregister:
			h.unregisterClient(client)
		case rm := <-h.roomBroadcast:
			h.broadcastToRoom(rm)
		case dm := <-h.directMessage:
			h.sendToUser(dm)
		}
	}
}

func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.clients[client] = true
	if h.userClients[client.UserID] == nil {
		h.userClients[client.UserID] = make(map[*Client]bool)
	}
	h.userClients[client.UserID][client] = true

	log.Printf("🔌 [socket] client connected: user=%s total=%d", client.UserID, len(h.clients))
}

func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[client]; !ok {
		return
	}
	delete(h.clients, client)

	if clients, ok := h.userClients[client.UserID]; ok {
		delete(clients, client)
		if len(clients) == 0 {
			delete(h.userClients, client.UserID)
		}
	}
	for room := range client.rooms {
		if clients, ok := h.roomClients[room]; ok {
			delete(clients, client)
			if len(clients) == 0 {
				delete(h.roomClients, room)
			}
		}
	}
	close(client.send)
	log.Printf("🔌 [socket] client disconnected: user=%s total=%d", client.UserID, len(h.clients))
}

func (h *Hub) broadcastToRoom(rm *RoomMessage) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.roomClients[rm.Room] {
		select {
		case client.send <- rm.Message:
		default:
			go func(c *Client) { h.unregister <- c }(client)
		}
	}
}

func (h *Hub) sendToUser(dm *DirectMessage) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.userClients[dm.UserID] {
		select {
		case client.send <- dm.Message:
		default:
			go func(c *Client) { h.unregister <- c }(client)
		}
	}
}

// JoinRoom subscribes the client to a room.
func (h *Hub) JoinRoom(client *Client, room string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	client.mu.Lock()
	client.rooms[room] = true
	client.mu.Unlock()

	if h.roomClients[room] == nil {
		h.roomClients[room] = make(map[*Client]bool)
	}
	h.roomClients[room][client] = true
}

// LeaveRoom unsubscribes the client from a room.
func (h *Hub) LeaveRoom(client *Client, room string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	client.mu.Lock()
	delete(client.rooms, room)
	client.mu.Unlock()

	if clients, ok := h.roomClients[room]; ok {
		delete(clients, client)
		if len(clients) == 0 {
			delete(h.roomClients, room)
		}
	}
}

// SendToRoom pushes an event to every client in the room.
func (h *Hub) SendToRoom(room, event string, payload any) {
	data, err := json.Marshal(Message{Event: event, Payload: payload, Timestamp: time.Now()})
	if err != nil {
		log.Printf("⚠️ [socket] marshal failed for event %s: %v", event, err)
		return
	}
	h.roomBroadcast <- &RoomMessage{Room: room, Message: data}
}

// SendToUser pushes an event to all of the user's connections.
func (h *Hub) SendToUser(userID, event string, payload any) {
	data, err := json.Marshal(Message{Event: event, Payload: payload, Timestamp: time.Now()})
	if err != nil {
		log.Printf("⚠️ [socket] marshal failed for event %s: %v", event, err)
		return
	}
	h.directMessage <- &DirectMessage{UserID: userID, Message: data}
}

// IsUserOnline reports whether the user has at least one open connection.
func (h *Hub) IsUserOnline(userID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, ok := h.userClients[userID]
	return ok
}

// ConnectedClients returns the number of open connections.
func (h *Hub) ConnectedClients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
