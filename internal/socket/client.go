package socket

import (
	"context"
	"encoding/json"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
)

// Client is one websocket connection belonging to a user.
type Client struct {
	ID     string
	UserID string

	hub       *Hub
	conn      *websocket.Conn
	send      chan []byte
	rooms     map[string]bool
	authorize RoomAuthorizer
	mu        sync.Mutex
}

// RoomAuthorizer decides whether a user may join a workspace room.
type RoomAuthorizer func(ctx context.Context, workspaceID, userID string) bool

// clientMessage is what clients send upstream.
type clientMessage struct {
	Action string `json:"action"`
	Room   string `json:"room,omitempty"`
}

func NewClient(hub *Hub, userID string, conn *websocket.Conn, authorize RoomAuthorizer) *Client {
	return &Client{
		ID:        uuid.NewString(),
		UserID:    userID,
		hub:       hub,
		conn:      conn,
		send:      make(chan []byte, 256),
		rooms:     make(map[string]bool),
		authorize: authorize,
	}
}

// ReadPump pumps messages from the connection to the hub.
func (c *Client) ReadPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("⚠️ [socket] read error for user %s: %v", c.UserID, err)
			}
			break
		}
		c.handleMessage(message)
	}
}

// WritePump pumps messages from the hub to the connection.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *Client) handleMessage(message []byte) {
	var msg clientMessage
	if err := json.Unmarshal(message, &msg); err != nil {
		log.Printf("⚠️ [socket] bad message from user %s: %v", c.UserID, err)
		return
	}

	switch msg.Action {
	case "join":
		if !c.mayJoin(msg.Room) {
			log.Printf("⚠️ [socket] join denied: user=%s room=%s", c.UserID, msg.Room)
			return
		}
		c.hub.JoinRoom(c, msg.Room)
	case "leave":
		if msg.Room != "" {
			c.hub.LeaveRoom(c, msg.Room)
		}
	default:
		log.Printf("⚠️ [socket] unknown action %q from user %s", msg.Action, c.UserID)
	}
}

// mayJoin allows a user's own room always and workspace rooms only after
// the membership check.
func (c *Client) mayJoin(room string) bool {
	if room == "user:"+c.UserID {
		return true
	}
	workspaceID, ok := strings.CutPrefix(room, "workspace:")
	if !ok || c.authorize == nil {
		return false
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return c.authorize(ctx, workspaceID, c.UserID)
}
