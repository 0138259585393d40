package socket

import (
	"context"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/Dexter0900/TaskEngineX/internal/service"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// TODO: restrict to the frontend origin once it is pinned down.
		return true
	},
}

// Handler upgrades authenticated HTTP requests to websocket connections.
type Handler struct {
	hub         *Hub
	auth        *service.AuthService
	permissions *service.PermissionService
}

func NewHandler(hub *Hub, auth *service.AuthService, permissions *service.PermissionService) *Handler {
	return &Handler{hub: hub, auth: auth, permissions: permissions}
}

// HandleWebSocket authenticates via the token query parameter (browsers
// cannot set headers on websocket requests) and starts the client pumps.
func (h *Handler) HandleWebSocket(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}
	userID, err := h.auth.ParseAccessToken(token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("⚠️ [socket] upgrade failed: %v", err)
		return
	}

	client := NewClient(h.hub, userID, conn, h.roomAuthorizer())
	h.hub.register <- client
	h.hub.JoinRoom(client, "user:"+userID)

	go client.WritePump()
	go client.ReadPump()
}

func (h *Handler) roomAuthorizer() RoomAuthorizer {
	return func(ctx context.Context, workspaceID, userID string) bool {
		_, err := h.permissions.ResolveWorkspaceRole(ctx, workspaceID, userID)
		return err == nil
	}
}
