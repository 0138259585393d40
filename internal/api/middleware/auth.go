package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Dexter0900/TaskEngineX/internal/service"
)

// Context keys set by the middleware chain.
const (
	ContextUserID        = "userID"
	ContextWorkspaceID   = "workspaceID"
	ContextWorkspaceRole = "workspaceRole"
	ContextProjectID     = "projectID"
	ContextMembership    = "projectMembership"
)

// AuthMiddleware validates the Bearer token and stores the caller's user ID
// in the request context.
func AuthMiddleware(auth *service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}
		userID, err := auth.ParseAccessToken(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			return
		}
		c.Set(ContextUserID, userID)
		c.Next()
	}
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	// Websocket clients cannot set headers from the browser.
	return c.Query("token")
}

// GetUserID returns the authenticated user's ID. It is only valid behind
// AuthMiddleware.
func GetUserID(c *gin.Context) string {
	return c.GetString(ContextUserID)
}
