// Package handlers contains the gin HTTP handlers. Handlers bind and
// validate input, call a service, and translate sentinel errors into HTTP
// statuses; all business rules live below them.
package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Dexter0900/TaskEngineX/internal/service"
)

type Handlers struct {
	Auth         *AuthHandler
	User         *UserHandler
	Workspace    *WorkspaceHandler
	Project      *ProjectHandler
	Task         *TaskHandler
	Subtask      *SubtaskHandler
	Notification *NotificationHandler
}

func NewHandlers(services *service.Services) *Handlers {
	return &Handlers{
		Auth:         &AuthHandler{auth: services.Auth},
		User:         &UserHandler{users: services.User},
		Workspace:    &WorkspaceHandler{workspaces: services.Workspace},
		Project:      &ProjectHandler{projects: services.Project},
		Task:         &TaskHandler{tasks: services.Task},
		Subtask:      &SubtaskHandler{subtasks: services.Subtask},
		Notification: &NotificationHandler{notifications: services.Notification},
	}
}

func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrUnauthenticated), errors.Is(err, service.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrInvalidStateTransition):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrForbidden),
		errors.Is(err, service.ErrNotAWorkspaceMember),
		errors.Is(err, service.ErrNotAProjectMember),
		errors.Is(err, service.ErrAdminRequired),
		errors.Is(err, service.ErrAssignerOrAdminRequired),
		errors.Is(err, service.ErrProjectAssignerRequired),
		errors.Is(err, service.ErrProjectWorkspaceMismatch),
		errors.Is(err, service.ErrCreatorCannotBeRemoved):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	default:
		log.Printf("❌ [api] %s %s: %v", c.Request.Method, c.FullPath(), err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}
