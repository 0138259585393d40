package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Dexter0900/TaskEngineX/internal/repository"
	"github.com/Dexter0900/TaskEngineX/internal/service"
	"github.com/Dexter0900/TaskEngineX/internal/types"
)

// WorkspaceMember verifies membership in the :workspaceId workspace and
// attaches the workspace ID and the caller's role for downstream guards.
func WorkspaceMember(permissions *service.PermissionService) gin.HandlerFunc {
	return func(c *gin.Context) {
		workspaceID := c.Param("workspaceId")
		if workspaceID == "" {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "workspace id required"})
			return
		}
		role, err := permissions.ResolveWorkspaceRole(c.Request.Context(), workspaceID, GetUserID(c))
		if err != nil {
			abortGuard(c, err)
			return
		}
		c.Set(ContextWorkspaceID, workspaceID)
		c.Set(ContextWorkspaceRole, role)
		c.Next()
	}
}

// WorkspaceAdmin passes only workspace admins. Must run after
// WorkspaceMember.
func WorkspaceAdmin(permissions *service.PermissionService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := permissions.RequireAdmin(GetWorkspaceRole(c)); err != nil {
			abortGuard(c, err)
			return
		}
		c.Next()
	}
}

// WorkspaceAssigner passes admins and assigners. Must run after
// WorkspaceMember.
func WorkspaceAssigner(permissions *service.PermissionService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := permissions.RequireAssignerOrAdmin(GetWorkspaceRole(c)); err != nil {
			abortGuard(c, err)
			return
		}
		c.Next()
	}
}

// ProjectMember verifies that :projectId belongs to the guarded workspace
// and that the caller participates in it, then attaches the membership.
// Must run after WorkspaceMember.
func ProjectMember(permissions *service.PermissionService) gin.HandlerFunc {
	return func(c *gin.Context) {
		projectID := c.Param("projectId")
		if projectID == "" {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "project id required"})
			return
		}
		membership, err := permissions.ResolveProjectMembership(
			c.Request.Context(), GetWorkspaceID(c), projectID, GetUserID(c), GetWorkspaceRole(c),
		)
		if err != nil {
			abortGuard(c, err)
			return
		}
		c.Set(ContextProjectID, projectID)
		c.Set(ContextMembership, membership)
		c.Next()
	}
}

// ProjectAssigner passes project assigners and workspace admins. Must run
// after ProjectMember.
func ProjectAssigner(permissions *service.PermissionService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := permissions.RequireProjectAssigner(GetProjectMembership(c)); err != nil {
			abortGuard(c, err)
			return
		}
		c.Next()
	}
}

func GetWorkspaceID(c *gin.Context) string {
	return c.GetString(ContextWorkspaceID)
}

func GetWorkspaceRole(c *gin.Context) types.Role {
	if role, ok := c.Get(ContextWorkspaceRole); ok {
		if r, ok := role.(types.Role); ok {
			return r
		}
	}
	return ""
}

func GetProjectMembership(c *gin.Context) repository.ProjectMembership {
	if m, ok := c.Get(ContextMembership); ok {
		if membership, ok := m.(repository.ProjectMembership); ok {
			return membership
		}
	}
	return repository.ProjectMembership{}
}

func abortGuard(c *gin.Context, err error) {
	status := http.StatusForbidden
	switch {
	case errors.Is(err, service.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, service.ErrUnauthenticated):
		status = http.StatusUnauthorized
	case errors.Is(err, service.ErrNotAWorkspaceMember),
		errors.Is(err, service.ErrNotAProjectMember),
		errors.Is(err, service.ErrAdminRequired),
		errors.Is(err, service.ErrAssignerOrAdminRequired),
		errors.Is(err, service.ErrProjectAssignerRequired),
		errors.Is(err, service.ErrProjectWorkspaceMismatch):
		status = http.StatusForbidden
	case errors.Is(err, service.ErrForbidden):
		status = http.StatusForbidden
	default:
		status = http.StatusInternalServerError
	}
	c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
}
