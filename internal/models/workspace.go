package models

import (
	"time"

	"github.com/Dexter0900/TaskEngineX/internal/types"
)

type CreateWorkspaceRequest struct {
	Name        string  `json:"name" binding:"required"`
	Description *string `json:"description"`
}

type UpdateWorkspaceRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

type AddMemberRequest struct {
	Email string     `json:"email" binding:"required,email"`
	Role  types.Role `json:"role" binding:"required"`
}

type UpdateMemberRoleRequest struct {
	Role types.Role `json:"role" binding:"required"`
}

type WorkspaceResponse struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Description *string    `json:"description,omitempty"`
	CreatorID   string     `json:"creatorId"`
	Role        types.Role `json:"role,omitempty"` // caller's role, when known
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

type WorkspaceMemberResponse struct {
	UserID   string       `json:"userId"`
	Role     types.Role   `json:"role"`
	JoinedAt time.Time    `json:"joinedAt"`
	User     UserResponse `json:"user"`
}
