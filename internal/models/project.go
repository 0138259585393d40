package models

import (
	"time"

	"github.com/Dexter0900/TaskEngineX/internal/types"
)

type CreateProjectRequest struct {
	Name        string  `json:"name" binding:"required"`
	Description *string `json:"description"`
}

type UpdateProjectRequest struct {
	Name        *string              `json:"name"`
	Description *string              `json:"description"`
	Status      *types.ProjectStatus `json:"status"`
}

type AddProjectMemberRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type ProjectResponse struct {
	ID          string              `json:"id"`
	Name        string              `json:"name"`
	Description *string             `json:"description,omitempty"`
	WorkspaceID string              `json:"workspaceId"`
	CreatorID   string              `json:"creatorId"`
	Status      types.ProjectStatus `json:"status"`
	IsAssigner  bool                `json:"isAssigner"`
	IsWorker    bool                `json:"isWorker"`
	CreatedAt   time.Time           `json:"createdAt"`
	UpdatedAt   time.Time           `json:"updatedAt"`
}

type ProjectMemberResponse struct {
	UserID   string            `json:"userId"`
	Role     types.ProjectRole `json:"role"`
	JoinedAt time.Time         `json:"joinedAt"`
	User     UserResponse      `json:"user"`
}
