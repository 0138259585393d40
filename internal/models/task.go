package models

import (
	"time"

	"github.com/Dexter0900/TaskEngineX/internal/types"
)

type CreateTaskRequest struct {
	Title       string         `json:"title" binding:"required"`
	Description *string        `json:"description"`
	Priority    types.Priority `json:"priority"`
	DueDate     *time.Time     `json:"dueDate"`
	Tags        []string       `json:"tags"`
}

type CreateWorkspaceTaskRequest struct {
	Title       string         `json:"title" binding:"required"`
	Description *string        `json:"description"`
	Priority    types.Priority `json:"priority"`
	DueDate     *time.Time     `json:"dueDate"`
	Tags        []string       `json:"tags"`
	ProjectID   *string        `json:"projectId"`
	AssignedTo  string         `json:"assignedTo" binding:"required,uuid"`
}

type UpdateTaskRequest struct {
	Title       *string           `json:"title"`
	Description *string           `json:"description"`
	Status      *types.TaskStatus `json:"status"`
	Priority    *types.Priority   `json:"priority"`
	DueDate     *time.Time        `json:"dueDate"`
	Tags        []string          `json:"tags"`
	AssignedTo  *string           `json:"assignedTo"`
}

type ApprovalRequest struct {
	Action string `json:"action" binding:"required"`
}

// TaskListQuery carries the optional list filters bound from the query string.
type TaskListQuery struct {
	Status   types.TaskStatus `form:"status"`
	Priority types.Priority   `form:"priority"`
	Search   string           `form:"search"`
}

type TaskResponse struct {
	ID             string               `json:"id"`
	Title          string               `json:"title"`
	Description    *string              `json:"description,omitempty"`
	Status         types.TaskStatus     `json:"status"`
	Priority       types.Priority       `json:"priority"`
	DueDate        *time.Time           `json:"dueDate,omitempty"`
	Tags           []string             `json:"tags"`
	UserID         string               `json:"userId"`
	WorkspaceID    *string              `json:"workspaceId,omitempty"`
	ProjectID      *string              `json:"projectId,omitempty"`
	AssignedTo     *string              `json:"assignedTo,omitempty"`
	AssignedBy     *string              `json:"assignedBy,omitempty"`
	ApprovalStatus types.ApprovalStatus `json:"approvalStatus,omitempty"`
	CompletedAt    *time.Time           `json:"completedAt,omitempty"`
	CreatedAt      time.Time            `json:"createdAt"`
	UpdatedAt      time.Time            `json:"updatedAt"`
}
