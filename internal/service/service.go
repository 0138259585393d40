// Package service implements the application's business rules on top of the
// repository layer. Handlers translate the sentinel errors below into HTTP
// statuses; services never touch gin.
package service

import (
	"errors"

	"github.com/Dexter0900/TaskEngineX/internal/config"
	"github.com/Dexter0900/TaskEngineX/internal/notification"
	"github.com/Dexter0900/TaskEngineX/internal/repository"
)

var (
	ErrUnauthenticated = errors.New("authentication required")
	ErrNotFound        = errors.New("resource not found")
	ErrForbidden       = errors.New("access denied")
	ErrConflict        = errors.New("resource already exists")
	ErrValidation      = errors.New("validation failed")

	// Access layer denials. Each carries the reason the guard chain stopped.
	ErrNotAWorkspaceMember      = errors.New("not a member of this workspace")
	ErrNotAProjectMember        = errors.New("not a member of this project")
	ErrAdminRequired            = errors.New("admin role required")
	ErrAssignerOrAdminRequired  = errors.New("assigner or admin role required")
	ErrProjectAssignerRequired  = errors.New("project assigner or workspace admin required")
	ErrProjectWorkspaceMismatch = errors.New("project does not belong to this workspace")
	ErrInvalidStateTransition   = errors.New("invalid state transition")
	ErrInvalidCredentials       = errors.New("invalid email or password")
	ErrCreatorCannotBeRemoved   = errors.New("workspace creator cannot be removed")
)

// ServiceDeps bundles everything the services need.
type ServiceDeps struct {
	Repos        *repository.Repositories
	Config       *config.Config
	Notification *notification.Service
	Mailer       Mailer
}

// Mailer delivers outbound email. The queue-backed implementation lives in
// the queue package; a nil-safe noop is used in tests.
type Mailer interface {
	SendMagicLink(to, name, link string) error
	SendTaskAssigned(to, name, taskTitle, assignerName string) error
	SendApprovalResult(to, name, taskTitle string, approved bool) error
}

type Services struct {
	Auth         *AuthService
	User         *UserService
	Workspace    *WorkspaceService
	Project      *ProjectService
	Task         *TaskService
	Subtask      *SubtaskService
	Permission   *PermissionService
	Notification *NotificationService
}

func NewServices(deps ServiceDeps) *Services {
	permission := NewPermissionService(deps.Repos.Workspace, deps.Repos.Project)
	return &Services{
		Auth:         NewAuthService(deps.Repos.User, deps.Config, deps.Mailer),
		User:         NewUserService(deps.Repos.User),
		Workspace:    NewWorkspaceService(deps.Repos.Workspace, deps.Repos.User, deps.Notification),
		Project:      NewProjectService(deps.Repos.Project, deps.Repos.Workspace, deps.Repos.User, deps.Notification),
		Task:         NewTaskService(deps.Repos.Task, deps.Repos.User, permission, deps.Notification, deps.Mailer),
		Subtask:      NewSubtaskService(deps.Repos.Subtask, deps.Repos.Task, deps.Notification),
		Permission:   permission,
		Notification: NewNotificationService(deps.Repos.Notification),
	}
}
