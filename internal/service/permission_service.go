package service

import (
	"context"

	"github.com/Dexter0900/TaskEngineX/internal/repository"
	"github.com/Dexter0900/TaskEngineX/internal/types"
)

// PermissionService resolves what a user may do inside a workspace or
// project. It is the single source of truth for the middleware guard chain
// and for service-level checks.
type PermissionService struct {
	workspaceRepo repository.WorkspaceRepository
	projectRepo   repository.ProjectRepository
}

func NewPermissionService(workspaceRepo repository.WorkspaceRepository, projectRepo repository.ProjectRepository) *PermissionService {
	return &PermissionService{workspaceRepo: workspaceRepo, projectRepo: projectRepo}
}

// ResolveWorkspaceRole returns the user's role in the workspace. It returns
// ErrNotFound when the workspace does not exist and ErrNotAWorkspaceMember
// when it exists but the user has no membership row.
func (s *PermissionService) ResolveWorkspaceRole(ctx context.Context, workspaceID, userID string) (types.Role, error) {
	workspace, err := s.workspaceRepo.FindByID(ctx, workspaceID)
	if err != nil {
		return "", err
	}
	if workspace == nil {
		return "", ErrNotFound
	}
	member, err := s.workspaceRepo.FindMember(ctx, workspaceID, userID)
	if err != nil {
		return "", err
	}
	if member == nil {
		return "", ErrNotAWorkspaceMember
	}
	return member.Role, nil
}

// RequireAdmin passes only workspace admins.
func (s *PermissionService) RequireAdmin(role types.Role) error {
	if role != types.RoleAdmin {
		return ErrAdminRequired
	}
	return nil
}

// RequireAssignerOrAdmin passes admins and assigners.
func (s *PermissionService) RequireAssignerOrAdmin(role types.Role) error {
	if role != types.RoleAdmin && role != types.RoleAssigner {
		return ErrAssignerOrAdminRequired
	}
	return nil
}

// ResolveProjectMembership verifies that the project exists, belongs to the
// given workspace and that the user participates in it. Workspace admins get
// implicit assigner-level access to every project in their workspace.
func (s *PermissionService) ResolveProjectMembership(ctx context.Context, workspaceID, projectID, userID string, workspaceRole types.Role) (repository.ProjectMembership, error) {
	project, err := s.projectRepo.FindByID(ctx, projectID)
	if err != nil {
		return repository.ProjectMembership{}, err
	}
	if project == nil {
		return repository.ProjectMembership{}, ErrNotFound
	}
	if project.WorkspaceID != workspaceID {
		return repository.ProjectMembership{}, ErrProjectWorkspaceMismatch
	}

	membership, err := s.projectRepo.FindMembership(ctx, projectID, userID)
	if err != nil {
		return repository.ProjectMembership{}, err
	}
	if workspaceRole == types.RoleAdmin {
		membership.IsAssigner = true
		return membership, nil
	}
	if !membership.IsMember() {
		return repository.ProjectMembership{}, ErrNotAProjectMember
	}
	return membership, nil
}

// RequireProjectAssigner passes project assigners; workspace admins already
// carry the assigner bit from ResolveProjectMembership.
func (s *PermissionService) RequireProjectAssigner(membership repository.ProjectMembership) error {
	if !membership.IsAssigner {
		return ErrProjectAssignerRequired
	}
	return nil
}

// TaskScopeFor maps a workspace role to the listing scope it is allowed to
// see: admins see everything, assigners see what they created or assigned,
// workers see what is assigned to them.
func (s *PermissionService) TaskScopeFor(role types.Role, userID string) repository.TaskScope {
	strategy, ok := taskScopeStrategies[role]
	if !ok {
		// Unknown roles fall back to the narrowest view.
		return repository.TaskScope{AssignedTo: userID}
	}
	return strategy(userID)
}

var taskScopeStrategies = map[types.Role]func(userID string) repository.TaskScope{
	types.RoleAdmin: func(string) repository.TaskScope {
		return repository.TaskScope{}
	},
	types.RoleAssigner: func(userID string) repository.TaskScope {
		return repository.TaskScope{ActorID: userID}
	},
	types.RoleWorker: func(userID string) repository.TaskScope {
		return repository.TaskScope{AssignedTo: userID}
	},
}
