package service

import (
	"context"

	"github.com/Dexter0900/TaskEngineX/internal/models"
	"github.com/Dexter0900/TaskEngineX/internal/notification"
	"github.com/Dexter0900/TaskEngineX/internal/repository"
	"github.com/Dexter0900/TaskEngineX/internal/types"
)

type WorkspaceService struct {
	workspaceRepo repository.WorkspaceRepository
	userRepo      repository.UserRepository
	notifier      *notification.Service
}

func NewWorkspaceService(workspaceRepo repository.WorkspaceRepository, userRepo repository.UserRepository, notifier *notification.Service) *WorkspaceService {
	return &WorkspaceService{workspaceRepo: workspaceRepo, userRepo: userRepo, notifier: notifier}
}

// Create makes a workspace. The repository enrolls the creator as admin in
// the same transaction, so the creator is a member from the first moment the
// workspace exists.
func (s *WorkspaceService) Create(ctx context.Context, creatorID string, req *models.CreateWorkspaceRequest) (*models.WorkspaceResponse, error) {
	workspace := &repository.Workspace{
		Name:        req.Name,
		Description: req.Description,
		CreatorID:   creatorID,
	}
	if err := s.workspaceRepo.Create(ctx, workspace); err != nil {
		return nil, err
	}
	return toWorkspaceResponse(workspace, types.RoleAdmin), nil
}

func (s *WorkspaceService) GetByID(ctx context.Context, workspaceID string, role types.Role) (*models.WorkspaceResponse, error) {
	workspace, err := s.workspaceRepo.FindByID(ctx, workspaceID)
	if err != nil {
		return nil, err
	}
	if workspace == nil {
		return nil, ErrNotFound
	}
	return toWorkspaceResponse(workspace, role), nil
}

func (s *WorkspaceService) ListForUser(ctx context.Context, userID string) ([]*models.WorkspaceResponse, error) {
	workspaces, err := s.workspaceRepo.FindByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := make([]*models.WorkspaceResponse, 0, len(workspaces))
	for _, ws := range workspaces {
		member, err := s.workspaceRepo.FindMember(ctx, ws.ID, userID)
		if err != nil {
			return nil, err
		}
		var role types.Role
		if member != nil {
			role = member.Role
		}
		out = append(out, toWorkspaceResponse(ws, role))
	}
	return out, nil
}

func (s *WorkspaceService) Update(ctx context.Context, workspaceID string, req *models.UpdateWorkspaceRequest) (*models.WorkspaceResponse, error) {
	workspace, err := s.workspaceRepo.FindByID(ctx, workspaceID)
	if err != nil {
		return nil, err
	}
	if workspace == nil {
		return nil, ErrNotFound
	}
	if req.Name != nil {
		workspace.Name = *req.Name
	}
	if req.Description != nil {
		workspace.Description = req.Description
	}
	if err := s.workspaceRepo.Update(ctx, workspace); err != nil {
		return nil, err
	}
	return toWorkspaceResponse(workspace, types.RoleAdmin), nil
}

// Delete tears the workspace down. Only the creator may do this; other
// admins manage the workspace but cannot destroy it.
func (s *WorkspaceService) Delete(ctx context.Context, workspaceID, callerID string) error {
	workspace, err := s.workspaceRepo.FindByID(ctx, workspaceID)
	if err != nil {
		return err
	}
	if workspace == nil {
		return ErrNotFound
	}
	if workspace.CreatorID != callerID {
		return ErrForbidden
	}
	return s.workspaceRepo.Delete(ctx, workspaceID)
}

// AddMember enrolls a user by email, or updates their role if they already
// belong. The workspace creator's admin role cannot be taken away.
func (s *WorkspaceService) AddMember(ctx context.Context, workspaceID string, req *models.AddMemberRequest) (*models.WorkspaceMemberResponse, error) {
	if !types.IsValidRole(req.Role) {
		return nil, ErrValidation
	}
	workspace, err := s.workspaceRepo.FindByID(ctx, workspaceID)
	if err != nil {
		return nil, err
	}
	if workspace == nil {
		return nil, ErrNotFound
	}
	user, err := s.userRepo.FindByEmail(ctx, req.Email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrNotFound
	}
	if user.ID == workspace.CreatorID && req.Role != types.RoleAdmin {
		return nil, ErrCreatorCannotBeRemoved
	}

	member := &repository.WorkspaceMember{
		WorkspaceID: workspaceID,
		UserID:      user.ID,
		Role:        req.Role,
	}
	if err := s.workspaceRepo.UpsertMember(ctx, member); err != nil {
		return nil, err
	}

	s.notifier.Notify(user.ID, "workspace:added", "Added to workspace",
		"You were added to "+workspace.Name+" as "+string(req.Role),
		map[string]any{"workspaceId": workspaceID})

	return &models.WorkspaceMemberResponse{
		UserID:   user.ID,
		Role:     member.Role,
		JoinedAt: member.JoinedAt,
		User:     *ToUserResponse(user),
	}, nil
}

func (s *WorkspaceService) UpdateMemberRole(ctx context.Context, workspaceID, userID string, role types.Role) error {
	if !types.IsValidRole(role) {
		return ErrValidation
	}
	workspace, err := s.workspaceRepo.FindByID(ctx, workspaceID)
	if err != nil {
		return err
	}
	if workspace == nil {
		return ErrNotFound
	}
	if userID == workspace.CreatorID && role != types.RoleAdmin {
		return ErrCreatorCannotBeRemoved
	}
	member, err := s.workspaceRepo.FindMember(ctx, workspaceID, userID)
	if err != nil {
		return err
	}
	if member == nil {
		return ErrNotFound
	}
	member.Role = role
	return s.workspaceRepo.UpsertMember(ctx, member)
}

// RemoveMember drops a membership. The creator is protected so a workspace
// can never lose its last admin.
func (s *WorkspaceService) RemoveMember(ctx context.Context, workspaceID, userID string) error {
	workspace, err := s.workspaceRepo.FindByID(ctx, workspaceID)
	if err != nil {
		return err
	}
	if workspace == nil {
		return ErrNotFound
	}
	if userID == workspace.CreatorID {
		return ErrCreatorCannotBeRemoved
	}
	member, err := s.workspaceRepo.FindMember(ctx, workspaceID, userID)
	if err != nil {
		return err
	}
	if member == nil {
		return ErrNotFound
	}
	return s.workspaceRepo.RemoveMember(ctx, workspaceID, userID)
}

func (s *WorkspaceService) ListMembers(ctx context.Context, workspaceID string) ([]*models.WorkspaceMemberResponse, error) {
	members, err := s.workspaceRepo.FindMembers(ctx, workspaceID)
	if err != nil {
		return nil, err
	}
	out := make([]*models.WorkspaceMemberResponse, 0, len(members))
	for _, m := range members {
		out = append(out, &models.WorkspaceMemberResponse{
			UserID:   m.UserID,
			Role:     m.Role,
			JoinedAt: m.JoinedAt,
			User:     *ToUserResponse(&m.User),
		})
	}
	return out, nil
}

func toWorkspaceResponse(ws *repository.Workspace, role types.Role) *models.WorkspaceResponse {
	return &models.WorkspaceResponse{
		ID:          ws.ID,
		Name:        ws.Name,
		Description: ws.Description,
		CreatorID:   ws.CreatorID,
		Role:        role,
		CreatedAt:   ws.CreatedAt,
		UpdatedAt:   ws.UpdatedAt,
	}
}
