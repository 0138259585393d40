package service

import (
	"context"

	"github.com/Dexter0900/TaskEngineX/internal/models"
	"github.com/Dexter0900/TaskEngineX/internal/notification"
	"github.com/Dexter0900/TaskEngineX/internal/repository"
	"github.com/Dexter0900/TaskEngineX/internal/types"
)

type ProjectService struct {
	projectRepo   repository.ProjectRepository
	workspaceRepo repository.WorkspaceRepository
	userRepo      repository.UserRepository
	notifier      *notification.Service
}

func NewProjectService(projectRepo repository.ProjectRepository, workspaceRepo repository.WorkspaceRepository, userRepo repository.UserRepository, notifier *notification.Service) *ProjectService {
	return &ProjectService{projectRepo: projectRepo, workspaceRepo: workspaceRepo, userRepo: userRepo, notifier: notifier}
}

// Create makes a project; the creator becomes its first assigner.
func (s *ProjectService) Create(ctx context.Context, workspaceID, creatorID string, req *models.CreateProjectRequest) (*models.ProjectResponse, error) {
	project := &repository.Project{
		Name:        req.Name,
		Description: req.Description,
		WorkspaceID: workspaceID,
		CreatorID:   creatorID,
	}
	if err := s.projectRepo.Create(ctx, project); err != nil {
		return nil, err
	}
	return toProjectResponse(project, repository.ProjectMembership{IsAssigner: true}), nil
}

func (s *ProjectService) GetByID(ctx context.Context, projectID string, membership repository.ProjectMembership) (*models.ProjectResponse, error) {
	project, err := s.projectRepo.FindByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if project == nil {
		return nil, ErrNotFound
	}
	return toProjectResponse(project, membership), nil
}

// ListForWorkspace returns the workspace's projects, annotated with the
// caller's membership in each. Non-admins only see projects they belong to.
func (s *ProjectService) ListForWorkspace(ctx context.Context, workspaceID, userID string, role types.Role) ([]*models.ProjectResponse, error) {
	projects, err := s.projectRepo.FindByWorkspaceID(ctx, workspaceID)
	if err != nil {
		return nil, err
	}
	out := make([]*models.ProjectResponse, 0, len(projects))
	for _, project := range projects {
		membership, err := s.projectRepo.FindMembership(ctx, project.ID, userID)
		if err != nil {
			return nil, err
		}
		if role == types.RoleAdmin {
			membership.IsAssigner = true
		} else if !membership.IsMember() {
			continue
		}
		out = append(out, toProjectResponse(project, membership))
	}
	return out, nil
}

func (s *ProjectService) Update(ctx context.Context, projectID string, req *models.UpdateProjectRequest) (*models.ProjectResponse, error) {
	project, err := s.projectRepo.FindByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if project == nil {
		return nil, ErrNotFound
	}
	if req.Name != nil {
		project.Name = *req.Name
	}
	if req.Description != nil {
		project.Description = req.Description
	}
	if req.Status != nil {
		if !types.IsValidProjectStatus(*req.Status) {
			return nil, ErrValidation
		}
		project.Status = *req.Status
	}
	if err := s.projectRepo.Update(ctx, project); err != nil {
		return nil, err
	}
	return toProjectResponse(project, repository.ProjectMembership{IsAssigner: true}), nil
}

func (s *ProjectService) Delete(ctx context.Context, workspaceID, projectID string) error {
	if _, err := s.workspaceProject(ctx, workspaceID, projectID); err != nil {
		return err
	}
	return s.projectRepo.Delete(ctx, projectID)
}

// workspaceProject loads the project and pins it to the workspace. Member
// management and deletion run behind workspace-level guards only, so the
// project-workspace integrity check happens here.
func (s *ProjectService) workspaceProject(ctx context.Context, workspaceID, projectID string) (*repository.Project, error) {
	project, err := s.projectRepo.FindByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if project == nil {
		return nil, ErrNotFound
	}
	if project.WorkspaceID != workspaceID {
		return nil, ErrProjectWorkspaceMismatch
	}
	return project, nil
}

// AddAssigner grants a user assigner rights on the project, looked up by
// email. Only workspace admins reach this path.
func (s *ProjectService) AddAssigner(ctx context.Context, workspaceID, projectID, email string) (*models.ProjectMemberResponse, error) {
	return s.addMember(ctx, workspaceID, projectID, email, types.ProjectRoleAssigner)
}

// AddWorker adds a worker to the project by email. Admins and project
// assigners may do this.
func (s *ProjectService) AddWorker(ctx context.Context, workspaceID, projectID, email string) (*models.ProjectMemberResponse, error) {
	return s.addMember(ctx, workspaceID, projectID, email, types.ProjectRoleWorker)
}

func (s *ProjectService) addMember(ctx context.Context, workspaceID, projectID, email string, role types.ProjectRole) (*models.ProjectMemberResponse, error) {
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrNotFound
	}
	project, err := s.workspaceProject(ctx, workspaceID, projectID)
	if err != nil {
		return nil, err
	}

	member := &repository.ProjectMember{
		ProjectID: projectID,
		UserID:    user.ID,
		Role:      role,
	}
	if err := s.projectRepo.UpsertMember(ctx, member); err != nil {
		return nil, err
	}

	s.notifier.Notify(user.ID, "project:added", "Added to project",
		"You were added to "+project.Name+" as "+string(role),
		map[string]any{"workspaceId": workspaceID, "projectId": projectID})

	return &models.ProjectMemberResponse{
		UserID:   user.ID,
		Role:     role,
		JoinedAt: member.JoinedAt,
		User:     *ToUserResponse(user),
	}, nil
}

func (s *ProjectService) RemoveMember(ctx context.Context, workspaceID, projectID, userID string, role types.ProjectRole) error {
	if !types.IsValidProjectRole(role) {
		return ErrValidation
	}
	project, err := s.workspaceProject(ctx, workspaceID, projectID)
	if err != nil {
		return err
	}
	// The creator keeps assigner rights for the project's lifetime.
	if userID == project.CreatorID && role == types.ProjectRoleAssigner {
		return ErrForbidden
	}
	return s.projectRepo.RemoveMember(ctx, projectID, userID, role)
}

func (s *ProjectService) ListMembers(ctx context.Context, projectID string) ([]*models.ProjectMemberResponse, error) {
	members, err := s.projectRepo.FindMembers(ctx, projectID)
	if err != nil {
		return nil, err
	}
	out := make([]*models.ProjectMemberResponse, 0, len(members))
	for _, m := range members {
		out = append(out, &models.ProjectMemberResponse{
			UserID:   m.UserID,
			Role:     m.Role,
			JoinedAt: m.JoinedAt,
			User:     *ToUserResponse(&m.User),
		})
	}
	return out, nil
}

func toProjectResponse(project *repository.Project, membership repository.ProjectMembership) *models.ProjectResponse {
	return &models.ProjectResponse{
		ID:          project.ID,
		Name:        project.Name,
		Description: project.Description,
		WorkspaceID: project.WorkspaceID,
		CreatorID:   project.CreatorID,
		Status:      project.Status,
		IsAssigner:  membership.IsAssigner,
		IsWorker:    membership.IsWorker,
		CreatedAt:   project.CreatedAt,
		UpdatedAt:   project.UpdatedAt,
	}
}
