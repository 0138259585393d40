package service

import (
	"context"
	"log"
	"strings"

	"github.com/Dexter0900/TaskEngineX/internal/models"
	"github.com/Dexter0900/TaskEngineX/internal/notification"
	"github.com/Dexter0900/TaskEngineX/internal/repository"
	"github.com/Dexter0900/TaskEngineX/internal/types"
)

const (
	maxTitleLen       = 200
	maxDescriptionLen = 1000
)

type TaskService struct {
	taskRepo    repository.TaskRepository
	userRepo    repository.UserRepository
	permissions *PermissionService
	notifier    *notification.Service
	mailer      Mailer
}

func NewTaskService(taskRepo repository.TaskRepository, userRepo repository.UserRepository, permissions *PermissionService, notifier *notification.Service, mailer Mailer) *TaskService {
	return &TaskService{
		taskRepo:    taskRepo,
		userRepo:    userRepo,
		permissions: permissions,
		notifier:    notifier,
		mailer:      mailer,
	}
}

func validateTitle(title string) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" || len(title) > maxTitleLen {
		return "", ErrValidation
	}
	return title, nil
}

func validateDescription(description *string) error {
	if description != nil && len(*description) > maxDescriptionLen {
		return ErrValidation
	}
	return nil
}

// Create adds a personal task for the caller.
func (s *TaskService) Create(ctx context.Context, userID string, req *models.CreateTaskRequest) (*models.TaskResponse, error) {
	title, err := validateTitle(req.Title)
	if err != nil {
		return nil, err
	}
	if err := validateDescription(req.Description); err != nil {
		return nil, err
	}
	if req.Priority != "" && !types.IsValidPriority(req.Priority) {
		return nil, ErrValidation
	}

	task := &repository.Task{
		Title:       title,
		Description: req.Description,
		Priority:    req.Priority,
		DueDate:     req.DueDate,
		Tags:        req.Tags,
		UserID:      userID,
	}
	if err := s.taskRepo.Create(ctx, task); err != nil {
		return nil, err
	}
	s.broadcastTaskEvent(task, notification.EventTaskCreated, userID)
	return ToTaskResponse(task), nil
}

func (s *TaskService) List(ctx context.Context, userID string, query *models.TaskListQuery) ([]*models.TaskResponse, error) {
	tasks, err := s.taskRepo.FindPersonal(ctx, userID, filterFromQuery(query))
	if err != nil {
		return nil, err
	}
	return toTaskResponses(tasks), nil
}

// GetByID returns a task the caller participates in: its creator, assignee
// or the assigner who handed it out.
func (s *TaskService) GetByID(ctx context.Context, taskID, userID string) (*models.TaskResponse, error) {
	task, err := s.findParticipantTask(ctx, taskID, userID)
	if err != nil {
		return nil, err
	}
	return ToTaskResponse(task), nil
}

func (s *TaskService) Update(ctx context.Context, taskID, userID string, req *models.UpdateTaskRequest) (*models.TaskResponse, error) {
	task, err := s.findOwnedTask(ctx, taskID, userID)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		title, err := validateTitle(*req.Title)
		if err != nil {
			return nil, err
		}
		task.Title = title
	}
	if req.Description != nil {
		if err := validateDescription(req.Description); err != nil {
			return nil, err
		}
		task.Description = req.Description
	}
	if req.Status != nil {
		if !types.IsValidTaskStatus(*req.Status) {
			return nil, ErrValidation
		}
		task.Status = *req.Status
	}
	if req.Priority != nil {
		if !types.IsValidPriority(*req.Priority) {
			return nil, ErrValidation
		}
		task.Priority = *req.Priority
	}
	if req.DueDate != nil {
		task.DueDate = req.DueDate
	}
	if req.Tags != nil {
		task.Tags = req.Tags
	}
	if req.AssignedTo != nil && task.IsWorkspaceTask() {
		task.AssignedTo = req.AssignedTo
	}

	if err := s.taskRepo.Update(ctx, task); err != nil {
		return nil, err
	}
	s.broadcastTaskEvent(task, notification.EventTaskUpdated, userID)
	return ToTaskResponse(task), nil
}

// Toggle rotates a personal task's status one step: pending, in-progress,
// completed, then around again.
func (s *TaskService) Toggle(ctx context.Context, taskID, userID string) (*models.TaskResponse, error) {
	task, err := s.findOwnedTask(ctx, taskID, userID)
	if err != nil {
		return nil, err
	}
	if task.IsWorkspaceTask() {
		// Workspace tasks move through the completion-approval flow instead.
		return nil, ErrInvalidStateTransition
	}
	task.Status = types.NextStatus(task.Status)
	if err := s.taskRepo.UpdateStatus(ctx, taskID, task.Status); err != nil {
		return nil, err
	}
	s.broadcastTaskEvent(task, notification.EventTaskStatusChanged, userID)
	return ToTaskResponse(task), nil
}

func (s *TaskService) Delete(ctx context.Context, taskID, userID string) error {
	task, err := s.findOwnedTask(ctx, taskID, userID)
	if err != nil {
		return err
	}
	if err := s.taskRepo.Delete(ctx, taskID); err != nil {
		return err
	}
	s.broadcastTaskEvent(task, notification.EventTaskDeleted, userID)
	return nil
}

func (s *TaskService) PersonalStats(ctx context.Context, userID string) (*repository.TaskStats, error) {
	return s.taskRepo.PersonalStats(ctx, userID)
}

// CreateWorkspaceTask assigns a task to a workspace member. Callers reach
// this through the assigner guard; when the task targets a project the
// caller must additionally be a project member, which also pins the project
// to the workspace.
func (s *TaskService) CreateWorkspaceTask(ctx context.Context, workspaceID, callerID string, callerRole types.Role, req *models.CreateWorkspaceTaskRequest) (*models.TaskResponse, error) {
	title, err := validateTitle(req.Title)
	if err != nil {
		return nil, err
	}
	if err := validateDescription(req.Description); err != nil {
		return nil, err
	}
	if req.Priority != "" && !types.IsValidPriority(req.Priority) {
		return nil, ErrValidation
	}

	assignee, err := s.userRepo.FindByID(ctx, req.AssignedTo)
	if err != nil {
		return nil, err
	}
	if assignee == nil {
		return nil, ErrNotFound
	}

	if req.ProjectID != nil {
		if _, err := s.permissions.ResolveProjectMembership(ctx, workspaceID, *req.ProjectID, callerID, callerRole); err != nil {
			return nil, err
		}
	}

	task := &repository.Task{
		Title:       title,
		Description: req.Description,
		Priority:    req.Priority,
		DueDate:     req.DueDate,
		Tags:        req.Tags,
		UserID:      callerID,
		WorkspaceID: &workspaceID,
		ProjectID:   req.ProjectID,
		AssignedTo:  &req.AssignedTo,
		AssignedBy:  &callerID,
	}
	if err := s.taskRepo.Create(ctx, task); err != nil {
		return nil, err
	}

	s.broadcastTaskEvent(task, notification.EventTaskCreated, callerID)
	s.notifier.Notify(req.AssignedTo, "task:assigned", "New task assigned",
		"You were assigned: "+task.Title,
		map[string]any{"taskId": task.ID, "workspaceId": workspaceID})
	s.sendAssignmentEmail(ctx, assignee, task, callerID)

	return ToTaskResponse(task), nil
}

func (s *TaskService) ListForWorkspace(ctx context.Context, workspaceID, userID string, role types.Role, query *models.TaskListQuery) ([]*models.TaskResponse, error) {
	scope := s.permissions.TaskScopeFor(role, userID)
	tasks, err := s.taskRepo.FindByWorkspace(ctx, workspaceID, scope, filterFromQuery(query))
	if err != nil {
		return nil, err
	}
	return toTaskResponses(tasks), nil
}

func (s *TaskService) WorkspaceStats(ctx context.Context, workspaceID, userID string, role types.Role) (*repository.TaskStats, error) {
	scope := s.permissions.TaskScopeFor(role, userID)
	return s.taskRepo.WorkspaceStats(ctx, workspaceID, scope)
}

// MarkComplete is the assignee submitting their work for approval.
func (s *TaskService) MarkComplete(ctx context.Context, taskID, userID string) (*models.TaskResponse, error) {
	task, err := s.taskRepo.FindByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, ErrNotFound
	}
	if !task.IsWorkspaceTask() {
		return nil, ErrInvalidStateTransition
	}
	if task.AssignedTo == nil || *task.AssignedTo != userID {
		return nil, ErrForbidden
	}

	ok, err := s.taskRepo.MarkComplete(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrInvalidStateTransition
	}

	task, err = s.taskRepo.FindByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, ErrNotFound
	}

	s.broadcastTaskEvent(task, notification.EventTaskStatusChanged, userID)
	if task.AssignedBy != nil {
		s.notifier.Notify(*task.AssignedBy, "task:submitted", "Task awaiting approval",
			task.Title+" was submitted for approval",
			map[string]any{"taskId": task.ID, "workspaceId": *task.WorkspaceID})
	}
	return ToTaskResponse(task), nil
}

// ResolveApproval settles a submitted task. Only the assigner who handed the
// task out decides; approval is terminal, rejection reopens the task for an
// unbounded resubmit cycle.
func (s *TaskService) ResolveApproval(ctx context.Context, taskID, userID, action string) (*models.TaskResponse, error) {
	if !types.IsValidApprovalAction(action) {
		return nil, ErrValidation
	}
	task, err := s.taskRepo.FindByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, ErrNotFound
	}
	if !task.IsWorkspaceTask() {
		return nil, ErrInvalidStateTransition
	}
	if task.AssignedBy == nil || *task.AssignedBy != userID {
		return nil, ErrForbidden
	}

	approved := action == types.ActionApprove
	ok, err := s.taskRepo.ResolveApproval(ctx, taskID, approved)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrInvalidStateTransition
	}

	task, err = s.taskRepo.FindByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, ErrNotFound
	}

	s.broadcastTaskEvent(task, notification.EventTaskStatusChanged, userID)
	if task.AssignedTo != nil {
		verdict := "approved"
		if !approved {
			verdict = "rejected"
		}
		s.notifier.Notify(*task.AssignedTo, "task:"+verdict, "Task "+verdict,
			task.Title+" was "+verdict,
			map[string]any{"taskId": task.ID, "workspaceId": *task.WorkspaceID})
		s.sendApprovalEmail(ctx, *task.AssignedTo, task, approved)
	}
	return ToTaskResponse(task), nil
}

func (s *TaskService) findOwnedTask(ctx context.Context, taskID, userID string) (*repository.Task, error) {
	task, err := s.taskRepo.FindByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, ErrNotFound
	}
	if task.UserID != userID {
		return nil, ErrForbidden
	}
	return task, nil
}

func (s *TaskService) findParticipantTask(ctx context.Context, taskID, userID string) (*repository.Task, error) {
	task, err := s.taskRepo.FindByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, ErrNotFound
	}
	if task.UserID == userID {
		return task, nil
	}
	if task.AssignedTo != nil && *task.AssignedTo == userID {
		return task, nil
	}
	if task.AssignedBy != nil && *task.AssignedBy == userID {
		return task, nil
	}
	return nil, ErrForbidden
}

// broadcastTaskEvent routes a lifecycle event to its audience: the workspace
// room for workspace tasks, the owner's room for personal ones.
func (s *TaskService) broadcastTaskEvent(task *repository.Task, event, actorID string) {
	payload := map[string]any{
		"taskId": task.ID,
		"userId": actorID,
	}
	if task.WorkspaceID != nil {
		s.notifier.BroadcastWorkspace(*task.WorkspaceID, event, payload)
		return
	}
	s.notifier.BroadcastUser(task.UserID, event, payload)
}

func (s *TaskService) sendAssignmentEmail(ctx context.Context, assignee *repository.User, task *repository.Task, assignerID string) {
	if s.mailer == nil {
		return
	}
	assigner, err := s.userRepo.FindByID(ctx, assignerID)
	if err != nil || assigner == nil {
		return
	}
	if err := s.mailer.SendTaskAssigned(assignee.Email, assignee.Name(), task.Title, assigner.Name()); err != nil {
		log.Printf("⚠️ [task] assignment email to %s failed: %v", assignee.Email, err)
	}
}

func (s *TaskService) sendApprovalEmail(ctx context.Context, assigneeID string, task *repository.Task, approved bool) {
	if s.mailer == nil {
		return
	}
	assignee, err := s.userRepo.FindByID(ctx, assigneeID)
	if err != nil || assignee == nil {
		return
	}
	if err := s.mailer.SendApprovalResult(assignee.Email, assignee.Name(), task.Title, approved); err != nil {
		log.Printf("⚠️ [task] approval email to %s failed: %v", assignee.Email, err)
	}
}

func filterFromQuery(query *models.TaskListQuery) repository.TaskFilter {
	if query == nil {
		return repository.TaskFilter{}
	}
	return repository.TaskFilter{
		Status:   query.Status,
		Priority: query.Priority,
		Search:   query.Search,
	}
}

func ToTaskResponse(task *repository.Task) *models.TaskResponse {
	return &models.TaskResponse{
		ID:             task.ID,
		Title:          task.Title,
		Description:    task.Description,
		Status:         task.Status,
		Priority:       task.Priority,
		DueDate:        task.DueDate,
		Tags:           task.Tags,
		UserID:         task.UserID,
		WorkspaceID:    task.WorkspaceID,
		ProjectID:      task.ProjectID,
		AssignedTo:     task.AssignedTo,
		AssignedBy:     task.AssignedBy,
		ApprovalStatus: task.ApprovalStatus,
		CompletedAt:    task.CompletedAt,
		CreatedAt:      task.CreatedAt,
		UpdatedAt:      task.UpdatedAt,
	}
}

func toTaskResponses(tasks []*repository.Task) []*models.TaskResponse {
	out := make([]*models.TaskResponse, 0, len(tasks))
	for _, task := range tasks {
		out = append(out, ToTaskResponse(task))
	}
	return out
}
