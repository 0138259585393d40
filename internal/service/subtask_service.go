package service

import (
	"context"
	"strings"

	"github.com/Dexter0900/TaskEngineX/internal/models"
	"github.com/Dexter0900/TaskEngineX/internal/notification"
	"github.com/Dexter0900/TaskEngineX/internal/repository"
)

// SubtaskService manages checklist items under a task. Every operation is
// restricted to the parent task's creator, including for workspace tasks.
type SubtaskService struct {
	subtaskRepo repository.SubtaskRepository
	taskRepo    repository.TaskRepository
	notifier    *notification.Service
}

func NewSubtaskService(subtaskRepo repository.SubtaskRepository, taskRepo repository.TaskRepository, notifier *notification.Service) *SubtaskService {
	return &SubtaskService{subtaskRepo: subtaskRepo, taskRepo: taskRepo, notifier: notifier}
}

func (s *SubtaskService) Create(ctx context.Context, taskID, userID string, req *models.CreateSubtaskRequest) (*models.SubtaskResponse, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, ErrValidation
	}
	task, err := s.ownedParent(ctx, taskID, userID)
	if err != nil {
		return nil, err
	}

	subtask := &repository.Subtask{
		TaskID:      taskID,
		Title:       title,
		WorkspaceID: task.WorkspaceID,
		ProjectID:   task.ProjectID,
	}
	if err := s.subtaskRepo.Create(ctx, subtask); err != nil {
		return nil, err
	}
	s.broadcast(task, notification.EventSubtaskCreated, subtask.ID, userID)
	return toSubtaskResponse(subtask), nil
}

func (s *SubtaskService) ListForTask(ctx context.Context, taskID, userID string) ([]*models.SubtaskResponse, error) {
	if _, err := s.ownedParent(ctx, taskID, userID); err != nil {
		return nil, err
	}
	subtasks, err := s.subtaskRepo.FindByTaskID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	out := make([]*models.SubtaskResponse, 0, len(subtasks))
	for _, subtask := range subtasks {
		out = append(out, toSubtaskResponse(subtask))
	}
	return out, nil
}

func (s *SubtaskService) Update(ctx context.Context, subtaskID, userID string, req *models.UpdateSubtaskRequest) (*models.SubtaskResponse, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, ErrValidation
	}
	subtask, _, err := s.ownedSubtask(ctx, subtaskID, userID)
	if err != nil {
		return nil, err
	}
	subtask.Title = title
	if err := s.subtaskRepo.Update(ctx, subtask); err != nil {
		return nil, err
	}
	return toSubtaskResponse(subtask), nil
}

func (s *SubtaskService) Toggle(ctx context.Context, subtaskID, userID string) (*models.SubtaskResponse, error) {
	_, task, err := s.ownedSubtask(ctx, subtaskID, userID)
	if err != nil {
		return nil, err
	}
	subtask, err := s.subtaskRepo.Toggle(ctx, subtaskID)
	if err != nil {
		return nil, err
	}
	if subtask == nil {
		return nil, ErrNotFound
	}
	s.broadcast(task, notification.EventSubtaskToggled, subtask.ID, userID)
	return toSubtaskResponse(subtask), nil
}

func (s *SubtaskService) Delete(ctx context.Context, subtaskID, userID string) error {
	subtask, task, err := s.ownedSubtask(ctx, subtaskID, userID)
	if err != nil {
		return err
	}
	if err := s.subtaskRepo.Delete(ctx, subtaskID); err != nil {
		return err
	}
	s.broadcast(task, notification.EventSubtaskDeleted, subtask.ID, userID)
	return nil
}

func (s *SubtaskService) ownedParent(ctx context.Context, taskID, userID string) (*repository.Task, error) {
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

func (s *SubtaskService) ownedSubtask(ctx context.Context, subtaskID, userID string) (*repository.Subtask, *repository.Task, error) {
	subtask, err := s.subtaskRepo.FindByID(ctx, subtaskID)
	if err != nil {
		return nil, nil, err
	}
	if subtask == nil {
		return nil, nil, ErrNotFound
	}
	task, err := s.ownedParent(ctx, subtask.TaskID, userID)
	if err != nil {
		return nil, nil, err
	}
	return subtask, task, nil
}

func (s *SubtaskService) broadcast(task *repository.Task, event, subtaskID, actorID string) {
	payload := map[string]any{
		"subtaskId": subtaskID,
		"taskId":    task.ID,
		"userId":    actorID,
	}
	if task.WorkspaceID != nil {
		s.notifier.BroadcastWorkspace(*task.WorkspaceID, event, payload)
		return
	}
	s.notifier.BroadcastUser(task.UserID, event, payload)
}

func toSubtaskResponse(subtask *repository.Subtask) *models.SubtaskResponse {
	return &models.SubtaskResponse{
		ID:        subtask.ID,
		TaskID:    subtask.TaskID,
		Title:     subtask.Title,
		Completed: subtask.Completed,
		CreatedAt: subtask.CreatedAt,
		UpdatedAt: subtask.UpdatedAt,
	}
}
