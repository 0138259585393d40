// Package notification persists in-app notifications and pushes realtime
// events to connected clients. Delivery is fire and forget: a failure here
// never fails the operation that triggered it.
package notification

import (
	"context"
	"log"
	"time"

	"github.com/Dexter0900/TaskEngineX/internal/repository"
)

// Event names pushed over the websocket.
const (
	EventTaskCreated       = "task:created"
	EventTaskUpdated       = "task:updated"
	EventTaskDeleted       = "task:deleted"
	EventTaskStatusChanged = "task:statusChanged"
	EventSubtaskCreated    = "subtask:created"
	EventSubtaskToggled    = "subtask:toggled"
	EventSubtaskDeleted    = "subtask:deleted"
	EventNotificationNew   = "notification:new"
)

// Broadcaster pushes an event to a websocket audience. The socket hub
// implements it; a nil Broadcaster disables realtime delivery.
type Broadcaster interface {
	ToUser(userID, event string, payload any)
	ToWorkspace(workspaceID, event string, payload any)
}

type Service struct {
	repo        repository.NotificationRepository
	broadcaster Broadcaster
}

func NewService(repo repository.NotificationRepository, broadcaster Broadcaster) *Service {
	return &Service{repo: repo, broadcaster: broadcaster}
}

// Notify stores a notification for the user and pushes it to their socket.
func (s *Service) Notify(userID, notifType, title, message string, data map[string]any) {
	n := &repository.Notification{
		UserID:  userID,
		Type:    notifType,
		Title:   title,
		Message: message,
		Data:    data,
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.repo.Create(ctx, n); err != nil {
		log.Printf("⚠️ [notification] persist failed for user %s: %v", userID, err)
		return
	}
	if s.broadcaster != nil {
		s.broadcaster.ToUser(userID, EventNotificationNew, n)
	}
}

// BroadcastWorkspace pushes a realtime event to everyone in the workspace
// room without persisting anything.
func (s *Service) BroadcastWorkspace(workspaceID, event string, payload any) {
	if s.broadcaster != nil {
		s.broadcaster.ToWorkspace(workspaceID, event, payload)
	}
}

// BroadcastUser pushes a realtime event to a single user's sockets.
func (s *Service) BroadcastUser(userID, event string, payload any) {
	if s.broadcaster != nil {
		s.broadcaster.ToUser(userID, event, payload)
	}
}
