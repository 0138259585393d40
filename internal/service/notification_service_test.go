package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dexter0900/TaskEngineX/internal/models"
	"github.com/Dexter0900/TaskEngineX/internal/types"
)

func TestNotificationFlow(t *testing.T) {
	env := newTestEnv()
	assigner := env.addUser("assigner@example.com")
	worker := env.addUser("worker@example.com")
	ws := env.addWorkspace(assigner.ID)
	env.addMember(ws.ID, worker.ID, types.RoleWorker)

	// Assigning a task notifies the assignee.
	_, err := env.services.Task.CreateWorkspaceTask(context.Background(), ws.ID, assigner.ID, types.RoleAdmin, &models.CreateWorkspaceTaskRequest{
		Title:      "Wire the dashboard",
		AssignedTo: worker.ID,
	})
	require.NoError(t, err)

	list, err := env.services.Notification.List(context.Background(), worker.ID, 50)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "task:assigned", list[0].Type)
	assert.False(t, list[0].Read)

	count, err := env.services.Notification.UnreadCount(context.Background(), worker.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	require.NoError(t, env.services.Notification.MarkRead(context.Background(), list[0].ID, worker.ID))
	count, err = env.services.Notification.UnreadCount(context.Background(), worker.ID)
	require.NoError(t, err)
	assert.Zero(t, count)

	require.NoError(t, env.services.Notification.Delete(context.Background(), list[0].ID, worker.ID))
	list, err = env.services.Notification.List(context.Background(), worker.ID, 50)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestMarkAllRead(t *testing.T) {
	env := newTestEnv()
	assigner := env.addUser("assigner@example.com")
	worker := env.addUser("worker@example.com")
	ws := env.addWorkspace(assigner.ID)
	env.addMember(ws.ID, worker.ID, types.RoleWorker)

	for i := 0; i < 3; i++ {
		_, err := env.services.Task.CreateWorkspaceTask(context.Background(), ws.ID, assigner.ID, types.RoleAdmin, &models.CreateWorkspaceTaskRequest{
			Title:      "Task",
			AssignedTo: worker.ID,
		})
		require.NoError(t, err)
	}

	require.NoError(t, env.services.Notification.MarkAllRead(context.Background(), worker.ID))

	count, err := env.services.Notification.UnreadCount(context.Background(), worker.ID)
	require.NoError(t, err)
	assert.Zero(t, count)

	// The assigner's own notifications are untouched by someone else's id.
	require.NoError(t, env.services.Notification.MarkRead(context.Background(), "notif-1", assigner.ID))
}
