package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dexter0900/TaskEngineX/internal/models"
	"github.com/Dexter0900/TaskEngineX/internal/types"
)

func TestCreateWorkspaceEnrollsCreatorAsAdmin(t *testing.T) {
	env := newTestEnv()
	creator := env.addUser("creator@example.com")

	ws, err := env.services.Workspace.Create(context.Background(), creator.ID, &models.CreateWorkspaceRequest{Name: "Engineering"})
	require.NoError(t, err)
	assert.Equal(t, creator.ID, ws.CreatorID)
	assert.Equal(t, types.RoleAdmin, ws.Role)

	role, err := env.services.Permission.ResolveWorkspaceRole(context.Background(), ws.ID, creator.ID)
	require.NoError(t, err)
	assert.Equal(t, types.RoleAdmin, role)
}

func TestAddMemberByEmail(t *testing.T) {
	env := newTestEnv()
	admin := env.addUser("admin@example.com")
	invitee := env.addUser("invitee@example.com")
	ws := env.addWorkspace(admin.ID)

	member, err := env.services.Workspace.AddMember(context.Background(), ws.ID, &models.AddMemberRequest{
		Email: "Invitee@Example.com",
		Role:  types.RoleAssigner,
	})
	require.NoError(t, err)
	assert.Equal(t, invitee.ID, member.UserID)
	assert.Equal(t, types.RoleAssigner, member.Role)

	// Re-adding with a different role updates the membership in place.
	member, err = env.services.Workspace.AddMember(context.Background(), ws.ID, &models.AddMemberRequest{
		Email: "invitee@example.com",
		Role:  types.RoleWorker,
	})
	require.NoError(t, err)
	assert.Equal(t, types.RoleWorker, member.Role)

	// The invitee got an in-app notification for each invite.
	count, err := env.services.Notification.UnreadCount(context.Background(), invitee.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestAddMemberValidation(t *testing.T) {
	env := newTestEnv()
	admin := env.addUser("admin@example.com")
	ws := env.addWorkspace(admin.ID)

	_, err := env.services.Workspace.AddMember(context.Background(), ws.ID, &models.AddMemberRequest{
		Email: "admin@example.com",
		Role:  "owner",
	})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = env.services.Workspace.AddMember(context.Background(), ws.ID, &models.AddMemberRequest{
		Email: "nobody@example.com",
		Role:  types.RoleWorker,
	})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCreatorCannotBeDemotedOrRemoved(t *testing.T) {
	env := newTestEnv()
	creator := env.addUser("creator@example.com")
	ws := env.addWorkspace(creator.ID)

	_, err := env.services.Workspace.AddMember(context.Background(), ws.ID, &models.AddMemberRequest{
		Email: "creator@example.com",
		Role:  types.RoleWorker,
	})
	assert.ErrorIs(t, err, ErrCreatorCannotBeRemoved)

	err = env.services.Workspace.UpdateMemberRole(context.Background(), ws.ID, creator.ID, types.RoleAssigner)
	assert.ErrorIs(t, err, ErrCreatorCannotBeRemoved)

	err = env.services.Workspace.RemoveMember(context.Background(), ws.ID, creator.ID)
	assert.ErrorIs(t, err, ErrCreatorCannotBeRemoved)

	// The creator is still the admin after all three attempts.
	role, err := env.services.Permission.ResolveWorkspaceRole(context.Background(), ws.ID, creator.ID)
	require.NoError(t, err)
	assert.Equal(t, types.RoleAdmin, role)
}

func TestDeleteWorkspaceCreatorOnly(t *testing.T) {
	env := newTestEnv()
	creator := env.addUser("creator@example.com")
	other := env.addUser("other@example.com")
	ws := env.addWorkspace(creator.ID)
	env.addMember(ws.ID, other.ID, types.RoleAdmin)

	// A second admin cannot tear the workspace down.
	err := env.services.Workspace.Delete(context.Background(), ws.ID, other.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	require.NoError(t, env.services.Workspace.Delete(context.Background(), ws.ID, creator.ID))

	_, err = env.services.Workspace.GetByID(context.Background(), ws.ID, types.RoleAdmin)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRemoveMember(t *testing.T) {
	env := newTestEnv()
	admin := env.addUser("admin@example.com")
	worker := env.addUser("worker@example.com")
	ws := env.addWorkspace(admin.ID)
	env.addMember(ws.ID, worker.ID, types.RoleWorker)

	require.NoError(t, env.services.Workspace.RemoveMember(context.Background(), ws.ID, worker.ID))

	_, err := env.services.Permission.ResolveWorkspaceRole(context.Background(), ws.ID, worker.ID)
	assert.ErrorIs(t, err, ErrNotAWorkspaceMember)

	// Removing someone who is not a member is a miss, not a crash.
	err = env.services.Workspace.RemoveMember(context.Background(), ws.ID, worker.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateMemberRole(t *testing.T) {
	env := newTestEnv()
	admin := env.addUser("admin@example.com")
	worker := env.addUser("worker@example.com")
	ws := env.addWorkspace(admin.ID)
	env.addMember(ws.ID, worker.ID, types.RoleWorker)

	require.NoError(t, env.services.Workspace.UpdateMemberRole(context.Background(), ws.ID, worker.ID, types.RoleAssigner))

	role, err := env.services.Permission.ResolveWorkspaceRole(context.Background(), ws.ID, worker.ID)
	require.NoError(t, err)
	assert.Equal(t, types.RoleAssigner, role)

	err = env.services.Workspace.UpdateMemberRole(context.Background(), ws.ID, "user-missing", types.RoleWorker)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListForUserAnnotatesRole(t *testing.T) {
	env := newTestEnv()
	admin := env.addUser("admin@example.com")
	worker := env.addUser("worker@example.com")
	ws := env.addWorkspace(admin.ID)
	env.addMember(ws.ID, worker.ID, types.RoleWorker)

	list, err := env.services.Workspace.ListForUser(context.Background(), worker.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, ws.ID, list[0].ID)
	assert.Equal(t, types.RoleWorker, list[0].Role)
}
