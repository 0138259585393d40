package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dexter0900/TaskEngineX/internal/models"
	"github.com/Dexter0900/TaskEngineX/internal/types"
)

func TestCreateProjectEnrollsCreatorAsAssigner(t *testing.T) {
	env := newTestEnv()
	assigner := env.addUser("assigner@example.com")
	ws := env.addWorkspace(assigner.ID)

	project, err := env.services.Project.Create(context.Background(), ws.ID, assigner.ID, &models.CreateProjectRequest{Name: "Migration"})
	require.NoError(t, err)
	assert.Equal(t, types.ProjectActive, project.Status)
	assert.True(t, project.IsAssigner)

	membership, err := env.projects.FindMembership(context.Background(), project.ID, assigner.ID)
	require.NoError(t, err)
	assert.True(t, membership.IsAssigner)
}

func TestListForWorkspaceFiltersNonMembers(t *testing.T) {
	env := newTestEnv()
	admin := env.addUser("admin@example.com")
	assigner := env.addUser("assigner@example.com")
	worker := env.addUser("worker@example.com")
	ws := env.addWorkspace(admin.ID)
	env.addMember(ws.ID, assigner.ID, types.RoleAssigner)
	env.addMember(ws.ID, worker.ID, types.RoleWorker)

	mine := env.addProject(ws.ID, assigner.ID)
	env.addProject(ws.ID, admin.ID)

	// Admins see every project with assigner access.
	adminView, err := env.services.Project.ListForWorkspace(context.Background(), ws.ID, admin.ID, types.RoleAdmin)
	require.NoError(t, err)
	assert.Len(t, adminView, 2)
	for _, p := range adminView {
		assert.True(t, p.IsAssigner)
	}

	// Non-admins only see the ones they belong to.
	assignerView, err := env.services.Project.ListForWorkspace(context.Background(), ws.ID, assigner.ID, types.RoleAssigner)
	require.NoError(t, err)
	require.Len(t, assignerView, 1)
	assert.Equal(t, mine.ID, assignerView[0].ID)

	workerView, err := env.services.Project.ListForWorkspace(context.Background(), ws.ID, worker.ID, types.RoleWorker)
	require.NoError(t, err)
	assert.Empty(t, workerView)
}

func TestAddProjectMembers(t *testing.T) {
	env := newTestEnv()
	admin := env.addUser("admin@example.com")
	worker := env.addUser("worker@example.com")
	ws := env.addWorkspace(admin.ID)
	env.addMember(ws.ID, worker.ID, types.RoleWorker)
	project := env.addProject(ws.ID, admin.ID)

	member, err := env.services.Project.AddWorker(context.Background(), ws.ID, project.ID, "worker@example.com")
	require.NoError(t, err)
	assert.Equal(t, worker.ID, member.UserID)
	assert.Equal(t, types.ProjectRoleWorker, member.Role)
	assert.False(t, member.JoinedAt.IsZero())

	// The same user can hold both roles; re-adding keeps the original
	// joined-at.
	joined := member.JoinedAt
	member, err = env.services.Project.AddWorker(context.Background(), ws.ID, project.ID, "worker@example.com")
	require.NoError(t, err)
	assert.Equal(t, joined, member.JoinedAt)

	member, err = env.services.Project.AddAssigner(context.Background(), ws.ID, project.ID, "worker@example.com")
	require.NoError(t, err)
	assert.Equal(t, types.ProjectRoleAssigner, member.Role)
	assert.False(t, member.JoinedAt.IsZero())

	membership, err := env.projects.FindMembership(context.Background(), project.ID, worker.ID)
	require.NoError(t, err)
	assert.True(t, membership.IsAssigner)
	assert.True(t, membership.IsWorker)

	_, err = env.services.Project.AddWorker(context.Background(), ws.ID, project.ID, "nobody@example.com")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRemoveProjectMember(t *testing.T) {
	env := newTestEnv()
	admin := env.addUser("admin@example.com")
	worker := env.addUser("worker@example.com")
	ws := env.addWorkspace(admin.ID)
	project := env.addProject(ws.ID, admin.ID)
	_, err := env.services.Project.AddWorker(context.Background(), ws.ID, project.ID, "worker@example.com")
	require.NoError(t, err)

	require.NoError(t, env.services.Project.RemoveMember(context.Background(), ws.ID, project.ID, worker.ID, types.ProjectRoleWorker))

	membership, err := env.projects.FindMembership(context.Background(), project.ID, worker.ID)
	require.NoError(t, err)
	assert.False(t, membership.IsWorker)

	// The creator's assigner role cannot be revoked.
	err = env.services.Project.RemoveMember(context.Background(), ws.ID, project.ID, admin.ID, types.ProjectRoleAssigner)
	assert.ErrorIs(t, err, ErrForbidden)

	err = env.services.Project.RemoveMember(context.Background(), ws.ID, project.ID, worker.ID, "owner")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestProjectOperationsPinWorkspace(t *testing.T) {
	env := newTestEnv()
	admin := env.addUser("admin@example.com")
	env.addUser("worker@example.com")
	ws := env.addWorkspace(admin.ID)
	other := env.addWorkspace(admin.ID)
	project := env.addProject(ws.ID, admin.ID)

	// Member management and deletion reject a project claimed under the
	// wrong workspace.
	_, err := env.services.Project.AddWorker(context.Background(), other.ID, project.ID, "worker@example.com")
	assert.ErrorIs(t, err, ErrProjectWorkspaceMismatch)

	err = env.services.Project.RemoveMember(context.Background(), other.ID, project.ID, admin.ID, types.ProjectRoleWorker)
	assert.ErrorIs(t, err, ErrProjectWorkspaceMismatch)

	err = env.services.Project.Delete(context.Background(), other.ID, project.ID)
	assert.ErrorIs(t, err, ErrProjectWorkspaceMismatch)

	require.NoError(t, env.services.Project.Delete(context.Background(), ws.ID, project.ID))
	gone, err := env.projects.FindByID(context.Background(), project.ID)
	require.NoError(t, err)
	assert.Nil(t, gone)
}

func TestUpdateProjectStatus(t *testing.T) {
	env := newTestEnv()
	admin := env.addUser("admin@example.com")
	ws := env.addWorkspace(admin.ID)
	project := env.addProject(ws.ID, admin.ID)

	archived := types.ProjectArchived
	updated, err := env.services.Project.Update(context.Background(), project.ID, &models.UpdateProjectRequest{Status: &archived})
	require.NoError(t, err)
	assert.Equal(t, types.ProjectArchived, updated.Status)

	bogus := types.ProjectStatus("paused")
	_, err = env.services.Project.Update(context.Background(), project.ID, &models.UpdateProjectRequest{Status: &bogus})
	assert.ErrorIs(t, err, ErrValidation)
}
