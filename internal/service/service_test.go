package service

import (
	"context"

	"github.com/Dexter0900/TaskEngineX/internal/config"
	"github.com/Dexter0900/TaskEngineX/internal/notification"
	"github.com/Dexter0900/TaskEngineX/internal/repository"
	"github.com/Dexter0900/TaskEngineX/internal/types"
)

type testEnv struct {
	users      *fakeUserRepo
	workspaces *fakeWorkspaceRepo
	projects   *fakeProjectRepo
	tasks      *fakeTaskRepo
	subtasks   *fakeSubtaskRepo
	notifs     *fakeNotificationRepo
	broadcasts *fakeBroadcaster
	services   *Services
}

func newTestEnv() *testEnv {
	subtasks := newFakeSubtaskRepo()
	env := &testEnv{
		users:      newFakeUserRepo(),
		workspaces: newFakeWorkspaceRepo(),
		projects:   newFakeProjectRepo(),
		tasks:      newFakeTaskRepo(subtasks),
		subtasks:   subtasks,
		notifs:     &fakeNotificationRepo{},
		broadcasts: &fakeBroadcaster{},
	}
	repos := &repository.Repositories{
		User:         env.users,
		Workspace:    env.workspaces,
		Project:      env.projects,
		Task:         env.tasks,
		Subtask:      env.subtasks,
		Notification: env.notifs,
	}
	cfg := &config.Config{
		JWTSecret:       "test-secret",
		JWTExpiry:       1,
		RefreshExpiry:   1,
		MagicLinkSecret: "test-magic-secret",
		MagicLinkExpiry: 15,
		FrontendURL:     "http://localhost:3000",
	}
	env.services = NewServices(ServiceDeps{
		Repos:        repos,
		Config:       cfg,
		Notification: notification.NewService(env.notifs, env.broadcasts),
	})
	return env
}

func (e *testEnv) addUser(email string) *repository.User {
	user := &repository.User{Email: email, FirstName: "Test", LastName: "User"}
	_ = e.users.Create(context.Background(), user)
	return user
}

func (e *testEnv) addWorkspace(creatorID string) *repository.Workspace {
	ws := &repository.Workspace{Name: "Workspace", CreatorID: creatorID}
	_ = e.workspaces.Create(context.Background(), ws)
	return ws
}

func (e *testEnv) addMember(workspaceID, userID string, role types.Role) {
	_ = e.workspaces.UpsertMember(context.Background(), &repository.WorkspaceMember{
		WorkspaceID: workspaceID,
		UserID:      userID,
		Role:        role,
	})
}

func (e *testEnv) addProject(workspaceID, creatorID string) *repository.Project {
	project := &repository.Project{Name: "Project", WorkspaceID: workspaceID, CreatorID: creatorID}
	_ = e.projects.Create(context.Background(), project)
	return project
}
