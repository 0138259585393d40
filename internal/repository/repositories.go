// Package repository holds the Postgres persistence layer. Each repository is
// an interface backed by a pgx connection pool; lookups that miss return
// (nil, nil) so callers decide how absence maps to errors.
package repository

import "github.com/jackc/pgx/v5/pgxpool"

type Repositories struct {
	User         UserRepository
	Workspace    WorkspaceRepository
	Project      ProjectRepository
	Task         TaskRepository
	Subtask      SubtaskRepository
	Notification NotificationRepository
}

func NewRepositories(pool *pgxpool.Pool) *Repositories {
	return &Repositories{
		User:         NewUserRepository(pool),
		Workspace:    NewWorkspaceRepository(pool),
		Project:      NewProjectRepository(pool),
		Task:         NewTaskRepository(pool),
		Subtask:      NewSubtaskRepository(pool),
		Notification: NewNotificationRepository(pool),
	}
}
