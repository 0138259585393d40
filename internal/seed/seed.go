// Package seed populates a development database with demo data.
package seed

import (
	"context"
	"log"

	"golang.org/x/crypto/bcrypt"

	"github.com/Dexter0900/TaskEngineX/internal/repository"
	"github.com/Dexter0900/TaskEngineX/internal/types"
)

// Run inserts a demo admin, assigner and worker with a shared workspace,
// a project and a couple of tasks. It is idempotent: if the demo admin
// already exists nothing is touched.
func Run(ctx context.Context, repos *repository.Repositories) error {
	existing, err := repos.User.FindByEmail(ctx, "admin@example.com")
	if err != nil {
		return err
	}
	if existing != nil {
		log.Println("🌱 [seed] demo data already present, skipping")
		return nil
	}

	admin, err := createUser(ctx, repos, "admin@example.com", "Alice", "Admin")
	if err != nil {
		return err
	}
	assigner, err := createUser(ctx, repos, "assigner@example.com", "Bob", "Assigner")
	if err != nil {
		return err
	}
	worker, err := createUser(ctx, repos, "worker@example.com", "Carol", "Worker")
	if err != nil {
		return err
	}

	workspace := &repository.Workspace{
		Name:      "Demo Workspace",
		CreatorID: admin.ID,
	}
	if err := repos.Workspace.Create(ctx, workspace); err != nil {
		return err
	}
	// The creator is enrolled as admin by Create itself.
	members := []repository.WorkspaceMember{
		{WorkspaceID: workspace.ID, UserID: assigner.ID, Role: types.RoleAssigner},
		{WorkspaceID: workspace.ID, UserID: worker.ID, Role: types.RoleWorker},
	}
	for i := range members {
		if err := repos.Workspace.UpsertMember(ctx, &members[i]); err != nil {
			return err
		}
	}

	project := &repository.Project{
		Name:        "Demo Project",
		WorkspaceID: workspace.ID,
		CreatorID:   assigner.ID,
	}
	if err := repos.Project.Create(ctx, project); err != nil {
		return err
	}
	if err := repos.Project.UpsertMember(ctx, &repository.ProjectMember{
		ProjectID: project.ID,
		UserID:    worker.ID,
		Role:      types.ProjectRoleWorker,
	}); err != nil {
		return err
	}

	personal := &repository.Task{
		Title:    "Try the status toggle",
		Priority: types.PriorityLow,
		UserID:   worker.ID,
	}
	if err := repos.Task.Create(ctx, personal); err != nil {
		return err
	}

	assigned := &repository.Task{
		Title:       "Review the onboarding flow",
		Priority:    types.PriorityHigh,
		UserID:      assigner.ID,
		WorkspaceID: &workspace.ID,
		ProjectID:   &project.ID,
		AssignedTo:  &worker.ID,
		AssignedBy:  &assigner.ID,
	}
	if err := repos.Task.Create(ctx, assigned); err != nil {
		return err
	}
	subtask := &repository.Subtask{
		TaskID:      assigned.ID,
		Title:       "Collect feedback notes",
		WorkspaceID: &workspace.ID,
		ProjectID:   &project.ID,
	}
	if err := repos.Subtask.Create(ctx, subtask); err != nil {
		return err
	}

	log.Println("🌱 [seed] demo data created (password: password123)")
	return nil
}

func createUser(ctx context.Context, repos *repository.Repositories, email, first, last string) (*repository.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	hashed := string(hash)
	user := &repository.User{
		Email:     email,
		Password:  &hashed,
		FirstName: first,
		LastName:  last,
		Providers: []string{"credentials"},
	}
	if err := repos.User.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}
