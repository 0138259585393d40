package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Dexter0900/TaskEngineX/internal/types"
)

type Project struct {
	ID          string
	Name        string
	Description *string
	WorkspaceID string
	CreatorID   string
	Status      types.ProjectStatus
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type ProjectMember struct {
	ProjectID string
	UserID    string
	Role      types.ProjectRole
	JoinedAt  time.Time
}

// ProjectMemberDetail is a member row joined with its user record.
type ProjectMemberDetail struct {
	ProjectMember
	User User
}

// ProjectMembership summarizes which project roles a user holds. A user may
// hold both at once since assigner and worker rows are stored separately.
type ProjectMembership struct {
	IsAssigner bool
	IsWorker   bool
}

func (m ProjectMembership) IsMember() bool {
	return m.IsAssigner || m.IsWorker
}

type ProjectRepository interface {
	Create(ctx context.Context, project *Project) error
	FindByID(ctx context.Context, id string) (*Project, error)
	FindByWorkspaceID(ctx context.Context, workspaceID string) ([]*Project, error)
	Update(ctx context.Context, project *Project) error
	Delete(ctx context.Context, id string) error
	UpsertMember(ctx context.Context, member *ProjectMember) error
	RemoveMember(ctx context.Context, projectID, userID string, role types.ProjectRole) error
	FindMembership(ctx context.Context, projectID, userID string) (ProjectMembership, error)
	FindMembers(ctx context.Context, projectID string) ([]*ProjectMemberDetail, error)
}

type pgProjectRepository struct {
	pool *pgxpool.Pool
}

func NewProjectRepository(pool *pgxpool.Pool) ProjectRepository {
	return &pgProjectRepository{pool: pool}
}

// Create inserts the project and enrolls the creator as its first assigner
// in a single transaction.
func (r *pgProjectRepository) Create(ctx context.Context, project *Project) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO projects (name, description, workspace_id, creator_id, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`
	if project.Status == "" {
		project.Status = types.ProjectActive
	}
	err = tx.QueryRow(ctx, query,
		project.Name, project.Description, project.WorkspaceID, project.CreatorID, project.Status,
	).Scan(&project.ID, &project.CreatedAt, &project.UpdatedAt)
	if err != nil {
		return err
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO project_members (project_id, user_id, role) VALUES ($1, $2, $3)`,
		project.ID, project.CreatorID, types.ProjectRoleAssigner,
	)
	if err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (r *pgProjectRepository) FindByID(ctx context.Context, id string) (*Project, error) {
	query := `
		SELECT id, name, description, workspace_id, creator_id, status, created_at, updated_at
		FROM projects WHERE id = $1
	`
	project := &Project{}
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&project.ID, &project.Name, &project.Description, &project.WorkspaceID,
		&project.CreatorID, &project.Status, &project.CreatedAt, &project.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return project, nil
}

func (r *pgProjectRepository) FindByWorkspaceID(ctx context.Context, workspaceID string) ([]*Project, error) {
	query := `
		SELECT id, name, description, workspace_id, creator_id, status, created_at, updated_at
		FROM projects
		WHERE workspace_id = $1
		ORDER BY created_at DESC
	`
	rows, err := r.pool.Query(ctx, query, workspaceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var projects []*Project
	for rows.Next() {
		project := &Project{}
		if err := rows.Scan(
			&project.ID, &project.Name, &project.Description, &project.WorkspaceID,
			&project.CreatorID, &project.Status, &project.CreatedAt, &project.UpdatedAt,
		); err != nil {
			return nil, err
		}
		projects = append(projects, project)
	}
	return projects, rows.Err()
}

func (r *pgProjectRepository) Update(ctx context.Context, project *Project) error {
	query := `
		UPDATE projects SET name = $2, description = $3, status = $4, updated_at = NOW()
		WHERE id = $1
	`
	_, err := r.pool.Exec(ctx, query, project.ID, project.Name, project.Description, project.Status)
	return err
}

func (r *pgProjectRepository) Delete(ctx context.Context, id string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM projects WHERE id = $1`, id)
	return err
}

// UpsertMember inserts the (project, user, role) row if absent. Re-adding an
// existing member with the same role is a no-op rather than an error; the
// original joined_at is returned either way.
func (r *pgProjectRepository) UpsertMember(ctx context.Context, member *ProjectMember) error {
	query := `
		INSERT INTO project_members (project_id, user_id, role)
		VALUES ($1, $2, $3)
		ON CONFLICT (project_id, user_id, role) DO UPDATE SET role = EXCLUDED.role
		RETURNING joined_at
	`
	return r.pool.QueryRow(ctx, query, member.ProjectID, member.UserID, member.Role).
		Scan(&member.JoinedAt)
}

func (r *pgProjectRepository) RemoveMember(ctx context.Context, projectID, userID string, role types.ProjectRole) error {
	_, err := r.pool.Exec(ctx,
		`DELETE FROM project_members WHERE project_id = $1 AND user_id = $2 AND role = $3`,
		projectID, userID, role,
	)
	return err
}

func (r *pgProjectRepository) FindMembership(ctx context.Context, projectID, userID string) (ProjectMembership, error) {
	query := `
		SELECT role FROM project_members
		WHERE project_id = $1 AND user_id = $2
	`
	rows, err := r.pool.Query(ctx, query, projectID, userID)
	if err != nil {
		return ProjectMembership{}, err
	}
	defer rows.Close()

	var membership ProjectMembership
	for rows.Next() {
		var role types.ProjectRole
		if err := rows.Scan(&role); err != nil {
			return ProjectMembership{}, err
		}
		switch role {
		case types.ProjectRoleAssigner:
			membership.IsAssigner = true
		case types.ProjectRoleWorker:
			membership.IsWorker = true
		}
	}
	return membership, rows.Err()
}

func (r *pgProjectRepository) FindMembers(ctx context.Context, projectID string) ([]*ProjectMemberDetail, error) {
	query := `
		SELECT pm.project_id, pm.user_id, pm.role, pm.joined_at,
		       u.id, u.email, u.first_name, u.last_name, u.avatar
		FROM project_members pm
		JOIN users u ON u.id = pm.user_id
		WHERE pm.project_id = $1
		ORDER BY pm.joined_at
	`
	rows, err := r.pool.Query(ctx, query, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var members []*ProjectMemberDetail
	for rows.Next() {
		m := &ProjectMemberDetail{}
		if err := rows.Scan(
			&m.ProjectID, &m.UserID, &m.Role, &m.JoinedAt,
			&m.User.ID, &m.User.Email, &m.User.FirstName, &m.User.LastName, &m.User.Avatar,
		); err != nil {
			return nil, err
		}
		members = append(members, m)
	}
	return members, rows.Err()
}
