package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Subtask struct {
	ID          string
	TaskID      string
	Title       string
	Completed   bool
	WorkspaceID *string
	ProjectID   *string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type SubtaskRepository interface {
	Create(ctx context.Context, subtask *Subtask) error
	FindByID(ctx context.Context, id string) (*Subtask, error)
	FindByTaskID(ctx context.Context, taskID string) ([]*Subtask, error)
	Update(ctx context.Context, subtask *Subtask) error
	Toggle(ctx context.Context, id string) (*Subtask, error)
	Delete(ctx context.Context, id string) error
	DeleteOrphans(ctx context.Context) (int64, error)
}

type pgSubtaskRepository struct {
	pool *pgxpool.Pool
}

func NewSubtaskRepository(pool *pgxpool.Pool) SubtaskRepository {
	return &pgSubtaskRepository{pool: pool}
}

func (r *pgSubtaskRepository) Create(ctx context.Context, subtask *Subtask) error {
	query := `
		INSERT INTO subtasks (task_id, title, workspace_id, project_id)
		VALUES ($1, $2, $3, $4)
		RETURNING id, completed, created_at, updated_at
	`
	return r.pool.QueryRow(ctx, query,
		subtask.TaskID, subtask.Title, subtask.WorkspaceID, subtask.ProjectID,
	).Scan(&subtask.ID, &subtask.Completed, &subtask.CreatedAt, &subtask.UpdatedAt)
}

func (r *pgSubtaskRepository) FindByID(ctx context.Context, id string) (*Subtask, error) {
	query := `
		SELECT id, task_id, title, completed, workspace_id, project_id, created_at, updated_at
		FROM subtasks WHERE id = $1
	`
	subtask := &Subtask{}
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&subtask.ID, &subtask.TaskID, &subtask.Title, &subtask.Completed,
		&subtask.WorkspaceID, &subtask.ProjectID, &subtask.CreatedAt, &subtask.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return subtask, nil
}

func (r *pgSubtaskRepository) FindByTaskID(ctx context.Context, taskID string) ([]*Subtask, error) {
	query := `
		SELECT id, task_id, title, completed, workspace_id, project_id, created_at, updated_at
		FROM subtasks WHERE task_id = $1 ORDER BY created_at
	`
	rows, err := r.pool.Query(ctx, query, taskID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var subtasks []*Subtask
	for rows.Next() {
		subtask := &Subtask{}
		if err := rows.Scan(
			&subtask.ID, &subtask.TaskID, &subtask.Title, &subtask.Completed,
			&subtask.WorkspaceID, &subtask.ProjectID, &subtask.CreatedAt, &subtask.UpdatedAt,
		); err != nil {
			return nil, err
		}
		subtasks = append(subtasks, subtask)
	}
	return subtasks, rows.Err()
}

func (r *pgSubtaskRepository) Update(ctx context.Context, subtask *Subtask) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE subtasks SET title = $2, updated_at = NOW() WHERE id = $1`,
		subtask.ID, subtask.Title,
	)
	return err
}

// Toggle flips the completion flag and returns the stored row.
func (r *pgSubtaskRepository) Toggle(ctx context.Context, id string) (*Subtask, error) {
	query := `
		UPDATE subtasks SET completed = NOT completed, updated_at = NOW()
		WHERE id = $1
		RETURNING id, task_id, title, completed, workspace_id, project_id, created_at, updated_at
	`
	subtask := &Subtask{}
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&subtask.ID, &subtask.TaskID, &subtask.Title, &subtask.Completed,
		&subtask.WorkspaceID, &subtask.ProjectID, &subtask.CreatedAt, &subtask.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return subtask, nil
}

func (r *pgSubtaskRepository) Delete(ctx context.Context, id string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM subtasks WHERE id = $1`, id)
	return err
}

// DeleteOrphans removes subtasks whose parent task no longer exists. The
// foreign key should prevent these, so a nonzero count indicates drift.
func (r *pgSubtaskRepository) DeleteOrphans(ctx context.Context) (int64, error) {
	tag, err := r.pool.Exec(ctx, `
		DELETE FROM subtasks s
		WHERE NOT EXISTS (SELECT 1 FROM tasks t WHERE t.id = s.task_id)
	`)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
