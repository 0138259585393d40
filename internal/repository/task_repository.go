package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Dexter0900/TaskEngineX/internal/types"
)

type Task struct {
	ID             string
	Title          string
	Description    *string
	Status         types.TaskStatus
	Priority       types.Priority
	DueDate        *time.Time
	Tags           []string
	UserID         string
	WorkspaceID    *string
	ProjectID      *string
	AssignedTo     *string
	AssignedBy     *string
	ApprovalStatus types.ApprovalStatus
	CompletedAt    *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// IsWorkspaceTask reports whether the task lives in a workspace rather than
// in its creator's personal list.
func (t *Task) IsWorkspaceTask() bool {
	return t.WorkspaceID != nil
}

// TaskFilter narrows list queries. Zero values mean "no constraint".
type TaskFilter struct {
	Status   types.TaskStatus
	Priority types.Priority
	Search   string
}

// TaskScope restricts a workspace listing to the tasks the caller may see.
// The zero scope matches every task in the workspace (the admin view).
type TaskScope struct {
	// AssignedTo limits results to tasks assigned to this user.
	AssignedTo string
	// ActorID limits results to tasks this user assigned or created.
	ActorID string
}

type TaskStats struct {
	Total           int `json:"total"`
	Pending         int `json:"pending"`
	InProgress      int `json:"inProgress"`
	Completed       int `json:"completed"`
	PendingApproval int `json:"pendingApproval"`
	Approved        int `json:"approved"`
	Rejected        int `json:"rejected"`
	HighPriority    int `json:"highPriority"`
	Overdue         int `json:"overdue"`
}

type TaskRepository interface {
	Create(ctx context.Context, task *Task) error
	FindByID(ctx context.Context, id string) (*Task, error)
	Update(ctx context.Context, task *Task) error
	Delete(ctx context.Context, id string) error
	FindPersonal(ctx context.Context, userID string, filter TaskFilter) ([]*Task, error)
	FindByWorkspace(ctx context.Context, workspaceID string, scope TaskScope, filter TaskFilter) ([]*Task, error)
	FindByProject(ctx context.Context, projectID string) ([]*Task, error)
	UpdateStatus(ctx context.Context, id string, status types.TaskStatus) error
	MarkComplete(ctx context.Context, id string) (bool, error)
	ResolveApproval(ctx context.Context, id string, approved bool) (bool, error)
	PersonalStats(ctx context.Context, userID string) (*TaskStats, error)
	WorkspaceStats(ctx context.Context, workspaceID string, scope TaskScope) (*TaskStats, error)
	FindDueSoon(ctx context.Context, within time.Duration) ([]*Task, error)
}

type pgTaskRepository struct {
	pool *pgxpool.Pool
}

func NewTaskRepository(pool *pgxpool.Pool) TaskRepository {
	return &pgTaskRepository{pool: pool}
}

const taskColumns = `
	id, title, description, status, priority, due_date, tags,
	user_id, workspace_id, project_id, assigned_to, assigned_by,
	approval_status, completed_at, created_at, updated_at
`

func scanTask(row pgx.Row) (*Task, error) {
	task := &Task{}
	var approval *string
	err := row.Scan(
		&task.ID, &task.Title, &task.Description, &task.Status, &task.Priority,
		&task.DueDate, &task.Tags, &task.UserID, &task.WorkspaceID, &task.ProjectID,
		&task.AssignedTo, &task.AssignedBy, &approval, &task.CompletedAt,
		&task.CreatedAt, &task.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if approval != nil {
		task.ApprovalStatus = types.ApprovalStatus(*approval)
	}
	return task, nil
}

func collectTasks(rows pgx.Rows) ([]*Task, error) {
	defer rows.Close()
	var tasks []*Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}
	return tasks, rows.Err()
}

// nullableApproval maps the in-memory zero approval state to SQL NULL.
func nullableApproval(s types.ApprovalStatus) *string {
	if s == types.ApprovalNone {
		return nil
	}
	v := string(s)
	return &v
}

func (r *pgTaskRepository) Create(ctx context.Context, task *Task) error {
	query := `
		INSERT INTO tasks (title, description, status, priority, due_date, tags,
			user_id, workspace_id, project_id, assigned_to, assigned_by, approval_status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id, created_at, updated_at
	`
	if task.Status == "" {
		task.Status = types.StatusPending
	}
	if task.Priority == "" {
		task.Priority = types.PriorityMedium
	}
	if task.Tags == nil {
		task.Tags = []string{}
	}
	return r.pool.QueryRow(ctx, query,
		task.Title, task.Description, task.Status, task.Priority, task.DueDate, task.Tags,
		task.UserID, task.WorkspaceID, task.ProjectID, task.AssignedTo, task.AssignedBy,
		nullableApproval(task.ApprovalStatus),
	).Scan(&task.ID, &task.CreatedAt, &task.UpdatedAt)
}

func (r *pgTaskRepository) FindByID(ctx context.Context, id string) (*Task, error) {
	task, err := scanTask(r.pool.QueryRow(ctx, `SELECT`+taskColumns+`FROM tasks WHERE id = $1`, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return task, nil
}

func (r *pgTaskRepository) Update(ctx context.Context, task *Task) error {
	query := `
		UPDATE tasks
		SET title = $2, description = $3, status = $4, priority = $5, due_date = $6,
		    tags = $7, assigned_to = $8, approval_status = $9, completed_at = $10,
		    updated_at = NOW()
		WHERE id = $1
	`
	_, err := r.pool.Exec(ctx, query,
		task.ID, task.Title, task.Description, task.Status, task.Priority, task.DueDate,
		task.Tags, task.AssignedTo, nullableApproval(task.ApprovalStatus), task.CompletedAt,
	)
	return err
}

// Delete removes the task and its subtasks atomically. The schema also
// cascades on the foreign key, so the explicit subtask delete keeps the two
// removals in one transaction even if the constraint is ever relaxed.
func (r *pgTaskRepository) Delete(ctx context.Context, id string) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM subtasks WHERE task_id = $1`, id); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `DELETE FROM tasks WHERE id = $1`, id); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *pgTaskRepository) FindPersonal(ctx context.Context, userID string, filter TaskFilter) ([]*Task, error) {
	query := `SELECT` + taskColumns + `
		FROM tasks
		WHERE user_id = $1 AND workspace_id IS NULL
		  AND ($2 = '' OR status = $2)
		  AND ($3 = '' OR priority = $3)
		  AND ($4 = '' OR title ILIKE '%' || $4 || '%' OR description ILIKE '%' || $4 || '%')
		ORDER BY created_at DESC
	`
	rows, err := r.pool.Query(ctx, query, userID, string(filter.Status), string(filter.Priority), filter.Search)
	if err != nil {
		return nil, err
	}
	return collectTasks(rows)
}

func (r *pgTaskRepository) FindByWorkspace(ctx context.Context, workspaceID string, scope TaskScope, filter TaskFilter) ([]*Task, error) {
	query := `SELECT` + taskColumns + `
		FROM tasks
		WHERE workspace_id = $1
		  AND ($2 = '' OR assigned_to = $2::uuid)
		  AND ($3 = '' OR assigned_by = $3::uuid OR user_id = $3::uuid)
		  AND ($4 = '' OR status = $4)
		  AND ($5 = '' OR priority = $5)
		  AND ($6 = '' OR title ILIKE '%' || $6 || '%' OR description ILIKE '%' || $6 || '%')
		ORDER BY created_at DESC
	`
	rows, err := r.pool.Query(ctx, query, workspaceID,
		scope.AssignedTo, scope.ActorID,
		string(filter.Status), string(filter.Priority), filter.Search,
	)
	if err != nil {
		return nil, err
	}
	return collectTasks(rows)
}

func (r *pgTaskRepository) FindByProject(ctx context.Context, projectID string) ([]*Task, error) {
	query := `SELECT` + taskColumns + `
		FROM tasks WHERE project_id = $1 ORDER BY created_at DESC
	`
	rows, err := r.pool.Query(ctx, query, projectID)
	if err != nil {
		return nil, err
	}
	return collectTasks(rows)
}

func (r *pgTaskRepository) UpdateStatus(ctx context.Context, id string, status types.TaskStatus) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE tasks SET status = $2, updated_at = NOW() WHERE id = $1`,
		id, status,
	)
	return err
}

// MarkComplete moves an open workspace task to completed and queues it for
// approval. The guard on the current status makes concurrent completions
// first-writer-wins; it returns false when the task was already completed.
func (r *pgTaskRepository) MarkComplete(ctx context.Context, id string) (bool, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE tasks
		SET status = 'completed', approval_status = 'pending-approval',
		    completed_at = NOW(), updated_at = NOW()
		WHERE id = $1 AND status IN ('pending', 'in-progress')
	`, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// ResolveApproval settles a pending approval. It returns false when the task
// is not awaiting approval, which also closes the race between two reviewers
// deciding the same task.
func (r *pgTaskRepository) ResolveApproval(ctx context.Context, id string, approved bool) (bool, error) {
	var tag pgconn.CommandTag
	var err error
	if approved {
		tag, err = r.pool.Exec(ctx, `
			UPDATE tasks SET approval_status = 'approved', updated_at = NOW()
			WHERE id = $1 AND approval_status = 'pending-approval'
		`, id)
	} else {
		tag, err = r.pool.Exec(ctx, `
			UPDATE tasks
			SET approval_status = 'rejected', status = 'pending',
			    completed_at = NULL, updated_at = NOW()
			WHERE id = $1 AND approval_status = 'pending-approval'
		`, id)
	}
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

const statsColumns = `
	COUNT(*),
	COUNT(*) FILTER (WHERE status = 'pending'),
	COUNT(*) FILTER (WHERE status = 'in-progress'),
	COUNT(*) FILTER (WHERE status = 'completed'),
	COUNT(*) FILTER (WHERE approval_status = 'pending-approval'),
	COUNT(*) FILTER (WHERE approval_status = 'approved'),
	COUNT(*) FILTER (WHERE approval_status = 'rejected'),
	COUNT(*) FILTER (WHERE priority = 'high'),
	COUNT(*) FILTER (WHERE due_date < NOW() AND status != 'completed')
`

func scanStats(row pgx.Row) (*TaskStats, error) {
	stats := &TaskStats{}
	err := row.Scan(
		&stats.Total, &stats.Pending, &stats.InProgress, &stats.Completed,
		&stats.PendingApproval, &stats.Approved, &stats.Rejected,
		&stats.HighPriority, &stats.Overdue,
	)
	if err != nil {
		return nil, err
	}
	return stats, nil
}

func (r *pgTaskRepository) PersonalStats(ctx context.Context, userID string) (*TaskStats, error) {
	query := `SELECT` + statsColumns + `FROM tasks WHERE user_id = $1 AND workspace_id IS NULL`
	return scanStats(r.pool.QueryRow(ctx, query, userID))
}

func (r *pgTaskRepository) WorkspaceStats(ctx context.Context, workspaceID string, scope TaskScope) (*TaskStats, error) {
	query := `SELECT` + statsColumns + `
		FROM tasks
		WHERE workspace_id = $1
		  AND ($2 = '' OR assigned_to = $2::uuid)
		  AND ($3 = '' OR assigned_by = $3::uuid OR user_id = $3::uuid)
	`
	return scanStats(r.pool.QueryRow(ctx, query, workspaceID, scope.AssignedTo, scope.ActorID))
}

// FindDueSoon returns open tasks whose due date falls within the window,
// for reminder delivery.
func (r *pgTaskRepository) FindDueSoon(ctx context.Context, within time.Duration) ([]*Task, error) {
	query := `SELECT` + taskColumns + `
		FROM tasks
		WHERE due_date IS NOT NULL
		  AND due_date BETWEEN NOW() AND NOW() + $1
		  AND status != 'completed'
		ORDER BY due_date
	`
	rows, err := r.pool.Query(ctx, query, within)
	if err != nil {
		return nil, err
	}
	return collectTasks(rows)
}
