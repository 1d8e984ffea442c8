package db

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/taskhive/taskhive/internal/models"
)

type TaskRepository struct {
	db *sql.DB
}

func NewTaskRepository(db *sql.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

const taskColumns = `id, project_id, title, description, deadline, status,
 assigned_to, created_by, version, created_at, updated_at`

func (r *TaskRepository) Create(ctx context.Context, task *models.Task) error {
	query := `INSERT INTO tasks
	 (id, project_id, title, description, deadline, status, assigned_to, created_by, version, created_at, updated_at)
	 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	var assignee any
	if task.AssignedTo != nil {
		assignee = task.AssignedTo.String()
	}
	_, err := r.db.ExecContext(
		ctx, query, task.ID, task.ProjectID, task.Title, task.Description, task.Deadline,
		task.Status, assignee, task.CreatedBy, task.Version, task.CreatedAt, task.UpdatedAt)
	return err
}

func (r *TaskRepository) GetByID(ctx context.Context, id string) (*models.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = $1`
	task, err := scanTask(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return task, err
}

func (r *TaskRepository) ListByProject(ctx context.Context, projectID string) ([]*models.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE project_id = $1 ORDER BY created_at`
	return r.list(ctx, query, projectID)
}

// ListUnassignedForUser returns the bounty board: unassigned tasks across
// every project the user belongs to.
func (r *TaskRepository) ListUnassignedForUser(ctx context.Context, userID string) ([]*models.Task, error) {
	query := `SELECT t.id, t.project_id, t.title, t.description, t.deadline, t.status,
	 t.assigned_to, t.created_by, t.version, t.created_at, t.updated_at
	 FROM tasks t
	 JOIN project_members m ON m.project_id = t.project_id
	 WHERE m.user_id = $1 AND t.assigned_to IS NULL
	 ORDER BY t.deadline`
	return r.list(ctx, query, userID)
}

// UpdateStatus moves a task to the target board column. Moving to the current
// status is a no-op that returns the task unchanged, without touching version
// or updated_at. When expectedVersion is set, a mismatch with the stored
// version is a conflict.
func (r *TaskRepository) UpdateStatus(
	ctx context.Context, id string, status models.TaskStatus, expectedVersion *int64, now time.Time,
) (*models.Task, error) {
	task, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if expectedVersion != nil && *expectedVersion != task.Version {
		return nil, ErrVersionConflict
	}
	if task.Status == status {
		return task, nil
	}

	query := `UPDATE tasks SET status = $1, version = version + 1, updated_at = $2
	 WHERE id = $3 AND version = $4`
	res, err := r.db.ExecContext(ctx, query, status, now, id, task.Version)
	if err != nil {
		return nil, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		// a concurrent writer bumped the version between read and write
		return nil, ErrVersionConflict
	}
	return r.GetByID(ctx, id)
}

// ClaimBounty assigns an unassigned task to the user as a single conditional
// update, so two concurrent claimants can never both succeed.
func (r *TaskRepository) ClaimBounty(ctx context.Context, taskID, userID string, now time.Time) (*models.Task, error) {
	query := `UPDATE tasks SET assigned_to = $1, version = version + 1, updated_at = $2
	 WHERE id = $3 AND assigned_to IS NULL`
	res, err := r.db.ExecContext(ctx, query, userID, now, taskID)
	if err != nil {
		return nil, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, ErrAlreadyClaimed
	}
	return r.GetByID(ctx, taskID)
}

// CountByStatusForUser returns how many of the user's assigned tasks sit in
// each board column. Absent statuses are reported as zero.
func (r *TaskRepository) CountByStatusForUser(ctx context.Context, userID string) (map[models.TaskStatus]int, error) {
	counts := make(map[models.TaskStatus]int, len(models.TaskStatuses))
	for _, s := range models.TaskStatuses {
		counts[s] = 0
	}

	query := `SELECT status, COUNT(*) FROM tasks WHERE assigned_to = $1 GROUP BY status`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var status models.TaskStatus
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		counts[status] = n
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return counts, nil
}

func (r *TaskRepository) list(ctx context.Context, query string, args ...any) ([]*models.Task, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []*models.Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return tasks, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (*models.Task, error) {
	task := &models.Task{}
	var assignee sql.NullString
	err := row.Scan(
		&task.ID, &task.ProjectID, &task.Title, &task.Description, &task.Deadline,
		&task.Status, &assignee, &task.CreatedBy, &task.Version, &task.CreatedAt, &task.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if assignee.Valid {
		id, err := uuid.Parse(assignee.String)
		if err != nil {
			return nil, err
		}
		task.AssignedTo = &id
	}
	return task, nil
}
