package db

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/taskhive/taskhive/internal/models"
)

type ScheduleRepository struct {
	db *sql.DB
}

func NewScheduleRepository(db *sql.DB) *ScheduleRepository {
	return &ScheduleRepository{db: db}
}

// CreateForTask inserts the task's calendar event. A task has at most one
// event; if one already exists the insert is a silent no-op.
func (r *ScheduleRepository) CreateForTask(ctx context.Context, event *models.ScheduleEvent) error {
	query := `INSERT INTO schedule_events (id, task_id, user_id, title, date, color, created_at, updated_at)
	 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	 ON CONFLICT (task_id) DO NOTHING`
	_, err := r.db.ExecContext(
		ctx, query, event.ID, event.TaskID, event.UserID, event.Title,
		event.Date, event.Color, event.CreatedAt, event.UpdatedAt)
	return err
}

const eventSelect = `SELECT e.id, e.task_id, e.user_id, e.title, e.date, e.color, e.created_at, e.updated_at,
 t.id, t.project_id, t.title, t.description, t.deadline, t.status,
 t.assigned_to, t.created_by, t.version, t.created_at, t.updated_at
 FROM schedule_events e
 JOIN tasks t ON t.id = e.task_id`

// GetByID returns the event with its task populated; the task's live title
// wins over the event's stored snapshot.
func (r *ScheduleRepository) GetByID(ctx context.Context, id string) (*models.ScheduleEvent, error) {
	query := eventSelect + ` WHERE e.id = $1`
	event, err := scanEvent(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return event, err
}

func (r *ScheduleRepository) ListForUser(ctx context.Context, userID string) ([]*models.ScheduleEvent, error) {
	query := eventSelect + ` WHERE e.user_id = $1 ORDER BY e.date`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []*models.ScheduleEvent
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return events, nil
}

func (r *ScheduleRepository) UpdateDate(ctx context.Context, id string, date, now time.Time) error {
	query := `UPDATE schedule_events SET date = $1, updated_at = $2 WHERE id = $3`
	res, err := r.db.ExecContext(ctx, query, date, now, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func scanEvent(row rowScanner) (*models.ScheduleEvent, error) {
	event := &models.ScheduleEvent{Task: &models.Task{}}
	task := event.Task
	var assignee sql.NullString
	err := row.Scan(
		&event.ID, &event.TaskID, &event.UserID, &event.Title, &event.Date,
		&event.Color, &event.CreatedAt, &event.UpdatedAt,
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
	// reads report the live task title, not the creation-time snapshot
	event.Title = task.Title
	return event, nil
}
