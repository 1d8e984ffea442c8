package db

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/taskhive/taskhive/internal/models"
)

type ProjectRepository struct {
	db *sql.DB
}

func NewProjectRepository(db *sql.DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

// Create inserts the project and registers the owner as its first member.
func (r *ProjectRepository) Create(ctx context.Context, project *models.Project) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := `INSERT INTO projects (id, name, description, status, owner_id, created_at, updated_at)
	 VALUES ($1, $2, $3, $4, $5, $6, $7)`
	if _, err := tx.ExecContext(
		ctx, query, project.ID, project.Name, project.Description, project.Status,
		project.OwnerID, project.CreatedAt, project.UpdatedAt); err != nil {
		return err
	}

	query = `INSERT INTO project_members (project_id, user_id, added_at) VALUES ($1, $2, $3)`
	if _, err := tx.ExecContext(ctx, query, project.ID, project.OwnerID, project.CreatedAt); err != nil {
		return err
	}
	return tx.Commit()
}

func (r *ProjectRepository) GetByID(ctx context.Context, id string) (*models.Project, error) {
	query := `SELECT id, name, description, status, owner_id, created_at, updated_at
	 FROM projects WHERE id = $1`
	project := &models.Project{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&project.ID, &project.Name, &project.Description, &project.Status,
		&project.OwnerID, &project.CreatedAt, &project.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return project, nil
}

// ListForUser returns every project the user belongs to, newest first.
func (r *ProjectRepository) ListForUser(ctx context.Context, userID string) ([]*models.Project, error) {
	query := `SELECT p.id, p.name, p.description, p.status, p.owner_id, p.created_at, p.updated_at
	 FROM projects p
	 JOIN project_members m ON m.project_id = p.id
	 WHERE m.user_id = $1
	 ORDER BY p.created_at DESC`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var projects []*models.Project
	for rows.Next() {
		project := &models.Project{}
		if err := rows.Scan(
			&project.ID, &project.Name, &project.Description, &project.Status,
			&project.OwnerID, &project.CreatedAt, &project.UpdatedAt,
		); err != nil {
			return nil, err
		}
		projects = append(projects, project)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return projects, nil
}

// AddMember is idempotent: adding an existing member is a no-op.
func (r *ProjectRepository) AddMember(ctx context.Context, projectID, userID string, addedAt time.Time) error {
	query := `INSERT INTO project_members (project_id, user_id, added_at) VALUES ($1, $2, $3)
	 ON CONFLICT (project_id, user_id) DO NOTHING`
	_, err := r.db.ExecContext(ctx, query, projectID, userID, addedAt)
	return err
}

func (r *ProjectRepository) IsMember(ctx context.Context, projectID, userID string) (bool, error) {
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM project_members WHERE project_id = $1 AND user_id = $2)`
	err := r.db.QueryRowContext(ctx, query, projectID, userID).Scan(&exists)
	return exists, err
}

func (r *ProjectRepository) ListMembers(ctx context.Context, projectID string) ([]*models.User, error) {
	query := `SELECT u.id, u.username, u.email, u.register_type, u.title, u.avatar, u.banner,
	 u.work_start, u.created_at, u.updated_at
	 FROM users u
	 JOIN project_members m ON m.user_id = u.id
	 WHERE m.project_id = $1
	 ORDER BY m.added_at`
	rows, err := r.db.QueryContext(ctx, query, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		user := &models.User{}
		if err := rows.Scan(
			&user.ID, &user.Username, &user.Email, &user.RegisterType, &user.Title,
			&user.Avatar, &user.Banner, &user.WorkStart, &user.CreatedAt, &user.UpdatedAt,
		); err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return users, nil
}
