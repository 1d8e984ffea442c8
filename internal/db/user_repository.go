package db

import (
	"context"
	"database/sql"
	"errors"

	"github.com/taskhive/taskhive/internal/models"
)

type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = `id, username, email, COALESCE(password_hash, ''), register_type,
 title, avatar, banner, work_start, created_at, updated_at`

func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	query := `INSERT INTO users
	 (id, username, email, password_hash, register_type, title, avatar, banner, work_start, created_at, updated_at)
	 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	var hash any
	if user.PasswordHash != "" {
		hash = user.PasswordHash
	}
	_, err := r.db.ExecContext(
		ctx, query, user.ID, user.Username, user.Email, hash, user.RegisterType,
		user.Title, user.Avatar, user.Banner, user.WorkStart, user.CreatedAt, user.UpdatedAt)
	return err
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return r.scanOne(r.db.QueryRowContext(ctx, query, id))
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return r.scanOne(r.db.QueryRowContext(ctx, query, email))
}

func (r *UserRepository) scanOne(row *sql.Row) (*models.User, error) {
	user := &models.User{}
	err := row.Scan(
		&user.ID, &user.Username, &user.Email, &user.PasswordHash, &user.RegisterType,
		&user.Title, &user.Avatar, &user.Banner, &user.WorkStart, &user.CreatedAt, &user.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}
