package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"task_manager/internal/models"
)

type UserRepository struct {
	db      DBTX
	dialect Dialect
}

func NewUserRepository(db DBTX, dialect Dialect) *UserRepository {
	return &UserRepository{db: db, dialect: dialect}
}

// Ensure implementation of UserRepo interface at compile time.
var _ UserRepo = (*UserRepository)(nil)

const (
	userColumns = `id, username, first_name, last_name, email, password_hash, role, created_at, updated_at`

	insertUserSQL = `INSERT INTO users (username, first_name, last_name, email, password_hash, role, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?) RETURNING id`
	selectUserByUsernameSQL = `SELECT ` + userColumns + ` FROM users WHERE username = ?`
	selectUserByIDSQL       = `SELECT ` + userColumns + ` FROM users WHERE id = ?`
	listUsersSQL            = `SELECT ` + userColumns + ` FROM users ORDER BY id`
)

// Create inserts a new user and returns its ID. Zero timestamps are set to now.
func (r *UserRepository) Create(ctx context.Context, u *models.User) (int, error) {
	now := time.Now().UTC().Truncate(time.Second)
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	if u.UpdatedAt.IsZero() {
		u.UpdatedAt = u.CreatedAt
	}

	var id int
	err := r.db.QueryRowContext(ctx, r.dialect.Rebind(insertUserSQL),
		u.Username,
		u.FirstName,
		u.LastName,
		u.Email,
		u.PasswordHash,
		string(u.Role),
		u.CreatedAt,
		u.UpdatedAt,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert user %q: %w", u.Username, classify(err))
	}
	u.ID = id
	return id, nil
}

// GetByUsername fetches a user by username. Returns ErrNotFound if absent.
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx, r.dialect.Rebind(selectUserByUsernameSQL), username))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("select user %q: %w", username, err)
	}
	return u, nil
}

// GetByID fetches a user by primary key. Returns ErrNotFound if absent.
func (r *UserRepository) GetByID(ctx context.Context, id int) (*models.User, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx, r.dialect.Rebind(selectUserByIDSQL), id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("select user %d: %w", id, err)
	}
	return u, nil
}

func (r *UserRepository) List(ctx context.Context) ([]models.User, error) {
	rows, err := r.db.QueryContext(ctx, listUsersSQL)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	out := make([]models.User, 0, 16)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		out = append(out, *u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate users: %w", err)
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*models.User, error) {
	var (
		u    models.User
		role string
	)
	if err := row.Scan(
		&u.ID,
		&u.Username,
		&u.FirstName,
		&u.LastName,
		&u.Email,
		&u.PasswordHash,
		&role,
		&u.CreatedAt,
		&u.UpdatedAt,
	); err != nil {
		return nil, err
	}
	u.Role = models.Role(role)
	if !u.Role.Valid() {
		return nil, fmt.Errorf("user %d: unknown role %q", u.ID, role)
	}
	u.CreatedAt = u.CreatedAt.UTC()
	u.UpdatedAt = u.UpdatedAt.UTC()
	return &u, nil
}
