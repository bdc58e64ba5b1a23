package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"task_manager/internal/models"
)

// DBTX is satisfied by both *sql.DB and *sql.Tx, so every repository can run
// inside or outside a transaction.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type UserRepo interface {
	Create(ctx context.Context, u *models.User) (int, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByID(ctx context.Context, id int) (*models.User, error)
	List(ctx context.Context) ([]models.User, error)
}

type TokenRepo interface {
	Create(ctx context.Context, t models.AuthToken) error
	Find(ctx context.Context, id string) (*models.AuthToken, error)
	Delete(ctx context.Context, id string) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

type TaskRepo interface {
	Create(ctx context.Context, t *models.Task) (int, error)
	GetByID(ctx context.Context, id int) (*models.Task, error)
	// List returns every task when ownerID is nil, otherwise only that owner's.
	List(ctx context.Context, ownerID *int) ([]models.Task, error)
	Update(ctx context.Context, t *models.Task) error
	Delete(ctx context.Context, id int) error
}

type Repository struct {
	Users  UserRepo
	Tokens TokenRepo
	Tasks  TaskRepo

	db      *sql.DB
	dialect Dialect
}

func NewRepository(db *sql.DB, dialect Dialect) *Repository {
	r := bind(db, dialect)
	r.db = db
	return r
}

func bind(conn DBTX, dialect Dialect) *Repository {
	return &Repository{
		Users:   NewUserRepository(conn, dialect),
		Tokens:  NewTokenRepository(conn, dialect),
		Tasks:   NewTaskRepository(conn, dialect),
		dialect: dialect,
	}
}

// WithinTx runs fn with repositories bound to a single transaction. The
// transaction commits when fn returns nil and rolls back otherwise. Called on
// a repository that is already transactional, fn simply joins it.
func (r *Repository) WithinTx(ctx context.Context, fn func(tx *Repository) error) error {
	if r.db == nil {
		return fn(r)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback() // no-op after commit
	}()

	if err := fn(bind(tx, r.dialect)); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
