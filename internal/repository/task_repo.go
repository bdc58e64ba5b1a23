package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"task_manager/internal/models"
)

type TaskRepository struct {
	db      DBTX
	dialect Dialect
}

func NewTaskRepository(db DBTX, dialect Dialect) *TaskRepository {
	return &TaskRepository{db: db, dialect: dialect}
}

var _ TaskRepo = (*TaskRepository)(nil)

const (
	// tasks joined with their owner
	selectTaskWithOwnerSQL = `
		SELECT t.id, t.title, t.description, t.status, t.user_id, t.created_at, t.updated_at,
		       u.id, u.username, u.first_name, u.last_name, u.email, u.role, u.created_at, u.updated_at
		FROM tasks t
		JOIN users u ON u.id = t.user_id`

	selectTaskByIDSQL   = selectTaskWithOwnerSQL + ` WHERE t.id = ?`
	listTasksSQL        = selectTaskWithOwnerSQL + ` ORDER BY t.id`
	listTasksByOwnerSQL = selectTaskWithOwnerSQL + ` WHERE t.user_id = ? ORDER BY t.id`

	insertTaskSQL = `INSERT INTO tasks (title, description, status, user_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?) RETURNING id`
	updateTaskSQL = `UPDATE tasks SET title = ?, description = ?, status = ?, user_id = ?, updated_at = ? WHERE id = ?`
	deleteTaskSQL = `DELETE FROM tasks WHERE id = ?`
)

// Create inserts t and sets its ID and timestamps.
// An unknown owner or invalid status surfaces as ErrConstraint.
func (r *TaskRepository) Create(ctx context.Context, t *models.Task) (int, error) {
	now := time.Now().UTC().Truncate(time.Second)
	t.CreatedAt = now
	t.UpdatedAt = now

	var id int
	err := r.db.QueryRowContext(ctx, r.dialect.Rebind(insertTaskSQL),
		t.Title,
		t.Description,
		string(t.Status),
		t.UserID,
		t.CreatedAt,
		t.UpdatedAt,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert task %q: %w", t.Title, classify(err))
	}
	t.ID = id
	return id, nil
}

// GetByID returns the task with its owner embedded, or ErrNotFound.
func (r *TaskRepository) GetByID(ctx context.Context, id int) (*models.Task, error) {
	t, err := scanTask(r.db.QueryRowContext(ctx, r.dialect.Rebind(selectTaskByIDSQL), id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("select task %d: %w", id, err)
	}
	return t, nil
}

func (r *TaskRepository) List(ctx context.Context, ownerID *int) ([]models.Task, error) {
	var (
		rows *sql.Rows
		err  error
	)
	if ownerID == nil {
		rows, err = r.db.QueryContext(ctx, listTasksSQL)
	} else {
		rows, err = r.db.QueryContext(ctx, r.dialect.Rebind(listTasksByOwnerSQL), *ownerID)
	}
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	out := make([]models.Task, 0, 32)
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		out = append(out, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tasks: %w", err)
	}
	return out, nil
}

// Update writes every mutable column of t (last write wins).
func (r *TaskRepository) Update(ctx context.Context, t *models.Task) error {
	t.UpdatedAt = time.Now().UTC().Truncate(time.Second)

	res, err := r.db.ExecContext(ctx, r.dialect.Rebind(updateTaskSQL),
		t.Title,
		t.Description,
		string(t.Status),
		t.UserID,
		t.UpdatedAt,
		t.ID,
	)
	if err != nil {
		return fmt.Errorf("update task %d: %w", t.ID, classify(err))
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update task %d rows affected: %w", t.ID, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *TaskRepository) Delete(ctx context.Context, id int) error {
	res, err := r.db.ExecContext(ctx, r.dialect.Rebind(deleteTaskSQL), id)
	if err != nil {
		return fmt.Errorf("delete task %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete task %d rows affected: %w", id, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func scanTask(row rowScanner) (*models.Task, error) {
	var (
		t         models.Task
		owner     models.User
		status    string
		ownerRole string
	)
	if err := row.Scan(
		&t.ID,
		&t.Title,
		&t.Description,
		&status,
		&t.UserID,
		&t.CreatedAt,
		&t.UpdatedAt,
		&owner.ID,
		&owner.Username,
		&owner.FirstName,
		&owner.LastName,
		&owner.Email,
		&ownerRole,
		&owner.CreatedAt,
		&owner.UpdatedAt,
	); err != nil {
		return nil, err
	}
	t.Status = models.Status(status)
	if !t.Status.Valid() {
		return nil, fmt.Errorf("task %d: unknown status %q", t.ID, status)
	}
	t.CreatedAt = t.CreatedAt.UTC()
	t.UpdatedAt = t.UpdatedAt.UTC()

	owner.Role = models.Role(ownerRole)
	if !owner.Role.Valid() {
		return nil, fmt.Errorf("user %d: unknown role %q", owner.ID, ownerRole)
	}
	owner.CreatedAt = owner.CreatedAt.UTC()
	owner.UpdatedAt = owner.UpdatedAt.UTC()
	t.User = &owner
	return &t, nil
}
