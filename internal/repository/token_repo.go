package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"task_manager/internal/models"
)

type TokenRepository struct {
	db      DBTX
	dialect Dialect
}

func NewTokenRepository(db DBTX, dialect Dialect) *TokenRepository {
	return &TokenRepository{db: db, dialect: dialect}
}

var _ TokenRepo = (*TokenRepository)(nil)

const (
	insertTokenSQL         = `INSERT INTO auth_tokens (id, user_id, name, created_at, expires_at) VALUES (?, ?, ?, ?, ?)`
	selectTokenSQL         = `SELECT id, user_id, name, created_at, expires_at FROM auth_tokens WHERE id = ?`
	deleteTokenSQL         = `DELETE FROM auth_tokens WHERE id = ?`
	deleteExpiredTokensSQL = `DELETE FROM auth_tokens WHERE expires_at <= ?`
)

// sqlite stores timestamps as text; whole seconds in UTC keep them comparable.
func storageTime(t time.Time) time.Time {
	return t.UTC().Truncate(time.Second)
}

// Create stores the server-side half of an issued token.
func (r *TokenRepository) Create(ctx context.Context, t models.AuthToken) error {
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now()
	}
	_, err := r.db.ExecContext(ctx, r.dialect.Rebind(insertTokenSQL),
		t.ID,
		t.UserID,
		t.Name,
		storageTime(t.CreatedAt),
		storageTime(t.ExpiresAt),
	)
	if err != nil {
		return fmt.Errorf("insert token for user %d: %w", t.UserID, classify(err))
	}
	return nil
}

// Find returns the token row by id, or ErrNotFound once it has been revoked.
func (r *TokenRepository) Find(ctx context.Context, id string) (*models.AuthToken, error) {
	var t models.AuthToken
	err := r.db.QueryRowContext(ctx, r.dialect.Rebind(selectTokenSQL), id).
		Scan(&t.ID, &t.UserID, &t.Name, &t.CreatedAt, &t.ExpiresAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("select token: %w", err)
	}
	t.CreatedAt = t.CreatedAt.UTC()
	t.ExpiresAt = t.ExpiresAt.UTC()
	return &t, nil
}

// Delete revokes exactly one token. Returns ErrNotFound if it was already gone.
func (r *TokenRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, r.dialect.Rebind(deleteTokenSQL), id)
	if err != nil {
		return fmt.Errorf("delete token: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete token rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteExpired purges tokens whose expiry is at or before now.
func (r *TokenRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, r.dialect.Rebind(deleteExpiredTokensSQL), storageTime(now))
	if err != nil {
		return 0, fmt.Errorf("delete expired tokens: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete expired tokens rows affected: %w", err)
	}
	return n, nil
}
