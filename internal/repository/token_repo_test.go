package repository

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"regexp"
	"testing"
	"time"

	"task_manager/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
)

type argFunc func(v driver.Value) bool

func (f argFunc) Match(v driver.Value) bool { return f(v) }

// wholeSecondUTC matches time arguments normalized for storage.
var wholeSecondUTC = argFunc(func(v driver.Value) bool {
	tm, ok := v.(time.Time)
	return ok && tm.Location() == time.UTC && tm.Nanosecond() == 0
})

func TestTokenRepository_Create(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()

	expires := time.Date(2025, 1, 2, 3, 4, 5, 999, time.FixedZone("X", 3600))
	mock.ExpectExec(regexp.QuoteMeta(insertTokenSQL)).
		WithArgs("jti-1", 7, "auth_token", wholeSecondUTC, wholeSecondUTC).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := NewTokenRepository(db, DialectSQLite).Create(context.Background(), models.AuthToken{
		ID:        "jti-1",
		UserID:    7,
		Name:      "auth_token",
		ExpiresAt: expires,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
}

func TestTokenRepository_Create_DBError(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()

	mock.ExpectExec(regexp.QuoteMeta(insertTokenSQL)).WillReturnError(errors.New("db down"))

	err := NewTokenRepository(db, DialectSQLite).Create(context.Background(), models.AuthToken{ID: "x", UserID: 1})
	if err == nil {
		t.Fatalf("expected error")
	}
}

func TestTokenRepository_Find(t *testing.T) {
	created := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		name    string
		expect  func(sqlmock.Sqlmock)
		wantErr error
	}{
		{
			name: "found",
			expect: func(m sqlmock.Sqlmock) {
				m.ExpectQuery(regexp.QuoteMeta(selectTokenSQL)).
					WithArgs("jti-1").
					WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "name", "created_at", "expires_at"}).
						AddRow("jti-1", 7, "auth_token", created, created.Add(time.Hour)))
			},
		},
		{
			name: "revoked",
			expect: func(m sqlmock.Sqlmock) {
				m.ExpectQuery(regexp.QuoteMeta(selectTokenSQL)).
					WithArgs("jti-1").
					WillReturnError(sql.ErrNoRows)
			},
			wantErr: ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, cleanup := newMockDB(t)
			defer cleanup()
			tt.expect(mock)

			tok, err := NewTokenRepository(db, DialectSQLite).Find(context.Background(), "jti-1")
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Find: %v", err)
			}
			if tok.UserID != 7 || !tok.ExpiresAt.Equal(created.Add(time.Hour)) {
				t.Fatalf("unexpected token: %+v", tok)
			}
		})
	}
}

func TestTokenRepository_Delete(t *testing.T) {
	tests := []struct {
		name     string
		affected int64
		wantErr  error
	}{
		{name: "deleted", affected: 1},
		{name: "already revoked", affected: 0, wantErr: ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, cleanup := newMockDB(t)
			defer cleanup()

			mock.ExpectExec(regexp.QuoteMeta(deleteTokenSQL)).
				WithArgs("jti-1").
				WillReturnResult(sqlmock.NewResult(0, tt.affected))

			err := NewTokenRepository(db, DialectSQLite).Delete(context.Background(), "jti-1")
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestTokenRepository_DeleteExpired(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()

	mock.ExpectExec(regexp.QuoteMeta(deleteExpiredTokensSQL)).
		WithArgs(wholeSecondUTC).
		WillReturnResult(sqlmock.NewResult(0, 3))

	n, err := NewTokenRepository(db, DialectSQLite).DeleteExpired(context.Background(), time.Now())
	if err != nil {
		t.Fatalf("DeleteExpired: %v", err)
	}
	if n != 3 {
		t.Fatalf("expected 3 purged, got %d", n)
	}
}
