package db

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pressly/goose/v3"
)

func tableExists(t *testing.T, db *sql.DB, name string) bool {
	t.Helper()
	var n int
	err := db.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?`, name).Scan(&n)
	if err != nil {
		t.Fatalf("tableExists query failed: %v", err)
	}
	return n > 0
}

func openTemp(t *testing.T) *sql.DB {
	t.Helper()
	db, err := Open(context.Background(), DriverSQLite, filepath.Join(t.TempDir(), "app.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestOpen_SQLiteAppliesMigrations(t *testing.T) {
	db := openTemp(t)

	for _, table := range []string{"goose_db_version", "users", "auth_tokens", "tasks"} {
		if !tableExists(t, db, table) {
			t.Fatalf("expected table %q to exist after migrations", table)
		}
	}

	var fk int
	if err := db.QueryRow(`PRAGMA foreign_keys`).Scan(&fk); err != nil {
		t.Fatalf("read pragma: %v", err)
	}
	if fk != 1 {
		t.Fatalf("expected foreign_keys=1, got %d", fk)
	}
}

func TestOpen_IsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.db")
	for i := 0; i < 2; i++ {
		db, err := Open(context.Background(), DriverSQLite, path)
		if err != nil {
			t.Fatalf("Open #%d: %v", i+1, err)
		}
		_ = db.Close()
	}
}

func TestSchema_RejectsInvalidTaskStatus(t *testing.T) {
	db := openTemp(t)
	now := time.Now().UTC()

	res, err := db.Exec(`INSERT INTO users (username, email, password_hash, role, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)`,
		"alice", "alice@example.com", "h", "user", now, now)
	if err != nil {
		t.Fatalf("insert user: %v", err)
	}
	uid, _ := res.LastInsertId()

	_, err = db.Exec(`INSERT INTO tasks (title, description, status, user_id, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)`,
		"Invalid Status Task", "This should fail", "invalid_status", uid, now, now)
	if err == nil {
		t.Fatalf("expected CHECK constraint failure for invalid status")
	}
	if !strings.Contains(strings.ToLower(err.Error()), "constraint") {
		t.Fatalf("expected constraint error, got %v", err)
	}
}

func TestSchema_RejectsInvalidRole(t *testing.T) {
	db := openTemp(t)
	now := time.Now().UTC()

	_, err := db.Exec(`INSERT INTO users (username, email, password_hash, role, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)`,
		"mallory", "m@example.com", "h", "superuser", now, now)
	if err == nil {
		t.Fatalf("expected CHECK constraint failure for invalid role")
	}
}

func TestOpen_UnsupportedDriver(t *testing.T) {
	if _, err := Open(context.Background(), "oracle", "x"); err == nil {
		t.Fatalf("expected error for unsupported driver")
	}
}

func TestMigrate_PropagatesGooseError(t *testing.T) {
	orig := gooseUpContext
	gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
		if dir != "postgres" {
			t.Fatalf("expected postgres migrations dir, got %q", dir)
		}
		return errors.New("boom")
	}
	defer func() { gooseUpContext = orig }()

	err := Migrate(context.Background(), nil, DriverPostgres)
	if err == nil || !strings.Contains(err.Error(), "boom") {
		t.Fatalf("expected wrapped goose error, got %v", err)
	}
}
