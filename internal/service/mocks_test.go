package service

import (
	"context"
	"time"

	"task_manager/internal/models"
	"task_manager/internal/repository"
)

// mockUserRepo is a lightweight in-test mock for repository.UserRepo.
type mockUserRepo struct {
	CreateFn        func(u *models.User) (int, error)
	GetByUsernameFn func(username string) (*models.User, error)
	GetByIDFn       func(id int) (*models.User, error)
	ListFn          func() ([]models.User, error)

	created  []models.User
	getCalls []string
}

func (m *mockUserRepo) Create(ctx context.Context, u *models.User) (int, error) {
	m.created = append(m.created, *u)
	id, err := m.CreateFn(u)
	if err == nil {
		u.ID = id
	}
	return id, err
}

func (m *mockUserRepo) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	m.getCalls = append(m.getCalls, username)
	if m.GetByUsernameFn == nil {
		return nil, repository.ErrNotFound
	}
	return m.GetByUsernameFn(username)
}

func (m *mockUserRepo) GetByID(ctx context.Context, id int) (*models.User, error) {
	return m.GetByIDFn(id)
}

func (m *mockUserRepo) List(ctx context.Context) ([]models.User, error) {
	return m.ListFn()
}

// memTokenRepo keeps token rows in a map.
type memTokenRepo struct {
	rows      map[string]models.AuthToken
	createErr error
	findErr   error
}

func newMemTokenRepo() *memTokenRepo {
	return &memTokenRepo{rows: map[string]models.AuthToken{}}
}

func (m *memTokenRepo) Create(ctx context.Context, t models.AuthToken) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.rows[t.ID] = t
	return nil
}

func (m *memTokenRepo) Find(ctx context.Context, id string) (*models.AuthToken, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
	t, ok := m.rows[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &t, nil
}

func (m *memTokenRepo) Delete(ctx context.Context, id string) error {
	if _, ok := m.rows[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.rows, id)
	return nil
}

func (m *memTokenRepo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	var n int64
	for id, t := range m.rows {
		if t.Expired(now) {
			delete(m.rows, id)
			n++
		}
	}
	return n, nil
}

// mockTaskRepo is a lightweight in-test mock for repository.TaskRepo.
type mockTaskRepo struct {
	CreateFn  func(t *models.Task) (int, error)
	GetByIDFn func(id int) (*models.Task, error)
	ListFn    func(ownerID *int) ([]models.Task, error)
	UpdateFn  func(t *models.Task) error
	DeleteFn  func(id int) error

	createCalls int
	updated     []models.Task
}

func (m *mockTaskRepo) Create(ctx context.Context, t *models.Task) (int, error) {
	m.createCalls++
	id, err := m.CreateFn(t)
	if err == nil {
		t.ID = id
	}
	return id, err
}

func (m *mockTaskRepo) GetByID(ctx context.Context, id int) (*models.Task, error) {
	return m.GetByIDFn(id)
}

func (m *mockTaskRepo) List(ctx context.Context, ownerID *int) ([]models.Task, error) {
	return m.ListFn(ownerID)
}

func (m *mockTaskRepo) Update(ctx context.Context, t *models.Task) error {
	m.updated = append(m.updated, *t)
	return m.UpdateFn(t)
}

func (m *mockTaskRepo) Delete(ctx context.Context, id int) error {
	return m.DeleteFn(id)
}

// fakeTx runs fn against the same mocks. rolledBack records whether fn failed.
type fakeTx struct {
	users      repository.UserRepo
	tokens     repository.TokenRepo
	calls      int
	rolledBack bool
}

func (f *fakeTx) WithinTx(ctx context.Context, fn func(tx *repository.Repository) error) error {
	f.calls++
	err := fn(&repository.Repository{Users: f.users, Tokens: f.tokens})
	f.rolledBack = err != nil
	return err
}
