package service

import (
	"context"
	"time"

	"task_manager/internal/logger"
	"task_manager/internal/models"
	"task_manager/internal/repository"
)

// Authorization covers credentials and bearer tokens.
type Authorization interface {
	Register(ctx context.Context, in RegisterInput) (*models.User, string, error)
	Login(ctx context.Context, in LoginInput) (*models.User, string, error)
	Logout(ctx context.Context, tokenID string) error
	Authenticate(ctx context.Context, token string) (*Session, error)
	EnsureAdmin(ctx context.Context, username, password, fullName string) (bool, error)
}

// Tasks is task CRUD. Callers authorize before invoking it.
type Tasks interface {
	// List returns every task when ownerID is nil, otherwise that owner's.
	List(ctx context.Context, ownerID *int) ([]models.Task, error)
	Get(ctx context.Context, id int) (*models.Task, error)
	Create(ctx context.Context, in CreateTaskInput) (*models.Task, error)
	Update(ctx context.Context, task *models.Task, in UpdateTaskInput) (*models.Task, error)
	Delete(ctx context.Context, id int) error
}

// Seeder fills an empty database with sample tasks.
type Seeder interface {
	SeedTasks(ctx context.Context) (int, error)
}

type Users interface {
	List(ctx context.Context) ([]models.User, error)
}

// Janitor purges expired tokens in the background.
// Stop via context cancellation in main() for graceful shutdown.
type Janitor interface {
	Run(ctx context.Context, tick time.Duration)
}

type Service struct {
	Auth    Authorization
	Tasks   Tasks
	Users   Users
	Janitor Janitor
	Seeder  Seeder
}

func NewService(repos *repository.Repository, opts AuthOptions, log *logger.Logger) *Service {
	tasks := NewTaskService(repos.Tasks, repos.Users)
	return &Service{
		Auth:    NewAuthService(repos.Users, repos.Tokens, repos, opts),
		Tasks:   tasks,
		Users:   NewUserService(repos.Users),
		Janitor: NewTokenJanitor(repos.Tokens, log),
		Seeder:  tasks,
	}
}
