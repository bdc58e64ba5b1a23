package service

import (
	"context"
	"errors"
	"fmt"

	"task_manager/internal/models"
	"task_manager/internal/repository"
)

// CreateTaskInput is the allow-listed payload of POST /tasks.
type CreateTaskInput struct {
	Title       string        `json:"title" validate:"required,max=255"`
	Description string        `json:"description" validate:"required"`
	Status      models.Status `json:"status" validate:"required,oneof=in_progress done"`
	AssignedTo  string        `json:"assignedTo" validate:"required"`
}

// UpdateTaskInput is the allow-listed payload of PUT /tasks/{id}.
// Nil fields are left untouched.
type UpdateTaskInput struct {
	Title       *string        `json:"title" validate:"omitnil,min=1,max=255"`
	Description *string        `json:"description" validate:"omitnil,min=1"`
	Status      *models.Status `json:"status" validate:"omitnil,oneof=in_progress done"`
	AssignedTo  *string        `json:"assignedTo" validate:"omitnil,min=1"`
}

type TaskService struct {
	tasks repository.TaskRepo
	users repository.UserRepo
}

func NewTaskService(tasks repository.TaskRepo, users repository.UserRepo) *TaskService {
	return &TaskService{tasks: tasks, users: users}
}

func (s *TaskService) List(ctx context.Context, ownerID *int) ([]models.Task, error) {
	return s.tasks.List(ctx, ownerID)
}

func (s *TaskService) Get(ctx context.Context, id int) (*models.Task, error) {
	t, err := s.tasks.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return t, nil
}

// Create validates in, resolves the assignee and stores the task.
// The returned task carries user_id but no embedded owner.
func (s *TaskService) Create(ctx context.Context, in CreateTaskInput) (*models.Task, error) {
	if err := check(MsgMissingFields, in); err != nil {
		return nil, err
	}
	owner, err := s.resolveOwner(ctx, MsgMissingFields, in.AssignedTo)
	if err != nil {
		return nil, err
	}

	t := &models.Task{
		Title:       in.Title,
		Description: in.Description,
		Status:      in.Status,
		UserID:      owner.ID,
	}
	if _, err := s.tasks.Create(ctx, t); err != nil {
		if errors.Is(err, repository.ErrConstraint) {
			return nil, &ValidationError{Message: MsgMissingFields}
		}
		return nil, err
	}
	return t, nil
}

// Update applies the present fields of in to task and returns the stored
// result with its owner embedded.
func (s *TaskService) Update(ctx context.Context, task *models.Task, in UpdateTaskInput) (*models.Task, error) {
	if err := check(MsgInvalidFields, in); err != nil {
		return nil, err
	}

	next := *task
	next.User = nil
	if in.Title != nil {
		next.Title = *in.Title
	}
	if in.Description != nil {
		next.Description = *in.Description
	}
	if in.Status != nil {
		next.Status = *in.Status
	}
	if in.AssignedTo != nil {
		owner, err := s.resolveOwner(ctx, MsgInvalidFields, *in.AssignedTo)
		if err != nil {
			return nil, err
		}
		next.UserID = owner.ID
	}

	if err := s.tasks.Update(ctx, &next); err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return nil, ErrNotFound
		case errors.Is(err, repository.ErrConstraint):
			return nil, &ValidationError{Message: MsgInvalidFields}
		}
		return nil, err
	}
	return s.Get(ctx, next.ID)
}

func (s *TaskService) Delete(ctx context.Context, id int) error {
	if err := s.tasks.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

func (s *TaskService) resolveOwner(ctx context.Context, message, username string) (*models.User, error) {
	u, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fieldError(message, "assignedTo", "The selected assignedTo is invalid.")
		}
		return nil, fmt.Errorf("resolve assignee: %w", err)
	}
	return u, nil
}
