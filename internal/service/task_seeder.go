package service

import (
	"context"
	"fmt"

	"task_manager/internal/models"
)

// Sample tasks created per user by SeedTasks.
const (
	seedInProgress = 3
	seedDone       = 2
)

// SeedTasks gives every user without tasks a small sample set:
// seedInProgress tasks in progress and seedDone finished ones.
// Users that already own a task are skipped, so repeated runs add nothing.
// It returns the number of tasks created.
func (s *TaskService) SeedTasks(ctx context.Context) (int, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("list users: %w", err)
	}

	created := 0
	for _, u := range users {
		id := u.ID
		existing, err := s.tasks.List(ctx, &id)
		if err != nil {
			return created, fmt.Errorf("list tasks of user %d: %w", id, err)
		}
		if len(existing) > 0 {
			continue
		}
		for i := 0; i < seedInProgress+seedDone; i++ {
			status := models.StatusInProgress
			if i >= seedInProgress {
				status = models.StatusDone
			}
			t := &models.Task{
				Title:       fmt.Sprintf("Sample task %d", i+1),
				Description: fmt.Sprintf("Sample task %d for %s.", i+1, u.Username),
				Status:      status,
				UserID:      id,
			}
			if _, err := s.tasks.Create(ctx, t); err != nil {
				return created, fmt.Errorf("seed task for user %d: %w", id, err)
			}
			created++
		}
	}
	return created, nil
}
