package service

import (
	"context"

	"task_manager/internal/models"
	"task_manager/internal/repository"
)

type UserService struct {
	users repository.UserRepo
}

func NewUserService(users repository.UserRepo) *UserService {
	return &UserService{users: users}
}

func (s *UserService) List(ctx context.Context) ([]models.User, error) {
	return s.users.List(ctx)
}
