package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"taskhub/internal/model"
	"taskhub/internal/repository"
)

// UserService provisions and resolves user rows. Authentication happens
// upstream; this only anchors the ownership foreign keys.
type UserService struct {
	userRepo *repository.UserRepository
}

func NewUserService(userRepo *repository.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

// Register finds or creates a user by email, refreshing the display name.
func (s *UserService) Register(ctx context.Context, email, name string) (*model.User, error) {
	if email == "" {
		return nil, errors.New("email is required")
	}
	return s.userRepo.UpsertByEmail(ctx, email, name)
}

func (s *UserService) Get(ctx context.Context, userID uuid.UUID) (*model.User, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}
