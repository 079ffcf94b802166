package service

import (
	"context"
	"fmt"
	"log/slog"

	"buildportal/internal/access"
	"buildportal/internal/domain"
	"buildportal/internal/domain/models"
	"buildportal/internal/domain/repositories"
	"buildportal/internal/domain/services"
)

type userService struct {
	userRepo repositories.UserRepository
	engine   *access.Engine
	logger   *slog.Logger
}

// NewUserService creates a new user service
func NewUserService(userRepo repositories.UserRepository, engine *access.Engine, logger *slog.Logger) services.UserService {
	return &userService{
		userRepo: userRepo,
		engine:   engine,
		logger:   logger,
	}
}

func (s *userService) Me(ctx context.Context, p *models.Principal) (*models.User, error) {
	if p == nil {
		return nil, domain.ErrUnauthorized
	}
	return s.userRepo.GetByID(ctx, p.ID)
}

func (s *userService) UpdateRole(ctx context.Context, p *models.Principal, userID string, role models.Role) (*models.User, error) {
	if err := s.engine.Authorize(ctx, p, access.ActionManageUsers, access.ForUser(userID)); err != nil {
		return nil, err
	}
	if !role.Valid() {
		return nil, fmt.Errorf("%w: unknown role %q", domain.ErrValidation, role)
	}
	if userID == p.ID {
		return nil, fmt.Errorf("%w: cannot change your own role", domain.ErrValidation)
	}

	user, err := s.userRepo.UpdateRole(ctx, userID, role)
	if err != nil {
		return nil, err
	}

	s.logger.Info("user role changed",
		"user_id", userID,
		"role", role,
		"changed_by", p.ID,
	)
	return user, nil
}
