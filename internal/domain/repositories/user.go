package repositories

import (
	"context"

	"buildportal/internal/domain/models"
)

// UserRepository defines data access operations for users
type UserRepository interface {
	// GetByID retrieves a user by ID. Returns ErrNotFound if absent.
	GetByID(ctx context.Context, id string) (*models.User, error)

	// Create inserts a new user and fills generated fields
	Create(ctx context.Context, user *models.User) error

	// UpdateRole changes a user's role
	UpdateRole(ctx context.Context, id string, role models.Role) (*models.User, error)
}
