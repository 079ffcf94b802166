package repositories

import (
	"context"

	"buildportal/internal/domain/models"
)

// ObjectRepository defines data access operations for construction objects
type ObjectRepository interface {
	Create(ctx context.Context, object *models.Object) error

	// GetByID retrieves an object by ID without any caller scoping
	GetByID(ctx context.Context, id string) (*models.Object, error)

	// ListByOwner lists objects owned by a customer, newest first
	ListByOwner(ctx context.Context, ownerUserID string) ([]models.Object, error)

	// ListAssigned lists objects the user is assigned to, newest first
	ListAssigned(ctx context.Context, userID string) ([]models.Object, error)

	// ListAll lists every object, newest first
	ListAll(ctx context.Context) ([]models.Object, error)

	Update(ctx context.Context, object *models.Object) error
}

// AssignmentRepository backs the assignment index
type AssignmentRepository interface {
	// IsAssigned reports whether the user holds an assignment to the object
	IsAssigned(ctx context.Context, userID, objectID string) (bool, error)

	// Create adds an assignment. Returns a ConflictError if it exists.
	Create(ctx context.Context, assignment *models.Assignment) error

	// Delete removes an assignment. Returns ErrNotFound if absent.
	Delete(ctx context.Context, userID, objectID string) error
}

// FolderRepository defines data access operations for folders
type FolderRepository interface {
	Create(ctx context.Context, folder *models.Folder) error

	// GetByID retrieves a folder with its object's owner joined
	GetByID(ctx context.Context, id string) (*models.Folder, error)

	ListByObject(ctx context.Context, objectID string) ([]models.Folder, error)
}
