package repositories

import (
	"context"
	"encoding/json"

	"buildportal/internal/domain/models"
)

// MediaRepository defines data access operations for photos and videos.
// The kind selects the table.
type MediaRepository interface {
	Create(ctx context.Context, media *models.MediaFile) error

	// GetByID retrieves a media file with its object's owner joined
	GetByID(ctx context.Context, kind models.MediaKind, id string) (*models.MediaFile, error)

	ListByObject(ctx context.Context, kind models.MediaKind, objectID string) ([]models.MediaFile, error)

	SetVisibility(ctx context.Context, kind models.MediaKind, id string, visible bool) error

	// SetFolder moves a media file into a folder, or out of any folder when folderID is nil
	SetFolder(ctx context.Context, kind models.MediaKind, id string, folderID *string) error
}

// BimModelRepository defines data access operations for BIM models
type BimModelRepository interface {
	Create(ctx context.Context, model *models.BimModel) error

	// GetByID retrieves a model with its object's owner joined
	GetByID(ctx context.Context, id string) (*models.BimModel, error)

	ListByObject(ctx context.Context, objectID string) ([]models.BimModel, error)

	SetVisibility(ctx context.Context, id string, visible bool) error

	SaveParameterTree(ctx context.Context, id string, tree json.RawMessage) error
}

// CommentRepository defines data access operations for comments
type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error

	// GetByID retrieves a comment with its parent's object and owner joined
	GetByID(ctx context.Context, id string) (*models.Comment, error)

	ListByParent(ctx context.Context, kind models.CommentParentKind, parentID string) ([]models.Comment, error)

	SetVisibility(ctx context.Context, id string, visible bool) error

	Delete(ctx context.Context, id string) error
}
