package services

import (
	"context"
	"encoding/json"

	"buildportal/internal/domain/models"
	"buildportal/internal/storage"
)

// Every method takes the request's principal and authorizes through the
// access engine before touching data. Denials are *domain.ForbiddenError.

// UserService handles account operations
type UserService interface {
	// Me returns the caller's stored account
	Me(ctx context.Context, p *models.Principal) (*models.User, error)

	// UpdateRole changes another user's role (admins only)
	UpdateRole(ctx context.Context, p *models.Principal, userID string, role models.Role) (*models.User, error)
}

// ObjectService handles objects and their assignments
type ObjectService interface {
	// ListObjects returns the objects the caller may view, newest first
	ListObjects(ctx context.Context, p *models.Principal) ([]models.Object, error)

	CreateObject(ctx context.Context, p *models.Principal, req *CreateObjectRequest) (*models.Object, error)

	GetObject(ctx context.Context, p *models.Principal, id string) (*models.Object, error)

	UpdateObject(ctx context.Context, p *models.Principal, id string, req *UpdateObjectRequest) (*models.Object, error)

	// Assign grants a designer or builder access to the object
	Assign(ctx context.Context, p *models.Principal, objectID string, req *CreateAssignmentRequest) (*models.Assignment, error)

	// Unassign revokes an assignment; access is lost on the next request
	Unassign(ctx context.Context, p *models.Principal, objectID, userID string) error
}

// FolderService handles media folders of an object
type FolderService interface {
	ListFolders(ctx context.Context, p *models.Principal, objectID string) ([]models.Folder, error)

	CreateFolder(ctx context.Context, p *models.Principal, objectID string, req *CreateFolderRequest) (*models.Folder, error)
}

// MediaService handles photos and videos
type MediaService interface {
	// ListMedia returns the files of the object the caller may view
	ListMedia(ctx context.Context, p *models.Principal, kind models.MediaKind, objectID string) ([]models.MediaFile, error)

	Upload(ctx context.Context, p *models.Principal, req *UploadMediaRequest) (*models.MediaFile, error)

	// Open authorizes a view and opens the file's bytes. Caller closes the blob.
	Open(ctx context.Context, p *models.Principal, kind models.MediaKind, objectID, id string) (*models.MediaFile, *storage.Blob, error)

	SetVisibility(ctx context.Context, p *models.Principal, kind models.MediaKind, objectID, id string, visible bool) (*models.MediaFile, error)

	// MoveToFolder puts the file into a folder of the same object, or out of
	// any folder when folderID is nil
	MoveToFolder(ctx context.Context, p *models.Principal, kind models.MediaKind, objectID, id string, folderID *string) (*models.MediaFile, error)
}

// BimService handles BIM models and their parameter trees
type BimService interface {
	ListModels(ctx context.Context, p *models.Principal, objectID string) ([]models.BimModel, error)

	Upload(ctx context.Context, p *models.Principal, req *UploadBimModelRequest) (*models.BimModel, error)

	Open(ctx context.Context, p *models.Principal, objectID, id string) (*models.BimModel, *storage.Blob, error)

	SetVisibility(ctx context.Context, p *models.Principal, objectID, id string, visible bool) (*models.BimModel, error)

	// GetTree returns the saved parameter tree; a model without one is not found
	GetTree(ctx context.Context, p *models.Principal, objectID, id string) (json.RawMessage, error)

	// GenerateTree runs the converter on the model file and saves the result
	GenerateTree(ctx context.Context, p *models.Principal, objectID, id string) (json.RawMessage, error)

	SaveTree(ctx context.Context, p *models.Principal, objectID, id string, req *SaveTreeRequest) (json.RawMessage, error)
}

// CommentService handles comments on photos and BIM models
type CommentService interface {
	ListComments(ctx context.Context, p *models.Principal, objectID string, kind models.CommentParentKind, parentID string) ([]models.Comment, error)

	CreateComment(ctx context.Context, p *models.Principal, req *CreateCommentRequest) (*models.Comment, error)

	DeleteComment(ctx context.Context, p *models.Principal, id string) error

	SetVisibility(ctx context.Context, p *models.Principal, id string, visible bool) (*models.Comment, error)
}

// ItemView is a catalog item with the caller's download entitlement
type ItemView struct {
	models.DownloadableItem
	CanDownload bool `json:"can_download"`
}

// CatalogService handles downloadable items and their purchases
type CatalogService interface {
	ListItems(ctx context.Context, p *models.Principal) ([]models.DownloadableItem, error)

	CreateItem(ctx context.Context, p *models.Principal, req *CreateItemRequest) (*models.DownloadableItem, error)

	GetItem(ctx context.Context, p *models.Principal, id string) (*ItemView, error)

	UpdateItem(ctx context.Context, p *models.Principal, id string, req *UpdateItemRequest) (*models.DownloadableItem, error)

	DeleteItem(ctx context.Context, p *models.Principal, id string) error

	// Download authorizes download_item, checks the entitlement gate, opens
	// the bytes and counts the download
	Download(ctx context.Context, p *models.Principal, id string) (*models.DownloadableItem, *storage.Blob, error)

	// Purchase records a pending purchase for the caller; a paid one is returned as is
	Purchase(ctx context.Context, p *models.Principal, id string) (*models.Purchase, error)

	// ApplyNotification upserts a purchase from a verified commerce callback
	ApplyNotification(ctx context.Context, n *CommerceNotification) (*models.Purchase, error)
}

// PortfolioService handles designer portfolio entries
type PortfolioService interface {
	ListPortfolio(ctx context.Context, p *models.Principal) ([]models.PortfolioItem, error)

	CreatePortfolioItem(ctx context.Context, p *models.Principal, req *CreatePortfolioItemRequest) (*models.PortfolioItem, error)

	Open(ctx context.Context, p *models.Principal, id string) (*models.PortfolioItem, *storage.Blob, error)

	DeletePortfolioItem(ctx context.Context, p *models.Principal, id string) error
}
