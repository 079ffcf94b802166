package repositories

import (
	"context"

	"buildportal/internal/domain/models"
)

// ItemRepository defines data access operations for downloadable items
type ItemRepository interface {
	Create(ctx context.Context, item *models.DownloadableItem) error
	GetByID(ctx context.Context, id string) (*models.DownloadableItem, error)
	List(ctx context.Context) ([]models.DownloadableItem, error)
	Update(ctx context.Context, item *models.DownloadableItem) error
	Delete(ctx context.Context, id string) error

	// IncrementDownloads bumps the item's download counter by one
	IncrementDownloads(ctx context.Context, id string) error
}

// PurchaseRepository defines data access operations for purchases
type PurchaseRepository interface {
	// Get returns the purchase for the pair, or ErrNotFound
	Get(ctx context.Context, userID, itemID string) (*models.Purchase, error)

	// Upsert inserts or updates the purchase for (UserID, ItemID) and fills
	// generated fields. A pending status never replaces a paid one; the
	// effective status is written back into purchase.
	Upsert(ctx context.Context, purchase *models.Purchase) error
}

// PortfolioRepository defines data access operations for portfolio items
type PortfolioRepository interface {
	Create(ctx context.Context, item *models.PortfolioItem) error
	GetByID(ctx context.Context, id string) (*models.PortfolioItem, error)
	List(ctx context.Context) ([]models.PortfolioItem, error)
	Delete(ctx context.Context, id string) error
}
