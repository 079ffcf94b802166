package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/shopspring/decimal"

	"buildportal/internal/access"
	"buildportal/internal/config"
	"buildportal/internal/domain"
	"buildportal/internal/domain/models"
	"buildportal/internal/domain/repositories"
	"buildportal/internal/domain/services"
	"buildportal/internal/storage"
)

// maxPrice fits NUMERIC(12,2)
var maxPrice = decimal.New(1, 10)

type catalogService struct {
	itemRepo     repositories.ItemRepository
	purchaseRepo repositories.PurchaseRepository
	userRepo     repositories.UserRepository
	engine       *access.Engine
	gate         *access.EntitlementGate
	blobs        *storage.BlobStore
	logger       *slog.Logger
}

// NewCatalogService creates a new catalog service
func NewCatalogService(
	itemRepo repositories.ItemRepository,
	purchaseRepo repositories.PurchaseRepository,
	userRepo repositories.UserRepository,
	engine *access.Engine,
	gate *access.EntitlementGate,
	blobs *storage.BlobStore,
	logger *slog.Logger,
) services.CatalogService {
	return &catalogService{
		itemRepo:     itemRepo,
		purchaseRepo: purchaseRepo,
		userRepo:     userRepo,
		engine:       engine,
		gate:         gate,
		blobs:        blobs,
		logger:       logger,
	}
}

func (s *catalogService) ListItems(ctx context.Context, p *models.Principal) ([]models.DownloadableItem, error) {
	if err := s.engine.Authorize(ctx, p, access.ActionViewItem, access.Catalog(access.KindItem)); err != nil {
		return nil, err
	}

	items, err := s.itemRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	return access.Filter(ctx, s.engine, p, access.ActionViewItem, items, access.ForItem)
}

func (s *catalogService) CreateItem(ctx context.Context, p *models.Principal, req *services.CreateItemRequest) (*models.DownloadableItem, error) {
	if err := s.engine.Authorize(ctx, p, access.ActionCreateItem, access.Catalog(access.KindItem)); err != nil {
		return nil, err
	}

	item := &models.DownloadableItem{
		Title:          strings.TrimSpace(req.Title),
		Description:    emptyToNil(req.Description),
		Price:          req.Price,
		UploaderUserID: p.ID,
	}
	if err := validateItem(item); err != nil {
		return nil, validationError(err)
	}

	stored, err := s.blobs.Put("items", req.File.Filename, req.File.Body)
	if err != nil {
		return nil, err
	}
	item.FilePath = stored.Path
	item.MimeType = stored.MimeType
	item.SizeBytes = stored.Size

	if err := s.itemRepo.Create(ctx, item); err != nil {
		s.deleteBlob(stored.Path)
		return nil, err
	}
	uploadedBytesTotal.WithLabelValues("item").Add(float64(stored.Size))

	s.logger.Info("item created",
		"id", item.ID,
		"price", item.Price,
		"uploaded_by", p.ID,
	)
	return item, nil
}

// GetItem reports can_download as the combined verdict of the engine and
// the entitlement gate for the caller
func (s *catalogService) GetItem(ctx context.Context, p *models.Principal, id string) (*services.ItemView, error) {
	item, err := s.itemRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.engine.Authorize(ctx, p, access.ActionViewItem, access.ForItem(item)); err != nil {
		return nil, err
	}

	decision, err := s.engine.Decide(ctx, p, access.ActionDownloadItem, access.ForItem(item))
	if err != nil {
		return nil, err
	}
	canDownload := false
	if decision.Allowed {
		if canDownload, err = s.gate.CanDownload(ctx, p, item); err != nil {
			return nil, err
		}
	}

	return &services.ItemView{DownloadableItem: *item, CanDownload: canDownload}, nil
}

func (s *catalogService) UpdateItem(ctx context.Context, p *models.Principal, id string, req *services.UpdateItemRequest) (*models.DownloadableItem, error) {
	item, err := s.itemRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.engine.Authorize(ctx, p, access.ActionManageItem, access.ForItem(item)); err != nil {
		return nil, err
	}

	if req.Title != nil {
		item.Title = strings.TrimSpace(*req.Title)
	}
	if req.Description.Present {
		item.Description = emptyToNil(req.Description.Value)
	}
	if req.Price.Present {
		item.Price = req.Price.Value
	}
	if err := validateItem(item); err != nil {
		return nil, validationError(err)
	}

	if err := s.itemRepo.Update(ctx, item); err != nil {
		return nil, err
	}

	s.logger.Info("item updated",
		"id", item.ID,
		"price", item.Price,
		"updated_by", p.ID,
	)
	return item, nil
}

func (s *catalogService) DeleteItem(ctx context.Context, p *models.Principal, id string) error {
	item, err := s.itemRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.engine.Authorize(ctx, p, access.ActionManageItem, access.ForItem(item)); err != nil {
		return err
	}

	if err := s.itemRepo.Delete(ctx, item.ID); err != nil {
		return err
	}
	s.deleteBlob(item.FilePath)

	s.logger.Info("item deleted", "id", item.ID, "deleted_by", p.ID)
	return nil
}

// Download checks the engine, then the entitlement gate, and opens the
// bytes only when both pass. A failed counter update does not fail the download.
func (s *catalogService) Download(ctx context.Context, p *models.Principal, id string) (*models.DownloadableItem, *storage.Blob, error) {
	item, err := s.itemRepo.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if err := s.engine.Authorize(ctx, p, access.ActionDownloadItem, access.ForItem(item)); err != nil {
		return nil, nil, err
	}
	if err := s.gate.Require(ctx, p, item); err != nil {
		return nil, nil, err
	}

	blob, err := s.blobs.Open(item.FilePath)
	if err != nil {
		return nil, nil, err
	}

	if err := s.itemRepo.IncrementDownloads(ctx, item.ID); err != nil {
		s.logger.Error("failed to count download", "item_id", item.ID, "error", err)
	}
	itemDownloadsTotal.Inc()

	s.logger.Debug("item downloaded", "item_id", item.ID, "user_id", p.ID)
	return item, blob, nil
}

func (s *catalogService) Purchase(ctx context.Context, p *models.Principal, id string) (*models.Purchase, error) {
	item, err := s.itemRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.engine.Authorize(ctx, p, access.ActionPurchaseItem, access.ForItem(item)); err != nil {
		return nil, err
	}
	if item.IsFree() {
		return nil, fmt.Errorf("%w: item %s is free", domain.ErrValidation, item.ID)
	}

	purchase := &models.Purchase{
		UserID: p.ID,
		ItemID: item.ID,
		Status: models.PurchaseStatusPending,
	}
	if err := s.purchaseRepo.Upsert(ctx, purchase); err != nil {
		return nil, err
	}

	s.logger.Info("purchase recorded",
		"purchase_id", purchase.ID,
		"item_id", item.ID,
		"user_id", p.ID,
		"status", purchase.Status,
	)
	return purchase, nil
}

func (s *catalogService) ApplyNotification(ctx context.Context, n *services.CommerceNotification) (*models.Purchase, error) {
	err := validation.ValidateStruct(n,
		validation.Field(&n.OrderID, validation.Required),
		validation.Field(&n.UserID, validation.Required),
		validation.Field(&n.ItemID, validation.Required),
		validation.Field(&n.Status, validation.Required, validation.By(func(any) error {
			if !n.Status.Valid() {
				return errors.New("must be pending, paid or refunded")
			}
			return nil
		})),
	)
	if err != nil {
		return nil, validationError(err)
	}

	if _, err := s.userRepo.GetByID(ctx, n.UserID); err != nil {
		return nil, notFoundAsValidation("user_id", err)
	}
	if _, err := s.itemRepo.GetByID(ctx, n.ItemID); err != nil {
		return nil, notFoundAsValidation("item_id", err)
	}

	orderID := n.OrderID
	purchase := &models.Purchase{
		UserID:          n.UserID,
		ItemID:          n.ItemID,
		Status:          n.Status,
		ExternalOrderID: &orderID,
	}
	if err := s.purchaseRepo.Upsert(ctx, purchase); err != nil {
		return nil, err
	}

	s.logger.Info("purchase status applied",
		"purchase_id", purchase.ID,
		"order_id", n.OrderID,
		"requested_status", n.Status,
		"status", purchase.Status,
	)
	return purchase, nil
}

func (s *catalogService) deleteBlob(p string) {
	if err := s.blobs.Delete(p); err != nil {
		s.logger.Warn("failed to remove blob", "path", p, "error", err)
	}
}

func validateItem(item *models.DownloadableItem) error {
	return validation.ValidateStruct(item,
		validation.Field(&item.Title, validation.Required, validation.Length(1, config.MaxTitleLength)),
		validation.Field(&item.Description, validation.Length(0, config.MaxDescriptionLength)),
		validation.Field(&item.Price, validation.By(func(any) error {
			if !item.Price.Valid {
				return nil
			}
			if item.Price.Decimal.IsNegative() {
				return errors.New("must not be negative")
			}
			if item.Price.Decimal.GreaterThanOrEqual(maxPrice) {
				return errors.New("is too large")
			}
			if !item.Price.Decimal.Equal(item.Price.Decimal.Round(2)) {
				return errors.New("must have at most two decimal places")
			}
			return nil
		})),
	)
}
