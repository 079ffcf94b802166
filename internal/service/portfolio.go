package service

import (
	"context"
	"log/slog"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"buildportal/internal/access"
	"buildportal/internal/config"
	"buildportal/internal/domain/models"
	"buildportal/internal/domain/repositories"
	"buildportal/internal/domain/services"
	"buildportal/internal/storage"
)

type portfolioService struct {
	portfolioRepo repositories.PortfolioRepository
	engine        *access.Engine
	blobs         *storage.BlobStore
	logger        *slog.Logger
}

// NewPortfolioService creates a new portfolio service
func NewPortfolioService(
	portfolioRepo repositories.PortfolioRepository,
	engine *access.Engine,
	blobs *storage.BlobStore,
	logger *slog.Logger,
) services.PortfolioService {
	return &portfolioService{
		portfolioRepo: portfolioRepo,
		engine:        engine,
		blobs:         blobs,
		logger:        logger,
	}
}

func (s *portfolioService) ListPortfolio(ctx context.Context, p *models.Principal) ([]models.PortfolioItem, error) {
	if err := s.engine.Authorize(ctx, p, access.ActionViewPortfolio, access.Catalog(access.KindPortfolio)); err != nil {
		return nil, err
	}
	return s.portfolioRepo.List(ctx)
}

func (s *portfolioService) CreatePortfolioItem(ctx context.Context, p *models.Principal, req *services.CreatePortfolioItemRequest) (*models.PortfolioItem, error) {
	if err := s.engine.Authorize(ctx, p, access.ActionCreatePortfolioItem, access.Catalog(access.KindPortfolio)); err != nil {
		return nil, err
	}

	item := &models.PortfolioItem{
		AuthorUserID: p.ID,
		Title:        strings.TrimSpace(req.Title),
		Description:  emptyToNil(req.Description),
	}
	err := validation.ValidateStruct(item,
		validation.Field(&item.Title, validation.Required, validation.Length(1, config.MaxTitleLength)),
		validation.Field(&item.Description, validation.Length(0, config.MaxDescriptionLength)),
	)
	if err != nil {
		return nil, validationError(err)
	}

	stored, err := s.blobs.Put("portfolio", req.File.Filename, req.File.Body)
	if err != nil {
		return nil, err
	}
	item.FilePath = stored.Path
	item.MimeType = stored.MimeType
	item.SizeBytes = stored.Size

	if err := s.portfolioRepo.Create(ctx, item); err != nil {
		if delErr := s.blobs.Delete(stored.Path); delErr != nil {
			s.logger.Warn("failed to remove orphaned blob", "path", stored.Path, "error", delErr)
		}
		return nil, err
	}
	uploadedBytesTotal.WithLabelValues("portfolio").Add(float64(stored.Size))

	s.logger.Info("portfolio item created", "id", item.ID, "author_user_id", p.ID)
	return item, nil
}

func (s *portfolioService) Open(ctx context.Context, p *models.Principal, id string) (*models.PortfolioItem, *storage.Blob, error) {
	item, err := s.portfolioRepo.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if err := s.engine.Authorize(ctx, p, access.ActionViewPortfolio, access.ForPortfolio(item)); err != nil {
		return nil, nil, err
	}

	blob, err := s.blobs.Open(item.FilePath)
	if err != nil {
		return nil, nil, err
	}
	return item, blob, nil
}

func (s *portfolioService) DeletePortfolioItem(ctx context.Context, p *models.Principal, id string) error {
	item, err := s.portfolioRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.engine.Authorize(ctx, p, access.ActionManagePortfolioItem, access.ForPortfolio(item)); err != nil {
		return err
	}

	if err := s.portfolioRepo.Delete(ctx, item.ID); err != nil {
		return err
	}
	if err := s.blobs.Delete(item.FilePath); err != nil {
		s.logger.Warn("failed to remove blob", "path", item.FilePath, "error", err)
	}

	s.logger.Info("portfolio item deleted", "id", item.ID, "deleted_by", p.ID)
	return nil
}
