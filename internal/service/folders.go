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
)

type folderService struct {
	folderRepo repositories.FolderRepository
	resolver   *access.OwnershipResolver
	engine     *access.Engine
	logger     *slog.Logger
}

// NewFolderService creates a new folder service
func NewFolderService(
	folderRepo repositories.FolderRepository,
	resolver *access.OwnershipResolver,
	engine *access.Engine,
	logger *slog.Logger,
) services.FolderService {
	return &folderService{
		folderRepo: folderRepo,
		resolver:   resolver,
		engine:     engine,
		logger:     logger,
	}
}

func (s *folderService) ListFolders(ctx context.Context, p *models.Principal, objectID string) ([]models.Folder, error) {
	object, err := s.resolver.Object(ctx, objectID)
	if err != nil {
		return nil, err
	}
	if err := s.engine.Authorize(ctx, p, access.ActionViewFolder, access.ForObject(object)); err != nil {
		return nil, err
	}

	folders, err := s.folderRepo.ListByObject(ctx, object.ID)
	if err != nil {
		return nil, err
	}
	return access.Filter(ctx, s.engine, p, access.ActionViewFolder, folders, access.ForFolder)
}

func (s *folderService) CreateFolder(ctx context.Context, p *models.Principal, objectID string, req *services.CreateFolderRequest) (*models.Folder, error) {
	object, err := s.resolver.Object(ctx, objectID)
	if err != nil {
		return nil, err
	}
	if err := s.engine.Authorize(ctx, p, access.ActionManageFolder, access.ForObject(object)); err != nil {
		return nil, err
	}

	req.Name = strings.TrimSpace(req.Name)
	err = validation.ValidateStruct(req,
		validation.Field(&req.Name,
			validation.Required,
			validation.Length(1, config.MaxFolderNameLength),
			validation.By(noSlashes),
		),
	)
	if err != nil {
		return nil, validationError(err)
	}

	folder := &models.Folder{
		ObjectID:      object.ID,
		ObjectOwnerID: object.OwnerUserID,
		Name:          req.Name,
	}
	if err := s.folderRepo.Create(ctx, folder); err != nil {
		return nil, err
	}

	s.logger.Info("folder created",
		"id", folder.ID,
		"name", folder.Name,
		"object_id", folder.ObjectID,
		"created_by", p.ID,
	)
	return folder, nil
}

func noSlashes(value any) error {
	if s, _ := value.(string); strings.ContainsAny(s, `/\`) {
		return validation.NewError("validation_no_slashes", "must not contain slashes")
	}
	return nil
}
