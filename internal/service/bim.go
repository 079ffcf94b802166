package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"path"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"buildportal/internal/access"
	"buildportal/internal/bim"
	"buildportal/internal/config"
	"buildportal/internal/domain"
	"buildportal/internal/domain/models"
	"buildportal/internal/domain/repositories"
	"buildportal/internal/domain/services"
	"buildportal/internal/storage"
)

type bimService struct {
	bimRepo    repositories.BimModelRepository
	resolver   *access.OwnershipResolver
	engine     *access.Engine
	visibility *access.VisibilityManager
	blobs      *storage.BlobStore
	generator  bim.TreeGenerator
	logger     *slog.Logger
}

// NewBimService creates a new BIM model service
func NewBimService(
	bimRepo repositories.BimModelRepository,
	resolver *access.OwnershipResolver,
	engine *access.Engine,
	visibility *access.VisibilityManager,
	blobs *storage.BlobStore,
	generator bim.TreeGenerator,
	logger *slog.Logger,
) services.BimService {
	return &bimService{
		bimRepo:    bimRepo,
		resolver:   resolver,
		engine:     engine,
		visibility: visibility,
		blobs:      blobs,
		generator:  generator,
		logger:     logger,
	}
}

func (s *bimService) ListModels(ctx context.Context, p *models.Principal, objectID string) ([]models.BimModel, error) {
	object, err := s.resolver.Object(ctx, objectID)
	if err != nil {
		return nil, err
	}
	if err := s.engine.Authorize(ctx, p, access.ActionViewObject, access.ForObject(object)); err != nil {
		return nil, err
	}

	list, err := s.bimRepo.ListByObject(ctx, object.ID)
	if err != nil {
		return nil, err
	}
	return access.Filter(ctx, s.engine, p, access.ActionViewBimModel, list, access.ForBimModel)
}

func (s *bimService) Upload(ctx context.Context, p *models.Principal, req *services.UploadBimModelRequest) (*models.BimModel, error) {
	object, err := s.resolver.Object(ctx, req.ObjectID)
	if err != nil {
		return nil, err
	}
	if err := s.engine.Authorize(ctx, p, access.ActionUploadBimModel, access.ForObject(object)); err != nil {
		return nil, err
	}

	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		req.Title = strings.TrimSuffix(path.Base(req.File.Filename), path.Ext(req.File.Filename))
	}
	if err := validation.Validate(req.Title, validation.Required, validation.Length(1, config.MaxTitleLength)); err != nil {
		return nil, fmt.Errorf("%w: title: %v", domain.ErrValidation, err)
	}

	stored, err := s.blobs.Put(path.Join("objects", object.ID, "models"), req.File.Filename, req.File.Body)
	if err != nil {
		return nil, err
	}

	model := &models.BimModel{
		ObjectID:            object.ID,
		ObjectOwnerID:       object.OwnerUserID,
		UploaderUserID:      p.ID,
		Title:               req.Title,
		FilePath:            stored.Path,
		MimeType:            stored.MimeType,
		SizeBytes:           stored.Size,
		IsVisibleToCustomer: true,
	}
	if err := s.bimRepo.Create(ctx, model); err != nil {
		if delErr := s.blobs.Delete(stored.Path); delErr != nil {
			s.logger.Warn("failed to remove orphaned blob", "path", stored.Path, "error", delErr)
		}
		return nil, err
	}
	uploadedBytesTotal.WithLabelValues("bim_model").Add(float64(stored.Size))

	s.logger.Info("bim model uploaded",
		"id", model.ID,
		"object_id", model.ObjectID,
		"size_bytes", model.SizeBytes,
		"uploaded_by", p.ID,
	)
	return model, nil
}

func (s *bimService) Open(ctx context.Context, p *models.Principal, objectID, id string) (*models.BimModel, *storage.Blob, error) {
	model, err := s.authorized(ctx, p, access.ActionViewBimModel, objectID, id)
	if err != nil {
		return nil, nil, err
	}

	blob, err := s.blobs.Open(model.FilePath)
	if err != nil {
		return nil, nil, err
	}
	return model, blob, nil
}

func (s *bimService) SetVisibility(ctx context.Context, p *models.Principal, objectID, id string, visible bool) (*models.BimModel, error) {
	ref := access.Ref{Kind: access.KindBimModel, ID: id, ObjectID: objectID}
	if _, err := s.visibility.SetVisibility(ctx, p, ref, visible); err != nil {
		return nil, err
	}
	return s.resolver.BimModel(ctx, id, objectID)
}

func (s *bimService) GetTree(ctx context.Context, p *models.Principal, objectID, id string) (json.RawMessage, error) {
	model, err := s.authorized(ctx, p, access.ActionViewBimModel, objectID, id)
	if err != nil {
		return nil, err
	}
	if len(model.ParameterTree) == 0 {
		return nil, &domain.NotFoundError{Message: fmt.Sprintf("bim model %s has no parameter tree", id)}
	}
	return model.ParameterTree, nil
}

func (s *bimService) GenerateTree(ctx context.Context, p *models.Principal, objectID, id string) (json.RawMessage, error) {
	model, err := s.authorized(ctx, p, access.ActionGenerateBimTree, objectID, id)
	if err != nil {
		return nil, err
	}

	local, cleanup, err := s.blobs.LocalFile(model.FilePath)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	tree, err := s.generator.Generate(ctx, local)
	if err != nil {
		outcome := "failed"
		if errors.Is(err, bim.ErrNotConfigured) {
			outcome = "not_configured"
		}
		bimTreeGenerationsTotal.WithLabelValues(outcome).Inc()
		s.logger.Warn("bim tree generation failed", "model_id", model.ID, "error", err)
		return nil, err
	}

	if err := s.bimRepo.SaveParameterTree(ctx, model.ID, tree); err != nil {
		return nil, err
	}
	bimTreeGenerationsTotal.WithLabelValues("ok").Inc()

	s.logger.Info("bim tree generated",
		"model_id", model.ID,
		"tree_bytes", len(tree),
		"generated_by", p.ID,
	)
	return tree, nil
}

func (s *bimService) SaveTree(ctx context.Context, p *models.Principal, objectID, id string, req *services.SaveTreeRequest) (json.RawMessage, error) {
	model, err := s.authorized(ctx, p, access.ActionSaveBimTree, objectID, id)
	if err != nil {
		return nil, err
	}

	tree := json.RawMessage(strings.TrimSpace(string(req.ParameterTree)))
	if len(tree) == 0 || string(tree) == "null" || !json.Valid(tree) {
		return nil, fmt.Errorf("%w: parameter_tree: must be a JSON value", domain.ErrValidation)
	}

	if err := s.bimRepo.SaveParameterTree(ctx, model.ID, tree); err != nil {
		return nil, err
	}

	s.logger.Info("bim tree saved",
		"model_id", model.ID,
		"tree_bytes", len(tree),
		"saved_by", p.ID,
	)
	return tree, nil
}

func (s *bimService) authorized(ctx context.Context, p *models.Principal, action access.Action, objectID, id string) (*models.BimModel, error) {
	model, err := s.resolver.BimModel(ctx, id, objectID)
	if err != nil {
		return nil, err
	}
	if err := s.engine.Authorize(ctx, p, action, access.ForBimModel(model)); err != nil {
		return nil, err
	}
	return model, nil
}
