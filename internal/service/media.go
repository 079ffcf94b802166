package service

import (
	"context"
	"fmt"
	"log/slog"
	"path"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"buildportal/internal/access"
	"buildportal/internal/config"
	"buildportal/internal/domain"
	"buildportal/internal/domain/models"
	"buildportal/internal/domain/repositories"
	"buildportal/internal/domain/services"
	"buildportal/internal/storage"
)

type mediaService struct {
	mediaRepo  repositories.MediaRepository
	resolver   *access.OwnershipResolver
	engine     *access.Engine
	visibility *access.VisibilityManager
	blobs      *storage.BlobStore
	logger     *slog.Logger
}

// NewMediaService creates a new photo and video service
func NewMediaService(
	mediaRepo repositories.MediaRepository,
	resolver *access.OwnershipResolver,
	engine *access.Engine,
	visibility *access.VisibilityManager,
	blobs *storage.BlobStore,
	logger *slog.Logger,
) services.MediaService {
	return &mediaService{
		mediaRepo:  mediaRepo,
		resolver:   resolver,
		engine:     engine,
		visibility: visibility,
		blobs:      blobs,
		logger:     logger,
	}
}

// ListMedia lists the object's files and drops those the caller may not
// view, e.g. hidden files for the owning customer
func (s *mediaService) ListMedia(ctx context.Context, p *models.Principal, kind models.MediaKind, objectID string) ([]models.MediaFile, error) {
	object, err := s.resolver.Object(ctx, objectID)
	if err != nil {
		return nil, err
	}
	if err := s.engine.Authorize(ctx, p, access.ActionViewObject, access.ForObject(object)); err != nil {
		return nil, err
	}

	files, err := s.mediaRepo.ListByObject(ctx, kind, object.ID)
	if err != nil {
		return nil, err
	}
	return access.Filter(ctx, s.engine, p, viewMediaAction(kind), files, access.ForMedia)
}

func (s *mediaService) Upload(ctx context.Context, p *models.Principal, req *services.UploadMediaRequest) (*models.MediaFile, error) {
	object, err := s.resolver.Object(ctx, req.ObjectID)
	if err != nil {
		return nil, err
	}
	if err := s.engine.Authorize(ctx, p, uploadMediaAction(req.Kind), access.ForObject(object)); err != nil {
		return nil, err
	}

	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		req.Title = strings.TrimSuffix(path.Base(req.File.Filename), path.Ext(req.File.Filename))
	}
	if err := validation.Validate(req.Title, validation.Required, validation.Length(1, config.MaxTitleLength)); err != nil {
		return nil, fmt.Errorf("%w: title: %v", domain.ErrValidation, err)
	}

	folderID := emptyToNil(req.FolderID)
	if folderID != nil {
		folder, err := s.resolver.Folder(ctx, *folderID, object.ID)
		if err != nil {
			return nil, notFoundAsValidation("folder_id", err)
		}
		if err := s.engine.Authorize(ctx, p, access.ActionManageFolder, access.ForFolder(folder)); err != nil {
			return nil, err
		}
	}

	stored, err := s.blobs.Put(path.Join("objects", object.ID, string(req.Kind)+"s"), req.File.Filename, req.File.Body)
	if err != nil {
		return nil, err
	}
	if !strings.HasPrefix(stored.MimeType, expectedMimePrefix(req.Kind)) {
		s.discard(stored.Path)
		return nil, fmt.Errorf("%w: file: %s is not a %s", domain.ErrValidation, stored.MimeType, req.Kind)
	}

	media := &models.MediaFile{
		Kind:                req.Kind,
		ObjectID:            object.ID,
		ObjectOwnerID:       object.OwnerUserID,
		FolderID:            folderID,
		UploaderUserID:      p.ID,
		Title:               req.Title,
		FilePath:            stored.Path,
		MimeType:            stored.MimeType,
		SizeBytes:           stored.Size,
		IsVisibleToCustomer: true,
	}
	if err := s.mediaRepo.Create(ctx, media); err != nil {
		s.discard(stored.Path)
		return nil, err
	}
	uploadedBytesTotal.WithLabelValues(string(req.Kind)).Add(float64(stored.Size))

	s.logger.Info("media uploaded",
		"kind", media.Kind,
		"id", media.ID,
		"object_id", media.ObjectID,
		"size_bytes", media.SizeBytes,
		"uploaded_by", p.ID,
	)
	return media, nil
}

// Open opens the bytes only after the view was allowed
func (s *mediaService) Open(ctx context.Context, p *models.Principal, kind models.MediaKind, objectID, id string) (*models.MediaFile, *storage.Blob, error) {
	media, err := s.resolver.Media(ctx, kind, id, objectID)
	if err != nil {
		return nil, nil, err
	}
	if err := s.engine.Authorize(ctx, p, viewMediaAction(kind), access.ForMedia(media)); err != nil {
		return nil, nil, err
	}

	blob, err := s.blobs.Open(media.FilePath)
	if err != nil {
		return nil, nil, err
	}
	return media, blob, nil
}

func (s *mediaService) SetVisibility(ctx context.Context, p *models.Principal, kind models.MediaKind, objectID, id string, visible bool) (*models.MediaFile, error) {
	ref := access.Ref{Kind: mediaRefKind(kind), ID: id, ObjectID: objectID}
	if _, err := s.visibility.SetVisibility(ctx, p, ref, visible); err != nil {
		return nil, err
	}

	media, err := s.resolver.Media(ctx, kind, id, objectID)
	if err != nil {
		return nil, err
	}
	return media, nil
}

func (s *mediaService) MoveToFolder(ctx context.Context, p *models.Principal, kind models.MediaKind, objectID, id string, folderID *string) (*models.MediaFile, error) {
	media, err := s.resolver.Media(ctx, kind, id, objectID)
	if err != nil {
		return nil, err
	}
	if err := s.engine.Authorize(ctx, p, access.ActionManageFolder, access.ForMedia(media)); err != nil {
		return nil, err
	}

	folderID = emptyToNil(folderID)
	if folderID != nil {
		folder, err := s.resolver.Folder(ctx, *folderID, media.ObjectID)
		if err != nil {
			return nil, notFoundAsValidation("folder_id", err)
		}
		if err := s.engine.Authorize(ctx, p, access.ActionManageFolder, access.ForFolder(folder)); err != nil {
			return nil, err
		}
	}

	if err := s.mediaRepo.SetFolder(ctx, kind, media.ID, folderID); err != nil {
		return nil, err
	}
	media.FolderID = folderID

	s.logger.Info("media moved",
		"kind", kind,
		"id", media.ID,
		"folder_id", folderID,
		"moved_by", p.ID,
	)
	return media, nil
}

// discard removes a blob whose metadata was never written
func (s *mediaService) discard(p string) {
	if err := s.blobs.Delete(p); err != nil {
		s.logger.Warn("failed to remove orphaned blob", "path", p, "error", err)
	}
}

func expectedMimePrefix(kind models.MediaKind) string {
	if kind == models.MediaKindVideo {
		return "video/"
	}
	return "image/"
}
