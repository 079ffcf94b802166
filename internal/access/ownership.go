package access

import (
	"context"
	"fmt"

	"buildportal/internal/domain"
	"buildportal/internal/domain/models"
	"buildportal/internal/domain/repositories"
)

// OwnershipResolver loads resources together with their ownership chain.
// Nothing is cached: assignments and flags can change between requests.
type OwnershipResolver struct {
	objectRepo    repositories.ObjectRepository
	mediaRepo     repositories.MediaRepository
	bimRepo       repositories.BimModelRepository
	commentRepo   repositories.CommentRepository
	folderRepo    repositories.FolderRepository
	itemRepo      repositories.ItemRepository
	portfolioRepo repositories.PortfolioRepository
}

// NewOwnershipResolver creates a resolver over the given repositories
func NewOwnershipResolver(
	objectRepo repositories.ObjectRepository,
	mediaRepo repositories.MediaRepository,
	bimRepo repositories.BimModelRepository,
	commentRepo repositories.CommentRepository,
	folderRepo repositories.FolderRepository,
	itemRepo repositories.ItemRepository,
	portfolioRepo repositories.PortfolioRepository,
) *OwnershipResolver {
	return &OwnershipResolver{
		objectRepo:    objectRepo,
		mediaRepo:     mediaRepo,
		bimRepo:       bimRepo,
		commentRepo:   commentRepo,
		folderRepo:    folderRepo,
		itemRepo:      itemRepo,
		portfolioRepo: portfolioRepo,
	}
}

// Resolve loads any resource by reference
func (r *OwnershipResolver) Resolve(ctx context.Context, ref Ref) (*Resource, error) {
	switch ref.Kind {
	case KindObject:
		o, err := r.Object(ctx, ref.ID)
		if err != nil {
			return nil, err
		}
		return ForObject(o), nil
	case KindPhoto, KindVideo:
		m, err := r.Media(ctx, mediaKind(ref.Kind), ref.ID, ref.ObjectID)
		if err != nil {
			return nil, err
		}
		return ForMedia(m), nil
	case KindBimModel:
		b, err := r.BimModel(ctx, ref.ID, ref.ObjectID)
		if err != nil {
			return nil, err
		}
		return ForBimModel(b), nil
	case KindComment:
		c, err := r.Comment(ctx, ref.ID)
		if err != nil {
			return nil, err
		}
		if err := sameObject(ref.ObjectID, c.ObjectID, "comment", c.ID); err != nil {
			return nil, err
		}
		return ForComment(c), nil
	case KindFolder:
		f, err := r.Folder(ctx, ref.ID, ref.ObjectID)
		if err != nil {
			return nil, err
		}
		return ForFolder(f), nil
	case KindItem:
		i, err := r.Item(ctx, ref.ID)
		if err != nil {
			return nil, err
		}
		return ForItem(i), nil
	case KindPortfolio:
		p, err := r.Portfolio(ctx, ref.ID)
		if err != nil {
			return nil, err
		}
		return ForPortfolio(p), nil
	}
	return nil, fmt.Errorf("%s %s: %w", ref.Kind, ref.ID, domain.ErrNotFound)
}

// Object loads an object; it is its own ownership chain
func (r *OwnershipResolver) Object(ctx context.Context, id string) (*models.Object, error) {
	return r.objectRepo.GetByID(ctx, id)
}

// Media loads a photo or video. A non-empty objectID must match the file's object.
func (r *OwnershipResolver) Media(ctx context.Context, kind models.MediaKind, id, objectID string) (*models.MediaFile, error) {
	m, err := r.mediaRepo.GetByID(ctx, kind, id)
	if err != nil {
		return nil, err
	}
	if err := sameObject(objectID, m.ObjectID, string(kind), id); err != nil {
		return nil, err
	}
	return m, nil
}

// BimModel loads a BIM model. A non-empty objectID must match the model's object.
func (r *OwnershipResolver) BimModel(ctx context.Context, id, objectID string) (*models.BimModel, error) {
	b, err := r.bimRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := sameObject(objectID, b.ObjectID, "bim model", id); err != nil {
		return nil, err
	}
	return b, nil
}

// Comment loads a comment with the chain of its parent. A comment whose
// parent no longer resolves has no chain and is reported as not found.
func (r *OwnershipResolver) Comment(ctx context.Context, id string) (*models.Comment, error) {
	c, err := r.commentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c.ObjectID == "" || c.ObjectOwnerID == "" {
		return nil, fmt.Errorf("comment %s parent: %w", id, domain.ErrNotFound)
	}
	return c, nil
}

// Folder loads a folder. A non-empty objectID must match the folder's object.
func (r *OwnershipResolver) Folder(ctx context.Context, id, objectID string) (*models.Folder, error) {
	f, err := r.folderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := sameObject(objectID, f.ObjectID, "folder", id); err != nil {
		return nil, err
	}
	return f, nil
}

// Item loads a downloadable item (no chain)
func (r *OwnershipResolver) Item(ctx context.Context, id string) (*models.DownloadableItem, error) {
	return r.itemRepo.GetByID(ctx, id)
}

// Portfolio loads a portfolio item (no chain)
func (r *OwnershipResolver) Portfolio(ctx context.Context, id string) (*models.PortfolioItem, error) {
	return r.portfolioRepo.GetByID(ctx, id)
}

// sameObject rejects cross-object references as not found so an unrelated
// object's route cannot be used to probe for resource existence
func sameObject(expected, actual, kind, id string) error {
	if expected != "" && expected != actual {
		return fmt.Errorf("%s %s: %w", kind, id, domain.ErrNotFound)
	}
	return nil
}

func mediaKind(k Kind) models.MediaKind {
	if k == KindVideo {
		return models.MediaKindVideo
	}
	return models.MediaKindPhoto
}
