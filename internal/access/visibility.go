package access

import (
	"context"
	"fmt"
	"log/slog"

	"buildportal/internal/domain"
	"buildportal/internal/domain/models"
	"buildportal/internal/domain/repositories"
)

// VisibilityManager flips the customer-visibility flag of photos, videos,
// BIM models and comments, subject to the engine
type VisibilityManager struct {
	engine      *Engine
	resolver    *OwnershipResolver
	mediaRepo   repositories.MediaRepository
	bimRepo     repositories.BimModelRepository
	commentRepo repositories.CommentRepository
	txManager   repositories.TransactionManager
	logger      *slog.Logger
}

// NewVisibilityManager creates a visibility toggle manager
func NewVisibilityManager(
	engine *Engine,
	resolver *OwnershipResolver,
	mediaRepo repositories.MediaRepository,
	bimRepo repositories.BimModelRepository,
	commentRepo repositories.CommentRepository,
	txManager repositories.TransactionManager,
	logger *slog.Logger,
) *VisibilityManager {
	return &VisibilityManager{
		engine:      engine,
		resolver:    resolver,
		mediaRepo:   mediaRepo,
		bimRepo:     bimRepo,
		commentRepo: commentRepo,
		txManager:   txManager,
		logger:      logger,
	}
}

// SetVisibility authorizes and persists the flag, returning the updated
// resource. Comments go through the author-restricted action, everything
// else through toggle_resource_visibility. Setting the current value again
// succeeds and changes nothing.
func (m *VisibilityManager) SetVisibility(ctx context.Context, p *models.Principal, ref Ref, visible bool) (*Resource, error) {
	action := ActionToggleResourceVisibility
	switch ref.Kind {
	case KindPhoto, KindVideo, KindBimModel:
	case KindComment:
		action = ActionToggleCommentVisibility
	default:
		return nil, fmt.Errorf("%w: %s has no visibility flag", domain.ErrValidation, ref.Kind)
	}

	var updated *Resource
	err := m.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		res, err := m.resolver.Resolve(txCtx, ref)
		if err != nil {
			return err
		}
		if err := m.engine.Authorize(txCtx, p, action, res); err != nil {
			return err
		}

		if res.VisibleToCustomer != visible {
			if err := m.write(txCtx, res, visible); err != nil {
				return err
			}
		}

		res.VisibleToCustomer = visible
		updated = res
		return nil
	})
	if err != nil {
		return nil, err
	}

	m.logger.Info("visibility changed",
		"kind", updated.Kind,
		"id", updated.ID,
		"visible", visible,
		"user_id", p.ID,
	)
	return updated, nil
}

func (m *VisibilityManager) write(ctx context.Context, res *Resource, visible bool) error {
	switch res.Kind {
	case KindPhoto, KindVideo:
		return m.mediaRepo.SetVisibility(ctx, mediaKind(res.Kind), res.ID, visible)
	case KindBimModel:
		return m.bimRepo.SetVisibility(ctx, res.ID, visible)
	case KindComment:
		return m.commentRepo.SetVisibility(ctx, res.ID, visible)
	}
	return fmt.Errorf("%w: %s has no visibility flag", domain.ErrValidation, res.Kind)
}
