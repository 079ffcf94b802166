package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"buildportal/internal/access"
	"buildportal/internal/config"
	"buildportal/internal/domain"
	"buildportal/internal/domain/models"
	"buildportal/internal/domain/repositories"
	"buildportal/internal/domain/services"
)

type commentService struct {
	commentRepo repositories.CommentRepository
	resolver    *access.OwnershipResolver
	engine      *access.Engine
	visibility  *access.VisibilityManager
	logger      *slog.Logger
}

// NewCommentService creates a new comment service
func NewCommentService(
	commentRepo repositories.CommentRepository,
	resolver *access.OwnershipResolver,
	engine *access.Engine,
	visibility *access.VisibilityManager,
	logger *slog.Logger,
) services.CommentService {
	return &commentService{
		commentRepo: commentRepo,
		resolver:    resolver,
		engine:      engine,
		visibility:  visibility,
		logger:      logger,
	}
}

// parent resolves and authorizes a view of the resource being commented on
func (s *commentService) parent(ctx context.Context, p *models.Principal, objectID string, kind models.CommentParentKind, id string) (*access.Resource, error) {
	var (
		res    *access.Resource
		action access.Action
	)
	switch kind {
	case models.CommentParentPhoto:
		photo, err := s.resolver.Media(ctx, models.MediaKindPhoto, id, objectID)
		if err != nil {
			return nil, err
		}
		res, action = access.ForMedia(photo), access.ActionViewPhoto
	case models.CommentParentBimModel:
		model, err := s.resolver.BimModel(ctx, id, objectID)
		if err != nil {
			return nil, err
		}
		res, action = access.ForBimModel(model), access.ActionViewBimModel
	default:
		return nil, fmt.Errorf("%w: comments attach to photos or bim models, not %q", domain.ErrValidation, kind)
	}

	if err := s.engine.Authorize(ctx, p, action, res); err != nil {
		return nil, err
	}
	return res, nil
}

func (s *commentService) ListComments(ctx context.Context, p *models.Principal, objectID string, kind models.CommentParentKind, parentID string) ([]models.Comment, error) {
	parent, err := s.parent(ctx, p, objectID, kind, parentID)
	if err != nil {
		return nil, err
	}

	comments, err := s.commentRepo.ListByParent(ctx, kind, parent.ID)
	if err != nil {
		return nil, err
	}
	for i := range comments {
		comments[i].ObjectID = parent.ObjectID
		comments[i].ObjectOwnerID = parent.OwnerUserID
	}
	return access.Filter(ctx, s.engine, p, access.ActionViewComment, comments, access.ForComment)
}

func (s *commentService) CreateComment(ctx context.Context, p *models.Principal, req *services.CreateCommentRequest) (*models.Comment, error) {
	parent, err := s.parent(ctx, p, req.ObjectID, req.ParentKind, req.ParentID)
	if err != nil {
		return nil, err
	}
	if err := s.engine.Authorize(ctx, p, access.ActionCreateComment, parent); err != nil {
		return nil, err
	}

	req.Body = strings.TrimSpace(req.Body)
	if err := validation.Validate(req.Body, validation.Required, validation.Length(1, config.MaxCommentLength)); err != nil {
		return nil, fmt.Errorf("%w: body: %v", domain.ErrValidation, err)
	}

	comment := &models.Comment{
		ParentKind:          req.ParentKind,
		ParentID:            parent.ID,
		AuthorUserID:        p.ID,
		Body:                req.Body,
		IsVisibleToCustomer: true,
		ObjectID:            parent.ObjectID,
		ObjectOwnerID:       parent.OwnerUserID,
	}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, err
	}

	s.logger.Info("comment created",
		"id", comment.ID,
		"parent_kind", comment.ParentKind,
		"parent_id", comment.ParentID,
		"author_user_id", p.ID,
	)
	return comment, nil
}

func (s *commentService) DeleteComment(ctx context.Context, p *models.Principal, id string) error {
	comment, err := s.resolver.Comment(ctx, id)
	if err != nil {
		return err
	}
	if err := s.engine.Authorize(ctx, p, access.ActionDeleteComment, access.ForComment(comment)); err != nil {
		return err
	}

	if err := s.commentRepo.Delete(ctx, comment.ID); err != nil {
		return err
	}

	s.logger.Info("comment deleted", "id", comment.ID, "deleted_by", p.ID)
	return nil
}

func (s *commentService) SetVisibility(ctx context.Context, p *models.Principal, id string, visible bool) (*models.Comment, error) {
	if _, err := s.visibility.SetVisibility(ctx, p, access.Ref{Kind: access.KindComment, ID: id}, visible); err != nil {
		return nil, err
	}
	return s.resolver.Comment(ctx, id)
}
