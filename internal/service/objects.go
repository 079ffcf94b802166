package service

import (
	"context"
	"errors"
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

type objectService struct {
	objectRepo     repositories.ObjectRepository
	assignmentRepo repositories.AssignmentRepository
	userRepo       repositories.UserRepository
	engine         *access.Engine
	logger         *slog.Logger
}

// NewObjectService creates a new object service
func NewObjectService(
	objectRepo repositories.ObjectRepository,
	assignmentRepo repositories.AssignmentRepository,
	userRepo repositories.UserRepository,
	engine *access.Engine,
	logger *slog.Logger,
) services.ObjectService {
	return &objectService{
		objectRepo:     objectRepo,
		assignmentRepo: assignmentRepo,
		userRepo:       userRepo,
		engine:         engine,
		logger:         logger,
	}
}

// ListObjects narrows the query by role first and then runs every row
// through the engine, so the listing never disagrees with GetObject
func (s *objectService) ListObjects(ctx context.Context, p *models.Principal) ([]models.Object, error) {
	if p == nil {
		return nil, domain.ErrUnauthorized
	}

	var (
		objects []models.Object
		err     error
	)
	switch p.Role {
	case models.RoleAdmin:
		objects, err = s.objectRepo.ListAll(ctx)
	case models.RoleCustomer:
		objects, err = s.objectRepo.ListByOwner(ctx, p.ID)
	case models.RoleDesigner, models.RoleBuilder:
		objects, err = s.objectRepo.ListAssigned(ctx, p.ID)
	default:
		return []models.Object{}, nil
	}
	if err != nil {
		return nil, err
	}

	return access.Filter(ctx, s.engine, p, access.ActionViewObject, objects, access.ForObject)
}

func (s *objectService) CreateObject(ctx context.Context, p *models.Principal, req *services.CreateObjectRequest) (*models.Object, error) {
	if p == nil {
		return nil, domain.ErrUnauthorized
	}

	ownerID := p.ID
	if p.Role == models.RoleAdmin {
		ownerID = strings.TrimSpace(req.OwnerUserID)
	}
	if err := s.engine.Authorize(ctx, p, access.ActionCreateObject, access.NewObject(ownerID)); err != nil {
		return nil, err
	}

	req.Title = strings.TrimSpace(req.Title)
	req.Address = strings.TrimSpace(req.Address)
	req.Description = emptyToNil(req.Description)
	if err := s.validateCreateRequest(req, ownerID); err != nil {
		return nil, validationError(err)
	}

	if ownerID != p.ID {
		owner, err := s.userRepo.GetByID(ctx, ownerID)
		if err != nil {
			return nil, notFoundAsValidation("owner_user_id", err)
		}
		if owner.Role != models.RoleCustomer {
			return nil, fmt.Errorf("%w: owner_user_id: objects are owned by customers", domain.ErrValidation)
		}
	}

	object := &models.Object{
		OwnerUserID: ownerID,
		Title:       req.Title,
		Address:     req.Address,
		Description: req.Description,
	}
	if err := s.objectRepo.Create(ctx, object); err != nil {
		return nil, err
	}

	s.logger.Info("object created",
		"id", object.ID,
		"owner_user_id", object.OwnerUserID,
		"created_by", p.ID,
	)
	return object, nil
}

func (s *objectService) GetObject(ctx context.Context, p *models.Principal, id string) (*models.Object, error) {
	object, err := s.objectRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.engine.Authorize(ctx, p, access.ActionViewObject, access.ForObject(object)); err != nil {
		return nil, err
	}
	return object, nil
}

func (s *objectService) UpdateObject(ctx context.Context, p *models.Principal, id string, req *services.UpdateObjectRequest) (*models.Object, error) {
	object, err := s.objectRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.engine.Authorize(ctx, p, access.ActionUpdateObject, access.ForObject(object)); err != nil {
		return nil, err
	}

	if req.Title != nil {
		object.Title = strings.TrimSpace(*req.Title)
	}
	if req.Address != nil {
		object.Address = strings.TrimSpace(*req.Address)
	}
	if req.Description.Present {
		object.Description = emptyToNil(req.Description.Value)
	}

	err = validation.ValidateStruct(object,
		validation.Field(&object.Title, validation.Required, validation.Length(1, config.MaxTitleLength)),
		validation.Field(&object.Address, validation.Required, validation.Length(1, config.MaxAddressLength)),
		validation.Field(&object.Description, validation.Length(0, config.MaxDescriptionLength)),
	)
	if err != nil {
		return nil, validationError(err)
	}

	if err := s.objectRepo.Update(ctx, object); err != nil {
		return nil, err
	}

	s.logger.Info("object updated", "id", object.ID, "updated_by", p.ID)
	return object, nil
}

func (s *objectService) Assign(ctx context.Context, p *models.Principal, objectID string, req *services.CreateAssignmentRequest) (*models.Assignment, error) {
	object, err := s.objectRepo.GetByID(ctx, objectID)
	if err != nil {
		return nil, err
	}
	if err := s.engine.Authorize(ctx, p, access.ActionManageAssignments, access.ForObject(object)); err != nil {
		return nil, err
	}

	req.UserID = strings.TrimSpace(req.UserID)
	if err := validation.Validate(req.UserID, validation.Required); err != nil {
		return nil, fmt.Errorf("%w: user_id: %v", domain.ErrValidation, err)
	}

	user, err := s.userRepo.GetByID(ctx, req.UserID)
	if err != nil {
		return nil, notFoundAsValidation("user_id", err)
	}
	if user.Role != models.RoleDesigner && user.Role != models.RoleBuilder {
		return nil, fmt.Errorf("%w: user_id: only designers and builders can be assigned", domain.ErrValidation)
	}

	assignment := &models.Assignment{UserID: user.ID, ObjectID: object.ID}
	if err := s.assignmentRepo.Create(ctx, assignment); err != nil {
		return nil, err
	}

	s.logger.Info("assignment created",
		"object_id", object.ID,
		"user_id", user.ID,
		"role", user.Role,
		"assigned_by", p.ID,
	)
	return assignment, nil
}

func (s *objectService) Unassign(ctx context.Context, p *models.Principal, objectID, userID string) error {
	object, err := s.objectRepo.GetByID(ctx, objectID)
	if err != nil {
		return err
	}
	if err := s.engine.Authorize(ctx, p, access.ActionManageAssignments, access.ForObject(object)); err != nil {
		return err
	}

	if err := s.assignmentRepo.Delete(ctx, userID, object.ID); err != nil {
		return err
	}

	s.logger.Info("assignment removed",
		"object_id", object.ID,
		"user_id", userID,
		"removed_by", p.ID,
	)
	return nil
}

func (s *objectService) validateCreateRequest(req *services.CreateObjectRequest, ownerID string) error {
	if ownerID == "" {
		return errors.New("owner_user_id: cannot be blank")
	}
	return validation.ValidateStruct(req,
		validation.Field(&req.Title, validation.Required, validation.Length(1, config.MaxTitleLength)),
		validation.Field(&req.Address, validation.Required, validation.Length(1, config.MaxAddressLength)),
		validation.Field(&req.Description, validation.Length(0, config.MaxDescriptionLength)),
	)
}
