// Package seed creates demo data: one user per role, an object owned by the
// customer with the designer and builder assigned, and a free catalog item.
package seed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"buildportal/internal/domain"
	"buildportal/internal/domain/models"
	"buildportal/internal/domain/repositories"
	"buildportal/internal/storage"
)

// Demo user IDs. They double as JWT subjects in development.
const (
	AdminID    = "demo-admin"
	CustomerID = "demo-customer"
	DesignerID = "demo-designer"
	BuilderID  = "demo-builder"
)

// Repositories are the stores the seeder writes to
type Repositories struct {
	Users       repositories.UserRepository
	Objects     repositories.ObjectRepository
	Assignments repositories.AssignmentRepository
	Items       repositories.ItemRepository
}

// Seeder writes demo data. Running it twice leaves the data unchanged.
type Seeder struct {
	repos  Repositories
	blobs  *storage.BlobStore
	logger *slog.Logger
}

// NewSeeder creates a new seeder
func NewSeeder(repos Repositories, blobs *storage.BlobStore, logger *slog.Logger) *Seeder {
	return &Seeder{
		repos:  repos,
		blobs:  blobs,
		logger: logger,
	}
}

// Result lists what the seeder created or found
type Result struct {
	Users    []models.User
	ObjectID string
	ItemID   string
}

// Seed creates the demo data
func (s *Seeder) Seed(ctx context.Context) (*Result, error) {
	result := &Result{}

	for _, u := range demoUsers() {
		if err := s.repos.Users.Create(ctx, &u); err != nil && !errors.Is(err, domain.ErrConflict) {
			return nil, fmt.Errorf("seed user %s: %w", u.ID, err)
		}
		result.Users = append(result.Users, u)
	}

	objectID, err := s.seedObject(ctx)
	if err != nil {
		return nil, err
	}
	result.ObjectID = objectID

	for _, userID := range []string{DesignerID, BuilderID} {
		err := s.repos.Assignments.Create(ctx, &models.Assignment{UserID: userID, ObjectID: objectID})
		if err != nil && !errors.Is(err, domain.ErrConflict) {
			return nil, fmt.Errorf("seed assignment %s: %w", userID, err)
		}
	}

	itemID, err := s.seedItem(ctx)
	if err != nil {
		return nil, err
	}
	result.ItemID = itemID

	s.logger.Info("demo data seeded",
		"users", len(result.Users),
		"object_id", result.ObjectID,
		"item_id", result.ItemID,
	)
	return result, nil
}

func (s *Seeder) seedObject(ctx context.Context) (string, error) {
	existing, err := s.repos.Objects.ListByOwner(ctx, CustomerID)
	if err != nil {
		return "", fmt.Errorf("list demo objects: %w", err)
	}
	if len(existing) > 0 {
		return existing[0].ID, nil
	}

	description := "Two-storey family house with a detached garage"
	object := &models.Object{
		OwnerUserID: CustomerID,
		Title:       "Demo house",
		Address:     "1 Example Street",
		Description: &description,
	}
	if err := s.repos.Objects.Create(ctx, object); err != nil {
		return "", fmt.Errorf("seed object: %w", err)
	}
	return object.ID, nil
}

func (s *Seeder) seedItem(ctx context.Context) (string, error) {
	items, err := s.repos.Items.List(ctx)
	if err != nil {
		return "", fmt.Errorf("list items: %w", err)
	}
	for _, item := range items {
		if item.UploaderUserID == DesignerID {
			return item.ID, nil
		}
	}

	stored, err := s.blobs.Put("items", "checklist.txt", strings.NewReader(checklist))
	if err != nil {
		return "", fmt.Errorf("store demo item: %w", err)
	}

	description := "Free pre-handover inspection checklist"
	item := &models.DownloadableItem{
		Title:          "Handover checklist",
		Description:    &description,
		FilePath:       stored.Path,
		MimeType:       stored.MimeType,
		SizeBytes:      stored.Size,
		UploaderUserID: DesignerID,
	}
	if err := s.repos.Items.Create(ctx, item); err != nil {
		_ = s.blobs.Delete(stored.Path)
		return "", fmt.Errorf("seed item: %w", err)
	}
	return item.ID, nil
}

func demoUsers() []models.User {
	users := []struct {
		id   string
		role models.Role
	}{
		{AdminID, models.RoleAdmin},
		{CustomerID, models.RoleCustomer},
		{DesignerID, models.RoleDesigner},
		{BuilderID, models.RoleBuilder},
	}

	out := make([]models.User, 0, len(users))
	for _, u := range users {
		out = append(out, models.User{
			ID:     u.id,
			Email:  u.id + "@example.com",
			Role:   u.role,
			Status: models.UserStatusActive,
		})
	}
	return out
}

const checklist = `Handover checklist
- Doors and windows open, close and lock
- No visible cracks in plaster or tiles
- Meter readings recorded
`
