package access

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"buildportal/internal/domain/models"
	"buildportal/internal/repository/memory"
)

// fixture is a small portal: customer 5 owns object 10 with photo 77,
// designer 9 is not assigned, builder 8 is assigned
type fixture struct {
	store    *memory.Store
	engine   *Engine
	resolver *OwnershipResolver

	customer      *models.Principal
	otherCustomer *models.Principal
	designer      *models.Principal
	builder       *models.Principal
	admin         *models.Principal

	object *models.Object
	photo  *models.MediaFile
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()

	table, err := NewCapabilityTable()
	if err != nil {
		t.Fatalf("NewCapabilityTable() error = %v", err)
	}

	store := memory.NewStore()
	f := &fixture{
		store:         store,
		engine:        NewEngine(table, store.Assignments(), discardLogger()),
		resolver:      newResolver(store),
		customer:      principal("user-5", models.RoleCustomer),
		otherCustomer: principal("user-6", models.RoleCustomer),
		designer:      principal("user-9", models.RoleDesigner),
		builder:       principal("user-8", models.RoleBuilder),
		admin:         principal("user-1", models.RoleAdmin),
	}

	f.object = &models.Object{ID: "object-10", OwnerUserID: f.customer.ID, Title: "House", Address: "Main st 1"}
	if err := store.Objects().Create(ctx, f.object); err != nil {
		t.Fatalf("create object: %v", err)
	}
	f.photo = &models.MediaFile{
		ID:             "photo-77",
		Kind:           models.MediaKindPhoto,
		ObjectID:       f.object.ID,
		UploaderUserID: f.builder.ID,
		Title:          "foundation",
	}
	if err := store.Media().Create(ctx, f.photo); err != nil {
		t.Fatalf("create photo: %v", err)
	}
	f.photo.ObjectOwnerID = f.customer.ID

	if err := store.Assignments().Create(ctx, &models.Assignment{UserID: f.builder.ID, ObjectID: f.object.ID}); err != nil {
		t.Fatalf("create assignment: %v", err)
	}

	return f
}

func newResolver(store *memory.Store) *OwnershipResolver {
	return NewOwnershipResolver(
		store.Objects(),
		store.Media(),
		store.BimModels(),
		store.Comments(),
		store.Folders(),
		store.Items(),
		store.Portfolio(),
	)
}

func principal(id string, role models.Role) *models.Principal {
	return &models.Principal{ID: id, Email: id + "@example.com", Role: role, Status: models.UserStatusActive}
}

func (f *fixture) assign(t *testing.T, p *models.Principal) {
	t.Helper()
	if err := f.store.Assignments().Create(context.Background(), &models.Assignment{UserID: p.ID, ObjectID: f.object.ID}); err != nil {
		t.Fatalf("assign %s: %v", p.ID, err)
	}
}

func (f *fixture) decide(t *testing.T, p *models.Principal, action Action, res *Resource) Decision {
	t.Helper()
	d, err := f.engine.Decide(context.Background(), p, action, res)
	if err != nil {
		t.Fatalf("Decide(%s, %s) error = %v", p.ID, action, err)
	}
	return d
}
