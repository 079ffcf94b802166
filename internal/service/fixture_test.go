package service

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/spf13/afero"

	"buildportal/internal/access"
	"buildportal/internal/domain"
	"buildportal/internal/domain/models"
	"buildportal/internal/domain/services"
	"buildportal/internal/repository/memory"
	"buildportal/internal/storage"
)

// pngBytes is enough of a PNG for content sniffing
const pngBytes = "\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"

// fixture: customer-5 owns object-10, builder-8 is assigned to it,
// designer-9 is assigned too, designer-7 is not, customer-6 owns nothing
type fixture struct {
	store *memory.Store
	blobs *storage.BlobStore

	users     services.UserService
	objects   services.ObjectService
	folders   services.FolderService
	media     services.MediaService
	bim       services.BimService
	comments  services.CommentService
	catalog   services.CatalogService
	portfolio services.PortfolioService

	generator *fakeGenerator

	customer      *models.Principal
	otherCustomer *models.Principal
	builder       *models.Principal
	designer      *models.Principal
	outsider      *models.Principal
	admin         *models.Principal

	object *models.Object
}

type fakeGenerator struct {
	tree  json.RawMessage
	err   error
	paths []string
}

func (g *fakeGenerator) Generate(ctx context.Context, localPath string) (json.RawMessage, error) {
	g.paths = append(g.paths, localPath)
	return g.tree, g.err
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	logger := discardLogger()

	table, err := access.NewCapabilityTable()
	if err != nil {
		t.Fatalf("NewCapabilityTable() error = %v", err)
	}

	store := memory.NewStore()
	blobs := storage.NewBlobStore(afero.NewMemMapFs())
	engine := access.NewEngine(table, store.Assignments(), logger)
	resolver := access.NewOwnershipResolver(
		store.Objects(), store.Media(), store.BimModels(), store.Comments(),
		store.Folders(), store.Items(), store.Portfolio(),
	)
	visibility := access.NewVisibilityManager(engine, resolver, store.Media(), store.BimModels(), store.Comments(), store.TxManager(), logger)
	gate := access.NewEntitlementGate(store.Purchases())
	generator := &fakeGenerator{tree: json.RawMessage(`{"IfcProject":{}}`)}

	f := &fixture{
		store:     store,
		blobs:     blobs,
		users:     NewUserService(store.Users(), engine, logger),
		objects:   NewObjectService(store.Objects(), store.Assignments(), store.Users(), engine, logger),
		folders:   NewFolderService(store.Folders(), resolver, engine, logger),
		media:     NewMediaService(store.Media(), resolver, engine, visibility, blobs, logger),
		bim:       NewBimService(store.BimModels(), resolver, engine, visibility, blobs, generator, logger),
		comments:  NewCommentService(store.Comments(), resolver, engine, visibility, logger),
		catalog:   NewCatalogService(store.Items(), store.Purchases(), store.Users(), engine, gate, blobs, logger),
		portfolio: NewPortfolioService(store.Portfolio(), engine, blobs, logger),
		generator: generator,
	}

	f.customer = f.addUser(t, "customer-5", models.RoleCustomer)
	f.otherCustomer = f.addUser(t, "customer-6", models.RoleCustomer)
	f.builder = f.addUser(t, "builder-8", models.RoleBuilder)
	f.designer = f.addUser(t, "designer-9", models.RoleDesigner)
	f.outsider = f.addUser(t, "designer-7", models.RoleDesigner)
	f.admin = f.addUser(t, "admin-1", models.RoleAdmin)

	f.object = &models.Object{ID: "object-10", OwnerUserID: f.customer.ID, Title: "House", Address: "Main st 1"}
	if err := store.Objects().Create(ctx, f.object); err != nil {
		t.Fatalf("create object: %v", err)
	}
	for _, p := range []*models.Principal{f.builder, f.designer} {
		if err := store.Assignments().Create(ctx, &models.Assignment{UserID: p.ID, ObjectID: f.object.ID}); err != nil {
			t.Fatalf("assign %s: %v", p.ID, err)
		}
	}
	return f
}

func (f *fixture) addUser(t *testing.T, id string, role models.Role) *models.Principal {
	t.Helper()
	u := &models.User{ID: id, Email: id + "@example.com", Role: role, Status: models.UserStatusActive}
	if err := f.store.Users().Create(context.Background(), u); err != nil {
		t.Fatalf("create user %s: %v", id, err)
	}
	return models.PrincipalFromUser(u)
}

func (f *fixture) uploadPhoto(t *testing.T, p *models.Principal) *models.MediaFile {
	t.Helper()
	photo, err := f.media.Upload(context.Background(), p, &services.UploadMediaRequest{
		ObjectID: f.object.ID,
		Kind:     models.MediaKindPhoto,
		Title:    "foundation",
		File:     services.Upload{Filename: "foundation.png", Body: strings.NewReader(pngBytes)},
	})
	if err != nil {
		t.Fatalf("upload photo: %v", err)
	}
	return photo
}

func (f *fixture) uploadModel(t *testing.T, p *models.Principal) *models.BimModel {
	t.Helper()
	model, err := f.bim.Upload(context.Background(), p, &services.UploadBimModelRequest{
		ObjectID: f.object.ID,
		Title:    "house",
		File:     services.Upload{Filename: "house.ifc", Body: strings.NewReader("ISO-10303-21;")},
	})
	if err != nil {
		t.Fatalf("upload model: %v", err)
	}
	return model
}

func wantReason(t *testing.T, err error, reason access.Reason) {
	t.Helper()
	var forbidden *domain.ForbiddenError
	if !errors.As(err, &forbidden) {
		t.Fatalf("error = %v, want ForbiddenError(%s)", err, reason)
	}
	if forbidden.Reason != string(reason) {
		t.Errorf("reason = %q, want %q", forbidden.Reason, reason)
	}
}

func wantErr(t *testing.T, err, target error) {
	t.Helper()
	if !errors.Is(err, target) {
		t.Fatalf("error = %v, want %v", err, target)
	}
}
