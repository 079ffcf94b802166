package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/spf13/afero"

	"buildportal/internal/access"
	"buildportal/internal/auth"
	"buildportal/internal/bim"
	"buildportal/internal/domain"
	"buildportal/internal/domain/models"
	"buildportal/internal/middleware"
	"buildportal/internal/repository/memory"
	"buildportal/internal/service"
	"buildportal/internal/storage"
)

const (
	webhookSecret = "shh"
	pngBytes      = "\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"
)

// subjectVerifier accepts any non-empty token as its own subject
type subjectVerifier struct{}

func (subjectVerifier) VerifyToken(token string) (*models.PortalClaims, error) {
	if token == "bad" {
		return nil, domain.ErrUnauthorized
	}
	return &models.PortalClaims{RegisteredClaims: jwt.RegisteredClaims{Subject: token}}, nil
}

func (subjectVerifier) Close() error { return nil }

type stubGenerator struct {
	tree json.RawMessage
	err  error
}

func (g *stubGenerator) Generate(ctx context.Context, localPath string) (json.RawMessage, error) {
	return g.tree, g.err
}

type server struct {
	store     *memory.Store
	handler   http.Handler
	generator *stubGenerator
	object    *models.Object
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newServer wires the full stack on the memory store: customer-5 owns
// object-10, builder-8 is assigned to it, designer-7 is not
func newServer(t *testing.T) *server {
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
	generator := &stubGenerator{err: bim.ErrNotConfigured}

	media := service.NewMediaService(store.Media(), resolver, engine, visibility, blobs, logger)
	catalog := service.NewCatalogService(store.Items(), store.Purchases(), store.Users(), engine, gate, blobs, logger)
	const maxUpload = 1 << 20

	routes := &Routes{
		Health:    NewHealthHandler(nil),
		Users:     NewUserHandler(service.NewUserService(store.Users(), engine, logger), logger),
		Objects:   NewObjectHandler(service.NewObjectService(store.Objects(), store.Assignments(), store.Users(), engine, logger), logger),
		Folders:   NewFolderHandler(service.NewFolderService(store.Folders(), resolver, engine, logger), logger),
		Photos:    NewMediaHandler(models.MediaKindPhoto, media, maxUpload, logger),
		Videos:    NewMediaHandler(models.MediaKindVideo, media, maxUpload, logger),
		Bim:       NewBimHandler(service.NewBimService(store.BimModels(), resolver, engine, visibility, blobs, generator, logger), maxUpload, logger),
		Comments:  NewCommentHandler(service.NewCommentService(store.Comments(), resolver, engine, visibility, logger), logger),
		Catalog:   NewCatalogHandler(catalog, maxUpload, logger),
		Commerce:  NewCommerceHandler(catalog, webhookSecret, logger),
		Portfolio: NewPortfolioHandler(service.NewPortfolioService(store.Portfolio(), engine, blobs, logger), maxUpload, logger),
	}
	mux := http.NewServeMux()
	routes.Register(mux)

	identities := auth.NewIdentityResolver(subjectVerifier{}, store.Users(), logger)
	s := &server{
		store:     store,
		handler:   middleware.Auth(identities, logger)(mux),
		generator: generator,
	}

	for id, role := range map[string]models.Role{
		"customer-5": models.RoleCustomer,
		"customer-6": models.RoleCustomer,
		"builder-8":  models.RoleBuilder,
		"designer-7": models.RoleDesigner,
		"admin-1":    models.RoleAdmin,
	} {
		u := &models.User{ID: id, Email: id + "@example.com", Role: role, Status: models.UserStatusActive}
		if err := store.Users().Create(ctx, u); err != nil {
			t.Fatalf("create user %s: %v", id, err)
		}
	}

	s.object = &models.Object{ID: "object-10", OwnerUserID: "customer-5", Title: "House", Address: "Main st 1"}
	if err := store.Objects().Create(ctx, s.object); err != nil {
		t.Fatalf("create object: %v", err)
	}
	if err := store.Assignments().Create(ctx, &models.Assignment{UserID: "builder-8", ObjectID: s.object.ID}); err != nil {
		t.Fatalf("assign: %v", err)
	}
	return s
}

// do sends a request as user (no Authorization header when user is empty)
func (s *server) do(t *testing.T, user, method, target string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, body)
	if user != "" {
		req.Header.Set("Authorization", "Bearer "+user)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func (s *server) doJSON(t *testing.T, user, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = bytes.NewBufferString(body)
	}
	return s.do(t, user, method, target, r, "application/json")
}

// upload posts a multipart form with a "file" part
func (s *server) upload(t *testing.T, user, target, filename, content string, fields map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatalf("write field: %v", err)
		}
	}
	if filename != "" {
		part, err := mw.CreateFormFile("file", filename)
		if err != nil {
			t.Fatalf("create form file: %v", err)
		}
		io.WriteString(part, content)
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close multipart: %v", err)
	}
	return s.do(t, user, http.MethodPost, target, &buf, mw.FormDataContentType())
}

// webhook posts a commerce notification with the given signature header
func (s *server) webhook(t *testing.T, body, signature string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/commerce/webhook", bytes.NewBufferString(body))
	req.Header.Set(SignatureHeader, signature)
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func wantStatus(t *testing.T, rec *httptest.ResponseRecorder, status int) {
	t.Helper()
	if rec.Code != status {
		t.Fatalf("status = %d, want %d; body = %s", rec.Code, status, rec.Body.String())
	}
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %s: %v", rec.Body.String(), err)
	}
	return v
}

func wantProblemReason(t *testing.T, rec *httptest.ResponseRecorder, reason access.Reason) {
	t.Helper()
	wantStatus(t, rec, http.StatusForbidden)
	problem := decode[map[string]any](t, rec)
	if problem["reason"] != string(reason) {
		t.Errorf("reason = %v, want %q", problem["reason"], reason)
	}
}

var errBoom = errors.New("boom")
