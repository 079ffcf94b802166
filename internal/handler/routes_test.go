package handler

import (
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"buildportal/internal/access"
	"buildportal/internal/domain/models"
	"buildportal/internal/domain/services"
)

func TestAuthentication(t *testing.T) {
	s := newServer(t)

	tests := []struct {
		name   string
		user   string
		target string
		status int
	}{
		{"health is public", "", "/health", http.StatusOK},
		{"no token", "", "/api/me", http.StatusUnauthorized},
		{"bad token", "bad", "/api/me", http.StatusUnauthorized},
		{"unknown subject", "ghost", "/api/me", http.StatusUnauthorized},
		{"known user", "customer-5", "/api/me", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := s.doJSON(t, tt.user, http.MethodGet, tt.target, "")
			wantStatus(t, rec, tt.status)
		})
	}
}

func TestObjects(t *testing.T) {
	s := newServer(t)

	t.Run("owner reads", func(t *testing.T) {
		rec := s.doJSON(t, "customer-5", http.MethodGet, "/api/objects/object-10", "")
		wantStatus(t, rec, http.StatusOK)
		if got := decode[models.Object](t, rec); got.Title != "House" {
			t.Errorf("title = %q", got.Title)
		}
	})

	t.Run("other customer is not owner", func(t *testing.T) {
		rec := s.doJSON(t, "customer-6", http.MethodGet, "/api/objects/object-10", "")
		wantProblemReason(t, rec, access.ReasonNotOwner)
	})

	t.Run("unassigned designer", func(t *testing.T) {
		rec := s.doJSON(t, "designer-7", http.MethodGet, "/api/objects/object-10", "")
		wantProblemReason(t, rec, access.ReasonNotAssigned)
	})

	t.Run("missing object", func(t *testing.T) {
		rec := s.doJSON(t, "admin-1", http.MethodGet, "/api/objects/nope", "")
		wantStatus(t, rec, http.StatusNotFound)
	})

	t.Run("customer creates own object", func(t *testing.T) {
		rec := s.doJSON(t, "customer-6", http.MethodPost, "/api/objects", `{"title":"Barn","address":"Field 2"}`)
		wantStatus(t, rec, http.StatusCreated)
		if got := decode[models.Object](t, rec); got.OwnerUserID != "customer-6" {
			t.Errorf("owner = %q, want customer-6", got.OwnerUserID)
		}
	})

	t.Run("unknown field rejected", func(t *testing.T) {
		rec := s.doJSON(t, "customer-6", http.MethodPost, "/api/objects", `{"title":"Barn","color":"red"}`)
		wantStatus(t, rec, http.StatusBadRequest)
	})

	t.Run("patch clears description", func(t *testing.T) {
		rec := s.doJSON(t, "customer-5", http.MethodPatch, "/api/objects/object-10", `{"description":"two floors"}`)
		wantStatus(t, rec, http.StatusOK)
		rec = s.doJSON(t, "customer-5", http.MethodPatch, "/api/objects/object-10", `{"description":null}`)
		wantStatus(t, rec, http.StatusOK)
		if got := decode[models.Object](t, rec); got.Description != nil || got.Title != "House" {
			t.Errorf("object = %+v", got)
		}
	})
}

func TestAssignments(t *testing.T) {
	s := newServer(t)

	rec := s.doJSON(t, "customer-5", http.MethodPost, "/api/objects/object-10/assignments", `{"user_id":"designer-7"}`)
	wantProblemReason(t, rec, access.ReasonRoleNotPermitted)

	rec = s.doJSON(t, "admin-1", http.MethodPost, "/api/objects/object-10/assignments", `{"user_id":"designer-7"}`)
	wantStatus(t, rec, http.StatusCreated)

	rec = s.doJSON(t, "designer-7", http.MethodGet, "/api/objects/object-10", "")
	wantStatus(t, rec, http.StatusOK)

	rec = s.doJSON(t, "admin-1", http.MethodDelete, "/api/objects/object-10/assignments/designer-7", "")
	wantStatus(t, rec, http.StatusNoContent)

	rec = s.doJSON(t, "designer-7", http.MethodGet, "/api/objects/object-10", "")
	wantProblemReason(t, rec, access.ReasonNotAssigned)
}

func TestPhotoLifecycle(t *testing.T) {
	s := newServer(t)

	rec := s.upload(t, "builder-8", "/api/objects/object-10/photos", "slab.png", pngBytes, map[string]string{"title": "Slab"})
	wantStatus(t, rec, http.StatusCreated)
	photo := decode[models.MediaFile](t, rec)
	if photo.Kind != models.MediaKindPhoto || photo.MimeType != "image/png" || !photo.IsVisibleToCustomer {
		t.Fatalf("photo = %+v", photo)
	}
	fileURL := "/api/objects/object-10/photos/" + photo.ID + "/file"

	rec = s.doJSON(t, "customer-5", http.MethodGet, fileURL, "")
	wantStatus(t, rec, http.StatusOK)
	if rec.Body.String() != pngBytes {
		t.Errorf("body = %q", rec.Body.String())
	}
	if got := rec.Header().Get("Content-Type"); got != "image/png" {
		t.Errorf("Content-Type = %q", got)
	}

	rec = s.doJSON(t, "admin-1", http.MethodPatch, "/api/objects/object-10/photos/"+photo.ID+"/visibility", `{"is_visible_to_customer":false}`)
	wantStatus(t, rec, http.StatusOK)

	rec = s.doJSON(t, "customer-5", http.MethodGet, fileURL, "")
	wantProblemReason(t, rec, access.ReasonNotVisibleToCustomer)

	rec = s.doJSON(t, "customer-5", http.MethodGet, "/api/objects/object-10/photos", "")
	wantStatus(t, rec, http.StatusOK)
	if got := decode[[]models.MediaFile](t, rec); len(got) != 0 {
		t.Errorf("customer list = %d files, want 0", len(got))
	}

	rec = s.doJSON(t, "builder-8", http.MethodGet, fileURL, "")
	wantStatus(t, rec, http.StatusOK)

	rec = s.doJSON(t, "builder-8", http.MethodPatch, "/api/objects/object-10/photos/"+photo.ID+"/visibility", `{"is_visible_to_customer":true}`)
	wantProblemReason(t, rec, access.ReasonRoleNotPermitted)
}

func TestPhotoUpload_Rejections(t *testing.T) {
	s := newServer(t)

	tests := []struct {
		name     string
		user     string
		filename string
		content  string
		status   int
	}{
		{"missing file", "builder-8", "", "", http.StatusBadRequest},
		{"not an image", "builder-8", "notes.txt", "plain words", http.StatusBadRequest},
		{"unassigned designer", "designer-7", "slab.png", pngBytes, http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := s.upload(t, tt.user, "/api/objects/object-10/photos", tt.filename, tt.content, nil)
			wantStatus(t, rec, tt.status)
		})
	}
}

func TestCrossObjectReferenceIsNotFound(t *testing.T) {
	s := newServer(t)
	rec := s.upload(t, "builder-8", "/api/objects/object-10/photos", "slab.png", pngBytes, nil)
	wantStatus(t, rec, http.StatusCreated)
	photo := decode[models.MediaFile](t, rec)

	rec = s.doJSON(t, "admin-1", http.MethodPost, "/api/objects", `{"title":"Barn","address":"Field 2","owner_user_id":"customer-6"}`)
	wantStatus(t, rec, http.StatusCreated)
	other := decode[models.Object](t, rec)

	rec = s.doJSON(t, "admin-1", http.MethodGet, "/api/objects/"+other.ID+"/photos/"+photo.ID+"/file", "")
	wantStatus(t, rec, http.StatusNotFound)
}

func TestComments(t *testing.T) {
	s := newServer(t)
	rec := s.upload(t, "builder-8", "/api/objects/object-10/photos", "slab.png", pngBytes, nil)
	wantStatus(t, rec, http.StatusCreated)
	photo := decode[models.MediaFile](t, rec)
	commentsURL := "/api/objects/object-10/photos/" + photo.ID + "/comments"

	rec = s.doJSON(t, "builder-8", http.MethodPost, commentsURL, `{"body":"rebar checked"}`)
	wantStatus(t, rec, http.StatusCreated)
	comment := decode[models.Comment](t, rec)

	rec = s.doJSON(t, "builder-8", http.MethodPatch, "/api/comments/"+comment.ID+"/visibility", `{"is_visible_to_customer":false}`)
	wantStatus(t, rec, http.StatusOK)

	rec = s.doJSON(t, "customer-5", http.MethodGet, commentsURL, "")
	wantStatus(t, rec, http.StatusOK)
	if got := decode[[]models.Comment](t, rec); len(got) != 0 {
		t.Errorf("customer sees %d comments, want 0", len(got))
	}

	rec = s.doJSON(t, "customer-5", http.MethodDelete, "/api/comments/"+comment.ID, "")
	wantProblemReason(t, rec, access.ReasonNotAuthor)

	rec = s.doJSON(t, "builder-8", http.MethodDelete, "/api/comments/"+comment.ID, "")
	wantStatus(t, rec, http.StatusNoContent)

	rec = s.doJSON(t, "builder-8", http.MethodPatch, "/api/comments/"+comment.ID+"/visibility", `{}`)
	wantStatus(t, rec, http.StatusBadRequest)
}

func TestBimTree(t *testing.T) {
	s := newServer(t)

	rec := s.upload(t, "admin-1", "/api/objects/object-10/models", "house.ifc", "ISO-10303-21;", map[string]string{"title": "House"})
	wantStatus(t, rec, http.StatusCreated)
	model := decode[models.BimModel](t, rec)
	treeURL := "/api/objects/object-10/models/" + model.ID + "/tree"

	rec = s.doJSON(t, "admin-1", http.MethodGet, treeURL, "")
	wantStatus(t, rec, http.StatusNotFound)

	rec = s.doJSON(t, "admin-1", http.MethodPost, treeURL, "")
	wantStatus(t, rec, http.StatusNotImplemented)

	s.generator.err = nil
	s.generator.tree = json.RawMessage(`{"IfcProject":{"name":"House"}}`)
	rec = s.doJSON(t, "admin-1", http.MethodPost, treeURL, "")
	wantStatus(t, rec, http.StatusOK)

	rec = s.doJSON(t, "admin-1", http.MethodPut, treeURL, `{"parameter_tree":{"IfcProject":{"name":"Renamed"}}}`)
	wantStatus(t, rec, http.StatusOK)

	rec = s.doJSON(t, "customer-5", http.MethodGet, treeURL, "")
	wantStatus(t, rec, http.StatusOK)
	got := decode[struct {
		ParameterTree map[string]map[string]string `json:"parameter_tree"`
	}](t, rec)
	if got.ParameterTree["IfcProject"]["name"] != "Renamed" {
		t.Errorf("tree = %+v", got.ParameterTree)
	}

	rec = s.doJSON(t, "customer-5", http.MethodPut, treeURL, `{"parameter_tree":{}}`)
	wantProblemReason(t, rec, access.ReasonRoleNotPermitted)
}

func TestPaidDownloadThroughWebhook(t *testing.T) {
	s := newServer(t)

	rec := s.upload(t, "designer-7", "/api/items", "plan.pdf", "%PDF-1.4 plan", map[string]string{
		"title": "Plan",
		"price": "15.00",
	})
	wantStatus(t, rec, http.StatusCreated)
	item := decode[models.DownloadableItem](t, rec)
	downloadURL := "/api/items/" + item.ID + "/download"

	rec = s.doJSON(t, "customer-5", http.MethodGet, downloadURL, "")
	wantProblemReason(t, rec, access.ReasonPurchaseRequired)

	rec = s.doJSON(t, "customer-5", http.MethodPost, "/api/items/"+item.ID+"/purchases", "")
	wantStatus(t, rec, http.StatusOK)
	if got := decode[models.Purchase](t, rec); got.Status != models.PurchaseStatusPending {
		t.Errorf("status = %q, want pending", got.Status)
	}

	rec = s.doJSON(t, "customer-5", http.MethodGet, "/api/items/"+item.ID, "")
	wantStatus(t, rec, http.StatusOK)
	if got := decode[services.ItemView](t, rec); got.CanDownload {
		t.Error("can_download = true before payment")
	}

	body := `{"order_id":"ord-1","user_id":"customer-5","item_id":"` + item.ID + `","status":"paid"}`
	rec = s.webhook(t, body, "00")
	wantStatus(t, rec, http.StatusUnauthorized)

	rec = s.webhook(t, body, hex.EncodeToString(Sign([]byte(webhookSecret), []byte(body))))
	wantStatus(t, rec, http.StatusOK)

	rec = s.doJSON(t, "customer-5", http.MethodGet, downloadURL, "")
	wantStatus(t, rec, http.StatusOK)
	if !strings.HasPrefix(rec.Header().Get("Content-Disposition"), "attachment") {
		t.Errorf("Content-Disposition = %q", rec.Header().Get("Content-Disposition"))
	}

	rec = s.doJSON(t, "customer-6", http.MethodGet, downloadURL, "")
	wantProblemReason(t, rec, access.ReasonPurchaseRequired)
}

func TestUpdateItem_NullPriceMakesFree(t *testing.T) {
	s := newServer(t)
	rec := s.upload(t, "designer-7", "/api/items", "plan.pdf", "%PDF-1.4 plan", map[string]string{"title": "Plan", "price": "9.50"})
	wantStatus(t, rec, http.StatusCreated)
	item := decode[models.DownloadableItem](t, rec)

	rec = s.doJSON(t, "customer-5", http.MethodPatch, "/api/items/"+item.ID, `{"price":null}`)
	wantProblemReason(t, rec, access.ReasonRoleNotPermitted)

	rec = s.doJSON(t, "designer-7", http.MethodPatch, "/api/items/"+item.ID, `{"price":null}`)
	wantStatus(t, rec, http.StatusOK)

	rec = s.doJSON(t, "customer-5", http.MethodGet, "/api/items/"+item.ID+"/download", "")
	wantStatus(t, rec, http.StatusOK)
}

func TestCreateItem_BadPrice(t *testing.T) {
	s := newServer(t)
	rec := s.upload(t, "designer-7", "/api/items", "plan.pdf", "%PDF", map[string]string{"title": "Plan", "price": "cheap"})
	wantStatus(t, rec, http.StatusBadRequest)
}

func TestWebhook_NotConfigured(t *testing.T) {
	h := NewCommerceHandler(nil, "", discardLogger())
	req := httptest.NewRequest(http.MethodPost, "/api/commerce/webhook", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()
	h.Webhook(rec, req)
	wantStatus(t, rec, http.StatusServiceUnavailable)
}

func TestPortfolio(t *testing.T) {
	s := newServer(t)

	rec := s.upload(t, "customer-5", "/api/portfolio", "porch.png", pngBytes, map[string]string{"title": "Porch"})
	wantProblemReason(t, rec, access.ReasonRoleNotPermitted)

	rec = s.upload(t, "designer-7", "/api/portfolio", "porch.png", pngBytes, map[string]string{"title": "Porch"})
	wantStatus(t, rec, http.StatusCreated)
	entry := decode[models.PortfolioItem](t, rec)

	rec = s.doJSON(t, "customer-6", http.MethodGet, "/api/portfolio/"+entry.ID+"/file", "")
	wantStatus(t, rec, http.StatusOK)

	rec = s.doJSON(t, "admin-1", http.MethodDelete, "/api/portfolio/"+entry.ID, "")
	wantStatus(t, rec, http.StatusNoContent)

	rec = s.doJSON(t, "customer-6", http.MethodGet, "/api/portfolio", "")
	wantStatus(t, rec, http.StatusOK)
	if got := decode[[]models.PortfolioItem](t, rec); len(got) != 0 {
		t.Errorf("portfolio = %d entries, want 0", len(got))
	}
}

func TestStoreFailureIs500(t *testing.T) {
	s := newServer(t)
	rec := s.doJSON(t, "customer-5", http.MethodGet, "/api/objects", "")
	wantStatus(t, rec, http.StatusOK)

	s.store.FailWith(errBoom)
	rec = s.doJSON(t, "customer-5", http.MethodGet, "/api/objects", "")
	wantStatus(t, rec, http.StatusInternalServerError)
	if strings.Contains(rec.Body.String(), "boom") {
		t.Errorf("store error leaked: %s", rec.Body.String())
	}
}
