package httputil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestRespondErrorWithExtras(t *testing.T) {
	w := httptest.NewRecorder()
	RespondErrorWithExtras(w, http.StatusForbidden, "view_photo denied", map[string]any{"reason": "not_assigned"})

	if w.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/problem+json" {
		t.Errorf("Content-Type = %q", ct)
	}

	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["reason"] != "not_assigned" || body["title"] != "Forbidden" || body["status"] != float64(403) {
		t.Errorf("body = %v", body)
	}
}

func TestProblemDetail_ExtrasCannotShadow(t *testing.T) {
	payload, err := json.Marshal(ProblemDetail{
		Type:   problemType(http.StatusTeapot),
		Status: http.StatusNotFound,
		Extra:  map[string]any{"status": 200, "resource_id": "x"},
	})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	var body map[string]any
	if err := json.Unmarshal(payload, &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["status"] != float64(404) || body["resource_id"] != "x" || body["type"] != "about:blank" {
		t.Errorf("body = %v", body)
	}
}

func TestParseBoolField(t *testing.T) {
	tests := []struct {
		body    string
		want    bool
		wantErr bool
	}{
		{`{"visible": true}`, true, false},
		{`{"visible": false}`, false, false},
		{`{"visible": null}`, false, true},
		{`{}`, false, true},
		{`{"visible": "yes"}`, false, true},
	}
	for _, tt := range tests {
		t.Run(tt.body, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodPatch, "/", strings.NewReader(tt.body))
			got, err := ParseBoolField(httptest.NewRecorder(), r, "visible")
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseBoolField() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseBoolField() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestOptionalFields(t *testing.T) {
	var req struct {
		Description OptionalString  `json:"description"`
		Price       OptionalDecimal `json:"price"`
		Title       OptionalString  `json:"title"`
	}
	if err := json.Unmarshal([]byte(`{"description": null, "price": "12.50"}`), &req); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}

	if !req.Description.Present || req.Description.Value != nil {
		t.Errorf("description = %+v, want present null", req.Description)
	}
	if !req.Price.Present || req.Price.Value == nil || req.Price.Value.String() != "12.5" {
		t.Errorf("price = %+v, want 12.5", req.Price)
	}
	if req.Title.Present {
		t.Errorf("title should be absent")
	}

	var cleared struct {
		Price OptionalDecimal `json:"price"`
	}
	if err := json.Unmarshal([]byte(`{"price": null}`), &cleared); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if !cleared.Price.Present || NullDecimal(cleared.Price.Value).Valid {
		t.Errorf("price = %+v, want present null", cleared.Price)
	}
}
