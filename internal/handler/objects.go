package handler

import (
	"log/slog"
	"net/http"

	"buildportal/internal/domain/services"
	"buildportal/internal/httputil"
)

// ObjectHandler handles object and assignment HTTP requests
type ObjectHandler struct {
	objectService services.ObjectService
	logger        *slog.Logger
}

// NewObjectHandler creates a new object handler
func NewObjectHandler(objectService services.ObjectService, logger *slog.Logger) *ObjectHandler {
	return &ObjectHandler{
		objectService: objectService,
		logger:        logger,
	}
}

// ListObjects returns the objects visible to the caller
// GET /api/objects
func (h *ObjectHandler) ListObjects(w http.ResponseWriter, r *http.Request) {
	objects, err := h.objectService.ListObjects(r.Context(), httputil.GetPrincipal(r))
	if err != nil {
		handleError(w, r, h.logger, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, objects)
}

// CreateObject creates a new object
// POST /api/objects
func (h *ObjectHandler) CreateObject(w http.ResponseWriter, r *http.Request) {
	var req services.CreateObjectRequest
	if err := parseJSON(w, r, &req); err != nil {
		handleError(w, r, h.logger, err)
		return
	}

	object, err := h.objectService.CreateObject(r.Context(), httputil.GetPrincipal(r), &req)
	if err != nil {
		handleError(w, r, h.logger, err)
		return
	}
	httputil.RespondJSON(w, http.StatusCreated, object)
}

// GetObject returns a single object
// GET /api/objects/{id}
func (h *ObjectHandler) GetObject(w http.ResponseWriter, r *http.Request) {
	object, err := h.objectService.GetObject(r.Context(), httputil.GetPrincipal(r), r.PathValue("id"))
	if err != nil {
		handleError(w, r, h.logger, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, object)
}

type updateObjectRequest struct {
	Title       *string                 `json:"title"`
	Address     *string                 `json:"address"`
	Description httputil.OptionalString `json:"description"`
}

// UpdateObject applies a partial update
// PATCH /api/objects/{id}
func (h *ObjectHandler) UpdateObject(w http.ResponseWriter, r *http.Request) {
	var body updateObjectRequest
	if err := parseJSON(w, r, &body); err != nil {
		handleError(w, r, h.logger, err)
		return
	}

	req := &services.UpdateObjectRequest{
		Title:   body.Title,
		Address: body.Address,
		Description: services.OptionalText{
			Present: body.Description.Present,
			Value:   body.Description.Value,
		},
	}

	object, err := h.objectService.UpdateObject(r.Context(), httputil.GetPrincipal(r), r.PathValue("id"), req)
	if err != nil {
		handleError(w, r, h.logger, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, object)
}

// Assign assigns a designer or builder to the object
// POST /api/objects/{id}/assignments
func (h *ObjectHandler) Assign(w http.ResponseWriter, r *http.Request) {
	var req services.CreateAssignmentRequest
	if err := parseJSON(w, r, &req); err != nil {
		handleError(w, r, h.logger, err)
		return
	}

	assignment, err := h.objectService.Assign(r.Context(), httputil.GetPrincipal(r), r.PathValue("id"), &req)
	if err != nil {
		handleError(w, r, h.logger, err)
		return
	}
	httputil.RespondJSON(w, http.StatusCreated, assignment)
}

// Unassign removes an assignment
// DELETE /api/objects/{id}/assignments/{userID}
func (h *ObjectHandler) Unassign(w http.ResponseWriter, r *http.Request) {
	if err := h.objectService.Unassign(r.Context(), httputil.GetPrincipal(r), r.PathValue("id"), r.PathValue("userID")); err != nil {
		handleError(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
