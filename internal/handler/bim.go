package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"buildportal/internal/domain/services"
	"buildportal/internal/httputil"
)

// BimHandler handles BIM model HTTP requests
type BimHandler struct {
	bimService services.BimService
	maxUpload  int64
	logger     *slog.Logger
}

// NewBimHandler creates a new BIM model handler
func NewBimHandler(bimService services.BimService, maxUpload int64, logger *slog.Logger) *BimHandler {
	return &BimHandler{
		bimService: bimService,
		maxUpload:  maxUpload,
		logger:     logger,
	}
}

// ListModels returns the object's models visible to the caller
// GET /api/objects/{id}/models
func (h *BimHandler) ListModels(w http.ResponseWriter, r *http.Request) {
	list, err := h.bimService.ListModels(r.Context(), httputil.GetPrincipal(r), r.PathValue("id"))
	if err != nil {
		handleError(w, r, h.logger, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, list)
}

// Upload stores a new model file
// POST /api/objects/{id}/models
func (h *BimHandler) Upload(w http.ResponseWriter, r *http.Request) {
	upload, cleanup, err := uploadForm(w, r, h.maxUpload)
	if err != nil {
		handleError(w, r, h.logger, err)
		return
	}
	defer cleanup()

	req := &services.UploadBimModelRequest{
		ObjectID: r.PathValue("id"),
		Title:    r.FormValue("title"),
		File:     *upload,
	}

	model, err := h.bimService.Upload(r.Context(), httputil.GetPrincipal(r), req)
	if err != nil {
		handleError(w, r, h.logger, err)
		return
	}
	httputil.RespondJSON(w, http.StatusCreated, model)
}

// Stream serves the model file as a download
// GET /api/objects/{id}/models/{modelID}/file
func (h *BimHandler) Stream(w http.ResponseWriter, r *http.Request) {
	model, blob, err := h.bimService.Open(r.Context(), httputil.GetPrincipal(r), r.PathValue("id"), r.PathValue("modelID"))
	if err != nil {
		handleError(w, r, h.logger, err)
		return
	}
	serveBlob(w, r, blob, model.MimeType, downloadName(model.Title, blob), true)
}

// SetVisibility shows or hides the model from the object's customer
// PATCH /api/objects/{id}/models/{modelID}/visibility
func (h *BimHandler) SetVisibility(w http.ResponseWriter, r *http.Request) {
	visible, err := parseVisibility(w, r)
	if err != nil {
		handleError(w, r, h.logger, err)
		return
	}

	model, err := h.bimService.SetVisibility(r.Context(), httputil.GetPrincipal(r), r.PathValue("id"), r.PathValue("modelID"), visible)
	if err != nil {
		handleError(w, r, h.logger, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, model)
}

type treeResponse struct {
	ModelID       string          `json:"model_id"`
	ParameterTree json.RawMessage `json:"parameter_tree"`
}

// GetTree returns the saved parameter tree
// GET /api/objects/{id}/models/{modelID}/tree
func (h *BimHandler) GetTree(w http.ResponseWriter, r *http.Request) {
	tree, err := h.bimService.GetTree(r.Context(), httputil.GetPrincipal(r), r.PathValue("id"), r.PathValue("modelID"))
	if err != nil {
		handleError(w, r, h.logger, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, treeResponse{ModelID: r.PathValue("modelID"), ParameterTree: tree})
}

// GenerateTree runs the converter on the model file and saves the tree
// POST /api/objects/{id}/models/{modelID}/tree
func (h *BimHandler) GenerateTree(w http.ResponseWriter, r *http.Request) {
	tree, err := h.bimService.GenerateTree(r.Context(), httputil.GetPrincipal(r), r.PathValue("id"), r.PathValue("modelID"))
	if err != nil {
		handleError(w, r, h.logger, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, treeResponse{ModelID: r.PathValue("modelID"), ParameterTree: tree})
}

// SaveTree replaces the parameter tree with an edited one
// PUT /api/objects/{id}/models/{modelID}/tree
func (h *BimHandler) SaveTree(w http.ResponseWriter, r *http.Request) {
	var req services.SaveTreeRequest
	if err := parseJSON(w, r, &req); err != nil {
		handleError(w, r, h.logger, err)
		return
	}

	tree, err := h.bimService.SaveTree(r.Context(), httputil.GetPrincipal(r), r.PathValue("id"), r.PathValue("modelID"), &req)
	if err != nil {
		handleError(w, r, h.logger, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, treeResponse{ModelID: r.PathValue("modelID"), ParameterTree: tree})
}
