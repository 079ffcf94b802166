package handler

import (
	"log/slog"
	"net/http"
	"path"
	"strings"

	"buildportal/internal/domain"
	"buildportal/internal/domain/models"
	"buildportal/internal/domain/services"
	"buildportal/internal/httputil"
)

// MediaHandler handles photo or video HTTP requests; one instance per kind
type MediaHandler struct {
	kind         models.MediaKind
	mediaService services.MediaService
	maxUpload    int64
	logger       *slog.Logger
}

// NewMediaHandler creates a media handler for kind
func NewMediaHandler(kind models.MediaKind, mediaService services.MediaService, maxUpload int64, logger *slog.Logger) *MediaHandler {
	return &MediaHandler{
		kind:         kind,
		mediaService: mediaService,
		maxUpload:    maxUpload,
		logger:       logger.With("media_kind", string(kind)),
	}
}

// ListMedia returns the object's files visible to the caller
// GET /api/objects/{id}/photos
func (h *MediaHandler) ListMedia(w http.ResponseWriter, r *http.Request) {
	files, err := h.mediaService.ListMedia(r.Context(), httputil.GetPrincipal(r), h.kind, r.PathValue("id"))
	if err != nil {
		handleError(w, r, h.logger, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, files)
}

// Upload stores a new file from the multipart "file" part
// POST /api/objects/{id}/photos
func (h *MediaHandler) Upload(w http.ResponseWriter, r *http.Request) {
	upload, cleanup, err := uploadForm(w, r, h.maxUpload)
	if err != nil {
		handleError(w, r, h.logger, err)
		return
	}
	defer cleanup()

	req := &services.UploadMediaRequest{
		ObjectID: r.PathValue("id"),
		Kind:     h.kind,
		Title:    r.FormValue("title"),
		FolderID: emptyToNil(optionalFormValue(r, "folder_id")),
		File:     *upload,
	}

	file, err := h.mediaService.Upload(r.Context(), httputil.GetPrincipal(r), req)
	if err != nil {
		handleError(w, r, h.logger, err)
		return
	}
	httputil.RespondJSON(w, http.StatusCreated, file)
}

// Stream serves the file's bytes
// GET /api/objects/{id}/photos/{mediaID}/file
func (h *MediaHandler) Stream(w http.ResponseWriter, r *http.Request) {
	file, blob, err := h.mediaService.Open(r.Context(), httputil.GetPrincipal(r), h.kind, r.PathValue("id"), r.PathValue("mediaID"))
	if err != nil {
		handleError(w, r, h.logger, err)
		return
	}
	serveBlob(w, r, blob, file.MimeType, downloadName(file.Title, blob), false)
}

// SetVisibility shows or hides the file from the object's customer
// PATCH /api/objects/{id}/photos/{mediaID}/visibility
func (h *MediaHandler) SetVisibility(w http.ResponseWriter, r *http.Request) {
	visible, err := parseVisibility(w, r)
	if err != nil {
		handleError(w, r, h.logger, err)
		return
	}

	file, err := h.mediaService.SetVisibility(r.Context(), httputil.GetPrincipal(r), h.kind, r.PathValue("id"), r.PathValue("mediaID"), visible)
	if err != nil {
		handleError(w, r, h.logger, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, file)
}

type moveToFolderRequest struct {
	FolderID httputil.OptionalString `json:"folder_id"`
}

// MoveToFolder puts the file into a folder, or takes it out with null
// PUT /api/objects/{id}/photos/{mediaID}/folder
func (h *MediaHandler) MoveToFolder(w http.ResponseWriter, r *http.Request) {
	var body moveToFolderRequest
	if err := parseJSON(w, r, &body); err != nil {
		handleError(w, r, h.logger, err)
		return
	}
	if !body.FolderID.Present {
		handleError(w, r, h.logger, &domain.ValidationError{Message: "folder_id is required"})
		return
	}

	file, err := h.mediaService.MoveToFolder(r.Context(), httputil.GetPrincipal(r), h.kind, r.PathValue("id"), r.PathValue("mediaID"), emptyToNil(body.FolderID.Value))
	if err != nil {
		handleError(w, r, h.logger, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, file)
}

// routePrefix is the collection segment for the kind ("photos", "videos")
func (h *MediaHandler) routePrefix() string {
	return path.Join("/api/objects/{id}", string(h.kind)+"s")
}

func emptyToNil(s *string) *string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil
	}
	return s
}
