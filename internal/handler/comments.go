package handler

import (
	"log/slog"
	"net/http"

	"buildportal/internal/domain/models"
	"buildportal/internal/domain/services"
	"buildportal/internal/httputil"
)

// CommentHandler handles comment HTTP requests
type CommentHandler struct {
	commentService services.CommentService
	logger         *slog.Logger
}

// NewCommentHandler creates a new comment handler
func NewCommentHandler(commentService services.CommentService, logger *slog.Logger) *CommentHandler {
	return &CommentHandler{
		commentService: commentService,
		logger:         logger,
	}
}

// ListPhotoComments returns the photo's comments visible to the caller
// GET /api/objects/{id}/photos/{mediaID}/comments
func (h *CommentHandler) ListPhotoComments(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, models.CommentParentPhoto, r.PathValue("mediaID"))
}

// CreatePhotoComment comments on a photo
// POST /api/objects/{id}/photos/{mediaID}/comments
func (h *CommentHandler) CreatePhotoComment(w http.ResponseWriter, r *http.Request) {
	h.create(w, r, models.CommentParentPhoto, r.PathValue("mediaID"))
}

// ListModelComments returns the model's comments visible to the caller
// GET /api/objects/{id}/models/{modelID}/comments
func (h *CommentHandler) ListModelComments(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, models.CommentParentBimModel, r.PathValue("modelID"))
}

// CreateModelComment comments on a BIM model
// POST /api/objects/{id}/models/{modelID}/comments
func (h *CommentHandler) CreateModelComment(w http.ResponseWriter, r *http.Request) {
	h.create(w, r, models.CommentParentBimModel, r.PathValue("modelID"))
}

func (h *CommentHandler) list(w http.ResponseWriter, r *http.Request, kind models.CommentParentKind, parentID string) {
	comments, err := h.commentService.ListComments(r.Context(), httputil.GetPrincipal(r), r.PathValue("id"), kind, parentID)
	if err != nil {
		handleError(w, r, h.logger, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, comments)
}

type createCommentRequest struct {
	Body string `json:"body"`
}

func (h *CommentHandler) create(w http.ResponseWriter, r *http.Request, kind models.CommentParentKind, parentID string) {
	var body createCommentRequest
	if err := parseJSON(w, r, &body); err != nil {
		handleError(w, r, h.logger, err)
		return
	}

	req := &services.CreateCommentRequest{
		ObjectID:   r.PathValue("id"),
		ParentKind: kind,
		ParentID:   parentID,
		Body:       body.Body,
	}

	comment, err := h.commentService.CreateComment(r.Context(), httputil.GetPrincipal(r), req)
	if err != nil {
		handleError(w, r, h.logger, err)
		return
	}
	httputil.RespondJSON(w, http.StatusCreated, comment)
}

// DeleteComment removes a comment
// DELETE /api/comments/{id}
func (h *CommentHandler) DeleteComment(w http.ResponseWriter, r *http.Request) {
	if err := h.commentService.DeleteComment(r.Context(), httputil.GetPrincipal(r), r.PathValue("id")); err != nil {
		handleError(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SetVisibility shows or hides the comment from the object's customer
// PATCH /api/comments/{id}/visibility
func (h *CommentHandler) SetVisibility(w http.ResponseWriter, r *http.Request) {
	visible, err := parseVisibility(w, r)
	if err != nil {
		handleError(w, r, h.logger, err)
		return
	}

	comment, err := h.commentService.SetVisibility(r.Context(), httputil.GetPrincipal(r), r.PathValue("id"), visible)
	if err != nil {
		handleError(w, r, h.logger, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, comment)
}
