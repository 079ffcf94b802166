package handler

import (
	"log/slog"
	"net/http"

	"buildportal/internal/domain/models"
	"buildportal/internal/domain/services"
	"buildportal/internal/httputil"
)

// UserHandler handles account HTTP requests
type UserHandler struct {
	userService services.UserService
	logger      *slog.Logger
}

// NewUserHandler creates a new user handler
func NewUserHandler(userService services.UserService, logger *slog.Logger) *UserHandler {
	return &UserHandler{
		userService: userService,
		logger:      logger,
	}
}

// Me returns the caller's account
// GET /api/me
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, err := h.userService.Me(r.Context(), httputil.GetPrincipal(r))
	if err != nil {
		handleError(w, r, h.logger, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, user)
}

type updateRoleRequest struct {
	Role models.Role `json:"role"`
}

// UpdateRole changes a user's role
// PATCH /api/users/{id}/role
func (h *UserHandler) UpdateRole(w http.ResponseWriter, r *http.Request) {
	var req updateRoleRequest
	if err := parseJSON(w, r, &req); err != nil {
		handleError(w, r, h.logger, err)
		return
	}

	user, err := h.userService.UpdateRole(r.Context(), httputil.GetPrincipal(r), r.PathValue("id"), req.Role)
	if err != nil {
		handleError(w, r, h.logger, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, user)
}
