package handler

import (
	"log/slog"
	"net/http"

	"buildportal/internal/domain/services"
	"buildportal/internal/httputil"
)

// PortfolioHandler handles designer portfolio HTTP requests
type PortfolioHandler struct {
	portfolioService services.PortfolioService
	maxUpload        int64
	logger           *slog.Logger
}

// NewPortfolioHandler creates a new portfolio handler
func NewPortfolioHandler(portfolioService services.PortfolioService, maxUpload int64, logger *slog.Logger) *PortfolioHandler {
	return &PortfolioHandler{
		portfolioService: portfolioService,
		maxUpload:        maxUpload,
		logger:           logger,
	}
}

// ListPortfolio returns all portfolio entries
// GET /api/portfolio
func (h *PortfolioHandler) ListPortfolio(w http.ResponseWriter, r *http.Request) {
	items, err := h.portfolioService.ListPortfolio(r.Context(), httputil.GetPrincipal(r))
	if err != nil {
		handleError(w, r, h.logger, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, items)
}

// CreatePortfolioItem uploads a new entry
// POST /api/portfolio
func (h *PortfolioHandler) CreatePortfolioItem(w http.ResponseWriter, r *http.Request) {
	upload, cleanup, err := uploadForm(w, r, h.maxUpload)
	if err != nil {
		handleError(w, r, h.logger, err)
		return
	}
	defer cleanup()

	req := &services.CreatePortfolioItemRequest{
		Title:       r.FormValue("title"),
		Description: emptyToNil(optionalFormValue(r, "description")),
		File:        *upload,
	}

	item, err := h.portfolioService.CreatePortfolioItem(r.Context(), httputil.GetPrincipal(r), req)
	if err != nil {
		handleError(w, r, h.logger, err)
		return
	}
	httputil.RespondJSON(w, http.StatusCreated, item)
}

// Stream serves the entry's file
// GET /api/portfolio/{id}/file
func (h *PortfolioHandler) Stream(w http.ResponseWriter, r *http.Request) {
	item, blob, err := h.portfolioService.Open(r.Context(), httputil.GetPrincipal(r), r.PathValue("id"))
	if err != nil {
		handleError(w, r, h.logger, err)
		return
	}
	serveBlob(w, r, blob, item.MimeType, downloadName(item.Title, blob), false)
}

// DeletePortfolioItem removes an entry
// DELETE /api/portfolio/{id}
func (h *PortfolioHandler) DeletePortfolioItem(w http.ResponseWriter, r *http.Request) {
	if err := h.portfolioService.DeletePortfolioItem(r.Context(), httputil.GetPrincipal(r), r.PathValue("id")); err != nil {
		handleError(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
