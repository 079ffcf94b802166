package handler

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/shopspring/decimal"

	"buildportal/internal/domain"
	"buildportal/internal/domain/services"
	"buildportal/internal/httputil"
)

// CatalogHandler handles downloadable item HTTP requests
type CatalogHandler struct {
	catalogService services.CatalogService
	maxUpload      int64
	logger         *slog.Logger
}

// NewCatalogHandler creates a new catalog handler
func NewCatalogHandler(catalogService services.CatalogService, maxUpload int64, logger *slog.Logger) *CatalogHandler {
	return &CatalogHandler{
		catalogService: catalogService,
		maxUpload:      maxUpload,
		logger:         logger,
	}
}

// ListItems returns the catalog
// GET /api/items
func (h *CatalogHandler) ListItems(w http.ResponseWriter, r *http.Request) {
	items, err := h.catalogService.ListItems(r.Context(), httputil.GetPrincipal(r))
	if err != nil {
		handleError(w, r, h.logger, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, items)
}

// CreateItem uploads a new item. An empty or missing price makes it free.
// POST /api/items
func (h *CatalogHandler) CreateItem(w http.ResponseWriter, r *http.Request) {
	upload, cleanup, err := uploadForm(w, r, h.maxUpload)
	if err != nil {
		handleError(w, r, h.logger, err)
		return
	}
	defer cleanup()

	price, err := parsePrice(r.FormValue("price"))
	if err != nil {
		handleError(w, r, h.logger, err)
		return
	}

	req := &services.CreateItemRequest{
		Title:       r.FormValue("title"),
		Description: emptyToNil(optionalFormValue(r, "description")),
		Price:       price,
		File:        *upload,
	}

	item, err := h.catalogService.CreateItem(r.Context(), httputil.GetPrincipal(r), req)
	if err != nil {
		handleError(w, r, h.logger, err)
		return
	}
	httputil.RespondJSON(w, http.StatusCreated, item)
}

// GetItem returns an item with the caller's can_download flag
// GET /api/items/{id}
func (h *CatalogHandler) GetItem(w http.ResponseWriter, r *http.Request) {
	item, err := h.catalogService.GetItem(r.Context(), httputil.GetPrincipal(r), r.PathValue("id"))
	if err != nil {
		handleError(w, r, h.logger, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, item)
}

type updateItemRequest struct {
	Title       *string                  `json:"title"`
	Description httputil.OptionalString  `json:"description"`
	Price       httputil.OptionalDecimal `json:"price"`
}

// UpdateItem applies a partial update; "price": null makes the item free
// PATCH /api/items/{id}
func (h *CatalogHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	var body updateItemRequest
	if err := parseJSON(w, r, &body); err != nil {
		handleError(w, r, h.logger, err)
		return
	}

	req := &services.UpdateItemRequest{
		Title: body.Title,
		Description: services.OptionalText{
			Present: body.Description.Present,
			Value:   body.Description.Value,
		},
		Price: services.OptionalPrice{
			Present: body.Price.Present,
			Value:   httputil.NullDecimal(body.Price.Value),
		},
	}

	item, err := h.catalogService.UpdateItem(r.Context(), httputil.GetPrincipal(r), r.PathValue("id"), req)
	if err != nil {
		handleError(w, r, h.logger, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, item)
}

// DeleteItem removes an item and its file
// DELETE /api/items/{id}
func (h *CatalogHandler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	if err := h.catalogService.DeleteItem(r.Context(), httputil.GetPrincipal(r), r.PathValue("id")); err != nil {
		handleError(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Download serves the item file to entitled callers
// GET /api/items/{id}/download
func (h *CatalogHandler) Download(w http.ResponseWriter, r *http.Request) {
	item, blob, err := h.catalogService.Download(r.Context(), httputil.GetPrincipal(r), r.PathValue("id"))
	if err != nil {
		handleError(w, r, h.logger, err)
		return
	}
	serveBlob(w, r, blob, item.MimeType, downloadName(item.Title, blob), true)
}

// Purchase records a pending purchase for the caller
// POST /api/items/{id}/purchases
func (h *CatalogHandler) Purchase(w http.ResponseWriter, r *http.Request) {
	purchase, err := h.catalogService.Purchase(r.Context(), httputil.GetPrincipal(r), r.PathValue("id"))
	if err != nil {
		handleError(w, r, h.logger, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, purchase)
}

func parsePrice(raw string) (decimal.NullDecimal, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return decimal.NullDecimal{}, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.NullDecimal{}, &domain.ValidationError{Message: "price must be a number"}
	}
	return decimal.NewNullDecimal(d), nil
}
