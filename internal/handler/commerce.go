package handler

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"buildportal/internal/domain"
	"buildportal/internal/domain/services"
	"buildportal/internal/httputil"
)

// SignatureHeader carries the hex HMAC-SHA256 of the raw webhook body
const SignatureHeader = "X-Commerce-Signature"

const maxWebhookBody = 64 << 10

// CommerceHandler receives purchase status callbacks from the commerce platform
type CommerceHandler struct {
	catalogService services.CatalogService
	secret         []byte
	logger         *slog.Logger
}

// NewCommerceHandler creates a webhook handler. An empty secret disables the
// endpoint.
func NewCommerceHandler(catalogService services.CatalogService, secret string, logger *slog.Logger) *CommerceHandler {
	return &CommerceHandler{
		catalogService: catalogService,
		secret:         []byte(secret),
		logger:         logger,
	}
}

// Webhook applies a signed order notification
// POST /api/commerce/webhook
func (h *CommerceHandler) Webhook(w http.ResponseWriter, r *http.Request) {
	if len(h.secret) == 0 {
		httputil.RespondError(w, http.StatusServiceUnavailable, "commerce webhook is not configured")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxWebhookBody)
	body, err := io.ReadAll(r.Body)
	if err != nil {
		handleError(w, r, h.logger, err)
		return
	}

	if !h.validSignature(body, r.Header.Get(SignatureHeader)) {
		h.logger.Warn("commerce webhook signature mismatch", "remote_addr", r.RemoteAddr)
		httputil.RespondError(w, http.StatusUnauthorized, "invalid signature")
		return
	}

	var n services.CommerceNotification
	if err := json.Unmarshal(body, &n); err != nil {
		handleError(w, r, h.logger, &domain.ValidationError{Message: "invalid JSON: " + err.Error()})
		return
	}

	purchase, err := h.catalogService.ApplyNotification(r.Context(), &n)
	if err != nil {
		handleError(w, r, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, purchase)
}

func (h *CommerceHandler) validSignature(body []byte, signature string) bool {
	got, err := hex.DecodeString(signature)
	if err != nil || len(got) == 0 {
		return false
	}
	return hmac.Equal(got, Sign(h.secret, body))
}

// Sign returns the HMAC-SHA256 of body under secret
func Sign(secret, body []byte) []byte {
	mac := hmac.New(sha256.New, secret)
	mac.Write(body)
	return mac.Sum(nil)
}

