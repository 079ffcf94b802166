package handler

import (
	"context"
	"net/http"
	"time"

	"buildportal/internal/httputil"
)

// ReadinessChecker reports whether a dependency can serve requests
type ReadinessChecker interface {
	CheckReady(ctx context.Context) (status string, message string)
}

// HealthHandler serves the liveness/readiness probe
type HealthHandler struct {
	checker ReadinessChecker // nil in memory mode
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(checker ReadinessChecker) *HealthHandler {
	return &HealthHandler{checker: checker}
}

// Health reports database readiness
// GET /health
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	status, message := "ok", "in-memory store"
	if h.checker != nil {
		status, message = h.checker.CheckReady(r.Context())
	}

	code := http.StatusOK
	if status != "ok" {
		code = http.StatusServiceUnavailable
	}
	httputil.RespondJSON(w, code, map[string]any{
		"status":   status,
		"database": message,
		"time":     time.Now().UTC(),
	})
}
