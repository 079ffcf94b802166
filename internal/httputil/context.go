package httputil

import (
	"context"
	"net/http"

	"buildportal/internal/domain/models"
)

// Context key type to avoid collisions
type contextKey string

const (
	principalKey contextKey = "principal"
)

// WithPrincipal adds the resolved principal to the request context
func WithPrincipal(r *http.Request, p *models.Principal) *http.Request {
	ctx := context.WithValue(r.Context(), principalKey, p)
	return r.WithContext(ctx)
}

// GetPrincipal retrieves the principal from context, nil if the request
// was not authenticated
func GetPrincipal(r *http.Request) *models.Principal {
	p, _ := r.Context().Value(principalKey).(*models.Principal)
	return p
}

// GetUserID returns the principal's ID, or empty string
func GetUserID(r *http.Request) string {
	if p := GetPrincipal(r); p != nil {
		return p.ID
	}
	return ""
}
