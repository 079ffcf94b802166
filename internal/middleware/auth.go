package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"buildportal/internal/domain"
	"buildportal/internal/domain/models"
	"buildportal/internal/httputil"
)

// PrincipalResolver turns a bearer credential into the live principal
type PrincipalResolver interface {
	Resolve(ctx context.Context, token string) (*models.Principal, error)
}

// publicPaths are served without a bearer token. The commerce webhook
// authenticates with its own signature.
var publicPaths = map[string]bool{
	"/health":               true,
	"/metrics":              true,
	"/api/commerce/webhook": true,
}

// Auth resolves the principal of every non-public request and stores it in
// the request context. 401 on any authentication failure, 500 when the user
// store cannot be reached.
func Auth(resolver PrincipalResolver, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if publicPaths[r.URL.Path] || r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}

			principal, err := resolver.Resolve(r.Context(), bearerToken(r))
			if err != nil {
				if errors.Is(err, domain.ErrUnauthorized) {
					w.Header().Set("WWW-Authenticate", `Bearer realm="portal"`)
					httputil.RespondError(w, http.StatusUnauthorized, "authentication required")
					return
				}
				logger.Error("identity resolution failed",
					"error", err,
					"path", r.URL.Path,
					"method", r.Method,
				)
				httputil.RespondError(w, http.StatusInternalServerError, "internal server error")
				return
			}

			next.ServeHTTP(w, httputil.WithPrincipal(r, principal))
		})
	}
}

// bearerToken extracts the token from "Authorization: Bearer <token>"
func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
