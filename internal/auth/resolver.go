package auth

import (
	"context"
	"errors"
	"log/slog"

	"buildportal/internal/domain"
	"buildportal/internal/domain/models"
)

// UserReader loads the live user row behind a token subject
type UserReader interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
}

// IdentityResolver turns a bearer credential into a Principal. The token is
// an identity pointer only: role and status always come from storage, so a
// demotion or suspension applies to the very next request.
type IdentityResolver struct {
	verifier JWTVerifier
	users    UserReader
	logger   *slog.Logger
}

// NewIdentityResolver creates an identity resolver
func NewIdentityResolver(verifier JWTVerifier, users UserReader, logger *slog.Logger) *IdentityResolver {
	return &IdentityResolver{
		verifier: verifier,
		users:    users,
		logger:   logger,
	}
}

// Resolve returns the principal for token. A bad token, an unknown user and
// a non-ACTIVE user all yield domain.ErrUnauthorized, so callers cannot tell
// them apart. Store failures are returned unchanged.
func (r *IdentityResolver) Resolve(ctx context.Context, token string) (*models.Principal, error) {
	if token == "" {
		return nil, domain.ErrUnauthorized
	}

	claims, err := r.verifier.VerifyToken(token)
	if err != nil {
		return nil, domain.ErrUnauthorized
	}

	user, err := r.users.GetByID(ctx, claims.GetUserID())
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			r.logger.Debug("token subject has no user", "user_id", claims.GetUserID())
			return nil, domain.ErrUnauthorized
		}
		return nil, err
	}

	if user.Status != models.UserStatusActive {
		r.logger.Debug("inactive user rejected", "user_id", user.ID, "status", user.Status)
		return nil, domain.ErrUnauthorized
	}

	if claims.Role != "" && claims.Role != string(user.Role) {
		r.logger.Debug("token role differs from stored role",
			"user_id", user.ID,
			"token_role", claims.Role,
			"role", user.Role,
		)
	}

	return models.PrincipalFromUser(user), nil
}
