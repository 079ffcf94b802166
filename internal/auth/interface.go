package auth

import "buildportal/internal/domain/models"

// JWTVerifier turns a bearer token into claims. Role and status come from
// storage through IdentityResolver, never from the token.
type JWTVerifier interface {
	// VerifyToken fails with domain.ErrUnauthorized for any bad token.
	VerifyToken(tokenString string) (*models.PortalClaims, error)
	Close() error
}
