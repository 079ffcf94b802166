package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/MicahParks/keyfunc/v3"
	"github.com/golang-jwt/jwt/v5"

	"buildportal/internal/domain"
	"buildportal/internal/domain/models"
)

// acceptedAlgs excludes HMAC so a public JWKS key can never double as a
// shared secret.
var acceptedAlgs = []string{"RS256", "ES256"}

// JWKSVerifier checks session tokens against keys published at a JWKS URL.
type JWKSVerifier struct {
	keyfunc jwt.Keyfunc
	parser  *jwt.Parser
	logger  *slog.Logger
}

// NewJWTVerifier fetches the key set once and keeps it refreshed for the
// lifetime of ctx.
func NewJWTVerifier(ctx context.Context, jwksURL string, logger *slog.Logger) (JWTVerifier, error) {
	if jwksURL == "" {
		return nil, errors.New("JWKS URL cannot be empty")
	}

	jwks, err := keyfunc.NewDefaultCtx(ctx, []string{jwksURL})
	if err != nil {
		return nil, fmt.Errorf("failed to create JWKS client: %w", err)
	}

	logger.Info("JWT verifier initialized", "jwks_url", jwksURL)
	return NewKeyfuncVerifier(jwks.Keyfunc, logger), nil
}

// NewKeyfuncVerifier builds a verifier over any key lookup. Tests pass a
// static public key.
func NewKeyfuncVerifier(kf jwt.Keyfunc, logger *slog.Logger) *JWKSVerifier {
	return &JWKSVerifier{
		keyfunc: kf,
		parser: jwt.NewParser(
			jwt.WithValidMethods(acceptedAlgs),
			jwt.WithExpirationRequired(),
			jwt.WithIssuedAt(),
		),
		logger: logger,
	}
}

// VerifyToken returns the claims of a valid, unexpired token with a subject.
// Every failure is domain.ErrUnauthorized.
func (v *JWKSVerifier) VerifyToken(tokenString string) (*models.PortalClaims, error) {
	claims := &models.PortalClaims{}
	if _, err := v.parser.ParseWithClaims(tokenString, claims, v.keyfunc); err != nil {
		if errors.Is(err, jwt.ErrTokenSignatureInvalid) || errors.Is(err, jwt.ErrTokenUnverifiable) {
			v.logger.Warn("token rejected", "error", err.Error())
		} else {
			v.logger.Debug("token rejected", "error", err.Error())
		}
		return nil, domain.ErrUnauthorized
	}

	if claims.Subject == "" {
		v.logger.Debug("token missing subject claim")
		return nil, domain.ErrUnauthorized
	}
	return claims, nil
}

// Close is a no-op. The JWKS refresh goroutine stops with the context given
// to NewJWTVerifier.
func (v *JWKSVerifier) Close() error {
	return nil
}
