package models

import "github.com/golang-jwt/jwt/v5"

// PortalClaims is the session token payload. Only Subject is trusted. Role
// is whatever the token was minted with; the resolver logs a mismatch with
// the stored role and otherwise ignores it.
type PortalClaims struct {
	jwt.RegisteredClaims
	Email string `json:"email,omitempty"`
	Role  string `json:"role,omitempty"`
}

// GetUserID returns the subject claim.
func (c *PortalClaims) GetUserID() string {
	return c.Subject
}
