package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/golang-jwt/jwt/v5"

	"buildportal/internal/domain"
	"buildportal/internal/domain/models"
	"buildportal/internal/repository/memory"
)

// fakeVerifier accepts tokens of the form "token-<sub>"
type fakeVerifier struct {
	role string
}

func (f *fakeVerifier) VerifyToken(token string) (*models.PortalClaims, error) {
	const prefix = "token-"
	if len(token) <= len(prefix) || token[:len(prefix)] != prefix {
		return nil, domain.ErrUnauthorized
	}
	return &models.PortalClaims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: token[len(prefix):]},
		Role:             f.role,
	}, nil
}

func (f *fakeVerifier) Close() error { return nil }

func TestResolve(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	users := store.Users()

	for _, u := range []*models.User{
		{ID: "active", Email: "a@example.com", Role: models.RoleBuilder, Status: models.UserStatusActive},
		{ID: "pending", Email: "p@example.com", Role: models.RoleBuilder, Status: models.UserStatusPending},
		{ID: "suspended", Email: "s@example.com", Role: models.RoleAdmin, Status: models.UserStatusSuspended},
	} {
		if err := users.Create(ctx, u); err != nil {
			t.Fatalf("create user: %v", err)
		}
	}

	// the token claims ADMIN; the stored role must win
	resolver := NewIdentityResolver(&fakeVerifier{role: "ADMIN"}, users, discardLogger())

	tests := []struct {
		name     string
		token    string
		wantRole models.Role
		wantErr  error
	}{
		{"active user", "token-active", models.RoleBuilder, nil},
		{"empty credential", "", "", domain.ErrUnauthorized},
		{"invalid credential", "bogus", "", domain.ErrUnauthorized},
		{"unknown user", "token-ghost", "", domain.ErrUnauthorized},
		{"pending user", "token-pending", "", domain.ErrUnauthorized},
		{"suspended user", "token-suspended", "", domain.ErrUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := resolver.Resolve(ctx, tt.token)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Resolve() error = %v, want %v", err, tt.wantErr)
				}
				if err.Error() != domain.ErrUnauthorized.Error() {
					t.Errorf("Resolve() message = %q, want the generic one", err.Error())
				}
				return
			}
			if err != nil {
				t.Fatalf("Resolve() error = %v", err)
			}
			if p.Role != tt.wantRole {
				t.Errorf("Role = %s, want %s", p.Role, tt.wantRole)
			}
		})
	}
}

func TestResolve_RoleChangeAppliesToNextRequest(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	users := store.Users()
	if err := users.Create(ctx, &models.User{ID: "u", Email: "u@example.com", Role: models.RoleAdmin, Status: models.UserStatusActive}); err != nil {
		t.Fatalf("create user: %v", err)
	}
	resolver := NewIdentityResolver(&fakeVerifier{}, users, discardLogger())

	if p, err := resolver.Resolve(ctx, "token-u"); err != nil || p.Role != models.RoleAdmin {
		t.Fatalf("Resolve() = %+v, %v; want ADMIN", p, err)
	}

	if _, err := users.UpdateRole(ctx, "u", models.RoleCustomer); err != nil {
		t.Fatalf("UpdateRole: %v", err)
	}
	if p, err := resolver.Resolve(ctx, "token-u"); err != nil || p.Role != models.RoleCustomer {
		t.Fatalf("Resolve() = %+v, %v; want CUSTOMER", p, err)
	}

	users.SetStatus("u", models.UserStatusSuspended)
	if _, err := resolver.Resolve(ctx, "token-u"); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("Resolve() error = %v, want ErrUnauthorized", err)
	}
}

func TestResolve_StoreFailureIsNotUnauthorized(t *testing.T) {
	store := memory.NewStore()
	store.FailWith(errors.New("connection refused"))
	resolver := NewIdentityResolver(&fakeVerifier{}, store.Users(), discardLogger())

	_, err := resolver.Resolve(context.Background(), "token-u")
	if !errors.Is(err, domain.ErrStoreUnavailable) {
		t.Fatalf("Resolve() error = %v, want ErrStoreUnavailable", err)
	}
	if errors.Is(err, domain.ErrUnauthorized) {
		t.Fatal("store failure must not read as unauthorized")
	}
}
