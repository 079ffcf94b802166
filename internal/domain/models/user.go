package models

import "time"

// Role is a portal role. The set is closed.
type Role string

const (
	RoleCustomer Role = "CUSTOMER"
	RoleDesigner Role = "DESIGNER"
	RoleBuilder  Role = "BUILDER"
	RoleAdmin    Role = "ADMIN"
)

// Roles lists every valid role
var Roles = []Role{RoleCustomer, RoleDesigner, RoleBuilder, RoleAdmin}

// Valid reports whether r is one of the known roles
func (r Role) Valid() bool {
	switch r {
	case RoleCustomer, RoleDesigner, RoleBuilder, RoleAdmin:
		return true
	}
	return false
}

// UserStatus is the account lifecycle state
type UserStatus string

const (
	UserStatusActive    UserStatus = "ACTIVE"
	UserStatusPending   UserStatus = "PENDING"
	UserStatusSuspended UserStatus = "SUSPENDED"
)

// User is a stored portal account
type User struct {
	ID         string     `json:"id" db:"id"`
	Email      string     `json:"email" db:"email"`
	Role       Role       `json:"role" db:"role"`
	Status     UserStatus `json:"status" db:"status"`
	ExternalID *string    `json:"external_id,omitempty" db:"external_id"`
	CreatedAt  time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at" db:"updated_at"`
}

// Principal is the authenticated actor of a request, read fresh from storage.
type Principal struct {
	ID     string     `json:"id"`
	Email  string     `json:"email"`
	Role   Role       `json:"role"`
	Status UserStatus `json:"status"`
}

// PrincipalFromUser builds a principal from a stored user row
func PrincipalFromUser(u *User) *Principal {
	return &Principal{
		ID:     u.ID,
		Email:  u.Email,
		Role:   u.Role,
		Status: u.Status,
	}
}
