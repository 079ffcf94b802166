package access

import (
	"fmt"

	"buildportal/internal/domain"
)

// Reason is a machine-readable denial code returned to clients
type Reason string

const (
	ReasonNone                 Reason = ""
	ReasonRoleNotPermitted     Reason = "role_not_permitted"
	ReasonNotAuthor            Reason = "not_author"
	ReasonNotOwner             Reason = "not_owner"
	ReasonNotAssigned          Reason = "not_assigned"
	ReasonNotVisibleToCustomer Reason = "not_visible_to_customer"
	ReasonPurchaseRequired     Reason = "purchase_required"
	ReasonNoMatchingRule       Reason = "no_matching_rule"
)

// Decision is the engine's verdict
type Decision struct {
	Allowed bool
	Reason  Reason
}

func allow() Decision { return Decision{Allowed: true} }

func deny(reason Reason) Decision { return Decision{Reason: reason} }

// Err converts a deny into a *domain.ForbiddenError and an allow into nil
func (d Decision) Err(action Action) error {
	if d.Allowed {
		return nil
	}
	return &domain.ForbiddenError{
		Message: fmt.Sprintf("%s denied: %s", action, d.Reason),
		Reason:  string(d.Reason),
	}
}
