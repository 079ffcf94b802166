package access

import (
	"context"
	"fmt"
	"log/slog"

	"buildportal/internal/domain"
	"buildportal/internal/domain/models"
)

// AssignmentIndex answers whether a user is assigned to an object
type AssignmentIndex interface {
	IsAssigned(ctx context.Context, userID, objectID string) (bool, error)
}

// Engine is the single decision point for every protected entry point.
// It holds no per-request state; every fact it needs is either on the
// Resource (loaded fresh by the caller) or read from the assignment index.
type Engine struct {
	capabilities *CapabilityTable
	assignments  AssignmentIndex
	logger       *slog.Logger
}

// NewEngine creates an access decision engine
func NewEngine(capabilities *CapabilityTable, assignments AssignmentIndex, logger *slog.Logger) *Engine {
	return &Engine{
		capabilities: capabilities,
		assignments:  assignments,
		logger:       logger.With(slog.String("component", "access_engine")),
	}
}

// Permitted exposes the structural check alone, for callers that only need
// to know whether a role can attempt an action (e.g. rendering hints)
func (e *Engine) Permitted(role models.Role, action Action) bool {
	return e.capabilities.Permitted(role, action)
}

// Decide evaluates action on res for p. Rules apply in order and the first
// applicable one wins:
//  1. the role must be structurally permitted the action
//  2. admins are allowed
//  3. author-restricted actions require p to be the author
//  4. the ownership chain must admit p (owner for customers, assignment for
//     designers and builders); global resources have no chain
//  5. customers reading gated kinds need the visibility flag
//  6. anything else is denied
//
// A non-nil error means the decision could not be made (store failure or
// missing principal); it is never a deny.
func (e *Engine) Decide(ctx context.Context, p *models.Principal, action Action, res *Resource) (Decision, error) {
	if p == nil || p.Status != models.UserStatusActive {
		return Decision{}, domain.ErrUnauthorized
	}

	d, err := e.decide(ctx, p, action, res)
	if err != nil {
		return Decision{}, err
	}

	recordDecision(action, d)
	if !d.Allowed {
		e.logger.Debug("access denied",
			"user_id", p.ID,
			"role", p.Role,
			"action", action,
			"reason", d.Reason,
			"resource_kind", resourceKind(res),
			"resource_id", resourceID(res),
		)
	}
	return d, nil
}

// Authorize is Decide folded into a single error: nil on allow,
// *domain.ForbiddenError on deny, the underlying error otherwise
func (e *Engine) Authorize(ctx context.Context, p *models.Principal, action Action, res *Resource) error {
	d, err := e.Decide(ctx, p, action, res)
	if err != nil {
		return err
	}
	return d.Err(action)
}

func (e *Engine) decide(ctx context.Context, p *models.Principal, action Action, res *Resource) (Decision, error) {
	// 1. structural
	if !e.capabilities.Permitted(p.Role, action) {
		return deny(ReasonRoleNotPermitted), nil
	}

	// 2. admin
	if p.Role == models.RoleAdmin {
		return allow(), nil
	}

	if res == nil {
		return deny(ReasonNoMatchingRule), nil
	}

	// 3. authorship. Create actions target the catalog and have no author.
	if action.AuthorRestricted() && res.AuthorUserID != p.ID {
		return deny(ReasonNotAuthor), nil
	}

	// 4. ownership chain
	switch {
	case res.Kind.global():
		return allow(), nil
	case action == ActionCreateObject:
		// the object does not exist yet; customers create only for themselves
		if p.Role == models.RoleCustomer && res.OwnerUserID == p.ID {
			return allow(), nil
		}
		return deny(ReasonNotOwner), nil
	case !res.Kind.objectScoped() || res.ObjectID == "":
		// unknown kind or a broken chain
		return deny(ReasonNoMatchingRule), nil
	}

	switch p.Role {
	case models.RoleCustomer:
		if res.OwnerUserID == "" || res.OwnerUserID != p.ID {
			return deny(ReasonNotOwner), nil
		}
		// 5. visibility gate
		if action.IsRead() && res.Kind.customerGated() && !res.VisibleToCustomer {
			if res.Kind == KindComment && res.AuthorUserID == p.ID {
				return allow(), nil
			}
			return deny(ReasonNotVisibleToCustomer), nil
		}
		return allow(), nil

	case models.RoleDesigner, models.RoleBuilder:
		assigned, err := e.assignments.IsAssigned(ctx, p.ID, res.ObjectID)
		if err != nil {
			return Decision{}, fmt.Errorf("check assignment: %w", err)
		}
		if !assigned {
			return deny(ReasonNotAssigned), nil
		}
		return allow(), nil
	}

	// 6. fail closed
	return deny(ReasonNoMatchingRule), nil
}

// Filter keeps the items p may perform action on. Denials are dropped
// silently; a store failure aborts the whole listing.
func Filter[T any](ctx context.Context, e *Engine, p *models.Principal, action Action, items []T, toResource func(*T) *Resource) ([]T, error) {
	visible := make([]T, 0, len(items))
	for i := range items {
		d, err := e.Decide(ctx, p, action, toResource(&items[i]))
		if err != nil {
			return nil, err
		}
		if d.Allowed {
			visible = append(visible, items[i])
		}
	}
	return visible, nil
}

func resourceKind(res *Resource) string {
	if res == nil {
		return ""
	}
	return string(res.Kind)
}

func resourceID(res *Resource) string {
	if res == nil {
		return ""
	}
	return res.ID
}
