package access

import (
	"context"
	"errors"
	"fmt"

	"buildportal/internal/domain"
	"buildportal/internal/domain/models"
)

// PurchaseLookup reads entitlement records
type PurchaseLookup interface {
	Get(ctx context.Context, userID, itemID string) (*models.Purchase, error)
}

// EntitlementGate decides whether a download of a monetized item may proceed.
// It runs only after the engine allowed download_item.
type EntitlementGate struct {
	purchases PurchaseLookup
}

// NewEntitlementGate creates an entitlement gate
func NewEntitlementGate(purchases PurchaseLookup) *EntitlementGate {
	return &EntitlementGate{purchases: purchases}
}

// CanDownload is true for free items, and for priced items only when a paid
// purchase exists for exactly (p, item). Price and purchase status are both
// read at call time.
func (g *EntitlementGate) CanDownload(ctx context.Context, p *models.Principal, item *models.DownloadableItem) (bool, error) {
	if item.IsFree() {
		entitlementChecksTotal.WithLabelValues("free").Inc()
		return true, nil
	}

	purchase, err := g.purchases.Get(ctx, p.ID, item.ID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			entitlementChecksTotal.WithLabelValues("no_purchase").Inc()
			return false, nil
		}
		return false, fmt.Errorf("check purchase: %w", err)
	}

	if purchase.Status != models.PurchaseStatusPaid {
		entitlementChecksTotal.WithLabelValues("unpaid").Inc()
		return false, nil
	}
	entitlementChecksTotal.WithLabelValues("paid").Inc()
	return true, nil
}

// Require is CanDownload folded into an error: a missing entitlement is a
// *domain.ForbiddenError with reason purchase_required
func (g *EntitlementGate) Require(ctx context.Context, p *models.Principal, item *models.DownloadableItem) error {
	ok, err := g.CanDownload(ctx, p, item)
	if err != nil {
		return err
	}
	if !ok {
		return deny(ReasonPurchaseRequired).Err(ActionDownloadItem)
	}
	return nil
}
