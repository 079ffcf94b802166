package access

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"buildportal/internal/domain"
	"buildportal/internal/domain/models"
	"buildportal/internal/repository/memory"
)

func TestCanDownload(t *testing.T) {
	priced := decimal.NewNullDecimal(decimal.NewFromInt(1500))

	tests := []struct {
		name     string
		price    decimal.NullDecimal
		purchase models.PurchaseStatus
		want     bool
	}{
		{"free item", decimal.NullDecimal{}, "", true},
		{"zero price", decimal.NewNullDecimal(decimal.Zero), "", true},
		{"priced without purchase", priced, "", false},
		{"priced with pending purchase", priced, models.PurchaseStatusPending, false},
		{"priced with refunded purchase", priced, models.PurchaseStatusRefunded, false},
		{"priced with paid purchase", priced, models.PurchaseStatusPaid, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			store := memory.NewStore()
			gate := NewEntitlementGate(store.Purchases())
			p := principal("user-5", models.RoleCustomer)
			item := &models.DownloadableItem{ID: "item-1", Price: tt.price}

			if tt.purchase != "" {
				if err := store.Purchases().Upsert(ctx, &models.Purchase{UserID: p.ID, ItemID: item.ID, Status: tt.purchase}); err != nil {
					t.Fatalf("Upsert: %v", err)
				}
			}

			got, err := gate.CanDownload(ctx, p, item)
			if err != nil {
				t.Fatalf("CanDownload() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("CanDownload() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCanDownload_PurchaseIsPerUser(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	gate := NewEntitlementGate(store.Purchases())
	item := &models.DownloadableItem{ID: "item-1", Price: decimal.NewNullDecimal(decimal.NewFromInt(10))}

	if err := store.Purchases().Upsert(ctx, &models.Purchase{UserID: "user-5", ItemID: item.ID, Status: models.PurchaseStatusPaid}); err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	got, err := gate.CanDownload(ctx, principal("user-6", models.RoleCustomer), item)
	if err != nil {
		t.Fatalf("CanDownload() error = %v", err)
	}
	if got {
		t.Error("another user's purchase must not entitle")
	}
}

func TestCanDownload_PriceChangeUsesCurrentPrice(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	gate := NewEntitlementGate(store.Purchases())
	p := principal("user-5", models.RoleCustomer)
	item := &models.DownloadableItem{ID: "item-1"}

	// free at first, no purchase needed
	if ok, _ := gate.CanDownload(ctx, p, item); !ok {
		t.Fatal("free item should be downloadable")
	}

	item.Price = decimal.NewNullDecimal(decimal.NewFromInt(1500))
	if ok, _ := gate.CanDownload(ctx, p, item); ok {
		t.Fatal("newly priced item should require a purchase")
	}

	if err := store.Purchases().Upsert(ctx, &models.Purchase{UserID: p.ID, ItemID: item.ID, Status: models.PurchaseStatusPaid}); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	item.Price = decimal.NewNullDecimal(decimal.NewFromInt(3000))
	if ok, _ := gate.CanDownload(ctx, p, item); !ok {
		t.Fatal("paid purchase should survive a price change")
	}
}

func TestRequire(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	gate := NewEntitlementGate(store.Purchases())
	item := &models.DownloadableItem{ID: "item-1", Price: decimal.NewNullDecimal(decimal.NewFromInt(1500))}

	err := gate.Require(ctx, principal("user-5", models.RoleCustomer), item)
	var forbidden *domain.ForbiddenError
	if !errors.As(err, &forbidden) || forbidden.Reason != string(ReasonPurchaseRequired) {
		t.Fatalf("Require() error = %v, want purchase_required", err)
	}

	store.FailWith(errors.New("down"))
	err = gate.Require(ctx, principal("user-5", models.RoleCustomer), item)
	if !errors.Is(err, domain.ErrStoreUnavailable) {
		t.Fatalf("Require() error = %v, want ErrStoreUnavailable", err)
	}
}
