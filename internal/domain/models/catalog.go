package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// DownloadableItem is a global catalog file, optionally priced
type DownloadableItem struct {
	ID             string              `json:"id" db:"id"`
	Title          string              `json:"title" db:"title"`
	Description    *string             `json:"description,omitempty" db:"description"`
	FilePath       string              `json:"-" db:"file_path"`
	MimeType       string              `json:"mime_type" db:"mime_type"`
	SizeBytes      int64               `json:"size_bytes" db:"size_bytes"`
	Price          decimal.NullDecimal `json:"price" db:"price"` // NULL = free
	UploaderUserID string              `json:"uploader_user_id" db:"uploader_user_id"`
	DownloadCount  int64               `json:"download_count" db:"download_count"`
	CreatedAt      time.Time           `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time           `json:"updated_at" db:"updated_at"`
}

// IsFree reports whether the item needs no purchase (NULL or non-positive price)
func (i *DownloadableItem) IsFree() bool {
	return !i.Price.Valid || !i.Price.Decimal.IsPositive()
}

// PurchaseStatus is the state of an entitlement record
type PurchaseStatus string

const (
	PurchaseStatusPending  PurchaseStatus = "pending"
	PurchaseStatusPaid     PurchaseStatus = "paid"
	PurchaseStatusRefunded PurchaseStatus = "refunded"
)

// Valid reports whether s is a known purchase status
func (s PurchaseStatus) Valid() bool {
	switch s {
	case PurchaseStatusPending, PurchaseStatusPaid, PurchaseStatusRefunded:
		return true
	}
	return false
}

// Purchase is the entitlement record of one user for one item
type Purchase struct {
	ID              string         `json:"id" db:"id"`
	UserID          string         `json:"user_id" db:"user_id"`
	ItemID          string         `json:"item_id" db:"item_id"`
	Status          PurchaseStatus `json:"status" db:"status"`
	ExternalOrderID *string        `json:"external_order_id,omitempty" db:"external_order_id"`
	CreatedAt       time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at" db:"updated_at"`
}

// PortfolioItem is a designer's showcase entry
type PortfolioItem struct {
	ID           string    `json:"id" db:"id"`
	AuthorUserID string    `json:"author_user_id" db:"author_user_id"`
	Title        string    `json:"title" db:"title"`
	Description  *string   `json:"description,omitempty" db:"description"`
	FilePath     string    `json:"-" db:"file_path"`
	MimeType     string    `json:"mime_type" db:"mime_type"`
	SizeBytes    int64     `json:"size_bytes" db:"size_bytes"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}
