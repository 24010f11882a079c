// Package catalog is the menu/price boundary the order core consumes.
// Catalog entries may change price or availability after an order is
// placed; historical orders keep the price they were created with.
package catalog

import (
	"context"
	"fmt"

	"canteen-rush/internal/apperrors"
)

// Item is one catalog entry.
type Item struct {
	ID               int     `json:"id"`
	VendorID         int     `json:"vendor_id"`
	Name             string  `json:"name"`
	Description      string  `json:"description,omitempty"`
	Price            float64 `json:"price"`
	PrepTimeEstimate int     `json:"prep_time_estimate"`
	IsAvailable      bool    `json:"is_available"`
}

// Lookup resolves menu items for order intake.
type Lookup interface {
	// Get returns the item, or an error wrapping apperrors.ErrNotFound
	// when no such item exists.
	Get(ctx context.Context, menuItemID int) (*Item, error)
}

// Catalog adds the read-only menu listing on top of Lookup.
type Catalog interface {
	Lookup
	ListAvailable(ctx context.Context) ([]Item, error)
}

func notFound(menuItemID int) error {
	return fmt.Errorf("%w: menu item %d", apperrors.ErrNotFound, menuItemID)
}
