// Package queue derives live queue positions for orders awaiting pickup.
package queue

import (
	"context"
	"fmt"
	"sort"

	"canteen-rush/internal/models"
)

// ActiveLister supplies a snapshot of all orders currently in an active
// status. The order store satisfies this.
type ActiveLister interface {
	ListActiveOrders(ctx context.Context) ([]models.Order, error)
}

// Ranker computes the 1-based rank of an order within the active set,
// or 0 when the order is not active. Implementations must recompute from
// current store state on every call; a stale position misinforms a
// customer standing at the counter.
type Ranker interface {
	Position(ctx context.Context, order *models.Order) (int, error)
}

// ScanRanker ranks by a linear scan over the active-set snapshot, ordered
// by creation time with identifier as tie breaker. O(active set) per query,
// which is fine at canteen scale; swapping in an incrementally maintained
// index only requires a new Ranker implementation.
type ScanRanker struct {
	store ActiveLister
}

// NewScanRanker creates a ranker over the given snapshot source.
func NewScanRanker(store ActiveLister) *ScanRanker {
	return &ScanRanker{store: store}
}

// Position implements Ranker.
func (r *ScanRanker) Position(ctx context.Context, order *models.Order) (int, error) {
	if !order.Status.IsActive() {
		return 0, nil
	}

	active, err := r.store.ListActiveOrders(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to snapshot active orders: %w", err)
	}

	// Timestamp granularity may collide, so ties break on id. Ids are
	// assigned monotonically by the store's insert path.
	sort.Slice(active, func(i, j int) bool {
		if active[i].CreatedAt.Equal(active[j].CreatedAt) {
			return active[i].ID < active[j].ID
		}
		return active[i].CreatedAt.Before(active[j].CreatedAt)
	})

	for i := range active {
		if active[i].ID == order.ID {
			return i + 1, nil
		}
	}
	return 0, nil
}
