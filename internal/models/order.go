package models

import (
	"fmt"
	"time"

	"canteen-rush/internal/apperrors"
)

// OrderStatus represents the status of an order
type OrderStatus string

const (
	StatusOrdered   OrderStatus = "ordered"
	StatusPreparing OrderStatus = "preparing"
	StatusReady     OrderStatus = "ready"
	StatusCompleted OrderStatus = "completed"
)

// IsValid reports whether s is one of the known statuses.
func (s OrderStatus) IsValid() bool {
	switch s {
	case StatusOrdered, StatusPreparing, StatusReady, StatusCompleted:
		return true
	}
	return false
}

// IsActive reports whether an order in status s is awaiting pickup.
// Only active orders hold a token and occupy a queue position.
func (s OrderStatus) IsActive() bool {
	return s == StatusOrdered || s == StatusPreparing
}

// OrderLine represents one menu item within an order
type OrderLine struct {
	ID         int `json:"id,omitempty" db:"id"`
	OrderID    int `json:"order_id,omitempty" db:"order_id"`
	MenuItemID int `json:"menu_item_id" db:"menu_item_id"`
	Quantity   int `json:"quantity" db:"quantity"`
}

// Order represents a placed cart. TotalPrice is computed once at creation
// from the catalog prices in effect at that moment and never recomputed.
// QueuePosition is derived per query and never persisted; it is 0 whenever
// the order is not in an active status.
type Order struct {
	ID                  int         `json:"id" db:"id"`
	UserID              int         `json:"user_id" db:"user_id"`
	VendorID            int         `json:"vendor_id" db:"vendor_id"`
	Status              OrderStatus `json:"status" db:"status"`
	TotalPrice          float64     `json:"total_price" db:"total_price"`
	TokenNumber         int         `json:"token_number" db:"token_number"`
	QueuePosition       int         `json:"queue_position"`
	CreatedAt           time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt           time.Time   `json:"updated_at,omitempty" db:"updated_at"`
	PredictedPickupTime time.Time   `json:"predicted_pickup_time" db:"predicted_pickup_time"`
	ActualPickupTime    *time.Time  `json:"actual_pickup_time,omitempty" db:"actual_pickup_time"`
	Lines               []OrderLine `json:"items"`
}

// CreateOrderRequest represents the request to place a new order
type CreateOrderRequest struct {
	VendorID int               `json:"vendor_id"`
	Items    []CreateOrderLine `json:"items"`
}

// CreateOrderLine is one requested line item
type CreateOrderLine struct {
	MenuItemID int `json:"menu_item_id"`
	Quantity   int `json:"quantity"`
}

// UpdateStatusRequest represents the request to move an order forward
type UpdateStatusRequest struct {
	Status string `json:"status"`
}

// Validate checks the structural shape of the cart. Catalog resolution
// happens later in intake; this only rejects carts that can never price.
func (req *CreateOrderRequest) Validate() error {
	if req.VendorID < 1 {
		return fmt.Errorf("%w: vendor_id is required", apperrors.ErrInvalidCart)
	}
	if len(req.Items) == 0 {
		return fmt.Errorf("%w: items array cannot be empty", apperrors.ErrInvalidCart)
	}
	if len(req.Items) > 20 {
		return fmt.Errorf("%w: items array cannot contain more than 20 items", apperrors.ErrInvalidCart)
	}
	for i, item := range req.Items {
		if item.MenuItemID < 1 {
			return fmt.Errorf("%w: items[%d].menu_item_id is required", apperrors.ErrInvalidCart, i)
		}
		if item.Quantity < 1 || item.Quantity > 10 {
			return fmt.Errorf("%w: items[%d].quantity must be between 1 and 10", apperrors.ErrInvalidCart, i)
		}
	}
	return nil
}
