package models

import "time"

// StatusUpdateMessage represents a status change event published after a
// transition commits. Consumers use it to notify waiting customers.
type StatusUpdateMessage struct {
	OrderID     int         `json:"order_id"`
	TokenNumber int         `json:"token_number"`
	VendorID    int         `json:"vendor_id"`
	OldStatus   OrderStatus `json:"old_status"`
	NewStatus   OrderStatus `json:"new_status"`
	Timestamp   time.Time   `json:"timestamp"`
}

// NewStatusUpdateMessage builds the event for a committed transition.
func NewStatusUpdateMessage(order *Order, oldStatus OrderStatus) *StatusUpdateMessage {
	return &StatusUpdateMessage{
		OrderID:     order.ID,
		TokenNumber: order.TokenNumber,
		VendorID:    order.VendorID,
		OldStatus:   oldStatus,
		NewStatus:   order.Status,
		Timestamp:   time.Now().UTC(),
	}
}
