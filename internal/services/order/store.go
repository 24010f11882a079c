package order

import (
	"context"
	"errors"

	"canteen-rush/internal/models"
)

// ErrTokenTaken signals that the drawn token is already held by an order
// in the active set. Intake retries with a fresh draw; the error never
// leaves this package.
var ErrTokenTaken = errors.New("token already held by an active order")

// Store is the durable persistence boundary for orders. Implementations
// must assign distinct, monotonically increasing ids on insert and must
// enforce token uniqueness over the active set at write time.
type Store interface {
	// CreateOrder persists the order and its lines as one atomic unit,
	// filling ID, CreatedAt and UpdatedAt. Returns ErrTokenTaken when
	// the order's token collides with an active order.
	CreateOrder(ctx context.Context, o *models.Order) error

	// GetOrder returns the order with its lines, or ErrNotFound.
	GetOrder(ctx context.Context, id int) (*models.Order, error)

	// GetActiveOrderByToken resolves a currently displayed token, or
	// ErrNotFound when no active order holds it.
	GetActiveOrderByToken(ctx context.Context, tokenNumber int) (*models.Order, error)

	// ListOrders returns all orders in creation order.
	ListOrders(ctx context.Context) ([]models.Order, error)

	// ListOrdersByUser returns one user's orders in creation order.
	ListOrdersByUser(ctx context.Context, userID int) ([]models.Order, error)

	// ListActiveOrders returns a snapshot of the active set in creation
	// order, for ranking.
	ListActiveOrders(ctx context.Context) ([]models.Order, error)

	// UpdateOrderStatus applies from -> to with compare-and-set on the
	// prior status and returns the updated order. A transition into
	// completed stamps actual_pickup_time. Returns ErrNotFound for a
	// missing order and ErrConcurrencyConflict when the order exists
	// but its status no longer equals from.
	UpdateOrderStatus(ctx context.Context, id int, from, to models.OrderStatus) (*models.Order, error)

	// Ping reports store reachability.
	Ping(ctx context.Context) error
}
