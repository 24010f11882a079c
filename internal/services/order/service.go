package order

import (
	"context"
	"errors"
	"fmt"
	"time"

	"canteen-rush/internal/apperrors"
	"canteen-rush/internal/catalog"
	"canteen-rush/internal/logger"
	"canteen-rush/internal/models"
	"canteen-rush/internal/prediction"
	"canteen-rush/internal/queue"
	"canteen-rush/internal/statemachine"
	"canteen-rush/internal/token"
)

// StatusPublisher emits status-update events after a committed transition.
type StatusPublisher interface {
	PublishStatusUpdate(ctx context.Context, msg *models.StatusUpdateMessage) error
}

// Service implements the order lifecycle: intake, status transitions and
// the queue-position read side.
type Service struct {
	store      Store
	catalog    catalog.Lookup
	allocator  token.Allocator
	ranker     queue.Ranker
	estimator  prediction.Estimator
	publisher  StatusPublisher
	logger     *logger.Logger
	strictCart bool
	now        func() time.Time
}

// NewService wires the order service. publisher may be nil when no broker
// is configured.
func NewService(
	store Store,
	cat catalog.Lookup,
	alloc token.Allocator,
	ranker queue.Ranker,
	est prediction.Estimator,
	pub StatusPublisher,
	log *logger.Logger,
	strictCart bool,
) *Service {
	return &Service{
		store:      store,
		catalog:    cat,
		allocator:  alloc,
		ranker:     ranker,
		estimator:  est,
		publisher:  pub,
		logger:     log,
		strictCart: strictCart,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// Create validates and prices a cart, allocates a token and persists the
// order atomically. Only students place orders.
func (s *Service) Create(ctx context.Context, principal models.Principal, req *models.CreateOrderRequest, requestID string) (*models.Order, error) {
	if !principal.IsStudent() {
		return nil, fmt.Errorf("%w: only students can place orders", apperrors.ErrUnauthorized)
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	lines, total, err := s.resolveCart(ctx, req, requestID)
	if err != nil {
		return nil, err
	}

	minutes := s.estimator.Estimate(req.VendorID, len(lines))
	now := s.now()

	o := &models.Order{
		UserID:              principal.UserID,
		VendorID:            req.VendorID,
		Status:              models.StatusOrdered,
		TotalPrice:          total,
		PredictedPickupTime: now.Add(time.Duration(minutes) * time.Minute),
		Lines:               lines,
	}

	// Draw-insert-retry: the store's active-set uniqueness constraint is
	// the authority, never a read-then-write check on this side.
	for attempt := 0; attempt < token.MaxAttempts; attempt++ {
		o.TokenNumber = s.allocator.Draw()
		err := s.store.CreateOrder(ctx, o)
		if errors.Is(err, ErrTokenTaken) {
			s.logger.Debug("token_collision", requestID,
				fmt.Sprintf("Token %d already active, redrawing", o.TokenNumber))
			continue
		}
		if err != nil {
			return nil, err
		}

		if o.QueuePosition, err = s.ranker.Position(ctx, o); err != nil {
			return nil, err
		}

		s.logger.Info("order_created", requestID,
			fmt.Sprintf("Order %d created with token %d", o.ID, o.TokenNumber))
		return o, nil
	}

	return nil, fmt.Errorf("%w: no free token in %d attempts", apperrors.ErrTokenExhausted, token.MaxAttempts)
}

// resolveCart prices the cart against the catalog. Depending on policy a
// line that does not resolve is either dropped or fails the whole cart; a
// cart with no resolvable lines always fails.
func (s *Service) resolveCart(ctx context.Context, req *models.CreateOrderRequest, requestID string) ([]models.OrderLine, float64, error) {
	var lines []models.OrderLine
	var total float64

	for _, reqLine := range req.Items {
		item, err := s.catalog.Get(ctx, reqLine.MenuItemID)
		if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
			return nil, 0, err
		}
		if err != nil || !item.IsAvailable {
			if s.strictCart {
				return nil, 0, fmt.Errorf("%w: menu item %d is not available", apperrors.ErrInvalidCart, reqLine.MenuItemID)
			}
			s.logger.Debug("cart_line_dropped", requestID,
				fmt.Sprintf("Menu item %d not available, dropping line", reqLine.MenuItemID))
			continue
		}

		lines = append(lines, models.OrderLine{
			MenuItemID: reqLine.MenuItemID,
			Quantity:   reqLine.Quantity,
		})
		total += item.Price * float64(reqLine.Quantity)
	}

	if len(lines) == 0 {
		return nil, 0, fmt.Errorf("%w: no line item could be resolved", apperrors.ErrInvalidCart)
	}
	return lines, total, nil
}

// UpdateStatus moves an order one step forward. Only the vendor owning the
// order may do this; a stale transition is rejected, never overwritten.
func (s *Service) UpdateStatus(ctx context.Context, principal models.Principal, orderID int, target models.OrderStatus, requestID string) (*models.Order, error) {
	if !principal.IsVendor() {
		return nil, fmt.Errorf("%w: only vendors can update order status", apperrors.ErrUnauthorized)
	}

	current, err := s.store.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !principal.OwnsVendor(current.VendorID) {
		return nil, fmt.Errorf("%w: order belongs to another vendor", apperrors.ErrUnauthorized)
	}
	if err := statemachine.Validate(current.Status, target); err != nil {
		return nil, err
	}

	updated, err := s.store.UpdateOrderStatus(ctx, orderID, current.Status, target)
	if err != nil {
		return nil, err
	}

	if s.publisher != nil {
		msg := models.NewStatusUpdateMessage(updated, current.Status)
		if err := s.publisher.PublishStatusUpdate(ctx, msg); err != nil {
			// Best effort: the transition is committed either way.
			s.logger.Error("status_publish_failed", requestID,
				fmt.Sprintf("Failed to publish status update for order %d", orderID), err)
		}
	}

	if updated.QueuePosition, err = s.ranker.Position(ctx, updated); err != nil {
		return nil, err
	}

	s.logger.Info("status_updated", requestID,
		fmt.Sprintf("Order %d moved %s -> %s", orderID, current.Status, target))
	return updated, nil
}

// List returns the caller's orders: students see their own, vendors see
// all. Every order is annotated with its live queue position.
func (s *Service) List(ctx context.Context, principal models.Principal, requestID string) ([]models.Order, error) {
	var orders []models.Order
	var err error
	if principal.IsVendor() {
		orders, err = s.store.ListOrders(ctx)
	} else {
		orders, err = s.store.ListOrdersByUser(ctx, principal.UserID)
	}
	if err != nil {
		return nil, err
	}

	for i := range orders {
		if orders[i].QueuePosition, err = s.ranker.Position(ctx, &orders[i]); err != nil {
			return nil, err
		}
	}
	return orders, nil
}

// GetByToken resolves a currently displayed token to its active order.
// Vendor capability required; tokens of inactive orders do not resolve.
func (s *Service) GetByToken(ctx context.Context, principal models.Principal, tokenNumber int) (*models.Order, error) {
	if !principal.IsVendor() {
		return nil, fmt.Errorf("%w: only vendors can resolve tokens", apperrors.ErrUnauthorized)
	}

	o, err := s.store.GetActiveOrderByToken(ctx, tokenNumber)
	if err != nil {
		return nil, err
	}
	if o.QueuePosition, err = s.ranker.Position(ctx, o); err != nil {
		return nil, err
	}
	return o, nil
}

// HealthCheck reports store reachability.
func (s *Service) HealthCheck(ctx context.Context) bool {
	return s.store.Ping(ctx) == nil
}
