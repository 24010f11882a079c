package order

import (
	"context"
	"fmt"
	"sync"
	"time"

	"canteen-rush/internal/apperrors"
	"canteen-rush/internal/models"
)

// MemoryStore is an in-memory Store with the same contract as the
// Postgres implementation: monotonic ids, active-set token uniqueness
// enforced at insert, compare-and-set status updates. Used by tests.
type MemoryStore struct {
	mu     sync.Mutex
	orders map[int]*models.Order
	nextID int
	now    func() time.Time
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		orders: make(map[int]*models.Order),
		nextID: 1,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// SetClock overrides the store clock for deterministic timestamps.
func (s *MemoryStore) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

// CreateOrder implements Store.
func (s *MemoryStore) CreateOrder(_ context.Context, o *models.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.orders {
		if existing.Status.IsActive() && existing.TokenNumber == o.TokenNumber {
			return ErrTokenTaken
		}
	}

	o.ID = s.nextID
	s.nextID++
	o.CreatedAt = s.now()
	o.UpdatedAt = o.CreatedAt
	for i := range o.Lines {
		o.Lines[i].ID = i + 1
		o.Lines[i].OrderID = o.ID
	}

	s.orders[o.ID] = cloneOrder(o)
	return nil
}

// GetOrder implements Store.
func (s *MemoryStore) GetOrder(_ context.Context, id int) (*models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.orders[id]
	if !ok {
		return nil, fmt.Errorf("%w: order", apperrors.ErrNotFound)
	}
	return cloneOrder(o), nil
}

// GetActiveOrderByToken implements Store.
func (s *MemoryStore) GetActiveOrderByToken(_ context.Context, tokenNumber int) (*models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, o := range s.orders {
		if o.Status.IsActive() && o.TokenNumber == tokenNumber {
			return cloneOrder(o), nil
		}
	}
	return nil, fmt.Errorf("%w: order", apperrors.ErrNotFound)
}

// ListOrders implements Store.
func (s *MemoryStore) ListOrders(_ context.Context) ([]models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.collect(func(*models.Order) bool { return true }), nil
}

// ListOrdersByUser implements Store.
func (s *MemoryStore) ListOrdersByUser(_ context.Context, userID int) ([]models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.collect(func(o *models.Order) bool { return o.UserID == userID }), nil
}

// ListActiveOrders implements Store.
func (s *MemoryStore) ListActiveOrders(_ context.Context) ([]models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.collect(func(o *models.Order) bool { return o.Status.IsActive() }), nil
}

// UpdateOrderStatus implements Store.
func (s *MemoryStore) UpdateOrderStatus(_ context.Context, id int, from, to models.OrderStatus) (*models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.orders[id]
	if !ok {
		return nil, fmt.Errorf("%w: order", apperrors.ErrNotFound)
	}
	if o.Status != from {
		return nil, fmt.Errorf("%w: order %d is no longer %s", apperrors.ErrConcurrencyConflict, id, from)
	}

	o.Status = to
	o.UpdatedAt = s.now()
	if to == models.StatusCompleted && o.ActualPickupTime == nil {
		t := s.now()
		o.ActualPickupTime = &t
	}
	return cloneOrder(o), nil
}

// Ping implements Store.
func (s *MemoryStore) Ping(context.Context) error { return nil }

// collect returns matching orders sorted by insertion order. Ids are
// assigned monotonically, so id order is creation order.
func (s *MemoryStore) collect(match func(*models.Order) bool) []models.Order {
	var out []models.Order
	for id := 1; id < s.nextID; id++ {
		o, ok := s.orders[id]
		if ok && match(o) {
			out = append(out, *cloneOrder(o))
		}
	}
	return out
}

func cloneOrder(o *models.Order) *models.Order {
	c := *o
	c.Lines = append([]models.OrderLine(nil), o.Lines...)
	return &c
}
