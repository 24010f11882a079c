package order

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"canteen-rush/internal/apperrors"
	"canteen-rush/internal/catalog"
	"canteen-rush/internal/logger"
	"canteen-rush/internal/models"
	"canteen-rush/internal/prediction"
	"canteen-rush/internal/queue"
)

var (
	student  = models.Principal{UserID: 10, Role: models.RoleStudent}
	student2 = models.Principal{UserID: 11, Role: models.RoleStudent}
	vendor1  = models.Principal{UserID: 1, Role: models.RoleVendor}
	vendor2  = models.Principal{UserID: 2, Role: models.RoleVendor}
)

// seqAllocator replays a fixed sequence of draws, repeating the last one.
type seqAllocator struct {
	seq []int
	i   int
}

func (a *seqAllocator) Draw() int {
	if a.i < len(a.seq) {
		v := a.seq[a.i]
		a.i++
		return v
	}
	return a.seq[len(a.seq)-1]
}

// capturePublisher records published status updates.
type capturePublisher struct {
	messages []*models.StatusUpdateMessage
}

func (p *capturePublisher) PublishStatusUpdate(_ context.Context, msg *models.StatusUpdateMessage) error {
	p.messages = append(p.messages, msg)
	return nil
}

type fixture struct {
	svc       *Service
	store     *MemoryStore
	catalog   *catalog.MemoryCatalog
	publisher *capturePublisher
	now       time.Time
}

func newFixture(t *testing.T, opts ...func(*Service)) *fixture {
	t.Helper()

	store := NewMemoryStore()
	now := time.Date(2026, 3, 9, 12, 0, 0, 0, time.UTC)
	store.SetClock(func() time.Time { return now })

	cat := catalog.NewMemoryCatalog()
	cat.Put(catalog.Item{ID: 1, VendorID: 1, Name: "Veg Burger", Price: 50, IsAvailable: true})
	cat.Put(catalog.Item{ID: 2, VendorID: 1, Name: "Chicken Sandwich", Price: 80, IsAvailable: true})
	cat.Put(catalog.Item{ID: 3, VendorID: 1, Name: "Coffee", Price: 20, IsAvailable: false})

	pub := &capturePublisher{}
	svc := NewService(store, cat,
		&seqAllocator{seq: []int{4242, 5151, 6060, 7777, 8888}},
		queue.NewScanRanker(store),
		prediction.NewBaselineEstimator(),
		pub, logger.New("test"), false)
	svc.now = func() time.Time { return now }
	for _, opt := range opts {
		opt(svc)
	}

	return &fixture{svc: svc, store: store, catalog: cat, publisher: pub, now: now}
}

func cartRequest(items ...models.CreateOrderLine) *models.CreateOrderRequest {
	return &models.CreateOrderRequest{VendorID: 1, Items: items}
}

func line(menuItemID, quantity int) models.CreateOrderLine {
	return models.CreateOrderLine{MenuItemID: menuItemID, Quantity: quantity}
}

// advance walks an order through the given statuses in sequence.
func (f *fixture) advance(t *testing.T, principal models.Principal, orderID int, statuses ...models.OrderStatus) *models.Order {
	t.Helper()
	var o *models.Order
	var err error
	for _, st := range statuses {
		o, err = f.svc.UpdateStatus(context.Background(), principal, orderID, st, "test")
		require.NoError(t, err)
	}
	return o
}

func TestCreate_PricesCartAndAssignsToken(t *testing.T) {
	f := newFixture(t)

	o, err := f.svc.Create(context.Background(), student, cartRequest(line(1, 1), line(2, 1)), "test")
	require.NoError(t, err)

	assert.Equal(t, 130.0, o.TotalPrice)
	assert.Equal(t, models.StatusOrdered, o.Status)
	assert.Equal(t, 1, o.QueuePosition)
	assert.Equal(t, student.UserID, o.UserID)
	assert.Len(t, o.Lines, 2)
	assert.GreaterOrEqual(t, o.TokenNumber, 1000)
	assert.LessOrEqual(t, o.TokenNumber, 9999)
	// 5 + 3*2 = 11 minutes from creation
	assert.Equal(t, f.now.Add(11*time.Minute), o.PredictedPickupTime)
	assert.Nil(t, o.ActualPickupTime)
}

func TestCreate_QuantityMultipliesPrice(t *testing.T) {
	f := newFixture(t)

	o, err := f.svc.Create(context.Background(), student, cartRequest(line(1, 3)), "test")
	require.NoError(t, err)
	assert.Equal(t, 150.0, o.TotalPrice)
}

func TestCreate_EmptyCart(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Create(context.Background(), student, cartRequest(), "test")
	require.ErrorIs(t, err, apperrors.ErrInvalidCart)
}

func TestCreate_RequiresStudent(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Create(context.Background(), vendor1, cartRequest(line(1, 1)), "test")
	require.ErrorIs(t, err, apperrors.ErrUnauthorized)
}

func TestCreate_DropsUnresolvableLines(t *testing.T) {
	f := newFixture(t)

	// Item 3 is unavailable and item 99 does not exist; both drop.
	o, err := f.svc.Create(context.Background(), student, cartRequest(line(1, 1), line(3, 1), line(99, 1)), "test")
	require.NoError(t, err)
	assert.Equal(t, 50.0, o.TotalPrice)
	assert.Len(t, o.Lines, 1)
	assert.Equal(t, 1, o.Lines[0].MenuItemID)
}

func TestCreate_AllLinesUnresolvable(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Create(context.Background(), student, cartRequest(line(3, 1), line(99, 1)), "test")
	require.ErrorIs(t, err, apperrors.ErrInvalidCart)
}

func TestCreate_StrictCartRejectsUnresolvableLine(t *testing.T) {
	f := newFixture(t, func(s *Service) { s.strictCart = true })

	_, err := f.svc.Create(context.Background(), student, cartRequest(line(1, 1), line(99, 1)), "test")
	require.ErrorIs(t, err, apperrors.ErrInvalidCart)
}

func TestCreate_TotalPriceUnaffectedByLaterCatalogChange(t *testing.T) {
	f := newFixture(t)

	o, err := f.svc.Create(context.Background(), student, cartRequest(line(1, 2)), "test")
	require.NoError(t, err)
	require.Equal(t, 100.0, o.TotalPrice)

	f.catalog.Put(catalog.Item{ID: 1, VendorID: 1, Name: "Veg Burger", Price: 999, IsAvailable: true})

	stored, err := f.store.GetOrder(context.Background(), o.ID)
	require.NoError(t, err)
	assert.Equal(t, 100.0, stored.TotalPrice)
}

func TestCreate_TokenCollisionRedraws(t *testing.T) {
	f := newFixture(t)
	f.svc.allocator = &seqAllocator{seq: []int{4242, 4242, 7777}}

	first, err := f.svc.Create(context.Background(), student, cartRequest(line(1, 1)), "test")
	require.NoError(t, err)
	require.Equal(t, 4242, first.TokenNumber)

	// Second creation draws the same candidate first and must redraw.
	second, err := f.svc.Create(context.Background(), student2, cartRequest(line(2, 1)), "test")
	require.NoError(t, err)
	assert.Equal(t, 7777, second.TokenNumber)
	assert.NotEqual(t, first.TokenNumber, second.TokenNumber)
}

func TestCreate_TokenExhausted(t *testing.T) {
	f := newFixture(t)
	f.svc.allocator = &seqAllocator{seq: []int{4242}}

	_, err := f.svc.Create(context.Background(), student, cartRequest(line(1, 1)), "test")
	require.NoError(t, err)

	_, err = f.svc.Create(context.Background(), student2, cartRequest(line(2, 1)), "test")
	require.ErrorIs(t, err, apperrors.ErrTokenExhausted)
}

func TestCreate_TokenReusableAfterCompletion(t *testing.T) {
	f := newFixture(t)
	f.svc.allocator = &seqAllocator{seq: []int{4242}}

	first, err := f.svc.Create(context.Background(), student, cartRequest(line(1, 1)), "test")
	require.NoError(t, err)
	f.advance(t, vendor1, first.ID, models.StatusPreparing, models.StatusReady, models.StatusCompleted)

	// The token left the active set with its order and may be reissued.
	second, err := f.svc.Create(context.Background(), student2, cartRequest(line(2, 1)), "test")
	require.NoError(t, err)
	assert.Equal(t, 4242, second.TokenNumber)
}

func TestQueuePositions_AdvanceOnCompletion(t *testing.T) {
	f := newFixture(t)

	a, err := f.svc.Create(context.Background(), student, cartRequest(line(1, 1), line(2, 1)), "test")
	require.NoError(t, err)
	require.Equal(t, 130.0, a.TotalPrice)
	require.Equal(t, 1, a.QueuePosition)

	b, err := f.svc.Create(context.Background(), student2, cartRequest(line(1, 1)), "test")
	require.NoError(t, err)
	require.Equal(t, 2, b.QueuePosition)

	f.advance(t, vendor1, a.ID, models.StatusPreparing, models.StatusReady, models.StatusCompleted)

	orders, err := f.svc.List(context.Background(), student2, "test")
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, b.ID, orders[0].ID)
	assert.Equal(t, 1, orders[0].QueuePosition)
}

func TestUpdateStatus_WalksForward(t *testing.T) {
	f := newFixture(t)

	o, err := f.svc.Create(context.Background(), student, cartRequest(line(1, 1)), "test")
	require.NoError(t, err)

	o = f.advance(t, vendor1, o.ID, models.StatusPreparing)
	assert.Equal(t, models.StatusPreparing, o.Status)
	assert.Equal(t, 1, o.QueuePosition)

	o = f.advance(t, vendor1, o.ID, models.StatusReady)
	assert.Equal(t, models.StatusReady, o.Status)
	assert.Equal(t, 0, o.QueuePosition)
	assert.Nil(t, o.ActualPickupTime)

	o = f.advance(t, vendor1, o.ID, models.StatusCompleted)
	assert.Equal(t, models.StatusCompleted, o.Status)
	assert.Equal(t, 0, o.QueuePosition)
	require.NotNil(t, o.ActualPickupTime)
	assert.Equal(t, f.now, *o.ActualPickupTime)
}

func TestUpdateStatus_RejectsSkip(t *testing.T) {
	f := newFixture(t)

	o, err := f.svc.Create(context.Background(), student, cartRequest(line(1, 1)), "test")
	require.NoError(t, err)

	_, err = f.svc.UpdateStatus(context.Background(), vendor1, o.ID, models.StatusCompleted, "test")
	require.ErrorIs(t, err, apperrors.ErrIllegalTransition)

	stored, err := f.store.GetOrder(context.Background(), o.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusOrdered, stored.Status)
}

func TestUpdateStatus_RejectsRegression(t *testing.T) {
	f := newFixture(t)

	o, err := f.svc.Create(context.Background(), student, cartRequest(line(1, 1)), "test")
	require.NoError(t, err)
	f.advance(t, vendor1, o.ID, models.StatusPreparing)

	_, err = f.svc.UpdateStatus(context.Background(), vendor1, o.ID, models.StatusOrdered, "test")
	require.ErrorIs(t, err, apperrors.ErrIllegalTransition)
}

func TestUpdateStatus_Authorization(t *testing.T) {
	f := newFixture(t)

	o, err := f.svc.Create(context.Background(), student, cartRequest(line(1, 1)), "test")
	require.NoError(t, err)

	_, err = f.svc.UpdateStatus(context.Background(), student, o.ID, models.StatusPreparing, "test")
	require.ErrorIs(t, err, apperrors.ErrUnauthorized, "students cannot transition")

	_, err = f.svc.UpdateStatus(context.Background(), vendor2, o.ID, models.StatusPreparing, "test")
	require.ErrorIs(t, err, apperrors.ErrUnauthorized, "another vendor cannot transition")
}

func TestUpdateStatus_NotFound(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.UpdateStatus(context.Background(), vendor1, 999, models.StatusPreparing, "test")
	require.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestUpdateStatus_StaleWriteRejected(t *testing.T) {
	f := newFixture(t)

	o, err := f.svc.Create(context.Background(), student, cartRequest(line(1, 1)), "test")
	require.NoError(t, err)

	// Two writers race the same ordered -> preparing transition; the
	// second applies against a stale status and must be rejected.
	_, err = f.store.UpdateOrderStatus(context.Background(), o.ID, models.StatusOrdered, models.StatusPreparing)
	require.NoError(t, err)

	_, err = f.store.UpdateOrderStatus(context.Background(), o.ID, models.StatusOrdered, models.StatusPreparing)
	require.ErrorIs(t, err, apperrors.ErrConcurrencyConflict)

	stored, err := f.store.GetOrder(context.Background(), o.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPreparing, stored.Status)
}

func TestUpdateStatus_PublishesEvent(t *testing.T) {
	f := newFixture(t)

	o, err := f.svc.Create(context.Background(), student, cartRequest(line(1, 1)), "test")
	require.NoError(t, err)
	f.advance(t, vendor1, o.ID, models.StatusPreparing, models.StatusReady)

	require.Len(t, f.publisher.messages, 2)
	assert.Equal(t, models.StatusOrdered, f.publisher.messages[0].OldStatus)
	assert.Equal(t, models.StatusPreparing, f.publisher.messages[0].NewStatus)
	assert.Equal(t, models.StatusReady, f.publisher.messages[1].NewStatus)
	assert.Equal(t, o.TokenNumber, f.publisher.messages[1].TokenNumber)
}

func TestActiveTokensPairwiseDistinct(t *testing.T) {
	f := newFixture(t)

	seen := make(map[int]bool)
	for i := 0; i < 5; i++ {
		o, err := f.svc.Create(context.Background(), student, cartRequest(line(1, 1)), "test")
		require.NoError(t, err)
		require.False(t, seen[o.TokenNumber], "token %d issued twice within the active set", o.TokenNumber)
		seen[o.TokenNumber] = true
	}
}

func TestList_StudentSeesOwnVendorSeesAll(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Create(context.Background(), student, cartRequest(line(1, 1)), "test")
	require.NoError(t, err)
	_, err = f.svc.Create(context.Background(), student2, cartRequest(line(2, 1)), "test")
	require.NoError(t, err)

	own, err := f.svc.List(context.Background(), student, "test")
	require.NoError(t, err)
	require.Len(t, own, 1)
	assert.Equal(t, student.UserID, own[0].UserID)
	assert.Equal(t, 1, own[0].QueuePosition)

	all, err := f.svc.List(context.Background(), vendor1, "test")
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, 1, all[0].QueuePosition)
	assert.Equal(t, 2, all[1].QueuePosition)
}

func TestGetByToken(t *testing.T) {
	f := newFixture(t)

	o, err := f.svc.Create(context.Background(), student, cartRequest(line(1, 1)), "test")
	require.NoError(t, err)

	got, err := f.svc.GetByToken(context.Background(), vendor1, o.TokenNumber)
	require.NoError(t, err)
	assert.Equal(t, o.ID, got.ID)
	assert.Equal(t, 1, got.QueuePosition)

	_, err = f.svc.GetByToken(context.Background(), student, o.TokenNumber)
	require.ErrorIs(t, err, apperrors.ErrUnauthorized)

	// A completed order no longer answers to its token.
	f.advance(t, vendor1, o.ID, models.StatusPreparing, models.StatusReady, models.StatusCompleted)
	_, err = f.svc.GetByToken(context.Background(), vendor1, o.TokenNumber)
	require.ErrorIs(t, err, apperrors.ErrNotFound)
}
