package queue

import (
	"context"
	"testing"
	"time"

	"canteen-rush/internal/models"
)

type fakeLister struct {
	orders []models.Order
}

func (f *fakeLister) ListActiveOrders(_ context.Context) ([]models.Order, error) {
	return f.orders, nil
}

func activeOrder(id int, createdAt time.Time) models.Order {
	return models.Order{ID: id, Status: models.StatusOrdered, CreatedAt: createdAt}
}

func TestScanRanker_Position(t *testing.T) {
	base := time.Date(2026, 3, 9, 12, 0, 0, 0, time.UTC)
	lister := &fakeLister{orders: []models.Order{
		// Deliberately unsorted snapshot, with a created_at tie on 2 and 3.
		activeOrder(3, base.Add(time.Minute)),
		activeOrder(1, base),
		activeOrder(2, base.Add(time.Minute)),
	}}
	ranker := NewScanRanker(lister)

	tests := []struct {
		name  string
		order models.Order
		want  int
	}{
		{name: "earliest order is first", order: activeOrder(1, base), want: 1},
		{name: "tie broken by lower id", order: activeOrder(2, base.Add(time.Minute)), want: 2},
		{name: "tie broken by higher id", order: activeOrder(3, base.Add(time.Minute)), want: 3},
		{name: "ready order is unranked", order: models.Order{ID: 1, Status: models.StatusReady}, want: 0},
		{name: "completed order is unranked", order: models.Order{ID: 1, Status: models.StatusCompleted}, want: 0},
		{name: "unknown active order is unranked", order: activeOrder(99, base), want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ranker.Position(context.Background(), &tt.order)
			if err != nil {
				t.Fatalf("Position() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Position() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestScanRanker_DenseRanking(t *testing.T) {
	base := time.Date(2026, 3, 9, 12, 0, 0, 0, time.UTC)
	var orders []models.Order
	for i := 1; i <= 5; i++ {
		orders = append(orders, activeOrder(i, base.Add(time.Duration(i)*time.Second)))
	}
	ranker := NewScanRanker(&fakeLister{orders: orders})

	seen := make(map[int]bool)
	for i := range orders {
		pos, err := ranker.Position(context.Background(), &orders[i])
		if err != nil {
			t.Fatalf("Position() error = %v", err)
		}
		if pos < 1 || pos > len(orders) {
			t.Fatalf("Position() = %d, want dense 1..%d", pos, len(orders))
		}
		if seen[pos] {
			t.Fatalf("Position() = %d assigned twice", pos)
		}
		seen[pos] = true
	}
}

func TestScanRanker_Idempotent(t *testing.T) {
	base := time.Date(2026, 3, 9, 12, 0, 0, 0, time.UTC)
	target := activeOrder(2, base.Add(time.Second))
	ranker := NewScanRanker(&fakeLister{orders: []models.Order{activeOrder(1, base), target}})

	first, err := ranker.Position(context.Background(), &target)
	if err != nil {
		t.Fatalf("Position() error = %v", err)
	}
	second, err := ranker.Position(context.Background(), &target)
	if err != nil {
		t.Fatalf("Position() error = %v", err)
	}
	if first != second {
		t.Errorf("Position() not idempotent without writes: %d then %d", first, second)
	}
}
