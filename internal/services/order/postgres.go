package order

import (
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"canteen-rush/internal/apperrors"
	"canteen-rush/internal/database"
	"canteen-rush/internal/models"
)

// activeTokenConstraint is the partial unique index guarding token
// uniqueness over the active set (see migrations).
const activeTokenConstraint = "orders_active_token_key"

// PostgresStore is the pgx-backed Store.
type PostgresStore struct {
	db *database.DB
}

// NewPostgresStore creates a store over the given database.
func NewPostgresStore(db *database.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// CreateOrder implements Store. The order row and all its lines commit in
// one transaction; a token collision surfaces as ErrTokenTaken so intake
// can retry with a fresh draw.
func (s *PostgresStore) CreateOrder(ctx context.Context, o *models.Order) error {
	return s.withRetry(func() error {
		tx, err := s.db.Begin(ctx)
		if err != nil {
			return fmt.Errorf("failed to begin transaction: %w", err)
		}
		defer tx.Rollback(ctx)

		err = tx.QueryRow(ctx, database.InsertOrderSQL,
			o.UserID, o.VendorID, o.Status, o.TotalPrice, o.TokenNumber, o.PredictedPickupTime,
		).Scan(&o.ID, &o.CreatedAt, &o.UpdatedAt)
		if err != nil {
			if isTokenConflict(err) {
				return ErrTokenTaken
			}
			return fmt.Errorf("failed to insert order: %w", err)
		}

		for i := range o.Lines {
			o.Lines[i].OrderID = o.ID
			err = tx.QueryRow(ctx, database.InsertOrderLineSQL,
				o.ID, o.Lines[i].MenuItemID, o.Lines[i].Quantity,
			).Scan(&o.Lines[i].ID)
			if err != nil {
				return fmt.Errorf("failed to insert order line: %w", err)
			}
		}

		return tx.Commit(ctx)
	})
}

// GetOrder implements Store.
func (s *PostgresStore) GetOrder(ctx context.Context, id int) (*models.Order, error) {
	var o *models.Order
	err := s.withRetry(func() error {
		var err error
		o, err = s.queryOrder(ctx, database.GetOrderSQL, id)
		return err
	})
	return o, err
}

// GetActiveOrderByToken implements Store.
func (s *PostgresStore) GetActiveOrderByToken(ctx context.Context, tokenNumber int) (*models.Order, error) {
	var o *models.Order
	err := s.withRetry(func() error {
		var err error
		o, err = s.queryOrder(ctx, database.GetActiveOrderByTokenSQL, tokenNumber)
		return err
	})
	return o, err
}

// ListOrders implements Store.
func (s *PostgresStore) ListOrders(ctx context.Context) ([]models.Order, error) {
	return s.listOrders(ctx, database.ListOrdersSQL)
}

// ListOrdersByUser implements Store.
func (s *PostgresStore) ListOrdersByUser(ctx context.Context, userID int) ([]models.Order, error) {
	return s.listOrders(ctx, database.ListOrdersByUserSQL, userID)
}

// ListActiveOrders implements Store. Lines are not loaded; ranking only
// needs ids, statuses and creation times.
func (s *PostgresStore) ListActiveOrders(ctx context.Context) ([]models.Order, error) {
	var orders []models.Order
	err := s.withRetry(func() error {
		var err error
		orders, err = s.scanOrders(ctx, database.ListActiveOrdersSQL)
		return err
	})
	return orders, err
}

// UpdateOrderStatus implements Store.
func (s *PostgresStore) UpdateOrderStatus(ctx context.Context, id int, from, to models.OrderStatus) (*models.Order, error) {
	var updated *models.Order
	err := s.withRetry(func() error {
		sql := database.UpdateOrderStatusSQL
		if to == models.StatusCompleted {
			sql = database.CompleteOrderSQL
		}

		tag, err := s.db.Pool.Exec(ctx, sql, to, id, from)
		if err != nil {
			return fmt.Errorf("failed to update order status: %w", err)
		}
		if tag.RowsAffected() == 0 {
			// Either missing or a concurrent transition won. Re-read to
			// tell the cases apart; the write itself is never replayed.
			if _, err := s.queryOrder(ctx, database.GetOrderSQL, id); err != nil {
				return err
			}
			return fmt.Errorf("%w: order %d is no longer %s", apperrors.ErrConcurrencyConflict, id, from)
		}

		updated, err = s.queryOrder(ctx, database.GetOrderSQL, id)
		return err
	})
	return updated, err
}

// Ping implements Store.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

func (s *PostgresStore) queryOrder(ctx context.Context, sql string, arg any) (*models.Order, error) {
	var o models.Order
	err := s.db.QueryRow(ctx, sql, arg).Scan(
		&o.ID, &o.UserID, &o.VendorID, &o.Status, &o.TotalPrice, &o.TokenNumber,
		&o.CreatedAt, &o.UpdatedAt, &o.PredictedPickupTime, &o.ActualPickupTime,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: order", apperrors.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to query order: %w", err)
	}

	if err := s.loadLines(ctx, &o); err != nil {
		return nil, err
	}
	return &o, nil
}

func (s *PostgresStore) listOrders(ctx context.Context, sql string, args ...any) ([]models.Order, error) {
	var orders []models.Order
	err := s.withRetry(func() error {
		var err error
		orders, err = s.scanOrders(ctx, sql, args...)
		if err != nil {
			return err
		}
		for i := range orders {
			if err := s.loadLines(ctx, &orders[i]); err != nil {
				return err
			}
		}
		return nil
	})
	return orders, err
}

func (s *PostgresStore) scanOrders(ctx context.Context, sql string, args ...any) ([]models.Order, error) {
	rows, err := s.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	var orders []models.Order
	for rows.Next() {
		var o models.Order
		if err := rows.Scan(
			&o.ID, &o.UserID, &o.VendorID, &o.Status, &o.TotalPrice, &o.TokenNumber,
			&o.CreatedAt, &o.UpdatedAt, &o.PredictedPickupTime, &o.ActualPickupTime,
		); err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

func (s *PostgresStore) loadLines(ctx context.Context, o *models.Order) error {
	rows, err := s.db.Query(ctx, database.GetOrderLinesSQL, o.ID)
	if err != nil {
		return fmt.Errorf("failed to query order lines: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var line models.OrderLine
		if err := rows.Scan(&line.ID, &line.OrderID, &line.MenuItemID, &line.Quantity); err != nil {
			return fmt.Errorf("failed to scan order line: %w", err)
		}
		o.Lines = append(o.Lines, line)
	}
	return rows.Err()
}

// withRetry retries an operation once when pgx reports it safe to retry
// (connection lost before the write reached the server). A persistent
// connection-class failure surfaces as ErrStoreUnavailable.
func (s *PostgresStore) withRetry(op func() error) error {
	err := op()
	if err != nil && pgconn.SafeToRetry(err) {
		err = op()
	}
	if err != nil && isUnavailable(err) {
		return fmt.Errorf("%w: %v", apperrors.ErrStoreUnavailable, err)
	}
	return err
}

func isTokenConflict(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505" && pgErr.ConstraintName == activeTokenConstraint
}

func isUnavailable(err error) bool {
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	var connectErr *pgconn.ConnectError
	return errors.As(err, &connectErr)
}
