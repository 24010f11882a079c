package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"canteen-rush/internal/database"
)

// PostgresCatalog reads menu items from the shared database.
type PostgresCatalog struct {
	db *database.DB
}

// NewPostgresCatalog creates a catalog over the given database.
func NewPostgresCatalog(db *database.DB) *PostgresCatalog {
	return &PostgresCatalog{db: db}
}

// Get implements Lookup.
func (c *PostgresCatalog) Get(ctx context.Context, menuItemID int) (*Item, error) {
	var item Item
	err := c.db.QueryRow(ctx, database.GetMenuItemSQL, menuItemID).Scan(
		&item.ID,
		&item.VendorID,
		&item.Name,
		&item.Description,
		&item.Price,
		&item.PrepTimeEstimate,
		&item.IsAvailable,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, notFound(menuItemID)
		}
		return nil, fmt.Errorf("failed to query menu item %d: %w", menuItemID, err)
	}
	return &item, nil
}

// ListAvailable implements Catalog.
func (c *PostgresCatalog) ListAvailable(ctx context.Context) ([]Item, error) {
	rows, err := c.db.Query(ctx, database.ListAvailableMenuItemsSQL)
	if err != nil {
		return nil, fmt.Errorf("failed to query menu items: %w", err)
	}
	defer rows.Close()

	var items []Item
	for rows.Next() {
		var item Item
		if err := rows.Scan(
			&item.ID,
			&item.VendorID,
			&item.Name,
			&item.Description,
			&item.Price,
			&item.PrepTimeEstimate,
			&item.IsAvailable,
		); err != nil {
			return nil, fmt.Errorf("failed to scan menu item: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}
