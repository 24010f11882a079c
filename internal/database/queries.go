package database

// Order queries
const (
	InsertOrderSQL = `
		INSERT INTO orders (user_id, vendor_id, status, total_price, token_number, predicted_pickup_time)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at`

	InsertOrderLineSQL = `
		INSERT INTO order_lines (order_id, menu_item_id, quantity)
		VALUES ($1, $2, $3)
		RETURNING id`

	orderColumns = `id, user_id, vendor_id, status, total_price, token_number,
			   created_at, updated_at, predicted_pickup_time, actual_pickup_time`

	GetOrderSQL = `
		SELECT ` + orderColumns + `
		FROM orders WHERE id = $1`

	GetOrderLinesSQL = `
		SELECT id, order_id, menu_item_id, quantity
		FROM order_lines
		WHERE order_id = $1
		ORDER BY id ASC`

	GetActiveOrderByTokenSQL = `
		SELECT ` + orderColumns + `
		FROM orders
		WHERE token_number = $1 AND status IN ('ordered', 'preparing')`

	ListOrdersSQL = `
		SELECT ` + orderColumns + `
		FROM orders
		ORDER BY created_at ASC, id ASC`

	ListOrdersByUserSQL = `
		SELECT ` + orderColumns + `
		FROM orders
		WHERE user_id = $1
		ORDER BY created_at ASC, id ASC`

	ListActiveOrdersSQL = `
		SELECT ` + orderColumns + `
		FROM orders
		WHERE status IN ('ordered', 'preparing')
		ORDER BY created_at ASC, id ASC`

	// Compare-and-set on the prior status. Zero rows affected on an
	// existing order means a concurrent transition won.
	UpdateOrderStatusSQL = `
		UPDATE orders SET status = $1, updated_at = NOW()
		WHERE id = $2 AND status = $3`

	CompleteOrderSQL = `
		UPDATE orders SET status = $1, actual_pickup_time = NOW(), updated_at = NOW()
		WHERE id = $2 AND status = $3`
)

// Menu queries
const (
	GetMenuItemSQL = `
		SELECT id, vendor_id, name, description, price, prep_time_estimate, is_available
		FROM menu_items WHERE id = $1`

	ListAvailableMenuItemsSQL = `
		SELECT id, vendor_id, name, description, price, prep_time_estimate, is_available
		FROM menu_items
		WHERE is_available
		ORDER BY vendor_id ASC, id ASC`
)
