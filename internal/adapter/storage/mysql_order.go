package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/vamazon/storefront/internal/core/domain"
	"github.com/vamazon/storefront/internal/port"
)

// CreateOrder commits the order, its items, the per-item stock
// decrement, and the cart clear as one transaction. A conditional
// UPDATE guards the decrement so concurrent checkouts serialize and
// stock never goes negative.
func (m *MySQLAdapter) CreateOrder(ctx context.Context, order *domain.Order, clearCartID int64) error {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, `
		INSERT INTO orders (order_number, user_id, customer_name, email, phone,
			address_line1, address_line2, city, state, pincode,
			total_amount, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		order.OrderNumber, order.UserID,
		order.Shipping.CustomerName, order.Shipping.Email, order.Shipping.Phone,
		order.Shipping.AddressLine1, order.Shipping.AddressLine2,
		order.Shipping.City, order.Shipping.State, order.Shipping.Pincode,
		order.TotalAmount, order.Status, order.CreatedAt,
	)
	if err != nil {
		if isDuplicateKey(err) {
			return port.ErrOrderNumberTaken
		}
		return fmt.Errorf("insert order: %w", err)
	}

	orderID, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("order id: %w", err)
	}

	for i := range order.Items {
		item := &order.Items[i]
		res, err := tx.ExecContext(ctx, `
			INSERT INTO order_items (order_id, product_id, quantity, price_at_purchase)
			VALUES (?, ?, ?, ?)`,
			orderID, item.ProductID, item.Quantity, item.PriceAtPurchase,
		)
		if err != nil {
			return fmt.Errorf("insert order item: %w", err)
		}
		itemID, _ := res.LastInsertId()
		item.ID = itemID
		item.OrderID = orderID

		stockRes, err := tx.ExecContext(ctx, `
			UPDATE products SET stock = stock - ?
			WHERE id = ? AND stock >= ?`,
			item.Quantity, item.ProductID, item.Quantity,
		)
		if err != nil {
			return fmt.Errorf("decrement stock: %w", err)
		}
		rows, _ := stockRes.RowsAffected()
		if rows == 0 {
			return port.ErrInsufficientStock
		}
	}

	if clearCartID > 0 {
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM cart_items WHERE cart_id = ?`, clearCartID); err != nil {
			return fmt.Errorf("clear cart: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit order: %w", err)
	}

	order.ID = orderID
	return nil
}

func (m *MySQLAdapter) GetOrderByNumber(ctx context.Context, orderNumber string) (*domain.Order, error) {
	var order domain.Order
	err := m.db.QueryRowContext(ctx, `
		SELECT id, order_number, user_id, customer_name, email, phone,
			address_line1, address_line2, city, state, pincode,
			total_amount, status, created_at
		FROM orders WHERE order_number = ?`, orderNumber,
	).Scan(
		&order.ID, &order.OrderNumber, &order.UserID,
		&order.Shipping.CustomerName, &order.Shipping.Email, &order.Shipping.Phone,
		&order.Shipping.AddressLine1, &order.Shipping.AddressLine2,
		&order.Shipping.City, &order.Shipping.State, &order.Shipping.Pincode,
		&order.TotalAmount, &order.Status, &order.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, port.ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query order: %w", err)
	}

	if err := m.loadOrderItems(ctx, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

func (m *MySQLAdapter) ListOrdersByUser(ctx context.Context, userID int64) ([]*domain.Order, error) {
	rows, err := m.db.QueryContext(ctx, `
		SELECT id, order_number, user_id, customer_name, email, phone,
			address_line1, address_line2, city, state, pincode,
			total_amount, status, created_at
		FROM orders WHERE user_id = ? ORDER BY created_at DESC, id DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("query orders: %w", err)
	}
	defer rows.Close()

	var orders []*domain.Order
	for rows.Next() {
		var order domain.Order
		if err := rows.Scan(
			&order.ID, &order.OrderNumber, &order.UserID,
			&order.Shipping.CustomerName, &order.Shipping.Email, &order.Shipping.Phone,
			&order.Shipping.AddressLine1, &order.Shipping.AddressLine2,
			&order.Shipping.City, &order.Shipping.State, &order.Shipping.Pincode,
			&order.TotalAmount, &order.Status, &order.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, &order)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate orders: %w", err)
	}

	for _, order := range orders {
		if err := m.loadOrderItems(ctx, order); err != nil {
			return nil, err
		}
	}
	return orders, nil
}

// UpdateOrderStatus is a compare-and-swap: the update only lands when
// the row still carries the status the caller read. Zero affected rows
// means either the order is gone or another update got there first.
func (m *MySQLAdapter) UpdateOrderStatus(ctx context.Context, orderNumber string, from, to domain.OrderStatus) error {
	result, err := m.db.ExecContext(ctx,
		`UPDATE orders SET status = ? WHERE order_number = ? AND status = ?`,
		to, orderNumber, from)
	if err != nil {
		return fmt.Errorf("update order status: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 1 {
		return nil
	}

	var id int64
	err = m.db.QueryRowContext(ctx,
		`SELECT id FROM orders WHERE order_number = ?`, orderNumber,
	).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return port.ErrOrderNotFound
	}
	if err != nil {
		return fmt.Errorf("query order: %w", err)
	}
	return port.ErrStatusConflict
}

func (m *MySQLAdapter) loadOrderItems(ctx context.Context, order *domain.Order) error {
	rows, err := m.db.QueryContext(ctx, `
		SELECT id, order_id, product_id, quantity, price_at_purchase
		FROM order_items WHERE order_id = ? ORDER BY id`, order.ID)
	if err != nil {
		return fmt.Errorf("query order items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var item domain.OrderItem
		if err := rows.Scan(&item.ID, &item.OrderID, &item.ProductID,
			&item.Quantity, &item.PriceAtPurchase); err != nil {
			return fmt.Errorf("scan order item: %w", err)
		}
		order.Items = append(order.Items, item)
	}
	return rows.Err()
}
