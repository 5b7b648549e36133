package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/vamazon/storefront/internal/core/domain"
	"github.com/vamazon/storefront/internal/port"
)

func (m *MySQLAdapter) GetOrCreateCart(ctx context.Context, sessionID string) (*domain.Cart, error) {
	cart, err := m.GetCart(ctx, sessionID)
	if err == nil {
		return cart, nil
	}
	if !errors.Is(err, port.ErrCartNotFound) {
		return nil, err
	}

	_, err = m.db.ExecContext(ctx,
		`INSERT INTO carts (session_id) VALUES (?)`, sessionID)
	if err != nil && !isDuplicateKey(err) {
		// duplicate key means a concurrent request created it first
		return nil, fmt.Errorf("create cart: %w", err)
	}

	return m.GetCart(ctx, sessionID)
}

func (m *MySQLAdapter) GetCart(ctx context.Context, sessionID string) (*domain.Cart, error) {
	var cart domain.Cart
	err := m.db.QueryRowContext(ctx, `
		SELECT id, session_id, created_at
		FROM carts WHERE session_id = ?`, sessionID,
	).Scan(&cart.ID, &cart.SessionID, &cart.CreatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, port.ErrCartNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query cart: %w", err)
	}

	rows, err := m.db.QueryContext(ctx, `
		SELECT id, cart_id, product_id, quantity
		FROM cart_items WHERE cart_id = ? ORDER BY id`, cart.ID)
	if err != nil {
		return nil, fmt.Errorf("query cart items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var item domain.CartItem
		if err := rows.Scan(&item.ID, &item.CartID, &item.ProductID, &item.Quantity); err != nil {
			return nil, fmt.Errorf("scan cart item: %w", err)
		}
		cart.Items = append(cart.Items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate cart items: %w", err)
	}

	return &cart, nil
}

func (m *MySQLAdapter) AddItem(ctx context.Context, cartID, productID int64, quantity int) error {
	_, err := m.db.ExecContext(ctx, `
		INSERT INTO cart_items (cart_id, product_id, quantity)
		VALUES (?, ?, ?)
		ON DUPLICATE KEY UPDATE quantity = quantity + VALUES(quantity)`,
		cartID, productID, quantity)
	if err != nil {
		return fmt.Errorf("upsert cart item: %w", err)
	}
	return nil
}

func (m *MySQLAdapter) UpdateItemQuantity(ctx context.Context, cartID, itemID int64, quantity int) error {
	// MySQL reports zero affected rows for a same-value update, so
	// existence is checked first.
	var id int64
	err := m.db.QueryRowContext(ctx,
		`SELECT id FROM cart_items WHERE id = ? AND cart_id = ?`,
		itemID, cartID,
	).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return port.ErrCartItemNotFound
	}
	if err != nil {
		return fmt.Errorf("query cart item: %w", err)
	}

	if quantity <= 0 {
		_, err = m.db.ExecContext(ctx,
			`DELETE FROM cart_items WHERE id = ? AND cart_id = ?`, itemID, cartID)
		if err != nil {
			return fmt.Errorf("delete cart item: %w", err)
		}
		return nil
	}

	_, err = m.db.ExecContext(ctx,
		`UPDATE cart_items SET quantity = ? WHERE id = ? AND cart_id = ?`,
		quantity, itemID, cartID)
	if err != nil {
		return fmt.Errorf("update cart item: %w", err)
	}
	return nil
}

func (m *MySQLAdapter) RemoveItem(ctx context.Context, cartID, itemID int64) error {
	result, err := m.db.ExecContext(ctx,
		`DELETE FROM cart_items WHERE id = ? AND cart_id = ?`, itemID, cartID)
	if err != nil {
		return fmt.Errorf("delete cart item: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return port.ErrCartItemNotFound
	}
	return nil
}

func (m *MySQLAdapter) ClearCart(ctx context.Context, cartID int64) error {
	_, err := m.db.ExecContext(ctx,
		`DELETE FROM cart_items WHERE cart_id = ?`, cartID)
	if err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	return nil
}
