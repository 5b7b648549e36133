package port

import (
	"context"

	"github.com/vamazon/storefront/internal/core/domain"
)

type CatalogRepository interface {
	// GetProduct retrieves a product by ID, nil when it does not exist
	GetProduct(ctx context.Context, productID int64) (*domain.Product, error)
}

type CartRepository interface {
	// GetOrCreateCart returns the cart for the session, creating an
	// empty one on first access
	GetOrCreateCart(ctx context.Context, sessionID string) (*domain.Cart, error)

	// GetCart returns ErrCartNotFound when no cart exists for the session
	GetCart(ctx context.Context, sessionID string) (*domain.Cart, error)

	// AddItem appends a line, or increases quantity when the product is
	// already in the cart
	AddItem(ctx context.Context, cartID, productID int64, quantity int) error

	// UpdateItemQuantity overwrites a line's quantity; quantity <= 0
	// deletes the line
	UpdateItemQuantity(ctx context.Context, cartID, itemID int64, quantity int) error

	RemoveItem(ctx context.Context, cartID, itemID int64) error
	ClearCart(ctx context.Context, cartID int64) error
}

type OrderRepository interface {
	// CreateOrder persists the order with its items, decrements product
	// stock per item, and clears the source cart (clearCartID > 0), all
	// in one transaction. Returns ErrOrderNumberTaken on a number
	// collision and ErrInsufficientStock when any decrement would go
	// negative; nothing is persisted in either case.
	CreateOrder(ctx context.Context, order *domain.Order, clearCartID int64) error

	// GetOrderByNumber returns the order with all its items,
	// ErrOrderNotFound when absent
	GetOrderByNumber(ctx context.Context, orderNumber string) (*domain.Order, error)

	// ListOrdersByUser returns the user's orders, newest first
	ListOrdersByUser(ctx context.Context, userID int64) ([]*domain.Order, error)

	// UpdateOrderStatus sets the status of an existing order, but only
	// when its current status still equals from. Returns
	// ErrStatusConflict when a concurrent update won the race,
	// ErrOrderNotFound when the order does not exist.
	UpdateOrderStatus(ctx context.Context, orderNumber string, from, to domain.OrderStatus) error
}
