package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vamazon/storefront/internal/core/domain"
	"github.com/vamazon/storefront/internal/port"
)

// maxOrderNumberAttempts bounds retries on an order-number collision.
const maxOrderNumberAttempts = 5

// maxStatusUpdateAttempts bounds re-checks when a status update loses
// a compare-and-swap race.
const maxStatusUpdateAttempts = 3

type CheckoutService struct {
	catalog       port.CatalogRepository
	carts         port.CartRepository
	orders        port.OrderRepository
	cache         port.CacheRepository
	notifier      port.Notifier
	notifyTimeout time.Duration
}

func NewCheckoutService(
	catalog port.CatalogRepository,
	carts port.CartRepository,
	orders port.OrderRepository,
	cache port.CacheRepository,
	notifier port.Notifier,
	notifyTimeout time.Duration,
) *CheckoutService {
	return &CheckoutService{
		catalog:       catalog,
		carts:         carts,
		orders:        orders,
		cache:         cache,
		notifier:      notifier,
		notifyTimeout: notifyTimeout,
	}
}

// CheckoutCart converts the session's cart into an order: prices are
// snapshotted from the catalog up front, then the order insert, the
// per-line stock decrement, and the cart clear commit as one
// transaction. The confirmation email goes out after the commit and
// never affects the result.
func (s *CheckoutService) CheckoutCart(ctx context.Context, sessionID string, shipping domain.ShippingAddress, userID int64) (*domain.Order, error) {
	cart, err := s.carts.GetCart(ctx, sessionID)
	if errors.Is(err, port.ErrCartNotFound) {
		return nil, ErrEmptyCart
	}
	if err != nil {
		return nil, fmt.Errorf("load cart: %w", err)
	}
	if cart.Empty() {
		return nil, ErrEmptyCart
	}

	items := make([]domain.OrderItem, 0, len(cart.Items))
	emailItems := make([]port.ConfirmationItem, 0, len(cart.Items))
	total := decimal.Zero
	for _, line := range cart.Items {
		product, err := s.catalog.GetProduct(ctx, line.ProductID)
		if err != nil {
			return nil, fmt.Errorf("load product %d: %w", line.ProductID, err)
		}
		if product == nil {
			return nil, fmt.Errorf("product %d: %w", line.ProductID, ErrProductNotFound)
		}

		// price captured here, never re-read inside the transaction
		lineTotal := product.Price.Mul(decimal.NewFromInt(int64(line.Quantity)))
		total = total.Add(lineTotal)
		items = append(items, domain.OrderItem{
			ProductID:       line.ProductID,
			Quantity:        line.Quantity,
			PriceAtPurchase: product.Price,
		})
		emailItems = append(emailItems, port.ConfirmationItem{
			Name:      product.Name,
			Quantity:  line.Quantity,
			LineTotal: lineTotal.Round(2),
			ImageURL:  product.ImageURL,
		})
	}

	order, err := s.placeOrder(ctx, userID, shipping, total.Round(2), items, cart.ID)
	if err != nil {
		return nil, err
	}

	s.invalidateCartCache(sessionID)
	s.dispatchConfirmation(order, emailItems)
	return order, nil
}

// BuyNow converts a single product selection directly into an order,
// bypassing the cart. Stock is checked and decremented inside the same
// transaction as the order insert.
func (s *CheckoutService) BuyNow(ctx context.Context, productID int64, quantity int, shipping domain.ShippingAddress, userID int64) (*domain.Order, error) {
	if quantity < 1 {
		return nil, ErrInvalidQuantity
	}

	product, err := s.catalog.GetProduct(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("load product %d: %w", productID, err)
	}
	if product == nil {
		return nil, fmt.Errorf("product %d: %w", productID, ErrProductNotFound)
	}
	if product.Stock < quantity {
		return nil, port.ErrInsufficientStock
	}

	total := product.Price.Mul(decimal.NewFromInt(int64(quantity))).Round(2)
	items := []domain.OrderItem{{
		ProductID:       productID,
		Quantity:        quantity,
		PriceAtPurchase: product.Price,
	}}

	order, err := s.placeOrder(ctx, userID, shipping, total, items, 0)
	if err != nil {
		return nil, err
	}

	s.dispatchConfirmation(order, []port.ConfirmationItem{{
		Name:      product.Name,
		Quantity:  quantity,
		LineTotal: total,
		ImageURL:  product.ImageURL,
	}})
	return order, nil
}

func (s *CheckoutService) GetOrder(ctx context.Context, orderNumber string) (*domain.Order, error) {
	return s.orders.GetOrderByNumber(ctx, orderNumber)
}

func (s *CheckoutService) ListOrders(ctx context.Context, userID int64) ([]*domain.Order, error) {
	return s.orders.ListOrdersByUser(ctx, userID)
}

// UpdateOrderStatus re-reads and re-checks the transition when a
// concurrent update changes the status between read and write, so a
// backward move can never slip through the race.
func (s *CheckoutService) UpdateOrderStatus(ctx context.Context, orderNumber string, status domain.OrderStatus) error {
	if !status.Valid() {
		return ErrInvalidStatus
	}

	var lastErr error
	for attempt := 0; attempt < maxStatusUpdateAttempts; attempt++ {
		order, err := s.orders.GetOrderByNumber(ctx, orderNumber)
		if err != nil {
			return err
		}
		if !order.Status.CanAdvanceTo(status) {
			return ErrStatusNotForward
		}

		err = s.orders.UpdateOrderStatus(ctx, orderNumber, order.Status, status)
		if errors.Is(err, port.ErrStatusConflict) {
			lastErr = err
			continue
		}
		return err
	}
	return fmt.Errorf("update order status after %d attempts: %w", maxStatusUpdateAttempts, lastErr)
}

// placeOrder commits the order, regenerating the order number on a
// uniqueness conflict instead of failing the checkout.
func (s *CheckoutService) placeOrder(ctx context.Context, userID int64, shipping domain.ShippingAddress, total decimal.Decimal, items []domain.OrderItem, clearCartID int64) (*domain.Order, error) {
	var lastErr error
	for attempt := 0; attempt < maxOrderNumberAttempts; attempt++ {
		order := &domain.Order{
			OrderNumber: NewOrderNumber(time.Now()),
			UserID:      userID,
			Shipping:    shipping,
			TotalAmount: total,
			Status:      domain.OrderStatusConfirmed,
			CreatedAt:   time.Now(),
			Items:       items,
		}

		err := s.orders.CreateOrder(ctx, order, clearCartID)
		if errors.Is(err, port.ErrOrderNumberTaken) {
			lastErr = err
			continue
		}
		if err != nil {
			return nil, err
		}
		return order, nil
	}
	return nil, fmt.Errorf("allocate order number after %d attempts: %w", maxOrderNumberAttempts, lastErr)
}

func (s *CheckoutService) invalidateCartCache(sessionID string) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := s.cache.DeleteCart(ctx, sessionID); err != nil {
		log.Printf("cart cache invalidate error: %v", err)
	}
}

// dispatchConfirmation runs outside the transaction; a slow or failing
// mail path cannot stall or roll back the checkout.
func (s *CheckoutService) dispatchConfirmation(order *domain.Order, items []port.ConfirmationItem) {
	if order.Shipping.Email == "" {
		log.Printf("order %s: no customer email, skipping confirmation", order.OrderNumber)
		return
	}

	msg := port.OrderConfirmation{
		ToEmail:      order.Shipping.Email,
		CustomerName: order.Shipping.CustomerName,
		OrderNumber:  order.OrderNumber,
		Items:        items,
		TotalAmount:  order.TotalAmount,
		Shipping:     order.Shipping,
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.notifyTimeout)
		defer cancel()
		if err := s.notifier.SendOrderConfirmation(ctx, msg); err != nil {
			log.Printf("order %s: confirmation email failed: %v", order.OrderNumber, err)
		}
	}()
}
