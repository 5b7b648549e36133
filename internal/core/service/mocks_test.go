package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/vamazon/storefront/internal/core/domain"
	"github.com/vamazon/storefront/internal/port"
)

// mockCatalog implements port.CatalogRepository
type mockCatalog struct {
	mu       sync.Mutex
	products map[int64]domain.Product
}

func newMockCatalog(products ...domain.Product) *mockCatalog {
	m := &mockCatalog{products: make(map[int64]domain.Product)}
	for _, p := range products {
		m.products[p.ID] = p
	}
	return m
}

func (m *mockCatalog) GetProduct(_ context.Context, productID int64) (*domain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.products[productID]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (m *mockCatalog) setPrice(productID int64, price string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p := m.products[productID]
	p.Price = mustDecimal(price)
	m.products[productID] = p
}

func (m *mockCatalog) stock(productID int64) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.products[productID].Stock
}

// mockCartRepo implements port.CartRepository
type mockCartRepo struct {
	mu         sync.Mutex
	carts      map[string]*domain.Cart
	nextCartID int64
	nextItemID int64
}

func newMockCartRepo() *mockCartRepo {
	return &mockCartRepo{carts: make(map[string]*domain.Cart)}
}

func (m *mockCartRepo) GetOrCreateCart(ctx context.Context, sessionID string) (*domain.Cart, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	cart, ok := m.carts[sessionID]
	if !ok {
		m.nextCartID++
		cart = &domain.Cart{ID: m.nextCartID, SessionID: sessionID}
		m.carts[sessionID] = cart
	}
	return copyCart(cart), nil
}

func (m *mockCartRepo) GetCart(_ context.Context, sessionID string) (*domain.Cart, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	cart, ok := m.carts[sessionID]
	if !ok {
		return nil, port.ErrCartNotFound
	}
	return copyCart(cart), nil
}

func (m *mockCartRepo) AddItem(_ context.Context, cartID, productID int64, quantity int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	cart := m.cartByID(cartID)
	if cart == nil {
		return port.ErrCartNotFound
	}
	for i := range cart.Items {
		if cart.Items[i].ProductID == productID {
			cart.Items[i].Quantity += quantity
			return nil
		}
	}
	m.nextItemID++
	cart.Items = append(cart.Items, domain.CartItem{
		ID:        m.nextItemID,
		CartID:    cartID,
		ProductID: productID,
		Quantity:  quantity,
	})
	return nil
}

func (m *mockCartRepo) UpdateItemQuantity(_ context.Context, cartID, itemID int64, quantity int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	cart := m.cartByID(cartID)
	if cart == nil {
		return port.ErrCartNotFound
	}
	for i := range cart.Items {
		if cart.Items[i].ID == itemID {
			if quantity <= 0 {
				cart.Items = append(cart.Items[:i], cart.Items[i+1:]...)
			} else {
				cart.Items[i].Quantity = quantity
			}
			return nil
		}
	}
	return port.ErrCartItemNotFound
}

func (m *mockCartRepo) RemoveItem(ctx context.Context, cartID, itemID int64) error {
	return m.UpdateItemQuantity(ctx, cartID, itemID, 0)
}

func (m *mockCartRepo) ClearCart(_ context.Context, cartID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if cart := m.cartByID(cartID); cart != nil {
		cart.Items = nil
	}
	return nil
}

func (m *mockCartRepo) cartByID(cartID int64) *domain.Cart {
	for _, cart := range m.carts {
		if cart.ID == cartID {
			return cart
		}
	}
	return nil
}

func (m *mockCartRepo) clearByID(cartID int64) {
	if cart := m.cartByID(cartID); cart != nil {
		cart.Items = nil
	}
}

func copyCart(cart *domain.Cart) *domain.Cart {
	cp := *cart
	cp.Items = append([]domain.CartItem(nil), cart.Items...)
	return &cp
}

// mockOrderRepo implements port.OrderRepository, mirroring the ledger's
// transactional behavior: conditional stock decrement, order-number
// uniqueness, cart clear, all-or-nothing.
type mockOrderRepo struct {
	mu              sync.Mutex
	catalog         *mockCatalog
	carts           *mockCartRepo
	orders          map[string]*domain.Order
	nextID          int64
	collisions      int   // pending ErrOrderNumberTaken responses
	statusConflicts int   // pending ErrStatusConflict responses
	failWith        error // forced storage failure
}

func newMockOrderRepo(catalog *mockCatalog, carts *mockCartRepo) *mockOrderRepo {
	return &mockOrderRepo{
		catalog: catalog,
		carts:   carts,
		orders:  make(map[string]*domain.Order),
	}
}

func (m *mockOrderRepo) CreateOrder(_ context.Context, order *domain.Order, clearCartID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.failWith != nil {
		return m.failWith
	}
	if m.collisions > 0 {
		m.collisions--
		return port.ErrOrderNumberTaken
	}
	if _, exists := m.orders[order.OrderNumber]; exists {
		return port.ErrOrderNumberTaken
	}

	m.catalog.mu.Lock()
	for _, item := range order.Items {
		if m.catalog.products[item.ProductID].Stock < item.Quantity {
			m.catalog.mu.Unlock()
			return port.ErrInsufficientStock
		}
	}
	for _, item := range order.Items {
		p := m.catalog.products[item.ProductID]
		p.Stock -= item.Quantity
		m.catalog.products[item.ProductID] = p
	}
	m.catalog.mu.Unlock()

	if clearCartID > 0 {
		m.carts.mu.Lock()
		m.carts.clearByID(clearCartID)
		m.carts.mu.Unlock()
	}

	m.nextID++
	order.ID = m.nextID
	stored := *order
	stored.Items = append([]domain.OrderItem(nil), order.Items...)
	m.orders[order.OrderNumber] = &stored
	return nil
}

func (m *mockOrderRepo) GetOrderByNumber(_ context.Context, orderNumber string) (*domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	order, ok := m.orders[orderNumber]
	if !ok {
		return nil, port.ErrOrderNotFound
	}
	cp := *order
	cp.Items = append([]domain.OrderItem(nil), order.Items...)
	return &cp, nil
}

func (m *mockOrderRepo) ListOrdersByUser(_ context.Context, userID int64) ([]*domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var orders []*domain.Order
	for _, order := range m.orders {
		if order.UserID == userID {
			cp := *order
			orders = append(orders, &cp)
		}
	}
	sort.Slice(orders, func(i, j int) bool {
		if !orders[i].CreatedAt.Equal(orders[j].CreatedAt) {
			return orders[i].CreatedAt.After(orders[j].CreatedAt)
		}
		return orders[i].ID > orders[j].ID
	})
	return orders, nil
}

func (m *mockOrderRepo) UpdateOrderStatus(_ context.Context, orderNumber string, from, to domain.OrderStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	order, ok := m.orders[orderNumber]
	if !ok {
		return port.ErrOrderNotFound
	}
	if m.statusConflicts > 0 {
		m.statusConflicts--
		return port.ErrStatusConflict
	}
	if order.Status != from {
		return port.ErrStatusConflict
	}
	order.Status = to
	return nil
}

func (m *mockOrderRepo) backdate(orderNumber string, d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if order, ok := m.orders[orderNumber]; ok {
		order.CreatedAt = order.CreatedAt.Add(-d)
	}
}

func (m *mockOrderRepo) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.orders)
}

// mockCache implements port.CacheRepository
type mockCache struct {
	mu    sync.Mutex
	carts map[string]*domain.Cart
}

func newMockCache() *mockCache {
	return &mockCache{carts: make(map[string]*domain.Cart)}
}

func (m *mockCache) GetCart(ctx context.Context, sessionID string) (*domain.Cart, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	cart, ok := m.carts[sessionID]
	if !ok {
		return nil, port.ErrCacheMiss
	}
	return copyCart(cart), nil
}

func (m *mockCache) SetCart(_ context.Context, sessionID string, cart *domain.Cart) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.carts[sessionID] = copyCart(cart)
	return nil
}

func (m *mockCache) DeleteCart(_ context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.carts, sessionID)
	return nil
}

// mockNotifier implements port.Notifier
type mockNotifier struct {
	err  error
	sent chan port.OrderConfirmation
}

func newMockNotifier(err error) *mockNotifier {
	return &mockNotifier{err: err, sent: make(chan port.OrderConfirmation, 16)}
}

func (m *mockNotifier) SendOrderConfirmation(_ context.Context, msg port.OrderConfirmation) error {
	select {
	case m.sent <- msg:
	default:
	}
	return m.err
}
