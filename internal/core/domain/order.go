package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusConfirmed  OrderStatus = "confirmed"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
)

var statusRank = map[OrderStatus]int{
	OrderStatusConfirmed:  0,
	OrderStatusProcessing: 1,
	OrderStatusShipped:    2,
	OrderStatusDelivered:  3,
}

func (s OrderStatus) Valid() bool {
	_, ok := statusRank[s]
	return ok
}

// CanAdvanceTo reports whether changing to next moves the order
// forward; statuses never move backward.
func (s OrderStatus) CanAdvanceTo(next OrderStatus) bool {
	return next.Valid() && statusRank[next] > statusRank[s]
}

type ShippingAddress struct {
	CustomerName string `json:"customer_name"`
	Email        string `json:"email,omitempty"`
	Phone        string `json:"phone,omitempty"`
	AddressLine1 string `json:"address_line1"`
	AddressLine2 string `json:"address_line2,omitempty"`
	City         string `json:"city"`
	State        string `json:"state"`
	Pincode      string `json:"pincode"`
}

// Order is immutable after creation except for Status, which only
// moves forward: confirmed -> processing -> shipped -> delivered.
type Order struct {
	ID          int64           `json:"id"`
	OrderNumber string          `json:"order_number"`
	UserID      int64           `json:"user_id"`
	Shipping    ShippingAddress `json:"shipping"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	Status      OrderStatus     `json:"status"`
	CreatedAt   time.Time       `json:"created_at"`
	Items       []OrderItem     `json:"items"`
}

// PriceAtPurchase is frozen at checkout; later catalog price changes
// never touch it.
type OrderItem struct {
	ID              int64           `json:"id"`
	OrderID         int64           `json:"order_id"`
	ProductID       int64           `json:"product_id"`
	Quantity        int             `json:"quantity"`
	PriceAtPurchase decimal.Decimal `json:"price_at_purchase"`
}
