package port

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/vamazon/storefront/internal/core/domain"
)

// OrderConfirmation is the typed payload handed to the notifier; line
// totals and product names are captured at checkout time.
type OrderConfirmation struct {
	ToEmail      string
	CustomerName string
	OrderNumber  string
	Items        []ConfirmationItem
	TotalAmount  decimal.Decimal
	Shipping     domain.ShippingAddress
}

type ConfirmationItem struct {
	Name      string
	Quantity  int
	LineTotal decimal.Decimal
	ImageURL  string
}

// Notifier delivery is best-effort: failures are logged by the caller
// and never affect a committed checkout.
type Notifier interface {
	SendOrderConfirmation(ctx context.Context, msg OrderConfirmation) error
}
