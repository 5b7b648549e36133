package domain

import "time"

type Cart struct {
	ID        int64      `json:"id"`
	SessionID string     `json:"session_id"`
	Items     []CartItem `json:"items"`
	CreatedAt time.Time  `json:"created_at"`
}

// A cart holds at most one item per product; adding the same product
// again increases the quantity of the existing line.
type CartItem struct {
	ID        int64 `json:"id"`
	CartID    int64 `json:"cart_id"`
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
}

func (c *Cart) Empty() bool {
	return c == nil || len(c.Items) == 0
}
