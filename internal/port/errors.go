package port

import "errors"

var (
	ErrCartNotFound     = errors.New("cart not found")
	ErrCartItemNotFound = errors.New("cart item not found")
	ErrOrderNotFound    = errors.New("order not found")

	// ErrOrderNumberTaken signals a unique-index collision on the order
	// number; callers retry with a freshly generated number.
	ErrOrderNumberTaken = errors.New("order number already taken")

	ErrInsufficientStock = errors.New("insufficient stock")

	// ErrStatusConflict signals that an order's status changed between
	// read and update; callers re-read and re-check the transition.
	ErrStatusConflict = errors.New("order status changed concurrently")

	ErrCacheMiss = errors.New("cache miss")
)
