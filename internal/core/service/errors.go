package service

import "errors"

var (
	ErrEmptyCart       = errors.New("cart is empty")
	ErrProductNotFound = errors.New("product not found")
	ErrInvalidQuantity = errors.New("quantity must be at least 1")
	ErrInvalidStatus   = errors.New("unknown order status")

	// ErrStatusNotForward rejects transitions that would move an order
	// backward, e.g. shipped back to processing.
	ErrStatusNotForward = errors.New("order status can only move forward")
)
