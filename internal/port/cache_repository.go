package port

import (
	"context"

	"github.com/vamazon/storefront/internal/core/domain"
)

type CacheRepository interface {
	// GetCart returns ErrCacheMiss when the session has no cached cart
	GetCart(ctx context.Context, sessionID string) (*domain.Cart, error)

	SetCart(ctx context.Context, sessionID string, cart *domain.Cart) error

	// DeleteCart invalidates the cached cart after any mutation
	DeleteCart(ctx context.Context, sessionID string) error
}
