package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/vamazon/storefront/internal/core/domain"
	"github.com/vamazon/storefront/internal/port"
)

type CartService struct {
	catalog port.CatalogRepository
	repo    port.CartRepository
	cache   port.CacheRepository
	sfg     singleflight.Group // collapses concurrent cache misses per session
}

func NewCartService(catalog port.CatalogRepository, repo port.CartRepository, cache port.CacheRepository) *CartService {
	return &CartService{
		catalog: catalog,
		repo:    repo,
		cache:   cache,
	}
}

func (s *CartService) GetCart(ctx context.Context, sessionID string) (*domain.Cart, error) {
	v, err, _ := s.sfg.Do(sessionID, func() (interface{}, error) {
		// the flight serves every collapsed caller, so it must not die
		// with whichever caller started it
		loadCtx := context.WithoutCancel(ctx)

		cart, err := s.cache.GetCart(loadCtx, sessionID)
		if err == nil {
			return cart, nil
		}
		if !errors.Is(err, port.ErrCacheMiss) {
			log.Printf("cart cache get error: %v", err)
		}

		cart, err = s.repo.GetOrCreateCart(loadCtx, sessionID)
		if err != nil {
			return nil, fmt.Errorf("load cart: %w", err)
		}

		go func() {
			setCtx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			if err := s.cache.SetCart(setCtx, sessionID, cart); err != nil {
				log.Printf("cart cache set error: %v", err)
			}
		}()

		return cart, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*domain.Cart), nil
}

func (s *CartService) GetProduct(ctx context.Context, productID int64) (*domain.Product, error) {
	product, err := s.catalog.GetProduct(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("load product: %w", err)
	}
	if product == nil {
		return nil, ErrProductNotFound
	}
	return product, nil
}

func (s *CartService) AddItem(ctx context.Context, sessionID string, productID int64, quantity int) (*domain.Cart, error) {
	if quantity < 1 {
		return nil, ErrInvalidQuantity
	}

	product, err := s.catalog.GetProduct(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("load product: %w", err)
	}
	if product == nil {
		return nil, ErrProductNotFound
	}

	cart, err := s.repo.GetOrCreateCart(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("load cart: %w", err)
	}

	if err := s.repo.AddItem(ctx, cart.ID, productID, quantity); err != nil {
		return nil, fmt.Errorf("add cart item: %w", err)
	}

	s.invalidateCache(sessionID)
	return s.repo.GetOrCreateCart(ctx, sessionID)
}

func (s *CartService) UpdateItemQuantity(ctx context.Context, sessionID string, itemID int64, quantity int) (*domain.Cart, error) {
	cart, err := s.repo.GetCart(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if err := s.repo.UpdateItemQuantity(ctx, cart.ID, itemID, quantity); err != nil {
		return nil, err
	}

	s.invalidateCache(sessionID)
	return s.repo.GetOrCreateCart(ctx, sessionID)
}

func (s *CartService) RemoveItem(ctx context.Context, sessionID string, itemID int64) (*domain.Cart, error) {
	cart, err := s.repo.GetCart(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if err := s.repo.RemoveItem(ctx, cart.ID, itemID); err != nil {
		return nil, err
	}

	s.invalidateCache(sessionID)
	return s.repo.GetOrCreateCart(ctx, sessionID)
}

func (s *CartService) ClearCart(ctx context.Context, sessionID string) error {
	cart, err := s.repo.GetCart(ctx, sessionID)
	if errors.Is(err, port.ErrCartNotFound) {
		return nil // nothing to clear
	}
	if err != nil {
		return err
	}

	if err := s.repo.ClearCart(ctx, cart.ID); err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}

	s.invalidateCache(sessionID)
	return nil
}

func (s *CartService) invalidateCache(sessionID string) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := s.cache.DeleteCart(ctx, sessionID); err != nil {
		log.Printf("cart cache invalidate error: %v", err)
	}
}
