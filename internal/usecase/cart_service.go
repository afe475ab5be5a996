package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/voicecart/backend/internal/domain"
	"golang.org/x/sync/singleflight"
)

// CartServiceConfig holds configuration for the cart service
type CartServiceConfig struct {
	CacheTTL    time.Duration
	LoadTimeout time.Duration // bounds the shared load on a cache miss
}

// CartService owns per-user carts. Writes for one user are serialized and
// every mutation is persisted before it returns; the cache is only a read path.
type CartService struct {
	repo     domain.CartRepository
	cache    domain.CartCache
	catalog  domain.ProductCatalog
	resolver *Resolver
	cacheTTL time.Duration
	loadWait time.Duration
	locks    *userLocks
	sfg      singleflight.Group // collapses concurrent cache misses per user
	now      func() time.Time
	logger   logrus.FieldLogger
}

// NewCartService creates a cart service with dependencies
func NewCartService(
	repo domain.CartRepository,
	cache domain.CartCache,
	catalog domain.ProductCatalog,
	resolver *Resolver,
	config CartServiceConfig,
	logger logrus.FieldLogger,
) *CartService {
	cacheTTL := config.CacheTTL
	if cacheTTL == 0 {
		cacheTTL = 30 * time.Minute
	}
	loadWait := config.LoadTimeout
	if loadWait == 0 {
		loadWait = 5 * time.Second
	}
	if resolver == nil {
		resolver = NewResolver(catalog, ResolverConfig{}, logger)
	}

	return &CartService{
		repo:     repo,
		cache:    cache,
		catalog:  catalog,
		resolver: resolver,
		cacheTTL: cacheTTL,
		loadWait: loadWait,
		locks:    newUserLocks(),
		now:      time.Now,
		logger:   orStandardLogger(logger),
	}
}

// Get returns the user's cart, or an empty cart if none was ever saved
func (s *CartService) Get(ctx context.Context, userName string) (*domain.Cart, error) {
	userName, err := validUserName(userName)
	if err != nil {
		return nil, err
	}

	// The fill is shared by every waiter, so it must not die with the first caller
	v, err, _ := s.sfg.Do(userName, func() (interface{}, error) {
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.loadWait)
		defer cancel()

		cart, err := s.cache.Get(ctx, userName)
		if err == nil {
			return cart, nil
		}
		if !errors.Is(err, domain.ErrCacheMiss) {
			s.logger.WithError(err).WithField("user", userName).Warn("cache get failed")
		}

		// Hold the user lock so a concurrent write cannot be overwritten by a stale fill
		unlock := s.locks.lock(userName)
		defer unlock()

		cart, err = s.load(ctx, userName)
		if err != nil {
			return nil, err
		}
		s.refreshCache(ctx, cart)
		return cart, nil
	})
	if err != nil {
		return nil, err
	}

	return v.(*domain.Cart).Clone(), nil
}

// Add merges qty of a catalog product into the user's cart
func (s *CartService) Add(ctx context.Context, userName, productID string, qty int) (*domain.Cart, error) {
	userName, err := validUserName(userName)
	if err != nil {
		return nil, err
	}
	if qty <= 0 {
		return nil, fmt.Errorf("%w: quantity must be positive", domain.ErrInvalidRequest)
	}
	if _, ok := s.catalog.Get(productID); !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrProductNotFound, productID)
	}

	unlock := s.locks.lock(userName)
	defer unlock()

	cart, err := s.load(ctx, userName)
	if err != nil {
		return nil, err
	}
	if !cart.CanAdd(productID, qty) {
		return nil, fmt.Errorf("%w: at most %d of %s per cart", domain.ErrInvalidRequest, domain.MaxLineQuantity, productID)
	}
	cart.Add(productID, qty)

	if err := s.save(ctx, cart); err != nil {
		return nil, err
	}
	return cart.Clone(), nil
}

// Remove decrements a product by qty, dropping the entry at zero. The bool is
// false when the product was not in the cart; that case leaves the cart
// untouched and is not an error.
func (s *CartService) Remove(ctx context.Context, userName, productID string, qty int) (*domain.Cart, bool, error) {
	userName, err := validUserName(userName)
	if err != nil {
		return nil, false, err
	}
	if qty <= 0 {
		return nil, false, fmt.Errorf("%w: quantity must be positive", domain.ErrInvalidRequest)
	}

	unlock := s.locks.lock(userName)
	defer unlock()

	cart, err := s.load(ctx, userName)
	if err != nil {
		return nil, false, err
	}
	if !cart.Remove(productID, qty) {
		return cart.Clone(), false, nil
	}

	if err := s.save(ctx, cart); err != nil {
		return nil, false, err
	}
	return cart.Clone(), true, nil
}

// Clear empties the user's cart
func (s *CartService) Clear(ctx context.Context, userName string) (*domain.Cart, error) {
	userName, err := validUserName(userName)
	if err != nil {
		return nil, err
	}

	unlock := s.locks.lock(userName)
	defer unlock()

	cart, err := s.load(ctx, userName)
	if err != nil {
		return nil, err
	}
	if cart.IsEmpty() {
		return cart.Clone(), nil
	}
	cart.Clear()

	if err := s.save(ctx, cart); err != nil {
		return nil, err
	}
	return cart.Clone(), nil
}

// Search finds catalog products for a free-text query
func (s *CartService) Search(ctx context.Context, query, language string) ([]domain.Product, error) {
	return s.resolver.Search(ctx, query, language, defaultSearchLimit)
}

// Flush drops the cached copy of a user's cart. The durable copy is untouched.
func (s *CartService) Flush(ctx context.Context, userName string) {
	if err := s.cache.Delete(ctx, userName); err != nil {
		s.logger.WithError(err).WithField("user", userName).Warn("cache invalidate failed")
	}
}

// load reads the durable cart, returning a new empty cart if none exists
func (s *CartService) load(ctx context.Context, userName string) (*domain.Cart, error) {
	cart, err := s.repo.GetCart(ctx, userName)
	if errors.Is(err, domain.ErrCartNotFound) {
		return domain.NewCart(userName), nil
	}
	if err != nil {
		s.logger.WithError(err).WithField("user", userName).Error("repo get cart failed")
		return nil, fmt.Errorf("%w: %v", domain.ErrPersistenceFailure, err)
	}
	return cart, nil
}

// save persists cart synchronously and then refreshes the cache.
// Timestamps are truncated to milliseconds so every store round-trips them exactly.
func (s *CartService) save(ctx context.Context, cart *domain.Cart) error {
	now := s.now().UTC().Truncate(time.Millisecond)
	if cart.CreatedAt.IsZero() {
		cart.CreatedAt = now
	}
	cart.UpdatedAt = now

	if err := s.repo.SaveCart(ctx, cart); err != nil {
		s.logger.WithError(err).WithField("user", cart.UserName).Error("repo save cart failed")
		s.Flush(ctx, cart.UserName)
		return fmt.Errorf("%w: %v", domain.ErrPersistenceFailure, err)
	}

	s.refreshCache(ctx, cart)
	return nil
}

func (s *CartService) refreshCache(ctx context.Context, cart *domain.Cart) {
	if err := s.cache.Set(ctx, cart.UserName, cart.Clone(), s.cacheTTL); err != nil {
		s.logger.WithError(err).WithField("user", cart.UserName).Warn("cache set failed")
		s.Flush(ctx, cart.UserName)
	}
}

func validUserName(userName string) (string, error) {
	userName = strings.TrimSpace(userName)
	if userName == "" {
		return "", fmt.Errorf("%w: user name is required", domain.ErrInvalidRequest)
	}
	return userName, nil
}
