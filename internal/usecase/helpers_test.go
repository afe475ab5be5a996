package usecase

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/voicecart/backend/internal/catalog"
	"github.com/voicecart/backend/internal/domain"
	"github.com/voicecart/backend/internal/infrastructure/cache"
	"github.com/voicecart/backend/internal/infrastructure/memstore"
	"github.com/voicecart/backend/internal/lexicon"
)

var errStoreDown = errors.New("store unavailable")

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func defaultCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	c, err := catalog.Default()
	if err != nil {
		t.Fatalf("catalog.Default() error = %v", err)
	}
	return c
}

// faultyRepo wraps the in-memory store and can be told to fail
type faultyRepo struct {
	*memstore.CartRepository
	mu      sync.Mutex
	getErr  error
	saveErr error
	saves   int
	gate    chan struct{}
	entered chan struct{}
}

func newFaultyRepo() *faultyRepo {
	return &faultyRepo{CartRepository: memstore.NewCartRepository()}
}

func (r *faultyRepo) fail(get, save error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.getErr, r.saveErr = get, save
}

func (r *faultyRepo) saveCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.saves
}

// hold makes GetCart block until the returned func is called or ctx ends.
// Each blocked call sends on entered first.
func (r *faultyRepo) hold() (release func(), entered <-chan struct{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.gate = make(chan struct{})
	r.entered = make(chan struct{}, 16)
	gate := r.gate
	var once sync.Once
	return func() { once.Do(func() { close(gate) }) }, r.entered
}

func (r *faultyRepo) GetCart(ctx context.Context, userName string) (*domain.Cart, error) {
	r.mu.Lock()
	err, gate, entered := r.getErr, r.gate, r.entered
	r.mu.Unlock()
	if err != nil {
		return nil, err
	}
	if gate != nil {
		entered <- struct{}{}
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return r.CartRepository.GetCart(ctx, userName)
}

func (r *faultyRepo) SaveCart(ctx context.Context, cart *domain.Cart) error {
	r.mu.Lock()
	err := r.saveErr
	if err == nil {
		r.saves++
	}
	r.mu.Unlock()
	if err != nil {
		return err
	}
	return r.CartRepository.SaveCart(ctx, cart)
}

type failingActivities struct{}

func (failingActivities) Record(context.Context, *domain.Activity) error { return errStoreDown }

func (failingActivities) ListByUser(context.Context, string, int) ([]domain.Activity, error) {
	return nil, errStoreDown
}

func (failingActivities) DeleteByUser(context.Context, string) (int64, error) {
	return 0, errStoreDown
}

// testEnv wires every service over in-memory infrastructure
type testEnv struct {
	repo       *faultyRepo
	cache      *cache.MemoryCache
	activities domain.ActivityRepository
	feedback   *memstore.FeedbackRepository
	carts      *CartService
	sessions   *SessionService
	voice      *VoiceService
}

func newTestEnv(t *testing.T) *testEnv {
	return newTestEnvWith(t, newFaultyRepo(), memstore.NewActivityRepository())
}

func newTestEnvWith(t *testing.T, repo *faultyRepo, activities domain.ActivityRepository) *testEnv {
	t.Helper()
	logger := testLogger()
	products := defaultCatalog(t)

	memCache := cache.NewMemoryCache()
	t.Cleanup(func() { memCache.Close() })

	resolver := NewResolver(products, ResolverConfig{}, logger)
	carts := NewCartService(repo, memCache, products, resolver, CartServiceConfig{}, logger)
	parser := NewIntentParser(lexicon.Default(), false, logger)
	feedback := memstore.NewFeedbackRepository()

	return &testEnv{
		repo:       repo,
		cache:      memCache,
		activities: activities,
		feedback:   feedback,
		carts:      carts,
		sessions:   NewSessionService(carts, logger),
		voice:      NewVoiceService(parser, resolver, carts, activities, feedback, VoiceServiceConfig{}, logger),
	}
}

func quantities(cart *domain.Cart) map[string]int {
	out := make(map[string]int, len(cart.Entries))
	for _, e := range cart.Entries {
		out[e.ProductID] = e.Quantity
	}
	return out
}
