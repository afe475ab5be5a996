// Package memstore keeps carts and activity history in process memory.
// Data survives logout/login but not a restart.
package memstore

import (
	"context"
	"sort"
	"sync"

	"github.com/voicecart/backend/internal/domain"
)

// CartRepository is a map-backed domain.CartRepository
type CartRepository struct {
	mu    sync.RWMutex
	carts map[string]*domain.Cart
}

// NewCartRepository creates an empty cart store
func NewCartRepository() *CartRepository {
	return &CartRepository{carts: make(map[string]*domain.Cart)}
}

func (r *CartRepository) GetCart(ctx context.Context, userName string) (*domain.Cart, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	cart, ok := r.carts[userName]
	if !ok {
		return nil, domain.ErrCartNotFound
	}
	return cart.Clone(), nil
}

func (r *CartRepository) SaveCart(ctx context.Context, cart *domain.Cart) error {
	if cart == nil || cart.UserName == "" {
		return domain.ErrInvalidRequest
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.carts[cart.UserName] = cart.Clone()
	return nil
}

// ActivityRepository is a slice-backed domain.ActivityRepository
type ActivityRepository struct {
	mu     sync.RWMutex
	byUser map[string][]domain.Activity
}

// NewActivityRepository creates an empty activity store
func NewActivityRepository() *ActivityRepository {
	return &ActivityRepository{byUser: make(map[string][]domain.Activity)}
}

func (r *ActivityRepository) Record(ctx context.Context, activity *domain.Activity) error {
	if activity == nil || activity.UserName == "" {
		return domain.ErrInvalidRequest
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.byUser[activity.UserName] = append(r.byUser[activity.UserName], *activity)
	return nil
}

// ListByUser returns up to limit activities, newest first
func (r *ActivityRepository) ListByUser(ctx context.Context, userName string, limit int) ([]domain.Activity, error) {
	r.mu.RLock()
	stored := r.byUser[userName]
	out := make([]domain.Activity, len(stored))
	copy(out, stored)
	r.mu.RUnlock()

	// Records are appended in order; reverse, then stable-sort for out-of-order timestamps
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// DeleteByUser drops the user's history and returns how many records it held
func (r *ActivityRepository) DeleteByUser(ctx context.Context, userName string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := len(r.byUser[userName])
	delete(r.byUser, userName)
	return int64(n), nil
}

// FeedbackRepository keeps feedback reports in arrival order
type FeedbackRepository struct {
	mu      sync.RWMutex
	reports []domain.Feedback
}

// NewFeedbackRepository creates an empty feedback store
func NewFeedbackRepository() *FeedbackRepository {
	return &FeedbackRepository{}
}

func (r *FeedbackRepository) Record(ctx context.Context, feedback *domain.Feedback) error {
	if feedback == nil || feedback.UserName == "" {
		return domain.ErrInvalidRequest
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.reports = append(r.reports, *feedback)
	return nil
}

// All returns a copy of every stored report
func (r *FeedbackRepository) All() []domain.Feedback {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.Feedback, len(r.reports))
	copy(out, r.reports)
	return out
}
