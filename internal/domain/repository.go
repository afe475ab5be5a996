package domain

import (
	"context"
	"time"
)

// CartRepository defines durable cart storage keyed by user name.
// SaveCart replaces the stored entry list with the given one.
type CartRepository interface {
	GetCart(ctx context.Context, userName string) (*Cart, error)
	SaveCart(ctx context.Context, cart *Cart) error
}

// CartCache defines the interface for cart read-through caching
type CartCache interface {
	Get(ctx context.Context, userName string) (*Cart, error)
	Set(ctx context.Context, userName string, cart *Cart, ttl time.Duration) error
	Delete(ctx context.Context, userName string) error
}

// ActivityRepository stores voice command history
type ActivityRepository interface {
	Record(ctx context.Context, activity *Activity) error
	ListByUser(ctx context.Context, userName string, limit int) ([]Activity, error)
	DeleteByUser(ctx context.Context, userName string) (int64, error)
}

// FeedbackRepository stores user reports on how a command was understood
type FeedbackRepository interface {
	Record(ctx context.Context, feedback *Feedback) error
}

// ProductCatalog is the read-only product lookup used by the cart and resolver
type ProductCatalog interface {
	Get(id string) (Product, bool)
	All() []Product
	Related(productID string, limit int) []Product
	Categories() []string
}
