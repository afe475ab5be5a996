package mongostore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/voicecart/backend/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const cartsCollection = "carts"

// CartRepository stores one document per user in the carts collection
type CartRepository struct {
	collection *mongo.Collection
	timeout    time.Duration
}

// NewCartRepository creates a repository over db. Each call is bounded by
// timeout, or 5s when timeout is zero.
func NewCartRepository(db *mongo.Database, timeout time.Duration) *CartRepository {
	return &CartRepository{
		collection: db.Collection(cartsCollection),
		timeout:    opTimeout(timeout),
	}
}

func (r *CartRepository) GetCart(ctx context.Context, userName string) (*domain.Cart, error) {
	ctx, cancel := opContext(ctx, r.timeout)
	defer cancel()

	var cart domain.Cart
	err := r.collection.FindOne(ctx, bson.M{"user_name": userName}).Decode(&cart)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrCartNotFound
		}
		return nil, fmt.Errorf("failed to get cart: %w", err)
	}

	if cart.Entries == nil {
		cart.Entries = []domain.CartEntry{}
	}
	return &cart, nil
}

// SaveCart replaces the user's document, creating it on first save
func (r *CartRepository) SaveCart(ctx context.Context, cart *domain.Cart) error {
	if cart == nil || cart.UserName == "" {
		return domain.ErrInvalidRequest
	}

	doc := *cart
	if doc.Entries == nil {
		doc.Entries = []domain.CartEntry{}
	}

	ctx, cancel := opContext(ctx, r.timeout)
	defer cancel()

	opts := options.Replace().SetUpsert(true)
	if _, err := r.collection.ReplaceOne(ctx, bson.M{"user_name": cart.UserName}, doc, opts); err != nil {
		return fmt.Errorf("failed to save cart: %w", err)
	}
	return nil
}

// CreateIndexes enforces one cart per user
func (r *CartRepository) CreateIndexes(ctx context.Context) error {
	ctx, cancel := opContext(ctx, r.timeout)
	defer cancel()

	index := mongo.IndexModel{
		Keys:    bson.D{{Key: "user_name", Value: 1}},
		Options: options.Index().SetUnique(true),
	}
	if _, err := r.collection.Indexes().CreateOne(ctx, index); err != nil {
		return fmt.Errorf("failed to create cart indexes: %w", err)
	}
	return nil
}
