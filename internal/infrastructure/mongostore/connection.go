// Package mongostore persists carts and voice activity in MongoDB.
package mongostore

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const defaultOpTimeout = 5 * time.Second

// Connect opens a client, verifies it with a ping and returns the database.
// timeout bounds every operation issued through the client; zero uses a 5s default.
func Connect(ctx context.Context, uri, database string, timeout time.Duration) (*mongo.Database, error) {
	clientOpts := options.Client().
		ApplyURI(uri).
		SetConnectTimeout(10 * time.Second).
		SetServerSelectionTimeout(5 * time.Second).
		SetTimeout(opTimeout(timeout)).
		SetMaxPoolSize(100).
		SetMinPoolSize(10)

	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	return client.Database(database), nil
}

// EnsureIndexes creates the indexes both repositories rely on
func EnsureIndexes(ctx context.Context, db *mongo.Database, timeout time.Duration) error {
	if err := NewCartRepository(db, timeout).CreateIndexes(ctx); err != nil {
		return err
	}
	return NewActivityRepository(db, timeout).CreateIndexes(ctx)
}

func opTimeout(timeout time.Duration) time.Duration {
	if timeout <= 0 {
		return defaultOpTimeout
	}
	return timeout
}

// opContext bounds one store call. A sooner deadline on ctx still wins.
func opContext(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, timeout)
}
