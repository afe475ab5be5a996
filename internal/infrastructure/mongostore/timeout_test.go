package mongostore

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/voicecart/backend/internal/domain"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func TestOpContext(t *testing.T) {
	t.Run("adds a deadline to a background context", func(t *testing.T) {
		ctx, cancel := opContext(context.Background(), time.Second)
		defer cancel()

		deadline, ok := ctx.Deadline()
		require.True(t, ok)
		assert.WithinDuration(t, time.Now().Add(time.Second), deadline, 100*time.Millisecond)
	})

	t.Run("keeps a sooner parent deadline", func(t *testing.T) {
		parent, cancelParent := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancelParent()
		want, _ := parent.Deadline()

		ctx, cancel := opContext(parent, time.Minute)
		defer cancel()

		got, ok := ctx.Deadline()
		require.True(t, ok)
		assert.Equal(t, want, got)
	})

	t.Run("zero falls back to the default", func(t *testing.T) {
		assert.Equal(t, defaultOpTimeout, opTimeout(0))
		assert.Equal(t, time.Second, opTimeout(time.Second))
	})
}

// unreachableDB points at a closed port with a long server selection timeout,
// so only the per-call timeout can end an operation.
func unreachableDB(t *testing.T) *mongo.Database {
	t.Helper()
	opts := options.Client().
		ApplyURI("mongodb://127.0.0.1:1").
		SetServerSelectionTimeout(time.Minute)
	client, err := mongo.Connect(context.Background(), opts)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Disconnect(context.Background()) })
	return client.Database("voicecart_test")
}

func TestRepositoriesHonorTimeout(t *testing.T) {
	db := unreachableDB(t)
	timeout := 200 * time.Millisecond
	carts := NewCartRepository(db, timeout)
	activities := NewActivityRepository(db, timeout)
	feedback := NewFeedbackRepository(db, timeout)

	tests := []struct {
		name string
		call func(ctx context.Context) error
	}{
		{"get cart", func(ctx context.Context) error {
			_, err := carts.GetCart(ctx, "alice")
			return err
		}},
		{"save cart", func(ctx context.Context) error {
			return carts.SaveCart(ctx, domain.NewCart("alice"))
		}},
		{"record activity", func(ctx context.Context) error {
			return activities.Record(ctx, &domain.Activity{ID: "a0", UserName: "alice"})
		}},
		{"list activities", func(ctx context.Context) error {
			_, err := activities.ListByUser(ctx, "alice", 10)
			return err
		}},
		{"delete activities", func(ctx context.Context) error {
			_, err := activities.DeleteByUser(ctx, "alice")
			return err
		}},
		{"record feedback", func(ctx context.Context) error {
			return feedback.Record(ctx, &domain.Feedback{ID: "f0", UserName: "alice"})
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start := time.Now()
			err := tt.call(context.Background())
			require.Error(t, err)
			assert.NotErrorIs(t, err, domain.ErrCartNotFound)
			assert.Less(t, time.Since(start), 5*time.Second)
		})
	}
}
