package mongostore

import (
	"context"
	"fmt"
	"time"

	"github.com/voicecart/backend/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const activitiesCollection = "activities"

// ActivityRepository appends voice command records to the activities collection
type ActivityRepository struct {
	collection *mongo.Collection
	timeout    time.Duration
}

// NewActivityRepository creates a repository over db with a per-call timeout
func NewActivityRepository(db *mongo.Database, timeout time.Duration) *ActivityRepository {
	return &ActivityRepository{
		collection: db.Collection(activitiesCollection),
		timeout:    opTimeout(timeout),
	}
}

func (r *ActivityRepository) Record(ctx context.Context, activity *domain.Activity) error {
	if activity == nil || activity.UserName == "" {
		return domain.ErrInvalidRequest
	}

	ctx, cancel := opContext(ctx, r.timeout)
	defer cancel()

	if _, err := r.collection.InsertOne(ctx, activity); err != nil {
		return fmt.Errorf("failed to record activity: %w", err)
	}
	return nil
}

// ListByUser returns up to limit activities, newest first
func (r *ActivityRepository) ListByUser(ctx context.Context, userName string, limit int) ([]domain.Activity, error) {
	ctx, cancel := opContext(ctx, r.timeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}

	cursor, err := r.collection.Find(ctx, bson.M{"user_name": userName}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list activities: %w", err)
	}
	defer cursor.Close(ctx)

	activities := []domain.Activity{}
	if err := cursor.All(ctx, &activities); err != nil {
		return nil, fmt.Errorf("failed to decode activities: %w", err)
	}
	return activities, nil
}

// DeleteByUser drops the user's whole history and reports how many records went
func (r *ActivityRepository) DeleteByUser(ctx context.Context, userName string) (int64, error) {
	ctx, cancel := opContext(ctx, r.timeout)
	defer cancel()

	result, err := r.collection.DeleteMany(ctx, bson.M{"user_name": userName})
	if err != nil {
		return 0, fmt.Errorf("failed to delete activities: %w", err)
	}
	return result.DeletedCount, nil
}

// CreateIndexes supports the per-user history query
func (r *ActivityRepository) CreateIndexes(ctx context.Context) error {
	ctx, cancel := opContext(ctx, r.timeout)
	defer cancel()

	index := mongo.IndexModel{
		Keys: bson.D{{Key: "user_name", Value: 1}, {Key: "created_at", Value: -1}},
	}
	if _, err := r.collection.Indexes().CreateOne(ctx, index); err != nil {
		return fmt.Errorf("failed to create activity indexes: %w", err)
	}
	return nil
}
