package mongostore

import (
	"context"
	"fmt"
	"time"

	"github.com/voicecart/backend/internal/domain"
	"go.mongodb.org/mongo-driver/mongo"
)

const feedbackCollection = "feedback"

// FeedbackRepository appends feedback reports to the feedback collection
type FeedbackRepository struct {
	collection *mongo.Collection
	timeout    time.Duration
}

// NewFeedbackRepository creates a repository over db with a per-call timeout
func NewFeedbackRepository(db *mongo.Database, timeout time.Duration) *FeedbackRepository {
	return &FeedbackRepository{
		collection: db.Collection(feedbackCollection),
		timeout:    opTimeout(timeout),
	}
}

func (r *FeedbackRepository) Record(ctx context.Context, feedback *domain.Feedback) error {
	if feedback == nil || feedback.UserName == "" {
		return domain.ErrInvalidRequest
	}

	ctx, cancel := opContext(ctx, r.timeout)
	defer cancel()

	if _, err := r.collection.InsertOne(ctx, feedback); err != nil {
		return fmt.Errorf("failed to record feedback: %w", err)
	}
	return nil
}
