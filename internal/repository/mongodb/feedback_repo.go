package mongodb

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"parkledger/internal/domain"
	"parkledger/internal/repository"
)

type feedbackRepository struct {
	col *mongo.Collection
}

var _ repository.FeedbackRepository = (*feedbackRepository)(nil)

func NewFeedbackRepository(db *mongo.Database) repository.FeedbackRepository {
	return &feedbackRepository{col: db.Collection(colFeedback)}
}

func (r *feedbackRepository) Create(ctx context.Context, feedback *domain.Feedback) (*domain.Feedback, error) {
	m := toFeedbackModel(feedback)
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	m.CreatedAt = now()

	if _, err := r.col.InsertOne(ctx, m); err != nil {
		return nil, fmt.Errorf("mongodb: create feedback: %w", err)
	}
	out := fromFeedbackModel(m)
	return &out, nil
}

func (r *feedbackRepository) FindAll(ctx context.Context) ([]domain.Feedback, error) {
	cursor, err := r.col.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("mongodb: list feedback: %w", err)
	}
	defer cursor.Close(ctx)

	var models []feedbackModel
	if err := cursor.All(ctx, &models); err != nil {
		return nil, fmt.Errorf("mongodb: list feedback: %w", err)
	}
	items := make([]domain.Feedback, 0, len(models))
	for i := range models {
		items = append(items, fromFeedbackModel(&models[i]))
	}
	return items, nil
}

func (r *feedbackRepository) Count(ctx context.Context) (int64, error) {
	n, err := r.col.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("mongodb: count feedback: %w", err)
	}
	return n, nil
}
