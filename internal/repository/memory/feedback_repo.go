package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"parkledger/internal/domain"
	"parkledger/internal/repository"
)

type feedbackRepository struct {
	mu    sync.RWMutex
	items []domain.Feedback
}

func NewFeedbackRepository() repository.FeedbackRepository {
	return &feedbackRepository{}
}

func (r *feedbackRepository) Create(_ context.Context, feedback *domain.Feedback) (*domain.Feedback, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := *feedback
	if stored.ID == "" {
		stored.ID = uuid.NewString()
	}
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = time.Now().UTC()
	}
	r.items = append(r.items, stored)

	out := stored
	return &out, nil
}

// FindAll returns feedback newest first.
func (r *feedbackRepository) FindAll(_ context.Context) ([]domain.Feedback, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.Feedback, 0, len(r.items))
	for i := len(r.items) - 1; i >= 0; i-- {
		out = append(out, r.items[i])
	}
	return out, nil
}

func (r *feedbackRepository) Count(_ context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.items)), nil
}
