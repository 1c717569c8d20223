package postgresql

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"parkledger/internal/domain"
	"parkledger/internal/repository"
)

type pgFeedbackRepository struct {
	db *sql.DB
}

func NewPgFeedbackRepository(db *sql.DB) repository.FeedbackRepository {
	return &pgFeedbackRepository{db: db}
}

func (r *pgFeedbackRepository) Create(ctx context.Context, feedback *domain.Feedback) (*domain.Feedback, error) {
	query := `INSERT INTO feedback (id, user_id, name, email, category, message, created_at)
	           VALUES ($1, $2, $3, $4, $5, $6, CURRENT_TIMESTAMP)
	           RETURNING created_at`
	if feedback.ID == "" {
		feedback.ID = uuid.NewString()
	}
	err := r.db.QueryRowContext(ctx, query,
		feedback.ID, feedback.UserID, feedback.Name, feedback.Email, feedback.Category, feedback.Message,
	).Scan(&feedback.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("FeedbackRepository.Create: %w", err)
	}
	feedback.CreatedAt = feedback.CreatedAt.In(time.UTC)
	return feedback, nil
}

func (r *pgFeedbackRepository) FindAll(ctx context.Context) ([]domain.Feedback, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, name, email, category, message, created_at FROM feedback ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("FeedbackRepository.FindAll: %w", err)
	}
	defer rows.Close()

	items := []domain.Feedback{}
	for rows.Next() {
		var f domain.Feedback
		if err := rows.Scan(&f.ID, &f.UserID, &f.Name, &f.Email, &f.Category, &f.Message, &f.CreatedAt); err != nil {
			return nil, fmt.Errorf("FeedbackRepository.FindAll (scanning row): %w", err)
		}
		f.CreatedAt = f.CreatedAt.In(time.UTC)
		items = append(items, f)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("FeedbackRepository.FindAll (rows error): %w", err)
	}
	return items, nil
}

func (r *pgFeedbackRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM feedback`).Scan(&n); err != nil {
		return 0, fmt.Errorf("FeedbackRepository.Count: %w", err)
	}
	return n, nil
}
