package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"parkledger/internal/domain"
	"parkledger/internal/repository"
)

type FeedbackService struct {
	repo repository.FeedbackRepository
}

func NewFeedbackService(repo repository.FeedbackRepository) *FeedbackService {
	return &FeedbackService{repo: repo}
}

func (s *FeedbackService) Submit(ctx context.Context, dto domain.SubmitFeedbackDTO, by domain.Identity) (*domain.Feedback, error) {
	feedback := &domain.Feedback{
		UserID:   by.UserID,
		Name:     strings.TrimSpace(dto.Name),
		Email:    strings.TrimSpace(dto.Email),
		Category: strings.TrimSpace(dto.Category),
		Message:  strings.TrimSpace(dto.Message),
	}
	if feedback.Name == "" || feedback.Email == "" || feedback.Category == "" || feedback.Message == "" {
		return nil, fmt.Errorf("%w: all fields are required", ErrValidation)
	}

	created, err := s.repo.Create(ctx, feedback)
	if err != nil {
		return nil, fmt.Errorf("saving feedback: %w", err)
	}
	zap.S().Infof("FeedbackService: feedback %s (%s) from %s", created.ID, created.Category, by.Username)
	return created, nil
}

func (s *FeedbackService) List(ctx context.Context) ([]domain.Feedback, error) {
	items, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing feedback: %w", err)
	}
	return items, nil
}
