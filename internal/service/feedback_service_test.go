package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"parkledger/internal/domain"
	"parkledger/internal/repository/memory"
)

func TestFeedbackService_SubmitAndList(t *testing.T) {
	ctx := context.Background()
	svc := NewFeedbackService(memory.NewFeedbackRepository())

	_, err := svc.Submit(ctx, domain.SubmitFeedbackDTO{Name: "A", Email: "a@x.io", Category: "general", Message: "first"}, operator)
	require.NoError(t, err)
	created, err := svc.Submit(ctx, domain.SubmitFeedbackDTO{Name: "B", Email: "b@x.io", Category: "billing", Message: " second "}, operator)
	require.NoError(t, err)
	assert.Equal(t, "second", created.Message)
	assert.Equal(t, "op-1", created.UserID)

	items, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "second", items[0].Message)
}

func TestFeedbackService_RejectsBlankFields(t *testing.T) {
	svc := NewFeedbackService(memory.NewFeedbackRepository())
	_, err := svc.Submit(context.Background(), domain.SubmitFeedbackDTO{Name: "A", Email: "a@x.io", Category: "  ", Message: "hi"}, operator)
	assert.ErrorIs(t, err, ErrValidation)
}
