package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"parkledger/internal/domain"
	"parkledger/internal/service"
)

type FeedbackHandler struct {
	feedbackService *service.FeedbackService
}

func NewFeedbackHandler(fs *service.FeedbackService) *FeedbackHandler {
	return &FeedbackHandler{feedbackService: fs}
}

// POST /api/feedback
func (h *FeedbackHandler) Submit(c *gin.Context) {
	identity, ok := identityOrAbort(c)
	if !ok {
		return
	}
	var dto domain.SubmitFeedbackDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		badRequest(c, err)
		return
	}

	feedback, err := h.feedbackService.Submit(c.Request.Context(), dto, identity)
	if err != nil {
		respondError(c, err, "error submitting feedback")
		return
	}
	c.JSON(http.StatusCreated, feedback)
}

// GET /api/feedback
func (h *FeedbackHandler) List(c *gin.Context) {
	items, err := h.feedbackService.List(c.Request.Context())
	if err != nil {
		respondError(c, err, "error fetching feedbacks")
		return
	}
	c.JSON(http.StatusOK, items)
}
