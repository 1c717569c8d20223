package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"parkledger/internal/api/middleware"
	"parkledger/internal/domain"
	"parkledger/internal/repository"
	"parkledger/internal/service"
)

// statusFor maps service and repository sentinels to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrInvalidCredentials), errors.Is(err, service.ErrTokenInvalid):
		return http.StatusUnauthorized
	case errors.Is(err, repository.ErrDuplicateEntry),
		errors.Is(err, repository.ErrSessionNotActive),
		errors.Is(err, service.ErrUserAlreadyExists):
		return http.StatusConflict
	case errors.Is(err, repository.ErrNoActiveSession), errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes {"error": ...}. Internal errors carry only the fallback
// message unless gin runs in debug mode.
func respondError(c *gin.Context, err error, fallback string) {
	status := statusFor(err)
	_ = c.Error(err)

	if status != http.StatusInternalServerError {
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	zap.S().Errorf("%s %s: %v", c.Request.Method, c.FullPath(), err)
	body := gin.H{"error": fallback}
	if gin.Mode() == gin.DebugMode {
		body["details"] = err.Error()
	}
	c.JSON(status, body)
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
}

func identityOrAbort(c *gin.Context) (domain.Identity, bool) {
	identity, ok := middleware.IdentityFrom(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
	}
	return identity, ok
}
