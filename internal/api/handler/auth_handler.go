package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"parkledger/internal/domain"
	"parkledger/internal/service"
)

type AuthHandler struct {
	authService *service.AuthService
}

func NewAuthHandler(as *service.AuthService) *AuthHandler {
	return &AuthHandler{authService: as}
}

// POST /api/auth/signup
func (h *AuthHandler) Signup(c *gin.Context) {
	var dto domain.RegisterUserDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		badRequest(c, err)
		return
	}

	user, err := h.authService.Register(c.Request.Context(), dto)
	if err != nil {
		respondError(c, err, "error creating user")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "User created successfully", "userId": user.ID})
}

// POST /api/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var dto domain.LoginUserDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		badRequest(c, err)
		return
	}

	authResponse, err := h.authService.Login(c.Request.Context(), dto)
	if err != nil {
		respondError(c, err, "error during login")
		return
	}
	c.JSON(http.StatusOK, authResponse)
}
