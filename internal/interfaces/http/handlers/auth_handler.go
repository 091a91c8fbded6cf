package handlers

import (
	"context"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"nexacred.backend/internal/domain/entities"
	domainerrors "nexacred.backend/internal/domain/errors"
	"nexacred.backend/internal/interfaces/http/middleware"
	"nexacred.backend/internal/interfaces/http/response"
)

// authService is the slice of the auth usecase this handler needs.
type authService interface {
	Register(ctx context.Context, input *entities.RegisterInput) (*entities.User, error)
	Login(ctx context.Context, input *entities.LoginInput) (*entities.AuthResponse, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (*entities.User, error)
}

// AuthHandler handles registration and password login endpoints
type AuthHandler struct {
	auth authService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(auth authService) *AuthHandler {
	return &AuthHandler{
		auth: auth,
	}
}

// Register handles user registration
// POST /api/users/register
func (h *AuthHandler) Register(c *gin.Context) {
	var input entities.RegisterInput

	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	user, err := h.auth.Register(c.Request.Context(), &input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{
		"user": user,
	})
}

// Login handles password login
// POST /api/users/login
func (h *AuthHandler) Login(c *gin.Context) {
	var input entities.LoginInput

	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	authResponse, err := h.auth.Login(c.Request.Context(), &input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, authResponse)
}

// GetMe returns current authenticated user details
// GET /api/users/me
func (h *AuthHandler) GetMe(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		log.Printf("[AuthHandler] GetMe failed: userId not found in context")
		response.Error(c, domainerrors.Unauthorized("Unauthorized"))
		return
	}

	user, err := h.auth.GetUserByID(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"user": user,
	})
}
