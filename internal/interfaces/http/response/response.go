package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	domainerrors "nexacred.backend/internal/domain/errors"
)

// Success sends a success response
func Success(c *gin.Context, status int, data interface{}) {
	c.JSON(status, data)
}

// Error maps err onto its HTTP status and writes the {error} envelope.
// The full error is attached to the gin context for the request logger;
// clients only ever see the client-safe message.
func Error(c *gin.Context, err error) {
	_ = c.Error(err)
	status, message := classify(err)
	c.JSON(status, gin.H{"error": message})
}

// BadRequest writes a 400 with a caller-chosen message, for bind failures.
func BadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": message})
}

func classify(err error) (int, string) {
	var appErr *domainerrors.AppError
	if errors.As(err, &appErr) {
		return appErr.Code, appErr.Message
	}

	switch {
	case errors.Is(err, domainerrors.ErrInvalidAddress):
		return http.StatusBadRequest, "Invalid wallet address"
	case errors.Is(err, domainerrors.ErrSignatureInvalid):
		return http.StatusBadRequest, "Signature verification failed"
	case errors.Is(err, domainerrors.ErrInvalidInput),
		errors.Is(err, domainerrors.ErrBadRequest):
		return http.StatusBadRequest, "Invalid request"
	case errors.Is(err, domainerrors.ErrInvalidCredentials):
		return http.StatusUnauthorized, "Invalid credentials"
	case errors.Is(err, domainerrors.ErrTokenExpired):
		return http.StatusUnauthorized, "Token expired"
	case errors.Is(err, domainerrors.ErrUnauthorized):
		return http.StatusUnauthorized, "Unauthorized"
	case errors.Is(err, domainerrors.ErrForbidden):
		return http.StatusForbidden, "Forbidden"
	case errors.Is(err, domainerrors.ErrNotFound):
		return http.StatusNotFound, "Resource not found"
	case errors.Is(err, domainerrors.ErrAlreadyExists):
		return http.StatusConflict, "Resource already exists"
	case errors.Is(err, domainerrors.ErrChallengeUnavailable):
		return http.StatusServiceUnavailable, "Challenge service unavailable"
	default:
		return http.StatusInternalServerError, "Internal server error"
	}
}
