package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"nexacred.backend/internal/domain/entities"
	domainerrors "nexacred.backend/internal/domain/errors"
	"nexacred.backend/internal/interfaces/http/response"
	"nexacred.backend/internal/metrics"
	"nexacred.backend/pkg/redis"
)

// walletAuthService is the slice of the wallet auth usecase this handler needs.
type walletAuthService interface {
	Authenticate(ctx context.Context, input *entities.WalletAuthInput) (*entities.AuthResponse, error)
	IssueChallenge(ctx context.Context, walletAddress string) (*redis.Challenge, error)
}

// WalletAuthHandler handles wallet signature authentication endpoints
type WalletAuthHandler struct {
	walletAuth walletAuthService
	metrics    *metrics.Metrics
}

// NewWalletAuthHandler creates a new wallet auth handler. The metrics
// instrument set may be nil.
func NewWalletAuthHandler(walletAuth walletAuthService, m *metrics.Metrics) *WalletAuthHandler {
	return &WalletAuthHandler{
		walletAuth: walletAuth,
		metrics:    m,
	}
}

// Authenticate handles wallet signature authentication
// POST /api/users/wallet-auth
func (h *WalletAuthHandler) Authenticate(c *gin.Context) {
	var input entities.WalletAuthInput

	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	authResponse, err := h.walletAuth.Authenticate(c.Request.Context(), &input)
	if err != nil {
		h.recordOutcome(err)
		response.Error(c, err)
		return
	}

	h.recordOutcome(nil)
	response.Success(c, http.StatusOK, authResponse)
}

// Challenge issues a signing challenge for a wallet address
// POST /api/users/wallet-auth/challenge
func (h *WalletAuthHandler) Challenge(c *gin.Context) {
	var input entities.ChallengeInput

	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	challenge, err := h.walletAuth.IssueChallenge(c.Request.Context(), input.WalletAddress)
	if err != nil {
		response.Error(c, err)
		return
	}

	// Only the fields the client needs to sign with. The stored challenge
	// keeps the address and issue time for its own bookkeeping.
	response.Success(c, http.StatusOK, gin.H{
		"message":   challenge.Message,
		"nonce":     challenge.Nonce,
		"expiresAt": challenge.ExpiresAt,
	})
}

func (h *WalletAuthHandler) recordOutcome(err error) {
	if h.metrics == nil {
		return
	}
	switch {
	case err == nil:
		h.metrics.RecordWalletAuth(metrics.OutcomeIssued)
	case errors.Is(err, domainerrors.ErrInvalidAddress):
		h.metrics.RecordWalletAuth(metrics.OutcomeRejectedAddress)
	case errors.Is(err, domainerrors.ErrSignatureInvalid):
		h.metrics.RecordWalletAuth(metrics.OutcomeRejectedSignature)
	default:
		h.metrics.RecordWalletAuth(metrics.OutcomeError)
	}
}
