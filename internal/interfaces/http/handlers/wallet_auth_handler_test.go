package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"github.com/volatiletech/null/v8"
	"nexacred.backend/internal/domain/entities"
	domainerrors "nexacred.backend/internal/domain/errors"
	"nexacred.backend/internal/metrics"
	"nexacred.backend/pkg/redis"
	"nexacred.backend/pkg/utils"
)

type walletAuthStub struct {
	authenticateFn   func(ctx context.Context, input *entities.WalletAuthInput) (*entities.AuthResponse, error)
	issueChallengeFn func(ctx context.Context, walletAddress string) (*redis.Challenge, error)
}

func (s walletAuthStub) Authenticate(ctx context.Context, input *entities.WalletAuthInput) (*entities.AuthResponse, error) {
	return s.authenticateFn(ctx, input)
}

func (s walletAuthStub) IssueChallenge(ctx context.Context, walletAddress string) (*redis.Challenge, error) {
	return s.issueChallengeFn(ctx, walletAddress)
}

const handlerTestWallet = "0x1234567890abcdef1234567890abcdef12345678"

func walletAuthBody(t *testing.T) *bytes.Buffer {
	t.Helper()
	body, err := json.Marshal(entities.WalletAuthInput{
		WalletAddress: handlerTestWallet,
		Message:       "Sign this message to authenticate with NexaCred.",
		Signature:     "0x" + strings.Repeat("ab", 65),
	})
	require.NoError(t, err)
	return bytes.NewBuffer(body)
}

func walletAuthRouter(svc walletAuthService, m *metrics.Metrics) *gin.Engine {
	r := gin.New()
	h := NewWalletAuthHandler(svc, m)
	r.POST("/api/users/wallet-auth", h.Authenticate)
	r.POST("/api/users/wallet-auth/challenge", h.Challenge)
	return r
}

// gatherWalletAuthOutcome reads nexacred_wallet_auth_total for one outcome.
func gatherWalletAuthOutcome(t *testing.T, m *metrics.Metrics, outcome string) float64 {
	t.Helper()
	families, err := m.Registry().Gather()
	require.NoError(t, err)
	for _, fam := range families {
		if fam.GetName() != "nexacred_wallet_auth_total" {
			continue
		}
		for _, metric := range fam.GetMetric() {
			for _, l := range metric.GetLabel() {
				if l.GetName() == "outcome" && l.GetValue() == outcome {
					return metric.GetCounter().GetValue()
				}
			}
		}
	}
	return 0
}

func TestWalletAuthHandler_Authenticate_Success(t *testing.T) {
	gin.SetMode(gin.TestMode)

	user := &entities.User{
		ID:             utils.GenerateUUIDv7(),
		Username:       "user_345678",
		CredentialHash: "$2a$12$secret-material",
		Role:           entities.UserRoleUser,
		CreditScore:    650,
		WalletAddress:  null.StringFrom(handlerTestWallet),
	}

	m := metrics.New()
	r := walletAuthRouter(walletAuthStub{
		authenticateFn: func(_ context.Context, input *entities.WalletAuthInput) (*entities.AuthResponse, error) {
			require.Equal(t, handlerTestWallet, input.WalletAddress)
			return &entities.AuthResponse{Token: "issued-token", User: user}, nil
		},
	}, m)

	req := httptest.NewRequest(http.MethodPost, "/api/users/wallet-auth", walletAuthBody(t))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Token string                 `json:"token"`
		User  map[string]interface{} `json:"user"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, "issued-token", resp.Token)
	require.Equal(t, user.ID.String(), resp.User["primaryKey"])
	require.Equal(t, "user_345678", resp.User["displayName"])
	require.Equal(t, handlerTestWallet, resp.User["walletAddress"])

	// The credential hash never crosses the wire.
	require.NotContains(t, w.Body.String(), "secret-material")
	require.NotContains(t, strings.ToLower(w.Body.String()), "credentialhash")

	require.Equal(t, float64(1), gatherWalletAuthOutcome(t, m, metrics.OutcomeIssued))
}

func TestWalletAuthHandler_Authenticate_BindFailure(t *testing.T) {
	gin.SetMode(gin.TestMode)

	called := false
	r := walletAuthRouter(walletAuthStub{
		authenticateFn: func(_ context.Context, _ *entities.WalletAuthInput) (*entities.AuthResponse, error) {
			called = true
			return nil, nil
		},
	}, nil)

	bodies := []string{
		`{}`,
		`{"walletAddress":"` + handlerTestWallet + `","message":"m"}`,
		`{"walletAddress":"","message":"m","signature":"0xab"}`,
		`not json`,
	}
	for _, body := range bodies {
		req := httptest.NewRequest(http.MethodPost, "/api/users/wallet-auth", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		require.Equal(t, http.StatusBadRequest, w.Code, "body %q", body)
		require.Contains(t, w.Body.String(), "error")
	}
	require.False(t, called, "bind failures must not reach the usecase")
}

func TestWalletAuthHandler_Authenticate_ErrorMapping(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cases := []struct {
		name    string
		err     error
		status  int
		message string
		outcome string
	}{
		{"malformed address", domainerrors.ErrInvalidAddress, http.StatusBadRequest, "Invalid wallet address", metrics.OutcomeRejectedAddress},
		{"foreign signature", domainerrors.ErrSignatureInvalid, http.StatusBadRequest, "Signature verification failed", metrics.OutcomeRejectedSignature},
		{"wrapped signature error", errors.Join(domainerrors.ErrSignatureInvalid, errors.New("recovery failed")), http.StatusBadRequest, "Signature verification failed", metrics.OutcomeRejectedSignature},
		{"persistence failure", errors.New("resolve wallet identity after insert conflict: gone"), http.StatusInternalServerError, "Internal server error", metrics.OutcomeError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			m := metrics.New()
			r := walletAuthRouter(walletAuthStub{
				authenticateFn: func(_ context.Context, _ *entities.WalletAuthInput) (*entities.AuthResponse, error) {
					return nil, tc.err
				},
			}, m)

			req := httptest.NewRequest(http.MethodPost, "/api/users/wallet-auth", walletAuthBody(t))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			require.Equal(t, tc.status, w.Code)
			require.Contains(t, w.Body.String(), tc.message)
			require.Equal(t, float64(1), gatherWalletAuthOutcome(t, m, tc.outcome))
		})
	}
}

func TestWalletAuthHandler_Challenge(t *testing.T) {
	gin.SetMode(gin.TestMode)

	issued := time.Now().UTC().Truncate(time.Second)
	r := walletAuthRouter(walletAuthStub{
		issueChallengeFn: func(_ context.Context, walletAddress string) (*redis.Challenge, error) {
			require.Equal(t, handlerTestWallet, walletAddress)
			return &redis.Challenge{
				WalletAddress: handlerTestWallet,
				Nonce:         "a1b2c3d4",
				Message:       "Sign this message to authenticate with NexaCred.\n\nWallet: " + handlerTestWallet + "\nNonce: a1b2c3d4",
				IssuedAt:      issued,
				ExpiresAt:     issued.Add(5 * time.Minute),
			}, nil
		},
	}, nil)

	body := `{"walletAddress":"` + handlerTestWallet + `"}`
	req := httptest.NewRequest(http.MethodPost, "/api/users/wallet-auth/challenge", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Contains(t, resp, "message")
	require.Contains(t, resp, "nonce")
	require.Contains(t, resp, "expiresAt")
	require.NotContains(t, resp, "walletAddress")
	require.NotContains(t, resp, "issuedAt")
	require.Contains(t, resp["message"].(string), "Nonce: a1b2c3d4")
}

func TestWalletAuthHandler_Challenge_Errors(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("bind failure", func(t *testing.T) {
		r := walletAuthRouter(walletAuthStub{}, nil)
		req := httptest.NewRequest(http.MethodPost, "/api/users/wallet-auth/challenge", strings.NewReader(`{}`))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		require.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("store unavailable", func(t *testing.T) {
		r := walletAuthRouter(walletAuthStub{
			issueChallengeFn: func(_ context.Context, _ string) (*redis.Challenge, error) {
				return nil, domainerrors.ErrChallengeUnavailable
			},
		}, nil)

		body := `{"walletAddress":"` + handlerTestWallet + `"}`
		req := httptest.NewRequest(http.MethodPost, "/api/users/wallet-auth/challenge", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		require.Equal(t, http.StatusServiceUnavailable, w.Code)
		require.Contains(t, w.Body.String(), "Challenge service unavailable")
	})

	t.Run("malformed address", func(t *testing.T) {
		r := walletAuthRouter(walletAuthStub{
			issueChallengeFn: func(_ context.Context, _ string) (*redis.Challenge, error) {
				return nil, domainerrors.ErrInvalidAddress
			},
		}, nil)

		body := `{"walletAddress":"bogus"}`
		req := httptest.NewRequest(http.MethodPost, "/api/users/wallet-auth/challenge", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		require.Equal(t, http.StatusBadRequest, w.Code)
		require.Contains(t, w.Body.String(), "Invalid wallet address")
	})
}
