package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/require"
	"nexacred.backend/pkg/crypto"
)

// newAuthTestServer serves the challenge and wallet-auth endpoints the way
// the real handlers do, verifying signatures against the claimed address.
func newAuthTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	defer func() {
		if r := recover(); r != nil {
			t.Skipf("skip: cannot start test server in this environment: %v", r)
		}
	}()

	mux := http.NewServeMux()

	mux.HandleFunc("/api/users/wallet-auth/challenge", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			WalletAddress string `json:"walletAddress"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.WalletAddress == "" {
			w.WriteHeader(http.StatusBadRequest)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "walletAddress is required"})
			return
		}

		address := crypto.NormalizeAddress(body.WalletAddress)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"message":   "Sign this message to authenticate with NexaCred.\n\nWallet: " + address + "\nNonce: deadbeef",
			"nonce":     "deadbeef",
			"expiresAt": time.Now().UTC().Add(5 * time.Minute),
		})
	})

	mux.HandleFunc("/api/users/wallet-auth", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			WalletAddress string `json:"walletAddress"`
			Message       string `json:"message"`
			Signature     string `json:"signature"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "invalid body"})
			return
		}

		match, err := crypto.VerifyPersonalSignature(body.WalletAddress, body.Message, body.Signature)
		if err != nil || !match {
			w.WriteHeader(http.StatusBadRequest)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "Signature verification failed"})
			return
		}

		address := crypto.NormalizeAddress(body.WalletAddress)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"token": "session-token",
			"user": map[string]interface{}{
				"primaryKey":    "0198f00d-0000-7000-8000-000000000001",
				"displayName":   "user_" + address[len(address)-6:],
				"walletAddress": address,
				"creditScore":   650,
			},
		})
	})

	return httptest.NewServer(mux)
}

func TestWalletClient_Address(t *testing.T) {
	key, err := ethcrypto.GenerateKey()
	require.NoError(t, err)

	c := NewWalletClient("http://localhost", key)
	require.Equal(t, ethcrypto.PubkeyToAddress(key.PublicKey).Hex(), c.Address())
	require.True(t, crypto.IsValidAddress(c.Address()))
}

func TestWalletClient_Authenticate_FullFlow(t *testing.T) {
	srv := newAuthTestServer(t)
	defer srv.Close()

	key, err := ethcrypto.GenerateKey()
	require.NoError(t, err)

	c := NewWalletClient(srv.URL, key)
	session, err := c.Authenticate(context.Background())
	require.NoError(t, err)

	require.Equal(t, "session-token", session.Token)
	require.Equal(t, crypto.NormalizeAddress(c.Address()), session.User.WalletAddress)
	require.Equal(t, 650, session.User.CreditScore)
	require.True(t, strings.HasPrefix(session.User.Username, "user_"))
}

func TestWalletClient_RequestChallenge(t *testing.T) {
	srv := newAuthTestServer(t)
	defer srv.Close()

	key, err := ethcrypto.GenerateKey()
	require.NoError(t, err)

	c := NewWalletClient(srv.URL, key)
	challenge, err := c.RequestChallenge(context.Background())
	require.NoError(t, err)

	require.Contains(t, challenge.Message, "Sign this message to authenticate with NexaCred.")
	require.Contains(t, challenge.Message, crypto.NormalizeAddress(c.Address()))
	require.Equal(t, "deadbeef", challenge.Nonce)
	require.True(t, challenge.ExpiresAt.After(time.Now()))
}

func TestWalletClient_AuthenticateWithMessage(t *testing.T) {
	srv := newAuthTestServer(t)
	defer srv.Close()

	key, err := ethcrypto.GenerateKey()
	require.NoError(t, err)

	c := NewWalletClient(srv.URL, key)
	session, err := c.AuthenticateWithMessage(context.Background(), "an uncoordinated login message")
	require.NoError(t, err)
	require.Equal(t, "session-token", session.Token)
}

func TestWalletClient_SurfacesAPIErrors(t *testing.T) {
	defer func() {
		if r := recover(); r != nil {
			t.Skipf("skip: cannot start test server in this environment: %v", r)
		}
	}()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "Challenge service unavailable"})
	}))
	defer srv.Close()

	key, err := ethcrypto.GenerateKey()
	require.NoError(t, err)

	c := NewWalletClient(srv.URL, key)
	_, err = c.RequestChallenge(context.Background())
	require.Error(t, err)
	require.Contains(t, err.Error(), "API error (503): Challenge service unavailable")
}

func TestWalletClient_NonJSONErrorBody(t *testing.T) {
	defer func() {
		if r := recover(); r != nil {
			t.Skipf("skip: cannot start test server in this environment: %v", r)
		}
	}()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream exploded", http.StatusBadGateway)
	}))
	defer srv.Close()

	key, err := ethcrypto.GenerateKey()
	require.NoError(t, err)

	c := NewWalletClient(srv.URL, key)
	_, err = c.RequestChallenge(context.Background())
	require.Error(t, err)
	require.Contains(t, err.Error(), "API error (502): Bad Gateway")
}
