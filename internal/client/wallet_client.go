package client

import (
	"bytes"
	"context"
	"crypto/ecdsa"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	"nexacred.backend/pkg/crypto"
)

// WalletClient authenticates against the NexaCred HTTP API by signing
// challenge messages with a local key, the way a wallet extension would.
type WalletClient struct {
	baseURL    string
	key        *ecdsa.PrivateKey
	httpClient *http.Client
}

// ChallengeResponse is the server-issued message to sign.
type ChallengeResponse struct {
	Message   string    `json:"message"`
	Nonce     string    `json:"nonce"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// SessionUser is the identity record returned with a session.
type SessionUser struct {
	ID            string `json:"primaryKey"`
	Username      string `json:"displayName"`
	WalletAddress string `json:"walletAddress"`
	CreditScore   int    `json:"creditScore"`
}

// Session is an issued wallet session.
type Session struct {
	Token string      `json:"token"`
	User  SessionUser `json:"user"`
}

// NewWalletClient creates a client for baseURL signing with key.
func NewWalletClient(baseURL string, key *ecdsa.PrivateKey) *WalletClient {
	return &WalletClient{
		baseURL: baseURL,
		key:     key,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Address returns the 0x-prefixed address of the signing key.
func (c *WalletClient) Address() string {
	return ethcrypto.PubkeyToAddress(c.key.PublicKey).Hex()
}

// RequestChallenge fetches the canonical signing message for this wallet.
func (c *WalletClient) RequestChallenge(ctx context.Context) (*ChallengeResponse, error) {
	var challenge ChallengeResponse
	body := map[string]string{"walletAddress": c.Address()}
	if err := c.do(ctx, http.MethodPost, "/api/users/wallet-auth/challenge", body, &challenge); err != nil {
		return nil, err
	}
	return &challenge, nil
}

// Authenticate runs the full flow: request a challenge, sign its message,
// and exchange the signature for a session.
func (c *WalletClient) Authenticate(ctx context.Context) (*Session, error) {
	challenge, err := c.RequestChallenge(ctx)
	if err != nil {
		return nil, err
	}
	return c.AuthenticateWithMessage(ctx, challenge.Message)
}

// AuthenticateWithMessage signs message and exchanges it for a session.
// The server verifies whatever message was actually signed, so callers can
// authenticate without a prior challenge.
func (c *WalletClient) AuthenticateWithMessage(ctx context.Context, message string) (*Session, error) {
	signature, err := crypto.SignPersonalMessage(message, c.key)
	if err != nil {
		return nil, err
	}

	body := map[string]string{
		"walletAddress": c.Address(),
		"message":       message,
		"signature":     signature,
	}

	var session Session
	if err := c.do(ctx, http.MethodPost, "/api/users/wallet-auth", body, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

// do performs an HTTP request and decodes the JSON response into out.
func (c *WalletClient) do(ctx context.Context, method, path string, body interface{}, out interface{}) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		// Try to extract error message from JSON response
		var errResp struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(respBody, &errResp) == nil && errResp.Error != "" {
			return fmt.Errorf("API error (%d): %s", resp.StatusCode, errResp.Error)
		}
		return fmt.Errorf("API error (%d): %s", resp.StatusCode, http.StatusText(resp.StatusCode))
	}

	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("failed to parse response: %w", err)
		}
	}

	return nil
}
