package redis

import (
	"context"
	"encoding/json"
	"time"
)

// Challenge is a server-issued wallet challenge awaiting a signature.
// Entries are advisory: authentication verifies the exact message the
// client signed, so a stored challenge is consumed on use but its absence
// never fails a request.
type Challenge struct {
	WalletAddress string    `json:"walletAddress"`
	Nonce         string    `json:"nonce"`
	Message       string    `json:"message"`
	IssuedAt      time.Time `json:"issuedAt"`
	ExpiresAt     time.Time `json:"expiresAt"`
}

// ChallengeStore keeps challenges in Redis under a TTL. Expiry is native
// (no sweeper); one challenge per address, newer requests overwrite.
type ChallengeStore struct {
	ttl time.Duration
}

var (
	setChallengeValue    = Set
	getChallengeValue    = Get
	getDelChallengeValue = GetDel
)

// NewChallengeStore creates a challenge store with the given lifetime.
func NewChallengeStore(ttl time.Duration) *ChallengeStore {
	return &ChallengeStore{ttl: ttl}
}

// TTL returns the configured challenge lifetime.
func (s *ChallengeStore) TTL() time.Duration {
	return s.ttl
}

// Put stores a challenge for its wallet address, replacing any pending one.
func (s *ChallengeStore) Put(ctx context.Context, challenge *Challenge) error {
	data, err := json.Marshal(challenge)
	if err != nil {
		return err
	}
	return setChallengeValue(ctx, challengeKey(challenge.WalletAddress), data, s.ttl)
}

// Get returns the pending challenge for an address, or (nil, nil) when none
// is pending.
func (s *ChallengeStore) Get(ctx context.Context, address string) (*Challenge, error) {
	data, err := getChallengeValue(ctx, challengeKey(address))
	if err != nil {
		if IsNil(err) {
			return nil, nil
		}
		return nil, err
	}
	return unmarshalChallenge(data)
}

// Consume atomically fetches and deletes the pending challenge for an
// address. Returns (nil, nil) when none is pending.
func (s *ChallengeStore) Consume(ctx context.Context, address string) (*Challenge, error) {
	data, err := getDelChallengeValue(ctx, challengeKey(address))
	if err != nil {
		if IsNil(err) {
			return nil, nil
		}
		return nil, err
	}
	return unmarshalChallenge(data)
}

func unmarshalChallenge(data string) (*Challenge, error) {
	var challenge Challenge
	if err := json.Unmarshal([]byte(data), &challenge); err != nil {
		return nil, err
	}
	return &challenge, nil
}

func challengeKey(address string) string {
	return "wallet:challenge:" + address
}
