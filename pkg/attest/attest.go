// Package attest signs analyzer reports as compact JWS tokens so downstream
// consumers (lenders, auditors) can verify a report's origin and integrity
// offline.
package attest

import (
	"errors"

	jose "github.com/go-jose/go-jose/v3"
)

// Signer produces and verifies HS256 compact JWS attestations.
type Signer struct {
	signer jose.Signer
	key    []byte
}

// NewSigner builds a signer from the shared attestation key.
func NewSigner(key string) (*Signer, error) {
	if key == "" {
		return nil, errors.New("attest: signing key is empty")
	}
	secret := []byte(key)
	signer, err := jose.NewSigner(jose.SigningKey{Algorithm: jose.HS256, Key: secret}, nil)
	if err != nil {
		return nil, err
	}
	return &Signer{signer: signer, key: secret}, nil
}

// Sign wraps a payload in a compact JWS.
func (s *Signer) Sign(payload []byte) (string, error) {
	obj, err := s.signer.Sign(payload)
	if err != nil {
		return "", err
	}
	return obj.CompactSerialize()
}

// Verify checks a compact JWS signature and returns the attested payload.
func (s *Signer) Verify(token string) ([]byte, error) {
	obj, err := jose.ParseSigned(token)
	if err != nil {
		return nil, err
	}
	return obj.Verify(s.key)
}
