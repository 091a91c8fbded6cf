package crypto

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

const (
	// DefaultCost is the default bcrypt cost
	DefaultCost = 12

	// walletCredentialBytes sizes the random credential minted for
	// wallet-only accounts. 32 bytes = 64 hex characters, never disclosed.
	walletCredentialBytes = 32
)

var (
	bcryptGenerateFromPassword = bcrypt.GenerateFromPassword
	randomRead                 = rand.Read
)

// HashPassword hashes a password using bcrypt
func HashPassword(password string) (string, error) {
	bytes, err := bcryptGenerateFromPassword([]byte(password), DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(bytes), nil
}

// CheckPassword compares a password with a hash
func CheckPassword(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// GenerateRandomToken generates a random token of specified length
func GenerateRandomToken(length int) (string, error) {
	bytes := make([]byte, length)
	if _, err := randomRead(bytes); err != nil {
		return "", fmt.Errorf("failed to generate random token: %w", err)
	}
	return hex.EncodeToString(bytes), nil
}

// GenerateWalletCredential mints the unusable credential hash carried by
// wallet-created accounts. Every record keeps exactly one credential hash;
// the plaintext is random, discarded, and never returned to anyone.
func GenerateWalletCredential() (string, error) {
	secret, err := GenerateRandomToken(walletCredentialBytes)
	if err != nil {
		return "", err
	}
	return HashPassword(secret)
}
