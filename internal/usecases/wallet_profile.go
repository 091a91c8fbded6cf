package usecases

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"

	"nexacred.backend/internal/domain/entities"
)

const (
	// walletEmailDomain hosts the placeholder addresses of wallet-created
	// accounts. Deriving the local part from the wallet address keeps the
	// email unique index satisfied without inventing reachable mailboxes.
	walletEmailDomain = "wallet.nexacred.local"

	defaultCreditScore = 650
)

// SynthesizeWalletProfile builds the identity record for a first-time wallet
// authentication. Pure over its inputs: the effectful parts (primary key,
// credential hash, clock) are supplied by the caller, so the mapping from a
// wallet address to its placeholder profile is deterministic and testable.
//
// The display name is the address suffix (`user_` + last 6 hex chars); a
// collision is handled by the caller via CollisionDisplayName. All profile
// fields are populated so the insert succeeds or fails as a unit.
func SynthesizeWalletProfile(address string, id uuid.UUID, credentialHash string, now time.Time) *entities.User {
	normalized := strings.ToLower(address)
	return &entities.User{
		ID:                 id,
		Username:           WalletDisplayName(normalized),
		Email:              normalized + "@" + walletEmailDomain,
		FirstName:          "Wallet",
		LastName:           "User",
		CredentialHash:     credentialHash,
		Role:               entities.UserRoleUser,
		CreditScore:        defaultCreditScore,
		WalletAddress:      null.StringFrom(normalized),
		WalletConnectedAt:  null.TimeFrom(now),
		LastWalletActivity: null.TimeFrom(now),
		CreatedAt:          now,
		UpdatedAt:          now,
	}
}

// WalletDisplayName derives the default display name from an address suffix.
func WalletDisplayName(address string) string {
	return "user_" + addressSuffix(address, 6)
}

// CollisionDisplayName derives the fallback display name used when the
// default collides with an existing account: the address suffix plus the
// first hex group of the new record's primary key.
func CollisionDisplayName(address string, id uuid.UUID) string {
	return "user_" + addressSuffix(address, 6) + "_" + id.String()[:4]
}

func addressSuffix(address string, n int) string {
	trimmed := strings.TrimPrefix(strings.ToLower(address), "0x")
	if len(trimmed) <= n {
		return trimmed
	}
	return trimmed[len(trimmed)-n:]
}
