package usecases

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/volatiletech/null/v8"
	"go.uber.org/zap"

	"nexacred.backend/internal/domain/entities"
	domainerrors "nexacred.backend/internal/domain/errors"
	"nexacred.backend/internal/domain/repositories"
	"nexacred.backend/pkg/crypto"
	"nexacred.backend/pkg/jwt"
	"nexacred.backend/pkg/logger"
	"nexacred.backend/pkg/redis"
	"nexacred.backend/pkg/utils"
)

const (
	challengeMessageFormat = "Sign this message to authenticate with NexaCred.\n\nWallet: %s\nNonce: %s\nTimestamp: %d"
	challengeNonceBytes    = 16
)

// verifyPersonalSignature is swappable in tests.
var verifyPersonalSignature = crypto.VerifyPersonalSignature

// WalletAuthUsecase implements wallet-signature authentication: it verifies
// an EIP-191 personal-message signature against the claimed address, maps
// the verified address to exactly one identity record (creating one with a
// synthesized profile on first contact), and issues a wallet session token.
type WalletAuthUsecase struct {
	userRepo   repositories.UserRepository
	jwtService *jwt.JWTService
	challenges *redis.ChallengeStore
}

// NewWalletAuthUsecase creates a new wallet auth usecase
func NewWalletAuthUsecase(
	userRepo repositories.UserRepository,
	jwtService *jwt.JWTService,
	challenges *redis.ChallengeStore,
) *WalletAuthUsecase {
	return &WalletAuthUsecase{
		userRepo:   userRepo,
		jwtService: jwtService,
		challenges: challenges,
	}
}

// Authenticate runs the wallet authentication flow for a signed message.
// Returns ErrInvalidAddress for a malformed address, ErrSignatureInvalid
// when the signature does not recover to the claimed address (recovery
// errors are authentication failures, never implicit trust), and the
// underlying error for persistence failures.
func (u *WalletAuthUsecase) Authenticate(ctx context.Context, input *entities.WalletAuthInput) (*entities.AuthResponse, error) {
	if !crypto.IsValidAddress(input.WalletAddress) {
		return nil, domainerrors.ErrInvalidAddress
	}
	address := crypto.NormalizeAddress(input.WalletAddress)

	match, err := verifyPersonalSignature(input.WalletAddress, input.Message, input.Signature)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domainerrors.ErrSignatureInvalid, err)
	}
	if !match {
		return nil, domainerrors.ErrSignatureInvalid
	}

	u.consumeChallenge(ctx, address, input.Message)

	user, err := u.resolveIdentity(ctx, address)
	if err != nil {
		return nil, err
	}

	token, err := u.jwtService.GenerateWalletToken(user.ID, user.Username, user.WalletAddress.String, string(user.Role))
	if err != nil {
		return nil, err
	}

	return &entities.AuthResponse{Token: token, User: user}, nil
}

// IssueChallenge builds and stores the canonical challenge message for an
// address. Challenges are advisory: authentication verifies whatever message
// the client actually signed, so an expired or lost challenge never blocks a
// request.
func (u *WalletAuthUsecase) IssueChallenge(ctx context.Context, walletAddress string) (*redis.Challenge, error) {
	if !crypto.IsValidAddress(walletAddress) {
		return nil, domainerrors.ErrInvalidAddress
	}
	address := crypto.NormalizeAddress(walletAddress)

	nonce, err := crypto.GenerateRandomToken(challengeNonceBytes)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	challenge := &redis.Challenge{
		WalletAddress: address,
		Nonce:         nonce,
		Message:       fmt.Sprintf(challengeMessageFormat, address, nonce, now.Unix()),
		IssuedAt:      now,
		ExpiresAt:     now.Add(u.challenges.TTL()),
	}
	if err := u.challenges.Put(ctx, challenge); err != nil {
		return nil, fmt.Errorf("%w: %v", domainerrors.ErrChallengeUnavailable, err)
	}
	return challenge, nil
}

// resolveIdentity maps a verified, normalized address to exactly one
// identity record. The unique index on wallet_address is the sole arbiter
// for concurrent first contacts: the loser of an insert race falls back to
// the lookup path exactly once.
func (u *WalletAuthUsecase) resolveIdentity(ctx context.Context, address string) (*entities.User, error) {
	user, err := u.userRepo.GetByWalletAddress(ctx, address)
	if err == nil {
		return u.touchActivity(ctx, user)
	}
	if !errors.Is(err, domainerrors.ErrNotFound) {
		return nil, err
	}

	fresh, err := newWalletUser(address)
	if err != nil {
		return nil, err
	}
	err = u.userRepo.Create(ctx, fresh)
	if err == nil {
		return fresh, nil
	}
	if !errors.Is(err, domainerrors.ErrAlreadyExists) {
		return nil, err
	}

	// Unique violation: either we lost the first-contact race on the
	// address, or the synthesized display name is taken.
	user, lookupErr := u.userRepo.GetByWalletAddress(ctx, address)
	if lookupErr == nil {
		return u.touchActivity(ctx, user)
	}
	if !errors.Is(lookupErr, domainerrors.ErrNotFound) {
		return nil, lookupErr
	}

	// The address is still free, so the display name collided. Retry the
	// insert once with a key-derived suffix.
	fresh.Username = CollisionDisplayName(address, fresh.ID)
	err = u.userRepo.Create(ctx, fresh)
	if err == nil {
		return fresh, nil
	}
	if !errors.Is(err, domainerrors.ErrAlreadyExists) {
		return nil, err
	}

	// Something conflicted but the address still does not resolve. Surface
	// a server error rather than a misleading not-found.
	user, err = u.userRepo.GetByWalletAddress(ctx, address)
	if err != nil {
		return nil, fmt.Errorf("resolve wallet identity after insert conflict: %v", err)
	}
	return u.touchActivity(ctx, user)
}

func (u *WalletAuthUsecase) touchActivity(ctx context.Context, user *entities.User) (*entities.User, error) {
	now := time.Now().UTC()
	if err := u.userRepo.TouchWalletActivity(ctx, user.ID, now); err != nil {
		return nil, fmt.Errorf("record wallet activity: %v", err)
	}
	user.LastWalletActivity = null.TimeFrom(now)
	return user, nil
}

// consumeChallenge retires a pending challenge once its message has been
// signed. Best effort: the challenge store being down must not fail an
// otherwise valid authentication.
func (u *WalletAuthUsecase) consumeChallenge(ctx context.Context, address, message string) {
	if u.challenges == nil {
		return
	}
	pending, err := u.challenges.Get(ctx, address)
	if err != nil {
		logger.WithContext(ctx).Debug("wallet challenge lookup failed", zap.Error(err))
		return
	}
	if pending == nil || pending.Message != message {
		return
	}
	if _, err := u.challenges.Consume(ctx, address); err != nil {
		logger.WithContext(ctx).Debug("wallet challenge consume failed", zap.Error(err))
	}
}

func newWalletUser(address string) (*entities.User, error) {
	credentialHash, err := crypto.GenerateWalletCredential()
	if err != nil {
		return nil, err
	}
	return SynthesizeWalletProfile(address, utils.GenerateUUIDv7(), credentialHash, time.Now().UTC()), nil
}
