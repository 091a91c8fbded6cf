package usecases

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"nexacred.backend/internal/domain/entities"
	domainerrors "nexacred.backend/internal/domain/errors"
	"nexacred.backend/internal/domain/repositories"
	"nexacred.backend/pkg/crypto"
	"nexacred.backend/pkg/jwt"
	"nexacred.backend/pkg/utils"
)

// AuthUsecase handles traditional (password) authentication. Sessions issued
// here carry the shorter login expiry; wallet-verified sessions are issued
// by WalletAuthUsecase with their own lifetime.
type AuthUsecase struct {
	userRepo   repositories.UserRepository
	jwtService *jwt.JWTService
}

// NewAuthUsecase creates a new auth usecase
func NewAuthUsecase(userRepo repositories.UserRepository, jwtService *jwt.JWTService) *AuthUsecase {
	return &AuthUsecase{
		userRepo:   userRepo,
		jwtService: jwtService,
	}
}

// Register creates a new password account.
func (u *AuthUsecase) Register(ctx context.Context, input *entities.RegisterInput) (*entities.User, error) {
	email := strings.ToLower(input.Email)

	if _, err := u.userRepo.GetByEmail(ctx, email); err == nil {
		return nil, fmt.Errorf("email already registered: %w", domainerrors.ErrAlreadyExists)
	} else if !errors.Is(err, domainerrors.ErrNotFound) {
		return nil, err
	}
	if _, err := u.userRepo.GetByUsername(ctx, input.Username); err == nil {
		return nil, fmt.Errorf("username already taken: %w", domainerrors.ErrAlreadyExists)
	} else if !errors.Is(err, domainerrors.ErrNotFound) {
		return nil, err
	}

	credentialHash, err := crypto.HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	user := &entities.User{
		ID:             utils.GenerateUUIDv7(),
		Username:       input.Username,
		Email:          email,
		FirstName:      input.FirstName,
		LastName:       input.LastName,
		CredentialHash: credentialHash,
		Role:           entities.UserRoleUser,
		CreditScore:    defaultCreditScore,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	// The unique indexes still arbitrate races that slip past the prechecks.
	if err := u.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Login authenticates a password account and returns a login session.
// Unknown email and wrong password are indistinguishable to the caller.
func (u *AuthUsecase) Login(ctx context.Context, input *entities.LoginInput) (*entities.AuthResponse, error) {
	user, err := u.userRepo.GetByEmail(ctx, strings.ToLower(input.Email))
	if err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			return nil, domainerrors.ErrInvalidCredentials
		}
		return nil, err
	}

	if !crypto.CheckPassword(input.Password, user.CredentialHash) {
		return nil, domainerrors.ErrInvalidCredentials
	}

	token, err := u.jwtService.GenerateLoginToken(user.ID, user.Username, string(user.Role))
	if err != nil {
		return nil, err
	}

	return &entities.AuthResponse{Token: token, User: user}, nil
}

// GetUserByID gets a user by ID
func (u *AuthUsecase) GetUserByID(ctx context.Context, id uuid.UUID) (*entities.User, error) {
	return u.userRepo.GetByID(ctx, id)
}
