package repositories

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/volatiletech/null/v8"
	"gorm.io/gorm"

	"nexacred.backend/internal/domain/entities"
	domainerrors "nexacred.backend/internal/domain/errors"
	"nexacred.backend/internal/infrastructure/models"
)

// UserRepository implements identity record persistence
type UserRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create inserts a complete identity record. Unique-index collisions
// (wallet address, username, email) come back as ErrAlreadyExists so the
// caller can re-resolve by lookup instead of failing the request.
func (r *UserRepository) Create(ctx context.Context, user *entities.User) error {
	m := toModel(user)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		if isUniqueViolation(err) {
			return domainerrors.ErrAlreadyExists
		}
		return err
	}
	return nil
}

// GetByID gets a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.User, error) {
	var m models.User
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return toEntity(&m), nil
}

// GetByEmail gets a user by email
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*entities.User, error) {
	var m models.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return toEntity(&m), nil
}

// GetByUsername gets a user by display name
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*entities.User, error) {
	var m models.User
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return toEntity(&m), nil
}

// GetByWalletAddress gets a user by wallet address. The address must already
// be normalized to lower case; storage only ever holds normalized values, so
// the equality match is the case-insensitive lookup.
func (r *UserRepository) GetByWalletAddress(ctx context.Context, address string) (*entities.User, error) {
	var m models.User
	if err := r.db.WithContext(ctx).Where("wallet_address = ?", address).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return toEntity(&m), nil
}

// TouchWalletActivity stamps lastWalletActivity. Concurrent stamps for the
// same record are last-writer-wins; ordering is not required.
func (r *UserRepository) TouchWalletActivity(ctx context.Context, id uuid.UUID, at time.Time) error {
	result := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Updates(map[string]interface{}{
		"last_wallet_activity": at,
		"updated_at":           time.Now(),
	})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	return nil
}

// Update updates mutable profile fields
func (r *UserRepository) Update(ctx context.Context, user *entities.User) error {
	updates := map[string]interface{}{
		"username":     user.Username,
		"first_name":   user.FirstName,
		"last_name":    user.LastName,
		"role":         string(user.Role),
		"credit_score": user.CreditScore,
		"updated_at":   time.Now(),
	}

	result := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", user.ID).Updates(updates)
	if result.Error != nil {
		if isUniqueViolation(result.Error) {
			return domainerrors.ErrAlreadyExists
		}
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	return nil
}

// CountUsers returns the total number of identity records
func (r *UserRepository) CountUsers(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.User{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// CountWalletLinked returns the number of records with a linked wallet
func (r *UserRepository) CountWalletLinked(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.User{}).Where("wallet_address IS NOT NULL").Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// isUniqueViolation classifies driver-specific unique-index errors:
// translated GORM errors, raw lib/pq 23505s, and SQLite's message in tests.
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key value violates unique constraint")
}

func toModel(user *entities.User) *models.User {
	return &models.User{
		ID:                 user.ID,
		Username:           user.Username,
		Email:              user.Email,
		FirstName:          user.FirstName,
		LastName:           user.LastName,
		CredentialHash:     user.CredentialHash,
		Role:               string(user.Role),
		CreditScore:        user.CreditScore,
		WalletAddress:      user.WalletAddress.Ptr(),
		WalletConnectedAt:  user.WalletConnectedAt.Ptr(),
		LastWalletActivity: user.LastWalletActivity.Ptr(),
		CreatedAt:          user.CreatedAt,
		UpdatedAt:          user.UpdatedAt,
	}
}

func toEntity(m *models.User) *entities.User {
	return &entities.User{
		ID:                 m.ID,
		Username:           m.Username,
		Email:              m.Email,
		FirstName:          m.FirstName,
		LastName:           m.LastName,
		CredentialHash:     m.CredentialHash,
		Role:               entities.UserRole(m.Role),
		CreditScore:        m.CreditScore,
		WalletAddress:      null.StringFromPtr(m.WalletAddress),
		WalletConnectedAt:  null.TimeFromPtr(m.WalletConnectedAt),
		LastWalletActivity: null.TimeFromPtr(m.LastWalletActivity),
		CreatedAt:          m.CreatedAt,
		UpdatedAt:          m.UpdatedAt,
	}
}
