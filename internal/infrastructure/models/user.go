package models

import (
	"time"

	"github.com/google/uuid"
)

// User is the persistence shape of an identity record. WalletAddress holds
// normalized (lower-cased) addresses only; the unique index tolerates NULLs,
// so password-only accounts coexist freely while concurrent first-time
// wallet authentications collide on exactly this constraint.
type User struct {
	ID                 uuid.UUID  `gorm:"type:uuid;primaryKey"`
	Username           string     `gorm:"type:varchar(64);uniqueIndex;not null"`
	Email              string     `gorm:"type:varchar(255);uniqueIndex;not null"`
	FirstName          string     `gorm:"type:varchar(50);not null"`
	LastName           string     `gorm:"type:varchar(50);not null"`
	CredentialHash     string     `gorm:"type:varchar(255);not null"`
	Role               string     `gorm:"type:varchar(20);not null;default:'user'"`
	CreditScore        int        `gorm:"not null;default:650"`
	WalletAddress      *string    `gorm:"type:varchar(42);uniqueIndex"`
	WalletConnectedAt  *time.Time `gorm:"type:timestamp"`
	LastWalletActivity *time.Time `gorm:"type:timestamp"`
	CreatedAt          time.Time
	UpdatedAt          time.Time
}
