package entities

import (
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
)

// UserRole represents user roles
type UserRole string

const (
	UserRoleAdmin UserRole = "admin"
	UserRoleUser  UserRole = "user"
)

// User is one identity record. An account exists either through traditional
// registration or through first-time wallet authentication; wallet fields
// are sparse and only ever hold normalized (lower-cased) addresses.
type User struct {
	ID                 uuid.UUID   `json:"primaryKey"`
	Username           string      `json:"displayName"`
	Email              string      `json:"email"`
	FirstName          string      `json:"firstName"`
	LastName           string      `json:"lastName"`
	CredentialHash     string      `json:"-"`
	Role               UserRole    `json:"role"`
	CreditScore        int         `json:"creditScore"`
	WalletAddress      null.String `json:"walletAddress,omitempty"`
	WalletConnectedAt  null.Time   `json:"walletConnectedAt,omitempty"`
	LastWalletActivity null.Time   `json:"lastWalletActivity,omitempty"`
	CreatedAt          time.Time   `json:"createdAt"`
	UpdatedAt          time.Time   `json:"updatedAt"`
}

// HasWallet reports whether a wallet is linked to this record.
func (u *User) HasWallet() bool {
	return u.WalletAddress.Valid && u.WalletAddress.String != ""
}

// WalletAuthInput is the body of POST /api/users/wallet-auth.
type WalletAuthInput struct {
	WalletAddress string `json:"walletAddress" binding:"required"`
	Message       string `json:"message" binding:"required"`
	Signature     string `json:"signature" binding:"required"`
}

// ChallengeInput requests a challenge message for an address.
type ChallengeInput struct {
	WalletAddress string `json:"walletAddress" binding:"required"`
}

// RegisterInput represents input for traditional registration
type RegisterInput struct {
	Username  string `json:"username" binding:"required,min=3,max=30"`
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required,min=8"`
	FirstName string `json:"firstName" binding:"required,min=1,max=50"`
	LastName  string `json:"lastName" binding:"required,min=1,max=50"`
}

// LoginInput represents input for traditional login
type LoginInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// AuthResponse carries a session token plus the authenticated identity.
type AuthResponse struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}
