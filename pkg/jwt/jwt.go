package jwt

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
)

// Claims are the identity claims carried by a session token: the identity
// key, its display name, the wallet address when the session originated
// from a wallet signature, and the role.
type Claims struct {
	UserID        uuid.UUID `json:"userId"`
	Username      string    `json:"username"`
	WalletAddress string    `json:"walletAddress,omitempty"`
	Role          string    `json:"role"`
	jwt.RegisteredClaims
}

// JWTService issues and validates session tokens. Wallet-originated
// sessions live longer than password logins; the two lifetimes are an
// intentional trust-level distinction.
type JWTService struct {
	secret       []byte
	walletExpiry time.Duration
	loginExpiry  time.Duration
}

var signJWTToken = func(token *jwt.Token, secret []byte) (string, error) {
	return token.SignedString(secret)
}

// NewJWTService creates a new JWT service
func NewJWTService(secret string, walletExpiry, loginExpiry time.Duration) *JWTService {
	return &JWTService{
		secret:       []byte(secret),
		walletExpiry: walletExpiry,
		loginExpiry:  loginExpiry,
	}
}

// GenerateWalletToken issues a session for a wallet-verified identity.
func (s *JWTService) GenerateWalletToken(userID uuid.UUID, username, walletAddress, role string) (string, error) {
	return s.generateToken(userID, username, walletAddress, role, s.walletExpiry)
}

// GenerateLoginToken issues a session for a password login.
func (s *JWTService) GenerateLoginToken(userID uuid.UUID, username, role string) (string, error) {
	return s.generateToken(userID, username, "", role, s.loginExpiry)
}

// ValidateToken validates a JWT token and returns the claims
func (s *JWTService) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return s.secret, nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

func (s *JWTService) generateToken(userID uuid.UUID, username, walletAddress, role string, expiry time.Duration) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserID:        userID,
		Username:      username,
		WalletAddress: walletAddress,
		Role:          role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(expiry)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return signJWTToken(token, s.secret)
}
