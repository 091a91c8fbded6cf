package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"nexacred.backend/internal/domain/entities"
)

// UserRepository defines identity record operations. Create must surface
// unique-constraint collisions as domain ErrAlreadyExists so callers can
// re-resolve by lookup; the wallet_address unique index is the sole
// arbiter for concurrent first-time authentication.
type UserRepository interface {
	Create(ctx context.Context, user *entities.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*entities.User, error)
	GetByEmail(ctx context.Context, email string) (*entities.User, error)
	GetByUsername(ctx context.Context, username string) (*entities.User, error)
	// GetByWalletAddress expects an already-normalized (lower-cased) address.
	GetByWalletAddress(ctx context.Context, address string) (*entities.User, error)
	// TouchWalletActivity updates lastWalletActivity; last-writer-wins.
	TouchWalletActivity(ctx context.Context, id uuid.UUID, at time.Time) error
	Update(ctx context.Context, user *entities.User) error
	// Counts feed the user-population gauges.
	CountUsers(ctx context.Context) (int64, error)
	CountWalletLinked(ctx context.Context) (int64, error)
}
