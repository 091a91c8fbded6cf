package usecases_test

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/volatiletech/null/v8"

	"nexacred.backend/internal/domain/entities"
	domainerrors "nexacred.backend/internal/domain/errors"
)

// Mock UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *entities.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.User), args.Error(1)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*entities.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.User), args.Error(1)
}

func (m *MockUserRepository) GetByUsername(ctx context.Context, username string) (*entities.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.User), args.Error(1)
}

func (m *MockUserRepository) GetByWalletAddress(ctx context.Context, address string) (*entities.User, error) {
	args := m.Called(ctx, address)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.User), args.Error(1)
}

func (m *MockUserRepository) TouchWalletActivity(ctx context.Context, id uuid.UUID, at time.Time) error {
	args := m.Called(ctx, id, at)
	return args.Error(0)
}

func (m *MockUserRepository) Update(ctx context.Context, user *entities.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) CountUsers(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockUserRepository) CountWalletLinked(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

// memoryUserRepo is an in-memory repository enforcing the same unique
// constraints as the SQL schema. It is the store under the concurrency
// tests, where mock expectations would be nondeterministic.
type memoryUserRepo struct {
	mu      sync.Mutex
	byID    map[uuid.UUID]*entities.User
	creates int
}

func newMemoryUserRepo() *memoryUserRepo {
	return &memoryUserRepo{byID: make(map[uuid.UUID]*entities.User)}
}

func cloneUser(u *entities.User) *entities.User {
	c := *u
	return &c
}

func (r *memoryUserRepo) Create(_ context.Context, user *entities.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.byID {
		if existing.Username == user.Username || existing.Email == user.Email {
			return domainerrors.ErrAlreadyExists
		}
		if user.WalletAddress.Valid && existing.WalletAddress.Valid &&
			existing.WalletAddress.String == user.WalletAddress.String {
			return domainerrors.ErrAlreadyExists
		}
	}
	r.creates++
	r.byID[user.ID] = cloneUser(user)
	return nil
}

func (r *memoryUserRepo) GetByID(_ context.Context, id uuid.UUID) (*entities.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.byID[id]; ok {
		return cloneUser(u), nil
	}
	return nil, domainerrors.ErrNotFound
}

func (r *memoryUserRepo) GetByEmail(_ context.Context, email string) (*entities.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.byID {
		if u.Email == email {
			return cloneUser(u), nil
		}
	}
	return nil, domainerrors.ErrNotFound
}

func (r *memoryUserRepo) GetByUsername(_ context.Context, username string) (*entities.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.byID {
		if u.Username == username {
			return cloneUser(u), nil
		}
	}
	return nil, domainerrors.ErrNotFound
}

func (r *memoryUserRepo) GetByWalletAddress(_ context.Context, address string) (*entities.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.byID {
		if u.WalletAddress.Valid && u.WalletAddress.String == address {
			return cloneUser(u), nil
		}
	}
	return nil, domainerrors.ErrNotFound
}

func (r *memoryUserRepo) TouchWalletActivity(_ context.Context, id uuid.UUID, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byID[id]
	if !ok {
		return domainerrors.ErrNotFound
	}
	u.LastWalletActivity = null.TimeFrom(at)
	u.UpdatedAt = at
	return nil
}

func (r *memoryUserRepo) Update(_ context.Context, user *entities.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[user.ID]; !ok {
		return domainerrors.ErrNotFound
	}
	r.byID[user.ID] = cloneUser(user)
	return nil
}

func (r *memoryUserRepo) CountUsers(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.byID)), nil
}

func (r *memoryUserRepo) CountWalletLinked(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, u := range r.byID {
		if u.WalletAddress.Valid {
			n++
		}
	}
	return n, nil
}
