// internal/infrastructure/memory/user_store.go
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/your-org/ecommerce-core/internal/domain/user"
)

// UserStore keeps users and their addresses in process memory
type UserStore struct {
	mu         sync.Mutex
	users      map[uint]*user.User
	byUsername map[string]uint
	nextID     uint
}

// NewUserStore creates an empty user store
func NewUserStore() *UserStore {
	return &UserStore{
		users:      make(map[uint]*user.User),
		byUsername: make(map[string]uint),
	}
}

func cloneUser(u *user.User) *user.User {
	c := *u
	if u.Address != nil {
		a := *u.Address
		c.Address = &a
	}
	if u.LastLoginAt != nil {
		t := *u.LastLoginAt
		c.LastLoginAt = &t
	}
	return &c
}

// Create inserts the user and its address
func (s *UserStore) Create(_ context.Context, u *user.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, taken := s.byUsername[u.Username]; taken {
		return user.ErrUserExists
	}

	s.nextID++
	now := time.Now().UTC()
	u.ID = s.nextID
	u.CreatedAt, u.UpdatedAt = now, now
	if u.Address == nil {
		u.Address = &user.Address{}
	}
	u.Address.ID = u.ID
	u.Address.UserID = u.ID
	u.Address.CreatedAt, u.Address.UpdatedAt = now, now

	s.users[u.ID] = cloneUser(u)
	s.byUsername[u.Username] = u.ID
	return nil
}

// Get returns a copy of the user
func (s *UserStore) Get(_ context.Context, id uint) (*user.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return nil, user.ErrUserNotFound
	}
	return cloneUser(u), nil
}

// GetByUsername returns a copy of the user with the given username
func (s *UserStore) GetByUsername(ctx context.Context, username string) (*user.User, error) {
	s.mu.Lock()
	id, ok := s.byUsername[username]
	s.mu.Unlock()
	if !ok {
		return nil, user.ErrUserNotFound
	}
	return s.Get(ctx, id)
}

// Update applies fn to a copy of the user and stores it when fn succeeds
func (s *UserStore) Update(_ context.Context, id uint, fn func(u *user.User) error) (*user.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.users[id]
	if !ok {
		return nil, user.ErrUserNotFound
	}

	u := cloneUser(stored)
	if err := fn(u); err != nil {
		return nil, err
	}

	u.UpdatedAt = time.Now().UTC()
	s.users[id] = cloneUser(u)
	return u, nil
}
