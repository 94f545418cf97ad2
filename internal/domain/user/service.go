// internal/domain/user/service.go
package user

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/your-org/ecommerce-core/internal/pkg/identifier"
)

var (
	phonePattern = regexp.MustCompile(`^09[0-3][0-9]-?[0-9]{3}-?[0-9]{4}$`)
	validate     = validator.New()
)

// Store persists users together with their address
type Store interface {
	// Create inserts the user and its address in one transaction
	Create(ctx context.Context, u *User) error
	Get(ctx context.Context, id uint) (*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
	// Update loads the user under a row lock, applies fn and saves the user
	// and its address; an error from fn aborts without writing
	Update(ctx context.Context, id uint, fn func(u *User) error) (*User, error)
}

// PasswordHasher hashes and verifies passwords
type PasswordHasher interface {
	HashPassword(password string) (string, error)
	VerifyPassword(password, hash string) error
}

// TokenIssuer issues access tokens for authenticated users
type TokenIssuer interface {
	GenerateAccessToken(userID uint, email string, isAdmin bool) (string, error)
	AccessTokenTTL() time.Duration
}

// Service handles user business logic. Every write goes through prepare so
// the score accrual and the user invariants apply on each save.
type Service struct {
	store     Store
	passwords PasswordHasher
	tokens    TokenIssuer
	policy    AccrualPolicy
	log       logrus.FieldLogger
}

// NewService creates a new user service
func NewService(store Store, passwords PasswordHasher, tokens TokenIssuer, policy AccrualPolicy, log logrus.FieldLogger) *Service {
	return &Service{
		store:     store,
		passwords: passwords,
		tokens:    tokens,
		policy:    policy,
		log:       log,
	}
}

// prepare runs the pre-write transformation: score accrual, then validation
func (s *Service) prepare(u *User) error {
	acc, err := s.policy.Prepare(u)
	if err != nil {
		return err
	}

	if acc.Triggered {
		s.log.WithFields(logrus.Fields{
			"user_id":    u.ID,
			"score":      acc.Score,
			"multiplier": acc.Multiplier,
			"bonus":      acc.Bonus,
		}).Info("loyalty score converted to discount")
	}
	return nil
}

func (s *Service) update(ctx context.Context, id uint, fn func(u *User) error) (*User, error) {
	return s.store.Update(ctx, id, func(u *User) error {
		if err := fn(u); err != nil {
			return err
		}
		return s.prepare(u)
	})
}

// Register creates a user with an empty address. A username that is an
// e-mail address or a mobile number fills the missing email or phone.
func (s *Service) Register(ctx context.Context, req *RegisterRequest) (*User, error) {
	username := strings.TrimSpace(req.Username)
	slug := identifier.Slugify(username)
	if slug == "" || validate.Var(username, "min=3,max=33") != nil {
		return nil, ErrInvalidUsername
	}

	u := &User{
		Username:  username,
		Slug:      slug,
		Email:     strings.ToLower(strings.TrimSpace(req.Email)),
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Phone:     req.Phone,
		IsActive:  true,
		Address:   &Address{},
	}

	if u.Email == "" && validate.Var(username, "email") == nil {
		u.Email = strings.ToLower(username)
	}
	if u.Phone == "" && phonePattern.MatchString(username) {
		u.Phone = username
	}

	// An empty password marks an account that can only sign in through a social provider
	if req.Password != "" {
		hash, err := s.passwords.HashPassword(req.Password)
		if err != nil {
			return nil, err
		}
		u.Password = hash
	}

	if err := s.prepare(u); err != nil {
		return nil, err
	}
	if err := s.store.Create(ctx, u); err != nil {
		if errors.Is(err, ErrUserExists) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.log.WithFields(logrus.Fields{
		"user_id":  u.ID,
		"username": u.Username,
	}).Info("user registered")

	return u, nil
}

// Login verifies the credentials and issues an access token
func (s *Service) Login(ctx context.Context, req *LoginRequest) (*AuthResponse, error) {
	found, err := s.store.GetByUsername(ctx, strings.TrimSpace(req.Username))
	if errors.Is(err, ErrUserNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if found.Password == "" {
		return nil, ErrInvalidCredentials
	}
	if err := s.passwords.VerifyPassword(req.Password, found.Password); err != nil {
		return nil, ErrInvalidCredentials
	}
	if !found.IsActive {
		return nil, ErrUserInactive
	}

	u, err := s.update(ctx, found.ID, func(u *User) error {
		now := time.Now().UTC()
		u.LastLoginAt = &now
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to record login: %w", err)
	}

	token, err := s.tokens.GenerateAccessToken(u.ID, u.Email, u.IsAdmin)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	return &AuthResponse{
		User:        u,
		AccessToken: token,
		ExpiresIn:   int64(s.tokens.AccessTokenTTL().Seconds()),
	}, nil
}

// GetProfile returns a user with the address
func (s *Service) GetProfile(ctx context.Context, id uint) (*User, error) {
	return s.store.Get(ctx, id)
}

// UpdateProfile applies the allow-listed profile fields
func (s *Service) UpdateProfile(ctx context.Context, id uint, req *ProfileUpdate) (*User, error) {
	u, err := s.update(ctx, id, func(u *User) error {
		req.apply(u)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.WithField("user_id", id).Info("profile updated")
	return u, nil
}

// CreditScore adds loyalty points; the accrual converts them once a band is reached
func (s *Service) CreditScore(ctx context.Context, id uint, points int64) error {
	if points < 0 {
		return ErrInvalidScore
	}
	_, err := s.update(ctx, id, func(u *User) error {
		u.Score += points
		return nil
	})
	return err
}

// SetDiscountPercent changes the percentage discount of a user
func (s *Service) SetDiscountPercent(ctx context.Context, id uint, percent decimal.Decimal) (*User, error) {
	return s.update(ctx, id, func(u *User) error {
		u.DiscountPercent = percent.Round(2)
		return nil
	})
}
