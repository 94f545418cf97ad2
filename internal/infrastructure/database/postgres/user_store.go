// internal/infrastructure/database/postgres/user_store.go
package postgres

import (
	"context"

	"github.com/your-org/ecommerce-core/internal/domain/user"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// UserStore persists users together with their address
type UserStore struct {
	db *gorm.DB
}

// NewUserStore creates a user store
func NewUserStore(db *gorm.DB) *UserStore {
	return &UserStore{db: db}
}

// Create inserts the user and its address in one transaction
func (s *UserStore) Create(ctx context.Context, u *user.User) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&user.User{}).Where("username = ?", u.Username).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return user.ErrUserExists
		}

		if u.Address == nil {
			u.Address = &user.Address{}
		}
		if err := tx.Create(u).Error; err != nil {
			if isUniqueViolation(err) {
				return user.ErrUserExists
			}
			return err
		}
		return nil
	})
}

func (s *UserStore) find(tx *gorm.DB, query string, arg any) (*user.User, error) {
	var u user.User
	if err := tx.Preload("Address").Where(query, arg).First(&u).Error; err != nil {
		return nil, notFound(err, user.ErrUserNotFound)
	}
	return &u, nil
}

// Get returns a user with the address
func (s *UserStore) Get(ctx context.Context, id uint) (*user.User, error) {
	return s.find(s.db.WithContext(ctx), "id = ?", id)
}

// GetByUsername returns a user with the address
func (s *UserStore) GetByUsername(ctx context.Context, username string) (*user.User, error) {
	return s.find(s.db.WithContext(ctx), "username = ?", username)
}

// Update locks the user row, applies fn and saves the user and its address
func (s *UserStore) Update(ctx context.Context, id uint, fn func(u *user.User) error) (*user.User, error) {
	var updated *user.User

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if isPostgres(tx) {
			var row user.User
			err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
				Select("id").Where("id = ?", id).First(&row).Error
			if err != nil {
				return notFound(err, user.ErrUserNotFound)
			}
		}

		u, err := s.find(tx, "id = ?", id)
		if err != nil {
			return err
		}
		if err := fn(u); err != nil {
			return err
		}

		if err := tx.Omit(clause.Associations).Save(u).Error; err != nil {
			return err
		}
		if u.Address != nil {
			u.Address.UserID = u.ID
			if err := tx.Save(u.Address).Error; err != nil {
				return err
			}
		}

		updated = u
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}
