// internal/domain/user/entity.go
package user

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	ErrUserNotFound           = errors.New("user not found")
	ErrUserExists             = errors.New("user with this username already exists")
	ErrUserInactive           = errors.New("user account is inactive")
	ErrInvalidCredentials     = errors.New("invalid username or password")
	ErrInvalidDiscountPercent = errors.New("discount percent must be between 0 and 100")
	ErrInvalidScore           = errors.New("score values must not be negative")
	ErrInvalidUsername        = errors.New("username must be 3 to 33 characters and contain letters or digits")
)

var maxDiscountPercent = decimal.NewFromInt(100)

// User represents the user entity with its loyalty bookkeeping
type User struct {
	ID              uint            `gorm:"primaryKey" json:"id"`
	Username        string          `gorm:"uniqueIndex;not null;size:33" json:"username"`
	Slug            string          `gorm:"index;not null;size:33" json:"slug"` // not unique: "a.b" and "a b" share one
	Email           string          `gorm:"index;size:255" json:"email"`
	Password        string          `gorm:"size:255" json:"-"` // empty for social logins
	FirstName       string          `gorm:"size:100" json:"first_name"`
	LastName        string          `gorm:"size:100" json:"last_name"`
	Phone           string          `gorm:"size:20" json:"phone"`
	IsActive        bool            `gorm:"default:true" json:"is_active"`
	IsAdmin         bool            `gorm:"default:false" json:"is_admin"`
	Score           int64           `gorm:"not null;default:0" json:"score"`
	ScoreLifetime   int64           `gorm:"not null;default:0" json:"score_lifetime"`
	DiscountValue   int64           `gorm:"not null;default:0" json:"discount_value"`
	DiscountPercent decimal.Decimal `gorm:"type:numeric(5,2);not null;default:0" json:"discount_percent"`
	LastLoginAt     *time.Time      `json:"last_login_at"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
	DeletedAt       gorm.DeletedAt  `gorm:"index" json:"-"`

	// Relationships
	Address *Address `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"address,omitempty"`
}

// Address is the single address record of a user
type Address struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"uniqueIndex;not null" json:"user_id"`
	State     string    `gorm:"size:100" json:"state"`
	City      string    `gorm:"size:100" json:"city"`
	Line      string    `gorm:"size:255" json:"line"`
	Code      string    `gorm:"size:20" json:"code"`
	Phone     string    `gorm:"size:20" json:"phone"`
	Postal    string    `gorm:"size:20" json:"postal"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName overrides the table name for User
func (User) TableName() string {
	return "users"
}

// TableName overrides the table name for Address
func (Address) TableName() string {
	return "addresses"
}

// Validate checks the invariants that must hold before every write
func (u *User) Validate() error {
	if u.DiscountPercent.IsNegative() || u.DiscountPercent.GreaterThan(maxDiscountPercent) {
		return ErrInvalidDiscountPercent
	}
	if u.Score < 0 || u.ScoreLifetime < 0 || u.DiscountValue < 0 {
		return ErrInvalidScore
	}
	return nil
}

// GetFullName returns the user's full name
func (u *User) GetFullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// RegisterRequest represents user registration data
type RegisterRequest struct {
	Username  string `json:"username" binding:"required,min=3,max=33"`
	Password  string `json:"password" binding:"omitempty,min=8,max=72"`
	Email     string `json:"email" binding:"omitempty,email"`
	FirstName string `json:"first_name" binding:"max=100"`
	LastName  string `json:"last_name" binding:"max=100"`
	Phone     string `json:"phone" binding:"max=20"`
}

// LoginRequest represents user login data
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// AuthResponse represents authentication response
type AuthResponse struct {
	User        *User  `json:"user"`
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
}

// ProfileUpdate lists the fields a user may change on their own profile.
// Nil fields are left untouched.
type ProfileUpdate struct {
	Email     *string        `json:"email" binding:"omitempty,email"`
	FirstName *string        `json:"first_name" binding:"omitempty,max=100"`
	LastName  *string        `json:"last_name" binding:"omitempty,max=100"`
	Phone     *string        `json:"phone" binding:"omitempty,max=20"`
	Address   *AddressUpdate `json:"address"`
}

// AddressUpdate lists the editable address fields
type AddressUpdate struct {
	State  *string `json:"state" binding:"omitempty,max=100"`
	City   *string `json:"city" binding:"omitempty,max=100"`
	Line   *string `json:"line" binding:"omitempty,max=255"`
	Code   *string `json:"code" binding:"omitempty,max=20"`
	Phone  *string `json:"phone" binding:"omitempty,max=20"`
	Postal *string `json:"postal" binding:"omitempty,max=20"`
}

// apply copies the set fields onto u
func (p *ProfileUpdate) apply(u *User) {
	setString(&u.Email, p.Email)
	if p.Email != nil {
		u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	}
	setString(&u.FirstName, p.FirstName)
	setString(&u.LastName, p.LastName)
	setString(&u.Phone, p.Phone)

	if p.Address == nil {
		return
	}
	if u.Address == nil {
		u.Address = &Address{UserID: u.ID}
	}
	a := p.Address
	setString(&u.Address.State, a.State)
	setString(&u.Address.City, a.City)
	setString(&u.Address.Line, a.Line)
	setString(&u.Address.Code, a.Code)
	setString(&u.Address.Phone, a.Phone)
	setString(&u.Address.Postal, a.Postal)
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

// ScoreCreditRequest represents an admin score credit
type ScoreCreditRequest struct {
	Points int64 `json:"points" binding:"required,min=1"`
}

// DiscountPercentRequest represents an admin discount percent change
type DiscountPercentRequest struct {
	DiscountPercent decimal.Decimal `json:"discount_percent"`
}
