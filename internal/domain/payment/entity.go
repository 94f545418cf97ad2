// internal/domain/payment/entity.go
package payment

import (
	"errors"
	"time"
)

var (
	ErrInvalidPrice    = errors.New("payment price must not be negative")
	ErrOrderOwnership  = errors.New("order does not belong to the paying user")
	ErrAlreadyPaid     = errors.New("order already has a payment")
	ErrPaymentNotFound = errors.New("payment not found")
)

// Payment is the terminal record of a paid order
type Payment struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	PaymentID string    `gorm:"uniqueIndex;not null;size:36" json:"payment_id"`
	OrderID   uint      `gorm:"uniqueIndex;not null" json:"order_id"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	Price     int64     `gorm:"not null" json:"price"`
	IsPaid    bool      `gorm:"not null;default:false" json:"is_paid"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName overrides the table name
func (Payment) TableName() string {
	return "payments"
}

// RecordPaymentRequest represents a payment confirmation for an order
type RecordPaymentRequest struct {
	Price int64 `json:"price" binding:"min=0"`
}
