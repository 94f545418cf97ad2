// internal/infrastructure/database/postgres/payment_store.go
package postgres

import (
	"context"

	"github.com/your-org/ecommerce-core/internal/domain/payment"
	"gorm.io/gorm"
)

// PaymentStore persists payments, at most one per order
type PaymentStore struct {
	db *gorm.DB
}

// NewPaymentStore creates a payment store
func NewPaymentStore(db *gorm.DB) *PaymentStore {
	return &PaymentStore{db: db}
}

// Create inserts the payment unless the order already has one
func (s *PaymentStore) Create(ctx context.Context, p *payment.Payment) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&payment.Payment{}).Where("order_id = ?", p.OrderID).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return payment.ErrAlreadyPaid
		}

		if err := tx.Create(p).Error; err != nil {
			if isUniqueViolation(err) {
				return payment.ErrAlreadyPaid
			}
			return err
		}
		return nil
	})
}

// GetByOrder returns the payment of an order
func (s *PaymentStore) GetByOrder(ctx context.Context, orderID uint) (*payment.Payment, error) {
	var p payment.Payment
	if err := s.db.WithContext(ctx).Where("order_id = ?", orderID).First(&p).Error; err != nil {
		return nil, notFound(err, payment.ErrPaymentNotFound)
	}
	return &p, nil
}
