// internal/domain/payment/service.go
package payment

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/your-org/ecommerce-core/internal/domain/order"
	"github.com/your-org/ecommerce-core/internal/pkg/identifier"
)

// Store persists payments; a second payment for the same order yields ErrAlreadyPaid
type Store interface {
	Create(ctx context.Context, p *Payment) error
	GetByOrder(ctx context.Context, orderID uint) (*Payment, error)
}

// OrderReader looks up the order being paid
type OrderReader interface {
	GetOrder(ctx context.Context, id uint) (*order.Order, error)
}

// Service handles payment records
type Service struct {
	store  Store
	orders OrderReader
	log    logrus.FieldLogger
}

// NewService creates a new payment service
func NewService(store Store, orders OrderReader, log logrus.FieldLogger) *Service {
	return &Service{
		store:  store,
		orders: orders,
		log:    log,
	}
}

// RecordPayment stores a successful payment of price for the user's order.
// The order's own IsPaid flag is left to the caller.
func (s *Service) RecordPayment(ctx context.Context, orderID, userID uint, price int64) (*Payment, error) {
	if price < 0 {
		return nil, ErrInvalidPrice
	}

	o, err := s.orders.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o.UserID != userID {
		return nil, ErrOrderOwnership
	}

	p := &Payment{
		PaymentID: identifier.NewUUID(),
		OrderID:   o.ID,
		UserID:    userID,
		Price:     price,
		IsPaid:    true,
	}

	if err := s.store.Create(ctx, p); err != nil {
		if errors.Is(err, ErrAlreadyPaid) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to record payment: %w", err)
	}

	s.log.WithFields(logrus.Fields{
		"payment_id": p.PaymentID,
		"order_id":   o.PublicID,
		"user_id":    userID,
		"price":      price,
	}).Info("payment recorded")

	return p, nil
}

// GetPayment returns the payment of an order
func (s *Service) GetPayment(ctx context.Context, orderID uint) (*Payment, error) {
	return s.store.GetByOrder(ctx, orderID)
}
