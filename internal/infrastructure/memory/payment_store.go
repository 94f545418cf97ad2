// internal/infrastructure/memory/payment_store.go
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/your-org/ecommerce-core/internal/domain/payment"
)

// PaymentStore keeps payments in process memory, one per order
type PaymentStore struct {
	mu       sync.Mutex
	payments map[uint]payment.Payment
	nextID   uint
}

// NewPaymentStore creates an empty payment store
func NewPaymentStore() *PaymentStore {
	return &PaymentStore{payments: make(map[uint]payment.Payment)}
}

// Create inserts the payment unless the order is already paid
func (s *PaymentStore) Create(_ context.Context, p *payment.Payment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, paid := s.payments[p.OrderID]; paid {
		return payment.ErrAlreadyPaid
	}

	s.nextID++
	p.ID = s.nextID
	p.CreatedAt = time.Now().UTC()
	s.payments[p.OrderID] = *p
	return nil
}

// GetByOrder returns the payment of an order
func (s *PaymentStore) GetByOrder(_ context.Context, orderID uint) (*payment.Payment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.payments[orderID]
	if !ok {
		return nil, payment.ErrPaymentNotFound
	}
	return &p, nil
}
