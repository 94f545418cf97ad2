// internal/domain/inventory/service.go
package inventory

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
)

// Ledger holds the available quantity of every product.
//
// Reduce is an atomic check-and-decrement: when fewer than quantity units are
// available it returns false and leaves the stock untouched. Increase always
// applies. Both reject non-positive quantities with ErrInvalidQuantity and
// unknown products with product.ErrProductNotFound.
type Ledger interface {
	Reduce(ctx context.Context, productID uint, quantity int, ref Reference) (bool, error)
	Increase(ctx context.Context, productID uint, quantity int, ref Reference) error
	Available(ctx context.Context, productID uint) (int, error)
}

// History lists the recorded movements of a product, newest first
type History interface {
	Movements(ctx context.Context, productID uint, limit int) ([]StockMovement, error)
}

// Service handles inventory business logic outside of order completion
type Service struct {
	ledger  Ledger
	history History
	log     logrus.FieldLogger
}

// NewService creates a new inventory service
func NewService(ledger Ledger, history History, log logrus.FieldLogger) *Service {
	return &Service{
		ledger:  ledger,
		history: history,
		log:     log,
	}
}

// Restock adds quantity units to a product
func (s *Service) Restock(ctx context.Context, productID uint, req *RestockRequest) (*StockLevel, error) {
	if req.Quantity <= 0 {
		return nil, ErrInvalidQuantity
	}

	if err := s.ledger.Increase(ctx, productID, req.Quantity, Restock(req.Note)); err != nil {
		return nil, fmt.Errorf("failed to restock: %w", err)
	}

	s.log.WithFields(logrus.Fields{
		"product_id": productID,
		"quantity":   req.Quantity,
	}).Info("product restocked")

	return s.StockLevel(ctx, productID, 20)
}

// StockLevel returns the available quantity and the latest movements
func (s *Service) StockLevel(ctx context.Context, productID uint, limit int) (*StockLevel, error) {
	available, err := s.ledger.Available(ctx, productID)
	if err != nil {
		return nil, err
	}

	movements, err := s.history.Movements(ctx, productID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to load stock movements: %w", err)
	}

	return &StockLevel{
		ProductID: productID,
		Available: available,
		Movements: movements,
	}, nil
}
