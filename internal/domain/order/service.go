// internal/domain/order/service.go
package order

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/your-org/ecommerce-core/internal/domain/cart"
	"github.com/your-org/ecommerce-core/internal/domain/inventory"
	"github.com/your-org/ecommerce-core/internal/pkg/identifier"
)

// Store persists orders and serializes completion attempts per order
type Store interface {
	// Create inserts the order with its items; a taken PublicID or Slug
	// yields ErrDuplicateOrderID
	Create(ctx context.Context, o *Order) error
	Get(ctx context.Context, id uint) (*Order, error)
	GetBySlug(ctx context.Context, slug string) (*Order, error)
	ListByUser(ctx context.Context, userID uint) ([]Order, error)
	MarkPaid(ctx context.Context, id uint) error
	// WithExclusiveLock runs fn while holding the order's exclusive lock.
	// It waits at most wait for the lock and returns ErrLockBusy when it
	// cannot get it. An error from fn discards the scope's writes.
	WithExclusiveLock(ctx context.Context, id uint, wait time.Duration, fn func(Locked) error) error
}

// Locked is the view of an order while its exclusive lock is held
type Locked interface {
	// Order is the order as re-read under the lock
	Order() *Order
	// Inventory is the ledger bound to the same unit of work as the lock
	Inventory() inventory.Ledger
	MarkCompleted(ctx context.Context) error
}

// ScoreCreditor awards loyalty points to a user
type ScoreCreditor interface {
	CreditScore(ctx context.Context, userID uint, points int64) error
}

// Options tunes the order lifecycle
type Options struct {
	LockTimeout      time.Duration
	CurrencyPerPoint int64
	IDAttempts       int
}

// Service handles order business logic
type Service struct {
	store   Store
	ids     identifier.Generator
	credits ScoreCreditor
	opts    Options
	log     logrus.FieldLogger
}

// NewService creates a new order service. credits may be nil to disable
// loyalty points on completion.
func NewService(store Store, ids identifier.Generator, credits ScoreCreditor, opts Options, log logrus.FieldLogger) *Service {
	if opts.IDAttempts <= 0 {
		opts.IDAttempts = 5
	}
	return &Service{
		store:   store,
		ids:     ids,
		credits: credits,
		opts:    opts,
		log:     log,
	}
}

// CreateOrder snapshots the cart lines into a new order. Neither the cart nor
// the inventory is modified.
func (s *Service) CreateOrder(ctx context.Context, userID uint, c *cart.Cart) (*Order, error) {
	if userID == 0 {
		return nil, ErrOrderRequiresUser
	}
	if c == nil || c.IsEmpty() {
		return nil, ErrEmptyCart
	}

	items := make([]Item, 0, len(c.Items))
	for _, line := range c.Items {
		if line.Quantity < 1 {
			return nil, cart.ErrInvalidQuantity
		}
		items = append(items, Item{
			ProductID:    line.ProductID,
			ProductName:  line.ProductName,
			UnitPrice:    line.UnitPrice,
			UnitDiscount: line.UnitDiscount,
			Quantity:     line.Quantity,
		})
	}

	for attempt := 1; attempt <= s.opts.IDAttempts; attempt++ {
		publicID, err := s.ids.NewID()
		if err != nil {
			return nil, fmt.Errorf("failed to generate order id: %w", err)
		}

		o := &Order{
			PublicID: publicID,
			Slug:     identifier.Slugify(publicID),
			UserID:   userID,
			CartRef:  c.Owner.String(),
			Items:    append([]Item(nil), items...),
		}

		err = s.store.Create(ctx, o)
		if errors.Is(err, ErrDuplicateOrderID) {
			s.log.WithField("order_id", publicID).Debug("order id collision, regenerating")
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to create order: %w", err)
		}

		s.log.WithFields(logrus.Fields{
			"order_id":    o.PublicID,
			"user_id":     userID,
			"items":       len(o.Items),
			"total_price": o.TotalPrice(),
		}).Info("order created")

		return o, nil
	}

	return nil, fmt.Errorf("failed to create order: %w", ErrDuplicateOrderID)
}

// CompleteOrder reduces the inventory for every item of the order and marks
// it completed. It is idempotent and all-or-nothing: either every item is
// reduced and the order completed, or the inventory is left as it was.
// Every failure is reported through the result, never as a Go error.
func (s *Service) CompleteOrder(ctx context.Context, id uint) CompletionResult {
	o, err := s.store.Get(ctx, id)
	if err != nil {
		return s.report(id, failure(err))
	}
	if o.IsCompleted {
		return s.report(id, alreadyCompleted())
	}

	var result CompletionResult
	err = s.store.WithExclusiveLock(ctx, id, s.opts.LockTimeout, func(locked Locked) error {
		result = s.completeLocked(ctx, locked)
		return result.Err
	})
	switch {
	case errors.Is(err, ErrLockBusy):
		result = CompletionResult{
			Outcome: OutcomeBusy,
			Reason:  "order is being completed by another request, retry later",
		}
	case err != nil:
		result = failure(err)
	}

	if result.Outcome == OutcomeCompleted {
		s.creditScore(ctx, o)
	}

	return s.report(id, result)
}

func (s *Service) completeLocked(ctx context.Context, locked Locked) CompletionResult {
	o := locked.Order()
	if o.IsCompleted {
		return alreadyCompleted()
	}

	// A fixed product order keeps concurrent completions from deadlocking
	items := append([]Item(nil), o.Items...)
	sort.Slice(items, func(i, j int) bool { return items[i].ProductID < items[j].ProductID })

	ledger := locked.Inventory()
	reduced := make([]Item, 0, len(items))

	for i := range items {
		item := items[i]
		ok, err := ledger.Reduce(ctx, item.ProductID, item.Quantity, inventory.Sale(o.PublicID))
		if err != nil {
			err = fmt.Errorf("failed to reduce stock for product %d: %w", item.ProductID, err)
			return failure(errors.Join(err, s.rollback(ctx, ledger, o, reduced)))
		}
		if !ok {
			if err := s.rollback(ctx, ledger, o, reduced); err != nil {
				return failure(err)
			}
			return CompletionResult{
				Outcome: OutcomeInsufficientInventory,
				Reason:  fmt.Sprintf("insufficient inventory for %s: requested %d", item.ProductName, item.Quantity),
				Item:    &item,
			}
		}
		reduced = append(reduced, item)
	}

	if err := locked.MarkCompleted(ctx); err != nil {
		err = fmt.Errorf("failed to mark order completed: %w", err)
		return failure(errors.Join(err, s.rollback(ctx, ledger, o, reduced)))
	}

	return CompletionResult{Outcome: OutcomeCompleted}
}

// rollback gives back the units reduced earlier in the same pass
func (s *Service) rollback(ctx context.Context, ledger inventory.Ledger, o *Order, reduced []Item) error {
	for i := len(reduced) - 1; i >= 0; i-- {
		item := reduced[i]
		if err := ledger.Increase(ctx, item.ProductID, item.Quantity, inventory.Rollback(o.PublicID)); err != nil {
			s.log.WithFields(logrus.Fields{
				"order_id":   o.PublicID,
				"product_id": item.ProductID,
				"quantity":   item.Quantity,
			}).WithError(err).Error("failed to roll back stock reduction")
			return fmt.Errorf("failed to roll back product %d: %w", item.ProductID, err)
		}
	}
	return nil
}

func (s *Service) creditScore(ctx context.Context, o *Order) {
	if s.credits == nil || s.opts.CurrencyPerPoint <= 0 {
		return
	}
	points := o.TotalPrice() / s.opts.CurrencyPerPoint
	if points <= 0 {
		return
	}
	if err := s.credits.CreditScore(ctx, o.UserID, points); err != nil {
		s.log.WithFields(logrus.Fields{
			"order_id": o.PublicID,
			"user_id":  o.UserID,
			"points":   points,
		}).WithError(err).Warn("failed to credit loyalty score")
	}
}

func (s *Service) report(id uint, r CompletionResult) CompletionResult {
	entry := s.log.WithFields(logrus.Fields{
		"order":   id,
		"outcome": r.Outcome,
	})
	switch r.Outcome {
	case OutcomeError:
		entry.WithError(r.Err).Error("order completion failed")
	case OutcomeCompleted:
		entry.Info("order completed")
	default:
		entry.WithField("reason", r.Reason).Info("order not completed")
	}
	return r
}

func alreadyCompleted() CompletionResult {
	return CompletionResult{
		Outcome: OutcomeAlreadyCompleted,
		Reason:  "order is already completed",
	}
}

func failure(err error) CompletionResult {
	if errors.Is(err, ErrOrderNotFound) {
		return CompletionResult{Outcome: OutcomeNotFound, Reason: ErrOrderNotFound.Error()}
	}
	return CompletionResult{Outcome: OutcomeError, Reason: "internal error", Err: err}
}

// GetOrder returns an order with its items
func (s *Service) GetOrder(ctx context.Context, id uint) (*Order, error) {
	return s.store.Get(ctx, id)
}

// GetOrderBySlug returns an order by its slug
func (s *Service) GetOrderBySlug(ctx context.Context, slug string) (*Order, error) {
	return s.store.GetBySlug(ctx, slug)
}

// ListOrders returns the orders of a user, newest first
func (s *Service) ListOrders(ctx context.Context, userID uint) ([]Order, error) {
	orders, err := s.store.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, nil
}

// GetTotalPrice sums the order snapshot with the cart pricing formula
func (s *Service) GetTotalPrice(ctx context.Context, id uint) (int64, error) {
	o, err := s.store.Get(ctx, id)
	if err != nil {
		return 0, err
	}
	return o.TotalPrice(), nil
}

// MarkPaid flags the order as paid
func (s *Service) MarkPaid(ctx context.Context, id uint) error {
	if err := s.store.MarkPaid(ctx, id); err != nil {
		return fmt.Errorf("failed to mark order paid: %w", err)
	}
	s.log.WithField("order", id).Info("order marked paid")
	return nil
}
