// internal/infrastructure/memory/order_store.go
package memory

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/your-org/ecommerce-core/internal/domain/inventory"
	"github.com/your-org/ecommerce-core/internal/domain/order"
)

// StockHolder locks the stock of a set of products for one completion pass.
// The returned ledger acts on the held products only; release unlocks them.
type StockHolder interface {
	HoldStock(ctx context.Context, productIDs []uint) (inventory.Ledger, func(), error)
}

// OrderStore keeps orders in process memory. Completion is serialized per
// order with a one-slot semaphore, and the stock of every item is held for the
// whole pass, so a completion is observed all at once or not at all.
type OrderStore struct {
	mu       sync.RWMutex
	orders   map[uint]*order.Order
	byPublic map[string]uint
	bySlug   map[string]uint
	nextID   uint
	nextItem uint

	locksMu sync.Mutex
	locks   map[uint]chan struct{}

	stock StockHolder
}

// NewOrderStore creates an order store whose completions reduce stock held through stock
func NewOrderStore(stock StockHolder) *OrderStore {
	return &OrderStore{
		orders:   make(map[uint]*order.Order),
		byPublic: make(map[string]uint),
		bySlug:   make(map[string]uint),
		locks:    make(map[uint]chan struct{}),
		stock:    stock,
	}
}

func cloneOrder(o *order.Order) *order.Order {
	c := *o
	c.Items = append([]order.Item(nil), o.Items...)
	if o.CompletedAt != nil {
		t := *o.CompletedAt
		c.CompletedAt = &t
	}
	return &c
}

// Create inserts the order and its items
func (s *OrderStore) Create(_ context.Context, o *order.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, taken := s.byPublic[o.PublicID]; taken {
		return order.ErrDuplicateOrderID
	}
	if _, taken := s.bySlug[o.Slug]; taken {
		return order.ErrDuplicateOrderID
	}

	s.nextID++
	now := time.Now().UTC()
	o.ID = s.nextID
	o.CreatedAt, o.UpdatedAt = now, now
	for i := range o.Items {
		s.nextItem++
		o.Items[i].ID = s.nextItem
		o.Items[i].OrderID = o.ID
	}

	s.orders[o.ID] = cloneOrder(o)
	s.byPublic[o.PublicID] = o.ID
	s.bySlug[o.Slug] = o.ID
	return nil
}

// Get returns a copy of the order
func (s *OrderStore) Get(_ context.Context, id uint) (*order.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	o, ok := s.orders[id]
	if !ok {
		return nil, order.ErrOrderNotFound
	}
	return cloneOrder(o), nil
}

// GetBySlug returns a copy of the order with the given slug
func (s *OrderStore) GetBySlug(ctx context.Context, slug string) (*order.Order, error) {
	s.mu.RLock()
	id, ok := s.bySlug[slug]
	s.mu.RUnlock()
	if !ok {
		return nil, order.ErrOrderNotFound
	}
	return s.Get(ctx, id)
}

// ListByUser returns the user's orders, newest first
func (s *OrderStore) ListByUser(_ context.Context, userID uint) ([]order.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]order.Order, 0)
	for _, o := range s.orders {
		if o.UserID == userID {
			out = append(out, *cloneOrder(o))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

// MarkPaid flags the order as paid
func (s *OrderStore) MarkPaid(_ context.Context, id uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.orders[id]
	if !ok {
		return order.ErrOrderNotFound
	}
	o.IsPaid = true
	o.UpdatedAt = time.Now().UTC()
	return nil
}

func (s *OrderStore) lockFor(id uint) chan struct{} {
	s.locksMu.Lock()
	defer s.locksMu.Unlock()

	l, ok := s.locks[id]
	if !ok {
		l = make(chan struct{}, 1)
		s.locks[id] = l
	}
	return l
}

// WithExclusiveLock runs fn while holding the order's semaphore and the stock
// of its items. wait bounds the time spent acquiring both. The completion flag
// is written before the stock is released, and only when fn succeeds.
func (s *OrderStore) WithExclusiveLock(ctx context.Context, id uint, wait time.Duration, fn func(order.Locked) error) error {
	lockCtx, cancel := context.WithTimeout(ctx, wait)
	defer cancel()

	l := s.lockFor(id)
	if err := acquire(lockCtx, l); err != nil {
		return lockError(ctx)
	}
	defer func() { <-l }()

	o, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	productIDs := make([]uint, 0, len(o.Items))
	for _, item := range o.Items {
		productIDs = append(productIDs, item.ProductID)
	}
	ledger, release, err := s.stock.HoldStock(lockCtx, productIDs)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return lockError(ctx)
		}
		return err
	}
	defer release()

	scope := &lockedOrder{order: o, ledger: ledger}
	if err := fn(scope); err != nil {
		return err
	}

	if scope.completed {
		s.mu.Lock()
		now := time.Now().UTC()
		stored := s.orders[id]
		stored.IsCompleted = true
		stored.CompletedAt = &now
		stored.UpdatedAt = now
		s.mu.Unlock()
	}
	return nil
}

// acquire takes a one-slot semaphore, preferring a free slot over an expired ctx
func acquire(ctx context.Context, sem chan struct{}) error {
	select {
	case sem <- struct{}{}:
		return nil
	default:
	}
	select {
	case sem <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// lockError tells a caller's cancellation apart from the wait running out
func lockError(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return order.ErrLockBusy
}

type lockedOrder struct {
	order     *order.Order
	ledger    inventory.Ledger
	completed bool
}

func (l *lockedOrder) Order() *order.Order {
	return l.order
}

func (l *lockedOrder) Inventory() inventory.Ledger {
	return l.ledger
}

func (l *lockedOrder) MarkCompleted(_ context.Context) error {
	l.completed = true
	l.order.IsCompleted = true
	return nil
}
