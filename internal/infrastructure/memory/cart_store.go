// internal/infrastructure/memory/cart_store.go
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/your-org/ecommerce-core/internal/domain/cart"
)

// CartStore keeps cart lines in process memory for users and sessions alike
type CartStore struct {
	mu    sync.Mutex
	carts map[string]map[uint]int
}

// NewCartStore creates an empty cart store
func NewCartStore() *CartStore {
	return &CartStore{carts: make(map[string]map[uint]int)}
}

// Lines returns the cart lines ordered by product id
func (s *CartStore) Lines(_ context.Context, owner cart.Owner) ([]cart.Line, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	lines := make([]cart.Line, 0, len(s.carts[owner.String()]))
	for productID, qty := range s.carts[owner.String()] {
		lines = append(lines, cart.Line{ProductID: productID, Quantity: qty})
	}
	sort.Slice(lines, func(i, j int) bool { return lines[i].ProductID < lines[j].ProductID })
	return lines, nil
}

// Add creates the line or increments its quantity
func (s *CartStore) Add(_ context.Context, owner cart.Owner, productID uint, quantity int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := owner.String()
	if s.carts[key] == nil {
		s.carts[key] = make(map[uint]int)
	}
	s.carts[key][productID] += quantity
	return nil
}

// Remove deletes the line if present
func (s *CartStore) Remove(_ context.Context, owner cart.Owner, productID uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.carts[owner.String()], productID)
	return nil
}

// Clear deletes every line of the cart
func (s *CartStore) Clear(_ context.Context, owner cart.Owner) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.carts, owner.String())
	return nil
}
