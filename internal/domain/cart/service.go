// internal/domain/cart/service.go
package cart

import (
	"context"
	"fmt"
	"sort"

	"github.com/sirupsen/logrus"
	"github.com/your-org/ecommerce-core/internal/domain/product"
)

// Store persists the lines of carts
type Store interface {
	Lines(ctx context.Context, owner Owner) ([]Line, error)
	// Add creates the line or increments its quantity
	Add(ctx context.Context, owner Owner, productID uint, quantity int) error
	// Remove deletes the line; absent lines are not an error
	Remove(ctx context.Context, owner Owner, productID uint) error
	Clear(ctx context.Context, owner Owner) error
}

// Catalog resolves product prices for cart lines
type Catalog interface {
	Lookup(ctx context.Context, ids []uint) (map[uint]product.Product, error)
}

// Service handles cart business logic
type Service struct {
	users   Store
	guests  Store
	catalog Catalog
	log     logrus.FieldLogger
}

// NewService creates a new cart service. Authenticated carts live in users,
// anonymous session carts in guests.
func NewService(users, guests Store, catalog Catalog, log logrus.FieldLogger) *Service {
	return &Service{
		users:   users,
		guests:  guests,
		catalog: catalog,
		log:     log,
	}
}

func (s *Service) storeFor(owner Owner) (Store, error) {
	if err := owner.Validate(); err != nil {
		return nil, err
	}
	if owner.IsGuest() {
		return s.guests, nil
	}
	return s.users, nil
}

// Get returns the owner's cart priced against the current catalog
func (s *Service) Get(ctx context.Context, owner Owner) (*Cart, error) {
	store, err := s.storeFor(owner)
	if err != nil {
		return nil, err
	}

	lines, err := store.Lines(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}

	cart := &Cart{Owner: owner, Items: make([]Item, 0, len(lines))}
	if len(lines) == 0 {
		return cart, nil
	}

	ids := make([]uint, 0, len(lines))
	for _, line := range lines {
		ids = append(ids, line.ProductID)
	}

	products, err := s.catalog.Lookup(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load cart products: %w", err)
	}

	for _, line := range lines {
		p, ok := products[line.ProductID]
		if !ok {
			s.log.WithFields(logrus.Fields{
				"cart":       owner.String(),
				"product_id": line.ProductID,
			}).Warn("cart line references a missing product")
			continue
		}
		cart.Items = append(cart.Items, Item{
			ProductID:    p.ID,
			ProductName:  p.Name,
			ProductSlug:  p.Slug,
			UnitPrice:    p.Price,
			UnitDiscount: p.Discount,
			Quantity:     line.Quantity,
		})
	}

	sort.Slice(cart.Items, func(i, j int) bool {
		return cart.Items[i].ProductID < cart.Items[j].ProductID
	})

	return cart, nil
}

// AddItem adds quantity units of a product, incrementing an existing line
func (s *Service) AddItem(ctx context.Context, owner Owner, productID uint, quantity int) (*Cart, error) {
	if quantity < 1 {
		return nil, ErrInvalidQuantity
	}

	store, err := s.storeFor(owner)
	if err != nil {
		return nil, err
	}

	products, err := s.catalog.Lookup(ctx, []uint{productID})
	if err != nil {
		return nil, fmt.Errorf("failed to load product: %w", err)
	}
	p, ok := products[productID]
	if !ok {
		return nil, product.ErrProductNotFound
	}
	if !p.IsActive {
		return nil, product.ErrProductUnavailable
	}

	if err := store.Add(ctx, owner, productID, quantity); err != nil {
		return nil, fmt.Errorf("failed to add cart item: %w", err)
	}

	return s.Get(ctx, owner)
}

// RemoveItem deletes the line for a product; removing an absent line is a no-op
func (s *Service) RemoveItem(ctx context.Context, owner Owner, productID uint) (*Cart, error) {
	store, err := s.storeFor(owner)
	if err != nil {
		return nil, err
	}

	if err := store.Remove(ctx, owner, productID); err != nil {
		return nil, fmt.Errorf("failed to remove cart item: %w", err)
	}

	return s.Get(ctx, owner)
}

// Clear deletes every line of the cart
func (s *Service) Clear(ctx context.Context, owner Owner) error {
	store, err := s.storeFor(owner)
	if err != nil {
		return err
	}

	if err := store.Clear(ctx, owner); err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}
	return nil
}

// TotalPrice returns the sum of (price - discount) * quantity over the cart
func (s *Service) TotalPrice(ctx context.Context, owner Owner) (int64, error) {
	cart, err := s.Get(ctx, owner)
	if err != nil {
		return 0, err
	}
	return cart.TotalPrice(), nil
}

// MergeGuestCart moves a session cart into the user's cart, adding quantities
func (s *Service) MergeGuestCart(ctx context.Context, sessionID string, userID uint) error {
	if sessionID == "" || userID == 0 {
		return nil
	}

	guest := ForSession(sessionID)
	lines, err := s.guests.Lines(ctx, guest)
	if err != nil {
		return fmt.Errorf("failed to load guest cart: %w", err)
	}
	if len(lines) == 0 {
		return nil
	}

	user := ForUser(userID)
	for _, line := range lines {
		if err := s.users.Add(ctx, user, line.ProductID, line.Quantity); err != nil {
			return fmt.Errorf("failed to merge cart item: %w", err)
		}
	}

	s.log.WithFields(logrus.Fields{
		"user_id": userID,
		"lines":   len(lines),
	}).Info("guest cart merged")

	return s.guests.Clear(ctx, guest)
}
