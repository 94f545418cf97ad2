// internal/infrastructure/memory/catalog.go
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/your-org/ecommerce-core/internal/domain/inventory"
	"github.com/your-org/ecommerce-core/internal/domain/product"
)

// stockedProduct guards p.Quantity with a one-slot semaphore so a completion
// pass can wait for it with a deadline
type stockedProduct struct {
	sem chan struct{}
	p   product.Product
}

func newStockedProduct(p product.Product) *stockedProduct {
	return &stockedProduct{sem: make(chan struct{}, 1), p: p}
}

func (sp *stockedProduct) lock()   { sp.sem <- struct{}{} }
func (sp *stockedProduct) unlock() { <-sp.sem }

// Catalog keeps products and their stock in process memory. Each product has
// its own lock, so reductions of different products never contend.
type Catalog struct {
	mu       sync.RWMutex
	products map[uint]*stockedProduct
	bySlug   map[string]uint
	nextID   uint

	movMu     sync.Mutex
	movements []inventory.StockMovement
}

// NewCatalog creates an empty in-memory catalog
func NewCatalog() *Catalog {
	return &Catalog{
		products: make(map[uint]*stockedProduct),
		bySlug:   make(map[string]uint),
	}
}

// Create inserts a product and assigns its id
func (c *Catalog) Create(_ context.Context, p *product.Product) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, taken := c.bySlug[p.Slug]; taken {
		return product.ErrDuplicateSlug
	}

	c.nextID++
	now := time.Now().UTC()
	p.ID = c.nextID
	p.CreatedAt, p.UpdatedAt = now, now

	c.products[p.ID] = newStockedProduct(*p)
	c.bySlug[p.Slug] = p.ID
	return nil
}

func (c *Catalog) lookup(id uint) *stockedProduct {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.products[id]
}

func (sp *stockedProduct) snapshot() product.Product {
	sp.lock()
	defer sp.unlock()
	return sp.p
}

// Get returns a product by id
func (c *Catalog) Get(_ context.Context, id uint) (*product.Product, error) {
	sp := c.lookup(id)
	if sp == nil {
		return nil, product.ErrProductNotFound
	}
	p := sp.snapshot()
	return &p, nil
}

// GetBySlug returns a product by slug
func (c *Catalog) GetBySlug(ctx context.Context, slug string) (*product.Product, error) {
	c.mu.RLock()
	id, ok := c.bySlug[slug]
	c.mu.RUnlock()
	if !ok {
		return nil, product.ErrProductNotFound
	}
	return c.Get(ctx, id)
}

// GetMany returns the products found among ids
func (c *Catalog) GetMany(_ context.Context, ids []uint) (map[uint]product.Product, error) {
	out := make(map[uint]product.Product, len(ids))
	for _, id := range ids {
		if sp := c.lookup(id); sp != nil {
			out[id] = sp.snapshot()
		}
	}
	return out, nil
}

// Reduce decrements the stock when at least quantity units are available
func (c *Catalog) Reduce(_ context.Context, productID uint, quantity int, ref inventory.Reference) (bool, error) {
	if quantity <= 0 {
		return false, inventory.ErrInvalidQuantity
	}
	sp := c.lookup(productID)
	if sp == nil {
		return false, product.ErrProductNotFound
	}

	sp.lock()
	defer sp.unlock()
	return c.reduceHeld(sp, quantity, ref), nil
}

func (c *Catalog) reduceHeld(sp *stockedProduct, quantity int, ref inventory.Reference) bool {
	if sp.p.Quantity < quantity {
		return false
	}
	sp.p.Quantity -= quantity
	c.record(inventory.NewMovement(sp.p.ID, inventory.MovementTypeOutbound, quantity, ref))
	return true
}

// Increase adds quantity units to the stock
func (c *Catalog) Increase(_ context.Context, productID uint, quantity int, ref inventory.Reference) error {
	if quantity <= 0 {
		return inventory.ErrInvalidQuantity
	}
	sp := c.lookup(productID)
	if sp == nil {
		return product.ErrProductNotFound
	}

	sp.lock()
	defer sp.unlock()
	c.increaseHeld(sp, quantity, ref)
	return nil
}

func (c *Catalog) increaseHeld(sp *stockedProduct, quantity int, ref inventory.Reference) {
	sp.p.Quantity += quantity
	c.record(inventory.NewMovement(sp.p.ID, inventory.MovementTypeInbound, quantity, ref))
}

// Available returns the current stock of a product
func (c *Catalog) Available(_ context.Context, productID uint) (int, error) {
	sp := c.lookup(productID)
	if sp == nil {
		return 0, product.ErrProductNotFound
	}
	return sp.snapshot().Quantity, nil
}

func (c *Catalog) record(m inventory.StockMovement) {
	c.movMu.Lock()
	defer c.movMu.Unlock()
	m.ID = uint(len(c.movements) + 1)
	c.movements = append(c.movements, m)
}

// Movements returns the latest movements of a product, newest first
func (c *Catalog) Movements(_ context.Context, productID uint, limit int) ([]inventory.StockMovement, error) {
	c.movMu.Lock()
	defer c.movMu.Unlock()

	out := make([]inventory.StockMovement, 0)
	for i := len(c.movements) - 1; i >= 0; i-- {
		if c.movements[i].ProductID != productID {
			continue
		}
		out = append(out, c.movements[i])
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

// HoldStock locks the stock of every listed product until release is called.
// Locks are taken in ascending id order so overlapping holds cannot deadlock.
// Unknown ids are skipped. While held, other readers and writers of those
// products wait, so the changes made through the returned ledger become
// visible all at once. ctx bounds the wait.
func (c *Catalog) HoldStock(ctx context.Context, productIDs []uint) (inventory.Ledger, func(), error) {
	ids := append([]uint(nil), productIDs...)
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	held := &heldStock{catalog: c, products: make(map[uint]*stockedProduct, len(ids))}
	for _, id := range ids {
		if _, dup := held.products[id]; dup {
			continue
		}
		sp := c.lookup(id)
		if sp == nil {
			continue
		}
		if err := acquire(ctx, sp.sem); err != nil {
			held.release()
			return nil, nil, err
		}
		held.products[id] = sp
	}
	return held, held.release, nil
}

// heldStock is a ledger over products whose locks are already taken
type heldStock struct {
	catalog  *Catalog
	products map[uint]*stockedProduct
}

func (h *heldStock) release() {
	for _, sp := range h.products {
		sp.unlock()
	}
	h.products = nil
}

func (h *heldStock) held(productID uint) (*stockedProduct, error) {
	if sp, ok := h.products[productID]; ok {
		return sp, nil
	}
	if h.catalog.lookup(productID) == nil {
		return nil, product.ErrProductNotFound
	}
	return nil, fmt.Errorf("stock of product %d is not held", productID)
}

func (h *heldStock) Reduce(_ context.Context, productID uint, quantity int, ref inventory.Reference) (bool, error) {
	if quantity <= 0 {
		return false, inventory.ErrInvalidQuantity
	}
	sp, err := h.held(productID)
	if err != nil {
		return false, err
	}
	return h.catalog.reduceHeld(sp, quantity, ref), nil
}

func (h *heldStock) Increase(_ context.Context, productID uint, quantity int, ref inventory.Reference) error {
	if quantity <= 0 {
		return inventory.ErrInvalidQuantity
	}
	sp, err := h.held(productID)
	if err != nil {
		return err
	}
	h.catalog.increaseHeld(sp, quantity, ref)
	return nil
}

func (h *heldStock) Available(_ context.Context, productID uint) (int, error) {
	sp, err := h.held(productID)
	if err != nil {
		return 0, err
	}
	return sp.p.Quantity, nil
}
