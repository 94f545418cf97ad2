// internal/domain/product/service.go
package product

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/your-org/ecommerce-core/internal/pkg/identifier"
)

// Store persists catalog entries
type Store interface {
	Create(ctx context.Context, p *Product) error
	Get(ctx context.Context, id uint) (*Product, error)
	GetBySlug(ctx context.Context, slug string) (*Product, error)
	GetMany(ctx context.Context, ids []uint) (map[uint]Product, error)
}

// Service handles catalog business logic
type Service struct {
	store Store
	log   logrus.FieldLogger
}

// NewService creates a new product service
func NewService(store Store, log logrus.FieldLogger) *Service {
	return &Service{
		store: store,
		log:   log,
	}
}

// CreateProduct adds a product to the catalog
func (s *Service) CreateProduct(ctx context.Context, req *CreateProductRequest) (*Product, error) {
	slug := req.Slug
	if slug == "" {
		slug = identifier.Slugify(req.Name)
	}
	if slug == "" {
		return nil, errors.New("product name must contain letters or digits")
	}

	p := &Product{
		Name:        req.Name,
		Slug:        slug,
		Description: req.Description,
		Price:       req.Price,
		Discount:    req.Discount,
		Quantity:    req.Quantity,
		IsActive:    true,
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}

	if err := s.store.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	s.log.WithFields(logrus.Fields{
		"product_id": p.ID,
		"slug":       p.Slug,
		"quantity":   p.Quantity,
	}).Info("product created")

	return p, nil
}

// GetProduct returns a product by id
func (s *Service) GetProduct(ctx context.Context, id uint) (*Product, error) {
	return s.store.Get(ctx, id)
}

// GetProductBySlug returns an active product by slug
func (s *Service) GetProductBySlug(ctx context.Context, slug string) (*Product, error) {
	p, err := s.store.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if !p.IsActive {
		return nil, ErrProductNotFound
	}
	return p, nil
}

// Lookup returns the products for the given ids; missing ids are omitted
func (s *Service) Lookup(ctx context.Context, ids []uint) (map[uint]Product, error) {
	if len(ids) == 0 {
		return map[uint]Product{}, nil
	}
	return s.store.GetMany(ctx, ids)
}
