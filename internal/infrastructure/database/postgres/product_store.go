// internal/infrastructure/database/postgres/product_store.go
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/your-org/ecommerce-core/internal/domain/product"
	"gorm.io/gorm"
)

// ProductStore persists catalog entries
type ProductStore struct {
	db *gorm.DB
}

// NewProductStore creates a product store
func NewProductStore(db *gorm.DB) *ProductStore {
	return &ProductStore{db: db}
}

// Create inserts a product
func (s *ProductStore) Create(ctx context.Context, p *product.Product) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&product.Product{}).Where("slug = ?", p.Slug).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return product.ErrDuplicateSlug
		}

		if err := tx.Create(p).Error; err != nil {
			if isUniqueViolation(err) {
				return product.ErrDuplicateSlug
			}
			return err
		}
		return nil
	})
}

// Get returns a product by id
func (s *ProductStore) Get(ctx context.Context, id uint) (*product.Product, error) {
	var p product.Product
	if err := s.db.WithContext(ctx).First(&p, id).Error; err != nil {
		return nil, notFound(err, product.ErrProductNotFound)
	}
	return &p, nil
}

// GetBySlug returns a product by slug
func (s *ProductStore) GetBySlug(ctx context.Context, slug string) (*product.Product, error) {
	var p product.Product
	if err := s.db.WithContext(ctx).Where("slug = ?", slug).First(&p).Error; err != nil {
		return nil, notFound(err, product.ErrProductNotFound)
	}
	return &p, nil
}

// GetMany returns the products found among ids
func (s *ProductStore) GetMany(ctx context.Context, ids []uint) (map[uint]product.Product, error) {
	var products []product.Product
	if err := s.db.WithContext(ctx).Where("id IN ?", ids).Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to load products: %w", err)
	}

	out := make(map[uint]product.Product, len(products))
	for _, p := range products {
		out[p.ID] = p
	}
	return out, nil
}

// notFound maps gorm's missing-record error onto the domain sentinel
func notFound(err, sentinel error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return sentinel
	}
	return err
}
