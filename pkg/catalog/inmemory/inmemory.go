// Package inmemory provides a seedable catalog repository for tests and
// local development.
package inmemory

import (
	"context"
	"sort"
	"sync"

	"github.com/pedalworks/catalogiq/pkg/catalog"
)

// Repository is an in-memory catalog.Repository keyed by product id.
type Repository struct {
	mu       sync.RWMutex
	products map[int]catalog.Product
}

// NewRepository returns a repository seeded with the given products.
func NewRepository(products ...catalog.Product) *Repository {
	r := &Repository{products: make(map[int]catalog.Product, len(products))}
	for _, p := range products {
		r.products[p.ID] = p
	}
	return r
}

// Add inserts or replaces a product.
func (r *Repository) Add(p catalog.Product) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.products[p.ID] = p
}

func (r *Repository) snapshot(filter func(catalog.Product) bool) []catalog.Product {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]catalog.Product, 0, len(r.products))
	for _, p := range r.products {
		if filter == nil || filter(p) {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// GetAll returns every product ordered by id.
func (r *Repository) GetAll(_ context.Context) ([]catalog.Product, error) {
	return r.snapshot(nil), nil
}

// GetProductsWithDescriptions returns products with a non-empty description.
func (r *Repository) GetProductsWithDescriptions(_ context.Context) ([]catalog.Product, error) {
	return r.snapshot(func(p catalog.Product) bool {
		return p.Description != nil && *p.Description != ""
	}), nil
}

// GetProductWithDescription returns one product, or catalog.ErrNotFound.
func (r *Repository) GetProductWithDescription(_ context.Context, id int) (*catalog.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.products[id]
	if !ok {
		return nil, catalog.ErrNotFound
	}
	return &p, nil
}

// GetProductsByIDs returns the products matching ids; missing ids are absent.
func (r *Repository) GetProductsByIDs(_ context.Context, ids []int) ([]catalog.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]catalog.Product, 0, len(ids))
	for _, id := range ids {
		if p, ok := r.products[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

// Close is a no-op.
func (r *Repository) Close() error { return nil }

var _ catalog.Repository = (*Repository)(nil)
