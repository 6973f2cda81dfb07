// Package catalog defines the read-only contract to the product catalog.
// The catalog is an external system of record; this package only reads it.
package catalog

import (
	"context"
	"errors"
)

// ErrNotFound is returned when no product exists for the requested id.
var ErrNotFound = errors.New("product not found")

// Product is a catalog product. Description is nil for products that have
// none; indexing skips those and reports them.
type Product struct {
	ID            int     `json:"id"`
	Name          string  `json:"name"`
	ProductNumber string  `json:"product_number"`
	CategoryID    *int    `json:"category_id,omitempty"`
	Price         float64 `json:"price"`
	Description   *string `json:"description,omitempty"`
}

// Repository reads products from the catalog.
type Repository interface {
	// GetAll returns every product, with descriptions where present.
	GetAll(ctx context.Context) ([]Product, error)

	// GetProductsWithDescriptions returns only products that carry a
	// non-empty description; these are the indexable ones.
	GetProductsWithDescriptions(ctx context.Context) ([]Product, error)

	// GetProductWithDescription returns one product by id, or ErrNotFound.
	GetProductWithDescription(ctx context.Context, id int) (*Product, error)

	// GetProductsByIDs returns the products matching the given ids. Missing
	// ids are simply absent from the result, not an error.
	GetProductsByIDs(ctx context.Context, ids []int) ([]Product, error)

	// Close releases any resources held by the repository.
	Close() error
}
