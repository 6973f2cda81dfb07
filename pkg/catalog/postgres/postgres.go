// Package postgres provides the PostgreSQL-backed catalog repository.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib" // register the pgx PostgreSQL driver as "pgx"

	"github.com/pedalworks/catalogiq/pkg/catalog"
)

// Repository implements catalog.Repository over a products table joined to
// its descriptions.
type Repository struct {
	db *sql.DB
}

// NewRepository opens a read-only connection to the catalog database.
func NewRepository(ctx context.Context, connStr string) (*Repository, error) {
	db, err := sql.Open("pgx", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog database: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping catalog database: %w", err)
	}

	return &Repository{db: db}, nil
}

const selectProducts = `
	SELECT p.product_id, p.name, p.product_number, p.category_id, p.list_price, d.description
	FROM products p
	LEFT JOIN product_descriptions d ON d.product_id = p.product_id`

func scanProducts(rows *sql.Rows) ([]catalog.Product, error) {
	var products []catalog.Product
	for rows.Next() {
		var p catalog.Product
		var categoryID sql.NullInt64
		var description sql.NullString
		if err := rows.Scan(&p.ID, &p.Name, &p.ProductNumber, &categoryID, &p.Price, &description); err != nil {
			return nil, fmt.Errorf("scanning product: %w", err)
		}
		if categoryID.Valid {
			id := int(categoryID.Int64)
			p.CategoryID = &id
		}
		if description.Valid {
			d := description.String
			p.Description = &d
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating products: %w", err)
	}
	return products, nil
}

// GetAll returns every product.
func (r *Repository) GetAll(ctx context.Context) ([]catalog.Product, error) {
	rows, err := r.db.QueryContext(ctx, selectProducts+` ORDER BY p.product_id`)
	if err != nil {
		return nil, fmt.Errorf("querying products: %w", err)
	}
	defer rows.Close()
	return scanProducts(rows)
}

// GetProductsWithDescriptions returns products carrying a non-empty description.
func (r *Repository) GetProductsWithDescriptions(ctx context.Context) ([]catalog.Product, error) {
	rows, err := r.db.QueryContext(ctx,
		selectProducts+` WHERE d.description IS NOT NULL AND d.description <> '' ORDER BY p.product_id`)
	if err != nil {
		return nil, fmt.Errorf("querying products with descriptions: %w", err)
	}
	defer rows.Close()
	return scanProducts(rows)
}

// GetProductWithDescription returns one product, or catalog.ErrNotFound.
func (r *Repository) GetProductWithDescription(ctx context.Context, id int) (*catalog.Product, error) {
	rows, err := r.db.QueryContext(ctx, selectProducts+` WHERE p.product_id = $1`, id)
	if err != nil {
		return nil, fmt.Errorf("querying product %d: %w", id, err)
	}
	defer rows.Close()

	products, err := scanProducts(rows)
	if err != nil {
		return nil, err
	}
	if len(products) == 0 {
		return nil, catalog.ErrNotFound
	}
	return &products[0], nil
}

// GetProductsByIDs returns the products matching ids; missing ids are absent.
func (r *Repository) GetProductsByIDs(ctx context.Context, ids []int) ([]catalog.Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	placeholders := make([]string, len(ids))
	args := make([]any, len(ids))
	for i, id := range ids {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = id
	}

	rows, err := r.db.QueryContext(ctx,
		selectProducts+` WHERE p.product_id IN (`+strings.Join(placeholders, ",")+`)`, args...)
	if err != nil {
		return nil, fmt.Errorf("querying products by ids: %w", err)
	}
	defer rows.Close()
	return scanProducts(rows)
}

// Close closes the database handle.
func (r *Repository) Close() error {
	if r.db == nil {
		return nil
	}
	err := r.db.Close()
	if errors.Is(err, sql.ErrConnDone) {
		return nil
	}
	return err
}

var _ catalog.Repository = (*Repository)(nil)
