// Package vector provides the product vector record model and the storage
// contract implemented by the interchangeable backends.
package vector

import "context"

// Record is the unit of retrieval: the embedded passage for one catalog
// product. At most one current record exists per product; re-indexing
// overwrites, never duplicates.
type Record struct {
	// ID is the backend-assigned record identifier. Only the relational
	// backends hand out stable ids; backends keyed directly by product derive
	// it from ProductID.
	ID int

	// ProductID is the catalog product this record was built from.
	ProductID int

	// Text is the exact passage that was embedded.
	Text string

	// Embedding is the vector representation of Text. Its length must match
	// the dimensionality the store was provisioned with.
	Embedding []float32
}

// SearchResult is a similarity match returned by a search. Similarity is
// backend-scaled: cosine similarity in [-1, 1] for brute-force and
// cosine-configured stores, a relevance score otherwise. Higher is always
// more relevant; scores are only comparable within one backend configuration.
type SearchResult struct {
	ProductID  int     `json:"product_id"`
	Text       string  `json:"text"`
	Similarity float32 `json:"similarity"`
}

// Store handles persistence of product vector records.
type Store interface {
	// Ensure provisions the physical index/collection with the configured
	// dimensionality and distance metric. It is idempotent: "already exists"
	// is success, and two racing initializations must both succeed.
	Ensure(ctx context.Context) error

	// Upsert writes or overwrites the record for each record's ProductID.
	// A repeated upsert for the same product fully replaces the prior value.
	Upsert(ctx context.Context, records []Record) error

	// GetByProductID returns the record for a product, or ErrNotFound.
	GetByProductID(ctx context.Context, productID int) (*Record, error)

	// GetByID returns the record with the given record id, or ErrNotFound.
	// Backends without stable record ids resolve the id against ProductID.
	GetByID(ctx context.Context, id int) (*Record, error)

	// ListAll returns every currently stored record. Implementations page
	// internally; callers see the full set.
	ListAll(ctx context.Context) ([]Record, error)

	// Count returns the number of stored records, 0 when the collection does
	// not exist yet.
	Count(ctx context.Context) (int, error)

	// Clear removes all records for the active collection/index.
	Clear(ctx context.Context) error

	// Close releases any resources held by the store.
	Close() error
}

// NativeSearcher is the optional capability of backends that run
// nearest-neighbor queries inside the store itself. Stores that do not
// implement it are searched by brute-force cosine ranking over ListAll.
type NativeSearcher interface {
	// NativeSearch returns up to limit matches ordered by descending
	// similarity, excluding matches below minScore. An empty result set is
	// valid and means "nothing similar enough", not an error.
	NativeSearch(ctx context.Context, embedding []float32, limit int, minScore float32) ([]SearchResult, error)
}
