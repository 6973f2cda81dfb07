// Package inmemory provides a map-backed vector store. It has no native
// search index, so queries against it exercise the brute-force cosine path.
// It backs tests and single-process deployments that do not warrant an
// external backend.
package inmemory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/pedalworks/catalogiq/pkg/vector"
)

// Store implements vector.Store entirely in process memory.
type Store struct {
	mu        sync.RWMutex
	dims      int
	byProduct map[int]vector.Record
	nextID    int
}

// NewStore creates an empty in-memory store. A dims of 0 disables
// dimensionality checks on upsert.
func NewStore(dims int) *Store {
	return &Store{
		dims:      dims,
		byProduct: make(map[int]vector.Record),
		nextID:    1,
	}
}

// Ensure is a no-op; the map needs no provisioning.
func (s *Store) Ensure(_ context.Context) error {
	return nil
}

// Upsert writes or overwrites records keyed by ProductID. Record ids are
// assigned serially on first insert and survive overwrites.
func (s *Store) Upsert(_ context.Context, records []vector.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, r := range records {
		if s.dims > 0 && len(r.Embedding) != s.dims {
			return fmt.Errorf("%w: got %d, store configured for %d",
				vector.ErrDimensionMismatch, len(r.Embedding), s.dims)
		}

		if prev, ok := s.byProduct[r.ProductID]; ok {
			r.ID = prev.ID
		} else {
			r.ID = s.nextID
			s.nextID++
		}
		r.Embedding = append([]float32(nil), r.Embedding...)
		s.byProduct[r.ProductID] = r
	}
	return nil
}

// GetByProductID returns the record for a product, or vector.ErrNotFound.
func (s *Store) GetByProductID(_ context.Context, productID int) (*vector.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.byProduct[productID]
	if !ok {
		return nil, vector.ErrNotFound
	}
	out := r
	return &out, nil
}

// GetByID returns the record with the given serial id, or vector.ErrNotFound.
func (s *Store) GetByID(_ context.Context, id int) (*vector.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, r := range s.byProduct {
		if r.ID == id {
			out := r
			return &out, nil
		}
	}
	return nil, vector.ErrNotFound
}

// ListAll returns every stored record ordered by product id, so iteration is
// stable within one call.
func (s *Store) ListAll(_ context.Context) ([]vector.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records := make([]vector.Record, 0, len(s.byProduct))
	for _, r := range s.byProduct {
		records = append(records, r)
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].ProductID < records[j].ProductID
	})
	return records, nil
}

// Count returns the number of stored records.
func (s *Store) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byProduct), nil
}

// Clear removes every record.
func (s *Store) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.byProduct = make(map[int]vector.Record)
	s.nextID = 1
	return nil
}

// Close is a no-op.
func (s *Store) Close() error {
	return nil
}

var _ vector.Store = (*Store)(nil)
