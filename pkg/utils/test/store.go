package testutils

import (
	"context"
	"sort"

	"github.com/pedalworks/catalogiq/pkg/vector"
)

// MockStore is a test vector store backed by a map. It records upserts and
// can be forced to fail.
type MockStore struct {
	Records map[int]vector.Record

	// Upserted accumulates every record passed to Upsert.
	Upserted []vector.Record

	// Cleared is set once Clear is called.
	Cleared bool

	// FailUpsert causes Upsert to return vector.ErrUnavailable.
	FailUpsert bool

	// FailList causes ListAll to return vector.ErrUnavailable.
	FailList bool
}

func NewMockStore() *MockStore {
	return &MockStore{Records: make(map[int]vector.Record)}
}

func (m *MockStore) Ensure(_ context.Context) error { return nil }

func (m *MockStore) Upsert(_ context.Context, records []vector.Record) error {
	if m.FailUpsert {
		return vector.ErrUnavailable
	}
	for _, r := range records {
		m.Records[r.ProductID] = r
	}
	m.Upserted = append(m.Upserted, records...)
	return nil
}

func (m *MockStore) GetByProductID(_ context.Context, productID int) (*vector.Record, error) {
	r, ok := m.Records[productID]
	if !ok {
		return nil, vector.ErrNotFound
	}
	return &r, nil
}

func (m *MockStore) GetByID(ctx context.Context, id int) (*vector.Record, error) {
	return m.GetByProductID(ctx, id)
}

func (m *MockStore) ListAll(_ context.Context) ([]vector.Record, error) {
	if m.FailList {
		return nil, vector.ErrUnavailable
	}
	out := make([]vector.Record, 0, len(m.Records))
	for _, r := range m.Records {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ProductID < out[j].ProductID })
	return out, nil
}

func (m *MockStore) Count(_ context.Context) (int, error) {
	return len(m.Records), nil
}

func (m *MockStore) Clear(_ context.Context) error {
	m.Records = make(map[int]vector.Record)
	m.Cleared = true
	return nil
}

func (m *MockStore) Close() error { return nil }

var _ vector.Store = (*MockStore)(nil)

// MockNativeStore is a MockStore that also answers native similarity
// queries with canned results.
type MockNativeStore struct {
	MockStore

	// Results is returned by NativeSearch, truncated to limit and filtered
	// by minScore.
	Results []vector.SearchResult

	// FailSearch causes NativeSearch to return vector.ErrUnavailable.
	FailSearch bool
}

func NewMockNativeStore() *MockNativeStore {
	return &MockNativeStore{MockStore: *NewMockStore()}
}

func (m *MockNativeStore) NativeSearch(_ context.Context, _ []float32, limit int, minScore float32) ([]vector.SearchResult, error) {
	if m.FailSearch {
		return nil, vector.ErrUnavailable
	}

	out := make([]vector.SearchResult, 0, len(m.Results))
	for _, r := range m.Results {
		if r.Similarity >= minScore {
			out = append(out, r)
		}
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

var _ vector.NativeSearcher = (*MockNativeStore)(nil)
