package testutils

import (
	"context"
	"errors"

	"github.com/pedalworks/catalogiq/pkg/catalog"
	"github.com/pedalworks/catalogiq/pkg/catalog/inmemory"
)

// MockCatalog wraps the in-memory repository with failure toggles.
type MockCatalog struct {
	*inmemory.Repository

	// FailList causes the listing methods to return an error.
	FailList bool
}

func NewMockCatalog(products ...catalog.Product) *MockCatalog {
	return &MockCatalog{Repository: inmemory.NewRepository(products...)}
}

func (m *MockCatalog) GetAll(ctx context.Context) ([]catalog.Product, error) {
	if m.FailList {
		return nil, errors.New("mock catalog failure")
	}
	return m.Repository.GetAll(ctx)
}

func (m *MockCatalog) GetProductsWithDescriptions(ctx context.Context) ([]catalog.Product, error) {
	if m.FailList {
		return nil, errors.New("mock catalog failure")
	}
	return m.Repository.GetProductsWithDescriptions(ctx)
}

var _ catalog.Repository = (*MockCatalog)(nil)
