package testutils

import "github.com/pedalworks/catalogiq/pkg/catalog"

// NewTestProduct creates a simple product with a description for testing
func NewTestProduct(id int, name, description string, price float64) catalog.Product {
	p := catalog.Product{
		ID:            id,
		Name:          name,
		ProductNumber: "TST-0001",
		Price:         price,
	}
	if description != "" {
		p.Description = &description
	}
	return p
}
