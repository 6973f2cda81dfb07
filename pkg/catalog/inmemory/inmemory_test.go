package inmemory_test

import (
	"context"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/pedalworks/catalogiq/pkg/catalog"
	"github.com/pedalworks/catalogiq/pkg/catalog/inmemory"
	testutils "github.com/pedalworks/catalogiq/pkg/utils/test"
)

func TestInMemory(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "InMemory Catalog Suite")
}

var _ = Describe("Repository", func() {
	var (
		ctx  context.Context
		repo *inmemory.Repository
	)

	BeforeEach(func() {
		ctx = context.Background()
		repo = inmemory.NewRepository(
			testutils.NewTestProduct(3, "Road Frame", "Lightweight aluminum frame", 350),
			testutils.NewTestProduct(1, "Mountain Bike", "Full suspension trail bike", 950),
			testutils.NewTestProduct(2, "Bell", "", 12),
		)
	})

	Describe("GetAll", func() {
		It("returns every product ordered by id", func() {
			products, err := repo.GetAll(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(products).To(HaveLen(3))
			Expect(products[0].ID).To(Equal(1))
			Expect(products[1].ID).To(Equal(2))
			Expect(products[2].ID).To(Equal(3))
		})

		It("returns an empty slice for an empty repository", func() {
			products, err := inmemory.NewRepository().GetAll(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(products).To(BeEmpty())
		})
	})

	Describe("GetProductsWithDescriptions", func() {
		It("skips products without a description", func() {
			products, err := repo.GetProductsWithDescriptions(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(products).To(HaveLen(2))
			Expect(products[0].ID).To(Equal(1))
			Expect(products[1].ID).To(Equal(3))
		})
	})

	Describe("GetProductWithDescription", func() {
		It("returns the product by id", func() {
			p, err := repo.GetProductWithDescription(ctx, 1)
			Expect(err).NotTo(HaveOccurred())
			Expect(p.Name).To(Equal("Mountain Bike"))
		})

		It("returns ErrNotFound for an unknown id", func() {
			_, err := repo.GetProductWithDescription(ctx, 42)
			Expect(err).To(MatchError(catalog.ErrNotFound))
		})
	})

	Describe("GetProductsByIDs", func() {
		It("preserves the requested order", func() {
			products, err := repo.GetProductsByIDs(ctx, []int{3, 1})
			Expect(err).NotTo(HaveOccurred())
			Expect(products).To(HaveLen(2))
			Expect(products[0].ID).To(Equal(3))
			Expect(products[1].ID).To(Equal(1))
		})

		It("skips unknown ids", func() {
			products, err := repo.GetProductsByIDs(ctx, []int{42, 2})
			Expect(err).NotTo(HaveOccurred())
			Expect(products).To(HaveLen(1))
			Expect(products[0].ID).To(Equal(2))
		})
	})

	Describe("Add", func() {
		It("replaces an existing product", func() {
			repo.Add(testutils.NewTestProduct(1, "Mountain Bike v2", "Updated geometry", 999))

			p, err := repo.GetProductWithDescription(ctx, 1)
			Expect(err).NotTo(HaveOccurred())
			Expect(p.Name).To(Equal("Mountain Bike v2"))
		})
	})
})
