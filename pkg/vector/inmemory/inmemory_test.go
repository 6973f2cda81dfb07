package inmemory_test

import (
	"context"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/pedalworks/catalogiq/pkg/vector"
	"github.com/pedalworks/catalogiq/pkg/vector/inmemory"
)

func TestInMemory(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "InMemory Vector Store Suite")
}

var _ = Describe("Store", func() {
	var (
		ctx   context.Context
		store *inmemory.Store
	)

	BeforeEach(func() {
		ctx = context.Background()
		store = inmemory.NewStore(3)
		Expect(store.Ensure(ctx)).To(Succeed())
	})

	It("round-trips a record by product id", func() {
		rec := vector.Record{ProductID: 42, Text: "Product: Road Bike.", Embedding: []float32{1, 2, 3}}
		Expect(store.Upsert(ctx, []vector.Record{rec})).To(Succeed())

		got, err := store.GetByProductID(ctx, 42)
		Expect(err).NotTo(HaveOccurred())
		Expect(got.ProductID).To(Equal(42))
		Expect(got.Text).To(Equal("Product: Road Bike."))
		Expect(got.Embedding).To(Equal([]float32{1, 2, 3}))
	})

	It("returns ErrNotFound for unknown products", func() {
		_, err := store.GetByProductID(ctx, 999)
		Expect(err).To(MatchError(vector.ErrNotFound))
	})

	It("overwrites on repeated upsert and keeps the record id", func() {
		Expect(store.Upsert(ctx, []vector.Record{
			{ProductID: 7, Text: "old", Embedding: []float32{1, 0, 0}},
		})).To(Succeed())

		first, err := store.GetByProductID(ctx, 7)
		Expect(err).NotTo(HaveOccurred())

		Expect(store.Upsert(ctx, []vector.Record{
			{ProductID: 7, Text: "new", Embedding: []float32{0, 1, 0}},
		})).To(Succeed())

		second, err := store.GetByProductID(ctx, 7)
		Expect(err).NotTo(HaveOccurred())
		Expect(second.ID).To(Equal(first.ID))
		Expect(second.Text).To(Equal("new"))

		count, err := store.Count(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(count).To(Equal(1))
	})

	It("resolves records by serial id", func() {
		Expect(store.Upsert(ctx, []vector.Record{
			{ProductID: 10, Text: "a", Embedding: []float32{1, 0, 0}},
			{ProductID: 20, Text: "b", Embedding: []float32{0, 1, 0}},
		})).To(Succeed())

		byProduct, err := store.GetByProductID(ctx, 20)
		Expect(err).NotTo(HaveOccurred())

		byID, err := store.GetByID(ctx, byProduct.ID)
		Expect(err).NotTo(HaveOccurred())
		Expect(byID.ProductID).To(Equal(20))
	})

	It("lists records ordered by product id", func() {
		Expect(store.Upsert(ctx, []vector.Record{
			{ProductID: 30, Text: "c", Embedding: []float32{1, 0, 0}},
			{ProductID: 10, Text: "a", Embedding: []float32{0, 1, 0}},
			{ProductID: 20, Text: "b", Embedding: []float32{0, 0, 1}},
		})).To(Succeed())

		records, err := store.ListAll(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(records).To(HaveLen(3))
		Expect(records[0].ProductID).To(Equal(10))
		Expect(records[1].ProductID).To(Equal(20))
		Expect(records[2].ProductID).To(Equal(30))
	})

	It("rejects records with the wrong dimensionality", func() {
		err := store.Upsert(ctx, []vector.Record{
			{ProductID: 1, Embedding: []float32{1, 2}},
		})
		Expect(err).To(MatchError(vector.ErrDimensionMismatch))
	})

	It("clears all records", func() {
		Expect(store.Upsert(ctx, []vector.Record{
			{ProductID: 1, Embedding: []float32{1, 0, 0}},
			{ProductID: 2, Embedding: []float32{0, 1, 0}},
		})).To(Succeed())

		Expect(store.Clear(ctx)).To(Succeed())

		count, err := store.Count(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(count).To(BeZero())
	})
})
