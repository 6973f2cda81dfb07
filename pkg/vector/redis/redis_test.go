package redis_test

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/pedalworks/catalogiq/pkg/logger"
	"github.com/pedalworks/catalogiq/pkg/vector"
	vredis "github.com/pedalworks/catalogiq/pkg/vector/redis"
)

func TestRedis(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Redis Vector Store Suite")
}

var _ = Describe("Store", func() {
	var (
		ctx   context.Context
		mr    *miniredis.Miniredis
		store *vredis.Store
	)

	BeforeEach(func() {
		ctx = context.Background()

		var err error
		mr, err = miniredis.Run()
		Expect(err).NotTo(HaveOccurred())

		store = vredis.NewStore(vredis.Options{
			Addr:   mr.Addr(),
			Prefix: "product_vectors",
			Dims:   3,
		}, logger.NewLogger(false))
	})

	AfterEach(func() {
		store.Close()
		mr.Close()
	})

	It("round-trips a record through a hash", func() {
		rec := vector.Record{ProductID: 3, Text: "Product: Gloves.", Embedding: []float32{0.5, 0.5, 0}}
		Expect(store.Upsert(ctx, []vector.Record{rec})).To(Succeed())

		got, err := store.GetByProductID(ctx, 3)
		Expect(err).NotTo(HaveOccurred())
		Expect(got.ProductID).To(Equal(3))
		Expect(got.Text).To(Equal("Product: Gloves."))
		Expect(got.Embedding).To(Equal([]float32{0.5, 0.5, 0}))
	})

	It("returns ErrNotFound for unknown products", func() {
		_, err := store.GetByProductID(ctx, 404)
		Expect(err).To(MatchError(vector.ErrNotFound))
	})

	It("resolves GetByID against the product id", func() {
		Expect(store.Upsert(ctx, []vector.Record{
			{ProductID: 8, Text: "a", Embedding: []float32{1, 0, 0}},
		})).To(Succeed())

		got, err := store.GetByID(ctx, 8)
		Expect(err).NotTo(HaveOccurred())
		Expect(got.ProductID).To(Equal(8))
	})

	It("lists records ordered by product id", func() {
		Expect(store.Upsert(ctx, []vector.Record{
			{ProductID: 20, Text: "b", Embedding: []float32{0, 1, 0}},
			{ProductID: 10, Text: "a", Embedding: []float32{1, 0, 0}},
		})).To(Succeed())

		records, err := store.ListAll(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(records).To(HaveLen(2))
		Expect(records[0].ProductID).To(Equal(10))
		Expect(records[1].ProductID).To(Equal(20))
	})

	It("counts stored records", func() {
		Expect(store.Upsert(ctx, []vector.Record{
			{ProductID: 1, Embedding: []float32{1, 0, 0}},
			{ProductID: 2, Embedding: []float32{0, 1, 0}},
		})).To(Succeed())

		count, err := store.Count(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(count).To(Equal(2))
	})

	It("clears record hashes", func() {
		Expect(store.Upsert(ctx, []vector.Record{
			{ProductID: 1, Embedding: []float32{1, 0, 0}},
		})).To(Succeed())

		Expect(store.Clear(ctx)).To(Succeed())

		count, err := store.Count(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(count).To(BeZero())
	})

	It("rejects records with the wrong dimensionality", func() {
		err := store.Upsert(ctx, []vector.Record{
			{ProductID: 1, Embedding: []float32{1, 0}},
		})
		Expect(err).To(MatchError(vector.ErrDimensionMismatch))
	})

	It("rejects queries with the wrong dimensionality", func() {
		_, err := store.NativeSearch(ctx, []float32{1, 0}, 3, 0)
		Expect(err).To(MatchError(vector.ErrBackendRejected))
	})
})

var _ = Describe("ParseSearchReply", func() {
	It("unpacks a flat RESP2 reply into scored results", func() {
		raw := any([]any{
			int64(2),
			"product_vectors:7",
			[]any{"product_id", "7", "text", "Product: Jersey.", "dist", "0.25"},
			"product_vectors:9",
			[]any{"product_id", "9", "text", "Product: Shorts.", "dist", "0.6"},
		})

		results, err := vredis.ParseSearchReply(raw)
		Expect(err).NotTo(HaveOccurred())
		Expect(results).To(HaveLen(2))
		Expect(results[0].ProductID).To(Equal(7))
		Expect(results[0].Text).To(Equal("Product: Jersey."))
		Expect(results[0].Similarity).To(BeNumerically("~", 0.75, 1e-6))
		Expect(results[1].ProductID).To(Equal(9))
		Expect(results[1].Similarity).To(BeNumerically("~", 0.4, 1e-6))
	})

	It("rejects replies that are not arrays", func() {
		_, err := vredis.ParseSearchReply("nope")
		Expect(err).To(HaveOccurred())
	})

	It("rejects documents with a malformed product id", func() {
		raw := any([]any{
			int64(1),
			"product_vectors:x",
			[]any{"product_id", "not-a-number", "dist", "0.1"},
		})
		_, err := vredis.ParseSearchReply(raw)
		Expect(err).To(HaveOccurred())
	})
})
