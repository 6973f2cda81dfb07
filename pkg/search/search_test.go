package search_test

import (
	"context"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/pedalworks/catalogiq/pkg/logger"
	"github.com/pedalworks/catalogiq/pkg/search"
	testutils "github.com/pedalworks/catalogiq/pkg/utils/test"
	"github.com/pedalworks/catalogiq/pkg/vector"
	"github.com/pedalworks/catalogiq/pkg/vector/inmemory"
)

func TestSearch(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Search Engine Suite")
}

var _ = Describe("Engine", func() {
	var ctx context.Context

	BeforeEach(func() {
		ctx = context.Background()
	})

	Describe("brute-force path", func() {
		var (
			store  *inmemory.Store
			engine *search.Engine
		)

		BeforeEach(func() {
			store = inmemory.NewStore(3)
			Expect(store.Upsert(ctx, []vector.Record{
				{ProductID: 1, Text: "road bike", Embedding: []float32{1, 0, 0}},
				{ProductID: 2, Text: "mountain bike", Embedding: []float32{0.9, 0.1, 0}},
				{ProductID: 3, Text: "water bottle", Embedding: []float32{0, 0, 1}},
			})).To(Succeed())

			engine = search.NewEngine(store, 0.1, logger.NewLogger(false))
		})

		It("orders results by descending similarity", func() {
			results, err := engine.Search(ctx, []float32{1, 0, 0}, 10)
			Expect(err).NotTo(HaveOccurred())
			Expect(results).To(HaveLen(3))
			Expect(results[0].ProductID).To(Equal(1))
			Expect(results[1].ProductID).To(Equal(2))
			Expect(results[2].ProductID).To(Equal(3))
		})

		It("truncates to the requested limit", func() {
			results, err := engine.Search(ctx, []float32{1, 0, 0}, 2)
			Expect(err).NotTo(HaveOccurred())
			Expect(results).To(HaveLen(2))
			Expect(results[0].ProductID).To(Equal(1))
		})

		It("keeps low-scoring records; the threshold is a native-path concern", func() {
			results, err := engine.Search(ctx, []float32{1, 0, 0}, 10)
			Expect(err).NotTo(HaveOccurred())
			Expect(results[2].Similarity).To(BeNumerically("~", 0, 1e-6))
		})

		It("returns nothing for a non-positive limit", func() {
			results, err := engine.Search(ctx, []float32{1, 0, 0}, 0)
			Expect(err).NotTo(HaveOccurred())
			Expect(results).To(BeEmpty())
		})

		It("returns an empty result set for an empty store", func() {
			empty := inmemory.NewStore(3)
			e := search.NewEngine(empty, 0.1, logger.NewLogger(false))

			results, err := e.Search(ctx, []float32{1, 0, 0}, 3)
			Expect(err).NotTo(HaveOccurred())
			Expect(results).To(BeEmpty())
		})

		It("propagates store failures", func() {
			failing := testutils.NewMockStore()
			failing.FailList = true
			e := search.NewEngine(failing, 0.1, logger.NewLogger(false))

			_, err := e.Search(ctx, []float32{1, 0, 0}, 3)
			Expect(err).To(MatchError(vector.ErrUnavailable))
		})
	})

	Describe("native path", func() {
		It("delegates to the backend with the configured threshold", func() {
			store := testutils.NewMockNativeStore()
			store.Results = []vector.SearchResult{
				{ProductID: 1, Similarity: 0.9},
				{ProductID: 2, Similarity: 0.5},
				{ProductID: 3, Similarity: 0.05},
			}

			engine := search.NewEngine(store, 0.1, logger.NewLogger(false))
			results, err := engine.Search(ctx, []float32{1, 0, 0}, 10)
			Expect(err).NotTo(HaveOccurred())
			Expect(results).To(HaveLen(2))
			Expect(results[0].ProductID).To(Equal(1))
			Expect(results[1].ProductID).To(Equal(2))
		})

		It("propagates backend failures", func() {
			store := testutils.NewMockNativeStore()
			store.FailSearch = true

			engine := search.NewEngine(store, 0.1, logger.NewLogger(false))
			_, err := engine.Search(ctx, []float32{1, 0, 0}, 3)
			Expect(err).To(MatchError(vector.ErrUnavailable))
		})
	})
})
