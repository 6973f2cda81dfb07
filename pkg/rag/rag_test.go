package rag_test

import (
	"context"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/pedalworks/catalogiq/pkg/logger"
	"github.com/pedalworks/catalogiq/pkg/rag"
	"github.com/pedalworks/catalogiq/pkg/search"
	testutils "github.com/pedalworks/catalogiq/pkg/utils/test"
	"github.com/pedalworks/catalogiq/pkg/vector"
)

func TestRAG(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "RAG Orchestrator Suite")
}

var _ = Describe("Orchestrator", func() {
	var (
		ctx       context.Context
		catalog   *testutils.MockCatalog
		embedder  *testutils.MockEmbedder
		generator *testutils.MockGenerator
		store     *testutils.MockNativeStore
	)

	newOrchestrator := func() *rag.Orchestrator {
		engine := search.NewEngine(store, 0.1, logger.NewLogger(false))
		return rag.NewOrchestrator(rag.Options{
			Catalog:   catalog,
			Embedder:  embedder,
			Generator: generator,
			Engine:    engine,
			Logger:    logger.NewLogger(false),
		})
	}

	BeforeEach(func() {
		ctx = context.Background()
		catalog = testutils.NewMockCatalog(
			testutils.NewTestProduct(1, "Road Bike", "A fast road bike.", 1200),
			testutils.NewTestProduct(2, "Mountain Bike", "A rugged mountain bike.", 950),
			testutils.NewTestProduct(3, "Helmet", "A sturdy helmet.", 80),
		)
		embedder = testutils.NewMockEmbedder()
		generator = testutils.NewMockGenerator("Here is your answer.")
		store = testutils.NewMockNativeStore()
	})

	It("rejects an empty question before any remote call", func() {
		_, err := newOrchestrator().AskQuestion(ctx, "   ")
		Expect(err).To(MatchError(rag.ErrEmptyQuestion))
		Expect(generator.Prompts).To(BeEmpty())
	})

	It("grounds the answer on the most similar products", func() {
		store.Results = []vector.SearchResult{
			{ProductID: 2, Similarity: 0.9},
			{ProductID: 1, Similarity: 0.8},
		}

		answer, err := newOrchestrator().AskQuestion(ctx, "what bikes do you have?")
		Expect(err).NotTo(HaveOccurred())
		Expect(answer.Answer).To(Equal("Here is your answer."))

		Expect(answer.RelatedProducts).To(HaveLen(2))
		Expect(answer.RelatedProducts[0].ProductID).To(Equal(2))
		Expect(answer.RelatedProducts[0].Name).To(Equal("Mountain Bike"))
		Expect(answer.RelatedProducts[0].Price).To(Equal(950.0))
		Expect(answer.RelatedProducts[1].ProductID).To(Equal(1))

		Expect(generator.Prompts).To(HaveLen(1))
		prompt := generator.Prompts[0]
		Expect(prompt).To(ContainSubstring("Answer the following question based on the product information provided:"))
		Expect(prompt).To(ContainSubstring("Product: Mountain Bike"))
		Expect(prompt).To(ContainSubstring("Description: A rugged mountain bike."))
		Expect(prompt).To(ContainSubstring("Price: $950"))
		Expect(prompt).To(ContainSubstring("Question: what bikes do you have?"))
		Expect(prompt).To(HaveSuffix("Answer:"))
	})

	It("uses the default temperature", func() {
		store.Results = []vector.SearchResult{{ProductID: 1, Similarity: 0.9}}

		_, err := newOrchestrator().AskQuestion(ctx, "question")
		Expect(err).NotTo(HaveOccurred())
		Expect(generator.Temperatures).To(Equal([]float32{0.7}))
	})

	It("answers ungrounded when nothing matches", func() {
		answer, err := newOrchestrator().AskQuestion(ctx, "what is the meaning of life?")
		Expect(err).NotTo(HaveOccurred())
		Expect(answer.Answer).To(Equal("Here is your answer."))
		Expect(answer.RelatedProducts).To(BeEmpty())

		// The model is prompted with the bare question, no context block.
		Expect(generator.Prompts).To(Equal([]string{"what is the meaning of life?"}))
	})

	It("answers ungrounded when the vector store is unreachable", func() {
		store.FailSearch = true

		answer, err := newOrchestrator().AskQuestion(ctx, "any helmets?")
		Expect(err).NotTo(HaveOccurred())
		Expect(answer.RelatedProducts).To(BeEmpty())
		Expect(generator.Prompts).To(Equal([]string{"any helmets?"}))
	})

	It("propagates embedding failures", func() {
		embedder.FailOn = "broken question"

		_, err := newOrchestrator().AskQuestion(ctx, "broken question")
		Expect(err).To(HaveOccurred())
		Expect(generator.Prompts).To(BeEmpty())
	})

	It("propagates generation failures", func() {
		generator.Fail = true
		store.Results = []vector.SearchResult{{ProductID: 1, Similarity: 0.9}}

		_, err := newOrchestrator().AskQuestion(ctx, "question")
		Expect(err).To(HaveOccurred())
	})

	It("notes a missing description in the context block", func() {
		catalog.Add(testutils.NewTestProduct(4, "Mystery Item", "", 10))
		store.Results = []vector.SearchResult{{ProductID: 4, Similarity: 0.9}}

		_, err := newOrchestrator().AskQuestion(ctx, "question")
		Expect(err).NotTo(HaveOccurred())
		Expect(generator.Prompts[0]).To(ContainSubstring("Description: No description available"))
	})

	It("drops results whose product vanished from the catalog", func() {
		store.Results = []vector.SearchResult{
			{ProductID: 1, Similarity: 0.9},
			{ProductID: 999, Similarity: 0.8},
		}

		answer, err := newOrchestrator().AskQuestion(ctx, "question")
		Expect(err).NotTo(HaveOccurred())
		Expect(answer.RelatedProducts).To(HaveLen(1))
		Expect(answer.RelatedProducts[0].ProductID).To(Equal(1))
	})
})
