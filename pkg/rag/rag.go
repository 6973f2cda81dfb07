// Package rag answers natural-language questions about the catalog by
// grounding a language model on the most similar indexed products.
package rag

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/pedalworks/catalogiq/pkg/catalog"
	"github.com/pedalworks/catalogiq/pkg/embeddings"
	"github.com/pedalworks/catalogiq/pkg/search"
	"github.com/pedalworks/catalogiq/pkg/vector"
)

// ErrEmptyQuestion indicates a blank question was submitted.
var ErrEmptyQuestion = errors.New("question must not be empty")

const (
	// DefaultTopK is the number of products retrieved as grounding context.
	DefaultTopK = 3

	// DefaultTemperature is passed to the generator for every answer.
	DefaultTemperature = 0.7
)

// RelatedProduct is a catalog product cited as grounding for an answer.
type RelatedProduct struct {
	ProductID int     `json:"product_id"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
}

// Answer is the result of a catalog question.
type Answer struct {
	Answer          string           `json:"answer"`
	RelatedProducts []RelatedProduct `json:"related_products"`
}

// Orchestrator wires retrieval and generation into a question pipeline.
type Orchestrator struct {
	catalog     catalog.Repository
	embedder    embeddings.Embedder
	generator   embeddings.Generator
	engine      *search.Engine
	topK        int
	temperature float32
	logger      *zap.Logger
}

// Options configures an Orchestrator.
type Options struct {
	Catalog     catalog.Repository
	Embedder    embeddings.Embedder
	Generator   embeddings.Generator
	Engine      *search.Engine
	TopK        int
	Temperature float32
	Logger      *zap.Logger
}

// NewOrchestrator creates an orchestrator with defaults applied.
func NewOrchestrator(o Options) *Orchestrator {
	topK := o.TopK
	if topK <= 0 {
		topK = DefaultTopK
	}
	temperature := o.Temperature
	if temperature <= 0 {
		temperature = DefaultTemperature
	}

	return &Orchestrator{
		catalog:     o.Catalog,
		embedder:    o.Embedder,
		generator:   o.Generator,
		engine:      o.Engine,
		topK:        topK,
		temperature: temperature,
		logger:      o.Logger,
	}
}

// AskQuestion embeds the question, retrieves the most similar products, and
// generates an answer grounded on them. When retrieval finds nothing or the
// store is unreachable the model answers ungrounded with no related products.
func (o *Orchestrator) AskQuestion(ctx context.Context, question string) (*Answer, error) {
	if strings.TrimSpace(question) == "" {
		return nil, ErrEmptyQuestion
	}

	o.logger.Info("processing question", zap.String("question", question))

	embedding, err := o.embedder.Embed(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("failed to embed question: %w", err)
	}

	results, err := o.engine.Search(ctx, embedding, o.topK)
	if err != nil {
		if !errors.Is(err, vector.ErrUnavailable) {
			return nil, fmt.Errorf("similarity search failed: %w", err)
		}
		o.logger.Warn("vector store unavailable, answering ungrounded", zap.Error(err))
		results = nil
	}

	if len(results) == 0 {
		o.logger.Info("no similar products found")

		answer, err := o.generator.Generate(ctx, question, o.temperature)
		if err != nil {
			return nil, fmt.Errorf("failed to generate answer: %w", err)
		}
		return &Answer{Answer: answer, RelatedProducts: []RelatedProduct{}}, nil
	}

	ids := make([]int, len(results))
	for i, r := range results {
		ids[i] = r.ProductID
	}

	products, err := o.catalog.GetProductsByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load related products: %w", err)
	}

	// Keep the similarity ordering, not the repository's.
	byID := make(map[int]catalog.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}
	ordered := make([]catalog.Product, 0, len(ids))
	for _, id := range ids {
		if p, ok := byID[id]; ok {
			ordered = append(ordered, p)
		}
	}

	related := make([]RelatedProduct, len(ordered))
	for i, p := range ordered {
		related[i] = RelatedProduct{ProductID: p.ID, Name: p.Name, Price: p.Price}
	}

	prompt := buildPrompt(question, ordered)

	answer, err := o.generator.Generate(ctx, prompt, o.temperature)
	if err != nil {
		return nil, fmt.Errorf("failed to generate answer: %w", err)
	}

	return &Answer{Answer: answer, RelatedProducts: related}, nil
}

func buildPrompt(question string, products []catalog.Product) string {
	blocks := make([]string, len(products))
	for i, p := range products {
		category := ""
		if p.CategoryID != nil {
			category = fmt.Sprintf("%d", *p.CategoryID)
		}
		description := "No description available"
		if p.Description != nil && *p.Description != "" {
			description = *p.Description
		}
		blocks[i] = fmt.Sprintf("Product: %s\nProduct Number: %s\nCategory: %s\nPrice: $%g\nDescription: %s",
			p.Name, p.ProductNumber, category, p.Price, description)
	}
	context := strings.Join(blocks, "\n\n")

	return fmt.Sprintf("Answer the following question based on the product information provided:\n\n%s\n\nQuestion: %s\n\nAnswer:",
		context, question)
}
