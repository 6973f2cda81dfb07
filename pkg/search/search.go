// Package search runs similarity queries over a vector store, delegating to
// the backend's native search when it has one and falling back to an
// exhaustive in-process scan when it does not.
package search

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/pedalworks/catalogiq/pkg/vector"
)

// Engine answers top-K similarity queries against a single store.
type Engine struct {
	store    vector.Store
	minScore float32
	logger   *zap.Logger
}

// NewEngine returns an engine over store. minScore is applied only on the
// native path, where backends score against the full corpus cheaply.
func NewEngine(store vector.Store, minScore float32, logger *zap.Logger) *Engine {
	return &Engine{
		store:    store,
		minScore: minScore,
		logger:   logger,
	}
}

// Search returns up to limit results ordered by descending similarity.
func (e *Engine) Search(ctx context.Context, embedding []float32, limit int) ([]vector.SearchResult, error) {
	if limit <= 0 {
		return nil, nil
	}

	if native, ok := e.store.(vector.NativeSearcher); ok {
		e.logger.Debug("delegating to native search", zap.Int("limit", limit), zap.Float32("min_score", e.minScore))
		return native.NativeSearch(ctx, embedding, limit, e.minScore)
	}

	e.logger.Debug("running brute-force search", zap.Int("limit", limit))
	return e.bruteForce(ctx, embedding, limit)
}

func (e *Engine) bruteForce(ctx context.Context, embedding []float32, limit int) ([]vector.SearchResult, error) {
	records, err := e.store.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing records for scan: %w", err)
	}

	results := make([]vector.SearchResult, 0, len(records))
	for _, rec := range records {
		results = append(results, vector.SearchResult{
			ProductID:  rec.ProductID,
			Text:       rec.Text,
			Similarity: vector.CosineSimilarity(embedding, rec.Embedding),
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Similarity > results[j].Similarity
	})

	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}
