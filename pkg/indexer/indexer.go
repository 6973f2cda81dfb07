// Package indexer batches catalog products through the embedder and into the
// vector store.
package indexer

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pedalworks/catalogiq/pkg/catalog"
	"github.com/pedalworks/catalogiq/pkg/embeddings"
	"github.com/pedalworks/catalogiq/pkg/eventstream"
	"github.com/pedalworks/catalogiq/pkg/vector"
)

// Status describes the lifecycle of an indexing run.
type Status string

const (
	StatusIdle      Status = "idle"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// DefaultBatchSize is the number of records flushed to the store at once.
const DefaultBatchSize = 50

// Report summarizes a finished indexing run.
type Report struct {
	RunID      string    `json:"run_id"`
	Status     Status    `json:"status"`
	Attempted  int       `json:"attempted"`
	Indexed    int       `json:"indexed"`
	Skipped    int       `json:"skipped"`
	SkippedIDs []int     `json:"skipped_ids,omitempty"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
}

// Pipeline indexes products with descriptions into a vector store.
type Pipeline struct {
	catalog   catalog.Repository
	embedder  embeddings.Embedder
	store     vector.Store
	publisher eventstream.Publisher
	provider  string
	batchSize int
	logger    *zap.Logger

	mu     sync.Mutex
	status Status
}

// Options configures a Pipeline.
type Options struct {
	Catalog   catalog.Repository
	Embedder  embeddings.Embedder
	Store     vector.Store
	Publisher eventstream.Publisher
	Provider  string
	BatchSize int
	Logger    *zap.Logger
}

// NewPipeline creates a pipeline in the idle state.
func NewPipeline(o Options) *Pipeline {
	batchSize := o.BatchSize
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	return &Pipeline{
		catalog:   o.Catalog,
		embedder:  o.Embedder,
		store:     o.Store,
		publisher: o.Publisher,
		provider:  o.Provider,
		batchSize: batchSize,
		logger:    o.Logger,
		status:    StatusIdle,
	}
}

// Status returns the state of the most recent run.
func (p *Pipeline) Status() Status {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.status
}

func (p *Pipeline) setStatus(s Status) {
	p.mu.Lock()
	p.status = s
	p.mu.Unlock()
}

// EmbeddingText renders the text a product is embedded under.
func EmbeddingText(p catalog.Product) string {
	description := ""
	if p.Description != nil {
		description = *p.Description
	}
	return fmt.Sprintf("Product: %s. Description: %s", p.Name, description)
}

// Run indexes every product carrying a description. Products without one,
// per-product embedding failures, and per-batch store failures are counted
// and skipped; only a failure to enumerate the catalog fails the run. The
// returned report is valid even when err is non-nil.
func (p *Pipeline) Run(ctx context.Context) (*Report, error) {
	report := &Report{
		RunID:     uuid.NewString(),
		Status:    StatusRunning,
		StartedAt: time.Now().UTC(),
	}
	p.setStatus(StatusRunning)

	p.logger.Info("starting indexing run", zap.String("run_id", report.RunID))

	if err := p.store.Ensure(ctx); err != nil {
		p.finish(ctx, report, StatusFailed)
		return report, fmt.Errorf("failed to prepare vector store: %w", err)
	}

	products, err := p.catalog.GetAll(ctx)
	if err != nil {
		p.finish(ctx, report, StatusFailed)
		return report, fmt.Errorf("failed to enumerate catalog: %w", err)
	}

	report.Attempted = len(products)

	batch := make([]vector.Record, 0, p.batchSize)
	batchIDs := make([]int, 0, p.batchSize)

	flush := func() {
		if len(batch) == 0 {
			return
		}
		if err := p.store.Upsert(ctx, batch); err != nil {
			p.logger.Warn("failed to flush batch, skipping",
				zap.String("run_id", report.RunID),
				zap.Int("batch_size", len(batch)),
				zap.Error(err))
			report.Skipped += len(batch)
			report.SkippedIDs = append(report.SkippedIDs, batchIDs...)
		} else {
			report.Indexed += len(batch)
		}
		batch = batch[:0]
		batchIDs = batchIDs[:0]
	}

	for _, product := range products {
		if product.Description == nil || *product.Description == "" {
			p.logger.Debug("product has no description, skipping",
				zap.String("run_id", report.RunID),
				zap.Int("product_id", product.ID))
			report.Skipped++
			report.SkippedIDs = append(report.SkippedIDs, product.ID)
			continue
		}

		text := EmbeddingText(product)

		embedding, err := p.embedder.Embed(ctx, text)
		if err != nil {
			p.logger.Warn("failed to embed product, skipping",
				zap.String("run_id", report.RunID),
				zap.Int("product_id", product.ID),
				zap.Error(err))
			report.Skipped++
			report.SkippedIDs = append(report.SkippedIDs, product.ID)
			continue
		}

		batch = append(batch, vector.Record{
			ProductID: product.ID,
			Text:      text,
			Embedding: embedding,
		})
		batchIDs = append(batchIDs, product.ID)

		if len(batch) >= p.batchSize {
			flush()
		}
	}
	flush()

	p.finish(ctx, report, StatusCompleted)

	p.logger.Info("indexing run finished",
		zap.String("run_id", report.RunID),
		zap.Int("attempted", report.Attempted),
		zap.Int("indexed", report.Indexed),
		zap.Int("skipped", report.Skipped))

	return report, nil
}

func (p *Pipeline) finish(ctx context.Context, report *Report, status Status) {
	report.Status = status
	report.FinishedAt = time.Now().UTC()
	p.setStatus(status)
	p.publish(ctx, report)
}

func (p *Pipeline) publish(ctx context.Context, report *Report) {
	if p.publisher == nil {
		return
	}

	event := &eventstream.IndexRunCompletedEvent{
		SchemaVersion: eventstream.SchemaVersionV1,
		EventType:     eventstream.EventTypeIndexRunCompleted,
		EventID:       uuid.NewString(),
		EmittedAt:     time.Now().UTC(),
		Run: eventstream.IndexRunMeta{
			RunID:       report.RunID,
			Status:      string(report.Status),
			Provider:    p.provider,
			StartedAt:   report.StartedAt,
			CompletedAt: report.FinishedAt,
			DurationMs:  report.FinishedAt.Sub(report.StartedAt).Milliseconds(),
			Attempted:   report.Attempted,
			Indexed:     report.Indexed,
			Skipped:     report.Skipped,
			SkippedIDs:  report.SkippedIDs,
		},
	}

	if err := p.publisher.PublishIndexRun(ctx, event); err != nil {
		p.logger.Warn("failed to publish index run event",
			zap.String("run_id", report.RunID),
			zap.Error(err))
	}
}
