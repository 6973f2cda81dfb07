// Package api provides an HTTP API server for querying and indexing the catalog.
package api

import (
	"github.com/pedalworks/catalogiq/pkg/catalog"
	"github.com/pedalworks/catalogiq/pkg/embeddings"
	"github.com/pedalworks/catalogiq/pkg/indexer"
	"github.com/pedalworks/catalogiq/pkg/rag"
	"github.com/pedalworks/catalogiq/pkg/search"
	"github.com/pedalworks/catalogiq/pkg/vector"
)

// Config is the API server configuration.
type Config struct {
	// ListenAddr is the address to listen on (e.g., ":8080")
	ListenAddr string

	// Catalog is the product catalog repository
	Catalog catalog.Repository

	// Store is the vector record store
	Store vector.Store

	// Embedder converts query text to vectors for the search endpoint
	Embedder embeddings.Embedder

	// Engine answers similarity queries
	Engine *search.Engine

	// Orchestrator answers catalog questions
	Orchestrator *rag.Orchestrator

	// Pipeline runs indexing jobs
	Pipeline *indexer.Pipeline
}

// ErrorResponse is the JSON error envelope returned by every handler.
type ErrorResponse struct {
	Error string `json:"error"`
}
