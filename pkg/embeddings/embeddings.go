// Package embeddings defines the contracts for the remote model endpoint:
// turning text into vectors and prompts into generated answers.
package embeddings

import "context"

// Embedder provides text embedding capabilities.
type Embedder interface {
	// Embed converts text into a vector embedding. Every call is a fresh
	// remote request; there is no caching and no retry at this layer.
	Embed(ctx context.Context, text string) ([]float32, error)

	// Close releases any resources held by the embedder.
	Close() error
}

// Generator produces free text from a prompt.
type Generator interface {
	// Generate runs text completion with the given sampling temperature.
	Generate(ctx context.Context, prompt string, temperature float32) (string, error)
}
