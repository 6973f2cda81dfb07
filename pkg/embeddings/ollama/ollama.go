// Package ollama implements the embeddings contracts against Ollama's HTTP
// API: /api/embed for vectors, /api/generate for completions.
package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/pedalworks/catalogiq/pkg/embeddings"
)

const (
	// DefaultEmbeddingModel is the default model used for embeddings.
	DefaultEmbeddingModel = "nomic-embed-text"

	// DefaultGenerationModel is the default model used for completions.
	DefaultGenerationModel = "llama3.1"

	// DefaultBaseURL is the default Ollama API URL.
	DefaultBaseURL = "http://localhost:11434"
)

// Client wraps Ollama's embedding and generation APIs.
type Client struct {
	baseURL         string
	embeddingModel  string
	generationModel string
	httpClient      *http.Client
}

// Config holds configuration for the Ollama client.
type Config struct {
	// BaseURL is the Ollama API URL (e.g., "http://localhost:11434").
	// Defaults to DefaultBaseURL if empty.
	BaseURL string

	// EmbeddingModel is the model used for /api/embed.
	// Defaults to DefaultEmbeddingModel if empty.
	EmbeddingModel string

	// GenerationModel is the model used for /api/generate.
	// Defaults to DefaultGenerationModel if empty.
	GenerationModel string
}

// embedRequest is the request body for Ollama's embedding API.
type embedRequest struct {
	Model string `json:"model"`
	Input string `json:"input"`
}

// embedResponse is the response from Ollama's embedding API.
type embedResponse struct {
	Embeddings [][]float32 `json:"embeddings"`
}

// generateRequest is the request body for Ollama's completion API.
type generateRequest struct {
	Model   string          `json:"model"`
	Prompt  string          `json:"prompt"`
	Stream  bool            `json:"stream"`
	Options generateOptions `json:"options"`
}

type generateOptions struct {
	Temperature float32 `json:"temperature"`
}

// generateResponse is the response from Ollama's completion API.
type generateResponse struct {
	Response string `json:"response"`
}

// NewClient creates a client for Ollama's embedding and generation APIs.
func NewClient(cfg Config) (*Client, error) {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	embeddingModel := cfg.EmbeddingModel
	if embeddingModel == "" {
		embeddingModel = DefaultEmbeddingModel
	}

	generationModel := cfg.GenerationModel
	if generationModel == "" {
		generationModel = DefaultGenerationModel
	}

	return &Client{
		baseURL:         baseURL,
		embeddingModel:  embeddingModel,
		generationModel: generationModel,
		httpClient: &http.Client{
			Timeout: 120 * time.Second,
		},
	}, nil
}

func (c *Client) post(ctx context.Context, path string, body any) ([]byte, error) {
	jsonBody, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("%w: marshaling request: %v", embeddings.ErrMalformedResponse, err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+path, bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("%w: creating request: %v", embeddings.ErrUnavailable, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: sending request: %v", embeddings.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("%w: ollama returned status %d: %s",
			embeddings.ErrUnavailable, resp.StatusCode, string(payload))
	}

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading response: %v", embeddings.ErrUnavailable, err)
	}
	return payload, nil
}

// Embed converts text into a vector embedding.
func (c *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	payload, err := c.post(ctx, "/api/embed", embedRequest{
		Model: c.embeddingModel,
		Input: text,
	})
	if err != nil {
		return nil, err
	}

	var embedResp embedResponse
	if err := json.Unmarshal(payload, &embedResp); err != nil {
		return nil, fmt.Errorf("%w: decoding response: %v", embeddings.ErrMalformedResponse, err)
	}

	if len(embedResp.Embeddings) == 0 || len(embedResp.Embeddings[0]) == 0 {
		return nil, fmt.Errorf("%w: no embeddings returned", embeddings.ErrMalformedResponse)
	}

	return embedResp.Embeddings[0], nil
}

// Generate runs a non-streaming completion with the given temperature.
func (c *Client) Generate(ctx context.Context, prompt string, temperature float32) (string, error) {
	payload, err := c.post(ctx, "/api/generate", generateRequest{
		Model:   c.generationModel,
		Prompt:  prompt,
		Stream:  false,
		Options: generateOptions{Temperature: temperature},
	})
	if err != nil {
		return "", err
	}

	var generateResp generateResponse
	if err := json.Unmarshal(payload, &generateResp); err != nil {
		return "", fmt.Errorf("%w: decoding response: %v", embeddings.ErrMalformedResponse, err)
	}

	if generateResp.Response == "" {
		return "", fmt.Errorf("%w: empty completion", embeddings.ErrMalformedResponse)
	}

	return generateResp.Response, nil
}

// Close releases resources held by the client.
func (c *Client) Close() error {
	// HTTP client doesn't require explicit cleanup
	return nil
}

var (
	_ embeddings.Embedder  = (*Client)(nil)
	_ embeddings.Generator = (*Client)(nil)
)
