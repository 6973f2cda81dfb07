package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/pedalworks/catalogiq/pkg/rag"
	"github.com/pedalworks/catalogiq/pkg/vector"
)

var (
	searchToolName    = "catalog_search"
	searchDescription = "Search the product catalog using semantic similarity. Returns the most relevant products for the query text, with their similarity scores and embedded text."
)

// SearchInput represents the input arguments for the catalog_search tool.
type SearchInput struct {
	Query string `json:"query" jsonschema:"the search query text to find relevant products"`
	TopK  int    `json:"top_k,omitempty" jsonschema:"number of results to return (default: 3)"`
}

// SearchOutput represents the output of the catalog_search tool.
type SearchOutput struct {
	Query   string                `json:"query"`
	Results []vector.SearchResult `json:"results"`
	Count   int                   `json:"count"`
}

// handleSearch processes a catalog_search request.
func (s *Server) handleSearch(ctx context.Context, req *mcp.CallToolRequest, input SearchInput) (*mcp.CallToolResult, SearchOutput, error) {
	logger := s.config.Logger

	// Default topK if not specified
	topK := input.TopK
	if topK <= 0 {
		topK = rag.DefaultTopK
	}

	logger.Debug("MCP catalog search request",
		zap.String("query", input.Query),
		zap.Int("topK", topK),
	)

	embedding, err := s.config.Embedder.Embed(ctx, input.Query)
	if err != nil {
		logger.Error("failed to embed query", zap.Error(err))
		return toolError(fmt.Sprintf("Failed to embed query: %v", err)), SearchOutput{}, nil
	}

	results, err := s.config.Engine.Search(ctx, embedding, topK)
	if err != nil {
		logger.Error("similarity search failed", zap.Error(err))
		return toolError(fmt.Sprintf("Failed to search catalog: %v", err)), SearchOutput{}, nil
	}

	output := SearchOutput{
		Query:   input.Query,
		Results: results,
		Count:   len(results),
	}

	// Serialize the structured output as JSON for the text field
	// Per MCP spec: tools returning structured content should also return
	// serialized JSON in a TextContent block for backwards compatibility
	jsonBytes, err := json.Marshal(output)
	if err != nil {
		logger.Error("failed to marshal search output", zap.Error(err))
		return toolError(fmt.Sprintf("Failed to serialize results: %v", err)), SearchOutput{}, nil
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: string(jsonBytes)},
		},
	}, output, nil
}

// toolError builds a CallToolResult carrying an error message.
func toolError(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{
			&mcp.TextContent{Text: msg},
		},
	}
}
