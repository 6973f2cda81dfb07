package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/pedalworks/catalogiq/pkg/rag"
)

var (
	askToolName    = "ask_catalog"
	askDescription = "Ask a natural-language question about the product catalog. The answer is generated by a language model grounded on the most similar products, which are listed alongside it."
)

// AskInput represents the input arguments for the ask_catalog tool.
type AskInput struct {
	Question string `json:"question" jsonschema:"the question to answer about the catalog"`
}

// AskOutput represents the output of the ask_catalog tool.
type AskOutput struct {
	Answer          string               `json:"answer"`
	RelatedProducts []rag.RelatedProduct `json:"related_products"`
}

// handleAsk processes an ask_catalog request.
func (s *Server) handleAsk(ctx context.Context, req *mcp.CallToolRequest, input AskInput) (*mcp.CallToolResult, AskOutput, error) {
	logger := s.config.Logger

	logger.Debug("MCP ask request", zap.String("question", input.Question))

	answer, err := s.config.Orchestrator.AskQuestion(ctx, input.Question)
	if err != nil {
		logger.Error("failed to answer question", zap.Error(err))
		return toolError(fmt.Sprintf("Failed to answer question: %v", err)), AskOutput{}, nil
	}

	output := AskOutput{
		Answer:          answer.Answer,
		RelatedProducts: answer.RelatedProducts,
	}

	jsonBytes, err := json.Marshal(output)
	if err != nil {
		logger.Error("failed to marshal answer", zap.Error(err))
		return toolError(fmt.Sprintf("Failed to serialize answer: %v", err)), AskOutput{}, nil
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: string(jsonBytes)},
		},
	}, output, nil
}
