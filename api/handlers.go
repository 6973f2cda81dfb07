package api

import (
	"errors"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/pedalworks/catalogiq/pkg/catalog"
	"github.com/pedalworks/catalogiq/pkg/embeddings"
	"github.com/pedalworks/catalogiq/pkg/rag"
	"github.com/pedalworks/catalogiq/pkg/vector"
)

// AskRequest is the body of POST /api/rag/ask.
type AskRequest struct {
	Question string `json:"question"`
}

// CountResponse is the body of GET /api/vectors/count.
type CountResponse struct {
	Count int `json:"count"`
}

// handlePing returns a simple health check response.
func (s *Server) handlePing(c *fiber.Ctx) error {
	return c.JSON("pong")
}

// handleAsk answers a natural-language question about the catalog.
func (s *Server) handleAsk(c *fiber.Ctx) error {
	var req AskRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "invalid request body"})
	}

	if strings.TrimSpace(req.Question) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "question is required"})
	}

	answer, err := s.config.Orchestrator.AskQuestion(c.Context(), req.Question)
	if err != nil {
		if errors.Is(err, rag.ErrEmptyQuestion) {
			return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "question is required"})
		}
		if errors.Is(err, embeddings.ErrUnavailable) {
			return c.Status(fiber.StatusServiceUnavailable).JSON(ErrorResponse{Error: "embedding service unavailable"})
		}
		s.logger.Error("failed to answer question", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "failed to answer question"})
	}

	return c.JSON(answer)
}

// handleIndex runs the indexing pipeline and returns its report.
func (s *Server) handleIndex(c *fiber.Ctx) error {
	report, err := s.config.Pipeline.Run(c.Context())
	if err != nil {
		s.logger.Error("indexing run failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "indexing run failed"})
	}

	return c.JSON(report)
}

// handleSearch handles GET /api/search requests.
// Query parameters:
//   - query (required): the search query text
//   - top_k (optional, default 3): number of results to return
func (s *Server) handleSearch(c *fiber.Ctx) error {
	query := c.Query("query")
	if query == "" {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error: "query parameter is required",
		})
	}

	topK := rag.DefaultTopK
	if topKStr := c.Query("top_k"); topKStr != "" {
		parsed, err := strconv.Atoi(topKStr)
		if err != nil || parsed <= 0 {
			return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
				Error: "top_k must be a positive integer",
			})
		}
		topK = parsed
	}

	embedding, err := s.config.Embedder.Embed(c.Context(), query)
	if err != nil {
		if errors.Is(err, embeddings.ErrUnavailable) {
			return c.Status(fiber.StatusServiceUnavailable).JSON(ErrorResponse{Error: "embedding service unavailable"})
		}
		s.logger.Error("failed to embed query", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "failed to embed query"})
	}

	results, err := s.config.Engine.Search(c.Context(), embedding, topK)
	if err != nil {
		if errors.Is(err, vector.ErrUnavailable) {
			return c.Status(fiber.StatusServiceUnavailable).JSON(ErrorResponse{Error: "vector store unavailable"})
		}
		s.logger.Error("similarity search failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "similarity search failed"})
	}

	return c.JSON(map[string]any{
		"query":   query,
		"results": results,
		"count":   len(results),
	})
}

// handleListProducts returns every product, or only those with descriptions
// when with_descriptions=true.
func (s *Server) handleListProducts(c *fiber.Ctx) error {
	var (
		products []catalog.Product
		err      error
	)

	if c.QueryBool("with_descriptions") {
		products, err = s.config.Catalog.GetProductsWithDescriptions(c.Context())
	} else {
		products, err = s.config.Catalog.GetAll(c.Context())
	}
	if err != nil {
		s.logger.Error("failed to list products", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "failed to list products"})
	}

	return c.JSON(map[string]any{
		"count":    len(products),
		"products": products,
	})
}

// handleGetProduct returns a single product by id.
func (s *Server) handleGetProduct(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "id must be a positive integer"})
	}

	product, err := s.config.Catalog.GetProductWithDescription(c.Context(), id)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{Error: "product not found"})
		}
		s.logger.Error("failed to load product", zap.Int("id", id), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "failed to load product"})
	}

	return c.JSON(product)
}

// handleVectorCount returns the number of stored vector records.
func (s *Server) handleVectorCount(c *fiber.Ctx) error {
	count, err := s.config.Store.Count(c.Context())
	if err != nil {
		s.logger.Error("failed to count vectors", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "failed to count vectors"})
	}

	return c.JSON(CountResponse{Count: count})
}

// handleVectorReset drops every stored vector record.
func (s *Server) handleVectorReset(c *fiber.Ctx) error {
	if err := s.config.Store.Clear(c.Context()); err != nil {
		if errors.Is(err, vector.ErrUnavailable) {
			return c.Status(fiber.StatusServiceUnavailable).JSON(ErrorResponse{Error: "vector store unavailable"})
		}
		s.logger.Error("failed to reset vectors", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "failed to reset vectors"})
	}

	return c.SendStatus(fiber.StatusNoContent)
}
