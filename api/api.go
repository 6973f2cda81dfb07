package api

import (
	"net/http"

	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Server is the API server for querying and indexing the catalog
type Server struct {
	config Config
	logger *zap.Logger
	app    *fiber.App
}

// NewServer creates a new API server.
// The catalog, store, and pipeline are injected to allow sharing with
// other components (e.g., the CLI when not run as a daemon).
func NewServer(config Config, logger *zap.Logger) *Server {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})

	s := &Server{
		config: config,
		logger: logger,
		app:    app,
	}

	app.Get("/ping", s.handlePing)
	app.Post("/api/rag/ask", s.handleAsk)
	app.Post("/api/rag/index", s.handleIndex)
	app.Get("/api/search", s.handleSearch)
	app.Get("/api/products", s.handleListProducts)
	app.Get("/api/products/:id", s.handleGetProduct)
	app.Get("/api/vectors/count", s.handleVectorCount)
	app.Post("/api/vectors/reset", s.handleVectorReset)

	return s
}

// MountMCP mounts an MCP handler under the given path prefix.
func (s *Server) MountMCP(path string, handler http.Handler) {
	s.app.All(path, adaptor.HTTPHandler(handler))
}

// App returns the underlying fiber app, used by tests.
func (s *Server) App() *fiber.App {
	return s.app
}

// Run starts the API server on the configured address.
func (s *Server) Run() error {
	s.logger.Info("starting API server",
		zap.String("listen", s.config.ListenAddr),
	)
	return s.app.Listen(s.config.ListenAddr)
}

// Shutdown gracefully shuts down the API server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}
