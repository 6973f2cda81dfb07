// Package servecmder provides the serve command for running the API server.
package servecmder

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/pedalworks/catalogiq/api"
	"github.com/pedalworks/catalogiq/api/mcp"
	catalogpg "github.com/pedalworks/catalogiq/pkg/catalog/postgres"
	"github.com/pedalworks/catalogiq/pkg/config"
	"github.com/pedalworks/catalogiq/pkg/embeddings/ollama"
	"github.com/pedalworks/catalogiq/pkg/eventstream"
	eventkafka "github.com/pedalworks/catalogiq/pkg/eventstream/kafka"
	"github.com/pedalworks/catalogiq/pkg/eventstream/nop"
	"github.com/pedalworks/catalogiq/pkg/indexer"
	"github.com/pedalworks/catalogiq/pkg/logger"
	"github.com/pedalworks/catalogiq/pkg/rag"
	"github.com/pedalworks/catalogiq/pkg/search"
	"github.com/pedalworks/catalogiq/pkg/utils"
	vectorutils "github.com/pedalworks/catalogiq/pkg/vector/utils"
)

// serveFlags is the flag registry for the serve command.
var serveFlags = config.FlagSet{
	config.FlagAPIListen: {
		Name: "listen", Shorthand: "l",
		ViperKey:    "api.listen",
		Description: "Address for API server to listen on",
	},
	config.FlagCatalogTarget: {
		Name:        "catalog-target",
		ViperKey:    "catalog.target",
		Description: "Catalog database connection string",
	},
	config.FlagVectorStoreProv: {
		Name:        "vector-store-provider",
		ViperKey:    "vector_store.provider",
		Description: "Vector store provider (memory, sqlite, postgres, redis, qdrant)",
	},
	config.FlagVectorStoreTgt: {
		Name:        "vector-store-target",
		ViperKey:    "vector_store.target",
		Description: "Vector store address or path",
	},
	config.FlagVectorStorePfx: {
		Name:        "vector-store-prefix",
		ViperKey:    "vector_store.prefix",
		Description: "Collection name or key prefix for vector records",
	},
	config.FlagEmbeddingTgt: {
		Name:        "embedding-target",
		ViperKey:    "embedding.target",
		Description: "Embedding provider URL",
	},
	config.FlagEmbeddingModel: {
		Name:        "embedding-model",
		ViperKey:    "embedding.model",
		Description: "Embedding model name",
	},
	config.FlagEmbeddingDims: {
		Name:        "embedding-dimensions",
		ViperKey:    "embedding.dimensions",
		Description: "Embedding vector dimensions",
	},
	config.FlagGenerationModel: {
		Name:        "generation-model",
		ViperKey:    "generation.model",
		Description: "Generation model name",
	},
	config.FlagMinScore: {
		Name:        "min-score",
		ViperKey:    "search.min_score",
		Description: "Minimum similarity score for native search results",
	},
	config.FlagBatchSize: {
		Name:        "batch-size",
		ViperKey:    "indexer.batch_size",
		Description: "Number of records flushed to the vector store at once",
	},
}

var serveFlagKeys = []string{
	config.FlagAPIListen,
	config.FlagCatalogTarget,
	config.FlagVectorStoreProv,
	config.FlagVectorStoreTgt,
	config.FlagVectorStorePfx,
	config.FlagEmbeddingTgt,
	config.FlagEmbeddingModel,
	config.FlagEmbeddingDims,
	config.FlagGenerationModel,
	config.FlagMinScore,
	config.FlagBatchSize,
}

type ServeCommander struct {
	listen          string
	catalogTarget   string
	vectorProvider  string
	vectorTarget    string
	vectorPrefix    string
	embeddingTarget string
	embeddingModel  string
	embeddingDims   uint
	generationModel string
	minScore        float64
	batchSize       int
	debug           bool

	v      *viper.Viper
	logger *zap.Logger
}

const serveLongDesc string = `Run the CatalogIQ API server.

The server answers catalog questions, runs indexing jobs, and serves
similarity search over indexed products. An MCP endpoint is mounted at /mcp
so agent tooling can use the catalog_search and ask_catalog tools.`

const serveShortDesc string = "Run the CatalogIQ API server"

func NewServeCmd() *cobra.Command {
	cmder := &ServeCommander{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: serveShortDesc,
		Long:  serveLongDesc,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			configDir, _ := cmd.Flags().GetString("config-dir")

			v, err := config.InitViper(configDir)
			if err != nil {
				return fmt.Errorf("initializing config: %w", err)
			}

			config.BindRegisteredFlags(v, cmd, serveFlags, serveFlagKeys)
			cmder.v = v
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			cmder.debug, err = cmd.Flags().GetBool("debug")
			if err != nil {
				return fmt.Errorf("could not get debug flag: %v", err)
			}

			cmder.resolve()
			return cmder.run()
		},
	}

	config.AddStringFlag(cmd, serveFlags, config.FlagAPIListen, &cmder.listen)
	config.AddStringFlag(cmd, serveFlags, config.FlagCatalogTarget, &cmder.catalogTarget)
	config.AddStringFlag(cmd, serveFlags, config.FlagVectorStoreProv, &cmder.vectorProvider)
	config.AddStringFlag(cmd, serveFlags, config.FlagVectorStoreTgt, &cmder.vectorTarget)
	config.AddStringFlag(cmd, serveFlags, config.FlagVectorStorePfx, &cmder.vectorPrefix)
	config.AddStringFlag(cmd, serveFlags, config.FlagEmbeddingTgt, &cmder.embeddingTarget)
	config.AddStringFlag(cmd, serveFlags, config.FlagEmbeddingModel, &cmder.embeddingModel)
	config.AddUintFlag(cmd, serveFlags, config.FlagEmbeddingDims, &cmder.embeddingDims)
	config.AddStringFlag(cmd, serveFlags, config.FlagGenerationModel, &cmder.generationModel)
	config.AddFloat64Flag(cmd, serveFlags, config.FlagMinScore, &cmder.minScore)
	config.AddIntFlag(cmd, serveFlags, config.FlagBatchSize, &cmder.batchSize)

	return cmd
}

// resolve reads the final values out of the viper precedence chain.
func (c *ServeCommander) resolve() {
	c.listen = c.v.GetString("api.listen")
	c.catalogTarget = c.v.GetString("catalog.target")
	c.vectorProvider = c.v.GetString("vector_store.provider")
	c.vectorTarget = c.v.GetString("vector_store.target")
	c.vectorPrefix = c.v.GetString("vector_store.prefix")
	c.embeddingTarget = c.v.GetString("embedding.target")
	c.embeddingModel = c.v.GetString("embedding.model")
	c.embeddingDims = c.v.GetUint("embedding.dimensions")
	c.generationModel = c.v.GetString("generation.model")
	c.minScore = c.v.GetFloat64("search.min_score")
	c.batchSize = c.v.GetInt("indexer.batch_size")
}

func (c *ServeCommander) run() error {
	c.logger = logger.NewLogger(c.debug)
	defer c.logger.Sync()

	ctx := context.Background()

	// Catalog repository
	catalogRepo, err := catalogpg.NewRepository(ctx, c.catalogTarget)
	if err != nil {
		return fmt.Errorf("connecting to catalog: %w", err)
	}
	defer catalogRepo.Close()

	// Vector store
	store, err := vectorutils.NewStore(ctx, &vectorutils.NewStoreOpts{
		ProviderType: c.vectorProvider,
		Target:       c.vectorTarget,
		Prefix:       c.vectorPrefix,
		Dims:         int(c.embeddingDims),
		Logger:       c.logger,
	})
	if err != nil {
		return fmt.Errorf("creating vector store: %w", err)
	}
	defer store.Close()

	if err := store.Ensure(ctx); err != nil {
		return fmt.Errorf("preparing vector store: %w", err)
	}

	// Embedding and generation client
	client, err := ollama.NewClient(ollama.Config{
		BaseURL:         c.embeddingTarget,
		EmbeddingModel:  c.embeddingModel,
		GenerationModel: c.generationModel,
	})
	if err != nil {
		return fmt.Errorf("creating ollama client: %w", err)
	}

	engine := search.NewEngine(store, float32(c.minScore), c.logger)

	publisher, err := c.newPublisher()
	if err != nil {
		return err
	}
	defer publisher.Close()

	pipeline := indexer.NewPipeline(indexer.Options{
		Catalog:   catalogRepo,
		Embedder:  client,
		Store:     store,
		Publisher: publisher,
		Provider:  c.vectorProvider,
		BatchSize: c.batchSize,
		Logger:    c.logger,
	})

	orchestrator := rag.NewOrchestrator(rag.Options{
		Catalog:     catalogRepo,
		Embedder:    client,
		Generator:   client,
		Engine:      engine,
		TopK:        c.v.GetInt("generation.top_k"),
		Temperature: float32(c.v.GetFloat64("generation.temperature")),
		Logger:      c.logger,
	})

	server := api.NewServer(api.Config{
		ListenAddr:   c.listen,
		Catalog:      catalogRepo,
		Store:        store,
		Embedder:     client,
		Engine:       engine,
		Orchestrator: orchestrator,
		Pipeline:     pipeline,
	}, c.logger)

	mcpServer, err := mcp.NewServer(mcp.Config{
		Embedder:     client,
		Engine:       engine,
		Orchestrator: orchestrator,
		Logger:       c.logger,
	}, utils.Version)
	if err != nil {
		return fmt.Errorf("creating MCP server: %w", err)
	}
	server.MountMCP("/mcp", mcpServer.Handler())

	c.logger.Info("starting server",
		zap.String("listen", c.listen),
		zap.String("vector_store", c.vectorProvider),
		zap.String("embedding_model", c.embeddingModel),
	)

	// Channel to capture errors from goroutines
	errChan := make(chan error, 1)

	go func() {
		if err := server.Run(); err != nil {
			errChan <- fmt.Errorf("API server error: %w", err)
		}
	}()

	// Wait for interrupt signal or error
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		return err
	case sig := <-sigChan:
		c.logger.Info("received signal, shutting down", zap.String("signal", sig.String()))
		return server.Shutdown()
	}
}

func (c *ServeCommander) newPublisher() (eventstream.Publisher, error) {
	if !c.v.GetBool("events.enabled") {
		return nop.NewPublisher(), nil
	}

	brokers := c.v.GetStringSlice("events.brokers")
	if len(brokers) == 0 {
		return nil, fmt.Errorf("events.enabled is set but events.brokers is empty")
	}

	topic := c.v.GetString("events.topic")
	c.logger.Info("publishing index run events",
		zap.Strings("brokers", brokers),
		zap.String("topic", topic),
	)
	return eventkafka.NewPublisher(brokers, topic, c.logger), nil
}
