// Package indexcmder provides the index command for populating the vector store.
package indexcmder

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	catalogpg "github.com/pedalworks/catalogiq/pkg/catalog/postgres"
	"github.com/pedalworks/catalogiq/pkg/config"
	"github.com/pedalworks/catalogiq/pkg/embeddings/ollama"
	"github.com/pedalworks/catalogiq/pkg/eventstream/nop"
	"github.com/pedalworks/catalogiq/pkg/indexer"
	"github.com/pedalworks/catalogiq/pkg/logger"
	vectorutils "github.com/pedalworks/catalogiq/pkg/vector/utils"
)

type indexCommander struct {
	cfg   *config.Config
	debug bool

	logger *zap.Logger
}

const indexLongDesc string = `Index catalog products into the vector store.

Every product carrying a description is embedded and upserted. Products
without a description, or that fail to embed, are skipped and listed in
the final report; the run keeps going. Re-running the command refreshes
existing records in place.`

const indexShortDesc string = "Index catalog products into the vector store"

func NewIndexCmd() *cobra.Command {
	cmder := &indexCommander{}

	cmd := &cobra.Command{
		Use:   "index",
		Short: indexShortDesc,
		Long:  indexLongDesc,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			configDir, _ := cmd.Flags().GetString("config-dir")
			cfger, err := config.NewConfiger(configDir)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}

			cmder.cfg, err = cfger.LoadConfig()
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			cmder.debug, err = cmd.Flags().GetBool("debug")
			if err != nil {
				return fmt.Errorf("could not get debug flag: %v", err)
			}

			return cmder.run()
		},
	}

	return cmd
}

func (c *indexCommander) run() error {
	c.logger = logger.NewLogger(c.debug)
	defer c.logger.Sync()

	ctx := context.Background()

	catalogRepo, err := catalogpg.NewRepository(ctx, c.cfg.Catalog.Target)
	if err != nil {
		return fmt.Errorf("connecting to catalog: %w", err)
	}
	defer catalogRepo.Close()

	store, err := vectorutils.NewStore(ctx, &vectorutils.NewStoreOpts{
		ProviderType: c.cfg.VectorStore.Provider,
		Target:       c.cfg.VectorStore.Target,
		Prefix:       c.cfg.VectorStore.Prefix,
		Dims:         int(c.cfg.Embedding.Dimensions),
		Logger:       c.logger,
	})
	if err != nil {
		return fmt.Errorf("creating vector store: %w", err)
	}
	defer store.Close()

	client, err := ollama.NewClient(ollama.Config{
		BaseURL:        c.cfg.Embedding.Target,
		EmbeddingModel: c.cfg.Embedding.Model,
	})
	if err != nil {
		return fmt.Errorf("creating ollama client: %w", err)
	}

	pipeline := indexer.NewPipeline(indexer.Options{
		Catalog:   catalogRepo,
		Embedder:  client,
		Store:     store,
		Publisher: nop.NewPublisher(),
		Provider:  c.cfg.VectorStore.Provider,
		BatchSize: c.cfg.Indexer.BatchSize,
		Logger:    c.logger,
	})

	report, err := pipeline.Run(ctx)
	if err != nil {
		return fmt.Errorf("indexing run failed: %w", err)
	}

	fmt.Printf("Indexed %d of %d products (%d skipped)\n",
		report.Indexed, report.Attempted, report.Skipped)
	if len(report.SkippedIDs) > 0 {
		fmt.Printf("Skipped product ids: %v\n", report.SkippedIDs)
	}

	return nil
}
