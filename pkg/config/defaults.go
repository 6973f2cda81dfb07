package config

const (
	defaultCatalogTarget = "postgres://localhost:5432/adventureworks"

	defaultVectorProvider = "qdrant"
	defaultVectorTarget   = "localhost:6334"
	defaultVectorPrefix   = "product_vectors"

	defaultEmbeddingProvider   = "ollama"
	defaultEmbeddingTarget     = "http://localhost:11434"
	defaultEmbeddingModel      = "nomic-embed-text"
	defaultEmbeddingDimensions = 768

	defaultGenerationModel       = "llama3.1"
	defaultGenerationTemperature = 0.7
	defaultGenerationTopK        = 3

	defaultSearchMinScore = 0.1

	defaultIndexerBatchSize = 50

	defaultAPIListen       = ":8080"
	defaultClientAPITarget = "http://localhost:8080"

	defaultEventsTopic = "catalogiq.index.runs"
)

// NewDefaultConfig returns a Config with sane defaults for all fields.
// This is the single source of truth for default values.
func NewDefaultConfig() *Config {
	return &Config{
		Version: CurrentV,
		Catalog: CatalogConfig{
			Target: defaultCatalogTarget,
		},
		VectorStore: VectorStoreConfig{
			Provider: defaultVectorProvider,
			Target:   defaultVectorTarget,
			Prefix:   defaultVectorPrefix,
		},
		Embedding: EmbeddingConfig{
			Provider:   defaultEmbeddingProvider,
			Target:     defaultEmbeddingTarget,
			Model:      defaultEmbeddingModel,
			Dimensions: defaultEmbeddingDimensions,
		},
		Generation: GenerationConfig{
			Model:       defaultGenerationModel,
			Temperature: defaultGenerationTemperature,
			TopK:        defaultGenerationTopK,
		},
		Search: SearchConfig{
			MinScore: defaultSearchMinScore,
		},
		Indexer: IndexerConfig{
			BatchSize: defaultIndexerBatchSize,
		},
		API: APIConfig{
			Listen: defaultAPIListen,
		},
		Client: ClientConfig{
			APITarget: defaultClientAPITarget,
		},
		Events: EventsConfig{
			Enabled: false,
			Topic:   defaultEventsTopic,
		},
	}
}
