package config_test

import (
	"os"
	"path/filepath"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/spf13/cobra"

	"github.com/pedalworks/catalogiq/pkg/config"
)

func TestConfig(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Config Suite")
}

var _ = Describe("Configer", func() {
	var tmpDir string

	BeforeEach(func() {
		var err error
		tmpDir, err = os.MkdirTemp("", "config-test-*")
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		os.RemoveAll(tmpDir)
	})

	Describe("LoadConfig", func() {
		It("returns default config when no config file exists", func() {
			c, err := config.NewConfiger(tmpDir)
			Expect(err).NotTo(HaveOccurred())

			cfg, err := c.LoadConfig()
			Expect(err).NotTo(HaveOccurred())

			defaults := config.NewDefaultConfig()
			Expect(cfg.Version).To(Equal(defaults.Version))
			Expect(cfg.VectorStore.Provider).To(Equal(defaults.VectorStore.Provider))
			Expect(cfg.Embedding.Model).To(Equal(defaults.Embedding.Model))
			Expect(cfg.Generation.TopK).To(Equal(3))
			Expect(cfg.Generation.Temperature).To(Equal(0.7))
			Expect(cfg.Search.MinScore).To(Equal(0.1))
			Expect(cfg.Indexer.BatchSize).To(Equal(50))
		})

		It("returns defaults when no directory was given", func() {
			c, err := config.NewConfiger("")
			Expect(err).NotTo(HaveOccurred())

			cfg, err := c.LoadConfig()
			Expect(err).NotTo(HaveOccurred())
			Expect(cfg.API.Listen).To(Equal(config.NewDefaultConfig().API.Listen))
		})

		It("overrides defaults with file values and fills the rest", func() {
			content := `
version = 0

[vector_store]
provider = "redis"
target = "localhost:6379"

[embedding]
model = "all-minilm"
`
			path := filepath.Join(tmpDir, "config.toml")
			Expect(os.WriteFile(path, []byte(content), 0o600)).To(Succeed())

			c, err := config.NewConfiger(tmpDir)
			Expect(err).NotTo(HaveOccurred())

			cfg, err := c.LoadConfig()
			Expect(err).NotTo(HaveOccurred())
			Expect(cfg.VectorStore.Provider).To(Equal("redis"))
			Expect(cfg.VectorStore.Target).To(Equal("localhost:6379"))
			Expect(cfg.Embedding.Model).To(Equal("all-minilm"))

			// Unset fields fall back to defaults.
			defaults := config.NewDefaultConfig()
			Expect(cfg.Embedding.Dimensions).To(Equal(defaults.Embedding.Dimensions))
			Expect(cfg.Generation.Model).To(Equal(defaults.Generation.Model))
		})
	})

	Describe("SaveConfig", func() {
		It("round-trips a config through TOML", func() {
			c, err := config.NewConfiger(tmpDir)
			Expect(err).NotTo(HaveOccurred())

			cfg := config.NewDefaultConfig()
			cfg.VectorStore.Provider = "sqlite"
			cfg.VectorStore.Target = "/tmp/vectors.db"
			Expect(c.SaveConfig(cfg)).To(Succeed())

			loaded, err := c.LoadConfig()
			Expect(err).NotTo(HaveOccurred())
			Expect(loaded.VectorStore.Provider).To(Equal("sqlite"))
			Expect(loaded.VectorStore.Target).To(Equal("/tmp/vectors.db"))
		})

		It("refuses to save a nil config", func() {
			c, err := config.NewConfiger(tmpDir)
			Expect(err).NotTo(HaveOccurred())
			Expect(c.SaveConfig(nil)).To(HaveOccurred())
		})

		It("refuses to save without a target path", func() {
			c, err := config.NewConfiger("")
			Expect(err).NotTo(HaveOccurred())
			Expect(c.SaveConfig(config.NewDefaultConfig())).To(HaveOccurred())
		})
	})

	Describe("SetConfigValue and GetConfigValue", func() {
		It("sets and reads back a string key", func() {
			c, err := config.NewConfiger(tmpDir)
			Expect(err).NotTo(HaveOccurred())

			Expect(c.SetConfigValue("vector_store.provider", "qdrant")).To(Succeed())

			value, err := c.GetConfigValue("vector_store.provider")
			Expect(err).NotTo(HaveOccurred())
			Expect(value).To(Equal("qdrant"))
		})

		It("parses numeric keys", func() {
			c, err := config.NewConfiger(tmpDir)
			Expect(err).NotTo(HaveOccurred())

			Expect(c.SetConfigValue("embedding.dimensions", "1024")).To(Succeed())
			value, err := c.GetConfigValue("embedding.dimensions")
			Expect(err).NotTo(HaveOccurred())
			Expect(value).To(Equal("1024"))

			Expect(c.SetConfigValue("embedding.dimensions", "not-a-number")).To(HaveOccurred())
		})

		It("parses the broker list", func() {
			c, err := config.NewConfiger(tmpDir)
			Expect(err).NotTo(HaveOccurred())

			Expect(c.SetConfigValue("events.brokers", "one:9092,two:9092")).To(Succeed())
			value, err := c.GetConfigValue("events.brokers")
			Expect(err).NotTo(HaveOccurred())
			Expect(value).To(Equal("one:9092,two:9092"))
		})

		It("rejects unknown keys", func() {
			c, err := config.NewConfiger(tmpDir)
			Expect(err).NotTo(HaveOccurred())

			Expect(c.SetConfigValue("nope.nothing", "x")).To(HaveOccurred())
			_, err = c.GetConfigValue("nope.nothing")
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("ParseConfigTOML", func() {
		It("rejects unsupported versions", func() {
			_, err := config.ParseConfigTOML([]byte("version = 99"))
			Expect(err).To(HaveOccurred())
		})

		It("rejects malformed TOML", func() {
			_, err := config.ParseConfigTOML([]byte("version = ["))
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("ValidConfigKeys", func() {
		It("covers every registered key", func() {
			keys := config.ValidConfigKeys()
			Expect(keys).To(ContainElements(
				"catalog.target",
				"vector_store.provider",
				"embedding.model",
				"generation.top_k",
				"search.min_score",
				"indexer.batch_size",
				"events.topic",
			))
			for _, k := range keys {
				Expect(config.IsValidConfigKey(k)).To(BeTrue())
			}
		})
	})
})

var _ = Describe("InitViper", func() {
	var tmpDir string

	BeforeEach(func() {
		var err error
		tmpDir, err = os.MkdirTemp("", "viper-test-*")
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		os.RemoveAll(tmpDir)
		os.Unsetenv("CATALOGIQ_VECTOR_STORE_PROVIDER")
	})

	It("serves defaults when nothing else is set", func() {
		v, err := config.InitViper(tmpDir)
		Expect(err).NotTo(HaveOccurred())
		Expect(v.GetString("vector_store.provider")).To(Equal(config.NewDefaultConfig().VectorStore.Provider))
		Expect(v.GetInt("indexer.batch_size")).To(Equal(50))
	})

	It("reads values from config.toml", func() {
		content := `
[vector_store]
provider = "sqlite"
`
		Expect(os.WriteFile(filepath.Join(tmpDir, "config.toml"), []byte(content), 0o600)).To(Succeed())

		v, err := config.InitViper(tmpDir)
		Expect(err).NotTo(HaveOccurred())
		Expect(v.GetString("vector_store.provider")).To(Equal("sqlite"))
	})

	It("lets the environment override the file", func() {
		content := `
[vector_store]
provider = "sqlite"
`
		Expect(os.WriteFile(filepath.Join(tmpDir, "config.toml"), []byte(content), 0o600)).To(Succeed())
		os.Setenv("CATALOGIQ_VECTOR_STORE_PROVIDER", "redis")

		v, err := config.InitViper(tmpDir)
		Expect(err).NotTo(HaveOccurred())
		Expect(v.GetString("vector_store.provider")).To(Equal("redis"))
	})

	It("lets a bound flag override everything", func() {
		os.Setenv("CATALOGIQ_VECTOR_STORE_PROVIDER", "redis")

		v, err := config.InitViper(tmpDir)
		Expect(err).NotTo(HaveOccurred())

		fs := config.FlagSet{
			config.FlagVectorStoreProv: {
				Name:        "vector-store-provider",
				ViperKey:    "vector_store.provider",
				Description: "provider",
			},
		}

		cmd := &cobra.Command{Use: "test"}
		var provider string
		config.AddStringFlag(cmd, fs, config.FlagVectorStoreProv, &provider)
		Expect(cmd.Flags().Set("vector-store-provider", "qdrant")).To(Succeed())

		config.BindRegisteredFlags(v, cmd, fs, []string{config.FlagVectorStoreProv})
		Expect(v.GetString("vector_store.provider")).To(Equal("qdrant"))
	})
})
