// Package catalogiqcmder
package catalogiqcmder

import (
	"github.com/spf13/cobra"

	askcmder "github.com/pedalworks/catalogiq/cmd/catalogiq/ask"
	configcmder "github.com/pedalworks/catalogiq/cmd/catalogiq/config"
	indexcmder "github.com/pedalworks/catalogiq/cmd/catalogiq/index"
	resetcmder "github.com/pedalworks/catalogiq/cmd/catalogiq/reset"
	searchcmder "github.com/pedalworks/catalogiq/cmd/catalogiq/search"
	servecmder "github.com/pedalworks/catalogiq/cmd/catalogiq/serve"
)

const catalogiqLongDesc string = `CatalogIQ answers questions about your product catalog.

Run services using:
  catalogiq serve      Run the API server
  catalogiq index      Index catalog products into the vector store
  catalogiq ask        Ask a question about the catalog
  catalogiq search     Search the catalog by similarity`

const catalogiqShortDesc string = "CatalogIQ - Catalog Q&A"

func NewCatalogIQCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalogiq",
		Short: catalogiqShortDesc,
		Long:  catalogiqLongDesc,
	}

	// Global flags
	cmd.PersistentFlags().BoolP("debug", "d", false, "Enable debug logging")
	cmd.PersistentFlags().String("config-dir", "", "Directory containing config.toml")

	// Add subcommands
	cmd.AddCommand(servecmder.NewServeCmd())
	cmd.AddCommand(indexcmder.NewIndexCmd())
	cmd.AddCommand(askcmder.NewAskCmd())
	cmd.AddCommand(searchcmder.NewSearchCmd())
	cmd.AddCommand(resetcmder.NewResetCmd())
	cmd.AddCommand(configcmder.NewConfigCmd())

	return cmd
}
