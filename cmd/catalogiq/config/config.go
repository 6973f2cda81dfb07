// Package configcmder provides the config command for managing persistent
// catalogiq configuration.
package configcmder

import (
	"github.com/spf13/cobra"
)

const configLongDesc string = `Manage persistent catalogiq configuration.

Configuration is stored as config.toml and provides default values for
command flags. CLI flags always take precedence over config file values.

Keys use dotted notation matching the TOML section structure:
  catalog.target,
  vector_store.provider, vector_store.target, vector_store.prefix,
  embedding.provider, embedding.target, embedding.model, embedding.dimensions,
  generation.model, generation.temperature, generation.top_k,
  search.min_score, indexer.batch_size,
  api.listen, client.api_target,
  events.enabled, events.brokers, events.topic

Use subcommands to get, set, or list configuration values:
  catalogiq config set <key> <value>    Set a configuration value
  catalogiq config get <key>            Get a configuration value
  catalogiq config list                 List all configuration values

Examples:
  catalogiq config set vector_store.provider redis
  catalogiq config set embedding.model nomic-embed-text
  catalogiq config get vector_store.provider
  catalogiq config list`

const configShortDesc string = "Manage persistent catalogiq configuration"

func NewConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: configShortDesc,
		Long:  configLongDesc,
	}

	cmd.AddCommand(newSetCmd())
	cmd.AddCommand(newGetCmd())
	cmd.AddCommand(newListCmd())

	return cmd
}
