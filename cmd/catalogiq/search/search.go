// Package searchcmder provides the search command for similarity search over products.
package searchcmder

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/pedalworks/catalogiq/pkg/config"
	"github.com/pedalworks/catalogiq/pkg/utils"
	"github.com/pedalworks/catalogiq/pkg/vector"
)

type searchCommander struct {
	query     string
	topK      int
	quiet     bool
	apiTarget string
}

// Output is the response body of the search endpoint.
type Output struct {
	Query   string                `json:"query"`
	Results []vector.SearchResult `json:"results"`
	Count   int                   `json:"count"`
}

const searchLongDesc string = `Search the product catalog by similarity via the CatalogIQ API.

Returns the indexed products most similar to the query text. Requires a
running CatalogIQ API server with an indexed vector store.

Use --quiet to output only product ids, one per line, for piping into
other commands.

Example:
  catalogiq search "lightweight aluminum frame"
  catalogiq search "touring bike" --top 10
  catalogiq search "red helmet" --quiet`

const searchShortDesc string = "Search the catalog by similarity"

func NewSearchCmd() *cobra.Command {
	cmder := &searchCommander{}

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: searchShortDesc,
		Long:  searchLongDesc,
		Args:  cobra.ExactArgs(1),
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			configDir, _ := cmd.Flags().GetString("config-dir")
			cfger, err := config.NewConfiger(configDir)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}

			cfg, err := cfger.LoadConfig()
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}

			if !cmd.Flags().Changed("api-target") {
				cmder.apiTarget = cfg.Client.APITarget
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cmder.query = args[0]
			return cmder.run()
		},
	}

	defaults := config.NewDefaultConfig()
	cmd.Flags().IntVarP(&cmder.topK, "top", "k", defaults.Generation.TopK, "Number of results to return")
	cmd.Flags().BoolVarP(&cmder.quiet, "quiet", "q", false, "Output only product ids, one per line (for piping)")
	cmd.Flags().StringVar(&cmder.apiTarget, "api-target", defaults.Client.APITarget, "CatalogIQ API server URL")

	return cmd
}

func (c *searchCommander) run() error {
	output, err := SearchAPI(c.apiTarget, c.query, c.topK)
	if err != nil {
		return err
	}

	if output.Count == 0 {
		if !c.quiet {
			fmt.Println("No results found.")
		}
		return nil
	}

	if c.quiet {
		for _, result := range output.Results {
			fmt.Println(result.ProductID)
		}
		return nil
	}

	fmt.Printf("\nSearch results for %q:\n\n", output.Query)
	for i, result := range output.Results {
		fmt.Printf("  #%d  score: %.4f  product: %d\n      %s\n",
			i+1, result.Similarity, result.ProductID,
			utils.Truncate(result.Text, 120))
	}

	return nil
}

// SearchAPI queries a running API server's search endpoint.
func SearchAPI(apiTarget, query string, topK int) (*Output, error) {
	params := url.Values{}
	params.Set("query", query)
	params.Set("top_k", strconv.Itoa(topK))

	resp, err := http.Get(apiTarget + "/api/search?" + params.Encode())
	if err != nil {
		return nil, fmt.Errorf("searching: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr struct {
			Error string `json:"error"`
		}
		if err := json.Unmarshal(data, &apiErr); err == nil && apiErr.Error != "" {
			return nil, fmt.Errorf("API error: %s", apiErr.Error)
		}
		return nil, fmt.Errorf("API returned status %d", resp.StatusCode)
	}

	var output Output
	if err := json.Unmarshal(data, &output); err != nil {
		return nil, fmt.Errorf("decoding results: %w", err)
	}

	return &output, nil
}
