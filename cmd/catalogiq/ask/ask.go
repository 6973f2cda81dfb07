// Package askcmder provides the ask command for questioning the catalog.
package askcmder

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"

	"github.com/pedalworks/catalogiq/pkg/config"
	"github.com/pedalworks/catalogiq/pkg/rag"
)

type askCommander struct {
	question  string
	apiTarget string
	plain     bool
}

const askLongDesc string = `Ask a natural-language question about the product catalog.

The question is answered by a running CatalogIQ API server. The answer is
grounded on the most similar indexed products, which are listed below it.

Example:
  catalogiq ask "what mountain bikes do you have?"
  catalogiq ask "cheapest road frame" --api-target http://localhost:8080`

const askShortDesc string = "Ask a question about the catalog"

func NewAskCmd() *cobra.Command {
	cmder := &askCommander{}

	cmd := &cobra.Command{
		Use:   "ask <question>",
		Short: askShortDesc,
		Long:  askLongDesc,
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
			cmder.question = args[0]
			return cmder.run()
		},
	}

	defaults := config.NewDefaultConfig()
	cmd.Flags().StringVar(&cmder.apiTarget, "api-target", defaults.Client.APITarget, "CatalogIQ API server URL")
	cmd.Flags().BoolVar(&cmder.plain, "plain", false, "Print the raw answer without markdown rendering")

	return cmd
}

func (c *askCommander) run() error {
	answer, err := AskAPI(c.apiTarget, c.question)
	if err != nil {
		return err
	}

	if c.plain {
		fmt.Println(answer.Answer)
	} else {
		rendered, err := renderMarkdown(answer.Answer)
		if err != nil {
			// Fall back to plain text if glamour fails
			fmt.Println(answer.Answer)
		} else {
			fmt.Print(rendered)
		}
	}

	if len(answer.RelatedProducts) > 0 {
		fmt.Println("Related products:")
		for _, p := range answer.RelatedProducts {
			fmt.Printf("  #%d  %s  $%.2f\n", p.ProductID, p.Name, p.Price)
		}
	}

	return nil
}

// AskAPI posts a question to a running API server and decodes the answer.
func AskAPI(apiTarget, question string) (*rag.Answer, error) {
	body, err := json.Marshal(map[string]string{"question": question})
	if err != nil {
		return nil, fmt.Errorf("encoding request: %w", err)
	}

	resp, err := http.Post(apiTarget+"/api/rag/ask", "application/json", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("asking question: %w", err)
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

	var answer rag.Answer
	if err := json.Unmarshal(data, &answer); err != nil {
		return nil, fmt.Errorf("decoding answer: %w", err)
	}

	return &answer, nil
}

// renderMarkdown renders markdown content for terminal display using glamour.
func renderMarkdown(content string) (string, error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(80),
	)
	if err != nil {
		return content, err
	}

	rendered, err := r.Render(content)
	if err != nil {
		return content, err
	}

	return rendered, nil
}
