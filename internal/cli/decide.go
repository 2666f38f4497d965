package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/claimsight/claimsight/internal/model"
	"github.com/claimsight/claimsight/internal/render"
	"github.com/claimsight/claimsight/internal/workflow"
)

var (
	outJSON       string
	decideTimeout time.Duration
	noCache       bool
	noHistory     bool
	llmProvider   string
	llmModel      string
	retrievalURL  string
	collection    string
	topK          int
)

// decideCmd represents the decide command
var decideCmd = &cobra.Command{
	Use:   "decide <claim.json>",
	Short: "Decide coverage for a single claim file",
	Long: `Decide runs one claim through the full workflow:
- Load and validate the claim record
- Generate policy search queries with the configured LLM
- Retrieve matching policy passages plus the declaration page
- Synthesize a coverage recommendation grounded in that text
- Derive the covered/deductible/payout decision deterministically

Example:
  claimsight decide claim.json
  claimsight decide claim.json --json decision.json
  claimsight decide claim.json --llm-provider ollama --llm-model llama3.1`,
	Args: cobra.ExactArgs(1),
	RunE: runDecide,
}

func init() {
	rootCmd.AddCommand(decideCmd)

	// Output flags
	decideCmd.Flags().StringVar(&outJSON, "json", "", "output decision JSON path (optional)")

	// Workflow flags
	decideCmd.Flags().DurationVar(&decideTimeout, "timeout", 2*time.Minute, "overall decision timeout")
	decideCmd.Flags().BoolVar(&noCache, "no-cache", false, "disable retrieval cache (force fresh lookups)")
	decideCmd.Flags().BoolVar(&noHistory, "no-history", false, "skip recording the decision")

	// Retrieval flags
	decideCmd.Flags().StringVar(&retrievalURL, "retrieval-url", "", "policy index endpoint")
	decideCmd.Flags().StringVar(&collection, "collection", "", "policy collection name")
	decideCmd.Flags().IntVar(&topK, "top-k", 0, "passages per search query")

	// LLM flags
	decideCmd.Flags().StringVar(&llmProvider, "llm-provider", "", "LLM provider (openai, anthropic, ollama)")
	decideCmd.Flags().StringVar(&llmModel, "llm-model", "", "LLM model name")
}

// buildConfig layers flag overrides onto the loaded configuration.
func buildConfig() (*model.Config, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	if llmProvider != "" {
		cfg.LLM.Provider = llmProvider
	}
	if llmModel != "" {
		cfg.LLM.Model = llmModel
	}
	if retrievalURL != "" {
		cfg.Retrieval.URL = retrievalURL
	}
	if collection != "" {
		cfg.Retrieval.Collection = collection
	}
	if topK > 0 {
		cfg.Retrieval.TopK = topK
	}
	if noCache {
		cfg.Cache.Enabled = false
	}
	if noHistory {
		cfg.Ledger.Enabled = false
	}
	cfg.Output.Verbose = verbose
	cfg.Output.JSONPath = outJSON

	if err := resolveAPIKeys(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func runDecide(cmd *cobra.Command, args []string) error {
	path := args[0]
	ctx, cancel := context.WithTimeout(context.Background(), decideTimeout)
	defer cancel()

	cfg, err := buildConfig()
	if err != nil {
		return err
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "Deciding: %s\n", path)
		fmt.Fprintf(os.Stderr, "Policy index: %s (%s)\n", cfg.Retrieval.URL, cfg.Retrieval.Collection)
		fmt.Fprintf(os.Stderr, "Reasoner: %s/%s\n", cfg.LLM.Provider, cfg.LLM.Model)
		fmt.Fprintln(os.Stderr)
	}

	var sink workflow.Sink = workflow.NopSink{}
	if verbose {
		sink = workflow.WriterSink{W: os.Stderr}
	}

	runner, cleanup, err := buildRunner(cfg, sink)
	if err != nil {
		return err
	}
	defer cleanup()

	result, err := runner.Run(ctx, path)
	if err != nil {
		return fmt.Errorf("decide failed: %w", err)
	}

	if verbose {
		fmt.Fprintln(os.Stderr)
		fmt.Fprintf(os.Stderr, "✓ Run %s finished in %v\n", result.RunID, result.Elapsed.Round(time.Millisecond))
		fmt.Fprintln(os.Stderr)
	}

	render.Decision(os.Stdout, result.Decision)

	if outJSON != "" {
		if err := render.WriteJSON(outJSON, result.Decision); err != nil {
			return fmt.Errorf("render failed: %w", err)
		}
		if verbose {
			fmt.Fprintf(os.Stderr, "✓ Wrote JSON: %s\n", outJSON)
		}
	}

	return nil
}
