package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/claimsight/claimsight/internal/render"
	"github.com/claimsight/claimsight/internal/worker"
	"github.com/claimsight/claimsight/internal/workflow"
)

var (
	concurrency  int
	outputDir    string
	batchTimeout time.Duration
	// noCache, noHistory and the LLM flags are defined in decide.go and shared here
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch <dir|list.txt>",
	Short: "Decide multiple claims in parallel",
	Long: `Batch decides many claims concurrently:
- Read claim files from a directory (*.json) or a manifest (one path per line)
- Run each claim through the full workflow with a worker pool
- Write one decision JSON per claim into the output directory

Example:
  claimsight batch ./claims
  claimsight batch claims.txt --concurrency 8 --output-dir ./decisions
  claimsight batch ./claims --concurrency 4 --timeout 20m`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	// Concurrency flags
	batchCmd.Flags().IntVar(&concurrency, "concurrency", runtime.NumCPU(), "number of concurrent workers")
	batchCmd.Flags().StringVar(&outputDir, "output-dir", "./claimsight-decisions", "output directory for decision JSON")
	batchCmd.Flags().DurationVar(&batchTimeout, "timeout", 10*time.Minute, "total timeout for batch processing")

	// Inherit flags from decide command
	batchCmd.Flags().BoolVar(&noCache, "no-cache", false, "disable retrieval cache (force fresh lookups)")
	batchCmd.Flags().BoolVar(&noHistory, "no-history", false, "skip recording decisions")
	batchCmd.Flags().StringVar(&retrievalURL, "retrieval-url", "", "policy index endpoint")
	batchCmd.Flags().StringVar(&collection, "collection", "", "policy collection name")

	// LLM flags
	batchCmd.Flags().StringVar(&llmProvider, "llm-provider", "", "LLM provider (openai, anthropic, ollama)")
	batchCmd.Flags().StringVar(&llmModel, "llm-model", "", "LLM model name")
}

func runBatch(cmd *cobra.Command, args []string) error {
	source := args[0]
	ctx, cancel := context.WithTimeout(context.Background(), batchTimeout)
	defer cancel()

	cfg, err := buildConfig()
	if err != nil {
		return err
	}
	cfg.Concurrency.BatchWorkers = concurrency

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  ClaimSight Batch Processing\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Input:        %s\n", source)
	fmt.Fprintf(os.Stderr, "  Workers:      %d\n", concurrency)
	fmt.Fprintf(os.Stderr, "  Output dir:   %s\n", outputDir)
	fmt.Fprintf(os.Stderr, "  Timeout:      %v\n", batchTimeout)
	fmt.Fprintf(os.Stderr, "  Reasoner:     %s/%s\n", cfg.LLM.Provider, cfg.LLM.Model)
	fmt.Fprintf(os.Stderr, "\n")

	// Create output directory
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	runner, cleanup, err := buildRunner(cfg, workflow.NopSink{})
	if err != nil {
		return err
	}
	defer cleanup()

	processor := worker.NewBatchProcessor(runner, concurrency)

	fmt.Fprintf(os.Stderr, "⚙️  Deciding claims with %d workers...\n", concurrency)
	fmt.Fprintf(os.Stderr, "\n")

	var results []*worker.DecideResult
	info, err := os.Stat(source)
	switch {
	case err != nil:
		return fmt.Errorf("stat %s: %w", source, err)
	case info.IsDir():
		results, err = processor.ProcessDir(ctx, source)
	default:
		results, err = processor.ProcessList(ctx, source)
	}
	if err != nil {
		return fmt.Errorf("process %s: %w", source, err)
	}

	// Process results
	successCount := 0
	failureCount := 0

	for _, result := range results {
		if result.Error != nil {
			failureCount++
			fmt.Fprintf(os.Stderr, "✗ %s: %v\n", result.Path, result.Error)
			continue
		}

		decision := result.Run.Decision
		jsonPath := filepath.Join(outputDir, sanitizeFilename(decision.ClaimID)+".json")
		if err := render.WriteJSON(jsonPath, decision); err != nil {
			failureCount++
			fmt.Fprintf(os.Stderr, "✗ %s: failed to write JSON: %v\n", result.Path, err)
			continue
		}

		successCount++
		fmt.Fprintf(os.Stderr, "✓ %s\n", render.Line(decision))
	}

	// Summary
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  Batch Complete\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Total:     %d claims\n", len(results))
	fmt.Fprintf(os.Stderr, "  Success:   %d\n", successCount)
	fmt.Fprintf(os.Stderr, "  Failures:  %d\n", failureCount)
	fmt.Fprintf(os.Stderr, "  Output:    %s\n", outputDir)
	fmt.Fprintf(os.Stderr, "\n")

	if failureCount > 0 {
		return fmt.Errorf("%d of %d claims failed", failureCount, len(results))
	}

	return nil
}

// sanitizeFilename sanitizes a string for use as a filename
func sanitizeFilename(s string) string {
	replacer := strings.NewReplacer(
		"/", "_",
		"\\", "_",
		":", "_",
		"*", "_",
		"?", "_",
		"\"", "_",
		"<", "_",
		">", "_",
		"|", "_",
		" ", "-",
	)
	s = replacer.Replace(s)

	if s == "" || s == "." || s == ".." {
		s = "decision"
	}

	// Limit length
	if len(s) > 100 {
		s = s[:100]
	}

	return s
}
