package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/claimsight/claimsight/internal/ledger"
	"github.com/claimsight/claimsight/internal/llm"
	"github.com/claimsight/claimsight/internal/retrieval"
)

var doctorTimeout time.Duration

// doctorCmd represents the doctor command
var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check that configured backends are reachable",
	Long: `Doctor verifies the pieces a decision run depends on:
- LLM provider credentials and reachability
- Policy index endpoint and collection
- Decision history database

Example:
  claimsight doctor
  claimsight doctor --timeout 10s`,
	Args: cobra.NoArgs,
	RunE: runDoctor,
}

func init() {
	rootCmd.AddCommand(doctorCmd)

	doctorCmd.Flags().DurationVar(&doctorTimeout, "timeout", 30*time.Second, "timeout for connectivity checks")
}

func runDoctor(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), doctorTimeout)
	defer cancel()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	fmt.Println("ClaimSight Doctor")
	fmt.Println()

	if file := viper.ConfigFileUsed(); file != "" {
		fmt.Printf("  Config:       %s\n", file)
	} else {
		fmt.Printf("  Config:       defaults (no config file)\n")
	}
	fmt.Println()

	failures := 0

	// 1. Reasoner
	if err := resolveAPIKeys(cfg); err != nil {
		fmt.Printf("✗ Reasoner:     %v\n", err)
		failures++
	} else if reasoner, err := llm.NewReasoner(llm.ConfigFromModel(cfg.LLM)); err != nil {
		fmt.Printf("✗ Reasoner:     %v\n", err)
		failures++
	} else if !reasoner.IsAvailable(ctx) {
		fmt.Printf("✗ Reasoner:     %s/%s not reachable\n", cfg.LLM.Provider, cfg.LLM.Model)
		failures++
	} else {
		fmt.Printf("✓ Reasoner:     %s/%s\n", cfg.LLM.Provider, cfg.LLM.Model)
	}

	// 2. Policy index
	gateway := retrieval.NewQdrantGateway(retrieval.QdrantConfig{
		URL:        cfg.Retrieval.URL,
		APIKey:     cfg.Retrieval.APIKey,
		Collection: cfg.Retrieval.Collection,
		Timeout:    cfg.Retrieval.Timeout,
	}, nil, nil)
	if err := gateway.Ping(ctx); err != nil {
		fmt.Printf("✗ Policy index: %v\n", err)
		failures++
	} else {
		fmt.Printf("✓ Policy index: %s (collection %s)\n", cfg.Retrieval.URL, cfg.Retrieval.Collection)
	}

	// 3. History database
	if !cfg.Ledger.Enabled {
		fmt.Printf("  History:      disabled\n")
	} else if err := os.MkdirAll(filepath.Dir(ledgerPath(cfg)), 0755); err != nil {
		fmt.Printf("✗ History:      %v\n", err)
		failures++
	} else if led, err := ledger.Open(ledgerPath(cfg)); err != nil {
		fmt.Printf("✗ History:      %v\n", err)
		failures++
	} else {
		_ = led.Close()
		fmt.Printf("✓ History:      %s\n", ledgerPath(cfg))
	}

	fmt.Println()
	if failures > 0 {
		return fmt.Errorf("%d check(s) failed", failures)
	}
	fmt.Println("All checks passed.")

	return nil
}
