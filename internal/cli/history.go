package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/claimsight/claimsight/internal/ledger"
)

var (
	historyLimit int
	historyClaim string
)

// historyCmd represents the history command
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recorded decisions",
	Long: `History lists decisions from the local ledger, newest first.

Example:
  claimsight history
  claimsight history --limit 50
  claimsight history --claim CLAIM-0001`,
	Args: cobra.NoArgs,
	RunE: runHistory,
}

func init() {
	rootCmd.AddCommand(historyCmd)

	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "maximum entries to show")
	historyCmd.Flags().StringVar(&historyClaim, "claim", "", "show only decisions for this claim ID")
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	path := ledgerPath(cfg)
	if _, err := os.Stat(path); err != nil {
		fmt.Println("No decision history yet.")
		return nil
	}

	led, err := ledger.Open(path)
	if err != nil {
		return fmt.Errorf("open ledger: %w", err)
	}
	defer func() { _ = led.Close() }()

	ctx := context.Background()
	var entries []ledger.Entry
	if historyClaim != "" {
		entries, err = led.ByClaim(ctx, historyClaim, historyLimit)
	} else {
		entries, err = led.Recent(ctx, historyLimit)
	}
	if err != nil {
		return fmt.Errorf("read ledger: %w", err)
	}

	if len(entries) == 0 {
		fmt.Println("No decision history yet.")
		return nil
	}

	for _, e := range entries {
		verdict := "NOT COVERED"
		if e.Covered {
			verdict = "COVERED"
		}
		fmt.Printf("%s  %-16s %-12s payout %8.2f  run %s  fp %s\n",
			e.CreatedAt.Local().Format("2006-01-02 15:04"),
			e.ClaimID,
			verdict,
			e.Payout,
			shortID(e.RunID),
			shortID(e.Fingerprint),
		)
	}

	return nil
}

// shortID truncates identifiers for one-line display.
func shortID(s string) string {
	if len(s) > 8 {
		return s[:8]
	}
	return s
}
