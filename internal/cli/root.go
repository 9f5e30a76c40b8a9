package cli

import (
	"context"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "tepco-rates",
	Short: "Scrape TEPCO tariff documents and resolve the current rates",
	Long: `tepco-rates ingests the published fuel-cost adjustment listing (HTML)
and the renewable-energy levy announcement (PDF), maintains the two rate
series across runs, and writes a snapshot of the rates in effect on the
reference date.`,
	SilenceUsage: true,
}

// ExecuteContext runs the command tree with the given context.
func ExecuteContext(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}
