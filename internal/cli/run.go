package cli

import (
	"fmt"

	"cloud.google.com/go/civil"
	"github.com/spf13/cobra"

	"github.com/mkoda/tepco-rates/internal/config"
	"github.com/mkoda/tepco-rates/internal/rates"
)

var (
	runScrapePDF bool
	runOutput    string
	runAsOf      string
)

var runCmd = &cobra.Command{
	Use:   "run [html-file]",
	Short: "Execute one pipeline run",
	Long: `run fetches the fuel-adjustment listing (or parses a local HTML file
when given), optionally probes the levy PDF, merges the extracted records
into the persisted series, and writes the resolved snapshot. The exit code
is non-zero when any source failed, even if a partial snapshot was still
published.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.FromEnv()
		if runOutput != "" {
			cfg.OutputPath = runOutput
		}

		opts := rates.RunOptions{ScrapePDF: runScrapePDF}
		if len(args) == 1 {
			opts.HTMLFile = args[0]
		}
		if runAsOf != "" {
			d, err := civil.ParseDate(runAsOf)
			if err != nil {
				return fmt.Errorf("invalid --as-of date %q: %w", runAsOf, err)
			}
			opts.AsOf = d
		}

		svc := rates.NewService(rates.Config{
			OutputPath:  cfg.OutputPath,
			ListingURL:  cfg.ListingURL,
			HTTPTimeout: cfg.HTTPTimeout,
		})
		res, err := svc.Run(cmd.Context(), opts)
		if err != nil {
			return err
		}
		return res.Err()
	},
}

func init() {
	runCmd.Flags().BoolVar(&runScrapePDF, "scrape-pdf", false, "also probe the renewable-energy levy PDF")
	runCmd.Flags().StringVarP(&runOutput, "output", "o", "", "snapshot file (default from TEPCO_RATES_OUTPUT)")
	runCmd.Flags().StringVar(&runAsOf, "as-of", "", "reference date YYYY-MM-DD (default today)")
	rootCmd.AddCommand(runCmd)
}
