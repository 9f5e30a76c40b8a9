package cli

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	"github.com/mkoda/tepco-rates/internal/config"
	"github.com/mkoda/tepco-rates/internal/metrics"
	"github.com/mkoda/tepco-rates/internal/notify"
	"github.com/mkoda/tepco-rates/internal/rates"
)

var (
	watchSchedule    string
	watchMetricsAddr string
	watchScrapePDF   bool
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Run the pipeline on a schedule",
	Long: `watch plays the external-scheduler role: it re-runs the whole pipeline
on a cron schedule, serves prometheus metrics, and mails the operator when a
run fails. The pipeline itself stays single-shot and stateless.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.FromEnv()
		if watchSchedule != "" {
			cfg.Schedule = watchSchedule
		}
		if watchMetricsAddr != "" {
			cfg.MetricsAddr = watchMetricsAddr
		}
		return runWatch(cmd.Context(), cfg)
	},
}

func init() {
	watchCmd.Flags().StringVar(&watchSchedule, "schedule", "", "cron schedule (default from TEPCO_RATES_SCHEDULE)")
	watchCmd.Flags().StringVar(&watchMetricsAddr, "metrics-addr", "", "prometheus listen address (default from TEPCO_RATES_METRICS_ADDR)")
	watchCmd.Flags().BoolVar(&watchScrapePDF, "scrape-pdf", false, "also probe the renewable-energy levy PDF on each run")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(ctx context.Context, cfg config.Config) error {
	sched, err := cron.ParseStandard(cfg.Schedule)
	if err != nil {
		return fmt.Errorf("parse schedule %q: %w", cfg.Schedule, err)
	}

	if cfg.MetricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		srv := &http.Server{Addr: cfg.MetricsAddr, Handler: mux}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Printf("watch: metrics server failed: %v", err)
			}
		}()
		defer srv.Close()
	}

	mailer := notify.NewMailer(cfg.NotifyAPIKey, cfg.NotifyFrom, cfg.NotifyTo)
	svc := rates.NewService(rates.Config{
		OutputPath:  cfg.OutputPath,
		ListingURL:  cfg.ListingURL,
		HTTPTimeout: cfg.HTTPTimeout,
	})

	log.Printf("watch: starting, schedule=%q output=%s", cfg.Schedule, cfg.OutputPath)

	// Run once immediately, then follow the schedule.
	doRun(ctx, svc, mailer)
	for {
		timer := time.NewTimer(time.Until(sched.Next(time.Now())))
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
			doRun(ctx, svc, mailer)
		}
	}
}

func doRun(ctx context.Context, svc *rates.Service, mailer *notify.Mailer) {
	started := time.Now()
	res, err := svc.Run(ctx, rates.RunOptions{ScrapePDF: watchScrapePDF})

	runErr := err
	if runErr == nil {
		runErr = res.Err()
	}
	metrics.UpdateRunMetrics(started, runErr)

	if res != nil {
		if res.FuelErr != nil {
			metrics.ExtractionFailuresTotal.WithLabelValues("fuel_html").Inc()
		} else {
			metrics.RecordsExtracted.WithLabelValues("fuel_adjustment").Set(float64(res.FuelExtracted))
		}
		if res.LevyErr != nil {
			metrics.ExtractionFailuresTotal.WithLabelValues("levy_pdf").Inc()
		} else if res.LevyExtracted > 0 {
			metrics.RecordsExtracted.WithLabelValues("renewable_energy_levy").Set(float64(res.LevyExtracted))
		}
		if res.Snapshot != nil {
			if v := res.Snapshot.CurrentRates.FuelAdjustment; v != nil {
				metrics.CurrentFuelAdjustment.Set(*v)
			}
			if v := res.Snapshot.CurrentRates.RenewableEnergyLevy; v != nil {
				metrics.CurrentLevy.Set(*v)
			}
		}
	}

	if runErr == nil {
		return
	}
	log.Printf("watch: run failed: %v", runErr)
	if mailer.Enabled() {
		runID := "unknown"
		if res != nil {
			runID = res.RunID
		}
		if err := mailer.SendFailure(runID, runErr); err != nil {
			log.Printf("watch: failure notification: %v", err)
		}
	}
}
