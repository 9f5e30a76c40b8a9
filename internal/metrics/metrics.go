package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RunLastTimestamp = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "tepco_rates_run_last_timestamp",
		Help: "Unix timestamp of the last completed pipeline run",
	})

	RunLastDurationSeconds = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "tepco_rates_run_last_duration_seconds",
		Help: "Duration of the last completed pipeline run",
	})

	RunFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tepco_rates_run_failures_total",
		Help: "Total number of pipeline runs that reported any failure",
	})

	ExtractionFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tepco_rates_extraction_failures_total",
			Help: "Total number of failed extractions per source document",
		},
		[]string{"document"},
	)

	RecordsExtracted = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "tepco_rates_records_extracted",
			Help: "Records produced by the last extraction per series",
		},
		[]string{"series"},
	)

	CurrentFuelAdjustment = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "tepco_rates_current_fuel_adjustment_yen_per_kwh",
		Help: "Resolved fuel adjustment unit price as of the last run",
	})

	CurrentLevy = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "tepco_rates_current_levy_yen_per_kwh",
		Help: "Resolved renewable-energy levy unit price as of the last run",
	})
)

// UpdateRunMetrics records timing and outcome for one pipeline run.
func UpdateRunMetrics(startedAt time.Time, err error) {
	RunLastDurationSeconds.Set(time.Since(startedAt).Seconds())
	RunLastTimestamp.Set(float64(time.Now().Unix()))
	if err != nil {
		RunFailuresTotal.Inc()
	}
}
