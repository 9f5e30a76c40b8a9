package rates

import (
	"time"

	"cloud.google.com/go/civil"
)

// Source records where a rate record came from. Merge precedence depends on
// it: manual corrections are never overwritten by a fresh extraction.
type Source string

const (
	SourceHTMLTable   Source = "html_table"
	SourcePDFDocument Source = "pdf_document"
	SourcePersisted   Source = "persisted"
	SourceManual      Source = "manual"
)

// RateRecord is one dated entry in a rate series. PeriodEnd is inclusive;
// nil means open-ended, i.e. the most recent record with no announced
// successor yet.
type RateRecord struct {
	PeriodStart civil.Date  `json:"period_start"`
	PeriodEnd   *civil.Date `json:"period_end,omitempty"`
	Value       float64     `json:"value"`
	Source      Source      `json:"source"`
}

// Covers reports whether d falls within the record's period.
func (r RateRecord) Covers(d civil.Date) bool {
	if d.Before(r.PeriodStart) {
		return false
	}
	return r.PeriodEnd == nil || !r.PeriodEnd.Before(d)
}

// Series is an ordered sequence of rate records. The same type backs both
// the fuel-adjustment series (monthly periods) and the renewable-energy
// levy series (fiscal-year periods); the two are maintained independently
// and never mixed.
type Series []RateRecord

// CurrentRates is the resolved as-of-date view. A nil value means the
// resolver found no record covering the reference date; it serializes as
// JSON null so downstream consumers can tell "unresolved" from zero.
type CurrentRates struct {
	Year                int      `json:"year"`
	Month               int      `json:"month"`
	DateISO             string   `json:"date_iso"`
	FuelAdjustment      *float64 `json:"fuel_adjustment"`
	RenewableEnergyLevy *float64 `json:"renewable_energy_levy"`
}

// Snapshot is the persisted output document. The two series are the durable
// state carried from run to run; everything else is recomputed and the
// whole document is replaced atomically on each successful run.
type Snapshot struct {
	CurrentRates        CurrentRates  `json:"current_rates"`
	FuelAdjustment      Series        `json:"fuel_adjustment"`
	StandardS           PlanConstants `json:"standard_s"`
	RenewableEnergyLevy Series        `json:"renewable_energy_levy"`
}

// PlanConstants describes the fixed Standard S tariff plan. Hand-maintained,
// never scraped.
type PlanConstants struct {
	BaseRatePer10A float64            `json:"base_rate_per_10a"`
	BaseRates      map[string]float64 `json:"base_rates"`
	UsageRates     []UsageTier        `json:"usage_rates"`
}

// UsageTier is one tier of the per-kWh unit price table. Max is nil for the
// unbounded top tier.
type UsageTier struct {
	Min   int     `json:"min"`
	Max   *int    `json:"max"`
	Price float64 `json:"price"`
}

func monthStart(year int, month time.Month) civil.Date {
	return civil.Date{Year: year, Month: month, Day: 1}
}

func monthEnd(year int, month time.Month) civil.Date {
	// Day zero of the following month is the last day of this one.
	return civil.DateOf(time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC))
}
