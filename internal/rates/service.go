package rates

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"cloud.google.com/go/civil"
	"github.com/google/uuid"
)

// Config controls the pipeline service.
type Config struct {
	// OutputPath is the persisted snapshot file, read at the start of a run
	// and atomically replaced at the end.
	OutputPath string
	// ListingURL overrides the fuel-adjustment listing URL (tests).
	ListingURL string
	// HTTPTimeout bounds every document request.
	HTTPTimeout time.Duration
}

// RunOptions selects per-invocation behavior.
type RunOptions struct {
	// HTMLFile parses a local file instead of fetching the listing.
	HTMLFile string
	// ScrapePDF opts into the levy PDF extractor. Off by default: the PDF
	// layout is unstable and a mis-parsed levy silently reaching the
	// canonical snapshot costs more than a stale one.
	ScrapePDF bool
	// AsOf overrides the reference date; the zero value means today.
	AsOf civil.Date
}

// RunResult reports what a run produced and which sources failed.
type RunResult struct {
	RunID         string
	Snapshot      *Snapshot
	FuelExtracted int
	LevyExtracted int
	FuelErr       error
	LevyErr       error
}

// Failed reports whether any source update failed. The process exit code
// reflects this even when a partial snapshot was still published, so an
// external scheduler can notify an operator.
func (r *RunResult) Failed() bool { return r.FuelErr != nil || r.LevyErr != nil }

// Err folds the per-source failures into one error, or nil.
func (r *RunResult) Err() error {
	switch {
	case r.FuelErr != nil && r.LevyErr != nil:
		return fmt.Errorf("fuel: %w; levy: %v", r.FuelErr, r.LevyErr)
	case r.FuelErr != nil:
		return r.FuelErr
	case r.LevyErr != nil:
		return r.LevyErr
	}
	return nil
}

// Service runs the ingestion pipeline: extract, merge, resolve, assemble,
// persist. Each run is stateless apart from the snapshot file.
type Service struct {
	cfg     Config
	fetcher *Fetcher

	// Now supplies the reference clock; swappable so tests can pin the
	// reference date.
	Now func() time.Time

	// parseLevy is swappable so tests can cover the levy run path without
	// shipping a binary fixture document.
	parseLevy func(data []byte, fiscalYear int) (RateRecord, error)
}

func NewService(cfg Config) *Service {
	return &Service{
		cfg:       cfg,
		fetcher:   NewFetcher(cfg.ListingURL, cfg.HTTPTimeout),
		Now:       time.Now,
		parseLevy: ParseLevyPDF,
	}
}

// Fetcher exposes the underlying fetcher so tests can swap its transport.
func (s *Service) Fetcher() *Fetcher { return s.fetcher }

// Run executes one full pipeline pass. Extraction failures abort only their
// own series: the prior series is carried forward unchanged and the run
// still publishes whatever did succeed. That holds even when every attempted
// source fails: the snapshot is rewritten with the carried-forward series and
// current_rates recomputed at the new reference date, and the failure is
// reported through the result. Only a consistency violation or a persistence
// failure aborts the run outright, leaving the prior file untouched.
func (s *Service) Run(ctx context.Context, opts RunOptions) (*RunResult, error) {
	res := &RunResult{RunID: uuid.NewString()}
	started := time.Now()

	ref := opts.AsOf
	if !ref.IsValid() {
		ref = civil.DateOf(s.Now())
	}

	prior, err := LoadSnapshot(s.cfg.OutputPath)
	if err != nil {
		return nil, err
	}
	var fuel Series
	levy := SeedLevySeries()
	if prior != nil {
		fuel = prior.FuelAdjustment
		levy = prior.RenewableEnergyLevy
	}

	// The fuel-adjustment listing is extracted on every run.
	if extracted, err := s.extractFuel(ctx, opts); err != nil {
		log.Printf("run %s: fuel extraction failed, keeping prior series: %v", res.RunID, err)
		res.FuelErr = err
	} else {
		merged, err := MergeSeries(fuel, extracted)
		if err != nil {
			return nil, err
		}
		fuel = merged
		res.FuelExtracted = len(extracted)
	}

	// The levy PDF is only probed when explicitly requested.
	if opts.ScrapePDF {
		if extracted, err := s.extractLevy(ctx, levy, ref.Year); err != nil {
			log.Printf("run %s: levy extraction failed, leaving series unchanged: %v", res.RunID, err)
			res.LevyErr = err
		} else if len(extracted) > 0 {
			merged, err := MergeSeries(levy, extracted)
			if err != nil {
				return nil, err
			}
			levy = merged
			res.LevyExtracted = len(extracted)
		}
	}

	snap := AssembleSnapshot(ref, fuel, levy)
	if snap.CurrentRates.FuelAdjustment == nil {
		log.Printf("run %s: no applicable fuel adjustment for %s", res.RunID, ref)
	}
	if snap.CurrentRates.RenewableEnergyLevy == nil {
		log.Printf("run %s: no applicable levy for %s", res.RunID, ref)
	}

	if err := WriteSnapshot(s.cfg.OutputPath, &snap); err != nil {
		return nil, err
	}
	res.Snapshot = &snap

	log.Printf("run %s: wrote %s (fuel=%d levy=%d records) in %s",
		res.RunID, s.cfg.OutputPath, len(fuel), len(levy), time.Since(started).Round(time.Millisecond))
	return res, nil
}

func (s *Service) extractFuel(ctx context.Context, opts RunOptions) (Series, error) {
	var html string
	if opts.HTMLFile != "" {
		data, err := os.ReadFile(opts.HTMLFile)
		if err != nil {
			return nil, fmt.Errorf("read html file: %w", err)
		}
		html = string(data)
	} else {
		var err error
		html, err = s.fetcher.FetchRatePage(ctx)
		if err != nil {
			return nil, err
		}
	}
	return ParseFuelAdjustmentHTML(html)
}

// extractLevy probes the announcement PDFs for fiscal years the series does
// not cover yet. A PDF that is not published yet is not an error; a PDF
// that exists but fails the confidence checks is.
func (s *Service) extractLevy(ctx context.Context, existing Series, refYear int) (Series, error) {
	var out Series
	for _, fy := range []int{refYear, refYear + 1} {
		if levyCovered(existing, fy) {
			continue
		}
		data, err := s.fetcher.FetchLevyPDF(ctx, fy)
		if err != nil {
			return nil, err
		}
		if data == nil {
			continue
		}
		rec, err := s.parseLevy(data, fy)
		if err != nil {
			return nil, err
		}
		log.Printf("levy: fiscal year %d unit price %.2f yen/kWh", fy, rec.Value)
		out = append(out, rec)
	}
	return out, nil
}

func levyCovered(s Series, fiscalYear int) bool {
	start := civil.Date{Year: fiscalYear, Month: time.April, Day: 1}
	for _, rec := range s {
		if rec.PeriodStart == start {
			return true
		}
	}
	return false
}
