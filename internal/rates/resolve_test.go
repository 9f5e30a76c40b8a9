package rates

import (
	"errors"
	"testing"
	"time"
)

func TestResolveRateBoundaries(t *testing.T) {
	series := Series{
		{PeriodStart: date(2025, time.April, 1), PeriodEnd: dateP(2025, time.December, 31), Value: 3.49, Source: SourcePersisted},
		{PeriodStart: date(2026, time.January, 1), Value: 3.98, Source: SourcePersisted},
	}

	rec, err := ResolveRate(series, date(2025, time.December, 31))
	if err != nil {
		t.Fatalf("resolve 2025-12-31: %v", err)
	}
	if rec.Value != 3.49 {
		t.Errorf("expected 3.49 on the last covered day, got %v", rec.Value)
	}

	rec, err = ResolveRate(series, date(2026, time.January, 24))
	if err != nil {
		t.Fatalf("resolve 2026-01-24: %v", err)
	}
	if rec.Value != 3.98 {
		t.Errorf("expected 3.98 from the open-ended record, got %v", rec.Value)
	}
}

func TestResolveRateBeforeFirstRecord(t *testing.T) {
	series := Series{
		{PeriodStart: date(2025, time.April, 1), Value: 3.49, Source: SourcePersisted},
	}

	_, err := ResolveRate(series, date(2025, time.March, 31))
	var noRate *NoApplicableRateError
	if !errors.As(err, &noRate) {
		t.Fatalf("expected NoApplicableRateError, got %v", err)
	}
}

func TestResolveRateGap(t *testing.T) {
	// A closed record with no successor: dates past its end are a gap with
	// no announced value and must not fall back to the stale rate.
	series := Series{
		{PeriodStart: date(2025, time.December, 1), PeriodEnd: dateP(2025, time.December, 31), Value: -9.43, Source: SourceHTMLTable},
	}

	_, err := ResolveRate(series, date(2026, time.January, 15))
	var noRate *NoApplicableRateError
	if !errors.As(err, &noRate) {
		t.Fatalf("expected NoApplicableRateError in gap, got %v", err)
	}
}

func TestResolveRateEmptySeries(t *testing.T) {
	_, err := ResolveRate(nil, date(2026, time.January, 1))
	var noRate *NoApplicableRateError
	if !errors.As(err, &noRate) {
		t.Fatalf("expected NoApplicableRateError for empty series, got %v", err)
	}
}
