package rates

import (
	"fmt"
	"sort"

	"cloud.google.com/go/civil"
)

// MergeSeries combines a previously persisted series with a freshly
// extracted one. Records are keyed by period start; the new extraction wins
// on collision except against manual corrections, which always survive.
// After merging, every open-ended record with a chronological successor is
// closed off to the day before that successor starts, so only the newest
// record can remain open. Merging the empty series is a no-op and repeated
// merges of the same extraction are idempotent.
func MergeSeries(persisted, extracted Series) (Series, error) {
	byStart := make(map[civil.Date]int, len(persisted)+len(extracted))
	merged := make(Series, 0, len(persisted)+len(extracted))

	for _, rec := range persisted {
		if _, ok := byStart[rec.PeriodStart]; ok {
			return nil, &ConsistencyError{Reason: fmt.Sprintf("duplicate period_start %s in persisted series", rec.PeriodStart)}
		}
		byStart[rec.PeriodStart] = len(merged)
		merged = append(merged, rec)
	}

	seen := make(map[civil.Date]bool, len(extracted))
	for _, rec := range extracted {
		if seen[rec.PeriodStart] {
			// An extractor emitting the same month twice is a parser defect
			// and must fail loudly, same as a corrupted persisted file.
			return nil, &ConsistencyError{Reason: fmt.Sprintf("duplicate period_start %s in extracted series", rec.PeriodStart)}
		}
		seen[rec.PeriodStart] = true
		if i, ok := byStart[rec.PeriodStart]; ok {
			if merged[i].Source == SourceManual {
				// Hand-verified values are never overwritten automatically.
				continue
			}
			merged[i] = rec
			continue
		}
		byStart[rec.PeriodStart] = len(merged)
		merged = append(merged, rec)
	}

	sort.Slice(merged, func(i, j int) bool {
		return merged[i].PeriodStart.Before(merged[j].PeriodStart)
	})

	for i := 0; i < len(merged)-1; i++ {
		if merged[i].PeriodEnd == nil {
			end := merged[i+1].PeriodStart.AddDays(-1)
			merged[i].PeriodEnd = &end
		}
	}

	if err := checkOrdering(merged); err != nil {
		return nil, err
	}
	return merged, nil
}

// checkOrdering enforces the series invariant: strictly increasing period
// starts and no overlap between consecutive records. A violation here is an
// extractor defect, not a user-facing condition.
func checkOrdering(s Series) error {
	for i, rec := range s {
		if rec.PeriodEnd != nil && rec.PeriodEnd.Before(rec.PeriodStart) {
			return &ConsistencyError{Reason: fmt.Sprintf("record %s ends %s before it starts", rec.PeriodStart, rec.PeriodEnd)}
		}
		if i == 0 {
			continue
		}
		prev := s[i-1]
		if !prev.PeriodStart.Before(rec.PeriodStart) {
			return &ConsistencyError{Reason: fmt.Sprintf("period_start %s does not increase after %s", rec.PeriodStart, prev.PeriodStart)}
		}
		if prev.PeriodEnd == nil || !prev.PeriodEnd.Before(rec.PeriodStart) {
			return &ConsistencyError{Reason: fmt.Sprintf("record %s overlaps successor %s", prev.PeriodStart, rec.PeriodStart)}
		}
	}
	return nil
}
