package rates

import "cloud.google.com/go/civil"

// ResolveRate returns the record in effect on d: the record with the
// greatest period start not after d, provided its period still covers d.
// There is deliberately no fallback. A reference date before all published
// data, or inside a gap with no announced value, must surface as
// NoApplicableRateError rather than default to zero or a nearby rate.
// The series must be sorted, which MergeSeries guarantees.
func ResolveRate(s Series, d civil.Date) (RateRecord, error) {
	for i := len(s) - 1; i >= 0; i-- {
		rec := s[i]
		if rec.PeriodStart.After(d) {
			continue
		}
		if !rec.Covers(d) {
			break
		}
		return rec, nil
	}
	return RateRecord{}, &NoApplicableRateError{Date: d}
}
