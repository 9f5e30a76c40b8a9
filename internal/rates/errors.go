package rates

import (
	"fmt"

	"cloud.google.com/go/civil"
)

// FetchError indicates a source document could not be retrieved. Retriable
// by re-running the whole process; the pipeline never retries internally.
type FetchError struct {
	URL string
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// ExtractionError indicates the document structure was not recognized or a
// confidence check failed. Not retriable without a code or source-document
// fix; the affected series must be left unchanged.
type ExtractionError struct {
	Document string
	Reason   string
	Err      error
}

func (e *ExtractionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("extract %s: %s: %v", e.Document, e.Reason, e.Err)
	}
	return fmt.Sprintf("extract %s: %s", e.Document, e.Reason)
}

func (e *ExtractionError) Unwrap() error { return e.Err }

// NoApplicableRateError indicates no record in the series covers the
// reference date: either the date predates all published data or it falls
// into a gap with no announced value yet.
type NoApplicableRateError struct {
	Date civil.Date
}

func (e *NoApplicableRateError) Error() string {
	return fmt.Sprintf("no applicable rate for %s", e.Date)
}

// ConsistencyError indicates a merged series violates the ordering
// invariant. This cannot happen with well-behaved extractors, so it is
// treated as a defect and fails the run loudly.
type ConsistencyError struct {
	Reason string
}

func (e *ConsistencyError) Error() string {
	return fmt.Sprintf("series consistency: %s", e.Reason)
}
