package rates

import (
	"bytes"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"

	"cloud.google.com/go/civil"
	pdf "github.com/ledongthuc/pdf"
	"golang.org/x/text/unicode/norm"
)

// Plausible bounds for the levy unit price in yen per kWh. A value outside
// this range means the pattern matched some other figure in the document.
const (
	levyMinPlausible = 0.5
	levyMaxPlausible = 10.0
)

var (
	levyLabelRe    = regexp.MustCompile(`単価[^0-9]{0,40}(\d+(?:\.\d+)?)円`)
	levyFallbackRe = regexp.MustCompile(`賦課金[^0-9]{0,40}(\d+\.\d+)円`)
)

// ParseLevyPDF extracts the renewable-energy levy for the given fiscal year
// from the published announcement PDF. The PDF layout is far less stable
// than the HTML listing and a mis-parsed levy silently reaching the
// snapshot is expensive, so every ambiguity is an ExtractionError and the
// caller must leave the levy series untouched.
func ParseLevyPDF(data []byte, fiscalYear int) (RateRecord, error) {
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return RateRecord{}, &ExtractionError{Document: "levy_pdf", Reason: "open pdf", Err: err}
	}

	rc, err := r.GetPlainText()
	if err != nil {
		return RateRecord{}, &ExtractionError{Document: "levy_pdf", Reason: "extract pdf text", Err: err}
	}

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, rc); err != nil {
		return RateRecord{}, &ExtractionError{Document: "levy_pdf", Reason: "read pdf text", Err: err}
	}

	return ParseLevyText(buf.String(), fiscalYear)
}

// ParseLevyText parses a plain-text representation of the levy announcement.
// Split out from ParseLevyPDF so tests can exercise the matching logic
// without a binary fixture. The announcement mixes fullwidth and halfwidth
// figures, so the text is NFKC-normalized before matching.
func ParseLevyText(text string, fiscalYear int) (RateRecord, error) {
	text = norm.NFKC.String(text)
	text = strings.NewReplacer("\n", "", "\r", "").Replace(text)

	matches := levyLabelRe.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		matches = levyFallbackRe.FindAllStringSubmatch(text, -1)
	}
	if len(matches) == 0 {
		return RateRecord{}, &ExtractionError{Document: "levy_pdf", Reason: "levy unit price label not found"}
	}
	// The label must identify a single figure. Two different values next to
	// 単価 means we cannot tell which one is the levy.
	for _, m := range matches[1:] {
		if m[1] != matches[0][1] {
			return RateRecord{}, &ExtractionError{Document: "levy_pdf", Reason: fmt.Sprintf("ambiguous unit price: %s vs %s", matches[0][1], m[1])}
		}
	}

	value, err := strconv.ParseFloat(matches[0][1], 64)
	if err != nil {
		return RateRecord{}, &ExtractionError{Document: "levy_pdf", Reason: fmt.Sprintf("parse %q", matches[0][1]), Err: err}
	}
	if value < levyMinPlausible || value > levyMaxPlausible {
		return RateRecord{}, &ExtractionError{
			Document: "levy_pdf",
			Reason:   fmt.Sprintf("value %.2f outside plausible range [%.1f, %.1f]", value, levyMinPlausible, levyMaxPlausible),
		}
	}

	// Levy periods are fiscal-year aligned; the record stays open-ended
	// until the merger sees a successor.
	return RateRecord{
		PeriodStart: civil.Date{Year: fiscalYear, Month: time.April, Day: 1},
		Value:       value,
		Source:      SourcePDFDocument,
	}, nil
}
