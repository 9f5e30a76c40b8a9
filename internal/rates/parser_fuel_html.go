package rates

import (
	"fmt"
	"log"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/text/width"
)

// fuelSectionHeading is the anchor text of the low-voltage fuel adjustment
// section on the published listing.
const fuelSectionHeading = "燃料費調整単価（低圧）"

// standardSLabel identifies the plan column we extract.
const standardSLabel = "スタンダードS"

var (
	yearRe       = regexp.MustCompile(`(\d{4})`)
	monthRe      = regexp.MustCompile(`(\d{1,2})`)
	nonNumericRe = regexp.MustCompile(`[^0-9.]`)
)

// ParseFuelAdjustmentHTML extracts the monthly fuel-cost adjustment series
// for the Standard S plan from the published rate listing. Rows whose value
// does not parse are skipped with a warning, since partial extraction beats
// total failure when the page layout drifts. A missing section, table or
// plan column is an ExtractionError: no safe partial result exists then.
func ParseFuelAdjustmentHTML(html string) (Series, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, &ExtractionError{Document: "fuel_html", Reason: "parse markup", Err: err}
	}

	section := doc.Find("div#anker01").First()
	if section.Length() == 0 {
		// The anchor id changed at least once; fall back to locating the
		// section by its heading text.
		doc.Find("a").EachWithBreak(func(_ int, a *goquery.Selection) bool {
			if strings.Contains(a.Text(), fuelSectionHeading) {
				section = a.Closest("div.faq-element")
				return false
			}
			return true
		})
	}
	if section == nil || section.Length() == 0 {
		return nil, &ExtractionError{Document: "fuel_html", Reason: "low-voltage fuel adjustment section not found"}
	}

	table := section.Find("table").First()
	if table.Length() == 0 {
		return nil, &ExtractionError{Document: "fuel_html", Reason: "rate table not found"}
	}

	// Locate the Standard S column from the header. The leading 適用年月
	// header cell spans the year and month columns, so the only stable
	// coordinate is the offset from the end of the row.
	offsetFromEnd := -1
	table.Find("tr").EachWithBreak(func(_ int, row *goquery.Selection) bool {
		cells := row.Find("th, td")
		n := cells.Length()
		cells.Each(func(i int, c *goquery.Selection) {
			if strings.Contains(normalizeWidth(c.Text()), standardSLabel) {
				offsetFromEnd = n - 1 - i
			}
		})
		return offsetFromEnd < 0
	})
	if offsetFromEnd < 0 {
		return nil, &ExtractionError{Document: "fuel_html", Reason: fmt.Sprintf("%s column not found", standardSLabel)}
	}

	var series Series
	currentYear := 0

	table.Find("tr").Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("td")
		if cells.Length() == 0 {
			return // header-only row
		}
		rowText := normalizeWidth(cells.Text())
		if strings.Contains(rowText, "適用年月") || strings.Contains(rowText, "円/kWh") || strings.Contains(rowText, "燃料費調整単価") {
			return
		}

		var monthCell int
		switch cells.Length() {
		case 4:
			// year | month | other plan | Standard S
			if y := parseYear(cells.Eq(0).Text()); y != 0 {
				currentYear = y
			}
			monthCell = 1
		case 3:
			// continuation row, year carried from the row above
			monthCell = 0
		default:
			return
		}

		month := parseMonth(cells.Eq(monthCell).Text())
		if currentYear == 0 || month < 1 || month > 12 {
			return
		}

		valueCell := cells.Length() - 1 - offsetFromEnd
		if valueCell <= monthCell {
			return
		}
		value, err := parsePrice(cells.Eq(valueCell).Text())
		if err != nil {
			log.Printf("fuel: skipping %d-%02d row: %v", currentYear, month, err)
			return
		}

		end := monthEnd(currentYear, time.Month(month))
		series = append(series, RateRecord{
			PeriodStart: monthStart(currentYear, time.Month(month)),
			PeriodEnd:   &end,
			Value:       value,
			Source:      SourceHTMLTable,
		})
	})

	if len(series) == 0 {
		return nil, &ExtractionError{Document: "fuel_html", Reason: "no rate rows recognized"}
	}

	sort.Slice(series, func(i, j int) bool {
		return series[i].PeriodStart.Before(series[j].PeriodStart)
	})
	return series, nil
}

// normalizeWidth folds fullwidth digits and latin letters to their ASCII
// forms; the listing mixes both freely.
func normalizeWidth(s string) string {
	return width.Fold.String(strings.TrimSpace(s))
}

func parseYear(raw string) int {
	m := yearRe.FindStringSubmatch(normalizeWidth(raw))
	if m == nil {
		return 0
	}
	y, _ := strconv.Atoi(m[1])
	return y
}

func parseMonth(raw string) int {
	m := monthRe.FindStringSubmatch(normalizeWidth(raw))
	if m == nil {
		return 0
	}
	mo, _ := strconv.Atoi(m[1])
	return mo
}

// parsePrice parses a yen-per-kWh cell. ▲ marks a credit (negative value).
func parsePrice(raw string) (float64, error) {
	text := normalizeWidth(raw)
	negative := strings.Contains(text, "▲")
	cleaned := nonNumericRe.ReplaceAllString(text, "")
	if cleaned == "" {
		return 0, fmt.Errorf("no numeric value in %q", strings.TrimSpace(raw))
	}
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, fmt.Errorf("parse %q: %w", strings.TrimSpace(raw), err)
	}
	if negative {
		v = -v
	}
	return v, nil
}
