package services

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// FieldParsers converts raw table cells into typed values. All parsers
// return nil on failure: unparseable cells are a data-quality condition of
// the source page, never a run fault.
type FieldParsers struct{}

func NewFieldParsers() *FieldParsers {
	return &FieldParsers{}
}

// dateLayouts are tried in order. Layouts without a year get the year of
// the caller-supplied reference date.
var dateLayouts = []struct {
	layout  string
	hasYear bool
}{
	{"2-Jan-2006", true},
	{"2-Jan-06", true},
	{"2-Jan", false},
	{"2 Jan 2006", true},
	{"2 Jan", false},
	{"2 January 2006", true},
	{"2 January", false},
	{"02/01/2006", true},
	{"2006-01-02", true},
}

var dayMonthPattern = regexp.MustCompile(`^\s*(\d{1,2})[-\s]+([A-Za-z]{3,})`)

var monthsByPrefix = map[string]time.Month{
	"jan": time.January, "feb": time.February, "mar": time.March,
	"apr": time.April, "may": time.May, "jun": time.June,
	"jul": time.July, "aug": time.August, "sep": time.September,
	"oct": time.October, "nov": time.November, "dec": time.December,
}

// ParseDate parses free-form date strings like "12-Oct", "12-Oct-2025" or
// "12 October". Yearless forms assume the year of reference.
func (p *FieldParsers) ParseDate(raw string, reference time.Time) *time.Time {
	text := collapseWhitespace(raw)
	if text == "" || isPlaceholder(text) {
		return nil
	}

	for _, candidate := range dateLayouts {
		parsed, err := time.Parse(candidate.layout, text)
		if err != nil {
			continue
		}
		if !candidate.hasYear {
			parsed = time.Date(reference.Year(), parsed.Month(), parsed.Day(), 0, 0, 0, 0, time.UTC)
		}
		result := time.Date(parsed.Year(), parsed.Month(), parsed.Day(), 0, 0, 0, 0, time.UTC)
		return &result
	}

	// Last resort: a leading 1-2 digit day plus a month token, combined
	// with the reference year.
	match := dayMonthPattern.FindStringSubmatch(text)
	if match == nil {
		return nil
	}
	day, err := strconv.Atoi(match[1])
	if err != nil || day < 1 || day > 31 {
		return nil
	}
	month, ok := monthsByPrefix[strings.ToLower(match[2])[:3]]
	if !ok {
		return nil
	}
	result := time.Date(reference.Year(), month, day, 0, 0, 0, 0, time.UTC)
	if result.Day() != day {
		// Day overflowed the month (e.g. 31-Feb rolled over).
		return nil
	}
	return &result
}

var sizePattern = regexp.MustCompile(`(?i)^(?:₹|rs\.?)?\s*([\d,]+(?:\.\d+)?)\s*(cr|crore|crores|l|lakh|lakhs)?\.?$`)

// ParseSizeCrore normalizes a monetary issue size to Crore. "250 Cr" keeps
// its value, "650 Lakh" divides by 100, bare numbers above 1000 are taken
// as raw currency units and divided by 1e7.
func (p *FieldParsers) ParseSizeCrore(raw string) *float64 {
	text := collapseWhitespace(raw)
	if text == "" || isPlaceholder(text) {
		return nil
	}

	match := sizePattern.FindStringSubmatch(text)
	if match == nil {
		return nil
	}
	value, err := strconv.ParseFloat(strings.ReplaceAll(match[1], ",", ""), 64)
	if err != nil || value < 0 {
		return nil
	}

	switch strings.ToLower(match[2]) {
	case "cr", "crore", "crores":
		return &value
	case "l", "lakh", "lakhs":
		value /= 100
		return &value
	}

	// Bare numeric: values above 1000 are assumed to be raw currency
	// units. Known precision risk: legitimately large Crore values get
	// misclassified; preserved because the upstream page is ambiguous.
	if value > 1000 {
		value /= 10_000_000
	}
	return &value
}

var (
	premiumAmountPattern  = regexp.MustCompile(`₹\s*(-?[\d,]+(?:\.\d+)?)`)
	premiumPercentPattern = regexp.MustCompile(`(-?\d+(?:\.\d+)?)\s*%`)
)

// ParsePremium extracts the grey-market premium amount and percentage
// from strings like "₹ 50 (2.00%)". The percent may appear bare or
// parenthesized; the first match wins.
func (p *FieldParsers) ParsePremium(raw string) (amount, percent *float64) {
	text := collapseWhitespace(raw)
	if text == "" || isPlaceholder(text) {
		return nil, nil
	}

	if match := premiumAmountPattern.FindStringSubmatch(text); match != nil {
		if value, err := strconv.ParseFloat(strings.ReplaceAll(match[1], ",", ""), 64); err == nil {
			amount = &value
		}
	}
	if match := premiumPercentPattern.FindStringSubmatch(text); match != nil {
		if value, err := strconv.ParseFloat(match[1], 64); err == nil {
			percent = &value
		}
	}
	return amount, percent
}

var whitespacePattern = regexp.MustCompile(`\s+`)

func collapseWhitespace(text string) string {
	text = strings.ReplaceAll(text, " ", " ")
	return strings.TrimSpace(whitespacePattern.ReplaceAllString(text, " "))
}

// isPlaceholder recognizes the dash variants the source renders for
// missing cells.
func isPlaceholder(text string) bool {
	switch text {
	case "-", "–", "—", "--", "N/A", "n/a", "NA":
		return true
	}
	return false
}
