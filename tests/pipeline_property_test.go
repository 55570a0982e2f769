package tests

import (
	"fmt"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/9pavankumar/dailyGMPalert/config"
	"github.com/9pavankumar/dailyGMPalert/models"
	"github.com/9pavankumar/dailyGMPalert/services"
)

var propertyToday = time.Date(2025, time.June, 15, 0, 0, 0, 0, time.UTC)

const survivorSetSize = 8

func openPolicy() config.RankPolicy {
	return config.RankPolicy{RelevanceWindow: config.WindowNotYetClosed}
}

func floatPtr(v float64) *float64 {
	return &v
}

// buildRecords pairs generated sizes and premiums into ranked-ready
// records that all pass the open relevance window.
func buildRecords(sizes, premiums []float64) []models.IpoRecord {
	closeDate := propertyToday.AddDate(0, 0, 3)
	records := make([]models.IpoRecord, len(sizes))
	for i := range sizes {
		records[i] = models.IpoRecord{
			Name:      fmt.Sprintf("Issue %d", i),
			SizeCrore: floatPtr(sizes[i]),
			Premium:   models.PremiumQuote{Amount: floatPtr(premiums[i])},
			CloseDate: &closeDate,
			SourceRow: i,
		}
	}
	return records
}

// TestDateParsingProperties verifies the date parser round-trips any
// day/month/year the source could plausibly print.
func TestDateParsingProperties(t *testing.T) {
	parsers := services.NewFieldParsers()
	properties := gopter.NewProperties(nil)

	properties.Property("day-month-year strings parse back to their components", prop.ForAll(
		func(day, monthIndex, year int) bool {
			month := time.Month(monthIndex)
			// Days capped at 28 so every month is valid.
			text := fmt.Sprintf("%d-%s-%d", day, month.String()[:3], year)

			parsed := parsers.ParseDate(text, propertyToday)
			if parsed == nil {
				t.Logf("failed to parse %q", text)
				return false
			}
			return parsed.Day() == day && parsed.Month() == month && parsed.Year() == year
		},
		gen.IntRange(1, 28),
		gen.IntRange(1, 12),
		gen.IntRange(2020, 2035),
	))

	properties.Property("yearless strings take the reference year", prop.ForAll(
		func(day, monthIndex int) bool {
			month := time.Month(monthIndex)
			text := fmt.Sprintf("%d-%s", day, month.String()[:3])

			parsed := parsers.ParseDate(text, propertyToday)
			if parsed == nil {
				t.Logf("failed to parse %q", text)
				return false
			}
			return parsed.Year() == propertyToday.Year() &&
				parsed.Month() == month && parsed.Day() == day
		},
		gen.IntRange(1, 28),
		gen.IntRange(1, 12),
	))

	properties.TestingRun(t)
}

// TestSizeParsingProperties verifies the Crore normalization rules hold
// for arbitrary magnitudes.
func TestSizeParsingProperties(t *testing.T) {
	parsers := services.NewFieldParsers()
	properties := gopter.NewProperties(nil)

	properties.Property("explicit Cr suffix preserves the value", prop.ForAll(
		func(value int) bool {
			parsed := parsers.ParseSizeCrore(fmt.Sprintf("%d Cr", value))
			return parsed != nil && *parsed == float64(value)
		},
		gen.IntRange(1, 100000),
	))

	properties.Property("Lakh suffix divides by one hundred", prop.ForAll(
		func(value int) bool {
			parsed := parsers.ParseSizeCrore(fmt.Sprintf("%d Lakh", value))
			return parsed != nil && *parsed == float64(value)/100
		},
		gen.IntRange(1, 100000),
	))

	properties.TestingRun(t)
}

// TestScoringProperties verifies the weighted score invariants over
// arbitrary survivor sets.
func TestScoringProperties(t *testing.T) {
	properties := gopter.NewProperties(nil)

	sizesGen := gen.SliceOfN(survivorSetSize, gen.Float64Range(1, 5000))
	premiumsGen := gen.SliceOfN(survivorSetSize, gen.Float64Range(0.1, 500))

	properties.Property("scores stay within the unit interval, ordered descending", prop.ForAll(
		func(sizes, premiums []float64) bool {
			ranker := services.NewRanker(openPolicy())
			digest := ranker.Rank(buildRecords(sizes, premiums), propertyToday)
			if len(digest.All) != survivorSetSize {
				return false
			}

			for i, record := range digest.All {
				if record.Score < 0 || record.Score > 1 {
					t.Logf("score %v outside unit interval", record.Score)
					return false
				}
				if record.Rank != i+1 {
					return false
				}
				if i > 0 && digest.All[i-1].Score < record.Score {
					return false
				}
			}
			return true
		},
		sizesGen,
		premiumsGen,
	))

	properties.Property("the record holding both maxima ranks first", prop.ForAll(
		func(sizes, premiums []float64) bool {
			var maxSize, maxPremium float64
			for i := range sizes {
				if sizes[i] > maxSize {
					maxSize = sizes[i]
				}
				if premiums[i] > maxPremium {
					maxPremium = premiums[i]
				}
			}
			records := buildRecords(sizes, premiums)
			records = append(records, models.IpoRecord{
				Name:      "Dominant",
				SizeCrore: floatPtr(maxSize + 1),
				Premium:   models.PremiumQuote{Amount: floatPtr(maxPremium + 1)},
				CloseDate: records[0].CloseDate,
				SourceRow: len(records),
			})

			ranker := services.NewRanker(openPolicy())
			digest := ranker.Rank(records, propertyToday)
			return len(digest.All) > 0 && digest.All[0].Name == "Dominant" && digest.All[0].Rank == 1
		},
		sizesGen,
		premiumsGen,
	))

	properties.Property("ranking the same input twice yields identical order", prop.ForAll(
		func(sizes, premiums []float64) bool {
			ranker := services.NewRanker(openPolicy())
			first := ranker.Rank(buildRecords(sizes, premiums), propertyToday)
			second := ranker.Rank(buildRecords(sizes, premiums), propertyToday)
			if len(first.All) != len(second.All) {
				return false
			}
			for i := range first.All {
				if first.All[i].Name != second.All[i].Name || first.All[i].Rank != second.All[i].Rank {
					return false
				}
			}
			return true
		},
		sizesGen,
		premiumsGen,
	))

	properties.TestingRun(t)
}

// TestFormattingProperties verifies formatting is pure over arbitrary
// ranked digests.
func TestFormattingProperties(t *testing.T) {
	formatter := services.NewMessageFormatter()
	properties := gopter.NewProperties(nil)

	properties.Property("formatting is deterministic", prop.ForAll(
		func(sizes, premiums []float64) bool {
			ranker := services.NewRanker(openPolicy())
			digest := ranker.Rank(buildRecords(sizes, premiums), propertyToday)
			return formatter.Format(digest) == formatter.Format(digest)
		},
		gen.SliceOfN(5, gen.Float64Range(1, 5000)),
		gen.SliceOfN(5, gen.Float64Range(0.1, 500)),
	))

	properties.TestingRun(t)
}
