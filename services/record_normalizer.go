package services

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/9pavankumar/dailyGMPalert/models"
	"github.com/9pavankumar/dailyGMPalert/shared"
)

// Markers the source decorates rows with: a trailing "U" on names flags a
// not-yet-listed issue, a cross glyph in the listing column flags a
// closed or rejected one.
const (
	smeMarker           = "sme"
	closedListingMarker = "❌"
)

var notListedSuffix = regexp.MustCompile(`\s+U$`)

// RecordNormalizer turns the selected raw table into typed IPO records
// using the column resolver and the field parsers.
type RecordNormalizer struct {
	resolver *ColumnResolver
	parsers  *FieldParsers
}

func NewRecordNormalizer() *RecordNormalizer {
	return &RecordNormalizer{
		resolver: NewColumnResolver(),
		parsers:  NewFieldParsers(),
	}
}

// Normalize builds one IpoRecord per table row, preserving row order.
// SME issues and rows whose listing status carries the closed marker are
// excluded. Fails only when no canonical field resolves at all, which
// means the selected table cannot be reduced to the canonical schema.
func (n *RecordNormalizer) Normalize(table *models.RawTable, today time.Time, metrics *shared.RunMetrics) ([]models.IpoRecord, error) {
	indexes := n.resolver.Resolve(table.Headers)
	if !indexes.Resolved() {
		return nil, shared.NewNormalizationError("Normalize",
			fmt.Errorf("no canonical field matched headers %v", table.Headers))
	}
	for _, field := range models.CanonicalFields {
		if indexes[field] < 0 {
			metrics.RecordMissingColumn(string(field))
		}
	}

	records := make([]models.IpoRecord, 0, len(table.Rows))
	for rowIndex, row := range table.Rows {
		metrics.RowsSeen++

		name := cleanName(indexes.Cell(row, models.FieldName))
		listingStatus := collapseWhitespace(indexes.Cell(row, models.FieldListingStatus))

		if name == "" ||
			strings.Contains(strings.ToLower(name), smeMarker) ||
			strings.Contains(listingStatus, closedListingMarker) {
			metrics.RowsExcluded++
			continue
		}

		record := models.IpoRecord{
			Name:             name,
			SubscriptionRaw:  collapseWhitespace(indexes.Cell(row, models.FieldSubscription)),
			ListingStatusRaw: listingStatus,
			SourceRow:        rowIndex,
		}

		record.OpenDate = n.parsers.ParseDate(indexes.Cell(row, models.FieldOpenDate), today)
		record.CloseDate = n.parsers.ParseDate(indexes.Cell(row, models.FieldCloseDate), today)
		if record.CloseDate == nil && indexes.Cell(row, models.FieldCloseDate) != "" {
			metrics.DateParseFails++
		}

		record.SizeCrore = n.parsers.ParseSizeCrore(indexes.Cell(row, models.FieldSize))
		if record.SizeCrore == nil && indexes.Cell(row, models.FieldSize) != "" {
			metrics.SizeParseFails++
		}

		premiumRaw := indexes.Cell(row, models.FieldPremium)
		if collapseWhitespace(premiumRaw) == "" {
			metrics.PremiumRawBlank++
		}
		record.Premium.Amount, record.Premium.Percent = n.parsers.ParsePremium(premiumRaw)

		records = append(records, record)
		metrics.RowsNormalized++
	}

	return records, nil
}

// cleanName trims the name and strips the trailing not-yet-listed marker.
// The marker check is case-sensitive: only a standalone uppercase "U"
// suffix is a marker, anything else is part of the name.
func cleanName(raw string) string {
	name := collapseWhitespace(raw)
	return strings.TrimSpace(notListedSuffix.ReplaceAllString(name, ""))
}
