package services

import (
	"strings"

	"github.com/9pavankumar/dailyGMPalert/models"
)

// fieldAliases holds the acceptable header spellings per canonical field,
// in preference order. The source page renames columns between redesigns,
// so both exact and substring matching run against this list.
var fieldAliases = map[models.CanonicalField][]string{
	models.FieldName:          {"name", "company", "issuer"},
	models.FieldOpenDate:      {"open", "open date", "opens"},
	models.FieldCloseDate:     {"close", "close date", "closes"},
	models.FieldSize:          {"ipo size", "issue size", "size"},
	models.FieldPremium:       {"gmp", "premium"},
	models.FieldSubscription:  {"sub", "subscription"},
	models.FieldListingStatus: {"listing", "status"},
}

// ColumnResolver maps a raw table's heterogeneous headers onto the
// canonical schema. Resolution runs once per table, not per row.
type ColumnResolver struct{}

func NewColumnResolver() *ColumnResolver {
	return &ColumnResolver{}
}

// ColumnIndexes holds the resolved column index per canonical field;
// -1 marks an absent field (empty string for every row).
type ColumnIndexes map[models.CanonicalField]int

// Resolve maps every canonical field to a column of the table. Duplicate
// or blank headers are tolerated: the first match wins, blanks never
// match.
func (r *ColumnResolver) Resolve(headers []string) ColumnIndexes {
	normalized := make([]string, len(headers))
	for i, header := range headers {
		normalized[i] = normalizeHeader(header)
	}

	indexes := make(ColumnIndexes, len(models.CanonicalFields))
	for _, field := range models.CanonicalFields {
		indexes[field] = resolveField(normalized, fieldAliases[field])
	}
	return indexes
}

// Cell returns the resolved cell for a field, or "" when the field is
// absent or the row is short.
func (idx ColumnIndexes) Cell(row []string, field models.CanonicalField) string {
	col, ok := idx[field]
	if !ok || col < 0 || col >= len(row) {
		return ""
	}
	return row[col]
}

// Resolved reports whether any canonical field found a column.
func (idx ColumnIndexes) Resolved() bool {
	for _, col := range idx {
		if col >= 0 {
			return true
		}
	}
	return false
}

func resolveField(headers []string, aliases []string) int {
	for col, header := range headers {
		if header == "" {
			continue
		}
		for _, alias := range aliases {
			if header == alias {
				return col
			}
		}
	}
	for col, header := range headers {
		if header == "" {
			continue
		}
		for _, alias := range aliases {
			if strings.Contains(header, alias) {
				return col
			}
		}
	}
	return -1
}

// normalizeHeader lowercases and strips the sort glyphs the source
// decorates its headers with.
func normalizeHeader(header string) string {
	header = strings.ReplaceAll(header, "▲▼", "")
	header = strings.ReplaceAll(header, "▲", "")
	header = strings.ReplaceAll(header, "▼", "")
	return strings.ToLower(collapseWhitespace(header))
}
