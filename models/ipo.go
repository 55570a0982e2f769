package models

import (
	"fmt"
	"time"
)

// CanonicalField identifies one of the semantic columns the pipeline
// understands. A raw table maps each field to at most one column.
type CanonicalField string

const (
	FieldName          CanonicalField = "name"
	FieldOpenDate      CanonicalField = "open_date"
	FieldCloseDate     CanonicalField = "close_date"
	FieldSize          CanonicalField = "size"
	FieldPremium       CanonicalField = "premium"
	FieldSubscription  CanonicalField = "subscription"
	FieldListingStatus CanonicalField = "listing_status"
)

// CanonicalFields lists every field in resolution order.
var CanonicalFields = []CanonicalField{
	FieldName,
	FieldOpenDate,
	FieldCloseDate,
	FieldSize,
	FieldPremium,
	FieldSubscription,
	FieldListingStatus,
}

// RawTable is a rectangular grid of cell strings extracted from one HTML
// table. Headers holds the first row when the table had at least two rows;
// otherwise headers are positional ("0", "1", ...). Every row has
// len(Headers) cells, short rows padded with "".
type RawTable struct {
	Headers []string
	Rows    [][]string
}

// CellCount is the substance score used to pick among candidate tables.
func (t *RawTable) CellCount() int {
	return len(t.Rows) * len(t.Headers)
}

// PremiumQuote holds the parsed grey-market premium of one IPO. Either
// component may be missing independently of the other.
type PremiumQuote struct {
	Amount  *float64 `json:"amount,omitempty"`
	Percent *float64 `json:"percent,omitempty"`
}

// Display renders the premium for the digest: "₹50 (2.00%)". A missing
// amount renders as an em-dash placeholder, a missing percent as 0.00%.
func (q PremiumQuote) Display() string {
	amount := "—"
	if q.Amount != nil {
		amount = fmt.Sprintf("₹%.0f", *q.Amount)
	}
	percent := 0.0
	if q.Percent != nil {
		percent = *q.Percent
	}
	return fmt.Sprintf("%s (%.2f%%)", amount, percent)
}

// IpoRecord is one normalized row of the GMP table. Optional fields stay
// nil when the source cell was absent or unparseable; display placeholders
// are applied only at formatting time.
type IpoRecord struct {
	Name             string       `json:"name"`
	OpenDate         *time.Time   `json:"open_date,omitempty"`
	CloseDate        *time.Time   `json:"close_date,omitempty"`
	SizeCrore        *float64     `json:"size_crore,omitempty"`
	Premium          PremiumQuote `json:"premium"`
	SubscriptionRaw  string       `json:"subscription_raw"`
	ListingStatusRaw string       `json:"listing_status_raw"`

	// Computed by the ranker.
	Score float64 `json:"score"`
	Rank  int     `json:"rank"`

	// SourceRow preserves original table order for stable tie-breaks.
	SourceRow int `json:"source_row"`
}

// Digest is the categorized, ranked output of one pipeline run. When
// Partitioned is false only All is populated; otherwise Current and
// Upcoming hold the two ranked lists and All stays empty.
type Digest struct {
	GeneratedFor time.Time   `json:"generated_for"`
	Partitioned  bool        `json:"partitioned"`
	Current      []IpoRecord `json:"current,omitempty"`
	Upcoming     []IpoRecord `json:"upcoming,omitempty"`
	All          []IpoRecord `json:"all,omitempty"`
}

// IsEmpty reports whether no record survived filtering.
func (d *Digest) IsEmpty() bool {
	return len(d.Current) == 0 && len(d.Upcoming) == 0 && len(d.All) == 0
}

// RankedList pairs a category heading with its ranked records.
type RankedList struct {
	Title   string
	Records []IpoRecord
}

// Lists returns the ranked lists in display order with their headings.
func (d *Digest) Lists() []RankedList {
	if d.Partitioned {
		return []RankedList{
			{Title: "Open Now", Records: d.Current},
			{Title: "Upcoming", Records: d.Upcoming},
		}
	}
	return []RankedList{{Title: "Upcoming IPOs - Order of apply", Records: d.All}}
}
