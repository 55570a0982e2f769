package shared

import "github.com/sirupsen/logrus"

// RunMetrics tracks the data-quality outcome of one pipeline run:
// how many candidate tables were seen, how many rows survived each
// stage, and which field parsers came up empty.
type RunMetrics struct {
	CandidateTables  int
	RowsSeen         int
	RowsExcluded     int
	RowsNormalized   int
	RowsRanked       int
	DateParseFails   int
	SizeParseFails   int
	PremiumRawBlank  int
	MissingColumns   []string
}

// NewRunMetrics creates a zeroed metrics tracker for one run.
func NewRunMetrics() *RunMetrics {
	return &RunMetrics{}
}

// RecordMissingColumn notes a canonical field with no matching column.
func (m *RunMetrics) RecordMissingColumn(field string) {
	m.MissingColumns = append(m.MissingColumns, field)
}

// LogSummary emits the run outcome as a single structured log line.
func (m *RunMetrics) LogSummary() {
	logrus.WithFields(logrus.Fields{
		"candidate_tables":  m.CandidateTables,
		"rows_seen":         m.RowsSeen,
		"rows_excluded":     m.RowsExcluded,
		"rows_normalized":   m.RowsNormalized,
		"rows_ranked":       m.RowsRanked,
		"date_parse_fails":  m.DateParseFails,
		"size_parse_fails":  m.SizeParseFails,
		"premium_raw_blank": m.PremiumRawBlank,
		"missing_columns":   m.MissingColumns,
	}).Info("Pipeline run metrics summary")
}
