package services

import (
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/9pavankumar/dailyGMPalert/config"
	"github.com/9pavankumar/dailyGMPalert/models"
	"github.com/9pavankumar/dailyGMPalert/shared"
)

// OutcomeKind discriminates pipeline results.
type OutcomeKind string

const (
	// OutcomeNoData means the page held no usable table. This is a
	// successful run, not a failure.
	OutcomeNoData OutcomeKind = "no_data"
	// OutcomeSummary means a digest was produced, possibly with an
	// empty record list.
	OutcomeSummary OutcomeKind = "summary"
)

// RunOutcome is the result of one pipeline pass over a fetched page.
type RunOutcome struct {
	Kind    OutcomeKind
	Digest  *models.Digest
	Message string
}

// Pipeline wires the extraction, normalization, ranking and formatting
// stages into the single-pass run the digest is built from. It holds no
// mutable state between runs.
type Pipeline struct {
	extractor  *TableExtractor
	normalizer *RecordNormalizer
	ranker     *Ranker
	formatter  *MessageFormatter
}

func NewPipeline(policy config.RankPolicy) *Pipeline {
	return &Pipeline{
		extractor:  NewTableExtractor(),
		normalizer: NewRecordNormalizer(),
		ranker:     NewRanker(policy),
		formatter:  NewMessageFormatter(),
	}
}

// Run reduces raw page markup to a formatted digest. Missing or
// degenerate tables surface as the NoData outcome; a table that cannot be
// reduced to canonical fields fails with a normalization error.
func (p *Pipeline) Run(rawHTML string, today time.Time) (*RunOutcome, error) {
	logger := logrus.WithFields(logrus.Fields{
		"component": "Pipeline",
		"run_id":    uuid.New().String(),
	})
	metrics := shared.NewRunMetrics()

	candidates, err := p.extractor.ExtractCandidates(rawHTML)
	if err != nil {
		return nil, shared.NewNormalizationError("ExtractCandidates", err)
	}
	metrics.CandidateTables = len(candidates)

	table := p.extractor.SelectTable(candidates)
	if table == nil {
		logger.WithField("candidate_tables", len(candidates)).Info("No usable table on page")
		metrics.LogSummary()
		return &RunOutcome{Kind: OutcomeNoData}, nil
	}
	logger.WithFields(logrus.Fields{
		"candidate_tables": len(candidates),
		"rows":             len(table.Rows),
		"columns":          len(table.Headers),
	}).Info("Selected data table")

	records, err := p.normalizer.Normalize(table, today, metrics)
	if err != nil {
		metrics.LogSummary()
		return nil, err
	}

	digest := p.ranker.Rank(records, today)
	for _, list := range digest.Lists() {
		metrics.RowsRanked += len(list.Records)
	}
	metrics.LogSummary()

	return &RunOutcome{
		Kind:    OutcomeSummary,
		Digest:  digest,
		Message: p.formatter.Format(digest),
	}, nil
}
