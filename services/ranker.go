package services

import (
	"sort"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/9pavankumar/dailyGMPalert/config"
	"github.com/9pavankumar/dailyGMPalert/models"
)

// Score weights: issue size dominates, premium refines. Taken unchanged
// from the production digest.
const (
	sizeWeight    = 0.7
	premiumWeight = 0.3
)

const slidingWindowHorizonDays = 5

// Ranker applies the relevance window and minimum thresholds, computes
// the weighted desirability score and assigns ranks. All behavior
// variants are policy values, never code forks.
type Ranker struct {
	policy config.RankPolicy
}

func NewRanker(policy config.RankPolicy) *Ranker {
	return &Ranker{policy: policy}
}

// Rank filters and ranks the normalized records for the given run date.
// Scores are set-relative: size and premium are normalized by the maxima
// of the surviving set, so re-running over a different set changes every
// score even for an unchanged record. That is the intended semantics.
func (r *Ranker) Rank(records []models.IpoRecord, today time.Time) *models.Digest {
	today = dateOnly(today)

	var survivors []models.IpoRecord
	for _, record := range records {
		if r.relevant(record, today) && r.aboveThresholds(record) {
			survivors = append(survivors, record)
		}
	}

	logrus.WithFields(logrus.Fields{
		"component":        "Ranker",
		"records_in":       len(records),
		"records_kept":     len(survivors),
		"relevance_window": r.policy.RelevanceWindow,
		"min_size_cr":      r.policy.MinSizeCr,
		"min_premium":      r.policy.MinPremium,
	}).Debug("Applied relevance and threshold filters")

	scoreRecords(survivors)

	digest := &models.Digest{GeneratedFor: today, Partitioned: r.policy.PartitionByDate}
	if r.policy.PartitionByDate {
		current, upcoming := partition(survivors, today)
		digest.Current = rankList(current)
		digest.Upcoming = rankList(upcoming)
	} else {
		digest.All = rankList(survivors)
	}
	return digest
}

// relevant applies the configured date-window policy. Both policies key
// off the close date; under the sliding window a record with a strictly
// future open date passes even without one.
func (r *Ranker) relevant(record models.IpoRecord, today time.Time) bool {
	switch r.policy.RelevanceWindow {
	case config.WindowSliding:
		if record.OpenDate != nil && dateOnly(*record.OpenDate).After(today) {
			return true
		}
		if record.CloseDate == nil {
			return false
		}
		closeDate := dateOnly(*record.CloseDate)
		lower := today.AddDate(0, 0, -1)
		upper := today.AddDate(0, 0, slidingWindowHorizonDays)
		return !closeDate.Before(lower) && !closeDate.After(upper)
	default: // WindowNotYetClosed
		if record.CloseDate == nil {
			return false
		}
		return !dateOnly(*record.CloseDate).Before(today)
	}
}

// aboveThresholds requires size and premium amount strictly above the
// configured minimums. Absent values never pass: missing data is an
// exclusion, not a zero.
func (r *Ranker) aboveThresholds(record models.IpoRecord) bool {
	if record.SizeCrore == nil || *record.SizeCrore <= r.policy.MinSizeCr {
		return false
	}
	if record.Premium.Amount == nil || *record.Premium.Amount <= r.policy.MinPremium {
		return false
	}
	return true
}

// scoreRecords min-max normalizes size and premium over the surviving set
// and computes the weighted score in place.
func scoreRecords(records []models.IpoRecord) {
	var maxSize, maxPremium float64
	for _, record := range records {
		if record.SizeCrore != nil && *record.SizeCrore > maxSize {
			maxSize = *record.SizeCrore
		}
		if record.Premium.Amount != nil && *record.Premium.Amount > maxPremium {
			maxPremium = *record.Premium.Amount
		}
	}

	for i := range records {
		sizeNorm := 0.0
		if maxSize > 0 && records[i].SizeCrore != nil {
			sizeNorm = *records[i].SizeCrore / maxSize
		}
		premiumNorm := 0.0
		if maxPremium > 0 && records[i].Premium.Amount != nil {
			premiumNorm = *records[i].Premium.Amount / maxPremium
		}
		records[i].Score = sizeWeight*sizeNorm + premiumWeight*premiumNorm
	}
}

// partition splits survivors into open-now and upcoming. A record with no
// open date cannot be upcoming, so it lands in current.
func partition(records []models.IpoRecord, today time.Time) (current, upcoming []models.IpoRecord) {
	for _, record := range records {
		if record.OpenDate != nil && dateOnly(*record.OpenDate).After(today) {
			upcoming = append(upcoming, record)
		} else {
			current = append(current, record)
		}
	}
	return current, upcoming
}

// rankList sorts by descending score, preserving input order on ties, and
// assigns 1-based ranks.
func rankList(records []models.IpoRecord) []models.IpoRecord {
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Score > records[j].Score
	})
	for i := range records {
		records[i].Rank = i + 1
	}
	return records
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
