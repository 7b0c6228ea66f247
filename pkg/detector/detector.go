// Package detector matches a codepoint set against the language table and
// ranks the languages it supports.
package detector

import (
	"cmp"
	"log/slog"
	"math"
	"slices"

	"langcover/pkg/coverage"
	"langcover/pkg/langtable"
	"langcover/pkg/logging"
	"langcover/pkg/model"
)

// Detector scores codepoint sets against a language table.
// It holds no mutable state and is safe for concurrent use.
type Detector struct {
	table  *langtable.Table
	logger *slog.Logger
}

// New creates a Detector over table. A nil logger uses slog.Default().
func New(table *langtable.Table, logger *slog.Logger) *Detector {
	if logger == nil {
		logger = slog.Default()
	}
	return &Detector{
		table:  table,
		logger: logger,
	}
}

// Table returns the table d matches against.
func (d *Detector) Table() *langtable.Table {
	return d.table
}

// Detect returns the languages whose required codepoints are covered by
// ranges to at least threshold, best first.
//
// ranges may be unordered, overlapping or malformed (Lo > Hi ranges are
// ignored). A language with no matched codepoint is never returned, so a
// threshold at or below zero (or NaN) yields every language with a
// positive count. The result is never nil.
func (d *Detector) Detect(ranges []coverage.Range, threshold float64) []model.Match {
	return d.DetectSet(coverage.Normalize(ranges), threshold)
}

// DetectCodepoints is Detect for individual codepoints.
func (d *Detector) DetectCodepoints(cps []coverage.Codepoint, threshold float64) []model.Match {
	return d.DetectSet(coverage.FromCodepoints(cps), threshold)
}

// DetectText is Detect for the runes of a sample text.
func (d *Detector) DetectText(text string, threshold float64) []model.Match {
	return d.DetectSet(coverage.FromString(text), threshold)
}

// DetectSet is Detect for an input that is already canonical.
func (d *Detector) DetectSet(input coverage.Set, threshold float64) []model.Match {
	matches := make([]model.Match, 0)
	if len(input) == 0 {
		return matches
	}
	if math.IsNaN(threshold) {
		threshold = 0
	}

	for i := 0; i < d.table.Len(); i++ {
		lang := d.table.At(i)

		count := coverage.IntersectionLen(input, lang.Codepoints)
		if count == 0 {
			continue
		}

		m := model.NewMatch(&lang, count)
		if m.Score < threshold {
			logging.Trace(d.logger, "Detector: below threshold", "code", m.Code, "count", count, "score", m.Score)
			continue
		}
		matches = append(matches, m)
	}

	Rank(matches)

	d.logger.Debug("Detector: matched",
		"input_ranges", len(input),
		"input_codepoints", input.Len(),
		"threshold", threshold,
		"matches", len(matches),
	)
	return matches
}

// Rank sorts matches by score, highest first. Equal scores are ordered by
// code so that the output is reproducible.
func Rank(matches []model.Match) {
	slices.SortFunc(matches, func(a, b model.Match) int {
		if c := cmp.Compare(b.Score, a.Score); c != 0 {
			return c
		}
		return cmp.Compare(a.Code, b.Code)
	})
}
