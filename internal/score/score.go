// Package score aggregates rule results into weighted risk scores.
package score

import (
	"github.com/opensource-finance/kite/internal/domain"
)

// Processor turns per-rule results into an entry's score and reasons.
type Processor struct {
	// Entries scoring at or above FlagThreshold belong in the flagged subset.
	FlagThreshold int
}

// NewProcessor creates a processor with the given flag threshold.
func NewProcessor(threshold int) *Processor {
	return &Processor{FlagThreshold: threshold}
}

// Apply writes flags, risk score, reasons, and the ranking magnitude onto
// the entry. Results must be in canonical rule order; reasons inherit that
// order, and each rule name appears at most once. The score is the exact
// sum of the weights of triggered rules, with no rounding or clamping.
func (p *Processor) Apply(e *domain.Entry, results []domain.RuleResult) {
	flags := make(map[string]bool, len(results))
	score := 0
	reasons := make([]string, 0, len(results))

	for _, r := range results {
		flags[r.Name] = r.Triggered
		if r.Triggered {
			score += r.Weight
			reasons = append(reasons, r.Name)
		}
	}

	e.Flags = flags
	e.RiskScore = score
	e.Reasons = reasons
	e.AbsAmount = e.AbsValue()
}

// ShouldFlag reports whether the entry meets the flag threshold.
func (p *Processor) ShouldFlag(e *domain.Entry) bool {
	return e.RiskScore >= p.FlagThreshold
}
