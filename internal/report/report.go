// Package report aggregates the flagged subset and writes run outputs.
package report

import (
	"sort"

	"github.com/opensource-finance/kite/internal/domain"
)

// Build computes summary statistics over a ranked batch and its flagged
// subset. Leaderboards are sorted by count descending; ties break in
// first-encountered order, where "first" follows the flagged entries' rank
// order (and, for rules, the canonical reason order within each entry).
func Build(ranked, flagged []*domain.Entry, topN int) *domain.Summary {
	s := &domain.Summary{
		TotalScanned: len(ranked),
		TotalFlagged: len(flagged),
	}

	ruleCounts := newCounter()
	userScores := newCounter()
	accountScores := newCounter()

	for _, e := range flagged {
		for _, name := range e.Reasons {
			ruleCounts.add(name, 1)
		}
		userScores.add(e.User, e.RiskScore)
		accountScores.add(e.Account, e.RiskScore)
	}

	s.TopRules = ruleCounts.top(topN)
	s.TopUsers = userScores.top(topN)
	s.TopAccounts = accountScores.top(topN)
	return s
}

// counter accumulates totals per key while remembering first-seen order.
type counter struct {
	totals map[string]int
	first  map[string]int
	seen   int
}

func newCounter() *counter {
	return &counter{
		totals: make(map[string]int),
		first:  make(map[string]int),
	}
}

func (c *counter) add(key string, delta int) {
	if _, ok := c.totals[key]; !ok {
		c.first[key] = c.seen
		c.seen++
	}
	c.totals[key] += delta
}

func (c *counter) top(n int) []domain.KeyCount {
	keys := make([]string, 0, len(c.totals))
	for k := range c.totals {
		keys = append(keys, k)
	}

	sort.Slice(keys, func(i, j int) bool {
		if c.totals[keys[i]] != c.totals[keys[j]] {
			return c.totals[keys[i]] > c.totals[keys[j]]
		}
		return c.first[keys[i]] < c.first[keys[j]]
	})

	if len(keys) > n {
		keys = keys[:n]
	}

	out := make([]domain.KeyCount, 0, len(keys))
	for _, k := range keys {
		out = append(out, domain.KeyCount{Key: k, Count: c.totals[k]})
	}
	return out
}
