// Package dedup computes batch-global duplicate-key occurrence counts.
package dedup

import (
	"math"
	"strings"

	"github.com/opensource-finance/kite/internal/domain"
)

// Key identifies entries that count as duplicates of each other: same
// calendar day, account, amount rounded to 2 decimals, and lowercased memo.
// EntryID, user, and time-of-day are deliberately excluded. A structured
// key avoids the delimiter collisions a concatenated string key would allow
// when accounts or memos contain the delimiter.
type Key struct {
	Day       string // 2006-01-02, empty when the date is null
	Account   string
	Amount    float64 // rounded to 2 decimals, 0 when null
	HasAmount bool
	Memo      string // lowercased
}

// KeyFor builds the duplicate key for an entry.
func KeyFor(e *domain.Entry) Key {
	k := Key{
		Account: e.Account,
		Memo:    strings.ToLower(e.Memo),
	}
	if e.Date != nil {
		k.Day = e.Date.Format("2006-01-02")
	}
	if e.Amount != nil {
		k.HasAmount = true
		k.Amount = math.Round(*e.Amount*100) / 100
	}
	return k
}

// Counts maps each duplicate key to its occurrence count across the batch.
type Counts map[Key]int

// Count tallies duplicate keys over the whole batch. This reduce pass must
// complete before any entry's duplicate flag is evaluated.
func Count(entries []*domain.Entry) Counts {
	counts := make(Counts, len(entries))
	for _, e := range entries {
		counts[KeyFor(e)]++
	}
	return counts
}

// For returns the occurrence count of the entry's key. An entry is a
// duplicate when this is at least 2.
func (c Counts) For(e *domain.Entry) int {
	return c[KeyFor(e)]
}
