package domain

import (
	"math"
	"time"
)

// Entry represents one journal row being scored.
type Entry struct {
	// Core columns, normalized at ingestion
	EntryID string
	Date    *time.Time // nil when missing or unparsable
	User    string
	Account string
	Source  string
	Amount  *float64 // nil when missing or unparsable
	Memo    string

	// Derived by the pipeline; columns are added, never removed
	Flags     map[string]bool
	RiskScore int
	Reasons   []string // triggered rule names in canonical order
	AbsAmount float64  // 0 when Amount is nil; used for ranking only
}

// HasAmount reports whether the amount parsed successfully.
func (e *Entry) HasAmount() bool {
	return e.Amount != nil
}

// HasDate reports whether the date parsed successfully.
func (e *Entry) HasDate() bool {
	return e.Date != nil
}

// AbsValue returns the absolute amount, or 0 when the amount is null.
func (e *Entry) AbsValue() float64 {
	if e.Amount == nil {
		return 0
	}
	return math.Abs(*e.Amount)
}
