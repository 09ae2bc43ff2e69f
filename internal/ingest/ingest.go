// Package ingest loads journal CSV batches and normalizes them into entries.
package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/opensource-finance/kite/internal/domain"
)

// dateLayouts are tried in order when parsing the date column.
var dateLayouts = []string{
	"2006-01-02 15:04:05",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// LoadCSV reads and normalizes a journal batch from path. A file that
// cannot be opened or tokenized as CSV at all is a fatal error; individual
// field failures are not.
func LoadCSV(path string) ([]*domain.Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open input: %w", err)
	}
	defer f.Close()

	entries, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return entries, nil
}

// Read parses a headered CSV stream into normalized entries. Every row in
// the input produces exactly one entry: unparsable amounts and dates become
// null, missing optional columns become empty strings, and an empty source
// is normalized to SYSTEM. No row is ever dropped here.
func Read(r io.Reader) ([]*domain.Entry, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("input has no header row")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	idx := make(map[string]int, len(header))
	for i, name := range header {
		idx[strings.ToLower(strings.TrimSpace(name))] = i
	}

	entries := make([]*domain.Entry, 0)
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read row %d: %w", len(entries)+2, err)
		}
		entries = append(entries, normalize(record, idx))
	}

	return entries, nil
}

// normalize coerces one raw record into a well-typed entry.
func normalize(record []string, idx map[string]int) *domain.Entry {
	field := func(name string) string {
		i, ok := idx[name]
		if !ok || i >= len(record) {
			return ""
		}
		return record[i]
	}

	e := &domain.Entry{
		EntryID: field("entry_id"),
		User:    field("user"),
		Account: field("account"),
		Source:  field("source"),
		Memo:    field("memo"),
	}

	if raw := strings.TrimSpace(field("amount")); raw != "" {
		// ParseFloat accepts the literal "NaN"; a NaN amount would poison
		// the quantile cutoff and the duplicate key, so it counts as
		// unparsable and stays null like any other bad value.
		if v, err := strconv.ParseFloat(raw, 64); err == nil && !math.IsNaN(v) {
			e.Amount = &v
		}
	}

	if raw := strings.TrimSpace(field("date")); raw != "" {
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, raw); err == nil {
				e.Date = &t
				break
			}
		}
	}

	if e.Source == "" {
		e.Source = domain.SourceSystem
	}

	return e
}
