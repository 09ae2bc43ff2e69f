package ingest

import (
	"strings"
	"testing"

	"github.com/opensource-finance/kite/internal/domain"
)

func TestReadFullRow(t *testing.T) {
	input := "entry_id,date,user,account,amount,memo,source\n" +
		"J1,2024-01-05 10:30:00,alice,4000,123.45,vendor payment,import\n"

	entries, err := Read(strings.NewReader(input))
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}

	e := entries[0]
	if e.EntryID != "J1" || e.User != "alice" || e.Account != "4000" || e.Memo != "vendor payment" || e.Source != "import" {
		t.Errorf("unexpected entry: %+v", e)
	}
	if e.Amount == nil || *e.Amount != 123.45 {
		t.Errorf("expected amount 123.45, got %v", e.Amount)
	}
	if e.Date == nil || e.Date.Hour() != 10 || e.Date.Minute() != 30 {
		t.Errorf("expected date 2024-01-05 10:30, got %v", e.Date)
	}
}

func TestUnparsableFieldsBecomeNull(t *testing.T) {
	input := "entry_id,date,user,account,amount,memo\n" +
		"J1,not-a-date,alice,4000,not-a-number,x\n" +
		"J2,,alice,4000,,x\n"

	entries, err := Read(strings.NewReader(input))
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("no row may be dropped, got %d entries", len(entries))
	}

	for _, e := range entries {
		if e.Amount != nil {
			t.Errorf("entry %s: expected null amount, got %v", e.EntryID, *e.Amount)
		}
		if e.Date != nil {
			t.Errorf("entry %s: expected null date, got %v", e.EntryID, *e.Date)
		}
	}
}

func TestNaNAmountBecomesNull(t *testing.T) {
	// strconv.ParseFloat parses these as IEEE NaN; they must be treated
	// like any other unparsable amount.
	input := "entry_id,amount\n" +
		"J1,NaN\n" +
		"J2,nan\n" +
		"J3,-NaN\n" +
		"J4,5.37\n"

	entries, err := Read(strings.NewReader(input))
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if len(entries) != 4 {
		t.Fatalf("no row may be dropped, got %d entries", len(entries))
	}

	for _, e := range entries[:3] {
		if e.Amount != nil {
			t.Errorf("entry %s: expected null amount for NaN literal, got %v", e.EntryID, *e.Amount)
		}
	}
	if entries[3].Amount == nil || *entries[3].Amount != 5.37 {
		t.Errorf("expected amount 5.37, got %v", entries[3].Amount)
	}
}

func TestDateOnlyAndRFC3339Layouts(t *testing.T) {
	input := "entry_id,date,amount\n" +
		"J1,2024-01-05,10\n" +
		"J2,2024-01-05T10:30:00Z,10\n"

	entries, err := Read(strings.NewReader(input))
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}

	if entries[0].Date == nil || entries[0].Date.Format("2006-01-02") != "2024-01-05" {
		t.Errorf("expected date-only layout to parse, got %v", entries[0].Date)
	}
	if entries[1].Date == nil || entries[1].Date.Hour() != 10 {
		t.Errorf("expected RFC3339 layout to parse, got %v", entries[1].Date)
	}
}

func TestMissingColumnsDefaultToEmpty(t *testing.T) {
	input := "entry_id,date,amount\n" +
		"J1,2024-01-05,100\n"

	entries, err := Read(strings.NewReader(input))
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}

	e := entries[0]
	if e.User != "" || e.Account != "" || e.Memo != "" {
		t.Errorf("missing columns must default to empty, got %+v", e)
	}
	if e.Source != domain.SourceSystem {
		t.Errorf("missing source must normalize to SYSTEM, got %q", e.Source)
	}
}

func TestEmptySourceNormalizedToSystem(t *testing.T) {
	input := "entry_id,source\n" +
		"J1,\n" +
		"J2,manual_entry\n"

	entries, err := Read(strings.NewReader(input))
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}

	if entries[0].Source != domain.SourceSystem {
		t.Errorf("empty source must become SYSTEM, got %q", entries[0].Source)
	}
	if entries[1].Source != "manual_entry" {
		t.Errorf("non-empty source must be preserved, got %q", entries[1].Source)
	}
}

func TestShortRecordsArePadded(t *testing.T) {
	input := "entry_id,date,user,account,amount,memo\n" +
		"J1,2024-01-05\n"

	entries, err := Read(strings.NewReader(input))
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}

	e := entries[0]
	if e.EntryID != "J1" || e.User != "" || e.Amount != nil {
		t.Errorf("short record not padded: %+v", e)
	}
}

func TestHeaderOnlyIsValidEmptyBatch(t *testing.T) {
	entries, err := Read(strings.NewReader("entry_id,date,amount\n"))
	if err != nil {
		t.Fatalf("header-only input must be a valid empty batch: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("expected 0 entries, got %d", len(entries))
	}
}

func TestEmptyInputIsFatal(t *testing.T) {
	if _, err := Read(strings.NewReader("")); err == nil {
		t.Error("expected error for input without a header row")
	}
}

func TestMissingFileIsFatal(t *testing.T) {
	if _, err := LoadCSV("/nonexistent/journals.csv"); err == nil {
		t.Error("expected error for missing input file")
	}
}

func TestHeaderNamesAreCaseInsensitive(t *testing.T) {
	input := "Entry_ID,Date,User,Account,Amount,Memo,Source\n" +
		"J1,2024-01-05,alice,4000,10,x,feed\n"

	entries, err := Read(strings.NewReader(input))
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if entries[0].EntryID != "J1" || entries[0].User != "alice" {
		t.Errorf("header matching must ignore case, got %+v", entries[0])
	}
}
