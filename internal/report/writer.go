package report

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/opensource-finance/kite/internal/domain"
)

// flaggedHeader is the exact column set of the flagged-entries table.
var flaggedHeader = []string{
	"entry_id", "date", "user", "account", "amount",
	"memo", "source", "risk_score", "reasons",
}

// Write renders the flagged table and the summary report into outDir,
// creating the directory if needed.
func Write(outDir string, cfg *domain.Config, specs []domain.RuleSpec, flagged []*domain.Entry, summary *domain.Summary) error {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	if err := writeFlaggedCSV(filepath.Join(outDir, cfg.FlaggedFileName), flagged); err != nil {
		return err
	}

	return writeSummary(filepath.Join(outDir, cfg.SummaryFileName), cfg, specs, summary)
}

// writeFlaggedCSV writes flagged entries in rank order. Null dates and
// amounts serialize as empty fields; reasons are comma-joined in canonical
// order.
func writeFlaggedCSV(path string, flagged []*domain.Entry) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(flaggedHeader); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for _, e := range flagged {
		record := []string{
			e.EntryID,
			formatDate(e.Date),
			e.User,
			e.Account,
			formatAmount(e.Amount),
			e.Memo,
			e.Source,
			strconv.Itoa(e.RiskScore),
			strings.Join(e.Reasons, ","),
		}
		if err := w.Write(record); err != nil {
			return fmt.Errorf("failed to write entry %s: %w", e.EntryID, err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to flush %s: %w", path, err)
	}
	return nil
}

// writeSummary renders the human-readable markdown report.
func writeSummary(path string, cfg *domain.Config, specs []domain.RuleSpec, s *domain.Summary) error {
	var b strings.Builder

	b.WriteString("# Risky Journals — Summary\n\n")
	fmt.Fprintf(&b, "- Rows scanned: **%d**\n", s.TotalScanned)
	fmt.Fprintf(&b, "- Rows flagged (score ≥ %d): **%d**\n\n", cfg.FlagThreshold, s.TotalFlagged)

	b.WriteString("## Top rule triggers\n\n")
	b.WriteString(renderTop(s.TopRules, "Rule", "Count"))

	b.WriteString("\n## Highest aggregate risk by user\n\n")
	b.WriteString(renderTop(s.TopUsers, "User", "Risk Score"))

	b.WriteString("\n## Highest aggregate risk by account\n\n")
	b.WriteString(renderTop(s.TopAccounts, "Account", "Risk Score"))

	b.WriteString("\n## How scoring works\n\n")
	weights := table.NewWriter()
	weights.AppendHeader(table.Row{"Rule", "Weight"})
	for _, spec := range specs {
		weights.AppendRow(table.Row{spec.Name, spec.Weight})
	}
	b.WriteString(weights.RenderMarkdown())
	b.WriteString("\n\n> Heuristics only. Use as a starting point for investigation.\n")

	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// renderTop renders a leaderboard as a markdown table, or a "(none)"
// placeholder when the run flagged nothing.
func renderTop(items []domain.KeyCount, keyHeader, valueHeader string) string {
	if len(items) == 0 {
		return "- (none)\n"
	}

	t := table.NewWriter()
	t.AppendHeader(table.Row{keyHeader, valueHeader})
	for _, item := range items {
		t.AppendRow(table.Row{item.Key, item.Count})
	}
	return t.RenderMarkdown() + "\n"
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("2006-01-02 15:04:05")
}

func formatAmount(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}
