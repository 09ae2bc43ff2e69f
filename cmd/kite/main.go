// Kite - Journal entry risk scanner.
// Copyright (c) 2025 opensource.finance
// Licensed under the Apache License 2.0

package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/opensource-finance/kite/internal/analyze"
	"github.com/opensource-finance/kite/internal/domain"
	"github.com/opensource-finance/kite/internal/ingest"
	"github.com/opensource-finance/kite/internal/report"
)

// Version information (set via ldflags)
var (
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"
)

func main() {
	// Initialize structured logger
	logLevel := slog.LevelInfo
	if os.Getenv("KITE_DEBUG") == "true" {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	if err := newRootCmd().Execute(); err != nil {
		slog.Error("kite failed", "error", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "kite",
		Short: "Journal entry risk scanner",
		Long: "Kite scores financial journal entries with independent, explainable\n" +
			"boolean heuristics, then ranks and summarizes the flagged subset.",
		Version:       fmt.Sprintf("%s (commit %s, built %s)", Version, Commit, BuildDate),
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newScanCmd())
	return root
}

func newScanCmd() *cobra.Command {
	var (
		csvPath string
		outDir  string
	)

	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Score a journal CSV and write flagged entries plus a summary",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScan(cmd, csvPath, outDir)
		},
	}

	cmd.Flags().StringVar(&csvPath, "csv", "", "path to the journals CSV")
	cmd.Flags().StringVar(&outDir, "out", "out", "output directory, created if absent")
	_ = cmd.MarkFlagRequired("csv")

	return cmd
}

func runScan(cmd *cobra.Command, csvPath, outDir string) error {
	cfg := domain.DefaultConfig()

	slog.Info("starting scan",
		"version", Version,
		"csv", csvPath,
		"out", outDir,
	)

	// Fatal input errors happen before any output is produced.
	entries, err := ingest.LoadCSV(csvPath)
	if err != nil {
		return err
	}
	slog.Info("batch loaded", "rows", len(entries))

	analyzer, err := analyze.New(cfg)
	if err != nil {
		return err
	}

	ranked, err := analyzer.Run(cmd.Context(), entries)
	if err != nil {
		return err
	}

	flagged := analyzer.Flagged(ranked)
	summary := report.Build(ranked, flagged, cfg.TopN)

	if err := report.Write(outDir, cfg, analyzer.Specs(), flagged, summary); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Scanned %s entries, flagged %s (score >= %d)\n",
		humanize.Comma(int64(summary.TotalScanned)),
		color.New(color.FgYellow, color.Bold).Sprint(humanize.Comma(int64(summary.TotalFlagged))),
		cfg.FlagThreshold,
	)
	fmt.Fprintf(out, "Wrote %s and %s\n",
		filepath.Join(outDir, cfg.FlaggedFileName),
		filepath.Join(outDir, cfg.SummaryFileName),
	)

	return nil
}
