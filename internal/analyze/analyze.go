// Package analyze runs the single-pass batch scoring pipeline.
package analyze

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/opensource-finance/kite/internal/dedup"
	"github.com/opensource-finance/kite/internal/domain"
	"github.com/opensource-finance/kite/internal/outlier"
	"github.com/opensource-finance/kite/internal/rules"
	"github.com/opensource-finance/kite/internal/score"
)

var tracer = otel.Tracer("kite")

// Analyzer wires the reduce passes, rule engine, and scorer into the batch
// pipeline: normalize -> reduce -> evaluate -> score -> rank.
type Analyzer struct {
	cfg        *domain.Config
	engine     *rules.Engine
	processor  *score.Processor
	maxWorkers int
}

// New builds an analyzer around the builtin rule set.
func New(cfg *domain.Config) (*Analyzer, error) {
	engine, err := rules.NewEngine(rules.Builtin(), cfg.MemoTerms)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize rule engine: %w", err)
	}

	maxWorkers := cfg.MaxWorkers
	if maxWorkers <= 0 {
		maxWorkers = 10
	}

	return &Analyzer{
		cfg:        cfg,
		engine:     engine,
		processor:  score.NewProcessor(cfg.FlagThreshold),
		maxWorkers: maxWorkers,
	}, nil
}

// Specs returns the rule specs in canonical order, for reporting.
func (a *Analyzer) Specs() []domain.RuleSpec {
	return a.engine.Specs()
}

// Run scores the batch in place and returns it ordered by
// (risk_score, abs_amount), both descending, with a stable sort. The two
// batch-global reduce passes complete before any entry's flags are
// evaluated; row evaluation then fans out over a bounded worker pool
// writing results by index, so the output is deterministic. The run is
// all-or-nothing: any evaluation error fails the whole batch.
func (a *Analyzer) Run(ctx context.Context, entries []*domain.Entry) ([]*domain.Entry, error) {
	runID := uuid.New().String()
	slog.Info("analysis started", "run_id", runID, "rows", len(entries))

	ctx, span := tracer.Start(ctx, "analyze.run",
		trace.WithAttributes(attribute.Int("rows", len(entries))),
	)
	defer span.End()

	// Global reduce phase: duplicate-key counts and the quantile cutoff.
	_, reduceSpan := tracer.Start(ctx, "analyze.reduce")
	counts := dedup.Count(entries)
	cutoff := outlier.Cutoff(entries, a.cfg)
	reduceSpan.End()

	slog.Debug("reduce phase complete",
		"run_id", runID,
		"distinct_keys", len(counts),
		"cutoff", cutoff,
	)

	// Map phase: each row is independent once the aggregates are fixed.
	_, evalSpan := tracer.Start(ctx, "analyze.evaluate")
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		evalErr error
	)
	sem := make(chan struct{}, a.maxWorkers)

	for _, e := range entries {
		wg.Add(1)
		go func(e *domain.Entry) {
			defer wg.Done()

			sem <- struct{}{}        // Acquire
			defer func() { <-sem }() // Release

			results, err := a.engine.Evaluate(rules.InputForEntry(e, counts.For(e), cutoff))
			if err != nil {
				mu.Lock()
				if evalErr == nil {
					evalErr = err
				}
				mu.Unlock()
				return
			}
			a.processor.Apply(e, results)
		}(e)
	}
	wg.Wait()
	evalSpan.End()

	if evalErr != nil {
		return nil, fmt.Errorf("rule evaluation failed: %w", evalErr)
	}

	_, rankSpan := tracer.Start(ctx, "analyze.rank")
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].RiskScore != entries[j].RiskScore {
			return entries[i].RiskScore > entries[j].RiskScore
		}
		return entries[i].AbsAmount > entries[j].AbsAmount
	})
	rankSpan.End()

	slog.Info("analysis complete",
		"run_id", runID,
		"rows", len(entries),
		"flagged", len(a.Flagged(entries)),
	)

	return entries, nil
}

// Flagged returns the entries meeting the flag threshold, preserving order.
func (a *Analyzer) Flagged(entries []*domain.Entry) []*domain.Entry {
	flagged := make([]*domain.Entry, 0)
	for _, e := range entries {
		if a.processor.ShouldFlag(e) {
			flagged = append(flagged, e)
		}
	}
	return flagged
}
