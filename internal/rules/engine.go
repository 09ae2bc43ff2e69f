// Package rules provides the CEL-Go based heuristic evaluation engine.
package rules

import (
	"fmt"
	"math"

	"github.com/google/cel-go/cel"
	"github.com/google/cel-go/common/types"
	"github.com/google/cel-go/common/types/ref"
	"github.com/google/cel-go/ext"

	"github.com/opensource-finance/kite/internal/domain"
)

// Engine evaluates a fixed, ordered rule set against journal entries.
// Rules are compiled once at construction; the engine is immutable
// afterwards and safe for concurrent use.
type Engine struct {
	env       *cel.Env
	compiled  []*CompiledRule // canonical order
	memoTerms []string
}

// CompiledRule holds a pre-compiled CEL program for one heuristic.
type CompiledRule struct {
	Spec    domain.RuleSpec
	Program cel.Program
}

// NewEngine compiles the given rule specs against the entry environment.
// Every expression must evaluate to bool.
func NewEngine(specs []domain.RuleSpec, memoTerms []string) (*Engine, error) {
	env, err := cel.NewEnv(
		ext.Strings(),
		cel.Variable("has_amount", cel.BoolType),
		cel.Variable("abs_amount", cel.DoubleType),
		cel.Variable("has_date", cel.BoolType),
		cel.Variable("weekday", cel.IntType),
		cel.Variable("hour", cel.IntType),
		cel.Variable("memo", cel.StringType),
		cel.Variable("source", cel.StringType),
		cel.Variable("dup_count", cel.IntType),
		cel.Variable("cutoff", cel.DoubleType),
		cel.Variable("memo_terms", cel.ListType(cel.StringType)),
		// Floating-point remainder; CEL's % only covers integers.
		cel.Function("fmod",
			cel.Overload("fmod_double_double",
				[]*cel.Type{cel.DoubleType, cel.DoubleType}, cel.DoubleType,
				cel.BinaryBinding(func(lhs, rhs ref.Val) ref.Val {
					return types.Double(math.Mod(float64(lhs.(types.Double)), float64(rhs.(types.Double))))
				}))),
		// Half-away-from-zero rounding to 2 decimal places.
		cel.Function("round2",
			cel.Overload("round2_double",
				[]*cel.Type{cel.DoubleType}, cel.DoubleType,
				cel.UnaryBinding(func(v ref.Val) ref.Val {
					return types.Double(math.Round(float64(v.(types.Double))*100) / 100)
				}))),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL environment: %w", err)
	}

	e := &Engine{
		env:       env,
		compiled:  make([]*CompiledRule, 0, len(specs)),
		memoTerms: append([]string(nil), memoTerms...),
	}

	for _, spec := range specs {
		compiled, err := e.compileRule(spec)
		if err != nil {
			return nil, err
		}
		e.compiled = append(e.compiled, compiled)
	}

	return e, nil
}

func (e *Engine) compileRule(spec domain.RuleSpec) (*CompiledRule, error) {
	ast, issues := e.env.Compile(spec.Expression)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("failed to compile rule %s: %w", spec.Name, issues.Err())
	}

	if ast.OutputType() != cel.BoolType {
		return nil, fmt.Errorf("rule %s: expression must return bool, got %s", spec.Name, ast.OutputType())
	}

	program, err := e.env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("failed to create program for rule %s: %w", spec.Name, err)
	}

	return &CompiledRule{Spec: spec, Program: program}, nil
}

// RulesCount returns the number of compiled rules.
func (e *Engine) RulesCount() int {
	return len(e.compiled)
}

// Specs returns the rule specs in canonical order.
func (e *Engine) Specs() []domain.RuleSpec {
	specs := make([]domain.RuleSpec, 0, len(e.compiled))
	for _, c := range e.compiled {
		specs = append(specs, c.Spec)
	}
	return specs
}

// EvaluateInput holds the per-entry variables for rule evaluation.
// DupCount and Cutoff are batch-global aggregates and must be computed
// over the whole batch before any entry is evaluated.
type EvaluateInput struct {
	HasAmount bool
	AbsAmount float64
	HasDate   bool
	Weekday   int // Go convention: Sunday = 0
	Hour      int
	Memo      string
	Source    string
	DupCount  int
	Cutoff    float64
}

// InputForEntry derives the evaluation variables for one entry.
func InputForEntry(e *domain.Entry, dupCount int, cutoff float64) *EvaluateInput {
	in := &EvaluateInput{
		Memo:     e.Memo,
		Source:   e.Source,
		DupCount: dupCount,
		Cutoff:   cutoff,
	}
	if e.Amount != nil {
		in.HasAmount = true
		in.AbsAmount = math.Abs(*e.Amount)
	}
	if e.Date != nil {
		in.HasDate = true
		in.Weekday = int(e.Date.Weekday())
		in.Hour = e.Date.Hour()
	}
	return in
}

// Evaluate runs every rule against the input and returns one result per
// rule, in canonical order. Null amounts and dates are handled inside the
// expressions via the has_* guards and never produce an error.
func (e *Engine) Evaluate(input *EvaluateInput) ([]domain.RuleResult, error) {
	activation := map[string]any{
		"has_amount": input.HasAmount,
		"abs_amount": input.AbsAmount,
		"has_date":   input.HasDate,
		"weekday":    input.Weekday,
		"hour":       input.Hour,
		"memo":       input.Memo,
		"source":     input.Source,
		"dup_count":  input.DupCount,
		"cutoff":     input.Cutoff,
		"memo_terms": e.memoTerms,
	}

	results := make([]domain.RuleResult, 0, len(e.compiled))
	for _, rule := range e.compiled {
		out, _, err := rule.Program.Eval(activation)
		if err != nil {
			return nil, fmt.Errorf("rule %s: evaluation error: %w", rule.Spec.Name, err)
		}

		triggered, ok := out.(types.Bool)
		if !ok {
			return nil, fmt.Errorf("rule %s: expression returned %v, want bool", rule.Spec.Name, out.Type())
		}

		results = append(results, domain.RuleResult{
			Name:      rule.Spec.Name,
			Triggered: bool(triggered),
			Weight:    rule.Spec.Weight,
		})
	}

	return results, nil
}
