package domain

// Canonical rule names, in evaluation and reporting order.
const (
	RuleRound100     = "round_100"
	RuleRound1000    = "round_1000"
	RuleCentsZero    = "cents_zero"
	RuleWeekend      = "weekend"
	RuleLateNight    = "late_night"
	RuleRiskyMemo    = "risky_memo"
	RuleManualSource = "manual_source"
	RuleDuplicate    = "duplicate"
	RuleTop1Pct      = "top1pct"
)

// RuleSpec defines one boolean risk heuristic.
type RuleSpec struct {
	Name        string
	Description string

	// CEL expression to evaluate; must return bool
	Expression string

	// Contribution to the risk score when the rule triggers
	Weight int
}

// RuleResult is the output of evaluating one rule against one entry.
type RuleResult struct {
	Name      string
	Triggered bool
	Weight    int
}
