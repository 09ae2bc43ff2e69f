package rules

import "github.com/opensource-finance/kite/internal/domain"

// Builtin returns the fixed rule set in canonical order. Names, expressions,
// and weights are process-wide constants; there is no runtime rule
// configuration surface.
func Builtin() []domain.RuleSpec {
	return []domain.RuleSpec{
		{
			Name:        domain.RuleRound100,
			Description: "absolute amount is an exact multiple of 100",
			Expression:  `has_amount && fmod(abs_amount, 100.0) == 0.0`,
			Weight:      1,
		},
		{
			Name:        domain.RuleRound1000,
			Description: "absolute amount is an exact multiple of 1000",
			Expression:  `has_amount && fmod(abs_amount, 1000.0) == 0.0`,
			Weight:      2,
		},
		{
			Name:        domain.RuleCentsZero,
			Description: "amount has zero cents, tolerant of float noise",
			Expression:  `has_amount && round2(fmod(abs_amount * 100.0, 100.0)) == 0.0`,
			Weight:      1,
		},
		{
			Name:        domain.RuleWeekend,
			Description: "posted on a Saturday or Sunday",
			Expression:  `has_date && (weekday == 0 || weekday == 6)`,
			Weight:      1,
		},
		{
			Name:        domain.RuleLateNight,
			Description: "posted between 22:00 and 05:59",
			Expression:  `has_date && hour in [22, 23, 0, 1, 2, 3, 4, 5]`,
			Weight:      2,
		},
		{
			Name:        domain.RuleRiskyMemo,
			Description: "memo contains a risky term",
			Expression:  `memo_terms.exists(t, memo.lowerAscii().contains(t))`,
			Weight:      2,
		},
		{
			Name:        domain.RuleManualSource,
			Description: "entry did not originate from SYSTEM",
			Expression:  `source.upperAscii() != "SYSTEM"`,
			Weight:      2,
		},
		{
			Name:        domain.RuleDuplicate,
			Description: "same day, account, amount, and memo as another entry",
			Expression:  `dup_count >= 2`,
			Weight:      3,
		},
		{
			Name:        domain.RuleTop1Pct,
			Description: "absolute amount at or above the batch quantile cutoff",
			Expression:  `has_amount && abs_amount >= cutoff`,
			Weight:      2,
		},
	}
}
