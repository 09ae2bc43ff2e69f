package domain

// SourceSystem is the normalized source value for entries ingested with an
// empty source column.
const SourceSystem = "SYSTEM"

// Config holds the complete analysis configuration. It is built once per
// process and passed explicitly into the evaluator, scorer, and reporter;
// there is no runtime configuration surface beyond it.
type Config struct {
	// MemoTerms are matched case-insensitively as substrings of the memo.
	MemoTerms []string

	// FlagThreshold is the minimum risk score for the flagged subset.
	FlagThreshold int

	// LargeBatchSize is the total row count at which the outlier cutoff
	// switches from SmallBatchQuantile to LargeBatchQuantile.
	LargeBatchSize     int
	LargeBatchQuantile float64
	SmallBatchQuantile float64

	// TopN bounds each summary leaderboard.
	TopN int

	// MaxWorkers bounds concurrent rule evaluation.
	MaxWorkers int

	// Output file names, relative to the output directory.
	FlaggedFileName string
	SummaryFileName string
}

// DefaultConfig returns the fixed analysis configuration.
func DefaultConfig() *Config {
	return &Config{
		MemoTerms: []string{
			"manual override", "adjustment", "adj", "suspense",
			"top-side", "plug", "write-off", "reclass", "misc",
		},
		FlagThreshold:      2,
		LargeBatchSize:     100,
		LargeBatchQuantile: 0.99,
		SmallBatchQuantile: 0.95,
		TopN:               5,
		MaxWorkers:         10,
		FlaggedFileName:    "risky.csv",
		SummaryFileName:    "summary.md",
	}
}
