package domain

// Summary aggregates the flagged subset of one analysis run.
type Summary struct {
	TotalScanned int
	TotalFlagged int

	// TopRules counts raw reason occurrences across flagged entries.
	TopRules []KeyCount

	// TopUsers and TopAccounts sum flagged risk scores per group.
	TopUsers    []KeyCount
	TopAccounts []KeyCount
}

// KeyCount pairs a leaderboard key with its count or aggregate score.
type KeyCount struct {
	Key   string
	Count int
}
