package domain

import "time"

// SkippedBatch describes a regex batch whose alternation failed to compile.
type SkippedBatch struct {
	// Index is the zero-based batch number over the rule list as loaded,
	// invalid rules included.
	Index int

	// Patterns are the valid rules that made up the batch.
	Patterns []string

	// Invalid are the patterns that also fail to compile on their own.
	// The remaining patterns of the batch are still evaluated individually.
	Invalid []string

	// Err is the compile error of the whole batch.
	Err error
}

// Report summarises one reconciliation pass.
type Report struct {
	// Backend is the name of the domain store used ("sqlite" or "file").
	Backend string

	// Loaded is the number of distinct gravity domains before the run.
	Loaded int

	// Wildcards is the number of distinct wildcard base domains found.
	Wildcards int

	// InvalidWildcards are wildcard bases that are not valid DNS names.
	InvalidWildcards []string

	// Regexps is the number of regex rules loaded.
	Regexps int

	// InvalidRegexps are regex rules that failed to compile.
	InvalidRegexps []string

	// SkippedBatches are regex batches that failed to compile as a whole.
	SkippedBatches []SkippedBatch

	// ExactConflicts counts gravity domains equal to a wildcard base.
	ExactConflicts int

	// SubdomainConflicts counts gravity domains below a wildcard base.
	SubdomainConflicts int

	// RegexConflicts counts gravity domains matched by a regex rule,
	// including those also covered by a wildcard.
	RegexConflicts int

	// Removed is the size of the final removal set.
	Removed int

	// Remaining is the number of domains left after the run. For the SQLite
	// backend it is the re-queried distinct count.
	Remaining int

	// DryRun is true when nothing was committed on purpose.
	DryRun bool

	// Committed is true when the removal set was persisted.
	Committed bool

	// Duration is the wall time of the pass.
	Duration time.Duration
}
