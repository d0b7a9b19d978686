package ports

import (
	"context"

	"github.com/bft-labs/gravityopt/internal/domain"
)

// DomainStore is the backing storage of the gravity domain set.
// Exactly one implementation is selected at startup.
type DomainStore interface {
	// Name identifies the backend in logs and reports.
	Name() string

	// Load returns the current gravity domain set.
	Load(ctx context.Context) (domain.Set, error)

	// Commit persists the outcome of a pass. Implementations either delete
	// removal or replace the stored set with retained; both are given so each
	// backend can pick the cheaper form. Commit is all-or-nothing.
	Commit(ctx context.Context, removal, retained domain.Set) (CommitResult, error)
}

// CommitResult reports what the backend holds after a commit.
type CommitResult struct {
	// Remaining is the number of distinct domains left in the store.
	Remaining int
}
