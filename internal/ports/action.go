package ports

import (
	"context"

	"github.com/bft-labs/gravityopt/internal/domain"
)

// Action is a fire-and-forget external collaborator, e.g. refreshing the
// upstream lists or reloading the resolver. Errors are logged by the caller,
// never interpreted.
type Action interface {
	Name() string
	Run(ctx context.Context) error
}

// ReportSink receives the report of a finished pass.
type ReportSink interface {
	Record(report domain.Report) error
}
