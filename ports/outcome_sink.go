package ports

import (
	"context"

	"coglab/domain/core"
	"coglab/domain/trial"
)

// OutcomeSink receives one notification per scored trial. Delivery is
// fire-and-forget from the runner's perspective: at most one attempt per
// outcome, failures surface as advisory warnings and never stall or
// abort the run.
type OutcomeSink interface {
	Record(ctx context.Context, outcome trial.TrialOutcome) error
}

// OutcomeReader is the query side of outcome persistence, used by the
// reporting surfaces.
type OutcomeReader interface {
	ListByRun(ctx context.Context, runID core.RunID) ([]trial.TrialOutcome, error)
}

// OutcomeStore combines both sides for adapters that implement them
// over the same backing storage.
type OutcomeStore interface {
	OutcomeSink
	OutcomeReader
}
