package ports

import (
	"coglab/domain/core"
	"coglab/domain/trial"
)

// StimulusPresenter is the presentation boundary. The runner calls
// Present when a trial enters its presenting state and Clear when the
// stimulus should leave the display (scoring, abort, completion).
// Implementations must be fast; presentation is on the trial loop.
type StimulusPresenter interface {
	Present(runID core.RunID, index int, stimulus trial.Stimulus)
	Clear(runID core.RunID)
}
