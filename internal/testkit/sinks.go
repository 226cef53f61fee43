package testkit

import (
	"context"
	"errors"
	"sync"

	"coglab/domain/core"
	"coglab/domain/trial"
)

// CapturingSink records every notification it receives, for asserting
// on the runner's side channel.
type CapturingSink struct {
	mu       sync.Mutex
	received []trial.TrialOutcome
}

// NewCapturingSink creates an empty capturing sink.
func NewCapturingSink() *CapturingSink {
	return &CapturingSink{}
}

// Record stores the outcome.
func (s *CapturingSink) Record(_ context.Context, outcome trial.TrialOutcome) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.received = append(s.received, outcome)
	return nil
}

// Received returns a copy of the captured outcomes.
func (s *CapturingSink) Received() []trial.TrialOutcome {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]trial.TrialOutcome, len(s.received))
	copy(out, s.received)
	return out
}

// FailingSink rejects every notification, for exercising the advisory
// warning path.
type FailingSink struct{}

// Record always fails.
func (FailingSink) Record(context.Context, trial.TrialOutcome) error {
	return errors.New("sink unavailable")
}

// RecordingPresenter captures the stimuli the runner exposes to the
// presentation boundary.
type RecordingPresenter struct {
	mu        sync.Mutex
	presented []trial.Stimulus
	cleared   int
}

// NewRecordingPresenter creates an empty recording presenter.
func NewRecordingPresenter() *RecordingPresenter {
	return &RecordingPresenter{}
}

// Present records the stimulus.
func (p *RecordingPresenter) Present(_ core.RunID, _ int, stimulus trial.Stimulus) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.presented = append(p.presented, stimulus)
}

// Clear counts display clears.
func (p *RecordingPresenter) Clear(core.RunID) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.cleared++
}

// Cleared returns how many times the display was cleared.
func (p *RecordingPresenter) Cleared() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cleared
}

// Presented returns a copy of the stimuli shown so far.
func (p *RecordingPresenter) Presented() []trial.Stimulus {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]trial.Stimulus, len(p.presented))
	copy(out, p.presented)
	return out
}
