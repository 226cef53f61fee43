package memory

import (
	"context"
	"sync"

	"coglab/domain/core"
	"coglab/domain/trial"
)

// OutcomeStore is the in-memory outcome persistence used by default and
// in tests. Append-only per run; reads return copies.
type OutcomeStore struct {
	mu       sync.RWMutex
	outcomes map[core.RunID][]trial.TrialOutcome
}

// NewOutcomeStore creates an empty in-memory store.
func NewOutcomeStore() *OutcomeStore {
	return &OutcomeStore{outcomes: make(map[core.RunID][]trial.TrialOutcome)}
}

// Record appends one outcome to its run's sequence.
func (s *OutcomeStore) Record(_ context.Context, outcome trial.TrialOutcome) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.outcomes[outcome.RunID] = append(s.outcomes[outcome.RunID], outcome)
	return nil
}

// ListByRun returns the recorded outcomes for a run in arrival order.
func (s *OutcomeStore) ListByRun(_ context.Context, runID core.RunID) ([]trial.TrialOutcome, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	stored := s.outcomes[runID]
	out := make([]trial.TrialOutcome, len(stored))
	copy(out, stored)
	return out, nil
}
