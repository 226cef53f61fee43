package session

import (
	"context"
	"sync"

	"coglab/domain/core"
	"coglab/domain/design"
	"coglab/domain/metrics"
	"coglab/domain/trial"
	"coglab/internal"
	"coglab/internal/config"
	"coglab/internal/runner"
	"coglab/ports"
)

// RunManager owns the live participant runs. Each run gets an
// independent runner and run state; the manager only routes boundary
// calls to the right runner, so runs never share mutable state.
type RunManager struct {
	clock    ports.Clock
	rng      ports.RNG
	sink     ports.OutcomeSink
	analyzer *metrics.Analyzer
	logger   *internal.Logger
	runnerCf config.RunnerConfig

	mu   sync.RWMutex
	runs map[core.RunID]*managedRun
}

type managedRun struct {
	runner *runner.Runner
	cancel context.CancelFunc
	config trial.StudyConfig
}

// NewRunManager creates a run manager over the given collaborators.
func NewRunManager(clock ports.Clock, rng ports.RNG, sink ports.OutcomeSink, analyzer *metrics.Analyzer, logger *internal.Logger, runnerCf config.RunnerConfig) *RunManager {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &RunManager{
		clock:    clock,
		rng:      rng,
		sink:     sink,
		analyzer: analyzer,
		logger:   logger,
		runnerCf: runnerCf,
		runs:     make(map[core.RunID]*managedRun),
	}
}

// CreateRun validates the study config, generates the trial sequence,
// and starts the run's trial loop on its own goroutine.
func (m *RunManager) CreateRun(ctx context.Context, cfg trial.StudyConfig, presenter ports.StimulusPresenter) (core.RunID, error) {
	if err := cfg.Validate(); err != nil {
		return "", err
	}

	runID := core.RunID(core.NewID())
	stream := m.rng.Stream("design:"+runID.String(), cfg.Seed)
	seq, err := design.Generate(cfg, stream, nil)
	if err != nil {
		return "", err
	}

	r, err := runner.New(runID, cfg.Timing, seq, runner.Options{
		Clock:            m.clock,
		Sink:             m.sink,
		Presenter:        presenter,
		Logger:           m.logger,
		InterTrialDelay:  m.runnerCf.InterTrialDelay,
		MaxNotifyWorkers: m.runnerCf.MaxNotifyWorkers,
	})
	if err != nil {
		return "", err
	}

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	m.mu.Lock()
	m.runs[runID] = &managedRun{runner: r, cancel: cancel, config: cfg}
	m.mu.Unlock()

	go func() {
		if err := r.Run(runCtx); err != nil {
			m.logger.Error("run %s terminated: %v", runID, err)
		}
		m.logger.Info("run %s finished in state %s with %d outcomes", runID, r.State(), len(r.Outcomes()))
	}()

	m.logger.Info("run %s started: task=%s trials=%d conditions=%d", runID, cfg.Task, cfg.TrialCount, len(cfg.Conditions))
	return runID, nil
}

// SubmitResponse routes a response token to the run's active trial. It
// reports whether the token qualified.
func (m *RunManager) SubmitResponse(runID core.RunID, token string) (bool, error) {
	run, err := m.get(runID)
	if err != nil {
		return false, err
	}
	if run.runner.State().Terminal() {
		return false, core.ErrRunTerminal
	}
	return run.runner.Submit(token), nil
}

// Abort terminates a run, preserving already-scored outcomes.
func (m *RunManager) Abort(runID core.RunID) error {
	run, err := m.get(runID)
	if err != nil {
		return err
	}
	run.runner.Abort()
	run.cancel()
	return nil
}

// Snapshot returns the run's current state for the boundary.
func (m *RunManager) Snapshot(runID core.RunID) (runner.Snapshot, error) {
	run, err := m.get(runID)
	if err != nil {
		return runner.Snapshot{}, err
	}
	return run.runner.Snapshot(), nil
}

// Outcomes returns the scored outcomes of a run so far.
func (m *RunManager) Outcomes(runID core.RunID) ([]trial.TrialOutcome, error) {
	run, err := m.get(runID)
	if err != nil {
		return nil, err
	}
	return run.runner.Outcomes(), nil
}

// Analyze computes the summary statistics over the run's outcomes so
// far. Valid in every state: partial and empty runs yield weak but
// well-formed results.
func (m *RunManager) Analyze(runID core.RunID) (metrics.AnalysisResult, error) {
	run, err := m.get(runID)
	if err != nil {
		return metrics.AnalysisResult{}, err
	}
	return m.analyzer.Analyze(run.runner.Outcomes()), nil
}

// Remove drops a terminal run from the manager. Running runs are
// aborted first.
func (m *RunManager) Remove(runID core.RunID) error {
	run, err := m.get(runID)
	if err != nil {
		return err
	}
	run.runner.Abort()
	run.cancel()

	m.mu.Lock()
	delete(m.runs, runID)
	m.mu.Unlock()
	return nil
}

func (m *RunManager) get(runID core.RunID) (*managedRun, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	run, ok := m.runs[runID]
	if !ok {
		return nil, core.ErrRunNotFound
	}
	return run, nil
}
