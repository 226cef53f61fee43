package runner

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"coglab/domain/core"
	"coglab/domain/trial"
	"coglab/internal"
	"coglab/ports"
)

// State is the runner's position in the trial lifecycle.
type State string

const (
	StateIdle             State = "idle"
	StatePresenting       State = "presenting"
	StateAwaitingResponse State = "awaiting_response"
	StateScoring          State = "scoring"
	StateComplete         State = "complete"
	StateAborted          State = "aborted"
)

// Terminal reports whether no further input is accepted in this state.
func (s State) Terminal() bool {
	return s == StateComplete || s == StateAborted
}

// Snapshot is a read-only view of the run state for the boundary.
type Snapshot struct {
	RunID core.RunID `json:"run_id"`
	State State      `json:"state"`
	// Entered counts trials that have begun presenting. It equals the
	// number of scored outcomes while idle between trials and runs one
	// ahead while a trial is active.
	Entered   int              `json:"entered"`
	Completed int              `json:"completed"`
	Total     int              `json:"total"`
	Active    *trial.TrialSpec `json:"active,omitempty"`
	Warnings  []string         `json:"warnings,omitempty"`
}

// Options configures a runner's collaborators. Clock and Sink are
// required; Presenter and Logger are optional.
type Options struct {
	Clock     ports.Clock
	Sink      ports.OutcomeSink
	Presenter ports.StimulusPresenter
	Logger    *internal.Logger
	// InterTrialDelay is the fixed pause between scored trials.
	InterTrialDelay time.Duration
	// MaxNotifyWorkers bounds concurrent sink notifications.
	MaxNotifyWorkers int64
}

// Runner drives one participant's trial sequence through the
// Presenting -> AwaitingResponse -> Scoring loop. One runner per run;
// the run state is exclusively owned and all transitions happen on the
// Run goroutine, so cross-run concurrency needs no shared locks.
type Runner struct {
	id     core.RunID
	timing trial.Timing
	seq    []trial.TrialSpec

	clock           ports.Clock
	sink            ports.OutcomeSink
	presenter       ports.StimulusPresenter
	logger          *internal.Logger
	interTrialDelay time.Duration

	inputCh   chan string
	abortCh   chan struct{}
	abortOnce sync.Once
	done      chan struct{}

	notifySem *semaphore.Weighted
	notifyWG  sync.WaitGroup

	mu         sync.Mutex
	state      State
	entered    int
	active     *trial.TrialSpec
	trialStart time.Time
	outcomes   []trial.TrialOutcome
	warnings   []string
}

// New creates a runner for a trial sequence. An empty sequence is
// rejected synchronously before any trial runs.
func New(id core.RunID, timing trial.Timing, seq []trial.TrialSpec, opts Options) (*Runner, error) {
	if len(seq) == 0 {
		return nil, core.ErrEmptySequence
	}
	if opts.Clock == nil {
		return nil, fmt.Errorf("runner requires a clock")
	}
	if opts.Sink == nil {
		return nil, fmt.Errorf("runner requires an outcome sink")
	}
	if opts.Logger == nil {
		opts.Logger = internal.DefaultLogger
	}
	if opts.MaxNotifyWorkers < 1 {
		opts.MaxNotifyWorkers = 4
	}

	return &Runner{
		id:              id,
		timing:          timing,
		seq:             seq,
		clock:           opts.Clock,
		sink:            opts.Sink,
		presenter:       opts.Presenter,
		logger:          opts.Logger,
		interTrialDelay: opts.InterTrialDelay,
		inputCh:         make(chan string),
		abortCh:         make(chan struct{}),
		done:            make(chan struct{}),
		notifySem:       semaphore.NewWeighted(opts.MaxNotifyWorkers),
		state:           StateIdle,
		outcomes:        make([]trial.TrialOutcome, 0, len(seq)),
	}, nil
}

// Run executes the trial sequence to completion or abort. It blocks the
// calling goroutine; responses arrive through Submit from other
// goroutines. Context cancellation is treated as an abort.
func (r *Runner) Run(ctx context.Context) error {
	defer close(r.done)

	for i := range r.seq {
		spec := r.seq[i]

		// Fixation interval before the stimulus appears.
		if d := r.timing.FixationMS.Duration(); d > 0 {
			if !r.pause(ctx, d) {
				return r.finishAborted()
			}
		}

		r.transition(StatePresenting, &spec)
		if r.presenter != nil {
			r.presenter.Present(r.id, i, spec.Stimulus)
		}

		// Optional fixed stimulus duration: the stimulus stays up but no
		// input qualifies until it elapses.
		if d := r.timing.StimulusDurationMS.Duration(); d > 0 {
			if !r.pause(ctx, d) {
				return r.finishAborted()
			}
		}

		response, timedOut, aborted := r.awaitResponse(ctx)
		if aborted {
			return r.finishAborted()
		}

		outcome := r.score(i, spec, response, timedOut)
		if r.presenter != nil {
			r.presenter.Clear(r.id)
		}
		r.notify(outcome)

		if i < len(r.seq)-1 && r.interTrialDelay > 0 {
			if !r.pause(ctx, r.interTrialDelay) {
				return r.finishAborted()
			}
		}
	}

	r.transition(StateComplete, nil)
	// Let in-flight notifications drain before reporting completion.
	r.notifyWG.Wait()
	return nil
}

// Submit offers a response token to the active trial. It reports whether
// the token qualified: the first token to arrive while the runner is
// suspended in AwaitingResponse wins, everything else is ignored.
// Non-blocking and safe from any goroutine.
func (r *Runner) Submit(token string) bool {
	if token == "" {
		return false
	}
	select {
	case r.inputCh <- token:
		return true
	default:
		return false
	}
}

// Abort terminates the run from any non-terminal state. The active
// trial is discarded without an outcome; scored outcomes are preserved.
// Safe to call more than once.
func (r *Runner) Abort() {
	r.abortOnce.Do(func() { close(r.abortCh) })
}

// Done is closed when the run reaches a terminal state.
func (r *Runner) Done() <-chan struct{} { return r.done }

// State returns the current lifecycle state.
func (r *Runner) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Outcomes returns a copy of the scored outcomes so far.
func (r *Runner) Outcomes() []trial.TrialOutcome {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]trial.TrialOutcome, len(r.outcomes))
	copy(out, r.outcomes)
	return out
}

// Warnings returns the advisory notification failures collected so far.
func (r *Runner) Warnings() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.warnings))
	copy(out, r.warnings)
	return out
}

// Snapshot returns a consistent view of the run state.
func (r *Runner) Snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	snap := Snapshot{
		RunID:     r.id,
		State:     r.state,
		Entered:   r.entered,
		Completed: len(r.outcomes),
		Total:     len(r.seq),
		Active:    r.active,
	}
	if len(r.warnings) > 0 {
		snap.Warnings = make([]string, len(r.warnings))
		copy(snap.Warnings, r.warnings)
	}
	return snap
}

// transition moves the state machine and maintains the entered-trial
// accounting. active is non-nil only between Presenting and Scoring.
func (r *Runner) transition(state State, active *trial.TrialSpec) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if state == StatePresenting {
		r.entered++
	}
	r.state = state
	r.active = active
}

// awaitResponse parks until the first qualifying input, the response
// window timeout, or an abort - whichever comes first. The window timer
// is disarmed the moment input is accepted, so at most one of
// {response, timeout} resolves the trial.
func (r *Runner) awaitResponse(ctx context.Context) (response string, timedOut, aborted bool) {
	r.mu.Lock()
	r.state = StateAwaitingResponse
	r.trialStart = r.clock.Now()
	r.mu.Unlock()

	timer := r.clock.NewTimer(r.timing.ResponseWindow())
	select {
	case token := <-r.inputCh:
		timer.Stop()
		return token, false, false
	case <-timer.C():
		return "", true, false
	case <-r.abortCh:
		timer.Stop()
		return "", false, true
	case <-ctx.Done():
		timer.Stop()
		return "", false, true
	}
}

// score resolves the active trial into an outcome and appends it.
// Timeouts record the full response window as their latency, keeping the
// value exact rather than subject to scheduler jitter.
func (r *Runner) score(index int, spec trial.TrialSpec, response string, timedOut bool) trial.TrialOutcome {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.state = StateScoring

	var latency core.Millis
	if timedOut {
		response = trial.ResponseNone
		latency = r.timing.ResponseWindowMS
	} else {
		latency = core.NewMillis(r.clock.Now().Sub(r.trialStart))
	}

	outcome := trial.TrialOutcome{
		RunID:      r.id,
		TrialID:    spec.ID,
		Index:      index,
		Condition:  spec.Condition,
		Response:   response,
		Correct:    !timedOut && response == spec.CorrectResponse,
		LatencyMS:  latency,
		RecordedAt: core.Now(),
	}
	r.outcomes = append(r.outcomes, outcome)
	r.active = nil
	r.trialStart = time.Time{}
	r.state = StateIdle
	return outcome
}

// notify dispatches the persistence side channel without blocking the
// trial loop. Failures become advisory warnings, never runner errors.
func (r *Runner) notify(outcome trial.TrialOutcome) {
	r.notifyWG.Add(1)
	go func() {
		defer r.notifyWG.Done()
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := r.notifySem.Acquire(ctx, 1); err != nil {
			r.addWarning(fmt.Sprintf("outcome notification for trial %d not dispatched: %v", outcome.Index, err))
			return
		}
		defer r.notifySem.Release(1)

		if err := r.sink.Record(ctx, outcome); err != nil {
			r.addWarning(fmt.Sprintf("outcome notification failed for trial %d: %v", outcome.Index, err))
			r.logger.Warn("run %s: outcome notification failed for trial %d: %v", r.id, outcome.Index, err)
		}
	}()
}

func (r *Runner) addWarning(msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.warnings = append(r.warnings, msg)
}

// pause waits out a fixed delay unless aborted first.
func (r *Runner) pause(ctx context.Context, d time.Duration) bool {
	timer := r.clock.NewTimer(d)
	select {
	case <-timer.C():
		return true
	case <-r.abortCh:
		timer.Stop()
		return false
	case <-ctx.Done():
		timer.Stop()
		return false
	}
}

func (r *Runner) finishAborted() error {
	r.mu.Lock()
	r.state = StateAborted
	r.active = nil
	r.trialStart = time.Time{}
	r.mu.Unlock()
	if r.presenter != nil {
		r.presenter.Clear(r.id)
	}
	r.notifyWG.Wait()
	return nil
}
