package trial

import (
	"coglab/domain/core"
)

// Condition is an experimental category a trial belongs to, used for
// balanced allocation and contrast analysis.
type Condition string

// Common conditions for interference designs. Configs may supply any
// distinct tag set; these are the conventional ones.
const (
	ConditionCongruent   Condition = "congruent"
	ConditionIncongruent Condition = "incongruent"
	ConditionNeutral     Condition = "neutral"
)

// ResponseNone is the response token recorded when a trial times out
// before any qualifying input arrives.
const ResponseNone = "none"

// TrialSpec is an immutable description of one trial to be presented.
// Created in bulk by the design generator, consumed read-only by the
// runner, never mutated after creation.
type TrialSpec struct {
	ID              core.TrialID `json:"id"`
	Condition       Condition    `json:"condition"`
	Stimulus        Stimulus     `json:"stimulus"`
	CorrectResponse string       `json:"correct_response"`
}

// TrialOutcome is the result of one executed trial. Created exactly once
// per trial by the runner and immutable afterward.
type TrialOutcome struct {
	RunID      core.RunID     `json:"run_id" db:"run_id"`
	TrialID    core.TrialID   `json:"trial_id" db:"trial_id"`
	Index      int            `json:"index" db:"trial_index"`
	Condition  Condition      `json:"condition" db:"condition"`
	Response   string         `json:"response" db:"response"`
	Correct    bool           `json:"correct" db:"correct"`
	LatencyMS  core.Millis    `json:"latency_ms" db:"latency_ms"`
	RecordedAt core.Timestamp `json:"recorded_at" db:"recorded_at"`
}

// TimedOut reports whether the trial resolved without a qualifying input.
func (o TrialOutcome) TimedOut() bool {
	return o.Response == ResponseNone
}
