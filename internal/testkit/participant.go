package testkit

import (
	"math"
	"math/rand"
	"time"

	"coglab/domain/core"
	"coglab/domain/trial"
)

// ParticipantModel describes a simulated participant's response
// behavior. Latencies are drawn from a normal distribution per
// condition; accuracy is a per-condition hit probability.
type ParticipantModel struct {
	// BaseLatency is the mean response latency.
	BaseLatency time.Duration
	// LatencyJitter is the latency standard deviation.
	LatencyJitter time.Duration
	// InterferenceSlowdown is added to the mean on incongruent trials.
	InterferenceSlowdown time.Duration
	// Accuracy is the probability of answering correctly.
	Accuracy float64
	// LapseRate is the probability of not answering at all (timeout).
	LapseRate float64
}

// DefaultParticipantModel returns a plausible adult performance profile
// for an interference task.
func DefaultParticipantModel() ParticipantModel {
	return ParticipantModel{
		BaseLatency:          650 * time.Millisecond,
		LatencyJitter:        120 * time.Millisecond,
		InterferenceSlowdown: 90 * time.Millisecond,
		Accuracy:             0.93,
		LapseRate:            0.02,
	}
}

// SimulatedParticipant produces seeded responses for trial specs.
type SimulatedParticipant struct {
	model ParticipantModel
	rng   *rand.Rand
}

// NewSimulatedParticipant creates a participant with deterministic
// behavior for a given seed.
func NewSimulatedParticipant(model ParticipantModel, rng *rand.Rand) *SimulatedParticipant {
	return &SimulatedParticipant{model: model, rng: rng}
}

// Respond decides the response token and latency for one trial. respond
// reports false when the participant lapses and lets the trial time out.
func (p *SimulatedParticipant) Respond(spec trial.TrialSpec, wrongTokens []string) (token string, latency time.Duration, respond bool) {
	if p.rng.Float64() < p.model.LapseRate {
		return "", 0, false
	}

	mean := p.model.BaseLatency
	if spec.Condition == trial.ConditionIncongruent {
		mean += p.model.InterferenceSlowdown
	}
	jitter := time.Duration(p.rng.NormFloat64() * float64(p.model.LatencyJitter))
	latency = mean + jitter
	if latency < 50*time.Millisecond {
		latency = 50 * time.Millisecond
	}

	if p.rng.Float64() < p.model.Accuracy || len(wrongTokens) == 0 {
		return spec.CorrectResponse, latency, true
	}
	wrong := wrongTokens[p.rng.Intn(len(wrongTokens))]
	for wrong == spec.CorrectResponse {
		wrong = wrongTokens[p.rng.Intn(len(wrongTokens))]
	}
	return wrong, latency, true
}

// SynthesizeOutcomes converts a trial sequence directly into the outcome
// stream a simulated participant would produce, without running the
// timing loop. Useful for aggregate-level tests and the simulator CLI
// when wall-clock pacing is irrelevant.
func (p *SimulatedParticipant) SynthesizeOutcomes(specs []trial.TrialSpec, responseWindow time.Duration, wrongTokens []string) []trial.TrialOutcome {
	outcomes := make([]trial.TrialOutcome, 0, len(specs))
	for i, spec := range specs {
		token, latency, respond := p.Respond(spec, wrongTokens)
		o := trial.TrialOutcome{
			TrialID:   spec.ID,
			Index:     i,
			Condition: spec.Condition,
		}
		if !respond {
			o.Response = trial.ResponseNone
			o.LatencyMS = millis(responseWindow)
		} else {
			if latency > responseWindow {
				latency = responseWindow
			}
			o.Response = token
			o.Correct = token == spec.CorrectResponse
			o.LatencyMS = millis(latency)
		}
		outcomes = append(outcomes, o)
	}
	return outcomes
}

func millis(d time.Duration) core.Millis {
	return core.Millis(math.Round(float64(d) / float64(time.Millisecond)))
}
