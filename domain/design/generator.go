package design

import (
	"fmt"
	"math/rand"

	"coglab/domain/core"
	"coglab/domain/trial"
)

// Generate produces the balanced trial sequence for one run.
//
// Allocation: each condition receives floor(trialCount/len(conditions))
// trials in condition order, then remainder trials are generated one at
// a time with the condition drawn uniformly at random from the full set
// until the running total equals trialCount. The total is always exact;
// the imbalance is confined to the remainder trials.
//
// When cfg.Randomize is set the final order is a uniform permutation
// (rand.Shuffle, Fisher-Yates); otherwise trials stay grouped by
// condition in generation order.
//
// Generation is pure given the rng: the same config and an identically
// seeded rng produce an identical sequence.
func Generate(cfg trial.StudyConfig, rng *rand.Rand, factory StimulusFactory) ([]trial.TrialSpec, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if factory == nil {
		var err error
		factory, err = FactoryFor(cfg.Task)
		if err != nil {
			return nil, core.NewInvalidConfigError("task", err.Error())
		}
	}

	specs := make([]trial.TrialSpec, 0, cfg.TrialCount)
	perCondition := cfg.TrialCount / len(cfg.Conditions)

	for _, cond := range cfg.Conditions {
		for i := 0; i < perCondition; i++ {
			spec, err := buildSpec(cond, rng, factory)
			if err != nil {
				return nil, err
			}
			specs = append(specs, spec)
		}
	}

	// Remainder trials: uniform random condition until the count is exact.
	for len(specs) < cfg.TrialCount {
		cond := cfg.Conditions[rng.Intn(len(cfg.Conditions))]
		spec, err := buildSpec(cond, rng, factory)
		if err != nil {
			return nil, err
		}
		specs = append(specs, spec)
	}

	if cfg.Randomize {
		rng.Shuffle(len(specs), func(i, j int) {
			specs[i], specs[j] = specs[j], specs[i]
		})
	}

	return specs, nil
}

func buildSpec(cond trial.Condition, rng *rand.Rand, factory StimulusFactory) (trial.TrialSpec, error) {
	stimulus, correct, err := factory.Build(cond, rng)
	if err != nil {
		return trial.TrialSpec{}, core.NewInvalidConfigError("conditions", err.Error())
	}
	if correct == "" {
		return trial.TrialSpec{}, fmt.Errorf("stimulus factory produced empty correct response for condition %q", cond)
	}
	return trial.TrialSpec{
		ID:              core.TrialID(core.NewID()),
		Condition:       cond,
		Stimulus:        stimulus,
		CorrectResponse: correct,
	}, nil
}
