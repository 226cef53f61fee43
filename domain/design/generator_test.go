package design

import (
	"errors"
	"math/rand"
	"sort"
	"testing"

	"coglab/domain/core"
	"coglab/domain/trial"
)

func colorWordConfig(trialCount int, conditions []trial.Condition, randomize bool) trial.StudyConfig {
	return trial.StudyConfig{
		Task:       trial.TaskColorWord,
		TrialCount: trialCount,
		Conditions: conditions,
		Randomize:  randomize,
		Timing:     trial.DefaultTiming(),
		Seed:       7,
	}
}

func newRNG(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}

func TestGenerate_ExactTrialCount(t *testing.T) {
	cases := []struct {
		name       string
		trialCount int
		conditions []trial.Condition
	}{
		{"evenly divisible", 30, []trial.Condition{trial.ConditionCongruent, trial.ConditionIncongruent, trial.ConditionNeutral}},
		{"with remainder", 31, []trial.Condition{trial.ConditionCongruent, trial.ConditionIncongruent, trial.ConditionNeutral}},
		{"single trial", 1, []trial.Condition{trial.ConditionCongruent, trial.ConditionIncongruent}},
		{"single condition", 17, []trial.Condition{trial.ConditionNeutral}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			specs, err := Generate(colorWordConfig(tc.trialCount, tc.conditions, false), newRNG(1), nil)
			if err != nil {
				t.Fatalf("Generate failed: %v", err)
			}
			if len(specs) != tc.trialCount {
				t.Errorf("expected %d trials, got %d", tc.trialCount, len(specs))
			}
		})
	}
}

func TestGenerate_BalancedAllocation(t *testing.T) {
	conditions := []trial.Condition{trial.ConditionCongruent, trial.ConditionIncongruent, trial.ConditionNeutral}
	trialCount := 32 // 10 per condition + 2 remainder
	perCondition := trialCount / len(conditions)
	remainder := trialCount % len(conditions)

	specs, err := Generate(colorWordConfig(trialCount, conditions, false), newRNG(3), nil)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	counts := make(map[trial.Condition]int)
	for _, spec := range specs {
		counts[spec.Condition]++
	}
	total := 0
	for _, cond := range conditions {
		if counts[cond] < perCondition {
			t.Errorf("condition %s got %d trials, below base allocation %d", cond, counts[cond], perCondition)
		}
		if counts[cond] > perCondition+remainder {
			t.Errorf("condition %s got %d trials, above base allocation plus remainder %d", cond, counts[cond], perCondition+remainder)
		}
		total += counts[cond]
	}
	if total != trialCount {
		t.Errorf("condition counts sum to %d, want %d", total, trialCount)
	}
}

func TestGenerate_GroupedOrderWithoutRandomize(t *testing.T) {
	// 10 trials over 2 conditions: 5 congruent then 5 incongruent, no
	// remainder trials.
	conditions := []trial.Condition{trial.ConditionCongruent, trial.ConditionIncongruent}
	specs, err := Generate(colorWordConfig(10, conditions, false), newRNG(5), nil)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if len(specs) != 10 {
		t.Fatalf("expected 10 trials, got %d", len(specs))
	}
	for i := 0; i < 5; i++ {
		if specs[i].Condition != trial.ConditionCongruent {
			t.Errorf("trial %d: expected congruent, got %s", i, specs[i].Condition)
		}
	}
	for i := 5; i < 10; i++ {
		if specs[i].Condition != trial.ConditionIncongruent {
			t.Errorf("trial %d: expected incongruent, got %s", i, specs[i].Condition)
		}
	}
}

func TestGenerate_DeterministicWithSeed(t *testing.T) {
	conditions := []trial.Condition{trial.ConditionCongruent, trial.ConditionIncongruent, trial.ConditionNeutral}
	cfg := colorWordConfig(25, conditions, false)

	first, err := Generate(cfg, newRNG(99), nil)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	second, err := Generate(cfg, newRNG(99), nil)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	if len(first) != len(second) {
		t.Fatalf("sequence lengths differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i].Condition != second[i].Condition {
			t.Errorf("trial %d: condition %s vs %s", i, first[i].Condition, second[i].Condition)
		}
		if first[i].Stimulus != second[i].Stimulus {
			t.Errorf("trial %d: stimulus %v vs %v", i, first[i].Stimulus, second[i].Stimulus)
		}
		if first[i].CorrectResponse != second[i].CorrectResponse {
			t.Errorf("trial %d: correct response %s vs %s", i, first[i].CorrectResponse, second[i].CorrectResponse)
		}
	}
}

func TestGenerate_RandomizeIsPermutation(t *testing.T) {
	conditions := []trial.Condition{trial.ConditionCongruent, trial.ConditionIncongruent, trial.ConditionNeutral}

	grouped, err := Generate(colorWordConfig(24, conditions, false), newRNG(11), nil)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	shuffled, err := Generate(colorWordConfig(24, conditions, true), newRNG(11), nil)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	if len(grouped) != len(shuffled) {
		t.Fatalf("sequence lengths differ: %d vs %d", len(grouped), len(shuffled))
	}

	key := func(s trial.TrialSpec) string {
		text := s.Stimulus.(trial.TextStimulus)
		return string(s.Condition) + "|" + text.Word + "|" + text.Display + "|" + s.CorrectResponse
	}
	groupedKeys := make([]string, len(grouped))
	shuffledKeys := make([]string, len(shuffled))
	for i := range grouped {
		groupedKeys[i] = key(grouped[i])
		shuffledKeys[i] = key(shuffled[i])
	}
	sort.Strings(groupedKeys)
	sort.Strings(shuffledKeys)
	for i := range groupedKeys {
		if groupedKeys[i] != shuffledKeys[i] {
			t.Fatalf("shuffled sequence is not a permutation of the grouped one (mismatch at %d: %s vs %s)", i, groupedKeys[i], shuffledKeys[i])
		}
	}
}

func TestGenerate_InvalidConfig(t *testing.T) {
	cases := []struct {
		name string
		cfg  trial.StudyConfig
	}{
		{"zero trials", colorWordConfig(0, []trial.Condition{trial.ConditionCongruent}, false)},
		{"negative trials", colorWordConfig(-3, []trial.Condition{trial.ConditionCongruent}, false)},
		{"no conditions", colorWordConfig(10, nil, false)},
		{"duplicate conditions", colorWordConfig(10, []trial.Condition{trial.ConditionCongruent, trial.ConditionCongruent}, false)},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Generate(tc.cfg, newRNG(1), nil)
			if !errors.Is(err, core.ErrInvalidConfig) {
				t.Errorf("expected ErrInvalidConfig, got %v", err)
			}
		})
	}
}

func TestColorWordFactory_ConditionSemantics(t *testing.T) {
	factory := NewColorWordFactory()
	rng := newRNG(21)

	for i := 0; i < 200; i++ {
		congruent, correct, err := factory.Build(trial.ConditionCongruent, rng)
		if err != nil {
			t.Fatalf("congruent build failed: %v", err)
		}
		text := congruent.(trial.TextStimulus)
		if text.Word != text.Display {
			t.Errorf("congruent trial: word %q != display %q", text.Word, text.Display)
		}
		if correct != factory.responseKey[text.Display] {
			t.Errorf("correct response %q does not map from display %q", correct, text.Display)
		}

		incongruent, correct, err := factory.Build(trial.ConditionIncongruent, rng)
		if err != nil {
			t.Fatalf("incongruent build failed: %v", err)
		}
		text = incongruent.(trial.TextStimulus)
		if text.Word == text.Display {
			t.Errorf("incongruent trial: word %q equals display", text.Word)
		}
		if correct != factory.responseKey[text.Display] {
			t.Errorf("correct response %q does not map from display %q", correct, text.Display)
		}

		neutral, _, err := factory.Build(trial.ConditionNeutral, rng)
		if err != nil {
			t.Fatalf("neutral build failed: %v", err)
		}
		text = neutral.(trial.TextStimulus)
		if text.Word != "XXXX" {
			t.Errorf("neutral trial: expected placeholder word, got %q", text.Word)
		}
	}
}

func TestImageRecallFactory_ConditionSemantics(t *testing.T) {
	factory := NewImageRecallFactory()
	rng := newRNG(31)

	stim, correct, err := factory.Build(ConditionTarget, rng)
	if err != nil {
		t.Fatalf("target build failed: %v", err)
	}
	if correct != "old" {
		t.Errorf("target trial: expected correct response old, got %q", correct)
	}
	if stim.Kind() != trial.StimulusImage {
		t.Errorf("expected image stimulus, got %s", stim.Kind())
	}

	_, correct, err = factory.Build(ConditionLure, rng)
	if err != nil {
		t.Fatalf("lure build failed: %v", err)
	}
	if correct != "new" {
		t.Errorf("lure trial: expected correct response new, got %q", correct)
	}

	if _, _, err := factory.Build(trial.ConditionCongruent, rng); err == nil {
		t.Error("expected error for condition outside the image recall task")
	}
}
