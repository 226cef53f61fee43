package design

import (
	"fmt"
	"math/rand"

	"coglab/domain/trial"
)

// StimulusFactory builds the stimulus content and correct response for
// one trial of a given condition. Implementations carry the semantics of
// one task family; the generator itself is family-agnostic.
type StimulusFactory interface {
	Build(cond trial.Condition, rng *rand.Rand) (trial.Stimulus, string, error)
}

// FactoryFor returns the stimulus factory for a task family.
func FactoryFor(task trial.TaskFamily) (StimulusFactory, error) {
	switch task {
	case trial.TaskColorWord:
		return NewColorWordFactory(), nil
	case trial.TaskImageRecall:
		return NewImageRecallFactory(), nil
	default:
		return nil, fmt.Errorf("unknown task family %q", task)
	}
}

// ColorWordFactory builds colour/word interference stimuli. The correct
// response is always the response key mapped from the display colour,
// independent of the word shown.
type ColorWordFactory struct {
	colors      []string
	responseKey map[string]string
	neutralWord string
}

// NewColorWordFactory returns a factory over the standard four-colour
// palette with first-letter response keys.
func NewColorWordFactory() *ColorWordFactory {
	return &ColorWordFactory{
		colors: []string{"red", "green", "blue", "yellow"},
		responseKey: map[string]string{
			"red":    "r",
			"green":  "g",
			"blue":   "b",
			"yellow": "y",
		},
		neutralWord: "XXXX",
	}
}

// Build constructs one text stimulus for the given condition.
func (f *ColorWordFactory) Build(cond trial.Condition, rng *rand.Rand) (trial.Stimulus, string, error) {
	display := f.colors[rng.Intn(len(f.colors))]

	var word string
	switch cond {
	case trial.ConditionCongruent:
		word = display
	case trial.ConditionIncongruent:
		// Draw a word distinct from the display colour.
		word = f.colors[rng.Intn(len(f.colors))]
		for word == display {
			word = f.colors[rng.Intn(len(f.colors))]
		}
	case trial.ConditionNeutral:
		word = f.neutralWord
	default:
		return nil, "", fmt.Errorf("color/word task does not define condition %q", cond)
	}

	return trial.TextStimulus{Word: word, Display: display}, f.responseKey[display], nil
}

// ImageRecallFactory builds old/new recognition stimuli: targets are
// drawn from the studied set, lures from the foil set. The correct
// response names the set the image came from.
type ImageRecallFactory struct {
	targets []string
	lures   []string
}

// NewImageRecallFactory returns a factory over the built-in image pools.
func NewImageRecallFactory() *ImageRecallFactory {
	return &ImageRecallFactory{
		targets: []string{
			"img/studied_01.png", "img/studied_02.png", "img/studied_03.png",
			"img/studied_04.png", "img/studied_05.png", "img/studied_06.png",
		},
		lures: []string{
			"img/foil_01.png", "img/foil_02.png", "img/foil_03.png",
			"img/foil_04.png", "img/foil_05.png", "img/foil_06.png",
		},
	}
}

// Conditions recognized by the image recall task.
const (
	ConditionTarget trial.Condition = "target"
	ConditionLure   trial.Condition = "lure"
)

// Build constructs one image stimulus for the given condition.
func (f *ImageRecallFactory) Build(cond trial.Condition, rng *rand.Rand) (trial.Stimulus, string, error) {
	switch cond {
	case ConditionTarget:
		ref := f.targets[rng.Intn(len(f.targets))]
		return trial.ImageStimulus{ImageRef: ref, Label: "old or new?"}, "old", nil
	case ConditionLure:
		ref := f.lures[rng.Intn(len(f.lures))]
		return trial.ImageStimulus{ImageRef: ref, Label: "old or new?"}, "new", nil
	default:
		return nil, "", fmt.Errorf("image recall task does not define condition %q", cond)
	}
}
