package trial

import (
	"time"

	"github.com/go-playground/validator/v10"

	"coglab/domain/core"
)

// TaskFamily selects which stimulus factory a study draws trials from.
type TaskFamily string

const (
	TaskColorWord   TaskFamily = "color_word"
	TaskImageRecall TaskFamily = "image_recall"
)

// Timing holds the per-trial timing parameters of a study. All values
// are whole milliseconds.
type Timing struct {
	// FixationMS is how long the fixation cross is shown before each
	// stimulus.
	FixationMS core.Millis `json:"fixation_ms" validate:"gte=0"`
	// ResponseWindowMS is the maximum time allowed for a qualifying
	// input before the trial times out.
	ResponseWindowMS core.Millis `json:"response_window_ms" validate:"gt=0"`
	// StimulusDurationMS, when nonzero, holds the stimulus on screen
	// for a fixed period before the trial accepts input.
	StimulusDurationMS core.Millis `json:"stimulus_duration_ms" validate:"gte=0"`
}

// ResponseWindow returns the response window as a duration.
func (t Timing) ResponseWindow() time.Duration { return t.ResponseWindowMS.Duration() }

// StudyConfig is the external input describing one participant run.
// Owned by the experiment-authoring layer; read-only to the engine.
type StudyConfig struct {
	StudyID    core.StudyID `json:"study_id"`
	Task       TaskFamily   `json:"task" validate:"required,oneof=color_word image_recall"`
	TrialCount int          `json:"trial_count" validate:"gte=1"`
	Conditions []Condition  `json:"conditions" validate:"min=1,unique"`
	Randomize  bool         `json:"randomize"`
	Timing     Timing       `json:"timing"`
	Seed       int64        `json:"seed"`
}

var validate = validator.New()

// Validate checks the config against both struct tags and domain rules.
// All violations surface as core.ErrInvalidConfig so callers can treat
// them uniformly as a synchronous, pre-run failure.
func (c StudyConfig) Validate() error {
	if c.TrialCount < 1 {
		return core.NewInvalidConfigError("trial_count", "must be at least 1")
	}
	if len(c.Conditions) == 0 {
		return core.NewInvalidConfigError("conditions", "must be non-empty")
	}
	seen := make(map[Condition]bool, len(c.Conditions))
	for _, cond := range c.Conditions {
		if cond == "" {
			return core.NewInvalidConfigError("conditions", "condition tag cannot be empty")
		}
		if seen[cond] {
			return core.NewInvalidConfigError("conditions", "condition tags must be distinct: "+string(cond))
		}
		seen[cond] = true
	}
	if err := validate.Struct(c); err != nil {
		return core.NewInvalidConfigError("study_config", err.Error())
	}
	return nil
}

// DefaultTiming returns the timing parameters used when a study does not
// override them.
func DefaultTiming() Timing {
	return Timing{
		FixationMS:         500,
		ResponseWindowMS:   2000,
		StimulusDurationMS: 0,
	}
}
