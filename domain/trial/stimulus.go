package trial

// StimulusKind discriminates the stimulus variants a trial can present.
type StimulusKind string

const (
	StimulusText  StimulusKind = "text"
	StimulusImage StimulusKind = "image"
)

// Stimulus is the tagged payload presented during a trial. Each task
// family contributes one concrete variant; the runner treats stimuli as
// opaque and only the presentation boundary inspects them.
type Stimulus interface {
	Kind() StimulusKind
	// Prompt returns the participant-facing cue text (the word shown,
	// or the label attached to an image).
	Prompt() string
}

// TextStimulus is a word rendered with a display attribute, e.g. the
// word "RED" drawn in blue ink for a colour/word interference trial.
type TextStimulus struct {
	Word    string `json:"word"`
	Display string `json:"display"`
}

func (s TextStimulus) Kind() StimulusKind { return StimulusText }
func (s TextStimulus) Prompt() string     { return s.Word }

// ImageStimulus references an image shown during recall trials.
type ImageStimulus struct {
	ImageRef string `json:"image_ref"`
	Label    string `json:"label"`
}

func (s ImageStimulus) Kind() StimulusKind { return StimulusImage }
func (s ImageStimulus) Prompt() string     { return s.Label }
