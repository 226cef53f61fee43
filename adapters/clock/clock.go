package clock

import (
	"time"

	"coglab/ports"
)

// SystemClock implements ports.Clock over the runtime clock. Now()
// carries Go's monotonic reading, which is what latency arithmetic uses.
type SystemClock struct{}

// New returns the system clock.
func New() SystemClock { return SystemClock{} }

// Now returns the current time.
func (SystemClock) Now() time.Time { return time.Now() }

// NewTimer returns a single-shot timer backed by time.Timer.
func (SystemClock) NewTimer(d time.Duration) ports.Timer {
	return &systemTimer{t: time.NewTimer(d)}
}

type systemTimer struct {
	t *time.Timer
}

func (s *systemTimer) C() <-chan time.Time { return s.t.C }
func (s *systemTimer) Stop() bool          { return s.t.Stop() }
