package ports

import "time"

// Clock abstracts time for the trial runner so the state machine is
// deterministically testable. Latencies derived from Now() rely on Go's
// monotonic reading, so wall-clock adjustments cannot skew them.
type Clock interface {
	Now() time.Time
	// NewTimer returns a cancellable single-shot timer. At most one
	// value is ever delivered on C.
	NewTimer(d time.Duration) Timer
}

// Timer is the single cancellable timing primitive the runner suspends
// on (stimulus hold, response window, inter-trial delay).
type Timer interface {
	C() <-chan time.Time
	// Stop disarms the timer; it reports whether the timer was still
	// armed. After Stop returns, nothing further is delivered on C.
	Stop() bool
}
