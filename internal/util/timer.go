package util

import "time"

// Timer measures elapsed time since it was started.
type Timer struct {
	start time.Time
}

// StartTimer creates a timer starting now.
func StartTimer() Timer {
	return Timer{start: time.Now()}
}

// Elapsed returns the time since start, or zero for an unstarted timer.
func (t Timer) Elapsed() time.Duration {
	if t.start.IsZero() {
		return 0
	}
	return time.Since(t.start)
}

// ElapsedMs returns Elapsed in whole milliseconds.
func (t Timer) ElapsedMs() int64 {
	return t.Elapsed().Milliseconds()
}

// ElapsedMsFloat returns Elapsed in fractional milliseconds, for sub-millisecond work.
func (t Timer) ElapsedMsFloat() float64 {
	return float64(t.Elapsed().Microseconds()) / 1000
}
