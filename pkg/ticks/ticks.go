// Package ticks converts between animation ticks and wall-clock durations.
//
// One tick is the fixed real-time quantum every animation clock advances by.
package ticks

import (
	"math"
	"time"
)

// Period is the duration of one tick (20 ticks per second).
const Period = 50 * time.Millisecond

// PerSecond is the number of ticks in one second.
const PerSecond = int(time.Second / Period)

// FromDuration converts d to whole ticks, truncating any remainder.
// Negative durations convert to negative tick counts.
func FromDuration(d time.Duration) int {
	return int(d / Period)
}

// ToDuration converts a (possibly fractional) tick count to a duration.
func ToDuration(n float64) time.Duration {
	return time.Duration(math.Round(n * float64(Period)))
}
