package game

import "time"

// Clock supplies the monotonic millisecond counter every cooldown,
// contact interval and aura tick reads. Timers never count frames.
type Clock interface {
	NowMs() int64
}

// SystemClock reports milliseconds elapsed since it was created.
type SystemClock struct {
	start time.Time
}

// NewSystemClock creates a wall clock anchored at the current instant.
func NewSystemClock() *SystemClock {
	return &SystemClock{start: time.Now()}
}

// NowMs implements Clock.
func (c *SystemClock) NowMs() int64 {
	return time.Since(c.start).Milliseconds()
}

// ManualClock is advanced explicitly. Tests and headless runs use it to
// replay a run deterministically.
type ManualClock struct {
	now int64
}

// NewManualClock creates a clock that starts at startMs.
func NewManualClock(startMs int64) *ManualClock {
	return &ManualClock{now: startMs}
}

// NowMs implements Clock.
func (c *ManualClock) NowMs() int64 { return c.now }

// Advance moves the clock forward by ms. Negative values are ignored.
func (c *ManualClock) Advance(ms int64) {
	if ms > 0 {
		c.now += ms
	}
}

// Set jumps the clock to ms. Moving backwards is ignored.
func (c *ManualClock) Set(ms int64) {
	if ms > c.now {
		c.now = ms
	}
}
