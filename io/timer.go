package io

import (
	"time"
)

// TIMER_PERIOD is the default interval between timer interrupts.
const TIMER_PERIOD = time.Second

// Timer is a periodic interrupt source. It is not a separate thread of
// execution: the interrupt controller polls it once per instruction, so
// the interrupt rate is bounded by the instruction rate.
type Timer struct {
	Period time.Duration    // Interval between ticks. Zero means TIMER_PERIOD.
	Now    func() time.Time // Clock. Nil means time.Now.

	last    time.Time
	started bool
	Ticks   int // Number of ticks delivered since Rewind.
}

var _ Source = (*Timer)(nil)

func (tm *Timer) now() time.Time {
	if tm.Now != nil {
		return tm.Now()
	}
	return time.Now()
}

func (tm *Timer) period() time.Duration {
	if tm.Period <= 0 {
		return TIMER_PERIOD
	}
	return tm.Period
}

// Rewind restarts the timer from the current time.
func (tm *Timer) Rewind() {
	tm.last = tm.now()
	tm.started = true
	tm.Ticks = 0
}

// Poll returns true if at least one period has elapsed since the last
// tick, and resets the tick reference to now.
func (tm *Timer) Poll() bool {
	now := tm.now()
	if !tm.started {
		tm.last = now
		tm.started = true
		return false
	}

	if now.Sub(tm.last) < tm.period() {
		return false
	}

	tm.last = now
	tm.Ticks++

	return true
}
