// Package idle blanks the display after a stretch without visible changes.
package idle

import "time"

// DefaultInterval is how long the display stays lit without an update.
const DefaultInterval = 60 * time.Second

// Timer tracks the last user-visible change.
type Timer struct {
	interval time.Duration
	last     time.Time
	awake    bool
}

// New returns an awake timer started at now.
func New(interval time.Duration, now time.Time) *Timer {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Timer{interval: interval, last: now, awake: true}
}

// Touch records a dirty update and wakes the timer.
func (t *Timer) Touch(now time.Time) {
	t.last = now
	t.awake = true
}

// Expired reports true exactly once per idle stretch, on the first call at
// least one interval after the last Touch.
func (t *Timer) Expired(now time.Time) bool {
	if !t.awake {
		return false
	}
	if now.Sub(t.last) < t.interval {
		return false
	}
	t.awake = false
	return true
}

// Awake reports whether the display should be lit.
func (t *Timer) Awake() bool { return t.awake }

// Interval returns the configured idle interval.
func (t *Timer) Interval() time.Duration { return t.interval }
