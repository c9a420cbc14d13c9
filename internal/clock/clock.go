// Package clock abstracts wall time and one-shot timers so the session and
// lifecycle state machines can be driven deterministically in tests.
package clock

import "time"

type Clock interface {
	Now() time.Time
	// AfterFunc runs f in its own goroutine once d has elapsed.
	AfterFunc(d time.Duration, f func()) Timer
}

type Timer interface {
	// Stop reports whether the call prevented the timer from firing.
	Stop() bool
}

type System struct{}

func (System) Now() time.Time { return time.Now() }

func (System) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}
