package services

import "time"

// ScheduledTimer is a cancellable deferred callback.
type ScheduledTimer interface {
	// Stop cancels the callback. It reports whether the cancel happened
	// before the callback fired.
	Stop() bool
}

// Scheduler is the seam between timer-driven control flow and the wall
// clock. Production code runs on the real clock; tests drive a manual fake
// so transitions are verifiable without waiting.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) ScheduledTimer
}

type realScheduler struct{}

// NewScheduler returns a Scheduler backed by time.AfterFunc.
func NewScheduler() Scheduler { return realScheduler{} }

func (realScheduler) AfterFunc(d time.Duration, f func()) ScheduledTimer {
	return time.AfterFunc(d, f)
}
