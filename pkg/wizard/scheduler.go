package wizard

import "time"

// Timer is a pending scheduled callback.
type Timer interface {
	Stop() bool
}

// Scheduler runs callbacks after a delay. The wizard uses it for the
// auto-advance after an option is chosen and for notification expiry.
type Scheduler interface {
	AfterFunc(d time.Duration, fn func()) Timer
}

// SchedulerFunc adapts a function into a Scheduler.
type SchedulerFunc func(d time.Duration, fn func()) Timer

// AfterFunc calls the underlying function.
func (fn SchedulerFunc) AfterFunc(d time.Duration, cb func()) Timer {
	return fn(d, cb)
}

type clockScheduler struct{}

func (clockScheduler) AfterFunc(d time.Duration, fn func()) Timer {
	return time.AfterFunc(d, fn)
}

// RealScheduler returns the wall-clock scheduler backed by time.AfterFunc.
func RealScheduler() Scheduler {
	return clockScheduler{}
}
