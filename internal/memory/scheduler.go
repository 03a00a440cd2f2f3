package memory

import "time"

// Timer is a pending scheduled callback.
type Timer interface {
	Stop() bool
}

// Scheduler runs f once after d has elapsed.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Timer
}

type timeScheduler struct{}

// NewScheduler returns a Scheduler backed by the runtime timers.
func NewScheduler() Scheduler {
	return timeScheduler{}
}

func (timeScheduler) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// serialScheduler routes every callback through the controller so that timer
// goroutines and input intents share one timeline.
type serialScheduler struct {
	ctrl *GameController
}

func (that serialScheduler) AfterFunc(d time.Duration, f func()) Timer {
	return that.ctrl.scheduler.AfterFunc(d, func() {
		that.ctrl.run(f)
	})
}
