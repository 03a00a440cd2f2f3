// Package memorytest provides a manually driven Scheduler for tests.
package memorytest

import (
	"sync"
	"time"

	"github.com/rocketscienceinc/memory-backend/internal/memory"
)

// ManualScheduler fires callbacks only when Advance moves its virtual time.
type ManualScheduler struct {
	mu     sync.Mutex
	now    time.Duration
	seq    int
	timers []*manualTimer
}

type manualTimer struct {
	owner   *ManualScheduler
	at      time.Duration
	seq     int
	fn      func()
	stopped bool
	fired   bool
}

func NewManualScheduler() *ManualScheduler {
	return &ManualScheduler{}
}

func (that *ManualScheduler) AfterFunc(d time.Duration, f func()) memory.Timer {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.seq++
	timer := &manualTimer{
		owner: that,
		at:    that.now + d,
		seq:   that.seq,
		fn:    f,
	}
	that.timers = append(that.timers, timer)

	return timer
}

// Advance moves virtual time forward by d, firing due callbacks in order.
// Callbacks run on the calling goroutine and may schedule further callbacks.
func (that *ManualScheduler) Advance(d time.Duration) {
	that.mu.Lock()
	target := that.now + d
	that.mu.Unlock()

	for {
		that.mu.Lock()
		next := that.nextDue(target)
		if next == nil {
			that.now = target
			that.mu.Unlock()
			return
		}

		that.now = next.at
		next.fired = true
		that.mu.Unlock()

		next.fn()
	}
}

// Pending returns the number of callbacks that have neither fired nor been stopped.
func (that *ManualScheduler) Pending() int {
	that.mu.Lock()
	defer that.mu.Unlock()

	count := 0
	for _, timer := range that.timers {
		if !timer.fired && !timer.stopped {
			count++
		}
	}

	return count
}

func (that *ManualScheduler) Now() time.Duration {
	that.mu.Lock()
	defer that.mu.Unlock()

	return that.now
}

func (that *ManualScheduler) nextDue(target time.Duration) *manualTimer {
	var next *manualTimer

	for _, timer := range that.timers {
		if timer.fired || timer.stopped || timer.at > target {
			continue
		}

		if next == nil || timer.at < next.at || (timer.at == next.at && timer.seq < next.seq) {
			next = timer
		}
	}

	return next
}

func (that *manualTimer) Stop() bool {
	that.owner.mu.Lock()
	defer that.owner.mu.Unlock()

	if that.fired || that.stopped {
		return false
	}

	that.stopped = true

	return true
}
