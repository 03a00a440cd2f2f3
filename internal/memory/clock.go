package memory

import "time"

// Clock counts elapsed whole intervals while running.
// It is not safe for concurrent use; the owner serializes calls and ticks.
type Clock struct {
	scheduler Scheduler
	interval  time.Duration
	onTick    func(elapsed int)

	timer   Timer
	run     uint64
	elapsed int
	running bool
}

func NewClock(scheduler Scheduler, interval time.Duration, onTick func(elapsed int)) *Clock {
	return &Clock{
		scheduler: scheduler,
		interval:  interval,
		onTick:    onTick,
	}
}

// Start begins ticking from zero. It does nothing while the clock is running.
func (that *Clock) Start() {
	if that.running {
		return
	}

	that.running = true
	that.elapsed = 0
	that.run++
	that.schedule(that.run)
}

// Stop halts ticking. Calling it on a stopped clock is harmless.
func (that *Clock) Stop() {
	if that.timer != nil {
		that.timer.Stop()
		that.timer = nil
	}

	if that.running {
		that.running = false
		that.run++
	}
}

// Reset stops the clock and zeroes the elapsed counter.
func (that *Clock) Reset() {
	that.Stop()
	that.elapsed = 0
}

func (that *Clock) Running() bool {
	return that.running
}

func (that *Clock) Elapsed() int {
	return that.elapsed
}

func (that *Clock) schedule(run uint64) {
	that.timer = that.scheduler.AfterFunc(that.interval, func() {
		that.tick(run)
	})
}

// tick drops callbacks left over from an earlier run.
func (that *Clock) tick(run uint64) {
	if !that.running || run != that.run {
		return
	}

	that.elapsed++
	that.schedule(run)

	if that.onTick != nil {
		that.onTick(that.elapsed)
	}
}
