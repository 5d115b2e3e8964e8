// Package debounce delays work until input has been quiet for a fixed window.
// Each new trigger invalidates the previously scheduled call, so only the last
// call of a burst runs.
package debounce

import (
	"sync"
	"time"
)

// CancelToken cancels one scheduled call. Cancel reports whether the call was
// stopped before it started.
type CancelToken interface {
	Cancel() bool
}

// Scheduler runs fn after delay.
type Scheduler interface {
	Schedule(fn func(), delay time.Duration) CancelToken
}

// TimerScheduler schedules on the runtime timer.
type TimerScheduler struct{}

// Schedule implements Scheduler with time.AfterFunc.
func (TimerScheduler) Schedule(fn func(), delay time.Duration) CancelToken {
	return timerToken{time.AfterFunc(delay, fn)}
}

type timerToken struct{ t *time.Timer }

func (t timerToken) Cancel() bool { return t.t.Stop() }

// Debouncer coalesces triggers arriving less than delay apart.
type Debouncer struct {
	mu      sync.Mutex
	sched   Scheduler
	delay   time.Duration
	pending CancelToken
	gen     uint64
	stopped bool
}

// New creates a debouncer. A nil scheduler uses TimerScheduler.
func New(sched Scheduler, delay time.Duration) *Debouncer {
	if sched == nil {
		sched = TimerScheduler{}
	}
	return &Debouncer{sched: sched, delay: delay}
}

// Trigger cancels any pending call and schedules fn after the delay.
// A call whose timer already fired but was superseded before running is skipped.
func (d *Debouncer) Trigger(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}
	d.cancelLocked()
	d.gen++
	gen := d.gen
	d.pending = d.sched.Schedule(func() {
		d.mu.Lock()
		if d.stopped || gen != d.gen {
			d.mu.Unlock()
			return
		}
		d.pending = nil
		d.mu.Unlock()
		fn()
	}, d.delay)
}

// Cancel drops the pending call, if any.
func (d *Debouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.cancelLocked()
	d.gen++
}

// Stop cancels pending work and ignores later triggers.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.cancelLocked()
	d.stopped = true
}

func (d *Debouncer) cancelLocked() {
	if d.pending != nil {
		d.pending.Cancel()
		d.pending = nil
	}
}
