// Package debounce provides the restartable timer hosts use to rate-limit
// layout passes, e.g. while a window is being resized continuously.
//
// The layout engine never schedules anything itself; a Timer belongs to the
// host that decides when a pass should run.
package debounce

import (
	"sync"
	"time"
)

// Timer runs a function once after a delay. Starting a Timer that is already
// counting down cancels the pending call first.
//
// A Timer is safe for concurrent use. The zero value is ready to use.
type Timer struct {
	mu    sync.Mutex
	timer *time.Timer
	gen   uint64 // incremented on every Start/Stop; stale callbacks compare against it
	busy  bool
}

// Start cancels any pending call and schedules fn to run after d.
func (t *Timer) Start(fn func(), d time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.stopLocked()
	gen := t.gen
	t.busy = true
	t.timer = time.AfterFunc(d, func() {
		t.mu.Lock()
		if gen != t.gen {
			t.mu.Unlock()
			return
		}
		t.busy = false
		t.timer = nil
		t.mu.Unlock()

		fn()
	})
}

// Stop cancels the pending call, if any. A call that has already started
// runs to completion.
func (t *Timer) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stopLocked()
}

func (t *Timer) stopLocked() {
	t.gen++
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
	t.busy = false
}

// Busy reports whether a call is pending.
func (t *Timer) Busy() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.busy
}
