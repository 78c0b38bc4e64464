package ticket

import "time"

// Debouncer coalesces bursts of inbound activity per ticket into one
// downstream invocation after a quiet window. Scheduling replaces any
// not-yet-fired task for the same ticket; a task whose body already started
// runs to completion and is never interrupted.
type Debouncer struct {
	window time.Duration
}

// NewDebouncer creates a debouncer with the given quiet window.
func NewDebouncer(window time.Duration) *Debouncer {
	return &Debouncer{window: window}
}

// Schedule arms fn to run once after the quiet window unless rescheduled or
// cancelled first. The generation counter is compared again at fire time, so
// a reschedule racing the timer firing reliably suppresses the stale run.
// fn runs on the timer goroutine without holding the ticket lock.
func (d *Debouncer) Schedule(t *Ticket, fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return
	}

	t.pendingGen++
	gen := t.pendingGen
	if t.pendingTimer != nil {
		t.pendingTimer.Stop()
	}
	t.pendingTimer = time.AfterFunc(d.window, func() {
		if !t.claimFire(gen) {
			return
		}
		fn()
	})
}

// Cancel drops any pending not-yet-fired task. No-op otherwise.
func (d *Debouncer) Cancel(t *Ticket) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.pendingGen++
	if t.pendingTimer != nil {
		t.pendingTimer.Stop()
		t.pendingTimer = nil
	}
}

// claimFire checks at fire time that this task is still the current one and
// the ticket is still open.
func (t *Ticket) claimFire(gen uint64) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed || gen != t.pendingGen {
		return false
	}
	t.pendingTimer = nil
	return true
}
