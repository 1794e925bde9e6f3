package session

import (
	"sync"
	"time"
)

// RestTimer is the cancellable countdown that gates advancement between sets.
// It is deadline-based: Remaining is derived from the clock, so a timer left
// alone simply runs out without moving the session pointer. An optional
// expiry callback lets observers refresh their view when the countdown hits
// zero.
type RestTimer struct {
	mu       sync.Mutex
	deadline time.Time
	now      func() time.Time
	notify   *time.Timer
	onExpire func()
	stopped  bool
}

func newRestTimer(d time.Duration, now func() time.Time, onExpire func()) *RestTimer {
	if d < 0 {
		d = 0
	}
	t := &RestTimer{
		deadline: now().Add(d),
		now:      now,
		onExpire: onExpire,
	}
	if onExpire != nil && d > 0 {
		t.notify = time.AfterFunc(d, t.fire)
	}
	return t
}

func (t *RestTimer) fire() {
	t.mu.Lock()
	stopped := t.stopped
	t.mu.Unlock()
	if !stopped && t.onExpire != nil {
		t.onExpire()
	}
}

// Remaining reports the time left, floored at zero.
func (t *RestTimer) Remaining() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	r := t.deadline.Sub(t.now())
	if r < 0 {
		return 0
	}
	return r
}

// Adjust shifts the remaining time by delta without cancelling the
// countdown. The result floors at zero.
func (t *RestTimer) Adjust(delta time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.stopped {
		return
	}
	now := t.now()
	remaining := t.deadline.Sub(now) + delta
	if remaining < 0 {
		remaining = 0
	}
	t.deadline = now.Add(remaining)
	if t.notify != nil {
		t.notify.Reset(remaining)
	}
}

// Stop cancels the countdown and its expiry notification. A stale expiry
// must never fire after the session has moved on.
func (t *RestTimer) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stopped = true
	if t.notify != nil {
		t.notify.Stop()
	}
}
