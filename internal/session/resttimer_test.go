package session

import (
	"testing"
	"time"
)

func TestRestTimerCountsDown(t *testing.T) {
	clock := newFakeClock()
	timer := newRestTimer(90*time.Second, clock.Now, nil)

	if got := timer.Remaining(); got != 90*time.Second {
		t.Errorf("Remaining = %v, want 90s", got)
	}
	clock.Advance(30 * time.Second)
	if got := timer.Remaining(); got != 60*time.Second {
		t.Errorf("Remaining after 30s = %v, want 60s", got)
	}
	clock.Advance(2 * time.Minute)
	if got := timer.Remaining(); got != 0 {
		t.Errorf("Remaining past deadline = %v, want 0", got)
	}
}

func TestRestTimerAdjust(t *testing.T) {
	clock := newFakeClock()
	timer := newRestTimer(60*time.Second, clock.Now, nil)

	timer.Adjust(30 * time.Second)
	if got := timer.Remaining(); got != 90*time.Second {
		t.Errorf("Remaining after +30s = %v, want 90s", got)
	}

	timer.Adjust(-5 * time.Minute)
	if got := timer.Remaining(); got != 0 {
		t.Errorf("Remaining after large negative adjust = %v, want 0 (floored)", got)
	}
}

func TestRestTimerNegativeSeed(t *testing.T) {
	clock := newFakeClock()
	timer := newRestTimer(-10*time.Second, clock.Now, nil)
	if got := timer.Remaining(); got != 0 {
		t.Errorf("Remaining for negative seed = %v, want 0", got)
	}
}

func TestRestTimerStopSuppressesExpiry(t *testing.T) {
	fired := make(chan struct{}, 1)
	timer := newRestTimer(10*time.Millisecond, time.Now, func() {
		fired <- struct{}{}
	})
	timer.Stop()

	select {
	case <-fired:
		t.Fatal("expiry callback fired after Stop")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestRestTimerExpiryFires(t *testing.T) {
	fired := make(chan struct{}, 1)
	_ = newRestTimer(5*time.Millisecond, time.Now, func() {
		fired <- struct{}{}
	})

	select {
	case <-fired:
	case <-time.After(time.Second):
		t.Fatal("expiry callback never fired")
	}
}
