package models

import (
	"testing"
	"time"
)

func TestSupersetLabel(t *testing.T) {
	g := SupersetGroup{GroupNumber: 1, Positions: []int{0, 1}, RestBetween: []int{30, 30}, RestAfter: 120}

	tests := []struct {
		slot int
		want string
	}{
		{0, "1a"},
		{1, "1b"},
	}
	for _, tt := range tests {
		if got := g.Label(tt.slot); got != tt.want {
			t.Errorf("Label(%d) = %q, want %q", tt.slot, got, tt.want)
		}
	}

	g2 := SupersetGroup{GroupNumber: 2, Positions: []int{2, 3, 4}}
	if got := g2.Label(2); got != "2c" {
		t.Errorf("Label(2) = %q, want %q", got, "2c")
	}
}

func TestSupersetContains(t *testing.T) {
	g := SupersetGroup{GroupNumber: 1, Positions: []int{1, 3}}

	slot, ok := g.Contains(3)
	if !ok || slot != 1 {
		t.Errorf("Contains(3) = (%d, %v), want (1, true)", slot, ok)
	}
	if _, ok := g.Contains(0); ok {
		t.Error("Contains(0) = true, want false")
	}
}

func TestWorkoutSupersetGroupFor(t *testing.T) {
	w := &Workout{
		SupersetGroups: []SupersetGroup{
			{GroupNumber: 1, Positions: []int{0, 1}},
			{GroupNumber: 2, Positions: []int{2, 3}},
		},
	}

	g, slot, ok := w.SupersetGroupFor(3)
	if !ok || g.GroupNumber != 2 || slot != 1 {
		t.Errorf("SupersetGroupFor(3) = (group %d, slot %d, %v), want (group 2, slot 1, true)", g.GroupNumber, slot, ok)
	}
	if _, _, ok := w.SupersetGroupFor(7); ok {
		t.Error("SupersetGroupFor(7) = true, want false")
	}
}

func TestActiveDuration(t *testing.T) {
	start := time.Date(2026, 1, 10, 9, 0, 0, 0, time.UTC)

	s := &Session{StartTime: start, Status: SessionActive, TotalPauseTime: 5 * time.Minute}
	now := start.Add(1 * time.Hour)
	if got, want := s.ActiveDuration(now), 55*time.Minute; got != want {
		t.Errorf("ActiveDuration = %v, want %v", got, want)
	}

	// Currently paused: the open pause interval is excluded too.
	pausedAt := start.Add(30 * time.Minute)
	s2 := &Session{StartTime: start, Status: SessionPaused, PausedAt: &pausedAt}
	if got, want := s2.ActiveDuration(start.Add(45*time.Minute)), 30*time.Minute; got != want {
		t.Errorf("ActiveDuration while paused = %v, want %v", got, want)
	}

	// Ended sessions use EndTime, not now.
	end := start.Add(40 * time.Minute)
	s3 := &Session{StartTime: start, EndTime: &end, Status: SessionCompleted, TotalPauseTime: 10 * time.Minute}
	if got, want := s3.ActiveDuration(start.Add(5*time.Hour)), 30*time.Minute; got != want {
		t.Errorf("ActiveDuration after end = %v, want %v", got, want)
	}
}

func TestRepsForSet(t *testing.T) {
	p := ProtocolVariant{RepScheme: []int{12, 10, 8}}

	tests := []struct {
		idx  int
		want int
	}{
		{0, 12},
		{1, 10},
		{2, 8},
		{5, 8},  // past the scheme: last entry
		{-1, 12}, // clamped low
	}
	for _, tt := range tests {
		if got := p.RepsForSet(tt.idx); got != tt.want {
			t.Errorf("RepsForSet(%d) = %d, want %d", tt.idx, got, tt.want)
		}
	}

	var empty ProtocolVariant
	if got := empty.RepsForSet(0); got != 0 {
		t.Errorf("RepsForSet on empty scheme = %d, want 0", got)
	}
}
