package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// SessionStatus is the lifecycle state of one workout attempt.
type SessionStatus string

const (
	SessionActive    SessionStatus = "active"
	SessionPaused    SessionStatus = "paused"
	SessionCompleted SessionStatus = "completed"
	SessionAbandoned SessionStatus = "abandoned"
)

// WorkoutStatus is the scheduling/terminal state of a workout.
type WorkoutStatus string

const (
	WorkoutScheduled  WorkoutStatus = "scheduled"
	WorkoutInProgress WorkoutStatus = "in_progress"
	WorkoutCompleted  WorkoutStatus = "completed"
	WorkoutSkipped    WorkoutStatus = "skipped"
)

// SetCompletion is the terminal state of a single set.
type SetCompletion string

const (
	SetScheduled SetCompletion = "scheduled"
	SetCompleted SetCompletion = "completed"
	SetSkipped   SetCompletion = "skipped"
)

// Session is one in-progress attempt at executing a scheduled workout.
// It holds the execution pointer and pause accounting; the invariant is
// status == active <=> PausedAt == nil.
type Session struct {
	ID                   uuid.UUID
	WorkoutID            uuid.UUID
	MemberID             uuid.UUID
	StartTime            time.Time
	EndTime              *time.Time
	CurrentExerciseIndex int
	CurrentSetIndex      int
	Status               SessionStatus
	PausedAt             *time.Time
	TotalPauseTime       time.Duration

	// Superset bookkeeping: position within the active group's rotation and
	// the set number the rotation is working through.
	CurrentSupersetPosition int
	CurrentSupersetCycleSet int
}

// ActiveDuration is wall time spent actually training: elapsed time minus
// accumulated pause time. For a still-running session pass time.Now().
func (s *Session) ActiveDuration(now time.Time) time.Duration {
	end := now
	if s.EndTime != nil {
		end = *s.EndTime
	}
	d := end.Sub(s.StartTime) - s.TotalPauseTime
	if s.Status == SessionPaused && s.PausedAt != nil {
		d -= end.Sub(*s.PausedAt)
	}
	if d < 0 {
		return 0
	}
	return d
}

// SupersetGroup is a set of workout positions executed in rotation.
// RestBetween holds the rest (seconds) used when moving from position i to
// the next position in the rotation; RestAfter applies once a full rotation
// completes and the cycle returns to the first position.
type SupersetGroup struct {
	GroupNumber int   `json:"groupNumber"`
	Positions   []int `json:"exercisePositions"`
	RestBetween []int `json:"restBetweenExercises"`
	RestAfter   int   `json:"restAfter"`
}

// Contains reports whether the workout position belongs to this group, and
// its slot within the rotation.
func (g SupersetGroup) Contains(position int) (slot int, ok bool) {
	for i, p := range g.Positions {
		if p == position {
			return i, true
		}
	}
	return 0, false
}

// Label is the display label for the group's i-th slot, e.g. "1a", "1b".
func (g SupersetGroup) Label(slot int) string {
	return fmt.Sprintf("%d%c", g.GroupNumber, 'a'+rune(slot))
}

// Workout is an ordered exercise list with per-position protocol assignment
// and optional superset grouping, scheduled for one date.
type Workout struct {
	ID            uuid.UUID
	MemberID      uuid.UUID
	Name          string
	ScheduledDate time.Time
	ExerciseIDs   []string
	// ProtocolVariantIDs maps workout position to the protocol assigned there.
	ProtocolVariantIDs map[int]string
	SupersetGroups     []SupersetGroup
	Status             WorkoutStatus
	CompletedDate      *time.Time
}

// SupersetGroupFor returns the group covering the given position, if any.
// A position belongs to at most one group.
func (w *Workout) SupersetGroupFor(position int) (SupersetGroup, int, bool) {
	for _, g := range w.SupersetGroups {
		if slot, ok := g.Contains(position); ok {
			return g, slot, true
		}
	}
	return SupersetGroup{}, 0, false
}

// ExerciseInstance is one exercise's occurrence within a workout, owning its
// ordered sets.
type ExerciseInstance struct {
	ID                uuid.UUID
	ExerciseID        string
	WorkoutID         uuid.UUID
	// Position is the instance's slot in the workout's exercise list. The
	// exercise ID alone cannot order instances when a workout repeats an
	// exercise.
	Position          int
	ProtocolVariantID string
	SetIDs            []uuid.UUID
	Status            WorkoutStatus
	SupersetLabel     string
}

// ExerciseSet is one planned/performed set. Target values come from the plan;
// actual values are written when the set is logged. Once a session ends every
// reachable set has Completion != SetScheduled.
type ExerciseSet struct {
	ID                 uuid.UUID
	ExerciseInstanceID uuid.UUID
	SetNumber          int
	TargetWeight       *float64
	TargetReps         *int
	TargetRPE          *float64
	TargetDuration     *int
	TargetDistance     *float64
	ActualWeight       *float64
	ActualReps         *int
	ActualDuration     *int
	ActualDistance     *float64
	Completion         SetCompletion
	StartTime          *time.Time
	EndTime            *time.Time
	Notes              string
}

// ExerciseType distinguishes display mode for an exercise.
type ExerciseType string

const (
	ExerciseStrength ExerciseType = "strength"
	ExerciseCardio   ExerciseType = "cardio"
)

// Exercise is a catalog entry resolved by ExerciseID.
type Exercise struct {
	ID           string
	Name         string
	Type         ExerciseType
	MuscleGroups []string
}

// ProtocolVariant is a named scheme assigned to an exercise position: target
// reps per set, rest between sets, optional tempo and RPE.
type ProtocolVariant struct {
	ID          string
	Name        string
	RepScheme   []int
	RestSeconds int
	Tempo       string
	RPE         *float64
}

// RepsForSet returns the scheme's target reps for a zero-based set index,
// falling back to the last entry when the index runs past the scheme.
func (p ProtocolVariant) RepsForSet(idx int) int {
	if len(p.RepScheme) == 0 {
		return 0
	}
	if idx >= len(p.RepScheme) {
		idx = len(p.RepScheme) - 1
	}
	if idx < 0 {
		idx = 0
	}
	return p.RepScheme[idx]
}
