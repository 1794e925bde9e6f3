package session

import (
	"time"

	"github.com/claude/ironcoach/internal/catalog"
	"github.com/claude/ironcoach/internal/models"
	"github.com/google/uuid"
)

// Display reps clamp to a sane range when derived from a protocol scheme.
const (
	minDisplayReps = 1
	maxDisplayReps = 30
)

// Snapshot is the observable state of a session, recomputed synchronously
// after every command. Consumers poll it or receive it through the
// coordinator's subscription callback.
type Snapshot struct {
	SessionID uuid.UUID            `json:"sessionId"`
	WorkoutID uuid.UUID            `json:"workoutId"`
	MemberID  uuid.UUID            `json:"memberId"`
	Status    models.SessionStatus `json:"status"`

	CurrentExercise   *models.Exercise `json:"currentExercise,omitempty"`
	CurrentInstanceID uuid.UUID        `json:"currentInstanceId"`
	CurrentSetID      uuid.UUID        `json:"currentSetId"`
	ExerciseNumber    int              `json:"exerciseNumber"`
	TotalExercises    int              `json:"totalExercises"`
	SetNumber         int              `json:"setNumber"`
	TotalSets         int              `json:"totalSets"`

	DisplayWeight float64 `json:"displayWeight"`
	DisplayReps   int     `json:"displayReps"`

	IsResting         bool           `json:"isResting"`
	RestTimeRemaining *time.Duration `json:"restTimeRemaining,omitempty"`

	IsInSuperset           bool             `json:"isInSuperset"`
	SupersetLabel          string           `json:"supersetLabel,omitempty"`
	NextExerciseInSuperset *models.Exercise `json:"nextExerciseInSuperset,omitempty"`

	HasLoggedSets     bool `json:"hasLoggedSets"`
	LoggedSetCount    int  `json:"loggedSetCount"`
	IsWorkoutComplete bool `json:"isWorkoutComplete"`

	ActiveDuration time.Duration `json:"activeDuration"`
}

// Snapshot returns the current observable state.
func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshotLocked()
}

func (e *Engine) snapshotLocked() Snapshot {
	snap := Snapshot{
		SessionID:         e.session.ID,
		WorkoutID:         e.workout.ID,
		MemberID:          e.session.MemberID,
		Status:            e.session.Status,
		TotalExercises:    len(e.instances),
		DisplayWeight:     e.displayWeight,
		DisplayReps:       e.displayReps,
		IsWorkoutComplete: e.finished,
		ActiveDuration:    e.session.ActiveDuration(e.now()),
	}

	for _, inst := range e.instances {
		for _, set := range e.sets[inst.ID] {
			if set.Completion == models.SetCompleted {
				snap.LoggedSetCount++
			}
		}
	}

	inst := e.currentInstanceLocked()
	if inst == nil {
		return snap
	}

	exIdx := e.session.CurrentExerciseIndex
	snap.CurrentInstanceID = inst.ID
	snap.ExerciseNumber = exIdx + 1
	snap.SetNumber = e.session.CurrentSetIndex + 1
	snap.TotalSets = len(e.sets[inst.ID])
	snap.CurrentExercise = e.exerciseFor(inst.ExerciseID)

	if set := e.currentSetLocked(); set != nil {
		snap.CurrentSetID = set.ID
	}
	for _, set := range e.sets[inst.ID] {
		if set.Completion == models.SetCompleted {
			snap.HasLoggedSets = true
			break
		}
	}

	if g, slot, ok := e.workout.SupersetGroupFor(exIdx); ok {
		snap.IsInSuperset = true
		snap.SupersetLabel = g.Label(slot)
		next := g.Positions[(slot+1)%len(g.Positions)]
		if next < len(e.instances) {
			snap.NextExerciseInSuperset = e.exerciseFor(e.instances[next].ExerciseID)
		}
	}

	if e.rest != nil && !e.finished {
		if remaining := e.rest.Remaining(); remaining > 0 {
			snap.IsResting = true
			snap.RestTimeRemaining = &remaining
		}
	}
	return snap
}

// exerciseFor resolves a catalog entry, falling back to a bare strength
// record for ids the catalog does not know.
func (e *Engine) exerciseFor(id string) *models.Exercise {
	if ex, ok := catalog.LookupExercise(id); ok {
		return &ex
	}
	return &models.Exercise{ID: id, Name: id, Type: models.ExerciseStrength}
}

// resolveDisplayLocked recomputes the display weight and reps for the set the
// pointer just landed on. Priority: the set's own target, then the closest
// prior set of the same exercise that has a logged actual, then the protocol
// rep scheme (clamped) with an uncalibrated bodyweight default of 0.
func (e *Engine) resolveDisplayLocked() {
	inst := e.currentInstanceLocked()
	set := e.currentSetLocked()
	if inst == nil || set == nil {
		return
	}
	sets := e.sets[inst.ID]
	k := e.session.CurrentSetIndex

	switch {
	case set.TargetWeight != nil:
		e.displayWeight = *set.TargetWeight
	default:
		e.displayWeight = 0
		for i := k - 1; i >= 0; i-- {
			if sets[i].Completion == models.SetCompleted && sets[i].ActualWeight != nil {
				e.displayWeight = *sets[i].ActualWeight
				break
			}
		}
	}

	if set.TargetReps != nil {
		e.displayReps = *set.TargetReps
		return
	}
	for i := k - 1; i >= 0; i-- {
		if sets[i].Completion == models.SetCompleted && sets[i].ActualReps != nil {
			e.displayReps = *sets[i].ActualReps
			return
		}
	}
	reps := 0
	if pv, ok := e.protocolForLocked(e.session.CurrentExerciseIndex); ok {
		reps = pv.RepsForSet(k)
	}
	if reps < minDisplayReps {
		reps = minDisplayReps
	}
	if reps > maxDisplayReps {
		reps = maxDisplayReps
	}
	e.displayReps = reps
}
