package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/claude/ironcoach/internal/catalog"
	"github.com/claude/ironcoach/internal/models"
	"github.com/claude/ironcoach/internal/repo"
	"github.com/google/uuid"
)

// Engine drives one workout session set-by-set. All commands serialize
// through its mutex: the in-memory graph is the single source of truth, and
// repository writes never roll back an applied transition. A failed write is
// logged and returned, but the session keeps moving.
type Engine struct {
	mu    sync.Mutex
	log   *slog.Logger
	store repo.Store
	now   func() time.Time

	session   *models.Session
	workout   *models.Workout
	instances []*models.ExerciseInstance
	sets      map[uuid.UUID][]*models.ExerciseSet

	rest          *RestTimer
	displayWeight float64
	displayReps   int
	finished      bool

	// onChange is invoked after every command returns, outside the lock.
	onChange func(*Engine)
}

// newEngine builds an engine over a loaded workout graph. The session pointer
// is placed at the first scheduled set.
func newEngine(sess *models.Session, graph *repo.WorkoutGraph, store repo.Store, log *slog.Logger, now func() time.Time) *Engine {
	e := &Engine{
		log:       log,
		store:     store,
		now:       now,
		session:   sess,
		workout:   graph.Workout,
		instances: graph.Instances,
		sets:      graph.Sets,
	}
	e.pointToFirstOpenLocked()
	return e
}

// SessionID identifies the session this engine drives.
func (e *Engine) SessionID() uuid.UUID {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.session.ID
}

// Finished reports whether the session reached a terminal state.
func (e *Engine) Finished() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.finished
}

func (e *Engine) notifyChanged() {
	if e.onChange != nil {
		e.onChange(e)
	}
}

// expireNotify runs when a rest timer counts down to zero unattended. The
// pointer has already advanced, so expiry only refreshes observers.
func (e *Engine) expireNotify() {
	e.notifyChanged()
}

// --- commands ---

// LogSet records the current set as performed with the given weight and reps,
// starts the rest countdown when more sets remain, and advances the pointer.
// Reps <= 0 is rejected with no state change.
func (e *Engine) LogSet(ctx context.Context, weight float64, reps int) error {
	e.mu.Lock()
	err := e.logSetLocked(ctx, weight, reps)
	e.mu.Unlock()
	e.notifyChanged()
	return err
}

func (e *Engine) logSetLocked(ctx context.Context, weight float64, reps int) error {
	if e.finished {
		return ErrSessionEnded
	}
	if reps <= 0 {
		return ErrInvalidSetValue
	}
	set := e.currentSetLocked()
	if set == nil {
		return ErrSessionEnded
	}

	now := e.now()
	w, r := weight, reps
	set.ActualWeight = &w
	set.ActualReps = &r
	set.Completion = models.SetCompleted
	if set.StartTime == nil {
		set.StartTime = &now
	}
	set.EndTime = &now
	e.stopRestLocked()

	var errs []error
	errs = append(errs, e.persistSetLocked(ctx, set))

	if e.openSetCountLocked() == 0 {
		errs = append(errs, e.finalizeLocked(ctx))
		return errors.Join(errs...)
	}

	restSecs := e.restForCurrentLocked()
	e.advanceLocked()
	if restSecs > 0 {
		e.rest = newRestTimer(time.Duration(restSecs)*time.Second, e.now, e.expireNotify)
	}
	errs = append(errs, e.persistSessionLocked(ctx))
	return errors.Join(errs...)
}

// SkipSet marks only the current set skipped and advances the pointer the
// same way LogSet does, without starting a rest countdown.
func (e *Engine) SkipSet(ctx context.Context) error {
	e.mu.Lock()
	err := e.skipSetLocked(ctx)
	e.mu.Unlock()
	e.notifyChanged()
	return err
}

func (e *Engine) skipSetLocked(ctx context.Context) error {
	if e.finished {
		return ErrSessionEnded
	}
	set := e.currentSetLocked()
	if set == nil {
		return ErrSessionEnded
	}

	set.Completion = models.SetSkipped
	set.ActualWeight = nil
	set.ActualReps = nil
	e.stopRestLocked()

	var errs []error
	errs = append(errs, e.persistSetLocked(ctx, set))

	if e.openSetCountLocked() == 0 {
		errs = append(errs, e.finalizeLocked(ctx))
		return errors.Join(errs...)
	}
	e.advanceLocked()
	errs = append(errs, e.persistSessionLocked(ctx))
	return errors.Join(errs...)
}

// SkipExercise marks every remaining scheduled set of the current instance
// skipped and moves to the first open set of the next exercise, bypassing
// rest. Sets already completed are left untouched.
func (e *Engine) SkipExercise(ctx context.Context) error {
	e.mu.Lock()
	err := e.skipExerciseLocked(ctx)
	e.mu.Unlock()
	e.notifyChanged()
	return err
}

func (e *Engine) skipExerciseLocked(ctx context.Context) error {
	if e.finished {
		return ErrSessionEnded
	}
	inst := e.currentInstanceLocked()
	if inst == nil {
		return ErrSessionEnded
	}

	var errs []error
	completed := false
	for _, set := range e.sets[inst.ID] {
		switch set.Completion {
		case models.SetScheduled:
			set.Completion = models.SetSkipped
			set.ActualWeight = nil
			set.ActualReps = nil
			errs = append(errs, e.persistSetLocked(ctx, set))
		case models.SetCompleted:
			completed = true
		}
	}
	if completed {
		inst.Status = models.WorkoutCompleted
	} else {
		inst.Status = models.WorkoutSkipped
	}
	errs = append(errs, e.persistInstanceLocked(ctx, inst))
	e.stopRestLocked()

	if e.openSetCountLocked() == 0 {
		errs = append(errs, e.finalizeLocked(ctx))
		return errors.Join(errs...)
	}
	if exIdx, setIdx, ok := e.findNextOpenLocked(e.session.CurrentExerciseIndex); ok {
		e.movePointerLocked(exIdx, setIdx)
	}
	errs = append(errs, e.persistSessionLocked(ctx))
	return errors.Join(errs...)
}

// SubstituteExercise swaps which exercise the current instance's sets belong
// to. Allowed only while no set of the instance has been completed; the set
// plan itself is never touched.
func (e *Engine) SubstituteExercise(ctx context.Context, newExerciseID string) error {
	e.mu.Lock()
	err := e.substituteLocked(ctx, newExerciseID)
	e.mu.Unlock()
	e.notifyChanged()
	return err
}

func (e *Engine) substituteLocked(ctx context.Context, newExerciseID string) error {
	if e.finished {
		return ErrSessionEnded
	}
	inst := e.currentInstanceLocked()
	if inst == nil {
		return ErrSessionEnded
	}
	for _, set := range e.sets[inst.ID] {
		if set.Completion == models.SetCompleted {
			return ErrSubstitutionNotAllowed
		}
	}

	inst.ExerciseID = newExerciseID
	exIdx := e.session.CurrentExerciseIndex
	if exIdx < len(e.workout.ExerciseIDs) {
		e.workout.ExerciseIDs[exIdx] = newExerciseID
	}
	e.stopRestLocked()
	e.resolveDisplayLocked()

	return errors.Join(
		e.persistInstanceLocked(ctx, inst),
		e.persistWorkoutLocked(ctx),
	)
}

// ResetExercise reopens every set of the instance: completion back to
// scheduled, actual values cleared. When the instance is the one currently
// displayed, the pointer rewinds to its first set.
func (e *Engine) ResetExercise(ctx context.Context, instanceID uuid.UUID) error {
	e.mu.Lock()
	err := e.resetLocked(ctx, instanceID)
	e.mu.Unlock()
	e.notifyChanged()
	return err
}

func (e *Engine) resetLocked(ctx context.Context, instanceID uuid.UUID) error {
	if e.finished {
		return ErrSessionEnded
	}
	idx := -1
	for i, inst := range e.instances {
		if inst.ID == instanceID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return ErrInstanceNotFound
	}

	var errs []error
	inst := e.instances[idx]
	for _, set := range e.sets[inst.ID] {
		set.Completion = models.SetScheduled
		set.ActualWeight = nil
		set.ActualReps = nil
		set.ActualDuration = nil
		set.ActualDistance = nil
		set.StartTime = nil
		set.EndTime = nil
		errs = append(errs, e.persistSetLocked(ctx, set))
	}
	inst.Status = models.WorkoutScheduled
	errs = append(errs, e.persistInstanceLocked(ctx, inst))

	if idx == e.session.CurrentExerciseIndex {
		e.stopRestLocked()
		e.movePointerLocked(idx, 0)
	}
	errs = append(errs, e.persistSessionLocked(ctx))
	return errors.Join(errs...)
}

// AdjustWeight shifts the displayed weight without persisting anything.
// Floors at 0.
func (e *Engine) AdjustWeight(delta float64) error {
	e.mu.Lock()
	if e.finished {
		e.mu.Unlock()
		return ErrSessionEnded
	}
	e.displayWeight += delta
	if e.displayWeight < 0 {
		e.displayWeight = 0
	}
	e.mu.Unlock()
	e.notifyChanged()
	return nil
}

// AdjustReps shifts the displayed reps without persisting anything.
// Floors at 1.
func (e *Engine) AdjustReps(delta int) error {
	e.mu.Lock()
	if e.finished {
		e.mu.Unlock()
		return ErrSessionEnded
	}
	e.displayReps += delta
	if e.displayReps < 1 {
		e.displayReps = 1
	}
	e.mu.Unlock()
	e.notifyChanged()
	return nil
}

// SkipRest cancels the rest countdown immediately.
func (e *Engine) SkipRest() error {
	e.mu.Lock()
	if e.finished {
		e.mu.Unlock()
		return ErrSessionEnded
	}
	e.stopRestLocked()
	e.mu.Unlock()
	e.notifyChanged()
	return nil
}

// AdjustRest shifts the remaining rest time without cancelling the countdown.
func (e *Engine) AdjustRest(delta time.Duration) error {
	e.mu.Lock()
	if e.finished {
		e.mu.Unlock()
		return ErrSessionEnded
	}
	if e.rest != nil {
		e.rest.Adjust(delta)
	}
	e.mu.Unlock()
	e.notifyChanged()
	return nil
}

// Pause suspends the session. No-op when not active.
func (e *Engine) Pause(ctx context.Context) error {
	e.mu.Lock()
	err := e.pauseLocked(ctx)
	e.mu.Unlock()
	e.notifyChanged()
	return err
}

func (e *Engine) pauseLocked(ctx context.Context) error {
	if e.finished {
		return ErrSessionEnded
	}
	if e.session.Status != models.SessionActive {
		return nil
	}
	now := e.now()
	e.session.Status = models.SessionPaused
	e.session.PausedAt = &now
	return e.persistSessionLocked(ctx)
}

// Resume reactivates a paused session, accumulating the pause interval.
func (e *Engine) Resume(ctx context.Context) error {
	e.mu.Lock()
	err := e.resumeLocked(ctx)
	e.mu.Unlock()
	e.notifyChanged()
	return err
}

func (e *Engine) resumeLocked(ctx context.Context) error {
	if e.finished {
		return ErrSessionEnded
	}
	if e.session.Status != models.SessionPaused || e.session.PausedAt == nil {
		return nil
	}
	e.session.TotalPauseTime += e.now().Sub(*e.session.PausedAt)
	e.session.PausedAt = nil
	e.session.Status = models.SessionActive
	return e.persistSessionLocked(ctx)
}

// CompleteEarly ends the session now: remaining scheduled sets are swept to
// skipped and the workout is classified by the completion rule.
func (e *Engine) CompleteEarly(ctx context.Context) error {
	e.mu.Lock()
	err := e.completeEarlyLocked(ctx)
	e.mu.Unlock()
	e.notifyChanged()
	return err
}

func (e *Engine) completeEarlyLocked(ctx context.Context) error {
	if e.finished {
		return ErrSessionEnded
	}
	return e.finalizeLocked(ctx)
}

// --- internals (mutex held) ---

func (e *Engine) finalizeLocked(ctx context.Context) error {
	now := e.now()
	changed := FinalizeWorkout(e.workout, e.instances, e.sets, now)

	var errs []error
	for _, set := range changed {
		errs = append(errs, e.persistSetLocked(ctx, set))
	}
	for _, inst := range e.instances {
		errs = append(errs, e.persistInstanceLocked(ctx, inst))
	}
	errs = append(errs, e.persistWorkoutLocked(ctx))

	e.stopRestLocked()
	end := now
	e.session.EndTime = &end
	if e.session.Status == models.SessionPaused && e.session.PausedAt != nil {
		e.session.TotalPauseTime += now.Sub(*e.session.PausedAt)
	}
	e.session.PausedAt = nil
	if e.workout.Status == models.WorkoutCompleted {
		e.session.Status = models.SessionCompleted
	} else {
		e.session.Status = models.SessionAbandoned
	}
	e.finished = true
	errs = append(errs, e.persistSessionLocked(ctx))

	e.log.Info("session finished",
		"session_id", e.session.ID,
		"workout_id", e.workout.ID,
		"workout_status", e.workout.Status,
	)
	return errors.Join(errs...)
}

func (e *Engine) stopRestLocked() {
	if e.rest != nil {
		e.rest.Stop()
		e.rest = nil
	}
}

func (e *Engine) currentInstanceLocked() *models.ExerciseInstance {
	i := e.session.CurrentExerciseIndex
	if i < 0 || i >= len(e.instances) {
		return nil
	}
	return e.instances[i]
}

func (e *Engine) currentSetLocked() *models.ExerciseSet {
	inst := e.currentInstanceLocked()
	if inst == nil {
		return nil
	}
	sets := e.sets[inst.ID]
	k := e.session.CurrentSetIndex
	if k < 0 || k >= len(sets) {
		return nil
	}
	return sets[k]
}

func (e *Engine) openSetCountLocked() int {
	n := 0
	for _, inst := range e.instances {
		for _, set := range e.sets[inst.ID] {
			if set.Completion == models.SetScheduled {
				n++
			}
		}
	}
	return n
}

func (e *Engine) firstOpenInInstanceLocked(i int) (int, bool) {
	for k, set := range e.sets[e.instances[i].ID] {
		if set.Completion == models.SetScheduled {
			return k, true
		}
	}
	return 0, false
}

// findNextOpenLocked scans workout positions after the given one, wrapping
// around, for the first instance with an open set.
func (e *Engine) findNextOpenLocked(after int) (int, int, bool) {
	for d := 1; d <= len(e.instances); d++ {
		i := (after + d) % len(e.instances)
		if k, ok := e.firstOpenInInstanceLocked(i); ok {
			return i, k, true
		}
	}
	return 0, 0, false
}

// pointToFirstOpenLocked places the pointer at the first scheduled set in
// workout order, used at session start.
func (e *Engine) pointToFirstOpenLocked() {
	for i := range e.instances {
		if k, ok := e.firstOpenInInstanceLocked(i); ok {
			e.movePointerLocked(i, k)
			return
		}
	}
}

// movePointerLocked sets the execution pointer and superset bookkeeping, then
// re-resolves the display defaults for the new set.
func (e *Engine) movePointerLocked(exIdx, setIdx int) {
	e.session.CurrentExerciseIndex = exIdx
	e.session.CurrentSetIndex = setIdx
	if _, slot, ok := e.workout.SupersetGroupFor(exIdx); ok {
		e.session.CurrentSupersetPosition = slot
		e.session.CurrentSupersetCycleSet = setIdx
	} else {
		e.session.CurrentSupersetPosition = 0
		e.session.CurrentSupersetCycleSet = 0
	}
	e.resolveDisplayLocked()
}

// advanceLocked moves the pointer after the current set reached a terminal
// state. Inside a superset group the rotation visits the next member before
// the set number increments; outside, the instance's remaining sets come
// first, then the next exercise.
func (e *Engine) advanceLocked() {
	exIdx := e.session.CurrentExerciseIndex

	if g, slot, ok := e.workout.SupersetGroupFor(exIdx); ok {
		if nEx, nSet, found := e.nextInGroupLocked(g, slot, e.session.CurrentSupersetCycleSet); found {
			e.movePointerLocked(nEx, nSet)
			return
		}
		// Group exhausted: continue past its last position.
		last := 0
		for _, p := range g.Positions {
			if p > last {
				last = p
			}
		}
		if nEx, nSet, found := e.findNextOpenLocked(last); found {
			e.movePointerLocked(nEx, nSet)
		}
		return
	}

	if k, ok := e.firstOpenInInstanceLocked(exIdx); ok {
		e.movePointerLocked(exIdx, k)
		return
	}
	if nEx, nSet, ok := e.findNextOpenLocked(exIdx); ok {
		e.movePointerLocked(nEx, nSet)
	}
}

// nextInGroupLocked walks the superset rotation cyclically from the given
// slot. The cycle set number only increments when the rotation wraps back to
// the group's first slot; members whose set at the cycle number is already
// terminal (or who ran out of sets) are passed over.
func (e *Engine) nextInGroupLocked(g models.SupersetGroup, slot, cycleSet int) (int, int, bool) {
	if len(g.Positions) == 0 {
		return 0, 0, false
	}
	maxSets := 0
	for _, p := range g.Positions {
		if p < len(e.instances) {
			if n := len(e.sets[e.instances[p].ID]); n > maxSets {
				maxSets = n
			}
		}
	}

	s, c := slot, cycleSet
	for i := 0; i < len(g.Positions)*(maxSets+2); i++ {
		s = (s + 1) % len(g.Positions)
		if s == 0 {
			c++
		}
		if c > maxSets {
			break
		}
		p := g.Positions[s]
		if p >= len(e.instances) {
			continue
		}
		sets := e.sets[e.instances[p].ID]
		if c < len(sets) && sets[c].Completion == models.SetScheduled {
			return p, c, true
		}
	}
	return 0, 0, false
}

// restForCurrentLocked returns the rest seconds owed after the set at the
// current position: intra-group rest while rotating, the group's rest-after
// on the rotation's last slot, or the position's protocol rest otherwise.
func (e *Engine) restForCurrentLocked() int {
	exIdx := e.session.CurrentExerciseIndex
	if g, slot, ok := e.workout.SupersetGroupFor(exIdx); ok {
		if slot == len(g.Positions)-1 {
			return g.RestAfter
		}
		if slot < len(g.RestBetween) {
			return g.RestBetween[slot]
		}
		return catalog.DefaultRestSeconds
	}
	if pv, ok := e.protocolForLocked(exIdx); ok {
		return pv.RestSeconds
	}
	return catalog.DefaultRestSeconds
}

func (e *Engine) protocolForLocked(exIdx int) (models.ProtocolVariant, bool) {
	if exIdx >= 0 && exIdx < len(e.instances) {
		if pv, ok := catalog.Protocol(e.instances[exIdx].ProtocolVariantID); ok {
			return pv, true
		}
	}
	if pv, ok := catalog.Protocol(e.workout.ProtocolVariantIDs[exIdx]); ok {
		return pv, true
	}
	return models.ProtocolVariant{}, false
}

// --- persistence (mutex held, fire-and-forget) ---

func (e *Engine) persistSetLocked(ctx context.Context, set *models.ExerciseSet) error {
	if err := e.store.SaveSet(ctx, set); err != nil {
		e.log.Error("persisting set", "set_id", set.ID, "error", err)
		return fmt.Errorf("persisting set %s: %w", set.ID, err)
	}
	return nil
}

func (e *Engine) persistInstanceLocked(ctx context.Context, inst *models.ExerciseInstance) error {
	if err := e.store.SaveInstance(ctx, inst); err != nil {
		e.log.Error("persisting instance", "instance_id", inst.ID, "error", err)
		return fmt.Errorf("persisting instance %s: %w", inst.ID, err)
	}
	return nil
}

func (e *Engine) persistWorkoutLocked(ctx context.Context) error {
	if err := e.store.SaveWorkout(ctx, e.workout); err != nil {
		e.log.Error("persisting workout", "workout_id", e.workout.ID, "error", err)
		return fmt.Errorf("persisting workout %s: %w", e.workout.ID, err)
	}
	return nil
}

func (e *Engine) persistSessionLocked(ctx context.Context) error {
	if err := e.store.SaveSession(ctx, e.session); err != nil {
		e.log.Error("persisting session", "session_id", e.session.ID, "error", err)
		return fmt.Errorf("persisting session %s: %w", e.session.ID, err)
	}
	return nil
}
