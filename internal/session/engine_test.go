package session

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/claude/ironcoach/internal/models"
	"github.com/claude/ironcoach/internal/repo"
	"github.com/google/uuid"
)

var testExercises = []string{
	"barbell_back_squat",
	"barbell_bench_press",
	"pull_up",
	"overhead_press",
	"barbell_row",
}

// fakeClock is a manually advanced clock shared by the coordinator and
// engine under test.
type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

type fixture struct {
	store     *repo.Memory
	coord     *Coordinator
	eng       *Engine
	clock     *fakeClock
	memberID  uuid.UUID
	workoutID uuid.UUID
	instances []*models.ExerciseInstance
}

type fixtureOpt func(*models.Workout, []*models.ExerciseInstance, map[uuid.UUID][]*models.ExerciseSet)

func withSupersetGroups(groups ...models.SupersetGroup) fixtureOpt {
	return func(w *models.Workout, _ []*models.ExerciseInstance, _ map[uuid.UUID][]*models.ExerciseSet) {
		w.SupersetGroups = groups
	}
}

func withTargets(weight float64, reps int) fixtureOpt {
	return func(_ *models.Workout, insts []*models.ExerciseInstance, sets map[uuid.UUID][]*models.ExerciseSet) {
		for _, inst := range insts {
			for _, s := range sets[inst.ID] {
				w, r := weight, reps
				s.TargetWeight = &w
				s.TargetReps = &r
			}
		}
	}
}

// newFixture seeds a workout with nExercises instances of nSets sets each and
// starts a session over it.
func newFixture(t *testing.T, nExercises, nSets int, opts ...fixtureOpt) *fixture {
	t.Helper()
	ctx := context.Background()
	store := repo.NewMemory()
	clock := newFakeClock()

	memberID := uuid.New()
	workoutID := uuid.New()
	w := &models.Workout{
		ID:                 workoutID,
		MemberID:           memberID,
		Name:               "Test Day",
		ScheduledDate:      clock.Now(),
		ProtocolVariantIDs: make(map[int]string),
		Status:             models.WorkoutScheduled,
	}

	var instances []*models.ExerciseInstance
	sets := make(map[uuid.UUID][]*models.ExerciseSet)
	for i := 0; i < nExercises; i++ {
		exID := testExercises[i%len(testExercises)]
		w.ExerciseIDs = append(w.ExerciseIDs, exID)
		w.ProtocolVariantIDs[i] = "strength_3x5_moderate"

		inst := &models.ExerciseInstance{
			ID:                uuid.New(),
			ExerciseID:        exID,
			WorkoutID:         workoutID,
			Position:          i,
			ProtocolVariantID: "strength_3x5_moderate",
			Status:            models.WorkoutScheduled,
		}
		for k := 0; k < nSets; k++ {
			set := &models.ExerciseSet{
				ID:                 uuid.New(),
				ExerciseInstanceID: inst.ID,
				SetNumber:          k + 1,
				Completion:         models.SetScheduled,
			}
			inst.SetIDs = append(inst.SetIDs, set.ID)
			sets[inst.ID] = append(sets[inst.ID], set)
		}
		instances = append(instances, inst)
	}

	for _, opt := range opts {
		opt(w, instances, sets)
	}

	if err := store.SaveWorkout(ctx, w); err != nil {
		t.Fatalf("seeding workout: %v", err)
	}
	for _, inst := range instances {
		if err := store.SaveInstance(ctx, inst); err != nil {
			t.Fatalf("seeding instance: %v", err)
		}
		for _, s := range sets[inst.ID] {
			if err := store.SaveSet(ctx, s); err != nil {
				t.Fatalf("seeding set: %v", err)
			}
		}
	}

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	coord := NewCoordinator(store, nil, log)
	coord.now = clock.Now

	eng, err := coord.StartWorkout(ctx, memberID, workoutID)
	if err != nil {
		t.Fatalf("StartWorkout: %v", err)
	}

	return &fixture{
		store:     store,
		coord:     coord,
		eng:       eng,
		clock:     clock,
		memberID:  memberID,
		workoutID: workoutID,
		instances: eng.instances,
	}
}

func (f *fixture) workout(t *testing.T) *models.Workout {
	t.Helper()
	w, err := f.store.GetWorkout(context.Background(), f.workoutID)
	if err != nil {
		t.Fatalf("reloading workout: %v", err)
	}
	return w
}

func (f *fixture) logAll(t *testing.T, weight float64, reps, count int) {
	t.Helper()
	for i := 0; i < count; i++ {
		if err := f.eng.LogSet(context.Background(), weight, reps); err != nil {
			t.Fatalf("LogSet #%d: %v", i+1, err)
		}
	}
}

func TestLogAllSetsCompletesWorkout(t *testing.T) {
	f := newFixture(t, 3, 4)

	f.logAll(t, 100, 5, 12)

	snap := f.eng.Snapshot()
	if !snap.IsWorkoutComplete {
		t.Error("IsWorkoutComplete = false, want true")
	}
	if snap.LoggedSetCount != 12 {
		t.Errorf("LoggedSetCount = %d, want 12", snap.LoggedSetCount)
	}
	if snap.Status != models.SessionCompleted {
		t.Errorf("session status = %q, want %q", snap.Status, models.SessionCompleted)
	}

	w := f.workout(t)
	if w.Status != models.WorkoutCompleted {
		t.Errorf("workout status = %q, want %q", w.Status, models.WorkoutCompleted)
	}
	if w.CompletedDate == nil {
		t.Error("CompletedDate = nil, want set")
	}
}

func TestSkipEveryExerciseYieldsSkippedWorkout(t *testing.T) {
	f := newFixture(t, 3, 3)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if err := f.eng.SkipExercise(ctx); err != nil {
			t.Fatalf("SkipExercise #%d: %v", i+1, err)
		}
	}

	w := f.workout(t)
	if w.Status != models.WorkoutSkipped {
		t.Errorf("workout status = %q, want %q", w.Status, models.WorkoutSkipped)
	}
	if w.CompletedDate != nil {
		t.Errorf("CompletedDate = %v, want nil", w.CompletedDate)
	}

	snap := f.eng.Snapshot()
	if snap.Status != models.SessionAbandoned {
		t.Errorf("session status = %q, want %q", snap.Status, models.SessionAbandoned)
	}
}

func TestLogOneSetThenCompleteEarly(t *testing.T) {
	f := newFixture(t, 3, 3)
	ctx := context.Background()

	if err := f.eng.LogSet(ctx, 80, 5); err != nil {
		t.Fatalf("LogSet: %v", err)
	}
	if err := f.coord.CompleteWorkoutEarly(ctx, f.memberID); err != nil {
		t.Fatalf("CompleteWorkoutEarly: %v", err)
	}

	w := f.workout(t)
	if w.Status != models.WorkoutCompleted {
		t.Errorf("workout status = %q, want %q", w.Status, models.WorkoutCompleted)
	}
	if w.CompletedDate == nil {
		t.Error("CompletedDate = nil, want set")
	}

	// Every set except the logged one is skipped; none stay scheduled.
	completed, skipped, scheduled := 0, 0, 0
	for _, inst := range f.instances {
		sets, err := f.store.ListSets(ctx, inst.ID)
		if err != nil {
			t.Fatalf("ListSets: %v", err)
		}
		for _, s := range sets {
			switch s.Completion {
			case models.SetCompleted:
				completed++
			case models.SetSkipped:
				skipped++
			case models.SetScheduled:
				scheduled++
			}
		}
	}
	if completed != 1 || skipped != 8 || scheduled != 0 {
		t.Errorf("set totals = %d completed / %d skipped / %d scheduled, want 1/8/0",
			completed, skipped, scheduled)
	}
}

func TestLogSetRejectsNonPositiveReps(t *testing.T) {
	f := newFixture(t, 2, 3)
	ctx := context.Background()

	before := f.eng.Snapshot()
	for _, reps := range []int{0, -3} {
		err := f.eng.LogSet(ctx, 100, reps)
		if !errors.Is(err, ErrInvalidSetValue) {
			t.Errorf("LogSet(reps=%d) error = %v, want ErrInvalidSetValue", reps, err)
		}
	}
	after := f.eng.Snapshot()

	if after.SetNumber != before.SetNumber || after.ExerciseNumber != before.ExerciseNumber {
		t.Errorf("pointer moved to exercise %d set %d, want exercise %d set %d",
			after.ExerciseNumber, after.SetNumber, before.ExerciseNumber, before.SetNumber)
	}
	if after.LoggedSetCount != 0 {
		t.Errorf("LoggedSetCount = %d, want 0", after.LoggedSetCount)
	}
}

func TestSkipSetAdvancesWithoutRest(t *testing.T) {
	f := newFixture(t, 2, 3)
	ctx := context.Background()

	if err := f.eng.SkipSet(ctx); err != nil {
		t.Fatalf("SkipSet: %v", err)
	}

	snap := f.eng.Snapshot()
	if snap.SetNumber != 2 {
		t.Errorf("SetNumber = %d, want 2", snap.SetNumber)
	}
	if snap.IsResting {
		t.Error("IsResting = true after SkipSet, want false")
	}

	sets, _ := f.store.ListSets(ctx, f.instances[0].ID)
	if sets[0].Completion != models.SetSkipped {
		t.Errorf("set 1 completion = %q, want %q", sets[0].Completion, models.SetSkipped)
	}
	if sets[0].ActualWeight != nil || sets[0].ActualReps != nil {
		t.Error("skipped set has actual values, want nil")
	}
}

func TestSkipExerciseMarksRemainingAndAdvances(t *testing.T) {
	f := newFixture(t, 2, 3)
	ctx := context.Background()

	// One set performed, two remaining when the exercise is skipped.
	if err := f.eng.LogSet(ctx, 60, 5); err != nil {
		t.Fatalf("LogSet: %v", err)
	}
	if err := f.eng.SkipExercise(ctx); err != nil {
		t.Fatalf("SkipExercise: %v", err)
	}

	sets, _ := f.store.ListSets(ctx, f.instances[0].ID)
	completed, skipped := 0, 0
	for _, s := range sets {
		switch s.Completion {
		case models.SetCompleted:
			completed++
		case models.SetSkipped:
			skipped++
		}
	}
	if completed != 1 || skipped != 2 {
		t.Errorf("first instance = %d completed / %d skipped, want 1/2", completed, skipped)
	}

	snap := f.eng.Snapshot()
	if snap.ExerciseNumber != 2 {
		t.Errorf("ExerciseNumber = %d, want 2", snap.ExerciseNumber)
	}
	if snap.SetNumber != 1 {
		t.Errorf("SetNumber = %d, want 1", snap.SetNumber)
	}
	if snap.IsResting {
		t.Error("IsResting = true after SkipExercise, want false")
	}
}

func TestReferenceScenarioOneLoggedThreeSkipped(t *testing.T) {
	f := newFixture(t, 4, 3)
	ctx := context.Background()

	f.logAll(t, 100, 5, 3)
	for i := 0; i < 3; i++ {
		if err := f.eng.SkipExercise(ctx); err != nil {
			t.Fatalf("SkipExercise #%d: %v", i+1, err)
		}
	}

	w := f.workout(t)
	if w.Status != models.WorkoutCompleted {
		t.Errorf("workout status = %q, want %q", w.Status, models.WorkoutCompleted)
	}

	completedInst, skippedInst := 0, 0
	for _, inst := range f.instances {
		got, err := f.store.ListInstances(ctx, f.workoutID)
		if err != nil {
			t.Fatalf("ListInstances: %v", err)
		}
		for _, gi := range got {
			if gi.ID != inst.ID {
				continue
			}
			switch gi.Status {
			case models.WorkoutCompleted:
				completedInst++
			case models.WorkoutSkipped:
				skippedInst++
			}
		}
	}
	if completedInst != 1 || skippedInst != 3 {
		t.Errorf("instances = %d completed / %d skipped, want 1/3", completedInst, skippedInst)
	}
}

func TestSubstituteExerciseBeforeLogging(t *testing.T) {
	f := newFixture(t, 2, 3)
	ctx := context.Background()

	before := len(f.instances[0].SetIDs)
	if err := f.eng.SubstituteExercise(ctx, "lat_pulldown"); err != nil {
		t.Fatalf("SubstituteExercise: %v", err)
	}

	insts, _ := f.store.ListInstances(ctx, f.workoutID)
	var inst *models.ExerciseInstance
	for _, gi := range insts {
		if gi.ID == f.instances[0].ID {
			inst = gi
		}
	}
	if inst == nil {
		t.Fatal("substituted instance not found")
	}
	if inst.ExerciseID != "lat_pulldown" {
		t.Errorf("ExerciseID = %q, want %q", inst.ExerciseID, "lat_pulldown")
	}
	if len(inst.SetIDs) != before {
		t.Errorf("set count = %d, want %d (plan preserved)", len(inst.SetIDs), before)
	}

	snap := f.eng.Snapshot()
	if snap.CurrentExercise.ID != "lat_pulldown" {
		t.Errorf("CurrentExercise = %q, want %q", snap.CurrentExercise.ID, "lat_pulldown")
	}
}

func TestSubstituteExerciseAfterLoggingFails(t *testing.T) {
	f := newFixture(t, 2, 3)
	ctx := context.Background()

	if err := f.eng.LogSet(ctx, 60, 5); err != nil {
		t.Fatalf("LogSet: %v", err)
	}
	err := f.eng.SubstituteExercise(ctx, "lat_pulldown")
	if !errors.Is(err, ErrSubstitutionNotAllowed) {
		t.Fatalf("SubstituteExercise error = %v, want ErrSubstitutionNotAllowed", err)
	}

	insts, _ := f.store.ListInstances(ctx, f.workoutID)
	for _, gi := range insts {
		if gi.ID == f.instances[0].ID && gi.ExerciseID == "lat_pulldown" {
			t.Error("substitution applied despite rejection")
		}
	}
}

func TestResetExerciseReopensSets(t *testing.T) {
	f := newFixture(t, 2, 3)
	ctx := context.Background()

	f.logAll(t, 80, 5, 2)
	if err := f.eng.ResetExercise(ctx, f.instances[0].ID); err != nil {
		t.Fatalf("ResetExercise: %v", err)
	}

	sets, _ := f.store.ListSets(ctx, f.instances[0].ID)
	for _, s := range sets {
		if s.Completion != models.SetScheduled {
			t.Errorf("set %d completion = %q, want %q", s.SetNumber, s.Completion, models.SetScheduled)
		}
		if s.ActualWeight != nil || s.ActualReps != nil {
			t.Errorf("set %d retains actual values after reset", s.SetNumber)
		}
	}

	snap := f.eng.Snapshot()
	if snap.ExerciseNumber != 1 || snap.SetNumber != 1 {
		t.Errorf("pointer = exercise %d set %d, want exercise 1 set 1", snap.ExerciseNumber, snap.SetNumber)
	}
}

func TestResetNonCurrentExerciseKeepsPointer(t *testing.T) {
	f := newFixture(t, 2, 2)
	ctx := context.Background()

	f.logAll(t, 80, 5, 2) // finish exercise 1, pointer now on exercise 2
	before := f.eng.Snapshot()
	if before.ExerciseNumber != 2 {
		t.Fatalf("ExerciseNumber = %d, want 2", before.ExerciseNumber)
	}

	if err := f.eng.ResetExercise(ctx, f.instances[0].ID); err != nil {
		t.Fatalf("ResetExercise: %v", err)
	}
	after := f.eng.Snapshot()
	if after.ExerciseNumber != 2 || after.SetNumber != before.SetNumber {
		t.Errorf("pointer moved to exercise %d set %d, want exercise 2 set %d",
			after.ExerciseNumber, after.SetNumber, before.SetNumber)
	}
}

func TestResetUnknownInstance(t *testing.T) {
	f := newFixture(t, 1, 1)
	err := f.eng.ResetExercise(context.Background(), uuid.New())
	if !errors.Is(err, ErrInstanceNotFound) {
		t.Fatalf("ResetExercise error = %v, want ErrInstanceNotFound", err)
	}
}

func TestAdjustWeightFloorsAtZero(t *testing.T) {
	f := newFixture(t, 1, 3, withTargets(100, 8))

	f.eng.AdjustWeight(-100)
	if got := f.eng.Snapshot().DisplayWeight; got != 0 {
		t.Errorf("DisplayWeight = %v, want 0", got)
	}
	f.eng.AdjustWeight(-5)
	if got := f.eng.Snapshot().DisplayWeight; got != 0 {
		t.Errorf("DisplayWeight after flooring = %v, want 0", got)
	}
}

func TestAdjustRepsFloorsAtOne(t *testing.T) {
	f := newFixture(t, 1, 3, withTargets(100, 10))

	f.eng.AdjustReps(-10)
	if got := f.eng.Snapshot().DisplayReps; got != 1 {
		t.Errorf("DisplayReps = %d, want 1", got)
	}
	f.eng.AdjustReps(5)
	if got := f.eng.Snapshot().DisplayReps; got != 6 {
		t.Errorf("DisplayReps = %d, want 6", got)
	}
}

func TestDisplayDefaultsFromTargets(t *testing.T) {
	f := newFixture(t, 1, 3, withTargets(102.5, 8))

	snap := f.eng.Snapshot()
	if snap.DisplayWeight != 102.5 {
		t.Errorf("DisplayWeight = %v, want 102.5", snap.DisplayWeight)
	}
	if snap.DisplayReps != 8 {
		t.Errorf("DisplayReps = %d, want 8", snap.DisplayReps)
	}
}

func TestDisplayDefaultsCarryForward(t *testing.T) {
	f := newFixture(t, 1, 3)
	ctx := context.Background()

	if err := f.eng.LogSet(ctx, 95, 7); err != nil {
		t.Fatalf("LogSet: %v", err)
	}

	snap := f.eng.Snapshot()
	if snap.DisplayWeight != 95 {
		t.Errorf("DisplayWeight = %v, want 95 (carried from prior set)", snap.DisplayWeight)
	}
	if snap.DisplayReps != 7 {
		t.Errorf("DisplayReps = %d, want 7 (carried from prior set)", snap.DisplayReps)
	}
}

func TestDisplayDefaultsFromProtocol(t *testing.T) {
	f := newFixture(t, 1, 3)

	// No targets, nothing logged: reps come from the 3x5 scheme, weight
	// stays at the uncalibrated default.
	snap := f.eng.Snapshot()
	if snap.DisplayReps != 5 {
		t.Errorf("DisplayReps = %d, want 5", snap.DisplayReps)
	}
	if snap.DisplayWeight != 0 {
		t.Errorf("DisplayWeight = %v, want 0", snap.DisplayWeight)
	}
}

func TestRestTimerAfterLogSet(t *testing.T) {
	f := newFixture(t, 1, 3)
	ctx := context.Background()

	if err := f.eng.LogSet(ctx, 100, 5); err != nil {
		t.Fatalf("LogSet: %v", err)
	}

	snap := f.eng.Snapshot()
	if !snap.IsResting {
		t.Fatal("IsResting = false after LogSet, want true")
	}
	// strength_3x5_moderate rests 180s.
	if snap.RestTimeRemaining == nil || *snap.RestTimeRemaining != 180*time.Second {
		t.Errorf("RestTimeRemaining = %v, want 180s", snap.RestTimeRemaining)
	}

	f.clock.Advance(60 * time.Second)
	snap = f.eng.Snapshot()
	if snap.RestTimeRemaining == nil || *snap.RestTimeRemaining != 120*time.Second {
		t.Errorf("RestTimeRemaining after 60s = %v, want 120s", snap.RestTimeRemaining)
	}
}

func TestSkipRestClearsCountdown(t *testing.T) {
	f := newFixture(t, 1, 3)
	ctx := context.Background()

	if err := f.eng.LogSet(ctx, 100, 5); err != nil {
		t.Fatalf("LogSet: %v", err)
	}
	f.eng.SkipRest()

	snap := f.eng.Snapshot()
	if snap.IsResting {
		t.Error("IsResting = true after SkipRest, want false")
	}
	if snap.RestTimeRemaining != nil {
		t.Errorf("RestTimeRemaining = %v, want nil", snap.RestTimeRemaining)
	}
}

func TestAdjustRestFloorsAtZero(t *testing.T) {
	f := newFixture(t, 1, 4)
	ctx := context.Background()

	if err := f.eng.LogSet(ctx, 100, 5); err != nil {
		t.Fatalf("LogSet: %v", err)
	}
	f.eng.AdjustRest(-10 * time.Minute)

	snap := f.eng.Snapshot()
	if snap.IsResting {
		t.Error("IsResting = true after flooring rest to zero, want false")
	}

	// Adjusting upward keeps the countdown alive.
	if err := f.eng.SkipSet(ctx); err != nil {
		t.Fatalf("SkipSet: %v", err)
	}
	if err := f.eng.LogSet(ctx, 100, 5); err != nil {
		t.Fatalf("LogSet: %v", err)
	}
	f.eng.AdjustRest(30 * time.Second)
	snap = f.eng.Snapshot()
	if snap.RestTimeRemaining == nil || *snap.RestTimeRemaining != 210*time.Second {
		t.Errorf("RestTimeRemaining = %v, want 210s", snap.RestTimeRemaining)
	}
}

func TestRestExpiryWaitsForContinuation(t *testing.T) {
	f := newFixture(t, 1, 3)
	ctx := context.Background()

	if err := f.eng.LogSet(ctx, 100, 5); err != nil {
		t.Fatalf("LogSet: %v", err)
	}
	before := f.eng.Snapshot()

	f.clock.Advance(10 * time.Minute)
	after := f.eng.Snapshot()
	if after.IsResting {
		t.Error("IsResting = true after countdown ran out, want false")
	}
	if after.SetNumber != before.SetNumber {
		t.Errorf("SetNumber = %d after expiry, want %d (no auto-advance)", after.SetNumber, before.SetNumber)
	}
}

func TestLastSetSkipsRestTimer(t *testing.T) {
	f := newFixture(t, 1, 2)
	ctx := context.Background()

	if err := f.eng.LogSet(ctx, 100, 5); err != nil {
		t.Fatalf("LogSet: %v", err)
	}
	f.eng.SkipRest()
	if err := f.eng.LogSet(ctx, 100, 5); err != nil {
		t.Fatalf("LogSet: %v", err)
	}

	snap := f.eng.Snapshot()
	if snap.IsResting {
		t.Error("IsResting = true after final set, want false")
	}
	if !snap.IsWorkoutComplete {
		t.Error("IsWorkoutComplete = false after final set, want true")
	}
}

func TestCommandsAfterSessionEnded(t *testing.T) {
	f := newFixture(t, 1, 1)
	ctx := context.Background()

	if err := f.eng.LogSet(ctx, 100, 5); err != nil {
		t.Fatalf("LogSet: %v", err)
	}
	if err := f.eng.LogSet(ctx, 100, 5); !errors.Is(err, ErrSessionEnded) {
		t.Errorf("LogSet after end = %v, want ErrSessionEnded", err)
	}
	if err := f.eng.SkipExercise(ctx); !errors.Is(err, ErrSessionEnded) {
		t.Errorf("SkipExercise after end = %v, want ErrSessionEnded", err)
	}
	if err := f.eng.AdjustWeight(5); !errors.Is(err, ErrSessionEnded) {
		t.Errorf("AdjustWeight after end = %v, want ErrSessionEnded", err)
	}
	if err := f.eng.AdjustReps(1); !errors.Is(err, ErrSessionEnded) {
		t.Errorf("AdjustReps after end = %v, want ErrSessionEnded", err)
	}
	if err := f.eng.SkipRest(); !errors.Is(err, ErrSessionEnded) {
		t.Errorf("SkipRest after end = %v, want ErrSessionEnded", err)
	}
	if err := f.eng.AdjustRest(30 * time.Second); !errors.Is(err, ErrSessionEnded) {
		t.Errorf("AdjustRest after end = %v, want ErrSessionEnded", err)
	}
}

func TestTerminalInvariantNoScheduledSets(t *testing.T) {
	f := newFixture(t, 3, 2)
	ctx := context.Background()

	// Mixed path: log, skip a set, skip an exercise, end early.
	if err := f.eng.LogSet(ctx, 100, 5); err != nil {
		t.Fatalf("LogSet: %v", err)
	}
	if err := f.eng.SkipSet(ctx); err != nil {
		t.Fatalf("SkipSet: %v", err)
	}
	if err := f.eng.SkipExercise(ctx); err != nil {
		t.Fatalf("SkipExercise: %v", err)
	}
	if err := f.coord.CompleteWorkoutEarly(ctx, f.memberID); err != nil {
		t.Fatalf("CompleteWorkoutEarly: %v", err)
	}

	for _, inst := range f.instances {
		sets, _ := f.store.ListSets(ctx, inst.ID)
		for _, s := range sets {
			if s.Completion == models.SetScheduled {
				t.Errorf("set %d of instance %s still scheduled after session end", s.SetNumber, inst.ID)
			}
		}
	}
}
