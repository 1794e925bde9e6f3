package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/claude/ironcoach/internal/archive"
	"github.com/claude/ironcoach/internal/models"
	"github.com/claude/ironcoach/internal/repo"
	"github.com/google/uuid"
)

// Coordinator owns the active sessions: it starts, pauses, resumes, and ends
// them, enforces one active session per member, and relays state snapshots to
// subscribers after every command. Finished sessions are summarized into the
// local archive when one is configured.
type Coordinator struct {
	mu     sync.Mutex
	store  repo.Store
	arch   *archive.Archive
	log    *slog.Logger
	now    func() time.Time
	active map[uuid.UUID]*Engine
	subs   []func(Snapshot)
}

// NewCoordinator creates a coordinator over the given store. The archive may
// be nil.
func NewCoordinator(store repo.Store, arch *archive.Archive, log *slog.Logger) *Coordinator {
	return &Coordinator{
		store:  store,
		arch:   arch,
		log:    log,
		now:    time.Now,
		active: make(map[uuid.UUID]*Engine),
	}
}

// Subscribe registers a callback invoked with a fresh snapshot after every
// command against any active session.
func (c *Coordinator) Subscribe(fn func(Snapshot)) {
	c.mu.Lock()
	c.subs = append(c.subs, fn)
	c.mu.Unlock()
}

// StartWorkout loads the workout graph, creates the session record with the
// pointer at the first scheduled set, and returns the engine driving it.
// A member with a session still active gets ErrWorkoutInProgress.
func (c *Coordinator) StartWorkout(ctx context.Context, memberID, workoutID uuid.UUID) (*Engine, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if eng, ok := c.active[memberID]; ok && !eng.Finished() {
		return nil, ErrWorkoutInProgress
	}

	graph, err := repo.LoadWorkoutGraph(ctx, c.store, workoutID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, fmt.Errorf("workout %s: %w", workoutID, repo.ErrNotFound)
		}
		return nil, fmt.Errorf("starting workout: %w", err)
	}

	now := c.now()
	sess := &models.Session{
		ID:        uuid.New(),
		WorkoutID: workoutID,
		MemberID:  memberID,
		StartTime: now,
		Status:    models.SessionActive,
	}

	graph.Workout.Status = models.WorkoutInProgress
	if err := c.store.SaveWorkout(ctx, graph.Workout); err != nil {
		c.log.Error("persisting workout start", "workout_id", workoutID, "error", err)
	}

	eng := newEngine(sess, graph, c.store, c.log, c.now)
	eng.onChange = c.engineChanged
	if err := c.store.SaveSession(ctx, sess); err != nil {
		c.log.Error("persisting new session", "session_id", sess.ID, "error", err)
	}

	c.active[memberID] = eng
	c.log.Info("workout started",
		"session_id", sess.ID,
		"workout_id", workoutID,
		"member_id", memberID,
		"exercises", len(graph.Instances),
	)
	return eng, nil
}

// ActiveEngine returns the member's running engine, or ErrSessionNotFound.
func (c *Coordinator) ActiveEngine(memberID uuid.UUID) (*Engine, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	eng, ok := c.active[memberID]
	if !ok || eng.Finished() {
		return nil, ErrSessionNotFound
	}
	return eng, nil
}

// Pause suspends the member's active session.
func (c *Coordinator) Pause(ctx context.Context, memberID uuid.UUID) error {
	eng, err := c.ActiveEngine(memberID)
	if err != nil {
		return err
	}
	return eng.Pause(ctx)
}

// Resume reactivates the member's paused session.
func (c *Coordinator) Resume(ctx context.Context, memberID uuid.UUID) error {
	eng, err := c.ActiveEngine(memberID)
	if err != nil {
		return err
	}
	return eng.Resume(ctx)
}

// CompleteWorkoutEarly ends the member's active session now, sweeping the
// remaining sets to skipped and classifying the workout.
func (c *Coordinator) CompleteWorkoutEarly(ctx context.Context, memberID uuid.UUID) error {
	eng, err := c.ActiveEngine(memberID)
	if err != nil {
		return err
	}
	return eng.CompleteEarly(ctx)
}

// engineChanged runs after every engine command, outside the engine lock. It
// fans the snapshot out to subscribers and retires finished engines.
func (c *Coordinator) engineChanged(eng *Engine) {
	snap := eng.Snapshot()

	c.mu.Lock()
	subs := make([]func(Snapshot), len(c.subs))
	copy(subs, c.subs)
	if snap.IsWorkoutComplete {
		if cur, ok := c.active[snap.MemberID]; ok && cur == eng {
			delete(c.active, snap.MemberID)
		}
	}
	c.mu.Unlock()

	if snap.IsWorkoutComplete {
		c.archiveFinished(eng, snap)
	}
	for _, fn := range subs {
		fn(snap)
	}
}

func (c *Coordinator) archiveFinished(eng *Engine, snap Snapshot) {
	if c.arch == nil {
		return
	}
	eng.mu.Lock()
	sess := *eng.session
	status := string(eng.workout.Status)
	skipped := 0
	for _, inst := range eng.instances {
		for _, set := range eng.sets[inst.ID] {
			if set.Completion == models.SetSkipped {
				skipped++
			}
		}
	}
	eng.mu.Unlock()

	end := c.now()
	if sess.EndTime != nil {
		end = *sess.EndTime
	}
	entry := archive.Entry{
		SessionID:     sess.ID,
		WorkoutID:     sess.WorkoutID,
		MemberID:      sess.MemberID,
		WorkoutStatus: status,
		CompletedSets: snap.LoggedSetCount,
		SkippedSets:   skipped,
		StartTime:     sess.StartTime,
		EndTime:       end,
		ActiveTime:    sess.ActiveDuration(end),
	}
	if err := c.arch.Record(entry); err != nil {
		c.log.Error("archiving session", "session_id", sess.ID, "error", err)
	}
}
