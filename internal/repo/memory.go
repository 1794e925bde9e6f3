package repo

import (
	"context"
	"sort"
	"sync"

	"github.com/claude/ironcoach/internal/models"
	"github.com/google/uuid"
)

// Memory is an in-memory Store used for tests and the -memory dev mode.
// All records are stored by value so callers cannot alias internal state.
type Memory struct {
	mu        sync.RWMutex
	workouts  map[uuid.UUID]models.Workout
	instances map[uuid.UUID]models.ExerciseInstance
	sets      map[uuid.UUID]models.ExerciseSet
	sessions  map[uuid.UUID]models.Session
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		workouts:  make(map[uuid.UUID]models.Workout),
		instances: make(map[uuid.UUID]models.ExerciseInstance),
		sets:      make(map[uuid.UUID]models.ExerciseSet),
		sessions:  make(map[uuid.UUID]models.Session),
	}
}

func (m *Memory) GetWorkout(_ context.Context, id uuid.UUID) (*models.Workout, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	w, ok := m.workouts[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &w, nil
}

func (m *Memory) ListWorkoutsByMember(_ context.Context, memberID uuid.UUID) ([]*models.Workout, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*models.Workout
	for _, w := range m.workouts {
		if w.MemberID == memberID {
			cp := w
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ScheduledDate.Before(out[j].ScheduledDate) })
	return out, nil
}

func (m *Memory) SaveWorkout(_ context.Context, w *models.Workout) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.workouts[w.ID] = *w
	return nil
}

func (m *Memory) ListInstances(_ context.Context, workoutID uuid.UUID) ([]*models.ExerciseInstance, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*models.ExerciseInstance
	for _, inst := range m.instances {
		if inst.WorkoutID == workoutID {
			cp := inst
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out, nil
}

func (m *Memory) SaveInstance(_ context.Context, inst *models.ExerciseInstance) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.instances[inst.ID] = *inst
	return nil
}

func (m *Memory) ListSets(_ context.Context, instanceID uuid.UUID) ([]*models.ExerciseSet, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*models.ExerciseSet
	for _, set := range m.sets {
		if set.ExerciseInstanceID == instanceID {
			cp := set
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SetNumber < out[j].SetNumber })
	return out, nil
}

func (m *Memory) SaveSet(_ context.Context, set *models.ExerciseSet) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sets[set.ID] = *set
	return nil
}

func (m *Memory) GetSession(_ context.Context, id uuid.UUID) (*models.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &s, nil
}

func (m *Memory) SaveSession(_ context.Context, s *models.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.ID] = *s
	return nil
}
