// Package repo defines the persistence ports the session engine writes
// through. The engine treats writes as fire-and-forget: in-memory session
// state is authoritative and a failed write never rolls it back.
package repo

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/claude/ironcoach/internal/models"
	"github.com/google/uuid"
)

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("record not found")

// WorkoutRepo reads and writes workout records.
type WorkoutRepo interface {
	GetWorkout(ctx context.Context, id uuid.UUID) (*models.Workout, error)
	ListWorkoutsByMember(ctx context.Context, memberID uuid.UUID) ([]*models.Workout, error)
	SaveWorkout(ctx context.Context, w *models.Workout) error
}

// InstanceRepo reads and writes exercise instance records.
type InstanceRepo interface {
	ListInstances(ctx context.Context, workoutID uuid.UUID) ([]*models.ExerciseInstance, error)
	SaveInstance(ctx context.Context, inst *models.ExerciseInstance) error
}

// SetRepo reads and writes exercise set records.
type SetRepo interface {
	ListSets(ctx context.Context, instanceID uuid.UUID) ([]*models.ExerciseSet, error)
	SaveSet(ctx context.Context, set *models.ExerciseSet) error
}

// SessionRepo reads and writes session records.
type SessionRepo interface {
	GetSession(ctx context.Context, id uuid.UUID) (*models.Session, error)
	SaveSession(ctx context.Context, s *models.Session) error
}

// Store aggregates all repositories behind one dependency.
type Store interface {
	WorkoutRepo
	InstanceRepo
	SetRepo
	SessionRepo
}

// WorkoutGraph is a workout with its instances and their sets, loaded in one
// pass at session start. Instances are ordered by workout position; sets are
// ordered by set number.
type WorkoutGraph struct {
	Workout   *models.Workout
	Instances []*models.ExerciseInstance
	Sets      map[uuid.UUID][]*models.ExerciseSet
}

// LoadWorkoutGraph fetches the workout, its instances, and every set.
// Instances are sorted to match the workout's exercise order.
func LoadWorkoutGraph(ctx context.Context, s Store, workoutID uuid.UUID) (*WorkoutGraph, error) {
	w, err := s.GetWorkout(ctx, workoutID)
	if err != nil {
		return nil, fmt.Errorf("loading workout: %w", err)
	}

	instances, err := s.ListInstances(ctx, workoutID)
	if err != nil {
		return nil, fmt.Errorf("loading instances: %w", err)
	}

	// Order instances by their slot in the workout's exercise list. The
	// stored position disambiguates workouts that repeat an exercise.
	sort.SliceStable(instances, func(i, j int) bool {
		return instances[i].Position < instances[j].Position
	})

	graph := &WorkoutGraph{
		Workout:   w,
		Instances: instances,
		Sets:      make(map[uuid.UUID][]*models.ExerciseSet, len(instances)),
	}
	for _, inst := range instances {
		sets, err := s.ListSets(ctx, inst.ID)
		if err != nil {
			return nil, fmt.Errorf("loading sets for instance %s: %w", inst.ID, err)
		}
		sort.Slice(sets, func(i, j int) bool { return sets[i].SetNumber < sets[j].SetNumber })
		graph.Sets[inst.ID] = sets
	}
	return graph, nil
}
