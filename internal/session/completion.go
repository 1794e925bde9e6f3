package session

import (
	"time"

	"github.com/claude/ironcoach/internal/models"
	"github.com/google/uuid"
)

// FinalizeWorkout closes out a workout when its session ends, whether the
// session ran out of sets naturally or was ended early. Every still-scheduled
// set is marked skipped; already-terminal sets are left alone. The workout is
// classified completed when at least one set anywhere was performed, skipped
// otherwise. The same rule applies to each instance.
//
// Returns the sets whose completion changed, so the caller can persist them.
func FinalizeWorkout(w *models.Workout, instances []*models.ExerciseInstance, sets map[uuid.UUID][]*models.ExerciseSet, now time.Time) []*models.ExerciseSet {
	var changed []*models.ExerciseSet
	anyCompleted := false

	for _, inst := range instances {
		instCompleted := false
		for _, set := range sets[inst.ID] {
			switch set.Completion {
			case models.SetScheduled:
				set.Completion = models.SetSkipped
				changed = append(changed, set)
			case models.SetCompleted:
				instCompleted = true
			}
		}
		if instCompleted {
			inst.Status = models.WorkoutCompleted
			anyCompleted = true
		} else {
			inst.Status = models.WorkoutSkipped
		}
	}

	if anyCompleted {
		w.Status = models.WorkoutCompleted
		t := now
		w.CompletedDate = &t
	} else {
		w.Status = models.WorkoutSkipped
		w.CompletedDate = nil
	}
	return changed
}
