package catalog

import "github.com/claude/ironcoach/internal/models"

var exercises = map[string]models.Exercise{
	"barbell_back_squat": {
		ID: "barbell_back_squat", Name: "Barbell Back Squat",
		Type: models.ExerciseStrength, MuscleGroups: []string{"quads", "glutes", "core"},
	},
	"conventional_deadlift": {
		ID: "conventional_deadlift", Name: "Conventional Deadlift",
		Type: models.ExerciseStrength, MuscleGroups: []string{"hamstrings", "glutes", "back"},
	},
	"barbell_bench_press": {
		ID: "barbell_bench_press", Name: "Barbell Bench Press",
		Type: models.ExerciseStrength, MuscleGroups: []string{"chest", "triceps", "shoulders"},
	},
	"overhead_press": {
		ID: "overhead_press", Name: "Overhead Press",
		Type: models.ExerciseStrength, MuscleGroups: []string{"shoulders", "triceps"},
	},
	"pull_up": {
		ID: "pull_up", Name: "Pull Up",
		Type: models.ExerciseStrength, MuscleGroups: []string{"lats", "biceps"},
	},
	"pendlay_row": {
		ID: "pendlay_row", Name: "Pendlay Row",
		Type: models.ExerciseStrength, MuscleGroups: []string{"back", "biceps"},
	},
	"barbell_row": {
		ID: "barbell_row", Name: "Barbell Row",
		Type: models.ExerciseStrength, MuscleGroups: []string{"back", "biceps"},
	},
	"lat_pulldown": {
		ID: "lat_pulldown", Name: "Lat Pulldown",
		Type: models.ExerciseStrength, MuscleGroups: []string{"lats", "biceps"},
	},
	"dumbbell_bench_press": {
		ID: "dumbbell_bench_press", Name: "Dumbbell Bench Press",
		Type: models.ExerciseStrength, MuscleGroups: []string{"chest", "triceps"},
	},
	"dumbbell_lateral_raise": {
		ID: "dumbbell_lateral_raise", Name: "Dumbbell Lateral Raise",
		Type: models.ExerciseStrength, MuscleGroups: []string{"shoulders"},
	},
	"tricep_extension": {
		ID: "tricep_extension", Name: "Tricep Extension",
		Type: models.ExerciseStrength, MuscleGroups: []string{"triceps"},
	},
	"barbell_curl": {
		ID: "barbell_curl", Name: "Barbell Curl",
		Type: models.ExerciseStrength, MuscleGroups: []string{"biceps"},
	},
	"treadmill_run": {
		ID: "treadmill_run", Name: "Treadmill Run",
		Type: models.ExerciseCardio, MuscleGroups: []string{"legs"},
	},
	"rowing_erg": {
		ID: "rowing_erg", Name: "Rowing Erg",
		Type: models.ExerciseCardio, MuscleGroups: []string{"back", "legs"},
	},
}

// LookupExercise resolves an exercise by id.
func LookupExercise(id string) (models.Exercise, bool) {
	e, ok := exercises[id]
	return e, ok
}

// Exercises returns every known exercise.
func Exercises() []models.Exercise {
	out := make([]models.Exercise, 0, len(exercises))
	for _, e := range exercises {
		out = append(out, e)
	}
	return out
}
