package storage

import (
	"context"
	"fmt"

	"github.com/claude/ironcoach/internal/models"
	"github.com/google/uuid"
)

// ListSets retrieves an instance's sets ordered by set number.
func (db *DB) ListSets(ctx context.Context, instanceID uuid.UUID) ([]*models.ExerciseSet, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT id, exercise_instance_id, set_number,
		 target_weight, target_reps, target_rpe, target_duration, target_distance,
		 actual_weight, actual_reps, actual_duration, actual_distance,
		 completion, start_time, end_time, notes
		 FROM exercise_sets
		 WHERE exercise_instance_id = $1
		 ORDER BY set_number ASC`,
		instanceID)
	if err != nil {
		return nil, fmt.Errorf("querying sets: %w", err)
	}
	defer rows.Close()

	var out []*models.ExerciseSet
	for rows.Next() {
		var s models.ExerciseSet
		if err := rows.Scan(&s.ID, &s.ExerciseInstanceID, &s.SetNumber,
			&s.TargetWeight, &s.TargetReps, &s.TargetRPE, &s.TargetDuration, &s.TargetDistance,
			&s.ActualWeight, &s.ActualReps, &s.ActualDuration, &s.ActualDistance,
			&s.Completion, &s.StartTime, &s.EndTime, &s.Notes); err != nil {
			return nil, fmt.Errorf("scanning set: %w", err)
		}
		out = append(out, &s)
	}
	return out, rows.Err()
}

// SaveSet upserts a set row, idempotent by id.
func (db *DB) SaveSet(ctx context.Context, s *models.ExerciseSet) error {
	_, err := db.Pool.Exec(ctx,
		`INSERT INTO exercise_sets (id, exercise_instance_id, set_number,
		 target_weight, target_reps, target_rpe, target_duration, target_distance,
		 actual_weight, actual_reps, actual_duration, actual_distance,
		 completion, start_time, end_time, notes)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16)
		 ON CONFLICT (id) DO UPDATE SET
		   target_weight = EXCLUDED.target_weight,
		   target_reps = EXCLUDED.target_reps,
		   target_rpe = EXCLUDED.target_rpe,
		   target_duration = EXCLUDED.target_duration,
		   target_distance = EXCLUDED.target_distance,
		   actual_weight = EXCLUDED.actual_weight,
		   actual_reps = EXCLUDED.actual_reps,
		   actual_duration = EXCLUDED.actual_duration,
		   actual_distance = EXCLUDED.actual_distance,
		   completion = EXCLUDED.completion,
		   start_time = EXCLUDED.start_time,
		   end_time = EXCLUDED.end_time,
		   notes = EXCLUDED.notes`,
		s.ID, s.ExerciseInstanceID, s.SetNumber,
		s.TargetWeight, s.TargetReps, s.TargetRPE, s.TargetDuration, s.TargetDistance,
		s.ActualWeight, s.ActualReps, s.ActualDuration, s.ActualDistance,
		s.Completion, s.StartTime, s.EndTime, s.Notes)
	if err != nil {
		return fmt.Errorf("upserting set: %w", err)
	}
	return nil
}
