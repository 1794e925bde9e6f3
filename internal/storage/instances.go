package storage

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/claude/ironcoach/internal/models"
	"github.com/google/uuid"
)

// ListInstances retrieves a workout's exercise instances.
func (db *DB) ListInstances(ctx context.Context, workoutID uuid.UUID) ([]*models.ExerciseInstance, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT id, exercise_id, workout_id, position, protocol_variant_id, set_ids, status, superset_label
		 FROM exercise_instances WHERE workout_id = $1 ORDER BY position`,
		workoutID)
	if err != nil {
		return nil, fmt.Errorf("querying instances: %w", err)
	}
	defer rows.Close()

	var out []*models.ExerciseInstance
	for rows.Next() {
		var inst models.ExerciseInstance
		var setIDs []byte
		if err := rows.Scan(&inst.ID, &inst.ExerciseID, &inst.WorkoutID, &inst.Position,
			&inst.ProtocolVariantID, &setIDs, &inst.Status, &inst.SupersetLabel); err != nil {
			return nil, fmt.Errorf("scanning instance: %w", err)
		}
		if err := json.Unmarshal(setIDs, &inst.SetIDs); err != nil {
			return nil, fmt.Errorf("decoding set ids: %w", err)
		}
		out = append(out, &inst)
	}
	return out, rows.Err()
}

// SaveInstance upserts an exercise instance row, idempotent by id.
func (db *DB) SaveInstance(ctx context.Context, inst *models.ExerciseInstance) error {
	setIDs, err := json.Marshal(inst.SetIDs)
	if err != nil {
		return fmt.Errorf("encoding set ids: %w", err)
	}

	_, err = db.Pool.Exec(ctx,
		`INSERT INTO exercise_instances (id, exercise_id, workout_id, position, protocol_variant_id, set_ids, status, superset_label)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		 ON CONFLICT (id) DO UPDATE SET
		   exercise_id = EXCLUDED.exercise_id,
		   position = EXCLUDED.position,
		   protocol_variant_id = EXCLUDED.protocol_variant_id,
		   set_ids = EXCLUDED.set_ids,
		   status = EXCLUDED.status,
		   superset_label = EXCLUDED.superset_label`,
		inst.ID, inst.ExerciseID, inst.WorkoutID, inst.Position, inst.ProtocolVariantID,
		setIDs, inst.Status, inst.SupersetLabel)
	if err != nil {
		return fmt.Errorf("upserting instance: %w", err)
	}
	return nil
}
