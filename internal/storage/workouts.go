package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/claude/ironcoach/internal/models"
	"github.com/claude/ironcoach/internal/repo"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// GetWorkout retrieves a workout by id.
func (db *DB) GetWorkout(ctx context.Context, id uuid.UUID) (*models.Workout, error) {
	row := db.Pool.QueryRow(ctx,
		`SELECT id, member_id, name, scheduled_date, exercise_ids, protocol_variant_ids,
		 superset_groups, status, completed_date
		 FROM workouts WHERE id = $1`,
		id)

	var w models.Workout
	var exerciseIDs, protocolIDs, groups []byte
	err := row.Scan(&w.ID, &w.MemberID, &w.Name, &w.ScheduledDate,
		&exerciseIDs, &protocolIDs, &groups, &w.Status, &w.CompletedDate)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, repo.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying workout: %w", err)
	}

	if err := json.Unmarshal(exerciseIDs, &w.ExerciseIDs); err != nil {
		return nil, fmt.Errorf("decoding exercise ids: %w", err)
	}
	if err := json.Unmarshal(protocolIDs, &w.ProtocolVariantIDs); err != nil {
		return nil, fmt.Errorf("decoding protocol ids: %w", err)
	}
	if len(groups) > 0 {
		if err := json.Unmarshal(groups, &w.SupersetGroups); err != nil {
			return nil, fmt.Errorf("decoding superset groups: %w", err)
		}
	}
	return &w, nil
}

// ListWorkoutsByMember returns a member's workouts ordered by scheduled date.
func (db *DB) ListWorkoutsByMember(ctx context.Context, memberID uuid.UUID) ([]*models.Workout, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT id, member_id, name, scheduled_date, exercise_ids, protocol_variant_ids,
		 superset_groups, status, completed_date
		 FROM workouts WHERE member_id = $1 ORDER BY scheduled_date`,
		memberID)
	if err != nil {
		return nil, fmt.Errorf("querying workouts: %w", err)
	}
	defer rows.Close()

	var out []*models.Workout
	for rows.Next() {
		var w models.Workout
		var exerciseIDs, protocolIDs, groups []byte
		if err := rows.Scan(&w.ID, &w.MemberID, &w.Name, &w.ScheduledDate,
			&exerciseIDs, &protocolIDs, &groups, &w.Status, &w.CompletedDate); err != nil {
			return nil, fmt.Errorf("scanning workout: %w", err)
		}
		if err := json.Unmarshal(exerciseIDs, &w.ExerciseIDs); err != nil {
			return nil, fmt.Errorf("decoding exercise ids: %w", err)
		}
		if err := json.Unmarshal(protocolIDs, &w.ProtocolVariantIDs); err != nil {
			return nil, fmt.Errorf("decoding protocol ids: %w", err)
		}
		if len(groups) > 0 {
			if err := json.Unmarshal(groups, &w.SupersetGroups); err != nil {
				return nil, fmt.Errorf("decoding superset groups: %w", err)
			}
		}
		out = append(out, &w)
	}
	return out, rows.Err()
}

// SaveWorkout upserts a workout row, idempotent by id.
func (db *DB) SaveWorkout(ctx context.Context, w *models.Workout) error {
	exerciseIDs, err := json.Marshal(w.ExerciseIDs)
	if err != nil {
		return fmt.Errorf("encoding exercise ids: %w", err)
	}
	protocolIDs, err := json.Marshal(w.ProtocolVariantIDs)
	if err != nil {
		return fmt.Errorf("encoding protocol ids: %w", err)
	}
	groups, err := json.Marshal(w.SupersetGroups)
	if err != nil {
		return fmt.Errorf("encoding superset groups: %w", err)
	}

	_, err = db.Pool.Exec(ctx,
		`INSERT INTO workouts (id, member_id, name, scheduled_date, exercise_ids,
		 protocol_variant_ids, superset_groups, status, completed_date)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		 ON CONFLICT (id) DO UPDATE SET
		   name = EXCLUDED.name,
		   scheduled_date = EXCLUDED.scheduled_date,
		   exercise_ids = EXCLUDED.exercise_ids,
		   protocol_variant_ids = EXCLUDED.protocol_variant_ids,
		   superset_groups = EXCLUDED.superset_groups,
		   status = EXCLUDED.status,
		   completed_date = EXCLUDED.completed_date`,
		w.ID, w.MemberID, w.Name, w.ScheduledDate, exerciseIDs, protocolIDs,
		groups, w.Status, w.CompletedDate)
	if err != nil {
		return fmt.Errorf("upserting workout: %w", err)
	}
	return nil
}
