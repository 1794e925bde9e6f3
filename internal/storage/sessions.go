package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/claude/ironcoach/internal/models"
	"github.com/claude/ironcoach/internal/repo"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// GetSession retrieves a session by id.
func (db *DB) GetSession(ctx context.Context, id uuid.UUID) (*models.Session, error) {
	row := db.Pool.QueryRow(ctx,
		`SELECT id, workout_id, member_id, start_time, end_time,
		 current_exercise_index, current_set_index, status, paused_at,
		 total_pause_sec, superset_position, superset_cycle_set
		 FROM sessions WHERE id = $1`,
		id)

	var s models.Session
	var pauseSec int64
	err := row.Scan(&s.ID, &s.WorkoutID, &s.MemberID, &s.StartTime, &s.EndTime,
		&s.CurrentExerciseIndex, &s.CurrentSetIndex, &s.Status, &s.PausedAt,
		&pauseSec, &s.CurrentSupersetPosition, &s.CurrentSupersetCycleSet)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, repo.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying session: %w", err)
	}
	s.TotalPauseTime = time.Duration(pauseSec) * time.Second
	return &s, nil
}

// SaveSession upserts a session row, idempotent by id.
func (db *DB) SaveSession(ctx context.Context, s *models.Session) error {
	_, err := db.Pool.Exec(ctx,
		`INSERT INTO sessions (id, workout_id, member_id, start_time, end_time,
		 current_exercise_index, current_set_index, status, paused_at,
		 total_pause_sec, superset_position, superset_cycle_set)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
		 ON CONFLICT (id) DO UPDATE SET
		   end_time = EXCLUDED.end_time,
		   current_exercise_index = EXCLUDED.current_exercise_index,
		   current_set_index = EXCLUDED.current_set_index,
		   status = EXCLUDED.status,
		   paused_at = EXCLUDED.paused_at,
		   total_pause_sec = EXCLUDED.total_pause_sec,
		   superset_position = EXCLUDED.superset_position,
		   superset_cycle_set = EXCLUDED.superset_cycle_set`,
		s.ID, s.WorkoutID, s.MemberID, s.StartTime, s.EndTime,
		s.CurrentExerciseIndex, s.CurrentSetIndex, s.Status, s.PausedAt,
		int64(s.TotalPauseTime.Seconds()), s.CurrentSupersetPosition, s.CurrentSupersetCycleSet)
	if err != nil {
		return fmt.Errorf("upserting session: %w", err)
	}
	return nil
}
