// Package archive keeps a local SQLite log of finished sessions, one summary
// row per attempt. It is append-only history for the member's "past workouts"
// view and survives independently of the remote store.
package archive

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// Archive wraps the sessions SQLite database.
type Archive struct {
	db *sql.DB
}

// Entry is one finished session's summary.
type Entry struct {
	SessionID     uuid.UUID     `json:"sessionId"`
	WorkoutID     uuid.UUID     `json:"workoutId"`
	MemberID      uuid.UUID     `json:"memberId"`
	WorkoutStatus string        `json:"workoutStatus"`
	CompletedSets int           `json:"completedSets"`
	SkippedSets   int           `json:"skippedSets"`
	StartTime     time.Time     `json:"startTime"`
	EndTime       time.Time     `json:"endTime"`
	ActiveTime    time.Duration `json:"activeTime"`
}

// Open opens (or creates) the archive database at dir/sessions.db.
func Open(dir string) (*Archive, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating archive dir %s: %w", dir, err)
	}

	dbPath := filepath.Join(dir, "sessions.db")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening archive db: %w", err)
	}

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS finished_sessions (
		session_id     TEXT PRIMARY KEY,
		workout_id     TEXT NOT NULL,
		member_id      TEXT NOT NULL,
		workout_status TEXT NOT NULL,
		completed_sets INTEGER NOT NULL,
		skipped_sets   INTEGER NOT NULL,
		start_time     TIMESTAMP NOT NULL,
		end_time       TIMESTAMP NOT NULL,
		active_sec     INTEGER NOT NULL
	)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating archive table: %w", err)
	}

	return &Archive{db: db}, nil
}

// Record stores one finished session. Re-recording the same session id
// replaces the row, so retries are safe.
func (a *Archive) Record(e Entry) error {
	_, err := a.db.Exec(
		`INSERT OR REPLACE INTO finished_sessions
		 (session_id, workout_id, member_id, workout_status, completed_sets, skipped_sets, start_time, end_time, active_sec)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.SessionID.String(), e.WorkoutID.String(), e.MemberID.String(),
		e.WorkoutStatus, e.CompletedSets, e.SkippedSets,
		e.StartTime, e.EndTime, int64(e.ActiveTime.Seconds()),
	)
	if err != nil {
		return fmt.Errorf("recording session %s: %w", e.SessionID, err)
	}
	return nil
}

// History returns the member's finished sessions, most recent first.
func (a *Archive) History(memberID uuid.UUID, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := a.db.Query(
		`SELECT session_id, workout_id, member_id, workout_status, completed_sets, skipped_sets, start_time, end_time, active_sec
		 FROM finished_sessions
		 WHERE member_id = ?
		 ORDER BY end_time DESC
		 LIMIT ?`,
		memberID.String(), limit,
	)
	if err != nil {
		return nil, fmt.Errorf("querying history: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		var sessionID, workoutID, member string
		var activeSec int64
		if err := rows.Scan(&sessionID, &workoutID, &member, &e.WorkoutStatus,
			&e.CompletedSets, &e.SkippedSets, &e.StartTime, &e.EndTime, &activeSec); err != nil {
			return nil, fmt.Errorf("scanning history row: %w", err)
		}
		if e.SessionID, err = uuid.Parse(sessionID); err != nil {
			return nil, fmt.Errorf("parsing session id: %w", err)
		}
		if e.WorkoutID, err = uuid.Parse(workoutID); err != nil {
			return nil, fmt.Errorf("parsing workout id: %w", err)
		}
		if e.MemberID, err = uuid.Parse(member); err != nil {
			return nil, fmt.Errorf("parsing member id: %w", err)
		}
		e.ActiveTime = time.Duration(activeSec) * time.Second
		out = append(out, e)
	}
	return out, rows.Err()
}

// Close closes the archive database.
func (a *Archive) Close() error {
	return a.db.Close()
}
