package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/claude/ironcoach/internal/catalog"
	"github.com/claude/ironcoach/internal/repo"
	"github.com/claude/ironcoach/internal/session"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

func (s *Server) handleStartWorkout(w http.ResponseWriter, r *http.Request) {
	var req struct {
		MemberID  uuid.UUID `json:"memberId"`
		WorkoutID uuid.UUID `json:"workoutId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}

	eng, err := s.coord.StartWorkout(r.Context(), req.MemberID, req.WorkoutID)
	if err != nil {
		s.writeCommandError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, eng.Snapshot())
}

func (s *Server) handleLogSet(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Weight float64 `json:"weight"`
		Reps   int     `json:"reps"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	s.withEngine(w, r, func(eng *session.Engine) error {
		return eng.LogSet(r.Context(), req.Weight, req.Reps)
	})
}

func (s *Server) handleSkipSet(w http.ResponseWriter, r *http.Request) {
	s.withEngine(w, r, func(eng *session.Engine) error {
		return eng.SkipSet(r.Context())
	})
}

func (s *Server) handleSkipExercise(w http.ResponseWriter, r *http.Request) {
	s.withEngine(w, r, func(eng *session.Engine) error {
		return eng.SkipExercise(r.Context())
	})
}

func (s *Server) handleSubstitute(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ExerciseID string `json:"exerciseId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	s.withEngine(w, r, func(eng *session.Engine) error {
		return eng.SubstituteExercise(r.Context(), req.ExerciseID)
	})
}

func (s *Server) handleResetExercise(w http.ResponseWriter, r *http.Request) {
	var req struct {
		InstanceID uuid.UUID `json:"instanceId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	s.withEngine(w, r, func(eng *session.Engine) error {
		return eng.ResetExercise(r.Context(), req.InstanceID)
	})
}

func (s *Server) handleAdjustWeight(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Delta float64 `json:"delta"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	s.withEngine(w, r, func(eng *session.Engine) error {
		return eng.AdjustWeight(req.Delta)
	})
}

func (s *Server) handleAdjustReps(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Delta int `json:"delta"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	s.withEngine(w, r, func(eng *session.Engine) error {
		return eng.AdjustReps(req.Delta)
	})
}

func (s *Server) handleSkipRest(w http.ResponseWriter, r *http.Request) {
	s.withEngine(w, r, func(eng *session.Engine) error {
		return eng.SkipRest()
	})
}

func (s *Server) handleAdjustRest(w http.ResponseWriter, r *http.Request) {
	var req struct {
		DeltaSeconds int `json:"deltaSeconds"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	s.withEngine(w, r, func(eng *session.Engine) error {
		return eng.AdjustRest(time.Duration(req.DeltaSeconds) * time.Second)
	})
}

func (s *Server) handlePause(w http.ResponseWriter, r *http.Request) {
	memberID, ok := memberParam(w, r)
	if !ok {
		return
	}
	if err := s.coord.Pause(r.Context(), memberID); err != nil {
		s.writeCommandError(w, err)
		return
	}
	s.writeState(w, memberID)
}

func (s *Server) handleResume(w http.ResponseWriter, r *http.Request) {
	memberID, ok := memberParam(w, r)
	if !ok {
		return
	}
	if err := s.coord.Resume(r.Context(), memberID); err != nil {
		s.writeCommandError(w, err)
		return
	}
	s.writeState(w, memberID)
}

func (s *Server) handleCompleteEarly(w http.ResponseWriter, r *http.Request) {
	memberID, ok := memberParam(w, r)
	if !ok {
		return
	}
	if err := s.coord.CompleteWorkoutEarly(r.Context(), memberID); err != nil {
		s.writeCommandError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "finished"})
}

func (s *Server) handleSessionState(w http.ResponseWriter, r *http.Request) {
	memberID, ok := memberParam(w, r)
	if !ok {
		return
	}
	s.writeState(w, memberID)
}

func (s *Server) handleListWorkouts(w http.ResponseWriter, r *http.Request) {
	memberID, ok := memberParam(w, r)
	if !ok {
		return
	}
	workouts, err := s.store.ListWorkoutsByMember(r.Context(), memberID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, workouts)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	memberID, ok := memberParam(w, r)
	if !ok {
		return
	}
	entries, err := s.arch.History(memberID, 50)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func (s *Server) handleListExercises(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, catalog.Exercises())
}

func (s *Server) handleListProtocols(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, catalog.Protocols())
}

// withEngine resolves the member's active engine, runs the command, and
// responds with the refreshed snapshot.
func (s *Server) withEngine(w http.ResponseWriter, r *http.Request, fn func(*session.Engine) error) {
	memberID, ok := memberParam(w, r)
	if !ok {
		return
	}
	eng, err := s.coord.ActiveEngine(memberID)
	if err != nil {
		s.writeCommandError(w, err)
		return
	}
	if err := fn(eng); err != nil {
		s.writeCommandError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, eng.Snapshot())
}

func (s *Server) writeState(w http.ResponseWriter, memberID uuid.UUID) {
	eng, err := s.coord.ActiveEngine(memberID)
	if err != nil {
		s.writeCommandError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, eng.Snapshot())
}

func (s *Server) writeCommandError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, session.ErrSessionNotFound), errors.Is(err, repo.ErrNotFound),
		errors.Is(err, session.ErrInstanceNotFound):
		status = http.StatusNotFound
	case errors.Is(err, session.ErrWorkoutInProgress), errors.Is(err, session.ErrSessionEnded),
		errors.Is(err, session.ErrSubstitutionNotAllowed):
		status = http.StatusConflict
	case errors.Is(err, session.ErrInvalidSetValue):
		status = http.StatusBadRequest
	}
	if status == http.StatusInternalServerError {
		s.log.Error("command error", "error", err)
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func memberParam(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	memberID, err := uuid.Parse(chi.URLParam(r, "memberID"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid member ID"})
		return uuid.Nil, false
	}
	return memberID, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
