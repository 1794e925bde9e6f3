package session

import "errors"

var (
	// ErrSessionNotFound is returned when no session exists for the member.
	ErrSessionNotFound = errors.New("session not found")

	// ErrWorkoutInProgress is returned when a member with an active session
	// tries to start another workout.
	ErrWorkoutInProgress = errors.New("workout already in progress")

	// ErrInvalidSetValue is returned by LogSet for reps <= 0. State is
	// left untouched.
	ErrInvalidSetValue = errors.New("invalid set value")

	// ErrSubstitutionNotAllowed is returned when substituting an exercise
	// after one of its sets has been completed.
	ErrSubstitutionNotAllowed = errors.New("substitution not allowed")

	// ErrSessionEnded is returned by commands issued after the session
	// reached a terminal state.
	ErrSessionEnded = errors.New("session already ended")

	// ErrInstanceNotFound is returned when an instance id does not belong
	// to the session's workout.
	ErrInstanceNotFound = errors.New("exercise instance not found")
)
