package mcp

import (
	"context"
	"errors"
	"time"

	"github.com/claude/ironcoach/internal/catalog"
	"github.com/claude/ironcoach/internal/session"
	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
)

var errNoMember = errors.New("no member in scope")

// memberFrom resolves the member for a tool call: an explicit member_id
// argument wins, otherwise the transport-injected context member is used.
func memberFrom(ctx context.Context, req mcp.CallToolRequest) (uuid.UUID, error) {
	if s := req.GetString("member_id", ""); s != "" {
		return uuid.Parse(s)
	}
	if id, ok := MemberIDFromContext(ctx); ok {
		return id, nil
	}
	return uuid.Nil, errNoMember
}

// --- Tool definitions ---

var toolStartWorkout = mcp.NewTool("start_workout",
	mcp.WithDescription("Start a guided session for a scheduled workout. Fails if the member already has an active session."),
	mcp.WithString("member_id", mcp.Description("Member UUID. Defaults to the connected member.")),
	mcp.WithString("workout_id", mcp.Required(), mcp.Description("UUID of the scheduled workout to run")),
)

var toolGetSessionState = mcp.NewTool("get_session_state",
	mcp.WithDescription("Get the live state of the member's active session: current exercise and set, display weight/reps, rest timer, superset position, and progress counts."),
	mcp.WithString("member_id", mcp.Description("Member UUID. Defaults to the connected member.")),
)

var toolLogSet = mcp.NewTool("log_set",
	mcp.WithDescription("Record the current set as completed with the given actual weight and reps, then advance to the next set. Starts the rest timer unless this was the last set."),
	mcp.WithString("member_id", mcp.Description("Member UUID. Defaults to the connected member.")),
	mcp.WithNumber("weight", mcp.Required(), mcp.Description("Actual weight used (kg). 0 for bodyweight.")),
	mcp.WithNumber("reps", mcp.Required(), mcp.Description("Actual reps performed. Must be at least 1."), mcp.Min(1)),
)

var toolSkipSet = mcp.NewTool("skip_set",
	mcp.WithDescription("Mark the current set as skipped and advance. No rest timer starts."),
	mcp.WithString("member_id", mcp.Description("Member UUID. Defaults to the connected member.")),
)

var toolSkipExercise = mcp.NewTool("skip_exercise",
	mcp.WithDescription("Skip every remaining set of the current exercise and move to the next one."),
	mcp.WithString("member_id", mcp.Description("Member UUID. Defaults to the connected member.")),
)

var toolSubstituteExercise = mcp.NewTool("substitute_exercise",
	mcp.WithDescription("Swap the current exercise for another before any of its sets are logged. Set targets are kept."),
	mcp.WithString("member_id", mcp.Description("Member UUID. Defaults to the connected member.")),
	mcp.WithString("exercise_id", mcp.Required(), mcp.Description("Catalog ID of the replacement exercise (e.g. dumbbell_bench_press)")),
)

var toolResetExercise = mcp.NewTool("reset_exercise",
	mcp.WithDescription("Clear every set of an exercise back to scheduled so it can be redone."),
	mcp.WithString("member_id", mcp.Description("Member UUID. Defaults to the connected member.")),
	mcp.WithString("instance_id", mcp.Required(), mcp.Description("UUID of the exercise instance to reset")),
)

var toolAdjustWeight = mcp.NewTool("adjust_weight",
	mcp.WithDescription("Nudge the weight shown for the current set without logging anything. The adjusted value is what log_set defaults reflect."),
	mcp.WithString("member_id", mcp.Description("Member UUID. Defaults to the connected member.")),
	mcp.WithNumber("delta", mcp.Required(), mcp.Description("Weight change (kg), positive or negative")),
)

var toolAdjustReps = mcp.NewTool("adjust_reps",
	mcp.WithDescription("Nudge the rep count shown for the current set without logging anything."),
	mcp.WithString("member_id", mcp.Description("Member UUID. Defaults to the connected member.")),
	mcp.WithNumber("delta", mcp.Required(), mcp.Description("Rep change, positive or negative")),
)

var toolSkipRest = mcp.NewTool("skip_rest",
	mcp.WithDescription("Cancel the running rest timer and move straight to the next set."),
	mcp.WithString("member_id", mcp.Description("Member UUID. Defaults to the connected member.")),
)

var toolAdjustRest = mcp.NewTool("adjust_rest",
	mcp.WithDescription("Add or remove time on the running rest timer."),
	mcp.WithString("member_id", mcp.Description("Member UUID. Defaults to the connected member.")),
	mcp.WithNumber("delta_seconds", mcp.Required(), mcp.Description("Seconds to add (positive) or remove (negative)")),
)

var toolPauseSession = mcp.NewTool("pause_session",
	mcp.WithDescription("Pause the active session. Paused time is excluded from the session's active duration."),
	mcp.WithString("member_id", mcp.Description("Member UUID. Defaults to the connected member.")),
)

var toolResumeSession = mcp.NewTool("resume_session",
	mcp.WithDescription("Resume a paused session."),
	mcp.WithString("member_id", mcp.Description("Member UUID. Defaults to the connected member.")),
)

var toolCompleteWorkoutEarly = mcp.NewTool("complete_workout_early",
	mcp.WithDescription("End the session now. Remaining sets are marked skipped; the workout counts as completed if at least one set was logged."),
	mcp.WithString("member_id", mcp.Description("Member UUID. Defaults to the connected member.")),
)

var toolListWorkouts = mcp.NewTool("list_workouts",
	mcp.WithDescription("List the member's scheduled and past workouts."),
	mcp.WithString("member_id", mcp.Description("Member UUID. Defaults to the connected member.")),
)

var toolGetHistory = mcp.NewTool("get_history",
	mcp.WithDescription("Recent finished sessions for the member: completion status, set counts, and active time."),
	mcp.WithString("member_id", mcp.Description("Member UUID. Defaults to the connected member.")),
	mcp.WithNumber("limit", mcp.Description("Maximum entries to return. Defaults to 20."), mcp.Min(1)),
)

var toolListExercises = mcp.NewTool("list_exercises",
	mcp.WithDescription("List the exercise catalog."),
)

var toolListProtocols = mcp.NewTool("list_protocols",
	mcp.WithDescription("List the available set/rep protocols with rep schemes and rest periods."),
)

// --- Tool handlers ---

func (h *handlers) startWorkout(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	memberID, err := memberFrom(ctx, req)
	if err != nil {
		return mcp.NewToolResultError("member_id is required"), nil
	}
	workoutID, err := uuid.Parse(req.GetString("workout_id", ""))
	if err != nil {
		return mcp.NewToolResultError("workout_id must be a valid UUID"), nil
	}

	eng, err := h.coord.StartWorkout(ctx, memberID, workoutID)
	if err != nil {
		h.log.Error("mcp start_workout", "error", err)
		return mcp.NewToolResultError("starting workout: " + err.Error()), nil
	}
	return snapshotResult(eng.Snapshot())
}

func (h *handlers) getSessionState(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	memberID, err := memberFrom(ctx, req)
	if err != nil {
		return mcp.NewToolResultError("member_id is required"), nil
	}
	eng, err := h.coord.ActiveEngine(memberID)
	if err != nil {
		return mcp.NewToolResultError("no active session for member"), nil
	}
	return snapshotResult(eng.Snapshot())
}

func (h *handlers) logSet(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	weight, err := req.RequireFloat("weight")
	if err != nil {
		return mcp.NewToolResultError("weight parameter is required"), nil
	}
	reps, err := req.RequireInt("reps")
	if err != nil {
		return mcp.NewToolResultError("reps parameter is required"), nil
	}
	return h.withEngine(ctx, req, func(eng *session.Engine) error {
		return eng.LogSet(ctx, weight, reps)
	})
}

func (h *handlers) skipSet(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return h.withEngine(ctx, req, func(eng *session.Engine) error {
		return eng.SkipSet(ctx)
	})
}

func (h *handlers) skipExercise(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return h.withEngine(ctx, req, func(eng *session.Engine) error {
		return eng.SkipExercise(ctx)
	})
}

func (h *handlers) substituteExercise(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	exerciseID, err := req.RequireString("exercise_id")
	if err != nil {
		return mcp.NewToolResultError("exercise_id parameter is required"), nil
	}
	if _, ok := catalog.LookupExercise(exerciseID); !ok {
		return mcp.NewToolResultError("unknown exercise: " + exerciseID), nil
	}
	return h.withEngine(ctx, req, func(eng *session.Engine) error {
		return eng.SubstituteExercise(ctx, exerciseID)
	})
}

func (h *handlers) resetExercise(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	instanceID, err := uuid.Parse(req.GetString("instance_id", ""))
	if err != nil {
		return mcp.NewToolResultError("instance_id must be a valid UUID"), nil
	}
	return h.withEngine(ctx, req, func(eng *session.Engine) error {
		return eng.ResetExercise(ctx, instanceID)
	})
}

func (h *handlers) adjustWeight(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	delta, err := req.RequireFloat("delta")
	if err != nil {
		return mcp.NewToolResultError("delta parameter is required"), nil
	}
	return h.withEngine(ctx, req, func(eng *session.Engine) error {
		return eng.AdjustWeight(delta)
	})
}

func (h *handlers) adjustReps(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	delta, err := req.RequireInt("delta")
	if err != nil {
		return mcp.NewToolResultError("delta parameter is required"), nil
	}
	return h.withEngine(ctx, req, func(eng *session.Engine) error {
		return eng.AdjustReps(delta)
	})
}

func (h *handlers) skipRest(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return h.withEngine(ctx, req, func(eng *session.Engine) error {
		return eng.SkipRest()
	})
}

func (h *handlers) adjustRest(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	deltaSec, err := req.RequireInt("delta_seconds")
	if err != nil {
		return mcp.NewToolResultError("delta_seconds parameter is required"), nil
	}
	return h.withEngine(ctx, req, func(eng *session.Engine) error {
		return eng.AdjustRest(time.Duration(deltaSec) * time.Second)
	})
}

func (h *handlers) pauseSession(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return h.withEngine(ctx, req, func(eng *session.Engine) error {
		return eng.Pause(ctx)
	})
}

func (h *handlers) resumeSession(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return h.withEngine(ctx, req, func(eng *session.Engine) error {
		return eng.Resume(ctx)
	})
}

func (h *handlers) completeWorkoutEarly(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return h.withEngine(ctx, req, func(eng *session.Engine) error {
		return eng.CompleteEarly(ctx)
	})
}

func (h *handlers) listWorkouts(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	memberID, err := memberFrom(ctx, req)
	if err != nil {
		return mcp.NewToolResultError("member_id is required"), nil
	}
	workouts, err := h.store.ListWorkoutsByMember(ctx, memberID)
	if err != nil {
		h.log.Error("mcp list_workouts", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	result, err := mcp.NewToolResultJSON(workouts)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getHistory(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	memberID, err := memberFrom(ctx, req)
	if err != nil {
		return mcp.NewToolResultError("member_id is required"), nil
	}
	if h.arch == nil {
		return mcp.NewToolResultError("no session archive configured"), nil
	}
	entries, err := h.arch.History(memberID, req.GetInt("limit", 20))
	if err != nil {
		h.log.Error("mcp get_history", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	result, err := mcp.NewToolResultJSON(entries)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) listExercises(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	result, err := mcp.NewToolResultJSON(catalog.Exercises())
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) listProtocols(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	result, err := mcp.NewToolResultJSON(catalog.Protocols())
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

// withEngine resolves the member's active engine, runs the command, and
// returns the refreshed snapshot.
func (h *handlers) withEngine(ctx context.Context, req mcp.CallToolRequest, fn func(*session.Engine) error) (*mcp.CallToolResult, error) {
	memberID, err := memberFrom(ctx, req)
	if err != nil {
		return mcp.NewToolResultError("member_id is required"), nil
	}
	eng, err := h.coord.ActiveEngine(memberID)
	if err != nil {
		return mcp.NewToolResultError("no active session for member"), nil
	}
	if err := fn(eng); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return snapshotResult(eng.Snapshot())
}

func snapshotResult(snap session.Snapshot) (*mcp.CallToolResult, error) {
	result, err := mcp.NewToolResultJSON(snap)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}
