// Package mcp exposes the session coordinator to AI coaching assistants over
// the Model Context Protocol. Every tool that touches a session takes a
// member_id; a transport layer may also inject a default member into the
// context.
package mcp

import (
	"context"
	"log/slog"

	"github.com/claude/ironcoach/internal/archive"
	"github.com/claude/ironcoach/internal/repo"
	"github.com/claude/ironcoach/internal/session"
	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

type contextKey int

const memberIDKey contextKey = iota

// MemberIDFromContext extracts the member ID injected by the transport layer.
func MemberIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(memberIDKey).(uuid.UUID)
	return id, ok
}

// WithMemberID returns a context carrying the given member ID.
func WithMemberID(ctx context.Context, memberID uuid.UUID) context.Context {
	return context.WithValue(ctx, memberIDKey, memberID)
}

// New creates an MCP server with all tools and resources registered.
func New(coord *session.Coordinator, store repo.Store, arch *archive.Archive, version string, log *slog.Logger) *server.MCPServer {
	s := server.NewMCPServer("IronCoach", version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithInstructions("IronCoach guided workout server. Start sessions, log sets, and steer the active workout for a member. All commands act on the member's single active session."),
	)

	h := &handlers{coord: coord, store: store, arch: arch, log: log}

	// Tools
	s.AddTools(
		server.ServerTool{Tool: toolStartWorkout, Handler: h.startWorkout},
		server.ServerTool{Tool: toolGetSessionState, Handler: h.getSessionState},
		server.ServerTool{Tool: toolLogSet, Handler: h.logSet},
		server.ServerTool{Tool: toolSkipSet, Handler: h.skipSet},
		server.ServerTool{Tool: toolSkipExercise, Handler: h.skipExercise},
		server.ServerTool{Tool: toolSubstituteExercise, Handler: h.substituteExercise},
		server.ServerTool{Tool: toolResetExercise, Handler: h.resetExercise},
		server.ServerTool{Tool: toolAdjustWeight, Handler: h.adjustWeight},
		server.ServerTool{Tool: toolAdjustReps, Handler: h.adjustReps},
		server.ServerTool{Tool: toolSkipRest, Handler: h.skipRest},
		server.ServerTool{Tool: toolAdjustRest, Handler: h.adjustRest},
		server.ServerTool{Tool: toolPauseSession, Handler: h.pauseSession},
		server.ServerTool{Tool: toolResumeSession, Handler: h.resumeSession},
		server.ServerTool{Tool: toolCompleteWorkoutEarly, Handler: h.completeWorkoutEarly},
		server.ServerTool{Tool: toolListWorkouts, Handler: h.listWorkouts},
		server.ServerTool{Tool: toolGetHistory, Handler: h.getHistory},
		server.ServerTool{Tool: toolListExercises, Handler: h.listExercises},
		server.ServerTool{Tool: toolListProtocols, Handler: h.listProtocols},
	)

	// Resources
	s.AddResources(
		server.ServerResource{Resource: resActiveSession, Handler: h.activeSession},
		server.ServerResource{Resource: resExerciseCatalog, Handler: h.exerciseCatalog},
	)

	return s
}

// handlers holds dependencies for MCP tool/resource handlers.
type handlers struct {
	coord *session.Coordinator
	store repo.Store
	arch  *archive.Archive
	log   *slog.Logger
}

// --- Resource definitions ---

var resActiveSession = mcp.NewResource(
	"ironcoach://active_session",
	"Active Session",
	mcp.WithResourceDescription("Live state of the context member's active workout session: current exercise, set position, display values, and rest timer"),
	mcp.WithMIMEType("application/json"),
)

var resExerciseCatalog = mcp.NewResource(
	"ironcoach://exercise_catalog",
	"Exercise Catalog",
	mcp.WithResourceDescription("All known exercises with muscle groups, plus the available set/rep protocols"),
	mcp.WithMIMEType("application/json"),
)
