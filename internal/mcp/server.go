package mcp

import (
	"context"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/meltforce/periodize/internal/schedule"
	"github.com/meltforce/periodize/internal/session"
	"github.com/meltforce/periodize/internal/storage"
)

type contextKey int

const userIDKey contextKey = iota

// UserIDFromContext extracts the user ID injected by the transport layer.
func UserIDFromContext(ctx context.Context) int {
	if id, ok := ctx.Value(userIDKey).(int); ok {
		return id
	}
	return 1
}

// WithUserID returns a context with the given user ID.
func WithUserID(ctx context.Context, userID int) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// New creates an MCP server with all tools and resources registered.
func New(db *storage.DB, scheduleSvc *schedule.Service, sessionSvc *session.Service, version string, log *slog.Logger) *server.MCPServer {
	s := server.NewMCPServer("Periodize", version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithInstructions("Periodize training program server. Query today's workout, weekly schedules, phase overviews, session history, and scaled prescriptions. All data is scoped to the authenticated athlete."),
	)

	h := &handlers{db: db, schedule: scheduleSvc, sessions: sessionSvc, log: log}

	// Tools
	s.AddTools(
		server.ServerTool{Tool: toolGetTodayWorkout, Handler: h.getTodayWorkout},
		server.ServerTool{Tool: toolGetWeekSchedule, Handler: h.getWeekSchedule},
		server.ServerTool{Tool: toolGetPhaseOverview, Handler: h.getPhaseOverview},
		server.ServerTool{Tool: toolGetSession, Handler: h.getSession},
		server.ServerTool{Tool: toolGetSessionHistory, Handler: h.getSessionHistory},
		server.ServerTool{Tool: toolGetPrescription, Handler: h.getPrescription},
		server.ServerTool{Tool: toolListCompletedTemplates, Handler: h.listCompletedTemplates},
	)

	// Resources
	s.AddResources(
		server.ServerResource{Resource: resProgramSummary, Handler: h.programSummary},
		server.ServerResource{Resource: resCategoryCatalog, Handler: h.categoryCatalog},
	)

	return s
}

// handlers holds dependencies for MCP tool/resource handlers.
type handlers struct {
	db       *storage.DB
	schedule *schedule.Service
	sessions *session.Service
	log      *slog.Logger
}

// --- Resource definitions ---

var resProgramSummary = mcp.NewResource(
	"periodize://program_summary",
	"Program Summary",
	mcp.WithResourceDescription("The athlete's active program with its current phase position and today's resolved workout"),
	mcp.WithMIMEType("application/json"),
)

var resCategoryCatalog = mcp.NewResource(
	"periodize://category_catalog",
	"Category Catalog",
	mcp.WithResourceDescription("The fixed sport category catalog with the sports each category covers"),
	mcp.WithMIMEType("application/json"),
)
