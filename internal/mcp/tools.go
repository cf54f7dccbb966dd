package mcp

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/meltforce/periodize/internal/models"
	"github.com/meltforce/periodize/internal/scaling"
)

// activeProgram loads the caller's active program for tool handlers.
func (h *handlers) activeProgram(ctx context.Context) (*models.UserProgram, error) {
	uid := UserIDFromContext(ctx)
	prog, err := h.db.ActiveProgram(ctx, uid)
	if err != nil {
		return nil, err
	}
	if prog == nil {
		return nil, fmt.Errorf("no active program for user %d", uid)
	}
	return prog, nil
}

// --- Tool definitions ---

var toolGetTodayWorkout = mcp.NewTool("get_today_workout",
	mcp.WithDescription("Resolve today's workout for the athlete. An in-progress session wins, then an explicit today-focus override, then the first uncompleted workout of the current week."),
)

var toolGetWeekSchedule = mcp.NewTool("get_week_schedule",
	mcp.WithDescription("Get the effective schedule for one week of a phase, with per-athlete overrides applied and completed workouts marked."),
	mcp.WithString("phase", mcp.Description("Phase (gpp, spp, ssp). Defaults to the program's current phase."), mcp.Enum("gpp", "spp", "ssp")),
	mcp.WithNumber("week", mcp.Description("Week within the phase (1-4). Defaults to the program's current week.")),
)

var toolGetPhaseOverview = mcp.NewTool("get_phase_overview",
	mcp.WithDescription("Get the effective schedule for all four weeks of a phase."),
	mcp.WithString("phase", mcp.Required(), mcp.Description("Phase (gpp, spp, ssp)"), mcp.Enum("gpp", "spp", "ssp")),
)

var toolGetSession = mcp.NewTool("get_session",
	mcp.WithDescription("Get a workout session with its completion records and re-derived exercise prescriptions."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Session UUID")),
)

var toolGetSessionHistory = mcp.NewTool("get_session_history",
	mcp.WithDescription("List the athlete's past workout sessions, most recent first."),
	mcp.WithNumber("limit", mcp.Description("Maximum sessions to return. Defaults to 50.")),
)

var toolGetPrescription = mcp.NewTool("get_prescription",
	mcp.WithDescription("Resolve the scaled training parameters (sets, reps, %1RM, rest, tempo, RPE) for an athlete profile and exercise focus."),
	mcp.WithNumber("category_id", mcp.Required(), mcp.Description("Sport category id (1=Endurance, 2=Power, 3=Team, 4=Combat)")),
	mcp.WithString("phase", mcp.Required(), mcp.Description("Phase (gpp, spp, ssp)"), mcp.Enum("gpp", "spp", "ssp")),
	mcp.WithString("age_group", mcp.Required(), mcp.Description("Age group"), mcp.Enum("14-17", "18-35", "36+")),
	mcp.WithNumber("experience_years", mcp.Required(), mcp.Description("Years of training experience")),
	mcp.WithString("focus", mcp.Description("Exercise focus. Defaults to strength."), mcp.Enum("strength", "power", "bodyweight")),
)

var toolListCompletedTemplates = mcp.NewTool("list_completed_templates",
	mcp.WithDescription("List the template ids that already carry a completed session for the athlete's program."),
)

// --- Tool handlers ---

func (h *handlers) getTodayWorkout(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	prog, err := h.activeProgram(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	today, err := h.schedule.ResolveToday(ctx, prog, time.Now())
	if err != nil {
		h.log.Error("mcp get_today_workout", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(today)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getWeekSchedule(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	prog, err := h.activeProgram(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	phase := prog.CurrentPhase
	if p := req.GetString("phase", ""); p != "" {
		phase, err = models.ParsePhase(p)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
	}
	week := req.GetInt("week", prog.CurrentWeek)
	if week < 1 || week > models.WeeksPerPhase {
		return mcp.NewToolResultError("week must be between 1 and 4"), nil
	}

	slots, err := h.schedule.WeekSchedule(ctx, prog, phase, week)
	if err != nil {
		h.log.Error("mcp get_week_schedule", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(map[string]any{
		"phase": phase,
		"week":  week,
		"slots": slots,
	})
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getPhaseOverview(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	phaseStr, err := req.RequireString("phase")
	if err != nil {
		return mcp.NewToolResultError("phase parameter is required"), nil
	}
	phase, err := models.ParsePhase(phaseStr)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	prog, err := h.activeProgram(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	weeks, err := h.schedule.PhaseOverview(ctx, prog, phase)
	if err != nil {
		h.log.Error("mcp get_phase_overview", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(map[string]any{
		"phase": phase,
		"weeks": weeks,
	})
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getSession(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	idStr, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError("id parameter is required"), nil
	}
	id, err := uuid.Parse(idStr)
	if err != nil {
		return mcp.NewToolResultError("invalid session id"), nil
	}

	view, err := h.sessions.Get(ctx, UserIDFromContext(ctx), id)
	if err != nil {
		h.log.Error("mcp get_session", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(view)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getSessionHistory(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	prog, err := h.activeProgram(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	limit := req.GetInt("limit", 0)
	sessions, err := h.sessions.History(ctx, prog.UserID, prog.ID, limit)
	if err != nil {
		h.log.Error("mcp get_session_history", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(sessions)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getPrescription(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	categoryID, err := req.RequireInt("category_id")
	if err != nil {
		return mcp.NewToolResultError("category_id parameter is required"), nil
	}
	if categoryID < 1 || categoryID > len(models.SportCategories) {
		return mcp.NewToolResultError(fmt.Sprintf("category_id %d out of range", categoryID)), nil
	}

	phaseStr, err := req.RequireString("phase")
	if err != nil {
		return mcp.NewToolResultError("phase parameter is required"), nil
	}
	phase, err := models.ParsePhase(phaseStr)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	ageGroup := models.AgeGroup(req.GetString("age_group", ""))
	if !ageGroup.Valid() {
		return mcp.NewToolResultError("age_group must be one of 14-17, 18-35, 36+"), nil
	}

	years, err := req.RequireInt("experience_years")
	if err != nil || years < 0 {
		return mcp.NewToolResultError("experience_years must be a non-negative integer"), nil
	}

	focus := models.Focus(req.GetString("focus", string(models.FocusStrength)))
	switch focus {
	case models.FocusStrength, models.FocusPower, models.FocusBodyweight:
	default:
		return mcp.NewToolResultError("focus must be one of strength, power, bodyweight"), nil
	}

	p := scaling.Resolve(categoryID, phase, ageGroup, years, focus)
	result, err := mcp.NewToolResultJSON(map[string]any{
		"category_id":       categoryID,
		"phase":             phase,
		"age_group":         ageGroup,
		"experience_bucket": models.BucketForYears(years),
		"focus":             focus,
		"prescription":      p,
	})
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) listCompletedTemplates(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	prog, err := h.activeProgram(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	ids, err := h.sessions.CompletedTemplateIDs(ctx, prog.UserID, prog.ID)
	if err != nil {
		h.log.Error("mcp list_completed_templates", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(map[string]any{"template_ids": ids})
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}
