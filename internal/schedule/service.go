// Package schedule resolves an athlete's effective schedule by layering
// per-user overrides on top of the default template grid, and applies the
// schedule mutations (today focus, swaps, resets, cascades).
package schedule

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/meltforce/periodize/internal/calendar"
	"github.com/meltforce/periodize/internal/models"
)

// OverrideStore persists the per-(user, program) override aggregate. Get
// returns (nil, nil) when no record exists yet; Save performs a
// compare-and-swap on the aggregate revision.
type OverrideStore interface {
	Get(ctx context.Context, userID int, programID uuid.UUID) (*models.ScheduleOverride, error)
	Save(ctx context.Context, rec *models.ScheduleOverride) error
}

// TemplateCatalog is the read-only template catalog. Both lookups return
// (nil, nil) when nothing matches: a missing id means a stale reference, a
// missing slot means a rest day.
type TemplateCatalog interface {
	TemplateByID(ctx context.Context, id uuid.UUID) (*models.ProgramTemplate, error)
	TemplateForSlot(ctx context.Context, categoryID int, skillLevel string, slot models.WorkoutSlot) (*models.ProgramTemplate, error)
}

// SessionReader supplies the session facts that gate schedule resolution.
type SessionReader interface {
	InProgress(ctx context.Context, userID int, programID uuid.UUID) (*models.WorkoutSession, error)
	CompletedTemplateIDs(ctx context.Context, userID int, programID uuid.UUID) (map[uuid.UUID]bool, error)
}

// Service is the schedule override store plus cascade scheduler.
type Service struct {
	overrides OverrideStore
	catalog   TemplateCatalog
	sessions  SessionReader
	log       *slog.Logger
}

// New creates a schedule service.
func New(overrides OverrideStore, catalog TemplateCatalog, sessions SessionReader, log *slog.Logger) *Service {
	return &Service{overrides: overrides, catalog: catalog, sessions: sessions, log: log}
}

// SlotAssignment is one slot of an effective schedule view.
type SlotAssignment struct {
	Slot       models.WorkoutSlot      `json:"slot"`
	Template   *models.ProgramTemplate `json:"template,omitempty"`
	Overridden bool                    `json:"overridden"`
	Completed  bool                    `json:"completed"`
}

// Overrides returns the athlete's override record, or an empty aggregate if
// none has been created yet.
func (s *Service) Overrides(ctx context.Context, prog *models.UserProgram) (*models.ScheduleOverride, error) {
	rec, err := s.overrides.Get(ctx, prog.UserID, prog.ID)
	if err != nil {
		return nil, fmt.Errorf("loading override record: %w", err)
	}
	if rec == nil {
		rec = models.NewScheduleOverride(prog.UserID, prog.ID)
	}
	return rec, nil
}

// resolveSlot returns the effective template for a slot: the override's
// target when one exists and still resolves, otherwise the slot's default.
// A stale override is recovered silently by falling back to the default.
func (s *Service) resolveSlot(ctx context.Context, prog *models.UserProgram, rec *models.ScheduleOverride, slot models.WorkoutSlot) (*models.ProgramTemplate, bool, error) {
	if id, ok := rec.SlotTemplate(slot); ok {
		tmpl, err := s.catalog.TemplateByID(ctx, id)
		if err != nil {
			return nil, false, fmt.Errorf("resolving slot override: %w", err)
		}
		if tmpl != nil {
			return tmpl, true, nil
		}
		s.log.Warn("slot override references missing template, using default",
			"template_id", id, "phase", slot.Phase, "week", slot.Week, "day", slot.Day)
	}
	tmpl, err := s.catalog.TemplateForSlot(ctx, prog.CategoryID, prog.SkillLevel, slot)
	if err != nil {
		return nil, false, fmt.Errorf("resolving default slot: %w", err)
	}
	return tmpl, false, nil
}

// WeekSchedule returns the effective schedule for one week of a phase, with
// overrides applied and completion marked.
func (s *Service) WeekSchedule(ctx context.Context, prog *models.UserProgram, phase models.Phase, week int) ([]SlotAssignment, error) {
	rec, err := s.Overrides(ctx, prog)
	if err != nil {
		return nil, err
	}
	completed, err := s.sessions.CompletedTemplateIDs(ctx, prog.UserID, prog.ID)
	if err != nil {
		return nil, fmt.Errorf("loading completed templates: %w", err)
	}

	workoutsPerWeek := len(prog.TrainingWeekdays)
	out := make([]SlotAssignment, 0, workoutsPerWeek)
	for day := 1; day <= workoutsPerWeek; day++ {
		slot := models.WorkoutSlot{Phase: phase, Week: week, Day: day}
		tmpl, overridden, err := s.resolveSlot(ctx, prog, rec, slot)
		if err != nil {
			return nil, err
		}
		a := SlotAssignment{Slot: slot, Template: tmpl, Overridden: overridden}
		if tmpl != nil {
			a.Completed = completed[tmpl.ID]
		}
		out = append(out, a)
	}
	return out, nil
}

// PhaseOverview returns the effective schedule for every week of a phase.
func (s *Service) PhaseOverview(ctx context.Context, prog *models.UserProgram, phase models.Phase) ([][]SlotAssignment, error) {
	weeks := make([][]SlotAssignment, 0, models.WeeksPerPhase)
	for week := 1; week <= models.WeeksPerPhase; week++ {
		assignments, err := s.WeekSchedule(ctx, prog, phase, week)
		if err != nil {
			return nil, err
		}
		weeks = append(weeks, assignments)
	}
	return weeks, nil
}

// Today-workout resolution sources, in priority order.
const (
	SourceInProgress    = "in_progress"
	SourceTodayFocus    = "today_focus"
	SourceScheduled     = "scheduled"
	SourceNextAvailable = "next_available"
	SourceFallback      = "fallback"
)

// TodayWorkout is the result of today-workout resolution.
type TodayWorkout struct {
	Template *models.ProgramTemplate `json:"template,omitempty"`
	Slot     models.WorkoutSlot      `json:"slot"`
	Source   string                  `json:"source"`
	IsToday  bool                    `json:"is_today"`
}

// nominalSlot maps now onto the slot grid, falling back to the program
// cursor when today is not a training day or lies outside the program.
func (s *Service) nominalSlot(prog *models.UserProgram, now time.Time) models.WorkoutSlot {
	if slot := calendar.SlotForDate(prog.StartDate, calendar.SortedWeekdays(prog.TrainingWeekdays), now); slot != nil {
		return *slot
	}
	return prog.CurrentSlot()
}

// ResolveToday resolves today's workout using the strict priority order: an
// in-progress session always wins, then an uncompleted today-focus override,
// then the first uncompleted slot of the current week, then the nominal
// current-day slot as a last resort.
func (s *Service) ResolveToday(ctx context.Context, prog *models.UserProgram, now time.Time) (*TodayWorkout, error) {
	nominal := s.nominalSlot(prog, now)

	// 1. A mid-workout athlete is never redirected.
	inProg, err := s.sessions.InProgress(ctx, prog.UserID, prog.ID)
	if err != nil {
		return nil, fmt.Errorf("loading in-progress session: %w", err)
	}
	if inProg != nil {
		tmpl, err := s.catalog.TemplateByID(ctx, inProg.TemplateID)
		if err != nil {
			return nil, fmt.Errorf("resolving in-progress template: %w", err)
		}
		return &TodayWorkout{Template: tmpl, Slot: nominal, Source: SourceInProgress, IsToday: true}, nil
	}

	rec, err := s.Overrides(ctx, prog)
	if err != nil {
		return nil, err
	}
	completed, err := s.sessions.CompletedTemplateIDs(ctx, prog.UserID, prog.ID)
	if err != nil {
		return nil, fmt.Errorf("loading completed templates: %w", err)
	}

	// 2. Explicit today-focus override, unless its target was completed.
	if rec.TodayFocusID != nil && !completed[*rec.TodayFocusID] {
		tmpl, err := s.catalog.TemplateByID(ctx, *rec.TodayFocusID)
		if err != nil {
			return nil, fmt.Errorf("resolving today focus: %w", err)
		}
		if tmpl != nil {
			return &TodayWorkout{Template: tmpl, Slot: nominal, Source: SourceTodayFocus, IsToday: true}, nil
		}
		s.log.Warn("today focus references missing template, ignoring", "template_id", *rec.TodayFocusID)
	}

	// 3. First uncompleted slot of the current week, ascending day order.
	workoutsPerWeek := len(prog.TrainingWeekdays)
	for day := 1; day <= workoutsPerWeek; day++ {
		slot := models.WorkoutSlot{Phase: nominal.Phase, Week: nominal.Week, Day: day}
		tmpl, _, err := s.resolveSlot(ctx, prog, rec, slot)
		if err != nil {
			return nil, err
		}
		if tmpl == nil || completed[tmpl.ID] {
			continue
		}
		source := SourceNextAvailable
		if slot == nominal {
			source = SourceScheduled
		}
		return &TodayWorkout{Template: tmpl, Slot: slot, Source: source, IsToday: slot == nominal}, nil
	}

	// 4. Everything this week is done: fall back to the nominal slot.
	tmpl, _, err := s.resolveSlot(ctx, prog, rec, nominal)
	if err != nil {
		return nil, err
	}
	return &TodayWorkout{Template: tmpl, Slot: nominal, Source: SourceFallback, IsToday: true}, nil
}
