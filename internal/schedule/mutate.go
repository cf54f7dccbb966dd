package schedule

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/meltforce/periodize/internal/apperr"
	"github.com/meltforce/periodize/internal/models"
)

// SetTodayFocus points today's workout at a specific template. The template
// must belong to the athlete's category and must not already carry a
// completed session. The override record is created lazily on first use.
func (s *Service) SetTodayFocus(ctx context.Context, prog *models.UserProgram, templateID uuid.UUID, now time.Time) error {
	tmpl, err := s.catalog.TemplateByID(ctx, templateID)
	if err != nil {
		return fmt.Errorf("loading template: %w", err)
	}
	if tmpl == nil {
		return apperr.New(apperr.NotFound, "template %s not found", templateID)
	}
	if tmpl.CategoryID != prog.CategoryID {
		return apperr.New(apperr.Unauthorized, "template %s belongs to another category", templateID)
	}

	completed, err := s.sessions.CompletedTemplateIDs(ctx, prog.UserID, prog.ID)
	if err != nil {
		return fmt.Errorf("loading completed templates: %w", err)
	}
	if completed[templateID] {
		return apperr.New(apperr.InvalidState, "template %s already has a completed session", templateID)
	}

	rec, err := s.Overrides(ctx, prog)
	if err != nil {
		return err
	}
	rec.TodayFocusID = &templateID
	rec.TodayFocusSetAt = &now
	return s.overrides.Save(ctx, rec)
}

// ClearTodayFocus nulls the focus pointer. Slot overrides are untouched.
// Clearing when no record exists is a no-op.
func (s *Service) ClearTodayFocus(ctx context.Context, prog *models.UserProgram) error {
	rec, err := s.overrides.Get(ctx, prog.UserID, prog.ID)
	if err != nil {
		return fmt.Errorf("loading override record: %w", err)
	}
	if rec == nil || rec.TodayFocusID == nil {
		return nil
	}
	rec.TodayFocusID = nil
	rec.TodayFocusSetAt = nil
	return s.overrides.Save(ctx, rec)
}

// SwapWorkouts exchanges the occupants of two slots within the same phase.
// Rest-day slots and slots whose occupant already has a completed session
// cannot be swapped. Both slots' current occupants are resolved under
// existing overrides before the cross-assignment is written, so swapping the
// same pair twice restores the original schedule.
func (s *Service) SwapWorkouts(ctx context.Context, prog *models.UserProgram, slotA, slotB models.WorkoutSlot) error {
	if slotA.Phase != slotB.Phase {
		return apperr.New(apperr.InvalidState, "cannot swap slots across phases (%s vs %s)", slotA.Phase, slotB.Phase)
	}
	if slotA == slotB {
		return nil
	}

	rec, err := s.Overrides(ctx, prog)
	if err != nil {
		return err
	}

	occA, _, err := s.resolveSlot(ctx, prog, rec, slotA)
	if err != nil {
		return err
	}
	occB, _, err := s.resolveSlot(ctx, prog, rec, slotB)
	if err != nil {
		return err
	}
	if occA == nil || occB == nil {
		return apperr.New(apperr.InvalidState, "cannot swap a rest-day slot")
	}

	completed, err := s.sessions.CompletedTemplateIDs(ctx, prog.UserID, prog.ID)
	if err != nil {
		return fmt.Errorf("loading completed templates: %w", err)
	}
	if completed[occA.ID] || completed[occB.ID] {
		return apperr.New(apperr.InvalidState, "cannot swap a completed workout")
	}

	rec.SetSlot(slotA, occB.ID)
	rec.SetSlot(slotB, occA.ID)
	return s.overrides.Save(ctx, rec)
}

// ResetPhaseToDefault removes every slot override within a phase. The
// today-focus pointer is untouched. Resetting with no record is a no-op.
func (s *Service) ResetPhaseToDefault(ctx context.Context, prog *models.UserProgram, phase models.Phase) error {
	rec, err := s.overrides.Get(ctx, prog.UserID, prog.ID)
	if err != nil {
		return fmt.Errorf("loading override record: %w", err)
	}
	if rec == nil {
		return nil
	}
	rec.ClearPhase(phase)
	return s.overrides.Save(ctx, rec)
}
