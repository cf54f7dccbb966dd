package schedule

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/meltforce/periodize/internal/models"
)

// CascadeResult reports whether starting a workout early shifted the
// schedule, and by how many slots.
type CascadeResult struct {
	Applied      bool `json:"cascade_applied"`
	SlotsShifted int  `json:"slots_shifted"`
}

// slotState is one slot of the cascade range with its effective occupant.
type slotState struct {
	slot      models.WorkoutSlot
	occupant  *uuid.UUID // effective template, nil for rest days
	defaultID *uuid.UUID // catalog default, nil for rest days
}

// CascadeForStart shifts the schedule when the given template's current
// effective slot lies strictly after today: the selected workout moves into
// today's slot and everything between shifts one position later. The cascade
// is refused — without error — when any slot in the range carries a
// completed workout, since completed history is never reassigned. Only
// assignments that differ from a slot's default are persisted, and only
// overrides inside the affected range are replaced.
func (s *Service) CascadeForStart(ctx context.Context, prog *models.UserProgram, templateID uuid.UUID, now time.Time) (CascadeResult, error) {
	workoutsPerWeek := len(prog.TrainingWeekdays)
	if workoutsPerWeek == 0 {
		return CascadeResult{}, nil
	}

	rec, err := s.Overrides(ctx, prog)
	if err != nil {
		return CascadeResult{}, err
	}

	todaySlot := s.nominalSlot(prog, now)
	todayIdx := todaySlot.AbsoluteIndex(workoutsPerWeek)

	selectedIdx, err := s.effectiveSlotIndex(ctx, prog, rec, templateID, todayIdx)
	if err != nil {
		return CascadeResult{}, err
	}
	if selectedIdx <= todayIdx {
		// Already scheduled today or earlier; nothing to shift.
		return CascadeResult{}, nil
	}

	states, err := s.rangeStates(ctx, prog, rec, todayIdx, selectedIdx)
	if err != nil {
		return CascadeResult{}, err
	}

	// Completed history is never reassignable: any completed slot inside the
	// range blocks the whole cascade.
	completed, err := s.sessions.CompletedTemplateIDs(ctx, prog.UserID, prog.ID)
	if err != nil {
		return CascadeResult{}, fmt.Errorf("loading completed templates: %w", err)
	}
	for _, st := range states {
		if st.occupant != nil && completed[*st.occupant] {
			return CascadeResult{}, nil
		}
	}

	// Rotate: the selected workout moves to the front of the range and every
	// following occupied slot receives the previous occupied slot's content.
	// Rest-day slots hold no content and take no part in the rotation.
	occupied := make([]slotState, 0, len(states))
	for _, st := range states {
		if st.occupant != nil {
			occupied = append(occupied, st)
		}
	}
	if len(occupied) < 2 {
		return CascadeResult{}, nil
	}

	assignments := make(map[models.WorkoutSlot]uuid.UUID)
	carry := templateID
	for _, st := range occupied {
		next := *st.occupant
		if st.defaultID == nil || *st.defaultID != carry {
			assignments[st.slot] = carry
		}
		carry = next
	}
	shifted := len(occupied)

	rec.ReplaceRange(todayIdx, selectedIdx, workoutsPerWeek, assignments)
	if err := s.overrides.Save(ctx, rec); err != nil {
		return CascadeResult{}, err
	}
	return CascadeResult{Applied: true, SlotsShifted: shifted}, nil
}

// effectiveSlotIndex scans the full grid under existing overrides for the
// template's current slot, preferring the first occurrence after today.
// Returns -1 when the template occupies no slot.
func (s *Service) effectiveSlotIndex(ctx context.Context, prog *models.UserProgram, rec *models.ScheduleOverride, templateID uuid.UUID, todayIdx int) (int, error) {
	workoutsPerWeek := len(prog.TrainingWeekdays)
	total := len(models.Phases) * models.WeeksPerPhase * workoutsPerWeek

	found := -1
	for idx := 0; idx < total; idx++ {
		slot, ok := models.SlotFromIndex(idx, workoutsPerWeek)
		if !ok {
			break
		}
		tmpl, _, err := s.resolveSlot(ctx, prog, rec, slot)
		if err != nil {
			return -1, err
		}
		if tmpl == nil || tmpl.ID != templateID {
			continue
		}
		if idx > todayIdx {
			return idx, nil
		}
		if found == -1 {
			found = idx
		}
	}
	return found, nil
}

// rangeStates resolves the effective occupant of every slot in the inclusive
// index range.
func (s *Service) rangeStates(ctx context.Context, prog *models.UserProgram, rec *models.ScheduleOverride, fromIdx, toIdx int) ([]slotState, error) {
	workoutsPerWeek := len(prog.TrainingWeekdays)
	states := make([]slotState, 0, toIdx-fromIdx+1)
	for idx := fromIdx; idx <= toIdx; idx++ {
		slot, ok := models.SlotFromIndex(idx, workoutsPerWeek)
		if !ok {
			break
		}
		st := slotState{slot: slot}
		tmpl, _, err := s.resolveSlot(ctx, prog, rec, slot)
		if err != nil {
			return nil, err
		}
		if tmpl != nil {
			id := tmpl.ID
			st.occupant = &id
		}
		def, err := s.catalog.TemplateForSlot(ctx, prog.CategoryID, prog.SkillLevel, slot)
		if err != nil {
			return nil, fmt.Errorf("resolving default slot: %w", err)
		}
		if def != nil {
			id := def.ID
			st.defaultID = &id
		}
		states = append(states, st)
	}
	return states, nil
}
