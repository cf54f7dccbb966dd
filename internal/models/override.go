package models

import (
	"time"

	"github.com/google/uuid"
)

// SlotOverride reassigns which template occupies a slot for one athlete,
// layered non-destructively over the default catalog assignment.
type SlotOverride struct {
	Phase      Phase     `json:"phase"`
	Week       int       `json:"week"`
	Day        int       `json:"day"`
	TemplateID uuid.UUID `json:"template_id"`
}

// Slot returns the override's coordinate.
func (o SlotOverride) Slot() WorkoutSlot {
	return WorkoutSlot{Phase: o.Phase, Week: o.Week, Day: o.Day}
}

// ScheduleOverride is the per-(user, program) override aggregate: an optional
// today-focus pointer plus slot reassignments. Created lazily on first
// mutation and only ever patched afterwards. Revision implements optimistic
// concurrency: every save compares and bumps it.
type ScheduleOverride struct {
	UserID          int            `json:"user_id"`
	ProgramID       uuid.UUID      `json:"program_id"`
	TodayFocusID    *uuid.UUID     `json:"today_focus_template_id,omitempty"`
	TodayFocusSetAt *time.Time     `json:"today_focus_set_at,omitempty"`
	Slots           []SlotOverride `json:"slot_overrides"`
	Revision        int            `json:"revision"`
}

// NewScheduleOverride returns an empty aggregate for first-mutation creation.
// Revision zero signals the save path to insert rather than update.
func NewScheduleOverride(userID int, programID uuid.UUID) *ScheduleOverride {
	return &ScheduleOverride{UserID: userID, ProgramID: programID}
}

// SlotTemplate returns the overriding template for a slot, if any.
func (r *ScheduleOverride) SlotTemplate(slot WorkoutSlot) (uuid.UUID, bool) {
	for _, o := range r.Slots {
		if o.Slot() == slot {
			return o.TemplateID, true
		}
	}
	return uuid.Nil, false
}

// SetSlot assigns a template to a slot, replacing any existing override for
// that coordinate. Remove-then-insert keeps the at-most-one-per-slot
// invariant on every write.
func (r *ScheduleOverride) SetSlot(slot WorkoutSlot, templateID uuid.UUID) {
	r.ClearSlot(slot)
	r.Slots = append(r.Slots, SlotOverride{
		Phase: slot.Phase, Week: slot.Week, Day: slot.Day, TemplateID: templateID,
	})
}

// ClearSlot removes the override for a slot, if present.
func (r *ScheduleOverride) ClearSlot(slot WorkoutSlot) {
	kept := r.Slots[:0]
	for _, o := range r.Slots {
		if o.Slot() != slot {
			kept = append(kept, o)
		}
	}
	r.Slots = kept
}

// ClearPhase removes every slot override within a phase.
func (r *ScheduleOverride) ClearPhase(phase Phase) {
	kept := r.Slots[:0]
	for _, o := range r.Slots {
		if o.Phase != phase {
			kept = append(kept, o)
		}
	}
	r.Slots = kept
}

// ReplaceRange removes every override whose slot falls inside the inclusive
// absolute-index range and installs the given assignments. The operation is
// total and idempotent: applying the same replacement twice yields the same
// aggregate state.
func (r *ScheduleOverride) ReplaceRange(fromIdx, toIdx, workoutsPerWeek int, assignments map[WorkoutSlot]uuid.UUID) {
	kept := r.Slots[:0]
	for _, o := range r.Slots {
		idx := o.Slot().AbsoluteIndex(workoutsPerWeek)
		if idx < fromIdx || idx > toIdx {
			kept = append(kept, o)
		}
	}
	r.Slots = kept
	for slot, id := range assignments {
		r.SetSlot(slot, id)
	}
}
