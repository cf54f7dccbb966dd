package models

import (
	"testing"

	"github.com/google/uuid"
)

func slot(phase Phase, week, day int) WorkoutSlot {
	return WorkoutSlot{Phase: phase, Week: week, Day: day}
}

// TestSetSlotReplaces verifies at most one override exists per slot.
func TestSetSlotReplaces(t *testing.T) {
	rec := NewScheduleOverride(1, uuid.New())
	s := slot(PhaseGPP, 1, 2)

	first := uuid.New()
	second := uuid.New()
	rec.SetSlot(s, first)
	rec.SetSlot(s, second)

	if len(rec.Slots) != 1 {
		t.Fatalf("slots = %d, want 1", len(rec.Slots))
	}
	got, ok := rec.SlotTemplate(s)
	if !ok || got != second {
		t.Errorf("SlotTemplate = %s, %v, want %s", got, ok, second)
	}
}

// TestClearSlot verifies removal leaves other slots untouched.
func TestClearSlot(t *testing.T) {
	rec := NewScheduleOverride(1, uuid.New())
	a := slot(PhaseGPP, 1, 1)
	b := slot(PhaseGPP, 1, 2)
	rec.SetSlot(a, uuid.New())
	keep := uuid.New()
	rec.SetSlot(b, keep)

	rec.ClearSlot(a)

	if _, ok := rec.SlotTemplate(a); ok {
		t.Error("cleared slot still has an override")
	}
	if got, ok := rec.SlotTemplate(b); !ok || got != keep {
		t.Error("unrelated slot was disturbed")
	}
}

// TestClearPhase verifies phase-scoped removal.
func TestClearPhase(t *testing.T) {
	rec := NewScheduleOverride(1, uuid.New())
	rec.SetSlot(slot(PhaseGPP, 1, 1), uuid.New())
	rec.SetSlot(slot(PhaseGPP, 3, 2), uuid.New())
	sppID := uuid.New()
	rec.SetSlot(slot(PhaseSPP, 1, 1), sppID)

	rec.ClearPhase(PhaseGPP)

	if len(rec.Slots) != 1 {
		t.Fatalf("slots = %d, want 1", len(rec.Slots))
	}
	if got, _ := rec.SlotTemplate(slot(PhaseSPP, 1, 1)); got != sppID {
		t.Error("other phase's override was removed")
	}
}

// TestReplaceRange verifies the range replacement is total within the range,
// preserves overrides outside it, and is idempotent.
func TestReplaceRange(t *testing.T) {
	const wpw = 3
	rec := NewScheduleOverride(1, uuid.New())

	outside := uuid.New()
	rec.SetSlot(slot(PhaseGPP, 1, 1), outside) // index 0, outside the range
	stale := uuid.New()
	rec.SetSlot(slot(PhaseGPP, 1, 3), stale) // index 2, inside the range

	assignments := map[WorkoutSlot]uuid.UUID{
		slot(PhaseGPP, 1, 2): uuid.New(), // index 1
		slot(PhaseGPP, 2, 1): uuid.New(), // index 3
	}

	rec.ReplaceRange(1, 3, wpw, assignments)

	if got, _ := rec.SlotTemplate(slot(PhaseGPP, 1, 1)); got != outside {
		t.Error("override outside the range was removed")
	}
	if _, ok := rec.SlotTemplate(slot(PhaseGPP, 1, 3)); ok {
		t.Error("stale override inside the range survived")
	}
	if len(rec.Slots) != 3 {
		t.Fatalf("slots = %d, want 3", len(rec.Slots))
	}

	before := make(map[WorkoutSlot]uuid.UUID)
	for _, o := range rec.Slots {
		before[o.Slot()] = o.TemplateID
	}
	rec.ReplaceRange(1, 3, wpw, assignments)
	if len(rec.Slots) != 3 {
		t.Fatalf("second apply changed slot count to %d", len(rec.Slots))
	}
	for _, o := range rec.Slots {
		if before[o.Slot()] != o.TemplateID {
			t.Errorf("second apply changed slot %+v", o.Slot())
		}
	}
}
