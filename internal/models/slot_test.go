package models

import "testing"

// TestAbsoluteIndexRoundTrip verifies SlotFromIndex inverts AbsoluteIndex
// across the whole grid.
func TestAbsoluteIndexRoundTrip(t *testing.T) {
	const workoutsPerWeek = 3
	for _, phase := range Phases {
		for week := 1; week <= WeeksPerPhase; week++ {
			for day := 1; day <= workoutsPerWeek; day++ {
				slot := WorkoutSlot{Phase: phase, Week: week, Day: day}
				idx := slot.AbsoluteIndex(workoutsPerWeek)
				back, ok := SlotFromIndex(idx, workoutsPerWeek)
				if !ok {
					t.Fatalf("SlotFromIndex(%d) reported out of range", idx)
				}
				if back != slot {
					t.Errorf("round trip %+v -> %d -> %+v", slot, idx, back)
				}
			}
		}
	}
}

// TestAbsoluteIndexOrdering verifies the linearization orders phase before
// week before day.
func TestAbsoluteIndexOrdering(t *testing.T) {
	const wpw = 4
	a := WorkoutSlot{Phase: PhaseGPP, Week: 4, Day: 4}
	b := WorkoutSlot{Phase: PhaseSPP, Week: 1, Day: 1}
	if a.AbsoluteIndex(wpw) >= b.AbsoluteIndex(wpw) {
		t.Error("last GPP slot should order before first SPP slot")
	}
	if got := (WorkoutSlot{Phase: PhaseGPP, Week: 1, Day: 1}).AbsoluteIndex(wpw); got != 0 {
		t.Errorf("first slot index = %d, want 0", got)
	}
}

// TestSlotFromIndexBeyondProgram verifies indexes past the final phase are
// rejected rather than wrapping around.
func TestSlotFromIndexBeyondProgram(t *testing.T) {
	const wpw = 3
	total := len(Phases) * WeeksPerPhase * wpw
	if _, ok := SlotFromIndex(total, wpw); ok {
		t.Error("index past final phase should be rejected")
	}
	if _, ok := SlotFromIndex(-1, wpw); ok {
		t.Error("negative index should be rejected")
	}
	if _, ok := SlotFromIndex(0, 0); ok {
		t.Error("zero workouts per week should be rejected")
	}
}

// TestParsePhase verifies the phase enumeration parsing.
func TestParsePhase(t *testing.T) {
	for _, phase := range Phases {
		got, err := ParsePhase(string(phase))
		if err != nil || got != phase {
			t.Errorf("ParsePhase(%q) = %v, %v", phase, got, err)
		}
	}
	if _, err := ParsePhase("taper"); err == nil {
		t.Error("expected error for unknown phase")
	}
}
