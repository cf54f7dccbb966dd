package scaling

import (
	"testing"

	"github.com/google/uuid"

	"github.com/meltforce/periodize/internal/models"
)

func barbellOccurrence() models.ExerciseOccurrence {
	return models.ExerciseOccurrence{
		Exercise: models.Exercise{
			ID:        uuid.New(),
			Name:      "Back Squat",
			Tags:      []string{"strength"},
			Equipment: []string{"barbell"},
		},
		BaseSets:    3,
		BaseReps:    10,
		RestSeconds: 90,
	}
}

// TestSnapshotStrategyStrength verifies snapshot scaling resolves through the
// rules matrix using the frozen profile.
func TestSnapshotStrategyStrength(t *testing.T) {
	occ := barbellOccurrence()
	strategy := SnapshotStrategy{Snapshot: models.ScalingSnapshot{
		CategoryID: 2, Phase: models.PhaseSSP,
		AgeGroup: models.AgeGroupAdult, ExperienceYears: 8,
	}}

	plan := strategy.Scale(occ)
	if plan.ExerciseID != occ.Exercise.ID {
		t.Errorf("exercise = %s, want base %s", plan.ExerciseID, occ.Exercise.ID)
	}
	if plan.Substituted {
		t.Error("equipment exercise should never substitute")
	}
	if plan.Prescription.Sets != 6 {
		t.Errorf("sets = %d, want 6", plan.Prescription.Sets)
	}
	if plan.Prescription.RPE != (IntRange{9, 9}) {
		t.Errorf("RPE = %+v, want [9, 9]", plan.Prescription.RPE)
	}
}

// TestSnapshotStrategyBodyweightSubstitutes verifies the variant selector
// runs for bodyweight exercises: an advanced athlete in SSP gets the harder
// variant.
func TestSnapshotStrategyBodyweightSubstitutes(t *testing.T) {
	harder := uuid.New()
	occ := models.ExerciseOccurrence{
		Exercise: models.Exercise{
			ID:       uuid.New(),
			Name:     "Push-up",
			Tags:     []string{"bodyweight"},
			HarderID: &harder,
		},
		BaseSets: 3, BaseReps: 12, RestSeconds: 60,
	}
	strategy := SnapshotStrategy{Snapshot: models.ScalingSnapshot{
		CategoryID: 3, Phase: models.PhaseSSP,
		AgeGroup: models.AgeGroupAdult, ExperienceYears: 9,
	}}

	plan := strategy.Scale(occ)
	if plan.ExerciseID != harder {
		t.Errorf("exercise = %s, want harder variant %s", plan.ExerciseID, harder)
	}
	if !plan.Substituted {
		t.Error("substitution should be reported")
	}
}

// TestLegacyIntensityLevels verifies the legacy table's per-level volume and
// rest adjustments against the authored base.
func TestLegacyIntensityLevels(t *testing.T) {
	occ := barbellOccurrence()

	tests := []struct {
		level string
		sets  int
		rest  int
		rpe   IntRange
	}{
		{"low", 2, 120, IntRange{5, 6}},
		{"moderate", 3, 90, IntRange{6, 8}},
		{"high", 4, 90, IntRange{8, 9}},
	}
	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			plan := LegacyIntensityStrategy{Level: tt.level}.Scale(occ)
			p := plan.Prescription
			if p.Sets != tt.sets {
				t.Errorf("sets = %d, want %d", p.Sets, tt.sets)
			}
			if p.Reps != occ.BaseReps {
				t.Errorf("reps = %d, want base %d", p.Reps, occ.BaseReps)
			}
			if p.RestSeconds != tt.rest {
				t.Errorf("rest = %d, want %d", p.RestSeconds, tt.rest)
			}
			if p.RPE != tt.rpe {
				t.Errorf("RPE = %+v, want %+v", p.RPE, tt.rpe)
			}
		})
	}
}

// TestLegacyIntensityFloorsSets verifies the low level never prescribes zero
// sets.
func TestLegacyIntensityFloorsSets(t *testing.T) {
	occ := barbellOccurrence()
	occ.BaseSets = 1

	plan := LegacyIntensityStrategy{Level: "low"}.Scale(occ)
	if plan.Prescription.Sets != 1 {
		t.Errorf("sets = %d, want floor of 1", plan.Prescription.Sets)
	}
}

// TestLegacyIntensityUnknownLevel verifies unknown levels fall back to
// moderate.
func TestLegacyIntensityUnknownLevel(t *testing.T) {
	occ := barbellOccurrence()
	got := LegacyIntensityStrategy{Level: "brutal"}.Scale(occ)
	want := LegacyIntensityStrategy{Level: "moderate"}.Scale(occ)
	if got.Prescription != want.Prescription {
		t.Errorf("unknown level prescription %+v, want moderate %+v", got.Prescription, want.Prescription)
	}
}

// TestForSession verifies strategy selection by snapshot presence.
func TestForSession(t *testing.T) {
	withSnapshot := &models.WorkoutSession{Snapshot: &models.ScalingSnapshot{
		CategoryID: 1, Phase: models.PhaseGPP,
		AgeGroup: models.AgeGroupAdult, ExperienceYears: 2,
	}}
	if _, ok := ForSession(withSnapshot).(SnapshotStrategy); !ok {
		t.Error("session with snapshot should use SnapshotStrategy")
	}

	level := "high"
	legacy := &models.WorkoutSession{TargetIntensity: &level}
	strategy, ok := ForSession(legacy).(LegacyIntensityStrategy)
	if !ok {
		t.Fatal("session without snapshot should use LegacyIntensityStrategy")
	}
	if strategy.Level != "high" {
		t.Errorf("level = %q, want %q", strategy.Level, "high")
	}

	bare := &models.WorkoutSession{}
	strategy, ok = ForSession(bare).(LegacyIntensityStrategy)
	if !ok {
		t.Fatal("bare session should use LegacyIntensityStrategy")
	}
	if strategy.Level != "moderate" {
		t.Errorf("default level = %q, want %q", strategy.Level, "moderate")
	}
}
