package scaling

import (
	"testing"

	"github.com/google/uuid"

	"github.com/meltforce/periodize/internal/models"
)

// TestSelectVariantNoviceGPP verifies novices regress to the easier variant
// during GPP when one is declared.
func TestSelectVariantNoviceGPP(t *testing.T) {
	base := uuid.New()
	easier := uuid.New()

	choice := SelectVariant(base, models.PhaseGPP, models.ExperienceNovice, &easier, nil)
	if choice.SelectedID != easier {
		t.Errorf("selected = %s, want easier variant %s", choice.SelectedID, easier)
	}
	if !choice.Substituted {
		t.Error("substitution should be reported")
	}
}

// TestSelectVariantAdvancedSSP verifies advanced athletes progress to the
// harder variant during SSP.
func TestSelectVariantAdvancedSSP(t *testing.T) {
	base := uuid.New()
	harder := uuid.New()

	choice := SelectVariant(base, models.PhaseSSP, models.ExperienceAdvanced, nil, &harder)
	if choice.SelectedID != harder {
		t.Errorf("selected = %s, want harder variant %s", choice.SelectedID, harder)
	}
	if !choice.Substituted {
		t.Error("substitution should be reported")
	}
}

// TestSelectVariantMissingProgression verifies a missing declared variant
// silently keeps the base exercise.
func TestSelectVariantMissingProgression(t *testing.T) {
	base := uuid.New()

	choice := SelectVariant(base, models.PhaseGPP, models.ExperienceNovice, nil, nil)
	if choice.SelectedID != base {
		t.Errorf("selected = %s, want base %s", choice.SelectedID, base)
	}
	if choice.Substituted {
		t.Error("no substitution should be reported when falling back to base")
	}
}

// TestSelectVariantBaseTier verifies everyone outside the two substitution
// corners stays on base even with variants declared.
func TestSelectVariantBaseTier(t *testing.T) {
	base := uuid.New()
	easier := uuid.New()
	harder := uuid.New()

	tests := []struct {
		name   string
		phase  models.Phase
		bucket models.ExperienceBucket
	}{
		{"intermediate gpp", models.PhaseGPP, models.ExperienceIntermediate},
		{"advanced gpp", models.PhaseGPP, models.ExperienceAdvanced},
		{"novice spp", models.PhaseSPP, models.ExperienceNovice},
		{"advanced spp", models.PhaseSPP, models.ExperienceAdvanced},
		{"novice ssp", models.PhaseSSP, models.ExperienceNovice},
		{"intermediate ssp", models.PhaseSSP, models.ExperienceIntermediate},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			choice := SelectVariant(base, tt.phase, tt.bucket, &easier, &harder)
			if choice.SelectedID != base || choice.Substituted {
				t.Errorf("choice = %+v, want base with no substitution", choice)
			}
		})
	}
}
