package scaling

import (
	"github.com/google/uuid"

	"github.com/meltforce/periodize/internal/models"
)

// variantTier names which declared progression of a bodyweight exercise to
// prescribe.
type variantTier int

const (
	tierBase variantTier = iota
	tierEasier
	tierHarder
)

// VariantChoice is the result of bodyweight variant selection.
type VariantChoice struct {
	SelectedID  uuid.UUID `json:"selected_id"`
	Substituted bool      `json:"substituted"`
}

// tierFor returns the prescribed tier for a phase and experience bucket.
// GPP regresses novices to the easier variant; SSP progresses advanced
// athletes to the harder one; everyone else stays on base.
func tierFor(phase models.Phase, bucket models.ExperienceBucket) variantTier {
	switch phase {
	case models.PhaseGPP:
		if bucket == models.ExperienceNovice {
			return tierEasier
		}
	case models.PhaseSSP:
		if bucket == models.ExperienceAdvanced {
			return tierHarder
		}
	}
	return tierBase
}

// SelectVariant picks which exercise variant to prescribe. A missing
// progression is normal: when the prescribed tier has no declared variant the
// base exercise is kept and no substitution is reported. Never fails.
func SelectVariant(baseID uuid.UUID, phase models.Phase, bucket models.ExperienceBucket, easier, harder *uuid.UUID) VariantChoice {
	switch tierFor(phase, bucket) {
	case tierEasier:
		if easier != nil {
			return VariantChoice{SelectedID: *easier, Substituted: true}
		}
	case tierHarder:
		if harder != nil {
			return VariantChoice{SelectedID: *harder, Substituted: true}
		}
	}
	return VariantChoice{SelectedID: baseID}
}
