package scaling

import (
	"fmt"
	"math"

	"github.com/meltforce/periodize/internal/models"
)

// Prescription is a concrete, athlete-specific exercise prescription.
type Prescription struct {
	Sets        int        `json:"sets"`
	Reps        int        `json:"reps"`
	RestSeconds int        `json:"rest_seconds"`
	Tempo       string     `json:"tempo"`
	RPE         IntRange   `json:"rpe"`
	Percent1RM  FloatRange `json:"percent_1rm"`
}

// Resolve computes the prescription for one exercise. All inputs are closed
// enumerations; an unrecognized combination is a programming error and
// panics rather than falling back to a wrong catalog cell.
func Resolve(categoryID int, phase models.Phase, ageGroup models.AgeGroup, experienceYears int, focus models.Focus) Prescription {
	cell, ok := categoryPhaseConfigs[categoryID][phase]
	if !ok {
		panic(fmt.Sprintf("scaling: no config for category %d phase %q", categoryID, phase))
	}

	params := cell.Strength
	if focus == models.FocusPower {
		params = cell.Power
	}

	bucket := models.BucketForYears(experienceYears)
	mod, ok := ageExperienceModifiers[ageGroup][bucket]
	if !ok {
		panic(fmt.Sprintf("scaling: no modifier for age group %q bucket %q", ageGroup, bucket))
	}
	safety, ok := ageSafetyConstraints[ageGroup]
	if !ok {
		panic(fmt.Sprintf("scaling: no safety constraint for age group %q", ageGroup))
	}

	sets := valueFromPosition(params.Sets, mod.Sets)
	if safety.MaxSets != nil && sets > *safety.MaxSets {
		sets = *safety.MaxSets
	}

	return Prescription{
		Sets:        sets,
		Reps:        valueFromPosition(params.Reps, mod.Reps),
		RestSeconds: params.RestSeconds,
		Tempo:       params.Tempo,
		RPE:         params.RPE,
		Percent1RM: FloatRange{
			Min: math.Min(params.Percent1RM.Min, safety.Percent1RMCeiling),
			Max: math.Min(params.Percent1RM.Max, safety.Percent1RMCeiling),
		},
	}
}

// valueFromPosition evaluates a position selector against a range. The
// result is always clamped into [r.Min, r.Max], so narrow ranges degrade to
// their nearest bound instead of producing out-of-range values.
func valueFromPosition(r IntRange, p Position) int {
	var v int
	switch p {
	case PositionLowest:
		v = r.Min
	case PositionLowestPlus1, PositionSecondLowest:
		v = r.Min + 1
	case PositionLowestPlus2:
		v = r.Min + 2
	case PositionMiddle:
		v = int(math.Round(float64(r.Min+r.Max) / 2))
	case PositionMaxMinus2:
		v = r.Max - 2
	case PositionMaxMinus1:
		v = r.Max - 1
	case PositionMax:
		v = r.Max
	default:
		panic(fmt.Sprintf("scaling: unknown position %q", p))
	}
	if v < r.Min {
		v = r.Min
	}
	if v > r.Max {
		v = r.Max
	}
	return v
}
