// Package scaling computes athlete-specific exercise prescriptions from the
// category/phase rules matrix, age and experience modifiers, and the
// bodyweight variant progression.
package scaling

import "github.com/meltforce/periodize/internal/models"

// IntRange is an inclusive integer range.
type IntRange struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// FloatRange is an inclusive float range, used for %1RM targets.
type FloatRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// FocusParams is one cell of the rules matrix: the prescription ranges for a
// single (category, phase, focus) combination.
type FocusParams struct {
	Percent1RM  FloatRange
	Reps        IntRange
	Sets        IntRange
	RestSeconds int
	Tempo       string
	RPE         IntRange
}

// phaseCell holds the strength and power cells for a (category, phase) pair.
// Bodyweight work resolves against the strength cell.
type phaseCell struct {
	Strength FocusParams
	Power    FocusParams
}

// Position selects a value within a range based on the athlete's age and
// experience.
type Position string

const (
	PositionLowest       Position = "lowest"
	PositionLowestPlus1  Position = "lowest_plus_1"
	PositionLowestPlus2  Position = "lowest_plus_2"
	PositionSecondLowest Position = "second_lowest"
	PositionMiddle       Position = "middle"
	PositionMaxMinus2    Position = "max_minus_2"
	PositionMaxMinus1    Position = "max_minus_1"
	PositionMax          Position = "max"
)

// ageExperienceModifier selects range positions for sets and reps.
type ageExperienceModifier struct {
	Sets Position
	Reps Position
}

// ageSafetyConstraint caps computed values for an age group. Caps only ever
// lower a value.
type ageSafetyConstraint struct {
	MaxSets           *int
	Percent1RMCeiling float64
}

func intPtr(v int) *int { return &v }

// categoryPhaseConfigs is the full rules matrix, seeded from the coaching
// catalog. Strength %1RM maxima step 0.75 / 0.85 / 0.90 across GPP/SPP/SSP
// in every category.
var categoryPhaseConfigs = map[int]map[models.Phase]phaseCell{
	1: { // Endurance
		models.PhaseGPP: {
			Strength: FocusParams{FloatRange{0.60, 0.75}, IntRange{10, 15}, IntRange{2, 4}, 60, "2.1.2", IntRange{6, 7}},
			Power:    FocusParams{FloatRange{0.30, 0.45}, IntRange{6, 10}, IntRange{2, 3}, 90, "x.x.x", IntRange{6, 7}},
		},
		models.PhaseSPP: {
			Strength: FocusParams{FloatRange{0.70, 0.85}, IntRange{6, 10}, IntRange{3, 4}, 90, "2.0.1", IntRange{7, 8}},
			Power:    FocusParams{FloatRange{0.35, 0.50}, IntRange{4, 8}, IntRange{3, 4}, 120, "x.x.x", IntRange{7, 8}},
		},
		models.PhaseSSP: {
			Strength: FocusParams{FloatRange{0.80, 0.90}, IntRange{3, 6}, IntRange{3, 5}, 120, "2.0.1", IntRange{8, 9}},
			Power:    FocusParams{FloatRange{0.40, 0.55}, IntRange{3, 5}, IntRange{3, 4}, 150, "x.x.x", IntRange{8, 9}},
		},
	},
	2: { // Power
		models.PhaseGPP: {
			Strength: FocusParams{FloatRange{0.60, 0.75}, IntRange{8, 12}, IntRange{3, 5}, 90, "3.0.1", IntRange{6, 7}},
			Power:    FocusParams{FloatRange{0.30, 0.50}, IntRange{4, 6}, IntRange{3, 4}, 120, "x.x.x", IntRange{6, 7}},
		},
		models.PhaseSPP: {
			Strength: FocusParams{FloatRange{0.70, 0.85}, IntRange{4, 8}, IntRange{3, 5}, 120, "2.0.1", IntRange{7, 8}},
			Power:    FocusParams{FloatRange{0.40, 0.60}, IntRange{3, 5}, IntRange{3, 5}, 150, "x.x.x", IntRange{7, 9}},
		},
		models.PhaseSSP: {
			Strength: FocusParams{FloatRange{0.80, 0.90}, IntRange{2, 5}, IntRange{4, 6}, 120, "x.x.x", IntRange{9, 9}},
			Power:    FocusParams{FloatRange{0.50, 0.70}, IntRange{2, 4}, IntRange{4, 6}, 180, "x.x.x", IntRange{9, 9}},
		},
	},
	3: { // Team
		models.PhaseGPP: {
			Strength: FocusParams{FloatRange{0.60, 0.75}, IntRange{8, 12}, IntRange{3, 4}, 75, "2.0.2", IntRange{6, 7}},
			Power:    FocusParams{FloatRange{0.30, 0.45}, IntRange{5, 8}, IntRange{2, 4}, 90, "x.x.x", IntRange{6, 7}},
		},
		models.PhaseSPP: {
			Strength: FocusParams{FloatRange{0.70, 0.85}, IntRange{5, 8}, IntRange{3, 5}, 105, "2.0.1", IntRange{7, 8}},
			Power:    FocusParams{FloatRange{0.35, 0.55}, IntRange{3, 6}, IntRange{3, 4}, 120, "x.x.x", IntRange{7, 8}},
		},
		models.PhaseSSP: {
			Strength: FocusParams{FloatRange{0.80, 0.90}, IntRange{3, 5}, IntRange{3, 5}, 120, "2.0.1", IntRange{8, 9}},
			Power:    FocusParams{FloatRange{0.45, 0.60}, IntRange{2, 5}, IntRange{3, 5}, 150, "x.x.x", IntRange{8, 9}},
		},
	},
	4: { // Combat
		models.PhaseGPP: {
			Strength: FocusParams{FloatRange{0.60, 0.75}, IntRange{8, 12}, IntRange{3, 5}, 90, "3.1.1", IntRange{6, 7}},
			Power:    FocusParams{FloatRange{0.30, 0.50}, IntRange{5, 8}, IntRange{3, 4}, 90, "x.x.x", IntRange{6, 7}},
		},
		models.PhaseSPP: {
			Strength: FocusParams{FloatRange{0.70, 0.85}, IntRange{5, 8}, IntRange{3, 5}, 120, "2.0.1", IntRange{7, 8}},
			Power:    FocusParams{FloatRange{0.40, 0.55}, IntRange{3, 6}, IntRange{3, 5}, 120, "x.x.x", IntRange{7, 8}},
		},
		models.PhaseSSP: {
			Strength: FocusParams{FloatRange{0.80, 0.90}, IntRange{2, 5}, IntRange{4, 6}, 150, "2.0.x", IntRange{8, 9}},
			Power:    FocusParams{FloatRange{0.45, 0.65}, IntRange{2, 4}, IntRange{3, 5}, 180, "x.x.x", IntRange{8, 9}},
		},
	},
}

// ageExperienceModifiers selects the range positions per (age group,
// experience bucket).
var ageExperienceModifiers = map[models.AgeGroup]map[models.ExperienceBucket]ageExperienceModifier{
	models.AgeGroupYouth: {
		models.ExperienceNovice:       {Sets: PositionLowest, Reps: PositionLowest},
		models.ExperienceIntermediate: {Sets: PositionSecondLowest, Reps: PositionLowestPlus1},
		models.ExperienceAdvanced:     {Sets: PositionMax, Reps: PositionMiddle},
	},
	models.AgeGroupAdult: {
		models.ExperienceNovice:       {Sets: PositionLowestPlus1, Reps: PositionLowestPlus1},
		models.ExperienceIntermediate: {Sets: PositionMiddle, Reps: PositionMiddle},
		models.ExperienceAdvanced:     {Sets: PositionMax, Reps: PositionMax},
	},
	models.AgeGroupMasters: {
		models.ExperienceNovice:       {Sets: PositionLowest, Reps: PositionLowestPlus2},
		models.ExperienceIntermediate: {Sets: PositionMiddle, Reps: PositionMiddle},
		models.ExperienceAdvanced:     {Sets: PositionMaxMinus1, Reps: PositionMaxMinus2},
	},
}

// ageSafetyConstraints caps load and volume per age group. Youth athletes
// carry a hard %1RM ceiling but no sets cap; masters carry both.
var ageSafetyConstraints = map[models.AgeGroup]ageSafetyConstraint{
	models.AgeGroupYouth:   {Percent1RMCeiling: 0.85},
	models.AgeGroupAdult:   {Percent1RMCeiling: 1.00},
	models.AgeGroupMasters: {MaxSets: intPtr(5), Percent1RMCeiling: 0.90},
}
