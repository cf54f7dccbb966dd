package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Phase is a multi-week macrocycle stage. Phases run GPP -> SPP -> SSP and
// the program is terminal after SSP: there is no wrap back to GPP.
type Phase string

const (
	PhaseGPP Phase = "gpp"
	PhaseSPP Phase = "spp"
	PhaseSSP Phase = "ssp"
)

// Phases lists all phases in program order.
var Phases = []Phase{PhaseGPP, PhaseSPP, PhaseSSP}

// Index returns the zero-based position of the phase in the program, or -1
// for an unknown phase.
func (p Phase) Index() int {
	switch p {
	case PhaseGPP:
		return 0
	case PhaseSPP:
		return 1
	case PhaseSSP:
		return 2
	}
	return -1
}

// Valid reports whether p is one of the three defined phases.
func (p Phase) Valid() bool { return p.Index() >= 0 }

// ParsePhase converts a string to a Phase.
func ParsePhase(s string) (Phase, error) {
	p := Phase(s)
	if !p.Valid() {
		return "", fmt.Errorf("unknown phase %q", s)
	}
	return p, nil
}

// AgeGroup buckets athletes for scaling and safety constraints.
type AgeGroup string

const (
	AgeGroupYouth   AgeGroup = "14-17"
	AgeGroupAdult   AgeGroup = "18-35"
	AgeGroupMasters AgeGroup = "36+"
)

// Valid reports whether a is a defined age group.
func (a AgeGroup) Valid() bool {
	return a == AgeGroupYouth || a == AgeGroupAdult || a == AgeGroupMasters
}

// ExperienceBucket is a coarse bucketing of years of training experience.
type ExperienceBucket string

const (
	ExperienceNovice       ExperienceBucket = "0-1"
	ExperienceIntermediate ExperienceBucket = "2-5"
	ExperienceAdvanced     ExperienceBucket = "6+"
)

// BucketForYears maps years of experience to its bucket. The mapping is a
// step function: 0-1 novice, 2-5 intermediate, 6+ advanced.
func BucketForYears(years int) ExperienceBucket {
	switch {
	case years <= 1:
		return ExperienceNovice
	case years <= 5:
		return ExperienceIntermediate
	default:
		return ExperienceAdvanced
	}
}

// SportCategory is an immutable catalog entry grouping sports that share a
// periodization profile.
type SportCategory struct {
	ID     int      `json:"id"`
	Name   string   `json:"name"`
	Sports []string `json:"sports"`
}

// SportCategories is the fixed catalog of categories (ids 1-4).
var SportCategories = []SportCategory{
	{ID: 1, Name: "Endurance", Sports: []string{"running", "cycling", "swimming", "rowing"}},
	{ID: 2, Name: "Power", Sports: []string{"sprinting", "weightlifting", "throwing", "jumping"}},
	{ID: 3, Name: "Team", Sports: []string{"soccer", "basketball", "hockey", "rugby"}},
	{ID: 4, Name: "Combat", Sports: []string{"wrestling", "boxing", "judo", "brazilian jiu-jitsu"}},
}

// UserProgram is the athlete's active program record, supplied by the user
// service and read here for scheduling and scaling inputs.
type UserProgram struct {
	ID               uuid.UUID      `json:"id"`
	UserID           int            `json:"user_id"`
	CategoryID       int            `json:"category_id"`
	SkillLevel       string         `json:"skill_level"`
	AgeGroup         AgeGroup       `json:"age_group"`
	ExperienceYears  int            `json:"experience_years"`
	StartDate        time.Time      `json:"start_date"`
	TrainingWeekdays []time.Weekday `json:"training_weekdays"`
	CurrentPhase     Phase          `json:"current_phase"`
	CurrentWeek      int            `json:"current_week"`
	CurrentDay       int            `json:"current_day"`
	LastWorkoutAt    *time.Time     `json:"last_workout_at,omitempty"`
	CreatedAt        time.Time      `json:"created_at"`
}

// CurrentSlot returns the program cursor as a slot coordinate.
func (p *UserProgram) CurrentSlot() WorkoutSlot {
	return WorkoutSlot{Phase: p.CurrentPhase, Week: p.CurrentWeek, Day: p.CurrentDay}
}
