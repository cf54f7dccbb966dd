package models

import (
	"strings"

	"github.com/google/uuid"
)

// Focus classifies an exercise for parameter resolution.
type Focus string

const (
	FocusStrength   Focus = "strength"
	FocusPower      Focus = "power"
	FocusBodyweight Focus = "bodyweight"
)

// powerTags are the tags that classify an exercise as power-focused.
var powerTags = map[string]bool{
	"power":      true,
	"explosive":  true,
	"plyometric": true,
	"reactive":   true,
}

// DetectFocus derives the exercise focus from catalog tags and equipment.
// Bodyweight wins when no equipment (or only bodyweight) is declared, then
// power tags, then strength as the default.
func DetectFocus(tags, equipment []string) Focus {
	if len(equipment) == 0 {
		return FocusBodyweight
	}
	if len(equipment) == 1 && strings.EqualFold(equipment[0], "bodyweight") {
		return FocusBodyweight
	}
	for _, t := range tags {
		if powerTags[strings.ToLower(t)] {
			return FocusPower
		}
	}
	return FocusStrength
}

// Exercise is a read-only catalog entry. EasierID/HarderID reference the
// declared bodyweight progression variants, when any exist.
type Exercise struct {
	ID        uuid.UUID  `json:"id"`
	Name      string     `json:"name"`
	Tags      []string   `json:"tags,omitempty"`
	Equipment []string   `json:"equipment,omitempty"`
	EasierID  *uuid.UUID `json:"easier_id,omitempty"`
	HarderID  *uuid.UUID `json:"harder_id,omitempty"`
}

// Focus classifies the exercise from its own tags and equipment.
func (e *Exercise) Focus() Focus { return DetectFocus(e.Tags, e.Equipment) }

// ExerciseOccurrence is one exercise's appearance inside a template, with its
// authored base volume.
type ExerciseOccurrence struct {
	Exercise    Exercise `json:"exercise"`
	OrderIndex  int      `json:"order_index"`
	BaseSets    int      `json:"base_sets"`
	BaseReps    int      `json:"base_reps"`
	RestSeconds int      `json:"rest_seconds"`
}

// ProgramTemplate is a read-only catalog workout, keyed uniquely by
// (category, phase, skill level, week, day).
type ProgramTemplate struct {
	ID         uuid.UUID            `json:"id"`
	CategoryID int                  `json:"category_id"`
	Phase      Phase                `json:"phase"`
	SkillLevel string               `json:"skill_level"`
	Week       int                  `json:"week"`
	Day        int                  `json:"day"`
	Name       string               `json:"name"`
	Exercises  []ExerciseOccurrence `json:"exercises"`
}

// Slot returns the template's home coordinate in the default grid.
func (t *ProgramTemplate) Slot() WorkoutSlot {
	return WorkoutSlot{Phase: t.Phase, Week: t.Week, Day: t.Day}
}
