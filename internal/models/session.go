package models

import (
	"time"

	"github.com/google/uuid"
)

// SessionStatus is the state of one workout execution attempt. in_progress is
// the initial state; completed and abandoned are terminal and mutually
// exclusive.
type SessionStatus string

const (
	SessionInProgress SessionStatus = "in_progress"
	SessionCompleted  SessionStatus = "completed"
	SessionAbandoned  SessionStatus = "abandoned"
)

// Terminal reports whether the status permits no further transitions.
func (s SessionStatus) Terminal() bool {
	return s == SessionCompleted || s == SessionAbandoned
}

// SessionSet is one set's completion record inside a session.
type SessionSet struct {
	SetNumber int      `json:"set_number"`
	Reps      int      `json:"reps"`
	WeightKg  *float64 `json:"weight_kg,omitempty"`
	Completed bool     `json:"completed"`
}

// SessionExercise is one exercise's completion records inside a session.
type SessionExercise struct {
	ExerciseID uuid.UUID    `json:"exercise_id"`
	Sets       []SessionSet `json:"sets"`
}

// ScalingSnapshot freezes the profile inputs used for scaling at session
// start, so later reads reproduce identical numbers even after the athlete's
// profile changes. Sessions predating the snapshot have none and scale
// through the legacy intensity table instead.
type ScalingSnapshot struct {
	CategoryID      int      `json:"category_id"`
	Phase           Phase    `json:"phase"`
	AgeGroup        AgeGroup `json:"age_group"`
	ExperienceYears int      `json:"experience_years"`
}

// WorkoutSession is one execution attempt of a template.
type WorkoutSession struct {
	ID              uuid.UUID         `json:"id"`
	UserID          int               `json:"user_id"`
	ProgramID       uuid.UUID         `json:"program_id"`
	TemplateID      uuid.UUID         `json:"template_id"`
	Status          SessionStatus     `json:"status"`
	StartedAt       time.Time         `json:"started_at"`
	CompletedAt     *time.Time        `json:"completed_at,omitempty"`
	DurationSec     *int              `json:"duration_sec,omitempty"`
	Exercises       []SessionExercise `json:"exercises"`
	ExerciseOrder   []uuid.UUID       `json:"exercise_order,omitempty"`
	Snapshot        *ScalingSnapshot  `json:"scaling_snapshot,omitempty"`
	TargetIntensity *string           `json:"target_intensity,omitempty"`
}
