package scaling

import (
	"github.com/google/uuid"

	"github.com/meltforce/periodize/internal/models"
)

// ExercisePlan is one exercise as prescribed for a session read: the
// (possibly substituted) exercise to perform plus its scaled numbers.
type ExercisePlan struct {
	ExerciseID   uuid.UUID    `json:"exercise_id"`
	Substituted  bool         `json:"substituted"`
	Prescription Prescription `json:"prescription"`
}

// Strategy scales one template occurrence into a concrete plan. Two
// implementations exist: SnapshotStrategy for sessions carrying a scaling
// snapshot, and LegacyIntensityStrategy for sessions created before the
// snapshot was introduced.
type Strategy interface {
	Scale(occ models.ExerciseOccurrence) ExercisePlan
}

// SnapshotStrategy resolves prescriptions from the profile frozen at session
// start, through the category rules matrix and the bodyweight variant
// selector.
type SnapshotStrategy struct {
	Snapshot models.ScalingSnapshot
}

func (s SnapshotStrategy) Scale(occ models.ExerciseOccurrence) ExercisePlan {
	focus := occ.Exercise.Focus()
	p := Resolve(s.Snapshot.CategoryID, s.Snapshot.Phase, s.Snapshot.AgeGroup, s.Snapshot.ExperienceYears, focus)

	plan := ExercisePlan{ExerciseID: occ.Exercise.ID, Prescription: p}
	if focus == models.FocusBodyweight {
		choice := SelectVariant(occ.Exercise.ID, s.Snapshot.Phase,
			models.BucketForYears(s.Snapshot.ExperienceYears),
			occ.Exercise.EasierID, occ.Exercise.HarderID)
		plan.ExerciseID = choice.SelectedID
		plan.Substituted = choice.Substituted
	}
	return plan
}

// LegacyIntensityStrategy is the compatibility path for sessions without a
// scaling snapshot. A coarse Low/Moderate/High level adjusts the template's
// authored base volume and supplies fixed effort targets. Kept as a named
// strategy so it stays isolated and easy to retire.
type LegacyIntensityStrategy struct {
	Level string
}

// legacyLevels maps the coarse intensity level to its adjustments.
var legacyLevels = map[string]struct {
	SetsDelta int
	RestDelta int
	RPE       IntRange
	Percent   FloatRange
}{
	"low":      {SetsDelta: -1, RestDelta: 30, RPE: IntRange{5, 6}, Percent: FloatRange{0.50, 0.65}},
	"moderate": {SetsDelta: 0, RestDelta: 0, RPE: IntRange{6, 8}, Percent: FloatRange{0.65, 0.80}},
	"high":     {SetsDelta: 1, RestDelta: 0, RPE: IntRange{8, 9}, Percent: FloatRange{0.75, 0.85}},
}

func (l LegacyIntensityStrategy) Scale(occ models.ExerciseOccurrence) ExercisePlan {
	adj, ok := legacyLevels[l.Level]
	if !ok {
		adj = legacyLevels["moderate"]
	}

	sets := occ.BaseSets + adj.SetsDelta
	if sets < 1 {
		sets = 1
	}

	return ExercisePlan{
		ExerciseID: occ.Exercise.ID,
		Prescription: Prescription{
			Sets:        sets,
			Reps:        occ.BaseReps,
			RestSeconds: occ.RestSeconds + adj.RestDelta,
			Tempo:       "2.0.2",
			RPE:         adj.RPE,
			Percent1RM:  adj.Percent,
		},
	}
}

// ForSession returns the scaling strategy appropriate to a session: snapshot
// scaling when one was captured, otherwise the legacy intensity table.
func ForSession(sess *models.WorkoutSession) Strategy {
	if sess.Snapshot != nil {
		return SnapshotStrategy{Snapshot: *sess.Snapshot}
	}
	level := "moderate"
	if sess.TargetIntensity != nil {
		level = *sess.TargetIntensity
	}
	return LegacyIntensityStrategy{Level: level}
}
