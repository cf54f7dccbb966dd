// Package seed loads the exercise and template catalog from YAML files into
// Postgres. Runs are idempotent: catalog rows are upserted by id and a local
// SQLite state database skips files that have not changed since the last run.
package seed

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/meltforce/periodize/internal/models"
)

// catalogWriter is the slice of the storage layer the loader needs.
type catalogWriter interface {
	UpsertExercise(ctx context.Context, e models.Exercise) error
	UpsertTemplate(ctx context.Context, t models.ProgramTemplate) error
}

// Loader applies catalog files to the database.
type Loader struct {
	db  catalogWriter
	log *slog.Logger
}

// NewLoader creates a catalog loader.
func NewLoader(db catalogWriter, log *slog.Logger) *Loader {
	return &Loader{db: db, log: log}
}

// Stats counts what one catalog file contributed.
type Stats struct {
	Exercises int
	Templates int
}

type catalogFile struct {
	Exercises []exerciseEntry `yaml:"exercises"`
	Templates []templateEntry `yaml:"templates"`
}

type exerciseEntry struct {
	ID        uuid.UUID  `yaml:"id"`
	Name      string     `yaml:"name"`
	Tags      []string   `yaml:"tags"`
	Equipment []string   `yaml:"equipment"`
	EasierID  *uuid.UUID `yaml:"easier_id"`
	HarderID  *uuid.UUID `yaml:"harder_id"`
}

type templateEntry struct {
	ID         uuid.UUID      `yaml:"id"`
	CategoryID int            `yaml:"category_id"`
	Phase      string         `yaml:"phase"`
	SkillLevel string         `yaml:"skill_level"`
	Week       int            `yaml:"week"`
	Day        int            `yaml:"day"`
	Name       string         `yaml:"name"`
	Exercises  []exerciseSlot `yaml:"exercises"`
}

type exerciseSlot struct {
	ExerciseID  uuid.UUID `yaml:"exercise_id"`
	Sets        int       `yaml:"sets"`
	Reps        int       `yaml:"reps"`
	RestSeconds int       `yaml:"rest_seconds"`
}

// LoadFile parses and applies a single catalog file.
func (l *Loader) LoadFile(ctx context.Context, path string) (Stats, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Stats{}, fmt.Errorf("reading catalog file: %w", err)
	}
	return l.Load(ctx, data, path)
}

// Load parses and applies one YAML catalog payload. Exercises are written
// before templates so intra-file references resolve. The name is only used in
// error messages and logs.
func (l *Loader) Load(ctx context.Context, data []byte, name string) (Stats, error) {
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return Stats{}, fmt.Errorf("parsing catalog %s: %w", name, err)
	}
	if err := validateCatalog(&file); err != nil {
		return Stats{}, fmt.Errorf("validating catalog %s: %w", name, err)
	}

	var stats Stats
	for _, e := range file.Exercises {
		err := l.db.UpsertExercise(ctx, models.Exercise{
			ID: e.ID, Name: e.Name, Tags: e.Tags, Equipment: e.Equipment,
			EasierID: e.EasierID, HarderID: e.HarderID,
		})
		if err != nil {
			return stats, err
		}
		stats.Exercises++
	}

	for _, t := range file.Templates {
		tmpl := models.ProgramTemplate{
			ID:         t.ID,
			CategoryID: t.CategoryID,
			Phase:      models.Phase(t.Phase),
			SkillLevel: t.SkillLevel,
			Week:       t.Week,
			Day:        t.Day,
			Name:       t.Name,
		}
		for i, slot := range t.Exercises {
			tmpl.Exercises = append(tmpl.Exercises, models.ExerciseOccurrence{
				Exercise:    models.Exercise{ID: slot.ExerciseID},
				OrderIndex:  i,
				BaseSets:    slot.Sets,
				BaseReps:    slot.Reps,
				RestSeconds: slot.RestSeconds,
			})
		}
		if err := l.db.UpsertTemplate(ctx, tmpl); err != nil {
			return stats, err
		}
		stats.Templates++
	}

	l.log.Info("applied catalog", "name", name,
		"exercises", stats.Exercises, "templates", stats.Templates)
	return stats, nil
}

func validateCatalog(file *catalogFile) error {
	known := make(map[uuid.UUID]bool, len(file.Exercises))
	for i, e := range file.Exercises {
		if e.ID == uuid.Nil {
			return fmt.Errorf("exercise %d: id is required", i)
		}
		if e.Name == "" {
			return fmt.Errorf("exercise %s: name is required", e.ID)
		}
		known[e.ID] = true
	}

	for i, t := range file.Templates {
		if t.ID == uuid.Nil {
			return fmt.Errorf("template %d: id is required", i)
		}
		if !models.Phase(t.Phase).Valid() {
			return fmt.Errorf("template %s: unknown phase %q", t.ID, t.Phase)
		}
		if t.CategoryID < 1 || t.CategoryID > len(models.SportCategories) {
			return fmt.Errorf("template %s: category_id %d out of range", t.ID, t.CategoryID)
		}
		if t.Week < 1 || t.Week > models.WeeksPerPhase {
			return fmt.Errorf("template %s: week %d out of range", t.ID, t.Week)
		}
		if t.Day < 1 {
			return fmt.Errorf("template %s: day %d out of range", t.ID, t.Day)
		}
		if t.SkillLevel == "" {
			return fmt.Errorf("template %s: skill_level is required", t.ID)
		}
		for _, slot := range t.Exercises {
			if slot.ExerciseID == uuid.Nil {
				return fmt.Errorf("template %s: exercise_id is required", t.ID)
			}
			if slot.Sets < 1 || slot.Reps < 1 {
				return fmt.Errorf("template %s: exercise %s needs positive sets and reps", t.ID, slot.ExerciseID)
			}
		}
	}
	return nil
}
