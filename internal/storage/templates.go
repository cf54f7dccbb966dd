package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/meltforce/periodize/internal/models"
)

const templateColumns = `t.id, t.category_id, t.phase, t.skill_level, t.week, t.day, t.name`

// TemplateByID retrieves a template with its exercises, or nil when the id
// no longer resolves (stale override references land here).
func (db *DB) TemplateByID(ctx context.Context, id uuid.UUID) (*models.ProgramTemplate, error) {
	row := db.Pool.QueryRow(ctx,
		`SELECT `+templateColumns+` FROM templates t WHERE t.id = $1`, id)
	return db.scanTemplateWithExercises(ctx, row)
}

// TemplateForSlot retrieves the default template for a (category, phase,
// skill level, week, day) key, or nil for a rest day.
func (db *DB) TemplateForSlot(ctx context.Context, categoryID int, skillLevel string, slot models.WorkoutSlot) (*models.ProgramTemplate, error) {
	row := db.Pool.QueryRow(ctx,
		`SELECT `+templateColumns+` FROM templates t
		 WHERE t.category_id = $1 AND t.phase = $2 AND t.skill_level = $3
		   AND t.week = $4 AND t.day = $5`,
		categoryID, string(slot.Phase), skillLevel, slot.Week, slot.Day)
	return db.scanTemplateWithExercises(ctx, row)
}

func (db *DB) scanTemplateWithExercises(ctx context.Context, row pgx.Row) (*models.ProgramTemplate, error) {
	var t models.ProgramTemplate
	var phase string
	err := row.Scan(&t.ID, &t.CategoryID, &phase, &t.SkillLevel, &t.Week, &t.Day, &t.Name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scanning template: %w", err)
	}
	t.Phase = models.Phase(phase)

	exercises, err := db.templateExercises(ctx, t.ID)
	if err != nil {
		return nil, err
	}
	t.Exercises = exercises
	return &t, nil
}

func (db *DB) templateExercises(ctx context.Context, templateID uuid.UUID) ([]models.ExerciseOccurrence, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT e.id, e.name, e.tags, e.equipment, e.easier_id, e.harder_id,
		 te.order_index, te.base_sets, te.base_reps, te.rest_seconds
		 FROM template_exercises te
		 JOIN exercises e ON e.id = te.exercise_id
		 WHERE te.template_id = $1
		 ORDER BY te.order_index ASC`,
		templateID)
	if err != nil {
		return nil, fmt.Errorf("querying template exercises: %w", err)
	}
	defer rows.Close()

	var result []models.ExerciseOccurrence
	for rows.Next() {
		var occ models.ExerciseOccurrence
		if err := rows.Scan(&occ.Exercise.ID, &occ.Exercise.Name, &occ.Exercise.Tags,
			&occ.Exercise.Equipment, &occ.Exercise.EasierID, &occ.Exercise.HarderID,
			&occ.OrderIndex, &occ.BaseSets, &occ.BaseReps, &occ.RestSeconds); err != nil {
			return nil, fmt.Errorf("scanning template exercise: %w", err)
		}
		result = append(result, occ)
	}
	return result, rows.Err()
}

// UpsertExercise writes a catalog exercise. Used by the seeder only.
func (db *DB) UpsertExercise(ctx context.Context, e models.Exercise) error {
	_, err := db.Pool.Exec(ctx,
		`INSERT INTO exercises (id, name, tags, equipment, easier_id, harder_id)
		 VALUES ($1,$2,$3,$4,$5,$6)
		 ON CONFLICT (id) DO UPDATE SET
		   name = EXCLUDED.name, tags = EXCLUDED.tags, equipment = EXCLUDED.equipment,
		   easier_id = EXCLUDED.easier_id, harder_id = EXCLUDED.harder_id`,
		e.ID, e.Name, e.Tags, e.Equipment, e.EasierID, e.HarderID)
	if err != nil {
		return fmt.Errorf("upserting exercise: %w", err)
	}
	return nil
}

// UpsertTemplate writes a catalog template and replaces its exercise list.
// Used by the seeder only.
func (db *DB) UpsertTemplate(ctx context.Context, t models.ProgramTemplate) error {
	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning template upsert: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx,
		`INSERT INTO templates (id, category_id, phase, skill_level, week, day, name)
		 VALUES ($1,$2,$3,$4,$5,$6,$7)
		 ON CONFLICT (category_id, phase, skill_level, week, day) DO UPDATE SET
		   name = EXCLUDED.name`,
		t.ID, t.CategoryID, string(t.Phase), t.SkillLevel, t.Week, t.Day, t.Name)
	if err != nil {
		return fmt.Errorf("upserting template: %w", err)
	}

	if _, err := tx.Exec(ctx,
		`DELETE FROM template_exercises WHERE template_id = $1`, t.ID); err != nil {
		return fmt.Errorf("clearing template exercises: %w", err)
	}
	for _, occ := range t.Exercises {
		_, err := tx.Exec(ctx,
			`INSERT INTO template_exercises (template_id, exercise_id, order_index, base_sets, base_reps, rest_seconds)
			 VALUES ($1,$2,$3,$4,$5,$6)`,
			t.ID, occ.Exercise.ID, occ.OrderIndex, occ.BaseSets, occ.BaseReps, occ.RestSeconds)
		if err != nil {
			return fmt.Errorf("inserting template exercise: %w", err)
		}
	}

	return tx.Commit(ctx)
}
