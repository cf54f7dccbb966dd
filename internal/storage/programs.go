package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/meltforce/periodize/internal/models"
)

// Program retrieves a user's program, or nil when none matches.
func (db *DB) Program(ctx context.Context, userID int, programID uuid.UUID) (*models.UserProgram, error) {
	row := db.Pool.QueryRow(ctx,
		`SELECT id, user_id, category_id, skill_level, age_group, experience_years,
		 start_date, training_weekdays, current_phase, current_week, current_day,
		 last_workout_at, created_at
		 FROM programs WHERE id = $1 AND user_id = $2`,
		programID, userID)
	return scanProgram(row)
}

// ActiveProgram retrieves the user's most recently created program, or nil.
func (db *DB) ActiveProgram(ctx context.Context, userID int) (*models.UserProgram, error) {
	row := db.Pool.QueryRow(ctx,
		`SELECT id, user_id, category_id, skill_level, age_group, experience_years,
		 start_date, training_weekdays, current_phase, current_week, current_day,
		 last_workout_at, created_at
		 FROM programs WHERE user_id = $1
		 ORDER BY created_at DESC LIMIT 1`,
		userID)
	return scanProgram(row)
}

// TouchLastWorkout records when the program's most recent workout completed.
func (db *DB) TouchLastWorkout(ctx context.Context, programID uuid.UUID, at time.Time) error {
	_, err := db.Pool.Exec(ctx,
		`UPDATE programs SET last_workout_at = $2 WHERE id = $1`, programID, at)
	if err != nil {
		return fmt.Errorf("updating last workout: %w", err)
	}
	return nil
}

func scanProgram(row pgx.Row) (*models.UserProgram, error) {
	var p models.UserProgram
	var phase string
	var weekdays []int32
	err := row.Scan(&p.ID, &p.UserID, &p.CategoryID, &p.SkillLevel, &p.AgeGroup,
		&p.ExperienceYears, &p.StartDate, &weekdays, &phase, &p.CurrentWeek,
		&p.CurrentDay, &p.LastWorkoutAt, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scanning program: %w", err)
	}
	p.CurrentPhase = models.Phase(phase)
	p.TrainingWeekdays = make([]time.Weekday, len(weekdays))
	for i, wd := range weekdays {
		p.TrainingWeekdays[i] = time.Weekday(wd)
	}
	return &p, nil
}
