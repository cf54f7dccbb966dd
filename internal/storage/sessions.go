package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/meltforce/periodize/internal/apperr"
	"github.com/meltforce/periodize/internal/models"
)

const sessionColumns = `id, user_id, program_id, template_id, status, started_at,
 completed_at, duration_sec, exercises, exercise_order,
 snapshot_category_id, snapshot_phase, snapshot_age_group, snapshot_experience_years,
 target_intensity`

// InProgress retrieves the user's in-progress session for a program, or nil.
func (db *DB) InProgress(ctx context.Context, userID int, programID uuid.UUID) (*models.WorkoutSession, error) {
	row := db.Pool.QueryRow(ctx,
		`SELECT `+sessionColumns+` FROM sessions
		 WHERE user_id = $1 AND program_id = $2 AND status = 'in_progress'`,
		userID, programID)
	return scanSession(row)
}

// ByID retrieves a session, or nil when none exists.
func (db *DB) ByID(ctx context.Context, id uuid.UUID) (*models.WorkoutSession, error) {
	row := db.Pool.QueryRow(ctx,
		`SELECT `+sessionColumns+` FROM sessions WHERE id = $1`, id)
	return scanSession(row)
}

// Insert creates a session. The insert runs in a transaction that re-checks
// the one-in-progress invariant under lock; a partial unique index backs it
// up at the storage level. Both paths surface as Conflict.
func (db *DB) Insert(ctx context.Context, sess *models.WorkoutSession) error {
	exercises, order, err := marshalSessionJSON(sess)
	if err != nil {
		return err
	}

	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning session insert: %w", err)
	}
	defer tx.Rollback(ctx)

	var existing uuid.UUID
	err = tx.QueryRow(ctx,
		`SELECT id FROM sessions WHERE user_id = $1 AND status = 'in_progress' FOR UPDATE`,
		sess.UserID).Scan(&existing)
	if err == nil {
		return apperr.New(apperr.Conflict, "user %d already has session %s in progress", sess.UserID, existing)
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("checking in-progress session: %w", err)
	}

	var snapCategory, snapYears *int
	var snapPhase, snapAgeGroup *string
	if s := sess.Snapshot; s != nil {
		snapCategory = &s.CategoryID
		snapYears = &s.ExperienceYears
		phase := string(s.Phase)
		ageGroup := string(s.AgeGroup)
		snapPhase = &phase
		snapAgeGroup = &ageGroup
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO sessions (id, user_id, program_id, template_id, status, started_at,
		 completed_at, duration_sec, exercises, exercise_order,
		 snapshot_category_id, snapshot_phase, snapshot_age_group, snapshot_experience_years,
		 target_intensity)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)`,
		sess.ID, sess.UserID, sess.ProgramID, sess.TemplateID, string(sess.Status),
		sess.StartedAt, sess.CompletedAt, sess.DurationSec, exercises, order,
		snapCategory, snapPhase, snapAgeGroup, snapYears, sess.TargetIntensity)
	if err != nil {
		if isUniqueViolation(err) {
			return apperr.Wrap(apperr.Conflict, err, "concurrent session start")
		}
		return fmt.Errorf("inserting session: %w", err)
	}

	return tx.Commit(ctx)
}

// Update rewrites a session's mutable fields.
func (db *DB) Update(ctx context.Context, sess *models.WorkoutSession) error {
	exercises, order, err := marshalSessionJSON(sess)
	if err != nil {
		return err
	}

	tag, err := db.Pool.Exec(ctx,
		`UPDATE sessions SET status = $2, completed_at = $3, duration_sec = $4,
		 exercises = $5, exercise_order = $6
		 WHERE id = $1`,
		sess.ID, string(sess.Status), sess.CompletedAt, sess.DurationSec, exercises, order)
	if err != nil {
		return fmt.Errorf("updating session: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.New(apperr.NotFound, "session %s not found", sess.ID)
	}
	return nil
}

// History retrieves the user's sessions for a program, most recent first.
func (db *DB) History(ctx context.Context, userID int, programID uuid.UUID, limit int) ([]models.WorkoutSession, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT `+sessionColumns+` FROM sessions
		 WHERE user_id = $1 AND program_id = $2
		 ORDER BY started_at DESC LIMIT $3`,
		userID, programID, limit)
	if err != nil {
		return nil, fmt.Errorf("querying session history: %w", err)
	}
	defer rows.Close()

	var result []models.WorkoutSession
	for rows.Next() {
		sess, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *sess)
	}
	return result, rows.Err()
}

// CompletedTemplateIDs returns the set of template ids with a completed
// session for the user's program.
func (db *DB) CompletedTemplateIDs(ctx context.Context, userID int, programID uuid.UUID) (map[uuid.UUID]bool, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT DISTINCT template_id FROM sessions
		 WHERE user_id = $1 AND program_id = $2 AND status = 'completed'`,
		userID, programID)
	if err != nil {
		return nil, fmt.Errorf("querying completed templates: %w", err)
	}
	defer rows.Close()

	result := make(map[uuid.UUID]bool)
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning completed template: %w", err)
		}
		result[id] = true
	}
	return result, rows.Err()
}

func marshalSessionJSON(sess *models.WorkoutSession) (exercises, order []byte, err error) {
	exercises, err = json.Marshal(sess.Exercises)
	if err != nil {
		return nil, nil, fmt.Errorf("marshaling session exercises: %w", err)
	}
	if sess.ExerciseOrder != nil {
		order, err = json.Marshal(sess.ExerciseOrder)
		if err != nil {
			return nil, nil, fmt.Errorf("marshaling exercise order: %w", err)
		}
	}
	return exercises, order, nil
}

func scanSession(row pgx.Row) (*models.WorkoutSession, error) {
	var s models.WorkoutSession
	var status string
	var exercises, order []byte
	var snapCategory, snapYears *int
	var snapPhase, snapAgeGroup *string

	err := row.Scan(&s.ID, &s.UserID, &s.ProgramID, &s.TemplateID, &status, &s.StartedAt,
		&s.CompletedAt, &s.DurationSec, &exercises, &order,
		&snapCategory, &snapPhase, &snapAgeGroup, &snapYears, &s.TargetIntensity)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scanning session: %w", err)
	}

	s.Status = models.SessionStatus(status)
	if len(exercises) > 0 {
		if err := json.Unmarshal(exercises, &s.Exercises); err != nil {
			return nil, fmt.Errorf("unmarshaling session exercises: %w", err)
		}
	}
	if len(order) > 0 {
		if err := json.Unmarshal(order, &s.ExerciseOrder); err != nil {
			return nil, fmt.Errorf("unmarshaling exercise order: %w", err)
		}
	}
	if snapCategory != nil && snapPhase != nil && snapAgeGroup != nil && snapYears != nil {
		s.Snapshot = &models.ScalingSnapshot{
			CategoryID:      *snapCategory,
			Phase:           models.Phase(*snapPhase),
			AgeGroup:        models.AgeGroup(*snapAgeGroup),
			ExperienceYears: *snapYears,
		}
	}
	return &s, nil
}
