package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/meltforce/periodize/internal/apperr"
	"github.com/meltforce/periodize/internal/models"
)

// Get retrieves the override aggregate for a (user, program) pair, or nil
// when no record has been created yet.
func (db *DB) Get(ctx context.Context, userID int, programID uuid.UUID) (*models.ScheduleOverride, error) {
	row := db.Pool.QueryRow(ctx,
		`SELECT user_id, program_id, today_focus_template_id, today_focus_set_at, revision
		 FROM schedule_overrides WHERE user_id = $1 AND program_id = $2`,
		userID, programID)

	var rec models.ScheduleOverride
	err := row.Scan(&rec.UserID, &rec.ProgramID, &rec.TodayFocusID, &rec.TodayFocusSetAt, &rec.Revision)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("querying override record: %w", err)
	}

	rows, err := db.Pool.Query(ctx,
		`SELECT phase, week, day, template_id FROM slot_overrides
		 WHERE user_id = $1 AND program_id = $2
		 ORDER BY phase, week, day`,
		userID, programID)
	if err != nil {
		return nil, fmt.Errorf("querying slot overrides: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var o models.SlotOverride
		var phase string
		if err := rows.Scan(&phase, &o.Week, &o.Day, &o.TemplateID); err != nil {
			return nil, fmt.Errorf("scanning slot override: %w", err)
		}
		o.Phase = models.Phase(phase)
		rec.Slots = append(rec.Slots, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &rec, nil
}

// Save persists the override aggregate with a compare-and-swap on the
// revision: revision zero inserts, anything else updates only when the
// stored revision still matches. The slot-override set is replaced wholesale
// inside the same transaction, so the at-most-one-per-slot invariant holds
// regardless of interleaving.
func (db *DB) Save(ctx context.Context, rec *models.ScheduleOverride) error {
	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning override save: %w", err)
	}
	defer tx.Rollback(ctx)

	if rec.Revision == 0 {
		_, err := tx.Exec(ctx,
			`INSERT INTO schedule_overrides (user_id, program_id, today_focus_template_id, today_focus_set_at, revision)
			 VALUES ($1,$2,$3,$4,1)`,
			rec.UserID, rec.ProgramID, rec.TodayFocusID, rec.TodayFocusSetAt)
		if err != nil {
			if isUniqueViolation(err) {
				return apperr.Wrap(apperr.Conflict, err, "override record was created concurrently")
			}
			return fmt.Errorf("inserting override record: %w", err)
		}
	} else {
		tag, err := tx.Exec(ctx,
			`UPDATE schedule_overrides
			 SET today_focus_template_id = $3, today_focus_set_at = $4, revision = revision + 1
			 WHERE user_id = $1 AND program_id = $2 AND revision = $5`,
			rec.UserID, rec.ProgramID, rec.TodayFocusID, rec.TodayFocusSetAt, rec.Revision)
		if err != nil {
			return fmt.Errorf("updating override record: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return apperr.New(apperr.Conflict, "override record revision %d is stale", rec.Revision)
		}
	}

	if _, err := tx.Exec(ctx,
		`DELETE FROM slot_overrides WHERE user_id = $1 AND program_id = $2`,
		rec.UserID, rec.ProgramID); err != nil {
		return fmt.Errorf("clearing slot overrides: %w", err)
	}
	for _, o := range rec.Slots {
		if _, err := tx.Exec(ctx,
			`INSERT INTO slot_overrides (user_id, program_id, phase, week, day, template_id)
			 VALUES ($1,$2,$3,$4,$5,$6)`,
			rec.UserID, rec.ProgramID, string(o.Phase), o.Week, o.Day, o.TemplateID); err != nil {
			return fmt.Errorf("inserting slot override: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing override save: %w", err)
	}
	rec.Revision++
	return nil
}

// isUniqueViolation reports whether the error is a Postgres unique_violation.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
