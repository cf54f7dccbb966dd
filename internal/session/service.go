// Package session drives one workout execution attempt from start through
// completion or abandonment, snapshotting the profile used for scaling so
// later reads reproduce identical numbers.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/meltforce/periodize/internal/apperr"
	"github.com/meltforce/periodize/internal/models"
	"github.com/meltforce/periodize/internal/scaling"
	"github.com/meltforce/periodize/internal/schedule"
)

// Store persists workout sessions. Insert must refuse a second in-progress
// session for the same user with a Conflict error; ByID and InProgress return
// (nil, nil) when nothing matches.
type Store interface {
	InProgress(ctx context.Context, userID int, programID uuid.UUID) (*models.WorkoutSession, error)
	Insert(ctx context.Context, sess *models.WorkoutSession) error
	Update(ctx context.Context, sess *models.WorkoutSession) error
	ByID(ctx context.Context, id uuid.UUID) (*models.WorkoutSession, error)
	History(ctx context.Context, userID int, programID uuid.UUID, limit int) ([]models.WorkoutSession, error)
	CompletedTemplateIDs(ctx context.Context, userID int, programID uuid.UUID) (map[uuid.UUID]bool, error)
}

// Catalog is the read-only template catalog.
type Catalog interface {
	TemplateByID(ctx context.Context, id uuid.UUID) (*models.ProgramTemplate, error)
}

// Programs supplies and updates the athlete's program record.
type Programs interface {
	Program(ctx context.Context, userID int, programID uuid.UUID) (*models.UserProgram, error)
	TouchLastWorkout(ctx context.Context, programID uuid.UUID, at time.Time) error
}

// Cascader shifts the schedule when a future workout is started early.
type Cascader interface {
	CascadeForStart(ctx context.Context, prog *models.UserProgram, templateID uuid.UUID, now time.Time) (schedule.CascadeResult, error)
}

// Service is the workout session state machine.
type Service struct {
	store    Store
	catalog  Catalog
	programs Programs
	cascader Cascader
	log      *slog.Logger
	now      func() time.Time
}

// New creates a session service.
func New(store Store, catalog Catalog, programs Programs, cascader Cascader, log *slog.Logger) *Service {
	return &Service{
		store:    store,
		catalog:  catalog,
		programs: programs,
		cascader: cascader,
		log:      log,
		now:      time.Now,
	}
}

// StartOptions are the optional inputs to Start.
type StartOptions struct {
	ExerciseOrder   []uuid.UUID
	TargetIntensity *string
	SkipCascade     bool
}

// StartResult reports the session plus whether an existing one was resumed
// and what the cascade did.
type StartResult struct {
	Session    *models.WorkoutSession `json:"session"`
	IsExisting bool                   `json:"is_existing"`
	Cascade    schedule.CascadeResult `json:"cascade"`
}

// Start begins a session for a template. If the athlete already has an
// in-progress session it is returned unchanged — resume semantics, never a
// second concurrent session. Otherwise set placeholders are materialized from
// the scaled prescription, the scaling snapshot is captured, and the cascade
// scheduler runs unless explicitly skipped. The cascade only runs after the
// insert succeeds, so a start that loses the one-in-progress race leaves the
// schedule untouched.
func (s *Service) Start(ctx context.Context, userID int, programID, templateID uuid.UUID, opts StartOptions) (*StartResult, error) {
	prog, err := s.programs.Program(ctx, userID, programID)
	if err != nil {
		return nil, fmt.Errorf("loading program: %w", err)
	}
	if prog == nil {
		return nil, apperr.New(apperr.NotFound, "program %s not found", programID)
	}

	existing, err := s.store.InProgress(ctx, userID, programID)
	if err != nil {
		return nil, fmt.Errorf("checking in-progress session: %w", err)
	}
	if existing != nil {
		return &StartResult{Session: existing, IsExisting: true}, nil
	}

	tmpl, err := s.catalog.TemplateByID(ctx, templateID)
	if err != nil {
		return nil, fmt.Errorf("loading template: %w", err)
	}
	if tmpl == nil {
		return nil, apperr.New(apperr.NotFound, "template %s not found", templateID)
	}
	if tmpl.CategoryID != prog.CategoryID {
		return nil, apperr.New(apperr.Unauthorized, "template %s belongs to another category", templateID)
	}

	now := s.now()

	snapshot := &models.ScalingSnapshot{
		CategoryID:      prog.CategoryID,
		Phase:           tmpl.Phase,
		AgeGroup:        prog.AgeGroup,
		ExperienceYears: prog.ExperienceYears,
	}

	sess := &models.WorkoutSession{
		ID:              uuid.New(),
		UserID:          userID,
		ProgramID:       programID,
		TemplateID:      templateID,
		Status:          models.SessionInProgress,
		StartedAt:       now,
		Exercises:       materializePlaceholders(tmpl, *snapshot),
		ExerciseOrder:   opts.ExerciseOrder,
		Snapshot:        snapshot,
		TargetIntensity: opts.TargetIntensity,
	}

	if err := s.store.Insert(ctx, sess); err != nil {
		if apperr.Is(err, apperr.Conflict) {
			// A concurrent start won the race; resume its session.
			if winner, ipErr := s.store.InProgress(ctx, userID, programID); ipErr == nil && winner != nil {
				return &StartResult{Session: winner, IsExisting: true}, nil
			}
		}
		return nil, fmt.Errorf("inserting session: %w", err)
	}

	var cascade schedule.CascadeResult
	if !opts.SkipCascade {
		cascade, err = s.cascader.CascadeForStart(ctx, prog, templateID, now)
		if err != nil {
			// A failed cascade never blocks the workout itself.
			s.log.Warn("cascade failed, starting session without it", "template_id", templateID, "error", err)
			cascade = schedule.CascadeResult{}
		}
	}

	return &StartResult{Session: sess, Cascade: cascade}, nil
}

// materializePlaceholders builds the per-exercise, per-set completion records
// sized to the scaled prescription for each exercise.
func materializePlaceholders(tmpl *models.ProgramTemplate, snapshot models.ScalingSnapshot) []models.SessionExercise {
	strategy := scaling.SnapshotStrategy{Snapshot: snapshot}
	out := make([]models.SessionExercise, 0, len(tmpl.Exercises))
	for _, occ := range tmpl.Exercises {
		plan := strategy.Scale(occ)
		sets := make([]models.SessionSet, plan.Prescription.Sets)
		for i := range sets {
			sets[i] = models.SessionSet{SetNumber: i + 1}
		}
		out = append(out, models.SessionExercise{ExerciseID: plan.ExerciseID, Sets: sets})
	}
	return out
}

// mutable loads a session and verifies it belongs to the caller and is still
// in progress.
func (s *Service) mutable(ctx context.Context, userID int, sessionID uuid.UUID) (*models.WorkoutSession, error) {
	sess, err := s.store.ByID(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("loading session: %w", err)
	}
	if sess == nil {
		return nil, apperr.New(apperr.NotFound, "session %s not found", sessionID)
	}
	if sess.UserID != userID {
		return nil, apperr.New(apperr.Unauthorized, "session %s belongs to another user", sessionID)
	}
	if sess.Status != models.SessionInProgress {
		return nil, apperr.New(apperr.InvalidState, "session %s is %s", sessionID, sess.Status)
	}
	return sess, nil
}

// UpdateProgress fully replaces the session's exercise records. Last write
// wins for the whole collection; there is no partial merge.
func (s *Service) UpdateProgress(ctx context.Context, userID int, sessionID uuid.UUID, exercises []models.SessionExercise, order []uuid.UUID) (*models.WorkoutSession, error) {
	sess, err := s.mutable(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}
	sess.Exercises = exercises
	if order != nil {
		sess.ExerciseOrder = order
	}
	if err := s.store.Update(ctx, sess); err != nil {
		return nil, fmt.Errorf("updating session: %w", err)
	}
	return sess, nil
}

// Complete transitions an in-progress session to completed, recording the
// completion timestamp and elapsed duration, and marks the program's last
// workout.
func (s *Service) Complete(ctx context.Context, userID int, sessionID uuid.UUID, exercises []models.SessionExercise, order []uuid.UUID) (*models.WorkoutSession, error) {
	sess, err := s.mutable(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	duration := int(now.Sub(sess.StartedAt).Seconds())

	if exercises != nil {
		sess.Exercises = exercises
	}
	if order != nil {
		sess.ExerciseOrder = order
	}
	sess.Status = models.SessionCompleted
	sess.CompletedAt = &now
	sess.DurationSec = &duration

	if err := s.store.Update(ctx, sess); err != nil {
		return nil, fmt.Errorf("completing session: %w", err)
	}
	if err := s.programs.TouchLastWorkout(ctx, sess.ProgramID, now); err != nil {
		s.log.Warn("failed to update program last workout", "program_id", sess.ProgramID, "error", err)
	}
	return sess, nil
}

// Abandon transitions an in-progress session to abandoned. No program-level
// side effects.
func (s *Service) Abandon(ctx context.Context, userID int, sessionID uuid.UUID, exercises []models.SessionExercise, order []uuid.UUID) (*models.WorkoutSession, error) {
	sess, err := s.mutable(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}
	if exercises != nil {
		sess.Exercises = exercises
	}
	if order != nil {
		sess.ExerciseOrder = order
	}
	sess.Status = models.SessionAbandoned
	if err := s.store.Update(ctx, sess); err != nil {
		return nil, fmt.Errorf("abandoning session: %w", err)
	}
	return sess, nil
}

// View is a session with its live-resolved exercise plans.
type View struct {
	*models.WorkoutSession
	Plans []scaling.ExercisePlan `json:"exercise_plans"`
}

// Get returns a session with prescriptions re-derived through the scaling
// strategy matching the session: snapshot scaling when a snapshot was
// captured, the legacy intensity table otherwise.
func (s *Service) Get(ctx context.Context, userID int, sessionID uuid.UUID) (*View, error) {
	sess, err := s.store.ByID(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("loading session: %w", err)
	}
	if sess == nil {
		return nil, apperr.New(apperr.NotFound, "session %s not found", sessionID)
	}
	if sess.UserID != userID {
		return nil, apperr.New(apperr.Unauthorized, "session %s belongs to another user", sessionID)
	}

	view := &View{WorkoutSession: sess}

	tmpl, err := s.catalog.TemplateByID(ctx, sess.TemplateID)
	if err != nil {
		return nil, fmt.Errorf("loading template: %w", err)
	}
	if tmpl == nil {
		// Template removed upstream; the stored completion records stand on
		// their own.
		s.log.Warn("session template no longer exists", "session_id", sessionID, "template_id", sess.TemplateID)
		return view, nil
	}

	strategy := scaling.ForSession(sess)
	view.Plans = make([]scaling.ExercisePlan, 0, len(tmpl.Exercises))
	for _, occ := range tmpl.Exercises {
		view.Plans = append(view.Plans, strategy.Scale(occ))
	}
	return view, nil
}

// History returns the athlete's past sessions, most recent first.
func (s *Service) History(ctx context.Context, userID int, programID uuid.UUID, limit int) ([]models.WorkoutSession, error) {
	if limit <= 0 {
		limit = 50
	}
	return s.store.History(ctx, userID, programID, limit)
}

// CompletedTemplateIDs returns the ids of templates with a completed session.
func (s *Service) CompletedTemplateIDs(ctx context.Context, userID int, programID uuid.UUID) ([]uuid.UUID, error) {
	set, err := s.store.CompletedTemplateIDs(ctx, userID, programID)
	if err != nil {
		return nil, err
	}
	out := make([]uuid.UUID, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	return out, nil
}
