package session

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/meltforce/periodize/internal/apperr"
	"github.com/meltforce/periodize/internal/models"
	"github.com/meltforce/periodize/internal/schedule"
)

// --- In-memory fakes ---

type fakeStore struct {
	inProgress *models.WorkoutSession
	sessions   map[uuid.UUID]*models.WorkoutSession
	insertErr  error
	inserted   []*models.WorkoutSession
	updates    int
	history    []models.WorkoutSession
	lastLimit  int
	completed  map[uuid.UUID]bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{sessions: make(map[uuid.UUID]*models.WorkoutSession)}
}

func (f *fakeStore) InProgress(_ context.Context, _ int, _ uuid.UUID) (*models.WorkoutSession, error) {
	return f.inProgress, nil
}

func (f *fakeStore) Insert(_ context.Context, sess *models.WorkoutSession) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	f.inserted = append(f.inserted, sess)
	f.sessions[sess.ID] = sess
	return nil
}

func (f *fakeStore) Update(_ context.Context, sess *models.WorkoutSession) error {
	f.updates++
	f.sessions[sess.ID] = sess
	return nil
}

func (f *fakeStore) ByID(_ context.Context, id uuid.UUID) (*models.WorkoutSession, error) {
	return f.sessions[id], nil
}

func (f *fakeStore) History(_ context.Context, _ int, _ uuid.UUID, limit int) ([]models.WorkoutSession, error) {
	f.lastLimit = limit
	return f.history, nil
}

func (f *fakeStore) CompletedTemplateIDs(_ context.Context, _ int, _ uuid.UUID) (map[uuid.UUID]bool, error) {
	return f.completed, nil
}

type fakeCatalog struct {
	byID map[uuid.UUID]*models.ProgramTemplate
}

func (f *fakeCatalog) TemplateByID(_ context.Context, id uuid.UUID) (*models.ProgramTemplate, error) {
	return f.byID[id], nil
}

type fakePrograms struct {
	prog    *models.UserProgram
	touched []time.Time
}

func (f *fakePrograms) Program(_ context.Context, _ int, _ uuid.UUID) (*models.UserProgram, error) {
	return f.prog, nil
}

func (f *fakePrograms) TouchLastWorkout(_ context.Context, _ uuid.UUID, at time.Time) error {
	f.touched = append(f.touched, at)
	return nil
}

type fakeCascader struct {
	result schedule.CascadeResult
	err    error
	calls  int
}

func (f *fakeCascader) CascadeForStart(_ context.Context, _ *models.UserProgram, _ uuid.UUID, _ time.Time) (schedule.CascadeResult, error) {
	f.calls++
	return f.result, f.err
}

// --- Fixture ---

type fixture struct {
	svc      *Service
	store    *fakeStore
	catalog  *fakeCatalog
	programs *fakePrograms
	cascader *fakeCascader
	prog     *models.UserProgram
	tmpl     *models.ProgramTemplate
	now      time.Time
}

// newFixture builds a service around an adult intermediate Power-category
// athlete and a one-exercise barbell template. For that profile the scaled
// prescription is 4 sets.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	prog := &models.UserProgram{
		ID:               uuid.New(),
		UserID:           1,
		CategoryID:       2,
		SkillLevel:       "intermediate",
		AgeGroup:         models.AgeGroupAdult,
		ExperienceYears:  3,
		TrainingWeekdays: []time.Weekday{time.Monday, time.Wednesday, time.Friday},
		CurrentPhase:     models.PhaseGPP,
		CurrentWeek:      1,
		CurrentDay:       1,
	}
	tmpl := &models.ProgramTemplate{
		ID:         uuid.New(),
		CategoryID: 2,
		Phase:      models.PhaseGPP,
		SkillLevel: "intermediate",
		Week:       1,
		Day:        1,
		Name:       "Lower Strength A",
		Exercises: []models.ExerciseOccurrence{
			{
				Exercise: models.Exercise{
					ID:        uuid.New(),
					Name:      "Back Squat",
					Tags:      []string{"squat"},
					Equipment: []string{"barbell"},
				},
				OrderIndex:  0,
				BaseSets:    3,
				BaseReps:    10,
				RestSeconds: 90,
			},
		},
	}

	f := &fixture{
		store:    newFakeStore(),
		catalog:  &fakeCatalog{byID: map[uuid.UUID]*models.ProgramTemplate{tmpl.ID: tmpl}},
		programs: &fakePrograms{prog: prog},
		cascader: &fakeCascader{},
		prog:     prog,
		tmpl:     tmpl,
		now:      time.Date(2026, time.January, 5, 8, 0, 0, 0, time.UTC),
	}
	f.svc = New(f.store, f.catalog, f.programs, f.cascader, slog.Default())
	f.svc.now = func() time.Time { return f.now }
	return f
}

// --- Start ---

// TestStartNewSession verifies the snapshot, placeholders, and cascade of a
// fresh start.
func TestStartNewSession(t *testing.T) {
	f := newFixture(t)
	f.cascader.result = schedule.CascadeResult{Applied: true, SlotsShifted: 2}

	res, err := f.svc.Start(context.Background(), 1, f.prog.ID, f.tmpl.ID, StartOptions{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.IsExisting {
		t.Error("fresh start should not report existing")
	}
	sess := res.Session
	if sess.Status != models.SessionInProgress {
		t.Errorf("status = %s, want in_progress", sess.Status)
	}
	if !sess.StartedAt.Equal(f.now) {
		t.Error("started_at should be the start time")
	}

	snap := sess.Snapshot
	if snap == nil {
		t.Fatal("snapshot not captured")
	}
	if snap.CategoryID != 2 || snap.Phase != models.PhaseGPP ||
		snap.AgeGroup != models.AgeGroupAdult || snap.ExperienceYears != 3 {
		t.Errorf("snapshot = %+v", *snap)
	}

	if len(sess.Exercises) != 1 {
		t.Fatalf("exercises = %d, want 1", len(sess.Exercises))
	}
	sets := sess.Exercises[0].Sets
	if len(sets) != 4 {
		t.Fatalf("placeholder sets = %d, want 4", len(sets))
	}
	for i, set := range sets {
		if set.SetNumber != i+1 || set.Completed {
			t.Errorf("set %d = %+v", i, set)
		}
	}

	if f.cascader.calls != 1 {
		t.Errorf("cascade calls = %d, want 1", f.cascader.calls)
	}
	if !res.Cascade.Applied || res.Cascade.SlotsShifted != 2 {
		t.Errorf("cascade result = %+v", res.Cascade)
	}
	if len(f.store.inserted) != 1 {
		t.Errorf("inserts = %d, want 1", len(f.store.inserted))
	}
}

// TestStartSnapshotUsesTemplatePhase verifies the snapshot freezes the
// template's phase, not the program cursor's.
func TestStartSnapshotUsesTemplatePhase(t *testing.T) {
	f := newFixture(t)
	f.tmpl.Phase = models.PhaseSPP

	res, err := f.svc.Start(context.Background(), 1, f.prog.ID, f.tmpl.ID, StartOptions{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Session.Snapshot.Phase != models.PhaseSPP {
		t.Errorf("snapshot phase = %s, want spp", res.Session.Snapshot.Phase)
	}
}

// TestStartResumesInProgress verifies resume semantics instead of a second
// concurrent session.
func TestStartResumesInProgress(t *testing.T) {
	f := newFixture(t)
	existing := &models.WorkoutSession{ID: uuid.New(), UserID: 1, Status: models.SessionInProgress}
	f.store.inProgress = existing

	res, err := f.svc.Start(context.Background(), 1, f.prog.ID, f.tmpl.ID, StartOptions{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.IsExisting || res.Session.ID != existing.ID {
		t.Error("existing session should be resumed")
	}
	if f.cascader.calls != 0 {
		t.Error("cascade should not run for a resume")
	}
	if len(f.store.inserted) != 0 {
		t.Error("no new session should be inserted")
	}
}

// TestStartSkipCascade verifies the explicit opt-out.
func TestStartSkipCascade(t *testing.T) {
	f := newFixture(t)
	if _, err := f.svc.Start(context.Background(), 1, f.prog.ID, f.tmpl.ID, StartOptions{SkipCascade: true}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f.cascader.calls != 0 {
		t.Errorf("cascade calls = %d, want 0", f.cascader.calls)
	}
}

// TestStartCascadeFailureDoesNotBlock verifies a failed cascade logs and the
// session still starts.
func TestStartCascadeFailureDoesNotBlock(t *testing.T) {
	f := newFixture(t)
	f.cascader.err = apperr.New(apperr.Internal, "store down")

	res, err := f.svc.Start(context.Background(), 1, f.prog.ID, f.tmpl.ID, StartOptions{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Cascade.Applied {
		t.Error("failed cascade should report not applied")
	}
	if len(f.store.inserted) != 1 {
		t.Error("session should still be inserted")
	}
}

// TestStartRejections verifies the start guards.
func TestStartRejections(t *testing.T) {
	f := newFixture(t)
	foreign := &models.ProgramTemplate{ID: uuid.New(), CategoryID: 3, Phase: models.PhaseGPP}
	f.catalog.byID[foreign.ID] = foreign

	tests := []struct {
		name       string
		templateID uuid.UUID
		wantKind   apperr.Kind
	}{
		{"unknown template", uuid.New(), apperr.NotFound},
		{"foreign category", foreign.ID, apperr.Unauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.Start(context.Background(), 1, f.prog.ID, tt.templateID, StartOptions{})
			if apperr.KindOf(err) != tt.wantKind {
				t.Errorf("kind = %v, want %v (err: %v)", apperr.KindOf(err), tt.wantKind, err)
			}
		})
	}
}

// TestStartUnknownProgram verifies a missing program is NotFound.
func TestStartUnknownProgram(t *testing.T) {
	f := newFixture(t)
	f.programs.prog = nil
	_, err := f.svc.Start(context.Background(), 1, uuid.New(), f.tmpl.ID, StartOptions{})
	if apperr.KindOf(err) != apperr.NotFound {
		t.Errorf("kind = %v, want NotFound", apperr.KindOf(err))
	}
}

// TestStartInsertConflictResumesWinner verifies a lost insert race resumes
// the winner's session and writes no schedule changes for the loser.
func TestStartInsertConflictResumesWinner(t *testing.T) {
	f := newFixture(t)
	winner := &models.WorkoutSession{ID: uuid.New(), UserID: 1, Status: models.SessionInProgress}
	f.store.insertErr = apperr.New(apperr.Conflict, "in-progress session exists")

	// First InProgress read misses, Insert conflicts, second read finds the
	// concurrent winner.
	first := true
	f.svc.store = inProgressSequence{fakeStore: f.store, second: winner, first: &first}

	got, err := f.svc.Start(context.Background(), 1, f.prog.ID, f.tmpl.ID, StartOptions{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.IsExisting || got.Session.ID != winner.ID {
		t.Error("conflict should resume the winner's session")
	}
	if f.cascader.calls != 0 {
		t.Errorf("cascade calls = %d, want 0: the losing start must not shift the schedule", f.cascader.calls)
	}
}

// inProgressSequence returns nil from the first InProgress call and a fixed
// session from later ones, to model a concurrent start winning the race.
type inProgressSequence struct {
	*fakeStore
	second *models.WorkoutSession
	first  *bool
}

func (s inProgressSequence) InProgress(ctx context.Context, userID int, programID uuid.UUID) (*models.WorkoutSession, error) {
	if *s.first {
		*s.first = false
		return nil, nil
	}
	return s.second, nil
}

// --- Progress and transitions ---

func (f *fixture) startSession(t *testing.T) *models.WorkoutSession {
	t.Helper()
	res, err := f.svc.Start(context.Background(), 1, f.prog.ID, f.tmpl.ID, StartOptions{SkipCascade: true})
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	return res.Session
}

// TestUpdateProgress verifies the full-replace semantics.
func TestUpdateProgress(t *testing.T) {
	f := newFixture(t)
	sess := f.startSession(t)

	weight := 80.0
	exercises := []models.SessionExercise{{
		ExerciseID: f.tmpl.Exercises[0].Exercise.ID,
		Sets: []models.SessionSet{
			{SetNumber: 1, Reps: 10, WeightKg: &weight, Completed: true},
			{SetNumber: 2, Reps: 10, WeightKg: &weight, Completed: true},
		},
	}}
	order := []uuid.UUID{f.tmpl.Exercises[0].Exercise.ID}

	got, err := f.svc.UpdateProgress(context.Background(), 1, sess.ID, exercises, order)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got.Exercises[0].Sets) != 2 {
		t.Error("exercise records should be replaced wholesale")
	}
	if len(got.ExerciseOrder) != 1 {
		t.Error("exercise order should be replaced")
	}
	if got.Status != models.SessionInProgress {
		t.Error("progress update should not change status")
	}
}

// TestUpdateProgressGuards verifies ownership and state checks.
func TestUpdateProgressGuards(t *testing.T) {
	f := newFixture(t)
	sess := f.startSession(t)

	if _, err := f.svc.UpdateProgress(context.Background(), 1, uuid.New(), nil, nil); apperr.KindOf(err) != apperr.NotFound {
		t.Errorf("unknown session: kind = %v, want NotFound", apperr.KindOf(err))
	}
	if _, err := f.svc.UpdateProgress(context.Background(), 2, sess.ID, nil, nil); apperr.KindOf(err) != apperr.Unauthorized {
		t.Errorf("foreign session: kind = %v, want Unauthorized", apperr.KindOf(err))
	}

	sess.Status = models.SessionCompleted
	if _, err := f.svc.UpdateProgress(context.Background(), 1, sess.ID, nil, nil); apperr.KindOf(err) != apperr.InvalidState {
		t.Errorf("terminal session: kind = %v, want InvalidState", apperr.KindOf(err))
	}
}

// TestComplete verifies the terminal transition, duration arithmetic, and the
// program touch.
func TestComplete(t *testing.T) {
	f := newFixture(t)
	sess := f.startSession(t)

	f.now = f.now.Add(45 * time.Minute)
	got, err := f.svc.Complete(context.Background(), 1, sess.ID, nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Status != models.SessionCompleted {
		t.Errorf("status = %s, want completed", got.Status)
	}
	if got.CompletedAt == nil || !got.CompletedAt.Equal(f.now) {
		t.Error("completed_at not recorded")
	}
	if got.DurationSec == nil || *got.DurationSec != 45*60 {
		t.Errorf("duration = %v, want %d", got.DurationSec, 45*60)
	}
	if len(f.programs.touched) != 1 || !f.programs.touched[0].Equal(f.now) {
		t.Error("program last workout not touched")
	}
}

// TestCompleteTwiceRejected verifies completed is terminal.
func TestCompleteTwiceRejected(t *testing.T) {
	f := newFixture(t)
	sess := f.startSession(t)

	if _, err := f.svc.Complete(context.Background(), 1, sess.ID, nil, nil); err != nil {
		t.Fatalf("first complete: %v", err)
	}
	_, err := f.svc.Complete(context.Background(), 1, sess.ID, nil, nil)
	if apperr.KindOf(err) != apperr.InvalidState {
		t.Errorf("kind = %v, want InvalidState", apperr.KindOf(err))
	}
}

// TestAbandon verifies the abandon transition has no program side effects.
func TestAbandon(t *testing.T) {
	f := newFixture(t)
	sess := f.startSession(t)

	got, err := f.svc.Abandon(context.Background(), 1, sess.ID, nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Status != models.SessionAbandoned {
		t.Errorf("status = %s, want abandoned", got.Status)
	}
	if got.CompletedAt != nil || got.DurationSec != nil {
		t.Error("abandon should not record completion fields")
	}
	if len(f.programs.touched) != 0 {
		t.Error("abandon should not touch the program")
	}
}

// --- Reads ---

// TestGetSnapshotScaling verifies a snapshot session re-derives plans through
// the frozen profile.
func TestGetSnapshotScaling(t *testing.T) {
	f := newFixture(t)
	sess := f.startSession(t)

	view, err := f.svc.Get(context.Background(), 1, sess.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(view.Plans) != 1 {
		t.Fatalf("plans = %d, want 1", len(view.Plans))
	}
	if view.Plans[0].Prescription.Sets != 4 {
		t.Errorf("sets = %d, want 4", view.Plans[0].Prescription.Sets)
	}
}

// TestGetLegacyScaling verifies a pre-snapshot session scales through the
// intensity table off the authored base volume.
func TestGetLegacyScaling(t *testing.T) {
	f := newFixture(t)
	level := "high"
	sess := &models.WorkoutSession{
		ID:              uuid.New(),
		UserID:          1,
		ProgramID:       f.prog.ID,
		TemplateID:      f.tmpl.ID,
		Status:          models.SessionCompleted,
		TargetIntensity: &level,
	}
	f.store.sessions[sess.ID] = sess

	view, err := f.svc.Get(context.Background(), 1, sess.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// high: base sets 3 + 1, base reps unchanged.
	if view.Plans[0].Prescription.Sets != 4 || view.Plans[0].Prescription.Reps != 10 {
		t.Errorf("prescription = %+v", view.Plans[0].Prescription)
	}
}

// TestGetStaleTemplate verifies a vanished template returns the stored
// records without plans.
func TestGetStaleTemplate(t *testing.T) {
	f := newFixture(t)
	sess := f.startSession(t)
	delete(f.catalog.byID, f.tmpl.ID)

	view, err := f.svc.Get(context.Background(), 1, sess.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if view.Plans != nil {
		t.Error("stale template should yield no plans")
	}
	if len(view.Exercises) != 1 {
		t.Error("stored records should survive")
	}
}

// TestGetGuards verifies ownership checks on reads.
func TestGetGuards(t *testing.T) {
	f := newFixture(t)
	sess := f.startSession(t)

	if _, err := f.svc.Get(context.Background(), 1, uuid.New()); apperr.KindOf(err) != apperr.NotFound {
		t.Errorf("unknown session: kind = %v, want NotFound", apperr.KindOf(err))
	}
	if _, err := f.svc.Get(context.Background(), 2, sess.ID); apperr.KindOf(err) != apperr.Unauthorized {
		t.Errorf("foreign session: kind = %v, want Unauthorized", apperr.KindOf(err))
	}
}

// TestHistoryDefaultLimit verifies the limit floor.
func TestHistoryDefaultLimit(t *testing.T) {
	f := newFixture(t)
	if _, err := f.svc.History(context.Background(), 1, f.prog.ID, 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f.store.lastLimit != 50 {
		t.Errorf("limit = %d, want 50", f.store.lastLimit)
	}
	if _, err := f.svc.History(context.Background(), 1, f.prog.ID, 10); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f.store.lastLimit != 10 {
		t.Errorf("limit = %d, want 10", f.store.lastLimit)
	}
}

// TestCompletedTemplateIDs verifies the set is flattened to a list.
func TestCompletedTemplateIDs(t *testing.T) {
	f := newFixture(t)
	a, b := uuid.New(), uuid.New()
	f.store.completed = map[uuid.UUID]bool{a: true, b: true}

	ids, err := f.svc.CompletedTemplateIDs(context.Background(), 1, f.prog.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ids) != 2 {
		t.Errorf("ids = %d, want 2", len(ids))
	}
}
