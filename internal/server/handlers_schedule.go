package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/meltforce/periodize/internal/apperr"
	"github.com/meltforce/periodize/internal/models"
)

// currentProgram loads the caller's active program or fails with NotFound.
func (s *Server) currentProgram(r *http.Request) (*models.UserProgram, error) {
	uid := userIDFromContext(r)
	prog, err := s.db.ActiveProgram(r.Context(), uid)
	if err != nil {
		return nil, err
	}
	if prog == nil {
		return nil, apperr.New(apperr.NotFound, "no active program for user %d", uid)
	}
	return prog, nil
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, userInfoFromContext(r))
}

func (s *Server) handleMyProgram(w http.ResponseWriter, r *http.Request) {
	prog, err := s.currentProgram(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, prog)
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, models.SportCategories)
}

func (s *Server) handleTodayWorkout(w http.ResponseWriter, r *http.Request) {
	prog, err := s.currentProgram(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	today, err := s.schedule.ResolveToday(r.Context(), prog, time.Now())
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, today)
}

func (s *Server) handleWeekSchedule(w http.ResponseWriter, r *http.Request) {
	prog, err := s.currentProgram(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	phase := prog.CurrentPhase
	if p := r.URL.Query().Get("phase"); p != "" {
		phase, err = models.ParsePhase(p)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
	}
	week := prog.CurrentWeek
	if wk := r.URL.Query().Get("week"); wk != "" {
		week, err = strconv.Atoi(wk)
		if err != nil || week < 1 || week > models.WeeksPerPhase {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "week must be between 1 and 4"})
			return
		}
	}

	assignments, err := s.schedule.WeekSchedule(r.Context(), prog, phase, week)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"phase": phase,
		"week":  week,
		"slots": assignments,
	})
}

func (s *Server) handlePhaseOverview(w http.ResponseWriter, r *http.Request) {
	prog, err := s.currentProgram(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	phase, err := models.ParsePhase(chi.URLParam(r, "phase"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	weeks, err := s.schedule.PhaseOverview(r.Context(), prog, phase)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"phase": phase,
		"weeks": weeks,
	})
}

func (s *Server) handleOverrides(w http.ResponseWriter, r *http.Request) {
	prog, err := s.currentProgram(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	rec, err := s.schedule.Overrides(r.Context(), prog)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleSetFocus(w http.ResponseWriter, r *http.Request) {
	var req struct {
		TemplateID uuid.UUID `json:"template_id"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.TemplateID == uuid.Nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "template_id is required"})
		return
	}

	prog, err := s.currentProgram(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if err := s.schedule.SetTodayFocus(r.Context(), prog, req.TemplateID, time.Now()); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleClearFocus(w http.ResponseWriter, r *http.Request) {
	prog, err := s.currentProgram(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if err := s.schedule.ClearTodayFocus(r.Context(), prog); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type slotRef struct {
	Phase string `json:"phase"`
	Week  int    `json:"week"`
	Day   int    `json:"day"`
}

func (ref slotRef) toSlot() (models.WorkoutSlot, error) {
	phase, err := models.ParsePhase(ref.Phase)
	if err != nil {
		return models.WorkoutSlot{}, err
	}
	return models.WorkoutSlot{Phase: phase, Week: ref.Week, Day: ref.Day}, nil
}

func (s *Server) handleSwap(w http.ResponseWriter, r *http.Request) {
	var req struct {
		A slotRef `json:"a"`
		B slotRef `json:"b"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	slotA, err := req.A.toSlot()
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	slotB, err := req.B.toSlot()
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	prog, err := s.currentProgram(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if err := s.schedule.SwapWorkouts(r.Context(), prog, slotA, slotB); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleResetPhase(w http.ResponseWriter, r *http.Request) {
	phase, err := models.ParsePhase(chi.URLParam(r, "phase"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	prog, err := s.currentProgram(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if err := s.schedule.ResetPhaseToDefault(r.Context(), prog, phase); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
