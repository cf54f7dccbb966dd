package server

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/meltforce/periodize/internal/models"
	"github.com/meltforce/periodize/internal/session"
)

func (s *Server) handleStartSession(w http.ResponseWriter, r *http.Request) {
	var req struct {
		TemplateID      uuid.UUID   `json:"template_id"`
		ExerciseOrder   []uuid.UUID `json:"exercise_order,omitempty"`
		TargetIntensity *string     `json:"target_intensity,omitempty"`
		SkipCascade     bool        `json:"skip_cascade,omitempty"`
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

	result, err := s.sessions.Start(r.Context(), prog.UserID, prog.ID, req.TemplateID, session.StartOptions{
		ExerciseOrder:   req.ExerciseOrder,
		TargetIntensity: req.TargetIntensity,
		SkipCascade:     req.SkipCascade,
	})
	if err != nil {
		s.writeError(w, err)
		return
	}

	status := http.StatusCreated
	if result.IsExisting {
		status = http.StatusOK
	}
	writeJSON(w, status, result)
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid session ID"})
		return
	}

	view, err := s.sessions.Get(r.Context(), userIDFromContext(r), id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

type sessionUpdateRequest struct {
	Exercises     []models.SessionExercise `json:"exercises"`
	ExerciseOrder []uuid.UUID              `json:"exercise_order,omitempty"`
}

func (s *Server) handleUpdateProgress(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid session ID"})
		return
	}
	var req sessionUpdateRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	sess, err := s.sessions.UpdateProgress(r.Context(), userIDFromContext(r), id, req.Exercises, req.ExerciseOrder)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

func (s *Server) handleCompleteSession(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid session ID"})
		return
	}
	var req sessionUpdateRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	sess, err := s.sessions.Complete(r.Context(), userIDFromContext(r), id, req.Exercises, req.ExerciseOrder)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

func (s *Server) handleAbandonSession(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid session ID"})
		return
	}
	var req sessionUpdateRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	sess, err := s.sessions.Abandon(r.Context(), userIDFromContext(r), id, req.Exercises, req.ExerciseOrder)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

func (s *Server) handleSessionHistory(w http.ResponseWriter, r *http.Request) {
	prog, err := s.currentProgram(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	limit := 0
	if l := r.URL.Query().Get("limit"); l != "" {
		limit, err = strconv.Atoi(l)
		if err != nil || limit < 0 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "limit must be a non-negative integer"})
			return
		}
	}

	sessions, err := s.sessions.History(r.Context(), prog.UserID, prog.ID, limit)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if sessions == nil {
		sessions = []models.WorkoutSession{}
	}
	writeJSON(w, http.StatusOK, sessions)
}

func (s *Server) handleCompletedTemplates(w http.ResponseWriter, r *http.Request) {
	prog, err := s.currentProgram(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	ids, err := s.sessions.CompletedTemplateIDs(r.Context(), prog.UserID, prog.ID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"template_ids": ids})
}
