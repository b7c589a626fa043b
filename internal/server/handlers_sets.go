package server

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/claude/forge/internal/workout"
)

type setRequest struct {
	ExerciseID string  `json:"exercise_id"`
	SetIndex   *int    `json:"set_index"`
	Field      string  `json:"field"`
	Value      *string `json:"value"`
}

func (req setRequest) slot(programID string) (workout.Slot, error) {
	if req.ExerciseID == "" || req.SetIndex == nil {
		return workout.Slot{}, fmt.Errorf("%w: exercise_id and set_index are required", errBadRequest)
	}
	return workout.Slot{ProgramID: programID, ExerciseID: req.ExerciseID, SetIndex: *req.SetIndex}, nil
}

// handleLogSet stores one field of a set. A null or empty value clears it.
func (s *Server) handleLogSet(w http.ResponseWriter, r *http.Request) {
	var req setRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	slot, err := req.slot(chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	field, err := workout.ParseField(req.Field)
	if err != nil {
		s.writeError(w, err)
		return
	}
	var raw string
	if req.Value != nil {
		raw = *req.Value
	}
	if err := s.workout.LogSet(r.Context(), slot, field, raw); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleToggleSet(w http.ResponseWriter, r *http.Request) {
	var req setRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	slot, err := req.slot(chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	completed, err := s.workout.ToggleComplete(r.Context(), slot)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"completed": completed})
}

// handleClearSet takes the slot from ?exercise_id=&set_index=.
func (s *Server) handleClearSet(w http.ResponseWriter, r *http.Request) {
	idx, err := intParam(r, "set_index", -1)
	if err != nil {
		s.writeError(w, err)
		return
	}
	req := setRequest{ExerciseID: r.URL.Query().Get("exercise_id")}
	if idx >= 0 {
		req.SetIndex = &idx
	}
	slot, err := req.slot(chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	if err := s.workout.ClearSet(r.Context(), slot); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleWaveSets serves the prescription for ?week=, defaulting to the
// owning program's current week.
func (s *Server) handleWaveSets(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	programID, err := s.db.ExerciseProgramID(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	prog, err := s.db.GetProgram(r.Context(), programID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	week, err := intParam(r, "week", prog.CurrentWeek)
	if err != nil {
		s.writeError(w, err)
		return
	}
	plan, err := s.workout.WaveSets(r.Context(), id, week)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, plan)
}

func (s *Server) handleListTrainingMaxes(w http.ResponseWriter, r *http.Request) {
	history, err := s.workout.TrainingMaxes(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, history)
}

func (s *Server) handleSetTrainingMax(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Value float64 `json:"value"`
	}
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	tm, err := s.engine.SetTrainingMax(r.Context(), chi.URLParam(r, "id"), req.Value)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, tm)
}
