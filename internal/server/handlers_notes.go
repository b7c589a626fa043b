package server

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// noteRequest targets an exercise note when ExerciseID is set and the
// workout note of Day otherwise.
type noteRequest struct {
	ExerciseID string  `json:"exercise_id"`
	Day        *int    `json:"day"`
	Note       *string `json:"note"`
}

// handleSaveNote writes a note for the program's current block and week.
// Blank text clears it.
func (s *Server) handleSaveNote(w http.ResponseWriter, r *http.Request) {
	var req noteRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	if req.Note == nil {
		s.writeError(w, fmt.Errorf("%w: note is required", errBadRequest))
		return
	}
	if (req.ExerciseID == "") == (req.Day == nil) {
		s.writeError(w, fmt.Errorf("%w: exactly one of exercise_id and day is required", errBadRequest))
		return
	}

	programID := chi.URLParam(r, "id")
	var (
		stored string
		err    error
	)
	if req.ExerciseID != "" {
		stored, err = s.workout.SaveExerciseNote(r.Context(), programID, req.ExerciseID, *req.Note)
	} else {
		stored, err = s.workout.SaveWorkoutNote(r.Context(), programID, *req.Day, *req.Note)
	}
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"note": stored})
}

// handleExerciseNotes lists an exercise's notes, newest first, up to ?limit=.
func (s *Server) handleExerciseNotes(w http.ResponseWriter, r *http.Request) {
	limit, err := intParam(r, "limit", 0)
	if err != nil {
		s.writeError(w, err)
		return
	}
	notes, err := s.workout.ExerciseNotes(r.Context(), chi.URLParam(r, "id"), limit)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, notes)
}
