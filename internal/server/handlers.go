package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/claude/forge/internal/importer"
	"github.com/claude/forge/internal/models"
	"github.com/claude/forge/internal/progression"
	"github.com/claude/forge/internal/storage"
	"github.com/claude/forge/internal/templates"
	"github.com/claude/forge/internal/workout"
)

func (s *Server) handleListTemplates(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, templates.List())
}

func (s *Server) handleForkTemplate(w http.ResponseWriter, r *http.Request) {
	tpl, err := templates.Get(chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	prog, err := s.db.ForkTemplate(r.Context(), tpl)
	if err != nil {
		s.writeError(w, err)
		return
	}
	loaded, err := s.db.LoadProgram(r.Context(), prog.ID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, loaded)
}

func (s *Server) handleActiveProgram(w http.ResponseWriter, r *http.Request) {
	active, err := s.db.ActiveProgram(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	prog, err := s.db.LoadProgram(r.Context(), active.ID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, prog)
}

func (s *Server) handleGetProgram(w http.ResponseWriter, r *http.Request) {
	prog, err := s.db.LoadProgram(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, prog)
}

// handleDayPlan serves the plan for ?day=&week=, defaulting to the program's
// current day and week.
func (s *Server) handleDayPlan(w http.ResponseWriter, r *http.Request) {
	prog, err := s.db.GetProgram(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	day, err := intParam(r, "day", prog.CurrentDay)
	if err != nil {
		s.writeError(w, err)
		return
	}
	week, err := intParam(r, "week", prog.CurrentWeek)
	if err != nil {
		s.writeError(w, err)
		return
	}
	plan, err := s.workout.DayPlan(r.Context(), prog.ID, day, week)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, plan)
}

func (s *Server) handleAdvance(w http.ResponseWriter, r *http.Request) {
	res, err := s.engine.Advance(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// snapshotRequest is the caller's view of the program. Omitted fields are
// taken from storage, which makes the request unconditional.
type snapshotRequest struct {
	BlockNum    *int `json:"block_num"`
	CurrentWeek *int `json:"current_week"`
}

func (s *Server) sessionFromRequest(r *http.Request) (models.Program, error) {
	prog, err := s.db.GetProgram(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		return models.Program{}, err
	}
	var req snapshotRequest
	if err := decodeOptional(r, &req); err != nil {
		return models.Program{}, err
	}
	if req.BlockNum != nil {
		prog.BlockNum = *req.BlockNum
	}
	if req.CurrentWeek != nil {
		prog.CurrentWeek = *req.CurrentWeek
	}
	return prog, nil
}

func (s *Server) handleAdvanceWeek(w http.ResponseWriter, r *http.Request) {
	session, err := s.sessionFromRequest(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	res, err := s.engine.AdvanceWeek(r.Context(), session)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleAdvanceBlock(w http.ResponseWriter, r *http.Request) {
	session, err := s.sessionFromRequest(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	exercises, err := s.db.ListWaveExercises(r.Context(), session.ID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	res, err := s.engine.AdvanceBlock(r.Context(), session, exercises)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// handleImport loads a backup document from the request body. With
// ?dry_run=true the counts are reported and nothing is written.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	dryRun := r.URL.Query().Get("dry_run") == "true"
	stats, err := importer.New(s.db, s.log, dryRun).Import(r.Context(), chi.URLParam(r, "id"), r.Body)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleSetDay(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Day *int `json:"day"`
	}
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	if req.Day == nil {
		s.writeError(w, fmt.Errorf("%w: day is required", workout.ErrInvalidValue))
		return
	}
	id := chi.URLParam(r, "id")
	if err := s.workout.SetCurrentDay(r.Context(), id, *req.Day); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeProgramState(w, r, id)
}

func (s *Server) handleSetWeek(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Week *int `json:"week"`
	}
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	if req.Week == nil {
		s.writeError(w, fmt.Errorf("%w: week is required", workout.ErrInvalidValue))
		return
	}
	id := chi.URLParam(r, "id")
	if err := s.workout.SetCurrentWeek(r.Context(), id, *req.Week); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeProgramState(w, r, id)
}

func (s *Server) writeProgramState(w http.ResponseWriter, r *http.Request, id string) {
	prog, err := s.db.GetProgram(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, prog)
}

// writeError maps domain errors to status codes.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, storage.ErrNotFound), errors.Is(err, templates.ErrUnknownTemplate):
		status = http.StatusNotFound
	case errors.Is(err, progression.ErrStaleProgram),
		errors.Is(err, progression.ErrFinalWeek),
		errors.Is(err, progression.ErrNotFinalWeek):
		status = http.StatusConflict
	case errors.Is(err, workout.ErrInvalidValue),
		errors.Is(err, workout.ErrUnknownField),
		errors.Is(err, progression.ErrInvalidTrainingMax),
		errors.Is(err, importer.ErrInvalidExport),
		errors.Is(err, errBadRequest):
		status = http.StatusBadRequest
	}
	if status == http.StatusInternalServerError {
		s.log.Error("request failed", "error", err)
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

var errBadRequest = errors.New("bad request")

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: invalid JSON: %v", errBadRequest, err)
	}
	return nil
}

// decodeOptional is decodeJSON for requests whose body may be empty.
func decodeOptional(r *http.Request, v any) error {
	if r.Body == nil {
		return nil
	}
	err := json.NewDecoder(r.Body).Decode(v)
	if err == nil || errors.Is(err, io.EOF) {
		return nil
	}
	return fmt.Errorf("%w: invalid JSON: %v", errBadRequest, err)
}

func intParam(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be an integer", errBadRequest, name)
	}
	return n, nil
}
