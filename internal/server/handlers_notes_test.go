package server

import (
	"net/http"
	"testing"

	"github.com/claude/forge/internal/models"
	"github.com/claude/forge/internal/storage/storagetest"
	"github.com/claude/forge/internal/workout"
)

// TestNoteEndpoints saves exercise and workout notes, reads them through the
// plan and the history route, then clears one.
func TestNoteEndpoints(t *testing.T) {
	s, prog := newTestServer(t, "")
	squat := storagetest.Exercise(t, prog, "squat")
	base := "/api/v1/programs/" + prog.ID

	rec := do(t, s, http.MethodPut, base+"/notes", `{"exercise_id":"`+squat.ID+`","note":"  paused reps "}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("save exercise note status = %d: %s", rec.Code, rec.Body)
	}
	if got := decode[map[string]string](t, rec); got["note"] != "paused reps" {
		t.Errorf("stored note = %q, want trimmed text", got["note"])
	}
	if rec := do(t, s, http.MethodPut, base+"/notes", `{"day":0,"note":"short session"}`); rec.Code != http.StatusOK {
		t.Fatalf("save workout note status = %d: %s", rec.Code, rec.Body)
	}

	plan := decode[workout.Plan](t, do(t, s, http.MethodGet, base+"/plan?day=0&week=0", ""))
	if plan.WorkoutNote != "short session" {
		t.Errorf("workout note = %q, want %q", plan.WorkoutNote, "short session")
	}
	if got := plan.Exercises[0].LoggedNote; got != "paused reps" {
		t.Errorf("squat note = %q, want %q", got, "paused reps")
	}

	rec = do(t, s, http.MethodGet, "/api/v1/exercises/"+squat.ID+"/notes?limit=5", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("history status = %d: %s", rec.Code, rec.Body)
	}
	if notes := decode[[]models.Note](t, rec); len(notes) != 1 || notes[0].Text != "paused reps" {
		t.Errorf("history = %+v, want the saved note", notes)
	}

	if rec := do(t, s, http.MethodPut, base+"/notes", `{"exercise_id":"`+squat.ID+`","note":""}`); rec.Code != http.StatusOK {
		t.Fatalf("clear note status = %d: %s", rec.Code, rec.Body)
	}
	plan = decode[workout.Plan](t, do(t, s, http.MethodGet, base+"/plan?day=0&week=0", ""))
	if got := plan.Exercises[0].LoggedNote; got != "" {
		t.Errorf("cleared note = %q, want empty", got)
	}
}

// TestNoteEndpointErrors covers request validation and unknown targets.
func TestNoteEndpointErrors(t *testing.T) {
	s, prog := newTestServer(t, "")
	squat := storagetest.Exercise(t, prog, "squat")
	base := "/api/v1/programs/" + prog.ID

	tests := []struct {
		name string
		body string
		want int
	}{
		{"missing note", `{"day":0}`, http.StatusBadRequest},
		{"no target", `{"note":"x"}`, http.StatusBadRequest},
		{"both targets", `{"exercise_id":"` + squat.ID + `","day":0,"note":"x"}`, http.StatusBadRequest},
		{"bad day", `{"day":9,"note":"x"}`, http.StatusBadRequest},
		{"unknown exercise", `{"exercise_id":"nope","note":"x"}`, http.StatusNotFound},
		{"not json", `{`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if rec := do(t, s, http.MethodPut, base+"/notes", tt.body); rec.Code != tt.want {
				t.Errorf("status = %d, want %d: %s", rec.Code, tt.want, rec.Body)
			}
		})
	}

	if rec := do(t, s, http.MethodGet, "/api/v1/exercises/nope/notes", ""); rec.Code != http.StatusNotFound {
		t.Errorf("unknown exercise history status = %d, want 404", rec.Code)
	}
}
