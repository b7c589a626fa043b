package importer

import (
	"compress/gzip"
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/claude/forge/internal/models"
	"github.com/claude/forge/internal/storage"
	"github.com/claude/forge/internal/storage/storagetest"
)

const backup = `{
	"logs": {
		"squat_2_1_2": {"w": 300, "r": 5, "done": true},
		"bench_0_1_0": {"w": 0, "r": 0, "done": false},
		"unknown_0_1_0": {"w": 100, "r": 5, "done": true},
		"bad": {"w": 100, "r": 5, "done": true}
	},
	"notes": {
		"squat_abc": "felt heavy",
		"__workout___abc": "  deload soon ",
		"ghost_abc": "lost",
		"bench_abc": "   "
	},
	"maxes": {"squat": 330, "bench": -5, "ghost": 100},
	"currentWeek": 2,
	"blockNum": 1
}`

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// TestParseLogKey splits backup keys. The exercise key may contain underscores.
func TestParseLogKey(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		want    LogRef
		wantErr bool
	}{
		{
			name: "simple key",
			key:  "squat_2_1_0",
			want: LogRef{ExerciseKey: "squat", SetIndex: 2, BlockNum: 1, WeekIndex: 0},
		},
		{
			name: "multi-word key",
			key:  "hang_leg_raise_0_3_3",
			want: LogRef{ExerciseKey: "hang_leg_raise", SetIndex: 0, BlockNum: 3, WeekIndex: 3},
		},
		{name: "too short", key: "squat_1_1", wantErr: true},
		{name: "not a number", key: "squat_a_1_0", wantErr: true},
		{name: "week out of range", key: "squat_0_1_4", wantErr: true},
		{name: "block zero", key: "squat_0_0_1", wantErr: true},
		{name: "empty exercise", key: "_0_1_1", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseLogKey(tt.key)
			if tt.wantErr {
				if err == nil {
					t.Errorf("expected error, got %+v", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}

// TestImport loads a backup into a forked program and checks what landed.
func TestImport(t *testing.T) {
	db := storagetest.Open(t)
	prog := storagetest.Fork(t, db)
	squat := storagetest.Exercise(t, prog, "squat")
	ctx := context.Background()

	stats, err := New(db, testLogger(), false).Import(ctx, prog.ID, strings.NewReader(backup))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats.SetsImported != 2 || stats.SetsSkipped != 0 {
		t.Errorf("sets imported/skipped = %d/%d, want 2/0", stats.SetsImported, stats.SetsSkipped)
	}
	if stats.MaxesImported != 1 {
		t.Errorf("maxes imported = %d, want 1", stats.MaxesImported)
	}
	if stats.NotesImported != 2 || stats.NotesSkipped != 0 || !stats.StateUpdated {
		t.Errorf("stats = %+v", stats)
	}
	if len(stats.Errors) != 4 {
		t.Errorf("errors = %q, want 4", stats.Errors)
	}

	notes, err := db.ListExerciseNotes(ctx, squat.ID, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(notes) != 1 || notes[0].Text != "felt heavy" || notes[0].WorkoutLogID != nil {
		t.Errorf("squat notes = %+v, want one unattached note", notes)
	}

	sets, err := db.ListCompletedSets(ctx, models.SetQuery{ProgramID: prog.ID, ExerciseID: squat.ID, BlockNum: 1, WeekIndex: 2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sets) != 1 || sets[0].Weight != 300 || sets[0].Reps != 5 {
		t.Errorf("completed sets = %+v, want 300x5", sets)
	}

	tm, err := db.LatestTrainingMax(ctx, squat.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tm.Value != 330 || tm.Source != models.SourceImport {
		t.Errorf("training max = %+v, want 330 from import", tm)
	}

	got, err := db.GetProgram(ctx, prog.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.CurrentWeek != 2 || got.BlockNum != 1 {
		t.Errorf("program at block %d week %d, want 1/2", got.BlockNum, got.CurrentWeek)
	}

	// A second import keeps existing sets.
	stats, err = New(db, testLogger(), false).Import(ctx, prog.ID, strings.NewReader(backup))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats.SetsImported != 0 || stats.SetsSkipped != 2 {
		t.Errorf("reimport sets imported/skipped = %d/%d, want 0/2", stats.SetsImported, stats.SetsSkipped)
	}
	if stats.NotesImported != 0 || stats.NotesSkipped != 2 {
		t.Errorf("reimport notes imported/skipped = %d/%d, want 0/2", stats.NotesImported, stats.NotesSkipped)
	}
}

// TestImportInvalidBlock verifies a bad block number is reported while the
// rest of the backup still lands, with maxes recorded against block 1.
func TestImportInvalidBlock(t *testing.T) {
	db := storagetest.Open(t)
	prog := storagetest.Fork(t, db)
	squat := storagetest.Exercise(t, prog, "squat")
	ctx := context.Background()

	const doc = `{
		"logs": {"squat_2_1_2": {"w": 300, "r": 5, "done": true}},
		"maxes": {"squat": 330},
		"currentWeek": 1,
		"blockNum": 0
	}`
	stats, err := New(db, testLogger(), false).Import(ctx, prog.ID, strings.NewReader(doc))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(stats.Errors) != 1 || stats.Errors[0] != "invalid block: 0" {
		t.Errorf("errors = %q, want the invalid block", stats.Errors)
	}
	if stats.SetsImported != 1 || stats.MaxesImported != 1 || !stats.StateUpdated {
		t.Errorf("stats = %+v", stats)
	}

	tm, err := db.LatestTrainingMax(ctx, squat.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tm.Value != 330 || tm.BlockNum != 1 {
		t.Errorf("training max = %+v, want 330 in block 1", tm)
	}

	got, err := db.GetProgram(ctx, prog.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.BlockNum != 1 || got.CurrentWeek != 1 {
		t.Errorf("program at block %d week %d, want 1/1", got.BlockNum, got.CurrentWeek)
	}
}

// TestNoteTarget resolves note keys against exercise keys with underscores.
func TestNoteTarget(t *testing.T) {
	exercises := map[string]models.Exercise{
		"squat":          {ID: "ex-squat"},
		"hang_leg_raise": {ID: "ex-hlr"},
		"hang":           {ID: "ex-hang"},
	}
	tests := []struct {
		key    string
		want   string
		wantOK bool
	}{
		{"squat_abc", "ex-squat", true},
		{"hang_leg_raise_abc", "ex-hlr", true},
		{"hang_abc", "ex-hang", true},
		{"__workout___abc", "", true},
		{"squat", "", false},
		{"ghost_abc", "", false},
	}
	for _, tt := range tests {
		id, ok := noteTarget(tt.key, exercises)
		if ok != tt.wantOK {
			t.Errorf("noteTarget(%q) ok = %v, want %v", tt.key, ok, tt.wantOK)
			continue
		}
		got := ""
		if id != nil {
			got = *id
		}
		if got != tt.want {
			t.Errorf("noteTarget(%q) = %q, want %q", tt.key, got, tt.want)
		}
	}
}

// TestImportDryRun verifies counts are reported and nothing is written.
func TestImportDryRun(t *testing.T) {
	db := storagetest.Open(t)
	prog := storagetest.Fork(t, db)
	squat := storagetest.Exercise(t, prog, "squat")
	ctx := context.Background()

	stats, err := New(db, testLogger(), true).Import(ctx, prog.ID, strings.NewReader(backup))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats.SetsImported != 2 || stats.MaxesImported != 1 {
		t.Errorf("stats = %+v", stats)
	}

	tm, err := db.LatestTrainingMax(ctx, squat.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tm.Source != models.SourceTemplate {
		t.Errorf("dry run wrote training max %+v", tm)
	}
	got, _ := db.GetProgram(ctx, prog.ID)
	if got.CurrentWeek != 0 {
		t.Errorf("dry run moved program to week %d", got.CurrentWeek)
	}
}

// TestImportFileGzip verifies compressed backups are read transparently.
func TestImportFileGzip(t *testing.T) {
	db := storagetest.Open(t)
	prog := storagetest.Fork(t, db)

	path := filepath.Join(t.TempDir(), "backup.json.gz")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	zw := gzip.NewWriter(f)
	if _, err := zw.Write([]byte(backup)); err != nil {
		t.Fatalf("write: %v", err)
	}
	zw.Close()
	f.Close()

	stats, err := New(db, testLogger(), false).ImportFile(context.Background(), prog.ID, path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats.SetsImported != 2 {
		t.Errorf("sets imported = %d, want 2", stats.SetsImported)
	}
}

// TestImportErrors covers malformed input and unknown programs.
func TestImportErrors(t *testing.T) {
	db := storagetest.Open(t)
	prog := storagetest.Fork(t, db)
	imp := New(db, testLogger(), false)
	ctx := context.Background()

	if _, err := imp.Import(ctx, prog.ID, strings.NewReader("{not json")); !errors.Is(err, ErrInvalidExport) {
		t.Errorf("err = %v, want ErrInvalidExport", err)
	}
	if _, err := imp.Import(ctx, "missing", strings.NewReader(backup)); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
	if _, err := imp.ImportFile(ctx, prog.ID, filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Error("expected error for missing file")
	}
}
