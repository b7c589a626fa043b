// Package importer loads backups written by the earlier browser version of
// the tracker into a program.
package importer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strconv"
	"strings"

	"github.com/claude/forge/internal/calc"
	"github.com/claude/forge/internal/models"
	"github.com/claude/forge/internal/progression"
	"github.com/claude/forge/internal/storage"
)

// ErrInvalidExport is returned when the backup is not valid JSON.
var ErrInvalidExport = errors.New("invalid export")

// Export is the backup document. Set logs are keyed by
// "<exerciseKey>_<setIndex>_<blockNum>_<weekIndex>"; the exercise key may
// itself contain underscores. Notes are keyed by "<exerciseKey>_<logID>" or
// "__workout___<logID>"; the old log ids have no counterpart, so notes are
// stored without a workout log. Maxes are keyed by exercise key.
type Export struct {
	Logs        map[string]ExportSet `json:"logs"`
	Notes       map[string]string    `json:"notes"`
	Maxes       map[string]float64   `json:"maxes"`
	CurrentWeek *int                 `json:"currentWeek"`
	BlockNum    *int                 `json:"blockNum"`
}

// ExportSet is one logged set. Zero weight or reps means not entered.
type ExportSet struct {
	Weight float64 `json:"w"`
	Reps   float64 `json:"r"`
	Done   bool    `json:"done"`
}

// Stats tracks import progress.
type Stats struct {
	SetsImported  int      `json:"sets_imported"`
	SetsSkipped   int      `json:"sets_skipped"`
	MaxesImported int      `json:"maxes_imported"`
	NotesImported int      `json:"notes_imported"`
	NotesSkipped  int      `json:"notes_skipped"`
	StateUpdated  bool     `json:"state_updated"`
	Errors        []string `json:"errors,omitempty"`
}

// Importer writes an Export into a program in one transaction.
type Importer struct {
	db     *storage.DB
	log    *slog.Logger
	dryRun bool
}

// New creates a new Importer. A dry run does everything except commit.
func New(db *storage.DB, log *slog.Logger, dryRun bool) *Importer {
	return &Importer{db: db, log: log, dryRun: dryRun}
}

var errDryRun = errors.New("dry run")

// ImportFile imports a backup file, which may be gzip-compressed.
func (imp *Importer) ImportFile(ctx context.Context, programID, path string) (*Stats, error) {
	rc, err := openExport(path)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return imp.Import(ctx, programID, rc)
}

// Import reads a backup from r. Entries that do not match the program are
// reported in Stats.Errors and skipped; storage failures abort the import
// and nothing is written.
func (imp *Importer) Import(ctx context.Context, programID string, r io.Reader) (*Stats, error) {
	var exp Export
	if err := json.NewDecoder(r).Decode(&exp); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidExport, err)
	}

	stats := &Stats{}
	err := imp.db.WithExclusiveTransaction(ctx, func(q *storage.Queries) error {
		*stats = Stats{}
		return imp.apply(ctx, q, programID, &exp, stats)
	})
	if err != nil && !errors.Is(err, errDryRun) {
		return nil, fmt.Errorf("importing into %s: %w", programID, err)
	}

	imp.log.Info("import finished",
		"program", programID,
		"dry_run", imp.dryRun,
		"sets", stats.SetsImported,
		"sets_skipped", stats.SetsSkipped,
		"maxes", stats.MaxesImported,
		"notes", stats.NotesImported,
		"errors", len(stats.Errors),
	)
	return stats, nil
}

func (imp *Importer) apply(ctx context.Context, q *storage.Queries, programID string, exp *Export, stats *Stats) error {
	prog, err := q.GetProgram(ctx, programID)
	if err != nil {
		return err
	}
	days, err := q.ListDays(ctx, prog.ID)
	if err != nil {
		return err
	}
	exercises := map[string]models.Exercise{}
	for _, d := range days {
		list, err := q.ListExercises(ctx, d.ID)
		if err != nil {
			return err
		}
		for _, ex := range list {
			exercises[ex.Key] = ex
		}
	}

	// Maxes are recorded against the backup's block. An invalid block is
	// reported once and the maxes fall back to block 1.
	block := 1
	var upd models.ProgramStateUpdate
	if b := exp.BlockNum; b != nil {
		if *b < 1 {
			stats.Errors = append(stats.Errors, fmt.Sprintf("invalid block: %d", *b))
		} else {
			block = *b
			upd.BlockNum = b
		}
	}
	if w := exp.CurrentWeek; w != nil {
		if *w < 0 || *w > progression.DeloadWeek {
			stats.Errors = append(stats.Errors, fmt.Sprintf("invalid current week: %d", *w))
		} else {
			upd.CurrentWeek = w
		}
	}

	// Sorted for deterministic error order.
	keys := make([]string, 0, len(exp.Logs))
	for k := range exp.Logs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		ref, err := ParseLogKey(key)
		if err != nil {
			stats.Errors = append(stats.Errors, err.Error())
			continue
		}
		ex, ok := exercises[ref.ExerciseKey]
		if !ok {
			stats.Errors = append(stats.Errors, "unknown exercise key: "+ref.ExerciseKey)
			continue
		}
		wl, err := q.EnsureWorkoutLog(ctx, prog.ID, ex.DayID, ref.BlockNum, ref.WeekIndex)
		if err != nil {
			return err
		}

		set := exp.Logs[key]
		var weight *float64
		if w, ok := calc.ValidateWeight(set.Weight); ok && w > 0 {
			weight = &w
		}
		var reps *int
		if n, ok := calc.ValidateReps(set.Reps); ok && n > 0 {
			reps = &n
		}
		slot := storage.SetSlot{WorkoutLogID: wl.ID, ExerciseID: ex.ID, SetIndex: ref.SetIndex}
		inserted, err := q.InsertSetLog(ctx, slot, weight, reps, set.Done)
		if err != nil {
			return err
		}
		if inserted {
			stats.SetsImported++
		} else {
			stats.SetsSkipped++
		}
	}

	maxKeys := make([]string, 0, len(exp.Maxes))
	for k := range exp.Maxes {
		maxKeys = append(maxKeys, k)
	}
	sort.Strings(maxKeys)
	for _, key := range maxKeys {
		ex, ok := exercises[key]
		if !ok {
			continue
		}
		v, ok := calc.ValidateWeight(exp.Maxes[key])
		if !ok || v <= 0 {
			stats.Errors = append(stats.Errors, fmt.Sprintf("invalid training max for %s: %v", key, exp.Maxes[key]))
			continue
		}
		tm := models.TrainingMax{ExerciseID: ex.ID, Value: v, BlockNum: block, Source: models.SourceImport}
		if err := q.InsertTrainingMax(ctx, &tm); err != nil {
			return err
		}
		stats.MaxesImported++
	}

	noteKeys := make([]string, 0, len(exp.Notes))
	for k := range exp.Notes {
		noteKeys = append(noteKeys, k)
	}
	sort.Strings(noteKeys)
	for _, key := range noteKeys {
		text := calc.NormalizeNote(exp.Notes[key])
		if text == "" {
			continue
		}
		exerciseID, ok := noteTarget(key, exercises)
		if !ok {
			stats.Errors = append(stats.Errors, "unknown note key: "+key)
			continue
		}
		inserted, err := q.ImportNote(ctx, prog.ID, exerciseID, text)
		if err != nil {
			return err
		}
		if inserted {
			stats.NotesImported++
		} else {
			stats.NotesSkipped++
		}
	}

	if upd.CurrentWeek != nil || upd.BlockNum != nil {
		if err := q.UpdateProgramState(ctx, prog.ID, upd); err != nil {
			return err
		}
		stats.StateUpdated = true
	}

	if imp.dryRun {
		return errDryRun
	}
	return nil
}

const workoutNotePrefix = "__workout__"

// noteTarget resolves a note key to an exercise id. A nil id with ok=true is
// a workout note. The longest known exercise key wins.
func noteTarget(key string, exercises map[string]models.Exercise) (*string, bool) {
	if rest, found := strings.CutPrefix(key, workoutNotePrefix+"_"); found && rest != "" {
		return nil, true
	}
	parts := strings.Split(key, "_")
	for i := len(parts) - 1; i >= 1; i-- {
		if ex, ok := exercises[strings.Join(parts[:i], "_")]; ok {
			id := ex.ID
			return &id, true
		}
	}
	return nil, false
}

// LogRef addresses a set in the backup's key format.
type LogRef struct {
	ExerciseKey string
	SetIndex    int
	BlockNum    int
	WeekIndex   int
}

// ParseLogKey splits "<exerciseKey>_<setIndex>_<blockNum>_<weekIndex>".
func ParseLogKey(key string) (LogRef, error) {
	parts := strings.Split(key, "_")
	if len(parts) < 4 {
		return LogRef{}, fmt.Errorf("malformed log key: %q", key)
	}
	n := len(parts)
	nums := make([]int, 3)
	for i, p := range parts[n-3:] {
		v, err := strconv.Atoi(p)
		if err != nil {
			return LogRef{}, fmt.Errorf("malformed log key: %q", key)
		}
		nums[i] = v
	}
	ref := LogRef{
		ExerciseKey: strings.Join(parts[:n-3], "_"),
		SetIndex:    nums[0],
		BlockNum:    nums[1],
		WeekIndex:   nums[2],
	}
	if ref.ExerciseKey == "" || ref.SetIndex < 0 || ref.BlockNum < 1 || ref.WeekIndex < 0 || ref.WeekIndex > progression.DeloadWeek {
		return LogRef{}, fmt.Errorf("malformed log key: %q", key)
	}
	return ref, nil
}
