// Package storagetest opens migrated sqlite databases for tests.
package storagetest

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/claude/forge/internal/models"
	"github.com/claude/forge/internal/storage"
)

// DSN returns a sqlite DSN for path with the pragmas the application uses.
func DSN(path string) string {
	return "file:" + path + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
}

// Open returns a migrated database in a temp directory. It is closed when the test ends.
func Open(t testing.TB) *storage.DB {
	t.Helper()
	dsn := DSN(filepath.Join(t.TempDir(), "forge.db"))
	require.NoError(t, storage.RunMigrations(storage.DialectSQLite, dsn))

	db, err := storage.Open(context.Background(), storage.DialectSQLite, dsn, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

// Template is a small two-day program with two wave lifts and one accessory.
// Squat uses base max 325 and bench 270.
func Template() *models.Template {
	warmup := []models.TemplateStep{{Reps: 5, Pct: 0.415}, {Reps: 3, Pct: 0.569}}
	weeks := []models.TemplateWeek{
		{Label: "Week 1", Sets: []models.TemplateStep{{Reps: 5, Pct: 0.754}, {Reps: 5, Pct: 0.815}, {Reps: 5, Pct: 0.877}, {Reps: 8, Pct: 0.754, Backoff: true}}},
		{Label: "Week 2", Sets: []models.TemplateStep{{Reps: 3, Pct: 0.8}, {Reps: 3, Pct: 0.86}, {Reps: 3, Pct: 0.92}, {Reps: 6, Pct: 0.8, Backoff: true}}},
		{Label: "Week 3", Sets: []models.TemplateStep{{Reps: 5, Pct: 0.75}, {Reps: 3, Pct: 0.85}, {Reps: 1, Pct: 0.95}, {Reps: 5, Pct: 0.75, Backoff: true}}},
		{Label: "Deload", Sets: []models.TemplateStep{{Reps: 5, Pct: 0.4}, {Reps: 5, Pct: 0.5}, {Reps: 5, Pct: 0.6}}},
	}
	return &models.Template{
		ID:   "test-template",
		Name: "Test Program",
		Days: []models.TemplateDay{
			{
				Name: "Day 1",
				Exercises: []models.TemplateExercise{
					{Key: "squat", Name: "Squat", Category: models.CategoryAbsolute, Sets: 4, Reps: 5,
						Wave: &models.TemplateWave{BaseMax: 325, Warmup: warmup, Weeks: weeks}},
					{Key: "row", Name: "Barbell Row", Category: models.CategoryAccessory, Sets: 3, Reps: 10, DefaultWeight: 135},
				},
			},
			{
				Name: "Day 2",
				Exercises: []models.TemplateExercise{
					{Key: "bench", Name: "Bench Press", Category: models.CategoryAbsolute, Sets: 4, Reps: 5,
						Wave: &models.TemplateWave{BaseMax: 270, Warmup: warmup, Weeks: weeks}},
				},
			},
		},
	}
}

// Fork forks Template into db and returns the loaded program.
func Fork(t testing.TB, db *storage.DB) *models.Program {
	t.Helper()
	ctx := context.Background()
	p, err := db.ForkTemplate(ctx, Template())
	require.NoError(t, err)
	loaded, err := db.LoadProgram(ctx, p.ID)
	require.NoError(t, err)
	return loaded
}

// Exercise returns the program exercise with the given key.
func Exercise(t testing.TB, p *models.Program, key string) models.Exercise {
	t.Helper()
	for _, d := range p.Days {
		for _, ex := range d.Exercises {
			if ex.Key == key {
				return ex
			}
		}
	}
	t.Fatalf("exercise %q not in program", key)
	return models.Exercise{}
}

// LogCompleted records a completed set for ex in the program's given block and week.
func LogCompleted(t testing.TB, db *storage.DB, p *models.Program, ex models.Exercise, block, week, setIndex int, weight float64, reps int) {
	t.Helper()
	ctx := context.Background()
	err := db.WithExclusiveTransaction(ctx, func(q *storage.Queries) error {
		wl, err := q.EnsureWorkoutLog(ctx, p.ID, ex.DayID, block, week)
		if err != nil {
			return err
		}
		slot := storage.SetSlot{WorkoutLogID: wl.ID, ExerciseID: ex.ID, SetIndex: setIndex}
		if err := q.UpsertSetWeight(ctx, slot, &weight); err != nil {
			return err
		}
		if err := q.UpsertSetReps(ctx, slot, &reps); err != nil {
			return err
		}
		_, err = q.ToggleSetCompleted(ctx, slot)
		return err
	})
	require.NoError(t, err)
}
