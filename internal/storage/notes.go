package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/claude/forge/internal/models"
)

// NoteSlot addresses the note of a workout log. An empty ExerciseID is the
// workout note.
type NoteSlot struct {
	ProgramID    string
	WorkoutLogID string
	ExerciseID   string
}

func (s NoteSlot) exerciseID() *string {
	if s.ExerciseID == "" {
		return nil
	}
	id := s.ExerciseID
	return &id
}

const noteSelect = `SELECT n.id, n.program_id, n.workout_log_id, n.exercise_id, n.note,
	wl.block_num, wl.week_index, n.created_at, n.updated_at
	FROM notes n LEFT JOIN workout_logs wl ON wl.id = n.workout_log_id`

func scanNote(row rowScanner) (models.Note, error) {
	var n models.Note
	err := row.Scan(&n.ID, &n.ProgramID, &n.WorkoutLogID, &n.ExerciseID, &n.Text,
		&n.BlockNum, &n.WeekIndex, &n.CreatedAt, &n.UpdatedAt)
	return n, err
}

// GetNote returns the note stored in a slot.
func (q *Queries) GetNote(ctx context.Context, slot NoteSlot) (models.Note, error) {
	var row rowScanner
	if slot.ExerciseID == "" {
		row = q.queryRow(ctx, noteSelect+` WHERE n.workout_log_id = ? AND n.exercise_id IS NULL`,
			slot.WorkoutLogID)
	} else {
		row = q.queryRow(ctx, noteSelect+` WHERE n.workout_log_id = ? AND n.exercise_id = ?`,
			slot.WorkoutLogID, slot.ExerciseID)
	}
	n, err := scanNote(row)
	if err != nil {
		return models.Note{}, notFound(err, "note")
	}
	return n, nil
}

// SaveNote replaces the text of a slot's note, creating it when missing.
// The text must already be normalized and non-empty.
func (q *Queries) SaveNote(ctx context.Context, slot NoteSlot, text string) (models.Note, error) {
	n, err := q.GetNote(ctx, slot)
	switch {
	case err == nil:
		n.Text, n.UpdatedAt = text, now()
		if _, err := q.exec(ctx, `UPDATE notes SET note = ?, updated_at = ? WHERE id = ?`,
			n.Text, n.UpdatedAt, n.ID); err != nil {
			return models.Note{}, fmt.Errorf("updating note: %w", err)
		}
		return n, nil
	case !errors.Is(err, ErrNotFound):
		return models.Note{}, err
	}

	logID := slot.WorkoutLogID
	n = models.Note{
		ID:           uuid.NewString(),
		ProgramID:    slot.ProgramID,
		WorkoutLogID: &logID,
		ExerciseID:   slot.exerciseID(),
		Text:         text,
		CreatedAt:    now(),
	}
	n.UpdatedAt = n.CreatedAt
	if err := q.insertNote(ctx, &n); err != nil {
		return models.Note{}, err
	}
	return n, nil
}

func (q *Queries) insertNote(ctx context.Context, n *models.Note) error {
	_, err := q.exec(ctx,
		`INSERT INTO notes (id, program_id, workout_log_id, exercise_id, note, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		n.ID, n.ProgramID, n.WorkoutLogID, n.ExerciseID, n.Text, n.CreatedAt, n.UpdatedAt)
	if err != nil {
		return fmt.Errorf("inserting note: %w", err)
	}
	return nil
}

// DeleteNote removes a slot's note. Deleting a missing note is not an error.
func (q *Queries) DeleteNote(ctx context.Context, slot NoteSlot) error {
	var err error
	if slot.ExerciseID == "" {
		_, err = q.exec(ctx, `DELETE FROM notes WHERE workout_log_id = ? AND exercise_id IS NULL`,
			slot.WorkoutLogID)
	} else {
		_, err = q.exec(ctx, `DELETE FROM notes WHERE workout_log_id = ? AND exercise_id = ?`,
			slot.WorkoutLogID, slot.ExerciseID)
	}
	if err != nil {
		return fmt.Errorf("deleting note: %w", err)
	}
	return nil
}

// ImportNote stores a note that has no workout log. An identical note for
// the same program and exercise is not duplicated; the result reports
// whether a row was written.
func (q *Queries) ImportNote(ctx context.Context, programID string, exerciseID *string, text string) (bool, error) {
	var count int
	var err error
	if exerciseID == nil {
		err = q.queryRow(ctx,
			`SELECT COUNT(*) FROM notes
			 WHERE program_id = ? AND workout_log_id IS NULL AND exercise_id IS NULL AND note = ?`,
			programID, text).Scan(&count)
	} else {
		err = q.queryRow(ctx,
			`SELECT COUNT(*) FROM notes
			 WHERE program_id = ? AND workout_log_id IS NULL AND exercise_id = ? AND note = ?`,
			programID, *exerciseID, text).Scan(&count)
	}
	if err != nil {
		return false, fmt.Errorf("checking imported note: %w", err)
	}
	if count > 0 {
		return false, nil
	}

	n := models.Note{
		ID:         uuid.NewString(),
		ProgramID:  programID,
		ExerciseID: exerciseID,
		Text:       text,
		CreatedAt:  now(),
	}
	n.UpdatedAt = n.CreatedAt
	if err := q.insertNote(ctx, &n); err != nil {
		return false, err
	}
	return true, nil
}

// ListNotes returns the notes of a workout log, workout note first.
func (q *Queries) ListNotes(ctx context.Context, workoutLogID string) ([]models.Note, error) {
	return q.listNotes(ctx,
		noteSelect+` WHERE n.workout_log_id = ?
		 ORDER BY CASE WHEN n.exercise_id IS NULL THEN 0 ELSE 1 END, n.created_at`,
		workoutLogID)
}

// ListExerciseNotes returns an exercise's notes across all workouts, newest
// first, at most limit rows.
func (q *Queries) ListExerciseNotes(ctx context.Context, exerciseID string, limit int) ([]models.Note, error) {
	return q.listNotes(ctx,
		noteSelect+` WHERE n.exercise_id = ?
		 ORDER BY n.created_at DESC, n.id
		 LIMIT ?`,
		exerciseID, limit)
}

func (q *Queries) listNotes(ctx context.Context, query string, args ...any) ([]models.Note, error) {
	rows, err := q.query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying notes: %w", err)
	}
	defer rows.Close()

	var out []models.Note
	for rows.Next() {
		n, err := scanNote(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning note: %w", err)
		}
		out = append(out, n)
	}
	return out, rows.Err()
}
