package workout

import (
	"context"
	"fmt"

	"github.com/claude/forge/internal/calc"
	"github.com/claude/forge/internal/models"
	"github.com/claude/forge/internal/storage"
)

// Note history limits.
const (
	DefaultNoteHistory = 3
	MaxNoteHistory     = 50
)

// SaveExerciseNote sets the note of an exercise for the program's current
// block and week. The text is trimmed and capped at calc.MaxNoteLength;
// empty text clears the note. It returns the stored text.
func (s *Service) SaveExerciseNote(ctx context.Context, programID, exerciseID, text string) (string, error) {
	text = calc.NormalizeNote(text)
	err := s.db.WithExclusiveTransaction(ctx, func(q *storage.Queries) error {
		wl, ex, err := currentLog(ctx, q, programID, exerciseID)
		if err != nil {
			return err
		}
		return writeNote(ctx, q, storage.NoteSlot{ProgramID: programID, WorkoutLogID: wl.ID, ExerciseID: ex.ID}, text)
	})
	if err != nil {
		return "", fmt.Errorf("saving exercise note: %w", err)
	}
	s.logger.Debug("exercise note saved", "program", programID, "exercise", exerciseID, "cleared", text == "")
	return text, nil
}

// SaveWorkoutNote sets the note of a program day for the current block and
// week. It follows the same rules as SaveExerciseNote.
func (s *Service) SaveWorkoutNote(ctx context.Context, programID string, dayIndex int, text string) (string, error) {
	text = calc.NormalizeNote(text)
	err := s.db.WithExclusiveTransaction(ctx, func(q *storage.Queries) error {
		prog, err := q.GetProgram(ctx, programID)
		if err != nil {
			return err
		}
		days, err := q.ListDays(ctx, prog.ID)
		if err != nil {
			return err
		}
		if dayIndex < 0 || dayIndex >= len(days) {
			return fmt.Errorf("%w: day %d of %d", ErrInvalidValue, dayIndex, len(days))
		}
		wl, err := q.EnsureWorkoutLog(ctx, prog.ID, days[dayIndex].ID, prog.BlockNum, prog.CurrentWeek)
		if err != nil {
			return err
		}
		return writeNote(ctx, q, storage.NoteSlot{ProgramID: prog.ID, WorkoutLogID: wl.ID}, text)
	})
	if err != nil {
		return "", fmt.Errorf("saving workout note: %w", err)
	}
	s.logger.Debug("workout note saved", "program", programID, "day", dayIndex, "cleared", text == "")
	return text, nil
}

func writeNote(ctx context.Context, q *storage.Queries, slot storage.NoteSlot, text string) error {
	if text == "" {
		return q.DeleteNote(ctx, slot)
	}
	_, err := q.SaveNote(ctx, slot, text)
	return err
}

// ExerciseNotes returns an exercise's notes from every workout, newest
// first. A non-positive limit uses DefaultNoteHistory; larger limits are
// capped at MaxNoteHistory.
func (s *Service) ExerciseNotes(ctx context.Context, exerciseID string, limit int) ([]models.Note, error) {
	switch {
	case limit <= 0:
		limit = DefaultNoteHistory
	case limit > MaxNoteHistory:
		limit = MaxNoteHistory
	}
	if _, err := s.db.GetExercise(ctx, exerciseID); err != nil {
		return nil, err
	}
	return s.db.ListExerciseNotes(ctx, exerciseID, limit)
}
