// Package workout assembles day plans and records what the user lifted.
package workout

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"

	"github.com/claude/forge/internal/calc"
	"github.com/claude/forge/internal/models"
	"github.com/claude/forge/internal/progression"
	"github.com/claude/forge/internal/storage"
)

var (
	// ErrInvalidValue is returned for input that fails validation. Nothing is written.
	ErrInvalidValue = errors.New("invalid value")
	// ErrUnknownField is returned for set log fields other than weight and reps.
	ErrUnknownField = errors.New("unknown field")
)

// Field is an editable column of a set log.
type Field string

const (
	FieldWeight Field = "weight"
	FieldReps   Field = "reps"
)

// ParseField accepts "weight" or "reps".
func ParseField(s string) (Field, error) {
	switch f := Field(strings.ToLower(strings.TrimSpace(s))); f {
	case FieldWeight, FieldReps:
		return f, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownField, s)
}

// Slot addresses one set of one exercise in the program's current block and week.
type Slot struct {
	ProgramID  string `json:"program_id"`
	ExerciseID string `json:"exercise_id"`
	SetIndex   int    `json:"set_index"`
}

// Service reads plans and writes set logs. Every write goes through the
// database's exclusive transaction.
type Service struct {
	db     *storage.DB
	logger *slog.Logger
}

func NewService(db *storage.DB, logger *slog.Logger) *Service {
	return &Service{db: db, logger: logger}
}

// LogSet stores the weight or reps of a slot. An empty raw value clears the
// field. Values are validated and clamped; invalid input returns ErrInvalidValue.
func (s *Service) LogSet(ctx context.Context, slot Slot, field Field, raw string) error {
	raw = strings.TrimSpace(raw)

	var parsed float64
	if raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return fmt.Errorf("%w: %s %q", ErrInvalidValue, field, raw)
		}
		parsed = v
	}

	var write func(q *storage.Queries, ss storage.SetSlot) error
	switch field {
	case FieldWeight:
		var weight *float64
		if raw != "" {
			w, ok := calc.ValidateWeight(parsed)
			if !ok {
				return fmt.Errorf("%w: weight %q", ErrInvalidValue, raw)
			}
			weight = &w
		}
		write = func(q *storage.Queries, ss storage.SetSlot) error {
			return q.UpsertSetWeight(ctx, ss, weight)
		}
	case FieldReps:
		var reps *int
		if raw != "" {
			r, ok := calc.ValidateReps(parsed)
			if !ok {
				return fmt.Errorf("%w: reps %q", ErrInvalidValue, raw)
			}
			reps = &r
		}
		write = func(q *storage.Queries, ss storage.SetSlot) error {
			return q.UpsertSetReps(ctx, ss, reps)
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownField, field)
	}

	if err := s.withSlot(ctx, slot, write); err != nil {
		return fmt.Errorf("logging %s: %w", field, err)
	}
	return nil
}

// ToggleComplete flips the completed flag of a slot and returns the new value.
func (s *Service) ToggleComplete(ctx context.Context, slot Slot) (bool, error) {
	var completed bool
	err := s.withSlot(ctx, slot, func(q *storage.Queries, ss storage.SetSlot) error {
		var err error
		completed, err = q.ToggleSetCompleted(ctx, ss)
		return err
	})
	if err != nil {
		return false, fmt.Errorf("toggling set: %w", err)
	}
	return completed, nil
}

// ClearSet deletes the slot's set log. Clearing an empty slot is a no-op.
func (s *Service) ClearSet(ctx context.Context, slot Slot) error {
	err := s.withSlot(ctx, slot, func(q *storage.Queries, ss storage.SetSlot) error {
		return q.DeleteSetLog(ctx, ss)
	})
	if err != nil {
		return fmt.Errorf("clearing set: %w", err)
	}
	return nil
}

func (s *Service) withSlot(ctx context.Context, slot Slot, fn func(q *storage.Queries, ss storage.SetSlot) error) error {
	if slot.SetIndex < 0 {
		return fmt.Errorf("%w: set index %d", ErrInvalidValue, slot.SetIndex)
	}
	return s.db.WithExclusiveTransaction(ctx, func(q *storage.Queries) error {
		wl, ex, err := currentLog(ctx, q, slot.ProgramID, slot.ExerciseID)
		if err != nil {
			return err
		}
		return fn(q, storage.SetSlot{WorkoutLogID: wl.ID, ExerciseID: ex.ID, SetIndex: slot.SetIndex})
	})
}

// currentLog returns the workout log of the exercise's day in the program's
// current block and week, creating it when missing.
func currentLog(ctx context.Context, q *storage.Queries, programID, exerciseID string) (models.WorkoutLog, models.Exercise, error) {
	prog, err := q.GetProgram(ctx, programID)
	if err != nil {
		return models.WorkoutLog{}, models.Exercise{}, err
	}
	owner, err := q.ExerciseProgramID(ctx, exerciseID)
	if err != nil {
		return models.WorkoutLog{}, models.Exercise{}, err
	}
	if owner != prog.ID {
		return models.WorkoutLog{}, models.Exercise{}, fmt.Errorf("exercise %s in program %s: %w", exerciseID, prog.ID, storage.ErrNotFound)
	}
	ex, err := q.GetExercise(ctx, exerciseID)
	if err != nil {
		return models.WorkoutLog{}, models.Exercise{}, err
	}
	wl, err := q.EnsureWorkoutLog(ctx, prog.ID, ex.DayID, prog.BlockNum, prog.CurrentWeek)
	if err != nil {
		return models.WorkoutLog{}, models.Exercise{}, err
	}
	return wl, ex, nil
}

// SetCurrentDay selects the program day shown by default.
func (s *Service) SetCurrentDay(ctx context.Context, programID string, dayIndex int) error {
	err := s.db.WithExclusiveTransaction(ctx, func(q *storage.Queries) error {
		days, err := q.ListDays(ctx, programID)
		if err != nil {
			return err
		}
		if len(days) == 0 {
			return fmt.Errorf("program %s: %w", programID, storage.ErrNotFound)
		}
		if dayIndex < 0 || dayIndex >= len(days) {
			return fmt.Errorf("%w: day %d of %d", ErrInvalidValue, dayIndex, len(days))
		}
		return q.UpdateProgramState(ctx, programID, models.ProgramStateUpdate{CurrentDay: &dayIndex})
	})
	if err != nil {
		return fmt.Errorf("setting current day: %w", err)
	}
	s.logger.Info("current day set", "program", programID, "day", dayIndex)
	return nil
}

// SetCurrentWeek selects a week of the current block without touching
// training maxes.
func (s *Service) SetCurrentWeek(ctx context.Context, programID string, weekIndex int) error {
	if weekIndex < 0 || weekIndex > progression.DeloadWeek {
		return fmt.Errorf("%w: week %d", ErrInvalidValue, weekIndex)
	}
	err := s.db.WithExclusiveTransaction(ctx, func(q *storage.Queries) error {
		return q.UpdateProgramState(ctx, programID, models.ProgramStateUpdate{CurrentWeek: &weekIndex})
	})
	if err != nil {
		return fmt.Errorf("setting current week: %w", err)
	}
	s.logger.Info("current week set", "program", programID, "week", weekIndex)
	return nil
}

// TrainingMaxes returns an exercise's training max history, newest first.
func (s *Service) TrainingMaxes(ctx context.Context, exerciseID string) ([]models.TrainingMax, error) {
	if _, err := s.db.GetExercise(ctx, exerciseID); err != nil {
		return nil, err
	}
	return s.db.ListTrainingMaxes(ctx, exerciseID)
}

// WaveSets returns the prescription for one wave exercise at its effective
// training max.
func (s *Service) WaveSets(ctx context.Context, exerciseID string, weekIndex int) (ExercisePlan, error) {
	ex, err := s.db.GetExercise(ctx, exerciseID)
	if err != nil {
		return ExercisePlan{}, err
	}
	if !ex.IsWave {
		return ExercisePlan{}, fmt.Errorf("%w: exercise %s is not wave loaded", ErrInvalidValue, ex.Key)
	}
	return s.exercisePlan(ctx, ex, weekIndex, nil)
}

func percent(done, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(100 * float64(done) / float64(total)))
}
