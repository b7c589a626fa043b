package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/claude/forge/internal/models"
)

// SetSlot identifies one set of one exercise within a workout log.
type SetSlot struct {
	WorkoutLogID string
	ExerciseID   string
	SetIndex     int
}

const workoutLogColumns = `id, program_id, day_id, block_num, week_index, started_at`

// FindWorkoutLog returns the log for a program day in a given block and week.
func (q *Queries) FindWorkoutLog(ctx context.Context, programID, dayID string, blockNum, weekIndex int) (models.WorkoutLog, error) {
	var wl models.WorkoutLog
	err := q.queryRow(ctx,
		`SELECT `+workoutLogColumns+` FROM workout_logs
		 WHERE program_id = ? AND day_id = ? AND block_num = ? AND week_index = ?`,
		programID, dayID, blockNum, weekIndex).
		Scan(&wl.ID, &wl.ProgramID, &wl.DayID, &wl.BlockNum, &wl.WeekIndex, &wl.StartedAt)
	if err != nil {
		return models.WorkoutLog{}, notFound(err, "workout log")
	}
	return wl, nil
}

// EnsureWorkoutLog finds or creates the log for a program day in a given block and week.
func (q *Queries) EnsureWorkoutLog(ctx context.Context, programID, dayID string, blockNum, weekIndex int) (models.WorkoutLog, error) {
	wl, err := q.FindWorkoutLog(ctx, programID, dayID, blockNum, weekIndex)
	if err == nil {
		return wl, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return models.WorkoutLog{}, err
	}

	wl = models.WorkoutLog{
		ID:        uuid.NewString(),
		ProgramID: programID,
		DayID:     dayID,
		BlockNum:  blockNum,
		WeekIndex: weekIndex,
		StartedAt: now(),
	}
	_, err = q.exec(ctx,
		`INSERT INTO workout_logs (`+workoutLogColumns+`) VALUES (?, ?, ?, ?, ?, ?)`,
		wl.ID, wl.ProgramID, wl.DayID, wl.BlockNum, wl.WeekIndex, wl.StartedAt)
	if err != nil {
		return models.WorkoutLog{}, fmt.Errorf("inserting workout log: %w", err)
	}
	return wl, nil
}

// UpsertSetWeight stores the weight of a set slot. A nil weight clears it.
func (q *Queries) UpsertSetWeight(ctx context.Context, slot SetSlot, weight *float64) error {
	_, err := q.exec(ctx,
		`INSERT INTO set_logs (id, workout_log_id, exercise_id, set_index, weight, is_completed, logged_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (workout_log_id, exercise_id, set_index)
		 DO UPDATE SET weight = excluded.weight, logged_at = excluded.logged_at`,
		uuid.NewString(), slot.WorkoutLogID, slot.ExerciseID, slot.SetIndex, weight, false, now())
	if err != nil {
		return fmt.Errorf("upserting set weight: %w", err)
	}
	return nil
}

// UpsertSetReps stores the reps of a set slot. Nil reps clear it.
func (q *Queries) UpsertSetReps(ctx context.Context, slot SetSlot, reps *int) error {
	_, err := q.exec(ctx,
		`INSERT INTO set_logs (id, workout_log_id, exercise_id, set_index, reps, is_completed, logged_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (workout_log_id, exercise_id, set_index)
		 DO UPDATE SET reps = excluded.reps, logged_at = excluded.logged_at`,
		uuid.NewString(), slot.WorkoutLogID, slot.ExerciseID, slot.SetIndex, reps, false, now())
	if err != nil {
		return fmt.Errorf("upserting set reps: %w", err)
	}
	return nil
}

// ToggleSetCompleted flips the completed flag of a set slot and returns the
// new value. A missing slot is created as completed.
func (q *Queries) ToggleSetCompleted(ctx context.Context, slot SetSlot) (bool, error) {
	_, err := q.exec(ctx,
		`INSERT INTO set_logs (id, workout_log_id, exercise_id, set_index, is_completed, logged_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT (workout_log_id, exercise_id, set_index)
		 DO UPDATE SET is_completed = NOT set_logs.is_completed, logged_at = excluded.logged_at`,
		uuid.NewString(), slot.WorkoutLogID, slot.ExerciseID, slot.SetIndex, true, now())
	if err != nil {
		return false, fmt.Errorf("toggling set: %w", err)
	}

	var completed bool
	err = q.queryRow(ctx,
		`SELECT is_completed FROM set_logs WHERE workout_log_id = ? AND exercise_id = ? AND set_index = ?`,
		slot.WorkoutLogID, slot.ExerciseID, slot.SetIndex).Scan(&completed)
	if err != nil {
		return false, notFound(err, "set log")
	}
	return completed, nil
}

// InsertSetLog stores a complete set slot unless one already exists. It
// reports whether a row was written.
func (q *Queries) InsertSetLog(ctx context.Context, slot SetSlot, weight *float64, reps *int, completed bool) (bool, error) {
	res, err := q.exec(ctx,
		`INSERT INTO set_logs (id, workout_log_id, exercise_id, set_index, weight, reps, is_completed, logged_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (workout_log_id, exercise_id, set_index) DO NOTHING`,
		uuid.NewString(), slot.WorkoutLogID, slot.ExerciseID, slot.SetIndex, weight, reps, completed, now())
	if err != nil {
		return false, fmt.Errorf("inserting set log: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("inserting set log: %w", err)
	}
	return n > 0, nil
}

// DeleteSetLog removes a set slot. Deleting a missing slot is not an error.
func (q *Queries) DeleteSetLog(ctx context.Context, slot SetSlot) error {
	_, err := q.exec(ctx,
		`DELETE FROM set_logs WHERE workout_log_id = ? AND exercise_id = ? AND set_index = ?`,
		slot.WorkoutLogID, slot.ExerciseID, slot.SetIndex)
	if err != nil {
		return fmt.Errorf("deleting set log: %w", err)
	}
	return nil
}

// ListSetLogs returns the set logs of a workout log ordered by exercise and set index.
func (q *Queries) ListSetLogs(ctx context.Context, workoutLogID string) ([]models.SetLog, error) {
	rows, err := q.query(ctx,
		`SELECT id, workout_log_id, exercise_id, set_index, weight, reps, is_completed, logged_at
		 FROM set_logs WHERE workout_log_id = ?
		 ORDER BY exercise_id, set_index`, workoutLogID)
	if err != nil {
		return nil, fmt.Errorf("querying set logs: %w", err)
	}
	defer rows.Close()

	var out []models.SetLog
	for rows.Next() {
		var sl models.SetLog
		if err := rows.Scan(&sl.ID, &sl.WorkoutLogID, &sl.ExerciseID, &sl.SetIndex,
			&sl.Weight, &sl.Reps, &sl.IsCompleted, &sl.LoggedAt); err != nil {
			return nil, fmt.Errorf("scanning set log: %w", err)
		}
		out = append(out, sl)
	}
	return out, rows.Err()
}

// ListCompletedSets returns completed sets with a positive weight and positive
// reps for one exercise in one block and week of a program.
func (q *Queries) ListCompletedSets(ctx context.Context, sq models.SetQuery) ([]models.LoggedSet, error) {
	rows, err := q.query(ctx,
		`SELECT sl.weight, sl.reps
		 FROM set_logs sl JOIN workout_logs wl ON wl.id = sl.workout_log_id
		 WHERE wl.program_id = ? AND sl.exercise_id = ? AND wl.block_num = ? AND wl.week_index = ?
		   AND sl.is_completed = ?
		   AND sl.weight IS NOT NULL AND sl.weight > 0
		   AND sl.reps IS NOT NULL AND sl.reps > 0
		 ORDER BY wl.started_at, sl.set_index`,
		sq.ProgramID, sq.ExerciseID, sq.BlockNum, sq.WeekIndex, true)
	if err != nil {
		return nil, fmt.Errorf("querying completed sets: %w", err)
	}
	defer rows.Close()

	var out []models.LoggedSet
	for rows.Next() {
		var s models.LoggedSet
		if err := rows.Scan(&s.Weight, &s.Reps); err != nil {
			return nil, fmt.Errorf("scanning completed set: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
