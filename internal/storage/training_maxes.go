package storage

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/claude/forge/internal/models"
)

const trainingMaxColumns = `id, exercise_id, value, block_num, source, created_at`

func scanTrainingMax(row rowScanner) (models.TrainingMax, error) {
	var tm models.TrainingMax
	var source string
	err := row.Scan(&tm.ID, &tm.ExerciseID, &tm.Value, &tm.BlockNum, &source, &tm.CreatedAt)
	tm.Source = models.TrainingMaxSource(source)
	return tm, err
}

// InsertTrainingMax appends a training max row. ID and CreatedAt are filled in when empty.
func (q *Queries) InsertTrainingMax(ctx context.Context, tm *models.TrainingMax) error {
	if tm.ID == "" {
		tm.ID = uuid.NewString()
	}
	if tm.CreatedAt.IsZero() {
		tm.CreatedAt = now()
	}
	_, err := q.exec(ctx,
		`INSERT INTO training_maxes (`+trainingMaxColumns+`) VALUES (?, ?, ?, ?, ?, ?)`,
		tm.ID, tm.ExerciseID, tm.Value, tm.BlockNum, string(tm.Source), tm.CreatedAt)
	if err != nil {
		return fmt.Errorf("inserting training max for %s: %w", tm.ExerciseID, err)
	}
	return nil
}

// LatestTrainingMax returns the most recently created training max row for
// the exercise, ties broken by insertion order. It returns ErrNotFound when
// the exercise has no history.
func (q *Queries) LatestTrainingMax(ctx context.Context, exerciseID string) (models.TrainingMax, error) {
	tm, err := scanTrainingMax(q.queryRow(ctx,
		`SELECT `+trainingMaxColumns+` FROM training_maxes
		 WHERE exercise_id = ?
		 ORDER BY created_at DESC, seq DESC
		 LIMIT 1`, exerciseID))
	if err != nil {
		return models.TrainingMax{}, notFound(err, "training max for exercise "+exerciseID)
	}
	return tm, nil
}

// ListTrainingMaxes returns the exercise's training max history, newest first.
func (q *Queries) ListTrainingMaxes(ctx context.Context, exerciseID string) ([]models.TrainingMax, error) {
	rows, err := q.query(ctx,
		`SELECT `+trainingMaxColumns+` FROM training_maxes
		 WHERE exercise_id = ?
		 ORDER BY created_at DESC, seq DESC`, exerciseID)
	if err != nil {
		return nil, fmt.Errorf("querying training maxes: %w", err)
	}
	defer rows.Close()

	out := []models.TrainingMax{}
	for rows.Next() {
		tm, err := scanTrainingMax(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning training max: %w", err)
		}
		out = append(out, tm)
	}
	return out, rows.Err()
}
