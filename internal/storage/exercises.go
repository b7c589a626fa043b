package storage

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/claude/forge/internal/models"
)

// InsertDay inserts a day row. ID is filled in when empty.
func (q *Queries) InsertDay(ctx context.Context, d *models.Day) error {
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	_, err := q.exec(ctx,
		`INSERT INTO days (id, program_id, day_index, name, subtitle, focus) VALUES (?, ?, ?, ?, ?, ?)`,
		d.ID, d.ProgramID, d.DayIndex, d.Name, d.Subtitle, d.Focus)
	if err != nil {
		return fmt.Errorf("inserting day: %w", err)
	}
	return nil
}

// ListDays returns the program's days ordered by index, without exercises.
func (q *Queries) ListDays(ctx context.Context, programID string) ([]models.Day, error) {
	rows, err := q.query(ctx,
		`SELECT id, program_id, day_index, name, subtitle, focus FROM days WHERE program_id = ? ORDER BY day_index`,
		programID)
	if err != nil {
		return nil, fmt.Errorf("querying days: %w", err)
	}
	defer rows.Close()

	var out []models.Day
	for rows.Next() {
		var d models.Day
		if err := rows.Scan(&d.ID, &d.ProgramID, &d.DayIndex, &d.Name, &d.Subtitle, &d.Focus); err != nil {
			return nil, fmt.Errorf("scanning day: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// InsertExercise inserts an exercise and, for wave exercises, its wave config.
func (q *Queries) InsertExercise(ctx context.Context, ex *models.Exercise) error {
	if ex.ID == "" {
		ex.ID = uuid.NewString()
	}
	_, err := q.exec(ctx,
		`INSERT INTO exercises (id, day_id, exercise_index, exercise_key, name, category, sets, reps, default_weight, note, is_wave)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		ex.ID, ex.DayID, ex.ExerciseIndex, ex.Key, ex.Name, string(ex.Category),
		ex.Sets, ex.Reps, ex.DefaultWeight, ex.Note, ex.IsWave)
	if err != nil {
		return fmt.Errorf("inserting exercise %s: %w", ex.Key, err)
	}
	if ex.IsWave && ex.Wave != nil {
		ex.Wave.ExerciseID = ex.ID
		if err := q.InsertWaveConfig(ctx, ex.Wave); err != nil {
			return err
		}
	}
	return nil
}

const exerciseColumns = `e.id, e.day_id, e.exercise_index, e.exercise_key, e.name, e.category, e.sets, e.reps,
	e.default_weight, e.note, e.is_wave`

func scanExercise(row rowScanner) (models.Exercise, error) {
	var ex models.Exercise
	var category string
	err := row.Scan(&ex.ID, &ex.DayID, &ex.ExerciseIndex, &ex.Key, &ex.Name, &category,
		&ex.Sets, &ex.Reps, &ex.DefaultWeight, &ex.Note, &ex.IsWave)
	ex.Category = models.Category(category)
	return ex, err
}

func (q *Queries) listExercises(ctx context.Context, query string, args ...any) ([]models.Exercise, error) {
	rows, err := q.query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying exercises: %w", err)
	}
	var out []models.Exercise
	for rows.Next() {
		ex, err := scanExercise(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("scanning exercise: %w", err)
		}
		out = append(out, ex)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("iterating exercises: %w", err)
	}
	rows.Close()

	// Wave configs are loaded after the cursor is closed; pgx cannot run a
	// second query on a connection with open rows.
	for i := range out {
		if !out[i].IsWave {
			continue
		}
		cfg, err := q.GetWaveConfig(ctx, out[i].ID)
		if err != nil {
			return nil, err
		}
		out[i].Wave = cfg
	}
	return out, nil
}

// ListExercises returns a day's exercises ordered by index, wave configs included.
func (q *Queries) ListExercises(ctx context.Context, dayID string) ([]models.Exercise, error) {
	return q.listExercises(ctx,
		`SELECT `+exerciseColumns+` FROM exercises e WHERE e.day_id = ? ORDER BY e.exercise_index`, dayID)
}

// ListWaveExercises returns every wave exercise of a program in day then exercise order.
func (q *Queries) ListWaveExercises(ctx context.Context, programID string) ([]models.Exercise, error) {
	return q.listExercises(ctx,
		`SELECT `+exerciseColumns+`
		 FROM exercises e JOIN days d ON d.id = e.day_id
		 WHERE d.program_id = ? AND e.is_wave = ?
		 ORDER BY d.day_index, e.exercise_index`, programID, true)
}

// GetExercise returns one exercise with its wave config.
func (q *Queries) GetExercise(ctx context.Context, id string) (models.Exercise, error) {
	out, err := q.listExercises(ctx, `SELECT `+exerciseColumns+` FROM exercises e WHERE e.id = ?`, id)
	if err != nil {
		return models.Exercise{}, err
	}
	if len(out) == 0 {
		return models.Exercise{}, fmt.Errorf("exercise %s: %w", id, ErrNotFound)
	}
	return out[0], nil
}

// ExerciseProgramID returns the id of the program owning the exercise.
func (q *Queries) ExerciseProgramID(ctx context.Context, exerciseID string) (string, error) {
	var programID string
	err := q.queryRow(ctx,
		`SELECT d.program_id FROM exercises e JOIN days d ON d.id = e.day_id WHERE e.id = ?`,
		exerciseID).Scan(&programID)
	if err != nil {
		return "", notFound(err, "exercise "+exerciseID)
	}
	return programID, nil
}

// InsertWaveConfig inserts a wave config with its warmups, weeks and week sets.
func (q *Queries) InsertWaveConfig(ctx context.Context, cfg *models.WaveConfig) error {
	if cfg.ID == "" {
		cfg.ID = uuid.NewString()
	}
	_, err := q.exec(ctx,
		`INSERT INTO wave_configs (id, exercise_id, base_max) VALUES (?, ?, ?)`,
		cfg.ID, cfg.ExerciseID, cfg.BaseMax)
	if err != nil {
		return fmt.Errorf("inserting wave config: %w", err)
	}

	for i := range cfg.Warmups {
		w := &cfg.Warmups[i]
		if w.ID == "" {
			w.ID = uuid.NewString()
		}
		_, err := q.exec(ctx,
			`INSERT INTO wave_warmups (id, wave_config_id, set_index, reps, percentage) VALUES (?, ?, ?, ?, ?)`,
			w.ID, cfg.ID, w.SetIndex, w.Reps, w.Percentage)
		if err != nil {
			return fmt.Errorf("inserting wave warmup: %w", err)
		}
	}

	for i := range cfg.Weeks {
		wk := &cfg.Weeks[i]
		if wk.ID == "" {
			wk.ID = uuid.NewString()
		}
		_, err := q.exec(ctx,
			`INSERT INTO wave_weeks (id, wave_config_id, week_index, label) VALUES (?, ?, ?, ?)`,
			wk.ID, cfg.ID, wk.WeekIndex, wk.Label)
		if err != nil {
			return fmt.Errorf("inserting wave week %d: %w", wk.WeekIndex, err)
		}
		for j := range wk.Sets {
			s := &wk.Sets[j]
			if s.ID == "" {
				s.ID = uuid.NewString()
			}
			_, err := q.exec(ctx,
				`INSERT INTO wave_week_sets (id, wave_week_id, set_index, reps, percentage, is_backoff) VALUES (?, ?, ?, ?, ?, ?)`,
				s.ID, wk.ID, s.SetIndex, s.Reps, s.Percentage, s.IsBackoff)
			if err != nil {
				return fmt.Errorf("inserting wave week set: %w", err)
			}
		}
	}
	return nil
}

// GetWaveConfig returns the wave config of an exercise. Warmups, weeks and
// sets come back in storage order; callers sort by index.
func (q *Queries) GetWaveConfig(ctx context.Context, exerciseID string) (*models.WaveConfig, error) {
	cfg := &models.WaveConfig{}
	err := q.queryRow(ctx,
		`SELECT id, exercise_id, base_max FROM wave_configs WHERE exercise_id = ?`, exerciseID).
		Scan(&cfg.ID, &cfg.ExerciseID, &cfg.BaseMax)
	if err != nil {
		return nil, notFound(err, "wave config for exercise "+exerciseID)
	}

	warmups, err := q.query(ctx,
		`SELECT id, set_index, reps, percentage FROM wave_warmups WHERE wave_config_id = ? ORDER BY set_index`, cfg.ID)
	if err != nil {
		return nil, fmt.Errorf("querying wave warmups: %w", err)
	}
	for warmups.Next() {
		var w models.WarmupStep
		if err := warmups.Scan(&w.ID, &w.SetIndex, &w.Reps, &w.Percentage); err != nil {
			warmups.Close()
			return nil, fmt.Errorf("scanning wave warmup: %w", err)
		}
		cfg.Warmups = append(cfg.Warmups, w)
	}
	warmups.Close()
	if err := warmups.Err(); err != nil {
		return nil, fmt.Errorf("iterating wave warmups: %w", err)
	}

	sets, err := q.query(ctx,
		`SELECT w.id, w.week_index, w.label, s.id, s.set_index, s.reps, s.percentage, s.is_backoff
		 FROM wave_weeks w LEFT JOIN wave_week_sets s ON s.wave_week_id = w.id
		 WHERE w.wave_config_id = ?
		 ORDER BY w.week_index, s.set_index`, cfg.ID)
	if err != nil {
		return nil, fmt.Errorf("querying wave weeks: %w", err)
	}
	defer sets.Close()

	for sets.Next() {
		var (
			weekID, label string
			weekIndex     int
			setID         *string
			setIndex      *int
			reps          *int
			pct           *float64
			backoff       *bool
		)
		if err := sets.Scan(&weekID, &weekIndex, &label, &setID, &setIndex, &reps, &pct, &backoff); err != nil {
			return nil, fmt.Errorf("scanning wave week: %w", err)
		}
		if n := len(cfg.Weeks); n == 0 || cfg.Weeks[n-1].ID != weekID {
			cfg.Weeks = append(cfg.Weeks, models.WeekPlan{ID: weekID, WeekIndex: weekIndex, Label: label, Sets: []models.WorkingSet{}})
		}
		if setID == nil {
			continue
		}
		wk := &cfg.Weeks[len(cfg.Weeks)-1]
		wk.Sets = append(wk.Sets, models.WorkingSet{
			ID:         *setID,
			SetIndex:   *setIndex,
			Reps:       *reps,
			Percentage: *pct,
			IsBackoff:  *backoff,
		})
	}
	if err := sets.Err(); err != nil {
		return nil, fmt.Errorf("iterating wave weeks: %w", err)
	}
	if cfg.Warmups == nil {
		cfg.Warmups = []models.WarmupStep{}
	}
	return cfg, nil
}
