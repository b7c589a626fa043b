package workout

import (
	"context"
	"errors"
	"fmt"

	"github.com/claude/forge/internal/models"
	"github.com/claude/forge/internal/progression"
	"github.com/claude/forge/internal/storage"
	"github.com/claude/forge/internal/wave"
)

// SetEntry pairs a prescribed set with what was logged for its slot.
type SetEntry struct {
	wave.PrescribedSet
	Logged *models.SetLog `json:"logged,omitempty"`
}

// ExercisePlan is one exercise of a day plan.
type ExercisePlan struct {
	ExerciseID  string          `json:"exercise_id"`
	Key         string          `json:"key"`
	Name        string          `json:"name"`
	Category    models.Category `json:"category"`
	Note        string          `json:"note,omitempty"`
	LoggedNote  string          `json:"logged_note,omitempty"`
	IsWave      bool            `json:"is_wave"`
	TrainingMax float64         `json:"training_max,omitempty"`
	WeekLabel   string          `json:"week_label,omitempty"`
	Sets        []SetEntry      `json:"sets"`
}

// Plan is everything needed to render and log one program day.
type Plan struct {
	ProgramID     string         `json:"program_id"`
	BlockNum      int            `json:"block_num"`
	WeekIndex     int            `json:"week_index"`
	DayIndex      int            `json:"day_index"`
	DayName       string         `json:"day_name"`
	Subtitle      string         `json:"subtitle"`
	Focus         string         `json:"focus"`
	WorkoutNote   string         `json:"workout_note,omitempty"`
	Exercises     []ExercisePlan `json:"exercises"`
	Completed     int            `json:"completed"`
	Total         int            `json:"total"`
	CompletionPct int            `json:"completion_pct"`
}

// DayPlan builds the plan for a day and week of the program's current block.
// Logged sets and notes are attached by slot; nothing is written.
func (s *Service) DayPlan(ctx context.Context, programID string, dayIndex, weekIndex int) (*Plan, error) {
	if weekIndex < 0 || weekIndex > progression.DeloadWeek {
		return nil, fmt.Errorf("%w: week %d", ErrInvalidValue, weekIndex)
	}
	prog, err := s.db.LoadProgram(ctx, programID)
	if err != nil {
		return nil, err
	}
	if dayIndex < 0 || dayIndex >= len(prog.Days) {
		return nil, fmt.Errorf("%w: day %d of %d", ErrInvalidValue, dayIndex, len(prog.Days))
	}
	day := prog.Days[dayIndex]

	logs := map[string]map[int]*models.SetLog{}
	var workoutNote string
	exerciseNotes := map[string]string{}
	wl, err := s.db.FindWorkoutLog(ctx, prog.ID, day.ID, prog.BlockNum, weekIndex)
	switch {
	case err == nil:
		rows, err := s.db.ListSetLogs(ctx, wl.ID)
		if err != nil {
			return nil, err
		}
		for i := range rows {
			r := &rows[i]
			if logs[r.ExerciseID] == nil {
				logs[r.ExerciseID] = map[int]*models.SetLog{}
			}
			logs[r.ExerciseID][r.SetIndex] = r
		}
		notes, err := s.db.ListNotes(ctx, wl.ID)
		if err != nil {
			return nil, err
		}
		for _, n := range notes {
			if n.ExerciseID == nil {
				workoutNote = n.Text
			} else {
				exerciseNotes[*n.ExerciseID] = n.Text
			}
		}
	case !errors.Is(err, storage.ErrNotFound):
		return nil, err
	}

	plan := &Plan{
		ProgramID:   prog.ID,
		BlockNum:    prog.BlockNum,
		WeekIndex:   weekIndex,
		DayIndex:    day.DayIndex,
		DayName:     day.Name,
		Subtitle:    day.Subtitle,
		Focus:       day.Focus,
		WorkoutNote: workoutNote,
		Exercises:   make([]ExercisePlan, 0, len(day.Exercises)),
	}
	for _, ex := range day.Exercises {
		ep, err := s.exercisePlan(ctx, ex, weekIndex, logs[ex.ID])
		if err != nil {
			return nil, err
		}
		ep.LoggedNote = exerciseNotes[ex.ID]
		for _, set := range ep.Sets {
			plan.Total++
			if set.Logged != nil && set.Logged.IsCompleted {
				plan.Completed++
			}
		}
		plan.Exercises = append(plan.Exercises, ep)
	}
	plan.CompletionPct = percent(plan.Completed, plan.Total)
	return plan, nil
}

func (s *Service) exercisePlan(ctx context.Context, ex models.Exercise, weekIndex int, logs map[int]*models.SetLog) (ExercisePlan, error) {
	ep := ExercisePlan{
		ExerciseID: ex.ID,
		Key:        ex.Key,
		Name:       ex.Name,
		Category:   ex.Category,
		Note:       ex.Note,
		IsWave:     ex.IsWave,
	}

	var sets []wave.PrescribedSet
	if ex.IsWave {
		tm, err := progression.EffectiveTrainingMax(ctx, s.db, ex)
		if err != nil {
			return ExercisePlan{}, err
		}
		res := wave.Sets(ex.Wave, weekIndex, tm)
		ep.TrainingMax = tm
		ep.WeekLabel = res.Label
		sets = res.All
	} else {
		for i := 0; i < ex.Sets; i++ {
			sets = append(sets, wave.PrescribedSet{
				Index:  i,
				Label:  fmt.Sprintf("S%d", i+1),
				Weight: ex.DefaultWeight,
				Reps:   ex.Reps,
			})
		}
	}

	ep.Sets = make([]SetEntry, len(sets))
	for i, set := range sets {
		ep.Sets[i] = SetEntry{PrescribedSet: set, Logged: logs[set.Index]}
	}
	return ep, nil
}
