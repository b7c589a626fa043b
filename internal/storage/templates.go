package storage

import (
	"context"
	"fmt"

	"github.com/claude/forge/internal/models"
)

// ForkTemplate copies a template into a new active program at block 1, week 0,
// day 0. Every other program is deactivated and each wave exercise gets an
// initial training max equal to its base max. The whole fork is one
// exclusive transaction.
func (db *DB) ForkTemplate(ctx context.Context, tpl *models.Template) (*models.Program, error) {
	prog := programFromTemplate(tpl)

	err := db.WithExclusiveTransaction(ctx, func(q *Queries) error {
		if err := q.DeactivatePrograms(ctx); err != nil {
			return err
		}
		if err := q.InsertProgram(ctx, prog); err != nil {
			return err
		}
		for i := range prog.Days {
			day := &prog.Days[i]
			day.ProgramID = prog.ID
			if err := q.InsertDay(ctx, day); err != nil {
				return err
			}
			for j := range day.Exercises {
				ex := &day.Exercises[j]
				ex.DayID = day.ID
				if err := q.InsertExercise(ctx, ex); err != nil {
					return err
				}
				if !ex.IsWave {
					continue
				}
				err := q.InsertTrainingMax(ctx, &models.TrainingMax{
					ExerciseID: ex.ID,
					Value:      ex.Wave.BaseMax,
					BlockNum:   prog.BlockNum,
					Source:     models.SourceTemplate,
				})
				if err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("forking template %s: %w", tpl.ID, err)
	}

	db.logger.Info("forked template", "template", tpl.ID, "program", prog.ID, "days", len(prog.Days))
	return prog, nil
}

func programFromTemplate(tpl *models.Template) *models.Program {
	prog := &models.Program{
		Name:             tpl.Name,
		SourceTemplateID: tpl.ID,
		BlockNum:         1,
		IsActive:         true,
	}
	for di, td := range tpl.Days {
		day := models.Day{
			DayIndex: di,
			Name:     td.Name,
			Subtitle: td.Subtitle,
			Focus:    td.Focus,
		}
		for ei, te := range td.Exercises {
			ex := models.Exercise{
				ExerciseIndex: ei,
				Key:           te.Key,
				Name:          te.Name,
				Category:      te.Category,
				Sets:          te.Sets,
				Reps:          te.Reps,
				DefaultWeight: te.DefaultWeight,
				Note:          te.Note,
				IsWave:        te.Wave != nil,
			}
			if te.Wave != nil {
				ex.Wave = waveFromTemplate(te.Wave)
			}
			day.Exercises = append(day.Exercises, ex)
		}
		prog.Days = append(prog.Days, day)
	}
	return prog
}

func waveFromTemplate(tw *models.TemplateWave) *models.WaveConfig {
	cfg := &models.WaveConfig{
		BaseMax: tw.BaseMax,
		Warmups: make([]models.WarmupStep, 0, len(tw.Warmup)),
		Weeks:   make([]models.WeekPlan, 0, len(tw.Weeks)),
	}
	for i, w := range tw.Warmup {
		cfg.Warmups = append(cfg.Warmups, models.WarmupStep{SetIndex: i, Reps: w.Reps, Percentage: w.Pct})
	}
	for wi, wk := range tw.Weeks {
		plan := models.WeekPlan{WeekIndex: wi, Label: wk.Label, Sets: make([]models.WorkingSet, 0, len(wk.Sets))}
		for si, s := range wk.Sets {
			plan.Sets = append(plan.Sets, models.WorkingSet{
				SetIndex:   si,
				Reps:       s.Reps,
				Percentage: s.Pct,
				IsBackoff:  s.Backoff,
			})
		}
		cfg.Weeks = append(cfg.Weeks, plan)
	}
	return cfg
}
