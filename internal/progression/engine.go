// Package progression advances a program through its weeks and blocks and
// recomputes training maxes at the end of each block.
package progression

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/claude/forge/internal/calc"
	"github.com/claude/forge/internal/models"
	"github.com/claude/forge/internal/storage"
)

var (
	// ErrFinalWeek is returned when advancing the week past the deload week.
	ErrFinalWeek = errors.New("program is in its final week; advance the block instead")
	// ErrNotFinalWeek is returned when advancing the block before the deload week.
	ErrNotFinalWeek = errors.New("block can only be advanced from the final week")
	// ErrStaleProgram is returned when the stored program moved since the caller read it.
	ErrStaleProgram = errors.New("program state changed since it was read")
	// ErrInvalidTrainingMax is returned for manual maxes that are not positive finite weights.
	ErrInvalidTrainingMax = errors.New("invalid training max")
)

// Kind names a state transition.
type Kind string

const (
	KindWeek  Kind = "week"
	KindBlock Kind = "block"
	KindAuto  Kind = "auto"
)

// Metrics receives engine events.
type Metrics interface {
	AdvanceCompleted(kind string, d time.Duration)
	AdvanceSkipped()
	AdvanceFailed(kind string)
	TrainingMaxUpdated(rule string)
}

type noopMetrics struct{}

func (noopMetrics) AdvanceCompleted(string, time.Duration) {}
func (noopMetrics) AdvanceSkipped()                        {}
func (noopMetrics) AdvanceFailed(string)                   {}
func (noopMetrics) TrainingMaxUpdated(string)              {}

// Update is the training max decision for one wave exercise.
type Update struct {
	ExerciseID   string `json:"exercise_id"`
	ExerciseKey  string `json:"exercise_key"`
	ExerciseName string `json:"exercise_name"`
	Decision
}

// Result describes a completed or suppressed transition. The program fields
// hold the state after the transition.
type Result struct {
	ProgramID   string   `json:"program_id"`
	Kind        Kind     `json:"kind"`
	Skipped     bool     `json:"skipped"`
	BlockNum    int      `json:"block_num"`
	CurrentWeek int      `json:"current_week"`
	CurrentDay  int      `json:"current_day"`
	Updates     []Update `json:"updates,omitempty"`
}

// Engine owns the week and block transitions. At most one transition per
// engine is in flight; overlapping calls are skipped, not queued.
type Engine struct {
	store    Store
	logger   *slog.Logger
	metrics  Metrics
	inflight *semaphore.Weighted
}

// NewEngine creates an Engine. A nil Metrics disables instrumentation.
func NewEngine(store Store, logger *slog.Logger, m Metrics) *Engine {
	if m == nil {
		m = noopMetrics{}
	}
	return &Engine{
		store:    store,
		logger:   logger,
		metrics:  m,
		inflight: semaphore.NewWeighted(1),
	}
}

// AdvanceWeek moves the program to the next week. session is the caller's
// view of the program; it must still match storage.
func (e *Engine) AdvanceWeek(ctx context.Context, session models.Program) (Result, error) {
	return e.guarded(ctx, session.ID, KindWeek, func(tx Tx) (Result, error) {
		return e.advanceWeek(ctx, tx, session)
	})
}

// AdvanceBlock closes the block: every wave exercise gets a new training max
// for the next block, then the program moves to week 0, day 0 of the next
// block. Everything happens in one transaction.
func (e *Engine) AdvanceBlock(ctx context.Context, session models.Program, waveExercises []models.Exercise) (Result, error) {
	return e.guarded(ctx, session.ID, KindBlock, func(tx Tx) (Result, error) {
		return e.advanceBlock(ctx, tx, session, waveExercises)
	})
}

// Advance reads the program and advances the week, or the block when the
// program is in its deload week.
func (e *Engine) Advance(ctx context.Context, programID string) (Result, error) {
	return e.guarded(ctx, programID, KindAuto, func(tx Tx) (Result, error) {
		prog, err := tx.GetProgram(ctx, programID)
		if err != nil {
			return Result{}, err
		}
		if prog.CurrentWeek < DeloadWeek {
			return e.advanceWeek(ctx, tx, prog)
		}
		exercises, err := tx.ListWaveExercises(ctx, programID)
		if err != nil {
			return Result{}, err
		}
		return e.advanceBlock(ctx, tx, prog, exercises)
	})
}

func (e *Engine) guarded(ctx context.Context, programID string, kind Kind, fn func(tx Tx) (Result, error)) (Result, error) {
	if !e.inflight.TryAcquire(1) {
		e.logger.Debug("advance already in flight, skipping", "program", programID, "kind", kind)
		e.metrics.AdvanceSkipped()
		return Result{ProgramID: programID, Kind: kind, Skipped: true}, nil
	}
	defer e.inflight.Release(1)

	start := time.Now()
	var res Result
	err := e.store.RunInTransaction(ctx, func(tx Tx) error {
		var err error
		res, err = fn(tx)
		return err
	})
	if err != nil {
		e.logger.Error("advance failed, nothing changed", "program", programID, "kind", kind, "error", err)
		e.metrics.AdvanceFailed(string(kind))
		return Result{}, fmt.Errorf("advancing %s of program %s: %w", kind, programID, err)
	}

	e.metrics.AdvanceCompleted(string(res.Kind), time.Since(start))
	for _, u := range res.Updates {
		e.logger.Info("training max updated",
			"program", programID,
			"exercise", u.ExerciseKey,
			"current", u.Current,
			"best_e1rm", u.BestE1RM,
			"new", u.Value,
			"rule", u.Rule)
		e.metrics.TrainingMaxUpdated(string(u.Rule))
	}
	e.logger.Info("program advanced", "program", programID, "kind", res.Kind,
		"block", res.BlockNum, "week", res.CurrentWeek)
	return res, nil
}

func checkFresh(ctx context.Context, tx Tx, session models.Program) (models.Program, error) {
	cur, err := tx.GetProgram(ctx, session.ID)
	if err != nil {
		return models.Program{}, err
	}
	if cur.BlockNum != session.BlockNum || cur.CurrentWeek != session.CurrentWeek {
		return models.Program{}, fmt.Errorf("%w: have block %d week %d, stored block %d week %d",
			ErrStaleProgram, session.BlockNum, session.CurrentWeek, cur.BlockNum, cur.CurrentWeek)
	}
	return cur, nil
}

func (e *Engine) advanceWeek(ctx context.Context, tx Tx, session models.Program) (Result, error) {
	cur, err := checkFresh(ctx, tx, session)
	if err != nil {
		return Result{}, err
	}
	if cur.CurrentWeek >= DeloadWeek {
		return Result{}, ErrFinalWeek
	}

	// A new week starts on its first day.
	next, day := cur.CurrentWeek+1, 0
	err = tx.UpdateProgramState(ctx, cur.ID, models.ProgramStateUpdate{CurrentWeek: &next, CurrentDay: &day})
	if err != nil {
		return Result{}, err
	}
	return Result{
		ProgramID:   cur.ID,
		Kind:        KindWeek,
		BlockNum:    cur.BlockNum,
		CurrentWeek: next,
		CurrentDay:  day,
	}, nil
}

func (e *Engine) advanceBlock(ctx context.Context, tx Tx, session models.Program, waveExercises []models.Exercise) (Result, error) {
	cur, err := checkFresh(ctx, tx, session)
	if err != nil {
		return Result{}, err
	}
	if cur.CurrentWeek != DeloadWeek {
		return Result{}, ErrNotFinalWeek
	}

	nextBlock := cur.BlockNum + 1
	var updates []Update
	for _, ex := range waveExercises {
		if !ex.IsWave {
			continue
		}
		current, err := EffectiveTrainingMax(ctx, tx, ex)
		if err != nil {
			return Result{}, err
		}
		sets, err := tx.ListCompletedSets(ctx, models.SetQuery{
			ProgramID:  cur.ID,
			ExerciseID: ex.ID,
			BlockNum:   cur.BlockNum,
			WeekIndex:  ScanWeek,
		})
		if err != nil {
			return Result{}, err
		}

		d := NextTrainingMax(current, sets)
		err = tx.InsertTrainingMax(ctx, &models.TrainingMax{
			ExerciseID: ex.ID,
			Value:      d.Value,
			BlockNum:   nextBlock,
			Source:     models.SourceAuto,
		})
		if err != nil {
			return Result{}, err
		}
		updates = append(updates, Update{ExerciseID: ex.ID, ExerciseKey: ex.Key, ExerciseName: ex.Name, Decision: d})
	}

	week, day := 0, 0
	err = tx.UpdateProgramState(ctx, cur.ID, models.ProgramStateUpdate{
		BlockNum:    &nextBlock,
		CurrentWeek: &week,
		CurrentDay:  &day,
	})
	if err != nil {
		return Result{}, err
	}
	return Result{
		ProgramID:   cur.ID,
		Kind:        KindBlock,
		BlockNum:    nextBlock,
		CurrentWeek: week,
		CurrentDay:  day,
		Updates:     updates,
	}, nil
}

// SetTrainingMax records a manual training max for the program's current
// block. It becomes the effective max immediately and leaves the program's
// position untouched.
func (e *Engine) SetTrainingMax(ctx context.Context, exerciseID string, value float64) (models.TrainingMax, error) {
	v, ok := calc.ValidateWeight(value)
	if !ok || v <= 0 {
		return models.TrainingMax{}, fmt.Errorf("%w: %v", ErrInvalidTrainingMax, value)
	}

	var tm models.TrainingMax
	err := e.store.RunInTransaction(ctx, func(tx Tx) error {
		programID, err := tx.ExerciseProgramID(ctx, exerciseID)
		if err != nil {
			return err
		}
		prog, err := tx.GetProgram(ctx, programID)
		if err != nil {
			return err
		}
		tm = models.TrainingMax{
			ExerciseID: exerciseID,
			Value:      v,
			BlockNum:   prog.BlockNum,
			Source:     models.SourceManual,
		}
		return tx.InsertTrainingMax(ctx, &tm)
	})
	if err != nil {
		return models.TrainingMax{}, fmt.Errorf("setting training max for %s: %w", exerciseID, err)
	}

	e.metrics.TrainingMaxUpdated(string(RuleManual))
	e.logger.Info("training max set manually", "exercise", exerciseID, "value", v, "block", tm.BlockNum)
	return tm, nil
}

// LatestReader looks up the newest training max row of an exercise.
type LatestReader interface {
	LatestTrainingMax(ctx context.Context, exerciseID string) (models.TrainingMax, error)
}

// EffectiveTrainingMax returns the exercise's newest training max, or its
// wave base max when it has no history.
func EffectiveTrainingMax(ctx context.Context, r LatestReader, ex models.Exercise) (float64, error) {
	tm, err := r.LatestTrainingMax(ctx, ex.ID)
	if err == nil {
		return tm.Value, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return 0, err
	}
	if ex.Wave == nil {
		return 0, nil
	}
	return ex.Wave.BaseMax, nil
}
