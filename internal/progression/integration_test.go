package progression

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/claude/forge/internal/models"
	"github.com/claude/forge/internal/storage"
	"github.com/claude/forge/internal/storage/storagetest"
)

// failingStore fails InsertTrainingMax for one exercise inside an otherwise real transaction.
type failingStore struct {
	Store
	failOn string
}

type failingTx struct {
	Tx
	failOn string
}

var errInjected = errors.New("injected insert failure")

func (s failingStore) RunInTransaction(ctx context.Context, fn func(Tx) error) error {
	return s.Store.RunInTransaction(ctx, func(tx Tx) error {
		return fn(failingTx{Tx: tx, failOn: s.failOn})
	})
}

func (t failingTx) InsertTrainingMax(ctx context.Context, tm *models.TrainingMax) error {
	if tm.ExerciseID == t.failOn {
		return errInjected
	}
	return t.Tx.InsertTrainingMax(ctx, tm)
}

func setWeek(t *testing.T, db *storage.DB, programID string, week int) models.Program {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, db.UpdateProgramState(ctx, programID, models.ProgramStateUpdate{CurrentWeek: &week}))
	p, err := db.GetProgram(ctx, programID)
	require.NoError(t, err)
	return p
}

// TestAdvanceBlockAgainstDatabase runs a full block close on sqlite: the squat
// estimate is capped, the bench falls back to +5 and the program moves on.
func TestAdvanceBlockAgainstDatabase(t *testing.T) {
	db := storagetest.Open(t)
	ctx := context.Background()
	prog := storagetest.Fork(t, db)
	squat := storagetest.Exercise(t, prog, "squat")
	bench := storagetest.Exercise(t, prog, "bench")
	eng := NewEngine(FromDB(db), testLogger(), nil)

	_, err := eng.SetTrainingMax(ctx, squat.ID, 300)
	require.NoError(t, err)
	v, err := EffectiveTrainingMax(ctx, db, squat)
	require.NoError(t, err)
	assert.Equal(t, 300.0, v)

	// Week 3 peak single and a deload set that must not be scanned.
	storagetest.LogCompleted(t, db, prog, squat, 1, ScanWeek, 4, 400, 1)
	storagetest.LogCompleted(t, db, prog, squat, 1, DeloadWeek, 0, 500, 1)

	session := setWeek(t, db, prog.ID, DeloadWeek)
	waves, err := db.ListWaveExercises(ctx, prog.ID)
	require.NoError(t, err)

	res, err := eng.AdvanceBlock(ctx, session, waves)
	require.NoError(t, err)
	assert.Equal(t, 2, res.BlockNum)

	squatMax, err := db.LatestTrainingMax(ctx, squat.ID)
	require.NoError(t, err)
	assert.Equal(t, 360.0, squatMax.Value)
	assert.Equal(t, 2, squatMax.BlockNum)
	assert.Equal(t, models.SourceAuto, squatMax.Source)

	benchMax, err := db.LatestTrainingMax(ctx, bench.ID)
	require.NoError(t, err)
	assert.Equal(t, 275.0, benchMax.Value)

	got, err := db.GetProgram(ctx, prog.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.BlockNum)
	assert.Equal(t, 0, got.CurrentWeek)
	assert.Equal(t, 0, got.CurrentDay)

	// Replaying the same snapshot changes nothing.
	_, err = eng.AdvanceBlock(ctx, session, waves)
	assert.ErrorIs(t, err, ErrStaleProgram)
	history, err := db.ListTrainingMaxes(ctx, squat.ID)
	require.NoError(t, err)
	assert.Len(t, history, 3)
}

// TestAdvanceBlockAtomic verifies a failure on the last exercise leaves no
// training max from the same call and the program where it was.
func TestAdvanceBlockAtomic(t *testing.T) {
	db := storagetest.Open(t)
	ctx := context.Background()
	prog := storagetest.Fork(t, db)
	squat := storagetest.Exercise(t, prog, "squat")
	bench := storagetest.Exercise(t, prog, "bench")

	session := setWeek(t, db, prog.ID, DeloadWeek)
	waves, err := db.ListWaveExercises(ctx, prog.ID)
	require.NoError(t, err)
	require.Equal(t, bench.ID, waves[len(waves)-1].ID)

	eng := NewEngine(failingStore{Store: FromDB(db), failOn: bench.ID}, testLogger(), nil)
	_, err = eng.AdvanceBlock(ctx, session, waves)
	require.ErrorIs(t, err, errInjected)

	for _, ex := range []models.Exercise{squat, bench} {
		history, err := db.ListTrainingMaxes(ctx, ex.ID)
		require.NoError(t, err)
		require.Len(t, history, 1, ex.Key)
		assert.Equal(t, models.SourceTemplate, history[0].Source)
	}
	got, err := db.GetProgram(ctx, prog.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.BlockNum)
	assert.Equal(t, DeloadWeek, got.CurrentWeek)
}

// TestAdvanceBlockDoubleTap verifies overlapping invocations with one snapshot
// close the block exactly once.
func TestAdvanceBlockDoubleTap(t *testing.T) {
	db := storagetest.Open(t)
	ctx := context.Background()
	prog := storagetest.Fork(t, db)
	squat := storagetest.Exercise(t, prog, "squat")

	session := setWeek(t, db, prog.ID, DeloadWeek)
	waves, err := db.ListWaveExercises(ctx, prog.ID)
	require.NoError(t, err)

	eng := NewEngine(FromDB(db), testLogger(), nil)
	var wg sync.WaitGroup
	var mu sync.Mutex
	applied := 0
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := eng.AdvanceBlock(ctx, session, waves)
			if err != nil {
				assert.ErrorIs(t, err, ErrStaleProgram)
				return
			}
			if !res.Skipped {
				mu.Lock()
				applied++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, applied)
	history, err := db.ListTrainingMaxes(ctx, squat.ID)
	require.NoError(t, err)
	assert.Len(t, history, 2)
	got, err := db.GetProgram(ctx, prog.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.BlockNum)
}

// TestAdvanceThroughBlock walks a program from week 0 to the next block.
func TestAdvanceThroughBlock(t *testing.T) {
	db := storagetest.Open(t)
	ctx := context.Background()
	prog := storagetest.Fork(t, db)
	eng := NewEngine(FromDB(db), testLogger(), nil)

	kinds := []Kind{}
	for i := 0; i < 4; i++ {
		res, err := eng.Advance(ctx, prog.ID)
		require.NoError(t, err)
		kinds = append(kinds, res.Kind)
	}
	assert.Equal(t, []Kind{KindWeek, KindWeek, KindWeek, KindBlock}, kinds)

	got, err := db.GetProgram(ctx, prog.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.BlockNum)
	assert.Equal(t, 0, got.CurrentWeek)
}

// TestAdvanceWeekResetsDay verifies a week advance returns to the first day.
func TestAdvanceWeekResetsDay(t *testing.T) {
	db := storagetest.Open(t)
	ctx := context.Background()
	prog := storagetest.Fork(t, db)
	eng := NewEngine(FromDB(db), testLogger(), nil)

	day := 1
	require.NoError(t, db.UpdateProgramState(ctx, prog.ID, models.ProgramStateUpdate{CurrentDay: &day}))
	session, err := db.GetProgram(ctx, prog.ID)
	require.NoError(t, err)
	require.Equal(t, 1, session.CurrentDay)

	res, err := eng.AdvanceWeek(ctx, session)
	require.NoError(t, err)
	assert.Equal(t, 0, res.CurrentDay)

	got, err := db.GetProgram(ctx, prog.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.CurrentWeek)
	assert.Equal(t, 0, got.CurrentDay)
}
