package progression

import (
	"context"

	"github.com/claude/forge/internal/models"
	"github.com/claude/forge/internal/storage"
)

//go:generate mockgen -source=$GOFILE -destination=mocks_test.go -package=progression

// Tx is the set of persistence calls the engine makes inside one transaction.
type Tx interface {
	GetProgram(ctx context.Context, id string) (models.Program, error)
	ListWaveExercises(ctx context.Context, programID string) ([]models.Exercise, error)
	ExerciseProgramID(ctx context.Context, exerciseID string) (string, error)
	LatestTrainingMax(ctx context.Context, exerciseID string) (models.TrainingMax, error)
	ListCompletedSets(ctx context.Context, q models.SetQuery) ([]models.LoggedSet, error)
	InsertTrainingMax(ctx context.Context, tm *models.TrainingMax) error
	UpdateProgramState(ctx context.Context, programID string, upd models.ProgramStateUpdate) error
}

// Store runs fn inside one atomic, process-wide serialized transaction.
type Store interface {
	RunInTransaction(ctx context.Context, fn func(tx Tx) error) error
}

type dbStore struct {
	db *storage.DB
}

// FromDB adapts a storage.DB to Store.
func FromDB(db *storage.DB) Store {
	return dbStore{db: db}
}

func (s dbStore) RunInTransaction(ctx context.Context, fn func(tx Tx) error) error {
	return s.db.WithExclusiveTransaction(ctx, func(q *storage.Queries) error {
		return fn(q)
	})
}
