package wave

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/claude/forge/internal/models"
)

func squatWave() *models.WaveConfig {
	return &models.WaveConfig{
		BaseMax: 325,
		// Stored out of order on purpose.
		Warmups: []models.WarmupStep{
			{SetIndex: 1, Reps: 3, Percentage: 0.569},
			{SetIndex: 0, Reps: 5, Percentage: 0.415},
		},
		Weeks: []models.WeekPlan{
			{WeekIndex: 0, Label: "Week 1", Sets: []models.WorkingSet{
				{SetIndex: 3, Reps: 8, Percentage: 0.754, IsBackoff: true},
				{SetIndex: 0, Reps: 5, Percentage: 0.754},
				{SetIndex: 2, Reps: 5, Percentage: 0.877},
				{SetIndex: 1, Reps: 5, Percentage: 0.815},
			}},
			{WeekIndex: 3, Label: "Deload", Sets: []models.WorkingSet{
				{SetIndex: 0, Reps: 5, Percentage: 0.4},
				{SetIndex: 1, Reps: 5, Percentage: 0.5},
			}},
		},
	}
}

func weights(sets []PrescribedSet) []float64 {
	out := make([]float64, len(sets))
	for i, s := range sets {
		out[i] = s.Weight
	}
	return out
}

func labels(sets []PrescribedSet) []string {
	out := make([]string, len(sets))
	for i, s := range sets {
		out[i] = s.Label
	}
	return out
}

// TestSetsSquatWeekOne checks the documented squat scenario end to end.
func TestSetsSquatWeekOne(t *testing.T) {
	res := Sets(squatWave(), 0, 325)

	assert.Equal(t, "Week 1", res.Label)
	assert.Equal(t, []float64{135, 185}, weights(res.Warmup))
	assert.Equal(t, []string{"W1", "W2"}, labels(res.Warmup))
	assert.Equal(t, []float64{245, 265, 285, 245}, weights(res.Working))
	assert.Equal(t, []string{"S1", "S2", "S3", "BO"}, labels(res.Working))
	assert.Equal(t, []int{5, 5, 5, 8}, []int{res.Working[0].Reps, res.Working[1].Reps, res.Working[2].Reps, res.Working[3].Reps})

	require.Len(t, res.All, 6)
	for i, s := range res.All {
		assert.Equal(t, i, s.Index, "slot index of %s", s.Label)
	}
	assert.True(t, res.All[0].IsWarmup)
	assert.False(t, res.All[2].IsWarmup)
	assert.True(t, res.All[5].IsBackoff)
}

// TestSetsDoesNotMutateConfig verifies sorting works on a copy.
func TestSetsDoesNotMutateConfig(t *testing.T) {
	cfg := squatWave()
	Sets(cfg, 0, 325)
	assert.Equal(t, 1, cfg.Warmups[0].SetIndex)
	assert.Equal(t, 3, cfg.Weeks[0].Sets[0].SetIndex)
}

// TestSetsDeterministic verifies identical inputs give identical output.
func TestSetsDeterministic(t *testing.T) {
	cfg := squatWave()
	assert.Equal(t, Sets(cfg, 0, 300), Sets(cfg, 0, 300))
}

// TestSetsUnknownWeek verifies a missing week plan yields an empty result.
func TestSetsUnknownWeek(t *testing.T) {
	for _, week := range []int{1, 2, 7, -1} {
		res := Sets(squatWave(), week, 325)
		assert.Equal(t, "", res.Label)
		assert.Empty(t, res.Warmup)
		assert.Empty(t, res.Working)
		assert.Empty(t, res.All)
	}
	assert.Empty(t, Sets(nil, 0, 325).All)
}

// TestSetsBackoffLabelAnyPosition verifies backoff sets are labelled BO wherever they sit.
func TestSetsBackoffLabelAnyPosition(t *testing.T) {
	cfg := &models.WaveConfig{Weeks: []models.WeekPlan{{
		WeekIndex: 1,
		Sets: []models.WorkingSet{
			{SetIndex: 0, Reps: 8, Percentage: 0.6, IsBackoff: true},
			{SetIndex: 1, Reps: 3, Percentage: 0.8},
			{SetIndex: 2, Reps: 8, Percentage: 0.6, IsBackoff: true},
			{SetIndex: 3, Reps: 1, Percentage: 0.9},
		},
	}}}
	res := Sets(cfg, 1, 200)
	assert.Equal(t, []string{"BO", "S2", "BO", "S4"}, labels(res.Working))
	assert.Empty(t, res.Warmup)
	assert.Equal(t, 0, res.Working[0].Index)
}

// TestSetsBadTrainingMax verifies negative or non-finite maxes never produce negative weights.
func TestSetsBadTrainingMax(t *testing.T) {
	res := Sets(squatWave(), 0, -100)
	for _, s := range res.All {
		assert.Equal(t, 0.0, s.Weight, s.Label)
	}
}

// TestSetsEmptyWeek verifies a week without working sets is not an error.
func TestSetsEmptyWeek(t *testing.T) {
	cfg := squatWave()
	cfg.Weeks = append(cfg.Weeks, models.WeekPlan{WeekIndex: 2, Label: "Week 3"})
	res := Sets(cfg, 2, 325)
	assert.Equal(t, "Week 3", res.Label)
	assert.Len(t, res.Warmup, 2)
	assert.Empty(t, res.Working)
}
