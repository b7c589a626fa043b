package metrics

import (
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestManagerEngineEvents verifies engine events land on the right series.
func TestManagerEngineEvents(t *testing.T) {
	m := NewTestManager()

	m.AdvanceCompleted("week", 5*time.Millisecond)
	m.AdvanceCompleted("week", time.Millisecond)
	m.AdvanceCompleted("block", time.Millisecond)
	m.AdvanceSkipped()
	m.AdvanceFailed("block")
	m.TrainingMaxUpdated("capped")
	m.TrainingMaxUpdated("fallback")
	m.TrainingMaxUpdated("fallback")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.CounterAdvances.WithLabelValues("week")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CounterAdvances.WithLabelValues("block")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CounterSkipped))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CounterFailures.WithLabelValues("block")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.CounterTrainingMaxUpdate.WithLabelValues("fallback")))
}

// TestManagerRegistryNames verifies the exported metric names.
func TestManagerRegistryNames(t *testing.T) {
	m, reg := NewTestManagerAndRegistry()
	m.AdvanceCompleted("block", time.Millisecond)

	const want = `
# HELP forge_engine_advances_total Completed week and block transitions
# TYPE forge_engine_advances_total counter
forge_engine_advances_total{kind="block"} 1
`
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(want), "forge_engine_advances_total"))

	n, err := testutil.GatherAndCount(reg, "forge_engine_advance_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
