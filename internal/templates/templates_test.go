package templates

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/claude/forge/internal/models"
	"github.com/claude/forge/internal/wave"
)

// TestBuiltinTemplates verifies both built-ins load with their wave lifts.
func TestBuiltinTemplates(t *testing.T) {
	list := List()
	require.Len(t, list, 2)
	assert.Equal(t, "531-classic", list[0].ID)
	assert.Equal(t, "wave-periodization", list[1].ID)

	tests := []struct {
		id       string
		baseMaxs map[string]float64
	}{
		{Default, map[string]float64{"squat": 325, "bench": 270, "ohp": 190, "deadlift": 405}},
		{"531-classic", map[string]float64{"squat": 300, "bench": 225, "deadlift": 365, "ohp": 155}},
	}
	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			tpl, err := Get(tt.id)
			require.NoError(t, err)
			require.Len(t, tpl.Days, 4)

			got := map[string]float64{}
			for _, d := range tpl.Days {
				for _, ex := range d.Exercises {
					if ex.Wave != nil {
						got[ex.Key] = ex.Wave.BaseMax
						assert.Len(t, ex.Wave.Weeks, WeeksPerWave, ex.Key)
					}
				}
			}
			assert.Equal(t, tt.baseMaxs, got)
		})
	}
}

// TestDefaultTemplateSquatWeekOne ties the shipped squat percentages to the
// expected week-one loads.
func TestDefaultTemplateSquatWeekOne(t *testing.T) {
	tpl, err := Get(Default)
	require.NoError(t, err)

	sq := tpl.Days[0].Exercises[1]
	require.Equal(t, "squat", sq.Key)

	cfg := &models.WaveConfig{BaseMax: sq.Wave.BaseMax}
	for i, s := range sq.Wave.Warmup {
		cfg.Warmups = append(cfg.Warmups, models.WarmupStep{SetIndex: i, Reps: s.Reps, Percentage: s.Pct})
	}
	for wi, wk := range sq.Wave.Weeks {
		plan := models.WeekPlan{WeekIndex: wi, Label: wk.Label}
		for si, s := range wk.Sets {
			plan.Sets = append(plan.Sets, models.WorkingSet{SetIndex: si, Reps: s.Reps, Percentage: s.Pct, IsBackoff: s.Backoff})
		}
		cfg.Weeks = append(cfg.Weeks, plan)
	}

	res := wave.Sets(cfg, 0, 325)
	var weights []float64
	for _, s := range res.All {
		weights = append(weights, s.Weight)
	}
	assert.Equal(t, []float64{135, 185, 245, 265, 285, 245}, weights)
	assert.Equal(t, "BO", res.All[5].Label)
}

// TestGetReturnsCopy verifies callers cannot modify the built-ins.
func TestGetReturnsCopy(t *testing.T) {
	a, err := Get(Default)
	require.NoError(t, err)
	a.Days[0].Exercises[1].Wave.BaseMax = 1
	a.Days[0].Exercises[1].Wave.Weeks[0].Sets[0].Pct = 1

	b, err := Get(Default)
	require.NoError(t, err)
	assert.Equal(t, 325.0, b.Days[0].Exercises[1].Wave.BaseMax)
	assert.Equal(t, 0.754, b.Days[0].Exercises[1].Wave.Weeks[0].Sets[0].Pct)
}

// TestGetUnknown verifies unknown ids are reported.
func TestGetUnknown(t *testing.T) {
	_, err := Get("nope")
	assert.ErrorIs(t, err, ErrUnknownTemplate)
}

// TestParseRejectsInvalid covers the validation rules.
func TestParseRejectsInvalid(t *testing.T) {
	const wave4 = `
        wave:
          base_max: 200
          weeks:
            - {label: a, sets: [{reps: 5, pct: 0.7}]}
            - {label: b, sets: [{reps: 5, pct: 0.7}]}
            - {label: c, sets: [{reps: 5, pct: 0.7}]}
            - {label: d, sets: [{reps: 5, pct: 0.7}]}`

	tests := []struct {
		name string
		yaml string
	}{
		{"missing id", "name: x\ndays: [{name: d, exercises: []}]"},
		{"no days", "id: x\nname: x\n"},
		{"unknown field", "id: x\nname: x\ncolour: red\ndays: [{name: d}]"},
		{"bad category", "id: x\nname: x\ndays:\n  - name: d\n    exercises:\n      - {key: a, name: A, category: cardio}"},
		{"duplicate key", "id: x\nname: x\ndays:\n  - name: d\n    exercises:\n      - {key: a, name: A, category: acc}\n      - {key: a, name: B, category: acc}"},
		{"three weeks", `id: x
name: x
days:
  - name: d
    exercises:
      - key: a
        name: A
        category: absolute
        wave:
          base_max: 200
          weeks:
            - {label: a, sets: [{reps: 5, pct: 0.7}]}
            - {label: b, sets: [{reps: 5, pct: 0.7}]}
            - {label: c, sets: [{reps: 5, pct: 0.7}]}`},
		{"zero pct", `id: x
name: x
days:
  - name: d
    exercises:
      - key: a
        name: A
        category: absolute
        wave:
          base_max: 200
          warmup: [{reps: 5, pct: 0}]
          weeks:
            - {label: a, sets: [{reps: 5, pct: 0.7}]}
            - {label: b, sets: [{reps: 5, pct: 0.7}]}
            - {label: c, sets: [{reps: 5, pct: 0.7}]}
            - {label: d, sets: [{reps: 5, pct: 0.7}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			assert.Error(t, err)
		})
	}

	ok := "id: x\nname: x\ndays:\n  - name: d\n    exercises:\n      - key: a\n        name: A\n        category: absolute" + wave4
	_, err := Parse([]byte(ok))
	assert.NoError(t, err)
}

// TestLoadFile verifies templates can be read from disk.
func TestLoadFile(t *testing.T) {
	p := filepath.Join(t.TempDir(), "t.yaml")
	require.NoError(t, os.WriteFile(p, []byte("id: mine\nname: Mine\ndays:\n  - name: d\n    exercises:\n      - {key: a, name: A, category: acc, sets: 3, reps: 10}\n"), 0o644))
	tpl, err := LoadFile(p)
	require.NoError(t, err)
	assert.Equal(t, "mine", tpl.ID)

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
