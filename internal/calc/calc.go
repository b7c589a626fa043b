// Package calc holds the numeric primitives shared by load prescription and
// training-max progression. None of these functions return errors: invalid
// input maps to a zero or "not ok" result and the caller decides what to show.
package calc

import (
	"math"
	"strings"
	"unicode/utf8"
)

// Input limits for logged sets.
const (
	MaxWeight = 2000
	MaxReps   = 100
)

// MaxNoteLength caps workout and exercise notes, in characters.
const MaxNoteLength = 2000

// PlateIncrement is the smallest loadable jump on a barbell.
const PlateIncrement = 5

// RoundToNearest5 rounds half away from zero to the nearest plate increment.
// Negative and non-finite inputs yield 0.
func RoundToNearest5(n float64) float64 {
	if math.IsNaN(n) || math.IsInf(n, 0) || n < 0 {
		return 0
	}
	return math.Round(n/PlateIncrement) * PlateIncrement
}

// EstimatedOneRepMax applies the Epley formula to a weight × reps pair.
// A single rep returns the weight itself; the result is rounded to a whole number.
func EstimatedOneRepMax(weight, reps float64) float64 {
	if !isFinite(weight) || !isFinite(reps) {
		return 0
	}
	if weight <= 0 || reps <= 0 {
		return 0
	}
	if reps <= 1 {
		return weight
	}
	return math.Round(weight * (1 + reps/30))
}

// ValidateWeight clamps a weight to [0, MaxWeight].
// It returns ok=false for negative or non-finite values.
func ValidateWeight(v float64) (float64, bool) {
	if !isFinite(v) || v < 0 {
		return 0, false
	}
	return math.Min(v, MaxWeight), true
}

// ValidateReps rounds reps to an integer and clamps to [0, MaxReps].
// It returns ok=false for negative or non-finite values.
func ValidateReps(v float64) (int, bool) {
	if !isFinite(v) || v < 0 {
		return 0, false
	}
	return int(math.Min(math.Round(v), MaxReps)), true
}

// NormalizeNote trims surrounding whitespace and truncates to MaxNoteLength
// characters. An empty result means there is no note.
func NormalizeNote(s string) string {
	s = strings.TrimSpace(s)
	if utf8.RuneCountInString(s) <= MaxNoteLength {
		return s
	}
	return string([]rune(s)[:MaxNoteLength])
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
