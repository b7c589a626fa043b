package models

import "time"

// TrainingMaxSource records how a training max row came to exist.
type TrainingMaxSource string

const (
	SourceManual   TrainingMaxSource = "manual"
	SourceAuto     TrainingMaxSource = "auto"
	SourceImport   TrainingMaxSource = "import"
	SourceTemplate TrainingMaxSource = "template"
)

// TrainingMax is one append-only row of an exercise's training max history.
// The most recently created row is the effective value.
type TrainingMax struct {
	ID         string            `json:"id"`
	ExerciseID string            `json:"exercise_id"`
	Value      float64           `json:"value"`
	BlockNum   int               `json:"block_num"`
	Source     TrainingMaxSource `json:"source"`
	CreatedAt  time.Time         `json:"created_at"`
}

// ProgramStateUpdate changes a program's cycle position. Nil fields are left alone.
type ProgramStateUpdate struct {
	BlockNum    *int
	CurrentWeek *int
	CurrentDay  *int
}

// WorkoutLog groups the set logs of one program day in a given block and week.
type WorkoutLog struct {
	ID        string    `json:"id"`
	ProgramID string    `json:"program_id"`
	DayID     string    `json:"day_id"`
	BlockNum  int       `json:"block_num"`
	WeekIndex int       `json:"week_index"`
	StartedAt time.Time `json:"started_at"`
}

// SetLog is what the user actually did in one set slot. Weight and reps stay
// nil until entered.
type SetLog struct {
	ID           string    `json:"id"`
	WorkoutLogID string    `json:"workout_log_id"`
	ExerciseID   string    `json:"exercise_id"`
	SetIndex     int       `json:"set_index"`
	Weight       *float64  `json:"weight"`
	Reps         *int      `json:"reps"`
	IsCompleted  bool      `json:"is_completed"`
	LoggedAt     time.Time `json:"logged_at"`
}

// LoggedSet is a completed weight × reps pair used for progression scanning.
type LoggedSet struct {
	Weight float64 `json:"weight"`
	Reps   int     `json:"reps"`
}

// SetQuery scopes a completed-set scan.
type SetQuery struct {
	ProgramID  string
	ExerciseID string
	BlockNum   int
	WeekIndex  int
}

// Note is free text attached to a workout log, or to one exercise within it.
// A nil ExerciseID marks the workout note. Imported notes have no workout
// log, so their BlockNum and WeekIndex are nil too.
type Note struct {
	ID           string    `json:"id"`
	ProgramID    string    `json:"program_id"`
	WorkoutLogID *string   `json:"workout_log_id,omitempty"`
	ExerciseID   *string   `json:"exercise_id,omitempty"`
	Text         string    `json:"note"`
	BlockNum     *int      `json:"block_num,omitempty"`
	WeekIndex    *int      `json:"week_index,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
