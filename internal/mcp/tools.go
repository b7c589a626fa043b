package mcp

import (
	"context"
	"errors"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/claude/forge/internal/models"
	"github.com/claude/forge/internal/progression"
	"github.com/claude/forge/internal/storage"
	"github.com/claude/forge/internal/workout"
)

// --- Tool definitions ---

var toolGetProgramState = mcp.NewTool("get_program_state",
	mcp.WithDescription("Current block, week and day of a program plus the effective training max of every wave-loaded exercise."),
	mcp.WithString("program_id", mcp.Description("Program ID. Defaults to the active program.")),
)

var toolGetDayPlan = mcp.NewTool("get_day_plan",
	mcp.WithDescription("Prescribed sets for one program day and week, with logged weight/reps and the day's completion percentage."),
	mcp.WithString("program_id", mcp.Description("Program ID. Defaults to the active program.")),
	mcp.WithNumber("day", mcp.Description("Day index (0-based). Defaults to the program's current day.")),
	mcp.WithNumber("week", mcp.Description("Week index 0-3, where 3 is the deload. Defaults to the program's current week.")),
)

var toolGetWaveSets = mcp.NewTool("get_wave_sets",
	mcp.WithDescription("Warmup and working sets of a wave-loaded exercise for a week, computed from its effective training max."),
	mcp.WithString("exercise_id", mcp.Required(), mcp.Description("Exercise ID")),
	mcp.WithNumber("week", mcp.Description("Week index 0-3. Defaults to the program's current week.")),
)

var toolAdvanceProgram = mcp.NewTool("advance_program",
	mcp.WithDescription("Advance the program one week. In the deload week this closes the block instead: every wave exercise gets a new training max from the heaviest week's logged sets and the program moves to week 1 of the next block."),
	mcp.WithString("program_id", mcp.Description("Program ID. Defaults to the active program.")),
)

var toolSetTrainingMax = mcp.NewTool("set_training_max",
	mcp.WithDescription("Override an exercise's training max. The value takes effect immediately for the current block."),
	mcp.WithString("exercise_id", mcp.Required(), mcp.Description("Exercise ID")),
	mcp.WithNumber("value", mcp.Required(), mcp.Description("Training max in pounds, greater than 0")),
)

var toolListTrainingMaxes = mcp.NewTool("list_training_maxes",
	mcp.WithDescription("Training max history of an exercise, newest first, with the block and source of each value."),
	mcp.WithString("exercise_id", mcp.Required(), mcp.Description("Exercise ID")),
)

var toolSaveNote = mcp.NewTool("save_note",
	mcp.WithDescription("Write a note for the program's current block and week. Pass exercise_id for an exercise note or day for the workout note of that day. Blank text clears the note; text is trimmed and capped at 2000 characters."),
	mcp.WithString("program_id", mcp.Description("Program ID. Defaults to the active program.")),
	mcp.WithString("exercise_id", mcp.Description("Exercise ID for an exercise note")),
	mcp.WithNumber("day", mcp.Description("Day index (0-based) for a workout note")),
	mcp.WithString("note", mcp.Required(), mcp.Description("Note text")),
)

var toolListExerciseNotes = mcp.NewTool("list_exercise_notes",
	mcp.WithDescription("Notes left on an exercise across workouts, newest first, with the block and week they were written in."),
	mcp.WithString("exercise_id", mcp.Required(), mcp.Description("Exercise ID")),
	mcp.WithNumber("limit", mcp.Description("Maximum notes to return (default 3, max 50)")),
)

// --- Tool handlers ---

type exerciseState struct {
	ExerciseID  string  `json:"exercise_id"`
	Key         string  `json:"key"`
	Name        string  `json:"name"`
	DayIndex    int     `json:"day_index"`
	TrainingMax float64 `json:"training_max"`
}

type programState struct {
	ProgramID   string          `json:"program_id"`
	Name        string          `json:"name"`
	BlockNum    int             `json:"block_num"`
	CurrentWeek int             `json:"current_week"`
	CurrentDay  int             `json:"current_day"`
	Days        []string        `json:"days"`
	Exercises   []exerciseState `json:"wave_exercises"`
}

func (h *handlers) getProgramState(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := h.programID(ctx, req)
	if err != nil {
		return h.toolError("get_program_state", err), nil
	}
	prog, err := h.db.LoadProgram(ctx, id)
	if err != nil {
		return h.toolError("get_program_state", err), nil
	}

	state := programState{
		ProgramID:   prog.ID,
		Name:        prog.Name,
		BlockNum:    prog.BlockNum,
		CurrentWeek: prog.CurrentWeek,
		CurrentDay:  prog.CurrentDay,
		Days:        []string{},
		Exercises:   []exerciseState{},
	}
	for _, d := range prog.Days {
		state.Days = append(state.Days, d.Name)
		for _, ex := range d.Exercises {
			if !ex.IsWave {
				continue
			}
			tm, err := progression.EffectiveTrainingMax(ctx, h.db, ex)
			if err != nil {
				return h.toolError("get_program_state", err), nil
			}
			state.Exercises = append(state.Exercises, exerciseState{
				ExerciseID:  ex.ID,
				Key:         ex.Key,
				Name:        ex.Name,
				DayIndex:    d.DayIndex,
				TrainingMax: tm,
			})
		}
	}
	return jsonResult(state)
}

func (h *handlers) getDayPlan(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := h.programID(ctx, req)
	if err != nil {
		return h.toolError("get_day_plan", err), nil
	}
	prog, err := h.db.GetProgram(ctx, id)
	if err != nil {
		return h.toolError("get_day_plan", err), nil
	}

	day := req.GetInt("day", prog.CurrentDay)
	week := req.GetInt("week", prog.CurrentWeek)
	plan, err := h.workout.DayPlan(ctx, prog.ID, day, week)
	if err != nil {
		return h.toolError("get_day_plan", err), nil
	}
	return jsonResult(plan)
}

func (h *handlers) getWaveSets(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	exerciseID, err := req.RequireString("exercise_id")
	if err != nil {
		return mcp.NewToolResultError("exercise_id parameter is required"), nil
	}
	programID, err := h.db.ExerciseProgramID(ctx, exerciseID)
	if err != nil {
		return h.toolError("get_wave_sets", err), nil
	}
	prog, err := h.db.GetProgram(ctx, programID)
	if err != nil {
		return h.toolError("get_wave_sets", err), nil
	}

	plan, err := h.workout.WaveSets(ctx, exerciseID, req.GetInt("week", prog.CurrentWeek))
	if err != nil {
		return h.toolError("get_wave_sets", err), nil
	}
	return jsonResult(plan)
}

func (h *handlers) advanceProgram(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := h.programID(ctx, req)
	if err != nil {
		return h.toolError("advance_program", err), nil
	}
	res, err := h.engine.Advance(ctx, id)
	if err != nil {
		return h.toolError("advance_program", err), nil
	}
	return jsonResult(res)
}

func (h *handlers) setTrainingMax(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	exerciseID, err := req.RequireString("exercise_id")
	if err != nil {
		return mcp.NewToolResultError("exercise_id parameter is required"), nil
	}
	value, err := req.RequireFloat("value")
	if err != nil {
		return mcp.NewToolResultError("value parameter is required"), nil
	}

	tm, err := h.engine.SetTrainingMax(ctx, exerciseID, value)
	if err != nil {
		return h.toolError("set_training_max", err), nil
	}
	return jsonResult(tm)
}

func (h *handlers) listTrainingMaxes(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	exerciseID, err := req.RequireString("exercise_id")
	if err != nil {
		return mcp.NewToolResultError("exercise_id parameter is required"), nil
	}
	history, err := h.workout.TrainingMaxes(ctx, exerciseID)
	if err != nil {
		return h.toolError("list_training_maxes", err), nil
	}
	if history == nil {
		history = []models.TrainingMax{}
	}
	return jsonResult(history)
}

func (h *handlers) saveNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text, err := req.RequireString("note")
	if err != nil {
		return mcp.NewToolResultError("note parameter is required"), nil
	}
	exerciseID := req.GetString("exercise_id", "")
	day := req.GetInt("day", -1)
	if (exerciseID == "") == (day < 0) {
		return mcp.NewToolResultError("exactly one of exercise_id and day is required"), nil
	}
	id, err := h.programID(ctx, req)
	if err != nil {
		return h.toolError("save_note", err), nil
	}

	var stored string
	if exerciseID != "" {
		stored, err = h.workout.SaveExerciseNote(ctx, id, exerciseID, text)
	} else {
		stored, err = h.workout.SaveWorkoutNote(ctx, id, day, text)
	}
	if err != nil {
		return h.toolError("save_note", err), nil
	}
	return jsonResult(map[string]string{"note": stored})
}

func (h *handlers) listExerciseNotes(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	exerciseID, err := req.RequireString("exercise_id")
	if err != nil {
		return mcp.NewToolResultError("exercise_id parameter is required"), nil
	}
	notes, err := h.workout.ExerciseNotes(ctx, exerciseID, req.GetInt("limit", 0))
	if err != nil {
		return h.toolError("list_exercise_notes", err), nil
	}
	if notes == nil {
		notes = []models.Note{}
	}
	return jsonResult(notes)
}

// toolError turns err into a tool-level error result. Expected domain
// errors are not logged.
func (h *handlers) toolError(tool string, err error) *mcp.CallToolResult {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return mcp.NewToolResultError("not found: " + err.Error())
	case errors.Is(err, progression.ErrStaleProgram),
		errors.Is(err, progression.ErrFinalWeek),
		errors.Is(err, progression.ErrNotFinalWeek),
		errors.Is(err, progression.ErrInvalidTrainingMax),
		errors.Is(err, workout.ErrInvalidValue):
		return mcp.NewToolResultError(err.Error())
	}
	h.log.Error("mcp "+tool, "error", err)
	return mcp.NewToolResultError("query failed: " + err.Error())
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	result, err := mcp.NewToolResultJSON(v)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}
