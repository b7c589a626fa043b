package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/claude/forge/internal/importer"
	"github.com/claude/forge/internal/models"
	"github.com/claude/forge/internal/progression"
	"github.com/claude/forge/internal/templates"
	"github.com/claude/forge/internal/workout"
)

func initCmd(configPath *string) *cobra.Command {
	var (
		templateID string
		file       string
	)
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Fork a template into a new active program",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context(), *configPath, os.Stderr, false)
			if err != nil {
				return err
			}
			defer a.Close()

			var tpl *models.Template
			switch {
			case file != "":
				tpl, err = templates.LoadFile(file)
			case templateID != "":
				tpl, err = templates.Get(templateID)
			default:
				tpl, err = templates.Get(a.cfg.Program.Template)
			}
			if err != nil {
				return err
			}
			prog, err := a.db.ForkTemplate(cmd.Context(), tpl)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created program %s from %s (%s)\n", prog.ID, tpl.ID, tpl.Name)
			return nil
		},
	}
	cmd.Flags().StringVarP(&templateID, "template", "t", "", "Built-in template ID")
	cmd.Flags().StringVarP(&file, "file", "f", "", "Template YAML file")
	return cmd
}

func showCmd(configPath *string) *cobra.Command {
	var day, week int
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print a day plan (defaults to the current day and week)",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context(), *configPath, os.Stderr, true)
			if err != nil {
				return err
			}
			defer a.Close()

			prog, err := a.activeProgram(cmd.Context())
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("day") {
				day = prog.CurrentDay
			}
			if !cmd.Flags().Changed("week") {
				week = prog.CurrentWeek
			}
			plan, err := a.workout.DayPlan(cmd.Context(), prog.ID, day, week)
			if err != nil {
				return err
			}
			printPlan(cmd.OutOrStdout(), prog, plan)
			return nil
		},
	}
	cmd.Flags().IntVarP(&day, "day", "d", 0, "Day index")
	cmd.Flags().IntVarP(&week, "week", "w", 0, "Week index (0-3)")
	return cmd
}

func printPlan(out io.Writer, prog *models.Program, plan *workout.Plan) {
	fmt.Fprintf(out, "%s: block %d, week %d, %s", prog.Name, plan.BlockNum, plan.WeekIndex+1, plan.DayName)
	if plan.Subtitle != "" {
		fmt.Fprintf(out, " (%s)", plan.Subtitle)
	}
	fmt.Fprintf(out, ": %d%% complete\n", plan.CompletionPct)
	if plan.WorkoutNote != "" {
		fmt.Fprintf(out, "note: %s\n", plan.WorkoutNote)
	}

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	for _, ex := range plan.Exercises {
		fmt.Fprintf(tw, "\n%s [%s]", ex.Name, ex.Key)
		if ex.IsWave {
			fmt.Fprintf(tw, "  TM %g  %s", ex.TrainingMax, ex.WeekLabel)
		}
		fmt.Fprintln(tw)
		for _, s := range ex.Sets {
			fmt.Fprintf(tw, "  %s\t%g x %d\t%s\n", s.Label, s.Weight, s.Reps, loggedColumn(s.Logged))
		}
		if ex.LoggedNote != "" {
			fmt.Fprintf(tw, "  note: %s\n", ex.LoggedNote)
		}
	}
	tw.Flush()
}

func loggedColumn(l *models.SetLog) string {
	if l == nil {
		return ""
	}
	weight, reps := "-", "-"
	if l.Weight != nil {
		weight = strconv.FormatFloat(*l.Weight, 'f', -1, 64)
	}
	if l.Reps != nil {
		reps = strconv.Itoa(*l.Reps)
	}
	mark := ""
	if l.IsCompleted {
		mark = " done"
	}
	return weight + " x " + reps + mark
}

func logCmd(configPath *string) *cobra.Command {
	var done bool
	cmd := &cobra.Command{
		Use:   "log <exercise> <set> <weight> <reps>",
		Short: "Record a set of the current week",
		Args:  cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			setIndex, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("set must be an integer: %w", workout.ErrInvalidValue)
			}

			a, err := openApp(cmd.Context(), *configPath, os.Stderr, true)
			if err != nil {
				return err
			}
			defer a.Close()

			prog, err := a.activeProgram(cmd.Context())
			if err != nil {
				return err
			}
			ex, err := findExercise(prog, args[0])
			if err != nil {
				return err
			}
			slot := workout.Slot{ProgramID: prog.ID, ExerciseID: ex.ID, SetIndex: setIndex}
			if err := a.workout.LogSet(cmd.Context(), slot, workout.FieldWeight, args[2]); err != nil {
				return err
			}
			if err := a.workout.LogSet(cmd.Context(), slot, workout.FieldReps, args[3]); err != nil {
				return err
			}
			if done {
				completed, err := a.workout.ToggleComplete(cmd.Context(), slot)
				if err != nil {
					return err
				}
				if !completed {
					if _, err := a.workout.ToggleComplete(cmd.Context(), slot); err != nil {
						return err
					}
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "logged %s set %d: %s x %s\n", ex.Key, setIndex, args[2], args[3])
			return nil
		},
	}
	cmd.Flags().BoolVar(&done, "done", true, "Mark the set completed")
	return cmd
}

func noteCmd(configPath *string) *cobra.Command {
	var day int
	cmd := &cobra.Command{
		Use:   "note [exercise] <text>",
		Short: "Write a note for the current week; blank text clears it",
		Long:  "With an exercise key or id the note belongs to that exercise. With --day it is the workout note of that day.",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			workoutNote := cmd.Flags().Changed("day")
			if workoutNote == (len(args) == 2) {
				return fmt.Errorf("name an exercise or pass --day: %w", workout.ErrInvalidValue)
			}

			a, err := openApp(cmd.Context(), *configPath, os.Stderr, true)
			if err != nil {
				return err
			}
			defer a.Close()

			prog, err := a.activeProgram(cmd.Context())
			if err != nil {
				return err
			}

			var target, stored string
			if workoutNote {
				target = fmt.Sprintf("day %d", day)
				stored, err = a.workout.SaveWorkoutNote(cmd.Context(), prog.ID, day, args[0])
			} else {
				ex, ferr := findExercise(prog, args[0])
				if ferr != nil {
					return ferr
				}
				target = ex.Key
				stored, err = a.workout.SaveExerciseNote(cmd.Context(), prog.ID, ex.ID, args[1])
			}
			if err != nil {
				return err
			}
			if stored == "" {
				fmt.Fprintf(cmd.OutOrStdout(), "cleared note for %s\n", target)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "saved note for %s\n", target)
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&day, "day", "d", 0, "Day index for a workout note")
	return cmd
}

func advanceCmd(configPath *string) *cobra.Command {
	var week, block bool
	cmd := &cobra.Command{
		Use:   "advance",
		Short: "Advance to the next week, or close the block in the deload week",
		RunE: func(cmd *cobra.Command, args []string) error {
			if week && block {
				return errors.New("--week and --block are mutually exclusive")
			}
			a, err := openApp(cmd.Context(), *configPath, os.Stderr, true)
			if err != nil {
				return err
			}
			defer a.Close()

			prog, err := a.activeProgram(cmd.Context())
			if err != nil {
				return err
			}
			var res progression.Result
			switch {
			case week:
				res, err = a.engine.AdvanceWeek(cmd.Context(), *prog)
			case block:
				res, err = a.engine.AdvanceBlock(cmd.Context(), *prog, prog.WaveExercises())
			default:
				res, err = a.engine.Advance(cmd.Context(), prog.ID)
			}
			if err != nil {
				return err
			}
			printResult(cmd.OutOrStdout(), res)
			return nil
		},
	}
	cmd.Flags().BoolVar(&week, "week", false, "Only advance the week")
	cmd.Flags().BoolVar(&block, "block", false, "Only close the block")
	return cmd
}

func printResult(out io.Writer, res progression.Result) {
	if res.Skipped {
		fmt.Fprintln(out, "another advance is in progress; nothing changed")
		return
	}
	fmt.Fprintf(out, "block %d, week %d, day %d\n", res.BlockNum, res.CurrentWeek+1, res.CurrentDay+1)
	if len(res.Updates) == 0 {
		return
	}
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "EXERCISE\tOLD\tBEST E1RM\tNEW\tRULE")
	for _, u := range res.Updates {
		fmt.Fprintf(tw, "%s\t%g\t%g\t%g\t%s\n", u.ExerciseName, u.Current, u.BestE1RM, u.Value, u.Rule)
	}
	tw.Flush()
}

func setMaxCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "set-max <exercise> <value>",
		Short: "Override an exercise's training max",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			value, err := strconv.ParseFloat(args[1], 64)
			if err != nil {
				return fmt.Errorf("%w: %q", progression.ErrInvalidTrainingMax, args[1])
			}
			a, err := openApp(cmd.Context(), *configPath, os.Stderr, true)
			if err != nil {
				return err
			}
			defer a.Close()

			prog, err := a.activeProgram(cmd.Context())
			if err != nil {
				return err
			}
			ex, err := findExercise(prog, args[0])
			if err != nil {
				return err
			}
			tm, err := a.engine.SetTrainingMax(cmd.Context(), ex.ID, value)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s training max set to %g for block %d\n", ex.Key, tm.Value, tm.BlockNum)
			return nil
		},
	}
}

func maxesCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "maxes <exercise>",
		Short: "List an exercise's training max history, newest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context(), *configPath, os.Stderr, true)
			if err != nil {
				return err
			}
			defer a.Close()

			prog, err := a.activeProgram(cmd.Context())
			if err != nil {
				return err
			}
			ex, err := findExercise(prog, args[0])
			if err != nil {
				return err
			}
			history, err := a.workout.TrainingMaxes(cmd.Context(), ex.ID)
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "VALUE\tBLOCK\tSOURCE\tCREATED")
			for _, tm := range history {
				fmt.Fprintf(tw, "%g\t%d\t%s\t%s\n", tm.Value, tm.BlockNum, tm.Source, tm.CreatedAt.Format("2006-01-02 15:04"))
			}
			return tw.Flush()
		},
	}
}

func importCmd(configPath *string) *cobra.Command {
	var dryRun bool
	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Import a backup (JSON, optionally gzip-compressed) into the active program",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context(), *configPath, os.Stderr, true)
			if err != nil {
				return err
			}
			defer a.Close()

			prog, err := a.activeProgram(cmd.Context())
			if err != nil {
				return err
			}
			stats, err := importer.New(a.db, a.log, dryRun).ImportFile(cmd.Context(), prog.ID, args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if dryRun {
				fmt.Fprintln(out, "dry run: nothing written")
			}
			fmt.Fprintf(out, "sets: %d imported, %d already present\n", stats.SetsImported, stats.SetsSkipped)
			fmt.Fprintf(out, "training maxes: %d imported\n", stats.MaxesImported)
			if stats.NotesImported+stats.NotesSkipped > 0 {
				fmt.Fprintf(out, "notes: %d imported, %d already present\n", stats.NotesImported, stats.NotesSkipped)
			}
			for _, e := range stats.Errors {
				fmt.Fprintf(out, "warning: %s\n", e)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Report what would be imported without writing")
	return cmd
}
