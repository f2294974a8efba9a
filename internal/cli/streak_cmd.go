package cli

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/alexanderramin/goaltree/internal/cli/formatter"
	"github.com/alexanderramin/goaltree/internal/domain"
	"github.com/alexanderramin/goaltree/internal/engine"
	"github.com/spf13/cobra"
)

func newStreakCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "streak",
		Short: "Manage day streaks",
	}
	cmd.AddCommand(
		newStreakAddCmd(app),
		newStreakEditCmd(app),
		newStreakListCmd(app),
	)
	return cmd
}

func newStreakAddCmd(app *App) *cobra.Command {
	var start time.Time
	var days int

	cmd := &cobra.Command{
		Use:   "add <goal-id> [label]",
		Short: "Add a streak that completes after --days whole days from --start",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			label, err := labelArg(app, args, 1, "Streak label")
			if err != nil {
				return err
			}
			flags := cmd.Flags()
			if (!flags.Changed("start") || !flags.Changed("days")) && app.interactive() {
				startStr, daysStr := "", ""
				if flags.Changed("start") {
					startStr = start.Format(domain.DateLayout)
				}
				if flags.Changed("days") {
					daysStr = strconv.Itoa(days)
				}
				if err := promptStreak(&startStr, &daysStr); err != nil {
					return err
				}
				if start, err = domain.ParseDate(startStr); err != nil {
					return err
				}
				if days, err = strconv.Atoi(strings.TrimSpace(daysStr)); err != nil {
					return err
				}
			} else if !flags.Changed("days") {
				return fmt.Errorf("--days is required")
			}
			if start.IsZero() {
				start = domain.CalendarDate(app.Engine.Now())
			}

			id, err := app.Engine.AddStreakLeaf(cmd.Context(), args[0], label, start, days)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added streak %s (%s) from %s, target %d days\n",
				label, id, start.Format(domain.DateLayout), days)
			return nil
		},
	}
	cmd.Flags().Var(newDateValue(&start), "start", "start date YYYY-MM-DD (default today)")
	cmd.Flags().IntVar(&days, "days", 0, "target number of whole days")
	return cmd
}

func newStreakEditCmd(app *App) *cobra.Command {
	var label string
	var start time.Time
	var days int

	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change a streak's label, start date or target",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var patch engine.StreakPatch
			flags := cmd.Flags()
			if flags.Changed("label") {
				patch.Label = &label
			}
			if flags.Changed("start") {
				patch.StartDate = &start
			}
			if flags.Changed("days") {
				patch.TargetDays = &days
			}
			if patch == (engine.StreakPatch{}) {
				return fmt.Errorf("nothing to change: pass --label, --start or --days")
			}
			if err := app.Engine.EditStreakLeaf(cmd.Context(), args[0], patch); err != nil {
				return err
			}
			leaf, _, err := app.Engine.Streak(args[0])
			if err != nil {
				return err
			}
			elapsed := domain.ElapsedDays(leaf.StartDate, app.Engine.Now())
			fmt.Fprintf(cmd.OutOrStdout(), "Updated streak %s: %s\n", leaf.Label, formatter.StreakDays(elapsed, leaf.TargetDays))
			return nil
		},
	}
	cmd.Flags().StringVar(&label, "label", "", "new label")
	cmd.Flags().Var(newDateValue(&start), "start", "new start date YYYY-MM-DD")
	cmd.Flags().IntVar(&days, "days", 0, "new target days")
	return cmd
}

func newStreakListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List every streak with its progress",
		RunE: func(cmd *cobra.Command, args []string) error {
			tree := app.Engine.Snapshot()
			views := expandAll(tree).Project(tree, app.Engine.Now())
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatStreakTable(views))
			return nil
		},
	}
}
