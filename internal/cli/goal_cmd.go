package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newGoalCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "goal",
		Short: "Manage goals",
	}
	cmd.AddCommand(
		newGoalAddCmd(app),
		newGoalEditCmd(app),
	)
	return cmd
}

func newGoalAddCmd(app *App) *cobra.Command {
	var parentID string

	cmd := &cobra.Command{
		Use:   "add [label]",
		Short: "Create a goal, at the top level or under --parent",
		RunE: func(cmd *cobra.Command, args []string) error {
			label, err := labelArg(app, args, 0, "Goal label")
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			var id string
			if parentID == "" {
				id, err = app.Engine.AddRootGoal(ctx, label)
			} else {
				id, err = app.Engine.AddChildGoal(ctx, parentID, label)
			}
			if err != nil {
				return err
			}
			if parentID != "" {
				app.projector().SetExpanded(parentID, true)
				if err := app.saveViewState(); err != nil {
					return err
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created goal %s (%s)\n", label, id)
			return nil
		},
	}
	cmd.Flags().StringVar(&parentID, "parent", "", "parent goal ID")
	return cmd
}

func newGoalEditCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "edit <id> [label]",
		Short: "Rename a goal",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			label, err := labelArg(app, args, 1, "New label")
			if err != nil {
				return err
			}
			if err := app.Engine.EditGoal(cmd.Context(), args[0], label); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Renamed goal %s to %s\n", args[0], label)
			return nil
		},
	}
}

// labelArg joins args[from:] into a label, or prompts for one when none was
// given and the terminal is interactive.
func labelArg(app *App, args []string, from int, title string) (string, error) {
	if len(args) > from {
		label := strings.TrimSpace(strings.Join(args[from:], " "))
		if err := validateLabel(label); err != nil {
			return "", err
		}
		return label, nil
	}
	if !app.interactive() {
		return "", fmt.Errorf("a label is required")
	}
	return promptLabel(title)
}
