package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newCheckCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "check",
		Aliases: []string{"checklist"},
		Short:   "Manage checklist items",
	}
	cmd.AddCommand(
		newCheckAddCmd(app),
		newCheckToggleCmd(app),
		newCheckEditCmd(app),
	)
	return cmd
}

func newCheckAddCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "add <goal-id> [label]",
		Short: "Add an unchecked item to a goal",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			label, err := labelArg(app, args, 1, "Checklist item")
			if err != nil {
				return err
			}
			id, err := app.Engine.AddChecklistItem(cmd.Context(), args[0], label)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added item %s (%s)\n", label, id)
			return nil
		},
	}
}

func newCheckToggleCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "toggle <id>",
		Short: "Check or uncheck an item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := app.Engine.ToggleChecklistItem(ctx, args[0]); err != nil {
				return err
			}
			leaf, owner, err := app.Engine.Checklist(args[0])
			if err != nil {
				return err
			}
			state := "unchecked"
			if leaf.Checked {
				state = "checked"
			}
			pct, err := app.Engine.Progress(owner)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s is %s; goal %s now at %d%%\n", leaf.Label, state, owner, pct)
			return nil
		},
	}
}

func newCheckEditCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "edit <id> [label]",
		Short: "Rename a checklist item",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			label, err := labelArg(app, args, 1, "New label")
			if err != nil {
				return err
			}
			if err := app.Engine.EditChecklistItem(cmd.Context(), args[0], label); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Renamed item %s to %s\n", args[0], label)
			return nil
		},
	}
}
