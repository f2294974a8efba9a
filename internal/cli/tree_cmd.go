package cli

import (
	"fmt"

	"github.com/alexanderramin/goaltree/internal/cli/formatter"
	"github.com/alexanderramin/goaltree/internal/domain"
	"github.com/alexanderramin/goaltree/internal/progress"
	"github.com/alexanderramin/goaltree/internal/view"
	"github.com/spf13/cobra"
)

func newTreeCmd(app *App) *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "tree [goal-id]",
		Short: "Show goals with their progress",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := ""
			if len(args) == 1 {
				id = args[0]
			}
			return printTree(cmd, app, id, all)
		},
	}
	cmd.Flags().BoolVarP(&all, "all", "a", false, "expand every goal")
	return cmd
}

func printTree(cmd *cobra.Command, app *App, id string, all bool) error {
	tree := app.Engine.Snapshot()
	p := app.projector()
	if all {
		p = expandAll(tree)
	}
	now := app.Engine.Now()

	var views []view.NodeView
	if id == "" {
		views = p.Project(tree, now)
	} else {
		g := tree.Find(id)
		if g == nil {
			return fmt.Errorf("goal %s: %w", id, domain.ErrNotFound)
		}
		views = p.ProjectUnder([]*domain.GoalNode{g}, g.ParentIDOrEmpty(), now)
	}
	fmt.Fprint(cmd.OutOrStdout(), formatter.FormatGoalTree(views))
	return nil
}

func newProgressCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "progress <goal-id>",
		Short: "Show how complete a goal is",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := app.Engine.Goal(args[0])
			if err != nil {
				return err
			}
			now := app.Engine.Now()
			s := progress.Summarize(g, now)
			body := fmt.Sprintf("%s\n\n%d of %d parts done: %d checked, %d streaks reached, %d sub-goals complete",
				formatter.RenderProgress(progress.Compute(g, now), 20),
				s.Done(), s.Units, s.Checked, s.StreaksReached, s.GoalsComplete)
			fmt.Fprintln(cmd.OutOrStdout(), formatter.RenderBox(g.Label, body))
			return nil
		},
	}
}

func newDeleteCmd(app *App) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a goal with everything under it, or a single item or streak",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := args[0]
			if !yes && app.interactive() {
				ok, err := confirm(fmt.Sprintf("Delete %s and everything under it?", id))
				if err != nil {
					return err
				}
				if !ok {
					fmt.Fprintln(cmd.OutOrStdout(), "Cancelled.")
					return nil
				}
			}
			removed, err := app.Engine.Delete(cmd.Context(), id)
			if err != nil {
				return err
			}
			if err := app.saveViewState(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d item(s)\n", len(removed))
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip confirmation")
	return cmd
}

func newServeCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the goal API over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			if app.Serve == nil {
				return fmt.Errorf("serve needs a local database; unset the remote server")
			}
			return app.Serve(cmd.Context())
		},
	}
}

// expandAll returns a throwaway projector with every goal in tree expanded.
func expandAll(tree *domain.Tree) *view.Projector {
	p := view.NewProjector()
	tree.Walk(func(n *domain.GoalNode) bool {
		p.SetExpanded(n.ID, true)
		return true
	})
	return p
}
