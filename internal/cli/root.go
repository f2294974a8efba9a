package cli

import (
	"context"
	"log/slog"

	"github.com/alexanderramin/goaltree/internal/engine"
	"github.com/alexanderramin/goaltree/internal/view"
	"github.com/spf13/cobra"
)

// App holds what CLI commands need: the engine for reads and mutations and
// the projector for expand/collapse state.
type App struct {
	Engine    *engine.Engine
	Projector *view.Projector

	// ViewState persists expanded goals between runs. Optional.
	ViewState view.StateStore

	// Serve runs the HTTP API until ctx is done. Nil when the CLI is talking
	// to a remote server instead of a local database.
	Serve func(ctx context.Context) error

	// IsInteractive reports whether prompts may be shown. Nil means never.
	IsInteractive func() bool

	// Logger receives warnings that do not fail a command. Optional.
	Logger *slog.Logger
}

func (a *App) interactive() bool {
	return a.IsInteractive != nil && a.IsInteractive()
}

func (a *App) projector() *view.Projector {
	if a.Projector == nil {
		a.Projector = view.NewProjector()
		if a.ViewState != nil {
			if err := a.Projector.Load(a.ViewState); err != nil {
				a.logger().Warn("view state unreadable; starting with every goal collapsed", "error", err)
			}
		}
	}
	return a.Projector
}

func (a *App) logger() *slog.Logger {
	if a.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return a.Logger
}

// saveViewState writes the expanded set back, dropping goals that no longer
// exist.
func (a *App) saveViewState() error {
	if a.ViewState == nil || a.Projector == nil {
		return nil
	}
	a.Projector.Prune(a.Engine.Snapshot())
	return a.Projector.Save(a.ViewState)
}

// NewRootCmd creates the top-level "goaltree" command and registers all
// subcommands against the provided App.
func NewRootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:           "goaltree",
		Short:         "Nested goals with checklists and day streaks",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if app.interactive() {
				return runTreeBrowser(cmd, app)
			}
			return printTree(cmd, app, "", false)
		},
	}

	root.AddCommand(
		newGoalCmd(app),
		newCheckCmd(app),
		newStreakCmd(app),
		newTreeCmd(app),
		newProgressCmd(app),
		newDeleteCmd(app),
		newServeCmd(app),
		newTUICmd(app),
	)

	return root
}
