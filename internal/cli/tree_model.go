package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/alexanderramin/goaltree/internal/cli/formatter"
	"github.com/alexanderramin/goaltree/internal/domain"
	"github.com/alexanderramin/goaltree/internal/view"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

type treeKeyMap struct {
	Up     key.Binding
	Down   key.Binding
	Toggle key.Binding
	Menu   key.Binding
	Delete key.Binding
	Close  key.Binding
	Reload key.Binding
	Help   key.Binding
	Quit   key.Binding
}

func defaultTreeKeys() treeKeyMap {
	return treeKeyMap{
		Up:     key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:   key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Toggle: key.NewBinding(key.WithKeys("enter", " "), key.WithHelp("enter", "expand / check")),
		Menu:   key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "menu")),
		Delete: key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "delete")),
		Close:  key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "close menu")),
		Reload: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload")),
		Help:   key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:   key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k treeKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Toggle, k.Menu, k.Delete, k.Help, k.Quit}
}

func (k treeKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Toggle},
		{k.Menu, k.Close, k.Delete},
		{k.Reload, k.Help, k.Quit},
	}
}

// mutationDoneMsg reports the outcome of an engine call made from the browser.
type mutationDoneMsg struct {
	what string
	err  error
}

// treeModel is an interactive browser over the projected goal tree.
type treeModel struct {
	app      *App
	keys     treeKeyMap
	help     help.Model
	rows     []view.Row
	cursor   int
	status   string
	width    int
	quitting bool
}

func newTreeModel(app *App) treeModel {
	m := treeModel{app: app, keys: defaultTreeKeys(), help: help.New()}
	m.refresh()
	return m
}

func (m *treeModel) refresh() {
	tree := m.app.Engine.Snapshot()
	m.app.projector().Prune(tree)
	m.rows = view.Flatten(m.app.projector().Project(tree, m.app.Engine.Now()))
	if m.cursor >= len(m.rows) {
		m.cursor = len(m.rows) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m treeModel) current() (view.Row, bool) {
	if m.cursor < 0 || m.cursor >= len(m.rows) {
		return view.Row{}, false
	}
	return m.rows[m.cursor], true
}

func (m treeModel) Init() tea.Cmd { return nil }

func (m treeModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
		return m, nil

	case mutationDoneMsg:
		if msg.err != nil {
			m.status = formatter.StyleRed.Render("Error: " + msg.err.Error())
		} else {
			m.status = msg.what
		}
		m.refresh()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m treeModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	row, ok := m.current()
	p := m.app.projector()

	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		if err := m.app.saveViewState(); err != nil {
			m.status = "Error: " + err.Error()
		}
		return m, tea.Quit
	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.rows)-1 {
			m.cursor++
		}
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	case key.Matches(msg, m.keys.Reload):
		return m, m.mutate("Reloaded", func(ctx context.Context) error {
			return m.app.Engine.Reload(ctx)
		})
	case !ok:
		return m, nil
	case key.Matches(msg, m.keys.Toggle):
		switch row.Kind {
		case domain.KindGoal:
			p.ToggleExpanded(row.ID)
			m.refresh()
		case domain.KindChecklist:
			id := row.ID
			return m, m.mutate("Toggled "+row.Label, func(ctx context.Context) error {
				return m.app.Engine.ToggleChecklistItem(ctx, id)
			})
		}
	case key.Matches(msg, m.keys.Menu):
		if row.Kind == domain.KindGoal {
			p.ToggleMenu(row.ID)
		}
	case key.Matches(msg, m.keys.Close):
		if row.Kind == domain.KindGoal {
			p.CloseMenu(row.ID)
		}
	case key.Matches(msg, m.keys.Delete):
		// Goals are only deleted from their open menu.
		if row.Kind == domain.KindGoal && !p.State(row.ID).MenuOpen {
			m.status = "Open the menu (m) to delete a goal"
			return m, nil
		}
		id := row.ID
		return m, m.mutate("Deleted "+row.Label, func(ctx context.Context) error {
			_, err := m.app.Engine.Delete(ctx, id)
			return err
		})
	}
	return m, nil
}

func (m treeModel) mutate(what string, fn func(ctx context.Context) error) tea.Cmd {
	return func() tea.Msg {
		return mutationDoneMsg{what: what, err: fn(context.Background())}
	}
}

var cursorStyle = lipgloss.NewStyle().Foreground(formatter.ColorHeader).Bold(true)

func (m treeModel) View() string {
	if m.quitting {
		return ""
	}
	var b strings.Builder
	b.WriteString(formatter.Header("Goals") + "\n")
	if len(m.rows) == 0 {
		b.WriteString(formatter.Dim("No goals yet. Add one with: goaltree goal add <label>") + "\n")
	}
	p := m.app.projector()
	for i, r := range m.rows {
		pointer := "  "
		if i == m.cursor {
			pointer = cursorStyle.Render("> ")
		}
		b.WriteString(pointer + strings.Repeat("  ", r.Depth) + rowText(r) + "\n")
		if r.Kind == domain.KindGoal && p.State(r.ID).MenuOpen {
			b.WriteString(strings.Repeat("  ", r.Depth+2) + formatter.Dim("[x] delete goal  [esc] close") + "\n")
		}
	}
	if m.status != "" {
		b.WriteString("\n" + m.status + "\n")
	}
	b.WriteString("\n" + m.help.View(m.keys))
	return b.String()
}

func rowText(r view.Row) string {
	switch r.Kind {
	case domain.KindGoal:
		marker := "▸"
		if r.Expanded {
			marker = "▾"
		}
		return fmt.Sprintf("%s %s %s", marker, r.Label, formatter.RenderProgress(r.Percent, 10))
	case domain.KindChecklist:
		box := "[ ]"
		if r.Done {
			box = formatter.StyleGreen.Render("[✔]")
		}
		return box + " " + r.Label
	default:
		days := formatter.StreakDays(r.Leaf.ElapsedDays, r.Leaf.TargetDays)
		if r.Done {
			days = formatter.StyleGreen.Render(days)
		}
		return "◷ " + r.Label + " " + formatter.Dim("("+days+")")
	}
}

func runTreeBrowser(cmd *cobra.Command, app *App) error {
	prog := tea.NewProgram(newTreeModel(app),
		tea.WithContext(cmd.Context()),
		tea.WithInput(cmd.InOrStdin()),
		tea.WithOutput(cmd.OutOrStdout()),
	)
	_, err := prog.Run()
	return err
}

func newTUICmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Browse and update goals interactively",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTreeBrowser(cmd, app)
		},
	}
}
