package cli

import (
	"path/filepath"
	"testing"

	"github.com/alexanderramin/goaltree/internal/teatest"
	"github.com/alexanderramin/goaltree/internal/view"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBrowser(t *testing.T, app *App) *teatest.Driver {
	t.Helper()
	return teatest.New(t, newTreeModel(app), teatest.WithSize(100, 40))
}

func browserRows(t *testing.T, d *teatest.Driver) []string {
	t.Helper()
	m, ok := d.Model.(treeModel)
	require.True(t, ok)
	ids := make([]string, len(m.rows))
	for i, r := range m.rows {
		ids[i] = r.ID
	}
	return ids
}

func TestTreeBrowser_ExpandAndCollapse(t *testing.T) {
	app, _ := testApp(t)
	d := newBrowser(t, app)

	assert.Equal(t, []string{"fit"}, browserRows(t, d))
	assert.Contains(t, stripANSI(d.View()), "▸ Get fit")

	d.Press("enter")
	assert.Equal(t, []string{"fit", "s1", "c1", "c2", "run"}, browserRows(t, d))
	out := stripANSI(d.View())
	assert.Contains(t, out, "▾ Get fit")
	assert.Contains(t, out, "Stretch (4/10 days)")
	assert.Contains(t, out, "[✔] Buy shoes")

	d.Press("enter")
	assert.Equal(t, []string{"fit"}, browserRows(t, d))
}

func TestTreeBrowser_ToggleChecklistItem(t *testing.T) {
	app, gw := testApp(t)
	d := newBrowser(t, app)

	d.Press("enter", "down", "down", "down")
	d.Press("enter")

	leaf, _, err := app.Engine.Checklist("c2")
	require.NoError(t, err)
	assert.True(t, leaf.Checked)
	assert.True(t, gw.Tree().Find("fit").ChecklistItems[1].Checked)
	assert.Contains(t, stripANSI(d.View()), "Toggled Plan route")
	assert.Contains(t, stripANSI(d.View()), "75%")
}

func TestTreeBrowser_GoalDeleteNeedsMenu(t *testing.T) {
	app, gw := testApp(t)
	d := newBrowser(t, app)

	d.Press("x")
	assert.Contains(t, stripANSI(d.View()), "Open the menu (m) to delete a goal")
	require.Len(t, gw.Tree().Roots, 1)

	d.Press("m")
	assert.Contains(t, stripANSI(d.View()), "[x] delete goal")
	d.Press("esc")
	assert.NotContains(t, stripANSI(d.View()), "[x] delete goal")

	d.Press("m", "x")
	assert.Empty(t, gw.Tree().Roots)
	assert.Empty(t, browserRows(t, d))
	assert.Contains(t, stripANSI(d.View()), "No goals yet")
}

func TestTreeBrowser_DeleteLeafDirectly(t *testing.T) {
	app, _ := testApp(t)
	d := newBrowser(t, app)

	d.Press("enter", "down")
	d.Press("x")
	assert.Equal(t, []string{"fit", "c1", "c2", "run"}, browserRows(t, d))
	assert.Contains(t, stripANSI(d.View()), "Deleted Stretch")
}

func TestTreeBrowser_PersistFailureShowsError(t *testing.T) {
	app, gw := testApp(t)
	gw.FailNext("delete", assert.AnError)
	d := newBrowser(t, app)

	d.Press("enter", "down", "x")
	assert.Contains(t, stripANSI(d.View()), "Error: "+assert.AnError.Error())
	assert.Equal(t, []string{"fit", "s1", "c1", "c2", "run"}, browserRows(t, d))
}

func TestTreeBrowser_CursorStaysInBounds(t *testing.T) {
	app, _ := testApp(t)
	d := newBrowser(t, app)

	d.Press("up", "up", "down", "down", "down")
	m := d.Model.(treeModel)
	assert.Equal(t, 0, m.cursor)
}

func TestTreeBrowser_QuitSavesExpanded(t *testing.T) {
	store, err := view.OpenBoltStateStore(filepath.Join(t.TempDir(), "view.db"))
	require.NoError(t, err)
	defer store.Close()

	app, _ := testApp(t)
	app.ViewState = store
	d := newBrowser(t, app)

	d.Press("enter", "q")
	assert.True(t, d.Quitting)
	assert.Empty(t, d.View())

	ids, err := store.LoadExpanded()
	require.NoError(t, err)
	assert.Equal(t, []string{"fit"}, ids)
}
