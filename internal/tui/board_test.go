package tui

import (
	"path/filepath"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/twiced-technology-gmbh/prism/internal/activity"
	"github.com/twiced-technology-gmbh/prism/internal/assistant"
	"github.com/twiced-technology-gmbh/prism/internal/board"
	"github.com/twiced-technology-gmbh/prism/internal/bridge"
	"github.com/twiced-technology-gmbh/prism/internal/task"
)

var fixedNow = time.Date(2025, time.June, 3, 14, 5, 9, 0, time.UTC)

func mk(title string, cat task.Category, steps ...string) *task.Task {
	t := &task.Task{ID: "id-" + title, Title: title, Description: title + " desc", Priority: 5, Category: cat}
	for _, s := range steps {
		t.Steps = append(t.Steps, &task.Step{ID: "s-" + s, Description: s})
	}
	return t
}

func newTestBoard(t *testing.T) (*Board, *task.Store, *activity.Log) {
	t.Helper()
	dir := t.TempDir()
	store := task.NewStore(filepath.Join(dir, "Prism_Task_Data.json"))
	require.NoError(t, store.Save([]*task.Task{
		mk("I1", task.Idea),
		mk("D1", task.Dev, "a", "b", "c"),
		mk("I2", task.Idea),
		mk("D2", task.Dev, "x"),
		mk("R1", task.Rlty),
	}))
	other := task.NewStore(filepath.Join(dir, "LeJarvis_Task_Data.json"))
	require.NoError(t, other.Save([]*task.Task{mk("J1", task.Idea)}))

	log := activity.NewLog(filepath.Join(dir, activity.FileName))
	stub := assistant.Offline()
	open := func(p bridge.Project) *board.Board {
		return board.New(task.NewStore(p.File), log, stub, board.Options{
			Now: func() time.Time { return fixedNow },
		})
	}
	menu, err := bridge.NewMenu([]bridge.Project{
		{Name: "Prism", File: store.Path},
		{Name: "LeJarvis", File: other.Path},
	}, open, bridge.Options{Location: time.UTC})
	require.NoError(t, err)

	b := NewBoard(menu, Options{Title: "prism", Now: func() time.Time { return fixedNow }})
	b.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return b, store, log
}

func press(b *Board, keys ...string) tea.Cmd {
	var last tea.Cmd
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "tab":
			msg = tea.KeyMsg{Type: tea.KeyTab}
		case "enter":
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		case "esc":
			msg = tea.KeyMsg{Type: tea.KeyEsc}
		case " ":
			msg = tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		_, last = b.Update(msg)
	}
	return last
}

func typeText(b *Board, s string) {
	for _, r := range s {
		b.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
}

// finishOp runs cmd and feeds the resulting opDoneMsg back into the board.
func finishOp(t *testing.T, b *Board, cmd tea.Cmd) {
	t.Helper()
	require.NotNil(t, cmd)
	done, ok := findDone(cmd)
	require.True(t, ok, "no operation was started")
	b.Update(done)
}

func findDone(cmd tea.Cmd) (opDoneMsg, bool) {
	if cmd == nil {
		return opDoneMsg{}, false
	}
	switch msg := cmd().(type) {
	case opDoneMsg:
		return msg, true
	case tea.BatchMsg:
		for _, c := range msg {
			if done, ok := findDone(c); ok {
				return done, true
			}
		}
	}
	return opDoneMsg{}, false
}

func columnTitles(col column) []string {
	out := make([]string, len(col.tasks))
	for i, t := range col.tasks {
		out[i] = t.Title
	}
	return out
}

func stepDescs(steps []*task.Step) []string {
	out := make([]string, len(steps))
	for i, s := range steps {
		out[i] = s.Description
	}
	return out
}

func TestNewBoardColumns(t *testing.T) {
	b, _, _ := newTestBoard(t)

	require.Len(t, b.columns, 3)
	assert.Equal(t, []string{"I1", "I2"}, columnTitles(b.columns[0]))
	assert.Equal(t, []string{"D1", "D2"}, columnTitles(b.columns[1]))
	assert.Equal(t, []string{"R1"}, columnTitles(b.columns[2]))
	assert.Empty(t, b.steps)
}

func TestCursorShowsSteps(t *testing.T) {
	b, _, _ := newTestBoard(t)

	press(b, "l")
	assert.Equal(t, 1, b.activeCol)
	assert.Equal(t, []string{"a", "b", "c"}, stepDescs(b.steps))

	press(b, "j")
	assert.Equal(t, []string{"x"}, stepDescs(b.steps))

	press(b, "k", "tab", "j")
	assert.Equal(t, focusSteps, b.focus)
	assert.Equal(t, "b", b.selectedStep().Description)
}

func TestReorderStep(t *testing.T) {
	b, store, _ := newTestBoard(t)

	press(b, "l", "tab", "J")
	require.NoError(t, b.err)
	assert.Equal(t, []string{"b", "a", "c"}, stepDescs(b.steps))
	assert.Equal(t, 1, b.stepRow)

	all, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "a", "c"}, stepDescs(all[1].Steps))
}

func TestReorderTask(t *testing.T) {
	b, _, _ := newTestBoard(t)

	press(b, "J")
	require.NoError(t, b.err)
	assert.Equal(t, []string{"I2", "I1"}, columnTitles(b.columns[0]))
	assert.Equal(t, 1, b.activeRow)
}

func TestRecategorize(t *testing.T) {
	b, _, _ := newTestBoard(t)

	press(b, "L")
	require.NoError(t, b.err)
	assert.Equal(t, []string{"I2"}, columnTitles(b.columns[0]))
	assert.Equal(t, []string{"D1", "D2", "I1"}, columnTitles(b.columns[1]))
	assert.Equal(t, 1, b.activeCol)
	assert.Equal(t, "I1", b.selectedTask().Title)
}

func TestContextRequiresDev(t *testing.T) {
	b, _, _ := newTestBoard(t)

	press(b, "i")
	assert.ErrorIs(t, b.err, errDevOnly)
	assert.Equal(t, viewBoard, b.view)
}

func TestCreateTaskAsync(t *testing.T) {
	b, _, _ := newTestBoard(t)

	press(b, "n")
	require.Equal(t, viewInput, b.view)
	typeText(b, "Write release notes")
	cmd := press(b, "enter")
	assert.Equal(t, "Create", b.busy)

	// Keys are ignored while the assistant works.
	press(b, "l")
	assert.Equal(t, 0, b.activeCol)

	finishOp(t, b, cmd)
	require.NoError(t, b.err)
	assert.Empty(t, b.busy)
	assert.Equal(t, []string{"I1", "I2", "Write release notes"}, columnTitles(b.columns[0]))
}

func TestReloadDeferredWhileBusy(t *testing.T) {
	b, store, _ := newTestBoard(t)

	press(b, "l", "a")
	typeText(b, "d")
	cmd := press(b, "enter")
	require.NotEmpty(t, b.busy)

	b.Update(ReloadMsg{})
	assert.True(t, b.pendingReload)

	finishOp(t, b, cmd)
	assert.False(t, b.pendingReload)
	require.NoError(t, b.err)

	all, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"d", "a", "b", "c"}, stepDescs(all[1].Steps))
	assert.Equal(t, []string{"d", "a", "b", "c"}, stepDescs(b.steps))
}

func TestCombineMarkedSteps(t *testing.T) {
	b, _, _ := newTestBoard(t)

	press(b, "l", "tab", " ", "j", " ")
	require.Len(t, b.marked, 2)
	finishOp(t, b, press(b, "c"))
	require.NoError(t, b.err)
	assert.Equal(t, []string{"a; b", "c"}, stepDescs(b.steps))
	assert.Empty(t, b.marked)
}

func TestCombineNeedsTwoMarks(t *testing.T) {
	b, _, _ := newTestBoard(t)

	cmd := press(b, "l", "tab", " ", "c")
	assert.Nil(t, cmd)
	assert.Error(t, b.err)
}

func TestDeleteStepConfirm(t *testing.T) {
	b, _, _ := newTestBoard(t)

	press(b, "l", "tab", "j", "d")
	require.Equal(t, viewConfirmDelete, b.view)
	press(b, "n")
	assert.Equal(t, []string{"a", "b", "c"}, stepDescs(b.steps))

	press(b, "d", "y")
	require.NoError(t, b.err)
	assert.Equal(t, viewBoard, b.view)
	assert.Equal(t, []string{"a", "c"}, stepDescs(b.steps))
}

func TestLogTime(t *testing.T) {
	b, _, log := newTestBoard(t)

	press(b, "l", "tab", "t")
	typeText(b, "1:30")
	press(b, "enter")
	require.NoError(t, b.err)
	assert.Equal(t, 90, b.steps[0].Duration)
	assert.Contains(t, b.notice, "0:01:30")

	entries, err := log.Load()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "D1", entries[0].Title)
}

func TestLogTimeRejectsGarbage(t *testing.T) {
	b, _, _ := newTestBoard(t)

	press(b, "l", "tab", "t")
	typeText(b, "soon")
	press(b, "enter")
	assert.Error(t, b.err)
	assert.Zero(t, b.steps[0].Duration)
}

func TestCycleProject(t *testing.T) {
	b, _, _ := newTestBoard(t)

	press(b, "p")
	require.NoError(t, b.err)
	assert.Equal(t, "LeJarvis", b.menu.CurrentProject().Name)
	assert.Equal(t, []string{"J1"}, columnTitles(b.columns[0]))

	press(b, "P")
	assert.Equal(t, "Prism", b.menu.CurrentProject().Name)
}

func TestChartView(t *testing.T) {
	b, _, _ := newTestBoard(t)

	press(b, "l", "tab", "t")
	typeText(b, "2:00")
	press(b, "enter")
	require.NoError(t, b.err)

	press(b, "g")
	require.Equal(t, viewChart, b.view)
	require.NoError(t, b.err)
	assert.Equal(t, 30, b.spanDays()+1)
	require.NotEmpty(t, b.nodes)
	last := b.nodes[len(b.nodes)-1]
	assert.InDelta(t, 2.0, last.Minutes, 0.001)
	assert.Contains(t, b.View(), "Activity")

	end := b.chartEnd
	press(b, "[")
	assert.True(t, b.chartEnd.Before(end))

	press(b, "esc")
	assert.Equal(t, viewBoard, b.view)
}

func TestViewRenders(t *testing.T) {
	b, _, _ := newTestBoard(t)
	press(b, "l")

	out := b.View()
	assert.Contains(t, out, "Prism")
	assert.Contains(t, out, "D1")
	assert.Contains(t, out, "steps")
}

func TestCardBodyLines(t *testing.T) {
	b, _, _ := newTestBoard(t)
	assert.NotContains(t, b.View(), "I1 desc")

	b.opts.BodyLines = 1
	assert.Contains(t, b.View(), "I1 desc")
}

func TestMouseSelectsColumn(t *testing.T) {
	b, _, _ := newTestBoard(t)

	w := b.columnWidth()
	b.Update(tea.MouseMsg{X: w*2 + 1, Y: 3, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	assert.Equal(t, 2, b.activeCol)
	assert.Equal(t, "R1", b.selectedTask().Title)
}

func TestWrapTitle(t *testing.T) {
	assert.Equal(t, []string{"short"}, wrapTitle("short", 20, 2))
	assert.Equal(t, []string{"alpha beta", "gamma delta"}, wrapTitle("alpha beta gamma delta", 11, 2))
	assert.Equal(t, []string{"alpha..."}, wrapTitle("alpha beta gamma", 8, 1))
}
