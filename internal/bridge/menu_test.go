package bridge

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/twiced-technology-gmbh/prism/internal/activity"
	"github.com/twiced-technology-gmbh/prism/internal/assistant"
	"github.com/twiced-technology-gmbh/prism/internal/board"
	"github.com/twiced-technology-gmbh/prism/internal/clierr"
	"github.com/twiced-technology-gmbh/prism/internal/task"
)

var fixedNow = time.Date(2025, time.June, 3, 14, 5, 9, 0, time.UTC)

func mk(title string, cat task.Category, steps ...string) *task.Task {
	t := &task.Task{
		ID:          "id-" + title,
		Title:       title,
		Description: title + " desc",
		Priority:    task.DefaultPriority,
		Category:    cat,
	}
	for _, s := range steps {
		t.Steps = append(t.Steps, &task.Step{ID: "s-" + s, Description: s})
	}
	return t
}

type fixture struct {
	menu    *Menu
	stub    *assistant.Stub
	log     *activity.Log
	changes []Change
	paths   []string
}

func setup(t *testing.T) *fixture {
	t.Helper()
	dir := t.TempDir()
	f := &fixture{stub: assistant.NewStub(), log: activity.NewLog(filepath.Join(dir, activity.FileName))}

	prism := task.NewStore(filepath.Join(dir, "Prism_Task_Data.json"))
	require.NoError(t, prism.Save([]*task.Task{
		mk("I1", task.Idea),
		mk("D1", task.Dev, "a", "b", "c"),
		mk("I2", task.Idea),
		mk("D2", task.Dev, "x"),
		mk("R1", task.Rlty),
	}))
	jarvis := task.NewStore(filepath.Join(dir, "LeJarvis_Task_Data.json"))
	require.NoError(t, jarvis.Save([]*task.Task{mk("J1", task.Dev, "j")}))
	f.paths = []string{prism.Path, jarvis.Path}

	projects := []Project{
		{Name: "Prism", File: prism.Path, TitleImage: "prism.png"},
		{Name: "LeJarvis", File: jarvis.Path, TitleImage: "jarvis.png"},
	}
	open := func(p Project) *board.Board {
		return board.New(task.NewStore(p.File), f.log, f.stub, board.Options{
			Now: func() time.Time { return fixedNow },
		})
	}
	m, err := NewMenu(projects, open, Options{
		Location: time.UTC,
		Notify:   func(c Change) { f.changes = append(f.changes, c) },
	})
	require.NoError(t, err)
	f.menu = m
	return f
}

func titles(tasks []*task.Task) []string {
	out := make([]string, len(tasks))
	for i, t := range tasks {
		out[i] = t.Title
	}
	return out
}

func descs(steps []*task.Step) []string {
	out := make([]string, len(steps))
	for i, s := range steps {
		out[i] = s.Description
	}
	return out
}

func TestNewMenuCategorizes(t *testing.T) {
	f := setup(t)
	m := f.menu

	assert.Equal(t, []string{"I1", "I2"}, titles(m.IdeaItems()))
	assert.Equal(t, []string{"D1", "D2"}, titles(m.DevItems()))
	assert.Equal(t, []string{"R1"}, titles(m.RltyItems()))
	assert.Equal(t, []string{"a", "b", "c"}, descs(m.SubmenuItems()))
	assert.Equal(t, 0, m.SelectedIndex())
	assert.Equal(t, "prism.png", m.CurrentTitleImage())
	assert.Contains(t, f.changes, MenuItemsChanged)
}

func TestNewMenuWithoutProjects(t *testing.T) {
	_, err := NewMenu(nil, nil, Options{})
	assert.True(t, clierr.Is(err, clierr.ProjectNotFound))
}

func TestSelect(t *testing.T) {
	m := setup(t).menu

	assert.True(t, m.Select(1, task.Dev))
	assert.Equal(t, 1, m.SelectedIndex())
	assert.Equal(t, []string{"x"}, descs(m.SubmenuItems()))
	assert.Equal(t, Details{Title: "D2", Description: "D2 desc"}, m.CurrentDetails(task.Dev))

	assert.False(t, m.Select(5, task.Dev))
	assert.False(t, m.Select(-1, task.Idea))
	assert.Equal(t, 1, m.SelectedIndex())

	// Selection 1 is out of range for rlty.
	assert.Equal(t, Details{}, m.CurrentDetails(task.Rlty))
	assert.Nil(t, m.Items(task.Category("done")))
}

func TestCycleProject(t *testing.T) {
	m := setup(t).menu
	m.Select(1, task.Dev)

	require.NoError(t, m.CycleProject(1))
	assert.Equal(t, 1, m.ActiveIndex())
	assert.Equal(t, "LeJarvis", m.CurrentProject().Name)
	assert.Equal(t, []string{"J1"}, titles(m.DevItems()))
	assert.Empty(t, m.IdeaItems())
	assert.Equal(t, 0, m.SelectedIndex())
	assert.Equal(t, []string{"j"}, descs(m.SubmenuItems()))

	err := m.CycleProject(2)
	assert.True(t, clierr.Is(err, clierr.ProjectNotFound))
	assert.Equal(t, 1, m.ActiveIndex())
}

func TestMoveTaskRefreshes(t *testing.T) {
	m := setup(t).menu
	ctx := context.Background()

	require.NoError(t, m.MoveTask(ctx, 0, 1, task.Idea))
	assert.Equal(t, []string{"I2", "I1"}, titles(m.IdeaItems()))

	err := m.MoveTask(ctx, 0, 9, task.Idea)
	assert.True(t, clierr.Is(err, clierr.IndexOutOfRange))
	assert.Equal(t, []string{"I2", "I1"}, titles(m.IdeaItems()))
}

func TestMoveTaskToCategory(t *testing.T) {
	m := setup(t).menu

	require.NoError(t, m.MoveTaskToCategory(context.Background(), task.Idea, 1, task.Dev))
	assert.Equal(t, []string{"I1"}, titles(m.IdeaItems()))
	assert.Equal(t, []string{"D1", "D2", "I2"}, titles(m.DevItems()))
}

func TestMoveStepUsesSelection(t *testing.T) {
	m := setup(t).menu

	require.NoError(t, m.MoveStep(context.Background(), 0, 2))
	assert.Equal(t, []string{"b", "c", "a"}, descs(m.SubmenuItems()))
	assert.Equal(t, []string{"b", "c", "a"}, descs(m.DevItems()[0].Steps))
}

func TestStepOperations(t *testing.T) {
	f := setup(t)
	m := f.menu
	ctx := context.Background()

	f.stub.Replies = []string{`{"Step":"a and b"}`}
	require.NoError(t, m.CombineSteps(ctx, []string{"a", "b"}, "D1", "D1 desc"))
	assert.Equal(t, []string{"a and b", "c"}, descs(m.SubmenuItems()))

	f.stub.Replies = []string{`{"Steps":["c1","c2"]}`}
	require.NoError(t, m.ExpandStep(ctx, "c", "D1", "D1 desc"))
	assert.Equal(t, []string{"a and b", "c1", "c2"}, descs(m.SubmenuItems()))

	require.NoError(t, m.DeleteStep(ctx, "c1", "D1", "D1 desc"))
	assert.Equal(t, []string{"a and b", "c2"}, descs(m.SubmenuItems()))

	err := m.DeleteStep(ctx, "nope", "D1", "D1 desc")
	assert.True(t, clierr.Is(err, clierr.StepNotFound))
}

func TestProcessInputs(t *testing.T) {
	f := setup(t)
	m := f.menu
	ctx := context.Background()

	f.stub.Replies = []string{`{"Title":"New","Description":"N","Steps":["n1"]}`}
	require.NoError(t, m.ProcessTaskInput(ctx, "something new"))
	assert.Equal(t, []string{"I1", "I2", "New"}, titles(m.IdeaItems()))

	f.stub.Replies = []string{`{"step":"first"}`}
	require.NoError(t, m.ProcessStepInput(ctx, "do first", 1))
	assert.Equal(t, []string{"first", "x"}, descs(m.DevItems()[1].Steps))

	f.stub.Replies = []string{`{"title":"D2 revised"}`}
	require.NoError(t, m.ProcessContextInput(ctx, "more info", 1))
	assert.Equal(t, []string{"D1", "D2 revised"}, titles(m.DevItems()))

	f.stub.Replies = []string{"no json here"}
	err := m.ProcessTaskInput(ctx, "broken")
	assert.True(t, clierr.Is(err, clierr.DecompositionFormat))
}

func TestRecordStepTimeAndNodes(t *testing.T) {
	f := setup(t)
	m := f.menu
	ctx := context.Background()

	require.NoError(t, m.RecordStepTime(ctx, "b", 90, "D1", "D1 desc"))
	assert.Equal(t, 90, m.DevItems()[0].Steps[1].Duration)

	entries, err := f.log.Load()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "Prism", entries[0].Project)
	assert.Equal(t, "0:01:30", entries[0].Duration)

	day := func(d int) time.Time { return time.Date(2025, time.June, d, 0, 0, 0, 0, time.UTC) }
	nodes, err := m.Nodes(day(1), day(3))
	require.NoError(t, err)
	require.Len(t, nodes, 3)
	assert.InDelta(t, 1.5, nodes[2].Minutes, 1e-9)
	assert.Equal(t, 3, m.NodeCount())
	assert.Contains(t, f.changes, NodesChanged)

	n, ok := m.Node(2)
	require.True(t, ok)
	assert.Equal(t, nodes[2], n)
	_, ok = m.Node(3)
	assert.False(t, ok)
	assert.Positive(t, m.ScaledMaxY())

	again := m.Reproject(day(1), day(3))
	assert.Equal(t, nodes, again)
}

func TestNodesForOtherProjectAreEmpty(t *testing.T) {
	f := setup(t)
	m := f.menu
	require.NoError(t, m.RecordStepTime(context.Background(), "a", 60, "D1", "D1 desc"))
	require.NoError(t, m.CycleProject(1))

	assert.Equal(t, "LeJarvis", m.ChartProject())
	nodes, err := m.Nodes(fixedNow.AddDate(0, 0, -1), fixedNow)
	require.NoError(t, err)
	assert.Empty(t, nodes)
}
