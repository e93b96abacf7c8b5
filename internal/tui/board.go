// Package tui implements a terminal UI for prism task boards.
package tui

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/twiced-technology-gmbh/prism/internal/bridge"
	"github.com/twiced-technology-gmbh/prism/internal/chart"
	"github.com/twiced-technology-gmbh/prism/internal/clierr"
	"github.com/twiced-technology-gmbh/prism/internal/duration"
	"github.com/twiced-technology-gmbh/prism/internal/task"
)

// view represents the current screen state.
type view int

const (
	viewBoard view = iota
	viewInput
	viewConfirmDelete
	viewChart
)

// focus selects which pane the cursor keys act on.
type focus int

const (
	focusTasks focus = iota
	focusSteps
)

// inputKind says what the text prompt will be used for.
type inputKind int

const (
	inputTask inputKind = iota
	inputContext
	inputStep
	inputTime
)

// Key and layout constants.
const (
	keyEsc = "esc"

	boardChrome      = 3 // title line above, blank line + status bar below
	errorChrome      = 1 // extra line when error toast is displayed
	defaultChartDays = 30
)

var errDevOnly = errors.New("only dev tasks can be changed this way")

// Options configures the board model.
type Options struct {
	Title      string
	TitleLines int
	// BodyLines is how many description lines a card shows (0 hides it).
	BodyLines int
	ChartDays int
	Now       func() time.Time
	Context   context.Context
}

// Board is the top-level bubbletea model. It renders from a snapshot of
// the menu taken after every change, so the menu is only touched from
// Update or from the single in-flight assistant operation.
type Board struct {
	menu *bridge.Menu
	opts Options
	ctx  context.Context
	now  func() time.Time
	keys keyMap

	columns   []column
	steps     []*task.Step
	activeCol int
	activeRow int
	focus     focus
	stepRow   int
	marked    map[int]bool

	view       view
	input      textinput.Model
	inputKind  inputKind
	deleteStep string

	chartStart time.Time
	chartEnd   time.Time
	nodes      []chart.Node

	busy          string
	pendingReload bool
	spinner       spinner.Model
	help          help.Model

	width  int
	height int
	err    error
	notice string
}

// column groups tasks belonging to a single category.
type column struct {
	category  task.Category
	tasks     []*task.Task
	scrollOff int // first visible row index
}

// NewBoard creates a new Board model over menu.
func NewBoard(menu *bridge.Menu, opts Options) *Board {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Context == nil {
		opts.Context = context.Background()
	}
	if opts.ChartDays <= 0 {
		opts.ChartDays = defaultChartDays
	}
	if opts.TitleLines <= 0 {
		opts.TitleLines = 2
	}

	in := textinput.New()
	in.CharLimit = 2000

	b := &Board{
		menu:    menu,
		opts:    opts,
		ctx:     opts.Context,
		now:     opts.Now,
		keys:    newKeyMap(),
		marked:  map[int]bool{},
		input:   in,
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot)),
		help:    help.New(),
	}
	for _, c := range task.Categories() {
		b.columns = append(b.columns, column{category: c})
	}
	b.sync()
	return b
}

// WatchPaths returns the files whose changes should trigger a reload.
func (b *Board) WatchPaths() []string {
	var paths []string
	for _, p := range b.menu.Projects() {
		paths = append(paths, p.File)
	}
	return append(paths, b.menu.Board().Activity().Path)
}

// Init implements tea.Model.
func (b *Board) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (b *Board) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return b.handleKey(msg)
	case tea.MouseMsg:
		return b.handleMouse(msg)
	case tea.WindowSizeMsg:
		b.width = msg.Width
		b.height = msg.Height
		b.help.Width = msg.Width
		b.input.Width = max(msg.Width-8, 10) //nolint:mnd // prompt and border
		return b, nil
	case ReloadMsg:
		if b.busy != "" {
			b.pendingReload = true
			return b, nil
		}
		b.reload()
		return b, nil
	case opDoneMsg:
		b.finish(msg)
		return b, nil
	case spinner.TickMsg:
		if b.busy == "" {
			return b, nil
		}
		var cmd tea.Cmd
		b.spinner, cmd = b.spinner.Update(msg)
		return b, cmd
	}
	if b.view == viewInput {
		var cmd tea.Cmd
		b.input, cmd = b.input.Update(msg)
		return b, cmd
	}
	return b, nil
}

// View implements tea.Model.
func (b *Board) View() string {
	if b.width == 0 {
		return "Loading..."
	}

	switch b.view {
	case viewInput:
		return b.viewInput()
	case viewConfirmDelete:
		return b.viewDeleteConfirm()
	case viewChart:
		return b.viewChart()
	default:
		return b.viewBoard()
	}
}

func (b *Board) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return b, tea.Quit
	}
	if b.busy != "" {
		return b, nil
	}

	switch b.view {
	case viewBoard:
		return b.handleBoardKey(msg)
	case viewInput:
		return b.handleInputKey(msg)
	case viewConfirmDelete:
		return b.handleDeleteKey(msg)
	case viewChart:
		return b.handleChartKey(msg)
	}
	return b, nil
}

func (b *Board) handleBoardKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	b.notice = ""
	k := b.keys
	switch {
	case key.Matches(msg, k.Quit):
		return b, tea.Quit
	case key.Matches(msg, k.Focus):
		b.toggleFocus()
	case key.Matches(msg, k.Left):
		b.moveCursorCol(-1)
	case key.Matches(msg, k.Right):
		b.moveCursorCol(1)
	case key.Matches(msg, k.Up):
		b.moveCursorRow(-1)
	case key.Matches(msg, k.Down):
		b.moveCursorRow(1)
	case key.Matches(msg, k.MoveUp):
		b.reorder(-1)
	case key.Matches(msg, k.MoveDown):
		b.reorder(1)
	case key.Matches(msg, k.MoveLeft):
		b.recategorize(-1)
	case key.Matches(msg, k.MoveRight):
		b.recategorize(1)
	case key.Matches(msg, k.New):
		return b, b.prompt(inputTask, "Describe the new task")
	case key.Matches(msg, k.Context):
		if b.requireDev() {
			return b, b.prompt(inputContext, "Add context to "+b.selectedTask().Title)
		}
	case key.Matches(msg, k.AddStep):
		if b.requireDev() {
			return b, b.prompt(inputStep, "New step for "+b.selectedTask().Title)
		}
	case key.Matches(msg, k.LogTime):
		if b.selectedStep() != nil {
			return b, b.prompt(inputTime, "Time spent (H:M:S or M:S)")
		}
	case key.Matches(msg, k.Mark):
		b.toggleMark()
	case key.Matches(msg, k.Combine):
		return b, b.combine()
	case key.Matches(msg, k.Expand):
		return b, b.expand()
	case key.Matches(msg, k.Delete):
		if s := b.selectedStep(); s != nil {
			b.deleteStep = s.Description
			b.view = viewConfirmDelete
		}
	case key.Matches(msg, k.NextProject):
		b.cycleProject(1)
	case key.Matches(msg, k.Prev):
		b.cycleProject(-1)
	case key.Matches(msg, k.Chart):
		b.openChart()
	case key.Matches(msg, k.Reload):
		b.reload()
	}
	return b, nil
}

func (b *Board) handleDeleteKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		t := b.selectedTask()
		b.view = viewBoard
		if t == nil {
			return b, nil
		}
		b.apply(b.menu.DeleteStep(b.ctx, b.deleteStep, t.Title, t.Description))
		b.notice = "Deleted step"
	case "n", "N", keyEsc, "q":
		b.view = viewBoard
	}
	return b, nil
}

// --- Cursor ---

func (b *Board) currentColumn() *column {
	if b.activeCol >= 0 && b.activeCol < len(b.columns) {
		return &b.columns[b.activeCol]
	}
	return nil
}

func (b *Board) selectedTask() *task.Task {
	col := b.currentColumn()
	if col == nil || len(col.tasks) == 0 {
		return nil
	}
	if b.activeRow >= 0 && b.activeRow < len(col.tasks) {
		return col.tasks[b.activeRow]
	}
	return nil
}

func (b *Board) selectedStep() *task.Step {
	if b.stepRow >= 0 && b.stepRow < len(b.steps) {
		return b.steps[b.stepRow]
	}
	return nil
}

func (b *Board) toggleFocus() {
	if b.focus == focusSteps {
		b.focus = focusTasks
		return
	}
	if len(b.steps) > 0 {
		b.focus = focusSteps
	}
}

func (b *Board) moveCursorCol(delta int) {
	if b.focus == focusSteps {
		b.focus = focusTasks
	}
	next := b.activeCol + delta
	if next < 0 || next >= len(b.columns) {
		return
	}
	b.activeCol = next
	b.selectCurrent()
}

func (b *Board) moveCursorRow(delta int) {
	if b.focus == focusSteps {
		next := b.stepRow + delta
		if next >= 0 && next < len(b.steps) {
			b.stepRow = next
		}
		return
	}
	col := b.currentColumn()
	next := b.activeRow + delta
	if col == nil || next < 0 || next >= len(col.tasks) {
		return
	}
	b.activeRow = next
	b.selectCurrent()
}

func (b *Board) clampRow() {
	col := b.currentColumn()
	if col == nil || len(col.tasks) == 0 {
		b.activeRow = 0
		return
	}
	if b.activeRow >= len(col.tasks) {
		b.activeRow = len(col.tasks) - 1
	}
	if b.activeRow < 0 {
		b.activeRow = 0
	}
	b.ensureVisible()
}

// selectCurrent points the menu's selection at the cursor and shows that
// task's steps.
func (b *Board) selectCurrent() {
	b.clampRow()
	prev := b.steps
	b.steps = nil
	if col := b.currentColumn(); col != nil && b.menu.Select(b.activeRow, col.category) {
		b.steps = b.menu.SubmenuItems()
	}
	if !sameSteps(prev, b.steps) {
		b.marked = map[int]bool{}
	}
	if b.stepRow >= len(b.steps) {
		b.stepRow = max(len(b.steps)-1, 0)
	}
	if len(b.steps) == 0 {
		b.focus = focusTasks
	}
}

func sameSteps(a, c []*task.Step) bool {
	if len(a) != len(c) {
		return false
	}
	for i := range a {
		if a[i].ID != c[i].ID {
			return false
		}
	}
	return true
}

// --- State ---

// sync copies the menu's lists into the columns and restores the cursor.
func (b *Board) sync() {
	for i := range b.columns {
		b.columns[i].tasks = b.menu.Items(b.columns[i].category)
	}
	b.selectCurrent()
}

func (b *Board) reload() {
	b.err = b.menu.Refresh()
	b.sync()
}

// apply records the outcome of a synchronous menu operation.
func (b *Board) apply(err error) {
	b.err = err
	b.sync()
}

func (b *Board) requireDev() bool {
	col := b.currentColumn()
	if b.selectedTask() == nil || col.category != task.Dev {
		b.err = errDevOnly
		return false
	}
	return true
}

func (b *Board) reorder(delta int) {
	if b.focus == focusSteps {
		b.reorderStep(delta)
		return
	}
	col := b.currentColumn()
	to := b.activeRow + delta
	if b.selectedTask() == nil || to < 0 || to >= len(col.tasks) {
		return
	}
	b.apply(b.menu.MoveTask(b.ctx, b.activeRow, to, col.category))
	if b.err == nil {
		b.activeRow = to
		b.selectCurrent()
	}
}

func (b *Board) reorderStep(delta int) {
	if !b.requireDev() {
		return
	}
	to := b.stepRow + delta
	if to < 0 || to >= len(b.steps) {
		return
	}
	b.apply(b.menu.MoveStep(b.ctx, b.stepRow, to))
	if b.err == nil {
		b.stepRow = to
	}
}

func (b *Board) recategorize(delta int) {
	if b.focus == focusSteps || b.selectedTask() == nil {
		return
	}
	target := b.activeCol + delta
	if target < 0 || target >= len(b.columns) {
		return
	}
	from := b.columns[b.activeCol].category
	to := b.columns[target].category
	b.apply(b.menu.MoveTaskToCategory(b.ctx, from, b.activeRow, to))
	if b.err == nil {
		b.activeCol = target
		b.activeRow = len(b.columns[target].tasks) - 1
		b.selectCurrent()
	}
}

func (b *Board) cycleProject(delta int) {
	n := len(b.menu.Projects())
	next := ((b.menu.ActiveIndex()+delta)%n + n) % n
	if err := b.menu.CycleProject(next); err != nil {
		b.err = err
		return
	}
	b.err = nil
	b.activeRow, b.stepRow = 0, 0
	for i := range b.columns {
		b.columns[i].scrollOff = 0
	}
	b.focus = focusTasks
	b.sync()
}

func (b *Board) toggleMark() {
	if b.focus != focusSteps || b.selectedStep() == nil {
		return
	}
	if b.marked[b.stepRow] {
		delete(b.marked, b.stepRow)
	} else {
		b.marked[b.stepRow] = true
	}
}

// --- Assistant operations ---

// opDoneMsg reports the end of an assistant operation.
type opDoneMsg struct {
	label string
	err   error
}

// runAsync runs fn off the event loop. Keys are ignored until it returns.
func (b *Board) runAsync(label string, fn func(ctx context.Context) error) tea.Cmd {
	b.busy = label
	b.err = nil
	ctx := b.ctx
	return tea.Batch(b.spinner.Tick, func() tea.Msg {
		return opDoneMsg{label: label, err: fn(ctx)}
	})
}

func (b *Board) finish(msg opDoneMsg) {
	b.busy = ""
	b.err = msg.err
	if msg.err == nil {
		b.notice = msg.label + " done"
	}
	if b.pendingReload {
		b.pendingReload = false
		if err := b.menu.Refresh(); err != nil && b.err == nil {
			b.err = err
		}
	}
	b.sync()
}

func (b *Board) combine() tea.Cmd {
	t := b.selectedTask()
	if t == nil || len(b.marked) < 2 { //nolint:mnd // combining needs two steps
		b.err = errors.New("mark at least two steps with space to combine")
		return nil
	}
	rows := make([]int, 0, len(b.marked))
	for i := range b.marked {
		if i < len(b.steps) {
			rows = append(rows, i)
		}
	}
	sort.Ints(rows)
	descs := make([]string, len(rows))
	for i, r := range rows {
		descs[i] = b.steps[r].Description
	}
	b.marked = map[int]bool{}
	title, desc := t.Title, t.Description
	return b.runAsync("Combine", func(ctx context.Context) error {
		return b.menu.CombineSteps(ctx, descs, title, desc)
	})
}

func (b *Board) expand() tea.Cmd {
	t, s := b.selectedTask(), b.selectedStep()
	if t == nil || s == nil {
		return nil
	}
	step, title, desc := s.Description, t.Title, t.Description
	return b.runAsync("Expand", func(ctx context.Context) error {
		return b.menu.ExpandStep(ctx, step, title, desc)
	})
}

// --- Input ---

func (b *Board) prompt(kind inputKind, placeholder string) tea.Cmd {
	b.inputKind = kind
	b.input.Reset()
	b.input.Placeholder = placeholder
	b.view = viewInput
	return b.input.Focus()
}

func (b *Board) handleInputKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case keyEsc:
		b.input.Blur()
		b.view = viewBoard
		return b, nil
	case "enter":
		text := b.input.Value()
		b.input.Blur()
		b.view = viewBoard
		if text == "" {
			return b, nil
		}
		return b, b.submit(text)
	}
	var cmd tea.Cmd
	b.input, cmd = b.input.Update(msg)
	return b, cmd
}

func (b *Board) submit(text string) tea.Cmd {
	row := b.activeRow
	switch b.inputKind {
	case inputTask:
		return b.runAsync("Create", func(ctx context.Context) error {
			return b.menu.ProcessTaskInput(ctx, text)
		})
	case inputContext:
		return b.runAsync("Context", func(ctx context.Context) error {
			return b.menu.ProcessContextInput(ctx, text, row)
		})
	case inputStep:
		return b.runAsync("Add step", func(ctx context.Context) error {
			return b.menu.ProcessStepInput(ctx, text, row)
		})
	case inputTime:
		b.logTime(text)
	}
	return nil
}

func (b *Board) logTime(text string) {
	t, s := b.selectedTask(), b.selectedStep()
	if t == nil || s == nil {
		return
	}
	d := duration.Parse(text)
	if d <= 0 {
		b.err = clierr.Newf(clierr.InvalidInput, "invalid duration %q", text)
		return
	}
	b.apply(b.menu.RecordStepTime(b.ctx, s.Description, int(d/time.Second), t.Title, t.Description))
	if b.err == nil {
		b.notice = fmt.Sprintf("Logged %s on %q", duration.Format(d), s.Description)
	}
}

// --- Messages ---

// ReloadMsg is sent by the file watcher to trigger a board refresh.
type ReloadMsg struct{}
