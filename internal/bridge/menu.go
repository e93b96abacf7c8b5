// Package bridge holds the view state a front end binds to: the active
// project, its tasks split by category, the selected task and its steps,
// and the activity chart. Every UI action is translated into a board
// operation, after which the state is reloaded from disk.
package bridge

import (
	"context"
	"time"

	"github.com/twiced-technology-gmbh/prism/internal/board"
	"github.com/twiced-technology-gmbh/prism/internal/chart"
	"github.com/twiced-technology-gmbh/prism/internal/clierr"
	"github.com/twiced-technology-gmbh/prism/internal/task"
)

// Project is one task store the menu can switch to.
type Project struct {
	Name       string `json:"name" yaml:"name"`
	File       string `json:"file" yaml:"file"`
	TitleImage string `json:"title_image,omitempty" yaml:"title_image,omitempty"`
}

// Change tells a listener which part of the state was replaced.
type Change int

// Change kinds.
const (
	MenuItemsChanged Change = iota
	SubmenuItemsChanged
	NodesChanged
)

// Details is the title and description of the selected task.
type Details struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// Options configures a Menu.
type Options struct {
	// Active is the index of the project opened first.
	Active int

	// ChartProject overrides the project label charted; empty charts the
	// active project.
	ChartProject string
	ChartWidth   float64
	Baseline     int
	Padding      float64
	Location     *time.Location

	// Notify, when set, is called after each state change.
	Notify func(Change)
}

// Menu is the front end's view of one project at a time.
type Menu struct {
	projects []Project
	open     func(Project) *board.Board
	opts     Options

	active   int
	board    *board.Board
	idea     []*task.Task
	dev      []*task.Task
	rlty     []*task.Task
	selected int
	submenu  []*task.Step

	nodes []chart.Node
	proj  chart.Projection
}

// NewMenu opens the project at opts.Active. open builds the board for a
// project.
func NewMenu(projects []Project, open func(Project) *board.Board, opts Options) (*Menu, error) {
	if len(projects) == 0 {
		return nil, clierr.New(clierr.ProjectNotFound, "no projects configured")
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}
	m := &Menu{projects: projects, open: open, opts: opts}
	if err := m.CycleProject(opts.Active); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Menu) notify(c Change) {
	if m.opts.Notify != nil {
		m.opts.Notify(c)
	}
}

// Board returns the board of the active project.
func (m *Menu) Board() *board.Board { return m.board }

// Projects returns the configured projects.
func (m *Menu) Projects() []Project { return m.projects }

// ActiveIndex returns the index of the active project.
func (m *Menu) ActiveIndex() int { return m.active }

// CurrentProject returns the active project.
func (m *Menu) CurrentProject() Project { return m.projects[m.active] }

// CurrentTaskFile returns the store path of the active project.
func (m *Menu) CurrentTaskFile() string { return m.projects[m.active].File }

// CurrentTitleImage returns the title image of the active project.
func (m *Menu) CurrentTitleImage() string { return m.projects[m.active].TitleImage }

// CycleProject switches to the project at index and reloads.
func (m *Menu) CycleProject(index int) error {
	if index < 0 || index >= len(m.projects) {
		return clierr.Newf(clierr.ProjectNotFound, "no project at index %d", index).
			WithDetails(map[string]any{"index": index, "count": len(m.projects)})
	}
	m.active = index
	m.board = m.open(m.projects[index])
	return m.Refresh()
}

// Refresh reloads the active store, resets the selection to the first
// task and shows the first dev task's steps.
func (m *Menu) Refresh() error {
	all, err := m.board.Tasks()
	if err != nil {
		return err
	}
	m.idea = task.FilterCategory(all, task.Idea)
	m.dev = task.FilterCategory(all, task.Dev)
	m.rlty = task.FilterCategory(all, task.Rlty)

	m.selected = 0
	m.submenu = nil
	if len(m.dev) > 0 {
		m.submenu = m.dev[0].Steps
	}
	m.notify(MenuItemsChanged)
	m.notify(SubmenuItemsChanged)
	return nil
}

// Items returns the tasks of category; unknown categories are empty.
func (m *Menu) Items(category task.Category) []*task.Task {
	switch category {
	case task.Idea:
		return m.idea
	case task.Dev:
		return m.dev
	case task.Rlty:
		return m.rlty
	}
	return nil
}

// IdeaItems returns the idea tasks.
func (m *Menu) IdeaItems() []*task.Task { return m.idea }

// DevItems returns the dev tasks.
func (m *Menu) DevItems() []*task.Task { return m.dev }

// RltyItems returns the rlty tasks.
func (m *Menu) RltyItems() []*task.Task { return m.rlty }

// SubmenuItems returns the steps on display.
func (m *Menu) SubmenuItems() []*task.Step { return m.submenu }

// SelectedIndex returns the selected position within the shown category.
func (m *Menu) SelectedIndex() int { return m.selected }

// Select marks the task at index of category as selected and shows its
// steps. Out-of-range indices are ignored.
func (m *Menu) Select(index int, category task.Category) bool {
	list := m.Items(category)
	if index < 0 || index >= len(list) {
		return false
	}
	m.selected = index
	m.submenu = list[index].Steps
	m.notify(SubmenuItemsChanged)
	return true
}

// CurrentDetails returns the selected task of category, or empty details
// when the selection is out of range.
func (m *Menu) CurrentDetails(category task.Category) Details {
	list := m.Items(category)
	if m.selected < 0 || m.selected >= len(list) {
		return Details{}
	}
	t := list[m.selected]
	return Details{Title: t.Title, Description: t.Description}
}

// after refreshes following a mutation and returns the mutation's error,
// or the refresh error when the mutation succeeded.
func (m *Menu) after(err error) error {
	if rerr := m.Refresh(); err == nil {
		return rerr
	}
	return err
}

// MoveTask swaps two positions of category.
func (m *Menu) MoveTask(ctx context.Context, from, to int, category task.Category) error {
	return m.after(m.board.MoveTask(ctx, m.Items(category), from, to, category))
}

// MoveTaskToCategory moves the task at index of from into to.
func (m *Menu) MoveTaskToCategory(ctx context.Context, from task.Category, index int, to task.Category) error {
	_, err := m.board.MoveTaskCategory(ctx, from, index, to)
	return m.after(err)
}

// MoveStep reorders the shown steps of the selected dev task.
func (m *Menu) MoveStep(ctx context.Context, from, to int) error {
	return m.after(m.board.MoveStep(ctx, m.submenu, m.dev, m.selected, from, to))
}

func ref(title, description string) task.Ref {
	return task.Ref{Title: title, Description: description}
}

// CombineSteps merges the named steps of the task titled title.
func (m *Menu) CombineSteps(ctx context.Context, steps []string, title, description string) error {
	refs := make([]task.StepRef, len(steps))
	for i, s := range steps {
		refs[i] = task.StepRef{Description: s}
	}
	_, err := m.board.CombineSteps(ctx, ref(title, description), refs)
	return m.after(err)
}

// ExpandStep breaks one step into sub-steps.
func (m *Menu) ExpandStep(ctx context.Context, step, title, description string) error {
	_, err := m.board.ExpandStep(ctx, ref(title, description), task.StepRef{Description: step})
	return m.after(err)
}

// DeleteStep removes every step matching step.
func (m *Menu) DeleteStep(ctx context.Context, step, title, description string) error {
	_, err := m.board.DeleteStep(ctx, ref(title, description), task.StepRef{Description: step})
	return m.after(err)
}

// RecordStepTime logs seconds against step under the active project.
func (m *Menu) RecordStepTime(ctx context.Context, step string, seconds int, title, description string) error {
	return m.after(m.board.LogTime(ctx, board.TimeEntry{
		Project: m.CurrentTaskFile(),
		Task:    ref(title, description),
		Step:    task.StepRef{Description: step},
		Seconds: seconds,
	}))
}

// ProcessTaskInput creates a task from free text.
func (m *Menu) ProcessTaskInput(ctx context.Context, text string) error {
	_, err := m.board.CreateTask(ctx, text, board.CreateOptions{})
	return m.after(err)
}

// ProcessContextInput revises the dev task at index with text.
func (m *Menu) ProcessContextInput(ctx context.Context, text string, index int) error {
	_, err := m.board.AddContext(ctx, text, index)
	return m.after(err)
}

// ProcessStepInput adds a step from text to the dev task at index.
func (m *Menu) ProcessStepInput(ctx context.Context, text string, index int) error {
	_, err := m.board.AddStep(ctx, text, index)
	return m.after(err)
}
