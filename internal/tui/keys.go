package tui

import "github.com/charmbracelet/bubbles/key"

// keyMap holds the board's bindings; it doubles as the help.KeyMap for the
// status bar.
type keyMap struct {
	Left, Right, Up, Down key.Binding
	MoveUp, MoveDown      key.Binding
	MoveLeft, MoveRight   key.Binding
	Focus                 key.Binding
	New, Context, AddStep key.Binding
	Mark, Combine, Expand key.Binding
	Delete, LogTime       key.Binding
	NextProject, Prev     key.Binding
	Chart, Reload, Quit   key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		Left:        key.NewBinding(key.WithKeys("h", "left"), key.WithHelp("h/l", "column")),
		Right:       key.NewBinding(key.WithKeys("l", "right")),
		Up:          key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("j/k", "select")),
		Down:        key.NewBinding(key.WithKeys("j", "down")),
		MoveUp:      key.NewBinding(key.WithKeys("K", "shift+up"), key.WithHelp("J/K", "reorder")),
		MoveDown:    key.NewBinding(key.WithKeys("J", "shift+down")),
		MoveLeft:    key.NewBinding(key.WithKeys("H", "shift+left"), key.WithHelp("H/L", "recategorize")),
		MoveRight:   key.NewBinding(key.WithKeys("L", "shift+right")),
		Focus:       key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "steps")),
		New:         key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "new")),
		Context:     key.NewBinding(key.WithKeys("i"), key.WithHelp("i", "context")),
		AddStep:     key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add step")),
		Mark:        key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "mark")),
		Combine:     key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "combine")),
		Expand:      key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "expand")),
		Delete:      key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete step")),
		LogTime:     key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "log time")),
		NextProject: key.NewBinding(key.WithKeys("p"), key.WithHelp("p/P", "project")),
		Prev:        key.NewBinding(key.WithKeys("P")),
		Chart:       key.NewBinding(key.WithKeys("g"), key.WithHelp("g", "chart")),
		Reload:      key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload")),
		Quit:        key.NewBinding(key.WithKeys("q", "esc"), key.WithHelp("q", "quit")),
	}
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Focus, k.MoveUp, k.MoveLeft, k.New, k.LogTime, k.NextProject, k.Chart, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Left, k.Up, k.Focus},
		{k.MoveUp, k.MoveLeft},
		{k.New, k.Context, k.AddStep},
		{k.Mark, k.Combine, k.Expand, k.Delete, k.LogTime},
		{k.NextProject, k.Chart, k.Reload, k.Quit},
	}
}
