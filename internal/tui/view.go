package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/twiced-technology-gmbh/prism/internal/duration"
	"github.com/twiced-technology-gmbh/prism/internal/task"
)

// --- Styles ---

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("230")).
			Background(lipgloss.Color("62")).
			Padding(0, 1)

	columnHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("252")).
				Background(lipgloss.Color("236")).
				Padding(0, 1)

	activeColumnHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("230")).
				Background(lipgloss.Color("62")).
				Padding(0, 1)

	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)

	activeCardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("226")).
			Padding(0, 1)

	// Category colors for card titles.
	categoryColors = map[task.Category]lipgloss.Color{
		task.Idea: "62",
		task.Dev:  "33",
		task.Rlty: "34",
	}

	statusBarStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	noticeStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("34"))
	errorStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	dimStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	selectedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("226")).Bold(true)
	markStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("208"))
	barStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("33"))

	dialogPadY = 1
	dialogPadX = 2

	dialogStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(dialogPadY, dialogPadX)
)

// --- Board view ---

func (b *Board) viewBoard() string {
	colWidth := b.columnWidth()

	parts := make([]string, 0, len(b.columns)+1)
	for i, col := range b.columns {
		parts = append(parts, b.renderColumn(i, col, colWidth))
	}
	parts = append(parts, b.renderSteps(b.stepsWidth(colWidth)))
	boardView := lipgloss.JoinHorizontal(lipgloss.Top, parts...)

	// Clamp from the bottom (keeping headers at the top) and pad if needed.
	targetHeight := b.height - b.chromeHeight()
	if targetHeight > 0 {
		actual := strings.Count(boardView, "\n") + 1
		if actual > targetHeight {
			viewLines := strings.SplitN(boardView, "\n", targetHeight+1)
			boardView = strings.Join(viewLines[:targetHeight], "\n")
		} else if actual < targetHeight {
			boardView += strings.Repeat("\n", targetHeight-actual)
		}
	}

	return lipgloss.JoinVertical(lipgloss.Left, b.renderTitle(), boardView, "", b.renderStatusBar())
}

func (b *Board) renderTitle() string {
	p := b.menu.CurrentProject()
	text := fmt.Sprintf("%s · %s (%d/%d)", b.opts.Title, p.Name, b.menu.ActiveIndex()+1, len(b.menu.Projects()))
	return titleStyle.Render(truncate(text, max(b.width-2, 4))) //nolint:mnd // padding
}

// columnWidth splits the screen between the category columns and the steps
// pane, which gets a double share.
func (b *Board) columnWidth() int {
	if b.width == 0 || len(b.columns) == 0 {
		return 30 //nolint:mnd // default column width
	}
	w := b.width / (len(b.columns) + 2) //nolint:mnd // steps pane counts twice
	const maxColWidth = 60
	return min(w, maxColWidth)
}

func (b *Board) stepsWidth(colWidth int) int {
	return max(b.width-colWidth*len(b.columns), colWidth)
}

// chromeHeight returns the number of lines consumed by non-card elements:
// title line, blank line + status bar (+ error line when an error is shown).
func (b *Board) chromeHeight() int {
	h := boardChrome
	if b.err != nil || b.notice != "" {
		h += errorChrome
	}
	return h
}

func (b *Board) renderColumn(colIdx int, col column, width int) string {
	headerText := fmt.Sprintf("%s (%d)", col.category, len(col.tasks))
	const headerPad = 2
	headerText = truncate(headerText, width-headerPad)

	header := columnHeaderStyle.Width(width).Render(headerText)
	if colIdx == b.activeCol && b.focus == focusTasks {
		header = activeColumnHeaderStyle.Width(width).Render(headerText)
	}

	maxVis := b.visibleCardsForColumn(&col, width)
	start := min(col.scrollOff, len(col.tasks))
	end := min(start+maxVis, len(col.tasks))

	parts := []string{header}
	if start > 0 {
		parts = append(parts, dimStyle.Width(width).Render(truncate(fmt.Sprintf("  ↑ %d more", start), width)))
	}
	if len(col.tasks) == 0 {
		parts = append(parts, dimStyle.Width(width).Render("  (empty)"))
	}
	for rowIdx := start; rowIdx < end; rowIdx++ {
		active := colIdx == b.activeCol && rowIdx == b.activeRow
		parts = append(parts, b.renderCard(col.tasks[rowIdx], active, width))
	}
	if end < len(col.tasks) {
		indicator := fmt.Sprintf("  ↓ %d more", len(col.tasks)-end)
		parts = append(parts, dimStyle.Width(width).Render(truncate(indicator, width)))
	}

	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (b *Board) renderCard(t *task.Task, active bool, width int) string {
	content := strings.Join(b.cardContentLines(t, width), "\n")
	style := cardStyle
	if active {
		style = activeCardStyle
	}
	return style.Width(width - 2).Render(content) //nolint:mnd // border width
}

func (b *Board) cardHeight(t *task.Task, width int) int {
	return len(b.cardContentLines(t, width)) + 2 //nolint:mnd // top and bottom borders
}

func (b *Board) cardContentLines(t *task.Task, width int) []string {
	const cardChrome = 4 // border (2) + padding (2)
	cardWidth := max(width-cardChrome, 1)

	ts := lipgloss.NewStyle().Foreground(categoryColors[t.Category])
	var lines []string
	for _, l := range wrapTitle(t.Title, cardWidth, b.opts.TitleLines) {
		lines = append(lines, ts.Render(l))
	}
	if b.opts.BodyLines > 0 && t.Description != "" {
		desc := strings.Join(strings.Fields(t.Description), " ")
		for _, l := range wrapTitle(desc, cardWidth, b.opts.BodyLines) {
			lines = append(lines, dimStyle.Render(l))
		}
	}

	meta := fmt.Sprintf("p%d · %d steps", t.Priority, len(t.Steps))
	if logged := t.TotalDuration(); logged > 0 {
		meta += " · " + duration.FormatSeconds(logged)
	}
	lines = append(lines, dimStyle.Render(truncate(meta, cardWidth)))
	return lines
}

func (b *Board) renderSteps(width int) string {
	t := b.selectedTask()
	headerText := "steps"
	if t != nil {
		headerText = "steps · " + t.Title
	}
	const headerPad = 2
	headerText = truncate(headerText, width-headerPad)

	header := columnHeaderStyle.Width(width).Render(headerText)
	if b.focus == focusSteps {
		header = activeColumnHeaderStyle.Width(width).Render(headerText)
	}

	parts := []string{header}
	if len(b.steps) == 0 {
		parts = append(parts, dimStyle.Render("  (no steps)"))
	}
	const prefixW, timeW = 4, 9
	textW := max(width-prefixW-timeW, 4) //nolint:mnd // minimum text width
	for i, s := range b.steps {
		cursor := "  "
		if b.focus == focusSteps && i == b.stepRow {
			cursor = selectedStyle.Render("> ")
		}
		mark := "  "
		if b.marked[i] {
			mark = markStyle.Render("● ")
		}
		logged := ""
		if s.Duration > 0 {
			logged = dimStyle.Render(duration.FormatSeconds(s.Duration))
		}
		line := cursor + mark + padRight(truncate(s.Description, textW), textW) + " " + logged
		parts = append(parts, line)
	}
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (b *Board) renderStatusBar() string {
	total := 0
	for _, col := range b.columns {
		total += len(col.tasks)
	}
	status := fmt.Sprintf(" %d tasks | ", total) + b.help.View(b.keys)
	if b.busy != "" {
		status = " " + b.spinner.View() + " " + b.busy + "..."
	}
	status = statusBarStyle.Render(status)

	switch {
	case b.err != nil:
		return errorStyle.Render(truncate("Error: "+b.err.Error(), b.width)) + "\n" + status
	case b.notice != "":
		return noticeStyle.Render(truncate(b.notice, b.width)) + "\n" + status
	}
	return status
}

func (b *Board) viewInput() string {
	label := map[inputKind]string{
		inputTask:    "New task",
		inputContext: "Add context",
		inputStep:    "Add step",
		inputTime:    "Log time",
	}[b.inputKind]
	content := selectedStyle.Render(label) + "\n\n" + b.input.View() + "\n\n" +
		dimStyle.Render("enter:submit  esc:cancel")
	return dialogStyle.Render(content)
}

func (b *Board) viewDeleteConfirm() string {
	content := errorStyle.Render("Delete step?") + "\n\n" +
		"  " + b.deleteStep + "\n\n" +
		dimStyle.Render("y:yes  n:no")
	return dialogStyle.Render(content)
}

// --- Scrolling ---

// visibleCardsForColumn returns the number of cards that fit in the column,
// accounting for scroll indicator lines ("↑ N more" / "↓ N more") that
// consume vertical space.
func (b *Board) visibleCardsForColumn(col *column, width int) int {
	budget := b.height - b.chromeHeight()
	if budget < 1 {
		return 1
	}

	avail := budget - 1 // column header
	if col.scrollOff > 0 {
		avail--
	}

	n := b.fitCardsInHeight(col, avail, width)
	if col.scrollOff+n < len(col.tasks) {
		n = max(b.fitCardsInHeight(col, avail-1, width), 1)
	}
	return n
}

// ensureVisible adjusts the active column's scroll offset so the
// selected row is within the visible window.
func (b *Board) ensureVisible() {
	col := b.currentColumn()
	if col == nil {
		return
	}
	w := b.columnWidth()

	for range len(col.tasks) + 1 {
		maxVis := b.visibleCardsForColumn(col, w)

		switch {
		case b.activeRow >= col.scrollOff+maxVis:
			col.scrollOff = b.activeRow - maxVis + 1
		case b.activeRow < col.scrollOff:
			col.scrollOff = b.activeRow
		default:
			return
		}
	}
}

func (b *Board) fitCardsInHeight(col *column, avail, width int) int {
	if len(col.tasks) == 0 || avail < 1 {
		return 1
	}

	used, count := 0, 0
	for i := col.scrollOff; i < len(col.tasks); i++ {
		cardLines := b.cardHeight(col.tasks[i], width)
		if count > 0 && used+cardLines > avail {
			break
		}
		count++
		used += cardLines
		if used >= avail {
			break
		}
	}
	return max(count, 1)
}

// handleMouse handles mouse click events for card selection.
func (b *Board) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if msg.Action != tea.MouseActionPress || msg.Button != tea.MouseButtonLeft {
		return b, nil
	}
	if b.view != viewBoard || b.busy != "" {
		return b, nil
	}

	colWidth := b.columnWidth()
	clickedCol := msg.X / colWidth
	if clickedCol >= len(b.columns) {
		return b, nil
	}
	b.focus = focusTasks

	col := &b.columns[clickedCol]
	lineY := msg.Y - 2 //nolint:mnd // title line and column header
	clickedRow := -1
	cardLine := 0
	if lineY >= 0 {
		for rowIdx := col.scrollOff; rowIdx < len(col.tasks); rowIdx++ {
			cardH := b.cardHeight(col.tasks[rowIdx], colWidth)
			if lineY < cardLine+cardH {
				clickedRow = rowIdx
				break
			}
			cardLine += cardH
		}
	}

	b.activeCol = clickedCol
	if clickedRow >= 0 {
		b.activeRow = clickedRow
	}
	b.selectCurrent()
	return b, nil
}

// --- Text helpers ---

// wrapTitle splits a title across maxLines lines, word-wrapping at word
// boundaries. Each line is at most maxWidth characters.
func wrapTitle(title string, maxWidth, maxLines int) []string {
	if maxLines < 1 {
		maxLines = 1
	}
	if lipgloss.Width(title) <= maxWidth || maxLines == 1 {
		return []string{truncate(title, maxWidth)}
	}

	words := strings.Fields(title)
	lines := make([]string, 0, maxLines)
	var current strings.Builder

	for i, word := range words {
		if current.Len() == 0 {
			current.WriteString(word)
			continue
		}
		if lipgloss.Width(current.String())+1+lipgloss.Width(word) <= maxWidth {
			current.WriteByte(' ')
			current.WriteString(word)
		} else {
			lines = append(lines, truncate(current.String(), maxWidth))
			current.Reset()
			current.WriteString(word)
			if len(lines) == maxLines-1 {
				// Last line: append all remaining words.
				for _, w := range words[i+1:] {
					current.WriteByte(' ')
					current.WriteString(w)
				}
				break
			}
		}
	}
	if current.Len() > 0 {
		lines = append(lines, truncate(current.String(), maxWidth))
	}
	return lines
}

func truncate(s string, maxLen int) string {
	if maxLen < 4 { //nolint:mnd // minimum length for truncation
		maxLen = 4
	}
	if lipgloss.Width(s) <= maxLen {
		return s
	}
	// Slice by runes to avoid breaking multi-byte UTF-8 characters.
	runes := []rune(s)
	target := min(maxLen-3, len(runes)) //nolint:mnd // room for "..."
	for target > 0 && lipgloss.Width(string(runes[:target])) > maxLen-3 {
		target--
	}
	return string(runes[:target]) + "..."
}

func padRight(s string, width int) string {
	visible := lipgloss.Width(s)
	if visible >= width {
		return s
	}
	return s + strings.Repeat(" ", width-visible)
}
