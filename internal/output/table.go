package output

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/twiced-technology-gmbh/prism/internal/activity"
	"github.com/twiced-technology-gmbh/prism/internal/board"
	"github.com/twiced-technology-gmbh/prism/internal/chart"
	"github.com/twiced-technology-gmbh/prism/internal/duration"
	"github.com/twiced-technology-gmbh/prism/internal/task"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("244"))
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	boldStyle   = lipgloss.NewStyle().Bold(true)

	// Category colors aligned with TUI column-header palette.
	categoryStyles = map[string]lipgloss.Style{
		string(task.Idea): lipgloss.NewStyle().Foreground(lipgloss.Color("62")),
		string(task.Dev):  lipgloss.NewStyle().Foreground(lipgloss.Color("33")),
		string(task.Rlty): lipgloss.NewStyle().Foreground(lipgloss.Color("34")),
	}

	loggedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("44"))
	activeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("44")).Bold(true)
	barStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("33"))

	colorEnabled = true
)

// DisableColor strips all styling from table output and markdown.
func DisableColor() {
	colorEnabled = false
	lipgloss.SetColorProfile(termenv.Ascii)
	headerStyle = lipgloss.NewStyle()
	dimStyle = lipgloss.NewStyle()
	boldStyle = lipgloss.NewStyle()
	categoryStyles = map[string]lipgloss.Style{}
	loggedStyle = lipgloss.NewStyle()
	activeStyle = lipgloss.NewStyle()
	barStyle = lipgloss.NewStyle()
	markdownStyle = plainMarkdownStyle
}

// PriorityStyle returns the style for a numeric priority.
func PriorityStyle(p int) lipgloss.Style {
	if !colorEnabled {
		return lipgloss.NewStyle()
	}
	switch {
	case p >= 9: //nolint:mnd // priority bands
		return lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	case p >= 7: //nolint:mnd // priority bands
		return lipgloss.NewStyle().Foreground(lipgloss.Color("208"))
	case p >= 4: //nolint:mnd // priority bands
		return lipgloss.NewStyle().Foreground(lipgloss.Color("226"))
	default:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("242"))
	}
}

// CategoryStyle returns the style for a category name.
func CategoryStyle(c task.Category) lipgloss.Style {
	if st, ok := categoryStyles[string(c)]; ok {
		return st
	}
	return lipgloss.NewStyle()
}

// TaskTable renders tasks as a formatted table. Index is the task's position
// within its category.
func TaskTable(w io.Writer, rows []Row) {
	if len(rows) == 0 {
		fmt.Fprintln(os.Stderr, "No tasks found.")
		return
	}

	const pad = 2
	idxW, catW, prioW, titleW, stepsW, loggedW := 3, 10, 5, 5, 7, 9
	for _, r := range rows {
		idxW = max(idxW, len(strconv.Itoa(r.Index))+pad)
		titleW = max(titleW, min(len(r.Task.Title)+pad, 50)) //nolint:mnd // max title column width
	}

	header := fmt.Sprintf("%-*s %-*s %-*s %-*s %-*s %-*s %s",
		idxW, "#", catW, "CATEGORY", prioW, "PRI",
		titleW, "TITLE", stepsW, "STEPS", loggedW, "LOGGED", "ESTIMATE")
	fmt.Fprintln(w, headerStyle.Render(strings.TrimRight(header, " ")))

	for _, r := range rows {
		t := r.Task
		title := t.Title
		const maxTitle = 48
		if len(title) > maxTitle {
			title = title[:maxTitle-3] + "..."
		}
		est := string(t.ExpectedTime)
		if est == "" {
			est = dimStyle.Render("--")
		}

		row := fmt.Sprintf("%-*d %s %s %s %-*d %s %s",
			idxW, r.Index,
			padRight(CategoryStyle(t.Category).Render(string(t.Category)), catW),
			padRight(PriorityStyle(t.Priority).Render(strconv.Itoa(t.Priority)), prioW),
			padRight(title, titleW),
			stepsW, len(t.Steps),
			padRight(loggedDisplay(t.TotalDuration()), loggedW),
			est)
		fmt.Fprintln(w, strings.TrimRight(row, " "))
	}
}

// TaskDetail renders a single task with full detail. The description and
// steps are rendered as markdown.
func TaskDetail(w io.Writer, r Row) {
	t := r.Task
	titleLine := fmt.Sprintf("%s #%d: %s", t.Category, r.Index, t.Title)
	fmt.Fprintln(w, boldStyle.Render(titleLine))
	fmt.Fprintln(w, strings.Repeat("─", lipgloss.Width(titleLine)))

	printField(w, "ID", stringOrDash(t.ID))
	printField(w, "Category", CategoryStyle(t.Category).Render(string(t.Category)))
	printField(w, "Priority", PriorityStyle(t.Priority).Render(strconv.Itoa(t.Priority)))
	printField(w, "Estimate", stringOrDash(string(t.ExpectedTime)))
	printField(w, "Logged", loggedDisplay(t.TotalDuration()))
	if t.ElapsedTime > 0 {
		printField(w, "Elapsed", duration.FormatSeconds(t.ElapsedTime))
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, Markdown(TaskMarkdown(t), markdownWidth))
}

// TaskMarkdown renders a task's description and steps as markdown.
func TaskMarkdown(t *task.Task) string {
	var b strings.Builder
	if t.Description != "" {
		b.WriteString(t.Description)
		b.WriteString("\n\n")
	}
	if len(t.Steps) > 0 {
		b.WriteString("## Steps\n\n")
		for i, s := range t.Steps {
			fmt.Fprintf(&b, "%d. %s", i+1, s.Description)
			if s.Duration > 0 {
				fmt.Fprintf(&b, " `%s`", duration.FormatSeconds(s.Duration))
			}
			b.WriteString("\n")
		}
	}
	return b.String()
}

// StepTable renders the steps of one task.
func StepTable(w io.Writer, steps []*task.Step) {
	if len(steps) == 0 {
		fmt.Fprintln(os.Stderr, "No steps found.")
		return
	}
	header := fmt.Sprintf("%-4s %-10s %s", "#", "LOGGED", "DESCRIPTION")
	fmt.Fprintln(w, headerStyle.Render(header))
	for i, s := range steps {
		const loggedW = 10
		fmt.Fprintf(w, "%-4d %s %s\n", i, padRight(loggedDisplay(s.Duration), loggedW), s.Description)
	}
}

// OverviewTable renders a board summary as a formatted dashboard.
func OverviewTable(w io.Writer, s board.Overview) {
	fmt.Fprintln(w, boldStyle.Render(s.Project))
	fmt.Fprintf(w, "Total: %d tasks, %d steps, %s logged\n\n",
		s.TotalTasks, s.TotalSteps, duration.FormatSeconds(s.LoggedSeconds))

	header := fmt.Sprintf("%-16s %6s %6s %10s", "CATEGORY", "COUNT", "STEPS", "LOGGED")
	fmt.Fprintln(w, headerStyle.Render(header))

	for _, cs := range s.Categories {
		const catColW = 16
		fmt.Fprintf(w, "%s %6d %6d %10s\n",
			padRight(CategoryStyle(cs.Category).Render(string(cs.Category)), catColW),
			cs.Count, cs.Steps, duration.FormatSeconds(cs.LoggedSeconds))
	}
}

// NodeTable renders chart nodes with a bar proportional to each bucket's
// minutes.
func NodeTable(w io.Writer, nodes []chart.Node) {
	if len(nodes) == 0 {
		fmt.Fprintln(os.Stderr, "No activity in range.")
		return
	}

	maxMinutes := 0.0
	for _, n := range nodes {
		maxMinutes = max(maxMinutes, n.Minutes)
	}

	header := fmt.Sprintf("%-8s %-6s %10s %5s %5s  %s", "BUCKET", "DAYS", "LOGGED", "X", "Y", "")
	fmt.Fprintln(w, headerStyle.Render(strings.TrimRight(header, " ")))
	for _, n := range nodes {
		const barW = 30
		bar := ""
		if maxMinutes > 0 {
			bar = strings.Repeat("█", int(n.Minutes/maxMinutes*barW))
		}
		row := fmt.Sprintf("%-8s %-6d %10s %5d %5d  %s",
			n.Label, n.BucketSize, duration.Format(n.Duration()), n.X, n.Y, barStyle.Render(bar))
		fmt.Fprintln(w, strings.TrimRight(row, " "))
	}
	fmt.Fprintf(w, "\n%s %d\n", dimStyle.Render("scaled max y:"), chart.ScaledMaxY(nodes))
}

// TotalsTable renders per-project logged time.
func TotalsTable(w io.Writer, totals []chart.ProjectTotal) {
	if len(totals) == 0 {
		fmt.Fprintln(os.Stderr, "No activity logged.")
		return
	}
	fmt.Fprintln(w, headerStyle.Render(fmt.Sprintf("%-20s %10s", "PROJECT", "LOGGED")))
	for _, t := range totals {
		fmt.Fprintf(w, "%-20s %10s\n", t.Project, duration.FormatSeconds(t.Seconds))
	}
}

// ActivityTable renders activity log entries, oldest first.
func ActivityTable(w io.Writer, entries []activity.Entry) {
	if len(entries) == 0 {
		fmt.Fprintln(os.Stderr, "No activity logged.")
		return
	}

	const pad = 2
	projW, titleW := 8, 6
	for _, e := range entries {
		projW = max(projW, len(e.Project)+pad)
		titleW = max(titleW, min(len(e.Title)+pad, 32)) //nolint:mnd // max title column width
	}

	header := fmt.Sprintf("%-19s %-*s %-*s %9s  %s", "TIMESTAMP", projW, "PROJECT", titleW, "TASK", "LOGGED", "STEP")
	fmt.Fprintln(w, headerStyle.Render(header))
	for _, e := range entries {
		title := e.Title
		if len(title) > titleW-pad {
			title = title[:titleW-pad-3] + "..."
		}
		fmt.Fprintf(w, "%-19s %-*s %-*s %s  %s\n",
			e.Timestamp, projW, e.Project, titleW, title,
			padLeft(loggedStyle.Render(e.Duration), 9), e.Description) //nolint:mnd // logged column width
	}
}

// Project is one row of the projects listing.
type Project struct {
	Index      int    `json:"index"`
	Name       string `json:"name"`
	File       string `json:"file"`
	TitleImage string `json:"title_image,omitempty"`
	Active     bool   `json:"active"`
	Tasks      int    `json:"tasks"`
}

// ProjectTable renders the configured projects.
func ProjectTable(w io.Writer, projects []Project) {
	header := fmt.Sprintf("%-3s %-3s %-16s %6s  %s", "", "#", "NAME", "TASKS", "FILE")
	fmt.Fprintln(w, headerStyle.Render(header))
	for _, p := range projects {
		marker := "  "
		name := p.Name
		if p.Active {
			marker = activeStyle.Render("*")
			name = activeStyle.Render(name)
		}
		const nameW = 16
		fmt.Fprintf(w, "%-3s %-3d %s %6d  %s\n", padRight(marker, 3), p.Index, padRight(name, nameW), p.Tasks, p.File) //nolint:mnd // marker column
	}
}

// Messagef prints a simple formatted message line.
func Messagef(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, format+"\n", args...)
}

func printField(w io.Writer, label, value string) {
	fmt.Fprintf(w, "  %-12s %s\n", label+":", value)
}

func loggedDisplay(seconds int) string {
	if seconds == 0 {
		return dimStyle.Render("--")
	}
	return loggedStyle.Render(duration.FormatSeconds(seconds))
}

// padRight pads s with spaces to the given visible width, accounting for ANSI
// escape codes that are invisible but consume bytes.
func padRight(s string, width int) string {
	visible := lipgloss.Width(s)
	if visible >= width {
		return s
	}
	return s + strings.Repeat(" ", width-visible)
}

func padLeft(s string, width int) string {
	visible := lipgloss.Width(s)
	if visible >= width {
		return s
	}
	return strings.Repeat(" ", width-visible) + s
}

func stringOrDash(s string) string {
	if s == "" {
		return dimStyle.Render("--")
	}
	return s
}
