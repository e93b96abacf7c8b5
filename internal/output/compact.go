package output

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/twiced-technology-gmbh/prism/internal/activity"
	"github.com/twiced-technology-gmbh/prism/internal/board"
	"github.com/twiced-technology-gmbh/prism/internal/chart"
	"github.com/twiced-technology-gmbh/prism/internal/duration"
)

// TaskCompact renders tasks in one-line-per-record compact format.
func TaskCompact(w io.Writer, rows []Row) {
	if len(rows) == 0 {
		fmt.Fprintln(os.Stderr, "No tasks found.")
		return
	}

	for _, r := range rows {
		fmt.Fprintln(w, formatTaskLine(r))
	}
}

// TaskDetailCompact renders a single task with its steps in compact format.
func TaskDetailCompact(w io.Writer, r Row) {
	t := r.Task
	line := formatTaskLine(r)
	if t.ExpectedTime != "" {
		line += " est:" + string(t.ExpectedTime)
	}
	fmt.Fprintln(w, line)

	if t.Description != "" {
		for _, descLine := range strings.Split(t.Description, "\n") {
			fmt.Fprintln(w, "  "+descLine)
		}
	}
	for i, s := range t.Steps {
		fmt.Fprintf(w, "  %d. %s [%s]\n", i, s.Description, duration.FormatSeconds(s.Duration))
	}
}

// OverviewCompact renders a board summary in compact format.
func OverviewCompact(w io.Writer, s board.Overview) {
	fmt.Fprintf(w, "%s (%d tasks, %s logged)\n", s.Project, s.TotalTasks, duration.FormatSeconds(s.LoggedSeconds))

	for _, cs := range s.Categories {
		line := "  " + string(cs.Category) + ": " + strconv.Itoa(cs.Count)
		if cs.Steps > 0 {
			line += " (" + strconv.Itoa(cs.Steps) + " steps)"
		}
		fmt.Fprintln(w, line)
	}
}

// NodeCompact renders chart nodes one per line.
func NodeCompact(w io.Writer, nodes []chart.Node) {
	if len(nodes) == 0 {
		fmt.Fprintln(os.Stderr, "No activity in range.")
		return
	}
	for _, n := range nodes {
		fmt.Fprintf(w, "%s %s x:%d y:%d\n", n.Label, duration.Format(n.Duration()), n.X, n.Y)
	}
}

// ActivityCompact renders activity entries one per line.
func ActivityCompact(w io.Writer, entries []activity.Entry) {
	if len(entries) == 0 {
		fmt.Fprintln(os.Stderr, "No activity logged.")
		return
	}
	for _, e := range entries {
		fmt.Fprintf(w, "%s %s %s/%s +%s\n", e.Timestamp, e.Project, e.Title, e.Description, e.Duration)
	}
}

// formatTaskLine builds the one-line representation of a task.
func formatTaskLine(r Row) string {
	t := r.Task
	line := string(t.Category) + "#" + strconv.Itoa(r.Index) +
		" [p" + strconv.Itoa(t.Priority) + "] " + t.Title

	if n := len(t.Steps); n > 0 {
		line += " (" + strconv.Itoa(n) + " steps)"
	}
	if logged := t.TotalDuration(); logged > 0 {
		line += " logged:" + duration.FormatSeconds(logged)
	}
	return line
}
