// Package output handles formatting CLI output as table, JSON, or compact.
package output

import (
	"os"

	"github.com/twiced-technology-gmbh/prism/internal/task"
)

// Format represents an output format.
type Format int

const (
	// FormatAuto uses the default format (table).
	FormatAuto Format = iota
	// FormatJSON outputs JSON.
	FormatJSON
	// FormatTable outputs a human-readable table.
	FormatTable
	// FormatCompact outputs one-line-per-record compact format.
	FormatCompact
)

// EnvVar overrides the default format when no flag is given.
const EnvVar = "PRISM_OUTPUT"

// Detect returns the appropriate format based on flags and environment.
// Default is table when no explicit format is set.
func Detect(jsonFlag, tableFlag, compactFlag bool) Format {
	if jsonFlag {
		return FormatJSON
	}
	if compactFlag {
		return FormatCompact
	}
	if tableFlag {
		return FormatTable
	}

	switch os.Getenv(EnvVar) {
	case "json":
		return FormatJSON
	case "compact", "oneline":
		return FormatCompact
	case "table":
		return FormatTable
	}

	return FormatTable
}

// Row is a task with its position inside its category, the index the
// category-scoped commands take.
type Row struct {
	Index int        `json:"index"`
	Task  *task.Task `json:"task"`
}

// Rows pairs each shown task with its index in its category of all.
func Rows(all, shown []*task.Task) []Row {
	pos := make(map[*task.Task]int, len(all))
	seen := map[task.Category]int{}
	for _, t := range all {
		pos[t] = seen[t.Category]
		seen[t.Category]++
	}
	rows := make([]Row, len(shown))
	for i, t := range shown {
		idx, ok := pos[t]
		if !ok {
			idx = -1
		}
		rows[i] = Row{Index: idx, Task: t}
	}
	return rows
}
