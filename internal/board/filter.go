// Package board applies the task mutations of one project: moves, step
// edits through the assistant, and time logging.
package board

import (
	"strings"

	"github.com/twiced-technology-gmbh/prism/internal/task"
)

// FilterOptions defines which tasks to include.
type FilterOptions struct {
	Categories  []task.Category
	Search      string // case-insensitive substring match across title, description, and steps
	MinPriority int
	Unstarted   *bool // nil=no filter, true=only tasks with no logged time
}

// Filter returns tasks matching all specified criteria (AND logic).
func Filter(tasks []*task.Task, opts FilterOptions) []*task.Task {
	result := make([]*task.Task, 0, len(tasks))
	for _, t := range tasks {
		if matchesFilter(t, opts) {
			result = append(result, t)
		}
	}
	return result
}

func matchesFilter(t *task.Task, opts FilterOptions) bool {
	if len(opts.Categories) > 0 && !containsCategory(opts.Categories, t.Category) {
		return false
	}
	if opts.MinPriority > 0 && t.Priority < opts.MinPriority {
		return false
	}
	if opts.Unstarted != nil && (t.TotalDuration() == 0) != *opts.Unstarted {
		return false
	}
	if opts.Search != "" && !matchesSearch(t, opts.Search) {
		return false
	}
	return true
}

// matchesSearch performs case-insensitive substring matching across title,
// description, and step descriptions.
func matchesSearch(t *task.Task, query string) bool {
	q := strings.ToLower(query)
	if strings.Contains(strings.ToLower(t.Title), q) {
		return true
	}
	if strings.Contains(strings.ToLower(t.Description), q) {
		return true
	}
	for _, s := range t.Steps {
		if strings.Contains(strings.ToLower(s.Description), q) {
			return true
		}
	}
	return false
}

func containsCategory(cats []task.Category, c task.Category) bool {
	for _, x := range cats {
		if x == c {
			return true
		}
	}
	return false
}
