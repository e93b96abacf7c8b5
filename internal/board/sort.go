package board

import (
	"sort"
	"strings"

	"github.com/twiced-technology-gmbh/prism/internal/task"
)

// Sort fields accepted by Sort. "position" keeps document order.
const (
	SortPosition = "position"
	SortPriority = "priority"
	SortTitle    = "title"
	SortLogged   = "logged"
	SortSteps    = "steps"
)

// SortFields lists the accepted sort fields.
func SortFields() []string {
	return []string{SortPosition, SortPriority, SortTitle, SortLogged, SortSteps}
}

// Sort sorts tasks by the given field. The sort is stable, so ties keep
// document order.
func Sort(tasks []*task.Task, field string, reverse bool) {
	if field == "" || field == SortPosition {
		if reverse {
			for i, j := 0, len(tasks)-1; i < j; i, j = i+1, j-1 {
				tasks[i], tasks[j] = tasks[j], tasks[i]
			}
		}
		return
	}
	sort.SliceStable(tasks, func(i, j int) bool {
		if reverse {
			return compareTasks(tasks[j], tasks[i], field)
		}
		return compareTasks(tasks[i], tasks[j], field)
	})
}

func compareTasks(a, b *task.Task, field string) bool {
	switch field {
	case SortPriority:
		return a.Priority > b.Priority
	case SortTitle:
		return strings.ToLower(a.Title) < strings.ToLower(b.Title)
	case SortLogged:
		return a.TotalDuration() > b.TotalDuration()
	case SortSteps:
		return len(a.Steps) > len(b.Steps)
	default:
		return false
	}
}
