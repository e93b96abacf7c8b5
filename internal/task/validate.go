package task

import (
	"github.com/twiced-technology-gmbh/prism/internal/clierr"
)

// ParseCategory validates a category name.
func ParseCategory(s string) (Category, error) {
	for _, c := range Categories() {
		if string(c) == s {
			return c, nil
		}
	}
	return "", clierr.Newf(clierr.InvalidCategory, "invalid category %q", s).
		WithDetails(map[string]any{
			"category": s,
			"allowed":  Categories(),
		})
}

// ErrTaskNotFound returns a CLIError for a reference that matches no task.
func ErrTaskNotFound(ref Ref) *clierr.Error {
	label := ref.Title
	if ref.ID != "" {
		label = ref.ID
	}
	return clierr.Newf(clierr.TaskNotFound, "task not found: %q", label).
		WithDetails(map[string]any{
			"id":          ref.ID,
			"title":       ref.Title,
			"description": ref.Description,
		})
}

// ErrStepNotFound returns a CLIError for a step missing from its task.
func ErrStepNotFound(t *Task, ref StepRef) *clierr.Error {
	return clierr.Newf(clierr.StepNotFound, "step %q not found in task %s", ref.Description, t.Label()).
		WithDetails(map[string]any{
			"task_id": t.ID,
			"step_id": ref.ID,
			"step":    ref.Description,
		})
}

// ErrIndexOutOfRange returns a CLIError for a position outside [0, length).
func ErrIndexOutOfRange(what string, index, length int) *clierr.Error {
	return clierr.Newf(clierr.IndexOutOfRange, "%s index %d out of range (0..%d)", what, index, length-1).
		WithDetails(map[string]any{
			"kind":   what,
			"index":  index,
			"length": length,
		})
}

// CheckIndex validates index against a sequence of the given length.
func CheckIndex(what string, index, length int) error {
	if index < 0 || index >= length {
		return ErrIndexOutOfRange(what, index, length)
	}
	return nil
}
