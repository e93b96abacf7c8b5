package task

// Ref identifies a task either by id or by its title/description pair.
// A non-empty ID takes precedence.
type Ref struct {
	ID          string `json:"id,omitempty"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

// RefOf returns a reference carrying every identifying field of t.
func RefOf(t *Task) Ref {
	return Ref{ID: t.ID, Title: t.Title, Description: t.Description}
}

// Matches reports whether t is the task r refers to.
func (r Ref) Matches(t *Task) bool {
	if r.ID != "" {
		return t.ID == r.ID
	}
	return t.Title == r.Title && t.Description == r.Description
}

// StepRef identifies a step by id or by description.
type StepRef struct {
	ID          string `json:"id,omitempty"`
	Description string `json:"description"`
}

// StepRefOf returns a reference carrying every identifying field of s.
func StepRefOf(s *Step) StepRef {
	return StepRef{ID: s.ID, Description: s.Description}
}

// Matches reports whether s is the step r refers to.
func (r StepRef) Matches(s *Step) bool {
	if r.ID != "" {
		return s.ID == r.ID
	}
	return s.Description == r.Description
}

// Find returns the index of the first task matching ref, or -1.
func Find(tasks []*Task, ref Ref) int {
	for i, t := range tasks {
		if ref.Matches(t) {
			return i
		}
	}
	return -1
}

// FindByID returns the task with the given id, or nil.
func FindByID(tasks []*Task, id string) *Task {
	if i := Find(tasks, Ref{ID: id}); i >= 0 && id != "" {
		return tasks[i]
	}
	return nil
}

// FilterCategory returns the tasks of one category in document order.
func FilterCategory(tasks []*Task, c Category) []*Task {
	out := make([]*Task, 0, len(tasks))
	for _, t := range tasks {
		if t.Category == c {
			out = append(out, t)
		}
	}
	return out
}

// CategoryIndices returns the document positions of c's tasks, in order.
func CategoryIndices(tasks []*Task, c Category) []int {
	var out []int
	for i, t := range tasks {
		if t.Category == c {
			out = append(out, i)
		}
	}
	return out
}

// StepIndex returns the index of the first step matching ref, or -1.
func (t *Task) StepIndex(ref StepRef) int {
	for i, s := range t.Steps {
		if ref.Matches(s) {
			return i
		}
	}
	return -1
}

// StepIndices returns the indices of all steps matching any ref, ascending.
func (t *Task) StepIndices(refs []StepRef) []int {
	var out []int
	for i, s := range t.Steps {
		for _, r := range refs {
			if r.Matches(s) {
				out = append(out, i)
				break
			}
		}
	}
	return out
}
