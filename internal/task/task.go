// Package task holds the task document model and its JSON store.
package task

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Category partitions tasks for display and for category-scoped moves.
type Category string

// Known categories, in display order.
const (
	Idea Category = "idea"
	Dev  Category = "dev"
	Rlty Category = "rlty"
)

// Categories returns the known categories in display order.
func Categories() []Category {
	return []Category{Idea, Dev, Rlty}
}

// DefaultPriority is assigned to tasks created by the assistant.
const DefaultPriority = 5

// Task is one item of work. Title and description together form the
// content identity used when no ID is supplied.
type Task struct {
	ID           string   `json:"id,omitempty"`
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	Priority     int      `json:"priority"`
	ExpectedTime Estimate `json:"expectedTime"`
	ElapsedTime  int      `json:"elapsedTime"`
	Category     Category `json:"category"`
	Steps        []*Step  `json:"steps"`
}

// Step is one unit of a task's breakdown. Duration is cumulative seconds.
type Step struct {
	ID          string `json:"id,omitempty"`
	Description string `json:"description"`
	Duration    int    `json:"duration"`
}

// Estimate is the free-form expected time of a task ("1h", "2 days").
// Older documents sometimes hold a bare number, which is kept as text.
type Estimate string

// UnmarshalJSON accepts a string, a number or null.
func (e *Estimate) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*e = Estimate(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err == nil {
		*e = Estimate(n.String())
		return nil
	}
	if string(data) == "null" {
		*e = ""
		return nil
	}
	return fmt.Errorf("expectedTime: unsupported value %s", data)
}

// UnmarshalJSON reads priority and elapsedTime through flexInt.
func (t *Task) UnmarshalJSON(data []byte) error {
	type plain Task
	aux := struct {
		*plain
		Priority    *flexInt `json:"priority"`
		ElapsedTime *flexInt `json:"elapsedTime"`
	}{plain: (*plain)(t)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if aux.Priority != nil {
		t.Priority = int(*aux.Priority)
	}
	if aux.ElapsedTime != nil {
		t.ElapsedTime = int(*aux.ElapsedTime)
	}
	return nil
}

// UnmarshalJSON reads duration through flexInt.
func (s *Step) UnmarshalJSON(data []byte) error {
	type plain Step
	aux := struct {
		*plain
		Duration *flexInt `json:"duration"`
	}{plain: (*plain)(s)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if aux.Duration != nil {
		s.Duration = int(*aux.Duration)
	}
	return nil
}

// flexInt is an integer field that other writers of the document store as
// a fractional number or a numeric string. Fractions round to the nearest
// integer; null is zero.
type flexInt int

func (n *flexInt) UnmarshalJSON(data []byte) error {
	text := strings.TrimSpace(string(data))
	if text == "null" {
		*n = 0
		return nil
	}
	if unquoted, err := strconv.Unquote(text); err == nil {
		text = strings.TrimSpace(unquoted)
	}
	f, err := strconv.ParseFloat(text, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return fmt.Errorf("expected a number, got %s", data)
	}
	*n = flexInt(math.Round(f))
	return nil
}

// NewStep returns a fresh step with zero duration.
func NewStep(description string) *Step {
	return &Step{ID: NewID(), Description: description}
}

// NewSteps returns fresh steps for each description, in order.
func NewSteps(descriptions []string) []*Step {
	steps := make([]*Step, len(descriptions))
	for i, d := range descriptions {
		steps[i] = NewStep(d)
	}
	return steps
}

// TotalDuration returns the sum of all step durations in seconds.
func (t *Task) TotalDuration() int {
	total := 0
	for _, s := range t.Steps {
		total += s.Duration
	}
	return total
}

// Clone returns a deep copy of the task.
func (t *Task) Clone() *Task {
	c := *t
	c.Steps = make([]*Step, len(t.Steps))
	for i, s := range t.Steps {
		sc := *s
		c.Steps[i] = &sc
	}
	return &c
}

// Label returns a short human reference used in messages.
func (t *Task) Label() string {
	if t.Title == "" {
		return strconv.Quote(t.Description)
	}
	return strconv.Quote(t.Title)
}
