package board

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/twiced-technology-gmbh/prism/internal/activity"
	"github.com/twiced-technology-gmbh/prism/internal/assistant"
	"github.com/twiced-technology-gmbh/prism/internal/clierr"
	"github.com/twiced-technology-gmbh/prism/internal/task"
)

// Board applies mutations to one project's task store. Operations that
// need the assistant call it outside the store lock and then re-locate
// their target in a fresh read before writing.
type Board struct {
	store     *task.Store
	activity  *activity.Log
	assistant assistant.Completer
	logger    *slog.Logger
	now       func() time.Time
}

// Options carries the optional collaborators of a Board.
type Options struct {
	Logger *slog.Logger
	Now    func() time.Time
}

// New returns a board over store that logs time to log and asks a for
// decompositions.
func New(store *task.Store, log *activity.Log, a assistant.Completer, opts Options) *Board {
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Board{
		store:     store,
		activity:  log,
		assistant: a,
		logger:    opts.Logger,
		now:       opts.Now,
	}
}

// Store returns the task store the board writes to.
func (b *Board) Store() *task.Store { return b.store }

// Activity returns the activity log the board appends to.
func (b *Board) Activity() *activity.Log { return b.activity }

// Project returns the short project label of the board's store.
func (b *Board) Project() string { return activity.ProjectLabel(b.store.Path) }

// Tasks loads the whole document leniently.
func (b *Board) Tasks() ([]*task.Task, error) {
	return b.store.Load()
}

// Category loads the tasks of one category in document order.
func (b *Board) Category(c task.Category) ([]*task.Task, error) {
	tasks, err := b.store.Load()
	if err != nil {
		return nil, err
	}
	return task.FilterCategory(tasks, c), nil
}

// DevTasks returns the development tasks of tasks in document order.
func DevTasks(tasks []*task.Task) []*task.Task {
	return task.FilterCategory(tasks, task.Dev)
}

// ask sends one request and insists on a JSON object in the reply.
func (b *Board) ask(ctx context.Context, rule string, payload any) (assistant.Response, error) {
	raw, err := b.assistant.Complete(ctx, rule, assistant.Payload(payload))
	r := assistant.Classify(raw, err)
	switch r.Kind {
	case assistant.Structured:
		return r, nil
	case assistant.Unstructured:
		return r, clierr.New(clierr.DecompositionFormat, "assistant reply contains no JSON object").
			WithDetails(map[string]any{"reply": raw})
	}
	if r.Err == nil {
		return r, clierr.New(clierr.DecompositionFormat, "assistant returned an empty reply")
	}
	var ce *clierr.Error
	if errors.As(r.Err, &ce) {
		return r, r.Err
	}
	return r, clierr.Wrap(clierr.AssistantUnavailable, r.Err, "assistant request failed")
}

func missingField(field string, r assistant.Response) *clierr.Error {
	return clierr.Newf(clierr.DecompositionFormat, "assistant reply is missing %q", field).
		WithDetails(map[string]any{"field": field, "reply": r.Raw})
}

// fail logs a failed operation and returns err unchanged.
func (b *Board) fail(op string, err error) error {
	b.logger.Warn(op+" failed", "code", clierr.CodeOf(err), "error", err)
	return err
}

// CategorySummary holds metrics for one category column.
type CategorySummary struct {
	Category      task.Category `json:"category"`
	Count         int           `json:"count"`
	Steps         int           `json:"steps"`
	LoggedSeconds int           `json:"logged_seconds"`
}

// Overview is the aggregate board overview.
type Overview struct {
	Project       string            `json:"project"`
	TotalTasks    int               `json:"total_tasks"`
	TotalSteps    int               `json:"total_steps"`
	LoggedSeconds int               `json:"logged_seconds"`
	Categories    []CategorySummary `json:"categories"`
}

// Summary computes per-category counts for tasks.
func Summary(project string, tasks []*task.Task) Overview {
	cats := task.Categories()
	byCat := make(map[task.Category]*CategorySummary, len(cats))
	for _, c := range cats {
		byCat[c] = &CategorySummary{Category: c}
	}

	ov := Overview{Project: project, TotalTasks: len(tasks)}
	for _, t := range tasks {
		logged := t.TotalDuration()
		ov.TotalSteps += len(t.Steps)
		ov.LoggedSeconds += logged
		if cs, ok := byCat[t.Category]; ok {
			cs.Count++
			cs.Steps += len(t.Steps)
			cs.LoggedSeconds += logged
		}
	}

	ov.Categories = make([]CategorySummary, 0, len(cats))
	for _, c := range cats {
		ov.Categories = append(ov.Categories, *byCat[c])
	}
	return ov
}
