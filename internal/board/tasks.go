package board

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/twiced-technology-gmbh/prism/internal/assistant"
	"github.com/twiced-technology-gmbh/prism/internal/clierr"
	"github.com/twiced-technology-gmbh/prism/internal/task"
)

// CreateOptions controls where a new task lands.
type CreateOptions struct {
	// Index inserts the task at this document position when it is within
	// [0, len]; nil or out of range appends.
	Index *int
}

var estimateKeys = []string{"EstimatedTotalTime", "Estimated Total Time", "estimatedTotalTime"}

// CreateTask asks the assistant to decompose text into a task and stores
// it in the idea category.
func (b *Board) CreateTask(ctx context.Context, text string, opts CreateOptions) (*task.Task, error) {
	const op = "create task"

	r, err := b.ask(ctx, assistant.CreateRule, text)
	if err != nil {
		return nil, b.fail(op, err)
	}

	title, ok := r.String("Title")
	if !ok {
		return nil, b.fail(op, missingField("Title", r))
	}
	desc, ok := r.String("Description")
	if !ok {
		return nil, b.fail(op, missingField("Description", r))
	}
	steps, ok := assistant.Strings(r.Field("Steps"), "Description", "description")
	if !ok {
		return nil, b.fail(op, missingField("Steps", r))
	}
	est, _ := r.String(estimateKeys...)

	t := &task.Task{
		ID:           task.NewID(),
		Title:        title,
		Description:  desc,
		Priority:     task.DefaultPriority,
		ExpectedTime: task.Estimate(est),
		Category:     task.Idea,
		Steps:        task.NewSteps(steps),
	}

	err = b.store.UpdateLenient(func(tasks []*task.Task) ([]*task.Task, error) {
		if opts.Index != nil && *opts.Index >= 0 && *opts.Index <= len(tasks) {
			i := *opts.Index
			tasks = append(tasks, nil)
			copy(tasks[i+1:], tasks[i:])
			tasks[i] = t
			return tasks, nil
		}
		return append(tasks, t), nil
	})
	if err != nil {
		return nil, b.fail(op, err)
	}

	b.logger.Info("task created", "id", t.ID, "title", t.Title, "steps", len(t.Steps))
	return t, nil
}

// MoveTask swaps positions from and to of the caller's view of category
// and persists that view as the category's new order. Other categories
// keep their on-disk order; the category's tasks move after them.
func (b *Board) MoveTask(ctx context.Context, tasks []*task.Task, from, to int, category task.Category) error {
	const op = "move task"
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := task.CheckIndex("task", from, len(tasks)); err != nil {
		return b.fail(op, err)
	}
	if err := task.CheckIndex("task", to, len(tasks)); err != nil {
		return b.fail(op, err)
	}

	tasks[from], tasks[to] = tasks[to], tasks[from]

	err := b.store.Update(func(all []*task.Task) ([]*task.Task, error) {
		out := make([]*task.Task, 0, len(all)+len(tasks))
		for _, t := range all {
			if t.Category != category {
				out = append(out, t)
			}
		}
		return append(out, tasks...), nil
	})
	if err != nil {
		return b.fail(op, err)
	}

	b.logger.Info("task moved", "category", category, "from", from, "to", to)
	return nil
}

// MoveTaskCategory moves the task at index within from into to. The moved
// task ends up last in the document.
func (b *Board) MoveTaskCategory(ctx context.Context, from task.Category, index int, to task.Category) (*task.Task, error) {
	const op = "move task category"
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var moved *task.Task
	err := b.store.Update(func(all []*task.Task) ([]*task.Task, error) {
		var others, source []*task.Task
		for _, t := range all {
			if t.Category == from {
				source = append(source, t)
			} else {
				others = append(others, t)
			}
		}
		if err := task.CheckIndex(string(from)+" task", index, len(source)); err != nil {
			return nil, err
		}

		moved = source[index]
		source = append(source[:index:index], source[index+1:]...)
		moved.Category = to

		out := make([]*task.Task, 0, len(all))
		out = append(out, others...)
		out = append(out, source...)
		return append(out, moved), nil
	})
	if err != nil {
		return nil, b.fail(op, err)
	}

	b.logger.Info("task recategorized", "id", moved.ID, "from", from, "to", to)
	return moved, nil
}

// AddContext asks the assistant to revise the dev task at devIndex in light
// of text and replaces the task with the revision. The task keeps its id,
// priority and elapsed time and stays in dev. Omitted fields keep their old
// values; a revised step list starts with zero durations.
func (b *Board) AddContext(ctx context.Context, text string, devIndex int) (*task.Task, error) {
	const op = "add context"

	all, err := b.store.LoadStrict()
	if err != nil {
		return nil, b.fail(op, err)
	}
	dev := DevTasks(all)
	if err := task.CheckIndex("dev task", devIndex, len(dev)); err != nil {
		return nil, b.fail(op, err)
	}
	old := dev[devIndex]

	current, err := json.Marshal(old)
	if err != nil {
		return nil, b.fail(op, err)
	}
	prompt := "Task Input: " + string(current) + "\nContext Input: " + text

	r, err := b.ask(ctx, assistant.ContextRule, prompt)
	if err != nil {
		return nil, b.fail(op, err)
	}

	var updated *task.Task
	err = b.store.Update(func(all []*task.Task) ([]*task.Task, error) {
		i := task.Find(all, task.RefOf(old))
		if i < 0 {
			return nil, task.ErrTaskNotFound(task.RefOf(old))
		}
		prev := all[i]
		next := prev.Clone()
		next.Category = task.Dev
		if v, ok := r.String("title", "Title"); ok {
			next.Title = v
		}
		if v, ok := r.String("description", "Description"); ok {
			next.Description = v
		}
		if v, ok := r.String(estimateKeys...); ok {
			next.ExpectedTime = task.Estimate(v)
		}
		if list := r.Field("steps", "Steps"); list.Exists() {
			steps, ok := assistant.Strings(list, "description", "Description")
			if !ok {
				return nil, missingField("steps", r)
			}
			next.Steps = task.NewSteps(steps)
		}
		all[i] = next
		updated = next
		return all, nil
	})
	if err != nil {
		return nil, b.fail(op, err)
	}

	b.logger.Info("task context added", "id", updated.ID, "steps", len(updated.Steps))
	return updated, nil
}

// TaskEdit names the fields EditTask replaces; nil fields are left alone.
type TaskEdit struct {
	Title        *string
	Description  *string
	Priority     *int
	ExpectedTime *string
}

func (e TaskEdit) empty() bool {
	return e.Title == nil && e.Description == nil && e.Priority == nil && e.ExpectedTime == nil
}

// EditTask overwrites the given fields of the task matching ref.
func (b *Board) EditTask(ctx context.Context, ref task.Ref, edit TaskEdit) (*task.Task, error) {
	const op = "edit task"
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if edit.empty() {
		return nil, clierr.New(clierr.NoChanges, "no changes specified")
	}
	if edit.Title != nil && strings.TrimSpace(*edit.Title) == "" {
		return nil, clierr.New(clierr.InvalidInput, "title must not be empty")
	}

	var edited *task.Task
	err := b.store.Update(func(all []*task.Task) ([]*task.Task, error) {
		i := task.Find(all, ref)
		if i < 0 {
			return nil, task.ErrTaskNotFound(ref)
		}
		t := all[i]
		if edit.Title != nil {
			t.Title = strings.TrimSpace(*edit.Title)
		}
		if edit.Description != nil {
			t.Description = *edit.Description
		}
		if edit.Priority != nil {
			t.Priority = *edit.Priority
		}
		if edit.ExpectedTime != nil {
			t.ExpectedTime = task.Estimate(*edit.ExpectedTime)
		}
		edited = t
		return all, nil
	})
	if err != nil {
		return nil, b.fail(op, err)
	}

	b.logger.Info("task edited", "id", edited.ID, "title", edited.Title)
	return edited, nil
}
