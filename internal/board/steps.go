package board

import (
	"context"

	"github.com/twiced-technology-gmbh/prism/internal/activity"
	"github.com/twiced-technology-gmbh/prism/internal/assistant"
	"github.com/twiced-technology-gmbh/prism/internal/clierr"
	"github.com/twiced-technology-gmbh/prism/internal/task"
)

// MoveStep reorders steps, the step list of devTasks[selected], by taking
// the step at from out and inserting it at to. steps is reordered in place
// and then written to the first dev task on disk with the same identity.
func (b *Board) MoveStep(ctx context.Context, steps []*task.Step, devTasks []*task.Task, selected, from, to int) error {
	const op = "move step"
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := task.CheckIndex("step", from, len(steps)); err != nil {
		return b.fail(op, err)
	}
	if err := task.CheckIndex("step", to, len(steps)); err != nil {
		return b.fail(op, err)
	}

	moved := steps[from]
	if from < to {
		copy(steps[from:to], steps[from+1:to+1])
	} else {
		copy(steps[to+1:from+1], steps[to:from])
	}
	steps[to] = moved

	if err := task.CheckIndex("dev task", selected, len(devTasks)); err != nil {
		return b.fail(op, err)
	}
	sel := devTasks[selected]

	err := b.store.Update(func(all []*task.Task) ([]*task.Task, error) {
		for _, t := range all {
			if t.Category != task.Dev {
				continue
			}
			if (sel.ID != "" && t.ID == sel.ID) || (sel.ID == "" && t.Title == sel.Title) {
				t.Steps = append([]*task.Step(nil), steps...)
				return all, nil
			}
		}
		return nil, task.ErrTaskNotFound(task.RefOf(sel))
	})
	if err != nil {
		return b.fail(op, err)
	}

	b.logger.Info("step moved", "task", sel.ID, "from", from, "to", to)
	return nil
}

// locate loads the document strictly and finds the task ref names.
func (b *Board) locate(ref task.Ref) (*task.Task, error) {
	all, err := b.store.LoadStrict()
	if err != nil {
		return nil, err
	}
	i := task.Find(all, ref)
	if i < 0 {
		return nil, task.ErrTaskNotFound(ref)
	}
	return all[i], nil
}

// CombineSteps merges every step of the task matching one of refs into a
// single step written by the assistant, placed where the first of them was.
func (b *Board) CombineSteps(ctx context.Context, ref task.Ref, refs []task.StepRef) (*task.Step, error) {
	const op = "combine steps"

	t, err := b.locate(ref)
	if err != nil {
		return nil, b.fail(op, err)
	}
	idx := t.StepIndices(refs)
	if len(idx) == 0 {
		return nil, b.fail(op, stepsNotFound(t, refs))
	}

	descs := make([]string, 0, len(idx))
	for _, i := range idx {
		descs = append(descs, t.Steps[i].Description)
	}
	r, err := b.ask(ctx, assistant.CombineRule, map[string]any{
		"title":            t.Title,
		"description":      t.Description,
		"steps_to_combine": descs,
	})
	if err != nil {
		return nil, b.fail(op, err)
	}
	text, ok := r.String("Step", "step")
	if !ok {
		return nil, b.fail(op, missingField("Step", r))
	}
	combined := task.NewStep(text)

	err = b.store.Update(func(all []*task.Task) ([]*task.Task, error) {
		i := task.Find(all, task.RefOf(t))
		if i < 0 {
			return nil, task.ErrTaskNotFound(ref)
		}
		cur := all[i]
		idx := cur.StepIndices(refs)
		if len(idx) == 0 {
			return nil, stepsNotFound(cur, refs)
		}
		for k := len(idx) - 1; k >= 0; k-- {
			j := idx[k]
			cur.Steps = append(cur.Steps[:j], cur.Steps[j+1:]...)
		}
		at := idx[0]
		cur.Steps = append(cur.Steps, nil)
		copy(cur.Steps[at+1:], cur.Steps[at:])
		cur.Steps[at] = combined
		return all, nil
	})
	if err != nil {
		return nil, b.fail(op, err)
	}

	b.logger.Info("steps combined", "task", t.ID, "combined", len(idx))
	return combined, nil
}

func stepsNotFound(t *task.Task, refs []task.StepRef) *clierr.Error {
	first := task.StepRef{}
	if len(refs) > 0 {
		first = refs[0]
	}
	return task.ErrStepNotFound(t, first).WithDetails(map[string]any{
		"task_id": t.ID,
		"steps":   refs,
	})
}

// ExpandStep replaces the first step matching step with the sub-steps the
// assistant breaks it into.
func (b *Board) ExpandStep(ctx context.Context, ref task.Ref, step task.StepRef) ([]*task.Step, error) {
	const op = "expand step"

	t, err := b.locate(ref)
	if err != nil {
		return nil, b.fail(op, err)
	}
	si := t.StepIndex(step)
	if si < 0 {
		return nil, b.fail(op, task.ErrStepNotFound(t, step))
	}

	r, err := b.ask(ctx, assistant.ExpandRule, map[string]any{
		"title":          t.Title,
		"description":    t.Description,
		"step_to_expand": t.Steps[si].Description,
	})
	if err != nil {
		return nil, b.fail(op, err)
	}
	descs, ok := assistant.Strings(r.Field("Steps", "steps"), "Description", "description")
	if !ok || len(descs) == 0 {
		return nil, b.fail(op, missingField("Steps", r))
	}
	subs := task.NewSteps(descs)

	err = b.store.Update(func(all []*task.Task) ([]*task.Task, error) {
		i := task.Find(all, task.RefOf(t))
		if i < 0 {
			return nil, task.ErrTaskNotFound(ref)
		}
		cur := all[i]
		j := cur.StepIndex(step)
		if j < 0 {
			return nil, task.ErrStepNotFound(cur, step)
		}
		out := make([]*task.Step, 0, len(cur.Steps)+len(subs)-1)
		out = append(out, cur.Steps[:j]...)
		out = append(out, subs...)
		out = append(out, cur.Steps[j+1:]...)
		cur.Steps = out
		return all, nil
	})
	if err != nil {
		return nil, b.fail(op, err)
	}

	b.logger.Info("step expanded", "task", t.ID, "into", len(subs))
	return subs, nil
}

// DeleteStep removes every step of the task that matches step. Nothing is
// written when no step matches.
func (b *Board) DeleteStep(ctx context.Context, ref task.Ref, step task.StepRef) (int, error) {
	const op = "delete step"
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	removed := 0
	err := b.store.Update(func(all []*task.Task) ([]*task.Task, error) {
		i := task.Find(all, ref)
		if i < 0 {
			return nil, task.ErrTaskNotFound(ref)
		}
		cur := all[i]
		kept := make([]*task.Step, 0, len(cur.Steps))
		for _, s := range cur.Steps {
			if step.Matches(s) {
				removed++
				continue
			}
			kept = append(kept, s)
		}
		if removed == 0 {
			return nil, task.ErrStepNotFound(cur, step)
		}
		cur.Steps = kept
		return all, nil
	})
	if err != nil {
		return 0, b.fail(op, err)
	}

	b.logger.Info("step deleted", "step", step.Description, "removed", removed)
	return removed, nil
}

// AddStep has the assistant rewrite text as a step of the dev task at
// devIndex and puts it first in the task's list.
func (b *Board) AddStep(ctx context.Context, text string, devIndex int) (*task.Step, error) {
	const op = "add step"

	all, err := b.store.LoadStrict()
	if err != nil {
		return nil, b.fail(op, err)
	}
	dev := DevTasks(all)
	if err := task.CheckIndex("dev task", devIndex, len(dev)); err != nil {
		return nil, b.fail(op, err)
	}
	t := dev[devIndex]

	r, err := b.ask(ctx, assistant.AddStepRule, map[string]any{
		"title":       t.Title,
		"description": t.Description,
		"step_to_add": text,
	})
	if err != nil {
		return nil, b.fail(op, err)
	}
	desc, ok := r.String("step", "Step")
	if !ok {
		return nil, b.fail(op, missingField("step", r))
	}
	step := task.NewStep(desc)

	err = b.store.Update(func(all []*task.Task) ([]*task.Task, error) {
		i := task.Find(all, task.RefOf(t))
		if i < 0 {
			return nil, task.ErrTaskNotFound(task.RefOf(t))
		}
		all[i].Steps = append([]*task.Step{step}, all[i].Steps...)
		return all, nil
	})
	if err != nil {
		return nil, b.fail(op, err)
	}

	b.logger.Info("step added", "task", t.ID, "step", step.Description)
	return step, nil
}

// TimeEntry is time spent on one step.
type TimeEntry struct {
	// Project is the task store path the label is derived from; empty
	// uses the board's store.
	Project string
	Task    task.Ref
	Step    task.StepRef
	Seconds int
}

// LogTime adds the seconds to the first matching step and appends an
// activity entry. The entry is written whether or not the step was found.
func (b *Board) LogTime(ctx context.Context, e TimeEntry) error {
	const op = "log time"
	if err := ctx.Err(); err != nil {
		return err
	}

	title, stepDesc := "", e.Step.Description
	stepErr := b.store.Update(func(all []*task.Task) ([]*task.Task, error) {
		i := task.Find(all, e.Task)
		if i < 0 {
			return nil, task.ErrTaskNotFound(e.Task)
		}
		t := all[i]
		title = t.Title
		j := t.StepIndex(e.Step)
		if j < 0 {
			return nil, task.ErrStepNotFound(t, e.Step)
		}
		stepDesc = t.Steps[j].Description
		t.Steps[j].Duration += e.Seconds
		return all, nil
	})
	if title == "" {
		title = e.Task.Title
	}
	if clierr.Is(stepErr, clierr.TaskNotFound) {
		stepErr = clierr.New(clierr.StepNotFound, "matching step not found; nothing was updated").
			WithDetails(map[string]any{"title": e.Task.Title, "step": e.Step.Description})
	}

	project := e.Project
	if project == "" {
		project = b.store.Path
	}
	entry := activity.NewEntry(activity.ProjectLabel(project), title, stepDesc, e.Seconds, b.now())
	actErr := b.activity.Append(entry)

	if stepErr != nil {
		if actErr != nil {
			b.logger.Warn("activity append failed", "error", actErr)
		}
		return b.fail(op, stepErr)
	}
	if actErr != nil {
		return b.fail(op, clierr.Wrap(clierr.StoreIO, actErr, "appending activity"))
	}

	b.logger.Info("time logged", "task", title, "step", stepDesc, "duration", entry.Duration)
	return nil
}
