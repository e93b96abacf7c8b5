package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/twiced-technology-gmbh/prism/internal/board"
	"github.com/twiced-technology-gmbh/prism/internal/output"
	"github.com/twiced-technology-gmbh/prism/internal/task"
)

var stepCmd = &cobra.Command{
	Use:   "step",
	Short: "List and edit the steps of a task",
	Long: `Steps are addressed by their index within the task, as shown by
"step list". Tasks are addressed by category and index, as shown by list.`,
}

var stepListCmd = &cobra.Command{
	Use:     "list CATEGORY INDEX",
	Aliases: []string{"ls"},
	Short:   "List the steps of a task",
	Args:    cobra.ExactArgs(2), //nolint:mnd // category and index
	RunE:    runStepList,
}

var stepMoveCmd = &cobra.Command{
	Use:   "move DEV_INDEX FROM TO",
	Short: "Reorder a step of a dev task",
	Long:  `Takes the step at FROM out of the dev task and inserts it at TO.`,
	Args:  cobra.ExactArgs(3), //nolint:mnd // task, from, to
	RunE:  runStepMove,
}

var stepAddCmd = &cobra.Command{
	Use:   "add DEV_INDEX [TEXT]",
	Short: "Add a step to a dev task",
	Long: `Asks the assistant to phrase TEXT as a step and inserts it as the first
step of the dev task.`,
	Args: cobra.RangeArgs(1, 2), //nolint:mnd // task and optional text
	RunE: runStepAdd,
}

var stepCombineCmd = &cobra.Command{
	Use:   "combine CATEGORY INDEX STEPS",
	Short: "Merge several steps into one",
	Long: `Asks the assistant to merge the steps at the comma-separated STEPS
indices. The merged step takes the place of the first of them.`,
	Args: cobra.ExactArgs(3), //nolint:mnd // category, index, steps
	RunE: runStepCombine,
}

var stepExpandCmd = &cobra.Command{
	Use:   "expand CATEGORY INDEX STEP",
	Short: "Split a step into sub-steps",
	Long:  `Asks the assistant to break the step into sub-steps, which replace it in place.`,
	Args:  cobra.ExactArgs(3), //nolint:mnd // category, index, step
	RunE:  runStepExpand,
}

func init() {
	stepAddCmd.Flags().String("text", "", "step description (alternative to positional argument)")
	stepCmd.AddCommand(stepListCmd, stepMoveCmd, stepAddCmd, stepCombineCmd, stepExpandCmd)
	rootCmd.AddCommand(stepCmd)
}

// stepTarget resolves the board and the task addressed by CATEGORY INDEX.
func stepTarget(category, index string) (*board.Board, *task.Task, int, error) {
	idx, err := parseIndex(index)
	if err != nil {
		return nil, nil, 0, err
	}
	ws, err := openWorkspace()
	if err != nil {
		return nil, nil, 0, err
	}
	b, _, err := ws.currentBoard()
	if err != nil {
		return nil, nil, 0, err
	}
	t, _, err := categoryTask(b, category, idx)
	if err != nil {
		return nil, nil, 0, err
	}
	return b, t, idx, nil
}

func runStepList(_ *cobra.Command, args []string) error {
	_, t, _, err := stepTarget(args[0], args[1])
	if err != nil {
		return err
	}
	return outputSteps(t.Steps)
}

func runStepMove(cmd *cobra.Command, args []string) error {
	sel, err := parseIndex(args[0])
	if err != nil {
		return err
	}
	from, err := parseIndex(args[1])
	if err != nil {
		return err
	}
	to, err := parseIndex(args[2])
	if err != nil {
		return err
	}

	ws, err := openWorkspace()
	if err != nil {
		return err
	}
	b, _, err := ws.currentBoard()
	if err != nil {
		return err
	}
	// One load serves both the addressed task and the dev view it is saved with.
	t, devs, err := categoryTask(b, string(task.Dev), sel)
	if err != nil {
		return err
	}
	if err := b.MoveStep(cmd.Context(), t.Steps, devs, sel, from, to); err != nil {
		return err
	}

	if outputFormat() == output.FormatJSON {
		return outputSteps(t.Steps)
	}
	output.Messagef(os.Stdout, "Moved step %d -> %d in %q", from, to, t.Title)
	return nil
}

func runStepAdd(cmd *cobra.Command, args []string) error {
	text, err := resolveText(cmd, args[1:])
	if err != nil {
		return err
	}
	b, t, sel, err := stepTarget(string(task.Dev), args[0])
	if err != nil {
		return err
	}

	step, err := b.AddStep(cmd.Context(), text, sel)
	if err != nil {
		return err
	}

	if outputFormat() == output.FormatJSON {
		return output.JSON(os.Stdout, step)
	}
	output.Messagef(os.Stdout, "Added step to %q: %s", t.Title, step.Description)
	return nil
}

func runStepCombine(cmd *cobra.Command, args []string) error {
	indices, err := parseIndices(args[2])
	if err != nil {
		return err
	}
	b, t, _, err := stepTarget(args[0], args[1])
	if err != nil {
		return err
	}

	refs := make([]task.StepRef, len(indices))
	for i, idx := range indices {
		s, err := taskStep(t, idx)
		if err != nil {
			return err
		}
		refs[i] = task.StepRefOf(s)
	}

	combined, err := b.CombineSteps(cmd.Context(), task.RefOf(t), refs)
	if err != nil {
		return err
	}

	if outputFormat() == output.FormatJSON {
		return output.JSON(os.Stdout, combined)
	}
	output.Messagef(os.Stdout, "Combined %d steps of %q into: %s", len(refs), t.Title, combined.Description)
	return nil
}

func runStepExpand(cmd *cobra.Command, args []string) error {
	idx, err := parseIndex(args[2])
	if err != nil {
		return err
	}
	b, t, _, err := stepTarget(args[0], args[1])
	if err != nil {
		return err
	}
	s, err := taskStep(t, idx)
	if err != nil {
		return err
	}

	subs, err := b.ExpandStep(cmd.Context(), task.RefOf(t), task.StepRefOf(s))
	if err != nil {
		return err
	}

	if outputFormat() == output.FormatJSON {
		return output.JSON(os.Stdout, subs)
	}
	output.Messagef(os.Stdout, "Expanded %q into %d steps:", s.Description, len(subs))
	output.StepTable(os.Stdout, subs)
	return nil
}

func outputSteps(steps []*task.Step) error {
	if outputFormat() == output.FormatJSON {
		if steps == nil {
			steps = []*task.Step{}
		}
		return output.JSON(os.Stdout, steps)
	}
	output.StepTable(os.Stdout, steps)
	return nil
}
