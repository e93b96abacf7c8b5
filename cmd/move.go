package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/twiced-technology-gmbh/prism/internal/output"
	"github.com/twiced-technology-gmbh/prism/internal/task"
)

var moveCmd = &cobra.Command{
	Use:   "move CATEGORY FROM TO",
	Short: "Swap two tasks within a category",
	Long: `Swaps the tasks at positions FROM and TO of a category and writes the
category back in its new order. Positions are the indices shown by list.`,
	Args: cobra.ExactArgs(3), //nolint:mnd // category, from, to
	RunE: runMove,
}

var recategorizeCmd = &cobra.Command{
	Use:     "recategorize FROM INDEX TO",
	Aliases: []string{"promote"},
	Short:   "Move a task to another category",
	Long: `Moves the task at INDEX of category FROM into category TO, where it
becomes the last task.`,
	Args: cobra.ExactArgs(3), //nolint:mnd // from, index, to
	RunE: runRecategorize,
}

func init() {
	rootCmd.AddCommand(moveCmd)
	rootCmd.AddCommand(recategorizeCmd)
}

func runMove(cmd *cobra.Command, args []string) error {
	category, err := task.ParseCategory(args[0])
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

	tasks, err := b.Category(category)
	if err != nil {
		return err
	}
	for _, i := range []int{from, to} {
		if err := task.CheckIndex(string(category)+" task", i, len(tasks)); err != nil {
			return err
		}
	}
	if err := b.MoveTask(cmd.Context(), tasks, from, to, category); err != nil {
		return err
	}

	if outputFormat() == output.FormatJSON {
		all, err := b.Tasks()
		if err != nil {
			return err
		}
		shown := task.FilterCategory(all, category)
		return output.JSON(os.Stdout, output.Rows(all, shown))
	}

	output.Messagef(os.Stdout, "Moved %s task %d <-> %d", category, from, to)
	return nil
}

func runRecategorize(cmd *cobra.Command, args []string) error {
	from, err := task.ParseCategory(args[0])
	if err != nil {
		return err
	}
	index, err := parseIndex(args[1])
	if err != nil {
		return err
	}
	to, err := task.ParseCategory(args[2])
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

	moved, err := b.MoveTaskCategory(cmd.Context(), from, index, to)
	if err != nil {
		return err
	}

	newIndex := 0
	if tasks, err := b.Category(to); err == nil {
		newIndex = len(tasks) - 1
	}

	if outputFormat() == output.FormatJSON {
		return output.JSON(os.Stdout, map[string]any{
			"task":  moved,
			"from":  from,
			"to":    to,
			"index": newIndex,
		})
	}

	output.Messagef(os.Stdout, "Moved task %q: %s -> %s #%d", moved.Title, from, to, newIndex)
	return nil
}
