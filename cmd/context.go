package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/twiced-technology-gmbh/prism/internal/output"
	"github.com/twiced-technology-gmbh/prism/internal/task"
)

var contextCmd = &cobra.Command{
	Use:   "context DEV_INDEX [TEXT]",
	Short: "Revise a dev task with extra context",
	Long: `Sends the dev task and TEXT to the assistant and replaces the task with
its revision. Fields the assistant leaves out keep their current values;
a revised step list starts with no logged time.`,
	Args: cobra.RangeArgs(1, 2), //nolint:mnd // task and optional text
	RunE: runContext,
}

func init() {
	contextCmd.Flags().String("text", "", "context text (alternative to positional argument)")
	rootCmd.AddCommand(contextCmd)
}

func runContext(cmd *cobra.Command, args []string) error {
	text, err := resolveText(cmd, args[1:])
	if err != nil {
		return err
	}
	b, _, sel, err := stepTarget(string(task.Dev), args[0])
	if err != nil {
		return err
	}

	t, err := b.AddContext(cmd.Context(), text, sel)
	if err != nil {
		return err
	}

	r := output.Row{Index: sel, Task: t}
	if outputFormat() == output.FormatJSON {
		return output.JSON(os.Stdout, r)
	}
	output.Messagef(os.Stdout, "Updated dev task #%d", sel)
	output.TaskDetail(os.Stdout, r)
	return nil
}
