package cmd

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/twiced-technology-gmbh/prism/internal/board"
	"github.com/twiced-technology-gmbh/prism/internal/output"
	"github.com/twiced-technology-gmbh/prism/internal/task"
)

var editCmd = &cobra.Command{
	Use:   "edit CATEGORY INDEX",
	Short: "Edit a task's fields",
	Long: `Modifies the title, description, priority or expected time of the task
at INDEX within CATEGORY. Only the fields given as flags change; steps and
logged time are left untouched.`,
	Args: cobra.ExactArgs(2), //nolint:mnd // category and index
	RunE: runEdit,
}

func init() {
	editCmd.Flags().String("title", "", "new title")
	editCmd.Flags().String("description", "", "new description")
	editCmd.Flags().Int("priority", task.DefaultPriority, "new priority")
	editCmd.Flags().String("estimate", "", "new expected time (H:MM:SS)")
	editCmd.Flags().SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		switch name {
		case "desc", "body":
			name = "description"
		case "expected-time":
			name = "estimate"
		}
		return pflag.NormalizedName(name)
	})
	rootCmd.AddCommand(editCmd)
}

func runEdit(cmd *cobra.Command, args []string) error {
	index, err := parseIndex(args[1])
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
	t, _, err := categoryTask(b, args[0], index)
	if err != nil {
		return err
	}

	edited, err := b.EditTask(cmd.Context(), task.RefOf(t), editFlags(cmd))
	if err != nil {
		return err
	}

	r := output.Row{Index: index, Task: edited}
	if outputFormat() == output.FormatJSON {
		return output.JSON(os.Stdout, r)
	}
	output.Messagef(os.Stdout, "Updated %s task #%d: %s", edited.Category, index, edited.Title)
	return nil
}

// editFlags collects the flags the user actually set.
func editFlags(cmd *cobra.Command) board.TaskEdit {
	var e board.TaskEdit
	flags := cmd.Flags()
	if flags.Changed("title") {
		v, _ := flags.GetString("title")
		e.Title = &v
	}
	if flags.Changed("description") {
		v, _ := flags.GetString("description")
		e.Description = &v
	}
	if flags.Changed("priority") {
		v, _ := flags.GetInt("priority")
		e.Priority = &v
	}
	if flags.Changed("estimate") {
		v, _ := flags.GetString("estimate")
		e.ExpectedTime = &v
	}
	return e
}
