package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/twiced-technology-gmbh/prism/internal/clierr"
	"github.com/twiced-technology-gmbh/prism/internal/output"
	"github.com/twiced-technology-gmbh/prism/internal/task"
)

var stepDeleteCmd = &cobra.Command{
	Use:     "delete CATEGORY INDEX STEP",
	Aliases: []string{"rm"},
	Short:   "Delete a step",
	Long: `Removes every step of the task whose content matches the step at STEP.
Prompts for confirmation in interactive mode.`,
	Args: cobra.ExactArgs(3), //nolint:mnd // category, index, step
	RunE: runStepDelete,
}

func init() {
	stepDeleteCmd.Flags().BoolP("yes", "y", false, "skip confirmation prompt")
	stepCmd.AddCommand(stepDeleteCmd)
}

func runStepDelete(cmd *cobra.Command, args []string) error {
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

	yes, _ := cmd.Flags().GetBool("yes")
	if !yes {
		ok, err := confirm(fmt.Sprintf("Delete step %q of %q?", s.Description, t.Title))
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintln(os.Stderr, "Canceled.")
			return &clierr.SilentError{Code: 1}
		}
	}

	// Match by content so duplicates of the step go too.
	removed, err := b.DeleteStep(cmd.Context(), task.RefOf(t), task.StepRef{Description: s.Description})
	if err != nil {
		return err
	}

	if outputFormat() == output.FormatJSON {
		return output.JSON(os.Stdout, map[string]any{
			"status":  "deleted",
			"task":    t.Title,
			"step":    s.Description,
			"removed": removed,
		})
	}

	output.Messagef(os.Stdout, "Deleted %d step(s) from %q: %s", removed, t.Title, s.Description)
	return nil
}

// confirm asks a yes/no question on stderr. It refuses to guess when stdin
// is not a terminal.
func confirm(question string) (bool, error) {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return false, clierr.New(clierr.ConfirmationReq,
			"cannot prompt for confirmation (not a terminal); use --yes")
	}
	fmt.Fprintf(os.Stderr, "%s [y/N] ", question)
	reader := bufio.NewReader(os.Stdin)
	answer, _ := reader.ReadString('\n')
	answer = strings.TrimSpace(strings.ToLower(answer))
	return answer == "y" || answer == "yes", nil
}
