package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/twiced-technology-gmbh/prism/internal/board"
	"github.com/twiced-technology-gmbh/prism/internal/clierr"
	"github.com/twiced-technology-gmbh/prism/internal/output"
	"github.com/twiced-technology-gmbh/prism/internal/task"
)

var createCmd = &cobra.Command{
	Use:     "create [TEXT]",
	Aliases: []string{"add"},
	Short:   "Create a task from a free-form description",
	Long: `Sends the description to the assistant, which breaks it into a titled task
with steps. The task lands in the idea category of the project.

The description can be provided as a positional argument, via --text, or on
stdin with "-".`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCreate,
}

func init() {
	createCmd.Flags().String("text", "", "task description (alternative to positional argument)")
	createCmd.Flags().Int("index", -1, "insert at this position of the task document (default: append)")
	rootCmd.AddCommand(createCmd)
}

func runCreate(cmd *cobra.Command, args []string) error {
	text, err := resolveText(cmd, args)
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

	var opts board.CreateOptions
	if cmd.Flags().Changed("index") {
		idx, _ := cmd.Flags().GetInt("index")
		opts.Index = &idx
	}

	t, err := b.CreateTask(cmd.Context(), text, opts)
	if err != nil {
		return err
	}

	all, err := b.Tasks()
	if err != nil {
		return err
	}
	if stored := task.FindByID(all, t.ID); stored != nil {
		t = stored
	}
	rows := output.Rows(all, []*task.Task{t})

	if outputFormat() == output.FormatJSON {
		return output.JSON(os.Stdout, rows[0])
	}

	output.Messagef(os.Stdout, "Created %s task #%d: %s", t.Category, rows[0].Index, t.Title)
	if t.ExpectedTime != "" {
		output.Messagef(os.Stdout, "  Estimate: %s", t.ExpectedTime)
	}
	output.StepTable(os.Stdout, t.Steps)
	return nil
}

// resolveText returns the free-form text from either the positional arg,
// --text, or stdin when the argument is "-".
func resolveText(cmd *cobra.Command, args []string) (string, error) {
	flagText, _ := cmd.Flags().GetString("text")
	hasPositional := len(args) > 0
	hasFlag := flagText != ""

	switch {
	case hasPositional && hasFlag:
		return "", clierr.New(clierr.InvalidInput,
			"text provided both as argument and --text flag; use one or the other")
	case hasPositional && args[0] == "-":
		data, err := readAll(cmd.InOrStdin())
		if err != nil {
			return "", err
		}
		return nonEmpty(data)
	case hasPositional:
		return nonEmpty(args[0])
	case hasFlag:
		return nonEmpty(flagText)
	default:
		return "", errors.New("text is required: provide it as an argument, with --text, or on stdin with -")
	}
}

func nonEmpty(s string) (string, error) {
	if strings.TrimSpace(s) == "" {
		return "", clierr.New(clierr.InvalidInput, "text must not be empty")
	}
	return s, nil
}

func readAll(r io.Reader) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("reading stdin: %w", err)
	}
	return string(data), nil
}
