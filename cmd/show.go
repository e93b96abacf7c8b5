package cmd

import (
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/twiced-technology-gmbh/prism/internal/clierr"
	"github.com/twiced-technology-gmbh/prism/internal/output"
)

var showCmd = &cobra.Command{
	Use:   "show CATEGORY INDEX",
	Short: "Show task details",
	Long:  `Displays full details of a single task, including its description and steps rendered as markdown.`,
	Args:  cobra.ExactArgs(2), //nolint:mnd // category and index
	RunE:  runShow,
}

func init() {
	rootCmd.AddCommand(showCmd)
}

func runShow(_ *cobra.Command, args []string) error {
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
	r := output.Row{Index: index, Task: t}

	switch outputFormat() {
	case output.FormatJSON:
		return output.JSON(os.Stdout, r)
	case output.FormatCompact:
		output.TaskDetailCompact(os.Stdout, r)
		return nil
	default:
		output.TaskDetail(os.Stdout, r)
		return nil
	}
}

// parseIndex parses a zero-based position argument.
func parseIndex(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, clierr.Newf(clierr.InvalidInput, "invalid index %q: must be a non-negative integer", s).
			WithDetails(map[string]any{"index": s})
	}
	return n, nil
}

// parseIndices parses comma-separated zero-based positions, dropping
// duplicates.
func parseIndices(s string) ([]int, error) {
	var out []int
	seen := map[int]bool{}
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		n, err := parseIndex(part)
		if err != nil {
			return nil, err
		}
		if !seen[n] {
			seen[n] = true
			out = append(out, n)
		}
	}
	if len(out) == 0 {
		return nil, clierr.New(clierr.InvalidInput, "at least one index is required")
	}
	return out, nil
}
