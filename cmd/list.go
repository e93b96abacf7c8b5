package cmd

import (
	"os"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/twiced-technology-gmbh/prism/internal/board"
	"github.com/twiced-technology-gmbh/prism/internal/clierr"
	"github.com/twiced-technology-gmbh/prism/internal/output"
	"github.com/twiced-technology-gmbh/prism/internal/task"
)

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List tasks",
	Long: `Lists the tasks of a project with optional filtering, sorting, and output
format control. The # column is the task's index within its category, the
index every category-scoped command takes.`,
	RunE: runList,
}

func init() {
	listCmd.Flags().StringSliceP("category", "c", nil, "filter by category (comma-separated: idea, dev, rlty; default: the configured categories)")
	listCmd.Flags().StringP("search", "s", "", "search title, description, and steps (case-insensitive)")
	listCmd.Flags().String("sort", "position", "sort field ("+strings.Join(board.SortFields(), ", ")+")")
	listCmd.Flags().BoolP("reverse", "r", false, "reverse sort order")
	listCmd.Flags().IntP("limit", "n", 0, "limit number of results")
	listCmd.Flags().Int("min-priority", 0, "show only tasks with at least this priority")
	listCmd.Flags().Bool("unstarted", false, "show only tasks with no logged time")
	listCmd.Flags().Bool("started", false, "show only tasks with logged time")
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, _ []string) error {
	categories, _ := cmd.Flags().GetStringSlice("category")
	search, _ := cmd.Flags().GetString("search")
	sortBy, _ := cmd.Flags().GetString("sort")
	reverse, _ := cmd.Flags().GetBool("reverse")
	limit, _ := cmd.Flags().GetInt("limit")
	minPriority, _ := cmd.Flags().GetInt("min-priority")
	unstarted, _ := cmd.Flags().GetBool("unstarted")
	started, _ := cmd.Flags().GetBool("started")

	if !slices.Contains(board.SortFields(), sortBy) {
		return clierr.Newf(clierr.InvalidInput, "invalid --sort field %q; valid: %s",
			sortBy, strings.Join(board.SortFields(), ", "))
	}
	if unstarted && started {
		return clierr.New(clierr.InvalidInput, "--started and --unstarted are mutually exclusive")
	}

	filter := board.FilterOptions{Search: search, MinPriority: minPriority}
	for _, c := range categories {
		cat, err := task.ParseCategory(c)
		if err != nil {
			return err
		}
		filter.Categories = append(filter.Categories, cat)
	}
	if unstarted || started {
		filter.Unstarted = &unstarted
	}

	ws, err := openWorkspace()
	if err != nil {
		return err
	}
	if len(filter.Categories) == 0 {
		filter.Categories = ws.cfg.CategoryList()
	}
	b, _, err := ws.currentBoard()
	if err != nil {
		return err
	}

	all, err := b.Tasks()
	if err != nil {
		return err
	}
	shown := board.Filter(all, filter)
	board.Sort(shown, sortBy, reverse)
	if limit > 0 && len(shown) > limit {
		shown = shown[:limit]
	}

	return outputTaskList(output.Rows(all, shown))
}

func outputTaskList(rows []output.Row) error {
	switch outputFormat() {
	case output.FormatJSON:
		if rows == nil {
			rows = []output.Row{}
		}
		return output.JSON(os.Stdout, rows)
	case output.FormatCompact:
		output.TaskCompact(os.Stdout, rows)
		return nil
	default:
		output.TaskTable(os.Stdout, rows)
		return nil
	}
}
