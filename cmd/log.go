package cmd

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/twiced-technology-gmbh/prism/internal/activity"
	"github.com/twiced-technology-gmbh/prism/internal/board"
	"github.com/twiced-technology-gmbh/prism/internal/chart"
	"github.com/twiced-technology-gmbh/prism/internal/clierr"
	"github.com/twiced-technology-gmbh/prism/internal/duration"
	"github.com/twiced-technology-gmbh/prism/internal/output"
	"github.com/twiced-technology-gmbh/prism/internal/task"
)

var logCmd = &cobra.Command{
	Use:   "log CATEGORY INDEX STEP DURATION",
	Short: "Log time spent on a step",
	Long: `Adds DURATION to the step's logged time and appends an entry to the
activity log. DURATION is H:M:S, M:S, or a plain number of seconds.`,
	Args: cobra.ExactArgs(4), //nolint:mnd // category, index, step, duration
	RunE: runLog,
}

var activityCmd = &cobra.Command{
	Use:   "activity",
	Short: "Show the activity log",
	Long: `Lists logged time entries for the project (or all projects with --all).
Use --totals for logged time per project.`,
	RunE: runActivity,
}

func init() {
	activityCmd.Flags().Bool("all", false, "include every project")
	activityCmd.Flags().Bool("totals", false, "show logged time per project")
	activityCmd.Flags().IntP("limit", "n", 0, "show only the most recent N entries")
	rootCmd.AddCommand(logCmd)
	rootCmd.AddCommand(activityCmd)
}

func runLog(cmd *cobra.Command, args []string) error {
	seconds, err := parseSeconds(args[3])
	if err != nil {
		return err
	}
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

	err = b.LogTime(cmd.Context(), board.TimeEntry{
		Project: b.Store().Path,
		Task:    task.RefOf(t),
		Step:    task.StepRefOf(s),
		Seconds: seconds,
	})
	if err != nil {
		return err
	}

	total := s.Duration + seconds
	if outputFormat() == output.FormatJSON {
		return output.JSON(os.Stdout, map[string]any{
			"project": b.Project(),
			"task":    t.Title,
			"step":    s.Description,
			"logged":  duration.FormatSeconds(seconds),
			"total":   duration.FormatSeconds(total),
		})
	}
	output.Messagef(os.Stdout, "Logged %s on %q (total %s)",
		duration.FormatSeconds(seconds), s.Description, duration.FormatSeconds(total))
	return nil
}

// parseSeconds reads H:M:S, M:S or a bare number of seconds.
func parseSeconds(s string) (int, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil && n > 0 {
		return n, nil
	}
	d := duration.Parse(s)
	if d <= 0 {
		return 0, clierr.Newf(clierr.InvalidInput, "invalid duration %q: expected H:M:S, M:S or seconds", s).
			WithDetails(map[string]any{"duration": s})
	}
	return int(d / time.Second), nil
}

func runActivity(cmd *cobra.Command, _ []string) error {
	all, _ := cmd.Flags().GetBool("all")
	totals, _ := cmd.Flags().GetBool("totals")
	limit, _ := cmd.Flags().GetInt("limit")

	ws, err := openWorkspace()
	if err != nil {
		return err
	}
	entries, err := ws.activity.Load()
	if err != nil {
		return err
	}

	if totals {
		sums := chart.Totals(entries)
		if outputFormat() == output.FormatJSON {
			return output.JSON(os.Stdout, sums)
		}
		output.TotalsTable(os.Stdout, sums)
		return nil
	}

	if !all {
		b, _, err := ws.currentBoard()
		if err != nil {
			return err
		}
		entries = activity.ForProject(entries, b.Project())
	}
	if limit > 0 && len(entries) > limit {
		entries = entries[len(entries)-limit:]
	}

	switch outputFormat() {
	case output.FormatJSON:
		if entries == nil {
			entries = []activity.Entry{}
		}
		return output.JSON(os.Stdout, entries)
	case output.FormatCompact:
		output.ActivityCompact(os.Stdout, entries)
	default:
		output.ActivityTable(os.Stdout, entries)
	}
	return nil
}
