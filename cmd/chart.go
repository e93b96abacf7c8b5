package cmd

import (
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/twiced-technology-gmbh/prism/internal/activity"
	"github.com/twiced-technology-gmbh/prism/internal/chart"
	"github.com/twiced-technology-gmbh/prism/internal/clierr"
	"github.com/twiced-technology-gmbh/prism/internal/date"
	"github.com/twiced-technology-gmbh/prism/internal/output"
)

const defaultChartDays = 30

var chartCmd = &cobra.Command{
	Use:   "chart",
	Short: "Aggregate logged time into chart nodes",
	Long: `Sums the project's activity into day, multi-day or weekly buckets over
a date range and prints each bucket with its chart coordinates.

The range is --from/--to (YYYY-MM-DD, inclusive) or the last --days days.
The project is chart.project from the config, else the selected project;
--label overrides both.`,
	RunE: runChart,
}

func init() {
	chartCmd.Flags().String("from", "", "first day of the range (YYYY-MM-DD)")
	chartCmd.Flags().String("to", "", "last day of the range (YYYY-MM-DD, default today)")
	chartCmd.Flags().Int("days", defaultChartDays, "number of days ending today (ignored with --from)")
	chartCmd.Flags().String("label", "", "activity project label to chart")
	chartCmd.Flags().Float64("width", 0, "chart width in pixels (default from config)")
	rootCmd.AddCommand(chartCmd)
}

func runChart(cmd *cobra.Command, _ []string) error {
	r, err := chartRange(cmd)
	if err != nil {
		return err
	}

	ws, err := openWorkspace()
	if err != nil {
		return err
	}

	label, _ := cmd.Flags().GetString("label")
	if label == "" {
		label = ws.cfg.Chart.Project
	}
	if label == "" {
		p, err := ws.project()
		if err != nil {
			return err
		}
		label = activity.ProjectLabel(ws.cfg.ProjectPath(p))
	}

	width := ws.cfg.Chart.Width
	if v, _ := cmd.Flags().GetFloat64("width"); v > 0 {
		width = v
	}

	entries, err := ws.activity.Load()
	if err != nil {
		return err
	}
	nodes, _ := chart.Aggregate(entries, chart.Options{
		Project:  label,
		Start:    r.Start.Time,
		End:      r.End.Time,
		Width:    width,
		Baseline: ws.cfg.Chart.BaselineY,
		Padding:  ws.cfg.Chart.Padding,
		Location: time.Local,
	})

	switch outputFormat() {
	case output.FormatJSON:
		if nodes == nil {
			nodes = []chart.Node{}
		}
		return output.JSON(os.Stdout, map[string]any{
			"project":    label,
			"range":      r,
			"nodes":      nodes,
			"scaledMaxY": chart.ScaledMaxY(nodes),
		})
	case output.FormatCompact:
		output.NodeCompact(os.Stdout, nodes)
	default:
		output.Messagef(os.Stdout, "%s  %s", label, r)
		output.NodeTable(os.Stdout, nodes)
	}
	return nil
}

// chartRange resolves the date flags into an inclusive range.
func chartRange(cmd *cobra.Command) (date.Range, error) {
	from, _ := cmd.Flags().GetString("from")
	to, _ := cmd.Flags().GetString("to")
	days, _ := cmd.Flags().GetInt("days")

	if from == "" {
		if days < 1 {
			return date.Range{}, clierr.Newf(clierr.InvalidInput, "--days must be at least 1, got %d", days)
		}
		r := date.LastDays(days)
		if to == "" {
			return r, nil
		}
		end, err := date.Parse(to)
		if err != nil {
			return date.Range{}, clierr.Wrap(clierr.InvalidDate, err, "%s", err.Error())
		}
		return date.Range{Start: end.AddDays(-(days - 1)), End: end}, nil
	}

	if to == "" {
		to = date.Today().String()
	}
	r, err := date.ParseRange(from, to)
	if err != nil {
		return date.Range{}, clierr.Wrap(clierr.InvalidDate, err, "%s", err.Error()).
			WithDetails(map[string]any{"from": from, "to": to})
	}
	return r, nil
}
