package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/twiced-technology-gmbh/prism/internal/duration"
)

func (b *Board) openChart() {
	today := b.now()
	b.chartEnd = time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, today.Location())
	b.chartStart = b.chartEnd.AddDate(0, 0, -(b.opts.ChartDays - 1))
	b.view = viewChart
	b.loadNodes()
}

func (b *Board) loadNodes() {
	nodes, err := b.menu.Nodes(b.chartStart, b.chartEnd)
	b.nodes = nodes
	b.err = err
}

func (b *Board) spanDays() int {
	return int(b.chartEnd.Sub(b.chartStart).Hours()/24 + 0.5) //nolint:mnd // hours per day, rounding
}

func (b *Board) handleChartKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	span := max(b.spanDays(), 1)
	switch msg.String() {
	case "q", keyEsc, "g":
		b.view = viewBoard
		return b, nil
	case "[", "left", "h":
		b.chartStart = b.chartStart.AddDate(0, 0, -span)
		b.chartEnd = b.chartEnd.AddDate(0, 0, -span)
	case "]", "right", "l":
		b.chartStart = b.chartStart.AddDate(0, 0, span)
		b.chartEnd = b.chartEnd.AddDate(0, 0, span)
	case "-":
		b.chartStart = b.chartEnd.AddDate(0, 0, -span*2) //nolint:mnd // zoom out doubles the span
	case "+", "=":
		b.chartStart = b.chartEnd.AddDate(0, 0, -span/2) //nolint:mnd // zoom in halves the span
	default:
		return b, nil
	}
	b.loadNodes()
	return b, nil
}

func (b *Board) viewChart() string {
	header := fmt.Sprintf("Activity · %s · %s to %s",
		b.menu.ChartProject(), b.chartStart.Format("Jan 02 2006"), b.chartEnd.Format("Jan 02 2006"))

	lines := []string{titleStyle.Render(header), ""}
	if len(b.nodes) == 0 {
		lines = append(lines, dimStyle.Render("  No activity in range."))
	} else {
		lines = append(lines, dimStyle.Render(fmt.Sprintf("  %d-day buckets, scaled max y %d",
			b.nodes[0].BucketSize, b.menu.ScaledMaxY())), "")

		maxMinutes := 0.0
		for _, n := range b.nodes {
			maxMinutes = max(maxMinutes, n.Minutes)
		}
		const labelW, valueW = 8, 10
		barW := max(b.width-labelW-valueW-4, 10) //nolint:mnd // gutters and minimum bar
		rows := max(b.height-7, 1)               //nolint:mnd // header, footer and gaps
		for _, n := range b.nodes[max(len(b.nodes)-rows, 0):] {
			bar := ""
			if maxMinutes > 0 {
				bar = strings.Repeat("█", int(n.Minutes/maxMinutes*float64(barW)))
			}
			lines = append(lines, fmt.Sprintf("  %-*s %*s %s",
				labelW-2, n.Label, valueW, duration.Format(n.Duration()), barStyle.Render(bar))) //nolint:mnd // indent
		}
	}

	lines = append(lines, "", statusBarStyle.Render(" [/]:shift  -/+:zoom  esc:back"))
	if b.err != nil {
		lines = append(lines, errorStyle.Render(truncate("Error: "+b.err.Error(), b.width)))
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}
