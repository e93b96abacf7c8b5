package bridge

import (
	"time"

	"github.com/twiced-technology-gmbh/prism/internal/activity"
	"github.com/twiced-technology-gmbh/prism/internal/chart"
)

// ChartProject returns the project label the chart shows.
func (m *Menu) ChartProject() string {
	if m.opts.ChartProject != "" {
		return m.opts.ChartProject
	}
	return activity.ProjectLabel(m.CurrentTaskFile())
}

// Nodes aggregates the activity log over [start, end] and keeps the
// result as the chart's current nodes.
func (m *Menu) Nodes(start, end time.Time) ([]chart.Node, error) {
	entries, err := m.board.Activity().Load()
	if err != nil {
		return nil, err
	}
	m.nodes, m.proj = chart.Aggregate(entries, chart.Options{
		Project:  m.ChartProject(),
		Start:    start,
		End:      end,
		Width:    m.opts.ChartWidth,
		Baseline: m.opts.Baseline,
		Padding:  m.opts.Padding,
		Location: m.opts.Location,
	})
	m.notify(NodesChanged)
	return m.nodes, nil
}

// Reproject repositions the current nodes for a new visible range without
// reading the log again.
func (m *Menu) Reproject(start, end time.Time) []chart.Node {
	m.nodes = m.proj.Nodes(start, end, m.opts.ChartWidth)
	m.notify(NodesChanged)
	return m.nodes
}

// NodeCount returns the number of current nodes.
func (m *Menu) NodeCount() int { return len(m.nodes) }

// Node returns the current node at index.
func (m *Menu) Node(index int) (chart.Node, bool) {
	if index < 0 || index >= len(m.nodes) {
		return chart.Node{}, false
	}
	return m.nodes[index], true
}

// ScaledMaxY returns the chart's vertical extent for the current nodes.
func (m *Menu) ScaledMaxY() int { return chart.ScaledMaxY(m.nodes) }
