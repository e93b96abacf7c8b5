// Package chart turns the activity log into gap-free, time-bucketed nodes
// positioned for a fixed-width line chart.
package chart

import (
	"math"
	"sort"
	"time"

	"github.com/twiced-technology-gmbh/prism/internal/activity"
)

// Chart geometry defaults.
const (
	DefaultWidth    = 785
	DefaultBaseline = 310
	DefaultPadding  = 10

	weekDays  = 7
	labelForm = "Jan 02"
)

// Options selects and positions the aggregated window.
type Options struct {
	// Project filters entries by label; empty keeps every project.
	Project string

	// Start and End are calendar days; only their year, month and day are
	// used, interpreted in Location.
	Start, End time.Time

	Width    float64
	Baseline int
	Padding  float64
	Location *time.Location
}

func (o Options) withDefaults() Options {
	if o.Width <= 0 {
		o.Width = DefaultWidth
	}
	if o.Baseline == 0 {
		o.Baseline = DefaultBaseline
	}
	if o.Padding == 0 {
		o.Padding = DefaultPadding
	}
	if o.Location == nil {
		o.Location = time.Local
	}
	o.Start = midnight(o.Start, o.Location)
	o.End = midnight(o.End, o.Location)
	return o
}

// Node is one chart point.
type Node struct {
	Bucket     time.Time `json:"bucket"`
	Minutes    float64   `json:"durationMinutes"`
	X          int       `json:"x"`
	Y          int       `json:"y"`
	Label      string    `json:"label"`
	BucketSize int       `json:"bucketSize"`
}

// Duration returns the bucket's total as a time.Duration.
func (n Node) Duration() time.Duration {
	return time.Duration(n.Minutes * float64(time.Minute))
}

// Point is an aggregated bucket before projection onto chart coordinates.
type Point struct {
	Bucket  time.Time `json:"bucket"`
	Minutes float64   `json:"durationMinutes"`
}

// Projection keeps the aggregated points so nodes can be repositioned for
// another visible range without reading the log again.
type Projection struct {
	Points   []Point `json:"points"`
	Baseline int     `json:"baseline"`
	Padding  float64 `json:"padding"`
}

// BucketSize returns the bucket width in days for a span of days.
func BucketSize(days int) int {
	switch {
	case days <= 7: //nolint:mnd // bucket table
		return 1
	case days <= 31: //nolint:mnd // bucket table
		return 3
	case days <= 90: //nolint:mnd // bucket table
		return weekDays
	case days <= 180: //nolint:mnd // bucket table
		return 14
	case days <= 365: //nolint:mnd // bucket table
		return 30
	default:
		return 60
	}
}

// Aggregate filters entries to the window, sums their durations per bucket,
// fills empty buckets with zero, and positions every bucket. An empty
// selection yields no nodes.
func Aggregate(entries []activity.Entry, opts Options) ([]Node, Projection) {
	opts = opts.withDefaults()
	proj := Projection{Baseline: opts.Baseline, Padding: opts.Padding}
	if opts.End.Before(opts.Start) {
		return nil, proj
	}

	size := BucketSize(spanDays(opts.Start, opts.End))
	limit := opts.End.AddDate(0, 0, 1)

	sums := map[int64]time.Duration{}
	matched := 0
	for _, e := range entries {
		if opts.Project != "" && e.Project != opts.Project {
			continue
		}
		ts, err := e.Time(opts.Location)
		if err != nil {
			continue
		}
		if ts.Before(opts.Start) || ts.After(limit) {
			continue
		}
		matched++
		sums[bucketStart(ts, size, opts.Location).Unix()] += e.Elapsed()
	}
	if matched == 0 {
		return nil, proj
	}

	for _, b := range enumerate(opts.Start, opts.End, size, opts.Location) {
		proj.Points = append(proj.Points, Point{
			Bucket:  b,
			Minutes: sums[b.Unix()].Minutes(),
		})
	}
	return proj.Nodes(opts.Start, opts.End, opts.Width), proj
}

// Nodes positions the stored points for the range [start, end] at width.
func (p Projection) Nodes(start, end time.Time, width float64) []Node {
	if len(p.Points) == 0 {
		return nil
	}
	if width <= 0 {
		width = DefaultWidth
	}
	baseline := p.Baseline
	if baseline == 0 {
		baseline = DefaultBaseline
	}
	loc := p.Points[0].Bucket.Location()
	start = midnight(start, loc)
	end = midnight(end, loc)

	size := BucketSize(spanDays(start, end))
	span := end.Sub(start).Seconds()

	maxMinutes := 0.0
	for _, pt := range p.Points {
		maxMinutes = math.Max(maxMinutes, pt.Minutes)
	}

	nodes := make([]Node, len(p.Points))
	for i, pt := range p.Points {
		x := 0
		if span > 0 {
			x = int(math.Round(pt.Bucket.Sub(start).Seconds() / span * width))
		}
		y := baseline
		if pt.Minutes != 0 {
			y = int(math.Round(maxMinutes + p.Padding - pt.Minutes))
		}
		nodes[i] = Node{
			Bucket:     pt.Bucket,
			Minutes:    pt.Minutes,
			X:          x,
			Y:          y,
			Label:      pt.Bucket.Format(labelForm),
			BucketSize: size,
		}
	}
	return nodes
}

// ScaledMaxY returns the chart's vertical extent: the largest y plus ten
// percent, rounded up to a multiple of ten.
func ScaledMaxY(nodes []Node) int {
	if len(nodes) == 0 {
		return 0
	}
	maxY := 0
	for _, n := range nodes {
		if n.Y > maxY {
			maxY = n.Y
		}
	}
	return int(math.Ceil(float64(maxY)*1.1/10) * 10) //nolint:mnd // 10% headroom, tens
}

// Totals returns per-project logged time across all entries, sorted by name.
func Totals(entries []activity.Entry) []ProjectTotal {
	sums := map[string]time.Duration{}
	for _, e := range entries {
		sums[e.Project] += e.Elapsed()
	}
	out := make([]ProjectTotal, 0, len(sums))
	for name, d := range sums {
		out = append(out, ProjectTotal{Project: name, Seconds: int(d / time.Second)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Project < out[j].Project })
	return out
}

// ProjectTotal is the logged time of one project.
type ProjectTotal struct {
	Project string `json:"project"`
	Seconds int    `json:"seconds"`
}

// enumerate lists every bucket start from the bucket holding start through
// end, inclusive.
func enumerate(start, end time.Time, size int, loc *time.Location) []time.Time {
	var out []time.Time
	for cur := bucketStart(start, size, loc); !cur.After(end); cur = cur.AddDate(0, 0, size) {
		out = append(out, cur)
	}
	return out
}

// bucketStart returns midnight of the first day of the bucket holding ts.
// Weekly buckets begin on Monday; other sizes count whole civil days from
// 1970-01-01.
func bucketStart(ts time.Time, size int, loc *time.Location) time.Time {
	day := midnight(ts, loc)
	if size == weekDays {
		offset := (int(day.Weekday()) + 6) % weekDays //nolint:mnd // Monday-based weekday
		return day.AddDate(0, 0, -offset)
	}
	n := civilDay(day)
	rem := n % int64(size)
	if rem < 0 {
		rem += int64(size)
	}
	return day.AddDate(0, 0, -int(rem))
}

func civilDay(t time.Time) int64 {
	const secondsPerDay = 86400
	u := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return int64(math.Floor(float64(u.Unix()) / secondsPerDay))
}

func spanDays(start, end time.Time) int {
	return int(civilDay(end) - civilDay(start))
}

// midnight keeps t's calendar date and moves it to the start of that day
// in loc.
func midnight(t time.Time, loc *time.Location) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}
