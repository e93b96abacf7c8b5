package chart

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/twiced-technology-gmbh/prism/internal/activity"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func entry(project, ts, dur string) activity.Entry {
	return activity.Entry{Project: project, Title: "t", Description: "s", Timestamp: ts, Duration: dur}
}

func TestBucketSize(t *testing.T) {
	tests := []struct {
		days int
		want int
	}{
		{0, 1}, {7, 1}, {8, 3}, {31, 3}, {32, 7}, {90, 7},
		{91, 14}, {180, 14}, {181, 30}, {365, 30}, {366, 60}, {1000, 60},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, BucketSize(tt.days), "days=%d", tt.days)
	}
}

func TestAggregateWeekly(t *testing.T) {
	entries := []activity.Entry{
		entry("Prism", "2025-05-20 10:00:00", "1:00:00"),
		entry("Prism", "2025-06-03 18:30:00", "30:00"),
		entry("Doctrine", "2025-06-03 18:30:00", "5:00:00"),
		entry("Prism", "2025-04-01 09:00:00", "9:00:00"),
	}
	nodes, proj := Aggregate(entries, Options{
		Project:  "Prism",
		Start:    day(2025, time.May, 19),
		End:      day(2025, time.June, 30),
		Location: time.UTC,
	})

	require.Len(t, nodes, 7)
	assert.Len(t, proj.Points, 7)
	for i, n := range nodes {
		assert.Equal(t, 7, n.BucketSize)
		assert.Equal(t, time.Monday, n.Bucket.Weekday())
		if i > 0 {
			assert.Equal(t, 7*24*time.Hour, n.Bucket.Sub(nodes[i-1].Bucket))
		}
	}

	assert.Equal(t, "May 19", nodes[0].Label)
	assert.Equal(t, 0, nodes[0].X)
	assert.Equal(t, 10, nodes[0].Y)
	assert.Equal(t, 60.0, nodes[0].Minutes)

	assert.Equal(t, "Jun 02", nodes[2].Label)
	assert.Equal(t, 262, nodes[2].X)
	assert.Equal(t, 40, nodes[2].Y)

	assert.Equal(t, 310, nodes[1].Y)
	assert.Equal(t, 785, nodes[6].X)
}

func TestAggregateDailyRounding(t *testing.T) {
	entries := []activity.Entry{
		entry("Prism", "2025-06-02 12:00:00", "0:20:00"),
	}
	nodes, _ := Aggregate(entries, Options{
		Project:  "Prism",
		Start:    day(2025, time.June, 1),
		End:      day(2025, time.June, 3),
		Location: time.UTC,
	})

	require.Len(t, nodes, 3)
	assert.Equal(t, []int{0, 393, 785}, []int{nodes[0].X, nodes[1].X, nodes[2].X})
	assert.Equal(t, []int{310, 10, 310}, []int{nodes[0].Y, nodes[1].Y, nodes[2].Y})
	assert.Equal(t, 1, nodes[0].BucketSize)
}

func TestAggregateGapFreeAndAligned(t *testing.T) {
	entries := []activity.Entry{
		entry("Prism", "2025-06-01 08:00:00", "0:10:00"),
		entry("Prism", "2025-06-10 08:00:00", "0:20:00"),
		entry("Prism", "2025-06-20 23:59:59", "0:30:00"),
	}
	nodes, _ := Aggregate(entries, Options{
		Project:  "Prism",
		Start:    day(2025, time.June, 1),
		End:      day(2025, time.June, 20),
		Location: time.UTC,
	})

	require.NotEmpty(t, nodes)
	total := 0.0
	for i, n := range nodes {
		assert.Equal(t, 3, n.BucketSize)
		total += n.Minutes
		if i > 0 {
			assert.Equal(t, 3*24*time.Hour, n.Bucket.Sub(nodes[i-1].Bucket))
		}
	}
	assert.False(t, nodes[0].Bucket.After(day(2025, time.June, 1)))
	assert.False(t, nodes[len(nodes)-1].Bucket.After(day(2025, time.June, 20)))
	assert.InDelta(t, 60.0, total, 1e-9)
}

func TestAggregateEmpty(t *testing.T) {
	opts := Options{
		Project:  "Prism",
		Start:    day(2025, time.June, 1),
		End:      day(2025, time.June, 7),
		Location: time.UTC,
	}

	nodes, proj := Aggregate(nil, opts)
	assert.Empty(t, nodes)
	assert.Empty(t, proj.Points)

	outside := []activity.Entry{entry("Prism", "2024-01-01 00:00:00", "1:00:00")}
	nodes, _ = Aggregate(outside, opts)
	assert.Empty(t, nodes)

	garbage := []activity.Entry{entry("Prism", "yesterday", "1:00:00")}
	nodes, _ = Aggregate(garbage, opts)
	assert.Empty(t, nodes)
}

func TestAggregateZeroDurationsSitOnBaseline(t *testing.T) {
	entries := []activity.Entry{
		entry("Prism", "2025-06-02 10:00:00", "bogus"),
		entry("Prism", "2025-06-03 10:00:00", ""),
	}
	nodes, _ := Aggregate(entries, Options{
		Project:  "Prism",
		Start:    day(2025, time.June, 1),
		End:      day(2025, time.June, 7),
		Location: time.UTC,
	})

	require.Len(t, nodes, 7)
	for _, n := range nodes {
		assert.Equal(t, 310, n.Y)
	}
}

func TestProjectionNodesRecomputes(t *testing.T) {
	entries := []activity.Entry{entry("Prism", "2025-06-02 10:00:00", "1:00:00")}
	nodes, proj := Aggregate(entries, Options{
		Project:  "Prism",
		Start:    day(2025, time.June, 1),
		End:      day(2025, time.June, 3),
		Location: time.UTC,
	})
	require.Len(t, nodes, 3)

	wider := proj.Nodes(day(2025, time.June, 1), day(2025, time.July, 1), DefaultWidth)
	require.Len(t, wider, 3)
	assert.Equal(t, 3, wider[0].BucketSize)
	assert.Equal(t, 0, wider[0].X)
	assert.Equal(t, 26, wider[1].X)
	assert.Equal(t, nodes[1].Y, wider[1].Y)
}

func TestScaledMaxY(t *testing.T) {
	assert.Equal(t, 0, ScaledMaxY(nil))
	assert.Equal(t, 350, ScaledMaxY([]Node{{Y: 310}, {Y: 10}}))
	assert.Equal(t, 20, ScaledMaxY([]Node{{Y: 15}}))
}

func TestTotals(t *testing.T) {
	totals := Totals([]activity.Entry{
		entry("Prism", "", "0:01:00"),
		entry("Doctrine", "", "1:00:00"),
		entry("Prism", "", "0:00:30"),
	})
	assert.Equal(t, []ProjectTotal{{Project: "Doctrine", Seconds: 3600}, {Project: "Prism", Seconds: 90}}, totals)
}
