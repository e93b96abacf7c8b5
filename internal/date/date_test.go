package date

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRange(t *testing.T) {
	r, err := ParseRange("2025-05-19", "2025-06-30")
	require.NoError(t, err)
	assert.Equal(t, 42, r.Days())
	assert.Equal(t, "2025-05-19..2025-06-30", r.String())

	_, err = ParseRange("2025-06-30", "2025-05-19")
	assert.Error(t, err)

	_, err = ParseRange("19/05/2025", "2025-06-30")
	assert.Error(t, err)
}

func TestSingleDayRange(t *testing.T) {
	r, err := ParseRange("2025-05-19", "2025-05-19")
	require.NoError(t, err)
	assert.Equal(t, 0, r.Days())
}

func TestInLocation(t *testing.T) {
	loc := time.FixedZone("X", 2*3600)
	got := New(2025, time.March, 4).In(loc)
	assert.Equal(t, time.Date(2025, time.March, 4, 0, 0, 0, 0, loc), got)
}

func TestJSON(t *testing.T) {
	data, err := json.Marshal(New(2025, time.January, 2))
	require.NoError(t, err)
	assert.JSONEq(t, `"2025-01-02"`, string(data))

	var d Date
	require.NoError(t, json.Unmarshal(data, &d))
	assert.Equal(t, "2025-01-02", d.String())
}
