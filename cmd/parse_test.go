package cmd

import (
	"bytes"
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/twiced-technology-gmbh/prism/internal/activity"
	"github.com/twiced-technology-gmbh/prism/internal/assistant"
	"github.com/twiced-technology-gmbh/prism/internal/board"
	"github.com/twiced-technology-gmbh/prism/internal/clierr"
	"github.com/twiced-technology-gmbh/prism/internal/config"
	"github.com/twiced-technology-gmbh/prism/internal/output"
	"github.com/twiced-technology-gmbh/prism/internal/task"
)

func TestParseSeconds(t *testing.T) {
	tests := []struct {
		in   string
		want int
		ok   bool
	}{
		{"90", 90, true},
		{" 45 ", 45, true},
		{"1:02:03", 3723, true},
		{"5:30", 330, true},
		{"0:00:01", 1, true},
		{"0", 0, false},
		{"-5", 0, false},
		{"0:00", 0, false},
		{"abc", 0, false},
		{"1:xx", 0, false},
		{"1:2:3:4", 0, false},
		{"", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseSeconds(tt.in)
			if !tt.ok {
				require.Error(t, err)
				assert.True(t, clierr.Is(err, clierr.InvalidInput))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseIndex(t *testing.T) {
	tests := []struct {
		in   string
		want int
		ok   bool
	}{
		{"0", 0, true},
		{"12", 12, true},
		{"-1", 0, false},
		{"1.5", 0, false},
		{"two", 0, false},
		{"", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseIndex(tt.in)
			if !tt.ok {
				require.Error(t, err)
				assert.True(t, clierr.Is(err, clierr.InvalidInput))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseIndices(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []int
		ok   bool
	}{
		{"single", "3", []int{3}, true},
		{"list keeps order", "2,0,1", []int{2, 0, 1}, true},
		{"duplicates dropped", "1,1,2,1", []int{1, 2}, true},
		{"spaces and empty parts", " 4 , ,5,", []int{4, 5}, true},
		{"negative", "1,-2", nil, false},
		{"junk", "1,x", nil, false},
		{"empty", "", nil, false},
		{"only commas", ",,", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseIndices(tt.in)
			if !tt.ok {
				require.Error(t, err)
				assert.True(t, clierr.Is(err, clierr.InvalidInput))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFormatConfigValue(t *testing.T) {
	assert.Equal(t, "--", formatConfigValue(""))
	assert.Equal(t, "--", formatConfigValue([]string{}))
	assert.Equal(t, "idea, dev", formatConfigValue([]string{"idea", "dev"}))
	assert.Equal(t, "prism", formatConfigValue("prism"))
	assert.Equal(t, "3", formatConfigValue(3))
	assert.Equal(t, "0.5", formatConfigValue(0.5))
}

func TestConfigKeysHaveAccessors(t *testing.T) {
	accessors := configAccessors()
	keys := allConfigKeys()
	assert.Len(t, keys, len(accessors))
	for _, key := range keys {
		acc, ok := accessors[key]
		if assert.True(t, ok, key) && acc.writable {
			assert.NotNil(t, acc.set, key)
		}
	}
}

func TestConfigSetters(t *testing.T) {
	accessors := configAccessors()
	var c config.Config

	require.NoError(t, accessors["tui.body_lines"].set(&c, "4"))
	assert.Equal(t, 4, c.TUI.BodyLines)

	require.NoError(t, accessors["chart.padding"].set(&c, "0.25"))
	assert.InDelta(t, 0.25, c.Chart.Padding, 1e-9)

	require.NoError(t, accessors["board.name"].set(&c, "Home"))
	assert.Equal(t, "Home", c.Board.Name)

	for key, value := range map[string]string{
		"defaults.priority": "high",
		"chart.width":       "wide",
		"assistant.timeout": "soon",
	} {
		err := accessors[key].set(&c, value)
		require.Error(t, err, key)
		assert.True(t, clierr.Is(err, clierr.InvalidInput), key)
	}
}

func TestCategoryTask(t *testing.T) {
	dir := t.TempDir()
	store := task.NewStore(filepath.Join(dir, "Prism_Task_Data.json"))
	require.NoError(t, store.Save([]*task.Task{
		{ID: "1", Title: "idea one", Category: task.Idea},
		{ID: "2", Title: "dev one", Category: task.Dev},
		{ID: "3", Title: "idea two", Category: task.Idea},
	}))
	b := board.New(store, activity.NewLog(filepath.Join(dir, activity.FileName)), assistant.NewStub(), board.Options{})

	got, list, err := categoryTask(b, "idea", 1)
	require.NoError(t, err)
	assert.Equal(t, "idea two", got.Title)
	assert.Len(t, list, 2)

	_, _, err = categoryTask(b, "idea", 2)
	assert.True(t, clierr.Is(err, clierr.IndexOutOfRange))

	_, _, err = categoryTask(b, "rlty", 0)
	assert.True(t, clierr.Is(err, clierr.IndexOutOfRange))

	_, _, err = categoryTask(b, "later", 0)
	assert.True(t, clierr.Is(err, clierr.InvalidCategory))
}

func TestReportError(t *testing.T) {
	coded := clierr.Newf(clierr.IndexOutOfRange, "dev task index 4 out of range (0..1)").
		WithDetails(map[string]any{"index": 4})

	t.Run("json envelope", func(t *testing.T) {
		var stdout, stderr bytes.Buffer
		code := reportError(&stdout, &stderr, coded, output.FormatJSON)
		assert.Equal(t, 1, code)
		assert.Empty(t, stderr.String())

		var env output.ErrorResponse
		require.NoError(t, json.Unmarshal(stdout.Bytes(), &env))
		assert.Equal(t, clierr.IndexOutOfRange, env.Code)
		assert.Equal(t, "dev task index 4 out of range (0..1)", env.Error)
		assert.InDelta(t, 4, env.Details["index"], 0)
	})

	t.Run("json internal", func(t *testing.T) {
		var stdout, stderr bytes.Buffer
		code := reportError(&stdout, &stderr, errors.New("boom"), output.FormatJSON)
		assert.Equal(t, 2, code)
		assert.JSONEq(t, `{"error":"boom","code":"INTERNAL_ERROR"}`, stdout.String())
	})

	t.Run("text", func(t *testing.T) {
		var stdout, stderr bytes.Buffer
		code := reportError(&stdout, &stderr, coded, output.FormatTable)
		assert.Equal(t, 1, code)
		assert.Empty(t, stdout.String())
		assert.Contains(t, stderr.String(), "Error: dev task index 4 out of range")
	})

	t.Run("silent", func(t *testing.T) {
		var stdout, stderr bytes.Buffer
		code := reportError(&stdout, &stderr, &clierr.SilentError{Code: 3}, output.FormatJSON)
		assert.Equal(t, 3, code)
		assert.Empty(t, stdout.String())
		assert.Empty(t, stderr.String())
	})
}
