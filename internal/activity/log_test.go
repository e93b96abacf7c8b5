package activity

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProjectLabel(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"data/Prism_Task_Data.json", "Prism"},
		{`C:\data\LeJarvis_Task_Data.json`, "LeJarvis"},
		{"Doctrine_Task_Data.json", "Doctrine"},
		{"data/tasks.json", "tasks"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, ProjectLabel(tt.path))
		})
	}
}

func TestNewEntry(t *testing.T) {
	now := time.Date(2025, time.June, 3, 14, 5, 9, 0, time.Local)
	e := NewEntry("Prism", "Write parser", "lexer", 90, now)

	assert.Equal(t, "0:01:30", e.Duration)
	assert.Equal(t, "2025-06-03 14:05:09", e.Timestamp)
	assert.Equal(t, "lexer", e.Description)
	assert.Equal(t, 90*time.Second, e.Elapsed())

	ts, err := e.Time(time.Local)
	require.NoError(t, err)
	assert.True(t, ts.Equal(now))
}

func TestAppendCreatesAndGrowsLog(t *testing.T) {
	l := NewLog(filepath.Join(t.TempDir(), FileName))
	now := time.Date(2025, time.June, 3, 9, 0, 0, 0, time.Local)

	require.NoError(t, l.Append(NewEntry("Prism", "a", "s1", 60, now)))
	require.NoError(t, l.Append(NewEntry("Doctrine", "b", "s2", 3600, now)))

	entries, err := l.Load()
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "1:00:00", entries[1].Duration)
	assert.Len(t, ForProject(entries, "Prism"), 1)
}

func TestLoadLenient(t *testing.T) {
	dir := t.TempDir()

	missing, err := NewLog(filepath.Join(dir, "none.json")).Load()
	require.NoError(t, err)
	assert.Empty(t, missing)

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{"not":"a list"}`), 0o600))
	entries, err := NewLog(bad).Load()
	require.NoError(t, err)
	assert.Empty(t, entries)

	mixed := filepath.Join(dir, "mixed.json")
	require.NoError(t, os.WriteFile(mixed, []byte(`[{"project":"Prism","duration":"0:10:00"}, 7]`), 0o600))
	entries, err = NewLog(mixed).Load()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, 10*time.Minute, entries[0].Elapsed())
}

func TestAppendRecoversFromMalformedLog(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(path, []byte(`not json`), 0o600))

	l := NewLog(path)
	require.NoError(t, l.Append(NewEntry("Prism", "a", "s", 5, time.Now())))

	entries, err := l.Load()
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestAppendKeepsEntriesLoadSkips(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(path, []byte(`[{"project":"Prism","duration":"0:10:00"}, 7, {"project":1}]`), 0o600))

	l := NewLog(path)
	require.NoError(t, l.Append(NewEntry("Prism", "a <b>", "s", 5, time.Now())))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var raw []any
	require.NoError(t, json.Unmarshal(data, &raw))
	require.Len(t, raw, 4)
	assert.InDelta(t, 7, raw[1], 0)
	assert.Equal(t, map[string]any{"project": float64(1)}, raw[2])
	assert.Contains(t, string(data), `"a <b>"`)

	entries, err := l.Load()
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "0:00:05", entries[1].Duration)
}
