package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/twiced-technology-gmbh/prism/internal/clierr"
	"github.com/twiced-technology-gmbh/prism/internal/task"
)

func TestInitAndLoad(t *testing.T) {
	dir := filepath.Join(t.TempDir(), DefaultDir)

	cfg, err := Init(dir, "mine")
	require.NoError(t, err)
	assert.DirExists(t, cfg.DataPath())
	assert.FileExists(t, cfg.ConfigPath())

	loaded, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "mine", loaded.Board.Name)
	assert.Equal(t, CurrentVersion, loaded.Version)
	assert.Equal(t, []string{"Prism", "LeJarvis", "ImBored", "Doctrine", "Masters"}, loaded.ProjectNames())
	assert.Equal(t, ProviderOpenAI, loaded.Assistant.Provider)
	assert.Equal(t, time.Minute, loaded.AssistantTimeout())
	assert.Equal(t, []task.Category{task.Idea, task.Dev, task.Rlty}, loaded.CategoryList())
	assert.Equal(t, filepath.Join(dir, "data", "Task_Activity_Log.json"), loaded.ActivityPath())
}

func TestLoadMissing(t *testing.T) {
	_, err := Load(t.TempDir())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestProjectResolution(t *testing.T) {
	cfg := NewDefault("b")
	cfg.SetDir("/w")

	p, err := cfg.Project("")
	require.NoError(t, err)
	assert.Equal(t, "Prism", p.Name)
	assert.Equal(t, filepath.Join("/w", "data", "Prism_Task_Data.json"), cfg.ProjectPath(p))
	assert.Equal(t, filepath.Join("/w", "images", "PRISM_title.png"), cfg.TitleImagePath(p))

	cfg.ActiveProject = "Doctrine"
	assert.Equal(t, 3, cfg.ActiveIndex())
	p, err = cfg.Project("")
	require.NoError(t, err)
	assert.Equal(t, "Doctrine", p.Name)

	_, err = cfg.Project("Nope")
	assert.True(t, clierr.Is(err, clierr.ProjectNotFound))

	abs := ProjectConfig{Name: "x", File: "/elsewhere/x.json"}
	assert.Equal(t, "/elsewhere/x.json", cfg.ProjectPath(abs))
	assert.Empty(t, cfg.TitleImagePath(abs))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"no projects", func(c *Config) { c.Projects = nil }},
		{"duplicate project", func(c *Config) { c.Projects = append(c.Projects, c.Projects[0]) }},
		{"project without file", func(c *Config) { c.Projects[0].File = "" }},
		{"unknown active", func(c *Config) { c.ActiveProject = "Ghost" }},
		{"unknown category", func(c *Config) { c.Categories = []string{"idea", "done"} }},
		{"duplicate category", func(c *Config) { c.Categories = []string{"dev", "dev"} }},
		{"bad provider", func(c *Config) { c.Assistant.Provider = "claude" }},
		{"bad timeout", func(c *Config) { c.Assistant.Timeout = "soon" }},
		{"negative retries", func(c *Config) { c.Assistant.MaxRetries = -1 }},
		{"negative width", func(c *Config) { c.Chart.Width = -1 }},
		{"title lines", func(c *Config) { c.TUI.TitleLines = 9 }},
		{"log level", func(c *Config) { c.LogLevel = "loud" }},
		{"no name", func(c *Config) { c.Board.Name = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewDefault("b")
			require.NoError(t, cfg.Validate())
			tt.mutate(cfg)
			assert.ErrorIs(t, cfg.Validate(), ErrInvalid)
		})
	}
}

func TestMigrateV1(t *testing.T) {
	dir := t.TempDir()
	v1 := `version: 1
board:
  name: old
data_dir: data
projects:
  - name: Prism
    file: Prism_Task_Data.json
activity_file: Task_Activity_Log.json
categories: [idea, dev, rlty]
defaults:
  priority: 5
assistant:
  provider: stub
  max_retries: 2
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFileName), []byte(v1), 0o600))

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, 2, cfg.Version)
	assert.Equal(t, DefaultChart.Width, cfg.Chart.Width)
	assert.Equal(t, DefaultChart.BaselineY, cfg.Chart.BaselineY)
	assert.Equal(t, DefaultAssistant.Timeout, cfg.Assistant.Timeout)
	assert.Equal(t, ProviderStub, cfg.Assistant.Provider)

	// Migrated config is persisted.
	data, err := os.ReadFile(filepath.Join(dir, ConfigFileName))
	require.NoError(t, err)
	assert.Contains(t, string(data), "version: 2")
}

func TestMigrateRejectsNewer(t *testing.T) {
	cfg := NewDefault("b")
	cfg.Version = CurrentVersion + 1
	assert.ErrorIs(t, migrate(cfg), ErrInvalid)

	cfg.Version = 0
	assert.ErrorIs(t, migrate(cfg), ErrInvalid)
}

func TestFindDir(t *testing.T) {
	root := t.TempDir()
	ws := filepath.Join(root, DefaultDir)
	_, err := Init(ws, "b")
	require.NoError(t, err)

	nested := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0o750))

	found, err := FindDir(nested)
	require.NoError(t, err)
	assert.Equal(t, ws, found)

	found, err = FindDir(ws)
	require.NoError(t, err)
	assert.Equal(t, ws, found)
}
