// Package config handles prism workspace configuration.
package config

import (
	"github.com/twiced-technology-gmbh/prism/internal/assistant"
	"github.com/twiced-technology-gmbh/prism/internal/chart"
	"github.com/twiced-technology-gmbh/prism/internal/task"
)

const (
	// DefaultDir is the default workspace directory name.
	DefaultDir = "prism"
	// DefaultDataDir is the default subdirectory holding the task stores.
	DefaultDataDir = "data"
	// DefaultActivityFile is the default activity log name within the data directory.
	DefaultActivityFile = "Task_Activity_Log.json"
	// DefaultTitleLines is the default number of title lines in TUI cards.
	DefaultTitleLines = 2
	// DefaultLogLevel is the default diagnostic log level.
	DefaultLogLevel = "warn"

	// ConfigFileName is the name of the config file within the workspace directory.
	ConfigFileName = "config.yml"

	// CurrentVersion is the current config schema version.
	CurrentVersion = 2
)

// Assistant providers.
const (
	ProviderOpenAI  = "openai"
	ProviderStub    = "stub"
	ProviderOffline = "offline"
)

// Default slice values for a new workspace (slices cannot be const).
var (
	DefaultProjects = []ProjectConfig{
		{Name: "Prism", File: "Prism_Task_Data.json", TitleImage: "images/PRISM_title.png"},
		{Name: "LeJarvis", File: "LeJarvis_Task_Data.json", TitleImage: "images/LeJarvis_title.png"},
		{Name: "ImBored", File: "ImBored_Task_Data.json", TitleImage: "images/Bored_title.png"},
		{Name: "Doctrine", File: "Doctrine_Task_Data.json", TitleImage: "images/Doctrine_title.png"},
		{Name: "Masters", File: "Masters_Task_Data.json", TitleImage: "images/Masters_title.png"},
	}

	DefaultCategories = []string{string(task.Idea), string(task.Dev), string(task.Rlty)}

	DefaultAssistant = AssistantConfig{
		Provider:   ProviderOpenAI,
		Model:      assistant.DefaultModel,
		APIKeyEnv:  assistant.DefaultKeyEnv,
		Timeout:    assistant.DefaultTimeout.String(),
		MaxRetries: assistant.DefaultMaxRetries,
	}

	DefaultChart = ChartConfig{
		Width:     chart.DefaultWidth,
		BaselineY: chart.DefaultBaseline,
		Padding:   chart.DefaultPadding,
	}

	logLevels = []string{"debug", "info", "warn", "error"}
	providers = []string{ProviderOpenAI, ProviderStub, ProviderOffline}
)
