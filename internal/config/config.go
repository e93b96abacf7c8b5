package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/twiced-technology-gmbh/prism/internal/clierr"
	"github.com/twiced-technology-gmbh/prism/internal/task"
)

const fileMode = 0o600

// Sentinel errors.
var (
	ErrNotFound = errors.New("no prism workspace found (run 'prism init' to create one)")
	ErrInvalid  = errors.New("invalid config")
)

// Config represents the prism workspace configuration.
type Config struct {
	Version       int             `yaml:"version"`
	Board         BoardConfig     `yaml:"board"`
	DataDir       string          `yaml:"data_dir"`
	Projects      []ProjectConfig `yaml:"projects"`
	ActiveProject string          `yaml:"active_project,omitempty"`
	ActivityFile  string          `yaml:"activity_file"`
	Categories    []string        `yaml:"categories"`
	Defaults      DefaultsConfig  `yaml:"defaults"`
	Assistant     AssistantConfig `yaml:"assistant"`
	Chart         ChartConfig     `yaml:"chart"`
	TUI           TUIConfig       `yaml:"tui,omitempty"`
	LogLevel      string          `yaml:"log_level,omitempty"`

	// dir is the absolute path to the workspace directory (not serialized).
	dir string `yaml:"-"`
}

// BoardConfig holds workspace metadata.
type BoardConfig struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description,omitempty"`
}

// ProjectConfig names one task store.
type ProjectConfig struct {
	Name       string `yaml:"name" json:"name"`
	File       string `yaml:"file" json:"file"`
	TitleImage string `yaml:"title_image,omitempty" json:"title_image,omitempty"`
}

// DefaultsConfig holds default values for new tasks.
type DefaultsConfig struct {
	Priority int `yaml:"priority"`
}

// AssistantConfig selects and tunes the decomposition assistant.
type AssistantConfig struct {
	Provider   string `yaml:"provider" json:"provider"`
	Model      string `yaml:"model,omitempty" json:"model,omitempty"`
	BaseURL    string `yaml:"base_url,omitempty" json:"base_url,omitempty"`
	APIKeyEnv  string `yaml:"api_key_env,omitempty" json:"api_key_env,omitempty"`
	APIKeyFile string `yaml:"api_key_file,omitempty" json:"api_key_file,omitempty"`
	Timeout    string `yaml:"timeout,omitempty" json:"timeout,omitempty"`
	MaxRetries int    `yaml:"max_retries" json:"max_retries"`
}

// ChartConfig holds the activity chart geometry.
type ChartConfig struct {
	Width     float64 `yaml:"width" json:"width"`
	BaselineY int     `yaml:"baseline_y" json:"baseline_y"`
	Padding   float64 `yaml:"padding" json:"padding"`
	// Project pins the chart to one project label; empty follows the active project.
	Project string `yaml:"project,omitempty" json:"project,omitempty"`
}

// TUIConfig holds TUI-specific display settings.
type TUIConfig struct {
	TitleLines int `yaml:"title_lines,omitempty"`
	BodyLines  int `yaml:"body_lines,omitempty"`
}

// Dir returns the absolute path to the workspace directory.
func (c *Config) Dir() string {
	return c.dir
}

// SetDir sets the workspace directory path on the config.
func (c *Config) SetDir(dir string) {
	c.dir = dir
}

// ConfigPath returns the absolute path to the config file.
func (c *Config) ConfigPath() string {
	return filepath.Join(c.dir, ConfigFileName)
}

// DataPath returns the absolute path to the data directory.
func (c *Config) DataPath() string {
	if filepath.IsAbs(c.DataDir) {
		return c.DataDir
	}
	return filepath.Join(c.dir, c.DataDir)
}

// ProjectPath returns the absolute path to a project's task store.
func (c *Config) ProjectPath(p ProjectConfig) string {
	if filepath.IsAbs(p.File) {
		return p.File
	}
	return filepath.Join(c.DataPath(), p.File)
}

// TitleImagePath returns the absolute path to a project's title image, or
// "" when none is configured.
func (c *Config) TitleImagePath(p ProjectConfig) string {
	if p.TitleImage == "" || filepath.IsAbs(p.TitleImage) {
		return p.TitleImage
	}
	return filepath.Join(c.dir, p.TitleImage)
}

// ActivityPath returns the absolute path to the activity log.
func (c *Config) ActivityPath() string {
	if filepath.IsAbs(c.ActivityFile) {
		return c.ActivityFile
	}
	return filepath.Join(c.DataPath(), c.ActivityFile)
}

// NewDefault creates a Config with default values.
func NewDefault(name string) *Config {
	return &Config{
		Version:      CurrentVersion,
		Board:        BoardConfig{Name: name},
		DataDir:      DefaultDataDir,
		Projects:     append([]ProjectConfig{}, DefaultProjects...),
		ActivityFile: DefaultActivityFile,
		Categories:   append([]string{}, DefaultCategories...),
		Defaults:     DefaultsConfig{Priority: task.DefaultPriority},
		Assistant:    DefaultAssistant,
		Chart:        DefaultChart,
		TUI:          TUIConfig{TitleLines: DefaultTitleLines},
		LogLevel:     DefaultLogLevel,
	}
}

// ProjectNames returns the configured project names in order.
func (c *Config) ProjectNames() []string {
	names := make([]string, len(c.Projects))
	for i, p := range c.Projects {
		names[i] = p.Name
	}
	return names
}

// ProjectIndex returns the index of the named project, or -1.
func (c *Config) ProjectIndex(name string) int {
	return IndexOf(c.ProjectNames(), name)
}

// ActiveIndex returns the index of the active project. An unset active
// project selects the first one.
func (c *Config) ActiveIndex() int {
	if i := c.ProjectIndex(c.ActiveProject); i >= 0 {
		return i
	}
	return 0
}

// Project resolves a project by name; an empty name picks the active
// project.
func (c *Config) Project(name string) (ProjectConfig, error) {
	if len(c.Projects) == 0 {
		return ProjectConfig{}, clierr.New(clierr.ProjectNotFound, "no projects configured")
	}
	if name == "" {
		return c.Projects[c.ActiveIndex()], nil
	}
	if i := c.ProjectIndex(name); i >= 0 {
		return c.Projects[i], nil
	}
	return ProjectConfig{}, clierr.Newf(clierr.ProjectNotFound, "project %q not found", name).
		WithDetails(map[string]any{"project": name, "projects": c.ProjectNames()})
}

// CategoryList returns the configured categories as task categories.
func (c *Config) CategoryList() []task.Category {
	out := make([]task.Category, len(c.Categories))
	for i, s := range c.Categories {
		out[i] = task.Category(s)
	}
	return out
}

// AssistantTimeout parses assistant.timeout. Returns 0 (client default) if
// the field is empty or unparseable.
func (c *Config) AssistantTimeout() time.Duration {
	if c.Assistant.Timeout == "" {
		return 0
	}
	d, err := time.ParseDuration(c.Assistant.Timeout)
	if err != nil {
		return 0
	}
	return d
}

// TitleLines returns the configured number of title lines for TUI cards.
// Returns DefaultTitleLines if the value is unset (zero).
func (c *Config) TitleLines() int {
	if c.TUI.TitleLines == 0 {
		return DefaultTitleLines
	}
	return c.TUI.TitleLines
}

// Validate checks the config for errors.
func (c *Config) Validate() error {
	if c.Version != CurrentVersion {
		return fmt.Errorf("%w: unsupported version %d (expected %d)", ErrInvalid, c.Version, CurrentVersion)
	}
	if c.Board.Name == "" {
		return fmt.Errorf("%w: board.name is required", ErrInvalid)
	}
	if c.DataDir == "" {
		return fmt.Errorf("%w: data_dir is required", ErrInvalid)
	}
	if c.ActivityFile == "" {
		return fmt.Errorf("%w: activity_file is required", ErrInvalid)
	}
	if err := c.validateProjects(); err != nil {
		return err
	}
	if err := c.validateCategories(); err != nil {
		return err
	}
	if c.Defaults.Priority < 0 {
		return fmt.Errorf("%w: defaults.priority must be >= 0", ErrInvalid)
	}
	if err := c.validateAssistant(); err != nil {
		return err
	}
	if c.Chart.Width < 0 || c.Chart.Padding < 0 || c.Chart.BaselineY < 0 {
		return fmt.Errorf("%w: chart geometry must not be negative", ErrInvalid)
	}
	if err := c.validateTUI(); err != nil {
		return err
	}
	if c.LogLevel != "" && !contains(logLevels, c.LogLevel) {
		return fmt.Errorf("%w: log_level %q must be one of %v", ErrInvalid, c.LogLevel, logLevels)
	}
	return nil
}

func (c *Config) validateProjects() error {
	if len(c.Projects) == 0 {
		return fmt.Errorf("%w: at least 1 project is required", ErrInvalid)
	}
	for i, p := range c.Projects {
		if p.Name == "" {
			return fmt.Errorf("%w: projects[%d].name is required", ErrInvalid, i)
		}
		if p.File == "" {
			return fmt.Errorf("%w: projects[%d].file is required", ErrInvalid, i)
		}
	}
	if hasDuplicates(c.ProjectNames()) {
		return fmt.Errorf("%w: project names contain duplicates", ErrInvalid)
	}
	if c.ActiveProject != "" && c.ProjectIndex(c.ActiveProject) < 0 {
		return fmt.Errorf("%w: active_project %q not in projects list", ErrInvalid, c.ActiveProject)
	}
	return nil
}

func (c *Config) validateCategories() error {
	if len(c.Categories) == 0 {
		return fmt.Errorf("%w: at least 1 category is required", ErrInvalid)
	}
	if hasDuplicates(c.Categories) {
		return fmt.Errorf("%w: categories contain duplicates", ErrInvalid)
	}
	for _, name := range c.Categories {
		if _, err := task.ParseCategory(name); err != nil {
			return fmt.Errorf("%w: unknown category %q", ErrInvalid, name)
		}
	}
	return nil
}

func (c *Config) validateAssistant() error {
	a := c.Assistant
	if !contains(providers, a.Provider) {
		return fmt.Errorf("%w: assistant.provider %q must be one of %v", ErrInvalid, a.Provider, providers)
	}
	if a.Timeout != "" {
		if _, err := time.ParseDuration(a.Timeout); err != nil {
			return fmt.Errorf("%w: invalid assistant.timeout %q: %w", ErrInvalid, a.Timeout, err)
		}
	}
	if a.MaxRetries < 0 {
		return fmt.Errorf("%w: assistant.max_retries must be >= 0", ErrInvalid)
	}
	return nil
}

func (c *Config) validateTUI() error {
	const minTitleLines, maxTitleLines = 1, 3
	if c.TUI.TitleLines < minTitleLines || c.TUI.TitleLines > maxTitleLines {
		return fmt.Errorf("%w: tui.title_lines must be between %d and %d",
			ErrInvalid, minTitleLines, maxTitleLines)
	}
	const maxBodyLines = 2
	if c.TUI.BodyLines < 0 || c.TUI.BodyLines > maxBodyLines {
		return fmt.Errorf("%w: tui.body_lines must be between 0 and %d", ErrInvalid, maxBodyLines)
	}
	return nil
}

// Init creates a new workspace in the given directory with default
// settings. It creates the workspace directory, the data subdirectory, and
// the config file.
func Init(dir, name string) (*Config, error) {
	const dirMode = 0o750

	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolving path: %w", err)
	}

	cfg := NewDefault(name)
	cfg.SetDir(absDir)

	if err := os.MkdirAll(cfg.DataPath(), dirMode); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	if err := cfg.Save(); err != nil {
		return nil, fmt.Errorf("writing config: %w", err)
	}

	return cfg, nil
}

// Save writes the config to its config file.
func (c *Config) Save() error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	return os.WriteFile(c.ConfigPath(), data, fileMode)
}

// Load reads and validates a config from the given workspace directory.
func Load(dir string) (*Config, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolving path: %w", err)
	}

	path := filepath.Join(absDir, ConfigFileName)
	data, err := os.ReadFile(path) //nolint:gosec // config path from trusted source
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	cfg.dir = absDir

	// Migrate old config versions forward before validating.
	oldVersion := cfg.Version
	if err := migrate(&cfg); err != nil {
		return nil, err
	}

	// Persist migrated config so future loads skip re-migration.
	if cfg.Version != oldVersion {
		if err := cfg.Save(); err != nil {
			return nil, fmt.Errorf("saving migrated config: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// FindDir walks upward from startDir looking for a workspace directory
// containing config.yml. Returns the absolute path to the workspace directory.
func FindDir(startDir string) (string, error) {
	absStart, err := filepath.Abs(startDir)
	if err != nil {
		return "", fmt.Errorf("resolving path: %w", err)
	}

	dir := absStart
	for {
		candidate := filepath.Join(dir, DefaultDir, ConfigFileName)
		if _, err := os.Stat(candidate); err == nil {
			return filepath.Join(dir, DefaultDir), nil
		}

		// Also check if we're inside the workspace directory itself.
		candidate = filepath.Join(dir, ConfigFileName)
		if _, err := os.Stat(candidate); err == nil {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", clierr.New(clierr.BoardNotFound,
				"no prism workspace found (run 'prism init' to create one)")
		}
		dir = parent
	}
}

func contains(slice []string, item string) bool {
	return IndexOf(slice, item) >= 0
}

// IndexOf returns the index of item in slice, or -1 if not found.
func IndexOf(slice []string, item string) int {
	for i, s := range slice {
		if s == item {
			return i
		}
	}
	return -1
}

func hasDuplicates(slice []string) bool {
	seen := make(map[string]bool, len(slice))
	for _, s := range slice {
		if seen[s] {
			return true
		}
		seen[s] = true
	}
	return false
}
