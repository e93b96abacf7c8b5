package cmd

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/twiced-technology-gmbh/prism/internal/clierr"
	"github.com/twiced-technology-gmbh/prism/internal/config"
	"github.com/twiced-technology-gmbh/prism/internal/output"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or modify workspace configuration",
	Long:  `View the full configuration, get a specific key, or set a writable value.`,
	RunE:  runConfigShow,
}

var configGetCmd = &cobra.Command{
	Use:   "get KEY",
	Short: "Get a configuration value",
	Args:  cobra.ExactArgs(1),
	RunE:  runConfigGet,
}

var configSetCmd = &cobra.Command{
	Use:   "set KEY VALUE",
	Short: "Set a configuration value",
	Args:  cobra.ExactArgs(2), //nolint:mnd // key and value
	RunE:  runConfigSet,
}

func init() {
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)
	rootCmd.AddCommand(configCmd)
}

// configAccessor describes how to get and set a config key.
type configAccessor struct {
	get      func(*config.Config) any
	set      func(*config.Config, string) error
	writable bool
}

func configAccessors() map[string]configAccessor {
	accessors := baseConfigAccessors()
	addAssistantConfigAccessors(accessors)
	addDisplayConfigAccessors(accessors)
	return accessors
}

func stringSetter(field func(*config.Config) *string) func(*config.Config, string) error {
	return func(c *config.Config, v string) error {
		*field(c) = v
		return nil
	}
}

func intSetter(key string, field func(*config.Config) *int) func(*config.Config, string) error {
	return func(c *config.Config, v string) error {
		n, err := strconv.Atoi(v)
		if err != nil {
			return clierr.Newf(clierr.InvalidInput, "invalid %s %q: must be an integer", key, v)
		}
		*field(c) = n
		return nil // validation handles range check
	}
}

func floatSetter(key string, field func(*config.Config) *float64) func(*config.Config, string) error {
	return func(c *config.Config, v string) error {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return clierr.Newf(clierr.InvalidInput, "invalid %s %q: must be a number", key, v)
		}
		*field(c) = f
		return nil
	}
}

func baseConfigAccessors() map[string]configAccessor {
	return map[string]configAccessor{
		"version": {
			get: func(c *config.Config) any { return c.Version },
		},
		"board.name": {
			get:      func(c *config.Config) any { return c.Board.Name },
			set:      stringSetter(func(c *config.Config) *string { return &c.Board.Name }),
			writable: true,
		},
		"board.description": {
			get:      func(c *config.Config) any { return c.Board.Description },
			set:      stringSetter(func(c *config.Config) *string { return &c.Board.Description }),
			writable: true,
		},
		"data_dir": {
			get: func(c *config.Config) any { return c.DataDir },
		},
		"activity_file": {
			get: func(c *config.Config) any { return c.ActivityFile },
		},
		"projects": {
			get: func(c *config.Config) any { return c.ProjectNames() },
		},
		"active_project": {
			get: func(c *config.Config) any { return c.Projects[c.ActiveIndex()].Name },
			set: func(c *config.Config, v string) error {
				p, err := c.Project(v)
				if err != nil {
					return err
				}
				c.ActiveProject = p.Name
				return nil
			},
			writable: true,
		},
		"categories": {
			get: func(c *config.Config) any { return c.Categories },
		},
		"defaults.priority": {
			get:      func(c *config.Config) any { return c.Defaults.Priority },
			set:      intSetter("defaults.priority", func(c *config.Config) *int { return &c.Defaults.Priority }),
			writable: true,
		},
		"log_level": {
			get:      func(c *config.Config) any { return c.LogLevel },
			set:      stringSetter(func(c *config.Config) *string { return &c.LogLevel }),
			writable: true,
		},
	}
}

func addAssistantConfigAccessors(accessors map[string]configAccessor) {
	accessors["assistant.provider"] = configAccessor{
		get:      func(c *config.Config) any { return c.Assistant.Provider },
		set:      stringSetter(func(c *config.Config) *string { return &c.Assistant.Provider }),
		writable: true,
	}
	accessors["assistant.model"] = configAccessor{
		get:      func(c *config.Config) any { return c.Assistant.Model },
		set:      stringSetter(func(c *config.Config) *string { return &c.Assistant.Model }),
		writable: true,
	}
	accessors["assistant.base_url"] = configAccessor{
		get:      func(c *config.Config) any { return c.Assistant.BaseURL },
		set:      stringSetter(func(c *config.Config) *string { return &c.Assistant.BaseURL }),
		writable: true,
	}
	accessors["assistant.api_key_env"] = configAccessor{
		get:      func(c *config.Config) any { return c.Assistant.APIKeyEnv },
		set:      stringSetter(func(c *config.Config) *string { return &c.Assistant.APIKeyEnv }),
		writable: true,
	}
	accessors["assistant.api_key_file"] = configAccessor{
		get:      func(c *config.Config) any { return c.Assistant.APIKeyFile },
		set:      stringSetter(func(c *config.Config) *string { return &c.Assistant.APIKeyFile }),
		writable: true,
	}
	accessors["assistant.timeout"] = configAccessor{
		get: func(c *config.Config) any { return c.Assistant.Timeout },
		set: func(c *config.Config, v string) error {
			if _, err := time.ParseDuration(v); err != nil {
				return clierr.Newf(clierr.InvalidInput,
					"invalid assistant.timeout %q: %v", v, err)
			}
			c.Assistant.Timeout = v
			return nil
		},
		writable: true,
	}
	accessors["assistant.max_retries"] = configAccessor{
		get:      func(c *config.Config) any { return c.Assistant.MaxRetries },
		set:      intSetter("assistant.max_retries", func(c *config.Config) *int { return &c.Assistant.MaxRetries }),
		writable: true,
	}
}

func addDisplayConfigAccessors(accessors map[string]configAccessor) {
	accessors["chart.width"] = configAccessor{
		get:      func(c *config.Config) any { return c.Chart.Width },
		set:      floatSetter("chart.width", func(c *config.Config) *float64 { return &c.Chart.Width }),
		writable: true,
	}
	accessors["chart.baseline_y"] = configAccessor{
		get:      func(c *config.Config) any { return c.Chart.BaselineY },
		set:      intSetter("chart.baseline_y", func(c *config.Config) *int { return &c.Chart.BaselineY }),
		writable: true,
	}
	accessors["chart.padding"] = configAccessor{
		get:      func(c *config.Config) any { return c.Chart.Padding },
		set:      floatSetter("chart.padding", func(c *config.Config) *float64 { return &c.Chart.Padding }),
		writable: true,
	}
	accessors["chart.project"] = configAccessor{
		get:      func(c *config.Config) any { return c.Chart.Project },
		set:      stringSetter(func(c *config.Config) *string { return &c.Chart.Project }),
		writable: true,
	}
	accessors["tui.title_lines"] = configAccessor{
		get:      func(c *config.Config) any { return c.TUI.TitleLines },
		set:      intSetter("tui.title_lines", func(c *config.Config) *int { return &c.TUI.TitleLines }),
		writable: true,
	}
	accessors["tui.body_lines"] = configAccessor{
		get:      func(c *config.Config) any { return c.TUI.BodyLines },
		set:      intSetter("tui.body_lines", func(c *config.Config) *int { return &c.TUI.BodyLines }),
		writable: true,
	}
}

// allConfigKeys returns config keys in display order.
func allConfigKeys() []string {
	return []string{
		"version",
		"board.name",
		"board.description",
		"data_dir",
		"activity_file",
		"projects",
		"active_project",
		"categories",
		"defaults.priority",
		"assistant.provider",
		"assistant.model",
		"assistant.base_url",
		"assistant.api_key_env",
		"assistant.api_key_file",
		"assistant.timeout",
		"assistant.max_retries",
		"chart.width",
		"chart.baseline_y",
		"chart.padding",
		"chart.project",
		"tui.title_lines",
		"tui.body_lines",
		"log_level",
	}
}

func runConfigShow(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	accessors := configAccessors()

	if outputFormat() == output.FormatJSON {
		m := make(map[string]any, len(accessors))
		for _, key := range allConfigKeys() {
			m[key] = accessors[key].get(cfg)
		}
		return output.JSON(os.Stdout, m)
	}

	for _, key := range allConfigKeys() {
		val := accessors[key].get(cfg)
		fmt.Fprintf(os.Stdout, "%-24s %v\n", key, formatConfigValue(val))
	}
	return nil
}

func runConfigGet(_ *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	key := args[0]
	acc, ok := configAccessors()[key]
	if !ok {
		return clierr.Newf(clierr.InvalidInput, "unknown config key %q", key)
	}

	val := acc.get(cfg)

	if outputFormat() == output.FormatJSON {
		return output.JSON(os.Stdout, val)
	}

	fmt.Fprintln(os.Stdout, formatConfigValue(val))
	return nil
}

func runConfigSet(_ *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	key, value := args[0], args[1]
	acc, ok := configAccessors()[key]
	if !ok {
		return clierr.Newf(clierr.InvalidInput, "unknown config key %q", key)
	}
	if !acc.writable {
		return clierr.Newf(clierr.InvalidInput, "config key %q is read-only", key)
	}

	if err := acc.set(cfg, value); err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return clierr.Wrap(clierr.InvalidInput, err, "rejected %s", key)
	}

	if err := cfg.Save(); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}

	if outputFormat() == output.FormatJSON {
		return output.JSON(os.Stdout, map[string]any{"key": key, "value": acc.get(cfg)})
	}

	output.Messagef(os.Stdout, "Set %s = %v", key, formatConfigValue(acc.get(cfg)))
	return nil
}

func formatConfigValue(val any) string {
	switch v := val.(type) {
	case []string:
		if len(v) == 0 {
			return "--"
		}
		return strings.Join(v, ", ")
	case string:
		if v == "" {
			return "--"
		}
		return v
	default:
		return fmt.Sprintf("%v", v)
	}
}
