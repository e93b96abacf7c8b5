package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/twiced-technology-gmbh/prism/internal/clierr"
	"github.com/twiced-technology-gmbh/prism/internal/config"
	"github.com/twiced-technology-gmbh/prism/internal/output"
	"github.com/twiced-technology-gmbh/prism/internal/task"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a new prism workspace",
	Long: `Creates a workspace directory with config.yml and a data/ subdirectory
holding one empty task store per project.`,
	RunE: runInit,
}

func init() {
	initCmd.Flags().String("name", "", "workspace name (defaults to current directory name)")
	initCmd.Flags().StringSlice("projects", nil, "comma-separated project names (default: the built-in project list)")
	initCmd.Flags().String("provider", "", "assistant provider (openai, offline)")
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, _ []string) error {
	dir := flagDir
	if dir == "" {
		dir = config.DefaultDir
	}

	absDir, err := filepath.Abs(dir)
	if err != nil {
		return fmt.Errorf("resolving path: %w", err)
	}

	if _, err := os.Stat(filepath.Join(absDir, config.ConfigFileName)); err == nil {
		return clierr.Newf(clierr.BoardAlreadyExists, "workspace already initialized in %s", absDir).
			WithDetails(map[string]any{"dir": absDir})
	}

	name, _ := cmd.Flags().GetString("name")
	if name == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("getting working directory: %w", err)
		}
		name = filepath.Base(cwd)
	}

	cfg := config.NewDefault(name)
	cfg.SetDir(absDir)

	if names, _ := cmd.Flags().GetStringSlice("projects"); len(names) > 0 {
		cfg.Projects = make([]config.ProjectConfig, len(names))
		for i, n := range names {
			cfg.Projects[i] = config.ProjectConfig{Name: n, File: task.DataFileName(n)}
		}
	}
	if v, _ := cmd.Flags().GetString("provider"); v != "" {
		cfg.Assistant.Provider = v
	}

	if err := cfg.Validate(); err != nil {
		return clierr.Wrap(clierr.InvalidInput, err, "%s", err.Error())
	}

	const dirMode = 0o750
	if err := os.MkdirAll(cfg.DataPath(), dirMode); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}

	// Empty stores, keeping any that already exist.
	for _, p := range cfg.Projects {
		path := cfg.ProjectPath(p)
		if _, err := os.Stat(path); err == nil {
			continue
		}
		if err := task.NewStore(path).Save([]*task.Task{}); err != nil {
			return err
		}
	}

	if err := cfg.Save(); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	if outputFormat() == output.FormatJSON {
		return output.JSON(os.Stdout, map[string]any{
			"status":   "initialized",
			"dir":      absDir,
			"name":     name,
			"config":   cfg.ConfigPath(),
			"data":     cfg.DataPath(),
			"projects": cfg.ProjectNames(),
		})
	}

	output.Messagef(os.Stdout, "Initialized workspace %q in %s", name, absDir)
	output.Messagef(os.Stdout, "  Config:    %s", cfg.ConfigPath())
	output.Messagef(os.Stdout, "  Data:      %s", cfg.DataPath())
	output.Messagef(os.Stdout, "  Projects:  %s", strings.Join(cfg.ProjectNames(), ", "))
	output.Messagef(os.Stdout, "  Assistant: %s", cfg.Assistant.Provider)
	return nil
}
