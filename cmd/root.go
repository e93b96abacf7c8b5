// Package cmd implements the prism CLI commands.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/twiced-technology-gmbh/prism/internal/clierr"
	"github.com/twiced-technology-gmbh/prism/internal/config"
	"github.com/twiced-technology-gmbh/prism/internal/output"
	"github.com/twiced-technology-gmbh/prism/internal/task"
)

// version is set at build time via ldflags.
var version = "dev"

// Global flags.
var (
	flagJSON     bool
	flagTable    bool
	flagCompact  bool
	flagDir      string
	flagProject  string
	flagNoColor  bool
	flagLogLevel string
)

var rootCmd = &cobra.Command{
	Use:   "prism",
	Short: "Personal task manager with assistant-driven task breakdown",
	Long: `prism keeps per-project task lists split into idea, dev and rlty,
breaks tasks into steps with a language model, and tracks the time spent on
each step. Run prism without arguments to open the TUI.`,
	Version:       version,
	SilenceErrors: true,
	SilenceUsage:  true,
	RunE:          runTUI,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		if flagNoColor || os.Getenv("NO_COLOR") != "" {
			output.DisableColor()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "output as JSON")
	rootCmd.PersistentFlags().BoolVar(&flagTable, "table", false, "output as table")
	rootCmd.PersistentFlags().BoolVar(&flagCompact, "compact", false, "compact one-line-per-record output")
	rootCmd.PersistentFlags().BoolVar(&flagCompact, "oneline", false, "alias for --compact")
	rootCmd.PersistentFlags().StringVar(&flagDir, "dir", "", "path to prism workspace directory")
	rootCmd.PersistentFlags().StringVarP(&flagProject, "project", "p", "", "project name (default: active project)")
	rootCmd.PersistentFlags().BoolVar(&flagNoColor, "no-color", false, "disable color output")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "diagnostic log level (debug, info, warn, error)")
}

// Execute runs the root command.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	_, err := rootCmd.ExecuteContextC(ctx)
	stop()
	if err == nil {
		return
	}
	os.Exit(reportError(os.Stdout, os.Stderr, err, outputFormat()))
}

// reportError prints err for the user and returns the process exit code.
// JSON output gets an error envelope on stdout; other formats print to
// stderr. A SilentError prints nothing.
func reportError(stdout, stderr io.Writer, err error, format output.Format) int {
	var silent *clierr.SilentError
	if errors.As(err, &silent) {
		return silent.Code
	}

	var cliErr *clierr.Error
	isCLI := errors.As(err, &cliErr)

	if format == output.FormatJSON {
		if isCLI {
			output.JSONError(stdout, cliErr.Code, cliErr.Message, cliErr.Details)
			return cliErr.ExitCode()
		}
		output.JSONError(stdout, clierr.InternalError, err.Error(), nil)
		return 2 //nolint:mnd // exit code 2 for internal errors
	}

	fmt.Fprintln(stderr, "Error:", err)
	if isCLI {
		return cliErr.ExitCode()
	}
	return 1
}

// defaultHomeDir returns the path to ~/.config/prism.
func defaultHomeDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, ".config", config.DefaultDir), nil
}

// resolveDir returns the absolute path to the workspace directory.
// Falls back to ~/.config/prism if no workspace is found in the current directory tree.
func resolveDir() (string, error) {
	if flagDir != "" {
		return flagDir, nil
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("getting working directory: %w", err)
	}

	dir, err := config.FindDir(cwd)
	if err == nil {
		return dir, nil
	}

	return defaultHomeDir()
}

// loadConfig finds and loads the workspace config.
// If the resolved directory is ~/.config/prism and it doesn't exist yet,
// it is auto-created with the default projects.
func loadConfig() (*config.Config, error) {
	dir, err := resolveDir()
	if err != nil {
		return nil, err
	}

	cfg, err := config.Load(dir)
	if err == nil {
		return cfg, nil
	}

	if !errors.Is(err, config.ErrNotFound) {
		return nil, err
	}
	homeDir, homeErr := defaultHomeDir()
	if homeErr != nil || dir != homeDir {
		return nil, clierr.Wrap(clierr.BoardNotFound, err, "%s", err.Error()).
			WithDetails(map[string]any{"dir": dir})
	}

	return config.Init(homeDir, config.DefaultDir)
}

// outputFormat returns the detected output format from flags/env.
func outputFormat() output.Format {
	return output.Detect(flagJSON, flagTable, flagCompact)
}

// printWarning writes a task store read warning to stderr.
func printWarning(w task.ReadWarning) {
	fmt.Fprintf(os.Stderr, "Warning: skipping malformed store %s: %v\n", w.File, w.Err)
}
