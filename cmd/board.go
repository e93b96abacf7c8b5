package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/twiced-technology-gmbh/prism/internal/board"
	"github.com/twiced-technology-gmbh/prism/internal/output"
	"github.com/twiced-technology-gmbh/prism/internal/watcher"
)

var flagWatch bool

var boardCmd = &cobra.Command{
	Use:     "board",
	Aliases: []string{"summary"},
	Short:   "Show project summary",
	Long: `Displays a summary of the project: task and step counts per category and
the time logged on each.

Use --watch to keep the display live-updating. The summary re-renders
automatically whenever the task store changes on disk (e.g., from the TUI in
another terminal). Press Ctrl+C to stop.`,
	RunE: runBoard,
}

func init() {
	rootCmd.AddCommand(boardCmd)
	boardCmd.Flags().BoolVarP(&flagWatch, "watch", "w", false, "live-update the summary on file changes")
}

func runBoard(_ *cobra.Command, _ []string) error {
	ws, err := openWorkspace()
	if err != nil {
		return err
	}
	b, _, err := ws.currentBoard()
	if err != nil {
		return err
	}

	if err := renderBoard(b); err != nil {
		return err
	}

	if !flagWatch {
		return nil
	}

	return watchBoard(ws, b)
}

func renderBoard(b *board.Board) error {
	tasks, err := b.Tasks()
	if err != nil {
		return err
	}

	summary := board.Summary(b.Project(), tasks)

	switch outputFormat() {
	case output.FormatJSON:
		return output.JSON(os.Stdout, summary)
	case output.FormatCompact:
		output.OverviewCompact(os.Stdout, summary)
	default:
		output.OverviewTable(os.Stdout, summary)
	}
	return nil
}

func watchBoard(ws *workspace, b *board.Board) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	w, err := watcher.New([]string{b.Store().Path}, func() {
		clearScreen()
		if renderErr := renderBoard(b); renderErr != nil {
			fmt.Fprintf(os.Stderr, "Warning: rendering summary: %v\n", renderErr)
		}
	})
	if err != nil {
		return fmt.Errorf("starting file watcher: %w", err)
	}
	defer w.Close()

	fmt.Fprintln(os.Stderr, "Watching for changes... (Ctrl+C to stop)")

	w.Run(ctx, func(watchErr error) {
		ws.logger.Warn("file watcher", "error", watchErr)
		fmt.Fprintf(os.Stderr, "Warning: file watcher: %v\n", watchErr)
	})

	return nil
}

// clearScreen sends ANSI escape codes to clear the terminal and move the
// cursor to the top-left corner.
func clearScreen() {
	fmt.Fprint(os.Stdout, "\033[2J\033[H")
}
