package cmd

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/twiced-technology-gmbh/prism/internal/task"
	"github.com/twiced-technology-gmbh/prism/internal/tui"
	"github.com/twiced-technology-gmbh/prism/internal/watcher"
)

const tuiLogFile = "prism.log"

func runTUI(cmd *cobra.Command, _ []string) error {
	ws, err := openWorkspace()
	if err != nil {
		return err
	}
	// Diagnostics would corrupt the alt screen, so they go to a file.
	const logMode = 0o600
	f, err := os.OpenFile(filepath.Join(ws.cfg.Dir(), tuiLogFile), os.O_CREATE|os.O_APPEND|os.O_WRONLY, logMode)
	if err == nil {
		defer f.Close()
		ws.logger = newLogger(f, ws.level)
	} else {
		ws.logger = slog.New(slog.DiscardHandler)
	}
	ws.warn = func(w task.ReadWarning) {
		ws.logger.Warn("skipping malformed store", "file", w.File, "error", w.Err)
	}

	menu, err := ws.menu()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	model := tui.NewBoard(menu, tui.Options{
		Title:      ws.cfg.Board.Name,
		TitleLines: ws.cfg.TitleLines(),
		BodyLines:  ws.cfg.TUI.BodyLines,
		Context:    ctx,
	})
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithMouseCellMotion(), tea.WithContext(ctx))

	go startTUIWatcher(ctx, ws, model, p)

	_, err = p.Run()
	return err
}

func startTUIWatcher(ctx context.Context, ws *workspace, model *tui.Board, p *tea.Program) {
	w, err := watcher.New(model.WatchPaths(), func() {
		p.Send(tui.ReloadMsg{})
	})
	if err != nil {
		ws.logger.Warn("live reload disabled", "error", err)
		return // non-fatal: TUI works without live refresh
	}
	defer w.Close()
	w.Run(ctx, func(watchErr error) {
		ws.logger.Warn("file watcher", "error", watchErr)
	})
}
