package cmd

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/twiced-technology-gmbh/prism/internal/activity"
	"github.com/twiced-technology-gmbh/prism/internal/assistant"
	"github.com/twiced-technology-gmbh/prism/internal/board"
	"github.com/twiced-technology-gmbh/prism/internal/bridge"
	"github.com/twiced-technology-gmbh/prism/internal/clierr"
	"github.com/twiced-technology-gmbh/prism/internal/config"
	"github.com/twiced-technology-gmbh/prism/internal/task"
)

// workspace bundles what every command needs once the config is loaded.
type workspace struct {
	cfg       *config.Config
	level     string
	logger    *slog.Logger
	warn      func(task.ReadWarning)
	activity  *activity.Log
	assistant assistant.Completer
}

// newLogger builds the diagnostics logger: JSON lines on w at the given level.
func newLogger(w io.Writer, level string) *slog.Logger {
	if w == nil {
		w = os.Stderr
	}
	h := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: parseLevel(level)})
	return slog.New(h)
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "error":
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}

// openWorkspace loads the config and builds the shared collaborators. The
// assistant is built lazily on first use so that commands which never ask
// it still work without an API key.
func openWorkspace() (*workspace, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	level := cfg.LogLevel
	if flagLogLevel != "" {
		level = flagLogLevel
	}
	ws := &workspace{
		cfg:      cfg,
		level:    level,
		logger:   newLogger(os.Stderr, level),
		warn:     printWarning,
		activity: activity.NewLog(cfg.ActivityPath()),
	}
	ws.assistant = &lazyCompleter{build: ws.newCompleter}
	return ws, nil
}

// newCompleter picks the assistant implementation named by
// assistant.provider.
func (ws *workspace) newCompleter() (assistant.Completer, error) {
	a := ws.cfg.Assistant
	switch a.Provider {
	case config.ProviderStub, config.ProviderOffline:
		return assistant.Offline(), nil
	}

	key, err := assistant.ResolveAPIKey(a.APIKeyEnv, a.APIKeyFile)
	if err != nil {
		return nil, err
	}
	return assistant.NewOpenAI(assistant.Config{
		Model:      a.Model,
		BaseURL:    a.BaseURL,
		APIKey:     key,
		Timeout:    ws.cfg.AssistantTimeout(),
		MaxRetries: a.MaxRetries,
		Logger:     ws.logger.With("component", "assistant"),
	}), nil
}

// project resolves --project (or the active project).
func (ws *workspace) project() (config.ProjectConfig, error) {
	return ws.cfg.Project(flagProject)
}

// board opens the mutation engine over one project's store.
func (ws *workspace) board(p config.ProjectConfig) *board.Board {
	store := task.NewStore(ws.cfg.ProjectPath(p))
	store.Warn = ws.warn
	return board.New(store, ws.activity, ws.assistant, board.Options{
		Logger: ws.logger.With("project", p.Name),
	})
}

// currentBoard opens the board of --project (or the active project).
func (ws *workspace) currentBoard() (*board.Board, config.ProjectConfig, error) {
	p, err := ws.project()
	if err != nil {
		return nil, config.ProjectConfig{}, err
	}
	return ws.board(p), p, nil
}

// projects lists the configured projects with resolved paths.
func (ws *workspace) projects() []bridge.Project {
	out := make([]bridge.Project, len(ws.cfg.Projects))
	for i, p := range ws.cfg.Projects {
		out[i] = bridge.Project{
			Name:       p.Name,
			File:       ws.cfg.ProjectPath(p),
			TitleImage: ws.cfg.TitleImagePath(p),
		}
	}
	return out
}

// menu opens the presentation bridge on --project (or the active project).
func (ws *workspace) menu() (*bridge.Menu, error) {
	active := ws.cfg.ActiveIndex()
	if flagProject != "" {
		active = ws.cfg.ProjectIndex(flagProject)
		if active < 0 {
			_, err := ws.project()
			return nil, err
		}
	}

	byFile := make(map[string]config.ProjectConfig, len(ws.cfg.Projects))
	for _, p := range ws.cfg.Projects {
		byFile[ws.cfg.ProjectPath(p)] = p
	}
	open := func(p bridge.Project) *board.Board {
		return ws.board(byFile[p.File])
	}

	return bridge.NewMenu(ws.projects(), open, bridge.Options{
		Active:       active,
		ChartProject: ws.cfg.Chart.Project,
		ChartWidth:   ws.cfg.Chart.Width,
		Baseline:     ws.cfg.Chart.BaselineY,
		Padding:      ws.cfg.Chart.Padding,
		Location:     time.Local,
	})
}

// categoryTask returns the task at index within category of b.
func categoryTask(b *board.Board, category string, index int) (*task.Task, []*task.Task, error) {
	c, err := task.ParseCategory(category)
	if err != nil {
		return nil, nil, err
	}
	tasks, err := b.Category(c)
	if err != nil {
		return nil, nil, err
	}
	if err := task.CheckIndex(string(c)+" task", index, len(tasks)); err != nil {
		return nil, nil, err
	}
	return tasks[index], tasks, nil
}

// taskStep returns the step at index of t.
func taskStep(t *task.Task, index int) (*task.Step, error) {
	if err := task.CheckIndex("step", index, len(t.Steps)); err != nil {
		return nil, err
	}
	return t.Steps[index], nil
}

// lazyCompleter defers building the real completer until the first
// request, so configuration errors surface only for assistant commands.
type lazyCompleter struct {
	build func() (assistant.Completer, error)
	c     assistant.Completer
}

// Complete implements assistant.Completer.
func (l *lazyCompleter) Complete(ctx context.Context, rule, payload string) (string, error) {
	if l.c == nil {
		c, err := l.build()
		if err != nil {
			return "", clierr.Wrap(clierr.AssistantUnavailable, err, "assistant unavailable: %v", err)
		}
		l.c = c
	}
	return l.c.Complete(ctx, rule, payload)
}
