package tui

import (
	"context"
	"io"

	tea "github.com/charmbracelet/bubbletea"
	log "github.com/sirupsen/logrus"

	"tugestor-cli/internal/api"
	"tugestor-cli/internal/model"
	"tugestor-cli/internal/store"
	"tugestor-cli/internal/tasklist"
)

// Backend is the part of the REST gateway the TUI uses. *api.Client implements it.
type Backend interface {
	tasklist.Directory
	ListCategories(ctx context.Context) ([]model.Category, error)
	CreateCategory(ctx context.Context, req model.CategoryRequest) (model.Category, error)
	UpdateCategory(ctx context.Context, id int64, req model.CategoryRequest) (model.Category, error)
	DeleteCategory(ctx context.Context, id int64) error
	SearchCategories(ctx context.Context, partial string) ([]model.Category, error)
}

var _ Backend = (*api.Client)(nil)

type Options struct {
	Client *api.Client
	Log    *log.Logger
	Config *store.GlobalConfig
}

func Run(ctx context.Context, opts Options) error {
	logger := opts.Log
	if logger == nil {
		logger = log.New()
		logger.SetOutput(io.Discard)
	}
	var tc store.TUIConfig
	if opts.Config != nil && opts.Config.TUI != nil {
		tc = *opts.Config.TUI
	}
	applyColorProfilePreference()
	applyThemePreference(tc.Theme)
	applyGlyphPreference(tc.Glyphs)

	m := newAppModel(ctx, opts.Client, logger)
	defer m.ctl.Close()

	logger.Info("tui started")
	_, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	if err != nil {
		logger.WithError(err).Error("tui exited with error")
	}
	return err
}
