package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"tugestor-cli/internal/api"
	"tugestor-cli/internal/format"
	"tugestor-cli/internal/store"
	"tugestor-cli/internal/tasklist"
	"tugestor-cli/internal/tui"
)

type App struct {
	BaseURL    string
	Format     string
	PrettyJSON bool
	Debug      bool

	log *log.Logger
	cfg *store.GlobalConfig
}

func NewRootCmd() *cobra.Command {
	app := &App{}

	cmd := &cobra.Command{
		Use:          "tugestor",
		Short:        "TuGestor task manager (CLI + TUI)",
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  # Start the interactive TUI
  tugestor

  # Log in against the configured service
  tugestor login --email ana@example.com --password secreto

  # Scriptable commands
  tugestor tasks list --sort prioridad
  tugestor tasks list --filter estado --value VENCIDA

  # Direct task lookup (shortcut for: tugestor tasks show <task-id>)
  tugestor 42
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			// No subcommand => interactive TUI.
			if cmd.HasSubCommands() && len(args) == 0 {
				return runTUI(cmd, app)
			}
			return cmd.Help()
		},
	}

	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		app.log = newLogger(cmd.ErrOrStderr(), app.Debug)
		cfg, err := store.LoadConfig()
		if err != nil {
			// A broken config file should not lock users out of `config set-base-url`.
			app.log.WithError(err).Warn("ignoring unreadable config")
			cfg = &store.GlobalConfig{}
		}
		app.cfg = cfg
		if strings.TrimSpace(app.Format) == "" {
			app.Format = cfg.Format
		}
		return nil
	}

	cmd.PersistentFlags().StringVar(&app.BaseURL, "base-url", envOr("TUGESTOR_BASE_URL", ""), "Service base URL (default: config baseUrl, else "+store.DefaultBaseURL+")")
	cmd.PersistentFlags().StringVar(&app.Format, "format", envOr("TUGESTOR_FORMAT", ""), "Output format (json|edn|table)")
	cmd.PersistentFlags().BoolVar(&app.PrettyJSON, "pretty", false, "Pretty-print JSON/EDN output")
	cmd.PersistentFlags().BoolVar(&app.Debug, "debug", envBool("TUGESTOR_DEBUG"), "Log requests to stderr")

	cmd.AddCommand(newLoginCmd(app))
	cmd.AddCommand(newRegisterCmd(app))
	cmd.AddCommand(newLogoutCmd(app))
	cmd.AddCommand(newWhoamiCmd(app))
	cmd.AddCommand(newTasksCmd(app))
	cmd.AddCommand(newCategoriesCmd(app))
	cmd.AddCommand(newConfigCmd(app))
	cmd.AddCommand(newDocsCmd(app))
	cmd.AddCommand(newDevServerCmd(app))

	return cmd
}

// baseURL resolves --base-url / TUGESTOR_BASE_URL, then the config file, then the default.
func (a *App) baseURL() string {
	if v := strings.TrimSpace(a.BaseURL); v != "" {
		return strings.TrimRight(v, "/")
	}
	return a.cfg.EffectiveBaseURL()
}

func (a *App) session() (*store.SQLiteSessionStore, error) {
	return store.NewSQLiteSessionStore()
}

func (a *App) client() (*api.Client, error) {
	s, err := a.session()
	if err != nil {
		return nil, err
	}
	return api.New(a.baseURL(), s, api.WithLogger(a.log)), nil
}

func (a *App) controller() (*tasklist.Controller, *api.Client, error) {
	c, err := a.client()
	if err != nil {
		return nil, nil, err
	}
	return tasklist.New(c, a.log), c, nil
}

func runTUI(cmd *cobra.Command, app *App) error {
	sess, err := app.session()
	if err != nil {
		return writeErr(cmd, err)
	}
	if !store.IsLoggedIn(cmd.Context(), sess) {
		return writeErr(cmd, errNotLoggedIn)
	}
	logger, closeLog, err := fileLogger(app.Debug)
	if err != nil {
		return writeErr(cmd, err)
	}
	defer closeLog()
	client := api.New(app.baseURL(), sess, api.WithLogger(logger))
	return tui.Run(ctxOf(cmd), tui.Options{
		Client: client,
		Log:    logger,
		Config: app.cfg,
	})
}

func ctxOf(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func envOr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func envBool(k string) bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(k))) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}

func writeOut(cmd *cobra.Command, app *App, v any) error {
	return format.Write(cmd.OutOrStdout(), v, app.Format, app.PrettyJSON)
}

// writeErr prints the server-provided message when there is one.
func writeErr(cmd *cobra.Command, err error) error {
	fmt.Fprintln(cmd.ErrOrStderr(), api.UserMessage(err, err.Error()))
	return err
}
