package cli

import (
	"net/url"
	"strings"

	"github.com/spf13/cobra"

	"tugestor-cli/internal/format"
	"tugestor-cli/internal/store"
)

func newConfigCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Local configuration (~/.tugestor/config.json)",
	}
	cmd.AddCommand(newConfigShowCmd(app))
	cmd.AddCommand(newConfigSetBaseURLCmd(app))
	cmd.AddCommand(newConfigSetFormatCmd(app))
	return cmd
}

func newConfigShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := store.ConfigPath()
			if err != nil {
				return writeErr(cmd, err)
			}
			statePath, err := store.StatePath()
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": map[string]any{
				"configPath":        path,
				"statePath":         statePath,
				"baseUrl":           app.baseURL(),
				"configuredBaseUrl": app.cfg.BaseURL,
				"format":            app.cfg.Format,
			}})
		},
	}
}

func newConfigSetBaseURLCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "set-base-url <url>",
		Short: "Persist the service base URL",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw := strings.TrimRight(strings.TrimSpace(args[0]), "/")
			u, err := url.Parse(raw)
			if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
				return writeErr(cmd, errInvalidArg("url", args[0], "http(s)://host[:port]/path"))
			}
			app.cfg.BaseURL = raw
			if err := store.SaveConfig(app.cfg); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": map[string]any{"baseUrl": raw}})
		},
	}
}

func newConfigSetFormatCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "set-format <" + strings.Join(format.Formats, "|") + ">",
		Short: "Persist the default output format",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f := strings.ToLower(strings.TrimSpace(args[0]))
			ok := false
			for _, x := range format.Formats {
				ok = ok || x == f
			}
			if !ok {
				return writeErr(cmd, errInvalidArg("format", args[0], strings.Join(format.Formats, "|")))
			}
			app.cfg.Format = f
			if err := store.SaveConfig(app.cfg); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": map[string]any{"format": f}})
		},
	}
}
