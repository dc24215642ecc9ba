package cli

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"tugestor-cli/internal/devserver"
)

func newDevServerCmd(app *App) *cobra.Command {
	var addr string
	var secret string

	cmd := &cobra.Command{
		Use:   "dev-server",
		Short: "Run an in-memory TuGestor service for local use",
		Long: "Serves the REST API under /api with in-memory users, tasks and categories.\n" +
			"Point the client at it with --base-url http://localhost:8080/api.",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(ctxOf(cmd), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			srv := devserver.New(devserver.Options{Secret: []byte(secret), Logger: app.log})
			errCh := make(chan error, 1)
			go func() { errCh <- srv.Start(addr) }()

			select {
			case err := <-errCh:
				if err != nil {
					return writeErr(cmd, err)
				}
				return nil
			case <-ctx.Done():
			}
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", envOr("TUGESTOR_DEV_ADDR", ":8080"), "Listen address")
	cmd.Flags().StringVar(&secret, "secret", envOr("TUGESTOR_DEV_SECRET", ""), "HS256 signing secret (default: fixed development secret)")
	return cmd
}
