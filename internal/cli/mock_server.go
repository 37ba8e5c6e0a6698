package cli

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"ttd-cli/internal/logging"
	"ttd-cli/internal/mockapi"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newMockServerCmd(app *App) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "mock-server",
		Short: "Serve a seeded fake backend for offline use",
		Long: `Serve a seeded fake backend for offline use.

Point the client at it with:
  ttd config set-base-url http://127.0.0.1:8089/api/
  ttd login --email budi@example.go.id --password secret`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			log, err := logging.New(app.LogFile, app.LogLevel)
			if err != nil {
				return writeErr(cmd, app, err)
			}
			defer func() { _ = log.Sync() }()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			ln, err := net.Listen("tcp", addr)
			if err != nil {
				return writeErr(cmd, app, err)
			}
			srv := &http.Server{
				Handler:           mockapi.Seeded().Handler(),
				ReadHeaderTimeout: 5 * time.Second,
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "mock backend listening on http://%s/api/\n", ln.Addr())
			log.Info("mock server started", zap.String("addr", ln.Addr().String()))

			errCh := make(chan error, 1)
			go func() { errCh <- srv.Serve(ln) }()

			select {
			case <-ctx.Done():
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				err = srv.Shutdown(shutdownCtx)
			case err = <-errCh:
			}
			if err != nil && !errors.Is(err, http.ErrServerClosed) {
				return writeErr(cmd, app, err)
			}
			log.Info("mock server stopped")
			return nil
		},
	}

	cmd.Flags().StringVar(&addr, "addr", envOr("TTD_MOCK_ADDR", "127.0.0.1:8089"), "Listen address")
	return cmd
}
