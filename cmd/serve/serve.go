// Package serve runs the JSON HTTP API
package serve

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"fjacquet/spendwise/cmd/root"
	"fjacquet/spendwise/internal/logging"
	"fjacquet/spendwise/internal/ratelimit"

	"github.com/spf13/cobra"
)

const (
	shutdownTimeout = 30 * time.Second

	limiterSweepInterval = time.Minute
	limiterIdleTTL       = 10 * time.Minute
)

var address string

// Cmd represents the serve command
var Cmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the JSON API",
	Long: `Serve accounts, categories, rules, transactions and CSV import over
HTTP under /api. Requests act as the user in the X-User-ID header, or as
user.default_id when it is absent.

The server stops gracefully on SIGINT or SIGTERM.`,
	Args: cobra.NoArgs,
	RunE: run,
}

func init() {
	Cmd.Flags().StringVarP(&address, "addr", "a", "", "Listen address (default: server.address)")
}

func run(cmd *cobra.Command, args []string) error {
	app := root.App()
	cfg := app.GetConfig()
	if address == "" {
		address = cfg.Server.Address
	}

	ln, err := net.Listen("tcp", address)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", address, err)
	}

	srv := &http.Server{
		Handler:      app.NewAPIServer().Handler(),
		ReadTimeout:  cfg.ReadTimeout(),
		WriteTimeout: cfg.WriteTimeout(),
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return Serve(ctx, srv, ln, app.GetRateLimiter(), app.GetLogger())
}

// Serve runs srv on ln until ctx is done, then shuts it down gracefully.
// A non-nil limiter has its idle clients swept while the server runs.
func Serve(ctx context.Context, srv *http.Server, ln net.Listener, limiter *ratelimit.Store, logger logging.Logger) error {
	if limiter != nil {
		go limiter.RunCleanup(ctx, limiterSweepInterval, limiterIdleTTL)
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting API server", logging.F("address", ln.Addr().String()))
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	logger.Info("Server exited")
	return nil
}
