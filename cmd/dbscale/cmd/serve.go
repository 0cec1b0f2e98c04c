package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"dbscale/app/handler"
	"dbscale/app/router"
	"dbscale/pkg/logger"
	"dbscale/pkg/runner"

	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP trigger endpoint",
	Long: `Run an HTTP server exposing POST /api/v1/scale/up and /api/v1/scale/down
so alert rules and schedulers can trigger runs by webhook instead of shelling
out. Every request executes one complete run against the configured database.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve(cmd.Context())
	},
}

func serve(ctx context.Context) error {
	defer logger.Sync()

	r, err := runner.New(cfg)
	if err != nil {
		logger.Errorf("initialization failed: %v", err)
		return err
	}

	engine := router.New(cfg.Server.Mode, handler.NewScaleHandler(r))

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: engine,
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Infof("HTTP trigger server listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		logger.Errorf("server error: %v", err)
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down...")

	// In-flight scaling runs include convergence waits, give them time to
	// finish before the process exits.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 150*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("forced shutdown: %v", err)
		return err
	}

	logger.Info("server stopped")
	return nil
}

func init() {
	serveCmd.Flags().Int("port", 0, "listen port (overrides config)")
	rootCmd.AddCommand(serveCmd)
}
