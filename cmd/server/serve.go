package main

import (
	"context"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/csvview/internal/core"
	"github.com/JonMunkholm/csvview/internal/web"
)

func serveCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.serve(cmd.Context())
		},
	}
}

// serve runs the server until SIGINT or SIGTERM, then drains in-flight runs
// within SERVER_SHUTDOWN_TIMEOUT.
func (a *app) serve(parent context.Context) error {
	cfg := a.cfg
	slog.Info("configuration loaded",
		"port", cfg.Server.Port,
		"upload_max_concurrent", cfg.Upload.MaxConcurrent,
		"page_size", cfg.Viewer.PageSize,
		"rate_limit_enabled", cfg.Rate.Enabled,
	)

	viewer := core.NewViewer(cfg)
	server := web.NewServer(viewer, cfg)

	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if status := viewer.Status(); status.Active > 0 {
		slog.Info("waiting for runs to complete", "active", status.Active)
	}
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown error", "error", err)
		return err
	}

	slog.Info("server stopped")
	return nil
}
