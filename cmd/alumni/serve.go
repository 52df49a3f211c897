package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"alumni/internal/cli"
	apphttp "alumni/internal/http"
	"alumni/internal/log"
)

const shutdownTimeout = 30 * time.Second

func newServeCmd() *cobra.Command {
	var port string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the dashboard HTTP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), port)
		},
	}
	cmd.Flags().StringVar(&port, "port", "", "listen port (overrides PORT)")
	return cmd
}

func runServe(parent context.Context, port string) error {
	if parent == nil {
		parent = context.Background()
	}
	cli.LoadEnvFile()

	cfg, err := cli.LoadAndValidateConfig()
	if err != nil {
		return err
	}
	if port != "" {
		cfg.Port = port
	}
	logger := cli.SetupLogger(cfg, os.Stdout)

	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	table, src, err := cli.OpenTable(ctx, cfg, logger)
	if err != nil {
		logger.Failure(ctx, "Failed to load alumni table", log.OpLoad, err, log.FieldSource, cfg.DataSource)
		return err
	}
	defer func() {
		if err := src.Close(); err != nil {
			logger.Failure(context.Background(), "Failed to close source", log.OpShutdown, err)
		}
	}()

	svc, manager, err := cli.NewDashboard(cfg, table, src.Origin, logger)
	if err != nil {
		return err
	}
	manager.StartCleanup(cfg.ViewCacheTTL)

	srv, err := apphttp.NewServer(":"+cfg.Port, svc, apphttp.Options{
		Logger:       logger,
		CacheManager: manager,
		Ready:        src.Ping,
	})
	if err != nil {
		manager.Stop()
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.InfoContext(gctx, "Starting alumni server",
			"port", cfg.Port,
			log.FieldSource, src.Origin,
			log.FieldRecords, table.Len(),
			"percentage_basis", cfg.PercentageBasis)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.InfoContext(context.Background(), "Shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Failure(context.Background(), "Server error", log.OpShutdown, err, "port", cfg.Port)
		return err
	}
	logger.InfoContext(context.Background(), "Server stopped gracefully")
	return nil
}
