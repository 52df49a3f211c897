// Package cli provides common CLI initialization utilities shared by the
// alumni subcommands.
package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/joho/godotenv"

	"alumni/internal/aggregate"
	"alumni/internal/backend"
	"alumni/internal/cache"
	"alumni/internal/config"
	"alumni/internal/core"
	"alumni/internal/log"
	"alumni/internal/services"
)

// LoadEnvFile loads the .env file for local development.
// Errors are ignored silently as this is optional in production.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// LoadAndValidateConfig loads configuration from the environment and
// validates it.
func LoadAndValidateConfig() (*config.Config, error) {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// SetupLogger builds the application logger from cfg writing to out and
// installs it as the slog default.
func SetupLogger(cfg *config.Config, out io.Writer) *log.Logger {
	level, _ := config.ParseLevel(cfg.LogLevel)
	logger := log.New(log.Config{
		Level:     level,
		Format:    cfg.LogFormat,
		Component: log.ComponentApp,
		Output:    out,
	})
	log.SetDefault(logger)
	return logger
}

// AggregateOptions maps the aggregation settings of cfg.
func AggregateOptions(cfg *config.Config) aggregate.Options {
	return aggregate.Options{
		Basis:           aggregate.PercentBasis(cfg.PercentageBasis),
		MinSelected:     cfg.MinSelected,
		TopCourses:      cfg.TopCourses,
		TopUniversities: cfg.TopUniversities,
	}
}

// OpenTable opens the configured source and loads the alumni table from it.
// The returned source stays open for readiness probes; the caller closes it.
func OpenTable(ctx context.Context, cfg *config.Config, logger *log.Logger) (*core.Table, *backend.Result, error) {
	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return nil, nil, err
	}

	src, err := backend.NewFactory(logger).Open(ctx, bcfg)
	if err != nil {
		return nil, nil, fmt.Errorf("open %s source: %w", bcfg.Type, err)
	}

	table, err := services.LoadTable(ctx, src.Reader, logger)
	if err != nil {
		if cerr := src.Close(); cerr != nil {
			logger.Failure(ctx, "Failed to close source", log.OpLoad, cerr)
		}
		return nil, nil, err
	}
	return table, src, nil
}

// NewDashboard wires table into a dashboard service backed by a view cache
// sized from cfg. The returned manager owns the cache sweeper; it is not
// started.
func NewDashboard(cfg *config.Config, table *core.Table, origin string, logger *log.Logger) (*services.DashboardService, *cache.Manager, error) {
	views := cache.NewLRUCache[aggregate.View](cfg.ViewCacheSize, cfg.ViewCacheTTL)
	manager := cache.NewManager(logger)
	manager.Register(views)

	svc, err := services.NewDashboardService(table, AggregateOptions(cfg), views, origin, logger)
	if err != nil {
		return nil, nil, err
	}
	return svc, manager, nil
}
