package cli

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"

	"github.com/emiliopalmerini/mclaude-statusline/internal/adapters/git"
	"github.com/emiliopalmerini/mclaude-statusline/internal/adapters/limits"
	"github.com/emiliopalmerini/mclaude-statusline/internal/adapters/logger"
	"github.com/emiliopalmerini/mclaude-statusline/internal/adapters/otel"
	"github.com/emiliopalmerini/mclaude-statusline/internal/adapters/turso"
	"github.com/emiliopalmerini/mclaude-statusline/internal/config"
	"github.com/emiliopalmerini/mclaude-statusline/internal/migrate"
	"github.com/emiliopalmerini/mclaude-statusline/internal/ports"
	"github.com/emiliopalmerini/mclaude-statusline/internal/transcript"
)

// AppContext holds all shared dependencies for CLI commands.
type AppContext struct {
	Config   *config.Config
	Logger   *logger.Slog
	Home     string
	Catalog  *limits.Catalog
	Resolver ports.ModelLimitsResolver
	Parser   *transcript.Parser
	Exporter ports.MetricsExporter
	Git      ports.GitInspector

	db      *sql.DB
	history ports.SnapshotRepository
}

// NewAppContext loads the configuration from the environment and wires every
// dependency. The history database is only opened on first use.
func NewAppContext(ctx context.Context) (*AppContext, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get home directory: %w", err)
	}

	// concurrent status line invocations share one log file
	log := logger.New(logger.Options{File: cfg.LogFile, Debug: cfg.Debug}).With("pid", os.Getpid())
	for _, w := range cfg.Warnings {
		log.Warn("invalid configuration", "detail", w)
	}

	return newAppContext(cfg, log, home, newExporter(ctx, log)), nil
}

func newAppContext(cfg *config.Config, log *logger.Slog, home string, exporter ports.MetricsExporter) *AppContext {
	catalog := limits.NewCatalog(cfg.ModelCatalog, limits.WithLogger(log))
	resolver := limits.Default(catalog)
	if exporter == nil {
		exporter = otel.NewNoOpExporter()
	}

	return &AppContext{
		Config:   cfg,
		Logger:   log,
		Home:     home,
		Catalog:  catalog,
		Resolver: resolver,
		Parser: transcript.NewParser(transcript.Options{
			CharsPerToken:  cfg.CharsPerToken,
			SystemOverhead: cfg.SystemOverhead,
			Resolver:       resolver,
			Logger:         log,
		}),
		Exporter: exporter,
		Git:      git.NewInspector(),
	}
}

func newExporter(ctx context.Context, log *logger.Slog) ports.MetricsExporter {
	cfg, err := otel.LoadConfig()
	if err != nil {
		log.Warn("invalid OTEL configuration", "error", err)
		return otel.NewNoOpExporter()
	}
	if !cfg.Active() {
		return otel.NewNoOpExporter()
	}

	exp, err := otel.NewExporter(ctx, cfg)
	if err != nil {
		log.Error("failed to create OTEL exporter", "error", err)
		return otel.NewNoOpExporter()
	}
	return exp
}

// DB opens the history database without migrating it.
func (a *AppContext) DB() (*sql.DB, error) {
	if a.db != nil {
		return a.db, nil
	}
	db, err := turso.OpenNoPing(a.Config.DBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}
	a.db = db
	return db, nil
}

// History returns the snapshot repository, applying pending migrations first.
func (a *AppContext) History(ctx context.Context) (ports.SnapshotRepository, error) {
	if a.history != nil {
		return a.history, nil
	}
	db, err := a.DB()
	if err != nil {
		return nil, err
	}
	if err := migrate.RunAll(ctx, db); err != nil {
		return nil, fmt.Errorf("failed to migrate history database: %w", err)
	}
	a.history = turso.NewSnapshotRepository(db)
	return a.history, nil
}

// Close releases all resources held by the AppContext.
func (a *AppContext) Close(ctx context.Context) error {
	var errs []error
	if a.Exporter != nil {
		errs = append(errs, a.Exporter.Close(ctx))
	}
	if a.db != nil {
		errs = append(errs, a.db.Close())
	}
	errs = append(errs, a.Logger.Close())
	return errors.Join(errs...)
}
