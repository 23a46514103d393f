// Package bootstrap wires configuration, telemetry and the products store
// into a ready-to-use application.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mrops-br/products-webapp/internal/app/seed"
	"github.com/mrops-br/products-webapp/internal/domain"
	"github.com/mrops-br/products-webapp/internal/infrastructure/config"
	"github.com/mrops-br/products-webapp/internal/infrastructure/repository/memory"
	"github.com/mrops-br/products-webapp/internal/infrastructure/repository/sqlstore"
	"github.com/mrops-br/products-webapp/internal/infrastructure/telemetry"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "products-api"

// App holds the long-lived components shared by every command
type App struct {
	Config    *config.Config
	Telemetry *telemetry.Telemetry
	Logger    *slog.Logger
	Tracer    trace.Tracer
	Meter     metric.Meter
	Store     domain.Store

	closeStore func() error
}

// New sets up telemetry and connects to the configured store. The schema is
// not touched; call InitializeDatabase for that.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	level, err := cfg.Log.SlogLevel()
	if err != nil {
		return nil, err
	}

	var telem *telemetry.Telemetry
	if cfg.OTLP.ExportEnabled {
		telem, err = telemetry.NewTelemetry(ctx, &cfg.OTLP, level)
	} else {
		telem, err = telemetry.NewNoOpTelemetry(ctx, &cfg.OTLP, level)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to initialize telemetry: %w", err)
	}

	app := &App{
		Config:     cfg,
		Telemetry:  telem,
		Logger:     telem.Logger,
		Tracer:     telem.TracerProvider.Tracer(instrumentationName),
		Meter:      telem.MeterProvider.Meter(instrumentationName),
		closeStore: func() error { return nil },
	}

	if err := app.openStore(ctx); err != nil {
		_ = telem.Shutdown(ctx)
		return nil, err
	}

	return app, nil
}

func (a *App) openStore(ctx context.Context) error {
	db := a.Config.Database
	if db.Dialect == config.DialectMemory {
		a.Store = memory.NewProductRepository(a.Tracer, a.Logger)
		a.Logger.Info("Using in-memory product store")
		return nil
	}

	store, err := sqlstore.Open(ctx, sqlstore.Options{
		Dialect: sqlstore.Dialect(db.Dialect),
		Driver:  db.Driver,
		DSN:     db.DSN,
	}, a.Tracer, a.Logger)
	if err != nil {
		return fmt.Errorf("failed to open product store: %w", err)
	}

	a.Store = store
	a.closeStore = store.Close
	return nil
}

// InitializeDatabase creates the schema and, unless seeding is disabled,
// seeds an empty products table. An error here is a fatal startup error.
func (a *App) InitializeDatabase(ctx context.Context) error {
	if !a.Config.Seed.Enabled {
		a.Logger.Info("Seeding disabled, ensuring schema only")
		if err := a.Store.EnsureSchema(ctx); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
		return nil
	}

	initializer := seed.NewInitializer(a.Store, a.Tracer, a.Meter, a.Logger,
		seed.WithGuard(a.Config.Seed.Guard),
	)
	return initializer.Initialize(ctx)
}

// Close releases the store and flushes telemetry
func (a *App) Close(ctx context.Context) error {
	return errors.Join(
		a.closeStore(),
		a.Telemetry.Shutdown(ctx),
	)
}
