package serve

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/mrops-br/products-webapp/cmd/flags"
	"github.com/mrops-br/products-webapp/internal/app/bootstrap"
	"github.com/mrops-br/products-webapp/internal/app/service"
	"github.com/mrops-br/products-webapp/internal/infrastructure/config"
	"github.com/mrops-br/products-webapp/internal/infrastructure/http"
	"github.com/mrops-br/products-webapp/internal/infrastructure/http/handler"
)

const shutdownTimeout = 5 * time.Second

// NewServeCommand creates the serve command
func NewServeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Initialize the database and serve the products API",
		Long: `Initialize the database (create the schema, seed an empty products table)
and start the HTTP API. Startup aborts if initialization fails.`,
	}

	dbFlags := flags.NewDatabase(cmd)
	cmd.RunE = func(cmd *cobra.Command, _ []string) error {
		cfg, err := dbFlags.LoadConfig()
		if err != nil {
			return err
		}
		return run(cmd.Context(), cfg)
	}
	return cmd
}

func run(ctx context.Context, cfg *config.Config) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	app, err := bootstrap.New(ctx, cfg)
	if err != nil {
		return err
	}

	// Ensure telemetry is shutdown on exit
	defer func() {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer shutdownCancel()
		if err := app.Close(shutdownCtx); err != nil {
			app.Logger.Error("Error shutting down", slog.String("error", err.Error()))
		}
	}()

	logger := app.Logger
	logger.Info("Starting Products API")

	if err := app.InitializeDatabase(ctx); err != nil {
		return fmt.Errorf("database initialization failed: %w", err)
	}

	productService := service.NewProductService(app.Store, app.Tracer, app.Meter, logger)
	productHandler := handler.NewProductHandler(productService, logger)
	ready := func(ctx context.Context) error {
		_, err := app.Store.Count(ctx)
		return err
	}
	server := http.NewServer(&cfg.Server, productHandler, ready, logger, app.Telemetry)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case <-quit:
		logger.Info("Shutting down server...")
	case <-ctx.Done():
		logger.Info("Context cancelled, shutting down...")
	case err := <-errCh:
		if err != nil {
			logger.Error("Server error", slog.String("error", err.Error()))
			return err
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	logger.Info("Server stopped")
	return nil
}
