package initdb

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/mrops-br/products-webapp/cmd/flags"
	"github.com/mrops-br/products-webapp/internal/app/bootstrap"
	"github.com/mrops-br/products-webapp/internal/infrastructure/config"
)

// NewInitCommand creates the init command
func NewInitCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create the database schema and seed the products table, then exit",
		Long: `Create the products table if it does not exist and insert the baseline
catalog (XBOX/Black, PS5/White) when the table is empty.

Running it again is a no-op. Use it to seed outside of request serving,
for example as a deployment step before starting replicas with SEED_ENABLED=false.`,
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
	app, err := bootstrap.New(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = app.Close(shutdownCtx)
	}()

	if err := app.InitializeDatabase(ctx); err != nil {
		return fmt.Errorf("database initialization failed: %w", err)
	}

	app.Logger.InfoContext(ctx, "Database initialized")
	return nil
}
