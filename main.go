package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/mrops-br/products-webapp/cmd/initdb"
	"github.com/mrops-br/products-webapp/cmd/serve"
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "products-api",
		Short:         "Products web application",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.AddCommand(serve.NewServeCommand())
	rootCmd.AddCommand(initdb.NewInitCommand())

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		slog.Error("Fatal error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
