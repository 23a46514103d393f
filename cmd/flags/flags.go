// Package flags holds the command-line flags shared by every subcommand.
package flags

import (
	"fmt"

	"github.com/go-extras/cobraflags"
	"github.com/spf13/cobra"

	"github.com/mrops-br/products-webapp/internal/infrastructure/config"
)

const (
	configFlag  = "config"
	dialectFlag = "dialect"
	driverFlag  = "driver"
	dsnFlag     = "dsn"
)

// Database is the set of configuration flags registered on a command
type Database map[string]cobraflags.Flag

// NewDatabase creates the flags and registers them on cmd
func NewDatabase(cmd *cobra.Command) Database {
	f := Database{
		configFlag: &cobraflags.StringFlag{
			Name:  configFlag,
			Value: "",
			Usage: "Path to a YAML/TOML/JSON config file",
		},
		dialectFlag: &cobraflags.StringFlag{
			Name:  dialectFlag,
			Value: "",
			Usage: "Database dialect (memory, sqlite, postgres, mysql). Overrides DATABASE_DIALECT",
		},
		driverFlag: &cobraflags.StringFlag{
			Name:  driverFlag,
			Value: "",
			Usage: "database/sql driver (sqlite, sqlite3, pgx, postgres, mysql). Overrides DATABASE_DRIVER",
		},
		dsnFlag: &cobraflags.StringFlag{
			Name:  dsnFlag,
			Value: "",
			Usage: "Database connection string or SQLite file path. Overrides DATABASE_DSN",
		},
	}
	cobraflags.RegisterMap(cmd, f)
	return f
}

// LoadConfig loads the configuration and applies the flags on top of it
func (f Database) LoadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfig(f[configFlag].GetString())
	if err != nil {
		return nil, err
	}

	overridden := false
	if v := f[dialectFlag].GetString(); v != "" {
		cfg.Database.Dialect = v
		overridden = true
	}
	if v := f[driverFlag].GetString(); v != "" {
		cfg.Database.Driver = v
		overridden = true
	}
	if v := f[dsnFlag].GetString(); v != "" {
		cfg.Database.DSN = v
		overridden = true
	}

	if overridden {
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("configuration validation failed: %w", err)
		}
	}
	return cfg, nil
}
