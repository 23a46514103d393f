package config_test

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/mrops-br/products-webapp/internal/infrastructure/config"
)

func TestLoadConfigDefaults(t *testing.T) {
	c := qt.New(t)

	cfg, err := config.LoadConfig("")
	c.Assert(err, qt.IsNil)
	c.Assert(cfg.Server, qt.Equals, config.ServerConfig{Host: "0.0.0.0", Port: "8080"})
	c.Assert(cfg.OTLP.ServiceName, qt.Equals, "products-api")
	c.Assert(cfg.OTLP.ExportEnabled, qt.IsTrue)
	c.Assert(cfg.Database, qt.Equals, config.DatabaseConfig{Dialect: "sqlite", DSN: "webapp.db"})
	c.Assert(cfg.Seed, qt.Equals, config.SeedConfig{Enabled: true})

	level, err := cfg.Log.SlogLevel()
	c.Assert(err, qt.IsNil)
	c.Assert(level, qt.Equals, slog.LevelDebug)
}

func TestLoadConfigEnvironment(t *testing.T) {
	c := qt.New(t)

	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("DATABASE_DIALECT", "postgres")
	t.Setenv("DATABASE_DRIVER", "postgres")
	t.Setenv("DATABASE_DSN", "postgres://app@localhost/webapp")
	t.Setenv("SEED_GUARD", "true")
	t.Setenv("OTEL_EXPORT_ENABLED", "false")
	t.Setenv("LOG_LEVEL", "warn")

	cfg, err := config.LoadConfig("")
	c.Assert(err, qt.IsNil)
	c.Assert(cfg.Server.Port, qt.Equals, "9090")
	c.Assert(cfg.Database, qt.Equals, config.DatabaseConfig{
		Dialect: "postgres",
		Driver:  "postgres",
		DSN:     "postgres://app@localhost/webapp",
	})
	c.Assert(cfg.Seed.Guard, qt.IsTrue)
	c.Assert(cfg.OTLP.ExportEnabled, qt.IsFalse)

	level, err := cfg.Log.SlogLevel()
	c.Assert(err, qt.IsNil)
	c.Assert(level, qt.Equals, slog.LevelWarn)
}

func TestLoadConfigFile(t *testing.T) {
	c := qt.New(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	err := os.WriteFile(path, []byte(`
server:
  port: "7070"
database:
  dialect: mysql
  dsn: "app:secret@tcp(localhost:3306)/webapp"
seed:
  enabled: false
`), 0o600)
	c.Assert(err, qt.IsNil)

	t.Setenv("SERVER_PORT", "6060")

	cfg, err := config.LoadConfig(path)
	c.Assert(err, qt.IsNil)
	c.Assert(cfg.Server.Port, qt.Equals, "6060", qt.Commentf("environment overrides the file"))
	c.Assert(cfg.Database.Dialect, qt.Equals, "mysql")
	c.Assert(cfg.Seed.Enabled, qt.IsFalse)
}

func TestLoadConfigMissingFile(t *testing.T) {
	c := qt.New(t)

	_, err := config.LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	c.Assert(err, qt.ErrorMatches, "failed to read config file .*")
}

func TestValidate(t *testing.T) {
	valid := func() config.Config {
		return config.Config{
			Server:   config.ServerConfig{Port: "8080"},
			Database: config.DatabaseConfig{Dialect: "sqlite", DSN: "webapp.db"},
			Log:      config.LogConfig{Level: "info"},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*config.Config)
		wantErr string
	}{
		{
			name:   "valid sqlite",
			mutate: func(*config.Config) {},
		},
		{
			name: "memory needs no dsn",
			mutate: func(cfg *config.Config) {
				cfg.Database = config.DatabaseConfig{Dialect: config.DialectMemory}
			},
		},
		{
			name: "memory rejects driver",
			mutate: func(cfg *config.Config) {
				cfg.Database = config.DatabaseConfig{Dialect: config.DialectMemory, Driver: "sqlite"}
			},
			wantErr: `dialect "memory" takes no driver`,
		},
		{
			name: "unknown dialect",
			mutate: func(cfg *config.Config) {
				cfg.Database.Dialect = "oracle"
			},
			wantErr: `unsupported dialect "oracle"`,
		},
		{
			name: "driver from another dialect",
			mutate: func(cfg *config.Config) {
				cfg.Database.Driver = "pgx"
			},
			wantErr: `driver "pgx" cannot be used with dialect "sqlite".*`,
		},
		{
			name: "empty dsn",
			mutate: func(cfg *config.Config) {
				cfg.Database.DSN = ""
			},
			wantErr: `database dsn is required for dialect "sqlite"`,
		},
		{
			name: "bad log level",
			mutate: func(cfg *config.Config) {
				cfg.Log.Level = "loud"
			},
			wantErr: `invalid log level "loud"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := qt.New(t)

			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				c.Assert(err, qt.IsNil)
				return
			}
			c.Assert(err, qt.ErrorMatches, tt.wantErr)
		})
	}
}
