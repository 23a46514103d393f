package flags_test

import (
	"path/filepath"
	"testing"

	qt "github.com/frankban/quicktest"
	"github.com/spf13/cobra"

	"github.com/mrops-br/products-webapp/cmd/flags"
)

func newCommand(c *qt.C, args ...string) flags.Database {
	cmd := &cobra.Command{Use: "test"}
	f := flags.NewDatabase(cmd)
	c.Assert(cmd.ParseFlags(args), qt.IsNil)
	return f
}

func TestLoadConfigOverrides(t *testing.T) {
	c := qt.New(t)
	dsn := filepath.Join(t.TempDir(), "products.db")

	cfg, err := newCommand(c, "--dialect", "sqlite", "--driver", "sqlite3", "--dsn", dsn).LoadConfig()
	c.Assert(err, qt.IsNil)
	c.Assert(cfg.Database.Dialect, qt.Equals, "sqlite")
	c.Assert(cfg.Database.Driver, qt.Equals, "sqlite3")
	c.Assert(cfg.Database.DSN, qt.Equals, dsn)
}

func TestLoadConfigRejectsInvalidOverride(t *testing.T) {
	c := qt.New(t)

	_, err := newCommand(c, "--dialect", "memory", "--driver", "pgx").LoadConfig()
	c.Assert(err, qt.ErrorMatches, `configuration validation failed: dialect "memory" takes no driver`)
}

func TestLoadConfigMissingFile(t *testing.T) {
	c := qt.New(t)

	_, err := newCommand(c, "--config", filepath.Join(t.TempDir(), "missing.yaml")).LoadConfig()
	c.Assert(err, qt.ErrorMatches, `failed to read config file .*`)
}
