package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/viper"

	"github.com/mrops-br/products-webapp/internal/infrastructure/repository/sqlstore"
)

// DialectMemory keeps products in process memory. Used for local runs and demos.
const DialectMemory = "memory"

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	OTLP     OTLPConfig     `mapstructure:"otlp"`
	Database DatabaseConfig `mapstructure:"database"`
	Seed     SeedConfig     `mapstructure:"seed"`
	Log      LogConfig      `mapstructure:"log"`
}

type ServerConfig struct {
	Port string `mapstructure:"port"`
	Host string `mapstructure:"host"`
}

type OTLPConfig struct {
	Endpoint      string `mapstructure:"endpoint"`
	ServiceName   string `mapstructure:"service_name"`
	Environment   string `mapstructure:"environment"`
	ExportEnabled bool   `mapstructure:"export_enabled"`
}

type DatabaseConfig struct {
	Dialect string `mapstructure:"dialect"`
	Driver  string `mapstructure:"driver"`
	DSN     string `mapstructure:"dsn"`
}

type SeedConfig struct {
	Enabled bool `mapstructure:"enabled"`
	Guard   bool `mapstructure:"guard"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

// environment variable names per config key
var envBindings = map[string]string{
	"server.host":         "SERVER_HOST",
	"server.port":         "SERVER_PORT",
	"otlp.endpoint":       "OTEL_EXPORTER_OTLP_ENDPOINT",
	"otlp.service_name":   "OTEL_SERVICE_NAME",
	"otlp.environment":    "OTEL_ENVIRONMENT",
	"otlp.export_enabled": "OTEL_EXPORT_ENABLED",
	"database.dialect":    "DATABASE_DIALECT",
	"database.driver":     "DATABASE_DRIVER",
	"database.dsn":        "DATABASE_DSN",
	"seed.enabled":        "SEED_ENABLED",
	"seed.guard":          "SEED_GUARD",
	"log.level":           "LOG_LEVEL",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", "8080")
	v.SetDefault("otlp.endpoint", "localhost:4317")
	v.SetDefault("otlp.service_name", "products-api")
	v.SetDefault("otlp.environment", "development")
	v.SetDefault("otlp.export_enabled", true)
	v.SetDefault("database.dialect", string(sqlstore.DialectSQLite))
	v.SetDefault("database.driver", "")
	v.SetDefault("database.dsn", "webapp.db")
	v.SetDefault("seed.enabled", true)
	v.SetDefault("seed.guard", false)
	v.SetDefault("log.level", "debug")
}

// LoadConfig loads configuration from defaults, an optional config file and
// environment variables, in increasing order of precedence.
func LoadConfig(configFile string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", env, err)
		}
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", configFile, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks the combination of settings
func (c *Config) Validate() error {
	var errs []error

	if c.Server.Port == "" {
		errs = append(errs, errors.New("server port is required"))
	}

	switch c.Database.Dialect {
	case DialectMemory:
		if c.Database.Driver != "" {
			errs = append(errs, fmt.Errorf("dialect %q takes no driver", DialectMemory))
		}
	default:
		if err := sqlstore.Dialect(c.Database.Dialect).Validate(c.Database.Driver); err != nil {
			errs = append(errs, err)
		}
		if strings.TrimSpace(c.Database.DSN) == "" {
			errs = append(errs, fmt.Errorf("database dsn is required for dialect %q", c.Database.Dialect))
		}
	}

	if _, err := c.Log.SlogLevel(); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

// SlogLevel parses the configured log level
func (l LogConfig) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(l.Level)); err != nil {
		return 0, fmt.Errorf("invalid log level %q", l.Level)
	}
	return level, nil
}
