package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// Storage drivers. Memory serves the YAML fixture directly.
const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

var ErrInvalidConfig = errors.New("invalid config")

// Config holds everything the aenir CLI needs.
type Config struct {
	LogLevel string `yaml:"log_level" env:"AENIR_LOG_LEVEL"`

	Database DatabaseConfig `yaml:"database"`

	// AliasDir holds one sub-directory of alias files per game.
	AliasDir string `yaml:"alias_dir" env:"AENIR_ALIAS_DIR"`
	// Fixture is the YAML dataset used by the memory driver and by import.
	Fixture string `yaml:"fixture" env:"AENIR_FIXTURE"`
	// Game is the default ruleset id or name.
	Game string `yaml:"game" env:"AENIR_GAME"`
}

// DatabaseConfig selects and addresses the stat-table store.
type DatabaseConfig struct {
	Driver string `yaml:"driver" env:"AENIR_DB_DRIVER"`

	// SQLite
	Path string `yaml:"path" env:"AENIR_DB_PATH"`

	// PostgreSQL. DSN wins over the individual fields when set.
	DSN      string `yaml:"dsn" env:"AENIR_DB_DSN"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password" env:"AENIR_DB_PASSWORD"`
	DBName   string `yaml:"dbname"`
	SSLMode  string `yaml:"sslmode"`
}

// ConnString returns what the driver opens: a file path for SQLite, a
// connection URL for PostgreSQL.
func (d DatabaseConfig) ConnString() string {
	switch d.Driver {
	case DriverSQLite:
		return d.Path
	case DriverPostgres:
		if d.DSN != "" {
			return d.DSN
		}
		return fmt.Sprintf(
			"postgres://%s:%s@%s:%d/%s?sslmode=%s",
			d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
		)
	default:
		return ""
	}
}

// Default returns Config with the bundled sample data.
func Default() Config {
	return Config{
		LogLevel: "info",
		Database: DatabaseConfig{
			Driver:  DriverMemory,
			Path:    "aenir.db",
			Host:    "127.0.0.1",
			Port:    5432,
			User:    "aenir",
			DBName:  "aenir",
			SSLMode: "disable",
		},
		AliasDir: "testdata/aliases",
		Fixture:  "testdata/stats.yaml",
		Game:     "7",
	}
}

// Load reads config from a YAML file, then applies AENIR_* environment
// overrides. If the file doesn't exist, defaults are used.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parsing config %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}

	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("parse env: %w", err)
	}
	return cfg, cfg.Validate()
}

// Validate checks the driver and the fields it needs.
func (c Config) Validate() error {
	switch c.Database.Driver {
	case DriverMemory:
		if c.Fixture == "" {
			return fmt.Errorf("%w: memory driver needs a fixture", ErrInvalidConfig)
		}
	case DriverSQLite:
		if c.Database.Path == "" {
			return fmt.Errorf("%w: sqlite driver needs a path", ErrInvalidConfig)
		}
	case DriverPostgres:
	default:
		return fmt.Errorf("%w: unknown driver %q", ErrInvalidConfig, c.Database.Driver)
	}
	if c.AliasDir == "" {
		return fmt.Errorf("%w: alias_dir is empty", ErrInvalidConfig)
	}
	return nil
}
