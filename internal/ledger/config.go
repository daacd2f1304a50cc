package ledger

import (
	"fmt"

	"github.com/mitchellh/mapstructure"

	appconfig "github.com/tidewell/aisclean/internal/config"
)

// PoolConfig holds database connection pool settings.
type PoolConfig struct {
	MaxOpenConns           int `yaml:"max_open_conns"`
	MaxIdleConns           int `yaml:"max_idle_conns"`
	ConnMaxLifetimeMinutes int `yaml:"conn_max_lifetime_minutes"`
}

// DatabaseConfig holds connection settings for the ledger database.
type DatabaseConfig struct {
	Type     string     `yaml:"type"`     // Database type ("sqlite", "mysql" or "postgres").
	Host     string     `yaml:"host"`     // Database host address.
	Port     int        `yaml:"port"`     // Database port number.
	Database string     `yaml:"database"` // Database name, or the file path for SQLite.
	User     string     `yaml:"user"`     // Database user.
	Password string     `yaml:"password"` // Database password.
	Sslmode  string     `yaml:"sslmode"`  // SSL mode for PostgreSQL connections.
	Pool     PoolConfig `yaml:"pool"`     // Connection pool settings.
}

// LookupDatabaseConfig resolves a named database configuration from the
// adapter section of the application configuration.
func LookupDatabaseConfig(cfg *appconfig.Config, name string) (DatabaseConfig, error) {
	var dbConfig DatabaseConfig

	rawGroup, ok := cfg.Aisclean.AdapterConfigs["database"]
	if !ok {
		return dbConfig, fmt.Errorf("no 'database' section found under adapter configs")
	}
	group, ok := rawGroup.(map[string]interface{})
	if !ok {
		return dbConfig, fmt.Errorf("invalid 'database' adapter configuration format: expected map, got %T", rawGroup)
	}
	raw, ok := group[name]
	if !ok {
		return dbConfig, fmt.Errorf("database configuration '%s' not found under 'adapter.database'", name)
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName: "yaml",
		Result:  &dbConfig,
	})
	if err != nil {
		return dbConfig, fmt.Errorf("failed to build decoder for database config '%s': %w", name, err)
	}
	if err := decoder.Decode(raw); err != nil {
		return dbConfig, fmt.Errorf("failed to decode database config '%s': %w", name, err)
	}
	return dbConfig, nil
}
