// Package config provides backend connection configuration for qbench.
package config

import (
	"fmt"
	"net/url"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds per-backend connection settings. Run parameters
// (concurrency, durations, query selection) live on the bench Context
// and come from CLI flags, not from this file.
//
// Example YAML:
//
//	postgres:
//	  host: localhost
//	  port: 5432
//	  user: qbench
//	  password: secret
//	  database: imdb
//	mysql:
//	  host: localhost
//	  port: 3306
//	  user: qbench
//	  password: secret
//	  database: imdb
//	http:
//	  baseUrl: http://localhost:8080
type Config struct {
	Postgres DBConfig   `yaml:"postgres"`
	MySQL    DBConfig   `yaml:"mysql"`
	HTTP     HTTPConfig `yaml:"http"`
}

// DBConfig contains connection settings for a SQL backend.
type DBConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
	SSLMode  string `yaml:"sslmode,omitempty"` // postgres only
}

// HTTPConfig contains connection settings for the HTTP backend.
type HTTPConfig struct {
	BaseURL string `yaml:"baseUrl"`
}

// LoadConfig loads a YAML configuration file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return ParseConfig(data)
}

// ParseConfig parses YAML configuration data and applies defaults.
func ParseConfig(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML config: %w", err)
	}

	ApplyDefaults(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns the configuration used when no file is given:
// local backends with conventional ports and the imdb sample database.
func Default() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}

// ApplyDefaults fills in unset fields.
func ApplyDefaults(cfg *Config) {
	if cfg.Postgres.Host == "" {
		cfg.Postgres.Host = "localhost"
	}
	if cfg.Postgres.Port == 0 {
		cfg.Postgres.Port = 5432
	}
	if cfg.Postgres.User == "" {
		cfg.Postgres.User = "qbench"
	}
	if cfg.Postgres.Database == "" {
		cfg.Postgres.Database = "imdb"
	}
	if cfg.Postgres.SSLMode == "" {
		cfg.Postgres.SSLMode = "disable"
	}

	if cfg.MySQL.Host == "" {
		cfg.MySQL.Host = "localhost"
	}
	if cfg.MySQL.Port == 0 {
		cfg.MySQL.Port = 3306
	}
	if cfg.MySQL.User == "" {
		cfg.MySQL.User = "qbench"
	}
	if cfg.MySQL.Database == "" {
		cfg.MySQL.Database = "imdb"
	}

	if cfg.HTTP.BaseURL == "" {
		cfg.HTTP.BaseURL = "http://localhost:8080"
	}
}

// Validate checks the configuration for values that cannot work.
func (c *Config) Validate() error {
	errs := &ValidationErrors{}

	if c.Postgres.Port < 0 || c.Postgres.Port > 65535 {
		errs.Add("postgres.port", fmt.Sprintf("invalid port %d", c.Postgres.Port))
	}
	if c.MySQL.Port < 0 || c.MySQL.Port > 65535 {
		errs.Add("mysql.port", fmt.Sprintf("invalid port %d", c.MySQL.Port))
	}

	if c.HTTP.BaseURL != "" {
		u, err := url.Parse(c.HTTP.BaseURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			errs.Add("http.baseUrl", fmt.Sprintf("invalid base URL %q", c.HTTP.BaseURL))
		}
	}

	if errs.HasErrors() {
		return errs
	}
	return nil
}
