// Package config loads the service configuration from config.yaml.
package config

import (
	"fmt"
	"net/url"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// ServerConfig describes the HTTP listener and the address used to build
// Location headers on create responses.
type ServerConfig struct {
	Scheme    string   `yaml:"scheme"`
	Authority string   `yaml:"authority"`
	Port      int      `yaml:"port"`
	CORS      []string `yaml:"cors"`
}

// DatabaseConfig describes the relational database connection and pool limits.
type DatabaseConfig struct {
	Engine         string        `yaml:"engine"`
	Server         string        `yaml:"server"`
	Port           int           `yaml:"port"`
	Username       string        `yaml:"username"`
	Password       string        `yaml:"password"`
	Name           string        `yaml:"name"`
	Schema         string        `yaml:"schema"`
	SSLMode        string        `yaml:"sslmode"`
	ConnectionsMax int           `yaml:"connections_max"`
	ConnectionsMin int           `yaml:"connections_min"`
	TimeoutConnect time.Duration `yaml:"timeout_connect"`
	TimeoutIdle    time.Duration `yaml:"timeout_idle"`
	Lifetime       time.Duration `yaml:"lifetime"`
}

// AuthConfig describes the identity provider integration.
type AuthConfig struct {
	// JWKS lists the key-set endpoints fetched into the key cache.
	JWKS []string `yaml:"jwks"`
	// Audience is the required "aud" claim of inbound tokens.
	Audience string `yaml:"audience"`
}

// LoggingConfig describes log output.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Config is the root configuration document.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Auth     AuthConfig     `yaml:"auth"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Server: ServerConfig{Scheme: "http", Authority: "localhost", Port: 5000, CORS: []string{"*"}},
		Database: DatabaseConfig{
			Engine:         "postgres",
			Server:         "localhost",
			Port:           5432,
			Username:       "fpa",
			Name:           "fpa",
			Schema:         "public",
			SSLMode:        "disable",
			ConnectionsMax: 10,
			ConnectionsMin: 1,
			TimeoutConnect: 5 * time.Second,
			TimeoutIdle:    5 * time.Minute,
			Lifetime:       30 * time.Minute,
		},
		Logging: LoggingConfig{Level: "info", Format: "json"},
	}
}

// Load reads and validates the configuration at path. The database password
// may be overridden with the FPA_DATABASE_PASSWORD environment variable.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if password := os.Getenv("FPA_DATABASE_PASSWORD"); password != "" {
		cfg.Database.Password = password
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the fields the service cannot run without.
func (c *Config) Validate() error {
	if c.Server.Port == 0 {
		return fmt.Errorf("server: port is required")
	}
	if c.Database.Server == "" || c.Database.Name == "" {
		return fmt.Errorf("database: server and name are required")
	}
	if len(c.Auth.JWKS) == 0 {
		return fmt.Errorf("auth: at least one jwks endpoint is required")
	}
	return nil
}

// DSN assembles the database connection string.
func (c *DatabaseConfig) DSN() string {
	u := url.URL{
		Scheme: c.Engine,
		User:   url.UserPassword(c.Username, c.Password),
		Host:   fmt.Sprintf("%s:%d", c.Server, c.Port),
		Path:   c.Name,
	}
	q := u.Query()
	if c.SSLMode != "" {
		q.Set("sslmode", c.SSLMode)
	}
	if c.Schema != "" {
		q.Set("search_path", c.Schema)
	}
	u.RawQuery = q.Encode()
	return u.String()
}

// Address returns the listener address for the HTTP server.
func (c *ServerConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// BaseURL returns the external address used in Location headers.
func (c *ServerConfig) BaseURL() string {
	return fmt.Sprintf("%s://%s:%d", c.Scheme, c.Authority, c.Port)
}
