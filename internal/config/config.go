package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Auth     AuthConfig     `yaml:"auth"`
	Log      LogConfig      `yaml:"log"`
	Program  ProgramConfig  `yaml:"program"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// Addr returns host:port for net.Listen.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

type DatabaseConfig struct {
	Driver   string `yaml:"driver"`
	Path     string `yaml:"path"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"sslmode"`
}

// AuthConfig protects write endpoints when APIKey is set.
type AuthConfig struct {
	APIKey string `yaml:"api_key"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	File   string `yaml:"file"`
	Stdout bool   `yaml:"stdout"`
}

// ProgramConfig names the template forked when the database has no program.
type ProgramConfig struct {
	Template string `yaml:"template"`
}

// Defaults returns the configuration used for anything a file does not set.
func Defaults() *Config {
	return &Config{
		Server:   ServerConfig{Host: "127.0.0.1", Port: 8420},
		Database: DatabaseConfig{Driver: "sqlite", Path: "forge.db"},
		Log:      LogConfig{Level: "info", Format: "text"},
		Program:  ProgramConfig{Template: "wave-periodization"},
	}
}

// DSN returns a sqlite file DSN or a PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	if d.Driver == "postgres" {
		sslmode := d.SSLMode
		if sslmode == "" {
			sslmode = "disable"
		}
		u := url.URL{
			Scheme:   "postgres",
			User:     url.UserPassword(d.User, d.Password),
			Host:     fmt.Sprintf("%s:%d", d.Host, d.Port),
			Path:     "/" + d.Name,
			RawQuery: "sslmode=" + sslmode,
		}
		return u.String()
	}
	return "file:" + d.Path + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
}

// Load reads config from a YAML file over the defaults, then applies
// environment variable overrides. An empty path skips the file.
// Env vars use the prefix FORGE_ and underscore-separated paths:
//
//	FORGE_SERVER_HOST, FORGE_SERVER_PORT,
//	FORGE_DB_DRIVER, FORGE_DB_PATH, FORGE_DB_HOST, FORGE_DB_PORT, FORGE_DB_NAME,
//	FORGE_DB_USER, FORGE_DB_PASSWORD, FORGE_DB_SSLMODE,
//	FORGE_AUTH_API_KEY, FORGE_LOG_LEVEL, FORGE_LOG_FORMAT, FORGE_LOG_FILE,
//	FORGE_PROGRAM_TEMPLATE
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	str := func(key string, dst *string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	num := func(key string, dst *int) {
		if v := os.Getenv(key); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				*dst = n
			}
		}
	}

	str("FORGE_SERVER_HOST", &cfg.Server.Host)
	num("FORGE_SERVER_PORT", &cfg.Server.Port)
	str("FORGE_DB_DRIVER", &cfg.Database.Driver)
	str("FORGE_DB_PATH", &cfg.Database.Path)
	str("FORGE_DB_HOST", &cfg.Database.Host)
	num("FORGE_DB_PORT", &cfg.Database.Port)
	str("FORGE_DB_NAME", &cfg.Database.Name)
	str("FORGE_DB_USER", &cfg.Database.User)
	str("FORGE_DB_PASSWORD", &cfg.Database.Password)
	str("FORGE_DB_SSLMODE", &cfg.Database.SSLMode)
	str("FORGE_AUTH_API_KEY", &cfg.Auth.APIKey)
	str("FORGE_LOG_LEVEL", &cfg.Log.Level)
	str("FORGE_LOG_FORMAT", &cfg.Log.Format)
	str("FORGE_LOG_FILE", &cfg.Log.File)
	str("FORGE_PROGRAM_TEMPLATE", &cfg.Program.Template)
}

func (c *Config) validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535")
	}
	switch c.Database.Driver {
	case "sqlite":
		if c.Database.Path == "" {
			return fmt.Errorf("database.path is required for sqlite")
		}
	case "postgres":
		if c.Database.Host == "" {
			return fmt.Errorf("database.host is required for postgres")
		}
		if c.Database.Port == 0 {
			return fmt.Errorf("database.port is required for postgres")
		}
		if c.Database.Name == "" {
			return fmt.Errorf("database.name is required for postgres")
		}
		if c.Database.User == "" {
			return fmt.Errorf("database.user is required for postgres")
		}
	default:
		return fmt.Errorf("database.driver must be sqlite or postgres, got %q", c.Database.Driver)
	}
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level must be debug, info, warn or error, got %q", c.Log.Level)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("log.format must be text or json, got %q", c.Log.Format)
	}
	if c.Program.Template == "" {
		return fmt.Errorf("program.template is required")
	}
	return nil
}
