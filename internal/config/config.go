// Package config resolves runtime settings: defaults, then an optional YAML
// file, then GOALTREE_* environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"github.com/alexanderramin/goaltree/internal/domain"
	"gopkg.in/yaml.v3"
)

// Config holds every setting the CLI and server read at startup.
type Config struct {
	DB              string `yaml:"db"`
	User            string `yaml:"user"`
	Role            string `yaml:"role"`
	Remote          string `yaml:"remote"`
	RemoteTimeoutMs int    `yaml:"remote_timeout_ms"`
	Listen          string `yaml:"listen"`
	ViewState       string `yaml:"view_state"`
	LogUseCases     bool   `yaml:"log_use_cases"`
	LogLevel        string `yaml:"log_level"`
	TraceExporter   string `yaml:"trace_exporter"` // "" or "stdout"
}

// DefaultConfig returns the settings used when nothing else is configured.
// Data lives under ~/.goaltree and acts as the seeded local admin.
func DefaultConfig(home string) Config {
	dir := filepath.Join(home, ".goaltree")
	return Config{
		DB:              filepath.Join(dir, "goaltree.db"),
		User:            "local",
		Role:            string(domain.RoleAdmin),
		RemoteTimeoutMs: 10000,
		Listen:          ":8080",
		ViewState:       filepath.Join(dir, "view.db"),
		LogLevel:        "info",
	}
}

// Principal is the identity local writes are made as.
func (c Config) Principal() domain.Principal {
	return domain.Principal{UserID: c.User, Role: domain.Role(c.Role)}
}

// SlogLevel parses LogLevel ("debug", "info", "warn" or "error").
func (c Config) SlogLevel() (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("log level %q: %w", c.LogLevel, err)
	}
	return l, nil
}

// LoadConfig applies the config file and environment over the defaults. The
// file is GOALTREE_CONFIG when set (and must exist), else
// ~/.goaltree/config.yaml if present.
func LoadConfig() (Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return Config{}, fmt.Errorf("finding home directory: %w", err)
	}
	cfg := DefaultConfig(home)

	path, explicit := os.LookupEnv("GOALTREE_CONFIG")
	if !explicit || path == "" {
		path, explicit = filepath.Join(home, ".goaltree", "config.yaml"), false
	}
	if err := cfg.mergeFile(path); err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			err = nil
		}
		if err != nil {
			return Config{}, err
		}
	}

	applyEnv(&cfg)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) mergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parsing config %s: %w", path, err)
	}
	return nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("GOALTREE_DB"); v != "" {
		cfg.DB = v
	}
	if v := os.Getenv("GOALTREE_USER"); v != "" {
		cfg.User = v
	}
	if v := os.Getenv("GOALTREE_ROLE"); v != "" {
		cfg.Role = v
	}
	if v, ok := os.LookupEnv("GOALTREE_REMOTE"); ok {
		cfg.Remote = v
	}
	if v := os.Getenv("GOALTREE_REMOTE_TIMEOUT_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.RemoteTimeoutMs = n
		}
	}
	if v := os.Getenv("GOALTREE_LISTEN"); v != "" {
		cfg.Listen = v
	}
	if v, ok := os.LookupEnv("GOALTREE_VIEWSTATE"); ok {
		cfg.ViewState = v
	}
	if v := os.Getenv("GOALTREE_LOG_USECASES"); v != "" {
		cfg.LogUseCases, _ = strconv.ParseBool(v)
	}
	if v := os.Getenv("GOALTREE_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v, ok := os.LookupEnv("GOALTREE_TRACE"); ok {
		cfg.TraceExporter = v
	}
}

// Validate rejects settings the program cannot start with.
func (c Config) Validate() error {
	switch domain.Role(c.Role) {
	case domain.RoleUser, domain.RoleAdmin:
	default:
		return fmt.Errorf("role %q must be %q or %q", c.Role, domain.RoleUser, domain.RoleAdmin)
	}
	if c.User == "" {
		return errors.New("user must not be empty")
	}
	if c.Remote == "" && c.DB == "" {
		return errors.New("either db or remote must be set")
	}
	if _, err := c.SlogLevel(); err != nil {
		return err
	}
	switch c.TraceExporter {
	case "", "stdout":
	default:
		return fmt.Errorf("unknown trace exporter %q", c.TraceExporter)
	}
	return nil
}
