package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendSQLite = "sqlite"
)

type Config struct {
	Version   string          `yaml:"version" json:"version"`
	DataDir   string          `yaml:"data_dir" json:"data_dir"`
	Storage   StorageConfig   `yaml:"storage" json:"storage"`
	Server    ServerConfig    `yaml:"server" json:"server"`
	Log       LogConfig       `yaml:"log" json:"log"`
	UI        UIConfig        `yaml:"ui" json:"ui"`
	Telemetry TelemetryConfig `yaml:"telemetry" json:"telemetry"`
}

type StorageConfig struct {
	// Backend is one of memory, file, sqlite.
	Backend string `yaml:"backend" json:"backend"`
	// Key is the slot the task list is stored under.
	Key string `yaml:"key" json:"key"`
	// SQLitePath defaults to <data_dir>/todo.db.
	SQLitePath string `yaml:"sqlite_path,omitempty" json:"sqlite_path,omitempty"`
}

type ServerConfig struct {
	Addr      string `yaml:"addr" json:"addr"`
	StaticDir string `yaml:"static_dir,omitempty" json:"static_dir,omitempty"`
	// DevStatic serves StaticDir from disk instead of the embedded bundle.
	DevStatic bool `yaml:"dev_static" json:"dev_static"`
}

type LogConfig struct {
	Level  string `yaml:"level" json:"level"`
	Format string `yaml:"format" json:"format"`
}

type UIConfig struct {
	DefaultFilter string `yaml:"default_filter" json:"default_filter"`
}

type TelemetryConfig struct {
	EventLimit int `yaml:"event_limit" json:"event_limit"`
}

func Default() *Config {
	c := &Config{}
	c.ApplyDefaults()
	return c
}

func (s *StorageConfig) ApplyDefaults() {
	if strings.TrimSpace(s.Backend) == "" {
		s.Backend = BackendFile
	}
	s.Backend = strings.ToLower(strings.TrimSpace(s.Backend))
	if strings.TrimSpace(s.Key) == "" {
		s.Key = "todo-app-items-v2"
	}
}

func (s *ServerConfig) ApplyDefaults() {
	if s.Addr == "" {
		s.Addr = "127.0.0.1:42069"
	}
	if s.StaticDir == "" {
		s.StaticDir = "static"
	}
}

func (c *Config) ApplyDefaults() {
	if c.Version == "" {
		c.Version = "1"
	}
	if strings.TrimSpace(c.DataDir) == "" {
		c.DataDir = "data"
	}
	c.Storage.ApplyDefaults()
	c.Server.ApplyDefaults()
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "json"
	}
	if c.UI.DefaultFilter == "" {
		c.UI.DefaultFilter = "all"
	}
	if c.Telemetry.EventLimit <= 0 {
		c.Telemetry.EventLimit = 1000
	}
}

func (c *Config) Validate() error {
	switch c.Storage.Backend {
	case BackendMemory, BackendFile, BackendSQLite:
	default:
		return fmt.Errorf("storage.backend %q: want memory, file or sqlite", c.Storage.Backend)
	}
	switch strings.ToLower(c.UI.DefaultFilter) {
	case "all", "active", "completed":
	default:
		return fmt.Errorf("ui.default_filter %q: want all, active or completed", c.UI.DefaultFilter)
	}
	return nil
}

func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var r Config
	if err := yaml.Unmarshal(b, &r); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	r.ApplyDefaults()
	if err := r.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &r, nil
}

// LoadOrDefault is Load, except that a missing file yields Default().
func LoadOrDefault(path string) (*Config, error) {
	if strings.TrimSpace(path) == "" {
		return Default(), nil
	}
	c, err := Load(path)
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	return c, err
}

// Marshal renders c as YAML, used by `todo init`.
func Marshal(c *Config) ([]byte, error) {
	return yaml.Marshal(c)
}
