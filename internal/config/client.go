package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

// ClientConfig drives the terminal client.
type ClientConfig struct {
	ServerURL      string   `toml:"server_url"`
	DefaultFilter  string   `toml:"default_filter"`
	DefaultSort    string   `toml:"default_sort"`
	RequestTimeout Duration `toml:"request_timeout"`
}

// Duration decodes TOML strings such as "5s".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		ServerURL:      "http://localhost:8080",
		DefaultFilter:  "all",
		DefaultSort:    "dueDate",
		RequestTimeout: Duration{10 * time.Second},
	}
}

// DefaultClientConfigPath is $XDG_CONFIG_HOME/tasks/client.toml (or the OS equivalent).
func DefaultClientConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "tasks", "client.toml")
}

// LoadClient reads path over the defaults. A missing file is not an error.
// TASKS_SERVER_URL overrides server_url.
func LoadClient(path string) (ClientConfig, error) {
	cfg := DefaultClientConfig()
	if path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil && !errors.Is(err, os.ErrNotExist) {
			return cfg, fmt.Errorf("read client config %s: %w", path, err)
		}
	}
	if v := os.Getenv("TASKS_SERVER_URL"); v != "" {
		cfg.ServerURL = v
	}
	if cfg.RequestTimeout.Duration <= 0 {
		cfg.RequestTimeout = DefaultClientConfig().RequestTimeout
	}
	return cfg, nil
}
