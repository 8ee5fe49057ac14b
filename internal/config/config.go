// Package config loads client configuration from defaults, an optional
// YAML file, ACADREPO_* environment variables, and command-line flags,
// in that order of precedence.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	flag "github.com/spf13/pflag"
)

// ConfigFileName is the default config file looked up in the user config
// directory.
const ConfigFileName = "config.yaml"

// envPrefix namespaces the environment variables the loader reads.
const envPrefix = "ACADREPO_"

// Config is the resolved client configuration.
type Config struct {
	// APIBaseURL is the REST base, including the /api/v1 prefix.
	APIBaseURL string `koanf:"api_base_url"`
	// WSURL is the push channel endpoint, up to but not including the
	// connection ID path segment.
	WSURL string `koanf:"ws_url"`
	// RefreshInterval is the dashboard poll period.
	RefreshInterval time.Duration `koanf:"refresh_interval"`
	// ReconnectMaxAttempts caps consecutive push reconnects.
	ReconnectMaxAttempts int `koanf:"reconnect_max_attempts"`
	// ReconnectDelay is the fixed wait between push reconnects.
	ReconnectDelay time.Duration `koanf:"reconnect_delay"`
	// SessionFile is where the auth session is persisted.
	SessionFile string `koanf:"session_file"`
	// LogFile receives structured logs; the TUI owns the terminal.
	LogFile string `koanf:"log_file"`
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `koanf:"log_level"`
}

func defaults() map[string]interface{} {
	return map[string]interface{}{
		"api_base_url":           "http://127.0.0.1:8000/api/v1",
		"ws_url":                 "ws://127.0.0.1:8000/api/v1/ws/ws",
		"refresh_interval":       "60s",
		"reconnect_max_attempts": 5,
		"reconnect_delay":        "3s",
		"log_level":              "info",
	}
}

// Dir returns the per-user configuration directory.
func Dir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, "acadrepo"), nil
}

// Load resolves the configuration. path selects an explicit config file;
// when empty the default location is used if it exists. flags may be nil.
func Load(path string, flags *flag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, err
	}

	explicit := path != ""
	if !explicit {
		if dir, err := Dir(); err == nil {
			path = filepath.Join(dir, ConfigFileName)
		}
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			if explicit || !os.IsNotExist(err) {
				return nil, fmt.Errorf("config file %s: %w", path, err)
			}
		}
	}

	if err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, envPrefix))
	}), nil); err != nil {
		return nil, err
	}

	if flags != nil {
		// Flag names use dashes; koanf keys use underscores.
		p := posflag.ProviderWithValue(flags, ".", k, func(key, value string) (string, interface{}) {
			return strings.ReplaceAll(key, "-", "_"), value
		})
		if err := k.Load(p, nil); err != nil {
			return nil, err
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.RefreshInterval <= 0 {
		c.RefreshInterval = 60 * time.Second
	}
	if c.ReconnectMaxAttempts <= 0 {
		c.ReconnectMaxAttempts = 5
	}
	if c.ReconnectDelay <= 0 {
		c.ReconnectDelay = 3 * time.Second
	}
	if c.SessionFile == "" {
		if dir, err := Dir(); err == nil {
			c.SessionFile = filepath.Join(dir, "session.json")
		}
	}
	if c.LogFile == "" {
		if dir, err := Dir(); err == nil {
			c.LogFile = filepath.Join(dir, "acadrepo.log")
		}
	}
}
