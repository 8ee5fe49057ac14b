package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	flag "github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("", nil)
	require.NoError(t, err)

	assert.Equal(t, "http://127.0.0.1:8000/api/v1", cfg.APIBaseURL)
	assert.Equal(t, "ws://127.0.0.1:8000/api/v1/ws/ws", cfg.WSURL)
	assert.Equal(t, 60*time.Second, cfg.RefreshInterval)
	assert.Equal(t, 5, cfg.ReconnectMaxAttempts)
	assert.Equal(t, 3*time.Second, cfg.ReconnectDelay)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.NotEmpty(t, cfg.SessionFile)
	assert.NotEmpty(t, cfg.LogFile)
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(
		"api_base_url: https://repo.example.edu/api/v1\nrefresh_interval: 30s\n"), 0o600))

	cfg, err := Load(path, nil)
	require.NoError(t, err)

	assert.Equal(t, "https://repo.example.edu/api/v1", cfg.APIBaseURL)
	assert.Equal(t, 30*time.Second, cfg.RefreshInterval)
	// Untouched keys keep their defaults.
	assert.Equal(t, 5, cfg.ReconnectMaxAttempts)
}

func TestLoadMissingExplicitFileFails(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"), nil)
	require.Error(t, err)
}

func TestEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log_level: warn\n"), 0o600))

	t.Setenv("ACADREPO_LOG_LEVEL", "debug")
	t.Setenv("ACADREPO_RECONNECT_DELAY", "10s")

	cfg, err := Load(path, nil)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 10*time.Second, cfg.ReconnectDelay)
}

func TestFlagsOverrideEverything(t *testing.T) {
	t.Setenv("ACADREPO_API_BASE_URL", "http://env.example.edu/api/v1")

	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	fs.String("api-base-url", "", "")
	fs.Duration("refresh-interval", 0, "")
	require.NoError(t, fs.Parse([]string{
		"--api-base-url=http://flag.example.edu/api/v1",
		"--refresh-interval=15s",
	}))

	cfg, err := Load("", fs)
	require.NoError(t, err)

	assert.Equal(t, "http://flag.example.edu/api/v1", cfg.APIBaseURL)
	assert.Equal(t, 15*time.Second, cfg.RefreshInterval)
}

func TestUnsetFlagsDoNotClobber(t *testing.T) {
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	fs.String("api-base-url", "", "")
	require.NoError(t, fs.Parse(nil))

	cfg, err := Load("", fs)
	require.NoError(t, err)

	assert.Equal(t, "http://127.0.0.1:8000/api/v1", cfg.APIBaseURL)
}

func TestApplyDefaultsFillsZeroValues(t *testing.T) {
	c := &Config{}
	c.applyDefaults()

	assert.Equal(t, 60*time.Second, c.RefreshInterval)
	assert.Equal(t, 5, c.ReconnectMaxAttempts)
	assert.Equal(t, 3*time.Second, c.ReconnectDelay)
}
