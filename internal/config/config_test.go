package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "localhost", cfg.HTTP.Host)
	assert.Equal(t, "8092", cfg.HTTP.Port)
	assert.Equal(t, "/liveness", cfg.HTTP.LivenessEndpoint)
	assert.Equal(t, 20, cfg.Stress.Concurrency)
	assert.Equal(t, 200, cfg.Stress.Requests)
	assert.Equal(t, 15*time.Second, cfg.Stress.Timeout)
	assert.Equal(t, 20, cfg.Stress.SampleSize)
	assert.Equal(t, "stress-mess-summary.json", cfg.Stress.SummaryPath)
	assert.Equal(t, 5, cfg.Sandbox.MessCapacity)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	content := `
http:
  port: 9000
stress:
  concurrency: 7
  timeout: 3s
sandbox:
  mess_capacity: 12
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.HTTP.Port)
	assert.Equal(t, 7, cfg.Stress.Concurrency)
	assert.Equal(t, 3*time.Second, cfg.Stress.Timeout)
	assert.Equal(t, 12, cfg.Sandbox.MessCapacity)
	assert.Equal(t, 200, cfg.Stress.Requests)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	t.Setenv("CAMPUSNEST_STRESS_REQUESTS", "42")
	t.Setenv("CAMPUSNEST_API_BASE_URL", "http://api.test")
	t.Setenv("CAMPUSNEST_API_TIMEOUT", "2s")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 42, cfg.Stress.Requests)
	assert.Equal(t, "http://api.test", cfg.API.BaseURL)
	assert.Equal(t, 2*time.Second, cfg.API.Timeout)
}

func TestLoad_InvalidEnv(t *testing.T) {
	t.Setenv("CAMPUSNEST_STRESS_CONCURRENCY", "many")

	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "CAMPUSNEST_STRESS_CONCURRENCY")
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}

func TestPath(t *testing.T) {
	t.Setenv("CAMPUSNEST_CONFIG", "/etc/campusnest.yaml")

	assert.Equal(t, "./local.yaml", Path("./local.yaml"))
	assert.Equal(t, "/etc/campusnest.yaml", Path(""))
}
