package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BaSui01/goapflow/types"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoader_Defaults(t *testing.T) {
	cfg, err := NewLoader().Load()
	require.NoError(t, err)

	assert.Equal(t, 50, cfg.Process.MaxActions)
	assert.Equal(t, 20, cfg.Planner.MaxPlanDepth)
	assert.Equal(t, "memory", cfg.Snapshot.Store)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.False(t, cfg.Telemetry.Enabled)
}

func TestLoader_FileOverridesDefaults(t *testing.T) {
	path := writeConfigFile(t, `
process:
  max_actions: 5
  actions_per_second: 2.5
planner:
  max_plan_depth: 8
snapshot:
  store: redis
  redis:
    addr: redis.internal:6379
    ttl: 1h
log:
  level: debug
  format: console
`)

	cfg, err := NewLoader().WithConfigPath(path).Load()
	require.NoError(t, err)

	assert.Equal(t, 5, cfg.Process.MaxActions)
	assert.Equal(t, 2.5, cfg.Process.ActionsPerSecond)
	assert.Equal(t, 8, cfg.Planner.MaxPlanDepth)
	assert.Equal(t, "redis", cfg.Snapshot.Store)
	assert.Equal(t, "redis.internal:6379", cfg.Snapshot.Redis.Addr)
	assert.Equal(t, time.Hour, cfg.Snapshot.Redis.TTL)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
}

func TestLoader_EnvOverridesFile(t *testing.T) {
	path := writeConfigFile(t, `
process:
  max_actions: 5
log:
  level: debug
`)

	t.Setenv("GOAPFLOW_PROCESS_MAX_ACTIONS", "9")
	t.Setenv("GOAPFLOW_PROCESS_ACTION_TIMEOUT", "30s")
	t.Setenv("GOAPFLOW_LOG_LEVEL", "warn")
	t.Setenv("GOAPFLOW_SNAPSHOT_REDIS_ADDR", "other:6379")

	cfg, err := NewLoader().WithConfigPath(path).Load()
	require.NoError(t, err)

	assert.Equal(t, 9, cfg.Process.MaxActions)
	assert.Equal(t, 30*time.Second, cfg.Process.ActionTimeout)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, "other:6379", cfg.Snapshot.Redis.Addr)
}

func TestLoader_CustomEnvPrefix(t *testing.T) {
	t.Setenv("MYAPP_PLANNER_MAX_PLAN_DEPTH", "3")

	cfg, err := NewLoader().WithEnvPrefix("MYAPP").Load()
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Planner.MaxPlanDepth)
}

func TestLoader_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := NewLoader().WithConfigPath("/nonexistent/config.yaml").Load()
	require.NoError(t, err)
	assert.Equal(t, 50, cfg.Process.MaxActions)
}

func TestLoader_MalformedYAML(t *testing.T) {
	path := writeConfigFile(t, "process: [not a mapping")

	_, err := NewLoader().WithConfigPath(path).Load()
	require.Error(t, err)
	assert.True(t, types.IsErrorCode(err, types.ErrConfigInvalid))
}

func TestLoader_ValidatorRuns(t *testing.T) {
	path := writeConfigFile(t, `
planner:
  max_plan_depth: -1
`)

	_, err := NewLoader().
		WithConfigPath(path).
		WithValidator(func(c *Config) error { return c.Validate() }).
		Load()
	require.Error(t, err)
	assert.True(t, types.IsErrorCode(err, types.ErrConfigInvalid))
}

func TestConfig_Validate(t *testing.T) {
	cfg := DefaultConfig()
	assert.NoError(t, cfg.Validate())

	cfg.Snapshot.Store = "carrier-pigeon"
	err := cfg.Validate()
	require.Error(t, err)
	assert.True(t, types.IsErrorCode(err, types.ErrConfigInvalid))

	cfg = DefaultConfig()
	cfg.Snapshot.Store = "redis"
	cfg.Snapshot.Redis.Addr = ""
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.Telemetry.Enabled = true
	cfg.Telemetry.OTLPEndpoint = ""
	assert.Error(t, cfg.Validate())
}

func TestLogConfig_BuildLogger(t *testing.T) {
	logger, err := DefaultLogConfig().BuildLogger()
	require.NoError(t, err)
	assert.NotNil(t, logger)

	console := LogConfig{Level: "debug", Format: "console"}
	logger, err = console.BuildLogger()
	require.NoError(t, err)
	assert.NotNil(t, logger)
}
