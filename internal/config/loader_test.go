package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/termai/termai/internal/config"
)

// withAppHome pins TERMAI_HOME to a temp directory so the loader never
// touches the real user configuration.
func withAppHome(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("TERMAI_HOME", home)
	return home
}

func TestLoadDefaults(t *testing.T) {
	home := withAppHome(t)

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.False(t, cfg.Global.Debug)
	assert.False(t, cfg.Global.Quiet)
	assert.NotEmpty(t, cfg.Global.LaunchCwd)

	assert.Equal(t, home, cfg.Paths.ConfigDir)
	assert.Equal(t, filepath.Join(home, "data"), cfg.Paths.DataDir)
	assert.Equal(t, filepath.Join(home, "logs"), cfg.Paths.LogDir)

	assert.Equal(t, uint16(120), cfg.Terminal.Cols)
	assert.Equal(t, uint16(32), cfg.Terminal.Rows)
	assert.Equal(t, 30*time.Second, cfg.Terminal.AgentTimeout)
	assert.InDelta(t, 0.55, cfg.Intent.RefineThreshold, 1e-9)

	assert.Equal(t, filepath.Join(home, "data", "flows"), cfg.FlowsDir())
	assert.Equal(t, filepath.Join(home, "data", "executions"), cfg.ExecutionsDir())
}

func TestLoadConfigFile(t *testing.T) {
	home := withAppHome(t)
	file := filepath.Join(home, "config.yaml")
	require.NoError(t, os.WriteFile(file, []byte(`
debug: true
logFormat: json
terminal:
  shell: /bin/zsh
  cols: 200
  rows: 50
  agentTimeoutSeconds: 5
intent:
  refineThreshold: 0.3
llm:
  provider: anthropic
  model: claude-sonnet-4-20250514
`), 0o600))

	cfg, err := config.Load(config.WithConfigFile(file))
	require.NoError(t, err)

	assert.True(t, cfg.Global.Debug)
	assert.Equal(t, "json", cfg.Global.LogFormat)
	assert.Equal(t, file, cfg.Global.ConfigPath)

	assert.Equal(t, "/bin/zsh", cfg.Terminal.Shell)
	assert.Equal(t, uint16(200), cfg.Terminal.Cols)
	assert.Equal(t, uint16(50), cfg.Terminal.Rows)
	assert.Equal(t, 5*time.Second, cfg.Terminal.AgentTimeout)

	assert.InDelta(t, 0.3, cfg.Intent.RefineThreshold, 1e-9)
	assert.Equal(t, "anthropic", cfg.LLM.Provider)
}

func TestLoadRejectsRefineThresholdAboveOne(t *testing.T) {
	home := withAppHome(t)
	file := filepath.Join(home, "config.yaml")
	require.NoError(t, os.WriteFile(file, []byte("intent:\n  refineThreshold: 1.5\n"), 0o600))

	_, err := config.Load(config.WithConfigFile(file))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "refineThreshold")
}

func TestLoadEnvOverride(t *testing.T) {
	withAppHome(t)
	t.Setenv("TERMAI_DEBUG", "true")
	t.Setenv("TERMAI_LOGFORMAT", "json")

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.True(t, cfg.Global.Debug)
	assert.Equal(t, "json", cfg.Global.LogFormat)
}

func TestLoadPathOverrides(t *testing.T) {
	home := withAppHome(t)
	data := t.TempDir()
	file := filepath.Join(home, "config.yaml")
	require.NoError(t, os.WriteFile(file, []byte("paths:\n  dataDir: "+data+"\n"), 0o600))

	cfg, err := config.Load(config.WithConfigFile(file))
	require.NoError(t, err)
	assert.Equal(t, data, cfg.Paths.DataDir)
	assert.Equal(t, filepath.Join(home, "logs"), cfg.Paths.LogDir)
}

func TestLoadLaunchCwd(t *testing.T) {
	withAppHome(t)
	launch := t.TempDir()
	t.Setenv("TERMAI_LAUNCH_CWD", launch)

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, launch, cfg.Global.LaunchCwd)
}

func TestLoadLaunchCwdIgnoresMissingDir(t *testing.T) {
	withAppHome(t)
	t.Setenv("TERMAI_LAUNCH_CWD", "/does/not/exist")

	cfg, err := config.Load()
	require.NoError(t, err)

	wd, err := os.Getwd()
	require.NoError(t, err)
	assert.Equal(t, wd, cfg.Global.LaunchCwd)
}

func TestLoadDotEnv(t *testing.T) {
	home := withAppHome(t)
	require.NoError(t, os.WriteFile(filepath.Join(home, ".env"), []byte("TERMAI_QUIET=true\n"), 0o600))
	// godotenv mutates the real process environment.
	t.Cleanup(func() { os.Unsetenv("TERMAI_QUIET") })

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.True(t, cfg.Global.Quiet)
}
