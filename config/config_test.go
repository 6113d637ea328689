package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/graphcore-db/graphcore/config"
)

func TestLoadParsesYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "graphcored.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
store: /var/lib/graphcore/data.db
bootstrap_path: /etc/graphcore/bootstrap.yaml
planner:
  time_limit_ms: 250
reasoning:
  budget: 50
`), 0o644))

	cfg, err := config.Load(path)
	require.NoError(t, err)
	require.Equal(t, "/var/lib/graphcore/data.db", cfg.Store)
	require.Equal(t, "/etc/graphcore/bootstrap.yaml", cfg.BootstrapPath)
	require.Equal(t, 250, cfg.Planner.TimeLimitMS)
	require.Equal(t, 50, cfg.Reasoning.Budget)
}

func TestLoadWrapsMissingFileError(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	require.Error(t, err)
	require.Contains(t, err.Error(), "config: could not read")
}

func TestLoadWrapsMalformedYAMLError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "graphcored.yaml")
	require.NoError(t, os.WriteFile(path, []byte("store: [this is not valid yaml"), 0o644))

	_, err := config.Load(path)
	require.Error(t, err)
	require.Contains(t, err.Error(), "config: could not parse")
}
