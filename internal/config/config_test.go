package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv blanks every variable Load reads so the host environment does not
// leak into the test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"PIPELINE_CONFIG", "DATA_PATH", "OUTPUT_PATH", "WORKER_COUNT", "EXPORT_XLSX",
		"DATABASE_URL", "NEO4J_URI", "NEO4J_USER", "NEO4J_PASSWORD",
	} {
		t.Setenv(k, "")
	}
	t.Chdir(t.TempDir())
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.False(t, cfg.PublishEnabled())
	assert.False(t, cfg.GraphEnabled())
}

func TestLoad_Precedence(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "pipeline.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
data_path: /data/from-yaml
output_path: out
worker_count: 2
export_xlsx: true
keybinds:
  ability1: "1"
`), 0644))

	t.Setenv("WORKER_COUNT", "16")
	t.Setenv("DATABASE_URL", "postgres://localhost/vdata")
	t.Setenv("EXPORT_XLSX", "not-a-bool")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/data/from-yaml", cfg.DataPath)
	assert.Equal(t, 16, cfg.WorkerCount)
	assert.True(t, cfg.ExportXLSX)
	assert.True(t, cfg.PublishEnabled())
	assert.Equal(t, "1", cfg.Keybinds["ability1"])
	assert.Equal(t, filepath.Join("/data/from-yaml", "out"), cfg.OutputDir())
}

func TestLoad_InvalidYAML(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "pipeline.yaml")
	require.NoError(t, os.WriteFile(path, []byte("worker_count: [oops"), 0644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestOutputDir(t *testing.T) {
	cfg := Default()
	assert.Equal(t, "/output", cfg.OutputDir())

	cfg.OutputPath = "/srv/output/"
	assert.Equal(t, "/srv/output", cfg.OutputDir())
}
