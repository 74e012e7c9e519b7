package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, "")
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 0, cfg.Jobs.Workers)
	assert.Equal(t, uint32(4), cfg.Memory.TlsfSplitShift)
	assert.Equal(t, 1024, cfg.Memory.TlsfBufferKiB)
	assert.Equal(t, 300, cfg.Simulation.Steps)
	assert.Equal(t, "console", cfg.Logging.Format)
}

func TestLoadOverrides(t *testing.T) {
	path := writeConfig(t, `
[jobs]
workers = 8

[memory]
tlsf_split_shift = 5
tlsf_buffer_kib = 2048

[simulation]
steps = 10
step_time = "8ms"

[logging]
level = "debug"
format = "json"
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 8, cfg.Jobs.Workers)
	assert.Equal(t, uint32(5), cfg.Memory.TlsfSplitShift)
	assert.Equal(t, 2048, cfg.Memory.TlsfBufferKiB)
	assert.Equal(t, 10, cfg.Simulation.Steps)
	assert.Equal(t, 8*time.Millisecond, cfg.Simulation.StepTime)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestLoadRejectsBadValues(t *testing.T) {
	for name, body := range map[string]string{
		"negative workers": "[jobs]\nworkers = -1\n",
		"zero split":       "[memory]\ntlsf_split_shift = 0\n",
		"huge split":       "[memory]\ntlsf_split_shift = 32\n",
		"zero buffer":      "[memory]\ntlsf_buffer_kib = 0\n",
		"zero steps":       "[simulation]\nsteps = 0\n",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeConfig(t, body))
			assert.Error(t, err)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	assert.Error(t, err)
}
