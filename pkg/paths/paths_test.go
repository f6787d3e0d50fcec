package paths

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWithEnvOverrides(t *testing.T) {
	dataDir := t.TempDir()
	configDir := t.TempDir()
	t.Setenv(EnvPastryDataDir, dataDir)
	t.Setenv(EnvPastryConfigDir, configDir)

	p := New()

	assert.Equal(t, dataDir, p.DataDir())
	assert.Equal(t, configDir, p.ConfigDir())
	assert.Equal(t, filepath.Join(dataDir, TemplatesDir), p.TemplatesDir())
	assert.Equal(t, filepath.Join(dataDir, ReplayDir), p.ReplayDir())
}

func TestNewXDGDefaults(t *testing.T) {
	t.Setenv(EnvPastryDataDir, "")
	t.Setenv(EnvPastryConfigDir, "")

	p := New()

	assert.True(t, filepath.IsAbs(p.DataDir()))
	assert.Equal(t, PastryDirName, filepath.Base(p.DataDir()))
	assert.Equal(t, PastryDirName, filepath.Base(p.ConfigDir()))
}

func TestConfigFileCandidatesOrder(t *testing.T) {
	configDir := t.TempDir()
	t.Setenv(EnvPastryConfigDir, configDir)

	p := New()
	candidates := p.ConfigFileCandidates()

	require.Len(t, candidates, 2)
	assert.Equal(t, filepath.Join(configDir, ConfigFileYAML), candidates[0])
	assert.Equal(t, filepath.Join(configDir, ConfigFileTOML), candidates[1])
}

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	assert.Equal(t, home, ExpandHome("~"))
	assert.Equal(t, filepath.Join(home, "templates"), ExpandHome("~/templates"))
	assert.Equal(t, "/already/absolute", ExpandHome("/already/absolute"))
	assert.Equal(t, "relative/path", ExpandHome("relative/path"))
}
