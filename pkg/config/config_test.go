package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/pastry/pkg/errors"
	"github.com/arthur-debert/pastry/pkg/paths"
)

func testPaths(t *testing.T) *paths.Paths {
	t.Helper()
	dataDir := t.TempDir()
	t.Setenv(paths.EnvPastryDataDir, dataDir)
	t.Setenv(paths.EnvPastryConfigDir, t.TempDir())
	return paths.New()
}

func TestLoadDefaults(t *testing.T) {
	p := testPaths(t)

	cfg, err := Load("", true, p)
	require.NoError(t, err)

	assert.Equal(t, p.TemplatesDir(), cfg.TemplatesDir)
	assert.Equal(t, p.ReplayDir(), cfg.ReplayDir)
	assert.Nil(t, cfg.DefaultContext)
	assert.Empty(t, cfg.Abbreviations)
}

func TestLoadYAMLConfigFile(t *testing.T) {
	p := testPaths(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
templates_dir: /tmp/my-templates
default_context:
  full_name: Raphael
abbreviations:
  corp: https://git.corp.example.com/{0}.git
`), 0644))

	cfg, err := Load(path, false, p)
	require.NoError(t, err)

	assert.Equal(t, "/tmp/my-templates", cfg.TemplatesDir)
	assert.Equal(t, p.ReplayDir(), cfg.ReplayDir, "unset keys keep their defaults")
	assert.Equal(t, "Raphael", cfg.DefaultContext["full_name"])
	assert.Equal(t, "https://git.corp.example.com/{0}.git", cfg.Abbreviations["corp"])
}

func TestLoadTOMLConfigFile(t *testing.T) {
	p := testPaths(t)
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
templates_dir = "/tmp/toml-templates"
`), 0644))

	cfg, err := Load(path, false, p)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/toml-templates", cfg.TemplatesDir)
}

func TestLoadExplicitConfigFileMissing(t *testing.T) {
	p := testPaths(t)

	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"), false, p)
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrConfigLoad))
}

func TestLoadInvalidConfigFile(t *testing.T) {
	p := testPaths(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("{broken yaml: ["), 0644))

	_, err := Load(path, false, p)
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrConfigParse))
}

func TestLoadEnvOverrides(t *testing.T) {
	p := testPaths(t)
	t.Setenv("PASTRY_REPLAY_DIR", "/tmp/env-replay")

	cfg, err := Load("", true, p)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/env-replay", cfg.ReplayDir)
}

func TestLoadXDGCandidateProbed(t *testing.T) {
	p := testPaths(t)
	candidates := p.ConfigFileCandidates()
	require.NotEmpty(t, candidates)

	require.NoError(t, os.MkdirAll(filepath.Dir(candidates[0]), 0755))
	require.NoError(t, os.WriteFile(candidates[0], []byte("templates_dir: /tmp/from-xdg\n"), 0644))

	cfg, err := Load("", false, p)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/from-xdg", cfg.TemplatesDir)
}

func TestDefaultConfigSkipsConfigFiles(t *testing.T) {
	p := testPaths(t)
	candidates := p.ConfigFileCandidates()
	require.NotEmpty(t, candidates)
	require.NoError(t, os.MkdirAll(filepath.Dir(candidates[0]), 0755))
	require.NoError(t, os.WriteFile(candidates[0], []byte("templates_dir: /tmp/ignored\n"), 0644))

	cfg, err := Load("", true, p)
	require.NoError(t, err)
	assert.Equal(t, p.TemplatesDir(), cfg.TemplatesDir)
}

func TestDump(t *testing.T) {
	cfg, err := Load("", true, testPaths(t))
	require.NoError(t, err)

	out, err := cfg.Dump()
	require.NoError(t, err)
	assert.Contains(t, out, "templates_dir:")
	assert.Contains(t, out, "replay_dir:")
}
