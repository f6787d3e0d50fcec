package replay

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/pastry/pkg/errors"
	"github.com/arthur-debert/pastry/pkg/vars"
)

func sampleContext(t *testing.T) *vars.Context {
	t.Helper()
	ctx := vars.New()
	ctx.Vars().Set("project_name", "Pastry")
	ctx.Vars().Set("license", "MIT")
	return ctx
}

func TestFileName(t *testing.T) {
	tests := []struct {
		name     string
		template string
		want     string
	}{
		{"plain name", "cookiedozer", "cookiedozer.json"},
		{"strips path", "gh:audreyr/cookiedozer", "cookiedozer.json"},
		{"keeps json suffix", "record.json", "record.json"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FileName("/replay", tt.template)
			assert.Equal(t, filepath.Join("/replay", tt.want), got)
		})
	}
}

func TestDumpAndLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	ctx := sampleContext(t)

	require.NoError(t, Dump(dir, "cookiedozer", ctx))

	loaded, err := Load(dir, "cookiedozer")
	require.NoError(t, err)
	assert.True(t, ctx.Root().Equal(loaded.Root()))

	// Variable ordering survives persistence.
	assert.Equal(t, []string{"project_name", "license"}, loaded.Vars().Keys())
}

func TestDumpCreatesReplayDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "replay")

	require.NoError(t, Dump(dir, "tpl", sampleContext(t)))

	_, err := os.Stat(filepath.Join(dir, "tpl.json"))
	assert.NoError(t, err)
}

func TestDumpRequiresTemplateName(t *testing.T) {
	err := Dump(t.TempDir(), "", sampleContext(t))
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidInput))
}

func TestDumpRequiresContext(t *testing.T) {
	err := Dump(t.TempDir(), "tpl", nil)
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidInput))
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(t.TempDir(), "never-dumped")
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrReplayLoad))
}

func TestLoadInvalidJSON(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "tpl.json"), []byte("not json"), 0644))

	_, err := Load(dir, "tpl")
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrReplayLoad))
}

func TestLoadEmptyContext(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "tpl.json"), []byte("{}"), 0644))

	_, err := Load(dir, "tpl")
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrReplayLoad))
}

func TestLoadRejectsForeignRecord(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(
		filepath.Join(dir, "tpl.json"), []byte(`{"other_tool": {}}`), 0644))

	_, err := Load(dir, "tpl")
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrReplayLoad))
}
