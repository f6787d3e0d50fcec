package find

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/pastry/pkg/errors"
	"github.com/arthur-debert/pastry/pkg/render"
	"github.com/arthur-debert/pastry/pkg/vars"
)

func mkTemplate(t *testing.T, root string, parts ...string) string {
	t.Helper()
	dir := filepath.Join(append([]string{root}, parts...)...)
	require.NoError(t, os.MkdirAll(dir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, vars.DefinitionFile), []byte(`{}`), 0644))
	return dir
}

func TestTemplateAtRepoRoot(t *testing.T) {
	repo := t.TempDir()
	mkTemplate(t, repo)

	got, err := Template(repo, render.NewEmptyEnv())
	require.NoError(t, err)
	assert.Equal(t, repo, got)
}

func TestTemplateInWellKnownSubdir(t *testing.T) {
	for _, name := range []string{"_pastry", "pastry"} {
		t.Run(name, func(t *testing.T) {
			repo := t.TempDir()
			want := mkTemplate(t, repo, name)

			got, err := Template(repo, render.NewEmptyEnv())
			require.NoError(t, err)
			assert.Equal(t, want, got)
		})
	}
}

func TestTemplateRootWinsOverSubdir(t *testing.T) {
	repo := t.TempDir()
	mkTemplate(t, repo)
	mkTemplate(t, repo, "_pastry")

	got, err := Template(repo, render.NewEmptyEnv())
	require.NoError(t, err)
	assert.Equal(t, repo, got)
}

func TestTemplatePlaceholderDirLiteralName(t *testing.T) {
	repo := t.TempDir()
	want := mkTemplate(t, repo, "{{ .pastry.project_slug }}")

	got, err := Template(repo, render.NewEmptyEnv())
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestTemplateFirstSubdirFallback(t *testing.T) {
	repo := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(repo, ".git"), 0755))
	want := mkTemplate(t, repo, "the-template")

	got, err := Template(repo, render.NewEmptyEnv())
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestTemplateHiddenDirsSkipped(t *testing.T) {
	repo := t.TempDir()
	// A definition file inside a hidden directory does not count.
	require.NoError(t, os.MkdirAll(filepath.Join(repo, ".hidden"), 0755))
	require.NoError(t, os.WriteFile(
		filepath.Join(repo, ".hidden", vars.DefinitionFile), []byte(`{}`), 0644))

	_, err := Template(repo, render.NewEmptyEnv())
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrNoTemplate))
}

func TestTemplateNotFound(t *testing.T) {
	repo := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(repo, "docs"), 0755))

	_, err := Template(repo, render.NewEmptyEnv())
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrNoTemplate))
}
