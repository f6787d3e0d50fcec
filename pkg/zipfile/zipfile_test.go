package zipfile

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yeka/zip"

	"github.com/arthur-debert/pastry/pkg/errors"
	"github.com/arthur-debert/pastry/pkg/vars"
)

// buildZip writes a zip archive holding the given name → contents
// entries and returns its path.
func buildZip(t *testing.T, entries map[string]string) string {
	t.Helper()

	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for name, contents := range entries {
		f, err := w.Create(name)
		require.NoError(t, err)
		_, err = f.Write([]byte(contents))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	path := filepath.Join(t.TempDir(), "template.zip")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0644))
	return path
}

func buildEncryptedZip(t *testing.T, entries map[string]string, password string) string {
	t.Helper()

	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for name, contents := range entries {
		f, err := w.Encrypt(name, password, zip.AES256Encryption)
		require.NoError(t, err)
		_, err = f.Write([]byte(contents))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	path := filepath.Join(t.TempDir(), "protected.zip")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0644))
	return path
}

func TestUnzipLocalArchive(t *testing.T) {
	zipPath := buildZip(t, map[string]string{
		"cookiedozer/" + vars.DefinitionFile:   `{"project_name": "Dozer"}`,
		"cookiedozer/README.md":                "hello",
		"cookiedozer/src/main.py":              "print('hi')",
	})

	templateDir, err := Unzip(Options{URI: zipPath})
	require.NoError(t, err)
	defer os.RemoveAll(filepath.Dir(templateDir))

	assert.Equal(t, "cookiedozer", filepath.Base(templateDir))
	assert.FileExists(t, filepath.Join(templateDir, vars.DefinitionFile))
	data, err := os.ReadFile(filepath.Join(templateDir, "src", "main.py"))
	require.NoError(t, err)
	assert.Equal(t, "print('hi')", string(data))
}

func TestUnzipMissingLocalArchive(t *testing.T) {
	_, err := Unzip(Options{URI: filepath.Join(t.TempDir(), "absent.zip")})
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidZip))
}

func TestUnzipNotAZip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fake.zip")
	require.NoError(t, os.WriteFile(path, []byte("not an archive"), 0644))

	_, err := Unzip(Options{URI: path})
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidZip))
}

func TestUnzipRequiresSingleTopLevelDir(t *testing.T) {
	zipPath := buildZip(t, map[string]string{
		"one/" + vars.DefinitionFile: `{}`,
		"two/README.md":              "x",
	})

	_, err := Unzip(Options{URI: zipPath})
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidZip))
	assert.Contains(t, err.Error(), "single top level directory")
}

func TestUnzipRequiresDefinitionFile(t *testing.T) {
	zipPath := buildZip(t, map[string]string{
		"tpl/README.md": "no definition here",
	})

	_, err := Unzip(Options{URI: zipPath})
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidZip))
	assert.Contains(t, err.Error(), vars.DefinitionFile)
}

func TestUnzipEncryptedWithPassword(t *testing.T) {
	zipPath := buildEncryptedZip(t, map[string]string{
		"tpl/" + vars.DefinitionFile: `{"name": "x"}`,
	}, "sekrit")

	templateDir, err := Unzip(Options{URI: zipPath, Password: "sekrit"})
	require.NoError(t, err)
	defer os.RemoveAll(filepath.Dir(templateDir))

	assert.FileExists(t, filepath.Join(templateDir, vars.DefinitionFile))
}

func TestUnzipEncryptedPasswordFromEnv(t *testing.T) {
	zipPath := buildEncryptedZip(t, map[string]string{
		"tpl/" + vars.DefinitionFile: `{"name": "x"}`,
	}, "from-env")
	t.Setenv(EnvRepoPassword, "from-env")

	templateDir, err := Unzip(Options{URI: zipPath})
	require.NoError(t, err)
	defer os.RemoveAll(filepath.Dir(templateDir))

	assert.FileExists(t, filepath.Join(templateDir, vars.DefinitionFile))
}

func TestUnzipEncryptedWithoutPassword(t *testing.T) {
	zipPath := buildEncryptedZip(t, map[string]string{
		"tpl/" + vars.DefinitionFile: `{"name": "x"}`,
	}, "sekrit")

	_, err := Unzip(Options{URI: zipPath, NoInput: true})
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidZip))
}

func TestTopLevelDir(t *testing.T) {
	zipPath := buildZip(t, map[string]string{
		"root/a.txt":     "a",
		"root/sub/b.txt": "b",
	})
	r, err := zip.OpenReader(zipPath)
	require.NoError(t, err)
	defer r.Close()

	assert.Equal(t, "root", topLevelDir(r.File))
}

func TestTopLevelDirBareFile(t *testing.T) {
	zipPath := buildZip(t, map[string]string{"loose.txt": "x"})
	r, err := zip.OpenReader(zipPath)
	require.NoError(t, err)
	defer r.Close()

	assert.Equal(t, "", topLevelDir(r.File))
}
