package hooks

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

func writeHook(t *testing.T, templateDir, name, contents string) string {
	t.Helper()
	dir := filepath.Join(templateDir, HooksDir)
	require.NoError(t, os.MkdirAll(dir, 0755))
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(contents), 0755))
	return path
}

func testContext(t *testing.T) (*vars.Context, *render.Env) {
	t.Helper()
	ctx := vars.New()
	ctx.Vars().Set("project_name", "Demo")
	env, err := render.NewEnv(ctx)
	require.NoError(t, err)
	return ctx, env
}

func TestFindHookScript(t *testing.T) {
	templateDir := t.TempDir()
	want := writeHook(t, templateDir, "post_gen_project.sh", "true\n")

	got, err := Find(templateDir, PostGen)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestFindNoHooksDir(t *testing.T) {
	got, err := Find(t.TempDir(), PostGen)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestFindIgnoresOtherHooks(t *testing.T) {
	templateDir := t.TempDir()
	writeHook(t, templateDir, "pre_gen_project.sh", "true\n")

	got, err := Find(templateDir, PostGen)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestFindNestedHookDir(t *testing.T) {
	// When the directory carries a definition file, hooks may also
	// live one level down in hooks/<name>/.
	templateDir := t.TempDir()
	require.NoError(t, os.WriteFile(
		filepath.Join(templateDir, vars.DefinitionFile), []byte(`{}`), 0644))
	nested := filepath.Join(templateDir, HooksDir, PostGen)
	require.NoError(t, os.MkdirAll(nested, 0755))
	want := filepath.Join(nested, PostGen+".sh")
	require.NoError(t, os.WriteFile(want, []byte("true\n"), 0755))

	got, err := Find(templateDir, PostGen)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestRunMissingHookIsNoOp(t *testing.T) {
	ctx, env := testContext(t)
	assert.NoError(t, Run(t.TempDir(), PostGen, t.TempDir(), ctx, env))
}

func TestRunExecutesRenderedHook(t *testing.T) {
	templateDir := t.TempDir()
	writeHook(t, templateDir, "post_gen_project.sh",
		"echo '{{ .pastry.project_name }}' > marker.txt\n")
	ctx, env := testContext(t)
	projectDir := t.TempDir()

	require.NoError(t, Run(templateDir, PostGen, projectDir, ctx, env))

	data, err := os.ReadFile(filepath.Join(projectDir, "marker.txt"))
	require.NoError(t, err)
	assert.Equal(t, "Demo\n", string(data))
}

func TestRunFailingHook(t *testing.T) {
	templateDir := t.TempDir()
	writeHook(t, templateDir, "post_gen_project.sh", "exit 3\n")
	ctx, env := testContext(t)

	err := Run(templateDir, PostGen, t.TempDir(), ctx, env)
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrHookFailed))
	details := errors.GetErrorDetails(err)
	assert.Equal(t, 3, details["exitCode"])
}

func TestRunHookWithUndefinedVariable(t *testing.T) {
	templateDir := t.TempDir()
	writeHook(t, templateDir, "pre_gen_project.sh", "echo {{ .pastry.missing }}\n")
	ctx, env := testContext(t)

	err := Run(templateDir, PreGen, t.TempDir(), ctx, env)
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrUndefinedVariable))
}

func TestRunWithCleanupDeletesProjectDir(t *testing.T) {
	templateDir := t.TempDir()
	writeHook(t, templateDir, "post_gen_project.sh", "exit 1\n")
	ctx, env := testContext(t)
	projectDir := filepath.Join(t.TempDir(), "project")
	require.NoError(t, os.MkdirAll(projectDir, 0755))

	err := RunWithCleanup(templateDir, PostGen, projectDir, ctx, env, true)
	require.Error(t, err)
	assert.NoDirExists(t, projectDir)
}

func TestRunWithCleanupKeepsProjectDir(t *testing.T) {
	templateDir := t.TempDir()
	writeHook(t, templateDir, "post_gen_project.sh", "exit 1\n")
	ctx, env := testContext(t)
	projectDir := filepath.Join(t.TempDir(), "project")
	require.NoError(t, os.MkdirAll(projectDir, 0755))

	err := RunWithCleanup(templateDir, PostGen, projectDir, ctx, env, false)
	require.Error(t, err)
	assert.DirExists(t, projectDir)
}

func TestRunPrePromptNoHookReturnsOriginal(t *testing.T) {
	repoDir := t.TempDir()

	got, err := RunPrePrompt(repoDir)
	require.NoError(t, err)
	assert.Equal(t, repoDir, got)
}

func TestRunPrePromptRunsInCopy(t *testing.T) {
	repoDir := t.TempDir()
	require.NoError(t, os.WriteFile(
		filepath.Join(repoDir, vars.DefinitionFile), []byte(`{"name": "x"}`), 0644))
	writeHook(t, repoDir, "pre_prompt.sh", "echo tweaked > touched-by-hook.txt\n")

	got, err := RunPrePrompt(repoDir)
	require.NoError(t, err)
	require.NotEqual(t, repoDir, got)
	defer os.RemoveAll(got)

	// The hook's side effects land in the copy, not the original.
	assert.FileExists(t, filepath.Join(got, "touched-by-hook.txt"))
	assert.NoFileExists(t, filepath.Join(repoDir, "touched-by-hook.txt"))
	assert.FileExists(t, filepath.Join(got, vars.DefinitionFile))
}

func TestRunPrePromptFailingHook(t *testing.T) {
	repoDir := t.TempDir()
	writeHook(t, repoDir, "pre_prompt.sh", "exit 1\n")

	_, err := RunPrePrompt(repoDir)
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrHookFailed))
}
