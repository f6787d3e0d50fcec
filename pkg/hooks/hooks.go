// Package hooks finds, renders and executes the lifecycle scripts a
// template may carry: pre_prompt, pre_gen_project and
// post_gen_project.
package hooks

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/arthur-debert/pastry/pkg/errors"
	"github.com/arthur-debert/pastry/pkg/logging"
	"github.com/arthur-debert/pastry/pkg/render"
	"github.com/arthur-debert/pastry/pkg/vars"
)

// Hook names
const (
	PrePrompt = "pre_prompt"
	PreGen    = "pre_gen_project"
	PostGen   = "post_gen_project"
)

// HooksDir is the directory, relative to the template root, where
// hook scripts live.
const HooksDir = "hooks"

// interpreters maps known script extensions to the interpreter that
// runs them. Anything not listed is executed directly and must carry
// its own execute permission and shebang.
var interpreters = map[string]string{
	".py": "python3",
	".sh": "sh",
}

// Find returns the absolute path of the hook script for name, or ""
// when the template carries none. Scripts live in hooks/ and, when a
// variable-definition file exists at dir's level, also in
// hooks/<name>/. The first file whose base name (extension stripped)
// equals name wins, in directory-listing order.
func Find(dir, name string) (string, error) {
	hooksDir := filepath.Join(dir, HooksDir)
	if _, err := os.Stat(hooksDir); err != nil {
		return "", nil
	}

	candidates := []string{hooksDir}
	if _, err := os.Stat(filepath.Join(dir, vars.DefinitionFile)); err == nil {
		candidates = append(candidates, filepath.Join(hooksDir, name))
	}

	for _, candidate := range candidates {
		entries, err := os.ReadDir(candidate)
		if err != nil {
			continue
		}
		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			base := strings.TrimSuffix(entry.Name(), filepath.Ext(entry.Name()))
			if base == name {
				abs, err := filepath.Abs(filepath.Join(candidate, entry.Name()))
				if err != nil {
					return "", errors.Wrapf(err, errors.ErrFileAccess, "cannot resolve hook path")
				}
				return abs, nil
			}
		}
	}

	return "", nil
}

// Run renders the named hook against the context and executes it with
// the project directory as working directory. A template without the
// hook is a silent no-op.
func Run(templateDir, name, projectDir string, ctx *vars.Context, env *render.Env) error {
	scriptPath, err := Find(templateDir, name)
	if err != nil {
		return err
	}
	if scriptPath == "" {
		logger := logging.GetLogger("hooks")
		logger.Debug().Str("hook", name).Msg("no hook script found")
		return nil
	}
	return runWithContext(scriptPath, projectDir, ctx, env)
}

// RunWithCleanup runs the named hook and, on failure, deletes the
// project directory when the policy flag says so before propagating
// the error.
func RunWithCleanup(templateDir, name, projectDir string, ctx *vars.Context, env *render.Env, deleteProjectOnFailure bool) error {
	logger := logging.GetLogger("hooks")

	if err := Run(templateDir, name, projectDir, ctx, env); err != nil {
		if deleteProjectOnFailure {
			if rmErr := os.RemoveAll(projectDir); rmErr != nil {
				logger.Error().Err(rmErr).Str("projectDir", projectDir).
					Msg("failed to delete project directory during cleanup")
			}
		}
		logger.Error().Str("hook", name).
			Msg("stopping generation because hook script didn't exit successfully")
		return err
	}
	return nil
}

// RunPrePrompt runs the pre_prompt hook, if any. The template source
// is copied into a fresh temporary directory, the hook executes with
// that copy as its working directory, and on success the copy becomes
// the template root for the rest of the pipeline. With no hook, the
// original directory is returned untouched.
func RunPrePrompt(repoDir string) (string, error) {
	scriptPath, err := Find(repoDir, PrePrompt)
	if err != nil {
		return "", err
	}
	if scriptPath == "" {
		return repoDir, nil
	}

	tempDir, err := os.MkdirTemp("", "pastry-repo-")
	if err != nil {
		return "", errors.Wrap(err, errors.ErrDirCreate, "cannot create temporary template directory")
	}

	if err := copyTree(repoDir, tempDir); err != nil {
		_ = os.RemoveAll(tempDir)
		return "", err
	}

	// Run the copied hook so its edits land in the copy.
	copiedScript, err := Find(tempDir, PrePrompt)
	if err != nil || copiedScript == "" {
		copiedScript = scriptPath
	}
	if err := runScript(copiedScript, tempDir); err != nil {
		_ = os.RemoveAll(tempDir)
		return "", err
	}

	return tempDir, nil
}

// runWithContext renders the hook script, writes the rendered text to
// a scratch directory preserving the original's permission bits, and
// executes the copy. The scratch directory is deleted whether or not
// execution succeeds.
func runWithContext(scriptPath, cwd string, ctx *vars.Context, env *render.Env) error {
	logger := logging.GetLogger("hooks")

	contents, err := os.ReadFile(scriptPath)
	if err != nil {
		return errors.Wrapf(err, errors.ErrFileAccess, "cannot read hook script %q", scriptPath)
	}

	rendered, err := env.Render(scriptPath, string(contents), ctx.Data())
	if err != nil {
		if errors.IsErrorCode(err, errors.ErrUndefinedVariable) {
			return errors.Wrapf(err, errors.ErrUndefinedVariable,
				"unable to render hook script %q", scriptPath).WithDetail("script", scriptPath)
		}
		return err
	}

	tempDir, err := os.MkdirTemp("", "pastry-hook-")
	if err != nil {
		return errors.Wrap(err, errors.ErrDirCreate, "cannot create hook scratch directory")
	}
	defer func() {
		if rmErr := os.RemoveAll(tempDir); rmErr != nil {
			logger.Error().Err(rmErr).Str("tempDir", tempDir).Msg("failed to remove hook scratch directory")
		}
	}()

	info, err := os.Stat(scriptPath)
	if err != nil {
		return errors.Wrapf(err, errors.ErrFileAccess, "cannot stat hook script %q", scriptPath)
	}

	tempScript := filepath.Join(tempDir, "hook"+filepath.Ext(scriptPath))
	if err := os.WriteFile(tempScript, []byte(rendered), info.Mode().Perm()); err != nil {
		return errors.Wrapf(err, errors.ErrFileWrite, "cannot write rendered hook script")
	}

	return runScript(tempScript, cwd)
}

// runScript invokes a script as a subprocess with the given working
// directory, dispatching to an interpreter for known extensions.
func runScript(scriptPath, cwd string) error {
	var cmd *exec.Cmd
	if interp, ok := interpreters[filepath.Ext(scriptPath)]; ok {
		logging.LogCommand(interp, []string{scriptPath})
		cmd = exec.Command(interp, scriptPath)
	} else {
		logging.LogCommand(scriptPath, nil)
		cmd = exec.Command(scriptPath)
	}

	cmd.Dir = cwd
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.Stdin = os.Stdin

	if err := cmd.Run(); err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			return errors.Newf(errors.ErrHookFailed,
				"hook script failed (exit status: %d)", exitErr.ExitCode()).
				WithDetail("script", scriptPath).
				WithDetail("exitCode", exitErr.ExitCode())
		}
		// exec format errors land here: empty or invalid script files
		return errors.Wrapf(err, errors.ErrHookFailed,
			"hook script failed, might be an empty or invalid script file").
			WithDetail("script", scriptPath)
	}
	return nil
}

// copyTree copies a directory tree preserving file modes
func copyTree(src, dst string) error {
	entries, err := os.ReadDir(src)
	if err != nil {
		return errors.Wrapf(err, errors.ErrFileAccess, "cannot list %q", src)
	}

	for _, entry := range entries {
		srcPath := filepath.Join(src, entry.Name())
		dstPath := filepath.Join(dst, entry.Name())

		if entry.IsDir() {
			info, err := entry.Info()
			if err != nil {
				return errors.Wrapf(err, errors.ErrFileAccess, "cannot stat %q", srcPath)
			}
			if err := os.MkdirAll(dstPath, info.Mode().Perm()); err != nil {
				return errors.Wrapf(err, errors.ErrDirCreate, "cannot create %q", dstPath)
			}
			if err := copyTree(srcPath, dstPath); err != nil {
				return err
			}
			continue
		}

		info, err := entry.Info()
		if err != nil {
			return errors.Wrapf(err, errors.ErrFileAccess, "cannot stat %q", srcPath)
		}
		data, err := os.ReadFile(srcPath)
		if err != nil {
			return errors.Wrapf(err, errors.ErrFileAccess, "cannot read %q", srcPath)
		}
		if err := os.WriteFile(dstPath, data, info.Mode().Perm()); err != nil {
			return errors.Wrapf(err, errors.ErrFileWrite, "cannot write %q", dstPath)
		}
	}

	return nil
}
