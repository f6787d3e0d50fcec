// Package generate walks a template tree and materializes the output
// project: directory and file names are rendered, text contents are
// rendered, binaries and copy-only matches are copied verbatim, and
// the whole output directory is rolled back on failure.
package generate

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/arthur-debert/pastry/pkg/errors"
	"github.com/arthur-debert/pastry/pkg/hooks"
	"github.com/arthur-debert/pastry/pkg/logging"
	"github.com/arthur-debert/pastry/pkg/render"
	"github.com/arthur-debert/pastry/pkg/vars"
)

// Options configures one generation run
type Options struct {
	// TemplateDir is the located template root (holds pastry.json)
	TemplateDir string

	// Context is the fully resolved variable context
	Context *vars.Context

	// Env is the shared render environment for this run
	Env *render.Env

	// OutputDir is where the project directory is created
	OutputDir string

	// OverwriteIfExists recreates an existing project directory
	OverwriteIfExists bool

	// SkipIfFileExists leaves already existing files untouched
	SkipIfFileExists bool

	// AcceptHooks enables pre_gen_project / post_gen_project
	AcceptHooks bool

	// KeepProjectOnFailure disables output rollback on failure
	KeepProjectOnFailure bool
}

// Files renders the template into a new project directory and returns
// its path. Any failure after the directory exists deletes it again,
// unless KeepProjectOnFailure is set.
func Files(opts Options) (string, error) {
	logger := logging.GetLogger("generate")
	data := opts.Context.Data()

	projectDir, err := createProjectDir(opts, data)
	if err != nil {
		return "", err
	}
	logger.Debug().Str("projectDir", projectDir).Msg("project directory created")

	deleteOnFailure := !opts.KeepProjectOnFailure

	if opts.AcceptHooks {
		if err := hooks.RunWithCleanup(opts.TemplateDir, hooks.PreGen, projectDir,
			opts.Context, opts.Env, deleteOnFailure); err != nil {
			return "", err
		}
	}

	if err := walkAndRender(opts, projectDir, data); err != nil {
		cleanup(projectDir, deleteOnFailure)
		return "", err
	}

	if opts.AcceptHooks {
		if err := hooks.RunWithCleanup(opts.TemplateDir, hooks.PostGen, projectDir,
			opts.Context, opts.Env, deleteOnFailure); err != nil {
			return "", err
		}
	}

	return projectDir, nil
}

// createProjectDir renders the output directory's name template and
// creates it. An existing target is recreated with OverwriteIfExists
// and an error otherwise.
func createProjectDir(opts Options, data map[string]interface{}) (string, error) {
	raw, ok := opts.Context.Vars().Get(vars.KeyTemplate)
	if !ok {
		return "", errors.Newf(errors.ErrInvalidInput,
			"context is missing the %s key naming the output directory", vars.KeyTemplate)
	}
	nameTemplate, ok := raw.(string)
	if !ok {
		return "", errors.Newf(errors.ErrInvalidInput,
			"%s must be a string before generation starts", vars.KeyTemplate)
	}

	rendered, err := opts.Env.Render(vars.KeyTemplate, nameTemplate, data)
	if err != nil {
		return "", err
	}

	projectDir := filepath.Clean(filepath.Join(opts.OutputDir, rendered))

	if _, serr := os.Stat(projectDir); serr == nil {
		if !opts.OverwriteIfExists {
			return "", errors.Newf(errors.ErrOutputDirExists,
				"output directory %q already exists", projectDir).
				WithDetail("path", projectDir)
		}
		if err := os.RemoveAll(projectDir); err != nil {
			return "", errors.Wrapf(err, errors.ErrFileAccess, "cannot remove existing %q", projectDir)
		}
	}

	if err := os.MkdirAll(projectDir, 0755); err != nil {
		return "", errors.Wrapf(err, errors.ErrDirCreate, "cannot create %q", projectDir)
	}
	return projectDir, nil
}

// walkAndRender walks the template tree top-down. Directories and
// files whose names start with "." or "_" are never copied; rendered
// directory names are created as encountered so empty directories
// survive generation.
func walkAndRender(opts Options, projectDir string, data map[string]interface{}) error {
	logger := logging.GetLogger("generate")
	copyPatterns := opts.Context.CopyWithoutRender()

	return filepath.WalkDir(opts.TemplateDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return errors.Wrapf(err, errors.ErrFileAccess, "walk failed at %q", path)
		}
		if path == opts.TemplateDir {
			return nil
		}

		rel, rerr := filepath.Rel(opts.TemplateDir, path)
		if rerr != nil {
			return errors.Wrap(rerr, errors.ErrInternal, "cannot relativize walk path")
		}
		name := d.Name()

		if d.IsDir() {
			if strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_") {
				return fs.SkipDir
			}
			// The hooks directory is part of the template machinery,
			// never of the generated project.
			if rel == hooks.HooksDir {
				return fs.SkipDir
			}
			destRel, derr := opts.Env.Render(rel, filepath.ToSlash(rel), data)
			if derr != nil {
				return derr
			}
			destDir := filepath.Join(projectDir, filepath.FromSlash(destRel))
			if merr := os.MkdirAll(destDir, 0755); merr != nil {
				return errors.Wrapf(merr, errors.ErrDirCreate, "cannot create %q", destDir)
			}
			return nil
		}

		if strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_") {
			return nil
		}
		// The variable-definition file itself is template machinery.
		if rel == vars.DefinitionFile {
			return nil
		}

		logger.Debug().Str("file", rel).Msg("processing file")
		return generateFile(opts, projectDir, path, rel, copyPatterns, data)
	})
}

// generateFile renders one file's destination path and either copies
// its bytes verbatim (binary or copy-only match) or renders its
// contents.
func generateFile(opts Options, projectDir, srcPath, rel string, copyPatterns []string, data map[string]interface{}) error {
	relSlash := filepath.ToSlash(rel)

	destRel, err := opts.Env.Render(relSlash, relSlash, data)
	if err != nil {
		return err
	}
	destPath := filepath.Join(projectDir, filepath.FromSlash(destRel))

	if opts.SkipIfFileExists {
		if _, serr := os.Stat(destPath); serr == nil {
			logger := logging.GetLogger("generate")
			logger.Debug().Str("file", destRel).Msg("file exists, skipping")
			return nil
		}
	}

	if parent := filepath.Dir(destPath); parent != "" {
		if err := os.MkdirAll(parent, 0755); err != nil {
			return errors.Wrapf(err, errors.ErrDirCreate, "cannot create %q", parent)
		}
	}

	info, err := os.Stat(srcPath)
	if err != nil {
		return errors.Wrapf(err, errors.ErrFileAccess, "cannot stat %q", srcPath)
	}

	binary, err := isBinary(srcPath)
	if err != nil {
		return err
	}
	if binary || isCopyOnly(relSlash, copyPatterns) {
		return copyBytes(srcPath, destPath, info.Mode().Perm())
	}

	contents, err := os.ReadFile(srcPath)
	if err != nil {
		return errors.Wrapf(err, errors.ErrFileAccess, "cannot read %q", srcPath)
	}

	rendered, err := opts.Env.Render(relSlash, string(contents), data)
	if err != nil {
		if errors.IsErrorCode(err, errors.ErrUndefinedVariable) {
			return errors.Wrapf(err, errors.ErrUndefinedVariable,
				"unable to create file %q", destRel).WithDetail("file", destRel)
		}
		return err
	}

	if err := os.WriteFile(destPath, []byte(rendered), info.Mode().Perm()); err != nil {
		return errors.Wrapf(err, errors.ErrFileWrite, "cannot write %q", destPath)
	}
	return nil
}

// isCopyOnly matches the walk-relative, unrendered path against the
// copy-without-render patterns. A bare-name pattern like *.png matches
// at any depth.
func isCopyOnly(relSlash string, patterns []string) bool {
	base := relSlash
	if idx := strings.LastIndex(relSlash, "/"); idx >= 0 {
		base = relSlash[idx+1:]
	}
	for _, pattern := range patterns {
		if ok, err := doublestar.Match(pattern, relSlash); err == nil && ok {
			return true
		}
		if !strings.Contains(pattern, "/") {
			if ok, err := doublestar.Match(pattern, base); err == nil && ok {
				return true
			}
		}
	}
	return false
}

func copyBytes(srcPath, destPath string, mode os.FileMode) error {
	data, err := os.ReadFile(srcPath)
	if err != nil {
		return errors.Wrapf(err, errors.ErrFileAccess, "cannot read %q", srcPath)
	}
	if err := os.WriteFile(destPath, data, mode); err != nil {
		return errors.Wrapf(err, errors.ErrFileWrite, "cannot write %q", destPath)
	}
	return nil
}

// cleanup deletes the project directory after a failed run. Deletion
// failures are logged, never silently swallowed, and never mask the
// original error.
func cleanup(projectDir string, deleteOnFailure bool) {
	if !deleteOnFailure {
		return
	}
	if err := os.RemoveAll(projectDir); err != nil {
		logger := logging.GetLogger("generate")
		logger.Error().Err(err).
			Str("projectDir", projectDir).
			Msg("failed to delete project directory during cleanup")
	}
}
