// Package repository resolves a template source identifier (local
// path, repository URL or zip archive) into a local directory.
package repository

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/arthur-debert/pastry/pkg/errors"
	"github.com/arthur-debert/pastry/pkg/logging"
	"github.com/arthur-debert/pastry/pkg/paths"
	"github.com/arthur-debert/pastry/pkg/prompt"
	"github.com/arthur-debert/pastry/pkg/vcs"
	"github.com/arthur-debert/pastry/pkg/zipfile"
)

// builtinAbbreviations ship with pastry; user configuration may add
// to or override them.
var builtinAbbreviations = map[string]string{
	"gh": "https://github.com/{0}.git",
	"gl": "https://gitlab.com/{0}.git",
	"bb": "https://bitbucket.org/{0}",
}

// Options configures source resolution
type Options struct {
	// Template is the source identifier as given by the caller
	Template string

	// Abbreviations extends the builtin prefix expansions
	Abbreviations map[string]string

	// CloneTo is where clones and downloads are cached
	CloneTo string

	// Checkout is an optional branch, tag or commit
	Checkout string

	// NoInput forces refresh of cached copies without prompting
	NoInput bool

	// Password decrypts protected zip archives
	Password string

	// Directory selects a subdirectory inside the resolved source
	Directory string

	// Asker resolves any interactive question during acquisition
	Asker prompt.Asker
}

// Determine resolves the template source to a local directory. The
// returned cleanup function removes any temporary extraction
// directory and is safe to call unconditionally.
func Determine(opts Options) (string, func(), error) {
	logger := logging.GetLogger("repository")
	noop := func() {}

	template := ExpandAbbreviations(opts.Template, opts.Abbreviations)
	logger.Debug().Str("template", template).Msg("resolving template source")

	var repoDir string
	cleanup := noop

	switch {
	case strings.HasSuffix(strings.ToLower(template), ".zip"):
		isURL := strings.Contains(template, "://")
		dir, err := zipfile.Unzip(zipfile.Options{
			URI:      template,
			IsURL:    isURL,
			CloneTo:  opts.CloneTo,
			NoInput:  opts.NoInput,
			Password: opts.Password,
			Asker:    opts.Asker,
		})
		if err != nil {
			return "", noop, err
		}
		repoDir = dir
		// The archive was extracted into a throwaway parent directory.
		extractRoot := filepath.Dir(dir)
		cleanup = func() {
			if err := os.RemoveAll(extractRoot); err != nil {
				logger.Error().Err(err).Str("dir", extractRoot).Msg("failed to remove extraction directory")
			}
		}

	case isRepoURL(template):
		dir, err := vcs.Clone(vcs.CloneOptions{
			URL:      template,
			Checkout: opts.Checkout,
			CloneTo:  opts.CloneTo,
			NoInput:  opts.NoInput,
			Asker:    opts.Asker,
		})
		if err != nil {
			return "", noop, err
		}
		repoDir = dir

	default:
		dir, err := filepath.Abs(paths.ExpandHome(template))
		if err != nil {
			return "", noop, errors.Wrap(err, errors.ErrFileAccess, "cannot resolve template path")
		}
		if info, serr := os.Stat(dir); serr != nil || !info.IsDir() {
			return "", noop, errors.Newf(errors.ErrRepoNotFound,
				"the template %q could not be found", opts.Template)
		}
		repoDir = dir
	}

	if opts.Directory != "" {
		repoDir = filepath.Join(repoDir, filepath.FromSlash(opts.Directory))
		if info, serr := os.Stat(repoDir); serr != nil || !info.IsDir() {
			cleanup()
			return "", noop, errors.Newf(errors.ErrRepoNotFound,
				"the directory %q could not be found in the template %q", opts.Directory, opts.Template)
		}
	}

	return repoDir, cleanup, nil
}

// ExpandAbbreviations expands a prefixed source identifier like
// gh:user/repo using the builtin and user-supplied abbreviation
// tables. A {0} placeholder in the expansion receives the remainder.
func ExpandAbbreviations(template string, abbreviations map[string]string) string {
	table := make(map[string]string, len(builtinAbbreviations)+len(abbreviations))
	for k, v := range builtinAbbreviations {
		table[k] = v
	}
	for k, v := range abbreviations {
		table[k] = v
	}

	if expansion, ok := table[template]; ok {
		return expansion
	}

	prefix, rest, found := strings.Cut(template, ":")
	if !found {
		return template
	}
	expansion, ok := table[prefix]
	if !ok {
		return template
	}
	return strings.ReplaceAll(expansion, "{0}", rest)
}

func isRepoURL(template string) bool {
	if strings.HasPrefix(template, "git+") || strings.HasPrefix(template, "hg+") {
		return true
	}
	if strings.Contains(template, "://") {
		return true
	}
	// SSH form: [user@]host:path
	return strings.Contains(template, "@") && strings.Contains(template, ":")
}
