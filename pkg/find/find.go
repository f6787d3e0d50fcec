// Package find locates the actual template root inside a resolved
// template source directory.
package find

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/arthur-debert/pastry/pkg/errors"
	"github.com/arthur-debert/pastry/pkg/logging"
	"github.com/arthur-debert/pastry/pkg/render"
	"github.com/arthur-debert/pastry/pkg/vars"
)

// Template determines which directory under repoDir is the template
// root, i.e. the directory holding pastry.json at its top level.
// Candidates are checked in order: repoDir itself, _pastry/, pastry/,
// any placeholder-named directory ({{ ... }} in the name, checked both
// rendered against the empty context and literally), and finally the
// first non-hidden subdirectory in listing order.
func Template(repoDir string, env *render.Env) (string, error) {
	logger := logging.GetLogger("find")
	logger.Debug().Str("repoDir", repoDir).Msg("searching for the project template")

	if hasDefinition(repoDir) {
		return repoDir, nil
	}

	for _, name := range []string{"_pastry", "pastry"} {
		candidate := filepath.Join(repoDir, name)
		if hasDefinition(candidate) {
			return candidate, nil
		}
	}

	entries, err := os.ReadDir(repoDir)
	if err != nil {
		return "", errors.Wrapf(err, errors.ErrFileAccess, "cannot list %q", repoDir)
	}

	// Placeholder directories first: names carrying template syntax
	// are tried rendered against the empty context, falling back to
	// the literal name if rendering fails.
	for _, entry := range entries {
		if !entry.IsDir() || !render.HasTemplateSyntax(entry.Name()) {
			continue
		}
		name := entry.Name()
		if rendered, rerr := env.Render("dirname", name, emptyData()); rerr == nil && rendered != "" {
			candidate := filepath.Join(repoDir, rendered)
			if hasDefinition(candidate) {
				return candidate, nil
			}
		}
		candidate := filepath.Join(repoDir, name)
		if hasDefinition(candidate) {
			return candidate, nil
		}
	}

	for _, entry := range entries {
		if !entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		candidate := filepath.Join(repoDir, entry.Name())
		if hasDefinition(candidate) {
			return candidate, nil
		}
	}

	return "", errors.Newf(errors.ErrNoTemplate,
		"no template found in %q: no directory contains %s", repoDir, vars.DefinitionFile)
}

func hasDefinition(dir string) bool {
	info, err := os.Stat(filepath.Join(dir, vars.DefinitionFile))
	return err == nil && !info.IsDir()
}

func emptyData() map[string]interface{} {
	return map[string]interface{}{
		vars.ReservedKey: map[string]interface{}{},
	}
}
