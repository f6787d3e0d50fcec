package vcs

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/arthur-debert/pastry/pkg/errors"
	"github.com/arthur-debert/pastry/pkg/logging"
	"github.com/arthur-debert/pastry/pkg/paths"
	"github.com/arthur-debert/pastry/pkg/prompt"
)

// CloneOptions configures one clone
type CloneOptions struct {
	// URL is the repository location, possibly "git+"/"hg+" prefixed
	URL string

	// Checkout is an optional branch, tag or commit
	Checkout string

	// CloneTo is the directory clones are cached under
	CloneTo string

	// NoInput deletes a stale cached clone without prompting
	NoInput bool

	// Asker resolves the stale-cache prompt when NoInput is unset
	Asker prompt.Asker
}

// Clone fetches a repository into the clone cache and returns the
// local directory. A previously cached copy is removed (after
// confirmation unless NoInput) and re-fetched.
func Clone(opts CloneOptions) (string, error) {
	logger := logging.GetLogger("vcs")

	cloneTo := filepath.Clean(paths.ExpandHome(opts.CloneTo))
	if err := os.MkdirAll(cloneTo, 0755); err != nil {
		return "", errors.Wrapf(err, errors.ErrDirCreate, "cannot create %q", cloneTo)
	}

	repoType, repoURL, err := IdentifyRepo(opts.URL)
	if err != nil {
		return "", err
	}

	if !IsInstalled(repoType) {
		return "", errors.Newf(errors.ErrVCSNotInstalled, "%s is not installed", repoType)
	}

	repoURL = strings.TrimRight(repoURL, "/")
	repoDir := filepath.Join(cloneTo, RepoName(repoType, repoURL))

	if _, serr := os.Stat(repoDir); serr == nil {
		refetch, derr := prompt.AndDelete(repoDir, opts.Asker, opts.NoInput)
		if derr != nil {
			return "", derr
		}
		if !refetch {
			logger.Debug().Str("repoDir", repoDir).Msg("reusing cached clone")
			return repoDir, nil
		}
	}

	args := []string{"clone", repoURL}
	if repoType == "git" {
		args = append(args, RepoName(repoType, repoURL))
	}

	logging.LogCommand(repoType, args)
	cmd := exec.Command(repoType, args...)
	cmd.Dir = cloneTo
	output, err := cmd.CombinedOutput()
	if err != nil {
		text := string(output)
		if strings.Contains(strings.ToLower(text), "not found") {
			return "", errors.Newf(errors.ErrRepoNotFound,
				"the repository %q could not be found, have you made a typo?", repoURL)
		}
		return "", errors.Newf(errors.ErrCloneFailed,
			"failed to clone repository %q: %s", repoURL, strings.TrimSpace(text))
	}

	if opts.Checkout != "" {
		if err := checkout(repoType, repoDir, repoURL, opts.Checkout); err != nil {
			return "", err
		}
	}

	return repoDir, nil
}

func checkout(repoType, repoDir, repoURL, ref string) error {
	var cmd *exec.Cmd
	switch repoType {
	case "git":
		cmd = exec.Command("git", "checkout", ref)
	case "hg":
		cmd = exec.Command("hg", "update", ref)
	default:
		return errors.Newf(errors.ErrUnknownRepoType, "cannot checkout with %q", repoType)
	}

	logging.LogCommand(cmd.Path, cmd.Args[1:])
	cmd.Dir = repoDir
	output, err := cmd.CombinedOutput()
	if err != nil {
		text := string(output)
		for _, marker := range branchErrorMarkers {
			if strings.Contains(text, marker) {
				return errors.Newf(errors.ErrCloneFailed,
					"the %q branch of repository %q could not be found, have you made a typo?", ref, repoURL)
			}
		}
		return errors.Newf(errors.ErrCloneFailed,
			"failed to checkout %q: %s", ref, strings.TrimSpace(text))
	}
	return nil
}
