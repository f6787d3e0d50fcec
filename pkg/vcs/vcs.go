// Package vcs acquires template sources from version control by
// shelling out to the git or hg command line tools.
package vcs

import (
	"os/exec"
	"strings"

	"github.com/arthur-debert/pastry/pkg/errors"
)

// branchErrorMarkers appear in checkout output when the requested
// reference does not exist.
var branchErrorMarkers = []string{"error: pathspec", "unknown revision"}

// IdentifyRepo determines whether a URL names a git or hg repository.
// Repos can be forced with a "git+" or "hg+" prefix.
func IdentifyRepo(repoURL string) (repoType, cleanURL string, err error) {
	switch {
	case strings.HasPrefix(repoURL, "git+"):
		return "git", repoURL[4:], nil
	case strings.HasPrefix(repoURL, "hg+"):
		return "hg", repoURL[3:], nil
	}

	for _, host := range []string{"github.com", "gitlab.com", "gitorious.org"} {
		if strings.Contains(repoURL, host) {
			return "git", repoURL, nil
		}
	}

	if strings.Contains(repoURL, "bitbucket.org") {
		if strings.HasSuffix(repoURL, ".git") {
			return "git", repoURL, nil
		}
		return "hg", repoURL, nil
	}

	switch {
	case strings.HasSuffix(repoURL, ".git"):
		return "git", repoURL, nil
	case strings.HasSuffix(repoURL, ".hg"):
		return "hg", repoURL, nil
	case strings.Contains(repoURL, "@") && strings.Contains(repoURL, ":"):
		// SSH form: [user@]host:path
		return "git", repoURL, nil
	}

	return "", "", errors.Newf(errors.ErrUnknownRepoType,
		"cannot determine repository type of %q", repoURL)
}

// IsInstalled reports whether the version control tool is on PATH
func IsInstalled(repoType string) bool {
	_, err := exec.LookPath(repoType)
	return err == nil
}

// RepoName derives the local directory name a clone will land in
func RepoName(repoType, repoURL string) string {
	repoURL = strings.TrimRight(repoURL, "/")

	var name string
	if strings.Contains(repoURL, "@") && strings.Contains(repoURL, ":") {
		parts := strings.Split(repoURL, ":")
		name = parts[len(parts)-1]
		if idx := strings.LastIndex(name, "/"); idx >= 0 {
			name = name[idx+1:]
		}
	} else {
		parts := strings.Split(repoURL, "/")
		name = parts[len(parts)-1]
	}

	switch repoType {
	case "git":
		name = strings.TrimSuffix(name, ".git")
	case "hg":
		name = strings.TrimSuffix(name, ".hg")
	}
	return name
}
