// Package zipfile acquires template sources from zip archives, local
// or downloaded, including password protected ones.
package zipfile

import (
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/yeka/zip"

	"github.com/arthur-debert/pastry/pkg/errors"
	"github.com/arthur-debert/pastry/pkg/logging"
	"github.com/arthur-debert/pastry/pkg/paths"
	"github.com/arthur-debert/pastry/pkg/prompt"
	"github.com/arthur-debert/pastry/pkg/vars"
)

// EnvRepoPassword supplies the archive password non-interactively
const EnvRepoPassword = "PASTRY_REPO_PASSWORD"

// Options configures one archive acquisition
type Options struct {
	// URI is a local path or a URL to a zip archive
	URI string

	// IsURL marks URI as remote
	IsURL bool

	// CloneTo is the directory downloaded archives are cached under
	CloneTo string

	// NoInput deletes stale downloads and forbids password prompting
	NoInput bool

	// Password decrypts protected archives; falls back to the
	// environment, then to an interactive secret prompt.
	Password string

	// Asker resolves stale-cache and password prompts
	Asker prompt.Asker
}

// Unzip fetches and unpacks the archive into a fresh temporary
// directory and returns the template directory inside it.
func Unzip(opts Options) (string, error) {
	logger := logging.GetLogger("zipfile")

	zipPath, err := fetch(opts)
	if err != nil {
		return "", err
	}

	tempDir, err := os.MkdirTemp("", "pastry-zip-")
	if err != nil {
		return "", errors.Wrap(err, errors.ErrDirCreate, "cannot create extraction directory")
	}

	templateDir, err := extract(zipPath, tempDir, opts)
	if err != nil {
		_ = os.RemoveAll(tempDir)
		return "", err
	}

	logger.Debug().Str("templateDir", templateDir).Msg("archive extracted")
	return templateDir, nil
}

func fetch(opts Options) (string, error) {
	if !opts.IsURL {
		zipPath, err := filepath.Abs(opts.URI)
		if err != nil {
			return "", errors.Wrap(err, errors.ErrFileAccess, "cannot resolve archive path")
		}
		if _, serr := os.Stat(zipPath); serr != nil {
			return "", errors.Newf(errors.ErrInvalidZip, "zip file %q does not exist", zipPath)
		}
		return zipPath, nil
	}

	cloneTo := filepath.Clean(paths.ExpandHome(opts.CloneTo))
	if err := os.MkdirAll(cloneTo, 0755); err != nil {
		return "", errors.Wrapf(err, errors.ErrDirCreate, "cannot create %q", cloneTo)
	}

	zipPath := filepath.Join(cloneTo, filepath.Base(opts.URI))
	if _, serr := os.Stat(zipPath); serr == nil {
		refetch, derr := prompt.AndDelete(zipPath, opts.Asker, opts.NoInput)
		if derr != nil {
			return "", derr
		}
		if !refetch {
			return zipPath, nil
		}
	}

	resp, err := http.Get(opts.URI)
	if err != nil {
		return "", errors.Wrapf(err, errors.ErrInvalidZip, "cannot download %q", opts.URI)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", errors.Newf(errors.ErrInvalidZip, "cannot download %q: %s", opts.URI, resp.Status)
	}

	out, err := os.Create(zipPath)
	if err != nil {
		return "", errors.Wrapf(err, errors.ErrFileCreate, "cannot create %q", zipPath)
	}
	defer out.Close()
	if _, err := io.Copy(out, resp.Body); err != nil {
		return "", errors.Wrapf(err, errors.ErrFileWrite, "cannot write %q", zipPath)
	}

	return zipPath, nil
}

func extract(zipPath, tempDir string, opts Options) (string, error) {
	reader, err := zip.OpenReader(zipPath)
	if err != nil {
		return "", errors.Wrap(err, errors.ErrInvalidZip, "invalid zip file, not a valid template archive")
	}
	defer reader.Close()

	if len(reader.File) == 0 {
		return "", errors.New(errors.ErrInvalidZip, "zip archive is empty")
	}

	baseDir := topLevelDir(reader.File)
	if baseDir == "" {
		return "", errors.New(errors.ErrInvalidZip, "templates must have a single top level directory")
	}

	password := opts.Password
	if password == "" {
		password = os.Getenv(EnvRepoPassword)
	}

	if err := extractAll(reader.File, tempDir, password); err != nil {
		if !errors.IsErrorCode(err, errors.ErrInvalidZip) || opts.NoInput || opts.Asker == nil {
			return "", err
		}
		// One retry with an interactively supplied password.
		password, perr := opts.Asker.Secret("Zip is password protected. Please enter the password")
		if perr != nil {
			return "", perr
		}
		if err := extractAll(reader.File, tempDir, password); err != nil {
			return "", errors.New(errors.ErrInvalidZip, "invalid password provided for protected archive")
		}
	}

	templateDir := filepath.Join(tempDir, baseDir)
	if _, err := os.Stat(filepath.Join(templateDir, vars.DefinitionFile)); err != nil {
		return "", errors.Newf(errors.ErrInvalidZip,
			"zip archive does not contain a %s file", vars.DefinitionFile)
	}
	return templateDir, nil
}

// topLevelDir finds the single directory all archive entries live
// under, or "" when there is none.
func topLevelDir(files []*zip.File) string {
	prefix := ""
	for _, f := range files {
		name := filepath.ToSlash(f.Name)
		idx := strings.Index(name, "/")
		if idx < 0 {
			return ""
		}
		top := name[:idx]
		if prefix == "" {
			prefix = top
		} else if prefix != top {
			return ""
		}
	}
	return prefix
}

func extractAll(files []*zip.File, destDir, password string) error {
	for _, f := range files {
		if err := extractOne(f, destDir, password); err != nil {
			return err
		}
	}
	return nil
}

func extractOne(f *zip.File, destDir, password string) error {
	destPath := filepath.Join(destDir, filepath.FromSlash(f.Name))
	if !strings.HasPrefix(destPath, filepath.Clean(destDir)+string(os.PathSeparator)) {
		return errors.Newf(errors.ErrInvalidZip, "archive entry %q escapes the extraction directory", f.Name)
	}

	if f.FileInfo().IsDir() {
		if err := os.MkdirAll(destPath, 0755); err != nil {
			return errors.Wrapf(err, errors.ErrDirCreate, "cannot create %q", destPath)
		}
		return nil
	}

	if f.IsEncrypted() {
		if password == "" {
			return errors.New(errors.ErrInvalidZip, "archive is password protected")
		}
		f.SetPassword(password)
	}

	rc, err := f.Open()
	if err != nil {
		return errors.Wrap(err, errors.ErrInvalidZip, "unable to extract zip file contents")
	}
	defer rc.Close()

	if err := os.MkdirAll(filepath.Dir(destPath), 0755); err != nil {
		return errors.Wrapf(err, errors.ErrDirCreate, "cannot create %q", filepath.Dir(destPath))
	}

	out, err := os.OpenFile(destPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, f.Mode().Perm())
	if err != nil {
		return errors.Wrapf(err, errors.ErrFileCreate, "cannot create %q", destPath)
	}
	defer out.Close()

	if _, err := io.Copy(out, rc); err != nil {
		// Decryption failures surface here as read errors.
		return errors.Wrap(err, errors.ErrInvalidZip, "unable to extract zip file contents")
	}
	return nil
}
