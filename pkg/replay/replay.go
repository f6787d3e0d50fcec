// Package replay persists an assembled context keyed by template
// name, so a later run can skip prompting entirely.
package replay

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/arthur-debert/pastry/pkg/errors"
	"github.com/arthur-debert/pastry/pkg/logging"
	"github.com/arthur-debert/pastry/pkg/vars"
)

// FileName returns the replay record path for a template name. Only
// the base name of the template identifier is used, with .json
// appended when missing.
func FileName(replayDir, templateName string) string {
	name := templateName
	if idx := strings.LastIndex(name, "/"); idx >= 0 {
		name = name[idx+1:]
	}
	if !strings.HasSuffix(name, ".json") {
		name += ".json"
	}
	return filepath.Join(replayDir, name)
}

// Dump writes the context as a pretty-printed replay record. The
// write is a whole-file overwrite, never partial.
func Dump(replayDir, templateName string, ctx *vars.Context) error {
	if templateName == "" {
		return errors.New(errors.ErrInvalidInput, "template name is required")
	}
	if ctx == nil || ctx.Root().Len() == 0 {
		return errors.New(errors.ErrInvalidInput, "context is required to not be empty")
	}

	if err := os.MkdirAll(replayDir, 0755); err != nil {
		return errors.Wrapf(err, errors.ErrDirCreate, "cannot create replay directory %q", replayDir)
	}

	data, err := ctx.Root().MarshalIndent()
	if err != nil {
		return errors.Wrap(err, errors.ErrInternal, "cannot serialize context")
	}

	path := FileName(replayDir, templateName)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.Wrapf(err, errors.ErrFileWrite, "cannot write replay file %q", path)
	}

	logger := logging.GetLogger("replay")
	logger.Debug().Str("path", path).Msg("replay record written")
	return nil
}

// Load reads a previously dumped context back. Missing files and
// empty contexts are both errors.
func Load(replayDir, templateName string) (*vars.Context, error) {
	if templateName == "" {
		return nil, errors.New(errors.ErrInvalidInput, "template name is required")
	}

	path := FileName(replayDir, templateName)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrReplayLoad, "no replay file found at %q", path)
	}

	root := vars.NewOrderedMap()
	if err := json.Unmarshal(data, root); err != nil {
		return nil, errors.Wrapf(err, errors.ErrReplayLoad, "replay file %q is not valid JSON", path)
	}
	if root.Len() == 0 {
		return nil, errors.Newf(errors.ErrReplayLoad, "replay file %q holds an empty context", path)
	}

	ctx, err := vars.FromRoot(root)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrReplayLoad, "replay file %q is not a context", path)
	}
	return ctx, nil
}
