// Package pastry drives the full materialization pipeline from
// template source to generated project directory.
package pastry

import (
	"os"
	"path/filepath"

	"github.com/arthur-debert/pastry/pkg/config"
	"github.com/arthur-debert/pastry/pkg/errors"
	"github.com/arthur-debert/pastry/pkg/find"
	"github.com/arthur-debert/pastry/pkg/generate"
	"github.com/arthur-debert/pastry/pkg/hooks"
	"github.com/arthur-debert/pastry/pkg/logging"
	"github.com/arthur-debert/pastry/pkg/paths"
	"github.com/arthur-debert/pastry/pkg/prompt"
	"github.com/arthur-debert/pastry/pkg/render"
	"github.com/arthur-debert/pastry/pkg/replay"
	"github.com/arthur-debert/pastry/pkg/repository"
	"github.com/arthur-debert/pastry/pkg/vars"
)

// DefaultProjectDirTemplate names the output directory when the
// variable-definition file does not carry its own _template string.
const DefaultProjectDirTemplate = "{{ .pastry.project_name }}"

// Options configures one invocation
type Options struct {
	// Template is the source identifier: local path, repo URL, zip
	// archive or abbreviation.
	Template string

	// Checkout is an optional branch, tag or commit
	Checkout string

	// NoInput accepts computed defaults for every variable
	NoInput bool

	// ExtraContext overrides variables; *vars.OrderedMap keeps the
	// caller's ordering, plain maps are applied in sorted key order.
	ExtraContext interface{}

	// Replay restores the previously assembled context instead of
	// prompting.
	Replay bool

	// ReplayFile overrides the default replay record location
	ReplayFile string

	// OverwriteIfExists recreates an existing output directory
	OverwriteIfExists bool

	// OutputDir is where the project directory is created
	OutputDir string

	// ConfigFile overrides the user configuration file location
	ConfigFile string

	// DefaultConfig skips config files and uses built-in defaults
	DefaultConfig bool

	// Password decrypts protected zip archives
	Password string

	// Directory selects a subdirectory inside the template source
	Directory string

	// SkipIfFileExists leaves already existing files untouched
	SkipIfFileExists bool

	// AcceptHooks enables lifecycle scripts
	AcceptHooks bool

	// KeepProjectOnFailure disables output rollback on failure
	KeepProjectOnFailure bool

	// Asker answers interactive questions; defaults to the terminal
	Asker prompt.Asker
}

// Bake materializes a project from the template and returns the
// generated project directory.
func Bake(opts Options) (string, error) {
	logger := logging.GetLogger("pastry")

	if opts.Replay && opts.NoInput {
		return "", errors.New(errors.ErrInvalidMode, "--no-input and --replay cannot be used together")
	}
	if opts.Replay && opts.ExtraContext != nil {
		return "", errors.New(errors.ErrInvalidMode, "--replay and extra context cannot be used together")
	}

	asker := opts.Asker
	if asker == nil {
		asker = prompt.NewTerminalAsker()
	}
	if opts.OutputDir == "" {
		opts.OutputDir = "."
	}

	cfg, err := config.Load(opts.ConfigFile, opts.DefaultConfig, paths.New())
	if err != nil {
		return "", err
	}

	repoDir, cleanupSource, err := repository.Determine(repository.Options{
		Template:      opts.Template,
		Abbreviations: cfg.Abbreviations,
		CloneTo:       cfg.TemplatesDir,
		Checkout:      opts.Checkout,
		NoInput:       opts.NoInput,
		Password:      opts.Password,
		Directory:     opts.Directory,
		Asker:         asker,
	})
	if err != nil {
		return "", err
	}
	defer cleanupSource()

	if opts.AcceptHooks {
		hookedDir, herr := hooks.RunPrePrompt(repoDir)
		if herr != nil {
			return "", herr
		}
		if hookedDir != repoDir {
			defer func() {
				if rmErr := os.RemoveAll(hookedDir); rmErr != nil {
					logger.Error().Err(rmErr).Str("dir", hookedDir).
						Msg("failed to remove temporary template directory")
				}
			}()
			repoDir = hookedDir
		}
	}

	templateDir, err := find.Template(repoDir, render.NewEmptyEnv())
	if err != nil {
		return "", err
	}
	logger.Debug().Str("templateDir", templateDir).Msg("template located")

	ctx, nested, err := assembleContext(opts, cfg, templateDir, asker)
	if err != nil {
		return "", err
	}
	if nested != "" {
		// A nested template behaves like a fresh invocation rooted at
		// the chosen path.
		nestedOpts := opts
		nestedOpts.Template = filepath.Join(repoDir, filepath.FromSlash(nested))
		nestedOpts.Directory = ""
		return Bake(nestedOpts)
	}

	env, err := render.NewEnv(ctx)
	if err != nil {
		return "", err
	}

	if !opts.Replay {
		if err := prompt.ForConfig(ctx, env, asker, opts.NoInput); err != nil {
			return "", err
		}

		outputAbs, aerr := filepath.Abs(opts.OutputDir)
		if aerr != nil {
			outputAbs = opts.OutputDir
		}
		ctx.Vars().Set(vars.KeyRepoDir, repoDir)
		ctx.Vars().Set(vars.KeyOutputDir, outputAbs)

		replayDir, name := replayTarget(opts, cfg)
		if err := replay.Dump(replayDir, name, ctx); err != nil {
			return "", err
		}
	}

	return generate.Files(generate.Options{
		TemplateDir:          templateDir,
		Context:              ctx,
		Env:                  env,
		OutputDir:            opts.OutputDir,
		OverwriteIfExists:    opts.OverwriteIfExists,
		SkipIfFileExists:     opts.SkipIfFileExists,
		AcceptHooks:          opts.AcceptHooks,
		KeepProjectOnFailure: opts.KeepProjectOnFailure,
	})
}

// assembleContext restores the context from a replay record or builds
// it fresh from the variable-definition file. The second return names
// a chosen nested template path, empty when there is none.
func assembleContext(opts Options, cfg *config.UserConfig, templateDir string, asker prompt.Asker) (*vars.Context, string, error) {
	if opts.Replay {
		replayDir, name := replayTarget(opts, cfg)
		ctx, err := replay.Load(replayDir, name)
		if err != nil {
			return nil, "", err
		}
		return ctx, "", nil
	}

	contextFile := filepath.Join(templateDir, vars.DefinitionFile)
	ctx, err := vars.GenerateContext(contextFile, cfg.DefaultContext, opts.ExtraContext)
	if err != nil {
		return nil, "", err
	}

	nested, err := prompt.ChooseNestedTemplate(ctx, asker, opts.NoInput)
	if err != nil {
		return nil, "", err
	}
	if nested != "" {
		return ctx, nested, nil
	}

	// Give the output directory its name template unless the
	// definition file brought its own.
	if raw, ok := ctx.Vars().Get(vars.KeyTemplate); !ok || !isString(raw) {
		ctx.Vars().Set(vars.KeyTemplate, DefaultProjectDirTemplate)
	}

	return ctx, "", nil
}

func replayTarget(opts Options, cfg *config.UserConfig) (dir, name string) {
	if opts.ReplayFile != "" {
		return filepath.Dir(opts.ReplayFile), filepath.Base(opts.ReplayFile)
	}
	return cfg.ReplayDir, filepath.Base(opts.Template)
}

func isString(v interface{}) bool {
	_, ok := v.(string)
	return ok
}
