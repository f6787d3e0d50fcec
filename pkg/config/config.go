// Package config loads pastry's user configuration: where acquired
// templates and replay records live, context defaults applied to
// every template, and abbreviation expansions for template sources.
package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	yamlv3 "gopkg.in/yaml.v3"

	"github.com/arthur-debert/pastry/pkg/errors"
	"github.com/arthur-debert/pastry/pkg/logging"
	"github.com/arthur-debert/pastry/pkg/paths"
)

// EnvPrefix is the prefix of environment variables overriding
// configuration keys, e.g. PASTRY_REPLAY_DIR.
const EnvPrefix = "PASTRY_"

// UserConfig is the loaded user configuration
type UserConfig struct {
	// TemplatesDir is where clones and downloads are cached
	TemplatesDir string

	// ReplayDir is where replay records are stored
	ReplayDir string

	// DefaultContext is merged into every template's context before
	// caller overrides.
	DefaultContext map[string]interface{}

	// Abbreviations extends the builtin source prefix expansions
	Abbreviations map[string]string

	k *koanf.Koanf
}

// Load builds the configuration from defaults, an optional config
// file and PASTRY_* environment variables, in that order. With
// useDefaults set, config files are skipped entirely.
func Load(configFile string, useDefaults bool, p *paths.Paths) (*UserConfig, error) {
	logger := logging.GetLogger("config")
	k := koanf.New(".")

	defaults := map[string]interface{}{
		"templates_dir": p.TemplatesDir(),
		"replay_dir":    p.ReplayDir(),
	}
	if err := k.Load(confmap.Provider(defaults, "."), nil); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to load defaults")
	}

	if !useDefaults {
		path, err := resolveConfigFile(configFile, p)
		if err != nil {
			return nil, err
		}
		if path != "" {
			if err := k.Load(file.Provider(path), parserFor(path)); err != nil {
				return nil, errors.Wrapf(err, errors.ErrConfigParse, "failed to parse config file %q", path)
			}
			logger.Debug().Str("path", path).Msg("user config loaded")
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	}), nil); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to load environment overrides")
	}

	cfg := &UserConfig{
		TemplatesDir:   paths.ExpandHome(k.String("templates_dir")),
		ReplayDir:      paths.ExpandHome(k.String("replay_dir")),
		DefaultContext: asMap(k.Get("default_context")),
		Abbreviations:  k.StringMap("abbreviations"),
		k:              k,
	}
	return cfg, nil
}

// Dump renders the effective configuration as YAML
func (c *UserConfig) Dump() (string, error) {
	out, err := yamlv3.Marshal(c.k.Raw())
	if err != nil {
		return "", errors.Wrap(err, errors.ErrInternal, "cannot serialize configuration")
	}
	return string(out), nil
}

// resolveConfigFile picks the config file to read: an explicit path
// must exist, otherwise the XDG candidates are probed.
func resolveConfigFile(configFile string, p *paths.Paths) (string, error) {
	if configFile != "" {
		path := paths.ExpandHome(configFile)
		if _, err := os.Stat(path); err != nil {
			return "", errors.Newf(errors.ErrConfigLoad, "config file %q does not exist", configFile)
		}
		return path, nil
	}
	for _, candidate := range p.ConfigFileCandidates() {
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
	}
	return "", nil
}

func parserFor(path string) koanf.Parser {
	if filepath.Ext(path) == ".toml" {
		return toml.Parser()
	}
	return yaml.Parser()
}

func asMap(v interface{}) map[string]interface{} {
	if m, ok := v.(map[string]interface{}); ok {
		return m
	}
	return nil
}
