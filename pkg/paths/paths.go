// Package paths provides centralized path handling for pastry.
// It implements XDG Base Directory specification compliance and
// provides a consistent API for all path operations in the codebase.
package paths

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
)

// Environment variable names
const (
	// EnvPastryDataDir overrides the XDG data directory for pastry
	EnvPastryDataDir = "PASTRY_DATA_DIR"

	// EnvPastryConfigDir overrides the XDG config directory for pastry
	EnvPastryConfigDir = "PASTRY_CONFIG_DIR"

	// EnvHome is the standard home directory variable
	EnvHome = "HOME"
)

// Default directories and files
const (
	// PastryDirName is the directory name for pastry-specific files
	PastryDirName = "pastry"

	// TemplatesDir is the subdirectory where acquired templates are cached
	TemplatesDir = "templates"

	// ReplayDir is the subdirectory where replay records are stored
	ReplayDir = "replay"

	// ConfigFileYAML is the YAML user configuration file name
	ConfigFileYAML = "config.yaml"

	// ConfigFileTOML is the TOML user configuration file name
	ConfigFileTOML = "config.toml"
)

// Paths provides centralized path management for pastry
type Paths struct {
	xdgData   string
	xdgConfig string
}

// New creates a new Paths instance, respecting environment overrides.
func New() *Paths {
	p := &Paths{}

	if dataDir := os.Getenv(EnvPastryDataDir); dataDir != "" {
		p.xdgData = ExpandHome(dataDir)
	} else {
		p.xdgData = filepath.Join(xdg.DataHome, PastryDirName)
	}

	if configDir := os.Getenv(EnvPastryConfigDir); configDir != "" {
		p.xdgConfig = ExpandHome(configDir)
	} else {
		p.xdgConfig = filepath.Join(xdg.ConfigHome, PastryDirName)
	}

	return p
}

// DataDir returns the pastry data directory
func (p *Paths) DataDir() string {
	return p.xdgData
}

// ConfigDir returns the pastry config directory
func (p *Paths) ConfigDir() string {
	return p.xdgConfig
}

// TemplatesDir returns the directory where acquired templates are cached
func (p *Paths) TemplatesDir() string {
	return filepath.Join(p.xdgData, TemplatesDir)
}

// ReplayDir returns the directory where replay records live
func (p *Paths) ReplayDir() string {
	return filepath.Join(p.xdgData, ReplayDir)
}

// ConfigFileCandidates returns the user config files to probe, in order
func (p *Paths) ConfigFileCandidates() []string {
	return []string{
		filepath.Join(p.xdgConfig, ConfigFileYAML),
		filepath.Join(p.xdgConfig, ConfigFileTOML),
	}
}

// ExpandHome expands a leading ~ to the user's home directory
func ExpandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		if path == "~" {
			return home
		}
		return filepath.Join(home, path[2:])
	}
	return path
}
