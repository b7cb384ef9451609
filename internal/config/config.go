// Package config loads the list of search directories headers are resolved
// against. Every directory is a path fragment relative to the source tree root.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// FileName is the config file looked up in the working directory.
const FileName = ".hdrmirror.yaml"

// DefaultSearchDirs covers the AOSP directories the native hook headers come from.
var DefaultSearchDirs = []string{
	"art/runtime",
	"dalvik",
	"system/core/include",
	"bionic/libc",
	"libnativehelper/include",
	"frameworks/native/include",
}

// Config is the parsed .hdrmirror.yaml.
type Config struct {
	SearchDirs []string `yaml:"search_dirs"`
	Exclude    []string `yaml:"exclude,omitempty"`

	// Source is the file the config came from, empty for the defaults.
	Source string `yaml:"-"`
}

// Default returns the built-in configuration.
func Default() *Config {
	dirs := make([]string, len(DefaultSearchDirs))
	copy(dirs, DefaultSearchDirs)
	return &Config{SearchDirs: dirs}
}

// Load reads and validates the config file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	cfg.Source = path

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	return &cfg, nil
}

// Discover loads FileName from dir, falling back to Default when it is absent.
func Discover(dir string) (*Config, error) {
	path := filepath.Join(dir, FileName)
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Default(), nil
		}
		return nil, fmt.Errorf("config: stat %s: %w", path, err)
	}
	return Load(path)
}

// Validate checks that at least one search dir is set and that every search
// dir is relative to the source tree root.
func (c *Config) Validate() error {
	if len(c.SearchDirs) == 0 {
		return fmt.Errorf("search_dirs must list at least one directory")
	}
	for _, dir := range c.SearchDirs {
		if dir == "" {
			return fmt.Errorf("search_dirs contains an empty entry")
		}
		if filepath.IsAbs(dir) {
			return fmt.Errorf("search dir %q must be relative to the source tree root", dir)
		}
	}
	return nil
}

// Resolve picks the configuration for a run. Search dirs given on the command
// line win over an explicit config file, which wins over FileName in dir,
// which wins over the defaults. Extra excludes are appended in every case.
func Resolve(searchDirs, excludes []string, configPath, dir string) (*Config, error) {
	var cfg *Config
	switch {
	case len(searchDirs) > 0:
		cfg = &Config{SearchDirs: append([]string(nil), searchDirs...)}
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("config: %w", err)
		}
	case configPath != "":
		loaded, err := Load(configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	default:
		discovered, err := Discover(dir)
		if err != nil {
			return nil, err
		}
		cfg = discovered
	}

	cfg.Exclude = append(cfg.Exclude, excludes...)
	return cfg, nil
}
