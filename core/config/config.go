package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/caarlos0/env/v11"
	"github.com/tristendillon/tsfix/core/logger"
	"gopkg.in/yaml.v3"
)

const FileName = "tsfix.yaml"

type Config struct {
	Root       string   `yaml:"root"`
	Extensions []string `yaml:"extensions"`
	SkipDirs   []string `yaml:"skip_dirs"`
	Exclude    []string `yaml:"exclude"`
	Aliases    Aliases  `yaml:"aliases"`
	Relative   Relative `yaml:"relative"`

	Verbose bool `yaml:"-"`
	NoColor bool `yaml:"-"`
	DryRun  bool `yaml:"-"`
}

// Aliases configures the import-pattern fixer.
type Aliases struct {
	FixMalformedFrom bool       `yaml:"fix_malformed_from"`
	Categories       []Category `yaml:"categories"`
}

// Category is a group of alias rewrites applied to files under Marker.
type Category struct {
	Name     string    `yaml:"name"`
	Marker   string    `yaml:"marker"`
	Rewrites []Rewrite `yaml:"rewrites"`
}

type Rewrite struct {
	From string `yaml:"from"`
	To   string `yaml:"to"`
}

// Relative configures the relative-path fixer.
type Relative struct {
	Marker           string   `yaml:"marker"`
	SkipNameContains []string `yaml:"skip_name_contains"`
	UtilsImport      string   `yaml:"utils_import"`
	SiblingModules   []string `yaml:"sibling_modules"`
}

type envOverrides struct {
	Root    string `env:"TSFIX_ROOT"`
	Verbose bool   `env:"TSFIX_VERBOSE"`
	DryRun  bool   `env:"TSFIX_DRY_RUN"`
	NoColor bool   `env:"NO_COLOR"`
}

func Default() *Config {
	return &Config{
		Root:       ".",
		Extensions: []string{".ts", ".tsx"},
		SkipDirs:   []string{"node_modules", ".git", "dist", "build", "storybook-static"},
		Aliases: Aliases{
			FixMalformedFrom: true,
			Categories: []Category{
				{
					Name:   "lib",
					Marker: "lib",
					Rewrites: []Rewrite{
						{From: "@/types/", To: "../../types/"},
						{From: "@/lib/", To: "../"},
						{From: "@/components/", To: "../../components/"},
					},
				},
				{
					Name:   "ui",
					Marker: "components/ui",
					Rewrites: []Rewrite{
						{From: "@/components/ui/", To: "./"},
						{From: "@/types/", To: "../../types/"},
						{From: "@/lib/", To: "../../lib/"},
					},
				},
			},
		},
		Relative: Relative{
			Marker:           "components/ui",
			SkipNameContains: []string{".stories.", ".test."},
			UtilsImport:      "lib/utils",
			SiblingModules:   []string{"button"},
		},
	}
}

// Load reads the config file at path. An empty path means tsfix.yaml in the
// working directory, and a missing file there falls back to Default. Environment
// overrides are applied last.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("cannot determine working dir: %w", err)
		}
		path = filepath.Join(wd, FileName)
	}

	cfg := Default()
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		// Unset keys keep their defaults.
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse yaml %s: %w", path, err)
		}
		logger.Debug("Config file found: %s", path)
	case errors.Is(err, os.ErrNotExist) && !explicit:
		logger.Debug("No config file found, using default config")
	default:
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	logger.Debug("Config: %+v", *cfg)
	return cfg, nil
}

func (c *Config) applyEnv() error {
	var overrides envOverrides
	if err := env.Parse(&overrides); err != nil {
		return fmt.Errorf("failed to parse environment variables: %w", err)
	}
	if overrides.Root != "" {
		c.Root = overrides.Root
	}
	c.Verbose = c.Verbose || overrides.Verbose
	c.DryRun = c.DryRun || overrides.DryRun
	c.NoColor = c.NoColor || overrides.NoColor
	return nil
}

func (c *Config) Validate() error {
	if c.Root == "" {
		return errors.New("root must not be empty")
	}
	if len(c.Extensions) == 0 {
		return errors.New("at least one extension is required")
	}
	for _, ext := range c.Extensions {
		if ext == "" {
			return errors.New("extensions must not contain an empty entry")
		}
	}
	for _, pattern := range c.Exclude {
		if !doublestar.ValidatePattern(pattern) {
			return fmt.Errorf("invalid exclude pattern %q", pattern)
		}
	}
	for i, cat := range c.Aliases.Categories {
		if CleanMarker(cat.Marker) == "" {
			return fmt.Errorf("aliases.categories[%d] (%s): marker must not be empty", i, cat.Name)
		}
		for j, rw := range cat.Rewrites {
			if rw.From == "" {
				return fmt.Errorf("aliases.categories[%d].rewrites[%d]: from must not be empty", i, j)
			}
		}
	}
	if CleanMarker(c.Relative.Marker) == "" {
		return errors.New("relative.marker must not be empty")
	}
	if strings.Trim(c.Relative.UtilsImport, "/") == "" {
		return errors.New("relative.utils_import must not be empty")
	}
	for _, mod := range c.Relative.SiblingModules {
		if mod == "" || strings.Contains(mod, "/") {
			return fmt.Errorf("invalid sibling module %q", mod)
		}
	}
	return nil
}

// Marshal renders c as the YAML written by `tsfix init`.
func (c *Config) Marshal() ([]byte, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config: %w", err)
	}
	return data, nil
}

// CleanMarker normalizes a path marker to slash form without leading or
// trailing separators.
func CleanMarker(marker string) string {
	return strings.Trim(filepath.ToSlash(marker), "/")
}
