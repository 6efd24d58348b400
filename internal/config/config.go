package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"
)

// DefaultFile is the config file looked up in the working directory.
const DefaultFile = "makepot.yaml"

// Project types.
const (
	TypeAuto    = ""
	TypePlugin  = "plugin"
	TypeTheme   = "theme"
	TypeBlock   = "block"
	TypeGeneric = "generic"
)

type Config struct {
	Project struct {
		Root        string `yaml:"root"`
		Slug        string `yaml:"slug"`
		Domain      string `yaml:"domain"`
		Type        string `yaml:"type"`
		PackageName string `yaml:"package_name"`
		FileComment string `yaml:"file_comment"`
	} `yaml:"project"`
	Extract struct {
		IgnoreDomain      bool     `yaml:"ignore_domain"`
		SkipJS            bool     `yaml:"skip_js"`
		SkipPHP           bool     `yaml:"skip_php"`
		SkipBlockJSON     bool     `yaml:"skip_block_json"`
		SkipThemeJSON     bool     `yaml:"skip_theme_json"`
		Include           []string `yaml:"include"`
		Exclude           []string `yaml:"exclude"`
		Workers           int      `yaml:"workers"`
		AllowSyntaxErrors bool     `yaml:"allow_syntax_errors"`
		MaxFileSize       int      `yaml:"max_file_size"`
	} `yaml:"extract"`
	Output struct {
		Destination      string   `yaml:"destination"`
		Merge            []string `yaml:"merge"`
		Subtract         []string `yaml:"subtract"`
		SubtractAndMerge bool     `yaml:"subtract_and_merge"`
		Location         bool     `yaml:"location"`
		JSON             bool     `yaml:"json"`
	} `yaml:"output"`
	Cache struct {
		Path string `yaml:"path"`
	} `yaml:"cache"`
	Log struct {
		Silent bool `yaml:"silent"`
		Debug  bool `yaml:"debug"`
	} `yaml:"log"`
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	var cfg Config
	cfg.Project.Root = "."
	cfg.Output.Location = true
	return &cfg
}

// LoadConfig layers .env, the YAML file at path and MAKEPOT_* environment
// variables over Default. A missing file is not an error.
func LoadConfig(path string) (*Config, error) {
	// 1. Load .env if exists
	_ = godotenv.Load()

	cfg := Default()

	// 2. Load YAML config
	if path != "" {
		file, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		default:
			if err := yaml.Unmarshal(file, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
			}
		}
	}

	// 3. Override with Environment Variables if present
	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (cfg *Config) applyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	list := func(key string, dst *[]string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = SplitList(v)
		}
	}
	var errs []error
	flag := func(key string, dst *bool) {
		if v, ok := lookup(key); ok && v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = b
		}
	}
	num := func(key string, dst *int) {
		if v, ok := lookup(key); ok && v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = n
		}
	}

	str("MAKEPOT_ROOT", &cfg.Project.Root)
	str("MAKEPOT_SLUG", &cfg.Project.Slug)
	str("MAKEPOT_DOMAIN", &cfg.Project.Domain)
	str("MAKEPOT_TYPE", &cfg.Project.Type)
	str("MAKEPOT_PACKAGE_NAME", &cfg.Project.PackageName)
	flag("MAKEPOT_IGNORE_DOMAIN", &cfg.Extract.IgnoreDomain)
	flag("MAKEPOT_SKIP_JS", &cfg.Extract.SkipJS)
	flag("MAKEPOT_SKIP_PHP", &cfg.Extract.SkipPHP)
	list("MAKEPOT_INCLUDE", &cfg.Extract.Include)
	list("MAKEPOT_EXCLUDE", &cfg.Extract.Exclude)
	num("MAKEPOT_WORKERS", &cfg.Extract.Workers)
	str("MAKEPOT_CACHE", &cfg.Cache.Path)
	flag("MAKEPOT_DEBUG", &cfg.Log.Debug)

	return multierr.Combine(errs...)
}

// Validate checks value ranges.
func (cfg *Config) Validate() error {
	switch cfg.Project.Type {
	case TypeAuto, TypePlugin, TypeTheme, TypeBlock, TypeGeneric:
	default:
		return fmt.Errorf("invalid project type %q", cfg.Project.Type)
	}
	if cfg.Extract.Workers < 0 {
		return fmt.Errorf("invalid worker count %d", cfg.Extract.Workers)
	}
	return nil
}

// SplitList splits a comma-separated flag or env value, dropping blanks.
func SplitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
