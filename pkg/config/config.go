package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// LocalityConfig tunes the import-locality classifier.
type LocalityConfig struct {
	// Mode is "off", "warn", or "enforce".
	Mode string `koanf:"mode" toml:"mode"`
	// MaxDistance is the path-component distance above which an import is
	// flagged: a warning in "warn" mode, a failure in "enforce" mode.
	MaxDistance int `koanf:"max_distance" toml:"max_distance"`
}

// RuleConfig holds the quantitative code-quality laws.
type RuleConfig struct {
	MaxFileTokens           int            `koanf:"max_file_tokens" toml:"max_file_tokens"`
	MaxCyclomaticComplexity int            `koanf:"max_cyclomatic_complexity" toml:"max_cyclomatic_complexity"`
	MaxNestingDepth         int            `koanf:"max_nesting_depth" toml:"max_nesting_depth"`
	MaxFunctionArgs         int            `koanf:"max_function_args" toml:"max_function_args"`
	MaxFunctionWords        int            `koanf:"max_function_words" toml:"max_function_words"`
	IgnoreNamingOn          []string       `koanf:"ignore_naming_on" toml:"ignore_naming_on"`
	IgnoreTokensOn          []string       `koanf:"ignore_tokens_on" toml:"ignore_tokens_on"`
	DeepAnalysisMinFiles    int            `koanf:"deep_analysis_min_files" toml:"deep_analysis_min_files"`
	MaxLCOM                 int            `koanf:"max_lcom" toml:"max_lcom"`
	MaxCBO                  int            `koanf:"max_cbo" toml:"max_cbo"`
	MaxFanOut               int            `koanf:"max_fan_out" toml:"max_fan_out"`
	Locality                LocalityConfig `koanf:"locality" toml:"locality"`
}

// PreferenceConfig holds user-facing behavior switches.
type PreferenceConfig struct {
	AutoCopy        bool   `koanf:"auto_copy" toml:"auto_copy"`
	AutoFormat      bool   `koanf:"auto_format" toml:"auto_format"`
	BackupRetention int    `koanf:"backup_retention" toml:"backup_retention"`
	RequirePlan     bool   `koanf:"require_plan" toml:"require_plan"`
	Theme           string `koanf:"theme" toml:"theme"`
}

// Config is the single configuration record shared by all components,
// loaded once per invocation.
type Config struct {
	Rules       RuleConfig       `koanf:"rules" toml:"rules"`
	Preferences PreferenceConfig `koanf:"preferences" toml:"preferences"`

	// Commands maps phase names (check, fix) to a command string or a
	// list of command strings. Use CommandList to read it.
	Commands map[string]any `koanf:"commands" toml:"commands"`

	// IgnorePatterns are regexes from .slopchopignore, matched against
	// file paths. Not persisted in the TOML.
	IgnorePatterns []*regexp.Regexp `koanf:"-" toml:"-"`
}

// DefaultConfig returns a config with the stock rule thresholds.
func DefaultConfig() *Config {
	return &Config{
		Rules: RuleConfig{
			MaxFileTokens:           2000,
			MaxCyclomaticComplexity: 10,
			MaxNestingDepth:         4,
			MaxFunctionArgs:         5,
			MaxFunctionWords:        3,
			IgnoreNamingOn:          []string{"tests", "spec"},
			DeepAnalysisMinFiles:    10,
			MaxLCOM:                 3,
			MaxCBO:                  9,
			MaxFanOut:               7,
			Locality: LocalityConfig{
				Mode:        "warn",
				MaxDistance: 2,
			},
		},
		Preferences: PreferenceConfig{
			AutoCopy:        true,
			BackupRetention: 5,
			Theme:           "dark",
		},
		Commands: map[string]any{},
	}
}

// configNames are searched in order at the project root.
var configNames = []string{"slopchop.toml", "warden.toml"}

// ignoreNames are searched in order at the project root.
var ignoreNames = []string{".slopchopignore", ".wardenignore"}

// FindConfigFile returns the path of the first config file present under
// root, or empty string.
func FindConfigFile(root string) string {
	for _, name := range configNames {
		path := filepath.Join(root, name)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// Load loads configuration from a file, layered over defaults.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	cfg := DefaultConfig()

	var parser koanf.Parser
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		parser = toml.Parser()
	}

	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, err
	}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadProject loads config and ignore patterns for a project root, applying
// project-type command defaults. Missing files fall back to defaults;
// malformed files are configuration errors and abort the invocation.
func LoadProject(root string) (*Config, error) {
	var cfg *Config

	if path := FindConfigFile(root); path != "" {
		loaded, err := Load(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", path, err)
		}
		cfg = loaded
	} else {
		cfg = DefaultConfig()
	}

	if err := cfg.loadIgnoreFile(root); err != nil {
		return nil, err
	}

	cfg.applyCommandDefaults(root)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// loadIgnoreFile reads .slopchopignore regex patterns, one per line.
func (c *Config) loadIgnoreFile(root string) error {
	for _, name := range ignoreNames {
		content, err := os.ReadFile(filepath.Join(root, name))
		if err != nil {
			continue
		}
		for _, line := range strings.Split(string(content), "\n") {
			line = strings.TrimSpace(line)
			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}
			re, err := regexp.Compile(line)
			if err != nil {
				return fmt.Errorf("invalid pattern in %s: %q: %w", name, line, err)
			}
			c.IgnorePatterns = append(c.IgnorePatterns, re)
		}
		return nil
	}
	return nil
}

// Ignored reports whether a path matches any .slopchopignore pattern.
func (c *Config) Ignored(path string) bool {
	for _, re := range c.IgnorePatterns {
		if re.MatchString(path) {
			return true
		}
	}
	return false
}

// matchesAny reports whether the path contains any of the fragments.
func matchesAny(path string, fragments []string) bool {
	for _, fragment := range fragments {
		if fragment != "" && strings.Contains(path, fragment) {
			return true
		}
	}
	return false
}

// NamingExempt reports whether naming checks are skipped for this path.
func (c *Config) NamingExempt(path string) bool {
	return matchesAny(path, c.Rules.IgnoreNamingOn)
}

// TokensExempt reports whether the token budget is skipped for this path.
func (c *Config) TokensExempt(path string) bool {
	return matchesAny(path, c.Rules.IgnoreTokensOn)
}

// CommandList returns the commands configured for a phase. A scalar value
// yields a single-element list.
func (c *Config) CommandList(phase string) []string {
	raw, ok := c.Commands[phase]
	if !ok {
		return nil
	}

	switch v := raw.(type) {
	case string:
		return []string{v}
	case []string:
		return v
	case []any:
		var cmds []string
		for _, item := range v {
			if s, ok := item.(string); ok {
				cmds = append(cmds, s)
			}
		}
		return cmds
	default:
		return nil
	}
}

// Validate checks the law thresholds, deep-analysis minimum, backup
// retention, and locality settings. max_lcom, max_cbo, and max_fan_out are
// not range-checked.
func (c *Config) Validate() error {
	var errs []error

	check := func(name string, val int) {
		if val < 1 {
			errs = append(errs, fmt.Errorf("rules.%s must be at least 1", name))
		}
	}
	check("max_file_tokens", c.Rules.MaxFileTokens)
	check("max_cyclomatic_complexity", c.Rules.MaxCyclomaticComplexity)
	check("max_nesting_depth", c.Rules.MaxNestingDepth)
	check("max_function_args", c.Rules.MaxFunctionArgs)
	check("max_function_words", c.Rules.MaxFunctionWords)
	check("deep_analysis_min_files", c.Rules.DeepAnalysisMinFiles)

	if c.Preferences.BackupRetention < 1 {
		errs = append(errs, errors.New("preferences.backup_retention must be at least 1"))
	}
	if c.Rules.Locality.MaxDistance < 0 {
		errs = append(errs, errors.New("rules.locality.max_distance must be non-negative"))
	}
	switch c.Rules.Locality.Mode {
	case "", "off", "warn", "enforce":
	default:
		errs = append(errs, fmt.Errorf("rules.locality.mode must be off, warn, or enforce, got %q", c.Rules.Locality.Mode))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}
