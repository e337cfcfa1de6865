// Package config handles configuration loading and validation for pagemark.
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/hay-kot/criterio"
	"gopkg.in/yaml.v3"

	"github.com/pagemark/pagemark/internal/core/styles"
	"github.com/pagemark/pagemark/internal/extract"
)

// Config holds the application configuration.
type Config struct {
	Backend    BackendConfig   `yaml:"backend"`
	Extraction extract.Options `yaml:"extraction"`
	Search     SearchConfig    `yaml:"search"`
	TUI        TUIConfig       `yaml:"tui"`
	Documents  DocumentsConfig `yaml:"documents"`
	DataDir    string          `yaml:"-"` // set by caller, not from config file
}

// BackendConfig locates the extraction service.
type BackendConfig struct {
	URL            string `yaml:"url"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// Timeout returns the request timeout as a duration.
func (b BackendConfig) Timeout() time.Duration {
	return time.Duration(b.TimeoutSeconds) * time.Second
}

// SearchConfig tunes the search coordinator.
type SearchConfig struct {
	DebounceMS   int `yaml:"debounce_ms"`
	InitialLimit int `yaml:"initial_limit"`
	LimitStep    int `yaml:"limit_step"`
}

// Debounce returns the debounce window as a duration.
func (s SearchConfig) Debounce() time.Duration {
	return time.Duration(s.DebounceMS) * time.Millisecond
}

// TUIConfig holds presentation settings.
type TUIConfig struct {
	Theme string `yaml:"theme"`
}

// DocumentsConfig configures the local document picker.
type DocumentsConfig struct {
	// Patterns are doublestar globs, relative to the working directory,
	// that the picker matches document files against.
	Patterns []string `yaml:"patterns"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Backend: BackendConfig{
			URL:            "http://localhost:8000",
			TimeoutSeconds: 60,
		},
		Extraction: extract.DefaultOptions(),
		Search: SearchConfig{
			DebounceMS:   500,
			InitialLimit: 10,
			LimitStep:    10,
		},
		TUI: TUIConfig{
			Theme: styles.DefaultTheme,
		},
		Documents: DocumentsConfig{
			Patterns: []string{"**/*.pdf"},
		},
	}
}

// Load reads configuration from the given path and sets the data directory.
// If configPath is empty or doesn't exist, returns defaults with the
// provided dataDir.
func Load(configPath, dataDir string) (*Config, error) {
	cfg := DefaultConfig()
	cfg.DataDir = dataDir

	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			data, err := os.ReadFile(configPath)
			if err != nil {
				return nil, fmt.Errorf("read config file: %w", err)
			}

			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("parse config file: %w", err)
			}

			// Re-set dataDir since Unmarshal may have cleared it
			cfg.DataDir = dataDir
		}
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// applyDefaults sets default values for any unset configuration options.
func (c *Config) applyDefaults() {
	defaults := DefaultConfig()
	if c.Backend.URL == "" {
		c.Backend.URL = defaults.Backend.URL
	}
	if c.Backend.TimeoutSeconds == 0 {
		c.Backend.TimeoutSeconds = defaults.Backend.TimeoutSeconds
	}
	if c.Search.DebounceMS == 0 {
		c.Search.DebounceMS = defaults.Search.DebounceMS
	}
	if c.Search.InitialLimit == 0 {
		c.Search.InitialLimit = defaults.Search.InitialLimit
	}
	if c.Search.LimitStep == 0 {
		c.Search.LimitStep = defaults.Search.LimitStep
	}
	if c.TUI.Theme == "" {
		c.TUI.Theme = defaults.TUI.Theme
	}
	if len(c.Documents.Patterns) == 0 {
		c.Documents.Patterns = defaults.Documents.Patterns
	}
	if c.Extraction.By == "" {
		c.Extraction = extract.DefaultOptions()
	}
}

// Validate checks that the configuration is valid. Unknown or out-of-range
// values are rejected here, at the boundary, rather than forwarded to the
// backend uninterpreted. Field problems are collected so a broken config
// file reports everything wrong with it in one pass.
func (c *Config) Validate() error {
	if err := c.Extraction.Validate(); err != nil {
		return fmt.Errorf("extraction: %w", err)
	}

	var errs criterio.FieldErrorsBuilder

	if c.DataDir == "" {
		errs = errs.Append("data_dir", fmt.Errorf("cannot be empty"))
	}

	parsed, err := url.Parse(c.Backend.URL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		errs = errs.Append("backend.url", fmt.Errorf("%q is not a valid URL", c.Backend.URL))
	}
	if c.Backend.TimeoutSeconds < 1 {
		errs = errs.Append("backend.timeout_seconds", fmt.Errorf("must be at least 1"))
	}

	if c.Search.DebounceMS < 1 {
		errs = errs.Append("search.debounce_ms", fmt.Errorf("must be at least 1"))
	}
	if c.Search.InitialLimit < 1 {
		errs = errs.Append("search.initial_limit", fmt.Errorf("must be at least 1"))
	}
	if c.Search.LimitStep < 1 {
		errs = errs.Append("search.limit_step", fmt.Errorf("must be at least 1"))
	}

	if _, ok := styles.GetPalette(c.TUI.Theme); !ok {
		errs = errs.Append("tui.theme", fmt.Errorf("%q is not a known theme", c.TUI.Theme))
	}

	for i, pattern := range c.Documents.Patterns {
		if !doublestar.ValidatePattern(pattern) {
			errs = errs.Append(fmt.Sprintf("documents.patterns[%d]", i), fmt.Errorf("invalid glob %q", pattern))
		}
	}

	return errs.ToError()
}

// LogFile returns the default log file path inside the data dir.
func (c *Config) LogFile() string {
	return filepath.Join(c.DataDir, "pagemark.log")
}
