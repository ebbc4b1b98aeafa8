// Package config loads devflow settings from TOML, YAML or JSON files.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/panbanda/devflow/internal/logging"
	"github.com/panbanda/devflow/internal/output"
	"github.com/panbanda/devflow/pkg/analyzer/insight"
	"github.com/panbanda/devflow/pkg/models"
)

// ErrInvalidConfig is returned when a loaded configuration fails validation.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config holds all configuration options for devflow.
type Config struct {
	Analysis AnalysisConfig `koanf:"analysis" toml:"analysis"`
	Insights InsightsConfig `koanf:"insights" toml:"insights"`
	Cache    CacheConfig    `koanf:"cache" toml:"cache"`
	Output   OutputConfig   `koanf:"output" toml:"output"`
	Log      LogConfig      `koanf:"log" toml:"log"`
}

// AnalysisConfig controls the commit window and report sizes.
type AnalysisConfig struct {
	Days       int    `koanf:"days" toml:"days"`
	Branch     string `koanf:"branch" toml:"branch"`
	Author     string `koanf:"author" toml:"author"`
	Limit      int    `koanf:"limit" toml:"limit"` // 0 means unlimited
	TopFiles   int    `koanf:"top_files" toml:"top_files"`
	TopAuthors int    `koanf:"top_authors" toml:"top_authors"`
}

// InsightsConfig selects rules and their inputs.
type InsightsConfig struct {
	Rules        []string `koanf:"rules" toml:"rules"` // empty enables every rule
	MinSeverity  string   `koanf:"min_severity" toml:"min_severity"`
	CommandsFile string   `koanf:"commands_file" toml:"commands_file"`
}

// CacheConfig controls caching of extracted commits.
type CacheConfig struct {
	Enabled bool   `koanf:"enabled" toml:"enabled"`
	Dir     string `koanf:"dir" toml:"dir"`
	TTL     int    `koanf:"ttl" toml:"ttl"` // hours
}

// OutputConfig controls output formatting.
type OutputConfig struct {
	Format string `koanf:"format" toml:"format"` // text, json, markdown, toon, yaml
	Color  bool   `koanf:"color" toml:"color"`
}

// LogConfig controls diagnostic logging.
type LogConfig struct {
	Level  string `koanf:"level" toml:"level"`
	Format string `koanf:"format" toml:"format"`
}

// DefaultCacheDir is the per-user cache location, or .devflow/cache when
// the platform has none.
func DefaultCacheDir() string {
	if dir, err := os.UserCacheDir(); err == nil {
		return filepath.Join(dir, "devflow")
	}
	return filepath.Join(".devflow", "cache")
}

// DefaultConfig returns a config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Analysis: AnalysisConfig{
			Days:       30,
			TopFiles:   10,
			TopAuthors: 10,
		},
		Insights: InsightsConfig{
			MinSeverity: string(models.SeverityLow),
		},
		Cache: CacheConfig{
			Enabled: true,
			Dir:     DefaultCacheDir(),
			TTL:     24,
		},
		Output: OutputConfig{
			Format: string(output.FormatText),
			Color:  true,
		},
		Log: LogConfig{
			Level:  logging.DefaultLevel,
			Format: string(logging.FormatText),
		},
	}
}

// parserFor picks a koanf parser by file extension, defaulting to TOML.
func parserFor(path string) koanf.Parser {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return yaml.Parser()
	case ".json":
		return json.Parser()
	default:
		return toml.Parser()
	}
}

// Load reads a configuration file over the defaults. It does not validate.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	cfg := DefaultConfig()
	if err := k.Load(file.Provider(path), parserFor(path)); err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return cfg, nil
}

// ConfigNames are the file names LoadConfig searches for, in order.
var ConfigNames = []string{
	"devflow.toml",
	"devflow.yaml",
	"devflow.yml",
	"devflow.json",
	".devflow.toml",
	".devflow.yaml",
	".devflow.yml",
	".devflow.json",
}

// LoadResult is a validated configuration and the file it came from.
// Source is empty when only defaults were used.
type LoadResult struct {
	Config *Config
	Source string
}

type loadOptions struct {
	path string
	dirs []string
}

// LoadOption configures LoadConfig.
type LoadOption func(*loadOptions)

// WithPath loads exactly this file instead of searching.
func WithPath(path string) LoadOption {
	return func(o *loadOptions) {
		o.path = path
	}
}

// WithSearchDir searches root and root/.devflow instead of the working
// directory.
func WithSearchDir(root string) LoadOption {
	return func(o *loadOptions) {
		o.dirs = []string{root, filepath.Join(root, ".devflow")}
	}
}

// LoadConfig loads and validates configuration. Without WithPath it uses the
// first ConfigNames match in "." then ".devflow", or the defaults.
func LoadConfig(opts ...LoadOption) (*LoadResult, error) {
	o := &loadOptions{dirs: []string{".", ".devflow"}}
	for _, opt := range opts {
		opt(o)
	}

	source := o.path
	if source == "" {
		source = findConfig(o.dirs)
	}
	cfg := DefaultConfig()
	if source != "" {
		var err error
		if cfg, err = Load(source); err != nil {
			return nil, err
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &LoadResult{Config: cfg, Source: source}, nil
}

func findConfig(dirs []string) string {
	for _, dir := range dirs {
		for _, name := range ConfigNames {
			path := filepath.Join(dir, name)
			if info, err := os.Stat(path); err == nil && !info.IsDir() {
				return path
			}
		}
	}
	return ""
}

// LoadOrDefault returns the discovered configuration, or the defaults when
// none is found or it fails to load.
func LoadOrDefault() *Config {
	res, err := LoadConfig()
	if err != nil {
		return DefaultConfig()
	}
	return res.Config
}

// Validate reports every invalid setting, wrapped in ErrInvalidConfig.
func (c *Config) Validate() error {
	var problems []error
	if c.Analysis.Days <= 0 {
		problems = append(problems, fmt.Errorf("analysis.days must be positive, got %d", c.Analysis.Days))
	}
	if c.Analysis.Limit < 0 {
		problems = append(problems, fmt.Errorf("analysis.limit must not be negative, got %d", c.Analysis.Limit))
	}
	if c.Analysis.TopFiles <= 0 {
		problems = append(problems, fmt.Errorf("analysis.top_files must be positive, got %d", c.Analysis.TopFiles))
	}
	if c.Analysis.TopAuthors <= 0 {
		problems = append(problems, fmt.Errorf("analysis.top_authors must be positive, got %d", c.Analysis.TopAuthors))
	}
	if _, err := insight.SelectRules(c.Insights.Rules); err != nil {
		problems = append(problems, fmt.Errorf("insights.rules: %w", err))
	}
	if _, err := ParseSeverity(c.Insights.MinSeverity); err != nil {
		problems = append(problems, fmt.Errorf("insights.min_severity: %w", err))
	}
	if c.Cache.Enabled && c.Cache.TTL <= 0 {
		problems = append(problems, fmt.Errorf("cache.ttl must be positive, got %d", c.Cache.TTL))
	}
	if _, err := output.ParseFormat(c.Output.Format); err != nil {
		problems = append(problems, fmt.Errorf("output.format: %w", err))
	}
	if _, err := logging.NewTo(io.Discard, c.Log.Level, c.Log.Format); err != nil {
		problems = append(problems, fmt.Errorf("log: %w", err))
	}
	if len(problems) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(problems...))
}

// ParseSeverity parses a minimum insight severity. Empty means low.
func ParseSeverity(s string) (models.Severity, error) {
	switch models.Severity(strings.ToLower(strings.TrimSpace(s))) {
	case "", models.SeverityLow:
		return models.SeverityLow, nil
	case models.SeverityMedium:
		return models.SeverityMedium, nil
	case models.SeverityHigh:
		return models.SeverityHigh, nil
	default:
		return "", fmt.Errorf("unknown severity %q", s)
	}
}
