package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/pelletier/go-toml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/panbanda/devflow/pkg/models"
)

func writeConfig(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, 30, cfg.Analysis.Days)
	assert.Equal(t, 10, cfg.Analysis.TopFiles)
	assert.Equal(t, 10, cfg.Analysis.TopAuthors)
	assert.Zero(t, cfg.Analysis.Limit)
	assert.Empty(t, cfg.Insights.Rules)
	assert.True(t, cfg.Cache.Enabled)
	assert.Equal(t, 24, cfg.Cache.TTL)
	assert.NotEmpty(t, cfg.Cache.Dir)
	assert.Equal(t, "text", cfg.Output.Format)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.NoError(t, cfg.Validate())
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name    string
		file    string
		content string
	}{
		{"toml", "devflow.toml", "[analysis]\ndays = 14\nauthor = \"alice\"\n\n[output]\nformat = \"json\"\n"},
		{"yaml", "devflow.yaml", "analysis:\n  days: 14\n  author: alice\noutput:\n  format: json\n"},
		{"json", "devflow.json", `{"analysis": {"days": 14, "author": "alice"}, "output": {"format": "json"}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load(writeConfig(t, dir, tt.file, tt.content))
			require.NoError(t, err)
			assert.Equal(t, 14, cfg.Analysis.Days)
			assert.Equal(t, "alice", cfg.Analysis.Author)
			assert.Equal(t, "json", cfg.Output.Format)
			// Unset keys keep their defaults.
			assert.Equal(t, 10, cfg.Analysis.TopFiles)
			assert.True(t, cfg.Cache.Enabled)
		})
	}
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)

	bad := writeConfig(t, t.TempDir(), "devflow.toml", "[analysis\ndays = ")
	_, err = Load(bad)
	assert.Error(t, err)
}

func TestLoadConfig_Search(t *testing.T) {
	t.Run("no file uses defaults", func(t *testing.T) {
		res, err := LoadConfig(WithSearchDir(t.TempDir()))
		require.NoError(t, err)
		assert.Empty(t, res.Source)
		assert.Equal(t, DefaultConfig().Analysis, res.Config.Analysis)
	})

	t.Run("dot directory", func(t *testing.T) {
		root := t.TempDir()
		path := writeConfig(t, root, filepath.Join(".devflow", "devflow.yml"), "analysis:\n  days: 7\n")
		res, err := LoadConfig(WithSearchDir(root))
		require.NoError(t, err)
		assert.Equal(t, path, res.Source)
		assert.Equal(t, 7, res.Config.Analysis.Days)
	})

	t.Run("root wins over dot directory", func(t *testing.T) {
		root := t.TempDir()
		writeConfig(t, root, filepath.Join(".devflow", "devflow.toml"), "[analysis]\ndays = 7\n")
		path := writeConfig(t, root, ".devflow.toml", "[analysis]\ndays = 3\n")
		res, err := LoadConfig(WithSearchDir(root))
		require.NoError(t, err)
		assert.Equal(t, path, res.Source)
		assert.Equal(t, 3, res.Config.Analysis.Days)
	})

	t.Run("explicit path", func(t *testing.T) {
		path := writeConfig(t, t.TempDir(), "custom.toml", "[cache]\nenabled = false\n")
		res, err := LoadConfig(WithPath(path))
		require.NoError(t, err)
		assert.False(t, res.Config.Cache.Enabled)
	})

	t.Run("invalid values are rejected", func(t *testing.T) {
		path := writeConfig(t, t.TempDir(), "devflow.toml", "[analysis]\ndays = 0\n")
		_, err := LoadConfig(WithPath(path))
		assert.True(t, errors.Is(err, ErrInvalidConfig))
	})
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero days", func(c *Config) { c.Analysis.Days = 0 }},
		{"negative limit", func(c *Config) { c.Analysis.Limit = -1 }},
		{"zero top files", func(c *Config) { c.Analysis.TopFiles = 0 }},
		{"zero top authors", func(c *Config) { c.Analysis.TopAuthors = 0 }},
		{"unknown rule", func(c *Config) { c.Insights.Rules = []string{"late-night", "bogus"} }},
		{"unknown severity", func(c *Config) { c.Insights.MinSeverity = "urgent" }},
		{"zero ttl", func(c *Config) { c.Cache.TTL = 0 }},
		{"unknown format", func(c *Config) { c.Output.Format = "xml" }},
		{"unknown log level", func(c *Config) { c.Log.Level = "loud" }},
		{"unknown log format", func(c *Config) { c.Log.Format = "xml" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}

	t.Run("disabled cache ignores ttl", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Cache.Enabled = false
		cfg.Cache.TTL = 0
		assert.NoError(t, cfg.Validate())
	})

	t.Run("reports every problem", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Analysis.Days = -1
		cfg.Output.Format = "xml"
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "analysis.days")
		assert.Contains(t, err.Error(), "output.format")
	})
}

func TestParseSeverity(t *testing.T) {
	for in, want := range map[string]models.Severity{
		"":       models.SeverityLow,
		"low":    models.SeverityLow,
		"Medium": models.SeverityMedium,
		"high":   models.SeverityHigh,
	} {
		got, err := ParseSeverity(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseSeverity("critical")
	assert.Error(t, err)
}

func TestConfigTOMLRoundTrip(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Insights.Rules = []string{"testing", "rollbacks"}
	cfg.Analysis.Branch = "main"

	content, err := toml.Marshal(cfg)
	require.NoError(t, err)

	path := writeConfig(t, t.TempDir(), "devflow.toml", string(content))
	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg.Insights.Rules, loaded.Insights.Rules)
	assert.Equal(t, "main", loaded.Analysis.Branch)
	assert.Equal(t, cfg.Cache, loaded.Cache)
}
