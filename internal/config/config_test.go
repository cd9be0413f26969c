package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moolen/upgradelens/internal/analysis"
	"github.com/moolen/upgradelens/internal/models"
	"github.com/moolen/upgradelens/internal/patterns"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestDefaultConfigMatchesDefaultPolicy(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, analysis.DefaultPolicy(), cfg.Analysis.Policy())
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, int64(1<<20), cfg.Server.MaxBodyBytes)
	assert.Equal(t, 10*time.Minute, cfg.Server.Cache.TTL)
	assert.Equal(t, "/mcp", cfg.MCP.Endpoint)
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"threshold above one", func(c *Config) { c.Analysis.ClassificationThreshold = 1.2 }},
		{"negative window", func(c *Config) { c.Analysis.Windows.DeprecationProximity = -1 }},
		{"port zero", func(c *Config) { c.Server.Port = 0 }},
		{"port too large", func(c *Config) { c.Server.Port = 70000 }},
		{"no body limit", func(c *Config) { c.Server.MaxBodyBytes = 0 }},
		{"no batch workers", func(c *Config) { c.Server.BatchConcurrency = 0 }},
		{"empty cache", func(c *Config) { c.Server.Cache.MaxEntries = 0 }},
		{"relative mcp endpoint", func(c *Config) { c.MCP.Enabled = true; c.MCP.Endpoint = "mcp" }},
		{"tracing without endpoint", func(c *Config) { c.Tracing.Enabled = true }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			var cfgErr *ConfigError
			assert.ErrorAs(t, err, &cfgErr)
		})
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeFile(t, "config.yaml", `
log_level: debug
analysis:
  classification_threshold: 0.6
  windows:
    deprecation_proximity: 120
server:
  port: 9090
  cache:
    ttl: 30s
tracing:
  enabled: true
  endpoint: otel-collector:4317
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 0.6, cfg.Analysis.ClassificationThreshold)
	assert.Equal(t, 120, cfg.Analysis.Windows.DeprecationProximity)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 30*time.Second, cfg.Server.Cache.TTL)
	assert.True(t, cfg.Tracing.Enabled)

	// untouched keys keep their defaults
	assert.Equal(t, 0.5, cfg.Analysis.EntityMinConfidence)
	assert.Equal(t, 50, cfg.Analysis.Windows.ActionContext)
	assert.Equal(t, 256, cfg.Server.Cache.MaxEntries)
	assert.True(t, cfg.Server.Cache.Enabled)
}

func TestLoadEmptyPathReturnsDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = Load(writeFile(t, "bad.yaml", "server: [unclosed"))
	assert.Error(t, err)

	_, err = Load(writeFile(t, "invalid.yaml", "server:\n  port: -1\n"))
	require.Error(t, err)
	var cfgErr *ConfigError
	assert.ErrorAs(t, err, &cfgErr)
}

func TestLoadPatternsFileMergesDefaults(t *testing.T) {
	path := writeFile(t, "patterns.yaml", `
schema_version: v1
categories:
  - category: SECURITY_UPDATE
    severity: CRITICAL
    patterns:
      - '\bCVE-\d{4}-\d+\b'
    keywords: [cve]
`)

	spec, err := LoadPatternsFile(path)
	require.NoError(t, err)

	require.Len(t, spec.Categories, 1)
	assert.Equal(t, models.CategorySecurityUpdate, spec.Categories[0].Category)
	assert.Equal(t, []string{`\bCVE-\d{4}-\d+\b`}, spec.Categories[0].Patterns)
	assert.Equal(t, patterns.DefaultSpec().EntityPatterns, spec.EntityPatterns)
	assert.Equal(t, patterns.DefaultSpec().Vocabulary, spec.Vocabulary)

	registry, err := LoadRegistry(path)
	require.NoError(t, err)
	assert.Len(t, registry.Rules(), 1)
}

func TestLoadPatternsFileRejectsInvalidSpec(t *testing.T) {
	tests := map[string]string{
		"unknown category": "categories:\n  - category: NOPE\n    severity: HIGH\n",
		"unknown severity": "categories:\n  - category: DEPRECATION\n    severity: URGENT\n",
		"bad regex":        "entity_patterns:\n  - type: X\n    confidence: 0.5\n    patterns: ['(']\n",
		"schema version":   "schema_version: v999\n",
	}

	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := LoadPatternsFile(writeFile(t, "patterns.yaml", content))
			assert.Error(t, err)
		})
	}
}

func TestLoadRegistryEmptyPathIsDefault(t *testing.T) {
	registry, err := LoadRegistry("")
	require.NoError(t, err)
	assert.Same(t, patterns.Default(), registry)
}

func TestWritePatternsFileRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "patterns.yaml")

	require.NoError(t, WritePatternsFile(path, patterns.DefaultSpec()))

	loaded, err := LoadPatternsFile(path)
	require.NoError(t, err)
	assert.Equal(t, patterns.DefaultSpec(), loaded)

	// no temp files are left behind
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestWritePatternsFileMissingDirectory(t *testing.T) {
	err := WritePatternsFile(filepath.Join(t.TempDir(), "missing", "patterns.yaml"), patterns.DefaultSpec())
	assert.Error(t, err)
}
