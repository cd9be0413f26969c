package config

import (
	"fmt"
	"time"

	"github.com/moolen/upgradelens/internal/analysis"
	"github.com/moolen/upgradelens/internal/classifier"
	"github.com/moolen/upgradelens/internal/extractor"
	"github.com/moolen/upgradelens/internal/result"
)

// Config holds all configuration for the application
type Config struct {
	// LogLevel is the default logging level (debug, info, warn, error)
	LogLevel string `yaml:"log_level"`

	// PatternsFile optionally replaces the built-in pattern tables
	PatternsFile string `yaml:"patterns_file"`

	Analysis AnalysisConfig `yaml:"analysis"`
	Server   ServerConfig   `yaml:"server"`
	MCP      MCPConfig      `yaml:"mcp"`
	Tracing  TracingConfig  `yaml:"tracing"`
}

// AnalysisConfig holds the pipeline thresholds and correlation windows.
type AnalysisConfig struct {
	EntityMinConfidence     float64       `yaml:"entity_min_confidence"`
	ClassificationThreshold float64       `yaml:"classification_threshold"`
	HighPriorityThreshold   float64       `yaml:"high_priority_threshold"`
	Windows                 WindowsConfig `yaml:"windows"`
}

// WindowsConfig sizes the context windows, in characters.
type WindowsConfig struct {
	ActionContext         int `yaml:"action_context"`
	BreakingChangeContext int `yaml:"breaking_change_context"`
	DeprecationProximity  int `yaml:"deprecation_proximity"`
	DeprecationContext    int `yaml:"deprecation_context"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Port             int         `yaml:"port"`
	MaxBodyBytes     int64       `yaml:"max_body_bytes"`
	BatchConcurrency int         `yaml:"batch_concurrency"`
	Cache            CacheConfig `yaml:"cache"`
}

// CacheConfig configures the result cache of the HTTP API.
type CacheConfig struct {
	Enabled    bool          `yaml:"enabled"`
	MaxEntries int           `yaml:"max_entries"`
	TTL        time.Duration `yaml:"ttl"`
}

// MCPConfig controls the MCP endpoint mounted on the HTTP server.
type MCPConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Endpoint string `yaml:"endpoint"`
}

// TracingConfig configures OTLP trace export.
type TracingConfig struct {
	Enabled     bool   `yaml:"enabled"`
	Endpoint    string `yaml:"endpoint"`
	TLSCAPath   string `yaml:"tls_ca_path"`
	TLSInsecure bool   `yaml:"tls_insecure"`
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() *Config {
	return &Config{
		LogLevel: "info",
		Analysis: AnalysisConfig{
			EntityMinConfidence:     extractor.DefaultMinConfidence,
			ClassificationThreshold: classifier.DefaultConfidenceThreshold,
			HighPriorityThreshold:   result.DefaultHighPriorityThreshold,
			Windows: WindowsConfig{
				ActionContext:         classifier.DefaultActionContextRadius,
				BreakingChangeContext: analysis.DefaultBreakingChangeContextRadius,
				DeprecationProximity:  analysis.DefaultDeprecationProximity,
				DeprecationContext:    analysis.DefaultDeprecationContextRadius,
			},
		},
		Server: ServerConfig{
			Port:             8080,
			MaxBodyBytes:     1 << 20,
			BatchConcurrency: 4,
			Cache: CacheConfig{
				Enabled:    true,
				MaxEntries: 256,
				TTL:        10 * time.Minute,
			},
		},
		MCP: MCPConfig{
			Endpoint: "/mcp",
		},
	}
}

// Policy converts the analysis section into an engine policy.
func (a AnalysisConfig) Policy() analysis.Policy {
	return analysis.Policy{
		EntityMinConfidence:         a.EntityMinConfidence,
		ClassificationThreshold:     a.ClassificationThreshold,
		HighPriorityThreshold:       a.HighPriorityThreshold,
		ActionContextRadius:         a.Windows.ActionContext,
		BreakingChangeContextRadius: a.Windows.BreakingChangeContext,
		DeprecationProximity:        a.Windows.DeprecationProximity,
		DeprecationContextRadius:    a.Windows.DeprecationContext,
	}
}

// Validate checks that the configuration is valid
func (c *Config) Validate() error {
	if err := c.Analysis.Policy().Validate(); err != nil {
		return NewConfigError(fmt.Sprintf("analysis: %v", err))
	}

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return NewConfigError("server.port must be between 1 and 65535")
	}

	if c.Server.MaxBodyBytes < 1 {
		return NewConfigError("server.max_body_bytes must be positive")
	}

	if c.Server.BatchConcurrency < 1 {
		return NewConfigError("server.batch_concurrency must be at least 1")
	}

	if c.Server.Cache.Enabled {
		if c.Server.Cache.MaxEntries < 1 {
			return NewConfigError("server.cache.max_entries must be at least 1 when cache is enabled")
		}
		if c.Server.Cache.TTL < 0 {
			return NewConfigError("server.cache.ttl must not be negative")
		}
	}

	if c.MCP.Enabled && (c.MCP.Endpoint == "" || c.MCP.Endpoint[0] != '/') {
		return NewConfigError("mcp.endpoint must be an absolute path when mcp is enabled")
	}

	if c.Tracing.Enabled && c.Tracing.Endpoint == "" {
		return NewConfigError("tracing.endpoint must be set when tracing is enabled")
	}

	return nil
}

// ConfigError represents a configuration error
type ConfigError struct {
	message string
}

// NewConfigError creates a new configuration error
func NewConfigError(message string) *ConfigError {
	return &ConfigError{message: message}
}

// Error returns the error message
func (e *ConfigError) Error() string {
	return e.message
}
