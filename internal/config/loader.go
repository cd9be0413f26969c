package config

import (
	"fmt"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/moolen/upgradelens/internal/patterns"
)

// Load reads a YAML configuration file over DefaultConfig. Keys missing from
// the file keep their defaults. An empty path returns the defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	k := koanf.New(".")
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("failed to load config from %q: %w", path, err)
	}

	if err := k.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{Tag: "yaml"}); err != nil {
		return nil, fmt.Errorf("failed to parse config from %q: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed for %q: %w", path, err)
	}

	return cfg, nil
}

// LoadPatternsFile reads a pattern registry file. Sections the file omits are
// filled from the built-in tables. The result is validated but not compiled.
func LoadPatternsFile(path string) (patterns.Spec, error) {
	k := koanf.New(".")
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return patterns.Spec{}, fmt.Errorf("failed to load patterns from %q: %w", path, err)
	}

	var spec patterns.Spec
	if err := k.UnmarshalWithConf("", &spec, koanf.UnmarshalConf{Tag: "yaml"}); err != nil {
		return patterns.Spec{}, fmt.Errorf("failed to parse patterns from %q: %w", path, err)
	}

	spec = spec.WithDefaults()
	if err := spec.Validate(); err != nil {
		return patterns.Spec{}, fmt.Errorf("patterns validation failed for %q: %w", path, err)
	}
	return spec, nil
}

// LoadRegistry compiles the registry named by path, or returns the built-in
// registry when path is empty.
func LoadRegistry(path string) (*patterns.Registry, error) {
	if path == "" {
		return patterns.Default(), nil
	}
	spec, err := LoadPatternsFile(path)
	if err != nil {
		return nil, err
	}
	return patterns.New(spec)
}
