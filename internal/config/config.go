// Package config loads dispatcher settings from YAML with environment
// overrides. The interesting part is the type section: the closed universe
// of nominal types and their parents ships as data, so a deployment can
// declare its own tags without code changes.
package config

import (
	"fmt"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/predicated/dispatch/internal/typesystem"
)

type Config struct {
	Logging  LoggingConfig `koanf:"logging"`
	Resolver string        `koanf:"resolver"`
	Types    []TypeDecl    `koanf:"types"`
}

type LoggingConfig struct {
	Level  string `koanf:"level"`
	Pretty bool   `koanf:"pretty"`
}

// TypeDecl declares one nominal type. An empty Parent declares a root tag.
type TypeDecl struct {
	Name   string `koanf:"name"`
	Parent string `koanf:"parent"`
}

func (c *LoggingConfig) SetDefaults() {
	if c.Level == "" {
		c.Level = "info"
	}
}

func (c *Config) SetDefaults() {
	c.Logging.SetDefaults()
	if c.Resolver == "" {
		c.Resolver = "first-satisfiable"
	}
}

func (c *Config) Validate() error {
	switch c.Resolver {
	case "first-satisfiable":
	default:
		return fmt.Errorf("unknown resolver %q", c.Resolver)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error", "disabled":
	default:
		return fmt.Errorf("unknown log level %q", c.Logging.Level)
	}
	for _, t := range c.Types {
		if t.Name == "" {
			return fmt.Errorf("type declaration with empty name")
		}
	}
	return nil
}

// Load reads a YAML config file, then applies DISPATCH_* environment
// overrides (DISPATCH_LOGGING__LEVEL=debug sets logging.level).
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	if err := k.Load(env.Provider("DISPATCH_", ".", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), "dispatch_")
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, err
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// BuildTypes declares every configured type into a fresh registry. Parents
// must be declared before children or already be builtin; declarations are
// processed in order.
func (c *Config) BuildTypes() (*typesystem.Registry, error) {
	reg := typesystem.NewRegistry()
	for _, t := range c.Types {
		if t.Parent == "" {
			reg.Declare(typesystem.Tag(t.Name))
			continue
		}
		if err := reg.Derive(typesystem.Tag(t.Name), typesystem.Tag(t.Parent)); err != nil {
			return nil, fmt.Errorf("type %q: %w", t.Name, err)
		}
	}
	return reg, nil
}
