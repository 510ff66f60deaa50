// Package config loads collection settings from YAML files and the
// environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/mrsinham/tomoslice/internal/dicom/view"
	"github.com/mrsinham/tomoslice/internal/pipeline"
	"github.com/mrsinham/tomoslice/internal/util"
)

// Environment variables read by ApplyEnv.
const (
	EnvOutput  = "TOMOSLICE_OUT"
	EnvMaxMB   = "TOMOSLICE_MAX_MB"
	EnvMode    = "TOMOSLICE_MODE"
	EnvWorkers = "TOMOSLICE_WORKERS"
	EnvDeep    = "TOMOSLICE_DEEP"
)

// Config is the YAML representation of the collection settings.
type Config struct {
	Collect CollectConfig `yaml:"collect"`
}

// CollectConfig holds the collect command settings.
type CollectConfig struct {
	OutputName string `yaml:"output_name"`
	// MaxSize is a size such as "100" (MiB) or "1.5GB".
	MaxSize    string `yaml:"max_size"`
	Recursive  bool   `yaml:"recursive"`
	Mode       string `yaml:"mode"`
	Workers    int    `yaml:"workers"`
	TailLength int    `yaml:"tail_length"`
}

// Default returns the built-in settings.
func Default() *Config {
	d := pipeline.DefaultOptions("")
	return &Config{
		Collect: CollectConfig{
			OutputName: d.OutputName,
			MaxSize:    strconv.FormatFloat(d.MaxMiB, 'f', -1, 64),
			Recursive:  d.Recursive,
			Mode:       d.Mode.String(),
			Workers:    d.Workers,
			TailLength: d.TailLength,
		},
	}
}

// LoadFromYAML reads a config file. Keys missing from the file keep their
// default values.
func LoadFromYAML(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// SaveToYAML writes cfg to path.
func SaveToYAML(cfg *Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// ApplyEnv overrides cfg with the TOMOSLICE_* variables found by lookup
// (usually os.LookupEnv).
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvOutput); ok && v != "" {
		c.Collect.OutputName = v
	}
	if v, ok := lookup(EnvMaxMB); ok && v != "" {
		c.Collect.MaxSize = v
	}
	if v, ok := lookup(EnvMode); ok && v != "" {
		c.Collect.Mode = v
	}
	if v, ok := lookup(EnvWorkers); ok && v != "" {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%s: invalid worker count %q", EnvWorkers, v)
		}
		c.Collect.Workers = n
	}
	if v, ok := lookup(EnvDeep); ok && v != "" {
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%s: invalid boolean %q", EnvDeep, v)
		}
		c.Collect.Recursive = b
	}
	return nil
}

// ToOptions converts the settings into pipeline options for parent.
func (c *Config) ToOptions(parent string) (pipeline.Options, error) {
	opts := pipeline.DefaultOptions(parent)

	maxBytes, err := util.ParseSize(c.Collect.MaxSize)
	if err != nil {
		return opts, fmt.Errorf("max_size: %w", err)
	}
	mode, err := view.ParseMode(c.Collect.Mode)
	if err != nil {
		return opts, err
	}

	opts.OutputName = c.Collect.OutputName
	opts.MaxMiB = float64(maxBytes) / util.MiB
	opts.Recursive = c.Collect.Recursive
	opts.Mode = mode
	opts.Workers = c.Collect.Workers
	if c.Collect.TailLength > 0 {
		opts.TailLength = c.Collect.TailLength
	}
	return opts, nil
}
