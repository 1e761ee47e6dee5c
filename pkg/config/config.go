// Package config loads run settings for the triest binaries.
//
// Settings are layered: defaults, then an optional YAML file, then TRIEST_*
// environment variables. Command-line flags are applied by the caller last.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/dd0wney/cluso-triest/pkg/logging"
	"github.com/dd0wney/cluso-triest/pkg/triest"
	"github.com/dd0wney/cluso-triest/pkg/validation"
)

// Environment variables read by ApplyEnv.
const (
	EnvVariant       = "TRIEST_VARIANT"
	EnvReservoirSize = "TRIEST_RESERVOIR_SIZE"
	EnvSeed          = "TRIEST_SEED"
	EnvLogLevel      = logging.LevelEnvVar
	EnvMetricsAddr   = "TRIEST_METRICS_ADDR"
)

// Defaults
const (
	DefaultVariant       = string(triest.VariantImproved)
	DefaultReservoirSize = 10000
	DefaultLogLevel      = "info"
	DefaultProgressEvery = 1_000_000
)

// RunConfig describes one estimation run.
type RunConfig struct {
	Variant       string `yaml:"variant" validate:"required,variant"`
	ReservoirSize int    `yaml:"reservoir_size" validate:"gte=3"`

	// Seed fixes the sampler's random stream; nil draws a fresh one.
	Seed *uint64 `yaml:"seed,omitempty"`

	LogLevel      string `yaml:"log_level" validate:"omitempty,oneof=debug info warn warning error"`
	MetricsAddr   string `yaml:"metrics_addr,omitempty" validate:"omitempty,hostname_port"`
	ProgressEvery int64  `yaml:"progress_every" validate:"gte=0"`

	Source SourceConfig `yaml:"source"`
}

// SourceConfig selects where edges come from. Exactly one of Path, S3URI
// and Listen must be set.
type SourceConfig struct {
	Path   string `yaml:"path,omitempty"`
	Listen string `yaml:"listen,omitempty" validate:"omitempty,url"`

	S3URI       string `yaml:"s3_uri,omitempty" validate:"omitempty,startswith=s3://"`
	S3Region    string `yaml:"s3_region,omitempty"`
	S3Endpoint  string `yaml:"s3_endpoint,omitempty" validate:"omitempty,url"`
	S3PathStyle bool   `yaml:"s3_path_style,omitempty"`
}

// Default returns a config with every default applied and no source.
func Default() *RunConfig {
	return &RunConfig{
		Variant:       DefaultVariant,
		ReservoirSize: DefaultReservoirSize,
		LogLevel:      DefaultLogLevel,
		ProgressEvery: DefaultProgressEvery,
	}
}

// Load reads a YAML file over the defaults. An empty path yields Default().
func Load(path string) (*RunConfig, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: open %s: %w", path, err)
	}
	defer f.Close()

	if err := cfg.decode(f); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return cfg, nil
}

// Parse reads YAML from r over the defaults.
func Parse(r io.Reader) (*RunConfig, error) {
	cfg := Default()
	if err := cfg.decode(r); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

func (c *RunConfig) decode(r io.Reader) error {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// ApplyEnv overrides fields from TRIEST_* variables found by lookup.
// Pass os.LookupEnv in production.
func (c *RunConfig) ApplyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvVariant); ok && v != "" {
		c.Variant = v
	}
	if v, ok := lookup(EnvReservoirSize); ok && v != "" {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("config: %s: %w", EnvReservoirSize, err)
		}
		c.ReservoirSize = n
	}
	if v, ok := lookup(EnvSeed); ok && v != "" {
		seed, err := strconv.ParseUint(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return fmt.Errorf("config: %s: %w", EnvSeed, err)
		}
		c.Seed = &seed
	}
	if v, ok := lookup(EnvLogLevel); ok && v != "" {
		c.LogLevel = strings.ToLower(strings.TrimSpace(v))
	}
	if v, ok := lookup(EnvMetricsAddr); ok {
		c.MetricsAddr = v
	}
	return nil
}

// Validate checks struct tags and cross-field rules.
func (c *RunConfig) Validate() error {
	if err := validation.Struct(c); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	return validation.NewConfigValidator("RunConfig").
		ExactlyOne("Source", map[string]bool{
			"path":   c.Source.Path != "",
			"s3_uri": c.Source.S3URI != "",
			"listen": c.Source.Listen != "",
		}).
		When(c.Source.S3URI == "", func(cv *validation.ConfigValidator) {
			cv.Custom("Source.S3Endpoint", func() error {
				if c.Source.S3Endpoint != "" || c.Source.S3Region != "" || c.Source.S3PathStyle {
					return errors.New("s3 settings given without s3_uri")
				}
				return nil
			})
		}).
		Validate()
}

// EstimatorVariant returns the parsed variant. Call after Validate.
func (c *RunConfig) EstimatorVariant() triest.Variant {
	v, err := triest.ParseVariant(c.Variant)
	if err != nil {
		return triest.VariantImproved
	}
	return v
}

// Level returns the parsed log level, defaulting to info.
func (c *RunConfig) Level() logging.Level {
	if c.LogLevel == "" {
		return logging.InfoLevel
	}
	return logging.ParseLevel(c.LogLevel)
}

// SourceKind names the configured source: "file", "s3", "nng" or "".
func (c *RunConfig) SourceKind() string {
	switch {
	case c.Source.Path != "":
		return "file"
	case c.Source.S3URI != "":
		return "s3"
	case c.Source.Listen != "":
		return "nng"
	}
	return ""
}
