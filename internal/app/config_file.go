package app

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	yaml "gopkg.in/yaml.v3"
)

// Flag defaults, used to tell whether a flag was left untouched.
const (
	DefaultOutputPath = "-"
	DefaultFormat     = FormatYAML
)

// FileConfig represents the single-file configuration schema.
type FileConfig struct {
	Input  string `yaml:"input" json:"input"`
	Output string `yaml:"output" json:"output"`
	Format string `yaml:"format" json:"format"`

	Pacing struct {
		RequestsPerSecond float64 `yaml:"requestsPerSecond" json:"requestsPerSecond"`
	} `yaml:"pacing" json:"pacing"`

	DryRun  bool `yaml:"dryRun" json:"dryRun"`
	Verbose bool `yaml:"verbose" json:"verbose"`
}

// LoadConfigFile reads YAML or JSON into FileConfig.
func LoadConfigFile(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	switch filepath.Ext(path) {
	case ".json":
		if err := json.Unmarshal(b, &fc); err != nil {
			return fc, fmt.Errorf("parse json: %w", err)
		}
	default:
		if err := yaml.Unmarshal(b, &fc); err != nil {
			return fc, fmt.Errorf("parse yaml: %w", err)
		}
	}
	return fc, nil
}

// ApplyFileConfig overlays values from fc into cfg for fields that are unset
// or still at their flag default, so explicit flags win over the file.
func ApplyFileConfig(cfg *Config, fc FileConfig) {
	if cfg == nil {
		return
	}
	if cfg.InputPath == "" && fc.Input != "" {
		cfg.InputPath = fc.Input
	}
	if (cfg.OutputPath == "" || cfg.OutputPath == DefaultOutputPath) && fc.Output != "" {
		cfg.OutputPath = fc.Output
	}
	if (cfg.Format == "" || cfg.Format == DefaultFormat) && fc.Format != "" {
		cfg.Format = strings.ToLower(fc.Format)
	}
	if cfg.RequestsPerSecond == 0 && fc.Pacing.RequestsPerSecond > 0 {
		cfg.RequestsPerSecond = fc.Pacing.RequestsPerSecond
	}
	if !cfg.DryRun && fc.DryRun {
		cfg.DryRun = true
	}
	if !cfg.Verbose && fc.Verbose {
		cfg.Verbose = true
	}
}

// ValidateConfig performs minimal validation for required settings.
func ValidateConfig(cfg Config) error {
	if strings.TrimSpace(cfg.InputPath) == "" {
		return errors.New("config: input path is required")
	}
	if strings.TrimSpace(cfg.OutputPath) == "" {
		return errors.New("config: output path is required")
	}
	switch cfg.Format {
	case FormatYAML, FormatJSON:
	default:
		return fmt.Errorf("config: unsupported format %q", cfg.Format)
	}
	if cfg.RequestsPerSecond < 0 {
		return errors.New("config: negative requests per second")
	}
	return nil
}
