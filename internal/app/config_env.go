package app

import (
	"os"
	"strconv"
	"strings"
)

// ApplyEnvToConfig populates unset or defaulted fields of cfg from
// TALENTFETCH_* environment variables. Explicit cfg values take precedence.
func ApplyEnvToConfig(cfg *Config) {
	if cfg == nil {
		return
	}
	if cfg.InputPath == "" {
		cfg.InputPath = os.Getenv("TALENTFETCH_INPUT")
	}
	if cfg.OutputPath == "" || cfg.OutputPath == DefaultOutputPath {
		if v := os.Getenv("TALENTFETCH_OUTPUT"); v != "" {
			cfg.OutputPath = v
		}
	}
	if cfg.Format == "" || cfg.Format == DefaultFormat {
		if v := strings.ToLower(strings.TrimSpace(os.Getenv("TALENTFETCH_FORMAT"))); v != "" {
			cfg.Format = v
		}
	}
	if cfg.RequestsPerSecond == 0 {
		if s := strings.TrimSpace(os.Getenv("TALENTFETCH_RPS")); s != "" {
			if v, err := strconv.ParseFloat(s, 64); err == nil && v > 0 {
				cfg.RequestsPerSecond = v
			}
		}
	}

	setBool := func(dst *bool, envKey string) {
		if *dst {
			return
		}
		switch strings.ToLower(strings.TrimSpace(os.Getenv(envKey))) {
		case "1", "true", "yes", "on":
			*dst = true
		}
	}
	setBool(&cfg.DryRun, "TALENTFETCH_DRY_RUN")
	setBool(&cfg.Verbose, "TALENTFETCH_VERBOSE")
}
