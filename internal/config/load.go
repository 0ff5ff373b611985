package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Default returns the configuration used when no snipsync.yaml exists:
// a C# samples tree under docs/samples, feeding docs/.
func Default() *Config {
	cfg := &Config{
		Version:   1,
		Docs:      "docs",
		Samples:   "docs/samples",
		Languages: []string{"csharp"},
		Region:    RegionConfig{Syntax: "csharp"},
	}
	applyDefaults(cfg)
	return cfg
}

// Load reads and validates a snipsync.yaml configuration file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	applyDefaults(&cfg)
	if errs := Validate(&cfg); len(errs) > 0 {
		return nil, &ValidationError{Errors: errs}
	}

	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Fence == "" && len(cfg.Languages) > 0 {
		cfg.Fence = cfg.Languages[0]
	}
	if cfg.Region.Syntax == "" && cfg.Region.Start == "" {
		cfg.Region.Syntax = "csharp"
	}
}

// ValidationError holds multiple validation failures.
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("config validation failed:\n  - %s", strings.Join(e.Errors, "\n  - "))
}

// Validate checks a Config for semantic correctness.
// Returns a list of validation error messages (empty if valid).
func Validate(cfg *Config) []string {
	var errs []string

	if cfg.Version != 1 {
		errs = append(errs, fmt.Sprintf("unsupported version %d — only version 1 is supported", cfg.Version))
	}

	if cfg.Docs == "" {
		errs = append(errs, "'docs' is required — the documentation tree root")
	}
	if cfg.Samples == "" {
		errs = append(errs, "'samples' is required — the samples source tree root")
	}

	if len(cfg.Languages) == 0 {
		errs = append(errs, "at least one entry in 'languages' is required")
	}
	for i, lang := range cfg.Languages {
		if strings.TrimSpace(lang) == "" {
			errs = append(errs, fmt.Sprintf("languages[%d]: empty language tag", i))
		}
	}

	switch {
	case cfg.Region.Syntax != "" && (cfg.Region.Start != "" || cfg.Region.End != ""):
		errs = append(errs, "region: 'syntax' and 'start'/'end' are mutually exclusive — use one or the other")
	case cfg.Region.Syntax == "" && (cfg.Region.Start == "" || cfg.Region.End == ""):
		errs = append(errs, "region: custom delimiters require both 'start' and 'end' patterns")
	}

	if cfg.Workers < 0 {
		errs = append(errs, fmt.Sprintf("workers must be >= 0, got %d", cfg.Workers))
	}
	if cfg.PseudoWarnRatio < 0 || cfg.PseudoWarnRatio > 1 {
		errs = append(errs, fmt.Sprintf("pseudo_warn_ratio must be between 0 and 1, got %g", cfg.PseudoWarnRatio))
	}

	return errs
}
