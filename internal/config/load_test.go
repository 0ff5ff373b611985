package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "snipsync.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadValidConfig(t *testing.T) {
	path := writeConfig(t, `
version: 1
docs: docs/
samples: docs/samples/
exclude:
  - todos
languages:
  - csharp
region:
  syntax: csharp
workers: 4
pseudo_warn_ratio: 0.25
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Docs != "docs/" {
		t.Errorf("docs = %q", cfg.Docs)
	}
	if cfg.Fence != "csharp" {
		t.Errorf("fence = %q, want default from first language", cfg.Fence)
	}
	if cfg.Workers != 4 {
		t.Errorf("workers = %d", cfg.Workers)
	}
	if cfg.PseudoWarnRatio != 0.25 {
		t.Errorf("pseudo_warn_ratio = %g", cfg.PseudoWarnRatio)
	}
}

func TestLoadCustomRegionPatterns(t *testing.T) {
	path := writeConfig(t, `
version: 1
docs: docs/
samples: src/
languages: [go]
region:
  start: '^// snip (\S+)$'
  end: '^// endsnip$'
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Region.Start == "" || cfg.Region.Syntax != "" {
		t.Errorf("region = %+v, want custom patterns only", cfg.Region)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if !os.IsNotExist(err) {
		t.Errorf("err = %v, want IsNotExist so callers can fall back to defaults", err)
	}
}

func TestLoadMalformedYAML(t *testing.T) {
	path := writeConfig(t, "version: [not: closed")
	if _, err := Load(path); err == nil {
		t.Error("want parse error")
	}
}

func TestDefault(t *testing.T) {
	cfg := Default()
	if errs := Validate(cfg); len(errs) > 0 {
		t.Errorf("default config invalid: %v", errs)
	}
	if cfg.Fence != "csharp" {
		t.Errorf("fence = %q", cfg.Fence)
	}
	if cfg.Region.Syntax != "csharp" {
		t.Errorf("region syntax = %q", cfg.Region.Syntax)
	}
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Version:   1,
			Docs:      "docs",
			Samples:   "samples",
			Languages: []string{"csharp"},
			Region:    RegionConfig{Syntax: "csharp"},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"wrong version", func(c *Config) { c.Version = 2 }, "unsupported version"},
		{"missing docs", func(c *Config) { c.Docs = "" }, "'docs' is required"},
		{"missing samples", func(c *Config) { c.Samples = "" }, "'samples' is required"},
		{"no languages", func(c *Config) { c.Languages = nil }, "languages"},
		{"blank language", func(c *Config) { c.Languages = []string{" "} }, "empty language tag"},
		{"syntax and patterns", func(c *Config) { c.Region.Start = "x" }, "mutually exclusive"},
		{"half custom pattern", func(c *Config) { c.Region = RegionConfig{Start: "x"} }, "both 'start' and 'end'"},
		{"negative workers", func(c *Config) { c.Workers = -1 }, "workers"},
		{"ratio above one", func(c *Config) { c.PseudoWarnRatio = 1.5 }, "pseudo_warn_ratio"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			errs := Validate(cfg)
			if len(errs) == 0 {
				t.Fatal("want validation error")
			}
			found := false
			for _, e := range errs {
				if strings.Contains(e, tt.wantErr) {
					found = true
				}
			}
			if !found {
				t.Errorf("errors = %v, want one containing %q", errs, tt.wantErr)
			}
		})
	}

	if errs := Validate(valid()); len(errs) != 0 {
		t.Errorf("valid config rejected: %v", errs)
	}
}
