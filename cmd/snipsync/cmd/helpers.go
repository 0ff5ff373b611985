package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/bianoble/snipsync/internal/config"
	"github.com/bianoble/snipsync/internal/engine"
	"github.com/bianoble/snipsync/internal/marker"
	"github.com/bianoble/snipsync/internal/region"
	"github.com/bianoble/snipsync/internal/report"
)

// loadConfig reads the config file, falling back to built-in defaults when
// the file does not exist, then applies flag overrides.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if os.IsNotExist(err) {
		if rootCmd.PersistentFlags().Changed("config") {
			return nil, fmt.Errorf("config %s does not exist", configPath)
		}
		cfg = config.Default()
	} else if err != nil {
		return nil, fmt.Errorf("loading config %s: %w", configPath, err)
	}

	flags := rootCmd.PersistentFlags()
	if flags.Changed("docs") {
		cfg.Docs = docsFlag
	}
	if flags.Changed("samples") {
		cfg.Samples = samplesFlag
	}
	if flags.Changed("exclude") {
		cfg.Exclude = excludeFlag
	}
	if flags.Changed("workers") {
		cfg.Workers = workersFlag
	}
	if flags.Changed("fail-fast") {
		cfg.FailFast = failFast
	}

	return cfg, nil
}

// projectRoot returns the directory containing the config file. Docs and
// samples paths in the config are resolved against it.
func projectRoot() (string, error) {
	abs, err := filepath.Abs(configPath)
	if err != nil {
		return "", fmt.Errorf("resolving config path: %w", err)
	}
	return filepath.Dir(abs), nil
}

// regionSyntax builds the delimiter syntax selected by the config.
func regionSyntax(cfg *config.Config) (*region.Syntax, error) {
	if cfg.Region.Start != "" {
		return region.CustomSyntax(cfg.Region.Start, cfg.Region.End)
	}
	return region.BuiltinSyntax(cfg.Region.Syntax)
}

// newEngine wires a SyncEngine from the loaded configuration.
func newEngine(cfg *config.Config) (*engine.SyncEngine, error) {
	root, err := projectRoot()
	if err != nil {
		return nil, err
	}
	syn, err := regionSyntax(cfg)
	if err != nil {
		return nil, err
	}

	return &engine.SyncEngine{
		DocsRoot:        filepath.Join(root, cfg.Docs),
		SamplesRoot:     filepath.Join(root, cfg.Samples),
		Exclude:         cfg.Exclude,
		Langs:           marker.NewLangSet(cfg.Languages),
		Syntax:          syn,
		FenceTag:        cfg.Fence,
		Workers:         cfg.Workers,
		FailFast:        cfg.FailFast,
		PseudoWarnRatio: cfg.PseudoWarnRatio,
	}, nil
}

// newRenderer builds the report renderer honoring the output flags.
func newRenderer(check bool) *report.Renderer {
	return &report.Renderer{
		Out:     os.Stdout,
		Color:   !noColor,
		Verbose: verbose,
		Check:   check,
	}
}

// info prints a line unless quiet mode is active.
func info(format string, args ...any) {
	if !quiet {
		fmt.Printf(format+"\n", args...)
	}
}

// detail prints a line only in verbose mode.
func detail(format string, args ...any) {
	if verbose {
		fmt.Printf("  "+format+"\n", args...)
	}
}

// errorf prints an error message to stderr.
func errorf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "error: "+format+"\n", args...)
}
