// Package snipsync provides the public Go library API for snipsync.
//
// snipsync keeps Markdown documentation in lockstep with a compilable
// samples source tree: snippet markers are rewritten from named source
// regions, generated excerpts are drift-checked against their line ranges,
// and every compilable code block must carry a marker.
//
// # Basic Usage
//
//	client, err := snipsync.New(snipsync.Options{
//	    ProjectRoot: "/path/to/project",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Resolve snippets and rewrite documents
//	result, err := client.Sync(ctx, snipsync.SyncOptions{})
//
//	// Read-only verification for CI gates
//	result, err = client.Check(ctx)
package snipsync

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/bianoble/snipsync/internal/config"
	"github.com/bianoble/snipsync/internal/engine"
	"github.com/bianoble/snipsync/internal/marker"
	"github.com/bianoble/snipsync/internal/region"
)

// SyncOptions configures a sync operation.
type SyncOptions struct {
	// DryRun computes and reports everything but writes nothing.
	DryRun bool
}

// Options configures a snipsync Client.
type Options struct {
	// ProjectRoot is the directory containing snipsync.yaml.
	// If empty, defaults to the directory containing ConfigPath.
	ProjectRoot string

	// ConfigPath is the path to the config file. Default: "snipsync.yaml".
	// A missing file falls back to the built-in defaults.
	ConfigPath string
}

// Client is the main entry point for the snipsync library.
type Client struct {
	cfg  *config.Config
	root string
}

// New creates a new snipsync Client.
func New(opts Options) (*Client, error) {
	if opts.ConfigPath == "" {
		opts.ConfigPath = "snipsync.yaml"
	}

	root := opts.ProjectRoot
	configPath := opts.ConfigPath
	if root == "" {
		abs, err := filepath.Abs(configPath)
		if err != nil {
			return nil, fmt.Errorf("resolving config path: %w", err)
		}
		root = filepath.Dir(abs)
	} else if !filepath.IsAbs(configPath) {
		configPath = filepath.Join(root, configPath)
	}

	cfg, err := config.Load(configPath)
	if os.IsNotExist(err) {
		cfg = config.Default()
	} else if err != nil {
		return nil, err
	}

	return &Client{cfg: cfg, root: root}, nil
}

func (c *Client) engine() (*engine.SyncEngine, error) {
	syn, err := c.syntax()
	if err != nil {
		return nil, err
	}
	return &engine.SyncEngine{
		DocsRoot:        filepath.Join(c.root, c.cfg.Docs),
		SamplesRoot:     filepath.Join(c.root, c.cfg.Samples),
		Exclude:         c.cfg.Exclude,
		Langs:           marker.NewLangSet(c.cfg.Languages),
		Syntax:          syn,
		FenceTag:        c.cfg.Fence,
		Workers:         c.cfg.Workers,
		FailFast:        c.cfg.FailFast,
		PseudoWarnRatio: c.cfg.PseudoWarnRatio,
	}, nil
}

func (c *Client) syntax() (*region.Syntax, error) {
	if c.cfg.Region.Start != "" {
		return region.CustomSyntax(c.cfg.Region.Start, c.cfg.Region.End)
	}
	return region.BuiltinSyntax(c.cfg.Region.Syntax)
}

// Sync resolves snippet markers and rewrites out-of-date documents.
func (c *Client) Sync(ctx context.Context, opts SyncOptions) (*SyncResult, error) {
	eng, err := c.engine()
	if err != nil {
		return nil, err
	}
	return eng.Sync(ctx, engine.SyncOptions{DryRun: opts.DryRun})
}

// Check runs the full pipeline read-only. Documents that Sync would have
// rewritten appear in the result's Written list.
func (c *Client) Check(ctx context.Context) (*SyncResult, error) {
	eng, err := c.engine()
	if err != nil {
		return nil, err
	}
	return eng.Sync(ctx, engine.SyncOptions{DryRun: true})
}

// Regions indexes the samples tree and returns every named region, sorted
// by file then start line.
func (c *Client) Regions(ctx context.Context) ([]Region, []FileError, error) {
	syn, err := c.syntax()
	if err != nil {
		return nil, nil, err
	}
	idx, err := region.Scan(ctx, filepath.Join(c.root, c.cfg.Samples), syn, c.cfg.Workers)
	if err != nil {
		return nil, nil, err
	}
	return idx.Regions(), idx.Structural(), nil
}
