package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

var initForce bool

// initTemplate is the default snipsync.yaml scaffold.
const initTemplate = `# snipsync configuration
version: 1

# Documentation tree: Markdown files scanned for snippet markers.
docs: docs/

# Samples source tree: compilable code containing named regions.
samples: docs/samples/

# Directories under the docs root that are never scanned
# (task logs, project-management artifacts).
exclude:
  - todos

# Fence tags treated as compilable code. A fenced block with one of these
# tags and no governing marker fails verification. Tags are matched through
# their language aliases, so "cs" and "csharp" are the same language.
languages:
  - csharp

# Region delimiter syntax in the samples tree.
# Built-ins: csharp (#region/#endregion), go (// region:/// endregion).
region:
  syntax: csharp
# Or custom patterns (start must capture the region name):
#   start: '^\s*#region\s+(\S+)\s*$'
#   end: '^\s*#endregion\b'

# workers: 0            # parallel scan workers, 0 = CPU count
# fail_fast: false      # abort on the first structural error
# pseudo_warn_ratio: 0  # warn when pseudo blocks exceed this fraction
`

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a starter snipsync.yaml configuration",
	Long: `Creates a snipsync.yaml file in the current directory with a commented
template covering the docs and samples roots, the compilable language set,
and the region delimiter syntax.

Use --force to overwrite an existing configuration file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		outPath := configPath
		if !filepath.IsAbs(outPath) {
			abs, err := filepath.Abs(outPath)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}
			outPath = abs
		}

		if !initForce {
			if _, err := os.Stat(outPath); err == nil {
				return fmt.Errorf("%s already exists (use --force to overwrite)", outPath)
			}
		}

		if err := os.WriteFile(outPath, []byte(initTemplate), 0644); err != nil {
			return fmt.Errorf("writing config: %w", err)
		}

		info("Created %s", outPath)
		info("")
		info("Next steps:")
		info("  1. Point 'docs' and 'samples' at your trees")
		info("  2. Run 'snipsync sync' to resolve snippets")
		info("  3. Gate CI on 'snipsync check'")
		return nil
	},
}

func init() {
	initCmd.Flags().BoolVar(&initForce, "force", false, "overwrite existing config file")
	rootCmd.AddCommand(initCmd)
}
